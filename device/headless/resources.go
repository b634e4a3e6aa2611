package headless

import (
	"github.com/gogpu/quad"
	"github.com/gogpu/quad/device"
)

// buffer is a recorded static buffer. Contents are the exact bytes
// that would have been uploaded.
type buffer struct {
	dev      *Device
	label    string
	usage    device.BufferUsage
	contents []byte
	released bool
}

func (b *buffer) Size() uint64              { return uint64(len(b.contents)) }
func (b *buffer) Usage() device.BufferUsage { return b.usage }

// Contents returns the uploaded bytes for inspection.
func (b *buffer) Contents() []byte { return b.contents }

// Label returns the buffer label used in the op log and journal.
func (b *buffer) Label() string { return b.label }

func (b *buffer) Release() {
	if b.released {
		b.dev.violate("headless: buffer %q released twice", b.label)
		return
	}
	b.released = true
	b.dev.journalRelease(b.label)
}

type shader struct {
	dev      *Device
	stage    quad.ShaderStage
	released bool
}

func (s *shader) Stage() quad.ShaderStage { return s.stage }

func (s *shader) Release() {
	if s.released {
		s.dev.violate("headless: %s shader released twice", s.stage)
		return
	}
	s.released = true
	s.dev.journalRelease("shader:" + s.stage.String())
}

type pipeline struct {
	dev      *Device
	config   quad.PipelineConfig
	released bool
}

// Config returns the config the pipeline was built from.
func (p *pipeline) Config() quad.PipelineConfig { return p.config }

func (p *pipeline) Release() {
	if p.released {
		p.dev.violate("headless: pipeline released twice")
		return
	}
	p.released = true
	p.dev.journalRelease("pipeline")
}
