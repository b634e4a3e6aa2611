package native

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/quad"
	"github.com/gogpu/quad/device"
)

// buffer keeps a CPU copy of its contents; vertex buffers also carry
// the uploaded hal buffer. Index buffers are CPU-only, the recorder
// applies them at encode time.
type buffer struct {
	dev      *Device
	label    string
	usage    device.BufferUsage
	contents []byte
	raw      hal.Buffer
}

func (b *buffer) Size() uint64              { return uint64(len(b.contents)) }
func (b *buffer) Usage() device.BufferUsage { return b.usage }

func (b *buffer) Release() {
	if b.raw != nil {
		b.dev.dev.DestroyBuffer(b.raw)
		b.raw = nil
	}
	b.contents = nil
}

type shader struct {
	dev        *Device
	raw        hal.ShaderModule
	stage      quad.ShaderStage
	entryPoint string
}

func (s *shader) Stage() quad.ShaderStage { return s.stage }

func (s *shader) Release() {
	if s.raw != nil {
		s.dev.dev.DestroyShaderModule(s.raw)
		s.raw = nil
	}
}

type pipeline struct {
	dev    *Device
	raw    hal.RenderPipeline
	layout hal.PipelineLayout
	stride uint64
}

func (p *pipeline) Release() {
	if p.raw != nil {
		p.dev.dev.DestroyRenderPipeline(p.raw)
		p.raw = nil
	}
	if p.layout != nil {
		p.dev.dev.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
}
