package wgpu

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/quad"
	"github.com/gogpu/quad/device"
)

type buffer struct {
	raw   *wgpu.Buffer
	usage device.BufferUsage
	size  uint64
}

func (b *buffer) Size() uint64              { return b.size }
func (b *buffer) Usage() device.BufferUsage { return b.usage }

func (b *buffer) Release() {
	if b.raw != nil {
		b.raw.Release()
		b.raw = nil
	}
}

type shader struct {
	raw        *wgpu.ShaderModule
	stage      quad.ShaderStage
	entryPoint string
}

func (s *shader) Stage() quad.ShaderStage { return s.stage }

func (s *shader) Release() {
	if s.raw != nil {
		s.raw.Release()
		s.raw = nil
	}
}

type pipeline struct {
	raw *wgpu.RenderPipeline
}

func (p *pipeline) Release() {
	if p.raw != nil {
		p.raw.Release()
		p.raw = nil
	}
}
