package wgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/quad/device"
)

// recorder records one frame. Begin creates the command encoder,
// BindFramebuffer acquires the swapchain view, Clear opens the render
// pass, and End closes the pass and finishes the command buffer.
type recorder struct {
	dev *Device

	recording bool
	encoder   *wgpu.CommandEncoder
	pass      *wgpu.RenderPassEncoder
	view      *wgpu.TextureView
	cmd       *wgpu.CommandBuffer
	released  bool
}

func (r *recorder) checkRecording() error {
	if r.released {
		return device.ErrReleased
	}
	if !r.recording {
		return device.ErrNotRecording
	}
	return nil
}

func (r *recorder) Begin() error {
	if r.released {
		return device.ErrReleased
	}
	if r.recording {
		return device.ErrAlreadyRecording
	}
	encoder, err := r.dev.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if r.cmd != nil {
		// Unsubmitted frame from a previous Begin/End cycle.
		r.cmd.Release()
		r.cmd = nil
	}
	r.encoder = encoder
	r.recording = true
	return nil
}

func (r *recorder) BindFramebuffer() error {
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("bind framebuffer: %w", err)
	}
	view, err := r.dev.acquireFrame()
	if err != nil {
		return fmt.Errorf("bind framebuffer: %w", err)
	}
	r.view = view
	return nil
}

// Clear opens the render pass with a clear load op on both the color
// and depth attachments.
func (r *recorder) Clear(color gputypes.Color) error {
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	if r.view == nil {
		return fmt.Errorf("clear: %w", device.ErrNoFramebuffer)
	}

	desc := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    r.view,
			LoadOp:  wgpu.LoadOpClear,
			StoreOp: wgpu.StoreOpStore,
			ClearValue: wgpu.Color{
				R: color.R, G: color.G, B: color.B, A: color.A,
			},
		}},
	}
	if r.dev.depthView != nil {
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            r.dev.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		}
	}
	r.pass = r.encoder.BeginRenderPass(desc)
	return nil
}

func (r *recorder) SetVertexBuffer(slot uint32, buf device.Buffer) error {
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("set vertex buffer: %w", err)
	}
	b, ok := buf.(*buffer)
	if !ok || b == nil {
		return fmt.Errorf("set vertex buffer: %w", device.ErrNilBuffer)
	}
	if r.pass == nil {
		return fmt.Errorf("set vertex buffer: %w", device.ErrNoFramebuffer)
	}
	r.pass.SetVertexBuffer(slot, b.raw, 0, wgpu.WholeSize)
	return nil
}

func (r *recorder) SetIndexBuffer(buf device.Buffer, format gputypes.IndexFormat) error {
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("set index buffer: %w", err)
	}
	b, ok := buf.(*buffer)
	if !ok || b == nil {
		return fmt.Errorf("set index buffer: %w", device.ErrNilBuffer)
	}
	if r.pass == nil {
		return fmt.Errorf("set index buffer: %w", device.ErrNoFramebuffer)
	}
	r.pass.SetIndexBuffer(b.raw, toIndexFormat(format), 0, wgpu.WholeSize)
	return nil
}

func (r *recorder) SetPipeline(p device.Pipeline) error {
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("set pipeline: %w", err)
	}
	pl, ok := p.(*pipeline)
	if !ok || pl == nil {
		return fmt.Errorf("set pipeline: %w", device.ErrNilPipeline)
	}
	if r.pass == nil {
		return fmt.Errorf("set pipeline: %w", device.ErrNoFramebuffer)
	}
	r.pass.SetPipeline(pl.raw)
	return nil
}

func (r *recorder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("draw indexed: %w", err)
	}
	if r.pass == nil {
		return fmt.Errorf("draw indexed: %w", device.ErrNoFramebuffer)
	}
	r.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
	return nil
}

func (r *recorder) End() error {
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	if r.pass != nil {
		r.pass.End()
		r.pass = nil
	}
	cmd, err := r.encoder.Finish(nil)
	if err != nil {
		r.encoder.Release()
		r.encoder = nil
		r.recording = false
		return fmt.Errorf("wgpu: finish command buffer: %w", err)
	}
	r.encoder.Release()
	r.encoder = nil
	r.view = nil
	r.cmd = cmd
	r.recording = false
	return nil
}

func (r *recorder) Submit() error {
	if r.released {
		return device.ErrReleased
	}
	if r.recording {
		return fmt.Errorf("submit: %w", device.ErrFrameOpen)
	}
	if r.cmd == nil {
		return fmt.Errorf("submit: %w", device.ErrNoFrame)
	}
	r.dev.queue.Submit(r.cmd)
	r.cmd.Release()
	r.cmd = nil
	return nil
}

func (r *recorder) Release() {
	if r.released {
		return
	}
	r.released = true
	if r.pass != nil {
		r.pass.End()
		r.pass = nil
	}
	if r.encoder != nil {
		r.encoder.Release()
		r.encoder = nil
	}
	if r.cmd != nil {
		r.cmd.Release()
		r.cmd = nil
	}
}
