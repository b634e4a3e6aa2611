package native

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/quad/device"
)

// drawCall is one lowered draw: the index window applied to the bound
// vertex buffer at encode time.
type drawCall struct {
	indexCount    uint32
	instanceCount uint32
	firstIndex    uint32
	baseVertex    int32
	firstInstance uint32
}

// recorder buffers the logical frame commands and encodes them as one
// hal render pass on End. Indexed draws are lowered to plain draws by
// applying the index sequence into a per-frame scratch vertex buffer;
// the hal surface is only exercised with non-indexed draws.
type recorder struct {
	dev *Device

	recording   bool
	fbBound     bool
	clearColor  gputypes.Color
	vertexBuf   *buffer
	indexBuf    *buffer
	indexFormat gputypes.IndexFormat
	pipe        *pipeline
	draws       []drawCall

	cmd     hal.CommandBuffer
	scratch []hal.Buffer

	released bool
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
	r.recording = true
	r.fbBound = false
	r.vertexBuf = nil
	r.indexBuf = nil
	r.pipe = nil
	r.draws = r.draws[:0]
	return nil
}

func (r *recorder) BindFramebuffer() error {
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("bind framebuffer: %w", err)
	}
	r.fbBound = true
	return nil
}

func (r *recorder) Clear(color gputypes.Color) error {
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	if !r.fbBound {
		return fmt.Errorf("clear: %w", device.ErrNoFramebuffer)
	}
	r.clearColor = color
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
	if slot != 0 {
		return fmt.Errorf("set vertex buffer: only slot 0 is supported, got %d", slot)
	}
	r.vertexBuf = b
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
	if format != gputypes.IndexFormatUint16 {
		return fmt.Errorf("set index buffer: only uint16 indices are supported")
	}
	r.indexBuf = b
	r.indexFormat = format
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
	r.pipe = pl
	return nil
}

func (r *recorder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("draw indexed: %w", err)
	}
	if !r.fbBound {
		return fmt.Errorf("draw indexed: %w", device.ErrNoFramebuffer)
	}
	if r.vertexBuf == nil || r.indexBuf == nil {
		return fmt.Errorf("draw indexed: %w", device.ErrNilBuffer)
	}
	if r.pipe == nil {
		return fmt.Errorf("draw indexed: %w", device.ErrNilPipeline)
	}
	if (uint64(firstIndex)+uint64(indexCount))*2 > uint64(len(r.indexBuf.contents)) {
		return fmt.Errorf("draw indexed: index range [%d,%d) exceeds buffer", firstIndex, firstIndex+indexCount)
	}
	r.draws = append(r.draws, drawCall{
		indexCount:    indexCount,
		instanceCount: instanceCount,
		firstIndex:    firstIndex,
		baseVertex:    baseVertex,
		firstInstance: firstInstance,
	})
	return nil
}

// End encodes the buffered frame: one render pass over the offscreen
// targets, then a copy of the color target into the readback staging
// buffer.
func (r *recorder) End() error {
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	r.recording = false

	d := r.dev
	encoder, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: d.label + "_encoder",
	})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(d.label + "_frame"); err != nil {
		return fmt.Errorf("native: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: d.label + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       d.colorView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: r.clearColor,
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              d.depthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		},
	})

	for _, call := range r.draws {
		scratchData, err := r.lowerDraw(call)
		if err != nil {
			rp.End()
			encoder.DiscardEncoding()
			return err
		}
		scratchBuf, err := d.uploadBuffer(d.label+"_scratch", scratchData,
			gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
		if err != nil {
			rp.End()
			encoder.DiscardEncoding()
			return err
		}
		r.scratch = append(r.scratch, scratchBuf)

		rp.SetPipeline(r.pipe.raw)
		rp.SetVertexBuffer(0, scratchBuf, 0)
		rp.Draw(call.indexCount, call.instanceCount, 0, call.firstInstance)
	}
	rp.End()

	// Color target goes through CopySrc for the staging copy and back
	// to RenderAttachment for the next frame.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: d.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(d.colorTex, d.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: d.stagingRowSize, RowsPerImage: d.height},
		TextureBase:  hal.ImageCopyTexture{Texture: d.colorTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: d.width, Height: d.height, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: d.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	r.cmd = cmd
	return nil
}

// lowerDraw applies the index window to the bound vertex contents,
// producing the scratch vertex stream for a non-indexed draw.
func (r *recorder) lowerDraw(call drawCall) ([]byte, error) {
	stride := r.pipe.stride
	verts := r.vertexBuf.contents
	idx := r.indexBuf.contents
	vertexCount := uint64(len(verts)) / stride

	out := make([]byte, 0, uint64(call.indexCount)*stride)
	for i := uint32(0); i < call.indexCount; i++ {
		off := (call.firstIndex + i) * 2
		v := int64(binary.LittleEndian.Uint16(idx[off:])) + int64(call.baseVertex)
		if v < 0 || uint64(v) >= vertexCount {
			return nil, fmt.Errorf("native: index %d out of range (%d vertices)", v, vertexCount)
		}
		start := uint64(v) * stride
		out = append(out, verts[start:start+stride]...)
	}
	return out, nil
}

// Submit submits the encoded frame and blocks until the GPU is done,
// so ReadPixels observes the finished image.
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
	d := r.dev

	fence, err := d.dev.CreateFence()
	if err != nil {
		return fmt.Errorf("native: create fence: %w", err)
	}
	defer d.dev.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{r.cmd}, fence, 1); err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	ok, err := d.dev.Wait(fence, 1, 5*time.Second)
	if err != nil || !ok {
		return fmt.Errorf("native: wait for GPU: ok=%v err=%w", ok, err)
	}

	d.dev.FreeCommandBuffer(r.cmd)
	r.cmd = nil
	for _, buf := range r.scratch {
		d.dev.DestroyBuffer(buf)
	}
	r.scratch = r.scratch[:0]
	return nil
}

func (r *recorder) Release() {
	if r.released {
		return
	}
	r.released = true
	if r.cmd != nil {
		r.dev.dev.FreeCommandBuffer(r.cmd)
		r.cmd = nil
	}
	for _, buf := range r.scratch {
		r.dev.dev.DestroyBuffer(buf)
	}
	r.scratch = nil
}
