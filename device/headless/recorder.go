package headless

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/quad/device"
)

// RecorderState represents the state of the frame recorder.
type RecorderState int

const (
	// RecorderIdle means no frame is being recorded.
	RecorderIdle RecorderState = iota
	// RecorderRecording means a frame is open between Begin and End.
	RecorderRecording
)

// String returns the string representation of RecorderState.
func (s RecorderState) String() string {
	switch s {
	case RecorderIdle:
		return "idle"
	case RecorderRecording:
		return "recording"
	default:
		return fmt.Sprintf("RecorderState(%d)", int(s))
	}
}

// Recorder records frame commands into the device op log. It is a
// two-state machine: Begin moves it from idle to recording, End moves
// it back, and Submit is only valid while idle with a finished frame
// pending.
type Recorder struct {
	mu sync.Mutex

	dev         *Device
	state       RecorderState
	framebuffer bool
	pending     bool
	released    bool
}

// State returns the current recorder state.
func (r *Recorder) State() RecorderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Recorder) checkRecording() error {
	if r.released {
		return device.ErrReleased
	}
	if r.state != RecorderRecording {
		return device.ErrNotRecording
	}
	return nil
}

// Begin starts recording a frame. Any unsubmitted pending frame is
// discarded.
func (r *Recorder) Begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return device.ErrReleased
	}
	if r.state == RecorderRecording {
		return device.ErrAlreadyRecording
	}
	r.state = RecorderRecording
	r.framebuffer = false
	r.pending = false
	r.dev.record(Op{Kind: OpBegin})
	return nil
}

// BindFramebuffer targets the swapchain framebuffer.
func (r *Recorder) BindFramebuffer() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("bind framebuffer: %w", err)
	}
	r.framebuffer = true
	r.dev.record(Op{Kind: OpBindFramebuffer})
	return nil
}

// Clear clears the bound framebuffer to the given color.
func (r *Recorder) Clear(color gputypes.Color) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	if !r.framebuffer {
		return fmt.Errorf("clear: %w", device.ErrNoFramebuffer)
	}
	r.dev.record(Op{Kind: OpClear, Color: color})
	return nil
}

// SetVertexBuffer binds a vertex buffer to the given slot.
func (r *Recorder) SetVertexBuffer(slot uint32, buf device.Buffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("set vertex buffer: %w", err)
	}
	if buf == nil {
		return fmt.Errorf("set vertex buffer: %w", device.ErrNilBuffer)
	}
	if buf.Usage() != device.BufferUsageVertex {
		return fmt.Errorf("set vertex buffer: buffer has %s usage", buf.Usage())
	}
	r.dev.record(Op{Kind: OpSetVertexBuffer, Slot: slot, Buffer: bufferLabel(buf)})
	return nil
}

// SetIndexBuffer binds the index buffer.
func (r *Recorder) SetIndexBuffer(buf device.Buffer, format gputypes.IndexFormat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("set index buffer: %w", err)
	}
	if buf == nil {
		return fmt.Errorf("set index buffer: %w", device.ErrNilBuffer)
	}
	if buf.Usage() != device.BufferUsageIndex {
		return fmt.Errorf("set index buffer: buffer has %s usage", buf.Usage())
	}
	r.dev.record(Op{Kind: OpSetIndexBuffer, Buffer: bufferLabel(buf), Format: format})
	return nil
}

// SetPipeline binds the render pipeline.
func (r *Recorder) SetPipeline(p device.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("set pipeline: %w", err)
	}
	if p == nil {
		return fmt.Errorf("set pipeline: %w", device.ErrNilPipeline)
	}
	r.dev.record(Op{Kind: OpSetPipeline})
	return nil
}

// DrawIndexed records an indexed draw with its exact arguments.
func (r *Recorder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("draw indexed: %w", err)
	}
	if !r.framebuffer {
		return fmt.Errorf("draw indexed: %w", device.ErrNoFramebuffer)
	}
	r.dev.record(Op{Kind: OpDrawIndexed, Draw: DrawArgs{
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		FirstIndex:    firstIndex,
		BaseVertex:    baseVertex,
		FirstInstance: firstInstance,
	}})
	return nil
}

// End finishes the frame and returns the recorder to idle.
func (r *Recorder) End() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkRecording(); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	r.state = RecorderIdle
	r.pending = true
	r.dev.record(Op{Kind: OpEnd})
	return nil
}

// Submit hands the finished frame to the device queue.
func (r *Recorder) Submit() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return device.ErrReleased
	}
	if r.state == RecorderRecording {
		return fmt.Errorf("submit: %w", device.ErrFrameOpen)
	}
	if !r.pending {
		return fmt.Errorf("submit: %w", device.ErrNoFrame)
	}
	r.pending = false
	r.dev.noteSubmit()
	return nil
}

// Release journals the recorder release.
func (r *Recorder) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		r.dev.violate("headless: recorder released twice")
		return
	}
	r.released = true
	r.dev.journalRelease("recorder")
}

func bufferLabel(buf device.Buffer) string {
	if b, ok := buf.(*buffer); ok {
		return b.label
	}
	return ""
}
