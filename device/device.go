package device

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/quad"
)

// Backend names known to the registry.
const (
	// BackendWGPU is the windowed WebGPU backend (device/wgpu).
	BackendWGPU = "wgpu"
	// BackendNative is the offscreen hal backend (device/native).
	BackendNative = "native"
	// BackendHeadless is the recording backend used by tests
	// (device/headless).
	BackendHeadless = "headless"
)

// Options configures device creation.
type Options struct {
	// Label is attached to the device and its resources for
	// debugging.
	Label string

	// Width and Height are the initial framebuffer dimensions in
	// pixels.
	Width  uint32
	Height uint32

	// Window is the backend-specific window handle. Windowed
	// backends assert it to their surface-source interface;
	// offscreen backends ignore it.
	Window any

	// VSync synchronizes presentation with the vertical blank.
	VSync bool

	// PreferDepthRangeZeroToOne requests a 0..1 clip-space depth
	// range. WebGPU-family backends already use this convention;
	// a backend that cannot honor it logs and continues.
	PreferDepthRangeZeroToOne bool

	// PreferClipSpaceYUp requests y-up normalized device
	// coordinates, the WebGPU default.
	PreferClipSpaceYUp bool
}

// BufferUsage tells the backend how a buffer will be bound.
type BufferUsage int

const (
	BufferUsageVertex BufferUsage = iota
	BufferUsageIndex
)

// String returns the usage name for logs and journals.
func (u BufferUsage) String() string {
	switch u {
	case BufferUsageVertex:
		return "vertex"
	case BufferUsageIndex:
		return "index"
	default:
		return "unknown"
	}
}

// BufferDescriptor describes a static buffer. Contents are uploaded
// once at creation; the buffer is never written again.
type BufferDescriptor struct {
	Label    string
	Usage    BufferUsage
	Contents []byte
}

// Buffer is an immutable device buffer.
type Buffer interface {
	// Size returns the buffer size in bytes, exactly
	// len(descriptor.Contents).
	Size() uint64
	// Usage returns the usage the buffer was created with.
	Usage() BufferUsage
	// Release frees the buffer. Calling any other method afterwards
	// is a programming error.
	Release()
}

// Shader is a compiled shader module for one stage.
type Shader interface {
	Stage() quad.ShaderStage
	Release()
}

// Pipeline is an immutable render pipeline.
type Pipeline interface {
	Release()
}

// Recorder records one frame of commands. It is a two-state machine:
// idle between frames, recording between Begin and End. Submit is only
// valid while idle with a finished frame pending.
type Recorder interface {
	// Begin starts recording a frame.
	Begin() error
	// BindFramebuffer targets the swapchain framebuffer for the
	// frame. Must be the first command after Begin.
	BindFramebuffer() error
	// Clear clears the bound framebuffer to the given color and
	// resets the depth attachment.
	Clear(color gputypes.Color) error
	// SetVertexBuffer binds a vertex buffer to the given slot.
	SetVertexBuffer(slot uint32, buf Buffer) error
	// SetIndexBuffer binds the index buffer with its element format.
	SetIndexBuffer(buf Buffer, format gputypes.IndexFormat) error
	// SetPipeline binds the render pipeline.
	SetPipeline(p Pipeline) error
	// DrawIndexed issues an indexed draw with the bound state.
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error
	// End finishes recording and returns the recorder to idle.
	End() error
	// Submit hands the finished frame to the device queue and
	// clears the pending frame.
	Submit() error
	// Release frees the recorder.
	Release()
}

// Device is a graphics device bound to one output surface.
type Device interface {
	// Name returns the backend name the device was created from.
	Name() string
	// CreateBuffer creates and fills a static buffer.
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)
	// CreateShader compiles a shader stage from source.
	CreateShader(src quad.ShaderSource) (Shader, error)
	// CreatePipeline builds the immutable render pipeline. The
	// shaders may be released once this returns.
	CreatePipeline(cfg quad.PipelineConfig, vertex, fragment Shader) (Pipeline, error)
	// CreateRecorder creates the frame command recorder.
	CreateRecorder() (Recorder, error)
	// SurfaceFormat returns the color format of the output surface.
	SurfaceFormat() gputypes.TextureFormat
	// Present shows the last submitted frame.
	Present() error
	// Release frees the device. All resources created from it must
	// be released first.
	Release()
}
