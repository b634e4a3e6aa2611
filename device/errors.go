package device

import "errors"

var (
	// ErrNoBackend is returned when no registered backend can
	// create a device.
	ErrNoBackend = errors.New("device: no backend available")

	// ErrNotRecording is returned when a frame command is issued
	// while the recorder is idle.
	ErrNotRecording = errors.New("device: recorder is not recording")

	// ErrAlreadyRecording is returned when Begin is called twice
	// without End.
	ErrAlreadyRecording = errors.New("device: recorder is already recording")

	// ErrNoFrame is returned when Submit is called with no finished
	// frame pending.
	ErrNoFrame = errors.New("device: no recorded frame to submit")

	// ErrFrameOpen is returned when Submit is called while still
	// recording.
	ErrFrameOpen = errors.New("device: frame is still recording")

	// ErrNoFramebuffer is returned when commands are issued before
	// BindFramebuffer.
	ErrNoFramebuffer = errors.New("device: no framebuffer bound")

	// ErrNilBuffer is returned when a buffer bind is called with nil.
	ErrNilBuffer = errors.New("device: buffer is nil")

	// ErrNilPipeline is returned when SetPipeline is called with nil.
	ErrNilPipeline = errors.New("device: pipeline is nil")

	// ErrNilShader is returned when pipeline creation is missing a
	// shader stage.
	ErrNilShader = errors.New("device: shader is nil")

	// ErrEmptyBuffer is returned when a buffer is created with no
	// contents.
	ErrEmptyBuffer = errors.New("device: buffer contents are empty")

	// ErrReleased is returned when a released resource is used.
	ErrReleased = errors.New("device: resource has been released")

	// ErrNoWindow is returned when a windowed backend is created
	// without a usable window handle.
	ErrNoWindow = errors.New("device: no window handle")

	// ErrStageMismatch is returned when pipeline creation receives
	// shaders in the wrong stage slots.
	ErrStageMismatch = errors.New("device: shader stage mismatch")
)
