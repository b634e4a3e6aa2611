// Package device defines the graphics device abstraction used by the
// quad renderer and the registry that selects a backend.
//
// A Device owns GPU resources: buffers, shaders, one pipeline, and a
// command Recorder. Backends register themselves in init() functions
// (import them for side effects) and are selected by name with [Get]
// or by priority with [Default]:
//
//	import (
//	    _ "github.com/gogpu/quad/device/wgpu"
//	    _ "github.com/gogpu/quad/device/headless"
//	)
//
//	dev, err := device.Default(&device.Options{Window: win, Width: 960, Height: 540})
//
// The Recorder is a two-state machine: idle or recording. Begin moves
// it to recording, End back to idle, and Submit hands the finished
// frame to the device queue. Every operation checks the state and
// returns an error when called out of order; all errors are fatal to
// the frame.
package device
