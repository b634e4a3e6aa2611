// Package wgpu implements the windowed device backend on WebGPU.
//
// The backend needs a window that can produce a platform surface
// descriptor (window/glfw does); it configures the surface, owns the
// depth target, and presents each submitted frame. It registers
// itself under the name "wgpu":
//
//	import _ "github.com/gogpu/quad/device/wgpu"
package wgpu
