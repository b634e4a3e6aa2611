// Package glfw implements window.Window on top of GLFW. The window is
// created without a client API so the surface can be driven by WebGPU.
//
// GLFW requires that all calls happen on the main OS thread; callers
// must lock the main goroutine with runtime.LockOSThread before
// creating a window.
package glfw

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/quad/window"
)

// Window is a GLFW-backed native window.
type Window struct {
	win *glfw.Window
}

// CreateWindow initializes GLFW and opens a window. Zero width or
// height fall back to 960x540; an empty title falls back to "quad".
func CreateWindow(cfg window.Config) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw: init: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	width, height := cfg.Width, cfg.Height
	if width <= 0 {
		width = 960
	}
	if height <= 0 {
		height = 540
	}
	title := cfg.Title
	if title == "" {
		title = "quad"
	}

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfw: create window: %w", err)
	}
	if cfg.X != 0 || cfg.Y != 0 {
		win.SetPos(cfg.X, cfg.Y)
	}
	return &Window{win: win}, nil
}

// PumpEvents processes pending GLFW events.
func (w *Window) PumpEvents() { glfw.PollEvents() }

// Exists reports whether the window is still open.
func (w *Window) Exists() bool { return !w.win.ShouldClose() }

// Size returns the framebuffer size in pixels, which can differ from
// the configured size on high-DPI displays.
func (w *Window) Size() (uint32, uint32) {
	width, height := w.win.GetFramebufferSize()
	return uint32(width), uint32(height)
}

// SurfaceDescriptor returns the platform surface descriptor the wgpu
// device backend renders into.
func (w *Window) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w.win)
}

// Release destroys the window and terminates GLFW.
func (w *Window) Release() {
	w.win.Destroy()
	glfw.Terminate()
}

var _ window.Window = (*Window)(nil)
