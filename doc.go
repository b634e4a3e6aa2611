// Package quad renders a single colored quad into a window.
//
// # Overview
//
// quad is a deliberately small rendering module: one static mesh
// (four vertices, four strip indices), one WGSL shader pair, one
// immutable pipeline, and a fixed command sequence replayed every
// frame until the window goes away. It exists to exercise the full
// resource lifecycle of a GPU renderer end to end, from device
// creation to strictly ordered teardown.
//
// The root package holds the data: [Vertex], [Mesh], [ShaderSource]
// and [PipelineConfig]. Device backends live under device/ and are
// selected through a registry; render orchestration lives in render/;
// windowing lives in window/.
//
// A minimal program:
//
//	win, err := glfw.CreateWindow(window.Config{Title: "quad", Width: 960, Height: 540})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dev, err := device.Default(&device.Options{Window: win, Width: 960, Height: 540})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r, err := render.New(dev)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Release()
//	if err := r.Run(win); err != nil {
//	    log.Fatal(err)
//	}
//
// All errors are fatal to the caller: nothing in this module retries
// or falls back after a failed operation.
package quad
