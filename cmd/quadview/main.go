// Command quadview opens a window and renders a static colored quad
// until the window is closed.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/gogpu/quad"
	"github.com/gogpu/quad/device"
	_ "github.com/gogpu/quad/device/wgpu"
	"github.com/gogpu/quad/render"
	"github.com/gogpu/quad/window"
	"github.com/gogpu/quad/window/glfw"
)

func init() {
	// The window and its surface must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	var (
		width   = flag.Int("width", 960, "window width in pixels")
		height  = flag.Int("height", 540, "window height in pixels")
		title   = flag.String("title", "quad", "window title")
		backend = flag.String("backend", "", "device backend (default: best available)")
		vsync   = flag.Bool("vsync", true, "synchronize presentation with the display")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		quad.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	win, err := glfw.CreateWindow(window.Config{
		Title:  *title,
		Width:  *width,
		Height: *height,
	})
	if err != nil {
		log.Fatalf("create window: %v", err)
	}

	w, h := win.Size()
	opts := &device.Options{
		Label:  "quadview",
		Width:  w,
		Height: h,
		Window: win,
		VSync:  *vsync,
	}
	var dev device.Device
	if *backend != "" {
		dev, err = device.Get(*backend, opts)
	} else {
		dev, err = device.Default(opts)
	}
	if err != nil {
		win.Release()
		log.Fatalf("create device: %v", err)
	}

	r, err := render.New(dev)
	if err != nil {
		dev.Release()
		win.Release()
		log.Fatalf("create renderer: %v", err)
	}

	if err := r.Run(win); err != nil {
		log.Fatalf("render: %v", err)
	}
	r.Release()
	win.Release()
}
