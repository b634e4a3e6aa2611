// Package window abstracts the native window a renderer draws into.
//
// The render loop only needs three things from a window: pump its
// event queue, ask whether it still exists, and know its size. The
// glfw subpackage provides the real implementation; [Stub] drives
// loop tests without a display.
package window

// Config configures window creation.
type Config struct {
	// Title is the window title.
	Title string

	// X and Y position the window on screen. Zero values let the
	// platform choose.
	X, Y int

	// Width and Height are the client area size in pixels.
	Width, Height int
}

// Window is a native window. All methods must be called from the
// thread that created the window.
type Window interface {
	// PumpEvents processes pending window system events.
	PumpEvents()

	// Exists reports whether the window is still open. Once it
	// returns false it never returns true again.
	Exists() bool

	// Size returns the current client area size in pixels.
	Size() (width, height uint32)

	// Release destroys the window.
	Release()
}
