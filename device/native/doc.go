// Package native implements an offscreen device backend on the gogpu
// hal layer. It renders into its own color and depth targets instead
// of a window surface; ReadPixels copies the color target back to the
// CPU, which makes the backend usable for headless rendering and
// image comparison.
//
// The backend registers itself under the name "native":
//
//	import _ "github.com/gogpu/quad/device/native"
package native
