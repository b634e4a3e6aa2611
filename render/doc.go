// Package render drives the quad demo: it owns the device resources
// for one colored quad and replays the same fixed frame until the
// window goes away.
//
// Resources are created in a fixed order (buffers, shaders, pipeline,
// recorder) and released in reverse dependency order. Every error is
// fatal to the demo; there is no recovery path.
package render
