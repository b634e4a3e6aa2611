// Package headless provides a recording device backend with no GPU
// behind it. Every frame command lands in an ordered op log and every
// resource release lands in a journal, so tests can assert the exact
// command sequence and teardown order a renderer produces.
//
// Shader compilation still validates WGSL, so malformed source fails
// here the same way it would on a real backend.
//
// The backend registers itself under the name "headless":
//
//	import _ "github.com/gogpu/quad/device/headless"
package headless
