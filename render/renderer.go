package render

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/quad"
	"github.com/gogpu/quad/device"
	"github.com/gogpu/quad/window"
)

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := render.New(dev, render.WithClearColor(gputypes.Color{A: 1}))
type Option func(*options)

type options struct {
	mesh       quad.Mesh
	cfg        quad.PipelineConfig
	vertex     quad.ShaderSource
	fragment   quad.ShaderSource
	clearColor gputypes.Color
}

func defaultRendererOptions() options {
	return options{
		mesh:       quad.QuadMesh(),
		cfg:        quad.DefaultPipelineConfig(),
		vertex:     quad.VertexShader(),
		fragment:   quad.FragmentShader(),
		clearColor: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
	}
}

// WithMesh replaces the built-in quad geometry.
func WithMesh(m quad.Mesh) Option {
	return func(o *options) { o.mesh = m }
}

// WithClearColor sets the per-frame clear color.
func WithClearColor(c gputypes.Color) Option {
	return func(o *options) { o.clearColor = c }
}

// WithPipelineConfig replaces the default pipeline state.
func WithPipelineConfig(cfg quad.PipelineConfig) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithShaders replaces the built-in WGSL shader pair.
func WithShaders(vertex, fragment quad.ShaderSource) Option {
	return func(o *options) { o.vertex = vertex; o.fragment = fragment }
}

// Renderer owns the five device resources of the quad demo and replays
// one fixed frame per call to RenderFrame.
type Renderer struct {
	dev  device.Device
	mesh quad.Mesh

	vertexBuf device.Buffer
	indexBuf  device.Buffer
	pipeline  device.Pipeline
	recorder  device.Recorder

	clearColor gputypes.Color
	frames     uint64
	released   bool
}

// New creates the renderer and all its device resources. Creation
// order is fixed: vertex buffer, index buffer, shaders, pipeline,
// recorder. The shaders are released as soon as the pipeline holds
// them. On any failure New unwinds the resources created so far and
// returns the error.
func New(dev device.Device, opts ...Option) (*Renderer, error) {
	if dev == nil {
		return nil, fmt.Errorf("render: nil device")
	}
	o := defaultRendererOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.mesh.Validate(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	var lc lifecycle
	r := &Renderer{dev: dev, mesh: o.mesh, clearColor: o.clearColor}

	vb, err := dev.CreateBuffer(&device.BufferDescriptor{
		Label:    "quad_vertices",
		Usage:    device.BufferUsageVertex,
		Contents: o.mesh.VertexBytes(),
	})
	if err != nil {
		lc.unwind()
		return nil, fmt.Errorf("render: create vertex buffer: %w", err)
	}
	r.vertexBuf = vb
	lc.track("vertex buffer", vb.Release)

	ib, err := dev.CreateBuffer(&device.BufferDescriptor{
		Label:    "quad_indices",
		Usage:    device.BufferUsageIndex,
		Contents: o.mesh.IndexBytes(),
	})
	if err != nil {
		lc.unwind()
		return nil, fmt.Errorf("render: create index buffer: %w", err)
	}
	r.indexBuf = ib
	lc.track("index buffer", ib.Release)

	vs, err := dev.CreateShader(o.vertex)
	if err != nil {
		lc.unwind()
		return nil, fmt.Errorf("render: compile vertex shader: %w", err)
	}
	lc.track("vertex shader", vs.Release)

	fs, err := dev.CreateShader(o.fragment)
	if err != nil {
		lc.unwind()
		return nil, fmt.Errorf("render: compile fragment shader: %w", err)
	}
	lc.track("fragment shader", fs.Release)

	pipe, err := dev.CreatePipeline(o.cfg, vs, fs)
	if err != nil {
		lc.unwind()
		return nil, fmt.Errorf("render: create pipeline: %w", err)
	}

	// The pipeline holds the compiled stages; the modules are not
	// needed past this point. Untrack them so a later unwind does not
	// release them a second time.
	fs.Release()
	lc.pop()
	vs.Release()
	lc.pop()

	r.pipeline = pipe
	lc.track("pipeline", pipe.Release)

	rec, err := dev.CreateRecorder()
	if err != nil {
		lc.unwind()
		return nil, fmt.Errorf("render: create recorder: %w", err)
	}
	r.recorder = rec
	lc.disarm()

	quad.Logger().Info("renderer ready",
		"backend", dev.Name(),
		"vertexBytes", vb.Size(),
		"indexBytes", ib.Size())
	return r, nil
}

// RenderFrame records, submits and presents one frame. Every frame is
// the same fixed command sequence over the static quad.
func (r *Renderer) RenderFrame() error {
	if r.released {
		return fmt.Errorf("render: %w", device.ErrReleased)
	}
	rec := r.recorder

	if err := rec.Begin(); err != nil {
		return fmt.Errorf("render: frame %d: %w", r.frames, err)
	}
	if err := rec.BindFramebuffer(); err != nil {
		return fmt.Errorf("render: frame %d: %w", r.frames, err)
	}
	if err := rec.Clear(r.clearColor); err != nil {
		return fmt.Errorf("render: frame %d: %w", r.frames, err)
	}
	if err := rec.SetVertexBuffer(0, r.vertexBuf); err != nil {
		return fmt.Errorf("render: frame %d: %w", r.frames, err)
	}
	if err := rec.SetIndexBuffer(r.indexBuf, gputypes.IndexFormatUint16); err != nil {
		return fmt.Errorf("render: frame %d: %w", r.frames, err)
	}
	if err := rec.SetPipeline(r.pipeline); err != nil {
		return fmt.Errorf("render: frame %d: %w", r.frames, err)
	}
	if err := rec.DrawIndexed(uint32(len(r.mesh.Indices)), 1, 0, 0, 0); err != nil {
		return fmt.Errorf("render: frame %d: %w", r.frames, err)
	}
	if err := rec.End(); err != nil {
		return fmt.Errorf("render: frame %d: %w", r.frames, err)
	}
	if err := rec.Submit(); err != nil {
		return fmt.Errorf("render: frame %d: %w", r.frames, err)
	}
	if err := r.dev.Present(); err != nil {
		return fmt.Errorf("render: frame %d: %w", r.frames, err)
	}
	r.frames++
	return nil
}

// Run renders frames until the window no longer exists. It must be
// called from the thread the window was created on.
func (r *Renderer) Run(win window.Window) error {
	if win == nil {
		return fmt.Errorf("render: %w", device.ErrNoWindow)
	}
	for win.Exists() {
		win.PumpEvents()
		if err := r.RenderFrame(); err != nil {
			return err
		}
	}
	quad.Logger().Info("window closed", "frames", r.frames)
	return nil
}

// Frames returns the number of frames rendered so far.
func (r *Renderer) Frames() uint64 { return r.frames }

// Release frees everything the renderer owns, then the device, in
// strict reverse dependency order: pipeline, recorder, index buffer,
// vertex buffer, device. Safe to call more than once.
func (r *Renderer) Release() {
	if r.released {
		return
	}
	r.released = true

	r.pipeline.Release()
	r.recorder.Release()
	r.indexBuf.Release()
	r.vertexBuf.Release()
	r.dev.Release()
	quad.Logger().Debug("renderer released", "frames", r.frames)
}
