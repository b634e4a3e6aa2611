package wgpu

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/quad"
	"github.com/gogpu/quad/device"
)

func init() {
	device.Register(device.BackendWGPU, New)
}

// SurfaceSource is the window capability this backend needs:
// something that can hand over a platform surface descriptor.
// window/glfw implements it.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// Device is the WebGPU-backed implementation of device.Device.
type Device struct {
	mu sync.Mutex

	label    string
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	width, height uint32

	depthFormat  wgpu.TextureFormat
	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	// frame state between acquire and present
	frameTexture *wgpu.Texture
	frameView    *wgpu.TextureView

	released bool
}

// New creates a device rendering into the window's surface. The
// options Window must implement SurfaceSource.
func New(o *device.Options) (device.Device, error) {
	if o == nil || o.Window == nil {
		return nil, device.ErrNoWindow
	}
	src, ok := o.Window.(SurfaceSource)
	if !ok {
		return nil, fmt.Errorf("%w: window %T cannot produce a surface descriptor", device.ErrNoWindow, o.Window)
	}

	label := o.Label
	if label == "" {
		label = "quad"
	}

	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(src.SurfaceDescriptor())

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: request adapter: %w", err)
	}

	dev, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: label,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: request device: %w", err)
	}
	queue := dev.GetQueue()

	caps := surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 {
		return nil, fmt.Errorf("wgpu: surface reports no formats")
	}
	format := caps.Formats[0]

	alphaMode := wgpu.CompositeAlphaModeAuto
	if len(caps.AlphaModes) > 0 {
		alphaMode = caps.AlphaModes[0]
	}

	presentMode := wgpu.PresentModeImmediate
	if o.VSync {
		presentMode = wgpu.PresentModeFifo
	}

	width, height := o.Width, o.Height
	if width == 0 {
		width = 960
	}
	if height == 0 {
		height = 540
	}

	surface.Configure(adapter, dev, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       width,
		Height:      height,
		PresentMode: presentMode,
		AlphaMode:   alphaMode,
	})

	// WebGPU is already y-up with zero-to-one depth; the convention
	// preferences in the options are satisfied as-is.
	if o.PreferDepthRangeZeroToOne || o.PreferClipSpaceYUp {
		quad.Logger().Debug("wgpu: native clip conventions match requested preferences")
	}

	quad.Logger().Info("wgpu device created",
		"label", label, "format", format, "size", fmt.Sprintf("%dx%d", width, height))

	return &Device{
		label:         label,
		instance:      instance,
		surface:       surface,
		adapter:       adapter,
		device:        dev,
		queue:         queue,
		surfaceFormat: format,
		width:         width,
		height:        height,
	}, nil
}

// Name returns the registry name of the backend.
func (d *Device) Name() string { return device.BackendWGPU }

// SurfaceFormat returns the configured surface color format.
func (d *Device) SurfaceFormat() gputypes.TextureFormat {
	return fromTextureFormat(d.surfaceFormat)
}

// CreateBuffer creates a static GPU buffer and uploads its contents
// through the queue.
func (d *Device) CreateBuffer(desc *device.BufferDescriptor) (device.Buffer, error) {
	if desc == nil || len(desc.Contents) == 0 {
		return nil, device.ErrEmptyBuffer
	}

	usage := wgpu.BufferUsageCopyDst
	switch desc.Usage {
	case device.BufferUsageVertex:
		usage |= wgpu.BufferUsageVertex
	case device.BufferUsageIndex:
		usage |= wgpu.BufferUsageIndex
	}

	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  uint64(len(desc.Contents)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s buffer: %w", desc.Usage, err)
	}
	d.queue.WriteBuffer(buf, 0, desc.Contents)

	quad.Logger().Debug("buffer created",
		"label", desc.Label, "usage", desc.Usage, "size", len(desc.Contents))
	return &buffer{raw: buf, usage: desc.Usage, size: uint64(len(desc.Contents))}, nil
}

// CreateShader validates the WGSL and compiles a shader module.
func (d *Device) CreateShader(src quad.ShaderSource) (device.Shader, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: src.Stage.String(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: src.Source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile %s shader: %w", src.Stage, err)
	}
	return &shader{raw: module, stage: src.Stage, entryPoint: src.EntryPoint}, nil
}

// CreatePipeline builds the render pipeline and the depth target it
// renders against.
func (d *Device) CreatePipeline(cfg quad.PipelineConfig, vertex, fragment device.Shader) (device.Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	vs, ok := vertex.(*shader)
	if !ok || vs == nil {
		return nil, device.ErrNilShader
	}
	fs, ok := fragment.(*shader)
	if !ok || fs == nil {
		return nil, device.ErrNilShader
	}
	if vs.stage != quad.StageVertex || fs.stage != quad.StageFragment {
		return nil, device.ErrStageMismatch
	}

	var depthStencil *wgpu.DepthStencilState
	if cfg.DepthTestEnabled {
		depthFormat := toTextureFormat(cfg.DepthFormat)
		if err := d.ensureDepthTarget(depthFormat); err != nil {
			return nil, err
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: cfg.DepthWriteEnabled,
			DepthCompare:      toCompareFunction(cfg.DepthCompare),
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	blend := wgpu.BlendState{
		Color: toBlendComponent(cfg.Blend.Color),
		Alpha: toBlendComponent(cfg.Blend.Alpha),
	}

	pl, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: d.label,
		Vertex: wgpu.VertexState{
			Module:     vs.raw,
			EntryPoint: vs.entryPoint,
			Buffers:    toVertexLayouts(cfg.VertexLayout),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs.raw,
			EntryPoint: fs.entryPoint,
			Targets: []wgpu.ColorTargetState{{
				Format:    d.surfaceFormat,
				Blend:     &blend,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  toTopology(cfg.Topology),
			FrontFace: toFrontFace(cfg.FrontFace),
			CullMode:  toCullMode(cfg.CullMode),
		},
		DepthStencil: depthStencil,
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create render pipeline: %w", err)
	}

	quad.Logger().Info("render pipeline built", "label", d.label)
	return &pipeline{raw: pl}, nil
}

// ensureDepthTarget (re)creates the depth texture matching the
// surface size.
func (d *Device) ensureDepthTarget(format wgpu.TextureFormat) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.depthView != nil && d.depthFormat == format {
		return nil
	}
	d.releaseDepthLocked()

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "depth",
		Size: wgpu.Extent3D{
			Width:              d.width,
			Height:             d.height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create depth texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("wgpu: create depth view: %w", err)
	}
	d.depthTexture = tex
	d.depthView = view
	d.depthFormat = format
	return nil
}

func (d *Device) releaseDepthLocked() {
	if d.depthView != nil {
		d.depthView.Release()
		d.depthView = nil
	}
	if d.depthTexture != nil {
		d.depthTexture.Release()
		d.depthTexture = nil
	}
}

// CreateRecorder creates the frame command recorder.
func (d *Device) CreateRecorder() (device.Recorder, error) {
	if d.released {
		return nil, device.ErrReleased
	}
	return &recorder{dev: d}, nil
}

// acquireFrame grabs the next swapchain texture and view.
func (d *Device) acquireFrame() (*wgpu.TextureView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frameTexture != nil {
		return nil, fmt.Errorf("wgpu: previous frame not yet presented")
	}
	tex, err := d.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("wgpu: acquire surface texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("wgpu: create surface view: %w", err)
	}
	d.frameTexture = tex
	d.frameView = view
	return view, nil
}

// Present shows the last submitted frame and releases the acquired
// surface texture.
func (d *Device) Present() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return device.ErrReleased
	}
	if d.frameTexture == nil {
		return device.ErrNoFrame
	}
	d.surface.Present()
	d.frameView.Release()
	d.frameTexture.Release()
	d.frameView = nil
	d.frameTexture = nil
	return nil
}

// Release frees the device and everything it still owns.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return
	}
	d.released = true

	if d.frameView != nil {
		d.frameView.Release()
		d.frameView = nil
	}
	if d.frameTexture != nil {
		d.frameTexture.Release()
		d.frameTexture = nil
	}
	d.releaseDepthLocked()
	if d.queue != nil {
		d.queue.Release()
	}
	if d.device != nil {
		d.device.Release()
	}
	if d.surface != nil {
		d.surface.Release()
	}
	if d.adapter != nil {
		d.adapter.Release()
	}
	if d.instance != nil {
		d.instance.Release()
	}
	quad.Logger().Debug("wgpu device released", "label", d.label)
}
