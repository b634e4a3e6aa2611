package native

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/quad"
	"github.com/gogpu/quad/device"
)

func init() {
	device.Register(device.BackendNative, New)
}

// Device is the hal-backed offscreen implementation of device.Device.
type Device struct {
	mu sync.Mutex

	label    string
	instance hal.Instance
	dev      hal.Device
	queue    hal.Queue

	width, height uint32
	colorFormat   gputypes.TextureFormat

	colorTex  hal.Texture
	colorView hal.TextureView
	depthTex  hal.Texture
	depthView hal.TextureView

	// staging receives the color target every frame for ReadPixels.
	staging        hal.Buffer
	stagingRowSize uint32

	released bool
}

// New creates an offscreen device on the first usable Vulkan adapter.
// The options Window is ignored; Width and Height size the render
// targets.
func New(o *device.Options) (device.Device, error) {
	label := "native"
	var width, height uint32 = 960, 540
	if o != nil {
		if o.Label != "" {
			label = o.Label
		}
		if o.Width != 0 {
			width = o.Width
		}
		if o.Height != 0 {
			height = o.Height
		}
	}

	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("native: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return nil, fmt.Errorf("native: no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("native: open device: %w", err)
	}

	d := &Device{
		label:       label,
		instance:    instance,
		dev:         openDev.Device,
		queue:       openDev.Queue,
		width:       width,
		height:      height,
		colorFormat: gputypes.TextureFormatBGRA8Unorm,
	}
	if err := d.createTargets(); err != nil {
		return nil, err
	}

	quad.Logger().Info("native device initialized",
		"adapter", selected.Info.Name, "size", fmt.Sprintf("%dx%d", width, height))
	return d, nil
}

// createTargets builds the offscreen color and depth textures and the
// readback staging buffer.
func (d *Device) createTargets() error {
	size := hal.Extent3D{Width: d.width, Height: d.height, DepthOrArrayLayers: 1}

	colorTex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label:         d.label + "_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        d.colorFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("native: create color texture: %w", err)
	}
	d.colorTex = colorTex

	colorView, err := d.dev.CreateTextureView(colorTex, &hal.TextureViewDescriptor{
		Label: d.label + "_color_view",
	})
	if err != nil {
		return fmt.Errorf("native: create color view: %w", err)
	}
	d.colorView = colorView

	depthTex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label:         d.label + "_depth",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatDepth24PlusStencil8,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("native: create depth texture: %w", err)
	}
	d.depthTex = depthTex

	depthView, err := d.dev.CreateTextureView(depthTex, &hal.TextureViewDescriptor{
		Label: d.label + "_depth_view",
	})
	if err != nil {
		return fmt.Errorf("native: create depth view: %w", err)
	}
	d.depthView = depthView

	// Copy pitch must be 256-byte aligned for texture-to-buffer
	// copies.
	bytesPerRow := d.width * 4
	const copyPitchAlignment = 256
	d.stagingRowSize = (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)

	staging, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: d.label + "_staging",
		Size:  uint64(d.stagingRowSize) * uint64(d.height),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("native: create staging buffer: %w", err)
	}
	d.staging = staging
	return nil
}

// Name returns the registry name of the backend.
func (d *Device) Name() string { return device.BackendNative }

// SurfaceFormat returns the offscreen color target format.
func (d *Device) SurfaceFormat() gputypes.TextureFormat { return d.colorFormat }

// CreateBuffer creates a static buffer. Vertex contents are uploaded
// to the GPU; index contents stay CPU-side because indexed strip
// draws are lowered to plain draws at encode time.
func (d *Device) CreateBuffer(desc *device.BufferDescriptor) (device.Buffer, error) {
	if desc == nil || len(desc.Contents) == 0 {
		return nil, device.ErrEmptyBuffer
	}

	contents := make([]byte, len(desc.Contents))
	copy(contents, desc.Contents)

	b := &buffer{dev: d, label: desc.Label, usage: desc.Usage, contents: contents}
	if desc.Usage == device.BufferUsageVertex {
		raw, err := d.uploadBuffer(desc.Label, contents, gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
		if err != nil {
			return nil, err
		}
		b.raw = raw
	}
	return b, nil
}

func (d *Device) uploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create %s: %w", label, err)
	}
	d.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// CreateShader validates the WGSL and compiles a hal shader module.
func (d *Device) CreateShader(src quad.ShaderSource) (device.Shader, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	module, err := d.dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: src.Stage.String(),
		Source: hal.ShaderSource{
			WGSL: src.Source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("native: compile %s shader: %w", src.Stage, err)
	}
	return &shader{dev: d, raw: module, stage: src.Stage, entryPoint: src.EntryPoint}, nil
}

// CreatePipeline builds the render pipeline against the offscreen
// targets.
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

	layout, err := d.dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: d.label + "_pipe_layout",
	})
	if err != nil {
		return nil, fmt.Errorf("native: create pipeline layout: %w", err)
	}

	var depthStencil *hal.DepthStencilState
	if cfg.DepthTestEnabled {
		depthStencil = &hal.DepthStencilState{
			Format:            gputypes.TextureFormatDepth24PlusStencil8,
			DepthWriteEnabled: cfg.DepthWriteEnabled,
			DepthCompare:      cfg.DepthCompare,
			StencilFront: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilBack: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilReadMask:  0xFF,
			StencilWriteMask: 0x00,
		}
	}

	pl, err := d.dev.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  d.label + "_pipeline",
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     vs.raw,
			EntryPoint: vs.entryPoint,
			Buffers:    cfg.VertexLayout,
		},
		Fragment: &hal.FragmentState{
			Module:     fs.raw,
			EntryPoint: fs.entryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    d.colorFormat,
					Blend:     &cfg.Blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: depthStencil,
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  cfg.Topology,
			FrontFace: cfg.FrontFace,
			CullMode:  cfg.CullMode,
		},
	})
	if err != nil {
		d.dev.DestroyPipelineLayout(layout)
		return nil, fmt.Errorf("native: create render pipeline: %w", err)
	}

	quad.Logger().Info("render pipeline built", "label", d.label)
	return &pipeline{dev: d, raw: pl, layout: layout, stride: uint64(cfg.VertexLayout[0].ArrayStride)}, nil
}

// CreateRecorder creates the frame command recorder.
func (d *Device) CreateRecorder() (device.Recorder, error) {
	if d.released {
		return nil, device.ErrReleased
	}
	return &recorder{dev: d}, nil
}

// Present is a no-op for the offscreen backend; the frame is already
// in the color target when Submit returns.
func (d *Device) Present() error {
	if d.released {
		return device.ErrReleased
	}
	quad.Logger().Debug("native: present (offscreen, no-op)")
	return nil
}

// ReadPixels returns the color target as tightly packed RGBA bytes.
// Valid after a submitted frame.
func (d *Device) ReadPixels() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, device.ErrReleased
	}

	rowSize := d.width * 4
	raw := make([]byte, uint64(d.stagingRowSize)*uint64(d.height))
	if err := d.queue.ReadBuffer(d.staging, 0, raw); err != nil {
		return nil, fmt.Errorf("native: readback: %w", err)
	}

	out := make([]byte, uint64(rowSize)*uint64(d.height))
	for row := uint32(0); row < d.height; row++ {
		src := raw[row*d.stagingRowSize : row*d.stagingRowSize+rowSize]
		dst := out[row*rowSize : (row+1)*rowSize]
		// BGRA to RGBA.
		for i := uint32(0); i < rowSize; i += 4 {
			dst[i+0] = src[i+2]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i+0]
			dst[i+3] = src[i+3]
		}
	}
	return out, nil
}

// Size returns the render target dimensions.
func (d *Device) Size() (uint32, uint32) { return d.width, d.height }

// Release destroys the device-owned targets and the device.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return
	}
	d.released = true

	if d.staging != nil {
		d.dev.DestroyBuffer(d.staging)
		d.staging = nil
	}
	if d.depthView != nil {
		d.dev.DestroyTextureView(d.depthView)
		d.depthView = nil
	}
	if d.colorView != nil {
		d.dev.DestroyTextureView(d.colorView)
		d.colorView = nil
	}
	if d.depthTex != nil {
		d.dev.DestroyTexture(d.depthTex)
		d.depthTex = nil
	}
	if d.colorTex != nil {
		d.dev.DestroyTexture(d.colorTex)
		d.colorTex = nil
	}
	quad.Logger().Debug("native device released", "label", d.label)
}
