package wgpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Provider exposes the device handles through the gpucontext
// interface so other gogpu libraries can share this device instead of
// creating their own.
type Provider struct {
	dev *Device
}

// ContextProvider returns a gpucontext view of the device.
func (d *Device) ContextProvider() *Provider {
	return &Provider{dev: d}
}

// contextDevice adapts the WebGPU device to the gpucontext.Device
// method set.
type contextDevice struct {
	raw *wgpu.Device
}

func (d contextDevice) Poll(wait bool) { d.raw.Poll(wait, nil) }
func (d contextDevice) Destroy()       { d.raw.Release() }

// Device returns the underlying WebGPU device handle.
func (p *Provider) Device() gpucontext.Device {
	return contextDevice{raw: p.dev.device}
}

// Queue returns the underlying queue handle.
func (p *Provider) Queue() gpucontext.Queue { return p.dev.queue }

// Adapter returns the underlying adapter handle.
func (p *Provider) Adapter() gpucontext.Adapter { return p.dev.adapter }

// SurfaceFormat returns the configured surface color format.
func (p *Provider) SurfaceFormat() gputypes.TextureFormat {
	return p.dev.SurfaceFormat()
}

// Ensure Provider implements gpucontext.DeviceProvider.
var _ gpucontext.DeviceProvider = (*Provider)(nil)
