package headless

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/quad"
	"github.com/gogpu/quad/device"
)

func init() {
	device.Register(device.BackendHeadless, New)
}

// Device is the recording backend. It implements device.Device and
// additionally exposes the op log, the release journal, and any
// lifecycle violations it observed.
type Device struct {
	mu sync.Mutex

	label      string
	ops        []Op
	journal    []string
	violations []error
	released   bool
	presented  int
	submitted  int
}

// New creates a recording device. It never fails: there is no GPU to
// be missing.
func New(o *device.Options) (device.Device, error) {
	label := "headless"
	if o != nil && o.Label != "" {
		label = o.Label
	}
	quad.Logger().Debug("headless device created", "label", label)
	return &Device{label: label}, nil
}

// Name returns the registry name of the backend.
func (d *Device) Name() string { return device.BackendHeadless }

// CreateBuffer records a static buffer. The contents are retained so
// tests can inspect exactly what would have been uploaded.
func (d *Device) CreateBuffer(desc *device.BufferDescriptor) (device.Buffer, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if desc == nil || len(desc.Contents) == 0 {
		return nil, device.ErrEmptyBuffer
	}
	label := desc.Label
	if label == "" {
		label = "buffer:" + desc.Usage.String()
	}
	contents := make([]byte, len(desc.Contents))
	copy(contents, desc.Contents)
	return &buffer{dev: d, label: label, usage: desc.Usage, contents: contents}, nil
}

// CreateShader validates the WGSL source and records a shader module.
// Malformed source fails here, before any frame is recorded.
func (d *Device) CreateShader(src quad.ShaderSource) (device.Shader, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}
	return &shader{dev: d, stage: src.Stage}, nil
}

// CreatePipeline records an immutable pipeline.
func (d *Device) CreatePipeline(cfg quad.PipelineConfig, vertex, fragment device.Shader) (device.Pipeline, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if vertex == nil || fragment == nil {
		return nil, device.ErrNilShader
	}
	if vertex.Stage() != quad.StageVertex || fragment.Stage() != quad.StageFragment {
		return nil, device.ErrStageMismatch
	}
	return &pipeline{dev: d, config: cfg}, nil
}

// CreateRecorder creates the frame recorder. The device keeps no
// reference; the recorder appends to the device's op log.
func (d *Device) CreateRecorder() (device.Recorder, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	return &Recorder{dev: d}, nil
}

// SurfaceFormat returns the pretend surface format.
func (d *Device) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

// Present records a present.
func (d *Device) Present() error {
	if err := d.check(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = append(d.ops, Op{Kind: OpPresent})
	d.presented++
	return nil
}

// Release journals the device release. The device must be released
// last; releasing it twice is recorded as a violation.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		d.violations = append(d.violations, fmt.Errorf("headless: device released twice"))
		return
	}
	d.released = true
	d.journal = append(d.journal, "device")
}

// Ops returns a copy of the recorded operation log.
func (d *Device) Ops() []Op {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Op, len(d.ops))
	copy(out, d.ops)
	return out
}

// ResetOps clears the operation log. Release journal and violations
// are kept.
func (d *Device) ResetOps() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = nil
}

// ReleaseJournal returns the release order observed so far, one entry
// per released resource.
func (d *Device) ReleaseJournal() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.journal))
	copy(out, d.journal)
	return out
}

// Violations returns lifecycle violations observed so far, such as
// double releases or use after release.
func (d *Device) Violations() []error {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]error, len(d.violations))
	copy(out, d.violations)
	return out
}

// Presented returns how many presents were recorded.
func (d *Device) Presented() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.presented
}

// Submitted returns how many frames were submitted.
func (d *Device) Submitted() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitted
}

func (d *Device) check() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return device.ErrReleased
	}
	return nil
}

func (d *Device) record(op Op) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = append(d.ops, op)
}

func (d *Device) noteSubmit() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = append(d.ops, Op{Kind: OpSubmit})
	d.submitted++
}

func (d *Device) journalRelease(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.journal = append(d.journal, name)
}

func (d *Device) violate(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.violations = append(d.violations, fmt.Errorf(format, args...))
}
