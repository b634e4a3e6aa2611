package headless

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/quad"
	"github.com/gogpu/quad/device"
)

func newDevice(t *testing.T) *Device {
	t.Helper()
	dev, err := New(&device.Options{Label: "test"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return dev.(*Device)
}

func TestRegisteredAsHeadless(t *testing.T) {
	if !device.IsRegistered(device.BackendHeadless) {
		t.Fatal("headless backend should self-register")
	}
	dev, err := device.Get(device.BackendHeadless, &device.Options{})
	if err != nil {
		t.Fatalf("Get(headless) error = %v", err)
	}
	if dev.Name() != device.BackendHeadless {
		t.Errorf("Name() = %q, want %q", dev.Name(), device.BackendHeadless)
	}
}

func TestCreateBufferRetainsContents(t *testing.T) {
	d := newDevice(t)
	mesh := quad.QuadMesh()

	buf, err := d.CreateBuffer(&device.BufferDescriptor{
		Label:    "vb",
		Usage:    device.BufferUsageVertex,
		Contents: mesh.VertexBytes(),
	})
	if err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	if buf.Size() != mesh.VertexByteSize() {
		t.Errorf("Size() = %d, want %d", buf.Size(), mesh.VertexByteSize())
	}
	if buf.Usage() != device.BufferUsageVertex {
		t.Errorf("Usage() = %v, want vertex", buf.Usage())
	}
}

func TestCreateBufferEmpty(t *testing.T) {
	d := newDevice(t)
	if _, err := d.CreateBuffer(&device.BufferDescriptor{Usage: device.BufferUsageVertex}); !errors.Is(err, device.ErrEmptyBuffer) {
		t.Errorf("CreateBuffer(empty) error = %v, want ErrEmptyBuffer", err)
	}
	if _, err := d.CreateBuffer(nil); !errors.Is(err, device.ErrEmptyBuffer) {
		t.Errorf("CreateBuffer(nil) error = %v, want ErrEmptyBuffer", err)
	}
}

func TestCreateShaderValidates(t *testing.T) {
	d := newDevice(t)

	sh, err := d.CreateShader(quad.VertexShader())
	if err != nil {
		t.Fatalf("CreateShader(valid) error = %v", err)
	}
	if sh.Stage() != quad.StageVertex {
		t.Errorf("Stage() = %v, want vertex", sh.Stage())
	}

	_, err = d.CreateShader(quad.ShaderSource{
		Stage:      quad.StageVertex,
		Source:     "@vertex fn vs_main( broken",
		EntryPoint: "vs_main",
	})
	if err == nil {
		t.Error("CreateShader() accepted malformed WGSL")
	}
}

func TestCreatePipeline(t *testing.T) {
	d := newDevice(t)
	vs, err := d.CreateShader(quad.VertexShader())
	if err != nil {
		t.Fatal(err)
	}
	fs, err := d.CreateShader(quad.FragmentShader())
	if err != nil {
		t.Fatal(err)
	}

	p, err := d.CreatePipeline(quad.DefaultPipelineConfig(), vs, fs)
	if err != nil {
		t.Fatalf("CreatePipeline() error = %v", err)
	}
	if p == nil {
		t.Fatal("CreatePipeline() returned nil pipeline")
	}

	if _, err := d.CreatePipeline(quad.DefaultPipelineConfig(), nil, fs); !errors.Is(err, device.ErrNilShader) {
		t.Errorf("nil vertex shader error = %v, want ErrNilShader", err)
	}
	if _, err := d.CreatePipeline(quad.DefaultPipelineConfig(), fs, vs); !errors.Is(err, device.ErrStageMismatch) {
		t.Errorf("swapped stages error = %v, want ErrStageMismatch", err)
	}

	bad := quad.DefaultPipelineConfig()
	bad.VertexLayout = nil
	if _, err := d.CreatePipeline(bad, vs, fs); err == nil {
		t.Error("CreatePipeline() accepted invalid config")
	}
}

func TestDeviceUseAfterRelease(t *testing.T) {
	d := newDevice(t)
	d.Release()

	if _, err := d.CreateRecorder(); !errors.Is(err, device.ErrReleased) {
		t.Errorf("CreateRecorder() after release = %v, want ErrReleased", err)
	}
	if err := d.Present(); !errors.Is(err, device.ErrReleased) {
		t.Errorf("Present() after release = %v, want ErrReleased", err)
	}
}

func TestDeviceDoubleReleaseViolation(t *testing.T) {
	d := newDevice(t)
	d.Release()
	d.Release()

	if len(d.Violations()) != 1 {
		t.Errorf("Violations() = %v, want one double-release entry", d.Violations())
	}
}

func TestReleaseJournalOrder(t *testing.T) {
	d := newDevice(t)

	vb, err := d.CreateBuffer(&device.BufferDescriptor{Label: "vb", Usage: device.BufferUsageVertex, Contents: []byte{1}})
	if err != nil {
		t.Fatal(err)
	}
	ib, err := d.CreateBuffer(&device.BufferDescriptor{Label: "ib", Usage: device.BufferUsageIndex, Contents: []byte{1, 0}})
	if err != nil {
		t.Fatal(err)
	}
	rec, err := d.CreateRecorder()
	if err != nil {
		t.Fatal(err)
	}

	rec.Release()
	ib.Release()
	vb.Release()
	d.Release()

	want := []string{"recorder", "ib", "vb", "device"}
	got := d.ReleaseJournal()
	if len(got) != len(want) {
		t.Fatalf("ReleaseJournal() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("journal[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if len(d.Violations()) != 0 {
		t.Errorf("unexpected violations: %v", d.Violations())
	}
}

func TestBufferDoubleReleaseViolation(t *testing.T) {
	d := newDevice(t)
	buf, err := d.CreateBuffer(&device.BufferDescriptor{Label: "vb", Usage: device.BufferUsageVertex, Contents: []byte{1}})
	if err != nil {
		t.Fatal(err)
	}
	buf.Release()
	buf.Release()

	if len(d.Violations()) != 1 {
		t.Errorf("Violations() = %v, want one entry", d.Violations())
	}
}

func TestSurfaceFormat(t *testing.T) {
	d := newDevice(t)
	if d.SurfaceFormat() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("SurfaceFormat() = %v, want BGRA8Unorm", d.SurfaceFormat())
	}
}
