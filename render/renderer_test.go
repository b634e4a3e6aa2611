package render

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/quad"
	"github.com/gogpu/quad/device"
	"github.com/gogpu/quad/device/headless"
	"github.com/gogpu/quad/window"
)

func newHeadlessRenderer(t *testing.T, opts ...Option) (*Renderer, *headless.Device) {
	t.Helper()
	dev, err := headless.New(nil)
	if err != nil {
		t.Fatalf("headless.New: %v", err)
	}
	r, err := New(dev, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r, dev.(*headless.Device)
}

// frameOpKinds is the fixed command sequence of one frame.
var frameOpKinds = []headless.OpKind{
	headless.OpBegin,
	headless.OpBindFramebuffer,
	headless.OpClear,
	headless.OpSetVertexBuffer,
	headless.OpSetIndexBuffer,
	headless.OpSetPipeline,
	headless.OpDrawIndexed,
	headless.OpEnd,
	headless.OpSubmit,
	headless.OpPresent,
}

func TestNewReleasesShadersEarly(t *testing.T) {
	r, hd := newHeadlessRenderer(t)
	defer r.Release()

	want := []string{"shader:fragment", "shader:vertex"}
	if got := hd.ReleaseJournal(); !reflect.DeepEqual(got, want) {
		t.Fatalf("journal after setup = %v, want %v", got, want)
	}
	if len(hd.Ops()) != 0 {
		t.Fatalf("setup recorded %d frame ops, want 0", len(hd.Ops()))
	}
}

func TestRenderFrameOpSequence(t *testing.T) {
	r, hd := newHeadlessRenderer(t)
	defer r.Release()

	if err := r.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	ops := hd.Ops()
	if len(ops) != len(frameOpKinds) {
		t.Fatalf("frame recorded %d ops, want %d", len(ops), len(frameOpKinds))
	}
	for i, want := range frameOpKinds {
		if ops[i].Kind != want {
			t.Fatalf("op %d = %s, want %s", i, ops[i].Kind, want)
		}
	}
}

func TestRenderFrameOpArguments(t *testing.T) {
	clear := gputypes.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}
	r, hd := newHeadlessRenderer(t, WithClearColor(clear))
	defer r.Release()

	if err := r.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	ops := hd.Ops()
	if ops[2].Color != clear {
		t.Errorf("clear color = %+v, want %+v", ops[2].Color, clear)
	}
	if ops[3].Slot != 0 || ops[3].Buffer != "quad_vertices" {
		t.Errorf("vertex bind = slot %d buffer %q", ops[3].Slot, ops[3].Buffer)
	}
	if ops[4].Buffer != "quad_indices" || ops[4].Format != gputypes.IndexFormatUint16 {
		t.Errorf("index bind = buffer %q format %v", ops[4].Buffer, ops[4].Format)
	}
	want := headless.DrawArgs{IndexCount: 4, InstanceCount: 1}
	if ops[6].Draw != want {
		t.Errorf("draw args = %+v, want %+v", ops[6].Draw, want)
	}
}

func TestRepeatedFramesIdentical(t *testing.T) {
	r, hd := newHeadlessRenderer(t)
	defer r.Release()

	if err := r.RenderFrame(); err != nil {
		t.Fatalf("frame 0: %v", err)
	}
	first := hd.Ops()
	hd.ResetOps()

	const n = 7
	for i := 0; i < n; i++ {
		if err := r.RenderFrame(); err != nil {
			t.Fatalf("frame %d: %v", i+1, err)
		}
	}
	ops := hd.Ops()
	if len(ops) != n*len(first) {
		t.Fatalf("%d frames recorded %d ops, want %d", n, len(ops), n*len(first))
	}
	for f := 0; f < n; f++ {
		frame := ops[f*len(first) : (f+1)*len(first)]
		if !reflect.DeepEqual(frame, first) {
			t.Fatalf("frame %d differs from frame 0", f+1)
		}
	}
	if r.Frames() != n+1 {
		t.Errorf("Frames() = %d, want %d", r.Frames(), n+1)
	}
	if hd.Submitted() != n+1 || hd.Presented() != n+1 {
		t.Errorf("submitted=%d presented=%d, want %d each", hd.Submitted(), hd.Presented(), n+1)
	}
}

func TestRunUntilWindowCloses(t *testing.T) {
	r, hd := newHeadlessRenderer(t)
	defer r.Release()

	win := window.NewStub(320, 240, 5)
	if err := r.Run(win); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.Frames() != 5 {
		t.Errorf("Frames() = %d, want 5", r.Frames())
	}
	if win.Pumped() != 5 {
		t.Errorf("Pumped() = %d, want 5", win.Pumped())
	}
	if hd.Presented() != 5 {
		t.Errorf("Presented() = %d, want 5", hd.Presented())
	}
}

func TestReleaseOrder(t *testing.T) {
	r, hd := newHeadlessRenderer(t)
	if err := r.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	r.Release()
	r.Release()

	want := []string{
		"shader:fragment",
		"shader:vertex",
		"pipeline",
		"recorder",
		"quad_indices",
		"quad_vertices",
		"device",
	}
	if got := hd.ReleaseJournal(); !reflect.DeepEqual(got, want) {
		t.Fatalf("release journal = %v, want %v", got, want)
	}
	if v := hd.Violations(); len(v) != 0 {
		t.Fatalf("violations: %v", v)
	}
	if err := r.RenderFrame(); err == nil {
		t.Fatal("RenderFrame after release succeeded")
	}
}

func TestMalformedShaderFailsBeforeAnyFrame(t *testing.T) {
	dev, err := headless.New(nil)
	if err != nil {
		t.Fatalf("headless.New: %v", err)
	}
	hd := dev.(*headless.Device)

	bad := quad.ShaderSource{
		Stage:      quad.StageVertex,
		Source:     "fn vs_main( {", // does not parse
		EntryPoint: "vs_main",
	}
	if _, err := New(dev, WithShaders(bad, quad.FragmentShader())); err == nil {
		t.Fatal("New accepted a malformed vertex shader")
	}
	if n := len(hd.Ops()); n != 0 {
		t.Fatalf("failed setup recorded %d frame ops, want 0", n)
	}
	// The buffers created before the shader failure were unwound.
	want := []string{"quad_indices", "quad_vertices"}
	if got := hd.ReleaseJournal(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unwind journal = %v, want %v", got, want)
	}
}

// recorderFailDevice delegates everything to the wrapped device but
// fails recorder creation, forcing setup to unwind after the shaders
// were already released.
type recorderFailDevice struct {
	device.Device
}

func (d *recorderFailDevice) CreateRecorder() (device.Recorder, error) {
	return nil, errors.New("recorder unavailable")
}

func TestRecorderFailureUnwindsEachResourceOnce(t *testing.T) {
	dev, err := headless.New(nil)
	if err != nil {
		t.Fatalf("headless.New: %v", err)
	}
	hd := dev.(*headless.Device)

	if _, err := New(&recorderFailDevice{Device: dev}); err == nil {
		t.Fatal("New succeeded with a failing recorder")
	}
	if v := hd.Violations(); len(v) != 0 {
		t.Fatalf("violations: %v", v)
	}
	// Shaders were released once during setup; the unwind covers the
	// pipeline and both buffers, newest first.
	want := []string{
		"shader:fragment",
		"shader:vertex",
		"pipeline",
		"quad_indices",
		"quad_vertices",
	}
	if got := hd.ReleaseJournal(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unwind journal = %v, want %v", got, want)
	}
}

func TestNewRejectsInvalidMesh(t *testing.T) {
	dev, err := headless.New(nil)
	if err != nil {
		t.Fatalf("headless.New: %v", err)
	}
	if _, err := New(dev, WithMesh(quad.Mesh{})); err == nil {
		t.Fatal("New accepted an empty mesh")
	}
}

func TestNewRejectsNilDevice(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("New accepted a nil device")
	}
}

var _ device.Device = (*headless.Device)(nil)
