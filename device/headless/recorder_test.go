package headless

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/quad"
	"github.com/gogpu/quad/device"
)

// frameResources builds the buffers and pipeline one frame needs.
func frameResources(t *testing.T, d *Device) (device.Buffer, device.Buffer, device.Pipeline, device.Recorder) {
	t.Helper()
	mesh := quad.QuadMesh()

	vb, err := d.CreateBuffer(&device.BufferDescriptor{Label: "vb", Usage: device.BufferUsageVertex, Contents: mesh.VertexBytes()})
	if err != nil {
		t.Fatal(err)
	}
	ib, err := d.CreateBuffer(&device.BufferDescriptor{Label: "ib", Usage: device.BufferUsageIndex, Contents: mesh.IndexBytes()})
	if err != nil {
		t.Fatal(err)
	}
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
		t.Fatal(err)
	}
	rec, err := d.CreateRecorder()
	if err != nil {
		t.Fatal(err)
	}
	return vb, ib, p, rec
}

// recordFrame records one complete frame in the canonical order.
func recordFrame(t *testing.T, d *Device, rec device.Recorder, vb, ib device.Buffer, p device.Pipeline) {
	t.Helper()
	clear := gputypes.Color{R: 0, G: 0, B: 0, A: 1}

	if err := rec.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := rec.BindFramebuffer(); err != nil {
		t.Fatal(err)
	}
	if err := rec.Clear(clear); err != nil {
		t.Fatal(err)
	}
	if err := rec.SetVertexBuffer(0, vb); err != nil {
		t.Fatal(err)
	}
	if err := rec.SetIndexBuffer(ib, gputypes.IndexFormatUint16); err != nil {
		t.Fatal(err)
	}
	if err := rec.SetPipeline(p); err != nil {
		t.Fatal(err)
	}
	if err := rec.DrawIndexed(4, 1, 0, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := rec.End(); err != nil {
		t.Fatal(err)
	}
	if err := rec.Submit(); err != nil {
		t.Fatal(err)
	}
	if err := d.Present(); err != nil {
		t.Fatal(err)
	}
}

func TestFrameOpSequence(t *testing.T) {
	d := newDevice(t)
	vb, ib, p, rec := frameResources(t, d)
	d.ResetOps()

	recordFrame(t, d, rec, vb, ib, p)

	want := []OpKind{
		OpBegin, OpBindFramebuffer, OpClear, OpSetVertexBuffer,
		OpSetIndexBuffer, OpSetPipeline, OpDrawIndexed, OpEnd,
		OpSubmit, OpPresent,
	}
	ops := d.Ops()
	if len(ops) != len(want) {
		t.Fatalf("got %d ops, want %d: %v", len(ops), len(want), ops)
	}
	for i, k := range want {
		if ops[i].Kind != k {
			t.Errorf("op %d = %v, want %v", i, ops[i].Kind, k)
		}
	}

	// Exactly one of each frame-defining op.
	counts := map[OpKind]int{}
	for _, op := range ops {
		counts[op.Kind]++
	}
	for _, k := range []OpKind{OpClear, OpSetPipeline, OpDrawIndexed, OpSubmit, OpPresent} {
		if counts[k] != 1 {
			t.Errorf("op %v count = %d, want 1", k, counts[k])
		}
	}
}

func TestFrameOpArguments(t *testing.T) {
	d := newDevice(t)
	vb, ib, p, rec := frameResources(t, d)
	d.ResetOps()

	recordFrame(t, d, rec, vb, ib, p)

	for _, op := range d.Ops() {
		switch op.Kind {
		case OpSetVertexBuffer:
			if op.Slot != 0 {
				t.Errorf("vertex buffer slot = %d, want 0", op.Slot)
			}
			if op.Buffer != "vb" {
				t.Errorf("vertex buffer = %q, want vb", op.Buffer)
			}
		case OpSetIndexBuffer:
			if op.Format != gputypes.IndexFormatUint16 {
				t.Errorf("index format = %v, want uint16", op.Format)
			}
			if op.Buffer != "ib" {
				t.Errorf("index buffer = %q, want ib", op.Buffer)
			}
		case OpDrawIndexed:
			want := DrawArgs{IndexCount: 4, InstanceCount: 1}
			if op.Draw != want {
				t.Errorf("draw args = %+v, want %+v", op.Draw, want)
			}
		}
	}
}

func TestRepeatedFramesIdentical(t *testing.T) {
	d := newDevice(t)
	vb, ib, p, rec := frameResources(t, d)

	const frames = 5
	var sequences [][]Op
	for range frames {
		d.ResetOps()
		recordFrame(t, d, rec, vb, ib, p)
		sequences = append(sequences, d.Ops())
	}

	first := sequences[0]
	for n, seq := range sequences[1:] {
		if len(seq) != len(first) {
			t.Fatalf("frame %d has %d ops, frame 0 has %d", n+1, len(seq), len(first))
		}
		for i := range seq {
			if seq[i] != first[i] {
				t.Errorf("frame %d op %d = %+v, differs from frame 0 op %+v", n+1, i, seq[i], first[i])
			}
		}
	}
	if d.Submitted() != frames {
		t.Errorf("Submitted() = %d, want %d", d.Submitted(), frames)
	}
	if d.Presented() != frames {
		t.Errorf("Presented() = %d, want %d", d.Presented(), frames)
	}
}

func TestRecorderStateMachine(t *testing.T) {
	d := newDevice(t)
	rec, err := d.CreateRecorder()
	if err != nil {
		t.Fatal(err)
	}
	r := rec.(*Recorder)

	if r.State() != RecorderIdle {
		t.Errorf("initial state = %v, want idle", r.State())
	}

	// Commands while idle fail.
	if err := rec.BindFramebuffer(); !errors.Is(err, device.ErrNotRecording) {
		t.Errorf("BindFramebuffer() while idle = %v, want ErrNotRecording", err)
	}
	if err := rec.End(); !errors.Is(err, device.ErrNotRecording) {
		t.Errorf("End() while idle = %v, want ErrNotRecording", err)
	}
	if err := rec.Submit(); !errors.Is(err, device.ErrNoFrame) {
		t.Errorf("Submit() without frame = %v, want ErrNoFrame", err)
	}

	if err := rec.Begin(); err != nil {
		t.Fatal(err)
	}
	if r.State() != RecorderRecording {
		t.Errorf("state after Begin = %v, want recording", r.State())
	}
	if err := rec.Begin(); !errors.Is(err, device.ErrAlreadyRecording) {
		t.Errorf("Begin() twice = %v, want ErrAlreadyRecording", err)
	}
	if err := rec.Submit(); !errors.Is(err, device.ErrFrameOpen) {
		t.Errorf("Submit() while recording = %v, want ErrFrameOpen", err)
	}

	if err := rec.End(); err != nil {
		t.Fatal(err)
	}
	if r.State() != RecorderIdle {
		t.Errorf("state after End = %v, want idle", r.State())
	}
	if err := rec.Submit(); err != nil {
		t.Errorf("Submit() after End = %v, want nil", err)
	}
	if err := rec.Submit(); !errors.Is(err, device.ErrNoFrame) {
		t.Errorf("Submit() twice = %v, want ErrNoFrame", err)
	}
}

func TestCommandsRequireFramebuffer(t *testing.T) {
	d := newDevice(t)
	_, _, _, rec := frameResources(t, d)

	if err := rec.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := rec.Clear(gputypes.Color{}); !errors.Is(err, device.ErrNoFramebuffer) {
		t.Errorf("Clear() without framebuffer = %v, want ErrNoFramebuffer", err)
	}
	if err := rec.DrawIndexed(4, 1, 0, 0, 0); !errors.Is(err, device.ErrNoFramebuffer) {
		t.Errorf("DrawIndexed() without framebuffer = %v, want ErrNoFramebuffer", err)
	}
}

func TestBindRejectsWrongUsage(t *testing.T) {
	d := newDevice(t)
	vb, ib, _, rec := frameResources(t, d)

	if err := rec.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := rec.BindFramebuffer(); err != nil {
		t.Fatal(err)
	}
	if err := rec.SetVertexBuffer(0, ib); err == nil {
		t.Error("SetVertexBuffer() accepted index buffer")
	}
	if err := rec.SetIndexBuffer(vb, gputypes.IndexFormatUint16); err == nil {
		t.Error("SetIndexBuffer() accepted vertex buffer")
	}
	if err := rec.SetVertexBuffer(0, nil); !errors.Is(err, device.ErrNilBuffer) {
		t.Errorf("SetVertexBuffer(nil) = %v, want ErrNilBuffer", err)
	}
	if err := rec.SetPipeline(nil); !errors.Is(err, device.ErrNilPipeline) {
		t.Errorf("SetPipeline(nil) = %v, want ErrNilPipeline", err)
	}
}

func TestRecorderUseAfterRelease(t *testing.T) {
	d := newDevice(t)
	rec, err := d.CreateRecorder()
	if err != nil {
		t.Fatal(err)
	}
	rec.Release()

	if err := rec.Begin(); !errors.Is(err, device.ErrReleased) {
		t.Errorf("Begin() after release = %v, want ErrReleased", err)
	}
	rec.Release()
	if len(d.Violations()) != 1 {
		t.Errorf("Violations() = %v, want one entry", d.Violations())
	}
}
