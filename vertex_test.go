package quad

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestVertexStride(t *testing.T) {
	// 2 position floats + 4 color floats, 4 bytes each.
	if VertexStride != 24 {
		t.Errorf("VertexStride = %d, want 24", VertexStride)
	}
}

func TestQuadMeshShape(t *testing.T) {
	m := QuadMesh()
	if len(m.Vertices) != 4 {
		t.Fatalf("len(Vertices) = %d, want 4", len(m.Vertices))
	}
	if len(m.Indices) != 4 {
		t.Fatalf("len(Indices) = %d, want 4", len(m.Indices))
	}
	for i, want := range []uint16{0, 1, 2, 3} {
		if m.Indices[i] != want {
			t.Errorf("Indices[%d] = %d, want %d", i, m.Indices[i], want)
		}
	}
}

func TestQuadMeshCorners(t *testing.T) {
	m := QuadMesh()
	want := [][2]float32{
		{-0.75, 0.75},
		{0.75, 0.75},
		{-0.75, -0.75},
		{0.75, -0.75},
	}
	for i, w := range want {
		if m.Vertices[i].Position != w {
			t.Errorf("Vertices[%d].Position = %v, want %v", i, m.Vertices[i].Position, w)
		}
	}
}

func TestQuadMeshWindingClockwise(t *testing.T) {
	// Signed area of the first strip triangle (0,1,2) must be negative
	// for clockwise winding in y-up NDC.
	m := QuadMesh()
	a, b, c := m.Vertices[0].Position, m.Vertices[1].Position, m.Vertices[2].Position
	area := (b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])
	if area >= 0 {
		t.Errorf("first triangle signed area = %v, want negative (clockwise)", area)
	}
}

func TestMeshByteSizes(t *testing.T) {
	m := QuadMesh()
	if got := m.VertexByteSize(); got != 4*VertexStride {
		t.Errorf("VertexByteSize() = %d, want %d", got, 4*VertexStride)
	}
	if got := m.IndexByteSize(); got != 8 {
		t.Errorf("IndexByteSize() = %d, want 8", got)
	}
	if got := len(m.VertexBytes()); uint64(got) != m.VertexByteSize() {
		t.Errorf("len(VertexBytes()) = %d, want %d", got, m.VertexByteSize())
	}
	if got := len(m.IndexBytes()); uint64(got) != m.IndexByteSize() {
		t.Errorf("len(IndexBytes()) = %d, want %d", got, m.IndexByteSize())
	}
}

func TestVertexBytesLittleEndian(t *testing.T) {
	m := Mesh{
		Vertices: []Vertex{{Position: [2]float32{0.5, -1}, Color: [4]float32{0, 0.25, 0.5, 1}}},
		Indices:  []uint16{0},
	}
	b := m.VertexBytes()
	if len(b) != VertexStride {
		t.Fatalf("len = %d, want %d", len(b), VertexStride)
	}
	want := []float32{0.5, -1, 0, 0.25, 0.5, 1}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		if got != w {
			t.Errorf("float %d = %v, want %v", i, got, w)
		}
	}
}

func TestIndexBytesLittleEndian(t *testing.T) {
	m := Mesh{Vertices: make([]Vertex, 300), Indices: []uint16{0x0102, 0x0203}}
	b := m.IndexBytes()
	want := []byte{0x02, 0x01, 0x03, 0x02}
	for i, w := range want {
		if b[i] != w {
			t.Errorf("byte %d = %#x, want %#x", i, b[i], w)
		}
	}
}

func TestMeshValidate(t *testing.T) {
	if err := QuadMesh().Validate(); err != nil {
		t.Errorf("QuadMesh().Validate() = %v, want nil", err)
	}

	bad := Mesh{Vertices: make([]Vertex, 4), Indices: []uint16{0, 1, 2, 4}}
	if err := bad.Validate(); err == nil {
		t.Error("Validate() accepted out-of-range index")
	}

	empty := Mesh{}
	if err := empty.Validate(); err == nil {
		t.Error("Validate() accepted empty mesh")
	}

	noIdx := Mesh{Vertices: make([]Vertex, 4)}
	if err := noIdx.Validate(); err == nil {
		t.Error("Validate() accepted mesh without indices")
	}
}

func TestVertexLayout(t *testing.T) {
	layout := VertexLayout()
	if len(layout) != 1 {
		t.Fatalf("len(layout) = %d, want 1", len(layout))
	}
	l := layout[0]
	if l.ArrayStride != VertexStride {
		t.Errorf("ArrayStride = %d, want %d", l.ArrayStride, VertexStride)
	}
	if len(l.Attributes) != 2 {
		t.Fatalf("len(Attributes) = %d, want 2", len(l.Attributes))
	}
	if l.Attributes[0].Offset != 0 || l.Attributes[0].ShaderLocation != 0 {
		t.Errorf("attribute 0: got offset %d location %d, want 0/0",
			l.Attributes[0].Offset, l.Attributes[0].ShaderLocation)
	}
	if l.Attributes[1].Offset != 8 || l.Attributes[1].ShaderLocation != 1 {
		t.Errorf("attribute 1: got offset %d location %d, want 8/1",
			l.Attributes[1].Offset, l.Attributes[1].ShaderLocation)
	}
}
