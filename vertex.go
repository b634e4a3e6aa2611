package quad

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
)

// VertexStride is the size in bytes of one interleaved vertex:
// two float32 position components followed by four float32 color
// components.
const VertexStride = 24

// Vertex is one corner of the quad. Position is in normalized device
// coordinates (-1..1, y up); Color is linear RGBA in 0..1.
type Vertex struct {
	Position [2]float32
	Color    [4]float32
}

// Mesh is static indexed geometry: an interleaved vertex array plus a
// uint16 index array. The mesh is built once, uploaded once, and never
// mutated afterwards.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16
}

// QuadMesh returns the canonical quad: four vertices at (±0.75, ±0.75)
// with one color per corner, indexed 0,1,2,3 for a clockwise triangle
// strip.
func QuadMesh() Mesh {
	return Mesh{
		Vertices: []Vertex{
			{Position: [2]float32{-0.75, 0.75}, Color: [4]float32{1, 0, 0, 1}},
			{Position: [2]float32{0.75, 0.75}, Color: [4]float32{0, 1, 0, 1}},
			{Position: [2]float32{-0.75, -0.75}, Color: [4]float32{0, 0, 1, 1}},
			{Position: [2]float32{0.75, -0.75}, Color: [4]float32{1, 1, 0, 1}},
		},
		Indices: []uint16{0, 1, 2, 3},
	}
}

// Validate checks that the mesh is drawable: at least one vertex, at
// least one index, and every index inside the vertex array.
func (m Mesh) Validate() error {
	if len(m.Vertices) == 0 {
		return fmt.Errorf("quad: mesh has no vertices")
	}
	if len(m.Indices) == 0 {
		return fmt.Errorf("quad: mesh has no indices")
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("quad: index %d out of range: %d >= %d vertices", i, idx, len(m.Vertices))
		}
	}
	return nil
}

// VertexBytes packs the vertex array into little-endian bytes, ready
// for a buffer upload. The result is len(Vertices)*VertexStride bytes.
func (m Mesh) VertexBytes() []byte {
	buf := make([]byte, 0, len(m.Vertices)*VertexStride)
	for _, v := range m.Vertices {
		for _, f := range []float32{v.Position[0], v.Position[1], v.Color[0], v.Color[1], v.Color[2], v.Color[3]} {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	return buf
}

// IndexBytes packs the index array into little-endian uint16 bytes.
func (m Mesh) IndexBytes() []byte {
	buf := make([]byte, 0, len(m.Indices)*2)
	for _, idx := range m.Indices {
		buf = binary.LittleEndian.AppendUint16(buf, idx)
	}
	return buf
}

// VertexByteSize returns the exact size of the vertex buffer in bytes.
func (m Mesh) VertexByteSize() uint64 {
	return uint64(len(m.Vertices)) * VertexStride
}

// IndexByteSize returns the exact size of the index buffer in bytes.
func (m Mesh) IndexByteSize() uint64 {
	return uint64(len(m.Indices)) * 2
}

// VertexLayout describes the interleaved vertex format for pipeline
// creation: float32x2 position at shader location 0, float32x4 color
// at shader location 1.
func VertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1},
			},
		},
	}
}
