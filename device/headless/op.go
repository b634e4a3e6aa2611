package headless

import (
	"github.com/gogpu/gputypes"
)

// OpKind identifies one recorded operation.
type OpKind int

const (
	OpBegin OpKind = iota
	OpBindFramebuffer
	OpClear
	OpSetVertexBuffer
	OpSetIndexBuffer
	OpSetPipeline
	OpDrawIndexed
	OpEnd
	OpSubmit
	OpPresent
)

// String returns the op name used in logs and test failure messages.
func (k OpKind) String() string {
	switch k {
	case OpBegin:
		return "begin"
	case OpBindFramebuffer:
		return "bind-framebuffer"
	case OpClear:
		return "clear"
	case OpSetVertexBuffer:
		return "set-vertex-buffer"
	case OpSetIndexBuffer:
		return "set-index-buffer"
	case OpSetPipeline:
		return "set-pipeline"
	case OpDrawIndexed:
		return "draw-indexed"
	case OpEnd:
		return "end"
	case OpSubmit:
		return "submit"
	case OpPresent:
		return "present"
	default:
		return "unknown"
	}
}

// DrawArgs are the arguments of a recorded indexed draw.
type DrawArgs struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}

// Op is one recorded operation with the arguments relevant to its
// kind; unrelated fields are zero.
type Op struct {
	Kind   OpKind
	Slot   uint32               // OpSetVertexBuffer
	Buffer string               // buffer label for bind ops
	Format gputypes.IndexFormat // OpSetIndexBuffer
	Color  gputypes.Color       // OpClear
	Draw   DrawArgs             // OpDrawIndexed
}
