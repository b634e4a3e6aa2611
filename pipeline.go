package quad

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// PipelineConfig describes the fixed-function state of the quad
// pipeline. A config is consumed once at pipeline creation; the
// resulting pipeline is immutable and lives for the whole session.
type PipelineConfig struct {
	// Blend is the color/alpha blend state for the single render
	// target. The default overrides the destination entirely.
	Blend gputypes.BlendState

	// DepthTestEnabled enables the depth test.
	DepthTestEnabled bool

	// DepthWriteEnabled enables depth writes.
	DepthWriteEnabled bool

	// DepthCompare is the depth comparison function.
	DepthCompare gputypes.CompareFunction

	// DepthFormat is the depth-stencil attachment format.
	DepthFormat gputypes.TextureFormat

	// CullMode selects which triangle faces are discarded.
	CullMode gputypes.CullMode

	// FrontFace defines the winding order of front faces.
	FrontFace gputypes.FrontFace

	// Topology is the primitive assembly mode.
	Topology gputypes.PrimitiveTopology

	// DepthClipEnabled clips fragments outside the depth range.
	// When false, depth values are clamped instead.
	DepthClipEnabled bool

	// ScissorTestEnabled enables the scissor rectangle test.
	ScissorTestEnabled bool

	// VertexLayout describes the vertex buffer bindings.
	VertexLayout []gputypes.VertexBufferLayout
}

// DefaultPipelineConfig returns the pipeline state for the quad:
// override blending (source replaces destination), depth test and
// write enabled with less-equal comparison, back faces culled with
// clockwise front winding, triangle-strip topology, depth clip on,
// scissor off.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Blend: gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorZero,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorZero,
				Operation: gputypes.BlendOperationAdd,
			},
		},
		DepthTestEnabled:  true,
		DepthWriteEnabled: true,
		DepthCompare:      gputypes.CompareFunctionLessEqual,
		DepthFormat:       gputypes.TextureFormatDepth24PlusStencil8,
		CullMode:          gputypes.CullModeBack,
		FrontFace:         gputypes.FrontFaceCW,
		Topology:          gputypes.PrimitiveTopologyTriangleStrip,
		DepthClipEnabled:  true,
		VertexLayout:      VertexLayout(),
	}
}

// Validate checks that the config can build a pipeline.
func (c PipelineConfig) Validate() error {
	if len(c.VertexLayout) == 0 {
		return fmt.Errorf("quad: pipeline config has no vertex layout")
	}
	for i, l := range c.VertexLayout {
		if l.ArrayStride == 0 {
			return fmt.Errorf("quad: vertex layout %d has zero stride", i)
		}
		if len(l.Attributes) == 0 {
			return fmt.Errorf("quad: vertex layout %d has no attributes", i)
		}
	}
	if c.DepthTestEnabled && c.DepthFormat == gputypes.TextureFormatUndefined {
		return fmt.Errorf("quad: depth test enabled without a depth format")
	}
	return nil
}
