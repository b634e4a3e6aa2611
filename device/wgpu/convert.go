package wgpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

// The device API speaks gputypes; this backend speaks the WebGPU
// binding. Only the vocabulary the quad pipeline uses is mapped.

func toTextureFormat(f gputypes.TextureFormat) wgpu.TextureFormat {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case gputypes.TextureFormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm
	case gputypes.TextureFormatDepth24PlusStencil8:
		return wgpu.TextureFormatDepth24PlusStencil8
	default:
		return wgpu.TextureFormatUndefined
	}
}

func fromTextureFormat(f wgpu.TextureFormat) gputypes.TextureFormat {
	switch f {
	case wgpu.TextureFormatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm
	case wgpu.TextureFormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm
	default:
		return gputypes.TextureFormatUndefined
	}
}

func toCompareFunction(f gputypes.CompareFunction) wgpu.CompareFunction {
	switch f {
	case gputypes.CompareFunctionLess:
		return wgpu.CompareFunctionLess
	case gputypes.CompareFunctionLessEqual:
		return wgpu.CompareFunctionLessEqual
	case gputypes.CompareFunctionAlways:
		return wgpu.CompareFunctionAlways
	default:
		return wgpu.CompareFunctionAlways
	}
}

func toTopology(t gputypes.PrimitiveTopology) wgpu.PrimitiveTopology {
	switch t {
	case gputypes.PrimitiveTopologyTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

func toFrontFace(f gputypes.FrontFace) wgpu.FrontFace {
	if f == gputypes.FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func toCullMode(m gputypes.CullMode) wgpu.CullMode {
	switch m {
	case gputypes.CullModeBack:
		return wgpu.CullModeBack
	case gputypes.CullModeFront:
		return wgpu.CullModeFront
	default:
		return wgpu.CullModeNone
	}
}

func toBlendComponent(c gputypes.BlendComponent) wgpu.BlendComponent {
	return wgpu.BlendComponent{
		SrcFactor: toBlendFactor(c.SrcFactor),
		DstFactor: toBlendFactor(c.DstFactor),
		Operation: toBlendOperation(c.Operation),
	}
}

func toBlendFactor(f gputypes.BlendFactor) wgpu.BlendFactor {
	switch f {
	case gputypes.BlendFactorZero:
		return wgpu.BlendFactorZero
	case gputypes.BlendFactorOne:
		return wgpu.BlendFactorOne
	case gputypes.BlendFactorSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	default:
		return wgpu.BlendFactorOne
	}
}

// Only additive blend math appears in the quad configs.
func toBlendOperation(gputypes.BlendOperation) wgpu.BlendOperation {
	return wgpu.BlendOperationAdd
}

func toVertexFormat(f gputypes.VertexFormat) wgpu.VertexFormat {
	switch f {
	case gputypes.VertexFormatFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case gputypes.VertexFormatFloat32x4:
		return wgpu.VertexFormatFloat32x4
	default:
		return wgpu.VertexFormatFloat32
	}
}

func toIndexFormat(f gputypes.IndexFormat) wgpu.IndexFormat {
	if f == gputypes.IndexFormatUint32 {
		return wgpu.IndexFormatUint32
	}
	return wgpu.IndexFormatUint16
}

func toVertexLayouts(layouts []gputypes.VertexBufferLayout) []wgpu.VertexBufferLayout {
	out := make([]wgpu.VertexBufferLayout, len(layouts))
	for i, l := range layouts {
		attrs := make([]wgpu.VertexAttribute, len(l.Attributes))
		for j, a := range l.Attributes {
			attrs[j] = wgpu.VertexAttribute{
				Format:         toVertexFormat(a.Format),
				Offset:         uint64(a.Offset),
				ShaderLocation: uint32(a.ShaderLocation),
			}
		}
		out[i] = wgpu.VertexBufferLayout{
			ArrayStride: uint64(l.ArrayStride),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  attrs,
		}
	}
	return out
}
