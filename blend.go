package cellquad

import "golang.org/x/image/math/f32"

// BlendFactor selects the weight applied to a source or destination term.
type BlendFactor uint8

// Blend factors supported by the CPU rasterizer. The GPU host maps each to
// the gputypes factor of the same name.
const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
	BlendFactorDstAlpha
	BlendFactorOneMinusDstAlpha
)

// String returns the factor name.
func (f BlendFactor) String() string {
	switch f {
	case BlendFactorZero:
		return "Zero"
	case BlendFactorOne:
		return "One"
	case BlendFactorSrcAlpha:
		return "SrcAlpha"
	case BlendFactorOneMinusSrcAlpha:
		return "OneMinusSrcAlpha"
	case BlendFactorDstAlpha:
		return "DstAlpha"
	case BlendFactorOneMinusDstAlpha:
		return "OneMinusDstAlpha"
	default:
		return "Unknown"
	}
}

// BlendComponent describes src*SrcFactor + dst*DstFactor for one channel group.
// The operation is always add.
type BlendComponent struct {
	SrcFactor BlendFactor
	DstFactor BlendFactor
}

// BlendState configures how fragment outputs combine with the color target.
type BlendState struct {
	Color BlendComponent
	Alpha BlendComponent
}

var (
	// BlendReplace writes the fragment output as-is.
	BlendReplace = BlendState{
		Color: BlendComponent{SrcFactor: BlendFactorOne, DstFactor: BlendFactorZero},
		Alpha: BlendComponent{SrcFactor: BlendFactorOne, DstFactor: BlendFactorZero},
	}

	// BlendTerminal is the state used for cell and glyph quads. Color
	// expects premultiplied sources (One, OneMinusSrcAlpha), while alpha
	// accumulates as straight over (SrcAlpha, OneMinusSrcAlpha).
	BlendTerminal = BlendState{
		Color: BlendComponent{SrcFactor: BlendFactorOne, DstFactor: BlendFactorOneMinusSrcAlpha},
		Alpha: BlendComponent{SrcFactor: BlendFactorSrcAlpha, DstFactor: BlendFactorOneMinusSrcAlpha},
	}
)

// Apply blends src over dst and returns the new target value.
func (s BlendState) Apply(src, dst f32.Vec4) f32.Vec4 {
	cs := s.Color.SrcFactor.weight(src, dst)
	cd := s.Color.DstFactor.weight(src, dst)
	as := s.Alpha.SrcFactor.weight(src, dst)
	ad := s.Alpha.DstFactor.weight(src, dst)
	return f32.Vec4{
		src[0]*cs + dst[0]*cd,
		src[1]*cs + dst[1]*cd,
		src[2]*cs + dst[2]*cd,
		src[3]*as + dst[3]*ad,
	}
}

func (f BlendFactor) weight(src, dst f32.Vec4) float32 {
	switch f {
	case BlendFactorOne:
		return 1
	case BlendFactorSrcAlpha:
		return src[3]
	case BlendFactorOneMinusSrcAlpha:
		return 1 - src[3]
	case BlendFactorDstAlpha:
		return dst[3]
	case BlendFactorOneMinusDstAlpha:
		return 1 - dst[3]
	default:
		return 0
	}
}
