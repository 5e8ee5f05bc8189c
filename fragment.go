package cellquad

import "golang.org/x/image/math/f32"

// FragmentStage runs the fragment shader: the texel nearest to
// in.TexCoord, multiplied component-wise by in.Color.
//
// The product is returned raw. There is no clamping, gamma correction or
// alpha discard; interpreting it is left to the blend state.
func FragmentStage(in VertexOutput, tex *Texture) f32.Vec4 {
	return Modulate(tex.SampleNearest(in.TexCoord), in.Color)
}

// Modulate multiplies two colors component-wise.
func Modulate(a, b f32.Vec4) f32.Vec4 {
	return f32.Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}

// Interpolate blends the varyings of a triangle's three vertex outputs with
// barycentric weights w0, w1, w2 (expected to sum to 1).
//
// All clip positions have W = 1, so linear and perspective-correct
// interpolation agree. Position is interpolated as well for completeness.
func Interpolate(a, b, c VertexOutput, w0, w1, w2 float32) VertexOutput {
	return VertexOutput{
		Position: lerp4(a.Position, b.Position, c.Position, w0, w1, w2),
		Color:    lerp4(a.Color, b.Color, c.Color, w0, w1, w2),
		TexCoord: f32.Vec2{
			a.TexCoord[0]*w0 + b.TexCoord[0]*w1 + c.TexCoord[0]*w2,
			a.TexCoord[1]*w0 + b.TexCoord[1]*w1 + c.TexCoord[1]*w2,
		},
	}
}

// InterpolatePoint returns the varyings a point primitive delivers to the
// fragment stage: the single contributing vertex's values, unchanged.
func InterpolatePoint(v VertexOutput) VertexOutput {
	return v
}

func lerp4(a, b, c f32.Vec4, w0, w1, w2 float32) f32.Vec4 {
	var out f32.Vec4
	for i := range out {
		out[i] = a[i]*w0 + b[i]*w1 + c[i]*w2
	}
	return out
}
