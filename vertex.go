package cellquad

import (
	"encoding/binary"
	"math"

	"golang.org/x/image/math/f32"
)

// VertexStride is the byte stride of one Vertex in a GPU vertex buffer.
// Layout per vertex:
//
//	position  (vec2<f32>) = 8 bytes  (location 0)
//	tex_coord (vec2<f32>) = 8 bytes  (location 1)
//	color     (vec4<f32>) = 16 bytes (location 2)
//
// Total = 32 bytes per vertex.
const VertexStride = 32

// WindowUniformsSize is the byte size of the window uniform buffer.
// Layout: size (vec2<f32>) = 8 bytes, padded to 16 for uniform alignment.
const WindowUniformsSize = 16

// Vertex is one input record of the vertex stage.
type Vertex struct {
	// Position in window pixels. The origin is the top-left corner and
	// Y grows downward.
	Position f32.Vec2

	// TexCoord is the normalized texture coordinate, [0, 1] by convention.
	TexCoord f32.Vec2

	// Color is the RGBA tint applied to the sampled texel.
	Color f32.Vec4
}

// WindowUniforms is the per-draw uniform record shared by every vertex
// invocation.
type WindowUniforms struct {
	// Size is the window size in pixels.
	Size f32.Vec2
}

// NewWindowUniforms returns uniforms for a width x height window.
func NewWindowUniforms(width, height int) WindowUniforms {
	return WindowUniforms{Size: f32.Vec2{float32(width), float32(height)}}
}

// VertexOutput is produced by the vertex stage and interpolated by the
// rasterizer before reaching the fragment stage.
type VertexOutput struct {
	// Position is the homogeneous clip-space position.
	Position f32.Vec4

	// Color is the passthrough tint.
	Color f32.Vec4

	// TexCoord is the passthrough texture coordinate.
	TexCoord f32.Vec2
}

// VertexStage runs the vertex shader for vertices[index].
//
// The index is not bounds-checked beyond Go's own slice check, and a zero
// window size is not guarded: dividing by zero yields non-finite clip
// coordinates, which rasterizers discard.
func VertexStage(index uint32, vertices []Vertex, window WindowUniforms) VertexOutput {
	in := vertices[index]
	return VertexOutput{
		Position: ClipPosition(in.Position, window.Size),
		Color:    in.Color,
		TexCoord: in.TexCoord,
	}
}

// ClipPosition maps a window-pixel position to clip space.
// Pixel range [0, size] maps to [-1, 1] on both axes, and Y is flipped so
// the top edge of the window lands on clip y = 1. Depth is 0 and W is 1.
func ClipPosition(position, size f32.Vec2) f32.Vec4 {
	x := 2*position[0]/size[0] - 1
	y := 2*position[1]/size[1] - 1
	return f32.Vec4{x, -y, 0, 1}
}

// Quad returns the six vertices (two triangles) covering a rectangle.
//
// pos is {left, right, top, bottom} in window pixels and tex is the matching
// {left, right, top, bottom} in texture space. Triangle order is
// lt, lb, rb and rb, rt, lt.
func Quad(pos, tex [4]float32, color f32.Vec4) [6]Vertex {
	l, r, t, b := pos[0], pos[1], pos[2], pos[3]
	tl, tr, tt, tb := tex[0], tex[1], tex[2], tex[3]

	return [6]Vertex{
		{Position: f32.Vec2{l, t}, TexCoord: f32.Vec2{tl, tt}, Color: color},
		{Position: f32.Vec2{l, b}, TexCoord: f32.Vec2{tl, tb}, Color: color},
		{Position: f32.Vec2{r, b}, TexCoord: f32.Vec2{tr, tb}, Color: color},
		{Position: f32.Vec2{r, b}, TexCoord: f32.Vec2{tr, tb}, Color: color},
		{Position: f32.Vec2{r, t}, TexCoord: f32.Vec2{tr, tt}, Color: color},
		{Position: f32.Vec2{l, t}, TexCoord: f32.Vec2{tl, tt}, Color: color},
	}
}

// AppendQuad appends the six vertices of Quad to dst.
func AppendQuad(dst []Vertex, pos, tex [4]float32, color f32.Vec4) []Vertex {
	q := Quad(pos, tex, color)
	return append(dst, q[:]...)
}

// EncodeVertices serializes vertices into dst using the GPU vertex layout,
// growing dst if needed. It returns the slice holding the encoded data.
func EncodeVertices(dst []byte, vertices []Vertex) []byte {
	needed := len(vertices) * VertexStride
	if cap(dst) < needed {
		dst = make([]byte, needed)
	} else {
		dst = dst[:needed]
	}
	off := 0
	for i := range vertices {
		v := &vertices[i]
		putFloats(dst[off:], v.Position[0], v.Position[1], v.TexCoord[0], v.TexCoord[1],
			v.Color[0], v.Color[1], v.Color[2], v.Color[3])
		off += VertexStride
	}
	return dst
}

// Encode serializes the uniforms into the 16-byte uniform buffer layout.
func (u WindowUniforms) Encode() []byte {
	buf := make([]byte, WindowUniformsSize)
	putFloats(buf, u.Size[0], u.Size[1])
	return buf
}

func putFloats(dst []byte, values ...float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}
