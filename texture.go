package cellquad

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f32"
)

// Texture is a read-only 2D RGBA image with float32 components, sampled with
// nearest-neighbor filtering and clamp-to-edge addressing.
type Texture struct {
	width  int
	height int

	// pix holds 4 float32 per texel, row-major, top row first.
	pix []float32
}

// NewTexture creates a transparent black texture. Dimensions below 1 are
// raised to 1.
func NewTexture(width, height int) *Texture {
	width = max(width, 1)
	height = max(height, 1)
	return &Texture{
		width:  width,
		height: height,
		pix:    make([]float32, width*height*4),
	}
}

// WhiteTexture returns a 1x1 opaque white texture. Sampling it returns
// (1, 1, 1, 1), so the fragment stage outputs the vertex color unchanged.
func WhiteTexture() *Texture {
	t := NewTexture(1, 1)
	t.Set(0, 0, f32.Vec4{1, 1, 1, 1})
	return t
}

// TextureFromImage converts img to a texture. Components are normalized
// from 8-bit RGBA, keeping the image's alpha representation (image.RGBA is
// premultiplied).
func TextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	t := NewTexture(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+b.Dx()*4]
		dst := t.pix[y*t.width*4:]
		for i, c := range row {
			dst[i] = float32(c) / 255
		}
	}
	return t
}

// Width returns the texture width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return t.height }

// At returns the texel at (x, y). Coordinates must be in range.
func (t *Texture) At(x, y int) f32.Vec4 {
	i := (y*t.width + x) * 4
	return f32.Vec4{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

// Set writes the texel at (x, y). Coordinates must be in range.
func (t *Texture) Set(x, y int, c f32.Vec4) {
	i := (y*t.width + x) * 4
	t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3] = c[0], c[1], c[2], c[3]
}

// Fill sets every texel to c.
func (t *Texture) Fill(c f32.Vec4) {
	for i := 0; i < len(t.pix); i += 4 {
		t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3] = c[0], c[1], c[2], c[3]
	}
}

// SampleNearest returns the texel nearest to the normalized coordinate uv.
//
// The selected texel is floor(u*width) clamped to [0, width-1], and likewise
// for v. A coordinate exactly on the boundary between two texels selects the
// one to the right or below; neighbors are never blended. Non-finite
// coordinates select texel 0.
func (t *Texture) SampleNearest(uv f32.Vec2) f32.Vec4 {
	x := nearestIndex(uv[0], t.width)
	y := nearestIndex(uv[1], t.height)
	return t.At(x, y)
}

func nearestIndex(coord float32, size int) int {
	f := math.Floor(float64(coord) * float64(size))
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f >= float64(size) {
		return size - 1
	}
	return int(f)
}
