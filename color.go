package cellquad

import (
	"image/color"
	"math"

	"golang.org/x/image/math/f32"
)

// RGBA represents a straight-alpha color with components in [0, 1].
type RGBA struct {
	R, G, B, A float32
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float32) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// RGB8 creates an opaque color from 8-bit components.
func RGB8(r, g, b uint8) RGBA {
	return RGBA{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255, A: 1}
}

// RGBA implements color.Color. The result is alpha-premultiplied as the
// interface requires.
func (c RGBA) RGBA() (r, g, b, a uint32) {
	p := c.Premultiply()
	return unit16(p.R), unit16(p.G), unit16(p.B), unit16(p.A)
}

// FromColor converts a standard color.Color to straight-alpha RGBA.
func FromColor(c color.Color) RGBA {
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	return RGBA{
		R: float32(n.R) / 65535,
		G: float32(n.G) / 65535,
		B: float32(n.B) / 65535,
		A: float32(n.A) / 65535,
	}
}

// Hex creates a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA", with or without '#'.
// Malformed input yields opaque black.
func Hex(hex string) RGBA {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b uint32
	a := uint32(255)
	ok := true

	switch len(hex) {
	case 3:
		ok = parseHex(hex[0:1], &r) && parseHex(hex[1:2], &g) && parseHex(hex[2:3], &b)
		r, g, b = r*17, g*17, b*17
	case 4:
		ok = parseHex(hex[0:1], &r) && parseHex(hex[1:2], &g) && parseHex(hex[2:3], &b) && parseHex(hex[3:4], &a)
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6:
		ok = parseHex(hex[0:2], &r) && parseHex(hex[2:4], &g) && parseHex(hex[4:6], &b)
	case 8:
		ok = parseHex(hex[0:2], &r) && parseHex(hex[2:4], &g) && parseHex(hex[4:6], &b) && parseHex(hex[6:8], &a)
	default:
		ok = false
	}
	if !ok {
		return Black
	}

	return RGBA{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}
}

func parseHex(s string, val *uint32) bool {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return false
		}
	}
	return true
}

// Vec4 returns the color as a vertex tint.
func (c RGBA) Vec4() f32.Vec4 {
	return f32.Vec4{c.R, c.G, c.B, c.A}
}

// FromVec4 converts a shader color back to RGBA.
func FromVec4(v f32.Vec4) RGBA {
	return RGBA{R: v[0], G: v[1], B: v[2], A: v[3]}
}

// Premultiply returns a premultiplied color.
func (c RGBA) Premultiply() RGBA {
	return RGBA{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// HSL returns hue, saturation and lightness, each normalized to [0, 1].
func (c RGBA) HSL() (h, s, l float32) {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	hi := math.Max(r, math.Max(g, b))
	lo := math.Min(r, math.Min(g, b))
	chroma := hi - lo

	var hue float64
	switch {
	case chroma == 0:
		hue = 0
	case hi == r:
		hue = (g - b) / chroma
	case hi == g:
		hue = 2 + (b-r)/chroma
	default:
		hue = 4 + (r-g)/chroma
	}
	hue = math.Mod(hue/6, 1)
	if hue < 0 {
		hue++
	}

	light := (hi + lo) / 2
	var sat float64
	if light != 0 && light != 1 {
		sat = (hi - light) / math.Min(light, 1-light)
	}
	return float32(hue), float32(sat), float32(light)
}

// HSL creates an opaque color from normalized hue, saturation and lightness.
func HSL(h, s, l float32) RGBA {
	hh := math.Mod(float64(h), 1)
	if hh < 0 {
		hh++
	}
	chroma := (1 - math.Abs(2*float64(l)-1)) * float64(s)
	sextant := hh * 6
	x := chroma * (1 - math.Abs(math.Mod(sextant, 2)-1))
	m := float64(l) - chroma/2

	var r, g, b float64
	switch int(sextant) {
	case 0:
		r, g, b = chroma, x, 0
	case 1:
		r, g, b = x, chroma, 0
	case 2:
		r, g, b = 0, chroma, x
	case 3:
		r, g, b = 0, x, chroma
	case 4:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}
	return RGB(float32(r+m), float32(g+m), float32(b+m))
}

// Complement returns the color with hue rotated by half a turn and
// lightness inverted. Cursor text uses it to stay readable on any cell.
func (c RGBA) Complement() RGBA {
	h, s, l := c.HSL()
	out := HSL(h+0.5, s, 1-l)
	out.A = c.A
	return out
}

func unit16(x float32) uint32 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 0xffff
	}
	return uint32(x*0xffff + 0.5)
}

// Common colors
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Red         = RGB(1, 0, 0)
	Green       = RGB(0, 1, 0)
	Blue        = RGB(0, 0, 1)
	Transparent = RGBA{}
)
