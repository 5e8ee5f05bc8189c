package grid

import (
	"fmt"

	"github.com/gogpu/cellquad"
)

// Color is a cell color: either an index into a Palette or a direct RGB
// value.
type Color struct {
	rgb     bool
	index   uint8
	r, g, b uint8
}

// Index returns a palette color.
func Index(i uint8) Color {
	return Color{index: i}
}

// RGB returns a direct color.
func RGB(r, g, b uint8) Color {
	return Color{rgb: true, r: r, g: g, b: b}
}

// Default colors.
var (
	DefaultForeground = Index(15)
	DefaultBackground = Index(0)
	DefaultCursor     = DefaultForeground
)

// IsRGB reports whether c bypasses the palette.
func (c Color) IsRGB() bool { return c.rgb }

// Resolve returns the 8-bit components of c.
func (c Color) Resolve(p *Palette) [3]uint8 {
	if c.rgb {
		return [3]uint8{c.r, c.g, c.b}
	}
	return p[c.index]
}

// RGBA returns c as an opaque shader color.
func (c Color) RGBA(p *Palette) cellquad.RGBA {
	v := c.Resolve(p)
	return cellquad.RGB8(v[0], v[1], v[2])
}

// Complement returns a direct color with the hue rotated by half a turn and
// the lightness inverted.
func (c Color) Complement(p *Palette) Color {
	out := c.RGBA(p).Complement()
	return RGB(truncate(out.R), truncate(out.G), truncate(out.B))
}

func truncate(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v * 255)
}

// String returns "index(N)" or "#rrggbb".
func (c Color) String() string {
	if c.rgb {
		return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
	}
	return fmt.Sprintf("index(%d)", c.index)
}

// Palette maps the 256 indexed colors to RGB.
type Palette [256][3]uint8

// DefaultPalette returns 16 base colors followed by the 6x6x6 color cube
// and a 24-step grayscale ramp.
func DefaultPalette() Palette {
	var p Palette
	base := [16]uint32{
		0x282828, 0xcc241d, 0x98871a, 0xd79921, 0x458588, 0xb16286, 0x689d6a, 0xa89984,
		0x928374, 0xfb4934, 0xb8bb26, 0xfabd2f, 0x83a598, 0xd3869b, 0x8ec07c, 0xebdbb2,
	}
	for i, bits := range base {
		p[i] = [3]uint8{uint8(bits >> 16), uint8(bits >> 8), uint8(bits)}
	}

	for r := range 6 {
		for g := range 6 {
			for b := range 6 {
				p[16+36*r+6*g+b] = [3]uint8{
					uint8(255 * r / 6), uint8(255 * g / 6), uint8(255 * b / 6), //nolint:gosec // < 256
				}
			}
		}
	}

	for i := range 24 {
		gray := uint8(255 * i / 24) //nolint:gosec // < 256
		p[232+i] = [3]uint8{gray, gray, gray}
	}
	return p
}
