package cellquad

import (
	"image/color"
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func approxColor(a, b RGBA) bool {
	return approx(a.R, b.R) && approx(a.G, b.G) && approx(a.B, b.B) && approx(a.A, b.A)
}

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want RGBA
	}{
		{"#fff", White},
		{"000", Black},
		{"#ff000080", RGBA{R: 1, A: 128.0 / 255}},
		{"00FF00", Green},
		{"#0000ff", Blue},
		{"f00c", RGBA{R: 1, A: 0.8}},
		{"", Black},
		{"#12345", Black},
		{"zzzzzz", Black},
	}
	for _, tt := range tests {
		if got := Hex(tt.in); !approxColor(got, tt.want) {
			t.Errorf("Hex(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestRGB8(t *testing.T) {
	c := RGB8(255, 0, 51)
	if !approxColor(c, RGBA{R: 1, G: 0, B: 0.2, A: 1}) {
		t.Errorf("RGB8 = %+v", c)
	}
}

func TestColorInterface(t *testing.T) {
	var c color.Color = RGBA{R: 1, G: 0.5, B: 0, A: 0.5}
	r, g, b, a := c.RGBA()
	if a != 0x7fff && a != 0x8000 {
		t.Errorf("a = %#x, want ~0x8000", a)
	}
	if r > a || g > a || b > a {
		t.Errorf("components must be premultiplied: r=%#x g=%#x b=%#x a=%#x", r, g, b, a)
	}

	back := FromColor(color.NRGBA{R: 255, G: 128, B: 0, A: 255})
	if !approxColor(back, RGBA{R: 1, G: 128.0 / 255, B: 0, A: 1}) {
		t.Errorf("FromColor = %+v", back)
	}
}

func TestPremultiply(t *testing.T) {
	got := RGBA{R: 1, G: 0.5, B: 0.25, A: 0.5}.Premultiply()
	want := RGBA{R: 0.5, G: 0.25, B: 0.125, A: 0.5}
	if got != want {
		t.Errorf("Premultiply = %+v, want %+v", got, want)
	}
}

func TestVec4RoundTrip(t *testing.T) {
	c := RGBA{R: 0.1, G: 0.2, B: 0.3, A: 0.4}
	if got := FromVec4(c.Vec4()); got != c {
		t.Errorf("FromVec4(Vec4()) = %+v, want %+v", got, c)
	}
}

func TestHSL(t *testing.T) {
	tests := []struct {
		c       RGBA
		h, s, l float32
	}{
		{Red, 0, 1, 0.5},
		{Green, 1.0 / 3, 1, 0.5},
		{Blue, 2.0 / 3, 1, 0.5},
		{White, 0, 0, 1},
		{Black, 0, 0, 0},
	}
	for _, tt := range tests {
		h, s, l := tt.c.HSL()
		if !approx(h, tt.h) || !approx(s, tt.s) || !approx(l, tt.l) {
			t.Errorf("%+v.HSL() = (%g, %g, %g), want (%g, %g, %g)", tt.c, h, s, l, tt.h, tt.s, tt.l)
		}
		if back := HSL(h, s, l); !approxColor(back, tt.c) {
			t.Errorf("HSL(%g, %g, %g) = %+v, want %+v", h, s, l, back, tt.c)
		}
	}
}

func TestComplement(t *testing.T) {
	tests := []struct {
		c, want RGBA
	}{
		{Black, White},
		{White, Black},
		{Red, RGB(0, 1, 1)},
		{RGBA{R: 0, G: 0, B: 1, A: 0.5}, RGBA{R: 1, G: 1, B: 0, A: 0.5}},
	}
	for _, tt := range tests {
		if got := tt.c.Complement(); !approxColor(got, tt.want) {
			t.Errorf("%+v.Complement() = %+v, want %+v", tt.c, got, tt.want)
		}
	}
}
