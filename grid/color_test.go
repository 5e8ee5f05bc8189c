package grid

import "testing"

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	tests := []struct {
		i    int
		want [3]uint8
	}{
		{0, [3]uint8{0x28, 0x28, 0x28}},
		{15, [3]uint8{0xeb, 0xdb, 0xb2}},
		{16, [3]uint8{0, 0, 0}},
		{16 + 36*5 + 6*5 + 5, [3]uint8{212, 212, 212}},
		{16 + 36*1, [3]uint8{42, 0, 0}},
		{232, [3]uint8{0, 0, 0}},
		{255, [3]uint8{244, 244, 244}},
	}
	for _, tt := range tests {
		if got := p[tt.i]; got != tt.want {
			t.Errorf("palette[%d] = %v, want %v", tt.i, got, tt.want)
		}
	}
}

func TestColorResolve(t *testing.T) {
	p := DefaultPalette()
	if got := Index(1).Resolve(&p); got != p[1] {
		t.Errorf("Index(1) = %v, want %v", got, p[1])
	}
	if got := RGB(1, 2, 3).Resolve(&p); got != [3]uint8{1, 2, 3} {
		t.Errorf("RGB = %v", got)
	}
	c := RGB(255, 0, 0).RGBA(&p)
	if c.R != 1 || c.G != 0 || c.A != 1 {
		t.Errorf("RGBA = %+v, want opaque red", c)
	}
}

func TestColorComplement(t *testing.T) {
	p := DefaultPalette()
	tests := []struct {
		in, want Color
	}{
		{RGB(0, 0, 0), RGB(255, 255, 255)},
		{RGB(255, 255, 255), RGB(0, 0, 0)},
		{RGB(255, 0, 0), RGB(0, 255, 255)},
	}
	for _, tt := range tests {
		if got := tt.in.Complement(&p); got != tt.want {
			t.Errorf("%v.Complement() = %v, want %v", tt.in, got, tt.want)
		}
	}
	if !Index(0).Complement(&p).IsRGB() {
		t.Error("complement of an indexed color should be direct RGB")
	}
}

func TestColorString(t *testing.T) {
	if got := Index(7).String(); got != "index(7)" {
		t.Errorf("got %q", got)
	}
	if got := RGB(0xab, 0x01, 0xff).String(); got != "#ab01ff" {
		t.Errorf("got %q", got)
	}
}
