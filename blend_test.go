package cellquad

import (
	"testing"

	"golang.org/x/image/math/f32"
)

func TestBlendReplace(t *testing.T) {
	src := f32.Vec4{0.2, 0.4, 0.6, 0.5}
	dst := f32.Vec4{1, 1, 1, 1}
	if got := BlendReplace.Apply(src, dst); got != src {
		t.Errorf("BlendReplace = %v, want %v", got, src)
	}
}

func TestBlendTerminal(t *testing.T) {
	tests := []struct {
		name     string
		src, dst f32.Vec4
		want     f32.Vec4
	}{
		{
			name: "opaque source covers",
			src:  f32.Vec4{1, 0, 0, 1},
			dst:  f32.Vec4{0, 0, 1, 1},
			want: f32.Vec4{1, 0, 0, 1},
		},
		{
			name: "transparent source keeps target",
			src:  f32.Vec4{0, 0, 0, 0},
			dst:  f32.Vec4{0, 0, 1, 1},
			want: f32.Vec4{0, 0, 1, 1},
		},
		{
			// color: 0.5 + 0*0.5 ; alpha: 0.5*0.5 + 1*0.5
			name: "half coverage premultiplied",
			src:  f32.Vec4{0.5, 0.5, 0.5, 0.5},
			dst:  f32.Vec4{0, 0, 0, 1},
			want: f32.Vec4{0.5, 0.5, 0.5, 0.75},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BlendTerminal.Apply(tt.src, tt.dst); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlendFactorWeights(t *testing.T) {
	src := f32.Vec4{0, 0, 0, 0.25}
	dst := f32.Vec4{0, 0, 0, 0.75}
	tests := []struct {
		f    BlendFactor
		want float32
	}{
		{BlendFactorZero, 0},
		{BlendFactorOne, 1},
		{BlendFactorSrcAlpha, 0.25},
		{BlendFactorOneMinusSrcAlpha, 0.75},
		{BlendFactorDstAlpha, 0.75},
		{BlendFactorOneMinusDstAlpha, 0.25},
	}
	for _, tt := range tests {
		if got := tt.f.weight(src, dst); got != tt.want {
			t.Errorf("%v weight = %g, want %g", tt.f, got, tt.want)
		}
	}
}

func TestBlendFactorString(t *testing.T) {
	if got := BlendFactorOneMinusSrcAlpha.String(); got != "OneMinusSrcAlpha" {
		t.Errorf("String() = %q", got)
	}
	if got := BlendFactor(200).String(); got != "Unknown" {
		t.Errorf("String() = %q, want Unknown", got)
	}
}
