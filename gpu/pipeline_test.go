//go:build !nogpu

package gpu

import (
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/cellquad"
)

func TestQuadPipelineCreateAndDestroy(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	p := NewQuadPipeline(device, gputypes.TextureFormatBGRA8Unorm, ShaderWGSL, cellquad.BlendTerminal)
	if err := p.ensurePipeline(); err != nil {
		t.Fatalf("ensurePipeline: %v", err)
	}
	if p.shader == nil || p.bindLayout == nil || p.pipeLayout == nil || p.sampler == nil || p.pipeline == nil {
		t.Fatal("expected all pipeline resources after ensurePipeline")
	}

	first := p.pipeline
	if err := p.ensurePipeline(); err != nil {
		t.Fatalf("second ensurePipeline: %v", err)
	}
	if p.pipeline != first {
		t.Error("ensurePipeline should be idempotent")
	}

	p.Destroy()
	if p.pipeline != nil || p.sampler != nil || p.shader != nil {
		t.Error("Destroy should release all resources")
	}
	p.Destroy()
}

func TestQuadPipelineSPIRV(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	p := NewQuadPipeline(device, gputypes.TextureFormatRGBA8Unorm, ShaderSPIRV, cellquad.BlendTerminal)
	defer p.Destroy()

	if err := p.ensurePipeline(); err != nil {
		msg := err.Error()
		if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
			t.Skipf("naga feature not available: %v", err)
		}
		t.Fatalf("ensurePipeline: %v", err)
	}
	if p.pipeline == nil {
		t.Error("expected pipeline from SPIR-V source")
	}
}

func TestQuadVertexLayout(t *testing.T) {
	layouts := quadVertexLayout()
	if len(layouts) != 1 {
		t.Fatalf("expected 1 vertex buffer layout, got %d", len(layouts))
	}
	l := layouts[0]
	if l.ArrayStride != cellquad.VertexStride {
		t.Errorf("stride = %d, want %d", l.ArrayStride, cellquad.VertexStride)
	}

	want := []struct {
		format   gputypes.VertexFormat
		offset   uint64
		location uint32
	}{
		{gputypes.VertexFormatFloat32x2, 0, 0},
		{gputypes.VertexFormatFloat32x2, 8, 1},
		{gputypes.VertexFormatFloat32x4, 16, 2},
	}
	if len(l.Attributes) != len(want) {
		t.Fatalf("expected %d attributes, got %d", len(want), len(l.Attributes))
	}
	for i, w := range want {
		a := l.Attributes[i]
		if a.Format != w.format || a.Offset != w.offset || a.ShaderLocation != w.location {
			t.Errorf("attribute %d = %+v, want %+v", i, a, w)
		}
	}
}

func TestBlendStateTerminal(t *testing.T) {
	b := blendState(cellquad.BlendTerminal)
	if b.Color.SrcFactor != gputypes.BlendFactorOne || b.Color.DstFactor != gputypes.BlendFactorOneMinusSrcAlpha {
		t.Errorf("color component = %+v", b.Color)
	}
	if b.Alpha.SrcFactor != gputypes.BlendFactorSrcAlpha || b.Alpha.DstFactor != gputypes.BlendFactorOneMinusSrcAlpha {
		t.Errorf("alpha component = %+v", b.Alpha)
	}
	if b.Color.Operation != gputypes.BlendOperationAdd || b.Alpha.Operation != gputypes.BlendOperationAdd {
		t.Error("operations should be add")
	}
}

func TestBlendFactorMapping(t *testing.T) {
	tests := []struct {
		in   cellquad.BlendFactor
		want gputypes.BlendFactor
	}{
		{cellquad.BlendFactorZero, gputypes.BlendFactorZero},
		{cellquad.BlendFactorOne, gputypes.BlendFactorOne},
		{cellquad.BlendFactorSrcAlpha, gputypes.BlendFactorSrcAlpha},
		{cellquad.BlendFactorOneMinusSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha},
		{cellquad.BlendFactorDstAlpha, gputypes.BlendFactorDstAlpha},
		{cellquad.BlendFactorOneMinusDstAlpha, gputypes.BlendFactorOneMinusDstAlpha},
	}
	for _, tt := range tests {
		if got := blendFactor(tt.in); got != tt.want {
			t.Errorf("blendFactor(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
