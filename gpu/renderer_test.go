//go:build !nogpu

package gpu

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/cellquad"
)

func newTestRenderer(t *testing.T, w, h int) *Renderer {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)

	r, err := NewRenderer(device, queue, DefaultRendererConfig(w, h))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	t.Cleanup(r.Destroy)
	return r
}

func TestNewRendererValidation(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	tests := []struct {
		name   string
		build  func() (*Renderer, error)
		target error
	}{
		{"nil device", func() (*Renderer, error) {
			return NewRenderer(nil, queue, DefaultRendererConfig(10, 10))
		}, ErrNoDevice},
		{"nil queue", func() (*Renderer, error) {
			return NewRenderer(device, nil, DefaultRendererConfig(10, 10))
		}, ErrNoDevice},
		{"zero width", func() (*Renderer, error) {
			return NewRenderer(device, queue, DefaultRendererConfig(0, 10))
		}, ErrZeroWindowSize},
		{"negative height", func() (*Renderer, error) {
			return NewRenderer(device, queue, DefaultRendererConfig(10, -1))
		}, ErrZeroWindowSize},
		{"depth format", func() (*Renderer, error) {
			cfg := DefaultRendererConfig(10, 10)
			cfg.Format = gputypes.TextureFormatDepth24PlusStencil8
			return NewRenderer(device, queue, cfg)
		}, ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tt.build()
			if !errors.Is(err, tt.target) {
				t.Errorf("err = %v, want %v", err, tt.target)
			}
			if r != nil {
				t.Error("expected nil renderer on error")
			}
		})
	}
}

func TestDefaultRendererConfig(t *testing.T) {
	cfg := DefaultRendererConfig(640, 480)
	if cfg.Width != 640 || cfg.Height != 480 {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("format = %v, want BGRA8Unorm", cfg.Format)
	}
	if cfg.Shader != ShaderWGSL {
		t.Errorf("shader = %v, want WGSL", cfg.Shader)
	}
	if cfg.Blend != cellquad.BlendTerminal {
		t.Errorf("blend = %+v, want BlendTerminal", cfg.Blend)
	}
}

func TestRendererResize(t *testing.T) {
	r := newTestRenderer(t, 100, 50)

	if err := r.Resize(0, 20); !errors.Is(err, ErrZeroWindowSize) {
		t.Errorf("Resize(0, 20) = %v, want ErrZeroWindowSize", err)
	}
	if w, h := r.Size(); w != 100 || h != 50 {
		t.Errorf("size after rejected resize = %dx%d, want 100x50", w, h)
	}

	if err := r.Resize(200, 80); err != nil {
		t.Fatalf("Resize(200, 80): %v", err)
	}
	if w, h := r.Size(); w != 200 || h != 80 {
		t.Errorf("size = %dx%d, want 200x80", w, h)
	}
}

func TestRendererRenderToImage(t *testing.T) {
	r := newTestRenderer(t, 64, 32)

	q := cellquad.Quad([4]float32{0, 64, 0, 32}, [4]float32{0, 1, 0, 1}, f32.Vec4{1, 0, 0, 1})
	img, err := r.RenderToImage([]Batch{{Vertices: q[:]}})
	if err != nil {
		t.Fatalf("RenderToImage: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 64, 32) {
		t.Errorf("bounds = %v, want 64x32", img.Bounds())
	}
	if r.pipeline.pipeline == nil {
		t.Error("expected pipeline after first frame")
	}
	if r.targetW != 64 || r.targetH != 32 {
		t.Errorf("target = %dx%d, want 64x32", r.targetW, r.targetH)
	}

	// Target follows resizes.
	if err := r.Resize(16, 16); err != nil {
		t.Fatal(err)
	}
	img, err = r.RenderToImage(nil)
	if err != nil {
		t.Fatalf("RenderToImage after resize: %v", err)
	}
	if img.Bounds().Dx() != 16 || r.targetW != 16 {
		t.Errorf("target not resized: image %v, target %dx%d", img.Bounds(), r.targetW, r.targetH)
	}
}

func TestRendererWithTexture(t *testing.T) {
	r := newTestRenderer(t, 8, 8)

	src := cellquad.NewTexture(4, 2)
	src.Fill(f32.Vec4{0, 1, 0, 1})
	tex, err := r.NewTexture(src)
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	defer tex.Destroy()

	if w, h := tex.Size(); w != 4 || h != 2 {
		t.Errorf("texture size = %dx%d, want 4x2", w, h)
	}

	q := cellquad.Quad([4]float32{0, 8, 0, 8}, [4]float32{0, 1, 0, 1}, f32.Vec4{1, 1, 1, 1})
	if _, err := r.RenderToImage([]Batch{{Vertices: q[:], Texture: tex}}); err != nil {
		t.Fatalf("RenderToImage: %v", err)
	}
}

func TestRendererTextureErrors(t *testing.T) {
	r := newTestRenderer(t, 8, 8)

	if _, err := r.NewTexture(nil); !errors.Is(err, ErrNilTexture) {
		t.Errorf("NewTexture(nil) = %v, want ErrNilTexture", err)
	}
	if _, err := r.NewTextureFromImage(nil); !errors.Is(err, ErrNilTexture) {
		t.Errorf("NewTextureFromImage(nil) = %v, want ErrNilTexture", err)
	}

	tex, err := r.NewTextureFromImage(image.NewRGBA(image.Rect(0, 0, 3, 3)))
	if err != nil {
		t.Fatalf("NewTextureFromImage: %v", err)
	}
	defer tex.Destroy()

	if err := tex.Upload(image.NewRGBA(image.Rect(0, 0, 2, 2))); !errors.Is(err, ErrTextureSize) {
		t.Errorf("Upload mismatched = %v, want ErrTextureSize", err)
	}
	if err := tex.UploadTexture(nil); !errors.Is(err, ErrNilTexture) {
		t.Errorf("UploadTexture(nil) = %v, want ErrNilTexture", err)
	}
	if err := tex.UploadTexture(cellquad.NewTexture(3, 3)); err != nil {
		t.Errorf("UploadTexture matching size: %v", err)
	}
}

func TestPrepareFrame(t *testing.T) {
	r := newTestRenderer(t, 8, 8)

	q := cellquad.Quad([4]float32{0, 4, 0, 4}, [4]float32{0, 1, 0, 1}, f32.Vec4{1, 1, 1, 1})
	frame, err := r.PrepareFrame([]Batch{
		{},                // empty
		{Vertices: q[:2]}, // partial triangle
		{Vertices: q[:]},  // two triangles
		{Vertices: q[:4]}, // one triangle, trailing vertex dropped
	})
	if err != nil {
		t.Fatalf("PrepareFrame: %v", err)
	}
	defer frame.Release()

	if len(frame.draws) != 2 {
		t.Errorf("draws = %d, want 2", len(frame.draws))
	}
	if got := frame.Vertices(); got != 9 {
		t.Errorf("Vertices() = %d, want 9", got)
	}

	frame.Release()
	if frame.Vertices() != 0 {
		t.Error("Release should clear draws")
	}
}

func TestRendererDestroy(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := NewRenderer(device, queue, DefaultRendererConfig(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.RenderToImage(nil); err != nil {
		t.Fatal(err)
	}

	r.Destroy()
	r.Destroy()

	if _, err := r.RenderToImage(nil); !errors.Is(err, ErrDestroyed) {
		t.Errorf("RenderToImage after Destroy = %v, want ErrDestroyed", err)
	}
	if err := r.Resize(8, 8); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Resize after Destroy = %v, want ErrDestroyed", err)
	}
}

func TestShaderFormatString(t *testing.T) {
	if ShaderWGSL.String() != "WGSL" || ShaderSPIRV.String() != "SPIR-V" || ShaderFormat(9).String() != "unknown" {
		t.Error("unexpected ShaderFormat names")
	}
}

// failingEncoderDevice hands out encoders that fail at one step and records
// whether they were discarded.
type failingEncoderDevice struct {
	hal.Device
	failBegin bool
	discarded int
}

func (d *failingEncoderDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &failingEncoder{CommandEncoder: enc, device: d}, nil
}

type failingEncoder struct {
	hal.CommandEncoder
	device *failingEncoderDevice
}

var errEncoder = errors.New("encoder failure")

func (e *failingEncoder) BeginEncoding(label string) error {
	if e.device.failBegin {
		return errEncoder
	}
	return e.CommandEncoder.BeginEncoding(label)
}

func (e *failingEncoder) EndEncoding() (hal.CommandBuffer, error) {
	if !e.device.failBegin {
		return nil, errEncoder
	}
	return e.CommandEncoder.EndEncoding()
}

func (e *failingEncoder) DiscardEncoding() {
	e.device.discarded++
	e.CommandEncoder.DiscardEncoding()
}

func TestRenderToImageDiscardsFailedEncoder(t *testing.T) {
	for _, tt := range []struct {
		name      string
		failBegin bool
	}{
		{"begin", true},
		{"end", false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			device, queue, cleanup := createNoopDevice(t)
			defer cleanup()
			dev := &failingEncoderDevice{Device: device, failBegin: tt.failBegin}

			r, err := NewRenderer(dev, queue, DefaultRendererConfig(4, 4))
			if err != nil {
				t.Fatal(err)
			}
			defer r.Destroy()

			if _, err := r.RenderToImage(nil); !errors.Is(err, errEncoder) {
				t.Fatalf("RenderToImage = %v, want encoder failure", err)
			}
			if dev.discarded != 1 {
				t.Errorf("DiscardEncoding called %d times, want 1", dev.discarded)
			}
		})
	}
}
