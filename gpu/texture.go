//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"

	"github.com/gogpu/cellquad"
)

// Texture is an RGBA8 texture sampled by the fragment stage.
type Texture struct {
	device hal.Device
	queue  hal.Queue
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
}

func newTexture(device hal.Device, queue hal.Queue, width, height int, label string) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: texture %dx%d", ErrZeroWindowSize, width, height)
	}
	w := uint32(width)  //nolint:gosec // checked positive
	h := uint32(height) //nolint:gosec // checked positive

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %s: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view %s: %w", label, err)
	}
	return &Texture{device: device, queue: queue, tex: tex, view: view, width: w, height: h}, nil
}

// Size returns the texture dimensions in texels.
func (t *Texture) Size() (width, height int) {
	return int(t.width), int(t.height)
}

// Upload replaces the texture contents with img, which must have the
// texture's dimensions.
func (t *Texture) Upload(img image.Image) error {
	b := img.Bounds()
	if b.Dx() != int(t.width) || b.Dy() != int(t.height) {
		return fmt.Errorf("%w: image %dx%d, texture %dx%d", ErrTextureSize, b.Dx(), b.Dy(), t.width, t.height)
	}
	return t.write(packRGBA(img))
}

// UploadTexture replaces the texture contents with a CPU texture of the
// same dimensions.
func (t *Texture) UploadTexture(src *cellquad.Texture) error {
	if src == nil {
		return ErrNilTexture
	}
	if src.Width() != int(t.width) || src.Height() != int(t.height) {
		return fmt.Errorf("%w: source %dx%d, texture %dx%d", ErrTextureSize, src.Width(), src.Height(), t.width, t.height)
	}
	return t.write(textureBytes(src))
}

// DirtyImage is an image that records which area changed since it was last
// uploaded. *glyph.Cache implements it for its atlas.
type DirtyImage interface {
	Atlas() *image.RGBA
	Dirty() image.Rectangle
	MarkClean()
}

// Sync uploads src when it has changed since the last upload and reports
// whether anything was written. The whole image is sent.
func (t *Texture) Sync(src DirtyImage) (bool, error) {
	if src.Dirty().Empty() {
		return false, nil
	}
	if err := t.Upload(src.Atlas()); err != nil {
		return false, err
	}
	src.MarkClean()
	return true, nil
}

func (t *Texture) write(data []byte) error {
	err := t.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		data,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: t.width * 4, RowsPerImage: t.height},
		&hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("write texture: %w", err)
	}
	return nil
}

// Destroy releases the texture. Safe to call multiple times.
func (t *Texture) Destroy() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// packRGBA returns the tightly packed RGBA8 bytes of img.
func packRGBA(img image.Image) []byte {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == b.Dx()*4 && rgba.Rect.Min == (image.Point{}) {
		return rgba.Pix[:b.Dx()*b.Dy()*4]
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst.Pix
}

// textureBytes quantizes a float texture to RGBA8.
func textureBytes(src *cellquad.Texture) []byte {
	w, h := src.Width(), src.Height()
	out := make([]byte, 0, w*h*4)
	for y := range h {
		for x := range w {
			c := src.At(x, y)
			out = append(out, quantize(c[0]), quantize(c[1]), quantize(c[2]), quantize(c[3]))
		}
	}
	return out
}

func quantize(v float32) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}
