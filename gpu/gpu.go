//go:build !nogpu

// Package gpu runs the quad pipeline on a gogpu/wgpu HAL device.
//
// A [Renderer] owns the render pipeline, the window uniform buffer, a white
// fallback texture and, for offscreen use, a color target with a readback
// path. All objects are created lazily and released by Destroy in reverse
// creation order.
//
// Any HAL backend works, including the noop backend used by the tests:
//
//	r, err := gpu.NewRenderer(device, queue, gpu.DefaultRendererConfig(800, 600))
//	if err != nil {
//	    return err
//	}
//	defer r.Destroy()
//
//	img, err := r.RenderToImage([]gpu.Batch{{Vertices: vertices}})
package gpu

import (
	"errors"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/cellquad"
)

// Sentinel errors returned by the GPU host.
var (
	// ErrZeroWindowSize is returned when a width or height is not positive.
	// The vertex stage divides by the window size.
	ErrZeroWindowSize = errors.New("gpu: window size must be positive")

	// ErrNilTexture is returned when a nil texture is uploaded.
	ErrNilTexture = errors.New("gpu: nil texture")

	// ErrNoDevice is returned when a renderer is created without a device or queue.
	ErrNoDevice = errors.New("gpu: no device")

	// ErrUnsupportedFormat is returned for color target formats the readback
	// path cannot convert.
	ErrUnsupportedFormat = errors.New("gpu: unsupported color target format")

	// ErrTextureSize is returned when uploaded pixels do not match the
	// texture dimensions.
	ErrTextureSize = errors.New("gpu: image size does not match texture")

	// ErrDestroyed is returned by operations on a destroyed renderer.
	ErrDestroyed = errors.New("gpu: renderer destroyed")
)

// ShaderFormat selects how the quad program reaches the device.
type ShaderFormat int

const (
	// ShaderWGSL hands the WGSL source to the device, which compiles it.
	ShaderWGSL ShaderFormat = iota

	// ShaderSPIRV compiles the program with naga first and hands the
	// device SPIR-V words.
	ShaderSPIRV
)

// String returns the format name.
func (f ShaderFormat) String() string {
	switch f {
	case ShaderWGSL:
		return "WGSL"
	case ShaderSPIRV:
		return "SPIR-V"
	default:
		return "unknown"
	}
}

// RendererConfig configures a Renderer.
type RendererConfig struct {
	// Width and Height are the window size in pixels.
	Width  int
	Height int

	// Format is the color target format. BGRA8Unorm and RGBA8Unorm are
	// supported.
	Format gputypes.TextureFormat

	// Shader selects the shader module source.
	Shader ShaderFormat

	// ClearColor is the straight-alpha color the target is cleared to at
	// the start of every offscreen frame.
	ClearColor cellquad.RGBA

	// Blend is the color target blend state.
	Blend cellquad.BlendState
}

// DefaultRendererConfig returns the configuration used by terminal
// renderers: BGRA8 target, WGSL shader, transparent clear and
// cellquad.BlendTerminal blending.
func DefaultRendererConfig(width, height int) RendererConfig {
	return RendererConfig{
		Width:      width,
		Height:     height,
		Format:     gputypes.TextureFormatBGRA8Unorm,
		Shader:     ShaderWGSL,
		ClearColor: cellquad.Transparent,
		Blend:      cellquad.BlendTerminal,
	}
}

func supportedFormat(f gputypes.TextureFormat) bool {
	return f == gputypes.TextureFormatBGRA8Unorm || f == gputypes.TextureFormatRGBA8Unorm
}
