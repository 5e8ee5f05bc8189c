//go:build !nogpu

package gpu

import (
	"fmt"
	"image"
	"sync"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/cellquad"
)

// Batch is one draw: a triangle list and the texture it samples.
type Batch struct {
	Vertices []cellquad.Vertex

	// Texture is sampled by the fragment stage. Nil binds the renderer's
	// white texture, so fragments take the vertex color.
	Texture *Texture
}

// Frame holds the per-frame buffers and bind groups built from a list of
// batches. Release it once the GPU has consumed the commands recorded from
// it.
type Frame struct {
	device hal.Device
	draws  []frameDraw
}

type frameDraw struct {
	vertBuf   hal.Buffer
	bindGroup hal.BindGroup
	count     uint32
}

// Vertices returns the total number of vertices the frame draws.
func (f *Frame) Vertices() int {
	n := 0
	for _, d := range f.draws {
		n += int(d.count)
	}
	return n
}

// Release destroys the frame's buffers and bind groups. Safe to call
// multiple times.
func (f *Frame) Release() {
	for _, d := range f.draws {
		f.device.DestroyBindGroup(d.bindGroup)
		f.device.DestroyBuffer(d.vertBuf)
	}
	f.draws = nil
}

// Renderer draws quad batches through the WGSL program on a HAL device.
// It is safe for concurrent use; frames are serialized.
type Renderer struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue
	config RendererConfig

	pipeline   *QuadPipeline
	uniformBuf hal.Buffer
	white      *Texture

	// Offscreen color target, recreated when the window size changes.
	target     hal.Texture
	targetView hal.TextureView
	targetW    uint32
	targetH    uint32

	destroyed bool
}

// NewRenderer creates a renderer and its window uniform buffer. The render
// pipeline is built on the first frame.
func NewRenderer(device hal.Device, queue hal.Queue, config RendererConfig) (*Renderer, error) {
	if device == nil || queue == nil {
		return nil, ErrNoDevice
	}
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrZeroWindowSize, config.Width, config.Height)
	}
	if !supportedFormat(config.Format) {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, config.Format)
	}

	r := &Renderer{
		device:   device,
		queue:    queue,
		config:   config,
		pipeline: NewQuadPipeline(device, config.Format, config.Shader, config.Blend),
	}

	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "quad_window_uniforms",
		Size:  cellquad.WindowUniformsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create uniform buffer: %w", err)
	}
	r.uniformBuf = buf
	if err := r.writeUniforms(); err != nil {
		r.Destroy()
		return nil, err
	}

	white, err := newTexture(device, queue, 1, 1, "quad_white")
	if err != nil {
		r.Destroy()
		return nil, err
	}
	if err := white.UploadTexture(cellquad.WhiteTexture()); err != nil {
		white.Destroy()
		r.Destroy()
		return nil, err
	}
	r.white = white

	cellquad.Logger().Info("cellquad: gpu renderer created",
		"width", config.Width, "height", config.Height, "shader", config.Shader.String())
	return r, nil
}

// Size returns the current window size.
func (r *Renderer) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config.Width, r.config.Height
}

// Resize updates the window uniforms. A non-positive dimension is
// rejected with ErrZeroWindowSize and the previous size is kept.
func (r *Renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed {
		return ErrDestroyed
	}
	if width <= 0 || height <= 0 {
		cellquad.Logger().Warn("cellquad: rejected resize",
			"width", width, "height", height,
			"keep_width", r.config.Width, "keep_height", r.config.Height)
		return fmt.Errorf("%w: %dx%d", ErrZeroWindowSize, width, height)
	}
	if width == r.config.Width && height == r.config.Height {
		return nil
	}
	r.config.Width, r.config.Height = width, height
	return r.writeUniforms()
}

func (r *Renderer) writeUniforms() error {
	u := cellquad.NewWindowUniforms(r.config.Width, r.config.Height)
	if err := r.queue.WriteBuffer(r.uniformBuf, 0, u.Encode()); err != nil {
		return fmt.Errorf("write window uniforms: %w", err)
	}
	return nil
}

// NewTexture uploads a CPU texture.
func (r *Renderer) NewTexture(src *cellquad.Texture) (*Texture, error) {
	if src == nil {
		return nil, ErrNilTexture
	}
	t, err := newTexture(r.device, r.queue, src.Width(), src.Height(), "quad_texture")
	if err != nil {
		return nil, err
	}
	if err := t.UploadTexture(src); err != nil {
		t.Destroy()
		return nil, err
	}
	return t, nil
}

// NewTextureFromImage uploads img, typically a glyph atlas.
func (r *Renderer) NewTextureFromImage(img image.Image) (*Texture, error) {
	if img == nil {
		return nil, ErrNilTexture
	}
	b := img.Bounds()
	t, err := newTexture(r.device, r.queue, b.Dx(), b.Dy(), "quad_image_texture")
	if err != nil {
		return nil, err
	}
	if err := t.Upload(img); err != nil {
		t.Destroy()
		return nil, err
	}
	return t, nil
}

// PrepareFrame builds vertex buffers and bind groups for batches. Empty
// batches are skipped.
func (r *Renderer) PrepareFrame(batches []Batch) (*Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prepareFrame(batches)
}

func (r *Renderer) prepareFrame(batches []Batch) (*Frame, error) {
	if r.destroyed {
		return nil, ErrDestroyed
	}
	if err := r.pipeline.ensurePipeline(); err != nil {
		return nil, err
	}

	frame := &Frame{device: r.device}
	var scratch []byte
	for i, b := range batches {
		n := len(b.Vertices) / 3 * 3
		if n == 0 {
			continue
		}
		tex := b.Texture
		if tex == nil {
			tex = r.white
		}

		scratch = cellquad.EncodeVertices(scratch, b.Vertices[:n])
		buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("quad_vertices_%d", i),
			Size:  uint64(len(scratch)),
			Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			frame.Release()
			return nil, fmt.Errorf("create vertex buffer: %w", err)
		}
		if err := r.queue.WriteBuffer(buf, 0, scratch); err != nil {
			r.device.DestroyBuffer(buf)
			frame.Release()
			return nil, fmt.Errorf("write vertex buffer: %w", err)
		}

		bg, err := r.pipeline.createBindGroup(r.uniformBuf, tex.view)
		if err != nil {
			r.device.DestroyBuffer(buf)
			frame.Release()
			return nil, err
		}
		frame.draws = append(frame.draws, frameDraw{vertBuf: buf, bindGroup: bg, count: uint32(n)}) //nolint:gosec // vertex counts fit uint32
	}

	cellquad.Logger().Debug("cellquad: gpu frame prepared",
		"batches", len(batches), "draws", len(frame.draws), "vertices", frame.Vertices())
	return frame, nil
}

// RecordDraws records the frame's draws into a render pass owned by the
// caller, such as a window surface pass.
func (r *Renderer) RecordDraws(rp hal.RenderPassEncoder, frame *Frame) {
	if frame == nil || len(frame.draws) == 0 {
		return
	}
	rp.SetPipeline(r.pipeline.pipeline)
	for _, d := range frame.draws {
		rp.SetBindGroup(0, d.bindGroup, nil)
		rp.SetVertexBuffer(0, d.vertBuf, 0)
		rp.Draw(d.count, 1, 0, 0)
	}
}

// RenderToImage draws batches into the offscreen target, cleared to the
// configured color, and reads the result back. Pixels are returned as
// stored; with BlendTerminal they are premultiplied, as image.RGBA expects.
func (r *Renderer) RenderToImage(batches []Batch) (*image.RGBA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frame, err := r.prepareFrame(batches)
	if err != nil {
		return nil, err
	}
	defer frame.Release()

	if err := r.ensureTarget(); err != nil {
		return nil, err
	}

	w, h := r.targetW, r.targetH
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	if err := r.encodeSubmitReadback(frame, img.Pix); err != nil {
		return nil, err
	}
	return img, nil
}

func (r *Renderer) encodeSubmitReadback(frame *Frame, dst []byte) error {
	w, h := r.targetW, r.targetH

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "quad_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("quad_frame"); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("begin encoding: %w", err)
	}

	cc := r.config.ClearColor.Premultiply()
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "quad_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       r.targetView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: float64(cc.R), G: float64(cc.G), B: float64(cc.B), A: float64(cc.A)},
		}},
	})
	r.RecordDraws(rp, frame)
	rp.End()

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.target,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	pitch := alignedRowPitch(w)
	stagingSize := uint64(pitch) * uint64(h)
	staging, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "quad_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer r.device.DestroyBuffer(staging)

	encoder.CopyTextureToBuffer(r.target, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: r.target, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.target,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	if _, err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := r.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}

	mapping, err := r.device.MapBuffer(staging, 0, stagingSize)
	if err != nil {
		return fmt.Errorf("map staging buffer: %w", err)
	}
	readback := make([]byte, stagingSize)
	copy(readback, unsafe.Slice((*byte)(mapping.Ptr), stagingSize))
	if err := r.device.UnmapBuffer(staging); err != nil {
		return fmt.Errorf("unmap staging buffer: %w", err)
	}
	unpackRows(dst, readback, w, h, pitch)
	if r.config.Format == gputypes.TextureFormatBGRA8Unorm {
		convertBGRAToRGBA(dst, int(w*h))
	}
	return nil
}

// ensureTarget creates the offscreen color target at the window size.
func (r *Renderer) ensureTarget() error {
	w := uint32(r.config.Width)  //nolint:gosec // validated positive
	h := uint32(r.config.Height) //nolint:gosec // validated positive
	if r.target != nil && r.targetW == w && r.targetH == h {
		return nil
	}
	r.destroyTarget()

	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "quad_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        r.config.Format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create target texture: %w", err)
	}
	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "quad_target_view",
		Format:        r.config.Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		return fmt.Errorf("create target view: %w", err)
	}
	r.target, r.targetView = tex, view
	r.targetW, r.targetH = w, h

	cellquad.Logger().Debug("cellquad: offscreen target created", "width", w, "height", h)
	return nil
}

func (r *Renderer) destroyTarget() {
	if r.targetView != nil {
		r.device.DestroyTextureView(r.targetView)
		r.targetView = nil
	}
	if r.target != nil {
		r.device.DestroyTexture(r.target)
		r.target = nil
	}
	r.targetW, r.targetH = 0, 0
}

// Destroy releases every GPU object owned by the renderer in reverse
// creation order. Textures created with NewTexture are owned by the caller.
// Safe to call multiple times.
func (r *Renderer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed {
		return
	}
	r.destroyed = true

	r.destroyTarget()
	if r.white != nil {
		r.white.Destroy()
		r.white = nil
	}
	if r.uniformBuf != nil {
		r.device.DestroyBuffer(r.uniformBuf)
		r.uniformBuf = nil
	}
	r.pipeline.Destroy()

	cellquad.Logger().Info("cellquad: gpu renderer destroyed")
}
