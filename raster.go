package cellquad

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"sync"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/cellquad/internal/parallel"
)

// Canvas is a float32 RGBA color target. Values are stored as produced by
// the blend state; with BlendTerminal they are premultiplied.
type Canvas struct {
	width  int
	height int
	pix    []float32
}

// NewCanvas creates a transparent canvas. Dimensions below 1 are raised to 1.
func NewCanvas(width, height int) *Canvas {
	width = max(width, 1)
	height = max(height, 1)
	return &Canvas{width: width, height: height, pix: make([]float32, width*height*4)}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// At returns the pixel at (x, y).
func (c *Canvas) At(x, y int) f32.Vec4 {
	i := (y*c.width + x) * 4
	return f32.Vec4{c.pix[i], c.pix[i+1], c.pix[i+2], c.pix[i+3]}
}

func (c *Canvas) set(x, y int, v f32.Vec4) {
	i := (y*c.width + x) * 4
	c.pix[i], c.pix[i+1], c.pix[i+2], c.pix[i+3] = v[0], v[1], v[2], v[3]
}

// Clear fills the canvas with the premultiplied form of col.
func (c *Canvas) Clear(col RGBA) {
	v := col.Premultiply().Vec4()
	for i := 0; i < len(c.pix); i += 4 {
		c.pix[i], c.pix[i+1], c.pix[i+2], c.pix[i+3] = v[0], v[1], v[2], v[3]
	}
}

// Image converts the canvas to an 8-bit image, clamping each component to
// [0, 1]. Non-finite components become 0.
func (c *Canvas) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	for i, v := range c.pix {
		img.Pix[i] = unit8(v)
	}
	return img
}

// SavePNG writes the canvas to path as a PNG image.
func (c *Canvas) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cellquad: create %s: %w", path, err)
	}
	if err := png.Encode(f, c.Image()); err != nil {
		_ = f.Close()
		return fmt.Errorf("cellquad: encode %s: %w", path, err)
	}
	return f.Close()
}

func unit8(v float32) uint8 {
	switch {
	case !(v > 0): // also catches NaN
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

// DrawCall is one draw of a triangle list through the vertex and fragment
// stages.
type DrawCall struct {
	// Vertices is the triangle list. A trailing partial triangle is ignored.
	Vertices []Vertex

	// Window holds the uniforms shared by every vertex invocation.
	Window WindowUniforms

	// Texture is the bound texture. Nil binds WhiteTexture.
	Texture *Texture

	// Blend is the color target blend state. Nil means BlendReplace.
	Blend *BlendState
}

// Rasterizer is the CPU host for the vertex and fragment stages. It plays
// the part of the hardware rasterizer: viewport transform, coverage with
// the top-left fill rule, barycentric interpolation and blending.
//
// Fragments are shaded in parallel by horizontal bands; each band owns its
// rows so no two workers ever write the same pixel. Draw calls are
// serialized.
type Rasterizer struct {
	mu         sync.Mutex
	canvas     *Canvas
	pool       *parallel.WorkerPool
	bandHeight int
	white      *Texture
}

// NewRasterizer creates a rasterizer drawing into a new width x height
// canvas.
func NewRasterizer(width, height int, opts ...RasterizerOption) *Rasterizer {
	o := defaultRasterizerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Rasterizer{
		canvas:     NewCanvas(width, height),
		pool:       parallel.NewWorkerPool(o.workers),
		bandHeight: o.bandHeight,
		white:      WhiteTexture(),
	}
}

// Canvas returns the color target.
func (r *Rasterizer) Canvas() *Canvas {
	return r.canvas
}

// Clear fills the color target with col.
func (r *Rasterizer) Clear(col RGBA) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.canvas.Clear(col)
}

// Close stops the fragment workers. The canvas stays readable.
func (r *Rasterizer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pool.Close()
}

// screenTriangle is a triangle after the vertex stage and viewport
// transform, wound so that area is positive.
type screenTriangle struct {
	x, y       [3]float32
	out        [3]VertexOutput
	area       float32
	minX, maxX int
	minY, maxY int
	topLeft    [3]bool
}

// Draw executes call and returns the number of triangles that reached the
// fragment stage. Triangles with non-finite or degenerate screen positions
// are dropped.
func (r *Rasterizer) Draw(call DrawCall) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	tex := call.Texture
	if tex == nil {
		tex = r.white
	}
	blend := BlendReplace
	if call.Blend != nil {
		blend = *call.Blend
	}

	n := len(call.Vertices) / 3 * 3
	outputs := make([]VertexOutput, n)
	for i := range outputs {
		outputs[i] = VertexStage(uint32(i), call.Vertices, call.Window) //nolint:gosec // i < len(vertices)
	}

	tris := make([]screenTriangle, 0, n/3)
	for i := 0; i < n; i += 3 {
		if t, ok := r.setup(outputs[i], outputs[i+1], outputs[i+2]); ok {
			tris = append(tris, t)
		}
	}

	Logger().Debug("cellquad: draw",
		"vertices", len(call.Vertices),
		"triangles", n/3,
		"visible", len(tris))

	if len(tris) == 0 {
		return 0
	}

	bands := (r.canvas.height + r.bandHeight - 1) / r.bandHeight
	work := make([]func(), 0, bands)
	for b := range bands {
		y0 := b * r.bandHeight
		y1 := min(y0+r.bandHeight, r.canvas.height)
		work = append(work, func() {
			for i := range tris {
				r.shade(&tris[i], y0, y1, tex, blend)
			}
		})
	}
	r.pool.ExecuteAll(work)

	return len(tris)
}

// setup applies the viewport transform and computes the triangle's bounds.
func (r *Rasterizer) setup(a, b, c VertexOutput) (screenTriangle, bool) {
	var t screenTriangle
	t.out = [3]VertexOutput{a, b, c}

	w := float32(r.canvas.width)
	h := float32(r.canvas.height)
	for i, o := range t.out {
		p := o.Position
		t.x[i] = (p[0]/p[3] + 1) / 2 * w
		t.y[i] = (1 - p[1]/p[3]) / 2 * h
		if !finite(t.x[i]) || !finite(t.y[i]) {
			return t, false
		}
	}

	t.area = edge(t.x[0], t.y[0], t.x[1], t.y[1], t.x[2], t.y[2])
	if t.area == 0 || !finite(t.area) {
		return t, false
	}
	if t.area < 0 {
		t.x[1], t.x[2] = t.x[2], t.x[1]
		t.y[1], t.y[2] = t.y[2], t.y[1]
		t.out[1], t.out[2] = t.out[2], t.out[1]
		t.area = -t.area
	}

	// Edge i is opposite vertex i.
	for i := range 3 {
		j, k := (i+1)%3, (i+2)%3
		t.topLeft[i] = isTopLeft(t.x[j], t.y[j], t.x[k], t.y[k])
	}

	loX := min(t.x[0], t.x[1], t.x[2])
	hiX := max(t.x[0], t.x[1], t.x[2])
	loY := min(t.y[0], t.y[1], t.y[2])
	hiY := max(t.y[0], t.y[1], t.y[2])

	t.minX = max(int(math.Floor(float64(loX))), 0)
	t.maxX = min(int(math.Ceil(float64(hiX))), r.canvas.width-1)
	t.minY = max(int(math.Floor(float64(loY))), 0)
	t.maxY = min(int(math.Ceil(float64(hiY))), r.canvas.height-1)
	if t.minX > t.maxX || t.minY > t.maxY {
		return t, false
	}
	return t, true
}

// shade covers the rows [y0, y1) of one triangle.
func (r *Rasterizer) shade(t *screenTriangle, y0, y1 int, tex *Texture, blend BlendState) {
	y0 = max(y0, t.minY)
	y1 = min(y1, t.maxY+1)
	inv := 1 / t.area

	for y := y0; y < y1; y++ {
		py := float32(y) + 0.5
		for x := t.minX; x <= t.maxX; x++ {
			px := float32(x) + 0.5

			w0 := edge(t.x[1], t.y[1], t.x[2], t.y[2], px, py)
			w1 := edge(t.x[2], t.y[2], t.x[0], t.y[0], px, py)
			w2 := edge(t.x[0], t.y[0], t.x[1], t.y[1], px, py)
			if !covers(w0, t.topLeft[0]) || !covers(w1, t.topLeft[1]) || !covers(w2, t.topLeft[2]) {
				continue
			}

			in := Interpolate(t.out[0], t.out[1], t.out[2], w0*inv, w1*inv, w2*inv)
			src := FragmentStage(in, tex)
			r.canvas.set(x, y, blend.Apply(src, r.canvas.At(x, y)))
		}
	}
}

// edge returns twice the signed area of (a, b, p). With Y pointing down it
// is positive when p lies clockwise of a->b on screen.
func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// isTopLeft reports whether the clockwise edge a->b is a top edge
// (horizontal, pointing right) or a left edge (pointing up).
func isTopLeft(ax, ay, bx, by float32) bool {
	dx, dy := bx-ax, by-ay
	return (dy == 0 && dx > 0) || dy < 0
}

func covers(w float32, topLeft bool) bool {
	return w > 0 || (w == 0 && topLeft)
}

func finite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}
