// Package glyph rasterizes runes from monospace OpenType faces into an RGBA
// atlas and describes where each glyph lives in it.
//
// Glyph masks are stored as premultiplied white, so the fragment stage
// turns a sampled texel into the vertex color scaled by coverage.
package glyph

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/cellquad"
	"github.com/gogpu/cellquad/internal/atlas"
)

var (
	// ErrMissingGlyph is returned when the face has no glyph for a rune.
	ErrMissingGlyph = errors.New("glyph: rune not in font")

	// ErrAtlasFull is returned when the atlas has no room for a glyph.
	ErrAtlasFull = errors.New("glyph: atlas is full")

	// ErrClosed is returned by Rasterize after Close.
	ErrClosed = errors.New("glyph: cache closed")
)

// glyphPadding is the empty border kept right of and below each glyph so
// neighbors never share texels.
const glyphPadding = 1

// Style selects a face variant.
type Style uint8

// Style flags. Bold and Italic combine.
const (
	Regular Style = 0
	Bold    Style = 1 << 0
	Italic  Style = 1 << 1

	BoldItalic = Bold | Italic
)

// String returns the style name.
func (s Style) String() string {
	switch s & BoldItalic {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bold-italic"
	default:
		return "regular"
	}
}

// Config configures a Cache.
type Config struct {
	// Size is the font size in points.
	Size float64

	// DPI is the output resolution.
	DPI float64

	// AtlasSize is the atlas edge length in pixels.
	AtlasSize int

	// Hinting selects glyph outline hinting.
	Hinting font.Hinting

	// Regular, Bold, Italic and BoldItalic hold OpenType font data for each
	// style. Nil entries fall back to the Go Mono family.
	Regular    []byte
	Bold       []byte
	Italic     []byte
	BoldItalic []byte
}

// DefaultConfig returns a 14pt Go Mono configuration with a 2048x2048 atlas.
func DefaultConfig() Config {
	return Config{
		Size:      14,
		DPI:       72,
		AtlasSize: 2048,
		Hinting:   font.HintingFull,
	}
}

// Metrics describes the monospace cell derived from the regular face, in
// pixels.
type Metrics struct {
	// Advance is the horizontal pen advance of one cell.
	Advance float32

	// Ascent is the distance from the top of the line to the baseline.
	Ascent float32

	// Descent is the distance from the baseline to the bottom of the line.
	Descent float32

	// LineHeight is the recommended distance between baselines.
	LineHeight float32
}

// CellSize returns the cell size in whole pixels.
func (m Metrics) CellSize() (width, height int) {
	return ceil(m.Advance), ceil(m.LineHeight)
}

func ceil(v float32) int {
	n := int(v)
	if float32(n) < v {
		n++
	}
	return n
}

// Glyph locates one rasterized rune in the atlas.
type Glyph struct {
	Rune  rune
	Style Style

	// Bounds is the glyph bitmap in atlas pixels. Empty for blank glyphs
	// such as space.
	Bounds image.Rectangle

	// Bearing is the offset from the pen position on the baseline to the
	// bitmap's top-left corner, Y down.
	Bearing image.Point

	// Advance is the horizontal pen advance in pixels.
	Advance float32

	atlasSize int
}

// Empty reports whether the glyph has no pixels.
func (g Glyph) Empty() bool {
	return g.Bounds.Empty()
}

// TexCoords returns the normalized {left, right, top, bottom} of the glyph
// in the atlas, the layout cellquad.Quad expects.
func (g Glyph) TexCoords() [4]float32 {
	if g.atlasSize == 0 {
		return [4]float32{}
	}
	s := float32(g.atlasSize)
	return [4]float32{
		float32(g.Bounds.Min.X) / s,
		float32(g.Bounds.Max.X) / s,
		float32(g.Bounds.Min.Y) / s,
		float32(g.Bounds.Max.Y) / s,
	}
}

// Quad returns the vertices drawing the glyph with its pen at baseline,
// a window-pixel position on the baseline.
func (g Glyph) Quad(baseline [2]float32, color [4]float32) [6]cellquad.Vertex {
	l := baseline[0] + float32(g.Bearing.X)
	t := baseline[1] + float32(g.Bearing.Y)
	pos := [4]float32{l, l + float32(g.Bounds.Dx()), t, t + float32(g.Bounds.Dy())}
	return cellquad.Quad(pos, g.TexCoords(), color)
}

type key struct {
	r     rune
	style Style
}

type styledFace struct {
	font *opentype.Font
	face font.Face
	buf  sfnt.Buffer
}

// Cache rasterizes glyphs on demand and packs them into an atlas image.
// It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	faces   [4]*styledFace
	packer  *atlas.Packer
	img     *image.RGBA
	glyphs  map[key]Glyph
	metrics Metrics

	// dirty is the atlas area changed since MarkClean; pending is the area
	// not yet copied into tex.
	dirty   image.Rectangle
	pending image.Rectangle
	tex     *cellquad.Texture

	closed bool
}

// NewCache parses the configured faces and allocates an empty atlas.
func NewCache(cfg Config) (*Cache, error) {
	if cfg.Size <= 0 || cfg.DPI <= 0 {
		return nil, fmt.Errorf("glyph: invalid size %gpt at %g dpi", cfg.Size, cfg.DPI)
	}
	if cfg.AtlasSize <= 0 {
		return nil, fmt.Errorf("glyph: invalid atlas size %d", cfg.AtlasSize)
	}

	sources := [4][]byte{
		Regular:    pick(cfg.Regular, gomono.TTF),
		Bold:       pick(cfg.Bold, gomonobold.TTF),
		Italic:     pick(cfg.Italic, gomonoitalic.TTF),
		BoldItalic: pick(cfg.BoldItalic, gomonobolditalic.TTF),
	}

	c := &Cache{
		packer: atlas.NewPacker(cfg.AtlasSize),
		img:    image.NewRGBA(image.Rect(0, 0, cfg.AtlasSize, cfg.AtlasSize)),
		glyphs: make(map[key]Glyph),
	}
	for style, data := range sources {
		f, err := opentype.Parse(data)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("glyph: parse %s face: %w", Style(style), err) //nolint:gosec // style < 4
		}
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    cfg.Size,
			DPI:     cfg.DPI,
			Hinting: cfg.Hinting,
		})
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("glyph: create %s face: %w", Style(style), err) //nolint:gosec // style < 4
		}
		c.faces[style] = &styledFace{font: f, face: face}
	}

	regular := c.faces[Regular].face
	m := regular.Metrics()
	adv, _ := regular.GlyphAdvance('M')
	c.metrics = Metrics{
		Advance:    fixedToFloat32(adv),
		Ascent:     fixedToFloat32(m.Ascent),
		Descent:    fixedToFloat32(m.Descent),
		LineHeight: fixedToFloat32(m.Height),
	}

	cellquad.Logger().Debug("cellquad: glyph cache created",
		"size", cfg.Size, "dpi", cfg.DPI, "atlas", cfg.AtlasSize,
		"advance", c.metrics.Advance, "line_height", c.metrics.LineHeight)
	return c, nil
}

func pick(data, fallback []byte) []byte {
	if data != nil {
		return data
	}
	return fallback
}

func fixedToFloat32(x fixed.Int26_6) float32 {
	return float32(x) / 64
}

// Metrics returns the cell metrics of the regular face.
func (c *Cache) Metrics() Metrics {
	return c.metrics
}

// AtlasSize returns the atlas edge length in pixels.
func (c *Cache) AtlasSize() int {
	return c.packer.Size()
}

// Get returns a glyph if it has already been rasterized.
func (c *Cache) Get(r rune, style Style) (Glyph, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.glyphs[key{r, style & BoldItalic}]
	return g, ok
}

// Len returns the number of cached glyphs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.glyphs)
}

// Rasterize returns the glyph for r in the given style, drawing it into
// the atlas on first use.
func (c *Cache) Rasterize(r rune, style Style) (Glyph, error) {
	style &= BoldItalic
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Glyph{}, ErrClosed
	}
	k := key{r, style}
	if g, ok := c.glyphs[k]; ok {
		return g, nil
	}

	sf := c.faces[style]
	idx, err := sf.font.GlyphIndex(&sf.buf, r)
	if err != nil || idx == 0 {
		cellquad.Logger().Warn("cellquad: glyph missing", "rune", string(r), "style", style.String())
		return Glyph{}, fmt.Errorf("%w: %q", ErrMissingGlyph, r)
	}

	dr, mask, maskp, advance, ok := sf.face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return Glyph{}, fmt.Errorf("%w: %q", ErrMissingGlyph, r)
	}

	g := Glyph{
		Rune:      r,
		Style:     style,
		Bearing:   dr.Min,
		Advance:   fixedToFloat32(advance),
		atlasSize: c.packer.Size(),
	}

	if !dr.Empty() {
		region, err := c.packer.Reserve(dr.Dx()+glyphPadding, dr.Dy()+glyphPadding)
		if err != nil {
			if errors.Is(err, atlas.ErrFull) {
				return Glyph{}, fmt.Errorf("%w: %q (%dx%d)", ErrAtlasFull, r, dr.Dx(), dr.Dy())
			}
			return Glyph{}, err
		}
		g.Bounds = image.Rect(region.X, region.Y, region.X+dr.Dx(), region.Y+dr.Dy())
		draw.DrawMask(c.img, g.Bounds, image.NewUniform(color.White), image.Point{}, mask, maskp, draw.Src)
		c.dirty = c.dirty.Union(g.Bounds)
		c.pending = c.pending.Union(g.Bounds)
	}

	c.glyphs[k] = g
	return g, nil
}

// Atlas returns the atlas image. Callers must not modify it.
func (c *Cache) Atlas() *image.RGBA {
	return c.img
}

// Dirty returns the atlas area rasterized since the last MarkClean.
func (c *Cache) Dirty() image.Rectangle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// MarkClean records that the atlas has been uploaded.
func (c *Cache) MarkClean() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = image.Rectangle{}
}

// Texture returns the atlas as a CPU texture for the rasterizer, copying
// only the area changed since the previous call.
func (c *Cache) Texture() *cellquad.Texture {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tex == nil {
		c.tex = cellquad.TextureFromImage(c.img)
		c.pending = image.Rectangle{}
		return c.tex
	}
	for y := c.pending.Min.Y; y < c.pending.Max.Y; y++ {
		for x := c.pending.Min.X; x < c.pending.Max.X; x++ {
			p := c.img.RGBAAt(x, y)
			c.tex.Set(x, y, [4]float32{
				float32(p.R) / 255, float32(p.G) / 255, float32(p.B) / 255, float32(p.A) / 255,
			})
		}
	}
	c.pending = image.Rectangle{}
	return c.tex
}

// Close releases the font faces. Rasterize fails with ErrClosed afterwards;
// the atlas and cached glyphs stay readable. Safe to call multiple times.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	var errs []error
	for i, sf := range c.faces {
		if sf == nil {
			continue
		}
		if err := sf.face.Close(); err != nil {
			errs = append(errs, err)
		}
		c.faces[i] = nil
	}
	return errors.Join(errs...)
}
