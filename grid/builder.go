package grid

import (
	"errors"
	"fmt"

	"github.com/gogpu/cellquad"
	"github.com/gogpu/cellquad/glyph"
)

// ErrCursorOutOfRange is returned when the cursor lies outside the grid.
var ErrCursorOutOfRange = errors.New("grid: cursor out of range")

// CursorShape selects how the cursor is drawn.
type CursorShape uint8

// Cursor shapes.
const (
	CursorBlock CursorShape = iota
	CursorBar
	CursorUnderline
)

// String returns the shape name.
func (s CursorShape) String() string {
	switch s {
	case CursorBlock:
		return "block"
	case CursorBar:
		return "bar"
	case CursorUnderline:
		return "underline"
	default:
		return fmt.Sprintf("CursorShape(%d)", s)
	}
}

// Cursor describes a visible cursor.
type Cursor struct {
	Position Position
	Shape    CursorShape
	Color    Color
}

// Glyphs supplies rasterized glyphs and cell metrics. *glyph.Cache
// implements it.
type Glyphs interface {
	Rasterize(r rune, style glyph.Style) (glyph.Glyph, error)
	Metrics() glyph.Metrics
}

// Frame holds the vertex lists for one grid.
type Frame struct {
	// Cells has one background quad per cell in row-major order. Draw it
	// with a white texture.
	Cells []cellquad.Vertex

	// Chars has one glyph quad per cell in row-major order. Blank cells
	// produce degenerate quads so indices match Cells. Draw it with the
	// glyph atlas.
	Chars []cellquad.Vertex

	// Overlay holds underline, strikethrough and non-block cursor quads.
	// Draw it last with a white texture.
	Overlay []cellquad.Vertex

	// Window is the pixel size covered by the grid.
	Window cellquad.WindowUniforms
}

// Builder converts grids into vertex lists.
type Builder struct {
	glyphs  Glyphs
	palette Palette

	// FaintAlpha scales the foreground alpha of faint cells.
	FaintAlpha float32
}

// NewBuilder returns a builder drawing glyphs from g in colors from p.
func NewBuilder(g Glyphs, p Palette) *Builder {
	return &Builder{glyphs: g, palette: p, FaintAlpha: 0.5}
}

// Palette returns the builder's palette.
func (b *Builder) Palette() *Palette { return &b.palette }

// WindowSize returns the pixel size needed to show g. Cells are laid out on
// whole pixels, see glyph.Metrics.CellSize.
func (b *Builder) WindowSize(g *Grid) (width, height int) {
	cw, ch := b.glyphs.Metrics().CellSize()
	return g.Cols() * cw, g.Rows() * ch
}

func ceilInt(v float32) int {
	n := int(v)
	if float32(n) < v {
		n++
	}
	return n
}

// Build produces the background, glyph and overlay quads for g. cursor may
// be nil. A block cursor recolors its cell: the background takes the cursor
// color and the glyph its complement. Missing glyphs are drawn blank; a
// full atlas aborts the build.
func (b *Builder) Build(g *Grid, cursor *Cursor) (Frame, error) {
	if cursor != nil && !g.Contains(cursor.Position) {
		return Frame{}, fmt.Errorf("%w: %v in %dx%d grid", ErrCursorOutOfRange, cursor.Position, g.Rows(), g.Cols())
	}

	m := b.glyphs.Metrics()
	cw, ch := m.CellSize()
	advance, lineHeight := float32(cw), float32(ch)
	descent := float32(ceilInt(m.Descent))
	solid := [4]float32{} // any texel of the 1x1 white texture

	n := g.Rows() * g.Cols()
	f := Frame{
		Cells: make([]cellquad.Vertex, 0, n*6),
		Chars: make([]cellquad.Vertex, 0, n*6),
	}
	w, h := b.WindowSize(g)
	f.Window = cellquad.NewWindowUniforms(w, h)

	for row := range g.Rows() {
		for col := range g.Cols() {
			cell := g.At(Position{Row: row, Col: col})
			fg, bg := cell.Fg, cell.Bg
			if cell.Style.Has(StyleInverse) {
				fg, bg = bg, fg
			}

			left := float32(col) * advance
			top := float32(row) * lineHeight
			bottom := top + lineHeight
			f.Cells = cellquad.AppendQuad(f.Cells, [4]float32{left, left + advance, top, bottom}, solid, bg.RGBA(&b.palette).Vec4())

			fgColor := fg.RGBA(&b.palette)
			if cell.Style.Has(StyleFaint) {
				fgColor = cellquad.RGBA{R: fgColor.R, G: fgColor.G, B: fgColor.B, A: b.FaintAlpha}.Premultiply()
			}

			gl, err := b.glyph(cell)
			if err != nil {
				return Frame{}, err
			}
			q := gl.Quad([2]float32{left, bottom - descent}, fgColor.Vec4())
			f.Chars = append(f.Chars, q[:]...)

			if cell.Style.Has(StyleUnderline) {
				f.Overlay = cellquad.AppendQuad(f.Overlay, [4]float32{left, left + advance, bottom - descent + 1, bottom - descent + 2}, solid, fgColor.Vec4())
			}
			if cell.Style.Has(StyleStrikethrough) {
				mid := top + lineHeight/2
				f.Overlay = cellquad.AppendQuad(f.Overlay, [4]float32{left, left + advance, mid, mid + 1}, solid, fgColor.Vec4())
			}
		}
	}

	if cursor != nil {
		b.applyCursor(&f, g, *cursor, advance, lineHeight)
	}
	return f, nil
}

func (b *Builder) glyph(cell Cell) (glyph.Glyph, error) {
	if cell.Rune == 0 || cell.Rune == ' ' || cell.Style.Has(StyleInvisible) {
		return glyph.Glyph{}, nil
	}
	var style glyph.Style
	if cell.Style.Has(StyleBold) {
		style |= glyph.Bold
	}
	if cell.Style.Has(StyleItalic) {
		style |= glyph.Italic
	}
	gl, err := b.glyphs.Rasterize(cell.Rune, style)
	switch {
	case err == nil:
		return gl, nil
	case errors.Is(err, glyph.ErrMissingGlyph):
		return glyph.Glyph{}, nil
	default:
		return glyph.Glyph{}, fmt.Errorf("grid: rasterize %q: %w", cell.Rune, err)
	}
}

func (b *Builder) applyCursor(f *Frame, g *Grid, c Cursor, advance, lineHeight float32) {
	color := c.Color.RGBA(&b.palette).Vec4()
	x := float32(c.Position.Col) * advance
	bottom := float32(c.Position.Row+1) * lineHeight

	switch c.Shape {
	case CursorBar:
		f.Overlay = cellquad.AppendQuad(f.Overlay, [4]float32{x, x + 1, bottom - lineHeight, bottom}, [4]float32{}, color)
	case CursorUnderline:
		f.Overlay = cellquad.AppendQuad(f.Overlay, [4]float32{x, x + advance, bottom - 2, bottom}, [4]float32{}, color)
	default:
		text := c.Color.Complement(&b.palette).RGBA(&b.palette).Vec4()
		i := (c.Position.Row*g.Cols() + c.Position.Col) * 6
		for j := i; j < i+6; j++ {
			f.Cells[j].Color = color
			f.Chars[j].Color = text
		}
	}
}
