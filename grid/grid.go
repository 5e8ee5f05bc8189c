// Package grid holds a terminal character grid and turns it into the two
// vertex lists drawn by the quad pipeline: cell backgrounds (sampled from a
// white texture) and glyphs (sampled from the glyph atlas).
package grid

import (
	"fmt"

	"golang.org/x/text/width"
)

// Style is a set of character attributes.
type Style uint8

// Character attributes.
const (
	StyleBold Style = 1 << iota
	StyleFaint
	StyleItalic
	StyleUnderline
	StyleBlink
	StyleInverse
	StyleInvisible
	StyleStrikethrough
)

// Has reports whether all bits of f are set.
func (s Style) Has(f Style) bool { return s&f == f }

// Cell is one character position.
type Cell struct {
	// Rune is the character. Zero marks the right half of a wide character.
	Rune  rune
	Fg    Color
	Bg    Color
	Style Style
}

// EmptyCell returns a blank cell in the default colors.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Fg: DefaultForeground, Bg: DefaultBackground}
}

// Position addresses a cell.
type Position struct {
	Row int
	Col int
}

func (p Position) String() string {
	return fmt.Sprintf("[%d, %d]", p.Row, p.Col)
}

// Grid is a fixed-size rows x cols array of cells.
type Grid struct {
	rows, cols int
	cells      []Cell
}

// New creates a grid filled with empty cells. Dimensions below 1 are
// raised to 1.
func New(rows, cols int) *Grid {
	rows = max(rows, 1)
	cols = max(cols, 1)
	g := &Grid{rows: rows, cols: cols, cells: make([]Cell, rows*cols)}
	g.Clear()
	return g
}

// SizeInWindow returns how many whole cells fit in a window, at least one
// of each.
func SizeInWindow(windowWidth, windowHeight int, cellWidth, cellHeight float32) (rows, cols int) {
	if cellWidth <= 0 || cellHeight <= 0 {
		return 1, 1
	}
	cols = max(int(float32(windowWidth)/cellWidth), 1)
	rows = max(int(float32(windowHeight)/cellHeight), 1)
	return rows, cols
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Contains reports whether p is inside the grid.
func (g *Grid) Contains(p Position) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Col >= 0 && p.Col < g.cols
}

func (g *Grid) index(p Position) int {
	if !g.Contains(p) {
		panic(fmt.Sprintf("grid: position %v out of bounds (size %dx%d)", p, g.rows, g.cols))
	}
	return p.Row*g.cols + p.Col
}

// At returns the cell at p. It panics if p is out of bounds.
func (g *Grid) At(p Position) Cell {
	return g.cells[g.index(p)]
}

// Set stores c at p. It panics if p is out of bounds.
func (g *Grid) Set(p Position, c Cell) {
	g.cells[g.index(p)] = c
}

// Clear resets every cell to EmptyCell.
func (g *Grid) Clear() {
	empty := EmptyCell()
	for i := range g.cells {
		g.cells[i] = empty
	}
}

// Fill sets the half-open region [row0, row1) x [col0, col1) to c. Bounds
// are clamped to the grid.
func (g *Grid) Fill(row0, row1, col0, col1 int, c Cell) {
	row0, row1 = clampRange(row0, row1, g.rows)
	col0, col1 = clampRange(col0, col1, g.cols)
	for row := row0; row < row1; row++ {
		line := g.cells[row*g.cols : (row+1)*g.cols]
		for col := col0; col < col1; col++ {
			line[col] = c
		}
	}
}

// CopyRows copies rows [row0, row1) so that row0 lands on dst. Rows that
// would fall outside the grid are dropped.
func (g *Grid) CopyRows(row0, row1, dst int) {
	row0, row1 = clampRange(row0, row1, g.rows)
	n := min(row1-row0, g.rows-dst)
	if n <= 0 || dst < 0 {
		return
	}
	copy(g.cells[dst*g.cols:(dst+n)*g.cols], g.cells[row0*g.cols:(row0+n)*g.cols])
}

func clampRange(lo, hi, limit int) (int, int) {
	lo = min(max(lo, 0), limit)
	hi = min(max(hi, lo), limit)
	return lo, hi
}

// Write stores text starting at p with the given colors and style and
// returns the position after the last character. Lines wrap at the right
// edge, '\n' starts a new line, and East Asian wide characters take two
// columns. Writing stops at the bottom of the grid.
func (g *Grid) Write(p Position, text string, fg, bg Color, style Style) Position {
	for _, r := range text {
		if r == '\n' {
			p = Position{Row: p.Row + 1}
			continue
		}
		w := RuneWidth(r)
		if w == 0 {
			continue
		}
		if p.Col+w > g.cols {
			p = Position{Row: p.Row + 1}
		}
		if p.Row >= g.rows || p.Row < 0 || p.Col < 0 {
			break
		}
		g.Set(p, Cell{Rune: r, Fg: fg, Bg: bg, Style: style})
		if w == 2 {
			g.Set(Position{Row: p.Row, Col: p.Col + 1}, Cell{Fg: fg, Bg: bg, Style: style})
		}
		p.Col += w
	}
	return p
}

// RuneWidth returns the number of columns r occupies: 2 for East Asian wide
// and fullwidth characters, 0 for control characters, 1 otherwise.
func RuneWidth(r rune) int {
	if r < 0x20 || r == 0x7f {
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// Clamp moves a cursor position that has run past the grid back inside:
// past the last column wraps to the next row, and past the last row pins to
// the bottom-right cell.
func (g *Grid) Clamp(p Position) Position {
	if p.Col >= g.cols {
		p.Col = 0
		p.Row++
	}
	if p.Row >= g.rows {
		p = Position{Row: g.rows - 1, Col: g.cols - 1}
	}
	return p
}
