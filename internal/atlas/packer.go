// Package atlas allocates rectangular regions inside a square texture.
package atlas

import (
	"errors"
	"fmt"
	"image"
	"sync"
)

var (
	// ErrFull is returned when no free region can hold the request.
	ErrFull = errors.New("atlas: no free region large enough")

	// ErrInvalidSize is returned for negative dimensions.
	ErrInvalidSize = errors.New("atlas: invalid region size")
)

// Region is a rectangle inside the atlas.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// IsValid returns true if the region has positive dimensions.
func (r Region) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

// Contains returns true if the point (x, y) is inside the region.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Rect returns the region as an image rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// String returns a string representation of the region.
func (r Region) String() string {
	return fmt.Sprintf("Region(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// span is a free half-open column range [start, end) within one row.
type span struct {
	start int
	end   int
}

func (s span) len() int { return s.end - s.start }

func (s span) contains(x int) bool { return s.start <= x && x < s.end }

// Packer tracks, for every row of the atlas, the sorted list of free column
// ranges. A request is placed at the lowest row where some column range is
// free across all rows it spans; among the candidates the narrowest range
// wins, which keeps wide gaps available for wide glyphs.
//
// Regions are never freed individually; Reset clears the whole atlas.
type Packer struct {
	mu   sync.Mutex
	size int
	rows [][]span

	allocCount int
	usedArea   int
}

// NewPacker creates a packer for a size x size atlas. Sizes below 1 are
// raised to 1.
func NewPacker(size int) *Packer {
	p := &Packer{size: max(size, 1)}
	p.reset()
	return p
}

// Size returns the atlas edge length.
func (p *Packer) Size() int {
	return p.size
}

// Reset frees every region.
func (p *Packer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

func (p *Packer) reset() {
	p.rows = make([][]span, p.size)
	for y := range p.rows {
		p.rows[y] = []span{{0, p.size}}
	}
	p.allocCount = 0
	p.usedArea = 0
}

// Reserve finds and marks a width x height region. A zero dimension yields
// an empty region at the origin without consuming space.
func (p *Packer) Reserve(width, height int) (Region, error) {
	if width < 0 || height < 0 {
		return Region{}, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width == 0 || height == 0 {
		return Region{Width: width, Height: height}, nil
	}
	if width > p.size || height > p.size {
		return Region{}, fmt.Errorf("%w: %dx%d exceeds %d", ErrFull, width, height, p.size)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for y := 0; y+height <= p.size; y++ {
		columns := []span{{0, p.size}}
		for row := y; row < y+height && len(columns) > 0; row++ {
			columns = keepWide(intersect(columns, p.rows[row]), width)
		}
		if len(columns) == 0 {
			continue
		}

		best := columns[0]
		for _, c := range columns[1:] {
			if c.len() < best.len() {
				best = c
			}
		}

		x := best.start
		for row := y; row < y+height; row++ {
			p.rows[row] = carve(p.rows[row], x, x+width)
		}
		p.allocCount++
		p.usedArea += width * height
		return Region{X: x, Y: y, Width: width, Height: height}, nil
	}
	return Region{}, fmt.Errorf("%w: %dx%d", ErrFull, width, height)
}

// Utilization returns the fraction of the atlas area in use.
func (p *Packer) Utilization() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return float64(p.usedArea) / float64(p.size*p.size)
}

// Count returns the number of reserved regions.
func (p *Packer) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allocCount
}

// keepWide filters spans in place, keeping those at least width long.
func keepWide(spans []span, width int) []span {
	out := spans[:0]
	for _, s := range spans {
		if s.len() >= width {
			out = append(out, s)
		}
	}
	return out
}

// carve removes [x0, x1) from the free span that contains x0. The caller
// guarantees that the span also covers x1.
func carve(row []span, x0, x1 int) []span {
	for i, s := range row {
		if !s.contains(x0) {
			continue
		}
		before := span{s.start, x0}
		after := span{x1, s.end}
		switch {
		case before.len() == 0 && after.len() == 0:
			return append(row[:i], row[i+1:]...)
		case before.len() == 0:
			row[i] = after
		case after.len() == 0:
			row[i] = before
		default:
			row[i] = before
			row = append(row, span{})
			copy(row[i+2:], row[i+1:])
			row[i+1] = after
		}
		return row
	}
	return row
}

// intersect returns the overlap of two sorted, disjoint span lists.
func intersect(a, b []span) []span {
	out := make([]span, 0, len(a))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		lo := max(a[i].start, b[j].start)
		hi := min(a[i].end, b[j].end)
		if lo < hi {
			out = append(out, span{lo, hi})
		}
		if a[i].end < b[j].end {
			i++
		} else {
			j++
		}
	}
	return out
}
