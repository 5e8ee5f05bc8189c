package grid

import "testing"

func TestNewGridIsEmpty(t *testing.T) {
	g := New(3, 4)
	if g.Rows() != 3 || g.Cols() != 4 {
		t.Fatalf("size = %dx%d, want 3x4", g.Rows(), g.Cols())
	}
	if got := g.At(Position{2, 3}); got != EmptyCell() {
		t.Errorf("cell = %+v, want empty", got)
	}
	if tiny := New(0, -1); tiny.Rows() != 1 || tiny.Cols() != 1 {
		t.Errorf("New(0,-1) = %dx%d, want 1x1", tiny.Rows(), tiny.Cols())
	}
}

func TestAtOutOfBoundsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("At outside the grid should panic")
		}
	}()
	New(2, 2).At(Position{Row: 0, Col: 2})
}

func TestWrite(t *testing.T) {
	g := New(2, 4)
	fg, bg := Index(1), Index(2)

	end := g.Write(Position{}, "abcdef", fg, bg, StyleBold)
	if end != (Position{Row: 1, Col: 2}) {
		t.Errorf("end = %v, want [1, 2]", end)
	}
	if c := g.At(Position{1, 1}); c.Rune != 'f' || c.Fg != fg || c.Bg != bg || !c.Style.Has(StyleBold) {
		t.Errorf("cell [1,1] = %+v", c)
	}

	end = g.Write(Position{}, "x\ny", fg, bg, 0)
	if end != (Position{Row: 1, Col: 1}) || g.At(Position{1, 0}).Rune != 'y' {
		t.Errorf("newline: end = %v, cell = %q", end, g.At(Position{1, 0}).Rune)
	}

	// Writing past the bottom stops.
	end = g.Write(Position{Row: 1, Col: 3}, "zzz", fg, bg, 0)
	if end.Row != 2 {
		t.Errorf("end = %v, want row 2", end)
	}
}

func TestWriteWideRune(t *testing.T) {
	g := New(1, 5)
	end := g.Write(Position{}, "a世b", DefaultForeground, DefaultBackground, 0)
	if end.Col != 4 {
		t.Errorf("end = %v, want col 4", end)
	}
	if g.At(Position{0, 1}).Rune != '世' || g.At(Position{0, 2}).Rune != 0 || g.At(Position{0, 3}).Rune != 'b' {
		t.Errorf("row = %q %q %q", g.At(Position{0, 1}).Rune, g.At(Position{0, 2}).Rune, g.At(Position{0, 3}).Rune)
	}

	// A wide rune never straddles the right edge.
	g = New(2, 2)
	g.Write(Position{Col: 1}, "世", DefaultForeground, DefaultBackground, 0)
	if g.At(Position{1, 0}).Rune != '世' || g.At(Position{0, 1}).Rune != ' ' {
		t.Error("wide rune at the last column should wrap")
	}
}

func TestRuneWidth(t *testing.T) {
	tests := []struct {
		r    rune
		want int
	}{
		{'a', 1},
		{'é', 1},
		{'世', 2},
		{'Ａ', 2}, // fullwidth
		{'\t', 0},
		{0x7f, 0},
	}
	for _, tt := range tests {
		if got := RuneWidth(tt.r); got != tt.want {
			t.Errorf("RuneWidth(%q) = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestFillAndCopyRows(t *testing.T) {
	g := New(4, 3)
	x := Cell{Rune: 'x', Fg: DefaultForeground, Bg: DefaultBackground}
	g.Fill(1, 10, -5, 2, x)

	for row := range 4 {
		for col := range 3 {
			want := row >= 1 && col < 2
			if got := g.At(Position{row, col}).Rune == 'x'; got != want {
				t.Errorf("cell [%d,%d] filled=%v, want %v", row, col, got, want)
			}
		}
	}

	g.Clear()
	g.Write(Position{Row: 2}, "abc", DefaultForeground, DefaultBackground, 0)
	g.CopyRows(2, 3, 0)
	if g.At(Position{0, 2}).Rune != 'c' {
		t.Error("CopyRows should copy row 2 onto row 0")
	}
	g.CopyRows(0, 4, 3) // only one row fits
	if g.At(Position{3, 0}).Rune != 'a' {
		t.Error("CopyRows should clip to the grid")
	}
}

func TestClamp(t *testing.T) {
	g := New(3, 4)
	tests := []struct {
		in, want Position
	}{
		{Position{1, 2}, Position{1, 2}},
		{Position{1, 4}, Position{2, 0}},
		{Position{2, 4}, Position{2, 3}},
		{Position{7, 0}, Position{2, 3}},
	}
	for _, tt := range tests {
		if got := g.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSizeInWindow(t *testing.T) {
	tests := []struct {
		w, h       int
		cw, ch     float32
		rows, cols int
	}{
		{800, 600, 8, 16, 37, 100},
		{5, 5, 8, 16, 1, 1},
		{100, 100, 0, 16, 1, 1},
	}
	for _, tt := range tests {
		rows, cols := SizeInWindow(tt.w, tt.h, tt.cw, tt.ch)
		if rows != tt.rows || cols != tt.cols {
			t.Errorf("SizeInWindow(%d,%d,%g,%g) = %d,%d; want %d,%d", tt.w, tt.h, tt.cw, tt.ch, rows, cols, tt.rows, tt.cols)
		}
	}
}
