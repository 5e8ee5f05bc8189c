// Command cellquad renders a terminal screen through the CPU quad pipeline
// and saves it as a PNG.
package main

import (
	"flag"
	"image/png"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/cellquad"
	"github.com/gogpu/cellquad/glyph"
	"github.com/gogpu/cellquad/grid"
)

const defaultText = "cellquad: textured, tinted quads\n" +
	"Bold, italic, inverse and wide cells: 世界\n"

func main() {
	var (
		cols      = flag.Int("cols", 48, "grid columns")
		rows      = flag.Int("rows", 8, "grid rows")
		text      = flag.String("text", defaultText, "text to draw (\\n starts a line)")
		size      = flag.Float64("size", 16, "font size in points")
		atlasSize = flag.Int("atlas-size", 512, "glyph atlas edge in pixels")
		cursor    = flag.String("cursor", "block", "cursor shape: block, bar, underline or none")
		output    = flag.String("output", "screen.png", "output file")
		atlasOut  = flag.String("atlas", "", "also write the glyph atlas to this file")
		verbose   = flag.Bool("v", false, "log pipeline activity")
	)
	flag.Parse()

	if *verbose {
		cellquad.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := glyph.DefaultConfig()
	cfg.Size = *size
	cfg.AtlasSize = *atlasSize
	cache, err := glyph.NewCache(cfg)
	if err != nil {
		log.Fatalf("Failed to load font: %v", err)
	}
	defer cache.Close()

	g := grid.New(*rows, *cols)
	end := drawScreen(g, strings.ReplaceAll(*text, `\n`, "\n"))

	var cur *grid.Cursor
	if shape, ok := parseCursor(*cursor); ok {
		cur = &grid.Cursor{Position: g.Clamp(end), Shape: shape, Color: grid.DefaultCursor}
	}

	b := grid.NewBuilder(cache, grid.DefaultPalette())
	frame, err := b.Build(g, cur)
	if err != nil {
		log.Fatalf("Failed to build frame: %v", err)
	}

	w, h := b.WindowSize(g)
	r := cellquad.NewRasterizer(w, h)
	defer r.Close()

	r.Clear(grid.DefaultBackground.RGBA(b.Palette()))
	blend := cellquad.BlendTerminal
	white := cellquad.WhiteTexture()
	r.Draw(cellquad.DrawCall{Vertices: frame.Cells, Window: frame.Window, Texture: white, Blend: &blend})
	r.Draw(cellquad.DrawCall{Vertices: frame.Chars, Window: frame.Window, Texture: cache.Texture(), Blend: &blend})
	r.Draw(cellquad.DrawCall{Vertices: frame.Overlay, Window: frame.Window, Texture: white, Blend: &blend})

	if err := r.Canvas().SavePNG(*output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Screen saved to %s (%dx%d, %d glyphs)\n", *output, w, h, cache.Len())

	if *atlasOut != "" {
		if err := saveAtlas(cache, *atlasOut); err != nil {
			log.Fatalf("Failed to save atlas: %v", err)
		}
		log.Printf("Atlas saved to %s\n", *atlasOut)
	}
}

// drawScreen writes the text in default colors followed by a strip of the
// 16 base palette colors, and returns the position after the text.
func drawScreen(g *grid.Grid, text string) grid.Position {
	fg, bg := grid.DefaultForeground, grid.DefaultBackground
	end := grid.Position{}
	for i, line := range strings.Split(text, "\n") {
		var style grid.Style
		if i == 1 {
			style = grid.StyleBold
		}
		end = g.Write(grid.Position{Row: i}, line, fg, bg, style)
	}

	row := g.Rows() - 1
	for i := range 16 {
		cell := grid.Cell{Rune: ' ', Fg: fg, Bg: grid.Index(uint8(i))} //nolint:gosec // < 16
		g.Fill(row, row+1, i*2, i*2+2, cell)
	}
	g.Write(grid.Position{Row: row - 1}, "inverse", fg, bg, grid.StyleInverse|grid.StyleItalic)
	return end
}

func parseCursor(s string) (grid.CursorShape, bool) {
	switch s {
	case "block":
		return grid.CursorBlock, true
	case "bar":
		return grid.CursorBar, true
	case "underline":
		return grid.CursorUnderline, true
	default:
		return 0, false
	}
}

func saveAtlas(cache *glyph.Cache, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, cache.Atlas()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
