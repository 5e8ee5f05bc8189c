// Package cellquad implements the two programmable stages of a minimal GPU
// pipeline that draws textured, tinted quads in window-pixel coordinates,
// the building block of a terminal renderer's cell backgrounds and glyphs.
//
// # Overview
//
// The vertex stage maps a position given in pixels (origin top-left, Y
// down) to clip space (origin center, Y up) using the window size held in a
// per-draw uniform. The fragment stage samples a texture with nearest
// filtering and multiplies the texel by the interpolated vertex color.
//
// The same shader logic exists in two forms:
//   - WGSL, in package shader, compiled by naga and executed by a
//     gogpu/wgpu HAL device through package gpu.
//   - Go, in this package: [VertexStage] and [FragmentStage], driven by the
//     CPU [Rasterizer], which stands in for fixed-function hardware.
//
// # Quick Start
//
//	r := cellquad.NewRasterizer(160, 90)
//	defer r.Close()
//
//	r.Clear(cellquad.Black)
//	q := cellquad.Quad([4]float32{10, 150, 10, 80}, [4]float32{0, 1, 0, 1},
//	    cellquad.Hex("#3366cc").Vec4())
//	r.Draw(cellquad.DrawCall{
//	    Vertices: q[:],
//	    Window:   cellquad.NewWindowUniforms(160, 90),
//	})
//	_ = r.Canvas().SavePNG("quad.png")
//
// # Coordinate Conventions
//
// Pixel (0, 0) maps to clip (-1, 1); pixel (W, H) maps to clip (1, -1).
// Texture coordinates are normalized with (0, 0) at the top-left texel.
// Coverage follows the top-left rule, so two quads sharing an edge never
// shade the same pixel twice.
//
// # Packages
//
//   - shader: embedded WGSL source, SPIR-V/GLSL/HLSL translation, reflection
//   - gpu: render pipeline, textures and offscreen rendering on a HAL device
//   - glyph: monospace glyph atlas backed by an OpenType face
//   - grid: terminal cell grid that builds vertex lists for both stages
//
// # Logging
//
// The package is silent by default. Use [SetLogger] to route debug output
// to any slog handler.
package cellquad
