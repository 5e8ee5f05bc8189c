// Package shader holds the WGSL program for the quad pipeline and the naga
// translations of it consumed by the GPU host.
//
// The program has two entry points. [VertexEntryPoint] maps window-pixel
// positions to clip space; [FragmentEntryPoint] multiplies a nearest-sampled
// texel by the vertex color. Both read the bind group described by the
// Binding constants.
package shader

import _ "embed"

//go:embed quad.wgsl
var quadSource string

// Entry point names in the WGSL program.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// Bind group 0 layout.
const (
	// BindingUniforms is the WindowUniforms buffer, visible to the vertex stage.
	BindingUniforms = 0

	// BindingTexture is the sampled texture_2d<f32>, visible to the fragment stage.
	BindingTexture = 1

	// BindingSampler is the nearest-filtering sampler, visible to the fragment stage.
	BindingSampler = 2
)

// Vertex input locations.
const (
	LocationPosition = 0
	LocationTexCoord = 1
	LocationColor    = 2
)

// Source returns the WGSL source of the quad program.
func Source() string {
	return quadSource
}
