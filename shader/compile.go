package shader

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
)

// ErrEmptySPIRV is returned when the compiler produced no complete words.
var ErrEmptySPIRV = errors.New("shader: compiler returned empty SPIR-V")

// CompileSPIRV compiles the WGSL program to SPIR-V words, the form HAL
// shader modules accept.
func CompileSPIRV() ([]uint32, error) {
	return compileSPIRV(quadSource)
}

func compileSPIRV(src string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("shader: compile: %w", err)
	}
	words := wordsFromBytes(spirvBytes)
	if len(words) == 0 {
		return nil, ErrEmptySPIRV
	}
	return words, nil
}

// wordsFromBytes packs little-endian bytes into SPIR-V words. A trailing
// partial word is dropped.
func wordsFromBytes(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words
}

// lower parses WGSL and lowers it to naga IR.
func lower(src string) (*ir.Module, error) {
	ast, err := naga.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("shader: parse: %w", err)
	}
	module, err := naga.Lower(ast)
	if err != nil {
		return nil, fmt.Errorf("shader: lower: %w", err)
	}
	return module, nil
}

// SPIRVBytes runs the explicit parse, lower and SPIR-V backend path and
// returns the raw binary. Useful for writing .spv files.
func SPIRVBytes() ([]byte, error) {
	module, err := lower(quadSource)
	if err != nil {
		return nil, err
	}
	spv, err := spirv.NewBackend(spirv.DefaultOptions()).Compile(module)
	if err != nil {
		return nil, fmt.Errorf("shader: spirv backend: %w", err)
	}
	return spv, nil
}

// GLSL translates the program for OpenGL backends.
func GLSL() (string, error) {
	module, err := lower(quadSource)
	if err != nil {
		return "", err
	}
	code, _, err := glsl.Compile(module, glsl.DefaultOptions())
	if err != nil {
		return "", fmt.Errorf("shader: glsl backend: %w", err)
	}
	return code, nil
}

// HLSL translates the program for Direct3D backends.
func HLSL() (string, error) {
	module, err := lower(quadSource)
	if err != nil {
		return "", err
	}
	code, _, err := hlsl.Compile(module, hlsl.DefaultOptions())
	if err != nil {
		return "", fmt.Errorf("shader: hlsl backend: %w", err)
	}
	return code, nil
}

// Stage names a pipeline stage in a Reflection.
type Stage string

// Pipeline stages.
const (
	StageVertex   Stage = "vertex"
	StageFragment Stage = "fragment"
	StageCompute  Stage = "compute"
)

// Reflection summarizes the interface of a lowered program.
type Reflection struct {
	// EntryPoints maps entry point names to their stage.
	EntryPoints map[string]Stage

	// Globals lists module-scope variable names, sorted.
	Globals []string
}

// Reflect lowers the program and reports its entry points and globals.
func Reflect() (*Reflection, error) {
	return reflect(quadSource)
}

func reflect(src string) (*Reflection, error) {
	module, err := lower(src)
	if err != nil {
		return nil, err
	}

	r := &Reflection{EntryPoints: make(map[string]Stage, len(module.EntryPoints))}
	for _, ep := range module.EntryPoints {
		switch ep.Stage {
		case ir.StageVertex:
			r.EntryPoints[ep.Name] = StageVertex
		case ir.StageFragment:
			r.EntryPoints[ep.Name] = StageFragment
		default:
			r.EntryPoints[ep.Name] = StageCompute
		}
	}
	for _, gv := range module.GlobalVariables {
		r.Globals = append(r.Globals, gv.Name)
	}
	sort.Strings(r.Globals)
	return r, nil
}
