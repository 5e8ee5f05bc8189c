//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/cellquad"
	"github.com/gogpu/cellquad/shader"
)

// QuadPipeline holds the render pipeline for textured quads together with
// its bind group layout and nearest sampler.
//
// Bind group 0:
//
//	binding 0: WindowUniforms (uniform buffer, vertex)
//	binding 1: texture_2d<f32> (fragment)
//	binding 2: sampler, nearest filtering, clamp-to-edge (fragment)
type QuadPipeline struct {
	device hal.Device
	format gputypes.TextureFormat
	source ShaderFormat
	blend  cellquad.BlendState

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	sampler    hal.Sampler
}

// NewQuadPipeline creates a pipeline for targets of the given format.
// GPU objects are created on first use.
func NewQuadPipeline(device hal.Device, format gputypes.TextureFormat, source ShaderFormat, blend cellquad.BlendState) *QuadPipeline {
	return &QuadPipeline{
		device: device,
		format: format,
		source: source,
		blend:  blend,
	}
}

// ensurePipeline creates the pipeline if it does not exist.
func (p *QuadPipeline) ensurePipeline() error {
	if p.pipeline != nil {
		return nil
	}
	if err := p.createPipeline(); err != nil {
		p.destroyPipeline()
		return err
	}
	return nil
}

// Destroy releases all GPU resources held by the pipeline. Safe to call
// multiple times.
func (p *QuadPipeline) Destroy() {
	p.destroyPipeline()
}

func (p *QuadPipeline) shaderSource() (hal.ShaderSource, error) {
	switch p.source {
	case ShaderSPIRV:
		words, err := shader.CompileSPIRV()
		if err != nil {
			return hal.ShaderSource{}, err
		}
		return hal.ShaderSource{SPIRV: words}, nil
	default:
		return hal.ShaderSource{WGSL: shader.Source()}, nil
	}
}

func (p *QuadPipeline) createPipeline() error {
	src, err := p.shaderSource()
	if err != nil {
		return fmt.Errorf("prepare quad shader: %w", err)
	}
	mod, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "quad_shader",
		Source: src,
	})
	if err != nil {
		return fmt.Errorf("compile quad shader: %w", err)
	}
	p.shader = mod

	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "quad_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    shader.BindingUniforms,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    shader.BindingTexture,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    shader.BindingSampler,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create quad bind layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "quad_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create quad pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "quad_nearest_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create quad sampler: %w", err)
	}
	p.sampler = sampler

	blend := blendState(p.blend)
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "quad_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: shader.VertexEntryPoint,
			Buffers:    quadVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: shader.FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    p.format,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create quad pipeline: %w", err)
	}
	p.pipeline = pipeline

	cellquad.Logger().Debug("cellquad: quad pipeline created",
		"format", p.format, "shader", p.source.String())
	return nil
}

// createBindGroup binds the uniform buffer and a texture view to the
// pipeline's layout. The pipeline must exist.
func (p *QuadPipeline) createBindGroup(uniforms hal.Buffer, view hal.TextureView) (hal.BindGroup, error) {
	bg, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "quad_bind_group",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: shader.BindingUniforms, Resource: gputypes.BufferBinding{
				Buffer: uniforms.NativeHandle(), Offset: 0, Size: cellquad.WindowUniformsSize,
			}},
			{Binding: shader.BindingTexture, Resource: gputypes.TextureViewBinding{
				TextureView: view.NativeHandle(),
			}},
			{Binding: shader.BindingSampler, Resource: gputypes.SamplerBinding{
				Sampler: p.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create quad bind group: %w", err)
	}
	return bg, nil
}

// destroyPipeline releases pipeline resources in reverse creation order.
func (p *QuadPipeline) destroyPipeline() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// quadVertexLayout mirrors cellquad.Vertex: position, tex_coord, color.
func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: cellquad.VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: shader.LocationPosition},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: shader.LocationTexCoord},
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: shader.LocationColor},
			},
		},
	}
}

// blendState translates a CPU blend state to its gputypes equivalent.
func blendState(s cellquad.BlendState) gputypes.BlendState {
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: blendFactor(s.Color.SrcFactor),
			DstFactor: blendFactor(s.Color.DstFactor),
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: blendFactor(s.Alpha.SrcFactor),
			DstFactor: blendFactor(s.Alpha.DstFactor),
			Operation: gputypes.BlendOperationAdd,
		},
	}
}

func blendFactor(f cellquad.BlendFactor) gputypes.BlendFactor {
	switch f {
	case cellquad.BlendFactorOne:
		return gputypes.BlendFactorOne
	case cellquad.BlendFactorSrcAlpha:
		return gputypes.BlendFactorSrcAlpha
	case cellquad.BlendFactorOneMinusSrcAlpha:
		return gputypes.BlendFactorOneMinusSrcAlpha
	case cellquad.BlendFactorDstAlpha:
		return gputypes.BlendFactorDstAlpha
	case cellquad.BlendFactorOneMinusDstAlpha:
		return gputypes.BlendFactorOneMinusDstAlpha
	default:
		return gputypes.BlendFactorZero
	}
}
