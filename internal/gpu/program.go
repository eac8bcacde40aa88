//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/quad.wgsl
var quadShaderSource string

//go:embed shaders/blur_horizontal.wgsl
var horizontalShaderSource string

//go:embed shaders/blur_vertical.wgsl
var verticalShaderSource string

// ShaderStage identifies the pipeline stage a shader unit is compiled for.
type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StageFragment
)

// String returns the stage name.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderStage(%d)", int(s))
	}
}

// ShaderCompileError reports a shader unit that failed WGSL validation or
// module creation.
type ShaderCompileError struct {
	Label string
	Stage ShaderStage
	Err   error
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("compile %s shader %q: %v", e.Stage, e.Label, e.Err)
}

func (e *ShaderCompileError) Unwrap() error { return e.Err }

// ProgramLinkError reports a vertex/fragment pair that could not be linked
// into a render pipeline.
type ProgramLinkError struct {
	Label string
	Err   error
}

func (e *ProgramLinkError) Error() string {
	return fmt.Sprintf("link program %q: %v", e.Label, e.Err)
}

func (e *ProgramLinkError) Unwrap() error { return e.Err }

// Attribute locations shared by both blur programs.
const (
	attribPosition = 0
	attribTexCoord = 1
)

// Bind group slots shared by both blur programs.
const (
	bindingTexture = 0
	bindingSampler = 1
	bindingParams  = 2
)

// Program is a linked vertex/fragment pair.
type Program struct {
	Label    string
	vertex   hal.ShaderModule
	fragment hal.ShaderModule
	pipeline hal.RenderPipeline
}

// validateWGSL runs the naga front end and IR validator over source.
func validateWGSL(source string) error {
	ast, err := naga.Parse(source)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return fmt.Errorf("lower: %w", err)
	}
	issues, err := naga.Validate(module)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if len(issues) > 0 {
		return issues[0]
	}
	return nil
}

// Compile validates a WGSL unit and creates a shader module for it.
// Any failure is reported as a *ShaderCompileError.
func Compile(device hal.Device, label, source string, stage ShaderStage) (hal.ShaderModule, error) {
	if source == "" {
		return nil, &ShaderCompileError{Label: label, Stage: stage, Err: fmt.Errorf("empty source")}
	}
	if err := validateWGSL(source); err != nil {
		return nil, &ShaderCompileError{Label: label, Stage: stage, Err: err}
	}
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: source},
	})
	if err != nil {
		return nil, &ShaderCompileError{Label: label, Stage: stage, Err: err}
	}
	return module, nil
}

// quadVertexLayout describes the interleaved position + texCoord quad.
func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{{
		ArrayStride: quadVertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: attribPosition},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: attribTexCoord},
		},
	}}
}

// Link creates the render pipeline for a compiled vertex/fragment pair.
// On failure the returned *ProgramLinkError leaves the modules owned by the
// caller.
func Link(device hal.Device, label string, layout hal.PipelineLayout, vertex, fragment hal.ShaderModule) (*Program, error) {
	if vertex == nil || fragment == nil {
		return nil, &ProgramLinkError{Label: label, Err: fmt.Errorf("missing shader module")}
	}
	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     vertex,
			EntryPoint: "vs_main",
			Buffers:    quadVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     fragment,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    targetFormat,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, &ProgramLinkError{Label: label, Err: err}
	}
	return &Program{Label: label, vertex: vertex, fragment: fragment, pipeline: pipeline}, nil
}

// buildProgram compiles and links one blur program. Modules created before a
// failure are destroyed.
func buildProgram(device hal.Device, label, fragmentSource string, layout hal.PipelineLayout) (*Program, error) {
	vertex, err := Compile(device, label+"_vs", quadShaderSource, StageVertex)
	if err != nil {
		return nil, err
	}
	fragment, err := Compile(device, label+"_fs", fragmentSource, StageFragment)
	if err != nil {
		device.DestroyShaderModule(vertex)
		return nil, err
	}
	p, err := Link(device, label, layout, vertex, fragment)
	if err != nil {
		device.DestroyShaderModule(fragment)
		device.DestroyShaderModule(vertex)
		return nil, err
	}
	return p, nil
}

// destroy releases the pipeline and both modules.
func (p *Program) destroy(device hal.Device) {
	if p == nil {
		return
	}
	if p.pipeline != nil {
		device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.fragment != nil {
		device.DestroyShaderModule(p.fragment)
		p.fragment = nil
	}
	if p.vertex != nil {
		device.DestroyShaderModule(p.vertex)
		p.vertex = nil
	}
}

// ProgramPair holds the horizontal and vertical blur programs together with
// the bind group layout they share.
type ProgramPair struct {
	Horizontal *Program
	Vertical   *Program

	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
}

// NewProgramPair builds both blur programs. It is a one-shot operation: on
// any failure everything created so far is released and the error returned.
func NewProgramPair(device hal.Device) (*ProgramPair, error) {
	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "blur_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    bindingTexture,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    bindingSampler,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
			{
				Binding:    bindingParams,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create blur bind group layout: %w", err)
	}
	pp := &ProgramPair{bindLayout: bindLayout}

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "blur_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		pp.Destroy(device)
		return nil, fmt.Errorf("create blur pipeline layout: %w", err)
	}
	pp.pipeLayout = pipeLayout

	if pp.Horizontal, err = buildProgram(device, "blur_horizontal", horizontalShaderSource, pipeLayout); err != nil {
		pp.Destroy(device)
		return nil, err
	}
	if pp.Vertical, err = buildProgram(device, "blur_vertical", verticalShaderSource, pipeLayout); err != nil {
		pp.Destroy(device)
		return nil, err
	}
	return pp, nil
}

// Destroy releases both programs and the shared layouts in reverse order of
// creation. Safe to call more than once.
func (pp *ProgramPair) Destroy(device hal.Device) {
	if pp == nil || device == nil {
		return
	}
	pp.Vertical.destroy(device)
	pp.Vertical = nil
	pp.Horizontal.destroy(device)
	pp.Horizontal = nil
	if pp.pipeLayout != nil {
		device.DestroyPipelineLayout(pp.pipeLayout)
		pp.pipeLayout = nil
	}
	if pp.bindLayout != nil {
		device.DestroyBindGroupLayout(pp.bindLayout)
		pp.bindLayout = nil
	}
}
