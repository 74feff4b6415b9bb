package pipeline_state

// CompareFunction selects the depth comparison applied while depth testing.
type CompareFunction int

const (
	// CompareLess passes fragments strictly closer than the stored depth.
	CompareLess CompareFunction = iota

	// CompareLessEqual passes fragments at or closer than the stored depth.
	// Used by the skybox pass, which renders at maximum depth.
	CompareLessEqual

	// CompareAlways disables depth rejection entirely. Used by post-process
	// effects that shade every fragment of a fullscreen triangle.
	CompareAlways
)

// CullMode selects which triangle faces are discarded during rasterization.
type CullMode int

const (
	// CullModeNone disables face culling.
	CullModeNone CullMode = iota

	// CullModeFront culls front faces. Shadow pipelines use this to reduce
	// self-shadowing artifacts.
	CullModeFront

	// CullModeBack culls back faces.
	CullModeBack
)

// VertexLayout identifies the vertex buffer layout a pipeline consumes.
type VertexLayout int

const (
	// VertexLayoutStandard is the interleaved position/normal/uv layout
	// (8 floats, 32 bytes per vertex) used by scene geometry.
	VertexLayoutStandard VertexLayout = iota

	// VertexLayoutPosition is a position-only layout (3 floats, 12 bytes per
	// vertex) used by the skybox cube.
	VertexLayoutPosition

	// VertexLayoutNone declares no vertex buffer at all. Post-process
	// pipelines generate a fullscreen triangle from the vertex index.
	VertexLayoutNone
)

// ColorTarget identifies what color attachment a pipeline renders to.
type ColorTarget int

const (
	// ColorTargetSurface renders to the swapchain surface format.
	ColorTargetSurface ColorTarget = iota

	// ColorTargetOffscreen renders to an intermediate RGBA8 render target,
	// used by the post-process ping-pong chain.
	ColorTargetOffscreen

	// ColorTargetNone renders no color at all (depth-only pipelines:
	// shadow map generation and the depth prepass).
	ColorTargetNone
)

// DepthFormat identifies the depth attachment format a pipeline renders against.
type DepthFormat int

const (
	// DepthFormat24Plus is the main render target's depth format.
	DepthFormat24Plus DepthFormat = iota

	// DepthFormat32Float is the shadow map depth format.
	DepthFormat32Float
)

// pipelineState is the implementation of the PipelineState interface.
type pipelineState struct {
	key string

	// shaderSource is the WGSL module containing both entry points. Shader
	// compilation and reflection happen inside the device backend; this
	// package only transports the source.
	shaderSource       string
	vertexEntryPoint   string
	fragmentEntryPoint string

	vertexLayout VertexLayout
	colorTarget  ColorTarget

	depthTestEnabled  bool
	depthWriteEnabled bool
	depthCompare      CompareFunction
	depthFormat       DepthFormat
	depthBias         int32
	depthBiasSlope    float32

	blendEnabled   bool
	colorWriteMask bool
	cullMode       CullMode

	sampleCount uint32
}

// PipelineState describes the complete fixed-function configuration of one
// GPU render pipeline: shader entry points, vertex layout, depth/blend/cull
// state, and target formats. It carries no GPU handles itself — the device
// backend compiles it into a concrete pipeline object, cached by Key.
type PipelineState interface {
	// Key returns the unique identifier for this pipeline state, used by the
	// device backend for caching and by render passes for binding.
	//
	// Returns:
	//   - string: the unique key
	Key() string

	// ShaderSource returns the WGSL source containing the pipeline's entry points.
	//
	// Returns:
	//   - string: the WGSL module source
	ShaderSource() string

	// VertexEntryPoint returns the vertex shader entry point name.
	//
	// Returns:
	//   - string: the vertex entry point
	VertexEntryPoint() string

	// FragmentEntryPoint returns the fragment shader entry point name.
	// Empty for depth-only pipelines (shadow, depth prepass).
	//
	// Returns:
	//   - string: the fragment entry point, or "" for depth-only pipelines
	FragmentEntryPoint() string

	// VertexLayout returns the vertex buffer layout this pipeline consumes.
	//
	// Returns:
	//   - VertexLayout: the vertex layout
	VertexLayout() VertexLayout

	// ColorTarget returns the color attachment kind this pipeline renders to.
	//
	// Returns:
	//   - ColorTarget: the color target kind
	ColorTarget() ColorTarget

	// DepthTestEnabled returns whether depth testing is enabled.
	//
	// Returns:
	//   - bool: true if depth testing is enabled
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled.
	//
	// Returns:
	//   - bool: true if depth writing is enabled
	DepthWriteEnabled() bool

	// DepthCompare returns the depth comparison function.
	//
	// Returns:
	//   - CompareFunction: the depth compare function
	DepthCompare() CompareFunction

	// DepthFormat returns the depth attachment format the pipeline targets.
	//
	// Returns:
	//   - DepthFormat: the depth format
	DepthFormat() DepthFormat

	// DepthBias returns the constant depth bias. Non-zero only for shadow pipelines.
	//
	// Returns:
	//   - int32: the depth bias
	DepthBias() int32

	// DepthBiasSlopeScale returns the slope-scaled depth bias.
	//
	// Returns:
	//   - float32: the slope scale bias
	DepthBiasSlopeScale() float32

	// BlendEnabled returns whether alpha blending is enabled.
	//
	// Returns:
	//   - bool: true if blending is enabled
	BlendEnabled() bool

	// ColorWriteEnabled returns whether the pipeline writes color channels.
	//
	// Returns:
	//   - bool: true if color writes are enabled
	ColorWriteEnabled() bool

	// CullMode returns the face culling mode.
	//
	// Returns:
	//   - CullMode: the cull mode
	CullMode() CullMode

	// SampleCount returns the MSAA sample count for this pipeline.
	//
	// Returns:
	//   - uint32: the sample count (1 = no MSAA)
	SampleCount() uint32
}

var _ PipelineState = &pipelineState{}

// NewPipelineState creates a new PipelineState with opaque-pass defaults:
// depth test less with write, no blending, color writes on, standard vertex
// layout, surface color target, sample count 1.
//
// Parameters:
//   - key: the unique key for this pipeline state
//   - opts: a variadic list of PipelineStateBuilderOption functions to configure the state
//
// Returns:
//   - PipelineState: a new PipelineState instance
func NewPipelineState(key string, opts ...PipelineStateBuilderOption) PipelineState {
	p := &pipelineState{
		key:                key,
		vertexEntryPoint:   "vs_main",
		fragmentEntryPoint: "fs_main",
		vertexLayout:       VertexLayoutStandard,
		colorTarget:        ColorTargetSurface,
		depthTestEnabled:   true,
		depthWriteEnabled:  true,
		depthCompare:       CompareLess,
		blendEnabled:       false,
		colorWriteMask:     true,
		cullMode:           CullModeNone,
		sampleCount:        1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipelineState) Key() string {
	return p.key
}

func (p *pipelineState) ShaderSource() string {
	return p.shaderSource
}

func (p *pipelineState) VertexEntryPoint() string {
	return p.vertexEntryPoint
}

func (p *pipelineState) FragmentEntryPoint() string {
	return p.fragmentEntryPoint
}

func (p *pipelineState) VertexLayout() VertexLayout {
	return p.vertexLayout
}

func (p *pipelineState) ColorTarget() ColorTarget {
	return p.colorTarget
}

func (p *pipelineState) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipelineState) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipelineState) DepthCompare() CompareFunction {
	return p.depthCompare
}

func (p *pipelineState) DepthFormat() DepthFormat {
	return p.depthFormat
}

func (p *pipelineState) DepthBias() int32 {
	return p.depthBias
}

func (p *pipelineState) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlope
}

func (p *pipelineState) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipelineState) ColorWriteEnabled() bool {
	return p.colorWriteMask
}

func (p *pipelineState) CullMode() CullMode {
	return p.cullMode
}

func (p *pipelineState) SampleCount() uint32 {
	return p.sampleCount
}
