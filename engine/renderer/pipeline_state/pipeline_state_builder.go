package pipeline_state

// PipelineStateBuilderOption is a functional option used to configure a PipelineState during construction.
type PipelineStateBuilderOption func(*pipelineState)

// WithShaderSource sets the WGSL module source and entry point names.
//
// Parameters:
//   - source: the WGSL module source containing both entry points
//   - vertexEntry: the vertex shader entry point name
//   - fragmentEntry: the fragment shader entry point name ("" for depth-only pipelines)
//
// Returns:
//   - PipelineStateBuilderOption: a function that sets the shader source on the state
func WithShaderSource(source, vertexEntry, fragmentEntry string) PipelineStateBuilderOption {
	return func(p *pipelineState) {
		p.shaderSource = source
		p.vertexEntryPoint = vertexEntry
		p.fragmentEntryPoint = fragmentEntry
	}
}

// WithVertexLayout sets the vertex buffer layout the pipeline consumes.
//
// Parameters:
//   - layout: the vertex layout (standard, position-only, or none)
//
// Returns:
//   - PipelineStateBuilderOption: a function that sets the vertex layout on the state
func WithVertexLayout(layout VertexLayout) PipelineStateBuilderOption {
	return func(p *pipelineState) {
		p.vertexLayout = layout
	}
}

// WithColorTarget sets the color attachment kind the pipeline renders to.
//
// Parameters:
//   - target: the color target kind (surface, offscreen, or none)
//
// Returns:
//   - PipelineStateBuilderOption: a function that sets the color target on the state
func WithColorTarget(target ColorTarget) PipelineStateBuilderOption {
	return func(p *pipelineState) {
		p.colorTarget = target
	}
}

// WithDepthTest configures depth testing for the pipeline.
//
// Parameters:
//   - enabled: whether depth testing is enabled
//   - write: whether depth writes are enabled
//   - compare: the depth comparison function
//
// Returns:
//   - PipelineStateBuilderOption: a function that sets the depth state on the pipeline
func WithDepthTest(enabled, write bool, compare CompareFunction) PipelineStateBuilderOption {
	return func(p *pipelineState) {
		p.depthTestEnabled = enabled
		p.depthWriteEnabled = write
		p.depthCompare = compare
	}
}

// WithDepthFormat sets the depth attachment format the pipeline targets.
//
// Parameters:
//   - format: the depth format (24-plus for the main target, 32-float for shadow maps)
//
// Returns:
//   - PipelineStateBuilderOption: a function that sets the depth format on the state
func WithDepthFormat(format DepthFormat) PipelineStateBuilderOption {
	return func(p *pipelineState) {
		p.depthFormat = format
	}
}

// WithDepthBias sets the depth bias parameters. Shadow pipelines use a bias
// to reduce shadow acne.
//
// Parameters:
//   - bias: the constant depth bias to apply
//   - slopeScale: the slope scale depth bias to apply
//
// Returns:
//   - PipelineStateBuilderOption: a function that sets the depth bias parameters on the state
func WithDepthBias(bias int32, slopeScale float32) PipelineStateBuilderOption {
	return func(p *pipelineState) {
		p.depthBias = bias
		p.depthBiasSlope = slopeScale
	}
}

// WithBlendEnabled sets whether alpha blending is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether blending should be enabled
//
// Returns:
//   - PipelineStateBuilderOption: a function that sets the blend enabled state
func WithBlendEnabled(enabled bool) PipelineStateBuilderOption {
	return func(p *pipelineState) {
		p.blendEnabled = enabled
	}
}

// WithColorWriteEnabled sets whether the pipeline writes color channels.
// Depth-only configurations against a color-bearing pass disable this
// instead of dropping the attachment.
//
// Parameters:
//   - enabled: a boolean indicating whether color writes should be enabled
//
// Returns:
//   - PipelineStateBuilderOption: a function that sets the color write state
func WithColorWriteEnabled(enabled bool) PipelineStateBuilderOption {
	return func(p *pipelineState) {
		p.colorWriteMask = enabled
	}
}

// WithCullMode sets the face culling mode for this pipeline.
//
// Parameters:
//   - mode: the cull mode to use
//
// Returns:
//   - PipelineStateBuilderOption: a function that sets the cull mode on the state
func WithCullMode(mode CullMode) PipelineStateBuilderOption {
	return func(p *pipelineState) {
		p.cullMode = mode
	}
}

// WithSampleCount sets the MSAA sample count for this pipeline. The count
// must match the sample count of the render target the pipeline draws into.
//
// Parameters:
//   - count: the sample count (1, 4, 8, or 16)
//
// Returns:
//   - PipelineStateBuilderOption: a function that sets the sample count on the state
func WithSampleCount(count uint32) PipelineStateBuilderOption {
	return func(p *pipelineState) {
		p.sampleCount = count
	}
}
