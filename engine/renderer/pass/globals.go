package pass

import (
	"fmt"

	"github.com/forge3d/forge/engine/renderer/bind_group_provider"
	"github.com/forge3d/forge/engine/renderer/context"
	"github.com/forge3d/forge/engine/renderer/device"
)

// Binding slots of the scene globals group (group 0 of the lit passes).
const (
	globalsBindingFrame = iota
	globalsBindingLights
	globalsBindingShadow
	globalsBindingShadowMap
	globalsBindingShadowSampler
)

// Binding slots of the depth-only globals group (group 0 of shadow and prepass).
const (
	depthBindingFrame = iota
	depthBindingShadow
)

// DefaultShadowResolution is the shadow map size used when none is configured.
const DefaultShadowResolution = 2048

// Globals owns the per-frame GPU state every pass binds at group 0: the frame,
// light, and shadow uniform buffers, the shadow map and its comparison
// sampler, and the size-dependent render targets (depth, and the offscreen
// scene color target when post-processing is on).
//
// Two bind group flavors share the same underlying buffers: the scene group
// carries the full set including the shadow map, while the depth group carries
// only the frame and shadow uniforms — the shadow pass renders into the shadow
// map and therefore must not have it bound as a texture at the same time.
type Globals struct {
	scene bind_group_provider.BindGroupProvider
	depth bind_group_provider.BindGroupProvider

	shadowMap        device.TextureView
	shadowSampler    device.Sampler
	shadowResolution int

	postProcess bool
	sampleCount uint32

	depthTarget device.TextureView
	sceneTarget device.TextureView
	targetW     int
	targetH     int
}

// GlobalsOption configures Globals during construction.
type GlobalsOption func(*Globals)

// WithShadowResolution sets the shadow map size in texels.
//
// Parameters:
//   - resolution: shadow map width and height
//
// Returns:
//   - GlobalsOption: a function that sets the resolution
func WithShadowResolution(resolution int) GlobalsOption {
	return func(g *Globals) {
		if resolution > 0 {
			g.shadowResolution = resolution
		}
	}
}

// WithPostProcess routes the scene passes into an offscreen color target that
// the post-process chain reads, instead of rendering directly to the surface.
// Offscreen targets are single-sampled, so this also disables MSAA on the
// scene pipelines.
//
// Returns:
//   - GlobalsOption: a function that enables the offscreen scene target
func WithPostProcess() GlobalsOption {
	return func(g *Globals) {
		g.postProcess = true
	}
}

// NewGlobals creates the shared pass globals with the provided options.
//
// Parameters:
//   - options: a variadic list of options to configure the globals
//
// Returns:
//   - *Globals: the new globals, not yet holding GPU resources
func NewGlobals(options ...GlobalsOption) *Globals {
	g := &Globals{
		shadowResolution: DefaultShadowResolution,
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// Initialize creates the uniform buffers, shadow map, sampler, and both bind
// groups.
//
// Parameters:
//   - dev: the graphics device
//
// Returns:
//   - error: an error if any resource creation fails
func (g *Globals) Initialize(dev device.Device) error {
	g.sampleCount = dev.SampleCount()
	if g.postProcess {
		g.sampleCount = 1
	}

	shadowMap, err := dev.CreateShadowDepthTexture(g.shadowResolution)
	if err != nil {
		return fmt.Errorf("create shadow map: %w", err)
	}
	g.shadowMap = shadowMap

	sampler, err := dev.CreateComparisonSampler()
	if err != nil {
		return fmt.Errorf("create shadow sampler: %w", err)
	}
	g.shadowSampler = sampler

	var frame context.FrameData
	var lights context.LightData
	var shadow context.ShadowData

	g.scene = bind_group_provider.NewBindGroupProvider("globals_scene",
		bind_group_provider.WithLayoutEntries(
			device.BindGroupLayoutEntry{
				Binding:        globalsBindingFrame,
				Visibility:     device.StageVertex | device.StageFragment,
				Kind:           device.BindingKindUniformBuffer,
				MinBindingSize: uint64(len(frame.Bytes())),
			},
			device.BindGroupLayoutEntry{
				Binding:        globalsBindingLights,
				Visibility:     device.StageFragment,
				Kind:           device.BindingKindUniformBuffer,
				MinBindingSize: uint64(len(lights.Bytes())),
			},
			device.BindGroupLayoutEntry{
				Binding:        globalsBindingShadow,
				Visibility:     device.StageVertex | device.StageFragment,
				Kind:           device.BindingKindUniformBuffer,
				MinBindingSize: uint64(len(shadow.Bytes())),
			},
			device.BindGroupLayoutEntry{
				Binding:    globalsBindingShadowMap,
				Visibility: device.StageFragment,
				Kind:       device.BindingKindDepthTexture,
			},
			device.BindGroupLayoutEntry{
				Binding:    globalsBindingShadowSampler,
				Visibility: device.StageFragment,
				Kind:       device.BindingKindComparisonSampler,
			},
		),
		bind_group_provider.WithTextureView(globalsBindingShadowMap, g.shadowMap),
		bind_group_provider.WithSampler(globalsBindingShadowSampler, g.shadowSampler),
	)
	if err := g.scene.Init(dev); err != nil {
		return fmt.Errorf("init scene globals: %w", err)
	}

	// The depth group shares the scene group's frame and shadow buffers.
	g.depth = bind_group_provider.NewBindGroupProvider("globals_depth",
		bind_group_provider.WithLayoutEntries(
			device.BindGroupLayoutEntry{
				Binding:        depthBindingFrame,
				Visibility:     device.StageVertex,
				Kind:           device.BindingKindUniformBuffer,
				MinBindingSize: uint64(len(frame.Bytes())),
			},
			device.BindGroupLayoutEntry{
				Binding:        depthBindingShadow,
				Visibility:     device.StageVertex,
				Kind:           device.BindingKindUniformBuffer,
				MinBindingSize: uint64(len(shadow.Bytes())),
			},
		),
		bind_group_provider.WithBuffer(depthBindingFrame, g.scene.Buffer(globalsBindingFrame)),
		bind_group_provider.WithBuffer(depthBindingShadow, g.scene.Buffer(globalsBindingShadow)),
	)
	if err := g.depth.Init(dev); err != nil {
		return fmt.Errorf("init depth globals: %w", err)
	}

	return nil
}

// EnsureTargets creates or recreates the size-dependent render targets when
// the viewport changes. Called by the pipeline at the start of each frame.
//
// Parameters:
//   - dev: the graphics device
//   - width, height: the current surface size in pixels
//
// Returns:
//   - error: an error if target creation fails
func (g *Globals) EnsureTargets(dev device.Device, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid target size %dx%d", width, height)
	}
	if width == g.targetW && height == g.targetH && g.depthTarget != nil {
		return nil
	}

	if g.depthTarget != nil {
		g.depthTarget.Release()
		g.depthTarget = nil
	}
	if g.sceneTarget != nil {
		g.sceneTarget.Release()
		g.sceneTarget = nil
	}

	depth, err := dev.CreateDepthTexture(width, height, g.sampleCount)
	if err != nil {
		return fmt.Errorf("create depth target: %w", err)
	}
	g.depthTarget = depth

	if g.postProcess {
		scene, err := dev.CreateRenderTarget(width, height)
		if err != nil {
			return fmt.Errorf("create scene target: %w", err)
		}
		g.sceneTarget = scene
	}

	g.targetW = width
	g.targetH = height
	return nil
}

// Update serializes the context's frame, light, and shadow records into the
// shared uniform buffers. Called once per frame before any pass executes.
//
// Parameters:
//   - dev: the graphics device
//   - ctx: the updated render context
func (g *Globals) Update(dev device.Device, ctx context.Context) {
	frame := ctx.FrameData()
	lights := ctx.LightData()
	shadow := ctx.ShadowData()
	bind_group_provider.FlushBufferWrites(dev, []bind_group_provider.BufferWrite{
		{Provider: g.scene, Binding: globalsBindingFrame, Data: frame.Bytes()},
		{Provider: g.scene, Binding: globalsBindingLights, Data: lights.Bytes()},
		{Provider: g.scene, Binding: globalsBindingShadow, Data: shadow.Bytes()},
	})
}

// SceneLayout returns the layout entries of the scene globals group.
func (g *Globals) SceneLayout() []device.BindGroupLayoutEntry {
	return g.scene.LayoutEntries()
}

// SceneGroup returns the bind group of the scene globals.
func (g *Globals) SceneGroup() device.BindGroup {
	return g.scene.BindGroup()
}

// DepthLayout returns the layout entries of the depth-only globals group.
func (g *Globals) DepthLayout() []device.BindGroupLayoutEntry {
	return g.depth.LayoutEntries()
}

// DepthGroup returns the bind group of the depth-only globals.
func (g *Globals) DepthGroup() device.BindGroup {
	return g.depth.BindGroup()
}

// ShadowMap returns the shadow depth texture view.
func (g *Globals) ShadowMap() device.TextureView {
	return g.shadowMap
}

// ShadowResolution returns the shadow map size in texels.
func (g *Globals) ShadowResolution() int {
	return g.shadowResolution
}

// DepthTarget returns the main depth attachment view.
func (g *Globals) DepthTarget() device.TextureView {
	return g.depthTarget
}

// SceneTarget returns the offscreen color target the scene passes render
// into, or nil when they render directly to the surface.
func (g *Globals) SceneTarget() device.TextureView {
	return g.sceneTarget
}

// PostProcessEnabled reports whether the scene renders through the offscreen
// target.
func (g *Globals) PostProcessEnabled() bool {
	return g.postProcess
}

// SampleCount returns the sample count of the scene pipelines.
func (g *Globals) SampleCount() uint32 {
	return g.sampleCount
}

// Destroy releases all GPU resources held by the globals.
func (g *Globals) Destroy() {
	// The scene provider owns the buffers, the shadow map, and the sampler;
	// its Release frees them all. The depth provider only borrows the same
	// buffers, so releasing it too would double-free — its bind group is the
	// one resource it owns.
	if g.depth != nil {
		if group := g.depth.BindGroup(); group != nil {
			group.Release()
		}
		g.depth = nil
	}
	if g.scene != nil {
		g.scene.Release()
		g.scene = nil
	}
	g.shadowMap = nil
	g.shadowSampler = nil
	if g.depthTarget != nil {
		g.depthTarget.Release()
		g.depthTarget = nil
	}
	if g.sceneTarget != nil {
		g.sceneTarget.Release()
		g.sceneTarget = nil
	}
}
