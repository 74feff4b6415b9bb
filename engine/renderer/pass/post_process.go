package pass

import (
	"fmt"

	"github.com/forge3d/forge/common"
	"github.com/forge3d/forge/engine/renderer/bind_group_provider"
	"github.com/forge3d/forge/engine/renderer/context"
	"github.com/forge3d/forge/engine/renderer/device"
	"github.com/forge3d/forge/engine/renderer/pipeline_state"
	"github.com/forge3d/forge/engine/renderer/queue"
)

// TonemapCurve selects the tone mapping operator of the tonemap effect.
type TonemapCurve int

const (
	// TonemapLinear performs no tone mapping.
	TonemapLinear TonemapCurve = iota

	// TonemapReinhard applies the classic x/(1+x) operator.
	TonemapReinhard

	// TonemapACES applies the ACES filmic approximation.
	TonemapACES

	// TonemapFilmic applies the Hejl-Burgess-Dawson filmic curve.
	TonemapFilmic

	// TonemapUncharted2 applies the Uncharted 2 filmic operator.
	TonemapUncharted2
)

// Effect is one stage of the post-process chain: a fragment entry point in
// the post shader plus a static parameter vector.
type Effect struct {
	// Name identifies the effect in pipeline keys and labels; must be unique
	// within one chain.
	Name string

	// FragmentEntry is the fragment entry point in the post shader.
	FragmentEntry string

	// Params is uploaded to the effect's uniform at initialization.
	Params [4]float32
}

// TonemapEffect returns the tone mapping effect for the given curve.
//
// Parameters:
//   - curve: the tone mapping operator
//
// Returns:
//   - Effect: the configured effect
func TonemapEffect(curve TonemapCurve) Effect {
	return Effect{
		Name:          "tonemap",
		FragmentEntry: "fs_tonemap",
		Params:        [4]float32{float32(curve)},
	}
}

// FXAAEffect returns the fast approximate antialiasing effect.
//
// Returns:
//   - Effect: the configured effect
func FXAAEffect() Effect {
	return Effect{
		Name:          "fxaa",
		FragmentEntry: "fs_fxaa",
	}
}

// BlitEffect returns a plain copy effect, useful as the terminal stage of a
// chain whose real work happens earlier.
//
// Returns:
//   - Effect: the configured effect
func BlitEffect() Effect {
	return Effect{
		Name:          "blit",
		FragmentEntry: "fs_blit",
	}
}

// Binding slots of each effect's bind group.
const (
	postBindingSource = iota
	postBindingSampler
	postBindingParams
)

// postProcessPass threads a fullscreen triangle through the effect chain.
// Each effect reads the previous stage's output texture, ping-ponging
// between the scene target and one intermediate target; the last effect
// writes directly to the surface. The pass has no scene drawables and no
// depth attachment.
type postProcessPass struct {
	passCore
	globals *Globals
	effects []Effect

	sampler   device.Sampler
	providers []bind_group_provider.BindGroupProvider

	pong       device.TextureView
	boundScene device.TextureView
	boundW     int
	boundH     int
}

var _ Pass = &postProcessPass{}

// PostProcessOption configures the post-process pass during construction.
type PostProcessOption func(*postProcessPass)

// WithEffects sets the effect chain, replacing the default tonemapper.
//
// Parameters:
//   - effects: the effects in execution order
//
// Returns:
//   - PostProcessOption: a function that sets the chain
func WithEffects(effects ...Effect) PostProcessOption {
	return func(p *postProcessPass) {
		p.effects = effects
	}
}

// NewPostProcessPass creates the post-process pass. Without options the chain
// is a single ACES tonemapper.
//
// Parameters:
//   - globals: the shared pass globals
//   - options: a variadic list of options to configure the pass
//
// Returns:
//   - Pass: the new pass, Uninitialized
func NewPostProcessPass(globals *Globals, options ...PostProcessOption) Pass {
	p := &postProcessPass{
		passCore: newPassCore("post_process"),
		globals:  globals,
		effects:  []Effect{TonemapEffect(TonemapACES)},
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// pipelineKey returns the registered key of one effect stage.
func (p *postProcessPass) pipelineKey(i int) string {
	if i == len(p.effects)-1 {
		return fmt.Sprintf("forge/post/%s/surface", p.effects[i].Name)
	}
	return fmt.Sprintf("forge/post/%s/offscreen", p.effects[i].Name)
}

func (p *postProcessPass) Initialize(dev device.Device) error {
	p.beginInitialize(dev)

	if len(p.effects) == 0 {
		p.effects = []Effect{BlitEffect()}
	}

	sampler, err := dev.CreateLinearSampler()
	if err != nil {
		return fmt.Errorf("create post sampler: %w", err)
	}
	p.sampler = sampler

	layout := []device.BindGroupLayoutEntry{
		{
			Binding:    postBindingSource,
			Visibility: device.StageFragment,
			Kind:       device.BindingKindTexture,
		},
		{
			Binding:    postBindingSampler,
			Visibility: device.StageFragment,
			Kind:       device.BindingKindSampler,
		},
		{
			Binding:        postBindingParams,
			Visibility:     device.StageFragment,
			Kind:           device.BindingKindUniformBuffer,
			MinBindingSize: 16,
		},
	}

	p.providers = make([]bind_group_provider.BindGroupProvider, len(p.effects))
	for i, eff := range p.effects {
		p.providers[i] = bind_group_provider.NewBindGroupProvider(
			fmt.Sprintf("post_%s", eff.Name),
			bind_group_provider.WithLayoutEntries(layout...),
			bind_group_provider.WithSampler(postBindingSampler, p.sampler),
		)

		target := pipeline_state.ColorTargetOffscreen
		sampleCount := uint32(1)
		if i == len(p.effects)-1 {
			target = pipeline_state.ColorTargetSurface
			sampleCount = dev.SampleCount()
		}
		ps := pipeline_state.NewPipelineState(p.pipelineKey(i),
			pipeline_state.WithShaderSource(postShaderWGSL, "vs_fullscreen", eff.FragmentEntry),
			pipeline_state.WithVertexLayout(pipeline_state.VertexLayoutNone),
			pipeline_state.WithColorTarget(target),
			pipeline_state.WithDepthTest(false, false, pipeline_state.CompareAlways),
			pipeline_state.WithCullMode(pipeline_state.CullModeNone),
			pipeline_state.WithSampleCount(sampleCount),
		)
		if err := dev.RegisterPipelineState(ps, layout); err != nil {
			return fmt.Errorf("register post pipeline %s: %w", eff.Name, err)
		}
	}

	p.finishInitialize()
	return nil
}

// ensureChain rebuilds the ping-pong target and the per-effect bind groups
// when the scene target changed (startup or resize).
func (p *postProcessPass) ensureChain(dev device.Device) error {
	scene := p.globals.SceneTarget()
	w, h := p.globals.targetW, p.globals.targetH
	if scene == p.boundScene && w == p.boundW && h == p.boundH {
		return nil
	}

	if len(p.effects) > 1 {
		if p.pong != nil {
			p.pong.Release()
			p.pong = nil
		}
		pong, err := dev.CreateRenderTarget(w, h)
		if err != nil {
			return fmt.Errorf("create post target: %w", err)
		}
		p.pong = pong
	}

	for i, provider := range p.providers {
		provider.SetTextureView(postBindingSource, p.stageInput(i))
		if err := provider.Init(dev); err != nil {
			return fmt.Errorf("init post bind group %d: %w", i, err)
		}
		params := p.effects[i].Params
		dev.WriteBuffer(provider.Buffer(postBindingParams), 0, common.SliceToBytes(params[:]))
	}

	p.boundScene = scene
	p.boundW = w
	p.boundH = h
	return nil
}

// stageInput returns the texture effect i reads: the scene target for even
// stages, the ping-pong target for odd ones.
func (p *postProcessPass) stageInput(i int) device.TextureView {
	if i%2 == 0 {
		return p.globals.SceneTarget()
	}
	return p.pong
}

// stageOutput returns the attachment effect i writes: nil (the surface) for
// the last stage, otherwise the target opposite its input.
func (p *postProcessPass) stageOutput(i int) device.TextureView {
	if i == len(p.effects)-1 {
		return nil
	}
	if i%2 == 0 {
		return p.pong
	}
	return p.globals.SceneTarget()
}

func (p *postProcessPass) Execute(ctx context.Context, q queue.Queue) error {
	p.beginExecute()
	defer p.finishExecute()

	if p.globals.SceneTarget() == nil {
		// Scene passes rendered directly to the surface; nothing to read.
		return nil
	}

	enc := ctx.Encoder()
	if enc == nil {
		return fmt.Errorf("post-process pass: no active command encoder")
	}

	if err := p.ensureChain(p.dev); err != nil {
		return err
	}

	for i, eff := range p.effects {
		rpe := enc.BeginRenderPass(&device.RenderPassDescriptor{
			Label: fmt.Sprintf("post_%s", eff.Name),
			ColorAttachments: []device.ColorAttachment{{
				View:    p.stageOutput(i),
				LoadOp:  device.LoadOpClear,
				StoreOp: device.StoreOpStore,
			}},
		})
		rpe.SetPipelineState(p.pipelineKey(i))
		rpe.SetBindGroup(0, p.providers[i].BindGroup())
		rpe.Draw(3, 1, 0, 0)
		rpe.End()

		p.stats.StateChanges++
		p.stats.TextureBindings++
		p.stats.DrawCalls++
		p.stats.Vertices += 3
		p.stats.Triangles++
	}

	return nil
}

func (p *postProcessPass) Destroy() {
	if p.state == StateDestroyed {
		return
	}
	// The providers reference texture views owned by the globals and the
	// pass's own ping-pong target, so a blanket provider Release would
	// double-free them. Release only what each provider exclusively owns.
	for _, provider := range p.providers {
		if buf := provider.Buffer(postBindingParams); buf != nil {
			buf.Release()
		}
		if group := provider.BindGroup(); group != nil {
			group.Release()
		}
	}
	p.providers = nil
	if p.pong != nil {
		p.pong.Release()
		p.pong = nil
	}
	if p.sampler != nil {
		p.sampler.Release()
		p.sampler = nil
	}
	p.markDestroyed()
}
