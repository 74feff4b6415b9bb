package pass

import (
	"fmt"

	"github.com/forge3d/forge/engine/material"
	"github.com/forge3d/forge/engine/renderer/context"
	"github.com/forge3d/forge/engine/renderer/device"
	"github.com/forge3d/forge/engine/renderer/pipeline_state"
	"github.com/forge3d/forge/engine/renderer/queue"
)

// ShadowPipelineKey identifies the shadow map pipeline.
const ShadowPipelineKey = "forge/shadow"

// shadowPass renders the shadow-caster sequence into the shadow map from the
// first shadow-casting directional light's perspective. The sequence arrives
// material-grouped from the queue, minimizing pipeline switches; front faces
// are culled and a depth bias applied to keep self-shadowing acne down.
type shadowPass struct {
	passCore
	globals    *Globals
	transforms *transformTable
}

var _ Pass = &shadowPass{}

// NewShadowPass creates the shadow map pass.
//
// Parameters:
//   - globals: the shared pass globals
//
// Returns:
//   - Pass: the new pass, Uninitialized
func NewShadowPass(globals *Globals) Pass {
	return &shadowPass{
		passCore:   newPassCore("shadow"),
		globals:    globals,
		transforms: newTransformTable("shadow_transforms", 0),
	}
}

func (p *shadowPass) Initialize(dev device.Device) error {
	p.beginInitialize(dev)

	if err := p.transforms.init(dev); err != nil {
		return err
	}

	ps := pipeline_state.NewPipelineState(ShadowPipelineKey,
		pipeline_state.WithShaderSource(depthShaderWGSL, "vs_shadow", ""),
		pipeline_state.WithVertexLayout(pipeline_state.VertexLayoutStandard),
		pipeline_state.WithColorTarget(pipeline_state.ColorTargetNone),
		pipeline_state.WithDepthTest(true, true, pipeline_state.CompareLess),
		pipeline_state.WithDepthFormat(pipeline_state.DepthFormat32Float),
		pipeline_state.WithDepthBias(2, 2.0),
		pipeline_state.WithCullMode(pipeline_state.CullModeFront),
		pipeline_state.WithSampleCount(1),
	)
	if err := dev.RegisterPipelineState(ps, p.globals.DepthLayout(), p.transforms.layout()); err != nil {
		return fmt.Errorf("register shadow pipeline: %w", err)
	}

	p.finishInitialize()
	return nil
}

func (p *shadowPass) Execute(ctx context.Context, q queue.Queue) error {
	p.beginExecute()
	defer p.finishExecute()

	enc := ctx.Encoder()
	if enc == nil {
		return fmt.Errorf("shadow pass: no active command encoder")
	}

	var cmds []drawCmd
	var transforms [][16]float32
	if ctx.ShadowCaster() != nil {
		batches := batchesOrSingles(q.ShadowBatches(), q.ShadowCasters())
		cmds, transforms = planDraws(p.name, batches, false, p.transforms.capacity)
		p.transforms.upload(p.dev, transforms)
	}

	// The map is cleared even without a caster so stale depth from a light
	// that was just disabled cannot shadow the scene.
	rpe := enc.BeginRenderPass(&device.RenderPassDescriptor{
		Label: "shadow",
		DepthStencilAttachment: &device.DepthStencilAttachment{
			View:            p.globals.ShadowMap(),
			DepthLoadOp:     device.LoadOpClear,
			DepthStoreOp:    device.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	res := float32(p.globals.ShadowResolution())
	rpe.SetViewport(0, 0, res, res, 0, 1)
	rpe.SetBindGroup(0, p.globals.DepthGroup())
	rpe.SetBindGroup(1, p.transforms.bindGroup())

	de := drawEncoder{
		enc:   rpe,
		stats: &p.stats,
		keyFor: func(material.Material) string {
			return ShadowPipelineKey
		},
	}
	for _, cmd := range cmds {
		de.draw(cmd)
	}

	rpe.End()
	return nil
}

func (p *shadowPass) Destroy() {
	if p.state == StateDestroyed {
		return
	}
	p.transforms.destroy()
	p.markDestroyed()
}
