package pass

import (
	"fmt"

	"github.com/forge3d/forge/engine/material"
	"github.com/forge3d/forge/engine/renderer/context"
	"github.com/forge3d/forge/engine/renderer/device"
	"github.com/forge3d/forge/engine/renderer/pipeline_state"
	"github.com/forge3d/forge/engine/renderer/queue"
)

// DepthPrepassPipelineKey identifies the depth-only prepass pipeline.
const DepthPrepassPipelineKey = "forge/depth_prepass"

// depthPrepass renders the opaque sequence front-to-back into the main depth
// target with color writes disabled, so the opaque pass can rely on early
// depth rejection for overdraw-heavy scenes. When this pass is enabled the
// opaque pass must be configured with WithDepthLoad.
type depthPrepass struct {
	passCore
	globals    *Globals
	transforms *transformTable
}

var _ Pass = &depthPrepass{}

// NewDepthPrepass creates the depth prepass.
//
// Parameters:
//   - globals: the shared pass globals
//
// Returns:
//   - Pass: the new pass, Uninitialized
func NewDepthPrepass(globals *Globals) Pass {
	return &depthPrepass{
		passCore:   newPassCore("depth_prepass"),
		globals:    globals,
		transforms: newTransformTable("depth_prepass_transforms", 0),
	}
}

func (p *depthPrepass) Initialize(dev device.Device) error {
	p.beginInitialize(dev)

	if err := p.transforms.init(dev); err != nil {
		return err
	}

	ps := pipeline_state.NewPipelineState(DepthPrepassPipelineKey,
		pipeline_state.WithShaderSource(depthShaderWGSL, "vs_depth", ""),
		pipeline_state.WithVertexLayout(pipeline_state.VertexLayoutStandard),
		pipeline_state.WithColorTarget(pipeline_state.ColorTargetNone),
		pipeline_state.WithDepthTest(true, true, pipeline_state.CompareLess),
		pipeline_state.WithDepthFormat(pipeline_state.DepthFormat24Plus),
		pipeline_state.WithCullMode(pipeline_state.CullModeBack),
		pipeline_state.WithSampleCount(p.globals.SampleCount()),
	)
	if err := dev.RegisterPipelineState(ps, p.globals.DepthLayout(), p.transforms.layout()); err != nil {
		return fmt.Errorf("register depth prepass pipeline: %w", err)
	}

	p.finishInitialize()
	return nil
}

func (p *depthPrepass) Execute(ctx context.Context, q queue.Queue) error {
	p.beginExecute()
	defer p.finishExecute()

	enc := ctx.Encoder()
	if enc == nil {
		return fmt.Errorf("depth prepass: no active command encoder")
	}

	batches := batchesOrSingles(q.OpaqueBatches(), q.Opaque())
	cmds, transforms := planDraws(p.name, batches, false, p.transforms.capacity)
	p.transforms.upload(p.dev, transforms)

	// The pass always opens so the depth target is cleared even when nothing
	// survives culling.
	rpe := enc.BeginRenderPass(&device.RenderPassDescriptor{
		Label: "depth_prepass",
		DepthStencilAttachment: &device.DepthStencilAttachment{
			View:            p.globals.DepthTarget(),
			DepthLoadOp:     device.LoadOpClear,
			DepthStoreOp:    device.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	rpe.SetBindGroup(0, p.globals.DepthGroup())
	rpe.SetBindGroup(1, p.transforms.bindGroup())

	de := drawEncoder{
		enc:   rpe,
		stats: &p.stats,
		keyFor: func(material.Material) string {
			return DepthPrepassPipelineKey
		},
	}
	for _, cmd := range cmds {
		de.draw(cmd)
	}

	rpe.End()
	return nil
}

func (p *depthPrepass) Destroy() {
	if p.state == StateDestroyed {
		return
	}
	p.transforms.destroy()
	p.markDestroyed()
}
