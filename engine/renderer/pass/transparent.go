package pass

import (
	"fmt"

	"github.com/forge3d/forge/engine/material"
	"github.com/forge3d/forge/engine/renderer/context"
	"github.com/forge3d/forge/engine/renderer/device"
	"github.com/forge3d/forge/engine/renderer/pipeline_state"
	"github.com/forge3d/forge/engine/renderer/queue"
)

// Pipeline keys of the transparent scene pipelines.
const (
	TransparentPipelineKey            = "forge/transparent"
	TransparentDoubleSidedPipelineKey = "forge/transparent_2sided"
)

// transparentPass renders the transparent sequence back-to-front with alpha
// blending, depth testing against the opaque results but never writing depth.
// The back-to-front order is the blending correctness contract; the queue
// guarantees it, this pass just consumes it in order.
type transparentPass struct {
	passCore
	globals    *Globals
	transforms *transformTable
}

var _ Pass = &transparentPass{}

// NewTransparentPass creates the transparent scene pass.
//
// Parameters:
//   - globals: the shared pass globals
//
// Returns:
//   - Pass: the new pass, Uninitialized
func NewTransparentPass(globals *Globals) Pass {
	return &transparentPass{
		passCore:   newPassCore("transparent"),
		globals:    globals,
		transforms: newTransformTable("transparent_transforms", 0),
	}
}

func (p *transparentPass) Initialize(dev device.Device) error {
	p.beginInitialize(dev)

	if err := p.transforms.init(dev); err != nil {
		return err
	}

	target := pipeline_state.ColorTargetSurface
	if p.globals.PostProcessEnabled() {
		target = pipeline_state.ColorTargetOffscreen
	}

	variants := []struct {
		key  string
		cull pipeline_state.CullMode
	}{
		{TransparentPipelineKey, pipeline_state.CullModeBack},
		{TransparentDoubleSidedPipelineKey, pipeline_state.CullModeNone},
	}
	for _, v := range variants {
		ps := pipeline_state.NewPipelineState(v.key,
			pipeline_state.WithShaderSource(sceneShaderWGSL, "vs_main", "fs_main"),
			pipeline_state.WithVertexLayout(pipeline_state.VertexLayoutStandard),
			pipeline_state.WithColorTarget(target),
			pipeline_state.WithDepthTest(true, false, pipeline_state.CompareLess),
			pipeline_state.WithDepthFormat(pipeline_state.DepthFormat24Plus),
			pipeline_state.WithBlendEnabled(true),
			pipeline_state.WithCullMode(v.cull),
			pipeline_state.WithSampleCount(p.globals.SampleCount()),
		)
		err := dev.RegisterPipelineState(ps,
			p.globals.SceneLayout(), materialGroupLayout(), p.transforms.layout())
		if err != nil {
			return fmt.Errorf("register pipeline %s: %w", v.key, err)
		}
	}

	p.finishInitialize()
	return nil
}

func (p *transparentPass) Execute(ctx context.Context, q queue.Queue) error {
	p.beginExecute()
	defer p.finishExecute()

	enc := ctx.Encoder()
	if enc == nil {
		return fmt.Errorf("transparent pass: no active command encoder")
	}

	batches := batchesOrSingles(q.TransparentBatches(), q.Transparent())
	cmds, transforms := planDraws(p.name, batches, true, p.transforms.capacity)
	if len(cmds) == 0 {
		return nil
	}
	p.transforms.upload(p.dev, transforms)

	rpe := enc.BeginRenderPass(&device.RenderPassDescriptor{
		Label: "transparent",
		ColorAttachments: []device.ColorAttachment{{
			View:    p.globals.SceneTarget(),
			LoadOp:  device.LoadOpLoad,
			StoreOp: device.StoreOpStore,
		}},
		DepthStencilAttachment: &device.DepthStencilAttachment{
			View:         p.globals.DepthTarget(),
			DepthLoadOp:  device.LoadOpLoad,
			DepthStoreOp: device.StoreOpStore,
		},
	})
	rpe.SetBindGroup(0, p.globals.SceneGroup())
	rpe.SetBindGroup(2, p.transforms.bindGroup())

	de := drawEncoder{
		enc:          rpe,
		stats:        &p.stats,
		bindMaterial: true,
		materialSlot: 1,
		keyFor:       transparentKeyFor,
	}
	for _, cmd := range cmds {
		de.draw(cmd)
	}

	rpe.End()
	return nil
}

// transparentKeyFor resolves the pipeline for a transparent material.
func transparentKeyFor(mat material.Material) string {
	if key := mat.PipelineKey(); key != "" {
		return key
	}
	if mat.DoubleSided() {
		return TransparentDoubleSidedPipelineKey
	}
	return TransparentPipelineKey
}

func (p *transparentPass) Destroy() {
	if p.state == StateDestroyed {
		return
	}
	p.transforms.destroy()
	p.markDestroyed()
}
