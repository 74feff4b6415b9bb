package pass

import (
	"fmt"

	"github.com/forge3d/forge/engine/material"
	"github.com/forge3d/forge/engine/renderer/context"
	"github.com/forge3d/forge/engine/renderer/device"
	"github.com/forge3d/forge/engine/renderer/pipeline_state"
	"github.com/forge3d/forge/engine/renderer/queue"
)

// Pipeline keys of the opaque scene pipelines.
const (
	OpaquePipelineKey            = "forge/opaque"
	OpaqueDoubleSidedPipelineKey = "forge/opaque_2sided"
)

// opaquePass renders the opaque sequence front-to-back into the scene color
// target with full depth test and write. It clears both attachments unless a
// depth prepass runs before it, in which case WithDepthLoad must be set so
// the prepass results are kept and fragments at equal depth still pass.
type opaquePass struct {
	passCore
	globals    *Globals
	transforms *transformTable

	depthLoad  bool
	clearColor [4]float64
}

var _ Pass = &opaquePass{}

// OpaqueOption configures the opaque pass during construction.
type OpaqueOption func(*opaquePass)

// WithDepthLoad keeps the depth buffer written by the depth prepass instead of
// clearing it, and relaxes the depth compare to less-equal so prepass depths
// survive. Required whenever the prepass is enabled.
//
// Returns:
//   - OpaqueOption: a function that enables depth loading
func WithDepthLoad() OpaqueOption {
	return func(p *opaquePass) {
		p.depthLoad = true
	}
}

// WithClearColor sets the RGBA color the scene target is cleared to.
//
// Parameters:
//   - r, g, b, a: the clear color components
//
// Returns:
//   - OpaqueOption: a function that sets the clear color
func WithClearColor(r, g, b, a float64) OpaqueOption {
	return func(p *opaquePass) {
		p.clearColor = [4]float64{r, g, b, a}
	}
}

// NewOpaquePass creates the opaque scene pass.
//
// Parameters:
//   - globals: the shared pass globals
//   - options: a variadic list of options to configure the pass
//
// Returns:
//   - Pass: the new pass, Uninitialized
func NewOpaquePass(globals *Globals, options ...OpaqueOption) Pass {
	p := &opaquePass{
		passCore:   newPassCore("opaque"),
		globals:    globals,
		transforms: newTransformTable("opaque_transforms", 0),
		clearColor: [4]float64{0.05, 0.05, 0.08, 1.0},
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *opaquePass) Initialize(dev device.Device) error {
	p.beginInitialize(dev)

	if err := p.transforms.init(dev); err != nil {
		return err
	}

	compare := pipeline_state.CompareLess
	if p.depthLoad {
		compare = pipeline_state.CompareLessEqual
	}
	target := pipeline_state.ColorTargetSurface
	if p.globals.PostProcessEnabled() {
		target = pipeline_state.ColorTargetOffscreen
	}

	variants := []struct {
		key  string
		cull pipeline_state.CullMode
	}{
		{OpaquePipelineKey, pipeline_state.CullModeBack},
		{OpaqueDoubleSidedPipelineKey, pipeline_state.CullModeNone},
	}
	for _, v := range variants {
		ps := pipeline_state.NewPipelineState(v.key,
			pipeline_state.WithShaderSource(sceneShaderWGSL, "vs_main", "fs_main"),
			pipeline_state.WithVertexLayout(pipeline_state.VertexLayoutStandard),
			pipeline_state.WithColorTarget(target),
			pipeline_state.WithDepthTest(true, true, compare),
			pipeline_state.WithDepthFormat(pipeline_state.DepthFormat24Plus),
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

func (p *opaquePass) Execute(ctx context.Context, q queue.Queue) error {
	p.beginExecute()
	defer p.finishExecute()

	enc := ctx.Encoder()
	if enc == nil {
		return fmt.Errorf("opaque pass: no active command encoder")
	}

	batches := batchesOrSingles(q.OpaqueBatches(), q.Opaque())
	cmds, transforms := planDraws(p.name, batches, true, p.transforms.capacity)
	p.transforms.upload(p.dev, transforms)

	depthLoadOp := device.LoadOpClear
	if p.depthLoad {
		depthLoadOp = device.LoadOpLoad
	}

	rpe := enc.BeginRenderPass(&device.RenderPassDescriptor{
		Label: "opaque",
		ColorAttachments: []device.ColorAttachment{{
			View:       p.globals.SceneTarget(),
			LoadOp:     device.LoadOpClear,
			StoreOp:    device.StoreOpStore,
			ClearValue: p.clearColor,
		}},
		DepthStencilAttachment: &device.DepthStencilAttachment{
			View:            p.globals.DepthTarget(),
			DepthLoadOp:     depthLoadOp,
			DepthStoreOp:    device.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	rpe.SetBindGroup(0, p.globals.SceneGroup())
	rpe.SetBindGroup(2, p.transforms.bindGroup())

	de := drawEncoder{
		enc:          rpe,
		stats:        &p.stats,
		bindMaterial: true,
		materialSlot: 1,
		keyFor:       opaqueKeyFor,
	}
	for _, cmd := range cmds {
		de.draw(cmd)
	}

	rpe.End()
	return nil
}

// opaqueKeyFor resolves the pipeline for a material: an explicit key wins,
// otherwise the double-sided flag selects the cull variant.
func opaqueKeyFor(mat material.Material) string {
	if key := mat.PipelineKey(); key != "" {
		return key
	}
	if mat.DoubleSided() {
		return OpaqueDoubleSidedPipelineKey
	}
	return OpaquePipelineKey
}

func (p *opaquePass) Destroy() {
	if p.state == StateDestroyed {
		return
	}
	p.transforms.destroy()
	p.markDestroyed()
}
