package pass

import (
	"fmt"

	"github.com/forge3d/forge/common"
	"github.com/forge3d/forge/engine/mesh"
	"github.com/forge3d/forge/engine/renderer/bind_group_provider"
	"github.com/forge3d/forge/engine/renderer/context"
	"github.com/forge3d/forge/engine/renderer/device"
	"github.com/forge3d/forge/engine/renderer/pipeline_state"
	"github.com/forge3d/forge/engine/renderer/queue"
)

// SkyboxPipelineKey identifies the procedural sky pipeline.
const SkyboxPipelineKey = "forge/skybox"

// skyUniform is the GPU-layout record for the skybox uniform: the
// translation-free view-projection and the gradient colors.
type skyUniform struct {
	ViewProjection [16]float32
	Zenith         [4]float32
	Horizon        [4]float32
}

// skyboxPass draws the sky gradient cube after the opaque pass, at maximum
// depth with a less-equal compare and no depth write, so it only fills
// fragments the scene left open. Its view matrix has the camera translation
// stripped, which keeps the sky from parallaxing as the camera moves.
type skyboxPass struct {
	passCore
	globals *Globals
	cube    mesh.Mesh
	sky     bind_group_provider.BindGroupProvider
}

var _ Pass = &skyboxPass{}

// NewSkyboxPass creates the skybox pass.
//
// Parameters:
//   - globals: the shared pass globals
//
// Returns:
//   - Pass: the new pass, Uninitialized
func NewSkyboxPass(globals *Globals) Pass {
	return &skyboxPass{
		passCore: newPassCore("skybox"),
		globals:  globals,
		cube:     mesh.NewSkyboxCube(),
	}
}

func (p *skyboxPass) Initialize(dev device.Device) error {
	p.beginInitialize(dev)

	if err := p.cube.Upload(dev); err != nil {
		return fmt.Errorf("upload skybox cube: %w", err)
	}

	var uniform skyUniform
	p.sky = bind_group_provider.NewBindGroupProvider("skybox",
		bind_group_provider.WithLayoutEntries(
			device.BindGroupLayoutEntry{
				Binding:        0,
				Visibility:     device.StageVertex | device.StageFragment,
				Kind:           device.BindingKindUniformBuffer,
				MinBindingSize: uint64(len(common.StructToBytes(&uniform))),
			},
		),
	)
	if err := p.sky.Init(dev); err != nil {
		return fmt.Errorf("init skybox bind group: %w", err)
	}

	target := pipeline_state.ColorTargetSurface
	if p.globals.PostProcessEnabled() {
		target = pipeline_state.ColorTargetOffscreen
	}

	ps := pipeline_state.NewPipelineState(SkyboxPipelineKey,
		pipeline_state.WithShaderSource(skyboxShaderWGSL, "vs_main", "fs_main"),
		pipeline_state.WithVertexLayout(pipeline_state.VertexLayoutPosition),
		pipeline_state.WithColorTarget(target),
		pipeline_state.WithDepthTest(true, false, pipeline_state.CompareLessEqual),
		pipeline_state.WithDepthFormat(pipeline_state.DepthFormat24Plus),
		pipeline_state.WithCullMode(pipeline_state.CullModeNone),
		pipeline_state.WithSampleCount(p.globals.SampleCount()),
	)
	if err := dev.RegisterPipelineState(ps, p.globals.SceneLayout(), p.sky.LayoutEntries()); err != nil {
		return fmt.Errorf("register skybox pipeline: %w", err)
	}

	p.finishInitialize()
	return nil
}

func (p *skyboxPass) Execute(ctx context.Context, q queue.Queue) error {
	p.beginExecute()
	defer p.finishExecute()

	if !ctx.SkyboxEnabled() {
		return nil
	}

	enc := ctx.Encoder()
	if enc == nil {
		return fmt.Errorf("skybox pass: no active command encoder")
	}

	zenith, horizon := ctx.SkyColors()
	uniform := skyUniform{
		ViewProjection: ctx.SkyViewProjectionMatrix(),
		Zenith:         [4]float32{zenith[0], zenith[1], zenith[2], 1},
		Horizon:        [4]float32{horizon[0], horizon[1], horizon[2], 1},
	}
	bind_group_provider.FlushBufferWrites(p.dev, []bind_group_provider.BufferWrite{
		{Provider: p.sky, Binding: 0, Data: common.StructToBytes(&uniform)},
	})

	rpe := enc.BeginRenderPass(&device.RenderPassDescriptor{
		Label: "skybox",
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
	rpe.SetPipelineState(SkyboxPipelineKey)
	rpe.SetBindGroup(0, p.globals.SceneGroup())
	rpe.SetBindGroup(1, p.sky.BindGroup())
	rpe.SetVertexBuffer(0, p.cube.VertexBuffer())
	rpe.SetIndexBuffer(p.cube.IndexBuffer(), device.IndexFormatUint32)
	rpe.DrawIndexed(p.cube.IndexCount(), 1, 0, 0, 0)
	rpe.End()

	p.stats.StateChanges++
	p.stats.TextureBindings++
	p.stats.BufferBindings++
	p.stats.DrawCalls++
	p.stats.Vertices += int(p.cube.IndexCount())
	p.stats.Triangles += int(p.cube.IndexCount() / 3)
	return nil
}

func (p *skyboxPass) Destroy() {
	if p.state == StateDestroyed {
		return
	}
	if p.sky != nil {
		p.sky.Release()
		p.sky = nil
	}
	p.cube.Release()
	p.markDestroyed()
}
