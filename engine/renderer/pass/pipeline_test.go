package pass

import (
	"errors"
	"testing"

	"github.com/forge3d/forge/engine/camera"
	"github.com/forge3d/forge/engine/light"
	"github.com/forge3d/forge/engine/material"
	"github.com/forge3d/forge/engine/renderer/context"
	"github.com/forge3d/forge/engine/renderer/device"
	"github.com/forge3d/forge/engine/renderer/pipeline_state"
	"github.com/forge3d/forge/engine/renderer/queue"
	"github.com/forge3d/forge/engine/scene"
)

// framePipeline builds the full six-pass chain against a fake device, plus a
// context and queue carrying one opaque shadow-casting cube and one
// transparent cube so every geometry pass has work.
type frameFixture struct {
	dev      *fakeDevice
	pipeline Pipeline
	ctx      context.Context
	queue    queue.Queue
}

func newFrameFixture(t *testing.T) *frameFixture {
	t.Helper()
	dev := newFakeDevice()

	globals := NewGlobals(WithPostProcess())
	p := NewPipeline("frame",
		WithGlobals(globals),
		WithPasses(
			NewDepthPrepass(globals),
			NewShadowPass(globals),
			NewOpaquePass(globals, WithDepthLoad()),
			NewSkyboxPass(globals),
			NewTransparentPass(globals),
			NewPostProcessPass(globals),
		),
	)
	if err := p.Initialize(dev); err != nil {
		t.Fatalf("initialize pipeline: %v", err)
	}

	cam := camera.NewCamera()
	sun := light.NewLight(light.LightTypeDirectional,
		light.WithDirection(-0.5, -1, -0.3),
		light.WithCastsShadows(),
	)
	scn := scene.NewScene(scene.WithLights(sun))

	ctx := context.NewContext()
	ctx.SetViewport(800, 600)
	ctx.Update(cam, scn)

	enc, err := dev.CreateCommandEncoder("frame")
	if err != nil {
		t.Fatalf("create encoder: %v", err)
	}
	ctx.SetEncoder(enc)

	msh := testMesh(t, dev)
	opaqueMat := testMaterial(t, dev, "stone")
	glassMat := testMaterial(t, dev, "glass", material.WithTransparent())

	q := queue.NewQueue(queue.WithFrustumCulling(false))
	q.AddElement(testElement(msh, opaqueMat))
	q.AddElement(testElement(msh, glassMat))
	q.Build()

	return &frameFixture{dev: dev, pipeline: p, ctx: ctx, queue: q}
}

func TestPipelineExecutesPassesInOrder(t *testing.T) {
	f := newFrameFixture(t)
	if err := f.pipeline.Execute(f.ctx, f.queue); err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := []string{"depth_prepass", "shadow", "opaque", "skybox", "transparent", "post_tonemap"}
	if len(f.dev.passLabels) != len(want) {
		t.Fatalf("recorded pass scopes %v, want %v", f.dev.passLabels, want)
	}
	for i, label := range want {
		if f.dev.passLabels[i] != label {
			t.Fatalf("pass scope %d = %q, want %q (full order %v)",
				i, f.dev.passLabels[i], label, f.dev.passLabels)
		}
	}
}

func TestPipelineDisabledPassContributesNothing(t *testing.T) {
	f := newFrameFixture(t)
	opaque := f.pipeline.Pass("opaque")
	if opaque == nil {
		t.Fatal("pipeline has no opaque pass")
	}
	opaque.SetEnabled(false)

	if err := f.pipeline.Execute(f.ctx, f.queue); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if !opaque.Stats().IsZero() {
		t.Errorf("disabled pass recorded work: %+v", opaque.Stats())
	}
	if f.dev.passLabelIndex("opaque") != -1 {
		t.Error("disabled pass still opened a render pass scope")
	}
	shadow := f.pipeline.Pass("shadow")
	if shadow.Stats().DrawCalls == 0 {
		t.Error("enabled shadow pass recorded no draws")
	}
	if f.dev.passLabelIndex("shadow") == -1 || f.dev.passLabelIndex("transparent") == -1 {
		t.Errorf("enabled passes did not run, scopes: %v", f.dev.passLabels)
	}
}

func TestPipelineDrawsThroughTransformTable(t *testing.T) {
	f := newFrameFixture(t)
	if err := f.pipeline.Execute(f.ctx, f.queue); err != nil {
		t.Fatalf("execute: %v", err)
	}

	opaqueDraws := f.dev.drawsIn("opaque")
	if len(opaqueDraws) != 1 {
		t.Fatalf("opaque pass recorded %d draws, want 1", len(opaqueDraws))
	}
	if opaqueDraws[0].pipeline != OpaquePipelineKey {
		t.Errorf("opaque draw used pipeline %q, want %q", opaqueDraws[0].pipeline, OpaquePipelineKey)
	}
	if opaqueDraws[0].instanceCount != 1 {
		t.Errorf("single element drew %d instances, want 1", opaqueDraws[0].instanceCount)
	}

	transparentDraws := f.dev.drawsIn("transparent")
	if len(transparentDraws) != 1 {
		t.Fatalf("transparent pass recorded %d draws, want 1", len(transparentDraws))
	}
	if transparentDraws[0].pipeline != TransparentPipelineKey {
		t.Errorf("transparent draw used pipeline %q, want %q",
			transparentDraws[0].pipeline, TransparentPipelineKey)
	}
}

func TestPipelineStatsAggregateEnabledPasses(t *testing.T) {
	f := newFrameFixture(t)
	if err := f.pipeline.Execute(f.ctx, f.queue); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var want Stats
	for _, p := range f.pipeline.Passes() {
		want.Add(p.Stats())
	}
	if got := f.pipeline.Stats(); got != want {
		t.Errorf("pipeline stats = %+v, want sum of pass stats %+v", got, want)
	}
	if f.pipeline.Stats().IsZero() {
		t.Error("a frame with drawables recorded zero work")
	}
}

func TestPipelineExecutePropagatesPassErrors(t *testing.T) {
	f := newFrameFixture(t)
	f.ctx.SetEncoder(nil)
	if err := f.pipeline.Execute(f.ctx, f.queue); err == nil {
		t.Fatal("executing without a command encoder must fail")
	}
}

func TestPipelineExecutePanicsWithoutInitialize(t *testing.T) {
	p := NewPipeline("frame", WithPasses(NewOpaquePass(NewGlobals())))
	defer func() {
		if recover() == nil {
			t.Fatal("executing an uninitialized pipeline must panic")
		}
	}()
	_ = p.Execute(context.NewContext(), queue.NewQueue())
}

func TestPipelineExecutePanicsAfterDestroy(t *testing.T) {
	f := newFrameFixture(t)
	f.pipeline.Destroy()
	defer func() {
		if recover() == nil {
			t.Fatal("executing a destroyed pipeline must panic")
		}
	}()
	_ = f.pipeline.Execute(f.ctx, f.queue)
}

func TestPipelineInitializeIsIdempotent(t *testing.T) {
	f := newFrameFixture(t)
	if err := f.pipeline.Initialize(f.dev); err != nil {
		t.Fatalf("second initialize must be a no-op, got %v", err)
	}
}

type failingDevice struct {
	*fakeDevice
	failKey string
}

func (d *failingDevice) RegisterPipelineState(ps pipeline_state.PipelineState, groupLayouts ...[]device.BindGroupLayoutEntry) error {
	if ps.Key() == d.failKey {
		return errors.New("shader compilation failed")
	}
	return d.fakeDevice.RegisterPipelineState(ps, groupLayouts...)
}

func TestPipelineInitializeFailsFast(t *testing.T) {
	dev := &failingDevice{fakeDevice: newFakeDevice(), failKey: OpaquePipelineKey}
	globals := NewGlobals()
	shadow := NewShadowPass(globals)
	opaque := NewOpaquePass(globals)
	transparent := NewTransparentPass(globals)
	p := NewPipeline("frame", WithGlobals(globals),
		WithPasses(shadow, opaque, transparent))

	if err := p.Initialize(dev); err == nil {
		t.Fatal("initialize must surface pass registration failures")
	}
	if shadow.State() != StateReady {
		t.Errorf("pass before the failure should be ready, got %s", shadow.State())
	}
	if transparent.State() != StateUninitialized {
		t.Errorf("pass after the failure must stay uninitialized, got %s", transparent.State())
	}
}

func TestPipelinePassLookup(t *testing.T) {
	globals := NewGlobals()
	p := NewPipeline("frame", WithGlobals(globals),
		WithPasses(NewShadowPass(globals), NewOpaquePass(globals)))

	if got := p.Pass("shadow"); got == nil || got.Name() != "shadow" {
		t.Error("Pass did not find the shadow pass by name")
	}
	if p.Pass("bloom") != nil {
		t.Error("Pass for an unknown name must return nil")
	}
}
