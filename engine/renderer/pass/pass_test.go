package pass

import (
	"testing"

	"github.com/forge3d/forge/common"
	"github.com/forge3d/forge/engine/material"
	"github.com/forge3d/forge/engine/mesh"
	"github.com/forge3d/forge/engine/renderer/bind_group_provider"
	"github.com/forge3d/forge/engine/renderer/device"
	"github.com/forge3d/forge/engine/renderer/queue"
)

func testMesh(t *testing.T, dev *fakeDevice) mesh.Mesh {
	t.Helper()
	m := mesh.NewCube(1)
	if err := m.Upload(dev); err != nil {
		t.Fatalf("upload mesh: %v", err)
	}
	return m
}

func testMaterial(t *testing.T, dev *fakeDevice, name string, options ...material.MaterialBuilderOption) material.Material {
	t.Helper()
	mat := material.NewMaterial(append([]material.MaterialBuilderOption{material.WithName(name)}, options...)...)
	provider := bind_group_provider.NewBindGroupProvider(name,
		bind_group_provider.WithLayoutEntries(materialGroupLayout()...))
	if err := provider.Init(dev); err != nil {
		t.Fatalf("init material provider: %v", err)
	}
	mat.SetBindGroupProvider(provider)
	return mat
}

func testElement(msh mesh.Mesh, mat material.Material) *queue.Element {
	el := &queue.Element{
		Mesh:       msh,
		Material:   mat,
		Bounds:     common.BoundingSphere{Radius: 1},
		CastShadow: true,
	}
	if mat != nil {
		el.Transparent = mat.Transparent()
	}
	common.Identity(el.Transform[:])
	return el
}

func TestPlanDrawsFlattensBatches(t *testing.T) {
	dev := newFakeDevice()
	msh := testMesh(t, dev)
	mat := testMaterial(t, dev, "flat")

	instanced := &queue.Batch{
		Material:  mat,
		Mesh:      msh,
		Instanced: true,
		Elements:  []*queue.Element{testElement(msh, mat), testElement(msh, mat), testElement(msh, mat)},
	}
	for range instanced.Elements {
		var tf [16]float32
		common.Identity(tf[:])
		instanced.Transforms = append(instanced.Transforms, tf)
	}
	plain := &queue.Batch{
		Material: mat,
		Mesh:     msh,
		Elements: []*queue.Element{testElement(msh, mat), testElement(msh, mat)},
	}

	cmds, transforms := planDraws("test", []*queue.Batch{instanced, plain}, true, 16)
	if len(cmds) != 3 {
		t.Fatalf("expected 3 draw commands, got %d", len(cmds))
	}
	if len(transforms) != 5 {
		t.Fatalf("expected 5 transforms, got %d", len(transforms))
	}
	if cmds[0].first != 0 || cmds[0].count != 3 {
		t.Errorf("instanced command: got first=%d count=%d, want 0/3", cmds[0].first, cmds[0].count)
	}
	if cmds[1].first != 3 || cmds[1].count != 1 {
		t.Errorf("first plain command: got first=%d count=%d, want 3/1", cmds[1].first, cmds[1].count)
	}
	if cmds[2].first != 4 || cmds[2].count != 1 {
		t.Errorf("second plain command: got first=%d count=%d, want 4/1", cmds[2].first, cmds[2].count)
	}
}

func TestPlanDrawsSkipsUnusableBatches(t *testing.T) {
	dev := newFakeDevice()
	msh := testMesh(t, dev)
	mat := testMaterial(t, dev, "good")

	noMesh := &queue.Batch{Material: mat, Elements: []*queue.Element{testElement(nil, mat)}}

	unuploaded := mesh.NewCube(1)
	coldGeometry := &queue.Batch{Material: mat, Mesh: unuploaded,
		Elements: []*queue.Element{testElement(unuploaded, mat)}}

	noMaterial := &queue.Batch{Mesh: msh, Elements: []*queue.Element{testElement(msh, nil)}}

	unbound := material.NewMaterial(material.WithName("unbound"))
	unboundMat := &queue.Batch{Material: unbound, Mesh: msh,
		Elements: []*queue.Element{testElement(msh, unbound)}}

	good := &queue.Batch{Material: mat, Mesh: msh,
		Elements: []*queue.Element{testElement(msh, mat)}}

	cmds, transforms := planDraws("test",
		[]*queue.Batch{noMesh, coldGeometry, noMaterial, unboundMat, good}, true, 16)
	if len(cmds) != 1 {
		t.Fatalf("expected only the usable batch to plan, got %d commands", len(cmds))
	}
	if cmds[0].batch != good {
		t.Error("planned command does not reference the usable batch")
	}
	if len(transforms) != 1 {
		t.Errorf("expected 1 transform, got %d", len(transforms))
	}
}

func TestPlanDrawsWithoutMaterialRequirement(t *testing.T) {
	dev := newFakeDevice()
	msh := testMesh(t, dev)

	// Depth-only passes plan material-less batches.
	b := &queue.Batch{Mesh: msh, Elements: []*queue.Element{testElement(msh, nil)}}
	cmds, _ := planDraws("test", []*queue.Batch{b}, false, 16)
	if len(cmds) != 1 {
		t.Fatalf("expected 1 draw command, got %d", len(cmds))
	}
}

func TestPlanDrawsTruncatesAtCapacity(t *testing.T) {
	dev := newFakeDevice()
	msh := testMesh(t, dev)
	mat := testMaterial(t, dev, "capped")

	var batches []*queue.Batch
	for i := 0; i < 3; i++ {
		batches = append(batches, &queue.Batch{Material: mat, Mesh: msh,
			Elements: []*queue.Element{testElement(msh, mat)}})
	}

	cmds, transforms := planDraws("test", batches, true, 2)
	if len(cmds) != 2 {
		t.Fatalf("expected 2 draw commands at capacity 2, got %d", len(cmds))
	}
	if len(transforms) != 2 {
		t.Fatalf("expected 2 transforms at capacity 2, got %d", len(transforms))
	}
}

func TestBatchesOrSingles(t *testing.T) {
	dev := newFakeDevice()
	msh := testMesh(t, dev)
	mat := testMaterial(t, dev, "single")
	elements := []*queue.Element{testElement(msh, mat), testElement(msh, mat)}

	built := []*queue.Batch{{Material: mat, Mesh: msh, Elements: elements}}
	if got := batchesOrSingles(built, elements); len(got) != 1 {
		t.Errorf("built batches must pass through unchanged, got %d", len(got))
	}

	singles := batchesOrSingles(nil, elements)
	if len(singles) != 2 {
		t.Fatalf("expected one singleton batch per element, got %d", len(singles))
	}
	for i, b := range singles {
		if len(b.Elements) != 1 || b.Elements[0] != elements[i] {
			t.Errorf("singleton batch %d does not wrap element %d", i, i)
		}
	}
}

func TestDrawEncoderBindsOnTransition(t *testing.T) {
	dev := newFakeDevice()
	dev.registered[OpaquePipelineKey] = true
	msh := testMesh(t, dev)
	matA := testMaterial(t, dev, "a")
	matB := testMaterial(t, dev, "b")

	enc, err := dev.CreateCommandEncoder("test")
	if err != nil {
		t.Fatalf("create encoder: %v", err)
	}
	rpe := enc.BeginRenderPass(&device.RenderPassDescriptor{Label: "transitions"})

	var stats Stats
	de := drawEncoder{
		enc:          rpe,
		stats:        &stats,
		bindMaterial: true,
		materialSlot: 1,
		keyFor:       opaqueKeyFor,
	}

	batchA := &queue.Batch{Material: matA, Mesh: msh}
	batchA2 := &queue.Batch{Material: matA, Mesh: msh}
	batchB := &queue.Batch{Material: matB, Mesh: msh}

	de.draw(drawCmd{batch: batchA, first: 0, count: 1})
	de.draw(drawCmd{batch: batchA2, first: 1, count: 1})
	de.draw(drawCmd{batch: batchB, first: 2, count: 1})

	if stats.DrawCalls != 3 {
		t.Errorf("DrawCalls = %d, want 3", stats.DrawCalls)
	}
	// One pipeline key serves all three draws.
	if stats.StateChanges != 1 {
		t.Errorf("StateChanges = %d, want 1", stats.StateChanges)
	}
	// Material group rebinds once for the switch to matB.
	if stats.TextureBindings != 2 {
		t.Errorf("TextureBindings = %d, want 2", stats.TextureBindings)
	}
	// Geometry never changes after the first bind.
	if stats.BufferBindings != 1 {
		t.Errorf("BufferBindings = %d, want 1", stats.BufferBindings)
	}

	indexCount := int(msh.IndexCount())
	if stats.Vertices != indexCount*3 {
		t.Errorf("Vertices = %d, want %d", stats.Vertices, indexCount*3)
	}
	if stats.Triangles != indexCount {
		t.Errorf("Triangles = %d, want %d", stats.Triangles, indexCount)
	}
}

func TestDrawEncoderInstancedCounts(t *testing.T) {
	dev := newFakeDevice()
	dev.registered[OpaquePipelineKey] = true
	msh := testMesh(t, dev)
	mat := testMaterial(t, dev, "inst")

	enc, _ := dev.CreateCommandEncoder("test")
	rpe := enc.BeginRenderPass(&device.RenderPassDescriptor{Label: "instanced"})

	var stats Stats
	de := drawEncoder{enc: rpe, stats: &stats, bindMaterial: true, materialSlot: 1, keyFor: opaqueKeyFor}
	de.draw(drawCmd{batch: &queue.Batch{Material: mat, Mesh: msh, Instanced: true}, first: 4, count: 8})

	if stats.DrawCalls != 1 {
		t.Fatalf("DrawCalls = %d, want 1", stats.DrawCalls)
	}
	draws := dev.drawsIn("instanced")
	if len(draws) != 1 {
		t.Fatalf("recorded %d draws, want 1", len(draws))
	}
	if draws[0].instanceCount != 8 || draws[0].firstInstance != 4 {
		t.Errorf("draw addressed instances %d..+%d, want 4..+8",
			draws[0].firstInstance, draws[0].instanceCount)
	}
	indexCount := int(msh.IndexCount())
	if stats.Vertices != indexCount*8 {
		t.Errorf("Vertices = %d, want %d", stats.Vertices, indexCount*8)
	}
}

func TestPassExecutePanicsBeforeInitialize(t *testing.T) {
	p := NewOpaquePass(NewGlobals())
	defer func() {
		if recover() == nil {
			t.Fatal("executing an uninitialized pass must panic")
		}
	}()
	_ = p.Execute(nil, nil)
}

func TestPassExecutePanicsAfterDestroy(t *testing.T) {
	dev := newFakeDevice()
	globals := NewGlobals()
	if err := globals.Initialize(dev); err != nil {
		t.Fatalf("initialize globals: %v", err)
	}
	p := NewOpaquePass(globals)
	if err := p.Initialize(dev); err != nil {
		t.Fatalf("initialize pass: %v", err)
	}
	if p.State() != StateReady {
		t.Fatalf("pass state = %s after initialize, want ready", p.State())
	}
	p.Destroy()
	if p.State() != StateDestroyed {
		t.Fatalf("pass state = %s after destroy, want destroyed", p.State())
	}

	defer func() {
		if recover() == nil {
			t.Fatal("executing a destroyed pass must panic")
		}
	}()
	_ = p.Execute(nil, nil)
}

func TestPassEnabledToggle(t *testing.T) {
	p := NewOpaquePass(NewGlobals())
	if !p.Enabled() {
		t.Error("passes start enabled")
	}
	p.SetEnabled(false)
	if p.Enabled() {
		t.Error("SetEnabled(false) did not take effect")
	}
	if p.State() != StateUninitialized {
		t.Errorf("disabling must not touch lifecycle state, got %s", p.State())
	}
}

func TestStatsAddAndIsZero(t *testing.T) {
	var s Stats
	if !s.IsZero() {
		t.Error("zero value must report IsZero")
	}
	s.Add(Stats{DrawCalls: 2, Triangles: 12, Vertices: 36, StateChanges: 1})
	s.Add(Stats{DrawCalls: 1, TextureBindings: 3, BufferBindings: 2})
	want := Stats{DrawCalls: 3, Triangles: 12, Vertices: 36, StateChanges: 1, TextureBindings: 3, BufferBindings: 2}
	if s != want {
		t.Errorf("accumulated stats = %+v, want %+v", s, want)
	}
	if s.IsZero() {
		t.Error("non-empty stats must not report IsZero")
	}
}
