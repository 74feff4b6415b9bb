package batcher

import (
	"testing"

	"github.com/forge3d/forge/common"
	"github.com/forge3d/forge/engine/material"
	"github.com/forge3d/forge/engine/mesh"
	"github.com/forge3d/forge/engine/renderer/queue"
)

func element(distance float32, mat material.Material, msh mesh.Mesh) *queue.Element {
	el := &queue.Element{
		Mesh:     msh,
		Material: mat,
		Bounds: common.BoundingSphere{
			Center: [3]float32{0, 0, -distance},
			Radius: 0.5,
		},
		DistanceToCamera: distance,
	}
	common.Identity(el.Transform[:])
	return el
}

func TestManagerDefaultMatchesAdjacentMerge(t *testing.T) {
	mat := material.NewMaterial()
	msh := mesh.NewCube(1)

	elements := []*queue.Element{
		element(1, mat, msh),
		element(2, mat, msh),
		element(3, mat, msh),
	}

	m := NewManager()
	batches := m.BuildBatches(elements, 10, false, 0)
	if len(batches) != 1 {
		t.Fatalf("built %d batches, want 1", len(batches))
	}
	if batches[0].Count() != 3 {
		t.Fatalf("batch has %d members, want 3", batches[0].Count())
	}
}

func TestManagerComparatorReorders(t *testing.T) {
	matA := material.NewMaterial()
	matB := material.NewMaterial()
	msh := mesh.NewCube(1)

	// Interleaved materials: without a re-sort this input produces four
	// batches; grouping by material first collapses it to two.
	elements := []*queue.Element{
		element(1, matA, msh),
		element(2, matB, msh),
		element(3, matA, msh),
		element(4, matB, msh),
	}

	m := NewManager(WithComparator(func(a, b *queue.Element) bool {
		if a.MaterialID() != b.MaterialID() {
			return a.MaterialID() < b.MaterialID()
		}
		return a.DistanceToCamera < b.DistanceToCamera
	}))

	batches := m.BuildBatches(elements, 10, false, 0)
	if len(batches) != 2 {
		t.Fatalf("built %d batches, want 2", len(batches))
	}
	for _, b := range batches {
		if b.Count() != 2 {
			t.Fatalf("batch has %d members, want 2", b.Count())
		}
	}
}

func TestManagerDoesNotMutateInput(t *testing.T) {
	matA := material.NewMaterial()
	matB := material.NewMaterial()
	msh := mesh.NewCube(1)

	elements := []*queue.Element{
		element(3, matB, msh),
		element(1, matA, msh),
		element(2, matB, msh),
	}
	original := make([]*queue.Element, len(elements))
	copy(original, elements)

	m := NewManager(WithComparator(func(a, b *queue.Element) bool {
		return a.DistanceToCamera < b.DistanceToCamera
	}))
	m.BuildBatches(elements, 10, false, 0)

	for i := range elements {
		if elements[i] != original[i] {
			t.Fatal("manager reordered the caller's slice")
		}
	}
}

func TestManagerCanBatchEvaluatedOncePerPair(t *testing.T) {
	mat := material.NewMaterial()
	msh := mesh.NewCube(1)

	elements := []*queue.Element{
		element(1, mat, msh),
		element(2, mat, msh),
		element(3, mat, msh),
		element(4, mat, msh),
	}

	calls := 0
	m := NewManager(WithCanBatch(func(a, b *queue.Element) bool {
		calls++
		return true
	}))
	m.BuildBatches(elements, 10, false, 0)

	if calls != len(elements)-1 {
		t.Fatalf("canBatch called %d times, want %d (once per adjacent pair)", calls, len(elements)-1)
	}
}

func TestManagerRespectsMaxBatchSize(t *testing.T) {
	mat := material.NewMaterial()
	msh := mesh.NewCube(1)

	elements := make([]*queue.Element, 7)
	for i := range elements {
		elements[i] = element(float32(i), mat, msh)
	}

	m := NewManager()
	batches := m.BuildBatches(elements, 3, false, 0)
	if len(batches) != 3 {
		t.Fatalf("built %d batches, want 3", len(batches))
	}
	total := 0
	for _, b := range batches {
		if b.Count() > 3 {
			t.Fatalf("batch has %d members, limit is 3", b.Count())
		}
		total += b.Count()
	}
	if total != 7 {
		t.Fatalf("batches cover %d elements, want 7", total)
	}
}

func TestManagerInstancing(t *testing.T) {
	mat := material.NewMaterial()
	msh := mesh.NewCube(1)

	elements := make([]*queue.Element, 4)
	for i := range elements {
		elements[i] = element(float32(i), mat, msh)
		elements[i].Transform[12] = float32(i)
	}

	m := NewManager()
	batches := m.BuildBatches(elements, 10, true, 8)
	if len(batches) != 1 {
		t.Fatalf("built %d batches, want 1", len(batches))
	}
	b := batches[0]
	if !b.Instanced {
		t.Fatal("qualifying batch not marked instanced")
	}
	if len(b.Transforms) != 4 {
		t.Fatalf("captured %d transforms, want 4", len(b.Transforms))
	}
}

func TestQuicksortLargeInput(t *testing.T) {
	mat := material.NewMaterial()
	msh := mesh.NewCube(1)

	// Enough elements to exercise the recursive partition path, in a
	// deliberately adversarial (descending) order.
	n := 200
	elements := make([]*queue.Element, n)
	for i := range elements {
		elements[i] = element(float32(n-i), mat, msh)
	}

	m := NewManager(WithComparator(func(a, b *queue.Element) bool {
		return a.DistanceToCamera < b.DistanceToCamera
	}))
	batches := m.BuildBatches(elements, n, false, 0)

	var prev float32 = -1
	for _, b := range batches {
		for _, el := range b.Elements {
			if el.DistanceToCamera < prev {
				t.Fatal("elements not in ascending distance order after sort")
			}
			prev = el.DistanceToCamera
		}
	}
}
