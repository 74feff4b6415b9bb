package queue

import (
	"github.com/forge3d/forge/engine/material"
	"github.com/forge3d/forge/engine/mesh"
)

// Batch is a derived grouping of consecutive, compatible render elements
// sharing one material and one geometry. An instanced batch additionally
// carries the captured per-instance world transforms; a non-instanced batch
// is consumed as a sequence of individual draws. Batches are built once per
// frame and owned by the queue that built them.
type Batch struct {
	// Material is the shared material identity of every member.
	Material material.Material

	// Mesh is the shared geometry identity of every member.
	Mesh mesh.Mesh

	// Elements are the member elements in sorted order.
	Elements []*Element

	// Instanced marks the batch for a single multi-instance draw using
	// Transforms instead of one draw per element.
	Instanced bool

	// Transforms holds the captured per-instance world transforms, in member
	// order. Populated only when Instanced is true.
	Transforms [][16]float32
}

// Count returns the number of member elements.
//
// Returns:
//   - int: the member count
func (b *Batch) Count() int {
	return len(b.Elements)
}

// BatchStrategy is a pluggable merge strategy: given one bucket's elements in
// their final sorted order, produce the frame's batches. Implementations must
// preserve element order within and across batches and must not mutate the
// source elements.
type BatchStrategy interface {
	// BuildBatches groups elements into batches.
	//
	// Parameters:
	//   - elements: the sorted bucket contents
	//   - maxBatchSize: the maximum member count per batch
	//   - instancing: whether batches may be marked instanced
	//   - maxInstances: the maximum member count for an instanced batch
	//
	// Returns:
	//   - []*Batch: the built batches, covering all elements in order
	BuildBatches(elements []*Element, maxBatchSize int, instancing bool, maxInstances int) []*Batch
}

// buildAdjacentBatches is the queue's default merge: one linear pass over the
// sorted sequence, closing the running batch on material/geometry mismatch or
// size limit. Two compatible elements separated by an incompatible one are
// never merged — batching is order-sensitive, trading maximal merging for
// linear-time determinism.
func buildAdjacentBatches(elements []*Element, maxBatchSize int, instancing bool, maxInstances int) []*Batch {
	if len(elements) == 0 {
		return nil
	}
	if maxBatchSize < 1 {
		maxBatchSize = 1
	}

	batches := make([]*Batch, 0, len(elements))
	current := &Batch{
		Material: elements[0].Material,
		Mesh:     elements[0].Mesh,
		Elements: []*Element{elements[0]},
	}

	for _, el := range elements[1:] {
		compatible := el.MaterialID() == current.Elements[0].MaterialID() &&
			el.GeometryID() == current.Elements[0].GeometryID()
		if compatible && len(current.Elements) < maxBatchSize {
			current.Elements = append(current.Elements, el)
			continue
		}

		finalizeBatch(current, instancing, maxInstances)
		batches = append(batches, current)
		current = &Batch{
			Material: el.Material,
			Mesh:     el.Mesh,
			Elements: []*Element{el},
		}
	}

	finalizeBatch(current, instancing, maxInstances)
	return append(batches, current)
}

// finalizeBatch marks a closed batch instanced and captures its transforms
// when the run qualifies.
func finalizeBatch(b *Batch, instancing bool, maxInstances int) {
	if !instancing || len(b.Elements) < 2 || len(b.Elements) > maxInstances {
		return
	}
	b.Instanced = true
	b.Transforms = make([][16]float32, len(b.Elements))
	for i, el := range b.Elements {
		b.Transforms[i] = el.Transform
	}
}
