// Package queue turns an unordered set of candidate drawables into culled,
// ordered, batched sequences ready for pass consumption. It owns the frame's
// render elements and batches; passes read the built sequences but never
// retain them past the frame.
package queue

import (
	"github.com/forge3d/forge/common"
	"github.com/forge3d/forge/engine/material"
	"github.com/forge3d/forge/engine/mesh"
)

// Element is an immutable-per-frame snapshot of one drawable: geometry,
// material, world transform, bounds, and render flags. Elements are created
// fresh each frame during scene collection and discarded when the frame's
// pipeline finishes; nothing retains them across frames.
//
// DistanceToCamera is the one mutable field — the queue computes it during
// AddElement for accepted elements.
type Element struct {
	// Mesh is the geometry reference.
	Mesh mesh.Mesh

	// Material is the material reference.
	Material material.Material

	// Transform is the world transform, column-major.
	Transform [16]float32

	// Bounds is the world-space bounding sphere.
	Bounds common.BoundingSphere

	// DistanceToCamera is the Euclidean distance from the camera position to
	// the bounds center. Computed by the queue; zero until accepted.
	DistanceToCamera float32

	// Layer is the render layer; lower layers draw first within a pass.
	Layer int

	// Priority is the explicit ordering override within a layer.
	Priority int

	// Transparent is derived from the material's blend state at creation time
	// and stable for the element's lifetime. Classification keys on this
	// field exactly.
	Transparent bool

	// CastShadow admits the element into the shadow-caster bucket.
	CastShadow bool

	// ReceiveShadow marks the element for shadow-map sampling when shaded.
	ReceiveShadow bool
}

// MaterialID returns the material identity used for sorting and batch
// compatibility, or 0 when no material is set.
//
// Returns:
//   - uint64: the material ID
func (e *Element) MaterialID() uint64 {
	if e.Material == nil {
		return 0
	}
	return e.Material.ID()
}

// GeometryID returns the geometry identity used for sorting and batch
// compatibility, or 0 when no mesh is set.
//
// Returns:
//   - uint64: the geometry ID
func (e *Element) GeometryID() uint64 {
	if e.Mesh == nil {
		return 0
	}
	return e.Mesh.GeometryID()
}
