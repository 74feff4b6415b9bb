package scene

import (
	"github.com/forge3d/forge/engine/material"
	"github.com/forge3d/forge/engine/mesh"
)

// ObjectOption is a functional option used to configure an Object during construction.
type ObjectOption func(*object)

// WithMesh sets the geometry for this object. Required.
//
// Parameters:
//   - m: the mesh
//
// Returns:
//   - ObjectOption: a function that sets the mesh for this object
func WithMesh(m mesh.Mesh) ObjectOption {
	return func(o *object) {
		o.msh = m
	}
}

// WithMaterial sets the material for this object. Required.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - ObjectOption: a function that sets the material for this object
func WithMaterial(m material.Material) ObjectOption {
	return func(o *object) {
		o.mat = m
	}
}

// WithPosition sets the initial position for this object.
//
// Parameters:
//   - x, y, z: the position
//
// Returns:
//   - ObjectOption: a function that sets the position for this object
func WithPosition(x, y, z float32) ObjectOption {
	return func(o *object) {
		o.position = [3]float32{x, y, z}
	}
}

// WithRotation sets the initial Euler rotation in radians for this object.
//
// Parameters:
//   - rx, ry, rz: the rotation
//
// Returns:
//   - ObjectOption: a function that sets the rotation for this object
func WithRotation(rx, ry, rz float32) ObjectOption {
	return func(o *object) {
		o.rotation = [3]float32{rx, ry, rz}
	}
}

// WithScale sets the initial scale for this object.
//
// Parameters:
//   - sx, sy, sz: the scale
//
// Returns:
//   - ObjectOption: a function that sets the scale for this object
func WithScale(sx, sy, sz float32) ObjectOption {
	return func(o *object) {
		o.scale = [3]float32{sx, sy, sz}
	}
}

// WithLayer sets the render layer for this object.
//
// Parameters:
//   - layer: the render layer
//
// Returns:
//   - ObjectOption: a function that sets the layer for this object
func WithLayer(layer int) ObjectOption {
	return func(o *object) {
		o.layer = layer
	}
}

// WithPriority sets the ordering override within a layer for this object.
//
// Parameters:
//   - priority: the priority
//
// Returns:
//   - ObjectOption: a function that sets the priority for this object
func WithPriority(priority int) ObjectOption {
	return func(o *object) {
		o.priority = priority
	}
}

// WithShadows sets the shadow participation flags for this object.
//
// Parameters:
//   - cast: whether the object is drawn into shadow maps
//   - receive: whether shadow maps are sampled when shading the object
//
// Returns:
//   - ObjectOption: a function that sets the shadow flags for this object
func WithShadows(cast, receive bool) ObjectOption {
	return func(o *object) {
		o.castShadow = cast
		o.receiveShadow = receive
	}
}
