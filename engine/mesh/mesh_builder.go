package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/forge3d/forge/common"
	"github.com/forge3d/forge/engine/renderer/pipeline_state"
)

// MeshOption is a functional option used to configure a Mesh during construction.
type MeshOption func(*meshImpl)

// WithVertices sets the standard-layout vertex data for this mesh.
//
// Parameters:
//   - vertices: the vertex data
//
// Returns:
//   - MeshOption: a function that sets the vertex data for this mesh
func WithVertices(vertices []Vertex) MeshOption {
	return func(m *meshImpl) {
		m.vertices = vertices
		m.layout = pipeline_state.VertexLayoutStandard
	}
}

// WithPositions sets position-only vertex data for this mesh, used by
// pipelines with the position vertex layout (skybox geometry).
//
// Parameters:
//   - positions: the vertex positions
//
// Returns:
//   - MeshOption: a function that sets the position data for this mesh
func WithPositions(positions []mgl32.Vec3) MeshOption {
	return func(m *meshImpl) {
		m.positions = positions
		m.layout = pipeline_state.VertexLayoutPosition
	}
}

// WithIndices sets the index data for this mesh.
//
// Parameters:
//   - indices: the index data
//
// Returns:
//   - MeshOption: a function that sets the index data for this mesh
func WithIndices(indices []uint32) MeshOption {
	return func(m *meshImpl) {
		m.indices = indices
	}
}

// WithBounds overrides the computed bounding sphere. Useful when geometry is
// known to be animated or displaced beyond its rest pose.
//
// Parameters:
//   - bounds: the bounding sphere in model space
//
// Returns:
//   - MeshOption: a function that sets the bounding sphere for this mesh
func WithBounds(bounds common.BoundingSphere) MeshOption {
	return func(m *meshImpl) {
		m.bounds = bounds
	}
}
