package common

import "math"

// BoundingSphere is a world- or local-space bounding volume described by a
// center point and radius. Spheres are used for frustum and distance culling
// because they transform cheaply under rigid transforms.
type BoundingSphere struct {
	Center [3]float32
	Radius float32
}

// TransformBoundingSphere transforms a local-space bounding sphere by a 4x4
// column-major model matrix. The center is transformed as a point; the radius
// is scaled by the largest axis scale factor so the result always contains the
// transformed geometry.
//
// Parameters:
//   - m: the model matrix (16 elements, column-major)
//   - s: the local-space bounding sphere
//
// Returns:
//   - BoundingSphere: the world-space bounding sphere
func TransformBoundingSphere(m []float32, s BoundingSphere) BoundingSphere {
	center := TransformPoint(m, s.Center[0], s.Center[1], s.Center[2])

	// Largest column length is the maximum scale applied by the matrix.
	sx := m[0]*m[0] + m[1]*m[1] + m[2]*m[2]
	sy := m[4]*m[4] + m[5]*m[5] + m[6]*m[6]
	sz := m[8]*m[8] + m[9]*m[9] + m[10]*m[10]
	maxSq := sx
	if sy > maxSq {
		maxSq = sy
	}
	if sz > maxSq {
		maxSq = sz
	}

	return BoundingSphere{
		Center: center,
		Radius: s.Radius * float32(math.Sqrt(float64(maxSq))),
	}
}
