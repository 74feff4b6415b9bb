package common

import (
	"math"
)

// Plane is ax + by + cz + d = 0 with (a, b, c) the unit normal and d the
// signed distance from the origin.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// Frustum is the six bounding planes of a view volume, oriented so the
// positive half-space of every plane is inside. Used by the render queue
// for sphere culling.
type Frustum struct {
	Planes [6]Plane
}

// Plane indices within Frustum.Planes.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// FrustumFromMatrix extracts the six frustum planes from a combined
// view-projection matrix (column-major, flat [16]) using the
// Gribb/Hartmann row combinations. The side and far planes are the
// matrix's fourth row plus or minus another row; the near plane is the
// third row alone because projections here map depth to [0, 1] clip
// space rather than GL's [-1, 1]. Planes are returned normalized.
//
// Parameters:
//   - viewProj: the view-projection matrix, column-major
//
// Returns:
//   - Frustum: the extracted frustum
func FrustumFromMatrix(viewProj []float32) Frustum {
	// row(i) of a column-major flat matrix is viewProj[i], viewProj[4+i],
	// viewProj[8+i], viewProj[12+i].
	row := func(i int) [4]float32 {
		return [4]float32{viewProj[i], viewProj[4+i], viewProj[8+i], viewProj[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	combine := func(sign float32, r [4]float32) Plane {
		p := Plane{
			Normal:   [3]float32{r3[0] + sign*r[0], r3[1] + sign*r[1], r3[2] + sign*r[2]},
			Distance: r3[3] + sign*r[3],
		}
		return p.normalized()
	}

	var f Frustum
	f.Planes[FrustumLeft] = combine(+1, r0)
	f.Planes[FrustumRight] = combine(-1, r0)
	f.Planes[FrustumBottom] = combine(+1, r1)
	f.Planes[FrustumTop] = combine(-1, r1)
	f.Planes[FrustumNear] = Plane{
		Normal:   [3]float32{r2[0], r2[1], r2[2]},
		Distance: r2[3],
	}.normalized()
	f.Planes[FrustumFar] = combine(-1, r2)
	return f
}

// normalized returns the plane scaled so its normal has unit length.
// Degenerate planes (zero normal) are returned unchanged.
func (p Plane) normalized() Plane {
	length := float32(math.Sqrt(float64(
		p.Normal[0]*p.Normal[0] + p.Normal[1]*p.Normal[1] + p.Normal[2]*p.Normal[2])))
	if length == 0 {
		return p
	}
	inv := 1 / length
	return Plane{
		Normal:   [3]float32{p.Normal[0] * inv, p.Normal[1] * inv, p.Normal[2] * inv},
		Distance: p.Distance * inv,
	}
}

// IntersectsSphere reports whether a bounding sphere intersects or is
// contained in the frustum. A sphere whose center lies further than its
// radius behind any plane is fully outside and is rejected.
//
// Parameters:
//   - s: the bounding sphere to test (world space)
//
// Returns:
//   - bool: true if the sphere is at least partially inside the frustum
func (f *Frustum) IntersectsSphere(s BoundingSphere) bool {
	for i := range f.Planes {
		p := &f.Planes[i]
		dist := p.Normal[0]*s.Center[0] +
			p.Normal[1]*s.Center[1] +
			p.Normal[2]*s.Center[2] +
			p.Distance
		if dist < -s.Radius {
			return false
		}
	}
	return true
}
