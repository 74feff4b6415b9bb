package common

import (
	"math"
	"testing"
)

// testFrustum extracts a frustum from a perspective projection alone, so
// the camera sits at the origin looking down -Z.
func testFrustum(near, far float32) Frustum {
	var proj [16]float32
	Perspective(proj[:], float32(math.Pi/2), 1, near, far)
	return FrustumFromMatrix(proj[:])
}

func TestFrustumCullsBehindNearPlane(t *testing.T) {
	f := testFrustum(1, 100)

	// A small sphere between the camera and the near plane sits in front of
	// the eye but short of z = -near, so it must be rejected. The [0, 1]
	// clip-depth convention puts the near plane at the matrix's third row;
	// the GL-style row3+row2 combination would wrongly accept this point.
	between := BoundingSphere{Center: [3]float32{0, 0, -0.7}, Radius: 0.01}
	if f.IntersectsSphere(between) {
		t.Fatal("sphere short of the near plane was accepted")
	}

	behind := BoundingSphere{Center: [3]float32{0, 0, 5}, Radius: 0.5}
	if f.IntersectsSphere(behind) {
		t.Fatal("sphere behind the camera was accepted")
	}

	inside := BoundingSphere{Center: [3]float32{0, 0, -2}, Radius: 0.5}
	if !f.IntersectsSphere(inside) {
		t.Fatal("sphere past the near plane was rejected")
	}

	// Straddling the near plane: partially visible, must be kept.
	straddling := BoundingSphere{Center: [3]float32{0, 0, -0.9}, Radius: 0.5}
	if !f.IntersectsSphere(straddling) {
		t.Fatal("sphere straddling the near plane was rejected")
	}
}

func TestFrustumCullsBeyondFarPlane(t *testing.T) {
	f := testFrustum(1, 100)

	beyond := BoundingSphere{Center: [3]float32{0, 0, -150}, Radius: 1}
	if f.IntersectsSphere(beyond) {
		t.Fatal("sphere beyond the far plane was accepted")
	}

	inside := BoundingSphere{Center: [3]float32{0, 0, -99}, Radius: 0.5}
	if !f.IntersectsSphere(inside) {
		t.Fatal("sphere inside the far plane was rejected")
	}
}

func TestFrustumCullsLateral(t *testing.T) {
	f := testFrustum(1, 100)

	// With a 90 degree vertical FOV and aspect 1 the side planes sit at 45
	// degrees, so |x| > |z| is outside.
	left := BoundingSphere{Center: [3]float32{-30, 0, -10}, Radius: 1}
	if f.IntersectsSphere(left) {
		t.Fatal("sphere far left of the frustum was accepted")
	}

	centered := BoundingSphere{Center: [3]float32{5, 0, -10}, Radius: 1}
	if !f.IntersectsSphere(centered) {
		t.Fatal("sphere inside the side planes was rejected")
	}
}

func TestFrustumPlanesAreNormalized(t *testing.T) {
	f := testFrustum(1, 100)
	for i, p := range f.Planes {
		length := math.Sqrt(float64(
			p.Normal[0]*p.Normal[0] + p.Normal[1]*p.Normal[1] + p.Normal[2]*p.Normal[2]))
		if math.Abs(length-1) > 1e-4 {
			t.Fatalf("plane %d normal length %v, want 1", i, length)
		}
	}
}
