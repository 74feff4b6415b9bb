package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// NewCube creates a unit-oriented cube mesh centered at the origin with the
// given edge length. Each face has its own vertices so normals stay flat.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - Mesh: the cube mesh
func NewCube(size float32) Mesh {
	h := size / 2

	faces := []struct {
		normal  mgl32.Vec3
		corners [4]mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}},
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}},
	}

	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, face := range faces {
		base := uint32(len(vertices))
		for i, corner := range face.corners {
			vertices = append(vertices, Vertex{
				Position: [3]float32{corner.X(), corner.Y(), corner.Z()},
				Normal:   [3]float32{face.normal.X(), face.normal.Y(), face.normal.Z()},
				UV:       uvs[i],
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	return NewMesh("Cube", WithVertices(vertices), WithIndices(indices))
}

// NewPlane creates a flat plane mesh in the XZ plane, centered at the origin,
// with the normal pointing up.
//
// Parameters:
//   - width: extent along X
//   - depth: extent along Z
//
// Returns:
//   - Mesh: the plane mesh
func NewPlane(width, depth float32) Mesh {
	hw := width / 2
	hd := depth / 2

	vertices := []Vertex{
		{Position: [3]float32{-hw, 0, hd}, Normal: [3]float32{0, 1, 0}, UV: [2]float32{0, 1}},
		{Position: [3]float32{hw, 0, hd}, Normal: [3]float32{0, 1, 0}, UV: [2]float32{1, 1}},
		{Position: [3]float32{hw, 0, -hd}, Normal: [3]float32{0, 1, 0}, UV: [2]float32{1, 0}},
		{Position: [3]float32{-hw, 0, -hd}, Normal: [3]float32{0, 1, 0}, UV: [2]float32{0, 0}},
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}

	return NewMesh("Plane", WithVertices(vertices), WithIndices(indices))
}

// NewSphere creates a UV sphere mesh centered at the origin.
//
// Parameters:
//   - radius: the sphere radius
//   - segments: longitudinal subdivisions (minimum 3)
//   - rings: latitudinal subdivisions (minimum 2)
//
// Returns:
//   - Mesh: the sphere mesh
func NewSphere(radius float32, segments, rings int) Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	vertices := make([]Vertex, 0, (rings+1)*(segments+1))
	for ring := 0; ring <= rings; ring++ {
		phi := math.Pi * float64(ring) / float64(rings)
		y := float32(math.Cos(phi))
		r := float32(math.Sin(phi))
		for seg := 0; seg <= segments; seg++ {
			theta := 2 * math.Pi * float64(seg) / float64(segments)
			normal := mgl32.Vec3{r * float32(math.Cos(theta)), y, r * float32(math.Sin(theta))}
			vertices = append(vertices, Vertex{
				Position: [3]float32{normal.X() * radius, normal.Y() * radius, normal.Z() * radius},
				Normal:   [3]float32{normal.X(), normal.Y(), normal.Z()},
				UV: [2]float32{
					float32(seg) / float32(segments),
					float32(ring) / float32(rings),
				},
			})
		}
	}

	indices := make([]uint32, 0, rings*segments*6)
	stride := uint32(segments + 1)
	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			a := uint32(ring)*stride + uint32(seg)
			b := a + stride
			indices = append(indices, a, b, a+1, a+1, b, b+1)
		}
	}

	return NewMesh("Sphere", WithVertices(vertices), WithIndices(indices))
}

// NewSkyboxCube creates a position-only cube for sky rendering. Faces wind
// inward so the interior is visible from the camera at its center.
//
// Returns:
//   - Mesh: the skybox cube mesh
func NewSkyboxCube() Mesh {
	positions := []mgl32.Vec3{
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	}

	// Reversed winding relative to NewCube: the camera sits inside.
	indices := []uint32{
		0, 2, 1, 0, 3, 2, // +Z
		5, 7, 4, 5, 6, 7, // -Z
		1, 6, 5, 1, 2, 6, // +X
		4, 3, 0, 4, 7, 3, // -X
		3, 6, 2, 3, 7, 6, // +Y
		4, 1, 5, 4, 0, 1, // -Y
	}

	return NewMesh("Skybox Cube", WithPositions(positions), WithIndices(indices))
}
