package mesh

import (
	"errors"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/forge3d/forge/common"
	"github.com/forge3d/forge/engine/renderer/device"
	"github.com/forge3d/forge/engine/renderer/pipeline_state"
)

// geometryIDCounter issues unique geometry IDs across all meshes. Sorting and
// batching key on the ID, so two meshes never share one.
var geometryIDCounter uint64

// Vertex is the GPU-aligned representation of a single mesh vertex for the
// standard vertex layout. Matches the WGSL VertexInput struct layout exactly.
// Size: 32 bytes (std430 aligned, no padding required).
type Vertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal for lighting (12 bytes)
	UV       [2]float32 // offset 24: UV texture coordinate (8 bytes)
}

// meshImpl is the unexported implementation of Mesh.
type meshImpl struct {
	label      string
	geometryID uint64

	layout pipeline_state.VertexLayout

	// vertices holds standard-layout vertex data; positions holds
	// position-only data. Exactly one is populated, per layout.
	vertices  []Vertex
	positions []mgl32.Vec3

	indices []uint32

	bounds common.BoundingSphere

	// GPU resources, populated by Upload.
	vertexBuffer device.Buffer
	indexBuffer  device.Buffer
}

// Mesh is shared, immutable geometry: CPU-side vertex and index data, a local
// bounding sphere, and the GPU buffers created from them. Many scene objects
// may reference one Mesh; the mesh itself carries no transform.
type Mesh interface {
	// Label returns the debug label for this mesh.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// GeometryID returns the unique ID for this geometry, used for sort
	// tie-breaking and batch compatibility checks.
	//
	// Returns:
	//   - uint64: the geometry ID
	GeometryID() uint64

	// Layout returns the vertex layout this mesh's data conforms to.
	//
	// Returns:
	//   - pipeline_state.VertexLayout: the vertex layout
	Layout() pipeline_state.VertexLayout

	// IndexCount returns the number of indices for draw calls.
	//
	// Returns:
	//   - uint32: the index count
	IndexCount() uint32

	// Bounds returns the local-space bounding sphere enclosing all vertices.
	//
	// Returns:
	//   - common.BoundingSphere: the bounding sphere in model space
	Bounds() common.BoundingSphere

	// VertexBuffer returns the GPU vertex buffer, or nil before Upload.
	//
	// Returns:
	//   - device.Buffer: the vertex buffer or nil
	VertexBuffer() device.Buffer

	// IndexBuffer returns the GPU index buffer, or nil before Upload.
	//
	// Returns:
	//   - device.Buffer: the index buffer or nil
	IndexBuffer() device.Buffer

	// Upload creates the GPU vertex and index buffers from the CPU-side data.
	// Calling Upload on an already-uploaded mesh is a no-op.
	//
	// Parameters:
	//   - dev: the device to create buffers on
	//
	// Returns:
	//   - error: an error if buffer creation fails
	Upload(dev device.Device) error

	// Release frees the GPU buffers. The CPU-side data is retained, so the
	// mesh can be uploaded again.
	Release()
}

var _ Mesh = &meshImpl{}

// NewMesh creates a new Mesh with the provided options. The bounding sphere
// is computed from the vertex data unless overridden with WithBounds.
//
// Parameters:
//   - label: a debug label for the mesh and its buffers
//   - options: a variadic list of options to configure the mesh
//
// Returns:
//   - Mesh: a new instance of Mesh configured with the provided options
func NewMesh(label string, options ...MeshOption) Mesh {
	m := &meshImpl{
		label:      label,
		geometryID: atomic.AddUint64(&geometryIDCounter, 1),
		layout:     pipeline_state.VertexLayoutStandard,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.bounds.Radius == 0 {
		m.bounds = computeBounds(m)
	}
	return m
}

func (m *meshImpl) Label() string {
	return m.label
}

func (m *meshImpl) GeometryID() uint64 {
	return m.geometryID
}

func (m *meshImpl) Layout() pipeline_state.VertexLayout {
	return m.layout
}

func (m *meshImpl) IndexCount() uint32 {
	return uint32(len(m.indices))
}

func (m *meshImpl) Bounds() common.BoundingSphere {
	return m.bounds
}

func (m *meshImpl) VertexBuffer() device.Buffer {
	return m.vertexBuffer
}

func (m *meshImpl) IndexBuffer() device.Buffer {
	return m.indexBuffer
}

func (m *meshImpl) Upload(dev device.Device) error {
	if m.vertexBuffer != nil {
		return nil
	}

	vertexData := m.vertexData()
	if len(vertexData) == 0 || len(m.indices) == 0 {
		return errors.New("mesh has no vertex or index data")
	}

	vb, err := dev.CreateVertexBuffer(m.label+" Vertex Buffer", vertexData)
	if err != nil {
		return err
	}

	ib, err := dev.CreateIndexBuffer(m.label+" Index Buffer", common.SliceToBytes(m.indices))
	if err != nil {
		vb.Release()
		return err
	}

	m.vertexBuffer = vb
	m.indexBuffer = ib

	return nil
}

func (m *meshImpl) Release() {
	if m.vertexBuffer != nil {
		m.vertexBuffer.Release()
		m.vertexBuffer = nil
	}
	if m.indexBuffer != nil {
		m.indexBuffer.Release()
		m.indexBuffer = nil
	}
}

func (m *meshImpl) vertexData() []byte {
	if m.layout == pipeline_state.VertexLayoutPosition {
		return common.SliceToBytes(m.positions)
	}
	return common.SliceToBytes(m.vertices)
}

// computeBounds returns the smallest origin-independent sphere enclosing the
// mesh: centered at the vertex centroid with radius reaching the farthest vertex.
func computeBounds(m *meshImpl) common.BoundingSphere {
	var points []mgl32.Vec3
	if m.layout == pipeline_state.VertexLayoutPosition {
		points = m.positions
	} else {
		points = make([]mgl32.Vec3, len(m.vertices))
		for i, v := range m.vertices {
			points[i] = mgl32.Vec3{v.Position[0], v.Position[1], v.Position[2]}
		}
	}
	if len(points) == 0 {
		return common.BoundingSphere{}
	}

	var centroid mgl32.Vec3
	for _, p := range points {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mul(1 / float32(len(points)))

	var radius float32
	for _, p := range points {
		if d := p.Sub(centroid).Len(); d > radius {
			radius = d
		}
	}

	return common.BoundingSphere{
		Center: [3]float32{centroid.X(), centroid.Y(), centroid.Z()},
		Radius: radius,
	}
}
