package scene

import (
	"sync"
	"sync/atomic"

	"github.com/forge3d/forge/common"
	"github.com/forge3d/forge/engine/material"
	"github.com/forge3d/forge/engine/mesh"
)

// Drawable is the read surface the renderer consumes each frame: enough to
// cull, sort, batch, and draw an entity without knowing its concrete type.
type Drawable interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Mesh returns the geometry for this object.
	//
	// Returns:
	//   - mesh.Mesh: the mesh
	Mesh() mesh.Mesh

	// Material returns the material for this object.
	//
	// Returns:
	//   - material.Material: the material
	Material() material.Material

	// WorldTransform returns the object's model matrix as a column-major
	// 4x4 matrix. The returned slice must not be mutated.
	//
	// Returns:
	//   - []float32: the 16-element model matrix
	WorldTransform() []float32

	// WorldBounds returns the mesh bounding sphere transformed into world space.
	//
	// Returns:
	//   - common.BoundingSphere: the world-space bounding sphere
	WorldBounds() common.BoundingSphere

	// Layer returns the render layer. Lower layers draw before higher ones
	// within a pass; negative layers are valid.
	//
	// Returns:
	//   - int: the render layer
	Layer() int

	// Priority returns the explicit ordering override within a layer.
	//
	// Returns:
	//   - int: the priority
	Priority() int

	// CastShadow returns whether this object is drawn into shadow maps.
	//
	// Returns:
	//   - bool: true if the object casts shadows
	CastShadow() bool

	// ReceiveShadow returns whether shadow maps are sampled when shading
	// this object.
	//
	// Returns:
	//   - bool: true if the object receives shadows
	ReceiveShadow() bool
}

// objectIDCounter issues unique object IDs across all scenes.
var objectIDCounter uint64

// object is the concrete scene entity implementing Object (and Drawable).
type object struct {
	mu *sync.Mutex

	id      uint64
	enabled atomic.Bool

	msh mesh.Mesh
	mat material.Material

	position [3]float32
	rotation [3]float32
	scale    [3]float32

	layer         int
	priority      int
	castShadow    bool
	receiveShadow bool

	// worldTransform caches the composed model matrix; transformDirty marks
	// it stale after a position/rotation/scale change.
	worldTransform [16]float32
	transformDirty bool
}

// Object is a placeable scene entity: a mesh/material pair with a transform,
// render layer, and shadow participation flags. All methods are safe for
// concurrent use; per the frame model, mutation and rendering never overlap.
type Object interface {
	Drawable

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Position returns the object's position.
	//
	// Returns:
	//   - [3]float32: the position
	Position() [3]float32

	// SetPosition sets the object's position.
	//
	// Parameters:
	//   - x, y, z: the new position
	SetPosition(x, y, z float32)

	// Rotation returns the object's Euler rotation in radians.
	//
	// Returns:
	//   - [3]float32: the rotation
	Rotation() [3]float32

	// SetRotation sets the object's Euler rotation in radians.
	//
	// Parameters:
	//   - rx, ry, rz: the new rotation
	SetRotation(rx, ry, rz float32)

	// Scale returns the object's scale.
	//
	// Returns:
	//   - [3]float32: the scale
	Scale() [3]float32

	// SetScale sets the object's scale.
	//
	// Parameters:
	//   - sx, sy, sz: the new scale
	SetScale(sx, sy, sz float32)

	// SetLayer sets the render layer.
	//
	// Parameters:
	//   - layer: the new layer
	SetLayer(layer int)

	// SetPriority sets the ordering override within a layer.
	//
	// Parameters:
	//   - priority: the new priority
	SetPriority(priority int)
}

var _ Object = &object{}

// NewObject creates a new Object with the provided options. The object is
// enabled, unit-scaled, shadow-casting, and shadow-receiving by default.
//
// Panics if no mesh or material was provided; an object without either can
// never be drawn and indicates a construction bug.
//
// Parameters:
//   - options: a variadic list of options to configure the object
//
// Returns:
//   - Object: a new instance of Object configured with the provided options
func NewObject(options ...ObjectOption) Object {
	o := &object{
		mu:             &sync.Mutex{},
		id:             atomic.AddUint64(&objectIDCounter, 1),
		scale:          [3]float32{1, 1, 1},
		castShadow:     true,
		receiveShadow:  true,
		transformDirty: true,
	}
	o.enabled.Store(true)
	for _, opt := range options {
		opt(o)
	}
	if o.msh == nil {
		panic("scene object requires a mesh")
	}
	if o.mat == nil {
		panic("scene object requires a material")
	}
	return o
}

func (o *object) ID() uint64 {
	return o.id
}

func (o *object) Enabled() bool {
	return o.enabled.Load()
}

func (o *object) SetEnabled(enabled bool) {
	o.enabled.Store(enabled)
}

func (o *object) Mesh() mesh.Mesh {
	return o.msh
}

func (o *object) Material() material.Material {
	return o.mat
}

func (o *object) Position() [3]float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.position
}

func (o *object) SetPosition(x, y, z float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.position = [3]float32{x, y, z}
	o.transformDirty = true
}

func (o *object) Rotation() [3]float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rotation
}

func (o *object) SetRotation(rx, ry, rz float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rotation = [3]float32{rx, ry, rz}
	o.transformDirty = true
}

func (o *object) Scale() [3]float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.scale
}

func (o *object) SetScale(sx, sy, sz float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scale = [3]float32{sx, sy, sz}
	o.transformDirty = true
}

func (o *object) Layer() int {
	return o.layer
}

func (o *object) SetLayer(layer int) {
	o.layer = layer
}

func (o *object) Priority() int {
	return o.priority
}

func (o *object) SetPriority(priority int) {
	o.priority = priority
}

func (o *object) CastShadow() bool {
	return o.castShadow
}

func (o *object) ReceiveShadow() bool {
	return o.receiveShadow
}

func (o *object) WorldTransform() []float32 {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.transformDirty {
		common.BuildModelMatrix(
			o.worldTransform[:],
			o.position[0], o.position[1], o.position[2],
			o.rotation[0], o.rotation[1], o.rotation[2],
			o.scale[0], o.scale[1], o.scale[2],
		)
		o.transformDirty = false
	}
	return o.worldTransform[:]
}

func (o *object) WorldBounds() common.BoundingSphere {
	return common.TransformBoundingSphere(o.WorldTransform(), o.msh.Bounds())
}
