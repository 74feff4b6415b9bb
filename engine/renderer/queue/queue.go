package queue

import (
	"sort"

	"github.com/forge3d/forge/common"
	"github.com/forge3d/forge/engine/camera"
)

// queueImpl is the unexported implementation of Queue.
type queueImpl struct {
	// Config, set at construction.
	frustumCulling    bool
	maxRenderDistance float32
	distanceSorting   bool
	batching          bool
	instancing        bool
	maxInstanceCount  int
	maxBatchSize      int
	strategy          BatchStrategy

	// Camera snapshot for the current frame.
	hasCamera      bool
	cameraPosition [3]float32
	frustum        common.Frustum

	// Buckets, rebuilt every frame.
	opaque        []*Element
	transparent   []*Element
	shadowCasters []*Element

	opaqueBatches      []*Batch
	transparentBatches []*Batch
	shadowBatches      []*Batch
}

// Queue collects render elements for one frame, culls them against the active
// camera, classifies them into opaque/transparent/shadow-caster buckets,
// sorts each bucket per its ordering policy, and groups sorted buckets into
// draw batches. The per-frame cycle is Clear → SetCamera → AddElement* →
// Build; passes then read the built sequences.
//
// Not safe for concurrent mutation: per the frame model, exactly one goroutine
// owns the queue between Clear and the end of pass execution.
type Queue interface {
	// SetCamera records the active camera for this frame and, if frustum
	// culling is enabled, recomputes the frustum planes from its
	// view-projection matrix. Must be called before AddElement; without it,
	// distance-based culling and sorting are silently disabled for the frame.
	//
	// Parameters:
	//   - cam: the camera to cull and sort against
	SetCamera(cam camera.Camera)

	// AddElement culls the element against the frustum and the maximum render
	// distance, computes its camera distance if accepted, and classifies it
	// into the opaque or transparent bucket by its Transparent flag. Accepted
	// elements with CastShadow set are additionally admitted into the
	// shadow-caster bucket, independent of transparency.
	//
	// Parameters:
	//   - el: the element to add
	//
	// Returns:
	//   - bool: true if the element was accepted into at least one bucket
	AddElement(el *Element) bool

	// Build sorts each bucket per its ordering policy (opaque front-to-back,
	// transparent back-to-front, shadow material-grouped) and, if batching is
	// enabled, groups each sorted bucket into batches.
	Build()

	// Clear empties all buckets and batches. Must be called once per frame
	// before the next AddElement cycle; calling it on an empty queue is a
	// no-op.
	Clear()

	// Opaque returns the built opaque sequence, front-to-back.
	//
	// Returns:
	//   - []*Element: the opaque elements
	Opaque() []*Element

	// Transparent returns the built transparent sequence, back-to-front.
	//
	// Returns:
	//   - []*Element: the transparent elements
	Transparent() []*Element

	// ShadowCasters returns the built shadow-caster sequence, material-grouped.
	//
	// Returns:
	//   - []*Element: the shadow-casting elements
	ShadowCasters() []*Element

	// OpaqueBatches returns the opaque batches, or nil when batching is disabled.
	//
	// Returns:
	//   - []*Batch: the opaque batches
	OpaqueBatches() []*Batch

	// TransparentBatches returns the transparent batches, or nil when batching is disabled.
	//
	// Returns:
	//   - []*Batch: the transparent batches
	TransparentBatches() []*Batch

	// ShadowBatches returns the shadow-caster batches, or nil when batching is disabled.
	//
	// Returns:
	//   - []*Batch: the shadow batches
	ShadowBatches() []*Batch

	// CameraPosition returns the camera position recorded by SetCamera.
	//
	// Returns:
	//   - [3]float32: the camera world position
	CameraPosition() [3]float32
}

var _ Queue = &queueImpl{}

// NewQueue creates a new Queue with the provided options. Defaults: frustum
// culling on, distance sorting on, batching on with instancing, batch size
// capped at 128 and instance count at 64, no max render distance.
//
// Parameters:
//   - options: a variadic list of options to configure the queue
//
// Returns:
//   - Queue: a new instance of Queue configured with the provided options
func NewQueue(options ...QueueOption) Queue {
	q := &queueImpl{
		frustumCulling:   true,
		distanceSorting:  true,
		batching:         true,
		instancing:       true,
		maxInstanceCount: 64,
		maxBatchSize:     128,
	}
	for _, opt := range options {
		opt(q)
	}
	return q
}

func (q *queueImpl) SetCamera(cam camera.Camera) {
	x, y, z := cam.Position()
	q.cameraPosition = [3]float32{x, y, z}
	q.hasCamera = true

	if q.frustumCulling {
		q.frustum = cam.Frustum()
	}
}

func (q *queueImpl) AddElement(el *Element) bool {
	if q.hasCamera {
		if q.frustumCulling {
			if !q.frustum.IntersectsSphere(el.Bounds) {
				return false
			}
		}

		el.DistanceToCamera = common.Distance3(q.cameraPosition, el.Bounds.Center)
		if q.maxRenderDistance > 0 && el.DistanceToCamera > q.maxRenderDistance {
			return false
		}
	}

	if el.Transparent {
		q.transparent = append(q.transparent, el)
	} else {
		q.opaque = append(q.opaque, el)
	}
	if el.CastShadow {
		q.shadowCasters = append(q.shadowCasters, el)
	}
	return true
}

func (q *queueImpl) Build() {
	byDistance := q.hasCamera && q.distanceSorting

	sort.SliceStable(q.opaque, func(i, j int) bool {
		return lessOpaque(q.opaque[i], q.opaque[j], byDistance)
	})
	sort.SliceStable(q.transparent, func(i, j int) bool {
		return lessTransparent(q.transparent[i], q.transparent[j], byDistance)
	})
	sort.SliceStable(q.shadowCasters, func(i, j int) bool {
		return lessShadow(q.shadowCasters[i], q.shadowCasters[j])
	})

	if !q.batching {
		return
	}

	build := buildAdjacentBatches
	if q.strategy != nil {
		build = q.strategy.BuildBatches
	}
	q.opaqueBatches = build(q.opaque, q.maxBatchSize, q.instancing, q.maxInstanceCount)
	q.transparentBatches = build(q.transparent, q.maxBatchSize, q.instancing, q.maxInstanceCount)
	q.shadowBatches = build(q.shadowCasters, q.maxBatchSize, q.instancing, q.maxInstanceCount)
}

func (q *queueImpl) Clear() {
	q.opaque = q.opaque[:0]
	q.transparent = q.transparent[:0]
	q.shadowCasters = q.shadowCasters[:0]
	q.opaqueBatches = nil
	q.transparentBatches = nil
	q.shadowBatches = nil
	q.hasCamera = false
}

func (q *queueImpl) Opaque() []*Element {
	return q.opaque
}

func (q *queueImpl) Transparent() []*Element {
	return q.transparent
}

func (q *queueImpl) ShadowCasters() []*Element {
	return q.shadowCasters
}

func (q *queueImpl) OpaqueBatches() []*Batch {
	return q.opaqueBatches
}

func (q *queueImpl) TransparentBatches() []*Batch {
	return q.transparentBatches
}

func (q *queueImpl) ShadowBatches() []*Batch {
	return q.shadowBatches
}

func (q *queueImpl) CameraPosition() [3]float32 {
	return q.cameraPosition
}

// lessOpaque orders front-to-back by distance, then by the stable tie-break
// chain layer → priority → material → geometry so equal distances never
// flicker between frames.
func lessOpaque(a, b *Element, byDistance bool) bool {
	if byDistance && a.DistanceToCamera != b.DistanceToCamera {
		return a.DistanceToCamera < b.DistanceToCamera
	}
	return lessTieBreak(a, b)
}

// lessTransparent orders back-to-front by distance with the same tie-breaks.
func lessTransparent(a, b *Element, byDistance bool) bool {
	if byDistance && a.DistanceToCamera != b.DistanceToCamera {
		return a.DistanceToCamera > b.DistanceToCamera
	}
	return lessTieBreak(a, b)
}

// lessShadow groups by material to minimize pipeline switches during shadow
// map generation; distance is a secondary key only.
func lessShadow(a, b *Element) bool {
	if a.MaterialID() != b.MaterialID() {
		return a.MaterialID() < b.MaterialID()
	}
	if a.GeometryID() != b.GeometryID() {
		return a.GeometryID() < b.GeometryID()
	}
	return a.DistanceToCamera < b.DistanceToCamera
}

func lessTieBreak(a, b *Element) bool {
	if a.Layer != b.Layer {
		return a.Layer < b.Layer
	}
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if a.MaterialID() != b.MaterialID() {
		return a.MaterialID() < b.MaterialID()
	}
	return a.GeometryID() < b.GeometryID()
}
