package queue

import (
	"testing"

	"github.com/forge3d/forge/common"
	"github.com/forge3d/forge/engine/camera"
	"github.com/forge3d/forge/engine/material"
	"github.com/forge3d/forge/engine/mesh"
)

// testCamera returns a camera at the origin looking down -Z so an element
// centered at (0, 0, -d) sits exactly distance d away.
func testCamera() camera.Camera {
	return camera.NewCamera(
		camera.WithPosition(0, 0, 0),
		camera.WithTarget(0, 0, -1),
		camera.WithClipPlanes(0.1, 1000),
	)
}

// elementAt builds an element straight ahead of the test camera.
func elementAt(distance float32, mat material.Material, msh mesh.Mesh) *Element {
	el := &Element{
		Mesh:     msh,
		Material: mat,
		Bounds: common.BoundingSphere{
			Center: [3]float32{0, 0, -distance},
			Radius: 0.5,
		},
		Transparent: mat.Transparent(),
		CastShadow:  true,
	}
	common.Identity(el.Transform[:])
	return el
}

func TestAddElementCullsOutsideFrustum(t *testing.T) {
	q := NewQueue()
	q.SetCamera(testCamera())

	mat := material.NewMaterial()
	msh := mesh.NewCube(1)

	behind := elementAt(0, mat, msh)
	behind.Bounds.Center = [3]float32{0, 0, 100} // behind the camera
	if q.AddElement(behind) {
		t.Fatal("element behind the camera was accepted")
	}

	ahead := elementAt(10, mat, msh)
	if !q.AddElement(ahead) {
		t.Fatal("element in front of the camera was rejected")
	}

	if got := len(q.Opaque()); got != 1 {
		t.Fatalf("opaque bucket has %d elements, want 1", got)
	}
}

func TestAddElementMaxRenderDistance(t *testing.T) {
	q := NewQueue(
		WithFrustumCulling(false),
		WithMaxRenderDistance(100),
	)
	q.SetCamera(testCamera())

	mat := material.NewMaterial()
	msh := mesh.NewCube(1)

	far := elementAt(500, mat, msh)
	if q.AddElement(far) {
		t.Fatal("element at distance 500 was accepted with max distance 100")
	}
	if len(q.Opaque()) != 0 || len(q.Transparent()) != 0 || len(q.ShadowCasters()) != 0 {
		t.Fatal("culled element appeared in a bucket")
	}

	near := elementAt(50, mat, msh)
	if !q.AddElement(near) {
		t.Fatal("element at distance 50 was rejected with max distance 100")
	}
}

func TestClassificationExclusive(t *testing.T) {
	q := NewQueue(WithFrustumCulling(false))
	q.SetCamera(testCamera())

	opaqueMat := material.NewMaterial()
	transparentMat := material.NewMaterial(material.WithTransparent())
	msh := mesh.NewCube(1)

	q.AddElement(elementAt(1, opaqueMat, msh))
	q.AddElement(elementAt(2, transparentMat, msh))
	q.Build()

	if len(q.Opaque()) != 1 {
		t.Fatalf("opaque bucket has %d elements, want 1", len(q.Opaque()))
	}
	if len(q.Transparent()) != 1 {
		t.Fatalf("transparent bucket has %d elements, want 1", len(q.Transparent()))
	}
	if q.Opaque()[0].Transparent {
		t.Fatal("transparent element landed in the opaque bucket")
	}
	if !q.Transparent()[0].Transparent {
		t.Fatal("opaque element landed in the transparent bucket")
	}
	// Both cast shadows, so the shadow bucket admits both regardless of transparency.
	if len(q.ShadowCasters()) != 2 {
		t.Fatalf("shadow bucket has %d elements, want 2", len(q.ShadowCasters()))
	}
}

func TestOpaqueOrderFrontToBack(t *testing.T) {
	q := NewQueue(WithFrustumCulling(false))
	q.SetCamera(testCamera())

	mat := material.NewMaterial()
	msh := mesh.NewCube(1)

	for _, d := range []float32{10, 3, 8, 1, 6} {
		q.AddElement(elementAt(d, mat, msh))
	}
	q.Build()

	want := []float32{1, 3, 6, 8, 10}
	got := q.Opaque()
	if len(got) != len(want) {
		t.Fatalf("opaque bucket has %d elements, want %d", len(got), len(want))
	}
	for i, el := range got {
		if el.DistanceToCamera != want[i] {
			t.Errorf("opaque[%d] distance = %v, want %v", i, el.DistanceToCamera, want[i])
		}
	}
}

func TestTransparentOrderBackToFront(t *testing.T) {
	q := NewQueue(WithFrustumCulling(false))
	q.SetCamera(testCamera())

	mat := material.NewMaterial(material.WithTransparent())
	msh := mesh.NewCube(1)

	for _, d := range []float32{10, 3, 8, 1, 6} {
		q.AddElement(elementAt(d, mat, msh))
	}
	q.Build()

	want := []float32{10, 8, 6, 3, 1}
	got := q.Transparent()
	if len(got) != len(want) {
		t.Fatalf("transparent bucket has %d elements, want %d", len(got), len(want))
	}
	for i, el := range got {
		if el.DistanceToCamera != want[i] {
			t.Errorf("transparent[%d] distance = %v, want %v", i, el.DistanceToCamera, want[i])
		}
	}
}

func TestOpaqueTieBreaksAreDeterministic(t *testing.T) {
	matA := material.NewMaterial()
	matB := material.NewMaterial()
	msh := mesh.NewCube(1)

	// Two passes over the same input in opposite insertion order must produce
	// the same built order when distances are equal.
	var orders [2][]uint64
	for run := 0; run < 2; run++ {
		q := NewQueue(WithFrustumCulling(false))
		q.SetCamera(testCamera())

		mats := []material.Material{matA, matB}
		if run == 1 {
			mats = []material.Material{matB, matA}
		}
		for _, m := range mats {
			q.AddElement(elementAt(5, m, msh))
		}
		q.Build()

		for _, el := range q.Opaque() {
			orders[run] = append(orders[run], el.MaterialID())
		}
	}

	if len(orders[0]) != 2 || len(orders[1]) != 2 {
		t.Fatalf("unexpected bucket sizes: %v, %v", orders[0], orders[1])
	}
	for i := range orders[0] {
		if orders[0][i] != orders[1][i] {
			t.Fatalf("tie-break order differs between runs: %v vs %v", orders[0], orders[1])
		}
	}
}

func TestShadowOrderGroupsByMaterial(t *testing.T) {
	q := NewQueue(WithFrustumCulling(false))
	q.SetCamera(testCamera())

	matA := material.NewMaterial()
	matB := material.NewMaterial()
	msh := mesh.NewCube(1)

	// Interleave materials so distance ordering alone would not group them.
	q.AddElement(elementAt(1, matB, msh))
	q.AddElement(elementAt(2, matA, msh))
	q.AddElement(elementAt(3, matB, msh))
	q.AddElement(elementAt(4, matA, msh))
	q.Build()

	casters := q.ShadowCasters()
	if len(casters) != 4 {
		t.Fatalf("shadow bucket has %d elements, want 4", len(casters))
	}
	for i := 1; i < len(casters); i++ {
		if casters[i].MaterialID() < casters[i-1].MaterialID() {
			t.Fatalf("shadow bucket not material-grouped at index %d", i)
		}
	}
	// Within one material, distance is the secondary key.
	for i := 1; i < len(casters); i++ {
		if casters[i].MaterialID() == casters[i-1].MaterialID() &&
			casters[i].DistanceToCamera < casters[i-1].DistanceToCamera {
			t.Fatalf("shadow bucket distance order broken within material at index %d", i)
		}
	}
}

func TestBuildMergesSharedMaterialAndGeometry(t *testing.T) {
	q := NewQueue(
		WithFrustumCulling(false),
		WithMaxBatchSize(10),
	)
	q.SetCamera(testCamera())

	mat := material.NewMaterial()
	msh := mesh.NewCube(1)

	q.AddElement(elementAt(1, mat, msh))
	q.AddElement(elementAt(2, mat, msh))
	q.Build()

	batches := q.OpaqueBatches()
	if len(batches) != 1 {
		t.Fatalf("built %d opaque batches, want 1", len(batches))
	}
	if batches[0].Count() != 2 {
		t.Fatalf("batch has %d members, want 2", batches[0].Count())
	}
}

func TestBatchMembersShareIdentity(t *testing.T) {
	q := NewQueue(WithFrustumCulling(false))
	q.SetCamera(testCamera())

	matA := material.NewMaterial()
	matB := material.NewMaterial()
	cube := mesh.NewCube(1)
	sphere := mesh.NewSphere(1, 8, 4)

	q.AddElement(elementAt(1, matA, cube))
	q.AddElement(elementAt(2, matA, sphere))
	q.AddElement(elementAt(3, matB, cube))
	q.AddElement(elementAt(4, matA, cube))
	q.Build()

	total := 0
	for _, b := range q.OpaqueBatches() {
		total += b.Count()
		for _, el := range b.Elements {
			if el.MaterialID() != b.Elements[0].MaterialID() {
				t.Fatal("batch members have differing material identity")
			}
			if el.GeometryID() != b.Elements[0].GeometryID() {
				t.Fatal("batch members have differing geometry identity")
			}
		}
	}
	if total != 4 {
		t.Fatalf("batches cover %d elements, want 4", total)
	}
}

func TestInstancingCap(t *testing.T) {
	q := NewQueue(
		WithFrustumCulling(false),
		WithMaxBatchSize(10),
		WithInstancing(true, 3),
	)
	q.SetCamera(testCamera())

	mat := material.NewMaterial()
	msh := mesh.NewCube(1)
	for d := float32(1); d <= 5; d++ {
		q.AddElement(elementAt(d, mat, msh))
	}
	q.Build()

	for _, b := range q.OpaqueBatches() {
		if b.Instanced && b.Count() > 3 {
			t.Fatalf("instanced batch has %d members, cap is 3", b.Count())
		}
	}
}

func TestInstancedBatchCapturesTransforms(t *testing.T) {
	q := NewQueue(
		WithFrustumCulling(false),
		WithMaxBatchSize(8),
		WithInstancing(true, 8),
	)
	q.SetCamera(testCamera())

	mat := material.NewMaterial()
	msh := mesh.NewCube(1)
	for d := float32(1); d <= 4; d++ {
		el := elementAt(d, mat, msh)
		el.Transform[12] = d // distinct translation per element
		q.AddElement(el)
	}
	q.Build()

	batches := q.OpaqueBatches()
	if len(batches) != 1 {
		t.Fatalf("built %d batches, want 1", len(batches))
	}
	b := batches[0]
	if !b.Instanced {
		t.Fatal("batch of 4 compatible elements was not marked instanced")
	}
	if len(b.Transforms) != 4 {
		t.Fatalf("instanced batch captured %d transforms, want 4", len(b.Transforms))
	}
	for i, tr := range b.Transforms {
		if tr != b.Elements[i].Transform {
			t.Fatalf("transform %d does not match its element", i)
		}
	}
}

func TestBatchingOrderSensitive(t *testing.T) {
	q := NewQueue(WithFrustumCulling(false), WithDistanceSorting(false))
	q.SetCamera(testCamera())

	matA := material.NewMaterial()
	matB := material.NewMaterial()
	cube := mesh.NewCube(1)
	sphere := mesh.NewSphere(1, 8, 4)

	// matA/cube appears at both ends with an incompatible run between; the
	// single linear pass must not merge across the gap. Distinct layers pin
	// the sorted order.
	first := elementAt(1, matA, cube)
	first.Layer = 0
	middle := elementAt(2, matB, sphere)
	middle.Layer = 1
	last := elementAt(3, matA, cube)
	last.Layer = 2

	q.AddElement(first)
	q.AddElement(middle)
	q.AddElement(last)
	q.Build()

	if got := len(q.OpaqueBatches()); got != 3 {
		t.Fatalf("built %d batches, want 3 (no merge across incompatible run)", got)
	}
}

func TestClearIdempotent(t *testing.T) {
	q := NewQueue(WithFrustumCulling(false))
	q.SetCamera(testCamera())

	mat := material.NewMaterial()
	msh := mesh.NewCube(1)
	q.AddElement(elementAt(1, mat, msh))
	q.Build()

	q.Clear()
	q.Clear() // second clear must be a no-op on already-empty state

	if len(q.Opaque()) != 0 || len(q.Transparent()) != 0 || len(q.ShadowCasters()) != 0 {
		t.Fatal("buckets not empty after clear")
	}
	if q.OpaqueBatches() != nil || q.TransparentBatches() != nil || q.ShadowBatches() != nil {
		t.Fatal("batches not empty after clear")
	}

	// The queue must be reusable after clearing.
	q.SetCamera(testCamera())
	if !q.AddElement(elementAt(2, mat, msh)) {
		t.Fatal("queue rejected an element after clear")
	}
}

func TestNoCameraDisablesDistanceOrdering(t *testing.T) {
	q := NewQueue(WithFrustumCulling(false))

	mat := material.NewMaterial()
	msh := mesh.NewCube(1)

	// Without SetCamera the queue accepts everything and leaves distances at
	// zero; ordering falls back to the stable tie-break chain.
	a := elementAt(10, mat, msh)
	b := elementAt(1, mat, msh)
	if !q.AddElement(a) || !q.AddElement(b) {
		t.Fatal("elements rejected without a camera")
	}
	q.Build()

	for _, el := range q.Opaque() {
		if el.DistanceToCamera != 0 {
			t.Fatalf("distance computed without a camera: %v", el.DistanceToCamera)
		}
	}
}

func TestBuildPreservesInsertionOrderOnEqualKeys(t *testing.T) {
	q := NewQueue(WithFrustumCulling(false), WithBatching(false))
	q.SetCamera(testCamera())

	mat := material.NewMaterial()
	msh := mesh.NewCube(1)

	// Same distance, layer, priority, material, and geometry: the sort has
	// no key left to distinguish them, so Build must keep insertion order.
	var inserted []*Element
	for i := 0; i < 4; i++ {
		el := elementAt(5, mat, msh)
		inserted = append(inserted, el)
		if !q.AddElement(el) {
			t.Fatalf("element %d rejected", i)
		}
	}
	q.Build()

	opaque := q.Opaque()
	if len(opaque) != len(inserted) {
		t.Fatalf("opaque bucket has %d elements, want %d", len(opaque), len(inserted))
	}
	for i, el := range opaque {
		if el != inserted[i] {
			t.Fatalf("element at position %d is not the %dth inserted element", i, i)
		}
	}
}
