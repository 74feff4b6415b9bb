package context

import (
	"math"
	"testing"
	"time"

	"github.com/forge3d/forge/engine/camera"
	"github.com/forge3d/forge/engine/light"
	"github.com/forge3d/forge/engine/scene"
)

// stepClock returns a clock that advances by the given step on every call.
func stepClock(step time.Duration) func() time.Time {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestUpdateAdvancesTiming(t *testing.T) {
	ctx := NewContext(WithClock(stepClock(16 * time.Millisecond)))

	if ctx.FrameCount() != 0 {
		t.Fatalf("frame count before first update = %d, want 0", ctx.FrameCount())
	}

	ctx.Update(nil, nil)
	if ctx.FrameCount() != 1 {
		t.Fatalf("frame count after first update = %d, want 1", ctx.FrameCount())
	}
	if ctx.DeltaTime() != 0 {
		t.Fatalf("first frame delta = %v, want 0", ctx.DeltaTime())
	}

	ctx.Update(nil, nil)
	if ctx.FrameCount() != 2 {
		t.Fatalf("frame count after second update = %d, want 2", ctx.FrameCount())
	}
	if got := ctx.DeltaTime(); math.Abs(float64(got)-0.016) > 1e-4 {
		t.Fatalf("second frame delta = %v, want ~0.016", got)
	}
	if ctx.Time() <= 0 {
		t.Fatalf("elapsed time = %v, want > 0", ctx.Time())
	}
}

func TestUpdateSnapshotsCamera(t *testing.T) {
	cam := camera.NewCamera()
	cam.SetPosition(1, 2, 5)
	cam.SetTarget(1, 2, 0)

	ctx := NewContext()
	ctx.Update(cam, nil)

	if got := ctx.CameraPosition(); got != [3]float32{1, 2, 5} {
		t.Fatalf("camera position = %v, want [1 2 5]", got)
	}
	if got := ctx.CameraForward(); got != [3]float32{0, 0, -1} {
		t.Fatalf("camera forward = %v, want [0 0 -1]", got)
	}
	if ctx.ViewMatrix() != cam.ViewMatrix() {
		t.Fatal("view matrix snapshot differs from camera")
	}
	if ctx.ProjectionMatrix() != cam.ProjectionMatrix() {
		t.Fatal("projection matrix snapshot differs from camera")
	}

	// Inverse view must undo the view: applying both to a point is identity.
	inv := ctx.InverseViewMatrix()
	view := ctx.ViewMatrix()
	var composed [16]float32
	mul4(composed[:], inv[:], view[:])
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if math.Abs(float64(composed[i]-want)) > 1e-4 {
			t.Fatalf("inverseView*view[%d] = %v, want %v", i, composed[i], want)
		}
	}
}

func TestSkyMatrixIgnoresCameraTranslation(t *testing.T) {
	camA := camera.NewCamera()
	camA.SetPosition(0, 0, 0)
	camA.SetTarget(0, 0, -1)

	camB := camera.NewCamera()
	camB.SetPosition(50, -20, 7)
	camB.SetTarget(50, -20, 6)

	ctxA := NewContext()
	ctxA.Update(camA, nil)
	ctxB := NewContext()
	ctxB.Update(camB, nil)

	a := ctxA.SkyViewProjectionMatrix()
	b := ctxB.SkyViewProjectionMatrix()
	for i := 0; i < 16; i++ {
		if math.Abs(float64(a[i]-b[i])) > 1e-5 {
			t.Fatalf("sky matrices differ at [%d]: %v vs %v — translation leaked through", i, a[i], b[i])
		}
	}
}

func TestUpdateRebuildsLightTables(t *testing.T) {
	sun := light.NewLight(light.LightTypeDirectional,
		light.WithDirection(-1, -1, 0),
		light.WithCastsShadows(),
	)
	disabled := light.NewLight(light.LightTypeDirectional)
	disabled.SetEnabled(false)
	lamp := light.NewLight(light.LightTypePoint, light.WithPosition(0, 3, 0))
	torch := light.NewLight(light.LightTypeSpot, light.WithPosition(2, 1, 0))

	scn := scene.NewScene(scene.WithLights(sun, disabled, lamp, torch))

	ctx := NewContext()
	ctx.Update(nil, scn)

	if got := len(ctx.DirectionalLights()); got != 1 {
		t.Fatalf("directional table has %d entries, want 1 (disabled light skipped)", got)
	}
	if got := len(ctx.PointLights()); got != 1 {
		t.Fatalf("point table has %d entries, want 1", got)
	}
	if got := len(ctx.SpotLights()); got != 1 {
		t.Fatalf("spot table has %d entries, want 1", got)
	}
	if ctx.ShadowCaster() != sun {
		t.Fatal("shadow caster is not the shadow-enabled directional light")
	}

	d := ctx.LightData()
	if d.DirectionalCount != 1 || d.PointCount != 1 || d.SpotCount != 1 {
		t.Fatalf("light data counts = %d/%d/%d, want 1/1/1",
			d.DirectionalCount, d.PointCount, d.SpotCount)
	}
}

func TestShadowDataWithoutCaster(t *testing.T) {
	scn := scene.NewScene()
	scn.AddLight(light.NewLight(light.LightTypeDirectional)) // no shadows

	ctx := NewContext()
	ctx.Update(nil, scn)

	if ctx.ShadowCaster() != nil {
		t.Fatal("shadow caster reported for non-shadow light")
	}
	d := ctx.ShadowData()
	if d.Enabled != 0 {
		t.Fatalf("shadow enabled flag = %v, want 0", d.Enabled)
	}
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if d.ViewProjection[i] != want {
			t.Fatal("shadow matrix is not identity without a caster")
		}
	}
}

func TestShadowDataWithCaster(t *testing.T) {
	sun := light.NewLight(light.LightTypeDirectional,
		light.WithDirection(0, -1, -0.3),
		light.WithCastsShadows(),
	)
	scn := scene.NewScene(scene.WithLights(sun))

	ctx := NewContext()
	ctx.Update(camera.NewCamera(), scn)

	d := ctx.ShadowData()
	if d.Enabled != 1 {
		t.Fatalf("shadow enabled flag = %v, want 1", d.Enabled)
	}
	identity := true
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if d.ViewProjection[i] != want {
			identity = false
			break
		}
	}
	if identity {
		t.Fatal("shadow matrix left at identity with an active caster")
	}
}

func TestUpdateSnapshotsEnvironment(t *testing.T) {
	scn := scene.NewScene(
		scene.WithAmbient([3]float32{0.5, 0.6, 0.7}, 0.25),
		scene.WithFog([3]float32{0.8, 0.8, 0.9}, 0.02),
		scene.WithSkyColors([3]float32{0.1, 0.2, 0.9}, [3]float32{0.9, 0.9, 1}),
	)

	ctx := NewContext()
	ctx.Update(nil, scn)

	if color, intensity := ctx.Ambient(); color != [3]float32{0.5, 0.6, 0.7} || intensity != 0.25 {
		t.Fatalf("ambient = %v x %v", color, intensity)
	}
	if color, density := ctx.Fog(); color != [3]float32{0.8, 0.8, 0.9} || density != 0.02 {
		t.Fatalf("fog = %v x %v", color, density)
	}
	if !ctx.SkyboxEnabled() {
		t.Fatal("skybox disabled on a default scene")
	}
	zenith, horizon := ctx.SkyColors()
	if zenith != [3]float32{0.1, 0.2, 0.9} || horizon != [3]float32{0.9, 0.9, 1} {
		t.Fatalf("sky colors = %v / %v", zenith, horizon)
	}
}

func TestNilArgumentsResetSnapshot(t *testing.T) {
	sun := light.NewLight(light.LightTypeDirectional, light.WithCastsShadows())
	scn := scene.NewScene(scene.WithLights(sun))
	cam := camera.NewCamera()
	cam.SetPosition(3, 4, 5)

	ctx := NewContext()
	ctx.Update(cam, scn)
	ctx.Update(nil, nil)

	if got := ctx.CameraPosition(); got != [3]float32{} {
		t.Fatalf("camera position after nil update = %v, want zero", got)
	}
	if len(ctx.DirectionalLights()) != 0 {
		t.Fatal("light tables not cleared on nil scene")
	}
	if ctx.ShadowCaster() != nil {
		t.Fatal("shadow caster not cleared on nil scene")
	}
	if ctx.FrameCount() != 2 {
		t.Fatalf("frame count = %d, want 2", ctx.FrameCount())
	}
}

// mul4 multiplies two column-major 4x4 matrices for verification.
func mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}
