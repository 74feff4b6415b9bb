// Package context holds the per-frame shared state every render pass reads:
// the camera matrix snapshot with precomputed inverses, frame timing, the
// scene's light tables, and the active command encoder. The renderer calls
// Update exactly once per frame before any pass executes; after that the
// context is read-only for the rest of the frame, so passes observe identical
// camera and lighting state even when game logic mutates the camera mid-frame.
//
// The context is deliberately unsynchronized. It has a single writer (the
// renderer, during Update) and its readers run strictly after the write on
// the same goroutine, so a mutex would only hide ordering bugs.
package context

import (
	"time"

	"github.com/forge3d/forge/common"
	"github.com/forge3d/forge/engine/camera"
	"github.com/forge3d/forge/engine/light"
	"github.com/forge3d/forge/engine/renderer/device"
	"github.com/forge3d/forge/engine/scene"
)

// contextImpl is the implementation of the Context interface.
type contextImpl struct {
	now func() time.Time

	startTime  time.Time
	lastUpdate time.Time
	started    bool

	frameCount uint64
	time       float32
	deltaTime  float32

	viewMatrix              [16]float32
	projectionMatrix        [16]float32
	viewProjectionMatrix    [16]float32
	inverseViewMatrix       [16]float32
	inverseProjectionMatrix [16]float32
	skyViewProjection       [16]float32

	cameraPosition [3]float32
	cameraForward  [3]float32

	directional []light.DirectionalLightData
	point       []light.PointLightData
	spot        []light.SpotLightData

	shadowCaster         light.Light
	shadowViewProjection [16]float32
	shadowHalfExtent     float32
	shadowNear           float32
	shadowFar            float32

	ambientColor     [3]float32
	ambientIntensity float32
	fogColor         [3]float32
	fogDensity       float32
	skyboxEnabled    bool
	zenithColor      [3]float32
	horizonColor     [3]float32

	viewportWidth  uint32
	viewportHeight uint32

	encoder device.CommandEncoder
}

// Context is the per-frame global state shared read-only by all render passes.
// It is rebuilt in place by Update at the start of every frame; nothing in it
// survives from one frame to the next except the monotonically increasing
// frame counter and the clock.
type Context interface {
	// Update takes a snapshot of the camera and scene for this frame. It
	// advances the frame counter and timing, copies the camera matrices and
	// computes their inverses and the combined view-projection, captures the
	// camera world position and forward direction, and rebuilds the light
	// tables from the scene's light set. Either argument may be nil; the
	// corresponding state is then left at its zero snapshot for the frame.
	//
	// Parameters:
	//   - cam: the camera to snapshot, or nil
	//   - scn: the scene whose lights and environment to snapshot, or nil
	Update(cam camera.Camera, scn scene.Scene)

	// FrameCount returns the number of Update calls made so far.
	//
	// Returns:
	//   - uint64: the frame counter
	FrameCount() uint64

	// Time returns the seconds elapsed since the context was created,
	// measured at the last Update.
	//
	// Returns:
	//   - float32: elapsed time in seconds
	Time() float32

	// DeltaTime returns the seconds elapsed between the last two Updates.
	// Zero on the first frame.
	//
	// Returns:
	//   - float32: frame delta in seconds
	DeltaTime() float32

	// ViewMatrix returns this frame's view matrix snapshot (column-major).
	ViewMatrix() [16]float32

	// ProjectionMatrix returns this frame's projection matrix snapshot (column-major).
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns projection * view for this frame (column-major).
	ViewProjectionMatrix() [16]float32

	// InverseViewMatrix returns the inverse of this frame's view matrix (column-major).
	InverseViewMatrix() [16]float32

	// InverseProjectionMatrix returns the inverse of this frame's projection
	// matrix (column-major).
	InverseProjectionMatrix() [16]float32

	// SkyViewProjectionMatrix returns projection * view with the view's
	// translation removed. The skybox pass renders with this matrix so the
	// sky rotates with the camera but never parallaxes as it moves.
	//
	// Returns:
	//   - [16]float32: the translation-free view-projection matrix
	SkyViewProjectionMatrix() [16]float32

	// CameraPosition returns the camera's world position snapshot.
	CameraPosition() [3]float32

	// CameraForward returns the camera's normalized forward direction snapshot.
	CameraForward() [3]float32

	// DirectionalLights returns this frame's directional light table.
	DirectionalLights() []light.DirectionalLightData

	// PointLights returns this frame's point light table.
	PointLights() []light.PointLightData

	// SpotLights returns this frame's spot light table.
	SpotLights() []light.SpotLightData

	// ShadowCaster returns the directional light selected for shadow map
	// generation this frame, or nil when no enabled light casts shadows.
	//
	// Returns:
	//   - light.Light: the shadow-casting light or nil
	ShadowCaster() light.Light

	// ShadowViewProjectionMatrix returns the light-space view-projection used
	// to render and sample the shadow map. Identity when ShadowCaster is nil.
	//
	// Returns:
	//   - [16]float32: the shadow view-projection matrix
	ShadowViewProjectionMatrix() [16]float32

	// Ambient returns the scene's ambient color and intensity snapshot.
	Ambient() ([3]float32, float32)

	// Fog returns the scene's fog color and density snapshot. A density of
	// zero means fog is disabled.
	Fog() ([3]float32, float32)

	// SkyboxEnabled returns whether the scene wants the sky drawn this frame.
	SkyboxEnabled() bool

	// SkyColors returns the procedural sky gradient snapshot.
	//
	// Returns:
	//   - zenith: the RGB color straight up
	//   - horizon: the RGB color at the horizon
	SkyColors() (zenith, horizon [3]float32)

	// Viewport returns the render target dimensions for this frame.
	Viewport() (width, height uint32)

	// SetViewport sets the render target dimensions. The renderer calls this
	// from the device's surface size at the start of each frame.
	//
	// Parameters:
	//   - width: viewport width in pixels
	//   - height: viewport height in pixels
	SetViewport(width, height uint32)

	// Encoder returns the command encoder passes record into this frame, or
	// nil outside a frame.
	Encoder() device.CommandEncoder

	// SetEncoder installs the active command encoder for this frame. The
	// renderer sets it before pipeline execution and clears it after submit.
	//
	// Parameters:
	//   - enc: the frame's command encoder, or nil to clear
	SetEncoder(enc device.CommandEncoder)

	// FrameData returns the GPU-layout record for the per-frame camera and
	// timing uniform block.
	FrameData() FrameData

	// LightData returns the GPU-layout record for the lighting uniform block:
	// ambient, fog, table counts, and the fixed-capacity light tables.
	LightData() LightData

	// ShadowData returns the GPU-layout record for the shadow uniform block.
	ShadowData() ShadowData
}

var _ Context = &contextImpl{}

// Defaults for the directional-light shadow projection: an orthographic
// box of defaultShadowHalfExtent world units around the camera focus,
// clipped to [defaultShadowNear, defaultShadowFar], with a constant depth
// bias to suppress shadow acne.
const (
	defaultShadowHalfExtent float32 = 40.0
	defaultShadowNear       float32 = 0.1
	defaultShadowFar        float32 = 200.0
	defaultShadowBias       float32 = 0.001
)

// NewContext creates a new render context with the provided options applied.
//
// Parameters:
//   - options: a variadic list of options to configure the context
//
// Returns:
//   - Context: a new Context instance
func NewContext(options ...ContextOption) Context {
	c := &contextImpl{
		now:              time.Now,
		shadowHalfExtent: defaultShadowHalfExtent,
		shadowNear:       defaultShadowNear,
		shadowFar:        defaultShadowFar,
	}
	for _, option := range options {
		option(c)
	}
	common.Identity(c.viewMatrix[:])
	common.Identity(c.projectionMatrix[:])
	common.Identity(c.viewProjectionMatrix[:])
	common.Identity(c.inverseViewMatrix[:])
	common.Identity(c.inverseProjectionMatrix[:])
	common.Identity(c.skyViewProjection[:])
	common.Identity(c.shadowViewProjection[:])
	c.startTime = c.now()
	c.lastUpdate = c.startTime
	return c
}

func (c *contextImpl) Update(cam camera.Camera, scn scene.Scene) {
	t := c.now()
	c.time = float32(t.Sub(c.startTime).Seconds())
	if c.started {
		c.deltaTime = float32(t.Sub(c.lastUpdate).Seconds())
	} else {
		c.deltaTime = 0
		c.started = true
	}
	c.lastUpdate = t
	c.frameCount++

	c.snapshotCamera(cam)
	c.snapshotScene(scn)
	c.updateShadowMatrix()
}

// snapshotCamera copies the camera's matrices and derives the inverses and
// the translation-free sky view-projection.
func (c *contextImpl) snapshotCamera(cam camera.Camera) {
	if cam == nil {
		common.Identity(c.viewMatrix[:])
		common.Identity(c.projectionMatrix[:])
		common.Identity(c.viewProjectionMatrix[:])
		common.Identity(c.inverseViewMatrix[:])
		common.Identity(c.inverseProjectionMatrix[:])
		common.Identity(c.skyViewProjection[:])
		c.cameraPosition = [3]float32{}
		c.cameraForward = [3]float32{0, 0, -1}
		return
	}

	c.viewMatrix = cam.ViewMatrix()
	c.projectionMatrix = cam.ProjectionMatrix()
	c.viewProjectionMatrix = cam.ViewProjectionMatrix()
	c.inverseProjectionMatrix = cam.InverseProjectionMatrix()
	if !common.Invert4(c.inverseViewMatrix[:], c.viewMatrix[:]) {
		common.Identity(c.inverseViewMatrix[:])
	}

	var rotOnly [16]float32
	common.StripTranslation(rotOnly[:], c.viewMatrix[:])
	common.Mul4(c.skyViewProjection[:], c.projectionMatrix[:], rotOnly[:])

	x, y, z := cam.Position()
	c.cameraPosition = [3]float32{x, y, z}
	c.cameraForward = cam.Forward()
}

// snapshotScene rebuilds the light tables and copies the scene environment.
// This is the one O(lights) step of Update.
func (c *contextImpl) snapshotScene(scn scene.Scene) {
	if scn == nil {
		c.directional = nil
		c.point = nil
		c.spot = nil
		c.shadowCaster = nil
		c.ambientColor = [3]float32{}
		c.ambientIntensity = 0
		c.fogColor = [3]float32{}
		c.fogDensity = 0
		c.skyboxEnabled = false
		c.zenithColor = [3]float32{}
		c.horizonColor = [3]float32{}
		return
	}

	lights := scn.Lights()
	c.directional, c.point, c.spot = light.BuildTables(lights)
	c.shadowCaster = light.FirstShadowCaster(lights)

	c.ambientColor, c.ambientIntensity = scn.Ambient()
	c.fogColor, c.fogDensity = scn.Fog()
	c.skyboxEnabled = scn.SkyboxEnabled()
	c.zenithColor, c.horizonColor = scn.SkyColors()
}

// updateShadowMatrix rebuilds the light-space view-projection for the frame's
// shadow caster. The orthographic volume is centered on the camera position so
// the shadow map follows the viewer through the world.
func (c *contextImpl) updateShadowMatrix() {
	if c.shadowCaster == nil {
		common.Identity(c.shadowViewProjection[:])
		return
	}

	dir := c.shadowCaster.Direction()
	center := c.cameraPosition
	distance := (c.shadowNear + c.shadowFar) * 0.5
	eye := [3]float32{
		center[0] - dir[0]*distance,
		center[1] - dir[1]*distance,
		center[2] - dir[2]*distance,
	}

	up := [3]float32{0, 1, 0}
	if dir[0] == 0 && dir[2] == 0 {
		// Light looks straight down (or up); a Y up vector would degenerate.
		up = [3]float32{0, 0, 1}
	}

	var view, proj [16]float32
	common.LookAt(view[:],
		eye[0], eye[1], eye[2],
		center[0], center[1], center[2],
		up[0], up[1], up[2],
	)
	common.Orthographic(proj[:], c.shadowHalfExtent, c.shadowNear, c.shadowFar)
	common.Mul4(c.shadowViewProjection[:], proj[:], view[:])
}

func (c *contextImpl) FrameCount() uint64 {
	return c.frameCount
}

func (c *contextImpl) Time() float32 {
	return c.time
}

func (c *contextImpl) DeltaTime() float32 {
	return c.deltaTime
}

func (c *contextImpl) ViewMatrix() [16]float32 {
	return c.viewMatrix
}

func (c *contextImpl) ProjectionMatrix() [16]float32 {
	return c.projectionMatrix
}

func (c *contextImpl) ViewProjectionMatrix() [16]float32 {
	return c.viewProjectionMatrix
}

func (c *contextImpl) InverseViewMatrix() [16]float32 {
	return c.inverseViewMatrix
}

func (c *contextImpl) InverseProjectionMatrix() [16]float32 {
	return c.inverseProjectionMatrix
}

func (c *contextImpl) SkyViewProjectionMatrix() [16]float32 {
	return c.skyViewProjection
}

func (c *contextImpl) CameraPosition() [3]float32 {
	return c.cameraPosition
}

func (c *contextImpl) CameraForward() [3]float32 {
	return c.cameraForward
}

func (c *contextImpl) DirectionalLights() []light.DirectionalLightData {
	return c.directional
}

func (c *contextImpl) PointLights() []light.PointLightData {
	return c.point
}

func (c *contextImpl) SpotLights() []light.SpotLightData {
	return c.spot
}

func (c *contextImpl) ShadowCaster() light.Light {
	return c.shadowCaster
}

func (c *contextImpl) ShadowViewProjectionMatrix() [16]float32 {
	return c.shadowViewProjection
}

func (c *contextImpl) Ambient() ([3]float32, float32) {
	return c.ambientColor, c.ambientIntensity
}

func (c *contextImpl) Fog() ([3]float32, float32) {
	return c.fogColor, c.fogDensity
}

func (c *contextImpl) SkyboxEnabled() bool {
	return c.skyboxEnabled
}

func (c *contextImpl) SkyColors() (zenith, horizon [3]float32) {
	return c.zenithColor, c.horizonColor
}

func (c *contextImpl) Viewport() (width, height uint32) {
	return c.viewportWidth, c.viewportHeight
}

func (c *contextImpl) SetViewport(width, height uint32) {
	c.viewportWidth = width
	c.viewportHeight = height
}

func (c *contextImpl) Encoder() device.CommandEncoder {
	return c.encoder
}

func (c *contextImpl) SetEncoder(enc device.CommandEncoder) {
	c.encoder = enc
}
