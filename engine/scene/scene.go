// Package scene holds the retained world description the renderer consumes:
// placeable objects, lights, a camera, and environment settings. A Scene is a
// registry, not a graph — ordering decisions happen in the render queue, not
// here.
package scene

import (
	"sync"

	"github.com/forge3d/forge/engine/camera"
	"github.com/forge3d/forge/engine/light"
)

// sceneImpl is the unexported implementation of Scene.
type sceneImpl struct {
	mu *sync.Mutex

	name   string
	active bool

	cam     camera.Camera
	objects map[uint64]Object
	lights  []light.Light

	ambientColor     [3]float32
	ambientIntensity float32

	fogColor   [3]float32
	fogDensity float32

	skyboxEnabled bool
	zenithColor   [3]float32
	horizonColor  [3]float32
}

// Scene manages a registry of Objects and Lights with a Camera and
// environment settings (ambient light, fog, sky). Scenes can be hot-swapped
// via the Active flag to switch between different views or levels.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Add adds an Object to the scene's registry.
	//
	// Parameters:
	//   - obj: the Object to add
	//
	// Returns:
	//   - uint64: the object's ID
	Add(obj Object) uint64

	// Get retrieves an Object by its ID.
	// Returns nil if not found.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - Object: the object or nil
	Get(id uint64) Object

	// Remove removes an Object from the registry by its ID.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - bool: true if an object was removed
	Remove(id uint64) bool

	// Count returns the number of Objects in the scene's registry.
	//
	// Returns:
	//   - int: count of Objects
	Count() int

	// Drawables returns a snapshot of all registered objects as Drawables.
	// The slice is owned by the caller; the scene can be mutated freely after
	// the call without affecting it.
	//
	// Returns:
	//   - []Drawable: the drawable snapshot
	Drawables() []Drawable

	// AddLight adds a Light to the scene.
	//
	// Parameters:
	//   - l: the light to add
	AddLight(l light.Light)

	// Lights returns a snapshot of the scene's lights.
	//
	// Returns:
	//   - []light.Light: the light snapshot
	Lights() []light.Light

	// ClearLights removes all lights from the scene.
	ClearLights()

	// Ambient returns the ambient light color and intensity.
	//
	// Returns:
	//   - [3]float32: the ambient RGB color
	//   - float32: the ambient intensity
	Ambient() ([3]float32, float32)

	// SetAmbient sets the ambient light color and intensity.
	//
	// Parameters:
	//   - color: the ambient RGB color
	//   - intensity: the ambient intensity
	SetAmbient(color [3]float32, intensity float32)

	// Fog returns the fog color and density. A density of zero disables fog.
	//
	// Returns:
	//   - [3]float32: the fog RGB color
	//   - float32: the fog density
	Fog() ([3]float32, float32)

	// SetFog sets the fog color and density.
	//
	// Parameters:
	//   - color: the fog RGB color
	//   - density: the fog density (0 disables fog)
	SetFog(color [3]float32, density float32)

	// SkyboxEnabled returns whether the sky is drawn behind the scene.
	//
	// Returns:
	//   - bool: true if the skybox pass runs
	SkyboxEnabled() bool

	// SetSkyboxEnabled sets whether the sky is drawn behind the scene.
	//
	// Parameters:
	//   - enabled: true to draw the sky
	SetSkyboxEnabled(enabled bool)

	// SkyColors returns the procedural sky gradient colors.
	//
	// Returns:
	//   - zenith: the RGB color straight up
	//   - horizon: the RGB color at the horizon
	SkyColors() (zenith, horizon [3]float32)

	// SetSkyColors sets the procedural sky gradient colors.
	//
	// Parameters:
	//   - zenith: the RGB color straight up
	//   - horizon: the RGB color at the horizon
	SetSkyColors(zenith, horizon [3]float32)
}

var _ Scene = &sceneImpl{}

// NewScene creates a new Scene with the provided options. The scene starts
// active with a dim white ambient term, no fog, and the skybox enabled.
//
// Parameters:
//   - options: a variadic list of options to configure the scene
//
// Returns:
//   - Scene: a new instance of Scene configured with the provided options
func NewScene(options ...SceneOption) Scene {
	s := &sceneImpl{
		mu:               &sync.Mutex{},
		active:           true,
		objects:          make(map[uint64]Object),
		ambientColor:     [3]float32{1, 1, 1},
		ambientIntensity: 0.1,
		skyboxEnabled:    true,
		zenithColor:      [3]float32{0.2, 0.4, 0.8},
		horizonColor:     [3]float32{0.7, 0.8, 0.9},
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *sceneImpl) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *sceneImpl) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *sceneImpl) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *sceneImpl) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *sceneImpl) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cam
}

func (s *sceneImpl) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *sceneImpl) Add(obj Object) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[obj.ID()] = obj
	return obj.ID()
}

func (s *sceneImpl) Get(id uint64) Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[id]
}

func (s *sceneImpl) Remove(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[id]; !ok {
		return false
	}
	delete(s.objects, id)
	return true
}

func (s *sceneImpl) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *sceneImpl) Drawables() []Drawable {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Drawable, 0, len(s.objects))
	for _, obj := range s.objects {
		out = append(out, obj)
	}
	return out
}

func (s *sceneImpl) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *sceneImpl) Lights() []light.Light {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]light.Light, len(s.lights))
	copy(out, s.lights)
	return out
}

func (s *sceneImpl) ClearLights() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = nil
}

func (s *sceneImpl) Ambient() ([3]float32, float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ambientColor, s.ambientIntensity
}

func (s *sceneImpl) SetAmbient(color [3]float32, intensity float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ambientColor = color
	s.ambientIntensity = intensity
}

func (s *sceneImpl) Fog() ([3]float32, float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fogColor, s.fogDensity
}

func (s *sceneImpl) SetFog(color [3]float32, density float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fogColor = color
	s.fogDensity = density
}

func (s *sceneImpl) SkyboxEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skyboxEnabled
}

func (s *sceneImpl) SetSkyboxEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skyboxEnabled = enabled
}

func (s *sceneImpl) SkyColors() (zenith, horizon [3]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zenithColor, s.horizonColor
}

func (s *sceneImpl) SetSkyColors(zenith, horizon [3]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zenithColor = zenith
	s.horizonColor = horizon
}
