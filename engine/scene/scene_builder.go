package scene

import (
	"github.com/forge3d/forge/engine/camera"
	"github.com/forge3d/forge/engine/light"
)

// SceneOption is a functional option used to configure a Scene during construction.
type SceneOption func(*sceneImpl)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneOption: a function that sets the name for this scene
func WithName(name string) SceneOption {
	return func(s *sceneImpl) {
		s.name = name
	}
}

// WithCamera sets the scene's camera.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - SceneOption: a function that sets the camera for this scene
func WithCamera(cam camera.Camera) SceneOption {
	return func(s *sceneImpl) {
		s.cam = cam
	}
}

// WithLights adds lights to the scene.
//
// Parameters:
//   - lights: the lights to add
//
// Returns:
//   - SceneOption: a function that adds the lights to this scene
func WithLights(lights ...light.Light) SceneOption {
	return func(s *sceneImpl) {
		s.lights = append(s.lights, lights...)
	}
}

// WithAmbient sets the ambient light color and intensity.
//
// Parameters:
//   - color: the ambient RGB color
//   - intensity: the ambient intensity
//
// Returns:
//   - SceneOption: a function that sets the ambient term for this scene
func WithAmbient(color [3]float32, intensity float32) SceneOption {
	return func(s *sceneImpl) {
		s.ambientColor = color
		s.ambientIntensity = intensity
	}
}

// WithFog sets the fog color and density.
//
// Parameters:
//   - color: the fog RGB color
//   - density: the fog density (0 disables fog)
//
// Returns:
//   - SceneOption: a function that sets the fog for this scene
func WithFog(color [3]float32, density float32) SceneOption {
	return func(s *sceneImpl) {
		s.fogColor = color
		s.fogDensity = density
	}
}

// WithSkyColors sets the procedural sky gradient colors.
//
// Parameters:
//   - zenith: the RGB color straight up
//   - horizon: the RGB color at the horizon
//
// Returns:
//   - SceneOption: a function that sets the sky colors for this scene
func WithSkyColors(zenith, horizon [3]float32) SceneOption {
	return func(s *sceneImpl) {
		s.zenithColor = zenith
		s.horizonColor = horizon
	}
}

// WithoutSkybox disables the sky pass for this scene.
//
// Returns:
//   - SceneOption: a function that disables the skybox for this scene
func WithoutSkybox() SceneOption {
	return func(s *sceneImpl) {
		s.skyboxEnabled = false
	}
}
