package renderer

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/forge3d/forge/engine/renderer/pass"
	"gopkg.in/yaml.v3"
)

// Shadow quality tiers and the map resolutions they select.
const (
	ShadowQualityLow    = "low"
	ShadowQualityMedium = "medium"
	ShadowQualityHigh   = "high"
	ShadowQualityUltra  = "ultra"
)

// Anti-aliasing modes.
const (
	AANone = "none"
	AAFXAA = "fxaa"
	AAMSAA = "msaa"
)

// Tonemap curve names.
const (
	TonemapLinear     = "linear"
	TonemapReinhard   = "reinhard"
	TonemapACES       = "aces"
	TonemapFilmic     = "filmic"
	TonemapUncharted2 = "uncharted2"
)

// Config is the renderer configuration surface. Fields are loaded from the
// environment (env tags) and can be overlaid from a YAML file; zero values
// fall back to the defaults from DefaultConfig.
type Config struct {
	// FrustumCulling rejects elements outside the camera frustum at AddElement.
	FrustumCulling bool `env:"FORGE_FRUSTUM_CULLING" envDefault:"true" yaml:"frustum-culling"`

	// MaxRenderDistance rejects elements farther than this from the camera.
	// Zero disables the distance check.
	MaxRenderDistance float32 `env:"FORGE_MAX_RENDER_DISTANCE" yaml:"max-render-distance"`

	// DistanceSorting orders opaque elements front-to-back and transparent
	// elements back-to-front.
	DistanceSorting bool `env:"FORGE_DISTANCE_SORTING" envDefault:"true" yaml:"distance-sorting"`

	// Batching merges adjacent state-compatible elements into batches.
	Batching bool `env:"FORGE_BATCHING" envDefault:"true" yaml:"batching"`

	// Instancing collapses identical mesh/material runs into instanced draws.
	Instancing bool `env:"FORGE_INSTANCING" envDefault:"true" yaml:"instancing"`

	// MaxInstanceCount caps the elements per instanced draw.
	MaxInstanceCount int `env:"FORGE_MAX_INSTANCE_COUNT" envDefault:"64" yaml:"max-instance-count"`

	// MaxBatchSize caps the elements per batch.
	MaxBatchSize int `env:"FORGE_MAX_BATCH_SIZE" envDefault:"128" yaml:"max-batch-size"`

	// DepthPrepass runs a depth-only pass before opaque shading.
	DepthPrepass bool `env:"FORGE_DEPTH_PREPASS" yaml:"depth-prepass"`

	// Shadows enables the shadow map pass.
	Shadows bool `env:"FORGE_SHADOWS" envDefault:"true" yaml:"shadows"`

	// ShadowQuality selects the shadow map resolution: low, medium, high, ultra.
	ShadowQuality string `env:"FORGE_SHADOW_QUALITY" envDefault:"high" yaml:"shadow-quality"`

	// Tonemap selects the tone mapping curve: linear, reinhard, aces, filmic,
	// uncharted2. Linear skips the tonemap effect.
	Tonemap string `env:"FORGE_TONEMAP" envDefault:"aces" yaml:"tonemap"`

	// AntiAliasing selects the AA mode: none, fxaa, msaa. FXAA runs as a
	// post-process effect; MSAA is applied when creating the device.
	AntiAliasing string `env:"FORGE_ANTI_ALIASING" envDefault:"none" yaml:"anti-aliasing"`

	// CollectWorkers sets the worker count for parallel scene collection.
	// Zero picks a count based on the CPU count.
	CollectWorkers int `env:"FORGE_COLLECT_WORKERS" yaml:"collect-workers"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
//
// Returns:
//   - Config: the default configuration
func DefaultConfig() Config {
	return Config{
		FrustumCulling:   true,
		DistanceSorting:  true,
		Batching:         true,
		Instancing:       true,
		MaxInstanceCount: 64,
		MaxBatchSize:     128,
		Shadows:          true,
		ShadowQuality:    ShadowQualityHigh,
		Tonemap:          TonemapACES,
		AntiAliasing:     AANone,
	}
}

// ConfigFromEnv loads the configuration from FORGE_* environment variables on
// top of the defaults.
//
// Returns:
//   - Config: the loaded configuration
//   - error: an error if a variable fails to parse
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse renderer config from env: %w", err)
	}
	return cfg, nil
}

// MergeYAMLFile overlays settings from a YAML file onto the configuration.
// Fields absent from the file keep their current values.
//
// Parameters:
//   - path: the YAML file path
//
// Returns:
//   - error: an error if the file cannot be read or parsed
func (c *Config) MergeYAMLFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read renderer config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse renderer config %s: %w", path, err)
	}
	return nil
}

// Validate checks the enum-valued fields and numeric bounds.
//
// Returns:
//   - error: a description of the first invalid field, or nil
func (c *Config) Validate() error {
	switch c.ShadowQuality {
	case ShadowQualityLow, ShadowQualityMedium, ShadowQualityHigh, ShadowQualityUltra:
	default:
		return fmt.Errorf("invalid shadow quality %q", c.ShadowQuality)
	}
	switch c.Tonemap {
	case TonemapLinear, TonemapReinhard, TonemapACES, TonemapFilmic, TonemapUncharted2:
	default:
		return fmt.Errorf("invalid tonemap curve %q", c.Tonemap)
	}
	switch c.AntiAliasing {
	case AANone, AAFXAA, AAMSAA:
	default:
		return fmt.Errorf("invalid anti-aliasing mode %q", c.AntiAliasing)
	}
	if c.MaxInstanceCount < 2 {
		return fmt.Errorf("max instance count must be at least 2, got %d", c.MaxInstanceCount)
	}
	if c.MaxBatchSize < 1 {
		return fmt.Errorf("max batch size must be positive, got %d", c.MaxBatchSize)
	}
	if c.MaxRenderDistance < 0 {
		return fmt.Errorf("max render distance must not be negative, got %v", c.MaxRenderDistance)
	}
	return nil
}

// ShadowResolution maps the shadow quality tier to a map resolution in texels.
//
// Returns:
//   - int: the shadow map resolution
func (c *Config) ShadowResolution() int {
	switch c.ShadowQuality {
	case ShadowQualityLow:
		return 512
	case ShadowQualityMedium:
		return 1024
	case ShadowQualityUltra:
		return 4096
	default:
		return 2048
	}
}

// tonemapCurve maps the configured curve name to the pass-level enum.
func (c *Config) tonemapCurve() pass.TonemapCurve {
	switch c.Tonemap {
	case TonemapReinhard:
		return pass.TonemapReinhard
	case TonemapFilmic:
		return pass.TonemapFilmic
	case TonemapUncharted2:
		return pass.TonemapUncharted2
	case TonemapLinear:
		return pass.TonemapLinear
	default:
		return pass.TonemapACES
	}
}

// effectChain derives the post-process effect chain from the configuration.
// An empty chain means the post-process pass is omitted entirely and the
// scene passes render straight to the surface.
func (c *Config) effectChain() []pass.Effect {
	var effects []pass.Effect
	if c.Tonemap != TonemapLinear {
		effects = append(effects, pass.TonemapEffect(c.tonemapCurve()))
	}
	if c.AntiAliasing == AAFXAA {
		effects = append(effects, pass.FXAAEffect())
	}
	return effects
}
