package renderer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "bad shadow quality", mutate: func(c *Config) { c.ShadowQuality = "cinematic" }, wantErr: true},
		{name: "bad tonemap", mutate: func(c *Config) { c.Tonemap = "hdr10" }, wantErr: true},
		{name: "bad anti-aliasing", mutate: func(c *Config) { c.AntiAliasing = "smaa" }, wantErr: true},
		{name: "instance cap too small", mutate: func(c *Config) { c.MaxInstanceCount = 1 }, wantErr: true},
		{name: "zero batch size", mutate: func(c *Config) { c.MaxBatchSize = 0 }, wantErr: true},
		{name: "negative render distance", mutate: func(c *Config) { c.MaxRenderDistance = -1 }, wantErr: true},
		{name: "all tiers", mutate: func(c *Config) { c.ShadowQuality = ShadowQualityUltra }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigShadowResolution(t *testing.T) {
	tests := []struct {
		quality string
		want    int
	}{
		{ShadowQualityLow, 512},
		{ShadowQualityMedium, 1024},
		{ShadowQualityHigh, 2048},
		{ShadowQualityUltra, 4096},
	}
	for _, tt := range tests {
		cfg := Config{ShadowQuality: tt.quality}
		if got := cfg.ShadowResolution(); got != tt.want {
			t.Errorf("ShadowResolution(%s) = %d, want %d", tt.quality, got, tt.want)
		}
	}
}

func TestConfigEffectChain(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tonemap = TonemapLinear
	cfg.AntiAliasing = AANone
	if got := cfg.effectChain(); len(got) != 0 {
		t.Errorf("linear tonemap without AA built %d effects, want 0", len(got))
	}

	cfg.Tonemap = TonemapReinhard
	cfg.AntiAliasing = AAFXAA
	got := cfg.effectChain()
	if len(got) != 2 {
		t.Fatalf("reinhard + fxaa built %d effects, want 2", len(got))
	}
	if got[0].Name != "tonemap" || got[1].Name != "fxaa" {
		t.Errorf("effect order = %s, %s; want tonemap, fxaa", got[0].Name, got[1].Name)
	}

	// MSAA is a device concern, not an effect.
	cfg.Tonemap = TonemapLinear
	cfg.AntiAliasing = AAMSAA
	if got := cfg.effectChain(); len(got) != 0 {
		t.Errorf("msaa built %d effects, want 0", len(got))
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("FORGE_SHADOW_QUALITY", "low")
	t.Setenv("FORGE_BATCHING", "false")
	t.Setenv("FORGE_MAX_INSTANCE_COUNT", "16")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.ShadowQuality != ShadowQualityLow {
		t.Errorf("ShadowQuality = %q, want low", cfg.ShadowQuality)
	}
	if cfg.Batching {
		t.Error("FORGE_BATCHING=false did not disable batching")
	}
	if cfg.MaxInstanceCount != 16 {
		t.Errorf("MaxInstanceCount = %d, want 16", cfg.MaxInstanceCount)
	}
	// Untouched fields keep their env defaults.
	if !cfg.FrustumCulling {
		t.Error("FrustumCulling lost its default")
	}
	if cfg.Tonemap != TonemapACES {
		t.Errorf("Tonemap = %q, want default aces", cfg.Tonemap)
	}
}

func TestConfigMergeYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renderer.yaml")
	doc := "shadow-quality: ultra\nmax-batch-size: 32\ndepth-prepass: true\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := DefaultConfig()
	if err := cfg.MergeYAMLFile(path); err != nil {
		t.Fatalf("MergeYAMLFile: %v", err)
	}
	if cfg.ShadowQuality != ShadowQualityUltra {
		t.Errorf("ShadowQuality = %q, want ultra", cfg.ShadowQuality)
	}
	if cfg.MaxBatchSize != 32 {
		t.Errorf("MaxBatchSize = %d, want 32", cfg.MaxBatchSize)
	}
	if !cfg.DepthPrepass {
		t.Error("depth-prepass overlay did not apply")
	}
	// Fields absent from the file keep their values.
	if cfg.MaxInstanceCount != 64 {
		t.Errorf("MaxInstanceCount = %d, want untouched 64", cfg.MaxInstanceCount)
	}

	if err := cfg.MergeYAMLFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("merging a missing file must fail")
	}
}
