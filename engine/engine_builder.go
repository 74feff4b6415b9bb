package engine

import (
	"time"

	"github.com/forge3d/forge/engine/scene"
)

// EngineOption is a functional option applied to an engine during
// construction via NewEngine.
type EngineOption func(*engineImpl)

// WithProfiling enables or disables frame profile logging.
//
// Parameters:
//   - enabled: if true, a frame profile is logged once per second
//
// Returns:
//   - EngineOption: a function that applies the profiling option to an engine
func WithProfiling(enabled bool) EngineOption {
	return func(e *engineImpl) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in ticks per second. Values <= 0
// keep the 60Hz default.
//
// Parameters:
//   - fps: target ticks per second
//
// Returns:
//   - EngineOption: a function that applies the tick rate option to an engine
func WithTickRate(fps float64) EngineOption {
	return func(e *engineImpl) {
		if fps <= 0 {
			return
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithScene sets the initial active scene.
//
// Parameters:
//   - s: the scene to render
//
// Returns:
//   - EngineOption: a function that applies the scene option to an engine
func WithScene(s scene.Scene) EngineOption {
	return func(e *engineImpl) {
		e.scn = s
	}
}

// WithRenderFrameLimit caps the render loop in frames per second. Pass 0 to
// uncap (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineOption: a function that applies the frame limit option to an engine
func WithRenderFrameLimit(fps float64) EngineOption {
	return func(e *engineImpl) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}
