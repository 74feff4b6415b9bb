package renderer

import (
	"github.com/forge3d/forge/engine/renderer/context"
	"github.com/forge3d/forge/engine/renderer/pass"
	"github.com/forge3d/forge/engine/renderer/queue"
)

// RendererOption is a functional option applied to a renderer during
// construction via NewRenderer.
type RendererOption func(*rendererImpl)

// WithConfig sets the renderer configuration. Queue and pipeline options are
// only applied when the queue/pipeline are not supplied explicitly.
//
// Parameters:
//   - cfg: the configuration to use
//
// Returns:
//   - RendererOption: a function that applies the config option to a renderer
func WithConfig(cfg Config) RendererOption {
	return func(r *rendererImpl) {
		r.cfg = cfg
	}
}

// WithPipeline replaces the config-derived pass pipeline. The renderer takes
// ownership and initializes and destroys it.
//
// Parameters:
//   - p: the pipeline to use
//
// Returns:
//   - RendererOption: a function that applies the pipeline option to a renderer
func WithPipeline(p pass.Pipeline) RendererOption {
	return func(r *rendererImpl) {
		r.pipeline = p
	}
}

// WithQueue replaces the config-derived render queue.
//
// Parameters:
//   - q: the queue to use
//
// Returns:
//   - RendererOption: a function that applies the queue option to a renderer
func WithQueue(q queue.Queue) RendererOption {
	return func(r *rendererImpl) {
		r.queue = q
	}
}

// WithContext replaces the default render context, for callers that need
// custom clock or shadow projection settings.
//
// Parameters:
//   - ctx: the render context to use
//
// Returns:
//   - RendererOption: a function that applies the context option to a renderer
func WithContext(ctx context.Context) RendererOption {
	return func(r *rendererImpl) {
		r.ctx = ctx
	}
}

// WithCollectWorkers sets the worker count for the parallel scene collection
// phase, overriding the config and the CPU-derived default.
//
// Parameters:
//   - workers: the number of collection workers (must be positive to take effect)
//
// Returns:
//   - RendererOption: a function that applies the worker count option to a renderer
func WithCollectWorkers(workers int) RendererOption {
	return func(r *rendererImpl) {
		r.collectWorkers = workers
	}
}

// WithDeviceLostHandler registers a callback invoked when the device reports
// loss. The renderer skips frames after a loss; the handler decides whether
// to rebuild or shut down.
//
// Parameters:
//   - handler: the callback receiving a human-readable reason
//
// Returns:
//   - RendererOption: a function that applies the handler option to a renderer
func WithDeviceLostHandler(handler func(reason string)) RendererOption {
	return func(r *rendererImpl) {
		r.onLost = handler
	}
}
