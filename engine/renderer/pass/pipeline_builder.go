package pass

import (
	"github.com/forge3d/forge/engine/renderer/context"
	"github.com/forge3d/forge/engine/renderer/queue"
)

// PipelineOption is a function that configures a pipeline during construction.
type PipelineOption func(*pipelineImpl)

// WithGlobals replaces the pipeline's default globals. The pipeline takes
// ownership; the globals are initialized and destroyed with it.
//
// Parameters:
//   - globals: the globals to install
//
// Returns:
//   - PipelineOption: a function that sets the globals on the pipeline
func WithGlobals(globals *Globals) PipelineOption {
	return func(p *pipelineImpl) {
		if globals != nil {
			p.globals = globals
		}
	}
}

// WithPasses appends passes to the pipeline in execution order.
//
// Parameters:
//   - passes: the passes to append
//
// Returns:
//   - PipelineOption: a function that appends the passes to the pipeline
func WithPasses(passes ...Pass) PipelineOption {
	return func(p *pipelineImpl) {
		p.passes = append(p.passes, passes...)
	}
}

// WithPrepare installs a hook run at the start of every Execute, before any
// pass. Intended for per-frame queue configuration.
//
// Parameters:
//   - hook: the prepare hook
//
// Returns:
//   - PipelineOption: a function that sets the hook on the pipeline
func WithPrepare(hook func(ctx context.Context, q queue.Queue)) PipelineOption {
	return func(p *pipelineImpl) {
		p.prepare = hook
	}
}

// WithFinalize installs a hook run at the end of every Execute, after all
// passes. Intended for temporary-resource release.
//
// Parameters:
//   - hook: the finalize hook
//
// Returns:
//   - PipelineOption: a function that sets the hook on the pipeline
func WithFinalize(hook func(ctx context.Context, q queue.Queue)) PipelineOption {
	return func(p *pipelineImpl) {
		p.finalize = hook
	}
}
