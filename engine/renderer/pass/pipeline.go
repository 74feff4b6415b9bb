package pass

import (
	"fmt"

	"github.com/forge3d/forge/engine/renderer/context"
	"github.com/forge3d/forge/engine/renderer/device"
	"github.com/forge3d/forge/engine/renderer/queue"
)

// pipelineImpl is the implementation of the Pipeline interface.
type pipelineImpl struct {
	name    string
	globals *Globals
	passes  []Pass

	prepare  func(ctx context.Context, q queue.Queue)
	finalize func(ctx context.Context, q queue.Queue)

	dev         device.Device
	initialized bool
	destroyed   bool
	stats       Stats
}

// Pipeline is an ordered list of render passes. It owns the pass lifecycle
// (initialize, execute, destroy) and the shared globals, and aggregates every
// enabled pass's statistics into frame totals. Passes execute in insertion
// order; that order is a correctness requirement (the shadow map must exist
// before the opaque pass samples it), not a preference.
type Pipeline interface {
	// Name returns the pipeline name used in labels and logs.
	Name() string

	// Initialize initializes the shared globals, then every pass in insertion
	// order. On the first failure the pipeline aborts without rolling back
	// passes that already initialized; the caller's error path must Destroy.
	//
	// Parameters:
	//   - dev: the graphics device
	//
	// Returns:
	//   - error: the first initialization failure, or nil
	Initialize(dev device.Device) error

	// Execute runs one frame: the prepare hook, then every enabled pass in
	// order, then the finalize hook. Disabled passes are skipped entirely and
	// contribute nothing to the frame's statistics. Panics if the pipeline
	// was never initialized or already destroyed.
	//
	// Parameters:
	//   - ctx: the updated render context
	//   - q: the built render queue
	//
	// Returns:
	//   - error: the first device-level pass failure, or nil
	Execute(ctx context.Context, q queue.Queue) error

	// Destroy destroys every pass in reverse order, then the globals.
	Destroy()

	// Passes returns the pass list in execution order.
	Passes() []Pass

	// Pass returns the pass with the given name, or nil.
	//
	// Parameters:
	//   - name: the pass name
	//
	// Returns:
	//   - Pass: the matching pass or nil
	Pass(name string) Pass

	// Stats returns the aggregated totals of the most recent Execute.
	Stats() Stats

	// Globals returns the shared pass globals.
	Globals() *Globals
}

var _ Pipeline = &pipelineImpl{}

// NewPipeline creates a new Pipeline with the provided options.
//
// Parameters:
//   - name: the pipeline name
//   - options: a variadic list of options to configure the pipeline
//
// Returns:
//   - Pipeline: a new instance of Pipeline configured with the provided options
func NewPipeline(name string, options ...PipelineOption) Pipeline {
	p := &pipelineImpl{
		name:    name,
		globals: NewGlobals(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *pipelineImpl) Name() string {
	return p.name
}

func (p *pipelineImpl) Initialize(dev device.Device) error {
	if p.destroyed {
		panic(fmt.Sprintf("render pipeline %q: initialize after destroy", p.name))
	}
	if p.initialized {
		return nil
	}
	p.dev = dev

	if err := p.globals.Initialize(dev); err != nil {
		return fmt.Errorf("pipeline %s: %w", p.name, err)
	}
	width, height := dev.SurfaceSize()
	if err := p.globals.EnsureTargets(dev, width, height); err != nil {
		return fmt.Errorf("pipeline %s: %w", p.name, err)
	}

	for _, pass := range p.passes {
		if err := pass.Initialize(dev); err != nil {
			return fmt.Errorf("pipeline %s: initialize pass %s: %w", p.name, pass.Name(), err)
		}
	}

	p.initialized = true
	return nil
}

func (p *pipelineImpl) Execute(ctx context.Context, q queue.Queue) error {
	if !p.initialized || p.destroyed {
		panic(fmt.Sprintf("render pipeline %q: execute without initialization", p.name))
	}
	p.stats = Stats{}

	if p.prepare != nil {
		p.prepare(ctx, q)
	}

	width, height := ctx.Viewport()
	if err := p.globals.EnsureTargets(p.dev, int(width), int(height)); err != nil {
		return fmt.Errorf("pipeline %s: %w", p.name, err)
	}
	p.globals.Update(p.dev, ctx)

	for _, pass := range p.passes {
		if !pass.Enabled() {
			continue
		}
		if err := pass.Execute(ctx, q); err != nil {
			return fmt.Errorf("pipeline %s: pass %s: %w", p.name, pass.Name(), err)
		}
		p.stats.Add(pass.Stats())
	}

	if p.finalize != nil {
		p.finalize(ctx, q)
	}
	return nil
}

func (p *pipelineImpl) Destroy() {
	if p.destroyed {
		return
	}
	for i := len(p.passes) - 1; i >= 0; i-- {
		p.passes[i].Destroy()
	}
	p.globals.Destroy()
	p.destroyed = true
	p.initialized = false
	p.dev = nil
}

func (p *pipelineImpl) Passes() []Pass {
	return p.passes
}

func (p *pipelineImpl) Pass(name string) Pass {
	for _, pass := range p.passes {
		if pass.Name() == name {
			return pass
		}
	}
	return nil
}

func (p *pipelineImpl) Stats() Stats {
	return p.stats
}

func (p *pipelineImpl) Globals() *Globals {
	return p.globals
}
