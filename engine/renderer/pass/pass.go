// Package pass implements the render stages that compose one frame: depth
// prepass, shadow, opaque, skybox, transparent, and post-process, plus the
// pipeline that owns their lifecycle and execution order. Every pass follows
// the same state machine (Uninitialized → Initializing → Ready → Executing →
// Destroyed) and the same execution shape: pull a queue subset, open one
// render-pass recording scope, bind per-frame globals, then iterate the
// drawable sequence issuing state changes only on transitions.
package pass

import (
	"fmt"

	"github.com/forge3d/forge/engine/renderer/context"
	"github.com/forge3d/forge/engine/renderer/device"
	"github.com/forge3d/forge/engine/renderer/queue"
)

// State is the lifecycle state of a render pass.
type State int

const (
	// StateUninitialized is the state of a freshly constructed pass.
	StateUninitialized State = iota

	// StateInitializing is the transient state while GPU resources are created.
	StateInitializing

	// StateReady means the pass can be executed.
	StateReady

	// StateExecuting is the transient state while the pass records commands.
	StateExecuting

	// StateDestroyed is terminal; a destroyed pass must never execute again.
	StateDestroyed
)

// String returns the state name for lifecycle violation messages.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateExecuting:
		return "executing"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Stats counts the work one pass (or a whole pipeline) performed in a frame.
type Stats struct {
	DrawCalls       int
	Triangles       int
	Vertices        int
	StateChanges    int
	TextureBindings int
	BufferBindings  int
}

// Add accumulates another stats record into this one.
//
// Parameters:
//   - other: the stats to add
func (s *Stats) Add(other Stats) {
	s.DrawCalls += other.DrawCalls
	s.Triangles += other.Triangles
	s.Vertices += other.Vertices
	s.StateChanges += other.StateChanges
	s.TextureBindings += other.TextureBindings
	s.BufferBindings += other.BufferBindings
}

// IsZero reports whether no work was recorded.
//
// Returns:
//   - bool: true if every counter is zero
func (s Stats) IsZero() bool {
	return s == Stats{}
}

// Pass is one stage of frame rendering. Passes are created once, initialized
// by the owning pipeline, executed once per frame while Ready, and destroyed
// with the pipeline. Executing a pass before Ready or after Destroyed is a
// lifecycle bug in the owner and panics rather than returning an error.
type Pass interface {
	// Name returns the pass name used in labels and logs.
	Name() string

	// Initialize creates the pass's GPU resources and registers its pipeline
	// states, transitioning Uninitialized → Ready.
	//
	// Parameters:
	//   - dev: the graphics device
	//
	// Returns:
	//   - error: an error if resource creation fails; the pass stays unusable
	Initialize(dev device.Device) error

	// Execute records this pass's commands for the frame. Panics if the pass
	// is not Ready. Per-element problems are skipped and logged; only
	// device-level failures are returned.
	//
	// Parameters:
	//   - ctx: the frame's render context
	//   - q: the built render queue
	//
	// Returns:
	//   - error: a device-level error, or nil
	Execute(ctx context.Context, q queue.Queue) error

	// Destroy releases the pass's GPU resources and transitions to Destroyed.
	Destroy()

	// SetEnabled toggles the pass. A disabled pass is skipped by the pipeline
	// and contributes zero statistics; its lifecycle state is untouched.
	//
	// Parameters:
	//   - enabled: true to run the pass
	SetEnabled(enabled bool)

	// Enabled returns whether the pass runs during pipeline execution.
	Enabled() bool

	// State returns the pass's lifecycle state.
	State() State

	// Stats returns the work recorded during the most recent Execute.
	Stats() Stats
}

// passCore carries the lifecycle state machine and statistics shared by all
// concrete passes. Embedded, not exported.
type passCore struct {
	name    string
	state   State
	enabled bool
	stats   Stats
	dev     device.Device
}

func newPassCore(name string) passCore {
	return passCore{
		name:    name,
		state:   StateUninitialized,
		enabled: true,
	}
}

func (p *passCore) Name() string {
	return p.name
}

func (p *passCore) State() State {
	return p.state
}

func (p *passCore) Enabled() bool {
	return p.enabled
}

func (p *passCore) SetEnabled(enabled bool) {
	p.enabled = enabled
}

func (p *passCore) Stats() Stats {
	return p.stats
}

// beginInitialize transitions to Initializing. Initializing twice or after
// destruction is a lifecycle bug.
func (p *passCore) beginInitialize(dev device.Device) {
	if p.state != StateUninitialized {
		panic(fmt.Sprintf("render pass %q: initialize called in state %s", p.name, p.state))
	}
	p.state = StateInitializing
	p.dev = dev
}

func (p *passCore) finishInitialize() {
	p.state = StateReady
}

// beginExecute enforces the Ready precondition and resets the frame's stats.
func (p *passCore) beginExecute() {
	if p.state != StateReady {
		panic(fmt.Sprintf("render pass %q: execute called in state %s, want ready", p.name, p.state))
	}
	p.state = StateExecuting
	p.stats = Stats{}
}

func (p *passCore) finishExecute() {
	p.state = StateReady
}

func (p *passCore) markDestroyed() {
	p.state = StateDestroyed
	p.dev = nil
}
