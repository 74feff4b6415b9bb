// Package engine coordinates the frame loop: a fixed-rate tick goroutine for
// game logic, a render goroutine driving the Renderer once per frame, and the
// window message loop on the calling thread.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/forge3d/forge/engine/profiler"
	"github.com/forge3d/forge/engine/renderer"
	"github.com/forge3d/forge/engine/scene"
	"github.com/forge3d/forge/engine/window"
)

// engineImpl implements the Engine interface.
type engineImpl struct {
	tickRateChannel chan time.Duration

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window window.Window
	r      renderer.Renderer

	prof             *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	mu  sync.Mutex
	scn scene.Scene

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point: it owns the window, the renderer, and the
// active scene, and runs the tick and render loops until the window closes.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer driving the frames.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// SetScene replaces the active scene. Takes effect at the next frame.
	//
	// Parameters:
	//   - s: the scene to render (nil clears the active scene)
	SetScene(s scene.Scene)

	// Scene returns the active scene, or nil.
	Scene() scene.Scene

	// EnableProfiler enables per-interval frame profile logging.
	EnableProfiler()

	// DisableProfiler disables frame profile logging.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second. The tick
	// callback is called at this rate for game logic updates; changes take
	// effect immediately while running.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick. Use
	// this for game logic, input processing, and animation updates.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers a function called each render frame after
	// the scene is drawn.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit caps the render loop in frames per second.
	// Pass 0 to uncap (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the tick and render loops and blocks in the window message
	// loop until the window closes or Quit is called.
	Run()

	// Quit signals all engine goroutines to stop. Safe to call multiple
	// times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engineImpl{}

// NewEngine creates an engine over a window and a renderer. Panics if either
// is nil. The window's resize events are forwarded to the renderer and the
// active scene's camera aspect ratio.
//
// Parameters:
//   - w: the window (must not be nil)
//   - r: the renderer (must not be nil)
//   - options: a variadic list of options to configure the engine
//
// Returns:
//   - Engine: the new engine
func NewEngine(w window.Window, r renderer.Renderer, options ...EngineOption) Engine {
	if w == nil {
		panic("engine: NewEngine requires a non-nil Window")
	}
	if r == nil {
		panic("engine: NewEngine requires a non-nil Renderer")
	}

	e := &engineImpl{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		window:          w,
		r:               r,
		prof:            profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
	}
	for _, option := range options {
		option(e)
	}

	w.SetResizeCallback(func(width, height int) {
		if width <= 0 || height <= 0 {
			return
		}
		e.r.Resize(width, height)
		if s := e.Scene(); s != nil {
			if c := s.Camera(); c != nil {
				c.SetAspect(float32(width) / float32(height))
			}
		}
	})

	return e
}

func (e *engineImpl) Window() window.Window {
	return e.window
}

func (e *engineImpl) Renderer() renderer.Renderer {
	return e.r
}

func (e *engineImpl) SetScene(s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scn = s
}

func (e *engineImpl) Scene() scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scn
}

func (e *engineImpl) Run() {
	e.running = true
	e.wg.Add(2)
	go e.handleTick()
	go e.handleRender()
	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()
}

func (e *engineImpl) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel exactly once.
func (e *engineImpl) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handleTick runs the fixed-rate game logic loop, listening for dynamic rate
// changes on tickRateChannel.
func (e *engineImpl) handleTick() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the render loop. A panic inside the loop is recovered so
// the process can shut down cleanly instead of crashing mid-frame.
func (e *engineImpl) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("render loop recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			if s := e.Scene(); s != nil && s.Active() {
				if err := e.r.Render(s.Camera(), s); err != nil {
					slog.Error("frame failed", "error", err)
				}
			}

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}
			if e.profilingEnabled && e.prof != nil {
				e.prof.Tick(e.r.Stats())
			}

			if e.renderFrameLimit > 0 {
				if remaining := e.renderFrameLimit - time.Since(lastRender); remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

func (e *engineImpl) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engineImpl) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engineImpl) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if !e.running {
		e.engineTickRate = newRate
		return
	}
	// Non-blocking send; a pending update is replaced by the newest value.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engineImpl) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engineImpl) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engineImpl) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}
