package engine

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/forge3d/forge/engine/camera"
	"github.com/forge3d/forge/engine/renderer"
	"github.com/forge3d/forge/engine/renderer/context"
	"github.com/forge3d/forge/engine/renderer/pass"
	"github.com/forge3d/forge/engine/renderer/queue"
	"github.com/forge3d/forge/engine/scene"
	"github.com/forge3d/forge/engine/window"
)

// fakeWindow is a headless Window whose message loop blocks until the test
// closes it.
type fakeWindow struct {
	mu       sync.Mutex
	closed   chan struct{}
	onResize func(width, height int)
	width    int
	height   int
}

var _ window.Window = &fakeWindow{}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{closed: make(chan struct{}), width: 800, height: 600}
}

func (w *fakeWindow) SetResizeCallback(callback func(width, height int)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onResize = callback
}

func (w *fakeWindow) SetKeyCallback(func(keyCode uint32, pressed bool)) {}

func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }

func (w *fakeWindow) IsRunning() bool {
	select {
	case <-w.closed:
		return false
	default:
		return true
	}
}

func (w *fakeWindow) Close() error {
	select {
	case <-w.closed:
	default:
		close(w.closed)
	}
	return nil
}

func (w *fakeWindow) ProcessMessages() { <-w.closed }

func (w *fakeWindow) Width() int  { return w.width }
func (w *fakeWindow) Height() int { return w.height }

// resize simulates a framebuffer resize event.
func (w *fakeWindow) resize(width, height int) {
	w.mu.Lock()
	cb := w.onResize
	w.width = width
	w.height = height
	w.mu.Unlock()
	if cb != nil {
		cb(width, height)
	}
}

// fakeRenderer counts frames and records resizes.
type fakeRenderer struct {
	renders atomic.Int64

	mu           sync.Mutex
	resizeWidth  int
	resizeHeight int
	renderPanics bool
}

var _ renderer.Renderer = &fakeRenderer{}

func (r *fakeRenderer) Render(cam camera.Camera, scn scene.Scene) error {
	if r.renderPanics {
		panic("device gone")
	}
	r.renders.Add(1)
	return nil
}

func (r *fakeRenderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resizeWidth = width
	r.resizeHeight = height
}

func (r *fakeRenderer) Stats() pass.Stats { return pass.Stats{} }

func (r *fakeRenderer) FrameCount() uint64 { return uint64(r.renders.Load()) }

func (r *fakeRenderer) Pipeline() pass.Pipeline { return nil }

func (r *fakeRenderer) Queue() queue.Queue { return nil }

func (r *fakeRenderer) Context() context.Context { return nil }

func (r *fakeRenderer) Destroy() {}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestNewEnginePanicsOnNilDependencies(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil window")
		}
	}()
	NewEngine(nil, &fakeRenderer{})
}

func TestRunRendersActiveScene(t *testing.T) {
	w := newFakeWindow()
	r := &fakeRenderer{}
	scn := scene.NewScene(scene.WithCamera(camera.NewCamera()))

	eng := NewEngine(w, r, WithScene(scn), WithTickRate(120))

	var ticks atomic.Int64
	eng.SetTickCallback(func(deltaTime float32) { ticks.Add(1) })

	done := make(chan struct{})
	go func() {
		eng.Run()
		close(done)
	}()

	waitFor(t, 2*time.Second, func() bool {
		return r.renders.Load() >= 3 && ticks.Load() >= 1
	})

	w.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after window closed")
	}
}

func TestRunSkipsInactiveScene(t *testing.T) {
	w := newFakeWindow()
	r := &fakeRenderer{}
	scn := scene.NewScene(scene.WithCamera(camera.NewCamera()))
	scn.SetActive(false)

	eng := NewEngine(w, r, WithScene(scn))

	done := make(chan struct{})
	go func() {
		eng.Run()
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	w.Close()
	<-done

	if got := r.renders.Load(); got != 0 {
		t.Fatalf("expected no frames for inactive scene, got %d", got)
	}
}

func TestResizeForwardsToRendererAndCamera(t *testing.T) {
	w := newFakeWindow()
	r := &fakeRenderer{}
	cam := camera.NewCamera(camera.WithAspect(1))
	scn := scene.NewScene(scene.WithCamera(cam))

	NewEngine(w, r, WithScene(scn))

	w.resize(1920, 1080)

	r.mu.Lock()
	gotW, gotH := r.resizeWidth, r.resizeHeight
	r.mu.Unlock()
	if gotW != 1920 || gotH != 1080 {
		t.Fatalf("expected renderer resize 1920x1080, got %dx%d", gotW, gotH)
	}

	// Zero or negative sizes (minimized window) must be ignored.
	w.resize(0, 0)
	r.mu.Lock()
	gotW, gotH = r.resizeWidth, r.resizeHeight
	r.mu.Unlock()
	if gotW != 1920 || gotH != 1080 {
		t.Fatalf("minimize event should not reach the renderer, got %dx%d", gotW, gotH)
	}
}

func TestQuitStopsLoops(t *testing.T) {
	w := newFakeWindow()
	r := &fakeRenderer{}

	eng := NewEngine(w, r)

	done := make(chan struct{})
	go func() {
		eng.Run()
		close(done)
	}()

	// Quit stops the goroutines; Run still blocks in the message loop until
	// the window itself closes.
	eng.Quit()
	eng.Quit()
	w.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit and window close")
	}
}

func TestRenderPanicRecoversAndQuits(t *testing.T) {
	w := newFakeWindow()
	r := &fakeRenderer{renderPanics: true}
	scn := scene.NewScene(scene.WithCamera(camera.NewCamera()))

	eng := NewEngine(w, r, WithScene(scn))

	done := make(chan struct{})
	go func() {
		eng.Run()
		close(done)
	}()

	// The recovered panic signals quit; closing the window lets Run return.
	time.Sleep(20 * time.Millisecond)
	w.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after render panic")
	}
}

func TestSceneSwap(t *testing.T) {
	w := newFakeWindow()
	r := &fakeRenderer{}
	first := scene.NewScene(scene.WithName("first"), scene.WithCamera(camera.NewCamera()))
	second := scene.NewScene(scene.WithName("second"), scene.WithCamera(camera.NewCamera()))

	eng := NewEngine(w, r, WithScene(first))
	if eng.Scene() != first {
		t.Fatal("expected initial scene")
	}
	eng.SetScene(second)
	if eng.Scene() != second {
		t.Fatal("expected swapped scene")
	}
}
