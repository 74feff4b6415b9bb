package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwState holds the GLFW handle and run flag for an open window.
type glfwState struct {
	window  *glfw.Window
	running bool
}

// open initializes GLFW and creates the native window. GLFW requires that
// window creation and event polling happen on one OS thread, so the caller
// is pinned here.
func (w *windowImpl) open() error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// WebGPU brings its own graphics API; no GL context wanted.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create window: %w", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	w.glfw = &glfwState{window: win, running: true}

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.glfw.running = false
			win.SetShouldClose(true)
			return
		}
		if w.onKey == nil {
			return
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			w.onKey(uint32(key), true)
		case glfw.Release:
			w.onKey(uint32(key), false)
		}
	})

	// The framebuffer size callback reports pixels, which is what the
	// surface configuration needs; on high-DPI displays the window size
	// callback would report logical units instead.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width = width
		w.height = height
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})

	fbWidth, fbHeight := win.GetFramebufferSize()
	w.width = fbWidth
	w.height = fbHeight

	return nil
}

func (w *windowImpl) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.glfw == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(w.glfw.window)
}

func (w *windowImpl) IsRunning() bool {
	if w.glfw == nil {
		return false
	}
	return w.glfw.running && !w.glfw.window.ShouldClose()
}

func (w *windowImpl) Close() error {
	if w.glfw == nil {
		return fmt.Errorf("window is not initialized")
	}
	w.glfw.running = false
	w.glfw.window.SetShouldClose(true)
	w.glfw.window.Destroy()
	glfw.Terminate()
	return nil
}

// ProcessMessages polls for window events until the window closes. It
// yields between polls so the render and tick goroutines get scheduled
// even under an event flood.
func (w *windowImpl) ProcessMessages() {
	for w.IsRunning() {
		glfw.PollEvents()
		runtime.Gosched()
	}
}
