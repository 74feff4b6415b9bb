package window

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Window owns the OS window the renderer presents into. It exposes the
// surface descriptor for device creation, the message loop the engine
// blocks on, and the callbacks the engine and application hook.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer is
	// resized. The callback receives the new size in pixels.
	//
	// Parameters:
	//   - callback: function receiving new width and height, or nil to disable
	SetResizeCallback(callback func(width, height int))

	// SetKeyCallback sets the function called on key press and release.
	//
	// Parameters:
	//   - callback: function receiving the key code and whether it was pressed
	SetKeyCallback(callback func(keyCode uint32, pressed bool))

	// SurfaceDescriptor returns a surface descriptor suitable for creating
	// the WebGPU surface for this window. Platform selection (X11, Wayland,
	// Win32, Metal) happens inside the wgpuglfw bridge.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform surface descriptor
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// Close destroys the window and shuts down the windowing system.
	//
	// Returns:
	//   - error: non-nil if the window was never initialized
	Close() error

	// ProcessMessages pumps window events until the window closes. It must
	// run on the thread that created the window; the engine blocks its
	// caller here while the tick and render goroutines run.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

// windowImpl is the GLFW-backed implementation of the Window interface.
type windowImpl struct {
	// title is the window title displayed in the title bar.
	title string

	// minWidth/minHeight and maxWidth/maxHeight bound interactive resizing.
	minWidth  int
	minHeight int
	maxWidth  int
	maxHeight int

	// width and height track the framebuffer size in pixels, which on
	// high-DPI displays differs from the window size.
	width  int
	height int

	// onResize is called with the new framebuffer size after a resize.
	onResize func(width, height int)

	// onKey is called on key press and release.
	onKey func(keyCode uint32, pressed bool)

	glfw *glfwState
}

var _ Window = &windowImpl{}

// NewWindow creates and opens a window with the specified options.
// Applies default values first, then each option in order. Panics if the
// windowing system cannot be initialized; a renderer cannot run without a
// surface.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the opened window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &windowImpl{
		title:     "forge",
		minWidth:  320,
		minHeight: 240,
		maxWidth:  3840,
		maxHeight: 2160,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := w.open(); err != nil {
		panic("window: " + err.Error())
	}
	return w
}

func (w *windowImpl) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *windowImpl) SetKeyCallback(callback func(keyCode uint32, pressed bool)) {
	w.onKey = callback
}

func (w *windowImpl) Width() int {
	return w.width
}

func (w *windowImpl) Height() int {
	return w.height
}
