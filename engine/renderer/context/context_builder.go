package context

import "time"

// ContextOption is a function that configures a context during construction.
type ContextOption func(*contextImpl)

// WithClock overrides the time source used for frame timing. Intended for
// tests that need deterministic Time/DeltaTime values.
//
// Parameters:
//   - now: the replacement clock function
//
// Returns:
//   - ContextOption: a function that sets the clock on the context
func WithClock(now func() time.Time) ContextOption {
	return func(c *contextImpl) {
		if now != nil {
			c.now = now
		}
	}
}

// WithShadowProjection overrides the orthographic volume used for the
// directional shadow map: half-extent in world units plus near and far planes.
//
// Parameters:
//   - halfExtent: half-width and half-height of the shadow volume
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - ContextOption: a function that sets the shadow projection on the context
func WithShadowProjection(halfExtent, near, far float32) ContextOption {
	return func(c *contextImpl) {
		c.shadowHalfExtent = halfExtent
		c.shadowNear = near
		c.shadowFar = far
	}
}

// WithViewport sets the initial render target dimensions.
//
// Parameters:
//   - width: viewport width in pixels
//   - height: viewport height in pixels
//
// Returns:
//   - ContextOption: a function that sets the viewport on the context
func WithViewport(width, height uint32) ContextOption {
	return func(c *contextImpl) {
		c.viewportWidth = width
		c.viewportHeight = height
	}
}
