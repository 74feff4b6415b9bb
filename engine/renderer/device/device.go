// Package device defines the narrow capability contract the renderer core
// requires from a GPU backend: resource creation, render-pass recording, and
// command submission. The core never touches a GPU API directly — it records
// against these interfaces, which keeps every pass unit-testable against
// in-memory fakes while the wgpu implementation drives real hardware.
package device

import (
	"github.com/forge3d/forge/engine/renderer/pipeline_state"
)

// LoadOp selects what happens to an attachment's contents when a render pass begins.
type LoadOp int

const (
	// LoadOpClear clears the attachment to the descriptor's clear value.
	LoadOpClear LoadOp = iota

	// LoadOpLoad preserves the attachment's existing contents.
	LoadOpLoad
)

// StoreOp selects what happens to an attachment's contents when a render pass ends.
type StoreOp int

const (
	// StoreOpStore writes the pass results to the attachment.
	StoreOpStore StoreOp = iota

	// StoreOpDiscard drops the pass results. Used for MSAA attachments whose
	// resolved output lands in the resolve target instead.
	StoreOpDiscard
)

// IndexFormat identifies the element width of an index buffer.
type IndexFormat int

const (
	// IndexFormatUint16 uses 16-bit indices.
	IndexFormatUint16 IndexFormat = iota

	// IndexFormatUint32 uses 32-bit indices.
	IndexFormatUint32
)

// BindingKind identifies what kind of resource a bind group layout entry holds.
type BindingKind int

const (
	// BindingKindUniformBuffer is a uniform buffer binding.
	BindingKindUniformBuffer BindingKind = iota

	// BindingKindStorageBuffer is a read-only storage buffer binding, used for
	// the per-frame light tables and instanced transform arrays.
	BindingKindStorageBuffer

	// BindingKindTexture is a filterable 2D texture binding.
	BindingKindTexture

	// BindingKindDepthTexture is a depth texture binding, sampled by the lit
	// pass for shadow comparisons.
	BindingKindDepthTexture

	// BindingKindSampler is a filtering sampler binding.
	BindingKindSampler

	// BindingKindComparisonSampler is a comparison sampler binding for PCF
	// shadow sampling.
	BindingKindComparisonSampler
)

// ShaderStage is a bitmask of pipeline stages a binding is visible to.
type ShaderStage uint32

const (
	// StageVertex makes a binding visible to vertex shaders.
	StageVertex ShaderStage = 1 << iota

	// StageFragment makes a binding visible to fragment shaders.
	StageFragment
)

// Buffer is an opaque GPU buffer handle.
type Buffer interface {
	// Size returns the buffer's size in bytes.
	Size() uint64

	// Release frees the underlying GPU resource.
	Release()
}

// TextureView is an opaque handle to a texture view usable as a render
// attachment or shader binding.
type TextureView interface {
	// Release frees the underlying GPU resource.
	Release()
}

// Sampler is an opaque GPU sampler handle.
type Sampler interface {
	// Release frees the underlying GPU resource.
	Release()
}

// BindGroup is an opaque handle to a bound set of resources at one bind slot.
type BindGroup interface {
	// Release frees the underlying GPU resource.
	Release()
}

// CommandBuffer is an opaque handle to a finished, submittable command stream.
type CommandBuffer interface {
	// Release frees the underlying GPU resource.
	Release()
}

// BindGroupLayoutEntry describes one binding slot in a bind group layout.
type BindGroupLayoutEntry struct {
	// Binding is the binding index within the group.
	Binding int

	// Visibility is the set of shader stages that can access this binding.
	Visibility ShaderStage

	// Kind identifies the resource type bound at this slot.
	Kind BindingKind

	// MinBindingSize is the minimum buffer size for buffer bindings, in bytes.
	MinBindingSize uint64
}

// BindGroupEntry supplies the concrete resource for one binding slot.
// Exactly one of Buffer, TextureView, or Sampler must be set.
type BindGroupEntry struct {
	Binding     int
	Buffer      Buffer
	TextureView TextureView
	Sampler     Sampler
}

// ColorAttachment describes one color target of a render pass recording scope.
type ColorAttachment struct {
	// View is the texture view rendered into. A nil view targets the
	// current swapchain surface.
	View TextureView

	// ResolveTarget receives the resolved output when View is multisampled.
	ResolveTarget TextureView

	LoadOp  LoadOp
	StoreOp StoreOp

	// ClearValue is the RGBA clear color applied when LoadOp is LoadOpClear.
	ClearValue [4]float64
}

// DepthStencilAttachment describes the depth target of a render pass recording scope.
type DepthStencilAttachment struct {
	View TextureView

	DepthLoadOp  LoadOp
	DepthStoreOp StoreOp

	// DepthClearValue is the depth clear value applied when DepthLoadOp is LoadOpClear.
	DepthClearValue float32
}

// RenderPassDescriptor describes the attachments of one render-target-scoped
// recording boundary.
type RenderPassDescriptor struct {
	Label                  string
	ColorAttachments       []ColorAttachment
	DepthStencilAttachment *DepthStencilAttachment
}

// RenderPassEncoder records state changes and draws inside one render pass
// recording scope. All methods must be called between the owning encoder's
// BeginRenderPass and this encoder's End.
type RenderPassEncoder interface {
	// SetPipelineState binds the registered pipeline identified by key.
	//
	// Parameters:
	//   - key: the PipelineState key previously registered on the Device
	SetPipelineState(key string)

	// SetVertexBuffer binds a vertex buffer at the given slot.
	//
	// Parameters:
	//   - slot: the vertex buffer slot index
	//   - buf: the vertex buffer to bind
	SetVertexBuffer(slot uint32, buf Buffer)

	// SetIndexBuffer binds an index buffer with the given element format.
	//
	// Parameters:
	//   - buf: the index buffer to bind
	//   - format: the index element format
	SetIndexBuffer(buf Buffer, format IndexFormat)

	// SetBindGroup attaches a bind group at the given slot.
	//
	// Parameters:
	//   - slot: the bind group slot index
	//   - group: the bind group to attach
	SetBindGroup(slot uint32, group BindGroup)

	// SetViewport sets the viewport transform for subsequent draws.
	//
	// Parameters:
	//   - x, y: viewport origin in pixels
	//   - width, height: viewport size in pixels
	//   - minDepth, maxDepth: depth range mapping
	SetViewport(x, y, width, height, minDepth, maxDepth float32)

	// Draw issues a non-indexed draw call.
	//
	// Parameters:
	//   - vertexCount: number of vertices to draw
	//   - instanceCount: number of instances to draw
	//   - firstVertex: offset of the first vertex
	//   - firstInstance: offset of the first instance
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)

	// DrawIndexed issues an indexed draw call.
	//
	// Parameters:
	//   - indexCount: number of indices to draw
	//   - instanceCount: number of instances to draw
	//   - firstIndex: offset of the first index
	//   - baseVertex: value added to each index before vertex lookup
	//   - firstInstance: offset of the first instance
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)

	// End closes the recording scope. No further methods may be called.
	End()
}

// CommandEncoder records render passes into a single command stream shared by
// all passes of one frame. Finish produces the submittable command buffer;
// submission is a separate, explicit Device.Submit step.
type CommandEncoder interface {
	// BeginRenderPass opens one render-target-scoped recording boundary.
	//
	// Parameters:
	//   - desc: the attachment configuration for the pass
	//
	// Returns:
	//   - RenderPassEncoder: the encoder for recording inside the scope
	BeginRenderPass(desc *RenderPassDescriptor) RenderPassEncoder

	// Finish closes the command stream and returns the submittable buffer.
	//
	// Returns:
	//   - CommandBuffer: the finished command buffer
	//   - error: an error if the encoder was in an invalid state
	Finish() (CommandBuffer, error)

	// Release frees the encoder without submitting.
	Release()
}

// Device is the top-level graphics-device capability contract. One Device is
// owned by one Renderer; all resource creation and submission flows through it.
type Device interface {
	// RegisterPipelineState compiles and caches a concrete GPU pipeline for
	// the given configuration. Registering an already-registered key is a no-op.
	// The group layouts describe the pipeline's bind group slots in order;
	// bind groups created with equivalent layout entries are compatible.
	//
	// Parameters:
	//   - ps: the pipeline state configuration to compile
	//   - groupLayouts: layout entries for each bind group slot, in slot order
	//
	// Returns:
	//   - error: an error if shader compilation or pipeline creation fails
	RegisterPipelineState(ps pipeline_state.PipelineState, groupLayouts ...[]BindGroupLayoutEntry) error

	// CreateUniformBuffer creates a zero-initialized uniform buffer.
	//
	// Parameters:
	//   - label: a debug label
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: an error if creation fails
	CreateUniformBuffer(label string, size uint64) (Buffer, error)

	// CreateStorageBuffer creates a zero-initialized read-only storage buffer.
	//
	// Parameters:
	//   - label: a debug label
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: an error if creation fails
	CreateStorageBuffer(label string, size uint64) (Buffer, error)

	// CreateVertexBuffer creates a vertex buffer initialized with data.
	//
	// Parameters:
	//   - label: a debug label
	//   - data: the vertex data to upload
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: an error if creation fails
	CreateVertexBuffer(label string, data []byte) (Buffer, error)

	// CreateIndexBuffer creates an index buffer initialized with data.
	//
	// Parameters:
	//   - label: a debug label
	//   - data: the index data to upload
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: an error if creation fails
	CreateIndexBuffer(label string, data []byte) (Buffer, error)

	// WriteBuffer schedules a write of data into buf at the given offset.
	// Writes are visible to all subsequently submitted command buffers.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: the destination offset in bytes
	//   - data: the bytes to write
	WriteBuffer(buf Buffer, offset uint64, data []byte)

	// CreateBindGroup creates a bind group from layout entries and resources
	// in one step. The layout is derived from the entries' kinds.
	//
	// Parameters:
	//   - label: a debug label
	//   - layout: the layout entries describing each binding slot
	//   - entries: the concrete resources for each slot
	//
	// Returns:
	//   - BindGroup: the created bind group
	//   - error: an error if creation fails
	CreateBindGroup(label string, layout []BindGroupLayoutEntry, entries []BindGroupEntry) (BindGroup, error)

	// CreateDepthTexture creates a depth texture view usable as a render
	// attachment, matching the main pass sample count.
	//
	// Parameters:
	//   - width, height: texture size in texels
	//   - sampleCount: the MSAA sample count
	//
	// Returns:
	//   - TextureView: the depth texture view
	//   - error: an error if creation fails
	CreateDepthTexture(width, height int, sampleCount uint32) (TextureView, error)

	// CreateShadowDepthTexture creates a single-sampled Depth32Float texture
	// view that can double as a render attachment and a sampled shadow map.
	//
	// Parameters:
	//   - resolution: shadow map width and height in texels
	//
	// Returns:
	//   - TextureView: the shadow depth texture view
	//   - error: an error if creation fails
	CreateShadowDepthTexture(resolution int) (TextureView, error)

	// CreateRenderTarget creates a single-sampled offscreen RGBA8 color
	// texture view usable as both render attachment and sampled texture. Used
	// by the post-process ping-pong chain.
	//
	// Parameters:
	//   - width, height: texture size in texels
	//
	// Returns:
	//   - TextureView: the render target view
	//   - error: an error if creation fails
	CreateRenderTarget(width, height int) (TextureView, error)

	// CreateComparisonSampler creates a comparison sampler suitable for PCF
	// shadow mapping.
	//
	// Returns:
	//   - Sampler: the comparison sampler
	//   - error: an error if creation fails
	CreateComparisonSampler() (Sampler, error)

	// CreateLinearSampler creates a linear-filtering clamp-to-edge sampler,
	// used by post-process effects to sample intermediate targets.
	//
	// Returns:
	//   - Sampler: the sampler
	//   - error: an error if creation fails
	CreateLinearSampler() (Sampler, error)

	// CreateCommandEncoder creates the frame's command encoder.
	//
	// Parameters:
	//   - label: a debug label
	//
	// Returns:
	//   - CommandEncoder: the created encoder
	//   - error: an error if creation fails
	CreateCommandEncoder(label string) (CommandEncoder, error)

	// Submit submits finished command buffers to the GPU queue.
	//
	// Parameters:
	//   - buffers: the command buffers to submit, in execution order
	Submit(buffers ...CommandBuffer)

	// AcquireFrame acquires the next swapchain texture for the frame.
	// Must be paired with Present after submission.
	//
	// Returns:
	//   - TextureView: the swapchain texture view
	//   - error: an error if the surface texture could not be acquired
	AcquireFrame() (TextureView, error)

	// Present presents the acquired surface texture and releases it.
	Present()

	// Resize reconfigures the surface and recreates size-dependent resources.
	// Takes effect at the start of the next frame.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	Resize(width, height int)

	// SurfaceSize returns the current surface size in pixels.
	//
	// Returns:
	//   - width, height: the surface size
	SurfaceSize() (width, height int)

	// SampleCount returns the MSAA sample count of the main render target.
	//
	// Returns:
	//   - uint32: the sample count (1 = MSAA off)
	SampleCount() uint32

	// SetLostCallback registers a callback invoked when the device is lost
	// (driver reset, surface destruction). The current frame is abandoned;
	// the callback fires out-of-band and the renderer skips frames until the
	// device recovers.
	//
	// Parameters:
	//   - cb: the callback receiving a human-readable reason
	SetLostCallback(cb func(reason string))

	// Destroy releases all device resources. The device must not be used afterwards.
	Destroy()
}

