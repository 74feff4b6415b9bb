package bind_group_provider

import (
	"fmt"

	"github.com/forge3d/forge/engine/renderer/device"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// layoutEntries describe the binding slots this provider fills, in
	// binding order. Set at construction; immutable afterwards.
	layoutEntries []device.BindGroupLayoutEntry

	// The following fields are GPU allocated resources and must be released
	// when no longer needed. They are populated by Init, not by user-creation.

	// bindGroup is the GPU bind group created for this provider, or nil if Init has not run.
	bindGroup device.BindGroup
	// buffers holds the GPU buffers created for this provider, keyed by binding index.
	buffers map[int]device.Buffer
	// textureViews holds the GPU texture views for this provider, keyed by binding index.
	textureViews map[int]device.TextureView
	// samplers holds the GPU samplers for this provider, keyed by binding index.
	samplers map[int]device.Sampler
}

// BindGroupProvider bundles the layout description and GPU resources behind
// one bind group slot. Components (render context, materials, passes) hold a
// BindGroupProvider to describe their GPU binding requirements; Init creates
// the missing buffers and the bind group on the device.
//
// Usage pattern:
//  1. Component creates a BindGroupProvider with layout entries and a label
//  2. Component stores externally-created resources (texture views, samplers)
//  3. Component calls Init(dev) to create remaining buffers and the bind group
//  4. Per-frame uniform data flows through BufferWrite batches
//  5. Passes access BindGroup() for draw calls
type BindGroupProvider interface {
	// Release releases any GPU resources held by this provider.
	// It will clean up all buffers, views, samplers, and the bind group.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// LayoutEntries returns the layout entries describing this provider's
	// binding slots, in binding order.
	//
	// Returns:
	//   - []device.BindGroupLayoutEntry: the layout entries
	LayoutEntries() []device.BindGroupLayoutEntry

	// BindGroup returns the created bind group for shader binding.
	// Returns nil if Init has not run.
	//
	// Returns:
	//   - device.BindGroup: the bind group or nil
	BindGroup() device.BindGroup

	// Buffer returns the buffer at a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - device.Buffer: the buffer or nil
	Buffer(binding int) device.Buffer

	// Buffers returns a map of all buffers associated with this provider, keyed by binding index.
	//
	// Returns:
	//   - map[int]device.Buffer: a map of buffers keyed by binding index
	Buffers() map[int]device.Buffer

	// TextureView returns the texture view for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - device.TextureView: the texture view or nil
	TextureView(binding int) device.TextureView

	// Sampler returns the sampler for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - device.Sampler: the sampler or nil
	Sampler(binding int) device.Sampler

	// SetBuffer stores a buffer for a specific binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer to store
	SetBuffer(binding int, buf device.Buffer)

	// SetTextureView stores a texture view for a specific binding. Must be
	// called before Init for texture layout entries.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the texture view to store
	SetTextureView(binding int, tv device.TextureView)

	// SetSampler stores a sampler for a specific binding. Must be called
	// before Init for sampler layout entries.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler to store
	SetSampler(binding int, s device.Sampler)

	// Init creates GPU buffers for buffer layout entries that have none, then
	// creates the bind group from all stored resources. Calling Init again
	// after resources change rebuilds the bind group.
	//
	// Parameters:
	//   - dev: the device to create resources on
	//
	// Returns:
	//   - error: an error if a resource is missing or creation fails
	Init(dev device.Device) error
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: a debug label for the provider and its resources
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]device.Buffer),
		textureViews: make(map[int]device.TextureView),
		samplers:     make(map[int]device.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) LayoutEntries() []device.BindGroupLayoutEntry {
	return p.layoutEntries
}

func (p *bindGroupProvider) BindGroup() device.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding int) device.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]device.Buffer {
	return p.buffers
}

func (p *bindGroupProvider) TextureView(binding int) device.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) device.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) SetBuffer(binding int, buf device.Buffer) {
	if p.buffers == nil {
		p.buffers = make(map[int]device.Buffer)
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTextureView(binding int, tv device.TextureView) {
	if p.textureViews == nil {
		p.textureViews = make(map[int]device.TextureView)
	}
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) SetSampler(binding int, s device.Sampler) {
	if p.samplers == nil {
		p.samplers = make(map[int]device.Sampler)
	}
	p.samplers[binding] = s
}

func (p *bindGroupProvider) Init(dev device.Device) error {
	if len(p.layoutEntries) == 0 {
		return nil
	}

	entries := make([]device.BindGroupEntry, len(p.layoutEntries))
	for i, entry := range p.layoutEntries {
		binding := entry.Binding

		switch entry.Kind {
		case device.BindingKindTexture, device.BindingKindDepthTexture:
			tv := p.textureViews[binding]
			if tv == nil {
				return fmt.Errorf("texture binding %d has no texture view — call SetTextureView first", binding)
			}
			entries[i] = device.BindGroupEntry{
				Binding:     binding,
				TextureView: tv,
			}
		case device.BindingKindSampler, device.BindingKindComparisonSampler:
			samp := p.samplers[binding]
			if samp == nil {
				return fmt.Errorf("sampler binding %d has no sampler — call SetSampler first", binding)
			}
			entries[i] = device.BindGroupEntry{
				Binding: binding,
				Sampler: samp,
			}
		default:
			// Buffer binding — create if not already present
			buf := p.buffers[binding]
			if buf == nil {
				var bufErr error
				if entry.Kind == device.BindingKindStorageBuffer {
					buf, bufErr = dev.CreateStorageBuffer(p.label+" Buffer", entry.MinBindingSize)
				} else {
					buf, bufErr = dev.CreateUniformBuffer(p.label+" Buffer", entry.MinBindingSize)
				}
				if bufErr != nil {
					return bufErr
				}
				p.buffers[binding] = buf
			}
			entries[i] = device.BindGroupEntry{
				Binding: binding,
				Buffer:  buf,
			}
		}
	}

	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}

	bindGroup, err := dev.CreateBindGroup(p.label+" Bind Group", p.layoutEntries, entries)
	if err != nil {
		return err
	}
	p.bindGroup = bindGroup

	return nil
}

func (p *bindGroupProvider) Release() {
	for i, tv := range p.textureViews {
		if tv != nil {
			tv.Release()
			delete(p.textureViews, i)
		}
	}
	for i, s := range p.samplers {
		if s != nil {
			s.Release()
			delete(p.samplers, i)
		}
	}
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
			delete(p.buffers, i)
		}
	}

	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
}
