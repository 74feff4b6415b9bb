package device

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/forge3d/forge/engine/renderer/pipeline_state"
)

// standardVertexStride is the byte stride of the standard vertex layout:
// position (3×f32), normal (3×f32), uv (2×f32).
const standardVertexStride = 32

// positionVertexStride is the byte stride of the position-only vertex layout.
const positionVertexStride = 12

type wgpuDeviceImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat *wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	sampleCount   uint32

	width  int
	height int

	// pendingWidth/pendingHeight hold a requested resize until the start of
	// the next frame; reconfiguring mid-frame would invalidate the acquired
	// surface texture.
	pendingWidth  int
	pendingHeight int

	msaaTexture     *wgpu.Texture
	msaaTextureView *wgpu.TextureView

	pipelines map[string]*wgpu.RenderPipeline

	// Frame state held between AcquireFrame and Present.
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	lostCallback func(reason string)
}

var _ Device = &wgpuDeviceImpl{}

// NewWGPUDevice creates a Device backed by WebGPU, bound to the given surface.
// The surface is configured immediately at the given size.
//
// Parameters:
//   - surfaceDescriptor: the platform surface to present to
//   - width, height: the initial surface size in pixels
//   - sampleCount: the MSAA sample count for the main render target (1 = off)
//   - forceFallbackAdapter: request a software adapter, for CI and headless runs
//
// Returns:
//   - Device: the created device
func NewWGPUDevice(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, sampleCount uint32, forceFallbackAdapter bool) Device {
	runtime.LockOSThread()
	d := &wgpuDeviceImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: sampleCount,
		pipelines:   make(map[string]*wgpu.RenderPipeline),
	}
	d.surface = d.instance.CreateSurface(surfaceDescriptor)

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		panic(err)
	}
	d.adapter = a

	// Raise MaxBindGroups so the lit pass's frame/material/object/shadow
	// groups all fit.
	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = 8

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		panic(err)
	}
	d.device = dev
	d.queue = dev.GetQueue()

	d.configureSurface(width, height)

	return d
}

// configureSurface reconfigures the surface and recreates the MSAA color
// texture. Callers must hold no lock; this is init/resize-path only.
func (d *wgpuDeviceImpl) configureSurface(width, height int) {
	capabilities := d.surface.GetCapabilities(d.adapter)
	d.surfaceFormat = &capabilities.Formats[0]

	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *d.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: d.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	d.width = width
	d.height = height

	if d.msaaTextureView != nil {
		d.msaaTextureView.Release()
		d.msaaTextureView = nil
	}
	if d.msaaTexture != nil {
		d.msaaTexture.Release()
		d.msaaTexture = nil
	}

	if d.sampleCount > 1 {
		// The render pass draws into the MSAA texture; the resolved result is
		// written to the swapchain view as the ResolveTarget.
		msaaTexture, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   d.sampleCount,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *d.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		view, err := msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
		d.msaaTexture = msaaTexture
		d.msaaTextureView = view
	}
}

func (d *wgpuDeviceImpl) RegisterPipelineState(ps pipeline_state.PipelineState, groupLayouts ...[]BindGroupLayoutEntry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.pipelines[ps.Key()]; ok {
		return nil
	}

	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: ps.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: ps.ShaderSource(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to compile shader module for %q: %w", ps.Key(), err)
	}

	bindGroupLayouts := make([]*wgpu.BindGroupLayout, len(groupLayouts))
	for g, entries := range groupLayouts {
		layout, layoutErr := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s Group %d Layout", ps.Key(), g),
			Entries: toWGPULayoutEntries(entries),
		})
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d of %q: %w", g, ps.Key(), layoutErr)
		}
		bindGroupLayouts[g] = layout
	}

	pipelineLayout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            ps.Key(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline layout for %q: %w", ps.Key(), err)
	}

	created, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  ps.Key() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: ps.VertexEntryPoint(),
			Buffers:    vertexBufferLayouts(ps.VertexLayout()),
		},
		Fragment: d.fragmentState(module, ps),
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  toWGPUCullMode(ps.CullMode()),
		},
		Multisample: wgpu.MultisampleState{
			Count: ps.SampleCount(),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencilState(ps),
	})
	if err != nil {
		return fmt.Errorf("failed to create render pipeline for %q: %w", ps.Key(), err)
	}

	d.pipelines[ps.Key()] = created

	return nil
}

// fragmentState builds the fragment stage configuration, or nil for the
// depth-only pipelines (shadow map generation and the depth prepass).
func (d *wgpuDeviceImpl) fragmentState(module *wgpu.ShaderModule, ps pipeline_state.PipelineState) *wgpu.FragmentState {
	if ps.ColorTarget() == pipeline_state.ColorTargetNone {
		return nil
	}

	format := wgpu.TextureFormatRGBA8Unorm
	if ps.ColorTarget() == pipeline_state.ColorTargetSurface {
		format = *d.surfaceFormat
	}

	writeMask := wgpu.ColorWriteMaskAll
	if !ps.ColorWriteEnabled() {
		writeMask = wgpu.ColorWriteMaskNone
	}

	target := wgpu.ColorTargetState{
		Format:    format,
		WriteMask: writeMask,
	}
	if ps.BlendEnabled() {
		target.Blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	}

	return &wgpu.FragmentState{
		Module:     module,
		EntryPoint: ps.FragmentEntryPoint(),
		Targets:    []wgpu.ColorTargetState{target},
	}
}

// depthStencilState builds the depth configuration, or nil for pipelines that
// render without a depth attachment (post-process and present).
func depthStencilState(ps pipeline_state.PipelineState) *wgpu.DepthStencilState {
	if !ps.DepthTestEnabled() && !ps.DepthWriteEnabled() {
		return nil
	}

	format := wgpu.TextureFormatDepth24Plus
	if ps.DepthFormat() == pipeline_state.DepthFormat32Float {
		format = wgpu.TextureFormatDepth32Float
	}

	return &wgpu.DepthStencilState{
		Format:              format,
		DepthWriteEnabled:   ps.DepthWriteEnabled(),
		DepthCompare:        toWGPUCompareFunction(ps.DepthCompare()),
		DepthBias:           ps.DepthBias(),
		DepthBiasSlopeScale: ps.DepthBiasSlopeScale(),
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
}

func (d *wgpuDeviceImpl) CreateUniformBuffer(label string, size uint64) (Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	return &wgpuBuffer{buf: buf, size: size}, nil
}

func (d *wgpuDeviceImpl) CreateStorageBuffer(label string, size uint64) (Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	return &wgpuBuffer{buf: buf, size: size}, nil
}

func (d *wgpuDeviceImpl) CreateVertexBuffer(label string, data []byte) (Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	d.queue.WriteBuffer(buf, 0, data)
	return &wgpuBuffer{buf: buf, size: uint64(len(data))}, nil
}

func (d *wgpuDeviceImpl) CreateIndexBuffer(label string, data []byte) (Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	d.queue.WriteBuffer(buf, 0, data)
	return &wgpuBuffer{buf: buf, size: uint64(len(data))}, nil
}

func (d *wgpuDeviceImpl) WriteBuffer(buf Buffer, offset uint64, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.queue.WriteBuffer(buf.(*wgpuBuffer).buf, offset, data)
}

func (d *wgpuDeviceImpl) CreateBindGroup(label string, layout []BindGroupLayoutEntry, entries []BindGroupEntry) (BindGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	bgl, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   label + " Layout",
		Entries: toWGPULayoutEntries(layout),
	})
	if err != nil {
		return nil, err
	}

	wgpuEntries := make([]wgpu.BindGroupEntry, len(entries))
	for i, entry := range entries {
		e := wgpu.BindGroupEntry{
			Binding: uint32(entry.Binding),
		}
		switch {
		case entry.Buffer != nil:
			e.Buffer = entry.Buffer.(*wgpuBuffer).buf
			e.Offset = 0
			e.Size = wgpu.WholeSize
		case entry.TextureView != nil:
			e.TextureView = entry.TextureView.(*wgpuTextureView).view
		case entry.Sampler != nil:
			e.Sampler = entry.Sampler.(*wgpuSampler).sampler
		default:
			bgl.Release()
			return nil, fmt.Errorf("bind group %q entry %d has no resource", label, entry.Binding)
		}
		wgpuEntries[i] = e
	}

	group, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  bgl,
		Entries: wgpuEntries,
	})
	if err != nil {
		bgl.Release()
		return nil, err
	}

	return &wgpuBindGroup{group: group, layout: bgl}, nil
}

func (d *wgpuDeviceImpl) CreateDepthTexture(width, height int, sampleCount uint32) (TextureView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create depth texture: %w", err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create depth texture view: %w", err)
	}

	return &wgpuTextureView{view: view, texture: tex}, nil
}

func (d *wgpuDeviceImpl) CreateShadowDepthTexture(resolution int) (TextureView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Shadow Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(resolution),
			Height:             uint32(resolution),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shadow depth texture: %w", err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create shadow depth texture view: %w", err)
	}

	return &wgpuTextureView{view: view, texture: tex}, nil
}

func (d *wgpuDeviceImpl) CreateRenderTarget(width, height int) (TextureView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Offscreen Render Target",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create render target: %w", err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create render target view: %w", err)
	}

	return &wgpuTextureView{view: view, texture: tex}, nil
}

func (d *wgpuDeviceImpl) CreateComparisonSampler() (Sampler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	samp, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Shadow Comparison Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		Compare:       wgpu.CompareFunctionLess,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comparison sampler: %w", err)
	}

	return &wgpuSampler{sampler: samp}, nil
}

func (d *wgpuDeviceImpl) CreateLinearSampler() (Sampler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	samp, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Linear Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create linear sampler: %w", err)
	}

	return &wgpuSampler{sampler: samp}, nil
}

func (d *wgpuDeviceImpl) CreateCommandEncoder(label string) (CommandEncoder, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	encoder, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: label,
	})
	if err != nil {
		return nil, err
	}
	return &wgpuCommandEncoder{dev: d, encoder: encoder}, nil
}

func (d *wgpuDeviceImpl) Submit(buffers ...CommandBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	raw := make([]*wgpu.CommandBuffer, len(buffers))
	for i, buf := range buffers {
		raw[i] = buf.(*wgpuCommandBuffer).buf
	}
	d.queue.Submit(raw...)
}

func (d *wgpuDeviceImpl) AcquireFrame() (TextureView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pendingWidth > 0 && d.pendingHeight > 0 {
		d.configureSurface(d.pendingWidth, d.pendingHeight)
		d.pendingWidth = 0
		d.pendingHeight = 0
	}

	// Defensive: if a previous frame's surface texture is still held, avoid
	// attempting to acquire another one. This prevents wgpu-native validation
	// errors like "Surface image is already acquired" when frames overlap.
	if d.frameSurface != nil {
		return nil, fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := d.surface.GetCurrentTexture()
	if err != nil {
		if d.lostCallback != nil {
			d.lostCallback(err.Error())
		}
		return nil, err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, err
	}

	d.frameSurface = surfaceTexture
	d.frameView = view

	return &wgpuTextureView{view: view}, nil
}

func (d *wgpuDeviceImpl) Present() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frameSurface == nil {
		return
	}

	d.surface.Present()

	if d.frameView != nil {
		d.frameView.Release()
		d.frameView = nil
	}
	d.frameSurface.Release()
	d.frameSurface = nil
}

func (d *wgpuDeviceImpl) Resize(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pendingWidth = width
	d.pendingHeight = height
}

func (d *wgpuDeviceImpl) SurfaceSize() (width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.width, d.height
}

func (d *wgpuDeviceImpl) SampleCount() uint32 {
	return d.sampleCount
}

func (d *wgpuDeviceImpl) SetLostCallback(cb func(reason string)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lostCallback = cb
}

func (d *wgpuDeviceImpl) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frameView != nil {
		d.frameView.Release()
		d.frameView = nil
	}
	if d.frameSurface != nil {
		d.frameSurface.Release()
		d.frameSurface = nil
	}
	if d.msaaTextureView != nil {
		d.msaaTextureView.Release()
		d.msaaTextureView = nil
	}
	if d.msaaTexture != nil {
		d.msaaTexture.Release()
		d.msaaTexture = nil
	}
	for key, p := range d.pipelines {
		p.Release()
		delete(d.pipelines, key)
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.surface != nil {
		d.surface.Release()
		d.surface = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

type wgpuBuffer struct {
	buf  *wgpu.Buffer
	size uint64
}

func (b *wgpuBuffer) Size() uint64 {
	return b.size
}

func (b *wgpuBuffer) Release() {
	b.buf.Release()
}

// wgpuTextureView pairs a view with its owning texture. Swapchain views are
// created without a texture; the device owns and releases the surface texture.
type wgpuTextureView struct {
	view    *wgpu.TextureView
	texture *wgpu.Texture
}

func (t *wgpuTextureView) Release() {
	if t.texture != nil {
		t.view.Release()
		t.texture.Release()
		t.texture = nil
	}
}

type wgpuSampler struct {
	sampler *wgpu.Sampler
}

func (s *wgpuSampler) Release() {
	s.sampler.Release()
}

type wgpuBindGroup struct {
	group  *wgpu.BindGroup
	layout *wgpu.BindGroupLayout
}

func (g *wgpuBindGroup) Release() {
	g.group.Release()
	g.layout.Release()
}

type wgpuCommandBuffer struct {
	buf *wgpu.CommandBuffer
}

func (c *wgpuCommandBuffer) Release() {
	c.buf.Release()
}

type wgpuCommandEncoder struct {
	dev     *wgpuDeviceImpl
	encoder *wgpu.CommandEncoder
}

func (e *wgpuCommandEncoder) BeginRenderPass(desc *RenderPassDescriptor) RenderPassEncoder {
	colorAttachments := make([]wgpu.RenderPassColorAttachment, len(desc.ColorAttachments))
	for i, att := range desc.ColorAttachments {
		wgpuAtt := wgpu.RenderPassColorAttachment{
			LoadOp:  toWGPULoadOp(att.LoadOp),
			StoreOp: toWGPUStoreOp(att.StoreOp),
			ClearValue: wgpu.Color{
				R: att.ClearValue[0],
				G: att.ClearValue[1],
				B: att.ClearValue[2],
				A: att.ClearValue[3],
			},
		}
		if att.View == nil {
			// Surface target. With MSAA the pass draws into the MSAA texture
			// and resolves into the swapchain view; without it the swapchain
			// view is the attachment directly.
			if e.dev.sampleCount > 1 {
				wgpuAtt.View = e.dev.msaaTextureView
				wgpuAtt.ResolveTarget = e.dev.frameView
				wgpuAtt.StoreOp = wgpu.StoreOpDiscard
			} else {
				wgpuAtt.View = e.dev.frameView
			}
		} else {
			wgpuAtt.View = att.View.(*wgpuTextureView).view
			if att.ResolveTarget != nil {
				wgpuAtt.ResolveTarget = att.ResolveTarget.(*wgpuTextureView).view
			}
		}
		colorAttachments[i] = wgpuAtt
	}

	wgpuDesc := &wgpu.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: colorAttachments,
	}
	if desc.DepthStencilAttachment != nil {
		wgpuDesc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            desc.DepthStencilAttachment.View.(*wgpuTextureView).view,
			DepthLoadOp:     toWGPULoadOp(desc.DepthStencilAttachment.DepthLoadOp),
			DepthStoreOp:    toWGPUStoreOp(desc.DepthStencilAttachment.DepthStoreOp),
			DepthClearValue: desc.DepthStencilAttachment.DepthClearValue,
		}
	}

	pass := e.encoder.BeginRenderPass(wgpuDesc)
	return &wgpuRenderPassEncoder{dev: e.dev, pass: pass}
}

func (e *wgpuCommandEncoder) Finish() (CommandBuffer, error) {
	buf, err := e.encoder.Finish(nil)
	if err != nil {
		return nil, err
	}
	return &wgpuCommandBuffer{buf: buf}, nil
}

func (e *wgpuCommandEncoder) Release() {
	e.encoder.Release()
}

type wgpuRenderPassEncoder struct {
	dev  *wgpuDeviceImpl
	pass *wgpu.RenderPassEncoder
}

func (e *wgpuRenderPassEncoder) SetPipelineState(key string) {
	p, ok := e.dev.pipelines[key]
	if !ok {
		panic(fmt.Sprintf("pipeline state %q was never registered", key))
	}
	e.pass.SetPipeline(p)
}

func (e *wgpuRenderPassEncoder) SetVertexBuffer(slot uint32, buf Buffer) {
	e.pass.SetVertexBuffer(slot, buf.(*wgpuBuffer).buf, 0, wgpu.WholeSize)
}

func (e *wgpuRenderPassEncoder) SetIndexBuffer(buf Buffer, format IndexFormat) {
	wgpuFormat := wgpu.IndexFormatUint32
	if format == IndexFormatUint16 {
		wgpuFormat = wgpu.IndexFormatUint16
	}
	e.pass.SetIndexBuffer(buf.(*wgpuBuffer).buf, wgpuFormat, 0, wgpu.WholeSize)
}

func (e *wgpuRenderPassEncoder) SetBindGroup(slot uint32, group BindGroup) {
	e.pass.SetBindGroup(slot, group.(*wgpuBindGroup).group, nil)
}

func (e *wgpuRenderPassEncoder) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	e.pass.SetViewport(x, y, width, height, minDepth, maxDepth)
}

func (e *wgpuRenderPassEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	e.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (e *wgpuRenderPassEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	e.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (e *wgpuRenderPassEncoder) End() {
	e.pass.End()
}

func vertexBufferLayouts(layout pipeline_state.VertexLayout) []wgpu.VertexBufferLayout {
	switch layout {
	case pipeline_state.VertexLayoutStandard:
		return []wgpu.VertexBufferLayout{
			{
				ArrayStride: standardVertexStride,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
				},
			},
		}
	case pipeline_state.VertexLayoutPosition:
		return []wgpu.VertexBufferLayout{
			{
				ArrayStride: positionVertexStride,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				},
			},
		}
	default:
		// VertexLayoutNone — fullscreen triangle pipelines generate positions
		// from the vertex index.
		return nil
	}
}

func toWGPUCompareFunction(fn pipeline_state.CompareFunction) wgpu.CompareFunction {
	switch fn {
	case pipeline_state.CompareLessEqual:
		return wgpu.CompareFunctionLessEqual
	case pipeline_state.CompareAlways:
		return wgpu.CompareFunctionAlways
	default:
		return wgpu.CompareFunctionLess
	}
}

func toWGPUCullMode(mode pipeline_state.CullMode) wgpu.CullMode {
	switch mode {
	case pipeline_state.CullModeFront:
		return wgpu.CullModeFront
	case pipeline_state.CullModeBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}

func toWGPULoadOp(op LoadOp) wgpu.LoadOp {
	if op == LoadOpLoad {
		return wgpu.LoadOpLoad
	}
	return wgpu.LoadOpClear
}

func toWGPUStoreOp(op StoreOp) wgpu.StoreOp {
	if op == StoreOpDiscard {
		return wgpu.StoreOpDiscard
	}
	return wgpu.StoreOpStore
}

func toWGPULayoutEntries(entries []BindGroupLayoutEntry) []wgpu.BindGroupLayoutEntry {
	out := make([]wgpu.BindGroupLayoutEntry, len(entries))
	for i, entry := range entries {
		e := wgpu.BindGroupLayoutEntry{
			Binding:    uint32(entry.Binding),
			Visibility: toWGPUShaderStage(entry.Visibility),
		}
		switch entry.Kind {
		case BindingKindUniformBuffer:
			e.Buffer = wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: entry.MinBindingSize,
			}
		case BindingKindStorageBuffer:
			e.Buffer = wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeReadOnlyStorage,
				MinBindingSize: entry.MinBindingSize,
			}
		case BindingKindTexture:
			e.Texture = wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			}
		case BindingKindDepthTexture:
			e.Texture = wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeDepth,
				ViewDimension: wgpu.TextureViewDimension2D,
			}
		case BindingKindSampler:
			e.Sampler = wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			}
		case BindingKindComparisonSampler:
			e.Sampler = wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeComparison,
			}
		}
		out[i] = e
	}
	return out
}

func toWGPUShaderStage(stage ShaderStage) wgpu.ShaderStage {
	var out wgpu.ShaderStage
	if stage&StageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if stage&StageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	return out
}
