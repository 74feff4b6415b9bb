package pass

import (
	"fmt"

	"github.com/forge3d/forge/engine/renderer/device"
	"github.com/forge3d/forge/engine/renderer/pipeline_state"
)

// fakeDevice is an in-memory device.Device that records pipeline
// registrations, render pass scopes, and draw calls for assertions.
type fakeDevice struct {
	registered map[string]bool

	passLabels []string
	draws      []fakeDraw

	pipelineSets  int
	vertexSets    int
	indexSets     int
	bindGroupSets int

	width       int
	height      int
	sampleCount uint32
}

type fakeDraw struct {
	passLabel     string
	pipeline      string
	indexCount    uint32
	instanceCount uint32
	firstInstance uint32
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		registered:  make(map[string]bool),
		width:       800,
		height:      600,
		sampleCount: 1,
	}
}

type fakeBuffer struct {
	size     uint64
	released bool
}

func (b *fakeBuffer) Size() uint64 { return b.size }
func (b *fakeBuffer) Release()     { b.released = true }

type fakeView struct {
	label    string
	released bool
}

func (v *fakeView) Release() { v.released = true }

type fakeSampler struct{}

func (s *fakeSampler) Release() {}

type fakeBindGroup struct{ label string }

func (g *fakeBindGroup) Release() {}

type fakeCommandBuffer struct{}

func (c *fakeCommandBuffer) Release() {}

type fakeCommandEncoder struct {
	dev *fakeDevice
}

func (e *fakeCommandEncoder) BeginRenderPass(desc *device.RenderPassDescriptor) device.RenderPassEncoder {
	e.dev.passLabels = append(e.dev.passLabels, desc.Label)
	return &fakePassEncoder{dev: e.dev, label: desc.Label}
}

func (e *fakeCommandEncoder) Finish() (device.CommandBuffer, error) {
	return &fakeCommandBuffer{}, nil
}

func (e *fakeCommandEncoder) Release() {}

type fakePassEncoder struct {
	dev      *fakeDevice
	label    string
	pipeline string
}

func (e *fakePassEncoder) SetPipelineState(key string) {
	if !e.dev.registered[key] {
		panic(fmt.Sprintf("pipeline %q not registered", key))
	}
	e.pipeline = key
	e.dev.pipelineSets++
}

func (e *fakePassEncoder) SetVertexBuffer(slot uint32, buf device.Buffer) {
	e.dev.vertexSets++
}

func (e *fakePassEncoder) SetIndexBuffer(buf device.Buffer, format device.IndexFormat) {
	e.dev.indexSets++
}

func (e *fakePassEncoder) SetBindGroup(slot uint32, group device.BindGroup) {
	e.dev.bindGroupSets++
}

func (e *fakePassEncoder) SetViewport(x, y, width, height, minDepth, maxDepth float32) {}

func (e *fakePassEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	e.dev.draws = append(e.dev.draws, fakeDraw{
		passLabel:     e.label,
		pipeline:      e.pipeline,
		indexCount:    vertexCount,
		instanceCount: instanceCount,
		firstInstance: firstInstance,
	})
}

func (e *fakePassEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	e.dev.draws = append(e.dev.draws, fakeDraw{
		passLabel:     e.label,
		pipeline:      e.pipeline,
		indexCount:    indexCount,
		instanceCount: instanceCount,
		firstInstance: firstInstance,
	})
}

func (e *fakePassEncoder) End() {}

var _ device.Device = &fakeDevice{}

func (d *fakeDevice) RegisterPipelineState(ps pipeline_state.PipelineState, groupLayouts ...[]device.BindGroupLayoutEntry) error {
	d.registered[ps.Key()] = true
	return nil
}

func (d *fakeDevice) CreateUniformBuffer(label string, size uint64) (device.Buffer, error) {
	return &fakeBuffer{size: size}, nil
}

func (d *fakeDevice) CreateStorageBuffer(label string, size uint64) (device.Buffer, error) {
	return &fakeBuffer{size: size}, nil
}

func (d *fakeDevice) CreateVertexBuffer(label string, data []byte) (device.Buffer, error) {
	return &fakeBuffer{size: uint64(len(data))}, nil
}

func (d *fakeDevice) CreateIndexBuffer(label string, data []byte) (device.Buffer, error) {
	return &fakeBuffer{size: uint64(len(data))}, nil
}

func (d *fakeDevice) WriteBuffer(buf device.Buffer, offset uint64, data []byte) {}

func (d *fakeDevice) CreateBindGroup(label string, layout []device.BindGroupLayoutEntry, entries []device.BindGroupEntry) (device.BindGroup, error) {
	return &fakeBindGroup{label: label}, nil
}

func (d *fakeDevice) CreateDepthTexture(width, height int, sampleCount uint32) (device.TextureView, error) {
	return &fakeView{label: "depth"}, nil
}

func (d *fakeDevice) CreateShadowDepthTexture(resolution int) (device.TextureView, error) {
	return &fakeView{label: "shadow_map"}, nil
}

func (d *fakeDevice) CreateRenderTarget(width, height int) (device.TextureView, error) {
	return &fakeView{label: "render_target"}, nil
}

func (d *fakeDevice) CreateComparisonSampler() (device.Sampler, error) {
	return &fakeSampler{}, nil
}

func (d *fakeDevice) CreateLinearSampler() (device.Sampler, error) {
	return &fakeSampler{}, nil
}

func (d *fakeDevice) CreateCommandEncoder(label string) (device.CommandEncoder, error) {
	return &fakeCommandEncoder{dev: d}, nil
}

func (d *fakeDevice) Submit(buffers ...device.CommandBuffer) {}

func (d *fakeDevice) AcquireFrame() (device.TextureView, error) {
	return &fakeView{label: "surface"}, nil
}

func (d *fakeDevice) Present() {}

func (d *fakeDevice) Resize(width, height int) {
	d.width = width
	d.height = height
}

func (d *fakeDevice) SurfaceSize() (int, int) {
	return d.width, d.height
}

func (d *fakeDevice) SampleCount() uint32 {
	return d.sampleCount
}

func (d *fakeDevice) SetLostCallback(cb func(reason string)) {}

func (d *fakeDevice) Destroy() {}

// passLabelIndex returns the position of the first render pass scope with the
// given label, or -1.
func (d *fakeDevice) passLabelIndex(label string) int {
	for i, l := range d.passLabels {
		if l == label {
			return i
		}
	}
	return -1
}

// drawsIn returns the draw calls recorded inside pass scopes with the label.
func (d *fakeDevice) drawsIn(label string) []fakeDraw {
	var out []fakeDraw
	for _, dr := range d.draws {
		if dr.passLabel == label {
			out = append(out, dr)
		}
	}
	return out
}
