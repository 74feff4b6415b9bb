// Package renderer ties the frame together: it owns the graphics device, the
// per-frame render context, the render queue, and the pass pipeline, and
// drives them through one Render call per frame. Scene collection runs the
// drawable snapshots through a worker pool before feeding the queue serially.
package renderer

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/forge3d/forge/engine/camera"
	"github.com/forge3d/forge/engine/material"
	"github.com/forge3d/forge/engine/mesh"
	"github.com/forge3d/forge/engine/renderer/bind_group_provider"
	"github.com/forge3d/forge/engine/renderer/context"
	"github.com/forge3d/forge/engine/renderer/device"
	"github.com/forge3d/forge/engine/renderer/pass"
	"github.com/forge3d/forge/engine/renderer/queue"
	"github.com/forge3d/forge/engine/scene"
)

// rendererImpl is the implementation of the Renderer interface.
type rendererImpl struct {
	dev      device.Device
	cfg      Config
	ctx      context.Context
	queue    queue.Queue
	pipeline pass.Pipeline

	// collectPool runs the parallel CPU snapshot phase of scene collection.
	// Workers persist across frames, avoiding per-frame goroutine churn.
	collectPool    worker.DynamicWorkerPool
	collectWorkers int

	// materialProviders tracks the bind group providers this renderer created
	// for materials that arrived without one, keyed by material ID, so they
	// can be released on Destroy.
	materialProviders map[uint64]bind_group_provider.BindGroupProvider

	lost       atomic.Bool
	onLost     func(reason string)
	destroyed  bool
	frameScrap []*queue.Element // reused snapshot slice
}

// Renderer is the top-level rendering system: one Renderer per device drives
// the whole frame. Render may only be called from the thread that owns the
// surface; the renderer is not safe for concurrent use.
type Renderer interface {
	// Render draws one frame of the scene from the camera's point of view:
	// update the frame context, collect and build the render queue, acquire
	// the surface, execute the pass pipeline, submit, and present.
	//
	// Frames after a device loss are skipped silently until the device
	// recovers; the loss itself is reported through the lost handler.
	//
	// Parameters:
	//   - cam: the camera to render from
	//   - scn: the scene to render
	//
	// Returns:
	//   - error: a device-level error; per-object problems are skipped and logged
	Render(cam camera.Camera, scn scene.Scene) error

	// Resize reconfigures the surface. Takes effect at the next frame.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	Resize(width, height int)

	// Stats returns the work recorded by the most recent frame.
	Stats() pass.Stats

	// FrameCount returns the number of frames rendered so far.
	FrameCount() uint64

	// Pipeline returns the active pass pipeline.
	Pipeline() pass.Pipeline

	// Queue returns the render queue. Exposed for configuration and tests;
	// the queue's contents are only valid during Render.
	Queue() queue.Queue

	// Context returns the per-frame render context.
	Context() context.Context

	// Destroy releases the pipeline, material resources, and the device.
	Destroy()
}

var _ Renderer = &rendererImpl{}

// NewRenderer creates a renderer over an existing device and initializes its
// pass pipeline. Panics if dev is nil. Without options the pipeline is built
// from DefaultConfig: shadow, opaque, skybox, and transparent passes plus an
// ACES tonemap post-process chain.
//
// Parameters:
//   - dev: the graphics device (must not be nil)
//   - options: a variadic list of options to configure the renderer
//
// Returns:
//   - Renderer: the initialized renderer
//   - error: an error if pipeline initialization fails
func NewRenderer(dev device.Device, options ...RendererOption) (Renderer, error) {
	if dev == nil {
		panic("renderer: NewRenderer requires a non-nil Device")
	}

	r := &rendererImpl{
		dev:               dev,
		cfg:               DefaultConfig(),
		materialProviders: make(map[uint64]bind_group_provider.BindGroupProvider),
	}
	for _, option := range options {
		option(r)
	}

	if err := r.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("renderer config: %w", err)
	}
	if r.collectWorkers <= 0 {
		r.collectWorkers = r.cfg.CollectWorkers
	}
	if r.collectWorkers <= 0 {
		r.collectWorkers = max(runtime.NumCPU()-1, 1)
	}

	if r.ctx == nil {
		r.ctx = context.NewContext()
	}
	if r.queue == nil {
		r.queue = queue.NewQueue(
			queue.WithFrustumCulling(r.cfg.FrustumCulling),
			queue.WithMaxRenderDistance(r.cfg.MaxRenderDistance),
			queue.WithDistanceSorting(r.cfg.DistanceSorting),
			queue.WithBatching(r.cfg.Batching),
			queue.WithInstancing(r.cfg.Instancing, r.cfg.MaxInstanceCount),
			queue.WithMaxBatchSize(r.cfg.MaxBatchSize),
		)
	}
	if r.pipeline == nil {
		r.pipeline = buildPipeline(r.cfg)
	}

	if err := r.pipeline.Initialize(dev); err != nil {
		return nil, fmt.Errorf("initialize render pipeline: %w", err)
	}

	// Queue size of 256 accommodates typical per-frame drawable counts with
	// headroom; snapshots beyond it block submission briefly.
	r.collectPool = worker.NewDynamicWorkerPool(r.collectWorkers, 256, 1*time.Second)

	dev.SetLostCallback(func(reason string) {
		r.lost.Store(true)
		slog.Error("graphics device lost", "reason", reason)
		if r.onLost != nil {
			r.onLost(reason)
		}
	})

	return r, nil
}

// buildPipeline assembles the pass chain the configuration asks for.
func buildPipeline(cfg Config) pass.Pipeline {
	globalsOptions := []pass.GlobalsOption{
		pass.WithShadowResolution(cfg.ShadowResolution()),
	}
	effects := cfg.effectChain()
	if len(effects) > 0 {
		globalsOptions = append(globalsOptions, pass.WithPostProcess())
	}
	globals := pass.NewGlobals(globalsOptions...)

	var passes []pass.Pass
	var opaqueOptions []pass.OpaqueOption
	if cfg.DepthPrepass {
		passes = append(passes, pass.NewDepthPrepass(globals))
		opaqueOptions = append(opaqueOptions, pass.WithDepthLoad())
	}

	shadow := pass.NewShadowPass(globals)
	shadow.SetEnabled(cfg.Shadows)
	passes = append(passes,
		shadow,
		pass.NewOpaquePass(globals, opaqueOptions...),
		pass.NewSkyboxPass(globals),
		pass.NewTransparentPass(globals),
	)
	if len(effects) > 0 {
		passes = append(passes, pass.NewPostProcessPass(globals, pass.WithEffects(effects...)))
	}

	return pass.NewPipeline("forward",
		pass.WithGlobals(globals),
		pass.WithPasses(passes...),
	)
}

func (r *rendererImpl) Render(cam camera.Camera, scn scene.Scene) error {
	if r.destroyed {
		panic("renderer: render after destroy")
	}
	if r.lost.Load() {
		return nil
	}

	r.ctx.Update(cam, scn)
	width, height := r.dev.SurfaceSize()
	r.ctx.SetViewport(uint32(width), uint32(height))

	r.queue.Clear()
	if cam != nil {
		r.queue.SetCamera(cam)
	}
	if scn != nil {
		r.collect(scn)
	}
	r.queue.Build()

	if _, err := r.dev.AcquireFrame(); err != nil {
		return fmt.Errorf("acquire frame: %w", err)
	}
	enc, err := r.dev.CreateCommandEncoder("frame")
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	r.ctx.SetEncoder(enc)
	defer r.ctx.SetEncoder(nil)

	if err := r.pipeline.Execute(r.ctx, r.queue); err != nil {
		enc.Release()
		return err
	}

	buf, err := enc.Finish()
	if err != nil {
		enc.Release()
		return fmt.Errorf("finish command encoder: %w", err)
	}
	r.dev.Submit(buf)
	r.dev.Present()
	return nil
}

// collect snapshots the scene's drawables into queue elements. The snapshot
// phase (transform copy, bounds, flags) fans out across the worker pool; the
// queue is fed serially afterwards since AddElement is single-writer.
func (r *rendererImpl) collect(scn scene.Scene) {
	drawables := scn.Drawables()
	if len(drawables) == 0 {
		return
	}

	if cap(r.frameScrap) < len(drawables) {
		r.frameScrap = make([]*queue.Element, len(drawables))
	}
	elements := r.frameScrap[:len(drawables)]
	clear(elements)

	var wg sync.WaitGroup
	for i, d := range drawables {
		if d == nil || !d.Enabled() {
			continue
		}
		wg.Add(1)
		r.collectPool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				elements[i] = snapshotElement(d)
				return nil, nil
			},
		})
	}
	wg.Wait()

	for i, el := range elements {
		if el == nil {
			if d := drawables[i]; d != nil && d.Enabled() {
				slog.Warn("skipping drawable without mesh or material", "object", d.ID())
			}
			continue
		}
		if err := r.ensureGeometry(el.Mesh); err != nil {
			slog.Warn("skipping drawable with unuploadable mesh",
				"object", drawables[i].ID(), "mesh", el.Mesh.Label(), "error", err)
			continue
		}
		if err := r.ensureMaterial(el.Material); err != nil {
			slog.Warn("skipping drawable with unbindable material",
				"object", drawables[i].ID(), "material", el.Material.Name(), "error", err)
			continue
		}
		r.queue.AddElement(el)
	}
}

// snapshotElement captures one drawable into a frame-local element, or nil
// when the drawable has no mesh or material.
func snapshotElement(d scene.Drawable) *queue.Element {
	msh := d.Mesh()
	mat := d.Material()
	if msh == nil || mat == nil {
		return nil
	}
	el := &queue.Element{
		Mesh:          msh,
		Material:      mat,
		Bounds:        d.WorldBounds(),
		Layer:         d.Layer(),
		Priority:      d.Priority(),
		Transparent:   mat.Transparent(),
		CastShadow:    d.CastShadow(),
		ReceiveShadow: d.ReceiveShadow(),
	}
	copy(el.Transform[:], d.WorldTransform())
	return el
}

// ensureGeometry uploads a mesh's vertex and index buffers the first time it
// is drawn. Meshes own their buffers and release them themselves.
func (r *rendererImpl) ensureGeometry(msh mesh.Mesh) error {
	if msh.VertexBuffer() != nil && msh.IndexBuffer() != nil {
		return nil
	}
	if err := msh.Upload(r.dev); err != nil {
		return fmt.Errorf("upload mesh %s: %w", msh.Label(), err)
	}
	return nil
}

// ensureMaterial lazily creates the GPU side of a material the first time it
// is drawn: a bind group provider holding the material parameter uniform.
// Materials that already carry a provider are left alone. Parameters are
// written once at creation; materials are immutable after first use.
func (r *rendererImpl) ensureMaterial(mat material.Material) error {
	if mat.BindGroupProvider() != nil {
		return nil
	}

	provider := bind_group_provider.NewBindGroupProvider(mat.Name(),
		bind_group_provider.WithLayoutEntries(pass.MaterialGroupLayout()...))
	if err := provider.Init(r.dev); err != nil {
		return fmt.Errorf("init material bind group: %w", err)
	}

	params := material.ParamsFromMaterial(mat)
	r.dev.WriteBuffer(provider.Buffer(0), 0, params.Marshal())

	mat.SetBindGroupProvider(provider)
	r.materialProviders[mat.ID()] = provider
	return nil
}

func (r *rendererImpl) Resize(width, height int) {
	r.dev.Resize(width, height)
}

func (r *rendererImpl) Stats() pass.Stats {
	return r.pipeline.Stats()
}

func (r *rendererImpl) FrameCount() uint64 {
	return r.ctx.FrameCount()
}

func (r *rendererImpl) Pipeline() pass.Pipeline {
	return r.pipeline
}

func (r *rendererImpl) Queue() queue.Queue {
	return r.queue
}

func (r *rendererImpl) Context() context.Context {
	return r.ctx
}

func (r *rendererImpl) Destroy() {
	if r.destroyed {
		return
	}
	r.pipeline.Destroy()
	for _, provider := range r.materialProviders {
		provider.Release()
	}
	r.materialProviders = nil
	r.dev.Destroy()
	r.destroyed = true
}
