package pass

import (
	"fmt"
	"log/slog"

	"github.com/forge3d/forge/common"
	"github.com/forge3d/forge/engine/material"
	"github.com/forge3d/forge/engine/renderer/bind_group_provider"
	"github.com/forge3d/forge/engine/renderer/device"
	"github.com/forge3d/forge/engine/renderer/queue"
)

// defaultTransformCapacity is the number of world transforms a pass's
// transform table holds before draws start being dropped.
const defaultTransformCapacity = 4096

const transformStride = 64 // bytes per column-major 4x4 float32 matrix

// transformTable is a storage buffer of world transforms in draw order,
// rebuilt by each geometry pass every frame. Draw calls address it through
// the instance index: a non-instanced draw uses instanceCount 1 with
// firstInstance pointing at its single transform, an instanced draw covers a
// consecutive run. One addressing scheme serves both, so the shaders need no
// per-object bind group.
type transformTable struct {
	provider bind_group_provider.BindGroupProvider
	capacity int
}

func newTransformTable(label string, capacity int) *transformTable {
	if capacity <= 0 {
		capacity = defaultTransformCapacity
	}
	return &transformTable{
		capacity: capacity,
		provider: bind_group_provider.NewBindGroupProvider(label,
			bind_group_provider.WithLayoutEntries(
				device.BindGroupLayoutEntry{
					Binding:        0,
					Visibility:     device.StageVertex,
					Kind:           device.BindingKindStorageBuffer,
					MinBindingSize: uint64(capacity) * transformStride,
				},
			),
		),
	}
}

func (t *transformTable) init(dev device.Device) error {
	if err := t.provider.Init(dev); err != nil {
		return fmt.Errorf("init transform table: %w", err)
	}
	return nil
}

func (t *transformTable) layout() []device.BindGroupLayoutEntry {
	return t.provider.LayoutEntries()
}

func (t *transformTable) bindGroup() device.BindGroup {
	return t.provider.BindGroup()
}

// upload writes the frame's transforms into the storage buffer. Transforms
// beyond the table capacity are dropped and logged; the corresponding draws
// were already truncated by planDraws.
func (t *transformTable) upload(dev device.Device, transforms [][16]float32) {
	if len(transforms) == 0 {
		return
	}
	if len(transforms) > t.capacity {
		transforms = transforms[:t.capacity]
	}
	dev.WriteBuffer(t.provider.Buffer(0), 0, common.SliceToBytes(transforms))
}

func (t *transformTable) destroy() {
	t.provider.Release()
}

// MaterialGroupLayout returns the layout of the material bind group (group 1
// of the lit pipelines): a single uniform holding the material parameters.
// The renderer creates material bind groups against this layout.
//
// Returns:
//   - []device.BindGroupLayoutEntry: the single-uniform layout
func MaterialGroupLayout() []device.BindGroupLayoutEntry {
	return materialGroupLayout()
}

func materialGroupLayout() []device.BindGroupLayoutEntry {
	var params material.GPUMaterialParams
	return []device.BindGroupLayoutEntry{{
		Binding:        0,
		Visibility:     device.StageFragment,
		Kind:           device.BindingKindUniformBuffer,
		MinBindingSize: uint64(params.Size()),
	}}
}

// drawCmd is one draw call planned against the transform table.
type drawCmd struct {
	batch *queue.Batch
	first uint32 // index of the first transform in the table
	count uint32 // instance count
}

// planDraws flattens a batch sequence into draw commands plus the transform
// table contents, in draw order. Batches with a missing mesh, un-uploaded
// geometry, or (when materials are bound) a missing material or bind group
// are skipped with a log line rather than aborting the frame. Draws past the
// transform capacity are dropped the same way.
func planDraws(passName string, batches []*queue.Batch, needMaterial bool, capacity int) ([]drawCmd, [][16]float32) {
	cmds := make([]drawCmd, 0, len(batches))
	transforms := make([][16]float32, 0, len(batches))

	for _, b := range batches {
		if b == nil || len(b.Elements) == 0 {
			continue
		}
		if b.Mesh == nil || b.Mesh.VertexBuffer() == nil || b.Mesh.IndexBuffer() == nil {
			slog.Warn("skipping batch with missing geometry", "pass", passName)
			continue
		}
		if needMaterial {
			if b.Material == nil {
				slog.Warn("skipping batch with missing material", "pass", passName)
				continue
			}
			if b.Material.BindGroupProvider() == nil || b.Material.BindGroupProvider().BindGroup() == nil {
				slog.Warn("skipping batch with unbound material",
					"pass", passName, "material", b.Material.Name())
				continue
			}
		}

		if b.Instanced {
			if len(transforms)+len(b.Transforms) > capacity {
				slog.Warn("transform table full, dropping batch",
					"pass", passName, "capacity", capacity)
				continue
			}
			first := uint32(len(transforms))
			transforms = append(transforms, b.Transforms...)
			cmds = append(cmds, drawCmd{batch: b, first: first, count: uint32(len(b.Transforms))})
			continue
		}

		for _, el := range b.Elements {
			if len(transforms) >= capacity {
				slog.Warn("transform table full, dropping draw",
					"pass", passName, "capacity", capacity)
				break
			}
			first := uint32(len(transforms))
			transforms = append(transforms, el.Transform)
			cmds = append(cmds, drawCmd{batch: b, first: first, count: 1})
		}
	}

	return cmds, transforms
}

// batchesOrSingles returns the built batches, or wraps each element in a
// singleton batch when batching is disabled on the queue.
func batchesOrSingles(batches []*queue.Batch, elements []*queue.Element) []*queue.Batch {
	if batches != nil {
		return batches
	}
	out := make([]*queue.Batch, 0, len(elements))
	for _, el := range elements {
		out = append(out, &queue.Batch{
			Material: el.Material,
			Mesh:     el.Mesh,
			Elements: []*queue.Element{el},
		})
	}
	return out
}

// drawEncoder issues the planned draws against a render pass encoder,
// tracking the previously bound pipeline, material, and geometry so an
// identical bind is never reissued: the pipeline changes only when the
// material's pipeline key changes, the material group only when the material
// changes, the vertex/index buffers only when the geometry changes.
type drawEncoder struct {
	enc   device.RenderPassEncoder
	stats *Stats

	keyFor       func(mat material.Material) string
	bindMaterial bool
	materialSlot uint32

	haveKey      bool
	lastKey      string
	haveMaterial bool
	lastMaterial uint64
	haveGeometry bool
	lastGeometry uint64
}

func (d *drawEncoder) draw(cmd drawCmd) {
	b := cmd.batch

	key := d.keyFor(b.Material)
	if !d.haveKey || key != d.lastKey {
		d.enc.SetPipelineState(key)
		d.haveKey = true
		d.lastKey = key
		d.stats.StateChanges++
	}

	if d.bindMaterial {
		id := b.Material.ID()
		if !d.haveMaterial || id != d.lastMaterial {
			d.enc.SetBindGroup(d.materialSlot, b.Material.BindGroupProvider().BindGroup())
			d.haveMaterial = true
			d.lastMaterial = id
			d.stats.TextureBindings++
		}
	}

	geom := b.Mesh.GeometryID()
	if !d.haveGeometry || geom != d.lastGeometry {
		d.enc.SetVertexBuffer(0, b.Mesh.VertexBuffer())
		d.enc.SetIndexBuffer(b.Mesh.IndexBuffer(), device.IndexFormatUint32)
		d.haveGeometry = true
		d.lastGeometry = geom
		d.stats.BufferBindings++
	}

	indexCount := b.Mesh.IndexCount()
	d.enc.DrawIndexed(indexCount, cmd.count, 0, 0, cmd.first)
	d.stats.DrawCalls++
	d.stats.Vertices += int(indexCount) * int(cmd.count)
	d.stats.Triangles += int(indexCount/3) * int(cmd.count)
}
