package bind_group_provider

import "github.com/forge3d/forge/engine/renderer/device"

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// FlushBufferWrites writes all staged buffer writes to the device queue.
// Writes targeting a binding with no buffer are skipped.
//
// Parameters:
//   - dev: the device to write through
//   - writes: a slice of BufferWrite structs describing the data to write
func FlushBufferWrites(dev device.Device, writes []BufferWrite) {
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		dev.WriteBuffer(buf, w.Offset, w.Data)
	}
}
