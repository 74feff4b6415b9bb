package context

import (
	"github.com/forge3d/forge/common"
	"github.com/forge3d/forge/engine/light"
)

// The structs in this file mirror the uniform block layouts consumed by the
// pass shaders. Every field is a float32 or uint32, so the Go in-memory layout
// has no compiler padding and the records can be uploaded directly with
// common.StructToBytes.

// FrameData is the GPU-layout record for the per-frame camera and timing
// uniform block, bound at group 0 binding 0 in every pass.
type FrameData struct {
	View              [16]float32
	Projection        [16]float32
	ViewProjection    [16]float32
	InverseView       [16]float32
	InverseProjection [16]float32
	CameraPosition    [3]float32
	Time              float32
	CameraForward     [3]float32
	DeltaTime         float32
}

// Bytes returns the record as a byte slice view for buffer upload.
func (d *FrameData) Bytes() []byte {
	return common.StructToBytes(d)
}

// LightData is the GPU-layout record for the lighting uniform block: ambient
// and fog terms, per-type table counts, and the fixed-capacity light tables.
type LightData struct {
	AmbientColor     [3]float32
	AmbientIntensity float32
	FogColor         [3]float32
	FogDensity       float32
	DirectionalCount uint32
	PointCount       uint32
	SpotCount        uint32
	_pad0            uint32
	Directional      [light.MaxDirectionalLights]light.DirectionalLightData
	Point            [light.MaxPointLights]light.PointLightData
	Spot             [light.MaxSpotLights]light.SpotLightData
}

// Bytes returns the record as a byte slice view for buffer upload.
func (d *LightData) Bytes() []byte {
	return common.StructToBytes(d)
}

// ShadowData is the GPU-layout record for the shadow uniform block: the
// light-space view-projection plus comparison parameters. Enabled is 1 when a
// shadow caster exists this frame, 0 otherwise.
type ShadowData struct {
	ViewProjection [16]float32
	Bias           float32
	Enabled        float32
	_pad0          [2]float32
}

// Bytes returns the record as a byte slice view for buffer upload.
func (d *ShadowData) Bytes() []byte {
	return common.StructToBytes(d)
}

func (c *contextImpl) FrameData() FrameData {
	return FrameData{
		View:              c.viewMatrix,
		Projection:        c.projectionMatrix,
		ViewProjection:    c.viewProjectionMatrix,
		InverseView:       c.inverseViewMatrix,
		InverseProjection: c.inverseProjectionMatrix,
		CameraPosition:    c.cameraPosition,
		Time:              c.time,
		CameraForward:     c.cameraForward,
		DeltaTime:         c.deltaTime,
	}
}

func (c *contextImpl) LightData() LightData {
	d := LightData{
		AmbientColor:     c.ambientColor,
		AmbientIntensity: c.ambientIntensity,
		FogColor:         c.fogColor,
		FogDensity:       c.fogDensity,
		DirectionalCount: uint32(len(c.directional)),
		PointCount:       uint32(len(c.point)),
		SpotCount:        uint32(len(c.spot)),
	}
	copy(d.Directional[:], c.directional)
	copy(d.Point[:], c.point)
	copy(d.Spot[:], c.spot)
	return d
}

func (c *contextImpl) ShadowData() ShadowData {
	d := ShadowData{
		ViewProjection: c.shadowViewProjection,
		Bias:           defaultShadowBias,
	}
	if c.shadowCaster != nil {
		d.Enabled = 1
	}
	return d
}
