package light

// The structs in this file mirror the std430-compatible layouts consumed by
// the lit fragment shaders. Every record is padded to 16-byte boundaries so
// slices of them can be uploaded directly with common.SliceToBytes.

// MaxDirectionalLights is the fixed capacity of the directional light table.
const MaxDirectionalLights = 4

// MaxPointLights is the fixed capacity of the point light table.
const MaxPointLights = 64

// MaxSpotLights is the fixed capacity of the spot light table.
const MaxSpotLights = 32

// DirectionalLightData is the GPU-layout record for a directional light.
type DirectionalLightData struct {
	Direction [3]float32
	Intensity float32
	Color     [3]float32
	_pad0     float32
}

// PointLightData is the GPU-layout record for a point light.
type PointLightData struct {
	Position  [3]float32
	Range     float32
	Color     [3]float32
	Intensity float32
}

// SpotLightData is the GPU-layout record for a spot light.
type SpotLightData struct {
	Position  [3]float32
	Range     float32
	Direction [3]float32
	Intensity float32
	Color     [3]float32
	InnerCone float32
	OuterCone float32
	_pad0     [3]float32
}

// BuildTables splits a scene's light list into fixed-capacity GPU tables,
// one per light type. Disabled lights are skipped. Lights beyond each
// table's capacity are dropped in list order.
//
// Parameters:
//   - lights: the scene's light list
//
// Returns:
//   - []DirectionalLightData: the directional light table (len <= MaxDirectionalLights)
//   - []PointLightData: the point light table (len <= MaxPointLights)
//   - []SpotLightData: the spot light table (len <= MaxSpotLights)
func BuildTables(lights []Light) ([]DirectionalLightData, []PointLightData, []SpotLightData) {
	var dir []DirectionalLightData
	var point []PointLightData
	var spot []SpotLightData

	for _, l := range lights {
		if l == nil || !l.Enabled() {
			continue
		}
		switch l.Type() {
		case LightTypeDirectional:
			if len(dir) < MaxDirectionalLights {
				dir = append(dir, DirectionalLightData{
					Direction: l.Direction(),
					Intensity: l.Intensity(),
					Color:     l.Color(),
				})
			}
		case LightTypePoint:
			if len(point) < MaxPointLights {
				point = append(point, PointLightData{
					Position:  l.Position(),
					Range:     l.Range(),
					Color:     l.Color(),
					Intensity: l.Intensity(),
				})
			}
		case LightTypeSpot:
			if len(spot) < MaxSpotLights {
				spot = append(spot, SpotLightData{
					Position:  l.Position(),
					Range:     l.Range(),
					Direction: l.Direction(),
					Intensity: l.Intensity(),
					Color:     l.Color(),
					InnerCone: l.InnerCone(),
					OuterCone: l.OuterCone(),
				})
			}
		}
	}

	return dir, point, spot
}

// FirstShadowCaster returns the first enabled, shadow-casting directional
// light in the list, or nil if none exists. The shadow pass renders its
// depth map from this light's perspective.
//
// Parameters:
//   - lights: the scene's light list
//
// Returns:
//   - Light: the shadow-casting directional light or nil
func FirstShadowCaster(lights []Light) Light {
	for _, l := range lights {
		if l != nil && l.Enabled() && l.CastsShadows() && l.Type() == LightTypeDirectional {
			return l
		}
	}
	return nil
}
