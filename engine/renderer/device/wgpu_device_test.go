package device

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/forge3d/forge/engine/renderer/pipeline_state"
)

func TestToWGPUCompareFunction(t *testing.T) {
	cases := []struct {
		name string
		in   pipeline_state.CompareFunction
		want wgpu.CompareFunction
	}{
		{"less", pipeline_state.CompareLess, wgpu.CompareFunctionLess},
		{"less_equal", pipeline_state.CompareLessEqual, wgpu.CompareFunctionLessEqual},
		{"always", pipeline_state.CompareAlways, wgpu.CompareFunctionAlways},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := toWGPUCompareFunction(tc.in); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestToWGPUCullMode(t *testing.T) {
	cases := []struct {
		name string
		in   pipeline_state.CullMode
		want wgpu.CullMode
	}{
		{"none", pipeline_state.CullModeNone, wgpu.CullModeNone},
		{"front", pipeline_state.CullModeFront, wgpu.CullModeFront},
		{"back", pipeline_state.CullModeBack, wgpu.CullModeBack},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := toWGPUCullMode(tc.in); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestToWGPULoadAndStoreOps(t *testing.T) {
	if got := toWGPULoadOp(LoadOpLoad); got != wgpu.LoadOpLoad {
		t.Fatalf("expected LoadOpLoad, got %v", got)
	}
	if got := toWGPULoadOp(LoadOpClear); got != wgpu.LoadOpClear {
		t.Fatalf("expected LoadOpClear, got %v", got)
	}
	if got := toWGPUStoreOp(StoreOpDiscard); got != wgpu.StoreOpDiscard {
		t.Fatalf("expected StoreOpDiscard, got %v", got)
	}
	if got := toWGPUStoreOp(StoreOpStore); got != wgpu.StoreOpStore {
		t.Fatalf("expected StoreOpStore, got %v", got)
	}
}
