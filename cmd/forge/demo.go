package main

import (
	"log/slog"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/forge3d/forge/engine"
	"github.com/forge3d/forge/engine/camera"
	"github.com/forge3d/forge/engine/light"
	"github.com/forge3d/forge/engine/material"
	"github.com/forge3d/forge/engine/mesh"
	"github.com/forge3d/forge/engine/renderer"
	"github.com/forge3d/forge/engine/renderer/device"
	"github.com/forge3d/forge/engine/scene"
	"github.com/forge3d/forge/engine/window"
)

// keySpace is the GLFW key code for the space bar.
const keySpace uint32 = 32

func newDemoCommand() *cobra.Command {
	var (
		width    int
		height   int
		profile  bool
		fpsLimit float64
		gridSize int
		fallback bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Render a spinning cube field",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runDemo(cfg, width, height, profile, fpsLimit, gridSize, fallback)
		},
	}

	cmd.Flags().IntVar(&width, "width", 1280, "window width in pixels")
	cmd.Flags().IntVar(&height, "height", 720, "window height in pixels")
	cmd.Flags().BoolVar(&profile, "profile", false, "log frame profile stats")
	cmd.Flags().Float64Var(&fpsLimit, "fps-limit", 0, "cap the render loop in frames per second (0 = uncapped)")
	cmd.Flags().IntVar(&gridSize, "grid", 5, "cube grid dimension")
	cmd.Flags().BoolVar(&fallback, "fallback-adapter", false, "force the software fallback adapter")

	return cmd
}

func runDemo(cfg renderer.Config, width, height int, profile bool, fpsLimit float64, gridSize int, fallback bool) error {
	w := window.NewWindow(
		window.WithTitle("forge demo"),
		window.WithWidth(width),
		window.WithHeight(height),
	)

	sampleCount := uint32(1)
	if cfg.AntiAliasing == renderer.AAMSAA {
		sampleCount = 4
	}
	dev := device.NewWGPUDevice(w.SurfaceDescriptor(), w.Width(), w.Height(), sampleCount, fallback)

	r, err := renderer.NewRenderer(dev, renderer.WithConfig(cfg))
	if err != nil {
		return err
	}
	defer r.Destroy()

	if gridSize < 1 {
		gridSize = 1
	}
	scn, spinners := buildDemoScene(float32(width)/float32(height), gridSize)

	eng := engine.NewEngine(w, r,
		engine.WithScene(scn),
		engine.WithProfiling(profile),
		engine.WithRenderFrameLimit(fpsLimit),
	)

	var paused atomic.Bool
	w.SetKeyCallback(func(keyCode uint32, pressed bool) {
		if pressed && keyCode == keySpace {
			paused.Store(!paused.Load())
		}
	})

	var elapsed float32
	eng.SetTickCallback(func(deltaTime float32) {
		if paused.Load() {
			return
		}
		elapsed += deltaTime
		for i, obj := range spinners {
			phase := float32(i) * 0.35
			obj.SetRotation(0, elapsed*0.8+phase, elapsed*0.3)
		}
	})

	slog.Info("starting demo", "width", width, "height", height, "grid", len(spinners))
	eng.Run()
	return nil
}

// buildDemoScene assembles a lit test scene: a ground plane under a grid of
// cubes, a shadow-casting sun, and a perspective camera looking down at the
// field. The returned objects are the cubes the tick callback should spin.
func buildDemoScene(aspect float32, gridSize int) (scene.Scene, []scene.Object) {
	cam := camera.NewCamera(
		camera.WithPosition(0, 7, 14),
		camera.WithTarget(0, 0.5, 0),
		camera.WithAspect(aspect),
		camera.WithClipPlanes(0.1, 200),
	)

	sun := light.NewLight(light.LightTypeDirectional,
		light.WithDirection(-0.4, -1, -0.25),
		light.WithColor(1, 0.96, 0.9),
		light.WithIntensity(2.5),
		light.WithCastsShadows(),
	)

	scn := scene.NewScene(
		scene.WithName("demo"),
		scene.WithCamera(cam),
		scene.WithLights(sun),
		scene.WithAmbient([3]float32{0.45, 0.5, 0.6}, 0.25),
	)

	ground := material.NewMaterial(
		material.WithName("ground"),
		material.WithBaseColor([4]float32{0.35, 0.38, 0.4, 1}),
		material.WithRoughness(0.9),
	)
	scn.Add(scene.NewObject(
		scene.WithMesh(mesh.NewPlane(40, 40)),
		scene.WithMaterial(ground),
		scene.WithShadows(false, true),
	))

	cubeMesh := mesh.NewCube(1)
	palette := [][4]float32{
		{0.85, 0.25, 0.2, 1},
		{0.2, 0.6, 0.85, 1},
		{0.9, 0.75, 0.2, 1},
		{0.3, 0.75, 0.35, 1},
	}
	glass := material.NewMaterial(
		material.WithName("glass"),
		material.WithBaseColor([4]float32{0.5, 0.8, 0.95, 0.45}),
		material.WithRoughness(0.1),
		material.WithTransparent(),
	)

	var spinners []scene.Object
	for gx := 0; gx < gridSize; gx++ {
		for gz := 0; gz < gridSize; gz++ {
			x := float32(gx-gridSize/2) * 2.5
			z := float32(gz-gridSize/2) * 2.5

			var mat material.Material
			if (gx+gz)%5 == 4 {
				mat = glass
			} else {
				mat = material.NewMaterial(
					material.WithBaseColor(palette[(gx+gz)%len(palette)]),
					material.WithRoughness(0.5),
					material.WithMetallic(float32(gx)/float32(gridSize)),
				)
			}

			obj := scene.NewObject(
				scene.WithMesh(cubeMesh),
				scene.WithMaterial(mat),
				scene.WithPosition(x, 1, z),
			)
			scn.Add(obj)
			spinners = append(spinners, obj)
		}
	}

	return scn, spinners
}
