// Command render is a minimal worked example of the programmatic scene
// and render APIs (spec.md §6): it builds a Cornell box directly through
// pkg/scenebuild, renders it with the path-tracing integrator through
// pkg/render, and writes an 8-bit PNG. It takes no flags — a real front
// end owns scene description and CLI parsing; this only demonstrates the
// core's entry points, grounded on the teacher's main.go's overall
// scene-build → integrator-select → render → save shape, stripped of the
// flag parsing, PBRT loading, and multi-scene switch that belong to that
// out-of-scope front end.
package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/lumenforge/lumen/pkg/bsdf"
	"github.com/lumenforge/lumen/pkg/camera"
	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/film"
	"github.com/lumenforge/lumen/pkg/integrator"
	"github.com/lumenforge/lumen/pkg/primitive"
	"github.com/lumenforge/lumen/pkg/render"
	"github.com/lumenforge/lumen/pkg/scenebuild"
	"github.com/lumenforge/lumen/pkg/shape"
	"github.com/lumenforge/lumen/pkg/workpool"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "render:", err)
		os.Exit(1)
	}
}

func run() error {
	scene, err := buildCornellScene()
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}

	req := render.Request{
		Scene:      scene,
		Integrator: integrator.NewPathTracingIntegrator(8, 4, integrator.MIS),
		Filter:     film.NewGaussianFilter(core.NewVec2(1.5, 1.5), 2.0),
		Iterations: 16,
		Seed:       1,
		Pool:       workpool.New(0),
		Logger:     core.NewDefaultLogger(),
	}
	progress := render.NewProgress(req.Iterations)

	start := time.Now()
	f, stats, err := render.Render(req, progress)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	fmt.Printf("rendered %d/%d iterations over %v\n", stats.IterationsCompleted, stats.TotalIterations, time.Since(start))

	return f.SavePNG("output/cornell.png")
}

// buildCornellScene assembles the classic Cornell box — five quad walls,
// a ceiling area light, a mirrored sphere and a glass sphere — through
// the push/pop builder API, grounded on the teacher's pkg/scene/cornell.go
// (box dimensions, wall colours, light placement) generalized from that
// file's direct field construction to scenebuild's stateful builder.
func buildCornellScene() (*integrator.Scene, error) {
	const box = 555.0

	b := scenebuild.New()

	white := primitive.NewSingleBxdf(bsdf.NewLambert(core.NewVec3(0.73, 0.73, 0.73)))
	red := primitive.NewSingleBxdf(bsdf.NewLambert(core.NewVec3(0.65, 0.05, 0.05)))
	green := primitive.NewSingleBxdf(bsdf.NewLambert(core.NewVec3(0.12, 0.45, 0.15)))

	b.SetMaterial(white)
	walls := []*shape.Quad{
		shape.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(box, 0, 0), core.NewVec3(0, 0, box)), // floor
		shape.NewQuad(core.NewVec3(0, box, 0), core.NewVec3(box, 0, 0), core.NewVec3(0, 0, box)), // ceiling
		shape.NewQuad(core.NewVec3(0, 0, box), core.NewVec3(box, 0, 0), core.NewVec3(0, box, 0)), // back wall
	}
	for _, q := range walls {
		if err := b.AddShape(q); err != nil {
			return nil, err
		}
	}

	b.SetMaterial(red)
	leftWall := shape.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, box), core.NewVec3(0, box, 0))
	if err := b.AddShape(leftWall); err != nil {
		return nil, err
	}

	b.SetMaterial(green)
	rightWall := shape.NewQuad(core.NewVec3(box, 0, 0), core.NewVec3(0, box, 0), core.NewVec3(0, 0, box))
	if err := b.AddShape(rightWall); err != nil {
		return nil, err
	}

	b.SetMaterial(white)
	lightSize := 130.0
	offset := (box - lightSize) / 2
	lightQuad := shape.NewQuad(
		core.NewVec3(offset, box-1, offset),
		core.NewVec3(lightSize, 0, 0),
		core.NewVec3(0, 0, lightSize),
	)
	if _, err := b.AddAreaShape(lightQuad, core.NewVec3(15, 15, 15), true); err != nil {
		return nil, err
	}

	mirror := primitive.NewSingleBxdf(bsdf.NewMirror(core.NewVec3(0.9, 0.9, 0.9)))
	b.SetMaterial(mirror)
	b.Translate(core.NewVec3(185, 82.5, 169))
	if err := b.AddShape(shape.NewSphere(core.NewVec3(0, 0, 0), 82.5)); err != nil {
		return nil, err
	}
	b.ResetTransform()

	glass := primitive.NewSingleBxdf(bsdf.NewDielectric(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1), 1.5, 1.0))
	b.SetMaterial(glass)
	b.Translate(core.NewVec3(370, 90, 351))
	if err := b.AddShape(shape.NewSphere(core.NewVec3(0, 0, 0), 90)); err != nil {
		return nil, err
	}
	b.ResetTransform()

	cameraToWorld := core.LookAt(core.NewVec3(278, 278, -800), core.NewVec3(278, 278, 0), core.NewVec3(0, 1, 0))
	b.SetCamera(camera.NewPinholeCamera(cameraToWorld, 40*math.Pi/180))

	return b.BuildScene(core.NewVec2(400, 400))
}
