package integrator

import (
	"math"

	"github.com/lumenforge/lumen/pkg/bsdf"
	"github.com/lumenforge/lumen/pkg/camera"
	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/light"
	"github.com/lumenforge/lumen/pkg/primitive"
	"github.com/lumenforge/lumen/pkg/sampler"
	"github.com/lumenforge/lumen/pkg/shape"
)

// testFilmRes is the film resolution every test scene is built against.
var testFilmRes = core.NewVec2(64, 64)

// buildTestScene returns a minimal but non-degenerate scene every
// integrator test exercises: a diffuse floor sphere lit by a small
// emissive sphere overhead, viewed by a pinhole camera looking down the
// Z axis. Close enough to a one-room Cornell-style setup to give every
// technique (direct, BSDF, area-light hit) something real to sample.
func buildTestScene() *Scene {
	floorMat := primitive.NewSingleBxdf(bsdf.NewLambert(core.NewVec3(0.7, 0.7, 0.7)))
	floor := primitive.NewShapePrimitive(shape.NewSphere(core.NewVec3(0, -1001, 0), 1000), floorMat, core.Identity())

	lightShape := shape.NewSphere(core.NewVec3(0, 4, 0), 0.5)
	areaLight := light.NewDiffuseAreaLight(lightShape, core.NewVec3(20, 20, 20), true)
	lightMat := primitive.NewSingleBxdf(bsdf.NewLambert(core.NewVec3(0, 0, 0)))
	lightPrim := primitive.NewEmissiveShapePrimitive(lightShape, lightMat, core.Identity(), areaLight)

	agg := primitive.NewListAggregate([]primitive.Primitive{floor, lightPrim})
	lights := []light.Light{areaLight}

	cam := camera.NewPinholeCamera(core.Translate(core.NewVec3(0, 1, -8)), math.Pi/3)
	bounds := light.SceneBounds{Center: core.NewVec3(0, 0, 0), Radius: 1010}

	return NewScene(agg, lights, cam, bounds, testFilmRes)
}

// primaryRay returns the camera ray through the film's center pixel, the
// ray every per-pixel integrator test traces.
func primaryRay(scene *Scene) (core.Ray, core.Vec2) {
	filmPos := core.NewVec2(testFilmRes.X/2, testFilmRes.Y/2)
	ray, _, _, _ := scene.Camera.SampleRayImportance(scene.FilmRes, filmPos, core.Vec2{})
	return ray, filmPos
}

// newTestSampler returns a sampler primed for one pixel sample, ready for
// Get1D/Get2D calls.
func newTestSampler(seed uint64) sampler.Sampler {
	s := sampler.NewStreamSampler(seed, 1)
	s.StartPixel(0, 0)
	s.StartPixelSample(0)
	return s
}

func finiteNonNegative(v core.Spectrum) bool {
	return v.IsFinite() && v.IsNonNegative()
}
