package render

import (
	"math"

	"github.com/lumenforge/lumen/pkg/bsdf"
	"github.com/lumenforge/lumen/pkg/camera"
	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/integrator"
	"github.com/lumenforge/lumen/pkg/light"
	"github.com/lumenforge/lumen/pkg/primitive"
	"github.com/lumenforge/lumen/pkg/shape"
)

// testFilmRes is the film resolution every driver test renders at; kept
// small since tests run every pixel through a real integrator.
var testFilmRes = core.NewVec2(16, 16)

// buildTestScene mirrors pkg/integrator's own test fixture: a diffuse
// floor sphere lit by a small emissive sphere overhead, viewed by a
// pinhole camera. Rebuilt here rather than imported since
// pkg/integrator's buildTestScene is test-only and unexported.
func buildTestScene() *integrator.Scene {
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

	return integrator.NewScene(agg, lights, cam, bounds, testFilmRes)
}
