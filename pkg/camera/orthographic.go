package camera

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/light"
)

// OrthographicCamera maps every film point to a point on the lens plane
// (z=0 in camera space) with a fixed parallel direction perpendicular to
// it: a delta direction, but a continuously-distributed position.
// Grounded on original_source/include/dort/ortho_camera.hpp/.cpp.
type OrthographicCamera struct {
	CameraToWorld core.Transform
	Dimension     float64
	worldDir      core.Vec3
}

func NewOrthographicCamera(cameraToWorld core.Transform, dimension float64) *OrthographicCamera {
	return &OrthographicCamera{
		CameraToWorld: cameraToWorld,
		Dimension:     dimension,
		worldDir:      cameraToWorld.Vector(core.NewVec3(0, 0, 1)),
	}
}

func (c *OrthographicCamera) Flags() Flags { return DirectionDelta }

func (c *OrthographicCamera) area(filmRes core.Vec2) float64 {
	return imagePlaneArea(filmRes, c.Dimension)
}

func (c *OrthographicCamera) getPlanePos(filmRes, filmPos core.Vec2) core.Vec2 {
	d := math.Max(filmRes.X, filmRes.Y)
	return core.NewVec2(
		(filmPos.X-0.5*filmRes.X)*(c.Dimension/d),
		(filmPos.Y-0.5*filmRes.Y)*(c.Dimension/d),
	)
}

func (c *OrthographicCamera) getFilmPos(filmRes core.Vec2, cameraPivot core.Vec3) (core.Vec2, bool) {
	if cameraPivot.Z < 0 {
		return core.Vec2{}, false
	}
	d := math.Max(filmRes.X, filmRes.Y)
	filmPos := core.NewVec2(
		cameraPivot.X*(d/c.Dimension)+0.5*filmRes.X,
		cameraPivot.Y*(d/c.Dimension)+0.5*filmRes.Y,
	)
	if filmPos.X < 0 || filmPos.X > filmRes.X || filmPos.Y < 0 || filmPos.Y > filmRes.Y {
		return core.Vec2{}, false
	}
	return filmPos, true
}

func (c *OrthographicCamera) SampleRayImportance(filmRes, filmPos core.Vec2, lensUV core.Vec2) (core.Ray, float64, float64, core.Spectrum) {
	planePos := c.getPlanePos(filmRes, filmPos)
	worldOrigin := c.CameraToWorld.Point(core.NewVec3(planePos.X, planePos.Y, 0))
	area := c.area(filmRes)
	ray := core.NewRay(worldOrigin, c.worldDir)
	return ray, 1 / area, 1, core.NewVec3(1, 1, 1).Mul(1 / area)
}

func (c *OrthographicCamera) SamplePivotImportance(filmRes core.Vec2, pivot light.Pivot, lensUV core.Vec2) (core.Vec3, core.Vec2, float64, light.ShadowTest, core.Spectrum, bool) {
	inv := c.CameraToWorld.Inverse()
	cameraPivot := inv.Point(pivot.P)
	filmPos, ok := c.getFilmPos(filmRes, cameraPivot)
	if !ok {
		return core.Vec3{}, core.Vec2{}, 0, light.ShadowTest{}, core.Spectrum{}, false
	}
	planePos := c.getPlanePos(filmRes, filmPos)
	worldP := c.CameraToWorld.Point(core.NewVec3(planePos.X, planePos.Y, 0))
	area := c.area(filmRes)
	dist2 := worldP.Sub(pivot.P).LengthSquared()
	if dist2 == 0 {
		return core.Vec3{}, core.Vec2{}, 0, light.ShadowTest{}, core.Spectrum{}, false
	}
	shadow := light.NewPointPointShadowTest(pivot.P, pivot.Epsilon, worldP, 0)
	return worldP, filmPos, 1 / dist2, shadow, core.NewVec3(1, 1, 1).Mul(1 / area), true
}

func (c *OrthographicCamera) SamplePoint(filmRes core.Vec2, lensUV core.Vec2) (core.Vec3, float64, float64) {
	filmPos := core.NewVec2(lensUV.X*filmRes.X, lensUV.Y*filmRes.Y)
	planePos := c.getPlanePos(filmRes, filmPos)
	posPdf := 1 / c.area(filmRes)
	return c.CameraToWorld.Point(core.NewVec3(planePos.X, planePos.Y, 0)), 0, posPdf
}

func (c *OrthographicCamera) EvalImportance(filmRes core.Vec2, p, wi core.Vec3) (core.Vec2, core.Spectrum, bool) {
	return core.Vec2{}, core.Spectrum{}, false
}

func (c *OrthographicCamera) RayImportancePdf(filmRes core.Vec2, origin, wi core.Vec3) (float64, float64) {
	return 1 / c.area(filmRes), 1
}

func (c *OrthographicCamera) PivotImportancePdf(filmRes core.Vec2, pGen, pivotFix core.Vec3) float64 {
	dist2 := pGen.Sub(pivotFix).LengthSquared()
	if dist2 == 0 {
		return 0
	}
	return 1 / dist2
}
