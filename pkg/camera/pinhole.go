package camera

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/light"
)

// PinholeCamera has its lens collapsed to a single world point (a delta
// position) and projects the film onto the plane z=1 in camera space,
// grounded on original_source/include/dort/pinhole_camera.hpp/.cpp.
type PinholeCamera struct {
	CameraToWorld    core.Transform
	worldOrigin      core.Vec3
	projectDimension float64
}

// NewPinholeCamera builds a pinhole camera with the given field of view
// (radians) across the film's longer dimension.
func NewPinholeCamera(cameraToWorld core.Transform, fov float64) *PinholeCamera {
	return &PinholeCamera{
		CameraToWorld:    cameraToWorld,
		worldOrigin:      cameraToWorld.Point(core.Vec3{}),
		projectDimension: 2 * math.Tan(0.5*fov),
	}
}

func (c *PinholeCamera) Flags() Flags { return PositionDelta }

func (c *PinholeCamera) getFilmPos(filmRes core.Vec2, cameraPivot core.Vec3) (core.Vec2, bool) {
	if cameraPivot.Z <= 0 {
		return core.Vec2{}, false
	}
	projectPos := core.NewVec2(cameraPivot.X/cameraPivot.Z, cameraPivot.Y/cameraPivot.Z)
	normalPos := core.NewVec2(projectPos.X/c.projectDimension, projectPos.Y/c.projectDimension)
	if math.Abs(normalPos.X) > 0.5 || math.Abs(normalPos.Y) > 0.5 {
		return core.Vec2{}, false
	}
	return normalToFilm(filmRes, normalPos), true
}

func (c *PinholeCamera) area(filmRes core.Vec2) float64 {
	return imagePlaneArea(filmRes, c.projectDimension)
}

func (c *PinholeCamera) SampleRayImportance(filmRes, filmPos core.Vec2, lensUV core.Vec2) (core.Ray, float64, float64, core.Spectrum) {
	normalPos := filmToNormal(filmRes, filmPos)
	projectPos := core.NewVec2(normalPos.X*c.projectDimension, normalPos.Y*c.projectDimension)
	worldDir := c.CameraToWorld.Vector(core.NewVec3(projectPos.X, projectPos.Y, 1)).Normalize()
	ray := core.NewRay(c.worldOrigin, worldDir)
	return ray, 1, 1, core.NewVec3(1, 1, 1)
}

func (c *PinholeCamera) SamplePivotImportance(filmRes core.Vec2, pivot light.Pivot, lensUV core.Vec2) (core.Vec3, core.Vec2, float64, light.ShadowTest, core.Spectrum, bool) {
	inv := c.CameraToWorld.Inverse()
	cameraPivot := inv.Point(pivot.P)
	if cameraPivot.Z <= 0 {
		return core.Vec3{}, core.Vec2{}, 0, light.ShadowTest{}, core.Spectrum{}, false
	}
	filmPos, ok := c.getFilmPos(filmRes, cameraPivot)
	if !ok {
		return core.Vec3{}, core.Vec2{}, 0, light.ShadowTest{}, core.Spectrum{}, false
	}
	cosTheta := cameraPivot.Z / cameraPivot.Length()
	area := c.area(filmRes)
	shadow := light.NewPointPointShadowTest(pivot.P, pivot.Epsilon, c.worldOrigin, 0)
	w := core.NewVec3(1, 1, 1).Mul(1 / (area * cube(cosTheta)))
	return c.worldOrigin, filmPos, 1, shadow, w, true
}

func (c *PinholeCamera) SamplePoint(filmRes core.Vec2, lensUV core.Vec2) (core.Vec3, float64, float64) {
	return c.worldOrigin, 0, 1
}

func (c *PinholeCamera) EvalImportance(filmRes core.Vec2, p, wi core.Vec3) (core.Vec2, core.Spectrum, bool) {
	inv := c.CameraToWorld.Inverse()
	cameraWi := inv.Vector(wi)
	if cameraWi.Z <= 0 {
		return core.Vec2{}, core.Spectrum{}, false
	}
	filmPos, ok := c.getFilmPos(filmRes, cameraWi)
	if !ok {
		return core.Vec2{}, core.Spectrum{}, false
	}
	cosTheta := cameraWi.Z / cameraWi.Length()
	area := c.area(filmRes)
	return filmPos, core.NewVec3(1, 1, 1).Mul(1 / (area * cube(cosTheta))), true
}

func (c *PinholeCamera) RayImportancePdf(filmRes core.Vec2, origin, wi core.Vec3) (float64, float64) {
	inv := c.CameraToWorld.Inverse()
	cameraWi := inv.Vector(wi)
	if cameraWi.Z <= 0 {
		return 1, 0
	}
	invZ := 1 / cameraWi.Z
	projectPos := core.NewVec2(cameraWi.X*invZ, cameraWi.Y*invZ)
	normalPos := core.NewVec2(projectPos.X/c.projectDimension, projectPos.Y/c.projectDimension)
	if math.Abs(normalPos.X) > 0.5 || math.Abs(normalPos.Y) > 0.5 {
		return 1, 0
	}
	cosTheta := cameraWi.Z / cameraWi.Length()
	return 1, 1 / cube(cosTheta)
}

func (c *PinholeCamera) PivotImportancePdf(filmRes core.Vec2, pGen, pivotFix core.Vec3) float64 {
	return 1
}
