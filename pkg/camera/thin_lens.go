package camera

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/light"
	"github.com/lumenforge/lumen/pkg/sampler"
)

// ThinLensCamera has neither a delta position nor a delta direction: the
// lens is sampled over a disk of LensRadius, giving depth of field around
// a focus plane at FocalDistance. Grounded on
// original_source/include/dort/thin_lens_camera.hpp/.cpp.
type ThinLensCamera struct {
	CameraToWorld    core.Transform
	LensRadius       float64
	FocalDistance    float64
	projectDimension float64
}

func NewThinLensCamera(cameraToWorld core.Transform, fov, lensRadius, focalDistance float64) *ThinLensCamera {
	return &ThinLensCamera{
		CameraToWorld:    cameraToWorld,
		LensRadius:       lensRadius,
		FocalDistance:    focalDistance,
		projectDimension: 2 * math.Tan(0.5*fov),
	}
}

func (c *ThinLensCamera) Flags() Flags { return 0 }

func (c *ThinLensCamera) area(filmRes core.Vec2) float64 {
	return imagePlaneArea(filmRes, c.projectDimension)
}

func (c *ThinLensCamera) getFocusPoint(filmRes, filmPos core.Vec2) core.Vec3 {
	d := math.Max(filmRes.X, filmRes.Y)
	planeX := (filmPos.X - 0.5*filmRes.X) * (c.projectDimension / d)
	planeY := (filmPos.Y - 0.5*filmRes.Y) * (c.projectDimension / d)
	return core.NewVec3(planeX*c.FocalDistance, planeY*c.FocalDistance, c.FocalDistance)
}

func (c *ThinLensCamera) sampleLensPoint(u1, u2 float64) core.Vec3 {
	x, y := sampler.UniformSampleDisk(u1, u2)
	return core.NewVec3(x*c.LensRadius, y*c.LensRadius, 0)
}

func (c *ThinLensCamera) getFilmPos(filmRes core.Vec2, lensPoint, cameraPivot core.Vec3) (core.Vec2, bool) {
	if cameraPivot.Z <= 0 {
		return core.Vec2{}, false
	}
	t := c.FocalDistance / cameraPivot.Z
	focalPlanePos := lensPoint.Add(cameraPivot.Sub(lensPoint).Mul(t))
	if focalPlanePos.Z == 0 {
		return core.Vec2{}, false
	}
	projectPos := core.NewVec2(focalPlanePos.X/focalPlanePos.Z, focalPlanePos.Y/focalPlanePos.Z)
	normalPos := core.NewVec2(projectPos.X/c.projectDimension, projectPos.Y/c.projectDimension)
	if math.Abs(normalPos.X) > 0.5 || math.Abs(normalPos.Y) > 0.5 {
		return core.Vec2{}, false
	}
	return normalToFilm(filmRes, normalPos), true
}

func (c *ThinLensCamera) SampleRayImportance(filmRes, filmPos core.Vec2, lensUV core.Vec2) (core.Ray, float64, float64, core.Spectrum) {
	focusPoint := c.getFocusPoint(filmRes, filmPos)
	lensPoint := c.sampleLensPoint(lensUV.X, lensUV.Y)
	area := c.area(filmRes)
	cosTheta := focusPoint.Z / focusPoint.Length()

	worldFocusPoint := c.CameraToWorld.Point(focusPoint)
	worldLensPoint := c.CameraToWorld.Point(lensPoint)
	posPdf := 1 / (math.Pi * c.LensRadius * c.LensRadius)
	dirPdf := 1 / (area * cube(cosTheta))
	ray := core.NewRay(worldLensPoint, worldFocusPoint.Sub(worldLensPoint).Normalize())
	return ray, posPdf, dirPdf, core.NewVec3(1, 1, 1)
}

func (c *ThinLensCamera) SamplePivotImportance(filmRes core.Vec2, pivot light.Pivot, lensUV core.Vec2) (core.Vec3, core.Vec2, float64, light.ShadowTest, core.Spectrum, bool) {
	lensPoint := c.sampleLensPoint(lensUV.X, lensUV.Y)
	inv := c.CameraToWorld.Inverse()
	cameraPivot := inv.Point(pivot.P)
	filmPos, ok := c.getFilmPos(filmRes, lensPoint, cameraPivot)
	if !ok {
		return core.Vec3{}, core.Vec2{}, 0, light.ShadowTest{}, core.Spectrum{}, false
	}

	area := c.area(filmRes)
	worldP := c.CameraToWorld.Point(lensPoint)
	pPdf := 1 / (math.Pi * c.LensRadius * c.LensRadius)
	shadow := light.NewPointPointShadowTest(pivot.P, pivot.Epsilon, worldP, 0)
	w := core.NewVec3(1, 1, 1).Mul(1 / area)
	return worldP, filmPos, pPdf, shadow, w, true
}

func (c *ThinLensCamera) SamplePoint(filmRes core.Vec2, lensUV core.Vec2) (core.Vec3, float64, float64) {
	lensPoint := c.sampleLensPoint(lensUV.X, lensUV.Y)
	posPdf := 1 / (math.Pi * c.LensRadius * c.LensRadius)
	return c.CameraToWorld.Point(lensPoint), 0, posPdf
}

func (c *ThinLensCamera) EvalImportance(filmRes core.Vec2, p, wi core.Vec3) (core.Vec2, core.Spectrum, bool) {
	inv := c.CameraToWorld.Inverse()
	lensPoint := inv.Point(p)
	dir := inv.Vector(wi)
	cameraPivot := dir.Add(lensPoint)
	filmPos, ok := c.getFilmPos(filmRes, lensPoint, cameraPivot)
	if !ok {
		return core.Vec2{}, core.Spectrum{}, false
	}

	cosTheta := dir.Z / dir.Length()
	area := c.area(filmRes)
	w := core.NewVec3(1, 1, 1).Mul(1 / (math.Pi * c.LensRadius * c.LensRadius * area * cube(cosTheta)))
	return filmPos, w, true
}

func (c *ThinLensCamera) RayImportancePdf(filmRes core.Vec2, origin, wi core.Vec3) (float64, float64) {
	inv := c.CameraToWorld.Inverse()
	cameraWi := inv.Vector(wi)
	cosTheta := cameraWi.Z / cameraWi.Length()
	area := c.area(filmRes)
	posPdf := 1 / (math.Pi * c.LensRadius * c.LensRadius)
	dirPdf := 1 / (area * cube(cosTheta))
	return posPdf, dirPdf
}

func (c *ThinLensCamera) PivotImportancePdf(filmRes core.Vec2, pGen, pivotFix core.Vec3) float64 {
	return 1 / (math.Pi * c.LensRadius * c.LensRadius)
}
