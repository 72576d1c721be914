package light

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/sampler"
)

// InfiniteLight is a uniform (constant-radiance) environment emitter,
// grounded on the teacher's pkg/lights/uniform_infinite_light.go (cosine-
// weighted hemisphere sampling toward the pivot's normal, disk-based ray
// sampling against the finite scene bounding sphere) and
// original_source/include/dort/environment_light.hpp for the
// sample_ray_radiance disk placement. Image-backed environment maps are
// out of scope (spec.md §1 excludes image file I/O); Radiance stands in
// for a constant environment, which still exercises every operation an
// image-backed variant would need.
type InfiniteLight struct {
	Radiance core.Spectrum
}

func NewInfiniteLight(radiance core.Spectrum) *InfiniteLight {
	return &InfiniteLight{Radiance: radiance}
}

func (u *InfiniteLight) Flags() Flags { return Background }

func (u *InfiniteLight) SampleRayRadiance(scene SceneBounds, uPos, uDir core.Vec2) (core.Ray, core.Vec3, float64, float64, core.Spectrum) {
	dir, dirPdf := sampler.UniformSampleSphere(uDir.X, uDir.Y)
	s, t := core.CoordinateSystem(dir)
	dx, dy := sampler.UniformSampleDisk(uPos.X, uPos.Y)
	onDisk := scene.Center.Add(s.Mul(dx * scene.Radius)).Add(t.Mul(dy * scene.Radius))
	origin := onDisk.Sub(dir.Mul(scene.Radius))
	ray := core.NewRay(origin, dir)
	posPdf := 1 / (math.Pi * scene.Radius * scene.Radius)
	return ray, dir.Mul(-1), posPdf, dirPdf, u.Radiance
}

func (u *InfiniteLight) SamplePivotRadiance(pivot Pivot, uv core.Vec2) (core.Vec3, core.Vec3, core.Vec3, float64, float64, ShadowTest, core.Spectrum, bool) {
	localDir, dirPdf := sampler.CosineSampleHemisphere(uv.X, uv.Y)
	s, t := core.CoordinateSystem(pivot.Nn)
	wi := s.Mul(localDir.X).Add(t.Mul(localDir.Y)).Add(pivot.Nn.Mul(localDir.Z))
	if dirPdf <= 0 {
		return core.Vec3{}, core.Vec3{}, core.Vec3{}, 0, 0, ShadowTest{}, core.Spectrum{}, false
	}
	shadow := NewPointDirShadowTest(pivot.P, pivot.Epsilon, wi)
	return wi, core.Vec3{}, wi.Mul(-1), 0, dirPdf, shadow, u.Radiance, true
}

func (u *InfiniteLight) SamplePoint(uv core.Vec2) (core.Vec3, core.Vec3, float64, float64, bool) {
	return core.Vec3{}, core.Vec3{}, 0, 0, false
}

func (u *InfiniteLight) EvalRadiance(p, nn core.Vec3, pivot Pivot) core.Spectrum { return core.Spectrum{} }

func (u *InfiniteLight) PivotRadiancePdf(wi core.Vec3, pivot Pivot) float64 {
	cosTheta := wi.Dot(pivot.Nn)
	if cosTheta <= 0 {
		return 0
	}
	return cosTheta / math.Pi
}

func (u *InfiniteLight) RayRadiancePdf(scene SceneBounds, origin, dir, nn core.Vec3) (float64, float64) {
	if scene.Radius <= 0 {
		return 0, 0
	}
	return 1 / (math.Pi * scene.Radius * scene.Radius), sampler.UniformSpherePDF()
}

func (u *InfiniteLight) BackgroundRadiance(ray core.Ray) core.Spectrum { return u.Radiance }

func (u *InfiniteLight) ApproximatePower(scene SceneBounds) float64 {
	if scene.Radius <= 0 {
		return 0
	}
	return u.Radiance.Luminance() * math.Pi * scene.Radius * scene.Radius
}
