package light

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/sampler"
)

// PointLight is an isotropic point emitter, grounded on
// original_source/include/dort/point_light.hpp and the teacher's
// pkg/lights point-light handling inside quad/disc lights' delta-case
// companions.
type PointLight struct {
	P         core.Vec3
	Intensity core.Spectrum
}

func NewPointLight(p core.Vec3, intensity core.Spectrum) *PointLight {
	return &PointLight{P: p, Intensity: intensity}
}

func (p *PointLight) Flags() Flags { return Delta }

func (p *PointLight) SampleRayRadiance(scene SceneBounds, uPos, uDir core.Vec2) (core.Ray, core.Vec3, float64, float64, core.Spectrum) {
	dir, _ := sampler.UniformSampleSphere(uDir.X, uDir.Y)
	ray := core.NewRay(p.P, dir)
	return ray, dir, 1, sampler.UniformSpherePDF(), p.Intensity
}

func (p *PointLight) SamplePivotRadiance(pivot Pivot, uv core.Vec2) (core.Vec3, core.Vec3, core.Vec3, float64, float64, ShadowTest, core.Spectrum, bool) {
	toLight := p.P.Sub(pivot.P)
	dist2 := toLight.LengthSquared()
	if dist2 == 0 {
		return core.Vec3{}, core.Vec3{}, core.Vec3{}, 0, 0, ShadowTest{}, core.Spectrum{}, false
	}
	dist := math.Sqrt(dist2)
	wi := toLight.Mul(1 / dist)
	shadow := NewPointPointShadowTest(pivot.P, pivot.Epsilon, p.P, 1e-4)
	le := p.Intensity.Mul(1 / dist2)
	return wi, p.P, wi.Mul(-1), 1e-4, 1, shadow, le, true
}

func (p *PointLight) SamplePoint(uv core.Vec2) (core.Vec3, core.Vec3, float64, float64, bool) {
	return core.Vec3{}, core.Vec3{}, 0, 0, false
}

func (p *PointLight) EvalRadiance(pt, nn core.Vec3, pivot Pivot) core.Spectrum { return core.Spectrum{} }

func (p *PointLight) PivotRadiancePdf(wi core.Vec3, pivot Pivot) float64 { return 0 }

func (p *PointLight) RayRadiancePdf(scene SceneBounds, origin, dir, nn core.Vec3) (float64, float64) {
	return 1, sampler.UniformSpherePDF()
}

func (p *PointLight) BackgroundRadiance(ray core.Ray) core.Spectrum { return core.Spectrum{} }

func (p *PointLight) ApproximatePower(scene SceneBounds) float64 {
	return 4 * math.Pi * p.Intensity.Luminance()
}
