package light

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/sampler"
	"github.com/lumenforge/lumen/pkg/shape"
)

// DiffuseAreaLight wraps a shape.Shape with a constant emitted radiance
// over one side of its surface (the side its geometric normal points
// toward, unless TwoSided). Grounded on the teacher's pkg/lights
// quad/disc/sphere lights (each pairs a Shape with an emission value) and
// shape.go's SamplePointPivot/PdfPivot, which already does the area-to-
// solid-angle Jacobian this light's sampling needs.
type DiffuseAreaLight struct {
	Shape    shape.Shape
	Radiance core.Spectrum
	TwoSided bool
}

func NewDiffuseAreaLight(s shape.Shape, radiance core.Spectrum, twoSided bool) *DiffuseAreaLight {
	return &DiffuseAreaLight{Shape: s, Radiance: radiance, TwoSided: twoSided}
}

func (a *DiffuseAreaLight) Flags() Flags { return Area }

func (a *DiffuseAreaLight) emittedRadiance(nn, wo core.Vec3) core.Spectrum {
	if a.TwoSided || nn.Dot(wo) > 0 {
		return a.Radiance
	}
	return core.Spectrum{}
}

func (a *DiffuseAreaLight) SampleRayRadiance(scene SceneBounds, uPos, uDir core.Vec2) (core.Ray, core.Vec3, float64, float64, core.Spectrum) {
	ps := a.Shape.SamplePoint(uPos)
	nn := ps.Nn
	if a.TwoSided && uDir.X < 0.5 {
		nn = nn.Negate()
		uDir = core.NewVec2(uDir.X*2, uDir.Y)
	} else if a.TwoSided {
		uDir = core.NewVec2(uDir.X*2-1, uDir.Y)
	}
	s, t := core.CoordinateSystem(nn)
	localDir, dirPdf := sampler.CosineSampleHemisphere(uDir.X, uDir.Y)
	dir := s.Mul(localDir.X).Add(t.Mul(localDir.Y)).Add(nn.Mul(localDir.Z))
	if a.TwoSided {
		dirPdf *= 0.5
	}
	ray := core.NewRay(ps.P, dir).WithEpsilon(ps.Epsilon)
	return ray, nn, ps.PdfArea, dirPdf, a.Radiance
}

func (a *DiffuseAreaLight) SamplePivotRadiance(pivot Pivot, uv core.Vec2) (core.Vec3, core.Vec3, core.Vec3, float64, float64, ShadowTest, core.Spectrum, bool) {
	ds := a.Shape.SamplePointPivot(pivot.P, uv)
	if ds.PdfDir <= 0 {
		return core.Vec3{}, core.Vec3{}, core.Vec3{}, 0, 0, ShadowTest{}, core.Spectrum{}, false
	}
	toLight := ds.P.Sub(pivot.P)
	dist := toLight.Length()
	if dist == 0 {
		return core.Vec3{}, core.Vec3{}, core.Vec3{}, 0, 0, ShadowTest{}, core.Spectrum{}, false
	}
	wi := toLight.Mul(1 / dist)
	le := a.emittedRadiance(ds.Nn, wi.Mul(-1))
	shadow := NewPointPointShadowTest(pivot.P, pivot.Epsilon, ds.P, ds.Epsilon)
	return wi, ds.P, ds.Nn, ds.Epsilon, ds.PdfDir, shadow, le, true
}

func (a *DiffuseAreaLight) SamplePoint(uv core.Vec2) (core.Vec3, core.Vec3, float64, float64, bool) {
	ps := a.Shape.SamplePoint(uv)
	return ps.P, ps.Nn, ps.Epsilon, ps.PdfArea, true
}

func (a *DiffuseAreaLight) EvalRadiance(p, nn core.Vec3, pivot Pivot) core.Spectrum {
	wo := pivot.P.Sub(p)
	if wo.LengthSquared() == 0 {
		return core.Spectrum{}
	}
	return a.emittedRadiance(nn, wo.Normalize())
}

func (a *DiffuseAreaLight) PivotRadiancePdf(wi core.Vec3, pivot Pivot) float64 {
	hit, ok := a.Shape.Hit(core.NewRay(pivot.P, wi))
	if !ok {
		return 0
	}
	return a.Shape.PdfPivot(pivot.P, hit.Geom.P, hit.Geom.Nn)
}

func (a *DiffuseAreaLight) RayRadiancePdf(scene SceneBounds, origin, dir, nn core.Vec3) (float64, float64) {
	area := a.Shape.Area()
	if area <= 0 {
		return 0, 0
	}
	posPdf := 1 / area
	dirPdf := math.Abs(nn.Dot(dir)) / math.Pi
	if a.TwoSided {
		dirPdf *= 0.5
	}
	return posPdf, dirPdf
}

func (a *DiffuseAreaLight) BackgroundRadiance(ray core.Ray) core.Spectrum { return core.Spectrum{} }

func (a *DiffuseAreaLight) ApproximatePower(scene SceneBounds) float64 {
	power := a.Radiance.Luminance() * math.Pi * a.Shape.Area()
	if a.TwoSided {
		power *= 2
	}
	return power
}
