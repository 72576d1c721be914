package shape

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/sampler"
)

// Sphere is a sphere centered at Center with the given Radius, in shape-
// local space (the primitive tree applies any frame transform).
type Sphere struct {
	Center core.Vec3
	Radius float64
}

func NewSphere(center core.Vec3, radius float64) *Sphere {
	return &Sphere{Center: center, Radius: radius}
}

// quadraticRoots solves at^2+bt+c=0, returning the roots in ascending
// order. ok is false for a negative discriminant (no real roots) or a == 0
// (degenerate, zero ray direction — spec.md §7.2).
func quadraticRoots(a, b, c float64) (t0, t1 float64, ok bool) {
	if a == 0 {
		return 0, 0, false
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, 0, false
	}
	sqrtD := math.Sqrt(disc)
	q := -0.5 * (b + math.Copysign(sqrtD, b))
	t0, t1 = q/a, c/q
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return t0, t1, true
}

func (s *Sphere) hitT(ray core.Ray) (float64, bool) {
	oc := ray.Origin.Sub(s.Center)
	a := ray.Direction.Dot(ray.Direction)
	b := 2 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	t0, t1, ok := quadraticRoots(a, b, c)
	if !ok {
		return 0, false
	}
	if t0 >= ray.TMin && t0 <= ray.TMax {
		return t0, true
	}
	if t1 >= ray.TMin && t1 <= ray.TMax {
		return t1, true
	}
	return 0, false
}

func (s *Sphere) geomAt(p core.Vec3) core.DiffGeom {
	n := p.Sub(s.Center).Mul(1 / s.Radius)
	theta := math.Acos(clamp(-n.Y, -1, 1))
	phi := math.Atan2(-n.Z, n.X) + math.Pi
	uv := core.NewVec2(phi/(2*math.Pi), theta/math.Pi)

	zRadius := math.Sqrt(n.X*n.X + n.Z*n.Z)
	var dpdu core.Vec3
	if zRadius > 1e-12 {
		dpdu = core.NewVec3(-n.Z, 0, n.X).Mul(2 * math.Pi / zRadius)
	} else {
		dpdu, _ = core.CoordinateSystem(n)
	}
	dpdv := n.Cross(dpdu)

	return core.DiffGeom{
		P: p, Nn: n, UV: uv,
		DpDu: dpdu, DpDv: dpdv,
		NnShading: n, DpDuShading: dpdu, DpDvShading: dpdv,
	}
}

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

func (s *Sphere) Hit(ray core.Ray) (Hit, bool) {
	t, ok := s.hitT(ray)
	if !ok {
		return Hit{}, false
	}
	p := ray.At(t)
	return Hit{T: t, Epsilon: s.Radius * 1e-5, Geom: s.geomAt(p)}, true
}

func (s *Sphere) HitP(ray core.Ray) bool {
	_, ok := s.hitT(ray)
	return ok
}

func (s *Sphere) Bounds() core.Box {
	r := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewBox(s.Center.Sub(r), s.Center.Add(r))
}

func (s *Sphere) Area() float64 { return 4 * math.Pi * s.Radius * s.Radius }

func (s *Sphere) SamplePoint(uv core.Vec2) PointSample {
	dir, _ := sampler.UniformSampleSphere(uv.X, uv.Y)
	p := s.Center.Add(dir.Mul(s.Radius))
	return PointSample{P: p, Nn: dir, Epsilon: s.Radius * 1e-5, PdfArea: 1 / s.Area()}
}

// SamplePointPivot uses cone sampling when pivot lies outside the sphere
// (importance-sampling only the visible cap, per spec.md §4.2's default
// Jacobian conversion — this overrides the default with a tighter
// distribution rather than relying on it).
func (s *Sphere) SamplePointPivot(pivot core.Vec3, uv core.Vec2) DirectionSample {
	dc := s.Center.Sub(pivot)
	distSq := dc.LengthSquared()
	if distSq <= s.Radius*s.Radius {
		return SamplePointPivotDefault(s, pivot, uv)
	}
	dist := math.Sqrt(distSq)
	sinThetaMax2 := s.Radius * s.Radius / distSq
	cosThetaMax := math.Sqrt(math.Max(0, 1-sinThetaMax2))

	w := dc.Mul(1 / dist)
	wt, wb := core.CoordinateSystem(w)

	localDir, pdfDir := sampler.UniformSampleCone(uv.X, uv.Y, cosThetaMax)
	dir := sampler.FromLocalFrame(wt, wb, w, localDir)

	// Project the sampled direction back onto the sphere surface.
	cosTheta := localDir.Z
	sinTheta2 := math.Max(0, 1-cosTheta*cosTheta)
	ds := dist*cosTheta - math.Sqrt(math.Max(0, s.Radius*s.Radius-distSq*sinTheta2))
	p := pivot.Add(dir.Mul(ds))
	n := p.Sub(s.Center).Mul(1 / s.Radius)

	return DirectionSample{P: p, Nn: n, Epsilon: s.Radius * 1e-5, PdfDir: pdfDir}
}

func (s *Sphere) PdfPivot(pivot, p, nn core.Vec3) float64 {
	distSq := s.Center.Sub(pivot).LengthSquared()
	if distSq <= s.Radius*s.Radius {
		return PdfPivotDefault(s, pivot, p, nn)
	}
	sinThetaMax2 := s.Radius * s.Radius / distSq
	cosThetaMax := math.Sqrt(math.Max(0, 1-sinThetaMax2))
	return sampler.UniformConePDF(cosThetaMax)
}
