package shape

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
)

// Disc is a flat annulus lying in the local z=Height plane, centered on the
// z axis, with outward normal +Z. General placement is the job of the
// primitive tree's frame transform (spec.md §3's "shape primitive bundles
// a Shape ... and a shape-to-frame Transform"), so the shape itself stays
// in canonical local coordinates.
type Disc struct {
	Height                   float64
	Radius, InnerRadius      float64
}

func NewDisc(radius float64) *Disc { return &Disc{Radius: radius} }

func (d *Disc) Hit(ray core.Ray) (Hit, bool) {
	if math.Abs(ray.Direction.Z) < 1e-12 {
		return Hit{}, false
	}
	t := (d.Height - ray.Origin.Z) / ray.Direction.Z
	if t < ray.TMin || t > ray.TMax {
		return Hit{}, false
	}
	p := ray.At(t)
	distSq := p.X*p.X + p.Y*p.Y
	if distSq > d.Radius*d.Radius || distSq < d.InnerRadius*d.InnerRadius {
		return Hit{}, false
	}
	dist := math.Sqrt(distSq)
	phi := math.Atan2(p.Y, p.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	uv := core.NewVec2(phi/(2*math.Pi), 1-(dist-d.InnerRadius)/(d.Radius-d.InnerRadius))
	n := core.NewVec3(0, 0, 1)
	dpdu := core.NewVec3(-p.Y, p.X, 0)
	dpdv := core.NewVec3(p.X, p.Y, 0).Mul((d.InnerRadius - d.Radius) / math.Max(dist, 1e-12))
	return Hit{T: t, Epsilon: d.Radius * 1e-5, Geom: core.DiffGeom{
		P: p, Nn: n, UV: uv, DpDu: dpdu, DpDv: dpdv,
		NnShading: n, DpDuShading: dpdu, DpDvShading: dpdv,
	}}, true
}

func (d *Disc) HitP(ray core.Ray) bool { _, ok := d.Hit(ray); return ok }

func (d *Disc) Bounds() core.Box {
	return core.NewBox(
		core.NewVec3(-d.Radius, -d.Radius, d.Height-1e-4),
		core.NewVec3(d.Radius, d.Radius, d.Height+1e-4),
	)
}

func (d *Disc) Area() float64 {
	return math.Pi * (d.Radius*d.Radius - d.InnerRadius*d.InnerRadius)
}

func (d *Disc) SamplePoint(uv core.Vec2) PointSample {
	x, y := concentricDisk(uv.X, uv.Y)
	// Remap the unit-disk radius so r^2 is uniform on [InnerRadius^2,
	// Radius^2], keeping the sample uniform by area on the annulus.
	scale := d.Radius
	if rho2 := x*x + y*y; d.InnerRadius > 0 && rho2 > 0 {
		inner2 := d.InnerRadius * d.InnerRadius
		scale = math.Sqrt(inner2+rho2*(d.Radius*d.Radius-inner2)) / math.Sqrt(rho2)
	}
	p := core.NewVec3(x*scale, y*scale, d.Height)
	return PointSample{P: p, Nn: core.NewVec3(0, 0, 1), Epsilon: d.Radius * 1e-5, PdfArea: 1 / d.Area()}
}

func concentricDisk(u1, u2 float64) (float64, float64) {
	sx, sy := 2*u1-1, 2*u2-1
	if sx == 0 && sy == 0 {
		return 0, 0
	}
	var r, theta float64
	if math.Abs(sx) > math.Abs(sy) {
		r, theta = sx, (math.Pi/4)*(sy/sx)
	} else {
		r, theta = sy, (math.Pi/2)-(math.Pi/4)*(sx/sy)
	}
	return r * math.Cos(theta), r * math.Sin(theta)
}

func (d *Disc) SamplePointPivot(pivot core.Vec3, uv core.Vec2) DirectionSample {
	return SamplePointPivotDefault(d, pivot, uv)
}

func (d *Disc) PdfPivot(pivot, p, nn core.Vec3) float64 {
	return PdfPivotDefault(d, pivot, p, nn)
}
