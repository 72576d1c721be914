package shape

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
)

// Cylinder is a finite cylinder of Radius about the local z axis, spanning
// [ZMin, ZMax], optionally closed with flat discs at each end.
type Cylinder struct {
	Radius     float64
	ZMin, ZMax float64
	Capped     bool
}

func NewCylinder(radius, zMin, zMax float64, capped bool) *Cylinder {
	return &Cylinder{Radius: radius, ZMin: zMin, ZMax: zMax, Capped: capped}
}

func (c *Cylinder) hitBody(ray core.Ray) (float64, core.Vec3, bool) {
	a := ray.Direction.X*ray.Direction.X + ray.Direction.Y*ray.Direction.Y
	b := 2 * (ray.Direction.X*ray.Origin.X + ray.Direction.Y*ray.Origin.Y)
	cc := ray.Origin.X*ray.Origin.X + ray.Origin.Y*ray.Origin.Y - c.Radius*c.Radius

	t0, t1, ok := quadraticRoots(a, b, cc)
	if !ok {
		return 0, core.Vec3{}, false
	}
	for _, t := range [2]float64{t0, t1} {
		if t < ray.TMin || t > ray.TMax {
			continue
		}
		p := ray.At(t)
		if p.Z < c.ZMin || p.Z > c.ZMax {
			continue
		}
		return t, p, true
	}
	return 0, core.Vec3{}, false
}

func (c *Cylinder) hitCap(ray core.Ray, z float64, normal core.Vec3) (float64, core.Vec3, bool) {
	if math.Abs(ray.Direction.Z) < 1e-12 {
		return 0, core.Vec3{}, false
	}
	t := (z - ray.Origin.Z) / ray.Direction.Z
	if t < ray.TMin || t > ray.TMax {
		return 0, core.Vec3{}, false
	}
	p := ray.At(t)
	if p.X*p.X+p.Y*p.Y > c.Radius*c.Radius {
		return 0, core.Vec3{}, false
	}
	return t, p, true
}

func (c *Cylinder) Hit(ray core.Ray) (Hit, bool) {
	bestT := math.Inf(1)
	var bestP, bestN core.Vec3
	found := false

	if t, p, ok := c.hitBody(ray); ok && t < bestT {
		bestT, bestP, bestN = t, p, core.NewVec3(p.X, p.Y, 0).Mul(1/c.Radius)
		found = true
	}
	if c.Capped {
		if t, p, ok := c.hitCap(ray, c.ZMin, core.NewVec3(0, 0, -1)); ok && t < bestT {
			bestT, bestP, bestN = t, p, core.NewVec3(0, 0, -1)
			found = true
		}
		if t, p, ok := c.hitCap(ray, c.ZMax, core.NewVec3(0, 0, 1)); ok && t < bestT {
			bestT, bestP, bestN = t, p, core.NewVec3(0, 0, 1)
			found = true
		}
	}
	if !found {
		return Hit{}, false
	}

	phi := math.Atan2(bestP.Y, bestP.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	uv := core.NewVec2(phi/(2*math.Pi), (bestP.Z-c.ZMin)/(c.ZMax-c.ZMin))
	dpdu := core.NewVec3(-bestP.Y, bestP.X, 0)
	dpdv := core.NewVec3(0, 0, c.ZMax-c.ZMin)

	return Hit{T: bestT, Epsilon: c.Radius * 1e-5, Geom: core.DiffGeom{
		P: bestP, Nn: bestN, UV: uv, DpDu: dpdu, DpDv: dpdv,
		NnShading: bestN, DpDuShading: dpdu, DpDvShading: dpdv,
	}}, true
}

func (c *Cylinder) HitP(ray core.Ray) bool { _, ok := c.Hit(ray); return ok }

func (c *Cylinder) Bounds() core.Box {
	return core.NewBox(
		core.NewVec3(-c.Radius, -c.Radius, c.ZMin),
		core.NewVec3(c.Radius, c.Radius, c.ZMax),
	)
}

func (c *Cylinder) Area() float64 {
	a := 2 * math.Pi * c.Radius * (c.ZMax - c.ZMin)
	if c.Capped {
		a += 2 * math.Pi * c.Radius * c.Radius
	}
	return a
}

func (c *Cylinder) SamplePoint(uv core.Vec2) PointSample {
	if c.Capped {
		// Choose the wall or a cap in proportion to area, reusing uv.X.
		bodyArea, capArea := 2*math.Pi*c.Radius*(c.ZMax-c.ZMin), math.Pi*c.Radius*c.Radius
		if a := uv.X * c.Area(); a >= bodyArea {
			z, nz, a := c.ZMin, -1.0, a-bodyArea
			if a >= capArea {
				z, nz, a = c.ZMax, 1.0, a-capArea
			}
			r, phi := c.Radius*math.Sqrt(a/capArea), uv.Y*2*math.Pi
			return PointSample{P: core.NewVec3(r*math.Cos(phi), r*math.Sin(phi), z), Nn: core.NewVec3(0, 0, nz), Epsilon: c.Radius * 1e-5, PdfArea: 1 / c.Area()}
		} else {
			uv.X = a / bodyArea
		}
	}
	z := c.ZMin + uv.Y*(c.ZMax-c.ZMin)
	phi := uv.X * 2 * math.Pi
	p := core.NewVec3(c.Radius*math.Cos(phi), c.Radius*math.Sin(phi), z)
	n := core.NewVec3(p.X, p.Y, 0).Mul(1 / c.Radius)
	return PointSample{P: p, Nn: n, Epsilon: c.Radius * 1e-5, PdfArea: 1 / c.Area()}
}

func (c *Cylinder) SamplePointPivot(pivot core.Vec3, uv core.Vec2) DirectionSample {
	return SamplePointPivotDefault(c, pivot, uv)
}

func (c *Cylinder) PdfPivot(pivot, p, nn core.Vec3) float64 {
	return PdfPivotDefault(c, pivot, p, nn)
}
