package shape

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
)

// Cube is an axis-aligned box shape, hit with the same slab test as
// core.Box.Hit but additionally recovering the face normal and UV of the
// intersected face (spec.md §4.2: "slab test for cube").
type Cube struct {
	Min, Max core.Vec3
}

func NewCube(min, max core.Vec3) *Cube { return &Cube{Min: min, Max: max} }
func NewUnitCube() *Cube               { return &Cube{Min: core.NewVec3(-1, -1, -1), Max: core.NewVec3(1, 1, 1)} }

func (c *Cube) Hit(ray core.Ray) (Hit, bool) {
	tMin, tMax := ray.TMin, ray.TMax
	hitAxis, hitSign := -1, 1.0

	for axis := 0; axis < 3; axis++ {
		lo, hi := axisComponent(c.Min, axis), axisComponent(c.Max, axis)
		origin, dir := axisComponent(ray.Origin, axis), axisComponent(ray.Direction, axis)
		if math.Abs(dir) < 1e-12 {
			if origin < lo || origin > hi {
				return Hit{}, false
			}
			continue
		}
		invD := 1 / dir
		t0 := (lo - origin) * invD
		t1 := (hi - origin) * invD
		sign := -1.0
		if t0 > t1 {
			t0, t1 = t1, t0
			sign = 1.0
		}
		if t0 > tMin {
			tMin = t0
			hitAxis, hitSign = axis, sign
		}
		tMax = math.Min(tMax, t1)
		if tMin > tMax {
			return Hit{}, false
		}
	}
	if hitAxis == -1 || tMin < ray.TMin || tMin > ray.TMax {
		return Hit{}, false
	}

	p := ray.At(tMin)
	d := c.Max.Sub(c.Min)
	n := core.Vec3{}
	var uv core.Vec2
	switch hitAxis {
	case 0:
		n.X = hitSign
		uv = core.NewVec2((p.Y-c.Min.Y)/d.Y, (p.Z-c.Min.Z)/d.Z)
	case 1:
		n.Y = hitSign
		uv = core.NewVec2((p.X-c.Min.X)/d.X, (p.Z-c.Min.Z)/d.Z)
	case 2:
		n.Z = hitSign
		uv = core.NewVec2((p.X-c.Min.X)/d.X, (p.Y-c.Min.Y)/d.Y)
	}
	dpdu, dpdv := tangentsForAxis(hitAxis)

	return Hit{T: tMin, Epsilon: 1e-5 * c.Max.Sub(c.Min).Length(), Geom: core.DiffGeom{
		P: p, Nn: n, UV: uv,
		DpDu: dpdu, DpDv: dpdv,
		NnShading: n, DpDuShading: dpdu, DpDvShading: dpdv,
	}}, true
}

func tangentsForAxis(axis int) (core.Vec3, core.Vec3) {
	switch axis {
	case 0:
		return core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1)
	case 1:
		return core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1)
	default:
		return core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)
	}
}

func axisComponent(v core.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func (c *Cube) HitP(ray core.Ray) bool { _, ok := c.Hit(ray); return ok }

func (c *Cube) Bounds() core.Box { return core.NewBox(c.Min, c.Max) }

func (c *Cube) Area() float64 {
	d := c.Max.Sub(c.Min)
	return 2 * (d.X*d.Y + d.Y*d.Z + d.Z*d.X)
}

func (c *Cube) SamplePoint(uv core.Vec2) PointSample {
	d := c.Max.Sub(c.Min)
	faceAreas := [3]float64{d.Y * d.Z, d.X * d.Z, d.X * d.Y}
	total := 2 * (faceAreas[0] + faceAreas[1] + faceAreas[2])

	// Pick a face proportional to its area using the first sample
	// dimension, reusing the remainder to place the point on the face.
	r := uv.X * total
	axis, sign := 0, 1.0
	for i, fa := range faceAreas {
		if r < 2*fa {
			axis = i
			if r >= fa {
				sign = -1
				r -= fa
			}
			break
		}
		r -= 2 * fa
	}

	p := core.Vec3{}
	n := core.Vec3{}
	switch axis {
	case 0:
		x := c.Min.X
		if sign > 0 {
			x = c.Max.X
		}
		p = core.NewVec3(x, c.Min.Y+uv.Y*d.Y, c.Min.Z+r/d.Y)
		n = core.NewVec3(sign, 0, 0)
	case 1:
		y := c.Min.Y
		if sign > 0 {
			y = c.Max.Y
		}
		p = core.NewVec3(c.Min.X+uv.Y*d.X, y, c.Min.Z+r/d.X)
		n = core.NewVec3(0, sign, 0)
	default:
		z := c.Min.Z
		if sign > 0 {
			z = c.Max.Z
		}
		p = core.NewVec3(c.Min.X+uv.Y*d.X, c.Min.Y+r/d.X, z)
		n = core.NewVec3(0, 0, sign)
	}
	return PointSample{P: p, Nn: n, Epsilon: 1e-5 * d.Length(), PdfArea: 1 / c.Area()}
}

func (c *Cube) SamplePointPivot(pivot core.Vec3, uv core.Vec2) DirectionSample {
	return SamplePointPivotDefault(c, pivot, uv)
}

func (c *Cube) PdfPivot(pivot, p, nn core.Vec3) float64 {
	return PdfPivotDefault(c, pivot, p, nn)
}
