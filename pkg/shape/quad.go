package shape

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
)

// Quad is a planar parallelogram spanned by edge vectors U, V from corner
// Q — the "polygon" primitive of spec.md §4.2, restricted to the common
// four-sided case (a general polygon decomposes into quads/triangles at
// scene-construction time, which is the builder's job, not the core's).
type Quad struct {
	Q, U, V core.Vec3
	normal  core.Vec3
	w       core.Vec3 // plane equation helper: w = n / (n . n)
	area    float64
}

func NewQuad(q, u, v core.Vec3) *Quad {
	n := u.Cross(v)
	area := n.Length()
	normal := n.Mul(1 / area)
	w := n.Mul(1 / n.Dot(n))
	return &Quad{Q: q, U: u, V: v, normal: normal, w: w, area: area}
}

func (q *Quad) Hit(ray core.Ray) (Hit, bool) {
	denom := q.normal.Dot(ray.Direction)
	if math.Abs(denom) < 1e-12 {
		return Hit{}, false
	}
	t := q.normal.Dot(q.Q.Sub(ray.Origin)) / denom
	if t < ray.TMin || t > ray.TMax {
		return Hit{}, false
	}
	p := ray.At(t)
	hp := p.Sub(q.Q)
	alpha := q.w.Dot(hp.Cross(q.V))
	beta := q.w.Dot(q.U.Cross(hp))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return Hit{}, false
	}
	uv := core.NewVec2(alpha, beta)
	return Hit{T: t, Epsilon: 1e-5 * (q.U.Length() + q.V.Length()), Geom: core.DiffGeom{
		P: p, Nn: q.normal, UV: uv,
		DpDu: q.U, DpDv: q.V,
		NnShading: q.normal, DpDuShading: q.U, DpDvShading: q.V,
	}}, true
}

func (q *Quad) HitP(ray core.Ray) bool { _, ok := q.Hit(ray); return ok }

func (q *Quad) Bounds() core.Box {
	return core.BoxFromPoints(q.Q, q.Q.Add(q.U), q.Q.Add(q.V), q.Q.Add(q.U).Add(q.V))
}

func (q *Quad) Area() float64 { return q.area }

func (q *Quad) SamplePoint(uv core.Vec2) PointSample {
	p := q.Q.Add(q.U.Mul(uv.X)).Add(q.V.Mul(uv.Y))
	return PointSample{P: p, Nn: q.normal, Epsilon: 1e-5 * (q.U.Length() + q.V.Length()), PdfArea: 1 / q.area}
}

func (q *Quad) SamplePointPivot(pivot core.Vec3, uv core.Vec2) DirectionSample {
	return SamplePointPivotDefault(q, pivot, uv)
}

func (q *Quad) PdfPivot(pivot, p, nn core.Vec3) float64 {
	return PdfPivotDefault(q, pivot, p, nn)
}
