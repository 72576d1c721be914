// Package shape implements ray-surface intersection and surface sampling
// for the primitive shape family (spec.md §4.2): spheres, discs, cylinders,
// cubes, polygons and triangle meshes.
package shape

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
)

// Hit is the result of a successful Shape.Hit: the hit parameter, a ray
// epsilon to offset outgoing rays from this surface, and the differential
// geometry at the hit point.
type Hit struct {
	T       float64
	Epsilon float64
	Geom    core.DiffGeom
}

// PointSample is a surface point sampled uniformly by area: position,
// normal, ray epsilon and the area-measure PDF.
type PointSample struct {
	P, Nn   core.Vec3
	Epsilon float64
	PdfArea float64
}

// DirectionSample is a surface point sampled with respect to solid angle
// from a pivot point: the same fields as PointSample plus a direction PDF.
type DirectionSample struct {
	P, Nn   core.Vec3
	Epsilon float64
	PdfDir  float64
}

// Shape is the contract every geometric primitive implements (spec.md
// §4.2). All operations return the zero value with ok=false on failure
// (degenerate geometry, a miss) rather than panicking — per spec.md §7.2.
type Shape interface {
	Hit(ray core.Ray) (Hit, bool)
	HitP(ray core.Ray) bool
	Bounds() core.Box
	Area() float64
	SamplePoint(uv core.Vec2) PointSample
	// SamplePointPivot samples with respect to solid angle from pivot.
	// Shapes with no more efficient scheme fall back to
	// SamplePointPivotDefault below.
	SamplePointPivot(pivot core.Vec3, uv core.Vec2) DirectionSample
	// PdfPivot is the density, in solid angle measure about pivot, of the
	// direction toward the given point on the shape — the PDF companion
	// query integrators need for MIS without resampling.
	PdfPivot(pivot, p, nn core.Vec3) float64
}

// SamplePointPivotDefault implements the shape-agnostic fallback spec.md
// §4.2 describes: sample uniformly by area and convert the area-measure
// density to a direction-measure density by the Jacobian |cos θ| / r^2.
func SamplePointPivotDefault(s Shape, pivot core.Vec3, uv core.Vec2) DirectionSample {
	ps := s.SamplePoint(uv)
	return areaToDirection(pivot, ps)
}

func areaToDirection(pivot core.Vec3, ps PointSample) DirectionSample {
	toPoint := ps.P.Sub(pivot)
	distSq := toPoint.LengthSquared()
	if distSq == 0 {
		return DirectionSample{P: ps.P, Nn: ps.Nn, Epsilon: ps.Epsilon, PdfDir: 0}
	}
	dir := toPoint.Mul(1 / math.Sqrt(distSq))
	cosTheta := math.Abs(ps.Nn.Dot(dir.Negate()))
	if cosTheta == 0 {
		return DirectionSample{P: ps.P, Nn: ps.Nn, Epsilon: ps.Epsilon, PdfDir: 0}
	}
	pdfDir := ps.PdfArea * distSq / cosTheta
	return DirectionSample{P: ps.P, Nn: ps.Nn, Epsilon: ps.Epsilon, PdfDir: pdfDir}
}

// PdfPivotDefault is the PDF companion to SamplePointPivotDefault: convert
// the shape's constant area PDF (1/Area) to solid-angle measure for a
// specific (pivot, p, nn).
func PdfPivotDefault(s Shape, pivot, p, nn core.Vec3) float64 {
	area := s.Area()
	if area <= 0 {
		return 0
	}
	toPoint := p.Sub(pivot)
	distSq := toPoint.LengthSquared()
	if distSq == 0 {
		return 0
	}
	dir := toPoint.Mul(1 / math.Sqrt(distSq))
	cosTheta := math.Abs(nn.Dot(dir.Negate()))
	if cosTheta == 0 {
		return 0
	}
	return distSq / (cosTheta * area)
}
