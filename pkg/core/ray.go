package core

import "math"

// Ray carries an origin, a direction, and an inclusive parametric interval
// [TMin, TMax] (spec.md §3). Shapes and the BVH shrink TMax as they find
// closer hits; TMin offsets the ray away from the surface it left.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	TMin      float64
	TMax      float64
}

// NewRay creates a ray with the default [epsilon, +Inf) interval.
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, TMin: 1e-8, TMax: math.Inf(1)}
}

// NewRayTo creates a normalized ray from origin toward target, with TMax set
// just short of target so the shadow test doesn't self-intersect the light.
func NewRayTo(origin, target Vec3) Ray {
	d := target.Sub(origin)
	dist := d.Length()
	if dist == 0 {
		return NewRay(origin, Vec3{})
	}
	return Ray{Origin: origin, Direction: d.Mul(1 / dist), TMin: 1e-8, TMax: dist * (1 - 1e-6)}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Vec3 { return r.Origin.Add(r.Direction.Mul(t)) }

// WithEpsilon returns a copy of r with TMin advanced to offset self-hits,
// per the "epsilon to offset outgoing rays" field carried by Intersection.
func (r Ray) WithEpsilon(epsilon float64) Ray {
	r.TMin = epsilon
	return r
}
