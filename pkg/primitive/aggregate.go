package primitive

import (
	"github.com/lumenforge/lumen/pkg/bsdf"
	"github.com/lumenforge/lumen/pkg/bvh"
	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/light"
)

// ListAggregate is the simplest aggregate: a linear scan over its children,
// used for small children counts (a handful of lights, debug scenes) where
// building a BVH does not pay for itself. Grounded on the teacher's
// pkg/scene.Scene iterating s.Shapes directly before a BVH existed.
type ListAggregate struct {
	children []Primitive
	bounds   core.Box
}

func NewListAggregate(children []Primitive) *ListAggregate {
	b := core.EmptyBox()
	for _, c := range children {
		b = b.Union(c.Bounds())
	}
	return &ListAggregate{children: children, bounds: b}
}

func (a *ListAggregate) Bounds() core.Box { return a.bounds }

func (a *ListAggregate) Light() light.Light { return nil }

func (a *ListAggregate) Bsdf(geom core.DiffGeom) *bsdf.Bsdf { return nil }

func (a *ListAggregate) Intersect(ray core.Ray) (Intersection, bool) {
	best := Intersection{}
	found := false
	for _, c := range a.children {
		if hit, ok := c.Intersect(ray); ok {
			ray.TMax = hit.Geom.P.Sub(ray.Origin).Length()
			best = hit
			found = true
		}
	}
	return best, found
}

func (a *ListAggregate) IntersectP(ray core.Ray) bool {
	for _, c := range a.children {
		if c.IntersectP(ray) {
			return true
		}
	}
	return false
}

// BVHAggregate is the primary scene aggregate: a pkg/bvh.BVH[Primitive]
// over the scene's top-level children, grounded on the teacher's
// pkg/scene.Scene.Preprocess building `geometry.NewBVH(s.Shapes)`.
type BVHAggregate struct {
	tree *bvh.BVH[Primitive]
}

// NewBVHAggregate builds the BVH eagerly; the scene-build step (§6) is
// expected to call this once after all children are collected, mirroring
// the teacher's Scene.Preprocess timing.
func NewBVHAggregate(children []Primitive, opts bvh.Options) *BVHAggregate {
	return &BVHAggregate{tree: bvh.Build(children, opts)}
}

func (a *BVHAggregate) Bounds() core.Box { return a.tree.Bounds() }

func (a *BVHAggregate) Light() light.Light { return nil }

func (a *BVHAggregate) Bsdf(geom core.DiffGeom) *bsdf.Bsdf { return nil }

// SceneBounds returns the bounding sphere of this aggregate in the form
// background/distant lights need (spec.md §4.4), computed from the BVH's
// overall bounds.
func (a *BVHAggregate) SceneBounds() light.SceneBounds {
	center, radius := a.tree.Bounds().BoundingSphere()
	return light.SceneBounds{Center: center, Radius: radius}
}

func (a *BVHAggregate) Intersect(ray core.Ray) (Intersection, bool) {
	var best Intersection
	found := false
	// Every call the BVH accepts as an improvement is tested against the
	// current running TMax (TestFunc's r.TMax), so each ok==true call is
	// strictly closer than anything seen before — capturing it directly
	// here avoids a second Intersect call against the winning leaf.
	_, _, ok := a.tree.Intersect(ray, func(p Primitive, r core.Ray) (float64, bool) {
		hit, hitOk := p.Intersect(r)
		if !hitOk {
			return 0, false
		}
		best = hit
		found = true
		return hit.Geom.P.Sub(r.Origin).Length(), true
	})
	return best, ok && found
}

func (a *BVHAggregate) IntersectP(ray core.Ray) bool {
	return a.tree.IntersectP(ray, func(p Primitive, r core.Ray) bool {
		return p.IntersectP(r)
	})
}
