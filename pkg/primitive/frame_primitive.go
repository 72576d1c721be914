package primitive

import (
	"github.com/lumenforge/lumen/pkg/bsdf"
	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/light"
)

// FramePrimitive wraps an inner primitive with an additional frame-to-outer
// Transform (spec.md §3's "frame primitive"), letting a whole subtree —
// a mesh, an instanced group — be repositioned without rebuilding it.
// Distinct from ShapePrimitive's shape-to-frame transform, which only
// applies to a single leaf shape.
type FramePrimitive struct {
	Inner        Primitive
	FrameToOuter core.Transform
}

func NewFramePrimitive(inner Primitive, frameToOuter core.Transform) *FramePrimitive {
	return &FramePrimitive{Inner: inner, FrameToOuter: frameToOuter}
}

func (p *FramePrimitive) Bounds() core.Box {
	return p.FrameToOuter.Box(p.Inner.Bounds())
}

func (p *FramePrimitive) Light() light.Light { return p.Inner.Light() }

func (p *FramePrimitive) Bsdf(geom core.DiffGeom) *bsdf.Bsdf { return p.Inner.Bsdf(geom) }

func (p *FramePrimitive) Intersect(ray core.Ray) (Intersection, bool) {
	inv := p.FrameToOuter.Inverse()
	innerRay := inv.Ray(ray)
	hit, ok := p.Inner.Intersect(innerRay)
	if !ok {
		return Intersection{}, false
	}
	hit.Geom = transformDiffGeom(p.FrameToOuter, hit.Geom)
	return hit, true
}

func (p *FramePrimitive) IntersectP(ray core.Ray) bool {
	inv := p.FrameToOuter.Inverse()
	return p.Inner.IntersectP(inv.Ray(ray))
}
