package primitive

import (
	"github.com/lumenforge/lumen/pkg/bsdf"
	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/light"
	"github.com/lumenforge/lumen/pkg/shape"
)

// ShapePrimitive is a leaf of the primitive tree: a Shape with a Material
// and an optional area Light, placed in the scene by a shape-to-frame
// Transform (spec.md §3's "shape primitive"). Grounded on the teacher's
// geometry.Shape implementations paired 1:1 with a material field, split
// here into a distinct leaf type per spec.md's explicit Primitive/shape
// separation.
type ShapePrimitive struct {
	Shape        shape.Shape
	Material     Material
	AreaLight    light.Light // nil if this primitive does not emit
	ShapeToFrame core.Transform
}

func NewShapePrimitive(s shape.Shape, mat Material, toFrame core.Transform) *ShapePrimitive {
	return &ShapePrimitive{Shape: s, Material: mat, ShapeToFrame: toFrame}
}

// NewEmissiveShapePrimitive builds a shape primitive whose AreaLight is
// wired to the given light — the caller constructs the light.Light (e.g. a
// light.DiffuseAreaLight wrapping the same Shape transformed into world
// space) since the light sampler needs it independently of the primitive
// tree.
func NewEmissiveShapePrimitive(s shape.Shape, mat Material, toFrame core.Transform, areaLight light.Light) *ShapePrimitive {
	return &ShapePrimitive{Shape: s, Material: mat, ShapeToFrame: toFrame, AreaLight: areaLight}
}

func (p *ShapePrimitive) Bounds() core.Box {
	return p.ShapeToFrame.Box(p.Shape.Bounds())
}

func (p *ShapePrimitive) Light() light.Light { return p.AreaLight }

func (p *ShapePrimitive) Bsdf(geom core.DiffGeom) *bsdf.Bsdf {
	if p.Material == nil {
		return nil
	}
	b := bsdf.NewBsdf(geom)
	for _, bx := range p.Material.Bxdfs(geom) {
		b.Add(bx)
	}
	return b
}

func (p *ShapePrimitive) Intersect(ray core.Ray) (Intersection, bool) {
	inv := p.ShapeToFrame.Inverse()
	localRay := inv.Ray(ray)
	hit, ok := p.Shape.Hit(localRay)
	if !ok {
		return Intersection{}, false
	}
	geom := transformDiffGeom(p.ShapeToFrame, hit.Geom)
	return Intersection{Geom: geom, Epsilon: hit.Epsilon, Primitive: p}, true
}

func (p *ShapePrimitive) IntersectP(ray core.Ray) bool {
	inv := p.ShapeToFrame.Inverse()
	return p.Shape.HitP(inv.Ray(ray))
}

func transformDiffGeom(t core.Transform, g core.DiffGeom) core.DiffGeom {
	return core.DiffGeom{
		P:           t.Point(g.P),
		Nn:          t.Normal(g.Nn).Normalize(),
		UV:          g.UV,
		DpDu:        t.Vector(g.DpDu),
		DpDv:        t.Vector(g.DpDv),
		NnShading:   t.Normal(g.NnShading).Normalize(),
		DpDuShading: t.Vector(g.DpDuShading),
		DpDvShading: t.Vector(g.DpDvShading),
	}
}
