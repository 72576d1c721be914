package primitive

import (
	"github.com/lumenforge/lumen/pkg/bsdf"
	"github.com/lumenforge/lumen/pkg/core"
)

// Material builds the BxDF stack a shape primitive's surface exhibits at a
// hit. It stands in for the teacher's pkg/material.Material (Scatter/
// EvaluateBRDF/PDF) — superseded here by pkg/bsdf's richer multi-lobe BxDF
// family, so a Material is just a BxDF factory rather than its own
// evaluation/sampling surface.
type Material interface {
	Bxdfs(geom core.DiffGeom) []bsdf.Bxdf
}

// MaterialFunc adapts a plain function to Material.
type MaterialFunc func(geom core.DiffGeom) []bsdf.Bxdf

func (f MaterialFunc) Bxdfs(geom core.DiffGeom) []bsdf.Bxdf { return f(geom) }

// SingleBxdf wraps one BxDF that does not vary with the hit's geometry
// (the common case: a uniform Lambert/Mirror/Dielectric/MicrofacetBrdf
// over the whole surface, no texture lookup).
type SingleBxdf struct {
	Bxdf bsdf.Bxdf
}

func NewSingleBxdf(bx bsdf.Bxdf) SingleBxdf { return SingleBxdf{Bxdf: bx} }

func (s SingleBxdf) Bxdfs(geom core.DiffGeom) []bsdf.Bxdf { return []bsdf.Bxdf{s.Bxdf} }

// MultiBxdf layers several BxDFs at every hit (e.g. a glossy coat over a
// diffuse base), mirroring how spec.md's BSDF sums multiple BxDFs sharing
// one shading frame.
type MultiBxdf struct {
	List []bsdf.Bxdf
}

func NewMultiBxdf(bxs ...bsdf.Bxdf) MultiBxdf { return MultiBxdf{List: bxs} }

func (m MultiBxdf) Bxdfs(geom core.DiffGeom) []bsdf.Bxdf { return m.List }
