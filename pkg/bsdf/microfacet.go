package bsdf

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
)

// Distribution is a microfacet normal distribution function, grounded on
// original_source/include/dort/microfacet_distrib.hpp. Beckmann is the
// only concrete distribution implemented; no Phong or GGX distribution is
// provided.
type Distribution interface {
	D(m core.Vec3) float64
	SampleM(u1, u2 float64) (m core.Vec3, pdf float64)
	PdfM(m core.Vec3) float64
}

// G1 is a monodirectional shadowing-masking term; SmithG combines two
// independent evaluations following original_source's SmithG<G1> wrapper:
// g(wo,wi,m) = g1(wo,m)*g1(wi,m).
type G1 interface {
	G1(v, m core.Vec3) float64
}

func SmithG(g1 G1, wo, wi, m core.Vec3) float64 {
	return g1.G1(wo, m) * g1.G1(wi, m)
}

// Beckmann is the Beckmann-Spizzichino normal distribution with AlphaB
// the roughness parameter (alpha_b = roughness^2 is the common
// remapping, left to the caller). Formulas from
// microfacet_distrib.hpp's BeckmannD.
type Beckmann struct {
	AlphaB float64
}

func (b Beckmann) D(m core.Vec3) float64 {
	cosTheta := AbsCosTheta(m)
	if cosTheta <= 0 {
		return 0
	}
	cos2 := cosTheta * cosTheta
	cos4 := cos2 * cos2
	tan2 := (1 - cos2) / cos2
	a2 := b.AlphaB * b.AlphaB
	return math.Exp(-tan2/a2) / (math.Pi * a2 * cos4)
}

func (b Beckmann) SampleM(u1, u2 float64) (core.Vec3, float64) {
	tan2Theta := -b.AlphaB * b.AlphaB * math.Log(1-u1)
	cosTheta := 1 / math.Sqrt(1+tan2Theta)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u2
	m := core.NewVec3(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)
	return m, b.PdfM(m)
}

func (b Beckmann) PdfM(m core.Vec3) float64 {
	return b.D(m) * AbsCosTheta(m)
}

// BeckmannG1 is the Beckmann distribution's Smith shadowing-masking term,
// using the rational approximation from microfacet_distrib.hpp's
// BeckmannApproxG1 (accurate to within a fraction of a percent of the
// exact erf-based form, and considerably cheaper per shading sample).
type BeckmannG1 struct {
	AlphaB float64
}

func (g BeckmannG1) G1(v, m core.Vec3) float64 {
	cosVM := v.Dot(m)
	cosV := CosTheta(v)
	if cosVM*cosV <= 0 {
		return 0
	}
	tanTheta := math.Abs(SinTheta(v) / cosV)
	if tanTheta == 0 {
		return 1
	}
	a := 1 / (g.AlphaB * tanTheta)
	if a >= 1.6 {
		return 1
	}
	return (3.535*a + 2.181*a*a) / (1 + 2.276*a + 2.577*a*a)
}
