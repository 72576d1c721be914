package bsdf

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/sampler"
)

// Lambert is a perfectly diffuse BRDF with constant albedo, grounded on
// original_source/include/dort/lambert_material.hpp's LambertBrdf and the
// teacher's pkg/material/lambertian.go (Scatter via cosine-weighted
// hemisphere sampling).
type Lambert struct {
	symmetricMethods
	Albedo core.Spectrum
}

func NewLambert(albedo core.Spectrum) *Lambert {
	l := &Lambert{Albedo: albedo}
	l.symmetricMethods = symmetricMethods{self: l}
	return l
}

func (l *Lambert) Flags() Flags { return Reflection | Diffuse }

func (l *Lambert) EvalF(wiLight, woCamera core.Vec3) core.Spectrum {
	if !SameHemisphere(wiLight, woCamera) {
		return core.Spectrum{}
	}
	return l.Albedo.Mul(1 / math.Pi)
}

func (l *Lambert) SampleSymmetricF(wFix core.Vec3, pick float64, uv core.Vec2) (core.Vec3, float64, core.Spectrum, bool) {
	wGen, _ := sampler.CosineSampleHemisphere(uv.X, uv.Y)
	if wFix.Z < 0 {
		wGen.Z = -wGen.Z
	}
	pdf := sampler.CosineHemispherePDF(AbsCosTheta(wGen))
	return wGen, pdf, l.EvalF(wGen, wFix), true
}

func (l *Lambert) SymmetricFPdf(wGen, wFix core.Vec3) float64 {
	if !SameHemisphere(wGen, wFix) {
		return 0
	}
	return sampler.CosineHemispherePDF(AbsCosTheta(wGen))
}
