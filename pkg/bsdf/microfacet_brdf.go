package bsdf

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
)

// MicrofacetBrdf is a Torrance-Sparrow rough conductor reflection BRDF,
// grounded on original_source/include/dort/microfacet_brdf.hpp. Fresnel
// is evaluated with FresnelConductor against (Eta, K); Distribution and
// G1 are typically the same Beckmann roughness.
type MicrofacetBrdf struct {
	symmetricMethods
	Albedo       core.Spectrum
	Distribution Distribution
	G1           G1
	Eta, K       float64
}

func NewMicrofacetBrdf(albedo core.Spectrum, dist Distribution, g1 G1, eta, k float64) *MicrofacetBrdf {
	m := &MicrofacetBrdf{Albedo: albedo, Distribution: dist, G1: g1, Eta: eta, K: k}
	m.symmetricMethods = symmetricMethods{self: m}
	return m
}

func (m *MicrofacetBrdf) Flags() Flags { return Reflection | Glossy }

func (m *MicrofacetBrdf) halfVector(wo, wi core.Vec3) (core.Vec3, bool) {
	h := wo.Add(wi)
	if h.LengthSquared() < 1e-16 {
		return core.Vec3{}, false
	}
	h = h.Normalize()
	if h.Z < 0 {
		h = h.Mul(-1)
	}
	return h, true
}

func (m *MicrofacetBrdf) EvalF(wiLight, woCamera core.Vec3) core.Spectrum {
	if !SameHemisphere(wiLight, woCamera) {
		return core.Spectrum{}
	}
	hv, ok := m.halfVector(woCamera, wiLight)
	if !ok {
		return core.Spectrum{}
	}
	cosO, cosI := AbsCosTheta(woCamera), AbsCosTheta(wiLight)
	if cosO <= 0 || cosI <= 0 {
		return core.Spectrum{}
	}
	d := m.Distribution.D(hv)
	g := SmithG(m.G1, woCamera, wiLight, hv)
	fr := FresnelConductor(woCamera.Dot(hv), m.Eta, m.K)
	return m.Albedo.Mul(d * g * fr / (4 * cosO * cosI))
}

func (m *MicrofacetBrdf) SampleSymmetricF(wFix core.Vec3, pick float64, uv core.Vec2) (core.Vec3, float64, core.Spectrum, bool) {
	if wFix.Z == 0 {
		return core.Vec3{}, 0, core.Spectrum{}, false
	}
	hv, _ := m.Distribution.SampleM(uv.X, uv.Y)
	wGen := hv.Mul(2 * wFix.Dot(hv)).Sub(wFix)
	if !SameHemisphere(wFix, wGen) {
		return core.Vec3{}, 0, core.Spectrum{}, false
	}
	pdf := m.SymmetricFPdf(wGen, wFix)
	if pdf <= 0 {
		return core.Vec3{}, 0, core.Spectrum{}, false
	}
	return wGen, pdf, m.EvalF(wGen, wFix), true
}

func (m *MicrofacetBrdf) SymmetricFPdf(wGen, wFix core.Vec3) float64 {
	if !SameHemisphere(wGen, wFix) {
		return 0
	}
	hv, ok := m.halfVector(wFix, wGen)
	if !ok {
		return 0
	}
	return m.Distribution.PdfM(hv) / (4 * math.Abs(wFix.Dot(hv)))
}
