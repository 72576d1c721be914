package bsdf

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/sampler"
)

// OrenNayar is a rough-diffuse BRDF (Oren-Nayar 1994) parameterized by a
// roughness std-dev sigma in radians, grounded on
// original_source/include/dort/oren_nayar_brdf.hpp.
type OrenNayar struct {
	symmetricMethods
	Albedo core.Spectrum
	A, B   float64
}

func NewOrenNayar(albedo core.Spectrum, sigmaRadians float64) *OrenNayar {
	sigma2 := sigmaRadians * sigmaRadians
	o := &OrenNayar{
		Albedo: albedo,
		A:      1 - sigma2/(2*(sigma2+0.33)),
		B:      0.45 * sigma2 / (sigma2 + 0.09),
	}
	o.symmetricMethods = symmetricMethods{self: o}
	return o
}

func (o *OrenNayar) Flags() Flags { return Reflection | Diffuse }

func (o *OrenNayar) EvalF(wiLight, woCamera core.Vec3) core.Spectrum {
	if !SameHemisphere(wiLight, woCamera) {
		return core.Spectrum{}
	}
	sinThetaI := SinTheta(wiLight)
	sinThetaO := SinTheta(woCamera)

	maxCos := 0.0
	if sinThetaI > 1e-9 && sinThetaO > 1e-9 {
		cosPhiI, sinPhiI := cosSinPhi(wiLight)
		cosPhiO, sinPhiO := cosSinPhi(woCamera)
		maxCos = math.Max(0, cosPhiI*cosPhiO+sinPhiI*sinPhiO)
	}

	var sinAlpha, tanBeta float64
	if AbsCosTheta(wiLight) > AbsCosTheta(woCamera) {
		sinAlpha, tanBeta = sinThetaO, sinThetaI/AbsCosTheta(wiLight)
	} else {
		sinAlpha, tanBeta = sinThetaI, sinThetaO/AbsCosTheta(woCamera)
	}

	factor := o.A + o.B*maxCos*sinAlpha*tanBeta
	return o.Albedo.Mul(factor / math.Pi)
}

func cosSinPhi(w core.Vec3) (cosPhi, sinPhi float64) {
	sinTheta := SinTheta(w)
	if sinTheta < 1e-9 {
		return 1, 0
	}
	return clamp(w.X/sinTheta, -1, 1), clamp(w.Y/sinTheta, -1, 1)
}

func (o *OrenNayar) SampleSymmetricF(wFix core.Vec3, pick float64, uv core.Vec2) (core.Vec3, float64, core.Spectrum, bool) {
	wGen, _ := sampler.CosineSampleHemisphere(uv.X, uv.Y)
	if wFix.Z < 0 {
		wGen.Z = -wGen.Z
	}
	pdf := sampler.CosineHemispherePDF(AbsCosTheta(wGen))
	return wGen, pdf, o.EvalF(wGen, wFix), true
}

func (o *OrenNayar) SymmetricFPdf(wGen, wFix core.Vec3) float64 {
	if !SameHemisphere(wGen, wFix) {
		return 0
	}
	return sampler.CosineHemispherePDF(AbsCosTheta(wGen))
}
