package bsdf

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/sampler"
)

// Phong is a diffuse+glossy mixture BRDF (modified Phong), grounded on
// original_source/include/dort/phong_brdf.hpp's PhongBrdf: a diffuse
// Lambertian lobe and a cosine-power specular lobe around the mirror
// direction, combined by picking one with probability PickGlossyPdf.
type Phong struct {
	symmetricMethods
	KDiffuse, KGlossy core.Spectrum
	Exponent          float64
	PickGlossyPdf     float64
}

func NewPhong(kDiffuse, kGlossy core.Spectrum, exponent float64) *Phong {
	glossyLum := kGlossy.Luminance()
	diffuseLum := kDiffuse.Luminance()
	pick := 0.5
	if glossyLum+diffuseLum > 0 {
		pick = glossyLum / (glossyLum + diffuseLum)
	}
	p := &Phong{KDiffuse: kDiffuse, KGlossy: kGlossy, Exponent: exponent, PickGlossyPdf: pick}
	p.symmetricMethods = symmetricMethods{self: p}
	return p
}

func (p *Phong) Flags() Flags { return Reflection | Glossy | Diffuse }

func (p *Phong) EvalF(wiLight, woCamera core.Vec3) core.Spectrum {
	if !SameHemisphere(wiLight, woCamera) {
		return core.Spectrum{}
	}
	diffuse := p.KDiffuse.Mul(1 / math.Pi)

	reflected := core.NewVec3(-woCamera.X, -woCamera.Y, woCamera.Z)
	cosAlpha := math.Max(0, reflected.Dot(wiLight))
	glossy := p.KGlossy.Mul((p.Exponent + 2) / (2 * math.Pi) * math.Pow(cosAlpha, p.Exponent))

	return diffuse.Add(glossy)
}

func (p *Phong) SampleSymmetricF(wFix core.Vec3, pick float64, uv core.Vec2) (core.Vec3, float64, core.Spectrum, bool) {
	var wGen core.Vec3
	if pick < p.PickGlossyPdf {
		reflected := core.NewVec3(-wFix.X, -wFix.Y, wFix.Z)
		sn, tn := core.CoordinateSystem(reflected)
		cosAlpha := math.Pow(uv.X, 1/(p.Exponent+1))
		sinAlpha := math.Sqrt(math.Max(0, 1-cosAlpha*cosAlpha))
		phi := 2 * math.Pi * uv.Y
		local := core.NewVec3(sinAlpha*math.Cos(phi), sinAlpha*math.Sin(phi), cosAlpha)
		wGen = sn.Mul(local.X).Add(tn.Mul(local.Y)).Add(reflected.Mul(local.Z))
		if wGen.Z*wFix.Z <= 0 {
			return core.Vec3{}, 0, core.Spectrum{}, false
		}
	} else {
		wGen, _ = sampler.CosineSampleHemisphere(uv.X, uv.Y)
		if wFix.Z < 0 {
			wGen.Z = -wGen.Z
		}
	}
	pdf := p.SymmetricFPdf(wGen, wFix)
	if pdf <= 0 {
		return core.Vec3{}, 0, core.Spectrum{}, false
	}
	return wGen, pdf, p.EvalF(wGen, wFix), true
}

func (p *Phong) SymmetricFPdf(wGen, wFix core.Vec3) float64 {
	if !SameHemisphere(wGen, wFix) {
		return 0
	}
	diffusePdf := sampler.CosineHemispherePDF(AbsCosTheta(wGen))

	reflected := core.NewVec3(-wFix.X, -wFix.Y, wFix.Z)
	cosAlpha := math.Max(0, reflected.Dot(wGen))
	glossyPdf := (p.Exponent + 1) / (2 * math.Pi) * math.Pow(cosAlpha, p.Exponent)

	return p.PickGlossyPdf*glossyPdf + (1-p.PickGlossyPdf)*diffusePdf
}
