package bsdf

import "github.com/lumenforge/lumen/pkg/core"

// Mirror is a perfect specular reflector, grounded on
// original_source/include/dort/mirror_material.hpp's MirrorBrdf. Its
// sample returns albedo directly with pdf 1 (the specular convention:
// no cosine term, since a delta BxDF's "density" is with respect to the
// Dirac measure along the mirror direction, not solid angle).
type Mirror struct {
	symmetricMethods
	Albedo core.Spectrum
}

func NewMirror(albedo core.Spectrum) *Mirror {
	m := &Mirror{Albedo: albedo}
	m.symmetricMethods = symmetricMethods{self: m}
	return m
}

func (m *Mirror) Flags() Flags { return Reflection | Delta }

func (m *Mirror) EvalF(wiLight, woCamera core.Vec3) core.Spectrum { return core.Spectrum{} }

func (m *Mirror) SampleSymmetricF(wFix core.Vec3, pick float64, uv core.Vec2) (core.Vec3, float64, core.Spectrum, bool) {
	wGen := core.NewVec3(-wFix.X, -wFix.Y, wFix.Z)
	return wGen, 1, m.Albedo, true
}

func (m *Mirror) SymmetricFPdf(wGen, wFix core.Vec3) float64 { return 0 }
