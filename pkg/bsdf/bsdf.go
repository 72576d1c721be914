// Package bsdf implements the local shading-frame BxDF model (spec.md
// §4.3): a flag taxonomy, a handful of closed-form BxDFs, and a Bsdf
// container that sums/averages over whichever of them a query's flags
// match. Grounded on original_source/include/dort/{bsdf,lambert_material,
// oren_nayar_material,mirror_material,dielectric_material,phong_material,
// microfacet_distrib,microfacet_brdf,microfacet_btdf}.hpp — the teacher's
// pkg/material has no BxDF-level decomposition to ground this on (its
// Material interface bundles sampling and evaluation into one type per
// surface rather than a flag-filtered sum of BxDFs).
package bsdf

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
)

// Bxdf is one term of a surface's scattering function, expressed entirely
// in the local shading frame (+Z is the shading normal). Directions point
// away from the surface on both sides, matching the convention used
// throughout spec.md §4.3.
//
// SampleLightF and SampleCameraF are distinct because a handful of BxDFs
// (rough/smooth dielectrics) are non-symmetric under direction reversal —
// transporting radiance one way picks up an eta-ratio-squared factor the
// other way doesn't (spec.md §9's open question on camera/light
// asymmetry). Symmetric BxDFs implement both by delegating to a single
// internal sampler; see SymmetricBxdf.
type Bxdf interface {
	Flags() Flags
	EvalF(wiLight, woCamera core.Vec3) core.Spectrum
	SampleLightF(woCamera core.Vec3, pick float64, uv core.Vec2) (wiLight core.Vec3, pdf float64, f core.Spectrum, ok bool)
	SampleCameraF(wiLight core.Vec3, pick float64, uv core.Vec2) (woCamera core.Vec3, pdf float64, f core.Spectrum, ok bool)
	LightFPdf(wiLight, woCamera core.Vec3) float64
	CameraFPdf(wiLight, woCamera core.Vec3) float64
}

// SymmetricBxdf is implemented by every BxDF where light/camera transport
// are identical (everything except the dielectrics). Bxdf's two Sample*F
// and two *FPdf methods both reduce to these. pick is an extra scalar
// random number, independent of uv, needed by BxDFs that must make a
// discrete choice (e.g. reflect vs. transmit) in addition to a
// continuous 2-D sample (e.g. a microfacet normal); BxDFs with no
// discrete choice simply ignore it.
type SymmetricBxdf interface {
	Bxdf
	SampleSymmetricF(wFix core.Vec3, pick float64, uv core.Vec2) (wGen core.Vec3, pdf float64, f core.Spectrum, ok bool)
	SymmetricFPdf(wGen, wFix core.Vec3) float64
}

// symmetricMethods is embedded by every symmetric BxDF implementation to
// supply SampleLightF/SampleCameraF/LightFPdf/CameraFPdf in terms of the
// type's own SampleSymmetricF/SymmetricFPdf, so each concrete BxDF only
// has to implement the symmetric half of the interface.
type symmetricMethods struct{ self SymmetricBxdf }

func (m symmetricMethods) SampleLightF(woCamera core.Vec3, pick float64, uv core.Vec2) (core.Vec3, float64, core.Spectrum, bool) {
	return m.self.SampleSymmetricF(woCamera, pick, uv)
}

func (m symmetricMethods) SampleCameraF(wiLight core.Vec3, pick float64, uv core.Vec2) (core.Vec3, float64, core.Spectrum, bool) {
	return m.self.SampleSymmetricF(wiLight, pick, uv)
}

func (m symmetricMethods) LightFPdf(wiLight, woCamera core.Vec3) float64 {
	return m.self.SymmetricFPdf(wiLight, woCamera)
}

func (m symmetricMethods) CameraFPdf(wiLight, woCamera core.Vec3) float64 {
	return m.self.SymmetricFPdf(woCamera, wiLight)
}

// Shading-frame helpers, all operating on local-space directions (spec.md
// §4.3's "local orthonormal shading frame").
func CosTheta(w core.Vec3) float64       { return w.Z }
func AbsCosTheta(w core.Vec3) float64    { return math.Abs(w.Z) }
func SinTheta2(w core.Vec3) float64      { return math.Max(0, 1-w.Z*w.Z) }
func SinTheta(w core.Vec3) float64       { return math.Sqrt(SinTheta2(w)) }
func SameHemisphere(a, b core.Vec3) bool { return a.Z*b.Z > 0 }

// Bsdf is the shading-frame container a material builds at a hit point: an
// orthonormal (Sn, Tn, Nn) basis plus the list of BxDFs active there.
// EvalF/FPdf sum/average over whichever BxDFs match a query's flags (spec.md
// §4.3: "sum non-delta contributions, average PDFs"); SampleF picks one
// matching BxDF uniformly at random and, if it's non-delta, recombines the
// sample with every other matching non-delta BxDF to cut variance — the
// standard multi-lobe BSDF sampling trick (grounded on dort's Bsdf::f /
// Bsdf::sample_f / Bsdf::f_pdf, which follow the same pattern).
type Bsdf struct {
	Nn, Sn, Tn core.Vec3
	bxdfs      []Bxdf
}

// NewBsdf builds the shading frame from a hit's differential geometry: Nn
// is the shading normal, Sn is DpDuShading projected orthogonal to it (or a
// CoordinateSystem fallback if that tangent degenerates), Tn completes the
// right-handed basis.
func NewBsdf(geom core.DiffGeom) *Bsdf {
	nn := geom.NnShading
	sn := geom.DpDuShading.Sub(nn.Mul(nn.Dot(geom.DpDuShading)))
	if sn.LengthSquared() < 1e-16 {
		sn, _ = core.CoordinateSystem(nn)
	} else {
		sn = sn.Normalize()
	}
	tn := nn.Cross(sn)
	return &Bsdf{Nn: nn, Sn: sn, Tn: tn}
}

func (b *Bsdf) Add(bx Bxdf) { b.bxdfs = append(b.bxdfs, bx) }

func (b *Bsdf) WorldToLocal(v core.Vec3) core.Vec3 {
	return core.NewVec3(v.Dot(b.Sn), v.Dot(b.Tn), v.Dot(b.Nn))
}

func (b *Bsdf) LocalToWorld(v core.Vec3) core.Vec3 {
	return b.Sn.Mul(v.X).Add(b.Tn.Mul(v.Y)).Add(b.Nn.Mul(v.Z))
}

// NumBxdfs counts the BxDFs matching flags.
func (b *Bsdf) NumBxdfs(flags Flags) int {
	n := 0
	for _, bx := range b.bxdfs {
		if bx.Flags().Matches(flags) {
			n++
		}
	}
	return n
}

// EvalF sums f over every matching non-delta BxDF (a delta BxDF has no
// density with respect to area/solid-angle measure, so it never
// contributes to a finite-measure evaluation).
func (b *Bsdf) EvalF(wiLightWorld, woCameraWorld core.Vec3, flags Flags) core.Spectrum {
	wiLight := b.WorldToLocal(wiLightWorld)
	woCamera := b.WorldToLocal(woCameraWorld)
	sum := core.Spectrum{}
	for _, bx := range b.bxdfs {
		if !bx.Flags().Matches(flags) || bx.Flags().IsDelta() {
			continue
		}
		sum = sum.Add(bx.EvalF(wiLight, woCamera))
	}
	return sum
}

func (b *Bsdf) LightFPdf(wiLightWorld, woCameraWorld core.Vec3, flags Flags) float64 {
	wiLight := b.WorldToLocal(wiLightWorld)
	woCamera := b.WorldToLocal(woCameraWorld)
	sum, n := 0.0, 0
	for _, bx := range b.bxdfs {
		if !bx.Flags().Matches(flags) || bx.Flags().IsDelta() {
			continue
		}
		sum += bx.LightFPdf(wiLight, woCamera)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (b *Bsdf) CameraFPdf(wiLightWorld, woCameraWorld core.Vec3, flags Flags) float64 {
	wiLight := b.WorldToLocal(wiLightWorld)
	woCamera := b.WorldToLocal(woCameraWorld)
	sum, n := 0.0, 0
	for _, bx := range b.bxdfs {
		if !bx.Flags().Matches(flags) || bx.Flags().IsDelta() {
			continue
		}
		sum += bx.CameraFPdf(wiLight, woCamera)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// SampleLightF picks one BxDF matching flags uniformly (using pick, a
// random number in [0,1) independent of uv), samples it forward from
// woCamera, and — for a non-delta result — recombines the sample with
// every other matching non-delta BxDF's f and pdf so the estimator uses
// the full sum/average rather than just the one lobe that happened to be
// picked.
func (b *Bsdf) SampleLightF(woCameraWorld core.Vec3, pick float64, uv core.Vec2, flags Flags) (wiLightWorld core.Vec3, pdf float64, f core.Spectrum, sampled Flags, ok bool) {
	matching := b.matching(flags)
	if len(matching) == 0 {
		return core.Vec3{}, 0, core.Spectrum{}, 0, false
	}
	idx, bxPick := selectBxdf(pick, len(matching))
	chosen := matching[idx]

	woCamera := b.WorldToLocal(woCameraWorld)
	wiLight, bxPdf, bxF, sampleOk := chosen.SampleLightF(woCamera, bxPick, uv)
	if !sampleOk || bxPdf <= 0 {
		return core.Vec3{}, 0, core.Spectrum{}, 0, false
	}

	if !chosen.Flags().IsDelta() {
		bxF = core.Spectrum{}
		bxPdf = 0
		for _, bx := range matching {
			if bx.Flags().IsDelta() {
				continue
			}
			bxF = bxF.Add(bx.EvalF(wiLight, woCamera))
			bxPdf += bx.LightFPdf(wiLight, woCamera)
		}
		nonDelta := 0
		for _, bx := range matching {
			if !bx.Flags().IsDelta() {
				nonDelta++
			}
		}
		if nonDelta > 0 {
			bxPdf /= float64(nonDelta)
		}
	}
	if bxPdf <= 0 {
		return core.Vec3{}, 0, core.Spectrum{}, 0, false
	}
	return b.LocalToWorld(wiLight), bxPdf, bxF, chosen.Flags(), true
}

// SampleCameraF mirrors SampleLightF for building a path forward from a
// light (the direction convention Bxdf.SampleCameraF exists to serve).
func (b *Bsdf) SampleCameraF(wiLightWorld core.Vec3, pick float64, uv core.Vec2, flags Flags) (woCameraWorld core.Vec3, pdf float64, f core.Spectrum, sampled Flags, ok bool) {
	matching := b.matching(flags)
	if len(matching) == 0 {
		return core.Vec3{}, 0, core.Spectrum{}, 0, false
	}
	idx, bxPick := selectBxdf(pick, len(matching))
	chosen := matching[idx]

	wiLight := b.WorldToLocal(wiLightWorld)
	woCamera, bxPdf, bxF, sampleOk := chosen.SampleCameraF(wiLight, bxPick, uv)
	if !sampleOk || bxPdf <= 0 {
		return core.Vec3{}, 0, core.Spectrum{}, 0, false
	}

	if !chosen.Flags().IsDelta() {
		bxF = core.Spectrum{}
		bxPdf = 0
		nonDelta := 0
		for _, bx := range matching {
			if bx.Flags().IsDelta() {
				continue
			}
			bxF = bxF.Add(bx.EvalF(wiLight, woCamera))
			bxPdf += bx.CameraFPdf(wiLight, woCamera)
			nonDelta++
		}
		if nonDelta > 0 {
			bxPdf /= float64(nonDelta)
		}
	}
	if bxPdf <= 0 {
		return core.Vec3{}, 0, core.Spectrum{}, 0, false
	}
	return b.LocalToWorld(woCamera), bxPdf, bxF, chosen.Flags(), true
}

// selectBxdf turns one random number into a discrete index over n
// choices plus a fresh uniform remainder to hand to the chosen BxDF,
// rather than needing an extra independent random number per discrete
// decision (the standard "rescale the residual" trick).
func selectBxdf(pick float64, n int) (idx int, remainder float64) {
	scaled := pick * float64(n)
	idx = int(scaled)
	if idx >= n {
		idx = n - 1
	}
	return idx, scaled - float64(idx)
}

func (b *Bsdf) matching(flags Flags) []Bxdf {
	out := make([]Bxdf, 0, len(b.bxdfs))
	for _, bx := range b.bxdfs {
		if bx.Flags().Matches(flags) {
			out = append(out, bx)
		}
	}
	return out
}
