package bsdf

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenforge/lumen/pkg/core"
)

func TestFlagsMatches(t *testing.T) {
	f := Reflection | Diffuse
	assert.True(t, f.Matches(All))
	assert.True(t, f.Matches(Reflection|Diffuse|Transmission))
	assert.False(t, f.Matches(Transmission|Glossy))
	assert.False(t, f.IsDelta())
	assert.True(t, (Reflection | Delta).IsDelta())
}

func TestFresnelDielectricNormalIncidence(t *testing.T) {
	r := FresnelDielectric(1, 1, 1.5)
	expected := math.Pow((1.5-1)/(1.5+1), 2)
	assert.InDelta(t, expected, r, 1e-9)
}

func TestFresnelDielectricTotalInternalReflection(t *testing.T) {
	r := FresnelDielectric(0.05, 1.5, 1)
	assert.Equal(t, 1.0, r)
}

func TestFresnelDielectricNegativeCosineFlipsMedia(t *testing.T) {
	// A negative cosine means the ray is inside etaT looking out; the
	// function should swap etaI/etaT internally and still return a valid
	// reflectance in [0,1].
	r := FresnelDielectric(-0.6, 1, 1.5)
	assert.GreaterOrEqual(t, r, 0.0)
	assert.LessOrEqual(t, r, 1.0)
}

func TestLambertEnergyConservation(t *testing.T) {
	l := NewLambert(core.NewVec3(0.8, 0.8, 0.8))
	wo := core.NewVec3(0, 0, 1)
	f := l.EvalF(wo, wo)
	assert.InDelta(t, 0.8/math.Pi, f.X, 1e-9)
}

func TestLambertOppositeHemisphereIsZero(t *testing.T) {
	l := NewLambert(core.NewVec3(1, 1, 1))
	wo := core.NewVec3(0, 0, 1)
	wi := core.NewVec3(0, 0, -1)
	f := l.EvalF(wi, wo)
	assert.Equal(t, core.Spectrum{}, f)
}

func TestLambertSamplingMatchesPdf(t *testing.T) {
	l := NewLambert(core.NewVec3(1, 1, 1))
	wo := core.NewVec3(0.1, 0.2, 0.97).Normalize()
	wi, pdf, f, ok := l.SampleSymmetricF(wo, 0.37, core.NewVec2(0.25, 0.6))
	require.True(t, ok)
	assert.Greater(t, pdf, 0.0)
	assert.InDelta(t, l.SymmetricFPdf(wi, wo), pdf, 1e-9)
	assert.InDelta(t, l.EvalF(wi, wo).X, f.X, 1e-9)
}

func TestMirrorReflectsAboutNormal(t *testing.T) {
	m := NewMirror(core.NewVec3(1, 1, 1))
	wo := core.NewVec3(0.3, 0.4, 0.866)
	wi, pdf, f, ok := m.SampleSymmetricF(wo, 0, core.Vec2{})
	require.True(t, ok)
	assert.Equal(t, 1.0, pdf)
	assert.Equal(t, core.NewVec3(-wo.X, -wo.Y, wo.Z), wi)
	assert.Equal(t, core.NewVec3(1, 1, 1), f)
}

func TestMirrorEvalFIsZero(t *testing.T) {
	m := NewMirror(core.NewVec3(1, 1, 1))
	f := m.EvalF(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1))
	assert.Equal(t, core.Spectrum{}, f)
}

func TestDielectricReflectsOrRefracts(t *testing.T) {
	d := NewDielectric(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1), 1.5, 1)
	wo := core.NewVec3(0, 0, 1)

	wi, pdf, _, ok := d.SampleLightF(wo, 0.0, core.Vec2{})
	require.True(t, ok)
	assert.Greater(t, pdf, 0.0) // u=0 always takes the reflect branch
	assert.InDelta(t, wi.Z, wo.Z, 1e-9)

	_, pdf2, _, ok2 := d.SampleLightF(wo, 0.999, core.Vec2{})
	require.True(t, ok2)
	assert.Less(t, pdf2, 1.0)
}

func TestDielectricNormalIncidenceReflectance(t *testing.T) {
	d := NewDielectric(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1), 1.5, 1)
	wo := core.NewVec3(0, 0, 1)
	_, pdf, _, ok := d.SampleLightF(wo, 0, core.Vec2{})
	require.True(t, ok)
	expected := math.Pow((1.5-1)/(1.5+1), 2)
	assert.InDelta(t, expected, pdf, 1e-9)
}

func TestDielectricRadianceScalingOnlyOnLightPath(t *testing.T) {
	d := NewDielectric(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1), 1.5, 1)
	wo := core.NewVec3(0, 0, 1)

	_, _, fLight, okLight := d.SampleLightF(wo, 0.999, core.Vec2{})
	_, _, fCamera, okCamera := d.SampleCameraF(wo, 0.999, core.Vec2{})
	require.True(t, okLight)
	require.True(t, okCamera)
	// Entering a denser medium at normal incidence: ior_trans/ior_refl = 1.5,
	// so the light-path value should be scaled by 1.5^2 relative to camera.
	ratio := fLight.X / fCamera.X
	assert.InDelta(t, 1.5*1.5, ratio, 1e-6)
}

func TestBeckmannDistributionIntegratesToOne(t *testing.T) {
	// Monte Carlo check that D(m)*cos(theta_m) integrates to ~1 over the
	// hemisphere, the defining normalization property of a microfacet NDF.
	b := Beckmann{AlphaB: 0.3}
	rng := rand.New(rand.NewPCG(1, 2))
	const n = 200000
	sum := 0.0
	for i := 0; i < n; i++ {
		u1, u2 := rng.Float64(), rng.Float64()
		cosTheta := u1
		sinTheta := math.Sqrt(1 - u1*u1)
		phi := 2 * math.Pi * u2
		m := core.NewVec3(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)
		sum += b.D(m) * cosTheta
	}
	// Uniform hemisphere sampling with density 1/(2*pi) per solid angle,
	// importance-weighted: integral ~= mean(D*cos) * 2*pi.
	integral := sum / n * 2 * math.Pi
	assert.InDelta(t, 1.0, integral, 0.05)
}

func TestBeckmannG1BoundedByOne(t *testing.T) {
	g1 := BeckmannG1{AlphaB: 0.5}
	v := core.NewVec3(0.3, 0.1, 0.94).Normalize()
	m := core.NewVec3(0, 0, 1)
	g := g1.G1(v, m)
	assert.GreaterOrEqual(t, g, 0.0)
	assert.LessOrEqual(t, g, 1.0)
}

func TestMicrofacetBrdfSamplingMatchesPdf(t *testing.T) {
	mf := NewMicrofacetBrdf(core.NewVec3(1, 1, 1), Beckmann{AlphaB: 0.3}, BeckmannG1{AlphaB: 0.3}, 1.5, 0)
	wo := core.NewVec3(0, 0, 1)
	wi, pdf, f, ok := mf.SampleSymmetricF(wo, 0, core.NewVec2(0.4, 0.7))
	require.True(t, ok)
	assert.Greater(t, pdf, 0.0)
	assert.InDelta(t, mf.SymmetricFPdf(wi, wo), pdf, 1e-9)
	assert.InDelta(t, mf.EvalF(wi, wo).X, f.X, 1e-9)
}

func TestRoughDielectricSamplingMatchesPdf(t *testing.T) {
	dist := Beckmann{AlphaB: 0.2}
	g1 := BeckmannG1{AlphaB: 0.2}
	rd := NewRoughDielectric(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1), 1.5, 1, dist, g1)
	wo := core.NewVec3(0.1, 0.05, 0.99).Normalize()

	found := false
	for _, pick := range []float64{0.1, 0.5, 0.9} {
		wi, pdf, f, ok := rd.SampleLightF(wo, pick, core.NewVec2(0.3, 0.6))
		if !ok {
			continue
		}
		found = true
		assert.Greater(t, pdf, 0.0)
		assert.InDelta(t, rd.LightFPdf(wi, wo), pdf, 1e-6)
		assert.InDelta(t, f.X, rd.EvalF(wi, wo).X, 1e-6)
	}
	assert.True(t, found)
}

func TestPhongMixesGlossyAndDiffuse(t *testing.T) {
	p := NewPhong(core.NewVec3(0.5, 0.5, 0.5), core.NewVec3(0.5, 0.5, 0.5), 20)
	wo := core.NewVec3(0, 0, 1)
	wi, pdf, f, ok := p.SampleSymmetricF(wo, 0.1, core.NewVec2(0.2, 0.3))
	require.True(t, ok)
	assert.Greater(t, pdf, 0.0)
	assert.InDelta(t, p.SymmetricFPdf(wi, wo), pdf, 1e-9)
	assert.InDelta(t, p.EvalF(wi, wo).X, f.X, 1e-9)
}

func TestOrenNayarReducesToLambertAtZeroRoughness(t *testing.T) {
	albedo := core.NewVec3(0.6, 0.6, 0.6)
	on := NewOrenNayar(albedo, 0)
	l := NewLambert(albedo)
	wo := core.NewVec3(0.2, 0.1, 0.97).Normalize()
	wi := core.NewVec3(-0.1, 0.3, 0.95).Normalize()
	assert.InDelta(t, l.EvalF(wi, wo).X, on.EvalF(wi, wo).X, 1e-9)
}

func TestBsdfContainerSumsMatchingBxdfs(t *testing.T) {
	b := &Bsdf{Nn: core.NewVec3(0, 0, 1), Sn: core.NewVec3(1, 0, 0), Tn: core.NewVec3(0, 1, 0)}
	b.Add(NewLambert(core.NewVec3(0.5, 0.5, 0.5)))
	b.Add(NewLambert(core.NewVec3(0.1, 0.1, 0.1)))

	wo := core.NewVec3(0, 0, 1)
	wi := core.NewVec3(0, 0, 1)
	f := b.EvalF(wi, wo, All)
	assert.InDelta(t, 0.6/math.Pi, f.X, 1e-9)
}

func TestBsdfContainerSkipsDeltaInEvalF(t *testing.T) {
	b := &Bsdf{Nn: core.NewVec3(0, 0, 1), Sn: core.NewVec3(1, 0, 0), Tn: core.NewVec3(0, 1, 0)}
	b.Add(NewMirror(core.NewVec3(1, 1, 1)))
	f := b.EvalF(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1), All)
	assert.Equal(t, core.Spectrum{}, f)
}

func TestBsdfContainerSampleRecombinesNonDeltaLobes(t *testing.T) {
	b := &Bsdf{Nn: core.NewVec3(0, 0, 1), Sn: core.NewVec3(1, 0, 0), Tn: core.NewVec3(0, 1, 0)}
	b.Add(NewLambert(core.NewVec3(0.5, 0.5, 0.5)))
	b.Add(NewOrenNayar(core.NewVec3(0.2, 0.2, 0.2), 0.3))

	wo := core.NewVec3(0, 0, 1)
	wi, pdf, f, sampled, ok := b.SampleLightF(wo, 0.9, core.NewVec2(0.3, 0.4), All)
	require.True(t, ok)
	assert.Greater(t, pdf, 0.0)
	assert.False(t, sampled.IsDelta())
	assert.InDelta(t, b.EvalF(wi, wo, All).X, f.X, 1e-9)
	assert.InDelta(t, b.LightFPdf(wi, wo, All), pdf, 1e-9)
}

func TestBsdfWorldLocalRoundTrip(t *testing.T) {
	b := &Bsdf{
		Nn: core.NewVec3(0, 1, 0),
		Sn: core.NewVec3(1, 0, 0),
		Tn: core.NewVec3(0, 0, -1),
	}
	v := core.NewVec3(0.3, 0.6, 0.1)
	local := b.WorldToLocal(v)
	world := b.LocalToWorld(local)
	assert.InDelta(t, v.X, world.X, 1e-9)
	assert.InDelta(t, v.Y, world.Y, 1e-9)
	assert.InDelta(t, v.Z, world.Z, 1e-9)
}
