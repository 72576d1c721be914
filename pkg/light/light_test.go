package light

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/shape"
)

var unitScene = SceneBounds{Center: core.NewVec3(0, 0, 0), Radius: 10}

func TestFlagsHas(t *testing.T) {
	f := Delta | Distant
	assert.True(t, f.Has(Delta))
	assert.True(t, f.Has(Distant))
	assert.False(t, f.Has(Area))
}

func TestPointLightFallsOffByInverseSquare(t *testing.T) {
	p := NewPointLight(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1))
	pivotNear := Pivot{P: core.NewVec3(0, 0, 1), Epsilon: 1e-6}
	pivotFar := Pivot{P: core.NewVec3(0, 0, 2), Epsilon: 1e-6}

	_, _, _, _, _, _, leNear, ok1 := p.SamplePivotRadiance(pivotNear, core.Vec2{})
	_, _, _, _, _, _, leFar, ok2 := p.SamplePivotRadiance(pivotFar, core.Vec2{})
	require.True(t, ok1)
	require.True(t, ok2)
	assert.InDelta(t, leNear.X/4, leFar.X, 1e-9)
}

func TestPointLightHasNoSamplePoint(t *testing.T) {
	p := NewPointLight(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1))
	_, _, _, _, ok := p.SamplePoint(core.Vec2{})
	assert.False(t, ok)
}

func TestPointLightFlagsIsDelta(t *testing.T) {
	p := NewPointLight(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1))
	assert.True(t, p.Flags().Has(Delta))
}

func TestDistantLightSameDirectionEverywhere(t *testing.T) {
	d := NewDistantLight(core.NewVec3(0, 0, -1), core.NewVec3(2, 2, 2))
	wi1, _, _, _, _, _, _, ok1 := d.SamplePivotRadiance(Pivot{P: core.NewVec3(5, 5, 5)}, core.Vec2{})
	wi2, _, _, _, _, _, _, ok2 := d.SamplePivotRadiance(Pivot{P: core.NewVec3(-5, 2, 9)}, core.Vec2{})
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, wi1, wi2)
}

func TestDistantLightRayOriginatesOutsideScene(t *testing.T) {
	d := NewDistantLight(core.NewVec3(0, 0, -1), core.NewVec3(1, 1, 1))
	ray, _, posPdf, dirPdf, le := d.SampleRayRadiance(unitScene, core.NewVec2(0.3, 0.6), core.Vec2{})
	assert.Greater(t, posPdf, 0.0)
	assert.Equal(t, 1.0, dirPdf)
	assert.Equal(t, core.NewVec3(1, 1, 1), le)
	// The ray should start outside the scene sphere on the far side from
	// its travel direction.
	distFromCenter := ray.Origin.Sub(unitScene.Center).Length()
	assert.GreaterOrEqual(t, distFromCenter, unitScene.Radius-1e-6)
}

func TestBeamLightHasNoBackgroundFlag(t *testing.T) {
	b := NewBeamLight(core.NewVec3(0, -1, 0), core.NewVec3(1, 1, 1), 2)
	assert.False(t, b.Flags().Has(Background))
	assert.Equal(t, core.Spectrum{}, b.BackgroundRadiance(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))))
}

func TestDiffuseAreaLightOneSidedIsZeroFromBehind(t *testing.T) {
	disc := shape.NewDisc(1)
	al := NewDiffuseAreaLight(disc, core.NewVec3(1, 1, 1), false)

	front := Pivot{P: core.NewVec3(0, 0, 5), Epsilon: 1e-6}
	behind := Pivot{P: core.NewVec3(0, 0, -5), Epsilon: 1e-6}

	le := al.EvalRadiance(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), front)
	assert.Equal(t, core.NewVec3(1, 1, 1), le)

	leBehind := al.EvalRadiance(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), behind)
	assert.Equal(t, core.Spectrum{}, leBehind)
}

func TestDiffuseAreaLightTwoSidedEmitsBothWays(t *testing.T) {
	disc := shape.NewDisc(1)
	al := NewDiffuseAreaLight(disc, core.NewVec3(1, 1, 1), true)

	behind := Pivot{P: core.NewVec3(0, 0, -5), Epsilon: 1e-6}
	le := al.EvalRadiance(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), behind)
	assert.Equal(t, core.NewVec3(1, 1, 1), le)
}

func TestDiffuseAreaLightSampleAndPdfAgree(t *testing.T) {
	sph := shape.NewSphere(core.NewVec3(0, 0, 0), 1)
	al := NewDiffuseAreaLight(sph, core.NewVec3(1, 1, 1), false)
	pivot := Pivot{P: core.NewVec3(0, 0, 5), Epsilon: 1e-6}

	wi, p, nn, _, dirPdf, _, _, ok := al.SamplePivotRadiance(pivot, core.NewVec2(0.3, 0.6))
	require.True(t, ok)
	assert.Greater(t, dirPdf, 0.0)

	pdfAgain := al.PivotRadiancePdf(wi, pivot)
	assert.InDelta(t, dirPdf, pdfAgain, 1e-6)
	assert.NotEqual(t, core.Vec3{}, p)
	assert.NotEqual(t, core.Vec3{}, nn)
}

func TestInfiniteLightBackgroundRadianceIsConstant(t *testing.T) {
	u := NewInfiniteLight(core.NewVec3(0.5, 0.6, 0.7))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))
	assert.Equal(t, core.NewVec3(0.5, 0.6, 0.7), u.BackgroundRadiance(ray))
}

func TestInfiniteLightPivotPdfRespectsCosine(t *testing.T) {
	u := NewInfiniteLight(core.NewVec3(1, 1, 1))
	nn := core.NewVec3(0, 0, 1)
	below := core.NewVec3(0, 0, -1)
	assert.Equal(t, 0.0, u.PivotRadiancePdf(below, Pivot{Nn: nn}))

	above := core.NewVec3(0, 0, 1)
	assert.InDelta(t, 1/math.Pi, u.PivotRadiancePdf(above, Pivot{Nn: nn}), 1e-9)
}

func TestPowerSamplerProbabilitiesSumToOne(t *testing.T) {
	lights := []Light{
		NewPointLight(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1)),
		NewPointLight(core.NewVec3(0, 0, 0), core.NewVec3(4, 4, 4)),
	}
	s := NewPowerSampler(lights, unitScene)
	sum := 0.0
	for i := range lights {
		sum += s.Probability(i)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	// The brighter light should have a larger selection probability.
	assert.Greater(t, s.Probability(1), s.Probability(0))
}

func TestPowerSamplerHandlesZeroPower(t *testing.T) {
	lights := []Light{
		NewPointLight(core.NewVec3(0, 0, 0), core.Spectrum{}),
		NewPointLight(core.NewVec3(0, 0, 0), core.Spectrum{}),
	}
	s := NewPowerSampler(lights, unitScene)
	assert.InDelta(t, 0.5, s.Probability(0), 1e-9)
	assert.InDelta(t, 0.5, s.Probability(1), 1e-9)
}

func TestPowerSamplerSampleReturnsConsistentIndex(t *testing.T) {
	lights := []Light{
		NewPointLight(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1)),
		NewPointLight(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1)),
	}
	s := NewPowerSampler(lights, unitScene)
	l, prob, idx := s.Sample(0.25)
	require.NotNil(t, l)
	assert.Equal(t, 0, idx)
	assert.InDelta(t, 0.5, prob, 1e-9)
}

func TestShadowTestVisible(t *testing.T) {
	st := NewPointPointShadowTest(core.NewVec3(0, 0, 0), 1e-6, core.NewVec3(0, 0, 5), 1e-6)
	assert.True(t, st.Visible(func(core.Ray) bool { return false }))
	assert.False(t, st.Visible(func(core.Ray) bool { return true }))
}
