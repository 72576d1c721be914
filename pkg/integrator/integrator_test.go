package integrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenforge/lumen/pkg/bsdf"
	"github.com/lumenforge/lumen/pkg/core"
)

func TestRussianRouletteNeverTerminatesBeforeMinBounces(t *testing.T) {
	terminate, compensation := russianRoulette(0, 3, core.NewVec3(0.01, 0.01, 0.01), 0.999)
	assert.False(t, terminate)
	assert.Equal(t, 1.0, compensation)
}

func TestRussianRouletteTerminatesLowThroughputPastMinBounces(t *testing.T) {
	terminate, _ := russianRoulette(5, 3, core.NewVec3(0.01, 0.01, 0.01), 0.999)
	assert.True(t, terminate)
}

func TestRussianRouletteSurvivorCompensatesThroughput(t *testing.T) {
	terminate, compensation := russianRoulette(5, 3, core.NewVec3(0.5, 0.5, 0.5), 0.0)
	assert.False(t, terminate)
	assert.Greater(t, compensation, 1.0)
}

func TestBackgroundRadianceZeroWithNoBackgroundLight(t *testing.T) {
	scene := buildTestScene()
	ray := core.NewRay(core.NewVec3(0, 0, -8), core.NewVec3(0, 1, 0))
	assert.True(t, backgroundRadiance(scene, ray).IsZero())
}

func TestEmittedRadianceZeroForNonEmissivePrimitive(t *testing.T) {
	scene := buildTestScene()
	ray := core.NewRay(core.NewVec3(0, 0, -8), core.NewVec3(0, -1, 8).Normalize())
	hit, ok := intersect(scene, ray)
	assert.True(t, ok)
	assert.True(t, emittedRadiance(hit, ray).IsZero())
}

func TestSampleOneLightMISReturnsFiniteNonNegativeContribution(t *testing.T) {
	scene := buildTestScene()
	samp := newTestSampler(1)
	ray := core.NewRay(core.NewVec3(0, 1, -8), core.NewVec3(0, -2, 8).Normalize())
	hit, ok := intersect(scene, ray)
	assert.True(t, ok)
	b := hit.Primitive.Bsdf(hit.Geom)
	wo := ray.Direction.Negate()
	contrib := sampleOneLight(scene, hit.Geom.P, hit.Geom.Nn, hit.Epsilon, wo, b, bsdf.All, MIS, samp)
	assert.True(t, finiteNonNegative(contrib))
}

func TestSampleOneLightStrategiesAllFinite(t *testing.T) {
	scene := buildTestScene()
	ray := core.NewRay(core.NewVec3(0, 1, -8), core.NewVec3(0, -2, 8).Normalize())
	hit, ok := intersect(scene, ray)
	assert.True(t, ok)
	b := hit.Primitive.Bsdf(hit.Geom)
	wo := ray.Direction.Negate()

	for _, strategy := range []DirectStrategy{MIS, SampleLight, SampleBSDF} {
		samp := newTestSampler(7)
		contrib := sampleOneLight(scene, hit.Geom.P, hit.Geom.Nn, hit.Epsilon, wo, b, bsdf.All, strategy, samp)
		assert.True(t, finiteNonNegative(contrib))
	}
}
