package integrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathTracingIntegratorPrimaryRayFinite(t *testing.T) {
	scene := buildTestScene()
	pt := NewPathTracingIntegrator(5, 3, MIS)
	ray, filmPos := primaryRay(scene)
	samp := newTestSampler(13)
	r, splats := pt.Li(ray, filmPos, scene, samp)
	assert.Nil(t, splats)
	assert.True(t, finiteNonNegative(r))
}

func TestPathTracingIntegratorZeroDepthFinite(t *testing.T) {
	scene := buildTestScene()
	pt := NewPathTracingIntegrator(0, 0, MIS)
	ray, filmPos := primaryRay(scene)
	samp := newTestSampler(17)
	r, _ := pt.Li(ray, filmPos, scene, samp)
	assert.True(t, finiteNonNegative(r))
}

func TestPathTracingIntegratorDirectStrategiesAllFinite(t *testing.T) {
	scene := buildTestScene()
	ray, filmPos := primaryRay(scene)
	for _, strategy := range []DirectStrategy{MIS, SampleLight, SampleBSDF} {
		pt := NewPathTracingIntegrator(4, 2, strategy)
		samp := newTestSampler(19)
		r, _ := pt.Li(ray, filmPos, scene, samp)
		assert.True(t, finiteNonNegative(r))
	}
}
