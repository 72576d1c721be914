package integrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenforge/lumen/pkg/core"
)

func TestLightTracingIntegratorReturnsZeroPrimaryRadiance(t *testing.T) {
	scene := buildTestScene()
	lt := NewLightTracingIntegrator(5, 3)
	ray, filmPos := primaryRay(scene)
	samp := newTestSampler(23)
	r, _ := lt.Li(ray, filmPos, scene, samp)
	assert.True(t, r.IsZero())
}

func TestLightTracingIntegratorSplatsLandWithinFilmBounds(t *testing.T) {
	scene := buildTestScene()
	lt := NewLightTracingIntegrator(6, 3)
	ray, filmPos := primaryRay(scene)

	found := false
	for seed := uint64(0); seed < 64 && !found; seed++ {
		samp := newTestSampler(seed)
		_, splats := lt.Li(ray, filmPos, scene, samp)
		for _, s := range splats {
			found = true
			assert.True(t, finiteNonNegative(s.Li))
			assert.GreaterOrEqual(t, s.FilmPos.X, 0.0)
			assert.LessOrEqual(t, s.FilmPos.X, testFilmRes.X)
			assert.GreaterOrEqual(t, s.FilmPos.Y, 0.0)
			assert.LessOrEqual(t, s.FilmPos.Y, testFilmRes.Y)
		}
	}
	assert.True(t, found, "expected at least one splat across 64 independent light paths")
}

func TestLightTracingIntegratorNeverPanicsOnDeadEndSample(t *testing.T) {
	scene := buildTestScene()
	lt := NewLightTracingIntegrator(0, 0)
	samp := newTestSampler(29)
	assert.NotPanics(t, func() {
		lt.Li(core.Ray{}, core.Vec2{}, scene, samp)
	})
}
