package integrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenforge/lumen/pkg/core"
)

func TestDirectIntegratorHitsLightDirectly(t *testing.T) {
	scene := buildTestScene()
	d := NewDirectIntegrator(2)
	samp := newTestSampler(3)
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0))
	r, splats := d.Li(ray, core.Vec2{}, scene, samp)
	assert.Nil(t, splats)
	assert.True(t, finiteNonNegative(r))
	assert.Greater(t, r.Luminance(), 0.0)
}

func TestDirectIntegratorPrimaryRayFinite(t *testing.T) {
	scene := buildTestScene()
	d := NewDirectIntegrator(3)
	ray, filmPos := primaryRay(scene)
	samp := newTestSampler(11)
	r, splats := d.Li(ray, filmPos, scene, samp)
	assert.Nil(t, splats)
	assert.True(t, finiteNonNegative(r))
}

func TestDirectIntegratorMissReturnsBackground(t *testing.T) {
	scene := buildTestScene()
	d := NewDirectIntegrator(1)
	samp := newTestSampler(5)
	ray := core.NewRay(core.NewVec3(100, 100, 100), core.NewVec3(0, 1, 0))
	r, splats := d.Li(ray, core.Vec2{}, scene, samp)
	assert.Nil(t, splats)
	assert.True(t, r.IsZero())
}
