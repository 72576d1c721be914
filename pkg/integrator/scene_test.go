package integrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenforge/lumen/pkg/core"
)

func TestSceneIntersectPDetectsOccluder(t *testing.T) {
	scene := buildTestScene()
	ray := core.NewRay(core.NewVec3(0, 0, -8), core.NewVec3(0, -1, 8).Normalize())
	assert.True(t, scene.IntersectP(ray))
}

func TestSceneIntersectPMissesEmptySpace(t *testing.T) {
	scene := buildTestScene()
	ray := core.NewRay(core.NewVec3(100, 100, 100), core.NewVec3(0, 1, 0))
	assert.False(t, scene.IntersectP(ray))
}

func TestNewSceneBuildsPowerSamplerOverLights(t *testing.T) {
	scene := buildTestScene()
	assert.Equal(t, 1, scene.Sampler.Count())
	l, prob, idx := scene.Sampler.Sample(0.5)
	assert.NotNil(t, l)
	assert.Equal(t, 0, idx)
	assert.Greater(t, prob, 0.0)
}
