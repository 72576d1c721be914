package sampler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamSamplerValuesInUnitRange(t *testing.T) {
	s := NewStreamSampler(42, 16)
	s.StartPixel(3, 4)
	for sample := 0; sample < 16; sample++ {
		s.StartPixelSample(sample)
		for i := 0; i < 8; i++ {
			u := s.Get1D()
			assert.GreaterOrEqual(t, u, 0.0)
			assert.Less(t, u, 1.0)
		}
		u, v := s.Get2D()
		assert.GreaterOrEqual(t, u, 0.0)
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestStreamSamplerDeterministic(t *testing.T) {
	a := NewStreamSampler(7, 4)
	b := NewStreamSampler(7, 4)
	a.StartPixel(1, 1)
	b.StartPixel(1, 1)
	a.StartPixelSample(0)
	b.StartPixelSample(0)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Get1D(), b.Get1D())
	}
}

func TestStreamSamplerSplitIsDeterministicByJobIndex(t *testing.T) {
	parent1 := NewStreamSampler(99, 4)
	parent2 := NewStreamSampler(99, 4)

	childA := parent1.Split(5).(*StreamSampler)
	childB := parent2.Split(5).(*StreamSampler)

	childA.StartPixel(0, 0)
	childB.StartPixel(0, 0)
	childA.StartPixelSample(0)
	childB.StartPixelSample(0)

	for i := 0; i < 5; i++ {
		assert.Equal(t, childA.Get1D(), childB.Get1D())
	}

	childC := parent1.Split(6).(*StreamSampler)
	childC.StartPixel(0, 0)
	childC.StartPixelSample(0)
	assert.NotEqual(t, childA.Split(0), childC.Split(0))
}

func TestArrayRequestsLength(t *testing.T) {
	s := NewStreamSampler(1, 4)
	s.StartPixel(0, 0)
	s.StartPixelSample(0)
	assert.Len(t, s.Array1D(5), 5)
	assert.Len(t, s.Array2D(3), 3)
}

func TestCosineSampleHemispherePDFMatchesCosine(t *testing.T) {
	dir, pdf := CosineSampleHemisphere(0.3, 0.6)
	assert.InDelta(t, dir.Z/math.Pi, pdf, 1e-9)
	assert.Greater(t, dir.Z, 0.0)
}

func TestUniformSampleSphereUnitLength(t *testing.T) {
	dir, pdf := UniformSampleSphere(0.2, 0.8)
	assert.InDelta(t, 1.0, dir.Length(), 1e-9)
	assert.InDelta(t, 1/(4*math.Pi), pdf, 1e-12)
}
