package light

// PowerSampler is a discrete light-selection distribution built from each
// light's ApproximatePower, grounded on the teacher's
// pkg/core/weighted_light_sampler.go (fixed-weight cumulative-probability
// selection) generalized from user-supplied weights to spec.md §4.4's
// power-based weighting ("approximate_power: used to build a discrete
// distribution over lights for per-path light selection").
type PowerSampler struct {
	lights []Light
	cdf    []float64 // cdf[i] = sum of normalized weights of lights[0..i]
}

// NewPowerSampler builds the distribution from each light's power in
// scene. Lights with zero total power fall back to a uniform
// distribution (mirrors WeightedLightSampler's zero-weight fallback).
func NewPowerSampler(lights []Light, scene SceneBounds) *PowerSampler {
	weights := make([]float64, len(lights))
	total := 0.0
	for i, l := range lights {
		weights[i] = l.ApproximatePower(scene)
		total += weights[i]
	}
	if total <= 0 && len(lights) > 0 {
		for i := range weights {
			weights[i] = 1
		}
		total = float64(len(lights))
	}
	cdf := make([]float64, len(lights))
	running := 0.0
	for i, w := range weights {
		if total > 0 {
			running += w / total
		}
		cdf[i] = running
	}
	return &PowerSampler{lights: lights, cdf: cdf}
}

// Sample picks a light via inverse-CDF lookup on u, returning it together
// with its selection probability and index.
func (s *PowerSampler) Sample(u float64) (Light, float64, int) {
	if len(s.lights) == 0 {
		return nil, 0, -1
	}
	for i, c := range s.cdf {
		if u <= c {
			return s.lights[i], s.probability(i), i
		}
	}
	last := len(s.lights) - 1
	return s.lights[last], s.probability(last), last
}

func (s *PowerSampler) probability(i int) float64 {
	if i == 0 {
		return s.cdf[0]
	}
	return s.cdf[i] - s.cdf[i-1]
}

// Probability returns the selection probability of the light at index i,
// needed by MIS to weight a light-selection strategy.
func (s *PowerSampler) Probability(i int) float64 {
	if i < 0 || i >= len(s.cdf) {
		return 0
	}
	return s.probability(i)
}

func (s *PowerSampler) Count() int { return len(s.lights) }

// ProbabilityOf returns the selection probability of l itself, for
// techniques (VCM's area-light termination, BDPT's s=0 case extended to
// weighting) that discover a light by hitting it rather than by drawing
// it from Sample. Zero if l is not one of the lights the sampler was
// built from.
func (s *PowerSampler) ProbabilityOf(l Light) float64 {
	for i, candidate := range s.lights {
		if candidate == l {
			return s.probability(i)
		}
	}
	return 0
}
