// Package sampler implements the stream-of-samples abstraction the rest of
// the renderer draws 1-D/2-D numbers from (spec.md §4's "Sampler" row): a
// per-pixel-sample lifecycle, array requests, and deterministic splitting
// so a render is reproducible regardless of how many worker goroutines ran
// it (spec.md §5).
package sampler

import (
	"math/rand/v2"
)

// Sampler is the interface integrators draw samples from. Implementations
// are stateful and not safe for concurrent use; each tile job gets its own
// instance from Split, so no locking is needed.
type Sampler interface {
	// StartPixel resets the per-pixel dimension index for pixel (x, y).
	StartPixel(x, y int)
	// StartPixelSample begins sample index `sampleIndex` of StartPixel's
	// pixel; subsequent Get1D/Get2D calls walk fresh dimensions.
	StartPixelSample(sampleIndex int)
	Get1D() float64
	Get2D() (float64, float64)
	// Array1D/Array2D request a fixed-size block of samples for the
	// current pixel sample (e.g. one 2-D sample per light-sampling
	// attempt), so stratification can apply across the whole block.
	Array1D(n int) []float64
	Array2D(n int) [][2]float64
	// Split returns an independent sub-sampler seeded from this sampler's
	// seed and the given job index — used to hand each tile job its own
	// deterministic stream (spec.md §5).
	Split(jobIndex int) Sampler
}

// StreamSampler is the default Sampler: a PCG-backed stream reseeded
// per-pixel-sample from (seed, pixel, sampleIndex). It is not stratified:
// array requests are filled with independent draws from the same stream.
type StreamSampler struct {
	seed         uint64
	samplesPerPx int
	rng          *rand.Rand
	px, py       int
	sampleIndex  int
	dim          int
}

// NewStreamSampler creates a sampler with the given base seed and the
// number of samples per pixel the caller intends to request (stored and
// handed on to Split children; it neither stratifies nor limits Get1D/Get2D
// calls).
func NewStreamSampler(seed uint64, samplesPerPixel int) *StreamSampler {
	return &StreamSampler{seed: seed, samplesPerPx: samplesPerPixel}
}

func pixelSeed(base uint64, x, y, sampleIndex int) uint64 {
	h := base
	h = h*6364136223846793005 + uint64(x) + 1
	h = h*6364136223846793005 + uint64(y) + 1
	h = h*6364136223846793005 + uint64(sampleIndex) + 1
	return h
}

func (s *StreamSampler) StartPixel(x, y int) {
	s.px, s.py = x, y
}

func (s *StreamSampler) StartPixelSample(sampleIndex int) {
	s.sampleIndex = sampleIndex
	s.dim = 0
	seed := pixelSeed(s.seed, s.px, s.py, sampleIndex)
	s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (s *StreamSampler) Get1D() float64 {
	s.dim++
	return s.rng.Float64()
}

func (s *StreamSampler) Get2D() (float64, float64) {
	s.dim += 2
	return s.rng.Float64(), s.rng.Float64()
}

func (s *StreamSampler) Array1D(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s.Get1D()
	}
	return out
}

func (s *StreamSampler) Array2D(n int) [][2]float64 {
	out := make([][2]float64, n)
	for i := range out {
		u, v := s.Get2D()
		out[i] = [2]float64{u, v}
	}
	return out
}

// Split returns an independent sampler whose stream depends only on this
// sampler's base seed and jobIndex, never on wall-clock time or goroutine
// scheduling order — the determinism property spec.md §5 requires.
func (s *StreamSampler) Split(jobIndex int) Sampler {
	childSeed := s.seed*0x2545F4914F6CDD1D + uint64(jobIndex) + 1
	return NewStreamSampler(childSeed, s.samplesPerPx)
}
