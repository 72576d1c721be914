package integrator

import (
	"github.com/lumenforge/lumen/pkg/bsdf"
	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/sampler"
)

// PathTracingIntegrator implements spec.md §4.6.1: an iterative camera
// walk with Russian-roulette termination and a configurable
// direct-lighting strategy, grounded on the teacher's
// PathTracingIntegrator.rayColorRecursive (the recursive
// emit-then-scatter shape and its ApplyRussianRoulette helper), but
// flattened into an iterative loop and built against this module's
// primitive/light/bsdf stack rather than core.Scene/core.Material.
type PathTracingIntegrator struct {
	MaxDepth           int
	RussianRouletteMin int
	DirectStrategy     DirectStrategy
}

func NewPathTracingIntegrator(maxDepth, rrMinBounces int, strategy DirectStrategy) *PathTracingIntegrator {
	return &PathTracingIntegrator{MaxDepth: maxDepth, RussianRouletteMin: rrMinBounces, DirectStrategy: strategy}
}

func (pt *PathTracingIntegrator) Li(ray core.Ray, filmPos core.Vec2, scene *Scene, samp sampler.Sampler) (core.Spectrum, []Splat) {
	radiance := core.Spectrum{}
	throughput := core.NewVec3(1, 1, 1)
	specularBounce := true // the camera ray origin always counts as "delta" for emission purposes

	for bounce := 0; bounce <= pt.MaxDepth; bounce++ {
		hit, ok := intersect(scene, ray)
		if !ok {
			radiance = radiance.Add(throughput.MulVec(backgroundRadiance(scene, ray)))
			break
		}

		if specularBounce {
			radiance = radiance.Add(throughput.MulVec(emittedRadiance(hit, ray)))
		}

		if bounce == pt.MaxDepth {
			break
		}

		b := hit.Primitive.Bsdf(hit.Geom)
		if b == nil {
			break
		}
		wo := ray.Direction.Negate()

		direct := sampleOneLight(scene, hit.Geom.P, hit.Geom.Nn, hit.Epsilon, wo, b, bsdf.All&^bsdf.Delta, pt.DirectStrategy, samp)
		radiance = radiance.Add(throughput.MulVec(direct))

		wi, pdf, f, sampled, sampleOk := b.SampleLightF(wo, samp.Get1D(), core.NewVec2(samp.Get2D()), bsdf.All)
		if !sampleOk || pdf <= 0 || f.IsZero() {
			break
		}
		throughput = throughput.MulVec(f).Mul(wi.AbsDot(hit.Geom.Nn) / pdf)
		specularBounce = sampled.IsDelta()

		terminate, compensation := russianRoulette(bounce, pt.RussianRouletteMin, throughput, samp.Get1D())
		if terminate {
			break
		}
		throughput = throughput.Mul(compensation)

		ray = core.NewRay(hit.Geom.P, wi).WithEpsilon(hit.Epsilon)
	}

	return radiance, nil
}
