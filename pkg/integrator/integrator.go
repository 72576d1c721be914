package integrator

import (
	"math"

	"github.com/lumenforge/lumen/pkg/bsdf"
	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/light"
	"github.com/lumenforge/lumen/pkg/primitive"
	"github.com/lumenforge/lumen/pkg/sampler"
)

// Splat is a contribution a light-originating strategy (light tracing,
// BDPT's t=1 technique) deposits directly onto the film rather than
// returning as the pixel's own sample, since the path it came from
// connects to the camera from a vertex other than the one the camera
// ray actually hit.
type Splat struct {
	FilmPos core.Vec2
	Li      core.Spectrum
}

// Integrator is the contract every transport estimator in this package
// implements: given a camera ray through filmPos, return the radiance
// along it plus any splats produced along the way (nil for techniques
// that never splat, e.g. plain path tracing).
type Integrator interface {
	Li(ray core.Ray, filmPos core.Vec2, scene *Scene, samp sampler.Sampler) (core.Spectrum, []Splat)
}

// intersect runs the scene's aggregate intersection.
func intersect(scene *Scene, ray core.Ray) (primitive.Intersection, bool) {
	return scene.Aggregate.Intersect(ray)
}

// pivotOf turns a surface hit into the light.Pivot a direct-lighting
// estimate samples incident directions toward.
func pivotOf(hit primitive.Intersection) light.Pivot {
	return light.Pivot{P: hit.Geom.P, Nn: hit.Geom.Nn, Epsilon: hit.Epsilon}
}

// backgroundRadiance sums every light's BackgroundRadiance for a ray
// that escaped the scene without hitting any primitive (spec.md §4.4).
func backgroundRadiance(scene *Scene, ray core.Ray) core.Spectrum {
	sum := core.Spectrum{}
	for _, l := range scene.Lights {
		sum = sum.Add(l.BackgroundRadiance(ray))
	}
	return sum
}

// emittedRadiance is the radiance a hit primitive's area light (if any)
// emits back along -ray.Direction, mirroring direct_renderer.cpp's
// `area_light->emitted_radiance(p, nn, -ray.dir)`.
func emittedRadiance(hit primitive.Intersection, ray core.Ray) core.Spectrum {
	l := hit.Primitive.Light()
	if l == nil {
		return core.Spectrum{}
	}
	viewer := light.Pivot{P: ray.Origin}
	return l.EvalRadiance(hit.Geom.P, hit.Geom.Nn, viewer)
}

// russianRoulette decides whether to terminate a path after `bounce`
// bounces given its current throughput, matching spec.md §4.6.1's
// `min(0.95, throughput.average())` survival probability, applied only
// once bounce has passed minBounces. Returns (terminate, compensation);
// compensation is 1 when no roulette was applied (bounce < minBounces),
// and 1/survival otherwise — multiply the surviving path's contribution
// by it.
func russianRoulette(bounce, minBounces int, throughput core.Spectrum, u float64) (terminate bool, compensation float64) {
	if bounce < minBounces {
		return false, 1
	}
	survival := math.Min(0.95, throughput.Average())
	if survival <= 0 || u > survival {
		return true, 0
	}
	return false, 1 / survival
}

// DirectStrategy selects how a direct-lighting estimate combines its
// light-sampling and BSDF-sampling techniques (spec.md §4.6.1).
type DirectStrategy uint8

const (
	MIS DirectStrategy = iota
	SampleLight
	SampleBSDF
)

// sampleOneLight picks a light via scene's power sampler and estimates
// its direct contribution at a shading point with a single light-side
// and a single BSDF-side sample, combined by the power heuristic when
// the light is not delta (estimate_direct in direct_renderer.cpp,
// generalized to this module's unified Light/Bsdf interfaces).
func sampleOneLight(scene *Scene, p, nn core.Vec3, epsilon float64, wo core.Vec3, b *bsdf.Bsdf, bxdfFlags bsdf.Flags, strategy DirectStrategy, samp sampler.Sampler) core.Spectrum {
	l, lightProb, _ := scene.Sampler.Sample(samp.Get1D())
	if l == nil || lightProb <= 0 {
		return core.Spectrum{}
	}
	contrib := estimateDirect(scene, l, light.Pivot{P: p, Nn: nn, Epsilon: epsilon}, wo, b, bxdfFlags, strategy, samp)
	return contrib.Mul(1 / lightProb)
}

// estimateDirect is direct_renderer.cpp's estimate_direct: one sample
// from the light (weighted against the BSDF's pdf for that direction
// when the light is not delta) plus, for non-delta lights, one sample
// from the BSDF (weighted against the light's pdf for that direction).
// strategy restricts this to a single technique (spec.md §4.6.1's
// SAMPLE_LIGHT/SAMPLE_BSDF modes) or combines both under MIS.
func estimateDirect(scene *Scene, l light.Light, pivot light.Pivot, wo core.Vec3, b *bsdf.Bsdf, bxdfFlags bsdf.Flags, strategy DirectStrategy, samp sampler.Sampler) core.Spectrum {
	lightContrib := core.Spectrum{}
	if strategy != SampleBSDF {
		wi, _, _, _, lightPdf, shadow, le, ok := l.SamplePivotRadiance(pivot, core.NewVec2(samp.Get2D()))
		if ok && lightPdf > 0 && !le.IsZero() {
			f := b.EvalF(wi, wo, bxdfFlags)
			if !f.IsZero() && shadow.Visible(scene.IntersectP) {
				weight := 1.0
				if strategy == MIS && !l.Flags().Has(light.Delta) {
					bsdfPdf := b.LightFPdf(wi, wo, bxdfFlags)
					weight = core.PowerHeuristic(1, lightPdf, 1, bsdfPdf)
				}
				lightContrib = f.MulVec(le).Mul(wi.AbsDot(pivot.Nn) * weight / lightPdf)
			}
		}
	}

	bsdfContrib := core.Spectrum{}
	if strategy != SampleLight && !l.Flags().Has(light.Delta) {
		wiB, bsdfPdf, f, sampled, sampleOk := b.SampleLightF(wo, samp.Get1D(), core.NewVec2(samp.Get2D()), bxdfFlags)
		if sampleOk && bsdfPdf > 0 && !f.IsZero() {
			weight := 1.0
			if strategy == MIS && !sampled.IsDelta() {
				lPdf := l.PivotRadiancePdf(wiB, pivot)
				weight = core.PowerHeuristic(1, bsdfPdf, 1, lPdf)
			}
			shadowRay := core.NewRay(pivot.P, wiB).WithEpsilon(pivot.Epsilon)
			le := core.Spectrum{}
			if hit, hitOk := scene.Aggregate.Intersect(shadowRay); hitOk {
				if hit.Primitive.Light() == l {
					le = l.EvalRadiance(hit.Geom.P, hit.Geom.Nn, light.Pivot{P: pivot.P})
				}
			} else {
				le = l.BackgroundRadiance(shadowRay)
			}
			if !le.IsZero() {
				bsdfContrib = f.MulVec(le).Mul(wiB.AbsDot(pivot.Nn) * weight / bsdfPdf)
			}
		}
	}

	return lightContrib.Add(bsdfContrib)
}
