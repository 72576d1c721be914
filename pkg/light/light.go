// Package light implements spec.md §4.4's unified Light interface: every
// emitter, finite or infinite, answers the same set of radiance/PDF
// queries so an integrator never has to special-case which kind of light
// it is sampling. Grounded on the teacher's pkg/lights (the Light/
// LightSampler interface split and per-light Go files) generalized to the
// exact operation set captured from original_source's newer-generation
// light API (environment_light.hpp's sample_ray_radiance/
// sample_pivot_radiance/sample_point/eval_radiance/*_pdf/
// background_radiance/approximate_power, point_light.hpp for the delta
// case).
package light

import "github.com/lumenforge/lumen/pkg/core"

// Flags classifies a light along the axes spec.md §3 names: whether it
// has a delta distribution in position and/or direction, whether it is
// an area emitter, and whether it represents light arriving from outside
// the scene (background/distant).
type Flags uint8

const (
	Delta Flags = 1 << iota
	Area
	Background
	Distant
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Pivot is the shading point a light samples an incident direction
// toward: position, geometric normal (used by background lights to
// restrict sampling to the visible hemisphere) and the ray epsilon to
// offset shadow rays by.
type Pivot struct {
	P, Nn   core.Vec3
	Epsilon float64
}

// SceneBounds is the minimal scene geometry a background/distant light
// needs to place its emission disk — the bounding sphere of everything
// finite in the scene. Passed explicitly rather than depending on
// pkg/primitive or pkg/render to avoid a cycle (light is a leaf package;
// primitive and render depend on it, not the other way around).
type SceneBounds struct {
	Center core.Vec3
	Radius float64
}

// ShadowTest is the point-to-point or point-to-direction segment a light
// sample hands back for a visibility check; it is evaluated later, with
// whatever intersect_p the caller has on hand, rather than at sample time
// (grounded on original_source/include/dort/light.hpp's ShadowTest,
// Visible delegating to an IntersectP function rather than a concrete
// Scene type for the same leaf-package reason as SceneBounds).
type ShadowTest struct {
	Ray core.Ray
}

// NewPointPointShadowTest builds a segment test between two points whose
// surfaces both need an epsilon offset to avoid self-intersection.
func NewPointPointShadowTest(p1 core.Vec3, epsilon1 float64, p2 core.Vec3, epsilon2 float64) ShadowTest {
	ray := core.NewRayTo(p1, p2)
	ray.TMin = epsilon1
	ray.TMax *= 1 - epsilon2/p1.Sub(p2).Length()
	return ShadowTest{Ray: ray}
}

// NewPointDirShadowTest builds a point-to-infinity segment test toward a
// background/distant light in direction dir.
func NewPointDirShadowTest(p core.Vec3, epsilon float64, dir core.Vec3) ShadowTest {
	ray := core.NewRay(p, dir)
	ray.TMin = epsilon
	return ShadowTest{Ray: ray}
}

// Visible runs the shadow test against intersectP (typically the scene's
// aggregate primitive IntersectP) and reports whether the light is
// unoccluded.
func (s ShadowTest) Visible(intersectP func(core.Ray) bool) bool {
	return !intersectP(s.Ray)
}

// Light is spec.md §4.4's unified emitter interface. Every method mirrors
// a named spec operation one-to-one; `ok` return values replace the
// original's "only defined for area lights" partiality (e.g. SamplePoint
// on a point light always returns ok=false).
type Light interface {
	Flags() Flags

	// SampleRayRadiance samples a full emitted photon ray for light-path
	// construction (light tracing, BDPT, VCM). Background/distant lights
	// place the ray's origin on a disk facing into scene.
	SampleRayRadiance(scene SceneBounds, uPos, uDir core.Vec2) (ray core.Ray, nn core.Vec3, posPdf, dirPdf float64, le core.Spectrum)

	// SamplePivotRadiance samples an incident direction at pivot and the
	// shadow segment back to the sampled point on the light.
	SamplePivotRadiance(pivot Pivot, uv core.Vec2) (wi core.Vec3, lightP, lightNn core.Vec3, pEpsilon, dirPdf float64, shadow ShadowTest, le core.Spectrum, ok bool)

	// SamplePoint samples a point on the light's own surface; only
	// meaningful for area lights (ok=false otherwise).
	SamplePoint(uv core.Vec2) (p, nn core.Vec3, pEpsilon, posPdf float64, ok bool)

	// EvalRadiance evaluates the radiance emitted from a previously
	// sampled point p (with normal nn) toward pivot.
	EvalRadiance(p, nn core.Vec3, pivot Pivot) core.Spectrum

	// PivotRadiancePdf is the solid-angle density SamplePivotRadiance
	// would have assigned direction wi at pivot, used by MIS.
	PivotRadiancePdf(wi core.Vec3, pivot Pivot) float64

	// RayRadiancePdf is the (position, direction) density pair
	// SampleRayRadiance would have assigned the ray (origin, dir) leaving
	// a point with normal nn, used by MIS in light-path strategies.
	RayRadiancePdf(scene SceneBounds, origin, dir, nn core.Vec3) (posPdf, dirPdf float64)

	// BackgroundRadiance is the radiance contributed when ray escapes the
	// scene without hitting anything; zero for every non-background
	// light.
	BackgroundRadiance(ray core.Ray) core.Spectrum

	// ApproximatePower estimates total emitted power for building a
	// discrete power-proportional light-selection distribution.
	ApproximatePower(scene SceneBounds) float64
}
