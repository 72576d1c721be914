// Package camera implements spec.md §4.4's Camera interface, which mirrors
// pkg/light's Light interface with "radiance" replaced by "importance":
// every sampling strategy an integrator can run from a light (ray
// generation, pivot-directed sampling, point sampling, evaluation, PDF
// queries) has a camera-side counterpart so a bidirectional integrator
// can treat the camera as just another light at the far end of a path.
// Grounded on the teacher's pkg/renderer/camera.go (a single pinhole-style
// camera with no importance sampling) generalized to the full pinhole/
// orthographic/thin-lens family and importance-sampling operation set
// captured in original_source/include/dort/{camera,pinhole_camera,
// ortho_camera,thin_lens_camera}.hpp.
package camera

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/light"
)

// Flags classifies a camera along the same two delta axes as a light
// (spec.md §3 "Camera... Flags describing which of position/direction are
// delta distributions").
type Flags uint8

const (
	PositionDelta Flags = 1 << iota
	DirectionDelta
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Camera is spec.md §4.4's unified camera interface. filmRes is the film
// resolution in pixels; lensUV is the camera-specific random 2-D sample
// driving lens/aperture sampling (unused by Pinhole, whose lens point is a
// delta; Orthographic uses it only in SamplePoint, to pick a plane position).
type Camera interface {
	Flags() Flags

	// SampleRayImportance samples a ray leaving the camera through
	// filmPos, for camera-path construction (light tracing, BDPT, VCM).
	SampleRayImportance(filmRes, filmPos core.Vec2, lensUV core.Vec2) (ray core.Ray, posPdf, dirPdf float64, w core.Spectrum)

	// SamplePivotImportance samples a point on the camera (its lens) and
	// the shadow segment from pivot back to it, for a light-path vertex
	// to connect directly to the camera.
	SamplePivotImportance(filmRes core.Vec2, pivot light.Pivot, lensUV core.Vec2) (cameraP core.Vec3, filmPos core.Vec2, pPdf float64, shadow light.ShadowTest, w core.Spectrum, ok bool)

	// SamplePoint samples a point on the camera's own lens; pEpsilon is
	// the ray-offset epsilon from that point, posPdf the sampling density.
	SamplePoint(filmRes core.Vec2, lensUV core.Vec2) (p core.Vec3, pEpsilon, posPdf float64)

	// EvalImportance evaluates the importance of a direction wi arriving
	// at lens point p, and which film position it maps to.
	EvalImportance(filmRes core.Vec2, p, wi core.Vec3) (filmPos core.Vec2, w core.Spectrum, ok bool)

	// RayImportancePdf is the (position, direction) density pair
	// SampleRayImportance would have assigned a ray leaving origin in
	// direction wi, used by MIS in camera-path strategies.
	RayImportancePdf(filmRes core.Vec2, origin, wi core.Vec3) (posPdf, dirPdf float64)

	// PivotImportancePdf is the lens-point sampling density
	// SamplePivotImportance would have assigned the generated point pGen
	// as seen from pivotFix.
	PivotImportancePdf(filmRes core.Vec2, pGen, pivotFix core.Vec3) float64
}

// filmToNormal maps a film-pixel position to normalized [-0.5, 0.5]^2
// coordinates, preserving aspect ratio against the longer film dimension.
func filmToNormal(filmRes, filmPos core.Vec2) core.Vec2 {
	d := math.Max(filmRes.X, filmRes.Y)
	return core.NewVec2((filmPos.X-0.5*filmRes.X)/d, (filmPos.Y-0.5*filmRes.Y)/d)
}

// normalToFilm is filmToNormal's inverse.
func normalToFilm(filmRes, normalPos core.Vec2) core.Vec2 {
	d := math.Max(filmRes.X, filmRes.Y)
	return core.NewVec2(normalPos.X*d+0.5*filmRes.X, normalPos.Y*d+0.5*filmRes.Y)
}

// imagePlaneArea is the world-space area of the image plane at unit
// projection distance, corrected for a non-square film's aspect ratio.
func imagePlaneArea(filmRes core.Vec2, projectDimension float64) float64 {
	aspect := math.Min(filmRes.X, filmRes.Y) / math.Max(filmRes.X, filmRes.Y)
	return projectDimension * projectDimension * aspect
}

func cube(x float64) float64 { return x * x * x }
