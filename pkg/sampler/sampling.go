package sampler

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
)

// CosineSampleHemisphere returns a direction in the local +Z hemisphere
// cosine-weighted by Malley's method, plus the corresponding PDF.
func CosineSampleHemisphere(u1, u2 float64) (core.Vec3, float64) {
	r := math.Sqrt(u1)
	theta := 2 * math.Pi * u2
	x := r * math.Cos(theta)
	y := r * math.Sin(theta)
	z := math.Sqrt(math.Max(0, 1-u1))
	return core.NewVec3(x, y, z), z / math.Pi
}

func CosineHemispherePDF(cosTheta float64) float64 {
	if cosTheta <= 0 {
		return 0
	}
	return cosTheta / math.Pi
}

// UniformSampleSphere returns a uniformly distributed direction over the
// full sphere, with its constant PDF.
func UniformSampleSphere(u1, u2 float64) (core.Vec3, float64) {
	z := 1 - 2*u1
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * u2
	return core.NewVec3(r*math.Cos(phi), r*math.Sin(phi), z), UniformSpherePDF()
}

func UniformSpherePDF() float64 { return 1 / (4 * math.Pi) }

// UniformSampleDisk returns a point on the unit disk via the concentric
// mapping (avoids the distortion of naive polar sampling).
func UniformSampleDisk(u1, u2 float64) (x, y float64) {
	sx := 2*u1 - 1
	sy := 2*u2 - 1
	if sx == 0 && sy == 0 {
		return 0, 0
	}
	var r, theta float64
	if math.Abs(sx) > math.Abs(sy) {
		r = sx
		theta = (math.Pi / 4) * (sy / sx)
	} else {
		r = sy
		theta = (math.Pi / 2) - (math.Pi/4)*(sx/sy)
	}
	return r * math.Cos(theta), r * math.Sin(theta)
}

// UniformSampleCone samples a direction within a cone of half-angle whose
// cosine is cosThetaMax, about the local +Z axis — used to importance
// sample finite spheres seen from outside (spec.md §4.2's default
// sample_point_pivot via solid angle).
func UniformSampleCone(u1, u2, cosThetaMax float64) (core.Vec3, float64) {
	cosTheta := (1 - u1) + u1*cosThetaMax
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u2
	return core.NewVec3(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta), UniformConePDF(cosThetaMax)
}

func UniformConePDF(cosThetaMax float64) float64 {
	return 1 / (2 * math.Pi * (1 - cosThetaMax))
}

// ToLocalFrame expresses a world-space direction in the local basis (s, t, n).
func ToLocalFrame(s, t, n, v core.Vec3) core.Vec3 {
	return core.NewVec3(v.Dot(s), v.Dot(t), v.Dot(n))
}

// FromLocalFrame maps a direction expressed in local (s, t, n) coordinates
// back into world space.
func FromLocalFrame(s, t, n, v core.Vec3) core.Vec3 {
	return s.Mul(v.X).Add(t.Mul(v.Y)).Add(n.Mul(v.Z))
}
