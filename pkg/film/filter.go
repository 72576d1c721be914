package film

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
)

// Filter is a pixel reconstruction filter: Evaluate gives the filter's
// weight at an offset p = pixel_center - film_pos, and is zero outside
// Radius. Grounded on original_source/include/dort/filter.hpp/.cpp.
type Filter interface {
	Radius() core.Vec2
	Evaluate(p core.Vec2) float64
}

// BoxFilter weights every sample inside its radius equally.
type BoxFilter struct{ radius core.Vec2 }

func NewBoxFilter(radius core.Vec2) *BoxFilter   { return &BoxFilter{radius} }
func (f *BoxFilter) Radius() core.Vec2           { return f.radius }
func (f *BoxFilter) Evaluate(p core.Vec2) float64 { return 1 }

// TriangleFilter falls off linearly from the center to zero at Radius.
type TriangleFilter struct{ radius core.Vec2 }

func NewTriangleFilter(radius core.Vec2) *TriangleFilter { return &TriangleFilter{radius} }
func (f *TriangleFilter) Radius() core.Vec2              { return f.radius }
func (f *TriangleFilter) Evaluate(p core.Vec2) float64 {
	fx := 1 - math.Abs(p.X)/f.radius.X
	fy := 1 - math.Abs(p.Y)/f.radius.Y
	return math.Max(0, fx) * math.Max(0, fy)
}

// GaussianFilter is a windowed Gaussian: the Gaussian value at the
// radius edge is subtracted so the filter reaches exactly zero there.
type GaussianFilter struct {
	radius core.Vec2
	alpha  float64
}

func NewGaussianFilter(radius core.Vec2, alpha float64) *GaussianFilter {
	return &GaussianFilter{radius: radius, alpha: alpha}
}
func (f *GaussianFilter) Radius() core.Vec2 { return f.radius }
func (f *GaussianFilter) Evaluate(p core.Vec2) float64 {
	gauss := func(x, r float64) float64 {
		return math.Max(0, math.Exp(-f.alpha*x*x)-math.Exp(-f.alpha*r*r))
	}
	return gauss(p.X, f.radius.X) * gauss(p.Y, f.radius.Y)
}

// MitchellFilter is the Mitchell-Netravali cubic reconstruction filter.
type MitchellFilter struct {
	radius core.Vec2
	b, c   float64
}

func NewMitchellFilter(radius core.Vec2, b, c float64) *MitchellFilter {
	return &MitchellFilter{radius: radius, b: b, c: c}
}
func (f *MitchellFilter) Radius() core.Vec2 { return f.radius }

func (f *MitchellFilter) evalCubic(x float64) float64 {
	x = math.Abs(x)
	b, c := f.b, f.c
	if x < 1 {
		return (12-9*b-6*c)*cube(x) + (-18+12*b+6*c)*x*x + (6 - 2*b)
	}
	if x < 2 {
		return (-b-6*c)*cube(x) + (6*b+30*c)*x*x + (-12*b-48*c)*x + (8*b + 24*c)
	}
	return 0
}

func (f *MitchellFilter) Evaluate(p core.Vec2) float64 {
	return f.evalCubic(2*p.X/f.radius.X) * f.evalCubic(2*p.Y/f.radius.Y)
}

func cube(x float64) float64 { return x * x * x }
