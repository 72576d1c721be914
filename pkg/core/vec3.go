// Package core provides the geometric and radiometric primitives shared by
// every other package: vectors, rays, boxes, transforms and the small set of
// sampling helpers used throughout the renderer.
package core

import (
	"fmt"
	"math"
)

// Vec3 is a three-float triple used for points, vectors, normals and linear
// RGB spectra alike. Which of those a given Vec3 represents is a matter of
// how it's transformed, not of its type — see Transform.
type Vec3 struct {
	X, Y, Z float64
}

// Vec2 holds a 2-D sample or UV coordinate pair.
type Vec2 struct {
	X, Y float64
}

// Spectrum is a linear RGB radiometric quantity (radiance, importance,
// throughput, reflectance). It is a plain Vec3: spec.md restricts this core
// to a 3-channel linear RGB model, never full spectral rendering.
type Spectrum = Vec3

func NewVec3(x, y, z float64) Vec3 { return Vec3{x, y, z} }
func NewVec2(x, y float64) Vec2    { return Vec2{x, y} }

func (v Vec3) String() string {
	return fmt.Sprintf("{%.4g, %.4g, %.4g}", v.X, v.Y, v.Z)
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Mul(s float64) Vec3   { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) MulVec(o Vec3) Vec3   { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Vec3) Div(s float64) Vec3   { return v.Mul(1 / s) }
func (v Vec3) Negate() Vec3         { return Vec3{-v.X, -v.Y, -v.Z} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) AbsDot(o Vec3) float64 { return math.Abs(v.Dot(o)) }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) LengthSquared() float64 { return v.Dot(v) }
func (v Vec3) Length() float64        { return math.Sqrt(v.LengthSquared()) }

func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

// IsZero reports whether every component is exactly zero.
func (v Vec3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// IsFinite reports whether every component is finite and non-NaN. Used at
// the sampling boundary (§7) to reject degenerate throughput/radiance.
func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// IsNonNegative reports whether every component is >= 0.
func (v Vec3) IsNonNegative() bool { return v.X >= 0 && v.Y >= 0 && v.Z >= 0 }

// Average returns the mean of the three components (used for Russian
// roulette survival probability).
func (v Vec3) Average() float64 { return (v.X + v.Y + v.Z) / 3.0 }

// Luminance returns the Rec. 709 perceptual luminance of a linear RGB color.
func (v Vec3) Luminance() float64 {
	return 0.2126*v.X + 0.7152*v.Y + 0.0722*v.Z
}

// MaxComponent returns the largest component.
func (v Vec3) MaxComponent() float64 { return math.Max(v.X, math.Max(v.Y, v.Z)) }

func (v Vec3) Clamp(lo, hi float64) Vec3 {
	return Vec3{
		X: math.Max(lo, math.Min(hi, v.X)),
		Y: math.Max(lo, math.Min(hi, v.Y)),
		Z: math.Max(lo, math.Min(hi, v.Z)),
	}
}

// FaceForward flips v so that it lies in the same hemisphere as ref.
func (v Vec3) FaceForward(ref Vec3) Vec3 {
	if v.Dot(ref) < 0 {
		return v.Negate()
	}
	return v
}

// CoordinateSystem builds an orthonormal basis (tangent, bitangent) from a
// unit vector n, using Duff et al.'s branchless construction.
func CoordinateSystem(n Vec3) (t, b Vec3) {
	sign := math.Copysign(1, n.Z)
	a := -1 / (sign + n.Z)
	c := n.X * n.Y * a
	t = Vec3{1 + sign*n.X*n.X*a, sign * c, -sign * n.X}
	b = Vec3{c, sign + n.Y*n.Y*a, -n.Y}
	return t, b
}

func (v Vec2) Add(o Vec2) Vec2    { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Mul(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
