package core

import "math"

// Box is an axis-aligned min/max bounding box.
type Box struct {
	Min, Max Vec3
}

// EmptyBox returns a box with inverted extent, the identity element for
// Union — unioning it with anything yields that thing unchanged.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

func NewBox(min, max Vec3) Box { return Box{Min: min, Max: max} }

// BoxFromPoints returns the smallest box containing every given point.
func BoxFromPoints(points ...Vec3) Box {
	b := EmptyBox()
	for _, p := range points {
		b = b.UnionPoint(p)
	}
	return b
}

func (b Box) UnionPoint(p Vec3) Box {
	return Box{
		Min: Vec3{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)},
		Max: Vec3{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)},
	}
}

func (b Box) Union(o Box) Box {
	return Box{
		Min: Vec3{math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y), math.Min(b.Min.Z, o.Min.Z)},
		Max: Vec3{math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y), math.Max(b.Max.Z, o.Max.Z)},
	}
}

func (b Box) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// ContainsBox reports whether o lies entirely within b (bounds-consistency,
// spec.md §8.1).
func (b Box) ContainsBox(o Box) bool {
	return b.Contains(o.Min) && b.Contains(o.Max)
}

func (b Box) Center() Vec3 { return b.Min.Add(b.Max).Mul(0.5) }
func (b Box) Diagonal() Vec3 {
	if !b.IsValid() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// IsValid reports Min <= Max on every axis; a negative-extent box is the
// degenerate-geometry case spec.md §7.2 says to treat as empty.
func (b Box) IsValid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

func (b Box) SurfaceArea() float64 {
	if !b.IsValid() {
		return 0
	}
	d := b.Diagonal()
	return 2 * (d.X*d.Y + d.Y*d.Z + d.Z*d.X)
}

// LongestAxis returns the axis (0=X,1=Y,2=Z) of greatest extent, used by
// both the BVH's centroid split and the photon kd-tree's split.
func (b Box) LongestAxis() int {
	d := b.Diagonal()
	if d.X > d.Y && d.X > d.Z {
		return 0
	}
	if d.Y > d.Z {
		return 1
	}
	return 2
}

func (b Box) Axis(axis int) (min, max float64) {
	switch axis {
	case 0:
		return b.Min.X, b.Max.X
	case 1:
		return b.Min.Y, b.Max.Y
	default:
		return b.Min.Z, b.Max.Z
	}
}

// BoundingSphere returns a sphere (center, radius) that contains the box —
// used to seed infinite/background light sampling from the finite scene
// extent (spec.md §4.4).
func (b Box) BoundingSphere() (center Vec3, radius float64) {
	center = b.Center()
	radius = b.Max.Sub(center).Length()
	return center, radius
}

// Hit tests the box against a ray's [tMin,tMax] using the slab method,
// computing the inverse direction per axis on each call, as BVH traversal
// does at every node (spec.md §4.1).
func (b Box) Hit(r Ray, tMin, tMax float64) bool {
	for axis := 0; axis < 3; axis++ {
		lo, hi := b.Axis(axis)
		origin, dir := component(r.Origin, axis), component(r.Direction, axis)

		if math.Abs(dir) < 1e-12 {
			if origin < lo || origin > hi {
				return false
			}
			continue
		}
		invD := 1 / dir
		t0 := (lo - origin) * invD
		t1 := (hi - origin) * invD
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = math.Max(tMin, t0)
		tMax = math.Min(tMax, t1)
		if tMin > tMax {
			return false
		}
	}
	return true
}

func component(v Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
