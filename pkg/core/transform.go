package core

import "math"

// Transform holds a 4x4 affine matrix and its precomputed inverse, so that
// both forward and inverse application are O(1) (spec.md §3). Points are
// translated, vectors are not, and normals transform by the inverse
// transpose — that distinction is the whole reason this type exists instead
// of reusing Vec3 for all three.
type Transform struct {
	m, inv [4][4]float64
}

// Identity returns the identity transform.
func Identity() Transform {
	var t Transform
	for i := 0; i < 4; i++ {
		t.m[i][i] = 1
		t.inv[i][i] = 1
	}
	return t
}

// NewTransform builds a Transform from a matrix and its precomputed
// inverse. The package has no general matrix inversion: callers that only
// know the forward matrix compose it from Translate, ScaleT, RotateX/Y/Z
// and LookAt, which carry their own inverses.
func NewTransform(m, inv [4][4]float64) Transform {
	return Transform{m: m, inv: inv}
}

// Translate returns a translation transform.
func Translate(delta Vec3) Transform {
	t := Identity()
	t.m[0][3], t.m[1][3], t.m[2][3] = delta.X, delta.Y, delta.Z
	t.inv[0][3], t.inv[1][3], t.inv[2][3] = -delta.X, -delta.Y, -delta.Z
	return t
}

// ScaleT returns a non-uniform scale transform. Panics on a zero component —
// per spec.md §7.2, producing a singular transform is a programmer error.
func ScaleT(s Vec3) Transform {
	if s.X == 0 || s.Y == 0 || s.Z == 0 {
		panic("core: Scale with a zero component is singular")
	}
	t := Identity()
	t.m[0][0], t.m[1][1], t.m[2][2] = s.X, s.Y, s.Z
	t.inv[0][0], t.inv[1][1], t.inv[2][2] = 1/s.X, 1/s.Y, 1/s.Z
	return t
}

// RotateX/Y/Z return rotation transforms (radians), with the inverse equal
// to the transpose of the forward rotation block (orthonormal).
func RotateX(rad float64) Transform { return axisRotation(rad, [3]int{1, 2, 1}, rotX) }
func RotateY(rad float64) Transform { return axisRotation(rad, [3]int{0, 2, 0}, rotY) }
func RotateZ(rad float64) Transform { return axisRotation(rad, [3]int{0, 1, 0}, rotZ) }

type axisKind int

const (
	rotX axisKind = iota
	rotY
	rotZ
)

func axisRotation(rad float64, _ [3]int, kind axisKind) Transform {
	s, c := math.Sin(rad), math.Cos(rad)
	t := Identity()
	switch kind {
	case rotX:
		t.m[1][1], t.m[1][2] = c, -s
		t.m[2][1], t.m[2][2] = s, c
	case rotY:
		t.m[0][0], t.m[0][2] = c, s
		t.m[2][0], t.m[2][2] = -s, c
	case rotZ:
		t.m[0][0], t.m[0][1] = c, -s
		t.m[1][0], t.m[1][1] = s, c
	}
	t.inv = transpose3x3(t.m)
	return t
}

func transpose3x3(m [4][4]float64) [4][4]float64 {
	var out [4][4]float64
	out[3][3] = 1
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

// LookAt builds a cameraToWorld transform: the returned transform's basis
// has its Z axis pointing from eye toward target, X to the right of that
// (cross of up and the view direction) and Y completing a right-handed
// frame. Panics if up is parallel to the view direction, the same
// programmer-error convention as ScaleT's singular-transform panic.
func LookAt(eye, target, up Vec3) Transform {
	dir := target.Sub(eye).Normalize()
	right := up.Normalize().Cross(dir)
	if right.LengthSquared() < 1e-12 {
		panic("core: LookAt with up parallel to the view direction is singular")
	}
	right = right.Normalize()
	newUp := dir.Cross(right)

	m := [4][4]float64{
		{right.X, newUp.X, dir.X, eye.X},
		{right.Y, newUp.Y, dir.Y, eye.Y},
		{right.Z, newUp.Z, dir.Z, eye.Z},
		{0, 0, 0, 1},
	}
	cameraToWorld := Transform{m: m}
	cameraToWorld.inv = invertAffine(m)
	return cameraToWorld
}

// invertAffine inverts a rigid+uniform-basis affine matrix by transposing
// the orthonormal rotation block and negating the translated origin,
// avoiding a full general 4x4 inverse for the common camera-frame case.
func invertAffine(m [4][4]float64) [4][4]float64 {
	rot := transpose3x3(m)
	t := Vec3{m[0][3], m[1][3], m[2][3]}
	tInv := applyLinear(rot, t.Mul(-1))
	rot[0][3], rot[1][3], rot[2][3] = tInv.X, tInv.Y, tInv.Z
	return rot
}

// Mul composes transforms: (t.Mul(o)) applied to a point is t(o(p)).
func (t Transform) Mul(o Transform) Transform {
	return Transform{m: matMul(t.m, o.m), inv: matMul(o.inv, t.inv)}
}

func matMul(a, b [4][4]float64) [4][4]float64 {
	var out [4][4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += a[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Inverse returns the transform that undoes t; O(1) since the inverse is
// precomputed already.
func (t Transform) Inverse() Transform { return Transform{m: t.inv, inv: t.m} }

// Point transforms a point (translated).
func (t Transform) Point(p Vec3) Vec3 { return applyAffine(t.m, p) }

// Vector transforms a vector (not translated).
func (t Transform) Vector(v Vec3) Vec3 { return applyLinear(t.m, v) }

// Normal transforms a surface normal by the inverse transpose, per spec.md
// §3's description of how Normal differs from Vector under affine maps.
func (t Transform) Normal(n Vec3) Vec3 { return applyLinear(transpose3x3(t.inv), n) }

// Ray transforms a full ray (origin as point, direction as vector),
// preserving its [TMin,TMax] interval.
func (t Transform) Ray(r Ray) Ray {
	r.Origin = t.Point(r.Origin)
	r.Direction = t.Vector(r.Direction)
	return r
}

// Box transforms an axis-aligned box by transforming all 8 corners and
// re-bounding — the standard conservative approach for affine maps.
func (t Transform) Box(b Box) Box {
	out := EmptyBox()
	for i := 0; i < 8; i++ {
		corner := Vec3{
			X: pick(i&1 != 0, b.Min.X, b.Max.X),
			Y: pick(i&2 != 0, b.Min.Y, b.Max.Y),
			Z: pick(i&4 != 0, b.Min.Z, b.Max.Z),
		}
		out = out.UnionPoint(t.Point(corner))
	}
	return out
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return b
	}
	return a
}

func applyAffine(m [4][4]float64, p Vec3) Vec3 {
	x := m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3]
	y := m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3]
	z := m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3]
	w := m[3][0]*p.X + m[3][1]*p.Y + m[3][2]*p.Z + m[3][3]
	if w != 1 && w != 0 {
		return Vec3{x / w, y / w, z / w}
	}
	return Vec3{x, y, z}
}

func applyLinear(m [4][4]float64, v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}
