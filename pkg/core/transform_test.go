package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformTranslatePoint(t *testing.T) {
	tr := Translate(NewVec3(1, 2, 3))
	p := tr.Point(NewVec3(0, 0, 0))
	assert.Equal(t, NewVec3(1, 2, 3), p)

	v := tr.Vector(NewVec3(5, 5, 5))
	assert.Equal(t, NewVec3(5, 5, 5), v, "vectors are not translated")
}

func TestTransformInverseRoundTrip(t *testing.T) {
	tr := Translate(NewVec3(1, -2, 3)).Mul(RotateY(0.7)).Mul(ScaleT(NewVec3(2, 3, 4)))
	inv := tr.Inverse()

	p := NewVec3(1.5, -0.25, 3.0)
	roundTripped := inv.Point(tr.Point(p))
	assert.InDelta(t, p.X, roundTripped.X, 1e-9)
	assert.InDelta(t, p.Y, roundTripped.Y, 1e-9)
	assert.InDelta(t, p.Z, roundTripped.Z, 1e-9)
}

func TestTransformNormalInverseTranspose(t *testing.T) {
	// A non-uniform scale must transform normals by the inverse transpose,
	// not the forward matrix, to remain perpendicular to the surface.
	tr := ScaleT(NewVec3(1, 2, 1))
	// Plane y=const has normal (0,1,0); tangent in that plane is (1,0,0).
	n := NewVec3(0, 1, 0)
	tangent := NewVec3(1, 0, 0)

	transformedN := tr.Normal(n)
	transformedTangent := tr.Vector(tangent)
	assert.InDelta(t, 0.0, transformedN.Dot(transformedTangent), 1e-9)
}

func TestScaleZeroPanics(t *testing.T) {
	require.Panics(t, func() { ScaleT(NewVec3(0, 1, 1)) })
}

func TestRotateZPreservesLength(t *testing.T) {
	tr := RotateZ(math.Pi / 3)
	v := NewVec3(1, 0, 0)
	rotated := tr.Vector(v)
	assert.InDelta(t, 1.0, rotated.Length(), 1e-9)
}

func TestLookAtMapsEyeToOriginAndTargetOntoPositiveZ(t *testing.T) {
	eye := NewVec3(0, 0, -8)
	target := NewVec3(0, 0, 0)
	cameraToWorld := LookAt(eye, target, NewVec3(0, 1, 0))

	worldEye := cameraToWorld.Point(NewVec3(0, 0, 0))
	assert.InDelta(t, eye.X, worldEye.X, 1e-9)
	assert.InDelta(t, eye.Y, worldEye.Y, 1e-9)
	assert.InDelta(t, eye.Z, worldEye.Z, 1e-9)

	worldForward := cameraToWorld.Vector(NewVec3(0, 0, 1))
	toTarget := target.Sub(eye).Normalize()
	assert.InDelta(t, toTarget.X, worldForward.X, 1e-9)
	assert.InDelta(t, toTarget.Y, worldForward.Y, 1e-9)
	assert.InDelta(t, toTarget.Z, worldForward.Z, 1e-9)
}

func TestLookAtInverseRoundTrips(t *testing.T) {
	cameraToWorld := LookAt(NewVec3(3, 4, -5), NewVec3(1, 1, 1), NewVec3(0, 1, 0))
	p := NewVec3(0.3, -0.2, 1.5)
	roundTripped := cameraToWorld.Inverse().Point(cameraToWorld.Point(p))
	assert.InDelta(t, p.X, roundTripped.X, 1e-9)
	assert.InDelta(t, p.Y, roundTripped.Y, 1e-9)
	assert.InDelta(t, p.Z, roundTripped.Z, 1e-9)
}

func TestLookAtParallelUpPanics(t *testing.T) {
	require.Panics(t, func() {
		LookAt(NewVec3(0, 0, 0), NewVec3(0, 1, 0), NewVec3(0, 1, 0))
	})
}
