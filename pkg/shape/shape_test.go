package shape

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenforge/lumen/pkg/core"
)

// allShapes exercises the universal invariants of spec.md §8 ("every Shape
// satisfies: Hit implies HitP, the hit point lies within Epsilon of the
// returned bounds") across the whole shape family from a single table.
func allShapes(t *testing.T) map[string]Shape {
	t.Helper()
	mesh, tris := NewMesh(
		[]core.Vec3{
			core.NewVec3(-1, -1, 5),
			core.NewVec3(1, -1, 5),
			core.NewVec3(0, 1, 5),
		},
		[]int{0, 1, 2},
		nil,
	)
	require.Len(t, tris, 1)
	_ = mesh

	return map[string]Shape{
		"sphere":   NewSphere(core.NewVec3(0, 0, 0), 1),
		"disc":     NewDisc(1),
		"cylinder": NewCylinder(1, -1, 1, true),
		"cube":     NewUnitCube(),
		"quad":     NewQuad(core.NewVec3(-1, -1, 2), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0)),
		"triangle": tris[0],
	}
}

func TestShapeHitImpliesHitP(t *testing.T) {
	for name, s := range allShapes(t) {
		t.Run(name, func(t *testing.T) {
			for _, origin := range []core.Vec3{
				core.NewVec3(0, 0, -5),
				core.NewVec3(0.3, -0.2, -5),
				core.NewVec3(-0.4, 0.4, -5),
			} {
				ray := core.NewRayTo(origin, core.NewVec3(0, 0, 10))
				hit, ok := s.Hit(ray)
				if !ok {
					continue
				}
				assert.True(t, s.HitP(ray), "%s: Hit succeeded but HitP missed", name)
				assert.True(t, hit.Geom.P.IsFinite(), "%s: hit point not finite", name)
				assert.Greater(t, hit.Epsilon, 0.0, "%s: epsilon must be positive", name)
			}
		})
	}
}

func TestShapeBoundsContainSurfaceSamples(t *testing.T) {
	for name, s := range allShapes(t) {
		t.Run(name, func(t *testing.T) {
			b := s.Bounds()
			require.True(t, b.IsValid(), "%s: bounds must be valid", name)
			for _, uv := range []core.Vec2{
				core.NewVec2(0.1, 0.1),
				core.NewVec2(0.5, 0.5),
				core.NewVec2(0.9, 0.2),
			} {
				ps := s.SamplePoint(uv)
				grown := b
				grown.Min = grown.Min.Sub(core.NewVec3(1e-4, 1e-4, 1e-4))
				grown.Max = grown.Max.Add(core.NewVec3(1e-4, 1e-4, 1e-4))
				assert.True(t, grown.Contains(ps.P), "%s: sampled point %v outside bounds %v", name, ps.P, b)
				assert.Greater(t, ps.PdfArea, 0.0, "%s: area pdf must be positive", name)
			}
		})
	}
}

func TestShapeAreaPositive(t *testing.T) {
	for name, s := range allShapes(t) {
		t.Run(name, func(t *testing.T) {
			assert.Greater(t, s.Area(), 0.0, "%s: area must be positive", name)
		})
	}
}

func TestSamplePointPivotMatchesPdfPivot(t *testing.T) {
	s := NewSphere(core.NewVec3(0, 0, 0), 1)
	pivot := core.NewVec3(0, 0, -5)
	uv := core.NewVec2(0.37, 0.61)
	ds := s.SamplePointPivot(pivot, uv)
	assert.Greater(t, ds.PdfDir, 0.0)

	pdf := s.PdfPivot(pivot, ds.P, ds.Nn)
	assert.InDelta(t, ds.PdfDir, pdf, 1e-6)
}

func TestQuadNormalOrthogonalToEdges(t *testing.T) {
	q := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0))
	assert.InDelta(t, 0, q.normal.Dot(q.U), 1e-9)
	assert.InDelta(t, 0, q.normal.Dot(q.V), 1e-9)
	assert.InDelta(t, 1.0, q.Area(), 1e-9)
}

func TestCubeFaceNormalMatchesAxis(t *testing.T) {
	c := NewUnitCube()
	ray := core.NewRayTo(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 10))
	hit, ok := c.Hit(ray)
	require.True(t, ok)
	assert.InDelta(t, -1, hit.Geom.Nn.Z, 1e-9)
	assert.InDelta(t, 0, hit.Geom.Nn.X, 1e-9)
}

func TestCylinderCapsHitWhenCapped(t *testing.T) {
	c := NewCylinder(1, -1, 1, true)
	ray := core.NewRayTo(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 10))
	hit, ok := c.Hit(ray)
	require.True(t, ok)
	assert.InDelta(t, -1, hit.Geom.P.Z, 1e-6)
}

func TestTriangleBarycentricInterpolation(t *testing.T) {
	mesh := &Mesh{
		P: []core.Vec3{
			core.NewVec3(0, 0, 0),
			core.NewVec3(1, 0, 0),
			core.NewVec3(0, 1, 0),
		},
		N: []core.Vec3{
			core.NewVec3(0, 0, 1),
			core.NewVec3(0, 0, 1),
			core.NewVec3(0, 0, 1),
		},
	}
	tri := NewTriangle(mesh, 0, 1, 2)
	ray := core.NewRayTo(core.NewVec3(0.2, 0.2, -5), core.NewVec3(0, 0, 10))
	hit, ok := tri.Hit(ray)
	require.True(t, ok)
	assert.InDelta(t, 0, hit.Geom.P.Z, 1e-9)
	assert.InDelta(t, 1.0, hit.Geom.NnShading.Z, 1e-9)
}

func TestTriangleDegenerateMisses(t *testing.T) {
	mesh := &Mesh{P: []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(2, 0, 0), // collinear: zero area
	}}
	tri := NewTriangle(mesh, 0, 1, 2)
	ray := core.NewRayTo(core.NewVec3(0.5, -5, 0), core.NewVec3(0, 10, 0))
	_, ok := tri.Hit(ray)
	assert.False(t, ok)
}

func TestNewMeshValidatesFaceIndices(t *testing.T) {
	assert.Panics(t, func() {
		NewMesh([]core.Vec3{core.NewVec3(0, 0, 0)}, []int{0, 1, 2}, nil)
	})
}

func TestNewMeshValidatesFaceCount(t *testing.T) {
	assert.Panics(t, func() {
		NewMesh([]core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0)}, []int{0, 1}, nil)
	})
}

func TestMeshRecentering(t *testing.T) {
	center := core.NewVec3(5, 5, 5)
	mesh, _ := NewMesh(
		[]core.Vec3{center, center.Add(core.NewVec3(1, 0, 0)), center.Add(core.NewVec3(0, 1, 0))},
		[]int{0, 1, 2},
		&MeshOptions{Center: &center},
	)
	assert.True(t, mesh.P[0].IsZero())
}

func TestSphereQuadraticRootsOrdering(t *testing.T) {
	s := NewSphere(core.NewVec3(0, 0, 0), 1)
	ray := core.NewRayTo(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 10))
	hit, ok := s.Hit(ray)
	require.True(t, ok)
	assert.InDelta(t, -1, hit.Geom.P.Z, 1e-9)
	assert.InDelta(t, 1.0, hit.Geom.Nn.Length(), 1e-9)
}

func TestDiscAnnulusExcludesInnerHole(t *testing.T) {
	d := &Disc{Radius: 1, InnerRadius: 0.5}
	ray := core.NewRayTo(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 10))
	_, ok := d.Hit(ray)
	assert.False(t, ok, "ray through the center should miss the annulus hole")
}

func TestBoundsIncludeInfiniteGuard(t *testing.T) {
	s := NewSphere(core.NewVec3(0, 0, 0), 1)
	b := s.Bounds()
	assert.False(t, math.IsInf(b.Min.X, 0))
	assert.False(t, math.IsInf(b.Max.X, 0))
}
