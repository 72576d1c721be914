package primitive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenforge/lumen/pkg/bsdf"
	"github.com/lumenforge/lumen/pkg/bvh"
	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/light"
	"github.com/lumenforge/lumen/pkg/shape"
)

func lambertMaterial() Material {
	return NewSingleBxdf(bsdf.NewLambert(core.NewVec3(0.5, 0.5, 0.5)))
}

func TestShapePrimitiveIntersectAtOrigin(t *testing.T) {
	sp := NewShapePrimitive(shape.NewSphere(core.NewVec3(0, 0, 0), 1), lambertMaterial(), core.Identity())
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

	hit, ok := sp.Intersect(ray)
	require.True(t, ok)
	assert.InDelta(t, 1.0, hit.Geom.P.Z, 1e-9)
	assert.Same(t, sp, hit.Primitive)
}

func TestShapePrimitiveIntersectPMatchesIntersect(t *testing.T) {
	sp := NewShapePrimitive(shape.NewSphere(core.NewVec3(0, 0, 0), 1), lambertMaterial(), core.Identity())
	hitRay := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	missRay := core.NewRay(core.NewVec3(5, 5, 5), core.NewVec3(0, 0, -1))

	assert.True(t, sp.IntersectP(hitRay))
	assert.False(t, sp.IntersectP(missRay))
}

func TestShapePrimitiveRespectsFrameTransform(t *testing.T) {
	toFrame := core.Translate(core.NewVec3(10, 0, 0))
	sp := NewShapePrimitive(shape.NewSphere(core.NewVec3(0, 0, 0), 1), lambertMaterial(), toFrame)

	ray := core.NewRay(core.NewVec3(10, 0, 5), core.NewVec3(0, 0, -1))
	hit, ok := sp.Intersect(ray)
	require.True(t, ok)
	assert.InDelta(t, 10.0, hit.Geom.P.X, 1e-9)
	assert.InDelta(t, 1.0, hit.Geom.P.Z, 1e-9)

	missRay := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	_, missOk := sp.Intersect(missRay)
	assert.False(t, missOk)
}

func TestShapePrimitiveBsdfNilWithoutMaterial(t *testing.T) {
	sp := NewShapePrimitive(shape.NewSphere(core.NewVec3(0, 0, 0), 1), nil, core.Identity())
	assert.Nil(t, sp.Bsdf(core.DiffGeom{}))
}

func TestShapePrimitiveBsdfHasAddedBxdf(t *testing.T) {
	sp := NewShapePrimitive(shape.NewSphere(core.NewVec3(0, 0, 0), 1), lambertMaterial(), core.Identity())
	hit, ok := sp.Intersect(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)))
	require.True(t, ok)
	b := sp.Bsdf(hit.Geom)
	require.NotNil(t, b)
	assert.Equal(t, 1, b.NumBxdfs(bsdf.All))
}

func TestShapePrimitiveLightDefaultsNil(t *testing.T) {
	sp := NewShapePrimitive(shape.NewSphere(core.NewVec3(0, 0, 0), 1), lambertMaterial(), core.Identity())
	assert.Nil(t, sp.Light())
}

func TestShapePrimitiveLightWiredWhenEmissive(t *testing.T) {
	sph := shape.NewSphere(core.NewVec3(0, 0, 0), 1)
	areaLight := light.NewDiffuseAreaLight(sph, core.NewVec3(1, 1, 1), false)
	sp := NewEmissiveShapePrimitive(sph, lambertMaterial(), core.Identity(), areaLight)
	assert.Same(t, areaLight, sp.Light())
}

func TestFramePrimitiveComposesTransforms(t *testing.T) {
	sp := NewShapePrimitive(shape.NewSphere(core.NewVec3(0, 0, 0), 1), lambertMaterial(), core.Identity())
	fp := NewFramePrimitive(sp, core.Translate(core.NewVec3(0, 10, 0)))

	ray := core.NewRay(core.NewVec3(0, 10, 5), core.NewVec3(0, 0, -1))
	hit, ok := fp.Intersect(ray)
	require.True(t, ok)
	assert.InDelta(t, 10.0, hit.Geom.P.Y, 1e-9)
}

func TestFramePrimitiveDelegatesLightAndBsdf(t *testing.T) {
	sph := shape.NewSphere(core.NewVec3(0, 0, 0), 1)
	areaLight := light.NewDiffuseAreaLight(sph, core.NewVec3(1, 1, 1), false)
	sp := NewEmissiveShapePrimitive(sph, lambertMaterial(), core.Identity(), areaLight)
	fp := NewFramePrimitive(sp, core.Translate(core.NewVec3(0, 10, 0)))

	assert.Same(t, areaLight, fp.Light())
	assert.NotNil(t, fp.Bsdf(core.DiffGeom{}))
}

func twoSpheres() []Primitive {
	a := NewShapePrimitive(shape.NewSphere(core.NewVec3(-5, 0, 0), 1), lambertMaterial(), core.Identity())
	b := NewShapePrimitive(shape.NewSphere(core.NewVec3(5, 0, 0), 1), lambertMaterial(), core.Identity())
	return []Primitive{a, b}
}

func TestListAggregateFindsClosestOfMany(t *testing.T) {
	agg := NewListAggregate(twoSpheres())
	ray := core.NewRay(core.NewVec3(-5, 0, 5), core.NewVec3(0, 0, -1))
	hit, ok := agg.Intersect(ray)
	require.True(t, ok)
	assert.InDelta(t, -5.0, hit.Geom.P.X, 1e-9)
}

func TestListAggregateIntersectPAnyHit(t *testing.T) {
	agg := NewListAggregate(twoSpheres())
	assert.True(t, agg.IntersectP(core.NewRay(core.NewVec3(5, 0, 5), core.NewVec3(0, 0, -1))))
	assert.False(t, agg.IntersectP(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))))
}

func TestBVHAggregateFindsClosestOfMany(t *testing.T) {
	agg := NewBVHAggregate(twoSpheres(), bvh.DefaultOptions())
	ray := core.NewRay(core.NewVec3(5, 0, 5), core.NewVec3(0, 0, -1))
	hit, ok := agg.Intersect(ray)
	require.True(t, ok)
	assert.InDelta(t, 5.0, hit.Geom.P.X, 1e-9)
}

func TestBVHAggregateMissReturnsFalse(t *testing.T) {
	agg := NewBVHAggregate(twoSpheres(), bvh.DefaultOptions())
	_, ok := agg.Intersect(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)))
	assert.False(t, ok)
}

func TestBVHAggregateSceneBoundsCoversChildren(t *testing.T) {
	agg := NewBVHAggregate(twoSpheres(), bvh.DefaultOptions())
	sb := agg.SceneBounds()
	assert.Greater(t, sb.Radius, 5.0)
}
