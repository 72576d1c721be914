package scenebuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenforge/lumen/pkg/bsdf"
	"github.com/lumenforge/lumen/pkg/bvh"
	"github.com/lumenforge/lumen/pkg/camera"
	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/light"
	"github.com/lumenforge/lumen/pkg/primitive"
	"github.com/lumenforge/lumen/pkg/shape"
)

func testMaterial() primitive.Material {
	return primitive.NewSingleBxdf(bsdf.NewLambert(core.NewVec3(0.5, 0.5, 0.5)))
}

func TestAddShapeWithoutMaterialErrors(t *testing.T) {
	b := New()
	err := b.AddShape(shape.NewSphere(core.NewVec3(0, 0, 0), 1))
	assert.Error(t, err)
}

func TestAddShapePositionedByCurrentTransform(t *testing.T) {
	b := New()
	b.SetMaterial(testMaterial())
	b.Translate(core.NewVec3(5, 0, 0))
	require.NoError(t, b.AddShape(shape.NewSphere(core.NewVec3(0, 0, 0), 1)))
	b.SetCamera(camera.NewPinholeCamera(core.Identity(), 1))

	scene, err := b.BuildScene(core.NewVec2(4, 4))
	require.NoError(t, err)
	assert.InDelta(t, 5, scene.Aggregate.Bounds().Center().X, 1e-9)
}

func TestPopStateWithoutPushErrors(t *testing.T) {
	b := New()
	assert.Error(t, b.PopState())
}

func TestPushPopStateRestoresTransformAndMaterial(t *testing.T) {
	b := New()
	m1 := testMaterial()
	b.SetMaterial(m1)
	b.Translate(core.NewVec3(1, 2, 3))

	b.PushState()
	b.Translate(core.NewVec3(10, 10, 10))
	b.SetMaterial(testMaterial())

	require.NoError(t, b.PopState())
	assert.Equal(t, m1, b.Material())
	p := b.Transform().Point(core.NewVec3(0, 0, 0))
	assert.Equal(t, core.NewVec3(1, 2, 3), p)
}

func TestPopFrameWithoutPushErrors(t *testing.T) {
	b := New()
	_, err := b.PopFrame()
	assert.Error(t, err)
}

func TestPushFrameResetsTransformButKeepsMaterial(t *testing.T) {
	b := New()
	m := testMaterial()
	b.SetMaterial(m)
	b.Translate(core.NewVec3(100, 0, 0))

	b.PushFrame()
	assert.Equal(t, m, b.Material())
	assert.Equal(t, core.Identity(), b.Transform())
}

func TestPopFrameSingleChildReturnsItUnwrapped(t *testing.T) {
	b := New()
	b.SetMaterial(testMaterial())

	b.PushFrame()
	require.NoError(t, b.AddShape(shape.NewSphere(core.NewVec3(0, 0, 0), 1)))
	agg, err := b.PopFrame()
	require.NoError(t, err)

	_, isShapePrimitive := agg.(*primitive.ShapePrimitive)
	assert.True(t, isShapePrimitive, "a single-child frame collapses to that child directly")
}

func TestPopFrameManyChildrenBuildsListAggregateUpToLeafSize(t *testing.T) {
	b := New()
	b.SetMaterial(testMaterial())
	b.SetBVHOptions(bvh.Options{LeafSize: 8, MaxLeafSize: 16, SplitMethod: bvh.SplitSAH, SAHBucketCount: 12, MinElemsPerJob: 1, ParallelThreshold: 1 << 30})

	b.PushFrame()
	for i := 0; i < 4; i++ {
		require.NoError(t, b.AddShape(shape.NewSphere(core.NewVec3(float64(i), 0, 0), 0.1)))
	}
	agg, err := b.PopFrame()
	require.NoError(t, err)

	_, isList := agg.(*primitive.ListAggregate)
	assert.True(t, isList)
}

func TestPopFrameManyChildrenBuildsBVHBeyondLeafSize(t *testing.T) {
	b := New()
	b.SetMaterial(testMaterial())
	b.SetBVHOptions(bvh.Options{LeafSize: 2, MaxLeafSize: 4, SplitMethod: bvh.SplitSAH, SAHBucketCount: 12, MinElemsPerJob: 1, ParallelThreshold: 1 << 30})

	b.PushFrame()
	for i := 0; i < 10; i++ {
		require.NoError(t, b.AddShape(shape.NewSphere(core.NewVec3(float64(i), 0, 0), 0.1)))
	}
	agg, err := b.PopFrame()
	require.NoError(t, err)

	_, isBVH := agg.(*primitive.BVHAggregate)
	assert.True(t, isBVH)
}

func TestAddPrimitiveInstancesFrameAtMultipleTransforms(t *testing.T) {
	b := New()
	b.SetMaterial(testMaterial())

	b.PushFrame()
	require.NoError(t, b.AddShape(shape.NewSphere(core.NewVec3(0, 0, 0), 1)))
	require.NoError(t, b.AddShape(shape.NewSphere(core.NewVec3(3, 0, 0), 1)))
	frame, err := b.PopFrame()
	require.NoError(t, err)

	b.Translate(core.NewVec3(0, 0, 0))
	b.AddPrimitive(frame)
	b.ResetTransform()
	b.Translate(core.NewVec3(0, 100, 0))
	b.AddPrimitive(frame)
	b.ResetTransform()

	b.SetCamera(camera.NewPinholeCamera(core.Identity(), 1))
	scene, err := b.BuildScene(core.NewVec2(4, 4))
	require.NoError(t, err)

	bounds := scene.Aggregate.Bounds()
	assert.InDelta(t, 0, bounds.Min.Y, 1.0)
	assert.Greater(t, bounds.Max.Y, 99.0)
}

func TestAddAreaShapeRegistersLightForSampling(t *testing.T) {
	b := New()
	b.SetMaterial(testMaterial())
	l, err := b.AddAreaShape(shape.NewSphere(core.NewVec3(0, 4, 0), 0.5), core.NewVec3(10, 10, 10), true)
	require.NoError(t, err)
	require.NotNil(t, l)

	b.SetCamera(camera.NewPinholeCamera(core.Identity(), 1))
	scene, err := b.BuildScene(core.NewVec2(4, 4))
	require.NoError(t, err)
	assert.Len(t, scene.Lights, 1)
	assert.Equal(t, l, scene.Lights[0])
}

func TestAddLightRegistersNonAreaLightRegardlessOfTransform(t *testing.T) {
	b := New()
	b.SetMaterial(testMaterial())
	require.NoError(t, b.AddShape(shape.NewSphere(core.NewVec3(0, 0, 0), 1)))

	pointLight := light.NewPointLight(core.NewVec3(0, 10, 0), core.NewVec3(5, 5, 5))
	b.AddLight(pointLight)
	b.SetCamera(camera.NewPinholeCamera(core.Identity(), 1))

	scene, err := b.BuildScene(core.NewVec2(4, 4))
	require.NoError(t, err)
	assert.Contains(t, scene.Lights, light.Light(pointLight))
}

func TestBuildSceneFailsWithUnbalancedFrameStack(t *testing.T) {
	b := New()
	b.SetMaterial(testMaterial())
	require.NoError(t, b.AddShape(shape.NewSphere(core.NewVec3(0, 0, 0), 1)))
	b.PushFrame()
	b.SetCamera(camera.NewPinholeCamera(core.Identity(), 1))

	_, err := b.BuildScene(core.NewVec2(4, 4))
	assert.Error(t, err)
}

func TestBuildSceneFailsWithoutCamera(t *testing.T) {
	b := New()
	b.SetMaterial(testMaterial())
	require.NoError(t, b.AddShape(shape.NewSphere(core.NewVec3(0, 0, 0), 1)))

	_, err := b.BuildScene(core.NewVec2(4, 4))
	assert.Error(t, err)
}

func TestBuildSceneFailsOnEmptyScene(t *testing.T) {
	b := New()
	b.SetCamera(camera.NewPinholeCamera(core.Identity(), 1))
	_, err := b.BuildScene(core.NewVec2(4, 4))
	assert.Error(t, err)
}
