// Package primitive composes shapes, materials and area lights into the
// scene's directed-acyclic primitive tree (spec.md §3 "Primitive tree"):
// a shape primitive bundling a Shape with a Material and an optional area
// Light, a frame primitive applying a transform to an inner primitive, and
// an aggregate (BVH or list) collecting many children. Grounded on the
// teacher's pkg/geometry (Shape/interfaces.go's Hit contract) and
// pkg/scene/scene.go (BVH-backed aggregate, Preprocess), generalized to
// spec.md's explicit Primitive/Intersection split and frame-transform
// primitive the teacher's flatter Shape-is-the-primitive design doesn't
// have.
package primitive

import (
	"github.com/lumenforge/lumen/pkg/bsdf"
	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/light"
)

// Intersection is surface-point differential geometry at a ray hit, the
// ray epsilon to offset outgoing rays, and a non-owning reference to the
// hit primitive (spec.md §3). It is only valid while the scene that
// produced it is alive.
type Intersection struct {
	Geom      core.DiffGeom
	Epsilon   float64
	Primitive Primitive
}

// Primitive is the contract every node of the primitive tree implements.
// Every leaf primitive must answer both Intersect (closest hit) and
// IntersectP (any hit) per spec.md §3's invariant.
type Primitive interface {
	core.Boundable
	Intersect(ray core.Ray) (Intersection, bool)
	IntersectP(ray core.Ray) bool
	// Light returns the area light this primitive emits as, or nil if it
	// is not an emitter.
	Light() light.Light
	// Bsdf builds the local BSDF at a hit on this primitive, in world
	// space. Returns nil for primitives with no material (pure aggregates,
	// frame wrappers delegate to their child).
	Bsdf(geom core.DiffGeom) *bsdf.Bsdf
}
