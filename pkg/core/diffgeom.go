package core

// DiffGeom is the differential geometry at a surface hit (spec.md §3):
// position, geometric and shading normals, UV, and the surface-tangent
// derivatives in both the geometric and shading frames. Shape.Hit produces
// one of these; the BSDF layer consumes it to build the local orthonormal
// shading frame.
type DiffGeom struct {
	P  Vec3
	Nn Vec3 // geometric normal
	U  int  // reserved for future texture-space indices; UV lives below
	UV Vec2

	DpDu, DpDv               Vec3 // geometric tangent derivatives
	NnShading                Vec3
	DpDuShading, DpDvShading Vec3
}

// Boundable is anything with a Box — the trait the BVH needs from its
// elements (spec.md §4.1's "trait providing bounds(element) -> Box").
type Boundable interface {
	Bounds() Box
}
