package shape

import (
	"fmt"

	"github.com/lumenforge/lumen/pkg/core"
)

// MeshOptions carries the pieces of a mesh beyond bare positions, mirroring
// the optional-attribute style of the teacher's TriangleMeshOptions: supply
// only what the source data actually has.
type MeshOptions struct {
	Normals []core.Vec3 // one per vertex, must match len(vertices) if set
	UVs     []core.Vec2 // one per vertex, must match len(vertices) if set
	Center  *core.Vec3  // if set, vertices are recentered around this point
}

// NewMesh validates and assembles a Mesh plus its Triangle shapes from flat
// vertex/face-index buffers, the usual path from a loaded or generated mesh
// into Shape primitives (spec.md §3 "Meshes ... are shared").
func NewMesh(vertices []core.Vec3, faces []int, options *MeshOptions) (*Mesh, []*Triangle) {
	if len(faces)%3 != 0 {
		panic(fmt.Sprintf("shape: face index count %d is not a multiple of 3", len(faces)))
	}
	for _, idx := range faces {
		if idx < 0 || idx >= len(vertices) {
			panic(fmt.Sprintf("shape: face index %d out of range for %d vertices", idx, len(vertices)))
		}
	}

	p := append([]core.Vec3(nil), vertices...)
	if options != nil && options.Center != nil {
		c := *options.Center
		for i := range p {
			p[i] = p[i].Sub(c)
		}
	}

	mesh := &Mesh{P: p}
	if options != nil {
		if len(options.Normals) > 0 {
			if len(options.Normals) != len(vertices) {
				panic("shape: normals count must match vertex count")
			}
			mesh.N = options.Normals
		}
		if len(options.UVs) > 0 {
			if len(options.UVs) != len(vertices) {
				panic("shape: UV count must match vertex count")
			}
			mesh.UV = options.UVs
		}
	}

	return mesh, Triangulate(mesh, faces)
}

// MeshShapes returns the Triangle set as a []Shape, the form consumed by
// BVH construction and the primitive aggregate.
func MeshShapes(tris []*Triangle) []Shape {
	shapes := make([]Shape, len(tris))
	for i, t := range tris {
		shapes[i] = t
	}
	return shapes
}
