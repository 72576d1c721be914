package shape

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
)

// Mesh is the shared, reference-counted vertex data backing a set of
// Triangle shapes (spec.md §3 "Meshes and materials are shared"). Triangle
// only borrows a *Mesh; the mesh outlives every triangle that references it
// for the scene's lifetime.
type Mesh struct {
	P  []core.Vec3 // positions
	N  []core.Vec3 // optional per-vertex normals, len 0 or len(P)
	UV []core.Vec2 // optional per-vertex UVs, len 0 or len(P)
}

// Triangle references three vertices of a Mesh by index (Möller–Trumbore
// intersection, per-vertex-normal shading frame distinct from the
// geometric one when the mesh carries normals — spec.md §4.2).
type Triangle struct {
	Mesh       *Mesh
	I0, I1, I2 int
}

func NewTriangle(mesh *Mesh, i0, i1, i2 int) *Triangle {
	return &Triangle{Mesh: mesh, I0: i0, I1: i1, I2: i2}
}

func (t *Triangle) verts() (p0, p1, p2 core.Vec3) {
	return t.Mesh.P[t.I0], t.Mesh.P[t.I1], t.Mesh.P[t.I2]
}

func (t *Triangle) Hit(ray core.Ray) (Hit, bool) {
	p0, p1, p2 := t.verts()
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	pvec := ray.Direction.Cross(e2)
	det := e1.Dot(pvec)
	if math.Abs(det) < 1e-12 {
		return Hit{}, false // collinear vertices or a grazing ray: no hit
	}
	invDet := 1 / det
	tvec := ray.Origin.Sub(p0)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return Hit{}, false
	}
	qvec := tvec.Cross(e1)
	v := ray.Direction.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return Hit{}, false
	}
	tt := e2.Dot(qvec) * invDet
	if tt < ray.TMin || tt > ray.TMax {
		return Hit{}, false
	}

	geomN := e1.Cross(e2).Normalize()
	w := 1 - u - v
	p := ray.At(tt)

	nShading := geomN
	dpduShading, dpdvShading := e1, e2
	if len(t.Mesh.N) > 0 {
		n0, n1, n2 := t.Mesh.N[t.I0], t.Mesh.N[t.I1], t.Mesh.N[t.I2]
		ns := n0.Mul(w).Add(n1.Mul(u)).Add(n2.Mul(v)).Normalize()
		if !ns.IsZero() {
			nShading = ns
			// Reconstruct shading tangents from the geometric dpdu by
			// Gram-Schmidt against the interpolated shading normal, per
			// spec.md §4.2 ("shading tangents are reconstructed from the
			// geometric dpdu and the interpolated normal by cross products").
			dpduShading = nShading.Cross(e1.Cross(nShading))
			if dpduShading.IsZero() {
				dpduShading = e1
			}
			dpdvShading = nShading.Cross(dpduShading)
		}
	}

	uv := core.NewVec2(u, v)
	if len(t.Mesh.UV) > 0 {
		uv0, uv1, uv2 := t.Mesh.UV[t.I0], t.Mesh.UV[t.I1], t.Mesh.UV[t.I2]
		uv = uv0.Mul(w).Add(uv1.Mul(u)).Add(uv2.Mul(v))
	}

	eps := 1e-6 * math.Max(e1.Length(), e2.Length())
	return Hit{T: tt, Epsilon: eps, Geom: core.DiffGeom{
		P: p, Nn: geomN, UV: uv,
		DpDu: e1, DpDv: e2,
		NnShading: nShading, DpDuShading: dpduShading, DpDvShading: dpdvShading,
	}}, true
}

func (t *Triangle) HitP(ray core.Ray) bool { _, ok := t.Hit(ray); return ok }

func (t *Triangle) Bounds() core.Box {
	p0, p1, p2 := t.verts()
	return core.BoxFromPoints(p0, p1, p2)
}

func (t *Triangle) Area() float64 {
	p0, p1, p2 := t.verts()
	return 0.5 * p1.Sub(p0).Cross(p2.Sub(p0)).Length()
}

func (t *Triangle) SamplePoint(uv core.Vec2) PointSample {
	p0, p1, p2 := t.verts()
	u, v := uv.X, uv.Y
	if u+v > 1 {
		u, v = 1-u, 1-v
	}
	w := 1 - u - v
	p := p0.Mul(w).Add(p1.Mul(u)).Add(p2.Mul(v))
	n := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
	eps := 1e-6 * math.Max(p1.Sub(p0).Length(), p2.Sub(p0).Length())
	return PointSample{P: p, Nn: n, Epsilon: eps, PdfArea: 1 / t.Area()}
}

func (t *Triangle) SamplePointPivot(pivot core.Vec3, uv core.Vec2) DirectionSample {
	return SamplePointPivotDefault(t, pivot, uv)
}

func (t *Triangle) PdfPivot(pivot, p, nn core.Vec3) float64 {
	return PdfPivotDefault(t, pivot, p, nn)
}

// Triangulate builds one Triangle per face (3 indices each) referencing a
// shared Mesh, the usual way a builder turns a loaded/generated mesh into
// Shape primitives (spec.md §3 "Meshes ... are shared").
func Triangulate(mesh *Mesh, faceIndices []int) []*Triangle {
	if len(faceIndices)%3 != 0 {
		panic("shape: face index count must be a multiple of 3")
	}
	tris := make([]*Triangle, len(faceIndices)/3)
	for i := range tris {
		tris[i] = NewTriangle(mesh, faceIndices[i*3], faceIndices[i*3+1], faceIndices[i*3+2])
	}
	return tris
}
