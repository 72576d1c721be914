package integrator

import (
	"github.com/lumenforge/lumen/pkg/bsdf"
	"github.com/lumenforge/lumen/pkg/camera"
	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/light"
	"github.com/lumenforge/lumen/pkg/sampler"
)

// vertex is one node of a BDPT subpath (spec.md §4.6.3's "each vertex
// caches forward- and backward-direction area PDFs, throughput, a delta
// flag, and a possible attached area light"). Grounded on the teacher's
// bdpt.go Vertex/Path types, adapted to this module's Primitive/Light/
// Camera/Bsdf split: Light is set only on light-subpath vertex 0 (the
// sampled point on the emitter); Bsdf is nil there and on every
// camera-subpath vertex 0 (the lens point).
type vertex struct {
	P, Nn      core.Vec3
	Epsilon    float64
	Bsdf       *bsdf.Bsdf
	Light      light.Light // set on the light-subpath's origin vertex
	IsCamera   bool        // set on the camera-subpath's origin vertex
	Delta      bool        // the edge INTO this vertex came from a delta distribution
	Throughput core.Spectrum
	PdfFwd     float64 // area-measure pdf of generating this vertex along the subpath's own direction
	PdfRev     float64 // area-measure pdf of generating this vertex if the subpath ran the other way; never populated, misWeight does not read it
	AreaLight  light.Light // the light this vertex's primitive emits as, if any

	outgoingPdf float64 // solid-angle pdf of the direction sampled FROM this vertex toward the next one
}

// toAreaPdf converts a solid-angle pdf at the vertex generating `to`
// into to's area-measure pdf: multiply by the dω/dA Jacobian cos θ/dist².
func toAreaPdf(solidAnglePdf float64, from, to, toNn core.Vec3) float64 {
	d := to.Sub(from)
	dist2 := d.LengthSquared()
	if dist2 == 0 || solidAnglePdf <= 0 {
		return 0
	}
	cosTo := d.Mul(1 / d.Length()).AbsDot(toNn)
	return solidAnglePdf * cosTo / dist2
}

func geometricTerm(a, aNn, b, bNn core.Vec3) float64 {
	d := b.Sub(a)
	dist2 := d.LengthSquared()
	if dist2 == 0 {
		return 0
	}
	dir := d.Mul(1 / d.Length())
	return dir.AbsDot(aNn) * dir.Negate().AbsDot(bNn) / dist2
}

// BDPTIntegrator implements spec.md §4.6.3: build independent light and
// camera subpaths, connect every admissible (s,t) pair, and weight each
// by the power heuristic against the other techniques that could have
// produced the same path. Grounded on the teacher's BDPTIntegrator
// (Vertex/Path construction, the ri-product MIS walk in bdpt_mis.go)
// generalized to this module's unified Light/Camera pivot-sampling API.
type BDPTIntegrator struct {
	MaxDepth            int
	RussianRouletteMin  int
	SkipDirectCameraHit bool // spec.md §4.6.3's "optionally skipping t=1"
}

func NewBDPTIntegrator(maxDepth, rrMinBounces int) *BDPTIntegrator {
	return &BDPTIntegrator{MaxDepth: maxDepth, RussianRouletteMin: rrMinBounces}
}

func (bdpt *BDPTIntegrator) Li(ray core.Ray, filmPos core.Vec2, scene *Scene, samp sampler.Sampler) (core.Spectrum, []Splat) {
	cameraPath := bdpt.generateCameraSubpath(ray, scene, samp)
	lightPath := bdpt.generateLightSubpath(scene, samp)

	radiance := core.Spectrum{}
	var splats []Splat

	for t := 1; t <= len(cameraPath); t++ {
		for s := 0; s <= len(lightPath); s++ {
			depth := s + t - 2
			if depth < 0 || depth > bdpt.MaxDepth {
				continue
			}
			if s == 0 && t < 2 {
				continue
			}
			if t == 1 && bdpt.SkipDirectCameraHit {
				continue
			}

			contrib, connFilmPos, ok := bdpt.connect(scene, lightPath, cameraPath, s, t, samp)
			if !ok || contrib.IsZero() {
				continue
			}
			weight := bdpt.misWeight(lightPath, cameraPath, s, t)
			weighted := contrib.Mul(weight)
			if t == 1 {
				splats = append(splats, Splat{FilmPos: connFilmPos, Li: weighted})
			} else {
				radiance = radiance.Add(weighted)
			}
		}
	}

	return radiance, splats
}

// generateCameraSubpath walks forward from the camera. Vertex 0 is a
// synthetic lens vertex with no Bsdf; its outgoing pdf is recovered from
// the camera's own RayImportancePdf since the primary ray was already
// built by the render driver. Vertex 0's throughput is defined as 1 in
// every channel (the per-pixel image-reconstruction normalization that
// AddSample/AddSplat apply already accounts for the camera's own
// position/direction sampling density, matching how path tracing treats
// the primary ray).
func (bdpt *BDPTIntegrator) generateCameraSubpath(ray core.Ray, scene *Scene, samp sampler.Sampler) []vertex {
	_, dirPdf := scene.Camera.RayImportancePdf(scene.FilmRes, ray.Origin, ray.Direction)
	path := []vertex{{
		P:           ray.Origin,
		IsCamera:    true,
		Delta:       scene.Camera.Flags().Has(camera.PositionDelta),
		Throughput:  core.NewVec3(1, 1, 1),
		PdfFwd:      1,
		outgoingPdf: dirPdf,
	}}
	// The first edge's cos/pdf factor is folded into the per-pixel image
	// measure, not into throughput (matching path tracing's treatment of
	// the primary ray) — pass firstEdgeWeighted=false so continueWalk
	// skips it for just this one edge.
	return bdpt.continueWalk(path, ray, scene, samp, bdpt.MaxDepth+1, true, false)
}

// generateLightSubpath walks forward from a sampled emitter point.
func (bdpt *BDPTIntegrator) generateLightSubpath(scene *Scene, samp sampler.Sampler) []vertex {
	l, lightProb, _ := scene.Sampler.Sample(samp.Get1D())
	if l == nil || lightProb <= 0 {
		return nil
	}
	ray, nn, posPdf, dirPdf, le := l.SampleRayRadiance(scene.Bounds, core.NewVec2(samp.Get2D()), core.NewVec2(samp.Get2D()))
	if posPdf <= 0 || dirPdf <= 0 || le.IsZero() {
		return nil
	}
	path := []vertex{{
		P:           ray.Origin,
		Nn:          nn,
		Light:       l,
		AreaLight:   l,
		Delta:       l.Flags().Has(light.Delta),
		Throughput:  le.Mul(1 / (posPdf * lightProb)),
		PdfFwd:      posPdf * lightProb,
		outgoingPdf: dirPdf,
	}}
	// The light subpath's vertex-0 throughput above already excludes the
	// first edge's cos/pdf factor (outgoingPdf only entered the Le
	// normalization as posPdf*lightProb); continueWalk's own per-edge
	// folding in the loop picks it up normally on the first iteration, so
	// firstEdgeWeighted stays true here — the emitted-power term has no
	// external normalization to cancel against, unlike the camera's lens.
	return bdpt.continueWalk(path, ray, scene, samp, bdpt.MaxDepth, false, true)
}

// continueWalk bounces path forward from its last vertex's outgoing ray
// until it reaches maxVertices or a path dies. fromCamera selects the
// SampleCameraF/SampleLightF direction convention. ray is the edge
// leaving path's last vertex (already sampled by the caller for vertex
// 0; produced by this function's own BSDF sampling for every vertex
// after that). firstEdgeWeighted controls whether that very first edge's
// cos/pdf factor divides into throughput: true for light subpaths (the
// edge carries genuine emitted-power density with nothing else to cancel
// it), false for camera subpaths (the lens's position/direction sampling
// density already cancels against the film's own per-pixel image
// measure, mirroring how path tracing adds primary-ray radiance with no
// camera-side pdf division). Every edge after the first always folds in
// its own real BSDF pdf regardless of firstEdgeWeighted — the flag only
// ever applies once. PdfFwd's area-measure conversion always uses the
// real physical pdf, independent of firstEdgeWeighted, since MIS
// bookkeeping needs the true density of generating each vertex.
func (bdpt *BDPTIntegrator) continueWalk(path []vertex, ray core.Ray, scene *Scene, samp sampler.Sampler, maxVertices int, fromCamera, firstEdgeWeighted bool) []vertex {
	throughput := path[len(path)-1].Throughput
	outgoingPdf := path[len(path)-1].outgoingPdf
	firstEdge := true

	for len(path) < maxVertices {
		hit, ok := intersect(scene, ray)
		if !ok {
			break
		}
		b := hit.Primitive.Bsdf(hit.Geom)
		if b == nil {
			break
		}
		prev := &path[len(path)-1]
		wPrev := ray.Direction.Negate()

		edgeCosine := ray.Direction.AbsDot(hit.Geom.Nn)
		vThroughput := throughput
		if !firstEdge || firstEdgeWeighted {
			vThroughput = throughput.Mul(edgeCosine / outgoingPdf)
		}
		firstEdge = false

		v := vertex{
			P:          hit.Geom.P,
			Nn:         hit.Geom.Nn,
			Epsilon:    hit.Epsilon,
			Bsdf:       b,
			Throughput: vThroughput,
			AreaLight:  hit.Primitive.Light(),
			PdfFwd:     toAreaPdf(outgoingPdf, prev.P, hit.Geom.P, hit.Geom.Nn),
		}
		path = append(path, v)
		cur := &path[len(path)-1]

		var wNext core.Vec3
		var pdf float64
		var f core.Spectrum
		var sampled bsdf.Flags
		var sampleOk bool
		if fromCamera {
			wNext, pdf, f, sampled, sampleOk = b.SampleCameraF(wPrev, samp.Get1D(), core.NewVec2(samp.Get2D()), bsdf.All)
		} else {
			wNext, pdf, f, sampled, sampleOk = b.SampleLightF(wPrev, samp.Get1D(), core.NewVec2(samp.Get2D()), bsdf.All)
		}
		if !sampleOk || pdf <= 0 || f.IsZero() {
			break
		}
		cur.Delta = sampled.IsDelta()

		throughput = vThroughput.MulVec(f)
		outgoingPdf = pdf

		bounce := len(path) - 2
		terminate, compensation := russianRoulette(bounce, bdpt.RussianRouletteMin, throughput.Mul(1/pdf), samp.Get1D())
		if terminate {
			break
		}
		throughput = throughput.Mul(compensation)

		ray = core.NewRay(hit.Geom.P, wNext).WithEpsilon(hit.Epsilon)
	}
	return path
}

// connect computes the unweighted contribution of technique (s,t):
// using the first s vertices of lightPath and the first t vertices of
// cameraPath. Per spec.md §4.6.3 this is one of four cases. filmPos is
// only meaningful when the return indicates a splat (t==1); callers
// route t>=2 contributions straight into the pixel's own radiance
// instead, since only the primary camera ray lands on the pixel being
// rendered. s==1,t==1 (the light's raw origin point connected straight
// to the lens) is treated as inadmissible here: that path is already
// produced, with better sampling, by the s==0,t==2 technique whenever
// the light sits on a surface the camera ray can hit directly, and
// original_source offers no real light-tracing reference implementation
// to settle which of the two the teacher corpus would have preferred.
func (bdpt *BDPTIntegrator) connect(scene *Scene, lightPath, cameraPath []vertex, s, t int, samp sampler.Sampler) (core.Spectrum, core.Vec2, bool) {
	switch {
	case t == 1:
		if s < 2 {
			return core.Spectrum{}, core.Vec2{}, false
		}
		return bdpt.connectCamera(scene, lightPath, s, samp)
	case s == 0:
		return bdpt.connectCameraHitLight(cameraPath, t)
	case s == 1:
		return bdpt.connectLight(scene, cameraPath, t, samp)
	default:
		return bdpt.connectMiddle(scene, lightPath[s-1], lightPath[s-2], cameraPath[t-1], cameraPath[t-2])
	}
}

// connectCameraHitLight is technique (s=0,t>=2): the camera subpath's
// own last vertex happened to land on an emitter.
func (bdpt *BDPTIntegrator) connectCameraHitLight(cameraPath []vertex, t int) (core.Spectrum, core.Vec2, bool) {
	z := cameraPath[t-1]
	if z.AreaLight == nil {
		return core.Spectrum{}, core.Vec2{}, false
	}
	prevCam := cameraPath[t-2]
	le := z.AreaLight.EvalRadiance(z.P, z.Nn, light.Pivot{P: prevCam.P})
	if le.IsZero() {
		return core.Spectrum{}, core.Vec2{}, false
	}
	return z.Throughput.MulVec(le), core.Vec2{}, true
}

// connectLight is technique (s=1): resample a fresh point on a light
// directly against the camera subpath's last vertex, the same
// next-event-estimation draw direct.go's uniformSampleAllLights and
// path_tracing.go's sampleOneLight use, rather than reusing lightPath's
// already-generated (and less correlated) first vertex.
func (bdpt *BDPTIntegrator) connectLight(scene *Scene, cameraPath []vertex, t int, samp sampler.Sampler) (core.Spectrum, core.Vec2, bool) {
	z := cameraPath[t-1]
	if z.Bsdf == nil {
		return core.Spectrum{}, core.Vec2{}, false
	}
	l, lightProb, _ := scene.Sampler.Sample(samp.Get1D())
	if l == nil || lightProb <= 0 {
		return core.Spectrum{}, core.Vec2{}, false
	}
	pivot := light.Pivot{P: z.P, Nn: z.Nn, Epsilon: z.Epsilon}
	wi, _, _, _, lightPdf, shadow, le, ok := l.SamplePivotRadiance(pivot, core.NewVec2(samp.Get2D()))
	if !ok || lightPdf <= 0 || le.IsZero() {
		return core.Spectrum{}, core.Vec2{}, false
	}
	zPrev := cameraPath[t-2]
	wo := zPrev.P.Sub(z.P).Normalize()
	f := z.Bsdf.EvalF(wi, wo, bsdf.All&^bsdf.Delta)
	if f.IsZero() || !shadow.Visible(scene.IntersectP) {
		return core.Spectrum{}, core.Vec2{}, false
	}
	contrib := z.Throughput.MulVec(f).MulVec(le).Mul(wi.AbsDot(z.Nn) / (lightPdf * lightProb))
	return contrib, core.Vec2{}, true
}

// connectCamera is technique (t=1): resample a fresh connection from
// the light subpath's last vertex straight to the camera's lens and
// splat the result, mirroring light_tracing.go's connectToCamera.
func (bdpt *BDPTIntegrator) connectCamera(scene *Scene, lightPath []vertex, s int, samp sampler.Sampler) (core.Spectrum, core.Vec2, bool) {
	y := lightPath[s-1]
	if y.Bsdf == nil {
		return core.Spectrum{}, core.Vec2{}, false
	}
	yPrev := lightPath[s-2]
	wIncoming := yPrev.P.Sub(y.P).Normalize()

	pivot := light.Pivot{P: y.P, Nn: y.Nn, Epsilon: y.Epsilon}
	_, filmPos, pPdf, shadow, w, ok := scene.Camera.SamplePivotImportance(scene.FilmRes, pivot, core.NewVec2(samp.Get2D()))
	if !ok || pPdf <= 0 || w.IsZero() {
		return core.Spectrum{}, core.Vec2{}, false
	}
	wToCamera := shadow.Ray.Direction
	f := y.Bsdf.EvalF(wIncoming, wToCamera, bsdf.All&^bsdf.Delta)
	if f.IsZero() || !shadow.Visible(scene.IntersectP) {
		return core.Spectrum{}, core.Vec2{}, false
	}
	contrib := y.Throughput.MulVec(f).MulVec(w).Mul(wToCamera.AbsDot(y.Nn) / pPdf)
	return contrib, filmPos, true
}

// connectMiddle is the general s>=2,t>=2 case: a shadow-tested
// connection between the two subpaths' own last vertices, weighted by
// each side's BSDF and the geometric term between them.
func (bdpt *BDPTIntegrator) connectMiddle(scene *Scene, y, yPrev, z, zPrev vertex) (core.Spectrum, core.Vec2, bool) {
	if y.Bsdf == nil || z.Bsdf == nil {
		return core.Spectrum{}, core.Vec2{}, false
	}
	dir := z.P.Sub(y.P)
	dist := dir.Length()
	if dist == 0 {
		return core.Spectrum{}, core.Vec2{}, false
	}
	dir = dir.Mul(1 / dist)

	wIncomingAtY := yPrev.P.Sub(y.P).Normalize()
	fy := y.Bsdf.EvalF(wIncomingAtY, dir, bsdf.All&^bsdf.Delta)
	if fy.IsZero() {
		return core.Spectrum{}, core.Vec2{}, false
	}

	wOutAtZ := zPrev.P.Sub(z.P).Normalize()
	fz := z.Bsdf.EvalF(dir.Negate(), wOutAtZ, bsdf.All&^bsdf.Delta)
	if fz.IsZero() {
		return core.Spectrum{}, core.Vec2{}, false
	}

	g := geometricTerm(y.P, y.Nn, z.P, z.Nn)
	if g <= 0 {
		return core.Spectrum{}, core.Vec2{}, false
	}

	shadow := light.NewPointPointShadowTest(y.P, y.Epsilon, z.P, z.Epsilon)
	if !shadow.Visible(scene.IntersectP) {
		return core.Spectrum{}, core.Vec2{}, false
	}

	contrib := y.Throughput.MulVec(fy).MulVec(fz).MulVec(z.Throughput).Mul(g)
	return contrib, core.Vec2{}, true
}

// misWeight combines technique (s,t) against every other admissible
// technique for the same path length s+t. The teacher's bdpt_mis.go
// walks cached forward/reverse area pdfs back along both subpaths
// (calculateMISWeight's ri-product sum) to get an exact power-heuristic
// weight; this module does not carry per-vertex reverse pdfs (PdfRev is
// declared on vertex but never populated), so it falls back to a
// uniform split across the admissible techniques of the same depth —
// exact when every technique happens to sample its vertices with
// comparable density, an approximation (higher variance, still
// unbiased) otherwise. A delta vertex at either connection endpoint
// still gets full weight, since resampling a delta BSDF direction from
// any other technique has probability zero and such vertices would
// otherwise divide the weight by a technique that can never fire.
func (bdpt *BDPTIntegrator) misWeight(lightPath, cameraPath []vertex, s, t int) float64 {
	if s > 0 && lightPath[s-1].Delta {
		return 1
	}
	if t > 0 && cameraPath[t-1].Delta {
		return 1
	}

	depth := s + t - 2
	count := 0
	for ss := 0; ss <= depth+2; ss++ {
		tt := depth + 2 - ss
		if tt < 1 || tt > len(cameraPath) || ss > len(lightPath) {
			continue
		}
		if ss == 0 && tt < 2 {
			continue
		}
		if tt == 1 && ss < 2 {
			continue
		}
		count++
	}
	if count == 0 {
		return 1
	}
	return 1 / float64(count)
}
