package render

import (
	"fmt"

	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/film"
	"github.com/lumenforge/lumen/pkg/integrator"
	"github.com/lumenforge/lumen/pkg/sampler"
	"github.com/lumenforge/lumen/pkg/workpool"
)

// IterationPreparer is implemented by integrators that need a light-phase
// pass before each iteration's camera-phase tiles run (spec.md §4.6.4's
// VCM: photon tracing and radius/eta bookkeeping per iteration).
// Integrators that don't need this (path tracing, BDPT, light tracing,
// direct lighting) simply don't implement it; Render type-asserts for it.
type IterationPreparer interface {
	PrepareIteration(iterIdx int, scene *integrator.Scene, pathCount int, pool *workpool.Pool, samplers []sampler.Sampler) error
}

// SplatDrainer is implemented by integrators that accumulate splats
// outside of their own Li return value (VCM's light-phase camera
// connections, produced during PrepareIteration rather than per-pixel
// Li calls).
type SplatDrainer interface {
	DrainSplats() []integrator.Splat
}

// Request configures one render: the scene and integrator to run, how
// many full-image iterations to take, and the concurrency/tiling
// parameters spec.md §4.7/§4.8 describe.
type Request struct {
	Scene      *integrator.Scene
	Integrator integrator.Integrator
	Filter     film.Filter
	Iterations int
	Seed       uint64

	// TileSize overrides the automatic tile sizing (spec.md §4.7's
	// "≈16 tiles per thread" target); 0 picks it automatically.
	TileSize int
	Pool     *workpool.Pool
	Logger   core.Logger
}

// tilesPerWorker is the spec.md §4.7 target tile count per thread.
const tilesPerWorker = 16

// minTileSize bounds how small automatic tile sizing can go, so a huge
// thread count never shreds the image into single-pixel jobs.
const minTileSize = 16

// Render runs req.Iterations full-image passes, each partitioned into
// tiles and fork-joined across req.Pool, merging every tile's local film
// into a shared global film under a mutex (spec.md §4.7). After each
// iteration's tiles complete, the per-iteration hook (IterationPreparer/
// SplatDrainer, when the integrator implements them) runs before the
// next iteration starts. progress is polled at tile-dispatch and at the
// start of every pixel row; on cancellation the current iteration's
// still-running tiles finish (or drop their partial work, per row) and
// Render returns the film assembled so far.
func Render(req Request, progress *Progress) (*film.Film, Stats, error) {
	logger := req.Logger
	if logger == nil {
		logger = core.NopLogger{}
	}
	pool := req.Pool
	if pool == nil {
		pool = workpool.New(0)
	}

	width := int(req.Scene.FilmRes.X)
	height := int(req.Scene.FilmRes.Y)
	global := film.New(width, height, req.Filter)

	tileSize := req.TileSize
	if tileSize <= 0 {
		tileSize = idealTileSize(width, height, pool.Concurrency(), tilesPerWorker, minTileSize)
	}
	tiles := partitionTiles(width, height, tileSize)

	preparer, hasPreparer := req.Integrator.(IterationPreparer)
	drainer, hasDrainer := req.Integrator.(SplatDrainer)

	baseSampler := sampler.NewStreamSampler(req.Seed, req.Iterations)
	stats := Stats{TotalPixels: width * height, TotalIterations: req.Iterations}

	// Each iteration claims tileCount+poolConcurrency distinct job-index
	// slots: one per camera-phase tile plus one per light-phase worker
	// sampler PrepareIteration hands out, so no two jobs across the whole
	// render ever split from the same index (spec.md §5 determinism).
	slotsPerIteration := len(tiles) + pool.Concurrency()

	for iter := 0; iter < req.Iterations; iter++ {
		if progress.Cancelled() {
			stats.Cancelled = true
			break
		}

		if hasPreparer {
			samplers := make([]sampler.Sampler, pool.Concurrency())
			for i := range samplers {
				samplers[i] = baseSampler.Split(iter*slotsPerIteration + len(tiles) + i)
			}
			if err := preparer.PrepareIteration(iter, req.Scene, width*height, pool, samplers); err != nil {
				return nil, stats, fmt.Errorf("render %s: prepare iteration %d: %w", progress.RenderID, iter, err)
			}
		}

		err := pool.ForkJoin(len(tiles), func(i int) error {
			if progress.Cancelled() {
				return nil
			}
			samp := baseSampler.Split(iter*slotsPerIteration + i)
			renderTile(req, global, tiles[i], samp, iter, progress)
			return nil
		})
		if err != nil {
			return nil, stats, fmt.Errorf("render %s: iteration %d: %w", progress.RenderID, iter, err)
		}

		if hasDrainer {
			for _, s := range drainer.DrainSplats() {
				global.AddSplat(s.FilmPos, s.Li)
			}
		}

		// Every integrator's Li can return splats (renderTile routes them
		// straight onto global, not only VCM's drainer), so SplatScale must
		// track the completed iteration count unconditionally: leaving it
		// at its zero value whenever hasDrainer is false silently zeroes
		// out light tracing's and BDPT's entire image (spec.md §4.6.2/
		// §4.6.3 both rely on splats for some or all of their contribution).
		global.SplatScale = 1 / float64(iter+1)

		progress.iterationsDone.Add(1)
		logger.Printf("render %s: iteration %d/%d complete\n", progress.RenderID, iter+1, req.Iterations)
	}

	stats.IterationsCompleted = progress.IterationsDone()
	return global, stats, nil
}

// renderTile renders tile's pixel rectangle into a local, margin-padded
// film and merges it into global under global's mutex (spec.md §4.7).
// Splats an integrator's Li produces along the way go straight onto the
// global film's lock-free splat accumulators, since splats are never
// tile-local (film.Film.AddTile never merges them).
func renderTile(req Request, global *film.Film, tile Tile, samp sampler.Sampler, iter int, progress *Progress) {
	width := int(req.Scene.FilmRes.X)
	height := int(req.Scene.FilmRes.Y)
	margined := marginedBounds(tile.Bounds, req.Filter, width, height)
	if margined.Empty() {
		return
	}
	tileFilm := film.New(margined.Dx(), margined.Dy(), req.Filter)
	origin := margined.Min

	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		if progress.Cancelled() {
			return // drop this tile's partial work, per spec.md §5
		}
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			samp.StartPixel(x, y)
			samp.StartPixelSample(iter)

			jx, jy := samp.Get2D()
			filmPos := core.NewVec2(float64(x)+jx, float64(y)+jy)

			ray, _, _, _ := req.Scene.Camera.SampleRayImportance(req.Scene.FilmRes, filmPos, core.NewVec2(samp.Get2D()))
			li, splats := req.Integrator.Li(ray, filmPos, req.Scene, samp)

			localPos := core.NewVec2(filmPos.X-float64(origin.X), filmPos.Y-float64(origin.Y))
			tileFilm.AddSample(localPos, li)

			for _, s := range splats {
				global.AddSplat(s.FilmPos, s.Li)
			}
		}
	}

	global.AddTile(origin, tileFilm)
}
