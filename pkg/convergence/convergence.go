// Package convergence implements the optional convergence-test
// observable (spec.md §6/§8.10): given a reference and a tested HDR
// image, decompose both into a pyramid of tiles — coarse tiles at depth
// 0 down to roughly minTileSize pixels at the deepest level — and run a
// per-tile normal-distribution test at each level, with a Bonferroni
// correction spread across every test in the pyramid so the overall
// false-positive rate stays at pValue regardless of how many tiles are
// actually tested.
//
// Grounded directly on original_source/src/dort/convergence_test.cpp —
// the teacher has no equivalent.
package convergence

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/film"
	"github.com/lumenforge/lumen/pkg/workpool"
)

// rect is an inclusive-exclusive pixel rectangle, [Min, Max).
type rect struct{ x0, y0, x1, y1 int }

func (r rect) width() int  { return r.x1 - r.x0 }
func (r rect) height() int { return r.y1 - r.y0 }

var standardNormal = distuv.Normal{Mu: 0, Sigma: 1}

// Test compares tested against reference and returns a diagnostic
// message describing the first (coarsest) tile whose mean colour
// deviates beyond what variation/bias predict, or "" if no tile fails.
//
// minTileSize bounds how deep the tile pyramid goes: depth stops
// increasing once tiles would shrink below it. variation and bias are
// fractions of the reference's mean colour defining the expected noise
// floor and an allowed systematic offset (e.g. from a biased
// integrator); variation is taken against the larger of the tile's and
// the whole image's mean, bias against the smaller. pValue is the overall false-positive rate tolerated
// across every tile at every depth combined; Bonferroni correction
// divides it down per individual test so running more, smaller tiles
// does not by itself make the test more likely to fail.
//
// Panics if reference and tested have different resolutions — a
// mismatched pair is a programmer error, not a result to report.
func Test(pool *workpool.Pool, reference, tested *film.Film, minTileSize int, variation, bias, pValue float64) string {
	if reference.XRes != tested.XRes || reference.YRes != tested.YRes {
		panic("convergence: reference and tested images have different resolutions")
	}
	resX, resY := reference.XRes, reference.YRes

	maxDepth := 0
	for min(resX, resY)>>(maxDepth+1) >= minTileSize {
		maxDepth++
	}

	testCount := float64(((int64(1)<<(2*maxDepth+2) - 1) / 3))
	testPValue := 1 - math.Pow(1-pValue, 1/testCount)
	invPhi := standardNormal.Quantile(testPValue * 0.5)

	refMean := computeMean(reference, rect{0, 0, resX, resY})

	testTile := func(tile rect) string {
		tileRefMean := computeMean(reference, tile)
		tileTestedMean := computeMean(tested, tile)
		meanDiff := tileTestedMean.Sub(tileRefMean).MaxComponent()

		stddevGlobal := refMean.Mul(variation).MaxComponent()
		stddevLocal := tileRefMean.Mul(variation).MaxComponent()
		stddev := math.Max(stddevGlobal, stddevLocal)

		biasGlobal := refMean.Mul(bias).MaxComponent()
		biasLocal := tileRefMean.Mul(bias).MaxComponent()
		tileBias := math.Min(biasGlobal, biasLocal)

		count := float64(tile.width() * tile.height())
		maxDiff := -stddev/math.Sqrt(count)*invPhi + tileBias

		if math.Abs(meanDiff) > maxDiff {
			return fmt.Sprintf("tile (%d,%d):(%d,%d) has diff %g, but threshold is %g",
				tile.x0, tile.y0, tile.x1, tile.y1, meanDiff, maxDiff)
		}
		return ""
	}

	testDepth := func(depth int) string {
		tileSize := min(resX, resY) >> depth
		tilesX := ceilDiv(resX, tileSize)
		tilesY := ceilDiv(resY, tileSize)
		for ty := 0; ty < tilesY; ty++ {
			for tx := 0; tx < tilesX; tx++ {
				tile := rect{
					x0: tx * tileSize, y0: ty * tileSize,
					x1: min((tx+1)*tileSize, resX), y1: min((ty+1)*tileSize, resY),
				}
				if err := testTile(tile); err != "" {
					return err
				}
			}
		}
		return ""
	}

	var mu sync.Mutex
	var errMsg string
	var errDepth atomic.Int64
	errDepth.Store(math.MaxInt64)

	if pool == nil {
		pool = workpool.New(0)
	}
	pool.ForkJoin(maxDepth+1, func(depth int) error {
		if errDepth.Load() < int64(depth) {
			return nil
		}
		local := testDepth(depth)
		if local == "" {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		if int64(depth) < errDepth.Load() {
			errMsg = local
			errDepth.Store(int64(depth))
		}
		return nil
	})

	return errMsg
}

func computeMean(f *film.Film, r rect) core.Spectrum {
	sum := core.Vec3{}
	count := 0
	for y := r.y0; y < r.y1; y++ {
		for x := r.x0; x < r.x1; x++ {
			sum = sum.Add(f.Pixel(x, y))
			count++
		}
	}
	if count == 0 {
		return core.Vec3{}
	}
	return sum.Mul(1 / float64(count))
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }
