// Package film implements the image reconstruction film: filtered
// sample accumulation, lock-free splat accumulation, tile merging, and
// conversion to a displayable image. Grounded on
// original_source/include/dort/film.hpp/.cpp, generalized from a fixed
// box filter to the full Filter family, and on the teacher's
// pkg/renderer/splat_queue.go for the splat/tile-merge split (there the
// teacher keeps splats in a side queue drained per tile; here every
// pixel carries its own lock-free splat accumulator instead, per the
// concurrency model's "atomic colour value updated with relaxed
// ordering" requirement).
package film

import (
	"image"
	"math"
	"sync"
	"sync/atomic"

	"github.com/lumenforge/lumen/pkg/core"
)

type pixel struct {
	colorSum  core.Spectrum
	weightSum float64
}

// atomicSpectrum accumulates a colour from many goroutines without a
// lock: each channel is a CAS-retry float add over its bit pattern.
type atomicSpectrum struct {
	r, g, b atomic.Uint64
}

func addAtomicFloat(a *atomic.Uint64, delta float64) {
	for {
		old := a.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if a.CompareAndSwap(old, next) {
			return
		}
	}
}

func (s *atomicSpectrum) add(c core.Spectrum) {
	addAtomicFloat(&s.r, c.X)
	addAtomicFloat(&s.g, c.Y)
	addAtomicFloat(&s.b, c.Z)
}

func (s *atomicSpectrum) load() core.Spectrum {
	return core.NewVec3(
		math.Float64frombits(s.r.Load()),
		math.Float64frombits(s.g.Load()),
		math.Float64frombits(s.b.Load()),
	)
}

// Film accumulates filtered camera-path samples and splatted
// light-path contributions over a fixed pixel grid.
type Film struct {
	XRes, YRes int
	Filter     Filter

	// SplatScale is 1/N_iterations once the iteration count is known;
	// integrators that never splat leave it zero.
	SplatScale float64

	pixels []pixel         // color_sum/weight_sum, mutex-guarded on merge
	splats []atomicSpectrum // lock-free, relaxed-ordering add-splat target
	mutex  sync.Mutex
}

// New creates a film of the given pixel resolution.
func New(xRes, yRes int, filter Filter) *Film {
	return &Film{
		XRes:   xRes,
		YRes:   yRes,
		Filter: filter,
		pixels: make([]pixel, xRes*yRes),
		splats: make([]atomicSpectrum, xRes*yRes),
	}
}

func (f *Film) index(x, y int) int { return y*f.XRes + x }

// sampleRect returns the inclusive rectangle of pixels whose centres
// (x+0.5, y+0.5) lie within the filter's radius of filmPos, clamped to
// the film bounds.
func (f *Film) sampleRect(filmPos core.Vec2) image.Rectangle {
	radius := f.Filter.Radius()
	x0 := int(math.Ceil(filmPos.X - 0.5 - radius.X))
	x1 := int(math.Floor(filmPos.X - 0.5 + radius.X))
	y0 := int(math.Ceil(filmPos.Y - 0.5 - radius.Y))
	y1 := int(math.Floor(filmPos.Y - 0.5 + radius.Y))
	return image.Rect(x0, y0, x1+1, y1+1).Intersect(image.Rect(0, 0, f.XRes, f.YRes))
}

// AddSample filters radiance into every pixel within the filter radius
// of filmPos. Never called concurrently for the same pixel: tiles are
// disjoint and this runs against a tile-local Film or, for a
// single-threaded render, the global one directly.
func (f *Film) AddSample(filmPos core.Vec2, radiance core.Spectrum) {
	rect := f.sampleRect(filmPos)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			pc := core.NewVec2(float64(x)+0.5, float64(y)+0.5)
			w := f.Filter.Evaluate(core.NewVec2(pc.X-filmPos.X, pc.Y-filmPos.Y))
			if w == 0 {
				continue
			}
			p := &f.pixels[f.index(x, y)]
			p.colorSum = p.colorSum.Add(radiance.Mul(w))
			p.weightSum += w
		}
	}
}

// AddSplat distributes radiance across the filter's pixel rectangle
// with weights renormalised to sum to 1 over the rectangle, so a splat
// contributes exactly one sample's worth of radiance regardless of how
// many pixels it spans. Lock-free: safe from many goroutines splatting
// onto overlapping rectangles concurrently.
func (f *Film) AddSplat(filmPos core.Vec2, radiance core.Spectrum) {
	rect := f.sampleRect(filmPos)
	if rect.Empty() {
		return
	}
	weights := make([]float64, 0, rect.Dx()*rect.Dy())
	total := 0.0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			pc := core.NewVec2(float64(x)+0.5, float64(y)+0.5)
			w := f.Filter.Evaluate(core.NewVec2(pc.X-filmPos.X, pc.Y-filmPos.Y))
			weights = append(weights, w)
			total += w
		}
	}
	if total == 0 {
		return
	}
	i := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			w := weights[i]
			i++
			if w == 0 {
				continue
			}
			f.splats[f.index(x, y)].add(radiance.Mul(w / total))
		}
	}
}

// AddTile merges a tile-local film's filtered accumulators into f at
// the given pixel offset, under f's mutex. Splats are not merged here:
// tile films never receive splats, only the global film does.
func (f *Film) AddTile(origin image.Point, tile *Film) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	for ty := 0; ty < tile.YRes; ty++ {
		for tx := 0; tx < tile.XRes; tx++ {
			gx, gy := origin.X+tx, origin.Y+ty
			if gx < 0 || gx >= f.XRes || gy < 0 || gy >= f.YRes {
				continue
			}
			src := tile.pixels[tile.index(tx, ty)]
			if src.weightSum == 0 && src.colorSum == (core.Spectrum{}) {
				continue
			}
			dst := &f.pixels[f.index(gx, gy)]
			dst.colorSum = dst.colorSum.Add(src.colorSum)
			dst.weightSum += src.weightSum
		}
	}
}

// Pixel returns the final radiometric colour of pixel (x, y):
// color_sum/weight_sum + splat_scale * splat_sum.
func (f *Film) Pixel(x, y int) core.Spectrum {
	p := f.pixels[f.index(x, y)]
	color := core.Vec3{}
	if p.weightSum != 0 {
		color = p.colorSum.Mul(1 / p.weightSum)
	}
	if f.SplatScale != 0 {
		color = color.Add(f.splats[f.index(x, y)].load().Mul(f.SplatScale))
	}
	return color
}
