package convergence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenforge/lumen/pkg/core"
	"github.com/lumenforge/lumen/pkg/film"
)

func uniformFilm(xRes, yRes int, color core.Spectrum) *film.Film {
	f := film.New(xRes, yRes, film.NewBoxFilter(core.NewVec2(0.5, 0.5)))
	for y := 0; y < yRes; y++ {
		for x := 0; x < xRes; x++ {
			f.AddSample(core.NewVec2(float64(x)+0.5, float64(y)+0.5), color)
		}
	}
	return f
}

func TestIdenticalImagesAlwaysPass(t *testing.T) {
	ref := uniformFilm(32, 32, core.NewVec3(0.5, 0.5, 0.5))
	tested := uniformFilm(32, 32, core.NewVec3(0.5, 0.5, 0.5))

	for _, p := range []float64{0.5, 0.1, 0.001, 0.99} {
		err := Test(nil, ref, tested, 4, 0.05, 0.01, p)
		assert.Empty(t, err, "identical images must never fail, p=%v", p)
	}
}

func TestGrossMismatchFails(t *testing.T) {
	ref := uniformFilm(32, 32, core.NewVec3(0.5, 0.5, 0.5))
	tested := uniformFilm(32, 32, core.NewVec3(5.0, 5.0, 5.0))

	err := Test(nil, ref, tested, 4, 0.05, 0.01, 0.05)
	assert.NotEmpty(t, err)
	assert.Contains(t, err, "tile")
}

func TestSmallDeviationWithinVariationPasses(t *testing.T) {
	ref := uniformFilm(64, 64, core.NewVec3(1, 1, 1))
	tested := uniformFilm(64, 64, core.NewVec3(1.001, 1.001, 1.001))

	err := Test(nil, ref, tested, 8, 0.2, 0.05, 0.05)
	assert.Empty(t, err)
}

func TestMismatchedResolutionsPanics(t *testing.T) {
	ref := uniformFilm(16, 16, core.NewVec3(1, 1, 1))
	tested := uniformFilm(8, 8, core.NewVec3(1, 1, 1))

	assert.Panics(t, func() {
		Test(nil, ref, tested, 4, 0.05, 0.01, 0.05)
	})
}

func TestLocalizedDifferenceIsReported(t *testing.T) {
	ref := uniformFilm(32, 32, core.NewVec3(0.2, 0.2, 0.2))
	tested := film.New(32, 32, film.NewBoxFilter(core.NewVec2(0.5, 0.5)))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			c := core.NewVec3(0.2, 0.2, 0.2)
			if x >= 16 && y >= 16 {
				c = core.NewVec3(9, 9, 9)
			}
			tested.AddSample(core.NewVec2(float64(x)+0.5, float64(y)+0.5), c)
		}
	}

	err := Test(nil, ref, tested, 4, 0.05, 0.01, 0.05)
	assert.NotEmpty(t, err)
}
