// Package render implements spec.md §4.7's render driver: tile
// partitioning, per-job sampler splits, the iteration loop, cooperative
// progress reporting and cancellation. Grounded on the teacher's
// pkg/renderer/{progressive,tile_renderer,worker_pool}.go for the overall
// tile/pass/worker-pool shape, rebuilt against this module's
// pkg/integrator.Scene/Integrator and pkg/workpool fork-join pool instead
// of the teacher's channel-based WorkerPool and adaptive per-pixel
// sampling loop.
package render

import (
	"image"
	"math"

	"github.com/lumenforge/lumen/pkg/film"
)

// Tile is one rectangular region of the image scheduled as a single
// fork-join job, sized so the per-job work amortises pool scheduling
// (spec.md §4.7's "target ≈16 tiles per thread").
type Tile struct {
	Bounds image.Rectangle // pixel rectangle this tile owns in the global film
}

// partitionTiles splits a width×height image into a grid of roughly
// tileSize×tileSize tiles, matching the teacher's NewTileGrid ceiling-
// division layout.
func partitionTiles(width, height, tileSize int) []Tile {
	if tileSize <= 0 {
		tileSize = 64
	}
	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize

	tiles := make([]Tile, 0, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0 := tx * tileSize
			y0 := ty * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)
			tiles = append(tiles, Tile{Bounds: image.Rect(x0, y0, x1, y1)})
		}
	}
	return tiles
}

// idealTileSize picks a tile size so the grid holds roughly
// workers*tilesPerWorker tiles (spec.md §4.7's "≈16 tiles per thread"),
// never smaller than minTileSize.
func idealTileSize(width, height, workers, tilesPerWorker, minTileSize int) int {
	if workers < 1 {
		workers = 1
	}
	targetTiles := workers * tilesPerWorker
	if targetTiles < 1 {
		targetTiles = 1
	}
	area := float64(width * height)
	size := int(math.Sqrt(area / float64(targetTiles)))
	if size < minTileSize {
		size = minTileSize
	}
	return size
}

// marginedBounds expands bounds by the filter's pixel radius (rounded
// up), clamped to [0,width)×[0,height), so a tile-local film can
// correctly spread filtered samples that land near the tile edge into
// neighbouring pixels still owned by this tile's margin (spec.md §4.7:
// "a local tile film sized to include the filter margin").
func marginedBounds(bounds image.Rectangle, filter film.Filter, width, height int) image.Rectangle {
	radius := filter.Radius()
	mx := int(math.Ceil(radius.X))
	my := int(math.Ceil(radius.Y))
	expanded := image.Rect(bounds.Min.X-mx, bounds.Min.Y-my, bounds.Max.X+mx, bounds.Max.Y+my)
	return expanded.Intersect(image.Rect(0, 0, width, height))
}
