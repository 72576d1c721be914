package film

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
)

// Image tonemaps the film's linear radiance into an 8-bit sRGB image,
// grounded on the teacher's pkg/renderer/raytracer.go vec3ToColor (clamp
// then gamma-correct). go-colorful's LinearRgb applies the actual sRGB
// transfer function in place of the teacher's flat gamma=2.0 approximation.
func (f *Film) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.XRes, f.YRes))
	for y := 0; y < f.YRes; y++ {
		for x := 0; x < f.XRes; x++ {
			c := f.Pixel(x, y)
			col := colorful.LinearRgb(clamp01(c.X), clamp01(c.Y), clamp01(c.Z)).Clamped()
			r, g, b, _ := col.RGBA()
			img.Set(x, y, color.RGBA{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: 255,
			})
		}
	}
	return img
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SavePNG tonemaps and writes the film to filename, creating parent
// directories as needed.
func (f *Film) SavePNG(filename string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, f.Image())
}
