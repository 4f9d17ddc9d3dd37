package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/achilleasa/skytrace/tracer"
	"github.com/achilleasa/skytrace/types"
)

const gamma = 2.2

// Convert an accumulated HDR surface to an 8-bit image using Reinhard
// tonemapping followed by gamma correction.
func Tonemap(s *tracer.Surface, exposure float32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(s.Width), int(s.Height)))
	for y := uint32(0); y < s.Height; y++ {
		row, _ := s.Row(y)
		for x, px := range row {
			img.SetRGBA(x, int(y), color.RGBA{
				R: tonemapChannel(px[0], exposure),
				G: tonemapChannel(px[1], exposure),
				B: tonemapChannel(px[2], exposure),
				A: 255,
			})
		}
	}
	return img
}

func tonemapChannel(c, exposure float32) uint8 {
	v := c * exposure
	switch {
	case math.IsInf(float64(v), 1):
		return 255
	case !(v > 0):
		return 0
	}

	v = v / (1 + v)
	v = float32(math.Pow(float64(types.Saturate(v)), 1/gamma))
	return uint8(types.Saturate(v)*255 + 0.5)
}
