package tracer

import (
	"errors"

	"github.com/achilleasa/skytrace/types"
)

var ErrOutOfBounds = errors.New("surface: pixel coordinates out of bounds")

// A 2D grid of float RGBA pixels stored in row-major order with (0, 0)
// being the top-left pixel.
type Surface struct {
	Width  uint32
	Height uint32
	Pix    []types.Vec4
}

// Allocate a new surface.
func NewSurface(width, height uint32) *Surface {
	return &Surface{
		Width:  width,
		Height: height,
		Pix:    make([]types.Vec4, int(width)*int(height)),
	}
}

// Get the pixel at (x, y).
func (s *Surface) At(x, y uint32) (types.Vec4, error) {
	if x >= s.Width || y >= s.Height {
		return types.Vec4{}, ErrOutOfBounds
	}
	return s.Pix[y*s.Width+x], nil
}

// Set the pixel at (x, y).
func (s *Surface) Set(x, y uint32, c types.Vec4) error {
	if x >= s.Width || y >= s.Height {
		return ErrOutOfBounds
	}
	s.Pix[y*s.Width+x] = c
	return nil
}

// Get the pixels of row y.
func (s *Surface) Row(y uint32) ([]types.Vec4, error) {
	if y >= s.Height {
		return nil, ErrOutOfBounds
	}
	return s.Pix[y*s.Width : (y+1)*s.Width], nil
}

// Reset all pixels to zero.
func (s *Surface) Clear() {
	for i := range s.Pix {
		s.Pix[i] = types.Vec4{}
	}
}
