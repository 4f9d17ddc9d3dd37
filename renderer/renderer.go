package renderer

import (
	"context"
	"image"

	"github.com/achilleasa/skytrace/asset/texture"
	"github.com/achilleasa/skytrace/scene"
)

type Renderer interface {
	// Accumulate the configured number of samples per pixel and return
	// the tonemapped frame.
	Render(ctx context.Context) (*image.RGBA, error)

	// Replace the camera. Resets accumulated samples.
	UpdateCamera(cam *scene.Camera)

	// Replace the scene. Resets accumulated samples.
	UpdateScene(sc *scene.Scene)

	// Replace the sky texture or pass nil to use the scene sky color.
	// Resets accumulated samples.
	SetSky(sky *texture.Texture)

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
