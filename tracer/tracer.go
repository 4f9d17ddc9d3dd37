package tracer

import "time"

type ChangeType uint8

const (
	// Replace the scene. Payload: *scene.Scene
	SetScene ChangeType = iota

	// Replace the sky texture. Payload: *texture.Texture (nil to fall back to the scene sky color)
	SetSky

	// Update the camera pose. Payload: scene.CameraPose
	UpdateCamera
)

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Frame dimensions.
	FrameW uint32
	FrameH uint32

	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// A random seed value for jittering the sample position within each pixel.
	Seed uint32

	// Number of samples already accumulated for the current camera position.
	// A value of zero resets the accumulator.
	SampleIndex uint32

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block height
	BlockH uint32

	// The time for rendering the last block.
	RenderTime time.Duration

	// The time spent applying pending changes before rendering the last block.
	UpdateTime time.Duration
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Shutdown and cleanup tracer.
	Close()

	// Get the tracers computation speed estimate compared to a
	// baseline single-core implementation.
	SpeedEstimate() float32

	// Setup the tracer. Tracers accumulate their samples into the supplied surface.
	Setup(accumBuffer *Surface) error

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Append a change to the tracer's update buffer. Pending changes are
	// applied before the next block is rendered.
	AppendChange(ChangeType, interface{})

	// Retrieve last frame statistics.
	Stats() *Stats
}
