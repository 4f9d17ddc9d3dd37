package renderer

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of samples accumulated per pixel. A value of 0 is treated as 1.
	SamplesPerPixel uint32

	// Exposure for tonemapping.
	Exposure float32

	// Seed for generating sub-pixel sample offsets.
	Seed int64
}
