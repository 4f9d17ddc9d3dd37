package texture

type Format uint32

// Source image formats. Texel data is always expanded to float RGBA.
const (
	Luminance8 Format = iota
	Luminance32F
	Rgba8
	Rgba32F
)

func (f Format) String() string {
	switch f {
	case Luminance8:
		return "Luminance8"
	case Luminance32F:
		return "Luminance32F"
	case Rgba8:
		return "Rgba8"
	case Rgba32F:
		return "Rgba32F"
	}
	return "unknown"
}
