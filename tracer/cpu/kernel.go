package cpu

import "github.com/achilleasa/skytrace/types"

// Debug output modes. When enabled, primary ray hits are visualized instead
// of running the bounce loop.
type DebugMode uint8

const (
	DebugOff DebugMode = iota
	DebugDepth
	DebugNormals
)

type KernelOptions struct {
	// Maximum number of bounces per pixel.
	MaxBounces uint32

	// Multiplier applied to sky samples.
	SkyExposure float32

	ShadowMode ShadowMode

	Debug DebugMode

	// Hit distance mapped to white in DebugDepth mode.
	DebugMaxDepth float32
}

func DefaultKernelOptions() KernelOptions {
	return KernelOptions{
		MaxBounces:    8,
		SkyExposure:   1.5,
		ShadowMode:    ShadowLiteral,
		DebugMaxDepth: 100,
	}
}

// Pixel offset that samples the pixel center.
var PixelCenter = types.XY(0.5, 0.5)

// Render a single pixel of a w x h frame. The offset selects the sampling
// position inside the pixel. Row 0 is the top row of the frame.
func RenderPixel(x, y, w, h uint32, offset types.Vec2, fr *Frame, opts KernelOptions) types.Vec4 {
	c, _ := renderPixel(x, y, w, h, offset, fr, opts)
	return c
}

// Render a pixel and report the number of bounce iterations executed.
func renderPixel(x, y, w, h uint32, offset types.Vec2, fr *Frame, opts KernelOptions) (types.Vec4, uint32) {
	uv := types.XY(
		(float32(x)+offset[0])/float32(w)*2-1,
		1-(float32(y)+offset[1])/float32(h)*2,
	)
	ray := MakeCameraRay(uv, fr.Pose.CameraToWorld, fr.Pose.InverseProjection)

	if opts.Debug != DebugOff {
		return debugPixel(ray, fr, opts), 1
	}

	var result types.Vec3
	var bounce uint32
	for bounce < opts.MaxBounces {
		bounce++
		hit := Trace(ray, fr.Scene)

		energy := ray.Energy
		var c types.Vec3
		c, ray = Shade(ray, hit, fr, opts)
		result = result.Add(energy.MulVec(c))

		if ray.Energy.IsZero() {
			break
		}
	}

	return result.Vec4(1), bounce
}

func debugPixel(ray Ray, fr *Frame, opts KernelOptions) types.Vec4 {
	hit := Trace(ray, fr.Scene)
	if !hit.Found() {
		return types.XYZW(0, 0, 0, 1)
	}

	switch opts.Debug {
	case DebugDepth:
		d := types.Saturate(hit.Distance / opts.DebugMaxDepth)
		return types.XYZW(d, d, d, 1)
	default:
		return hit.Normal.Mul(0.5).Add(types.Splat3(0.5)).Vec4(1)
	}
}
