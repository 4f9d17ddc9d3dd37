package cpu

import (
	"math"

	"github.com/achilleasa/skytrace/scene"
	"github.com/achilleasa/skytrace/types"
)

const (
	// Offset applied along the surface normal when spawning secondary rays.
	surfaceBias float32 = 0.001

	// Fraction of the diffuse term returned for shadow ray hits in ShadowLiteral mode.
	shadowAttenuation float32 = 0.2
)

// Controls how shadow ray results affect the diffuse term.
type ShadowMode uint8

const (
	// An occluded shadow ray returns 20% of the diffuse term while an
	// unoccluded one returns the full diffuse term.
	ShadowLiteral ShadowMode = iota

	// Occluded points receive no direct light.
	ShadowCorrected
)

func (m ShadowMode) String() string {
	switch m {
	case ShadowLiteral:
		return "literal"
	case ShadowCorrected:
		return "corrected"
	}
	return "unknown"
}

// The SkySampler interface is implemented by environment images that can be
// sampled with equirectangular (u, v) coordinates.
type SkySampler interface {
	Sample(u, v float32) types.Vec3
}

// The read-only state shared by all pixels of a dispatch.
type Frame struct {
	Scene *scene.Scene
	Pose  scene.CameraPose

	// An optional sky image. When nil the scene sky color is used.
	Sky SkySampler
}

// Shade a hit and generate the ray for the next bounce. The returned color
// still needs to be weighted by the energy of the incoming ray.
func Shade(ray Ray, hit Hit, fr *Frame, opts KernelOptions) (types.Vec3, Ray) {
	if !hit.Found() {
		// Terminate the path and sample the environment
		next := ray
		next.Energy = types.Vec3{}
		return sampleSky(ray.Direction, fr).Mul(opts.SkyExposure), next
	}

	next := Ray{
		Origin:    hit.Position.Add(hit.Normal.Mul(surfaceBias)),
		Direction: ray.Direction.Reflect(hit.Normal),
		Energy:    ray.Energy.MulVec(hit.Specular),
	}

	light := fr.Scene.Light
	diffuse := hit.Albedo.Mul(types.Saturate(-hit.Normal.Dot(light.Direction)) * light.Intensity)

	shadowRay := NewRay(next.Origin, light.Direction.Mul(-1))
	occluded := Trace(shadowRay, fr.Scene).Found()

	switch {
	case !occluded:
		return diffuse, next
	case opts.ShadowMode == ShadowCorrected:
		return types.Vec3{}, next
	default:
		return diffuse.Mul(shadowAttenuation), next
	}
}

// Map a direction to equirectangular coordinates and sample the sky.
func sampleSky(dir types.Vec3, fr *Frame) types.Vec3 {
	if fr.Sky == nil {
		return fr.Scene.SkyColor
	}

	theta := float32(math.Acos(float64(dir[1]))) / -math.Pi
	phi := float32(math.Atan2(float64(dir[0]), float64(-dir[2]))) / -math.Pi * 0.5
	return fr.Sky.Sample(phi, theta)
}
