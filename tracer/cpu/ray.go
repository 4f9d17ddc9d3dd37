package cpu

import (
	"math"

	"github.com/achilleasa/skytrace/types"
)

// A ray travelling through the scene. Energy is the multiplicative radiance
// weight carried by the ray; it starts at (1, 1, 1) and only ever shrinks.
type Ray struct {
	Origin    types.Vec3
	Direction types.Vec3
	Energy    types.Vec3
}

// Create a ray with full energy.
func NewRay(origin, dir types.Vec3) Ray {
	return Ray{
		Origin:    origin,
		Direction: dir,
		Energy:    types.Splat3(1),
	}
}

// The closest intersection found for a ray. Distance is +Inf when no
// surface was hit.
type Hit struct {
	Distance float32
	Position types.Vec3
	Normal   types.Vec3
	Albedo   types.Vec3
	Specular types.Vec3
}

// Create a hit record with no intersection.
func NoHit() Hit {
	return Hit{Distance: float32(math.Inf(1))}
}

// Returns true if the hit record describes an intersection.
func (h Hit) Found() bool {
	return !math.IsInf(float64(h.Distance), 1)
}

// Generate a world-space ray for a pixel. The pixel position is expressed in
// normalized device coordinates in the [-1, 1] range.
func MakeCameraRay(pixelUV types.Vec2, cameraToWorld, inverseProjection types.Mat4) Ray {
	origin := cameraToWorld.MulPoint(types.Vec3{})

	// Unproject the pixel to view space and rotate it into world space
	dir := inverseProjection.Mul4x1(pixelUV.Vec4(0, 1)).Vec3()
	dir = cameraToWorld.MulDir(dir).Normalize()

	return NewRay(origin, dir)
}
