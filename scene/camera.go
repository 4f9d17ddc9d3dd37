package scene

import (
	"fmt"
	"math"

	"github.com/achilleasa/skytrace/types"
)

// Maximum absolute camera pitch in degrees.
const maxPitch float32 = 89.0

type CameraDirection uint8

// Camera movement directions relative to the camera orientation.
const (
	Forward CameraDirection = iota
	Backward
	Left
	Right
	Up
	Down
)

// The per-frame camera data consumed by tracers.
type CameraPose struct {
	CameraToWorld     types.Mat4
	InverseProjection types.Mat4
}

// The camera type controls the scene camera. The camera looks down the -Z
// axis when both yaw and pitch are zero.
type Camera struct {
	Position types.Vec3

	// Orientation in degrees. Yaw rotates around the world Y axis and
	// pitch around the camera's local X axis.
	Yaw   float32
	Pitch float32

	// Vertical field of view in degrees.
	FOV float32

	Aspect float32
	Near   float32
	Far    float32
}

func NewCamera(fov float32) *Camera {
	return &Camera{
		Position: types.XYZ(0, 1, 5),
		FOV:      fov,
		Aspect:   1.0,
		Near:     0.3,
		Far:      1000,
	}
}

func (c *Camera) String() string {
	return fmt.Sprintf("pos: (%3.3f, %3.3f, %3.3f), yaw: %3.1f, pitch: %3.1f, fov: %3.1f",
		c.Position[0], c.Position[1], c.Position[2], c.Yaw, c.Pitch, c.FOV)
}

// Setup camera projection aspect ratio.
func (c *Camera) SetupProjection(aspect float32) {
	c.Aspect = aspect
}

// Get the camera orientation as a quaternion.
func (c *Camera) Orientation() types.Quat {
	yawQuat := types.QuatFromAxisAngle(types.XYZ(0, 1, 0), degToRad(c.Yaw))
	pitchQuat := types.QuatFromAxisAngle(types.XYZ(1, 0, 0), degToRad(c.Pitch))
	return yawQuat.Mul(pitchQuat).Normalize()
}

// Get the unit vector the camera is looking at.
func (c *Camera) Forward() types.Vec3 {
	return c.Orientation().Rotate(types.XYZ(0, 0, -1))
}

// Move the camera by amount along dir.
func (c *Camera) Move(dir CameraDirection, amount float32) {
	orient := c.Orientation()

	var axis types.Vec3
	switch dir {
	case Forward:
		axis = orient.Rotate(types.XYZ(0, 0, -1))
	case Backward:
		axis = orient.Rotate(types.XYZ(0, 0, 1))
	case Left:
		axis = orient.Rotate(types.XYZ(-1, 0, 0))
	case Right:
		axis = orient.Rotate(types.XYZ(1, 0, 0))
	case Up:
		axis = orient.Rotate(types.XYZ(0, 1, 0))
	case Down:
		axis = orient.Rotate(types.XYZ(0, -1, 0))
	}

	c.Position = c.Position.Add(axis.Mul(amount))
}

// Rotate the camera by the specified yaw and pitch deltas (in degrees). The
// resulting pitch is clamped so the camera never flips over.
func (c *Camera) Rotate(yawDelta, pitchDelta float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+yawDelta), 360))
	c.Pitch += pitchDelta
	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	} else if c.Pitch < -maxPitch {
		c.Pitch = -maxPitch
	}
}

// Build the camera pose for the current position and orientation.
func (c *Camera) Pose() CameraPose {
	return CameraPose{
		CameraToWorld:     types.Translate4(c.Position).Mul4(c.Orientation().Mat4()),
		InverseProjection: types.Perspective4(c.FOV, c.Aspect, c.Near, c.Far).Inv(),
	}
}

func degToRad(deg float32) float32 {
	return deg * math.Pi / 180.0
}
