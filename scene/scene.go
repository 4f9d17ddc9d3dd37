package scene

import (
	"fmt"

	"github.com/achilleasa/skytrace/types"
)

// A sphere primitive. Spheres are immutable once added to a scene.
type Sphere struct {
	Center types.Vec3
	Radius float32

	// Diffuse and specular reflectance.
	Albedo   types.Vec3
	Specular types.Vec3
}

// The material of the implicit y = 0 ground plane.
type GroundMaterial struct {
	Albedo   types.Vec3
	Specular types.Vec3
}

// A directional light. Direction points from the light towards the scene.
type DirectionalLight struct {
	Direction types.Vec3
	Intensity float32
}

type Scene struct {
	// Spheres in intersection test order.
	Spheres []Sphere

	Ground GroundMaterial
	Light  DirectionalLight

	// Sky color used when no sky texture is attached.
	SkyColor types.Vec3
}

// Create an empty scene with a default ground material, a light shining
// diagonally downwards and a pale blue sky.
func NewScene() *Scene {
	return &Scene{
		Spheres: make([]Sphere, 0),
		Ground: GroundMaterial{
			Albedo:   types.Splat3(0.8),
			Specular: types.Splat3(0.2),
		},
		Light: DirectionalLight{
			Direction: types.XYZ(-0.3, -1, -0.5).Normalize(),
			Intensity: 1.0,
		},
		SkyColor: types.XYZ(0.5, 0.7, 1.0),
	}
}

// Add a sphere to the scene.
func (s *Scene) AddSphere(sphere Sphere) error {
	if !(sphere.Radius > 0) {
		return fmt.Errorf("scene: sphere radius must be positive; got %f", sphere.Radius)
	}
	s.Spheres = append(s.Spheres, sphere)
	return nil
}

// Set the scene's directional light.
func (s *Scene) SetLight(light DirectionalLight) {
	s.Light = light
}

// Create a copy of the scene that can be handed to tracers. The copy does not
// share any mutable state with the original.
func (s *Scene) Snapshot() *Scene {
	snap := *s
	snap.Spheres = make([]Sphere, len(s.Spheres))
	copy(snap.Spheres, s.Spheres)
	return &snap
}
