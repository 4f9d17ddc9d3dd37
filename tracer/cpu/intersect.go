package cpu

import (
	"math"

	"github.com/achilleasa/skytrace/scene"
	"github.com/achilleasa/skytrace/types"
)

var groundNormal = types.XYZ(0, 1, 0)

// Find the closest intersection of ray with the scene. The ground plane is
// tested first followed by the spheres in storage order; a primitive only
// replaces the current hit if it is strictly closer.
func Trace(ray Ray, sc *scene.Scene) Hit {
	hit := NoHit()

	intersectGroundPlane(ray, sc.Ground, &hit)
	for i := range sc.Spheres {
		intersectSphere(ray, &sc.Spheres[i], &hit)
	}

	return hit
}

// Intersect ray with the y = 0 plane. Only rays travelling downwards can hit it.
func intersectGroundPlane(ray Ray, ground scene.GroundMaterial, hit *Hit) {
	if !(ray.Direction[1] < 0) {
		return
	}

	t := -ray.Origin[1] / ray.Direction[1]
	if t > 0 && t < hit.Distance {
		hit.Distance = t
		hit.Position = ray.Origin.Add(ray.Direction.Mul(t))
		hit.Normal = groundNormal
		hit.Albedo = ground.Albedo
		hit.Specular = ground.Specular
	}
}

// Intersect ray with a sphere using the geometric method. If the ray origin
// lies inside the sphere the far intersection is used.
func intersectSphere(ray Ray, sphere *scene.Sphere, hit *Hit) {
	d := ray.Origin.Sub(sphere.Center)
	p1 := -ray.Direction.Dot(d)
	p2sqr := p1*p1 - d.Dot(d) + sphere.Radius*sphere.Radius
	if p2sqr < 0 {
		return
	}

	p2 := float32(math.Sqrt(float64(p2sqr)))
	t := p1 - p2
	if !(t > 0) {
		t = p1 + p2
	}

	if t > 0 && t < hit.Distance {
		hit.Distance = t
		hit.Position = ray.Origin.Add(ray.Direction.Mul(t))
		hit.Normal = hit.Position.Sub(sphere.Center).Normalize()
		hit.Albedo = sphere.Albedo
		hit.Specular = sphere.Specular
	}
}
