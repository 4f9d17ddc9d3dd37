package scene

import (
	"math"
	"math/rand"

	"github.com/achilleasa/skytrace/types"
)

// Options for generating a random sphere scene.
type GenerateConfig struct {
	Seed int64

	// Number of placement attempts. Overlapping spheres are discarded so
	// the generated scene may contain fewer spheres.
	SphereCount int

	RadiusMin float32
	RadiusMax float32

	// Spheres are placed inside a disc of this radius centered at the origin.
	PlacementRadius float32
}

func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Seed:            1,
		SphereCount:     100,
		RadiusMin:       3,
		RadiusMax:       8,
		PlacementRadius: 100,
	}
}

// Generate a scene with randomly placed non-overlapping spheres resting on
// the ground plane. About half of the spheres are metallic.
func Generate(cfg GenerateConfig) *Scene {
	sc := NewScene()
	rng := rand.New(rand.NewSource(cfg.Seed))

	for i := 0; i < cfg.SphereCount; i++ {
		radius := cfg.RadiusMin + rng.Float32()*(cfg.RadiusMax-cfg.RadiusMin)
		pos := randomInUnitDisc(rng).Mul(cfg.PlacementRadius)
		sphere := Sphere{
			Center: types.XYZ(pos[0], radius, pos[1]),
			Radius: radius,
		}

		if overlaps(sc.Spheres, sphere) {
			continue
		}

		color := hsvToRGB(rng.Float32(), rng.Float32(), rng.Float32())
		if rng.Float32() < 0.5 {
			sphere.Albedo = types.Vec3{}
			sphere.Specular = color
		} else {
			sphere.Albedo = color
			sphere.Specular = types.Splat3(0.04)
		}

		sc.Spheres = append(sc.Spheres, sphere)
	}

	return sc
}

func overlaps(spheres []Sphere, candidate Sphere) bool {
	for _, other := range spheres {
		minDist := candidate.Radius + other.Radius
		delta := candidate.Center.Sub(other.Center)
		if delta.Dot(delta) < minDist*minDist {
			return true
		}
	}
	return false
}

// Pick a uniformly distributed point inside the unit disc.
func randomInUnitDisc(rng *rand.Rand) types.Vec2 {
	r := float32(math.Sqrt(rng.Float64()))
	theta := rng.Float64() * 2 * math.Pi
	return types.XY(r*float32(math.Cos(theta)), r*float32(math.Sin(theta)))
}

func hsvToRGB(h, s, v float32) types.Vec3 {
	h6 := h * 6
	sector := int(h6) % 6
	f := h6 - float32(math.Floor(float64(h6)))
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	switch sector {
	case 0:
		return types.XYZ(v, t, p)
	case 1:
		return types.XYZ(q, v, p)
	case 2:
		return types.XYZ(p, v, t)
	case 3:
		return types.XYZ(p, q, v)
	case 4:
		return types.XYZ(t, p, v)
	default:
		return types.XYZ(v, p, q)
	}
}
