package material

import (
	"math/rand"

	"github.com/glint-render/glint/pkg/core"
)

// Metallic represents a reflective surface with optional diffusion
type Metallic struct {
	Albedo    core.Vec3 // Metal color
	Diffusion float64   // 0.0 = perfect mirror, 1.0 = very fuzzy
}

// NewMetallic creates a new metallic material, clamping diffusion to [0, 1]
func NewMetallic(albedo core.Vec3, diffusion float64) *Metallic {
	if diffusion > 1.0 {
		diffusion = 1.0
	}
	if diffusion < 0.0 {
		diffusion = 0.0
	}
	return &Metallic{Albedo: albedo, Diffusion: diffusion}
}

// Scatter implements the core.Material interface. The ray is absorbed when
// the perturbed reflection ends up below the surface.
func (m *Metallic) Scatter(rayIn core.Ray, hit core.HitRecord, random *rand.Rand) (core.ScatterResult, bool) {
	reflected := reflect(rayIn.Direction.Normalize(), hit.Normal)

	if m.Diffusion > 0 {
		reflected = reflected.Add(randomInUnitSphere(random).Multiply(m.Diffusion))
	}

	scattered := core.NewRay(hit.Point, reflected)
	scatters := scattered.Direction.Dot(hit.Normal) > 0

	return core.ScatterResult{
		Scattered:   scattered,
		Attenuation: m.Albedo,
	}, scatters
}

// reflect calculates the reflection of v off a surface with normal n
func reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// randomInUnitSphere generates a random point inside a unit sphere by
// rejection sampling
func randomInUnitSphere(random *rand.Rand) core.Vec3 {
	for {
		p := core.NewVec3(
			2*random.Float64()-1,
			2*random.Float64()-1,
			2*random.Float64()-1,
		)
		if p.LengthSquared() <= 1.0 {
			return p
		}
	}
}
