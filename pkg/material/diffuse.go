// Package material implements the surface materials supported by the path
// tracer. Each material decides whether an incoming ray scatters and, if
// so, in which direction and with what color attenuation.
package material

import (
	"math"
	"math/rand"

	"github.com/glint-render/glint/pkg/core"
)

// Diffuse represents a matte surface that scatters rays in a
// cosine-weighted hemisphere around the surface normal.
type Diffuse struct {
	Albedo core.Vec3 // Base color/reflectance
}

// NewDiffuse creates a new diffuse material
func NewDiffuse(albedo core.Vec3) *Diffuse {
	return &Diffuse{Albedo: albedo}
}

// Scatter implements the core.Material interface
func (d *Diffuse) Scatter(rayIn core.Ray, hit core.HitRecord, random *rand.Rand) (core.ScatterResult, bool) {
	direction := cosineHemisphereDirection(hit.Normal, random)

	// Degenerate direction can occur when the sample opposes the normal
	if direction.LengthSquared() < 1e-16 {
		direction = hit.Normal
	}

	return core.ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: d.Albedo,
	}, true
}

// cosineHemisphereDirection generates a cosine-weighted random direction in
// the hemisphere around the normal.
func cosineHemisphereDirection(normal core.Vec3, random *rand.Rand) core.Vec3 {
	// Sample a point on the unit disk, lift it onto the hemisphere
	a := 2.0 * math.Pi * random.Float64()
	z := random.Float64()
	r := math.Sqrt(z)

	x := r * math.Cos(a)
	y := r * math.Sin(a)
	up := math.Sqrt(1.0 - z)

	// Build an orthonormal basis around the normal
	var nt core.Vec3
	if math.Abs(normal.X) > 0.1 {
		nt = core.NewVec3(0, 1, 0)
	} else {
		nt = core.NewVec3(1, 0, 0)
	}
	tangent := nt.Cross(normal).Normalize()
	bitangent := normal.Cross(tangent)

	return tangent.Multiply(x).Add(bitangent.Multiply(y)).Add(normal.Multiply(up))
}
