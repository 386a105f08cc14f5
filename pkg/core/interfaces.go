package core

import "math/rand"

// Logger interface for engine logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// HitRecord contains information about a ray-surface intersection
type HitRecord struct {
	T         float64  // Ray parameter at the intersection
	Point     Vec3     // Intersection point in world space
	Normal    Vec3     // Surface normal, always facing the incoming ray
	FrontFace bool     // Whether the ray hit the outside of the surface
	Material  Material // Material at the intersection
}

// SetFaceNormal orients the normal against the incoming ray and records
// which side of the surface was hit
func (h *HitRecord) SetFaceNormal(ray Ray, outwardNormal Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Multiply(-1)
	}
}

// ScatterResult contains the outcome of a material scattering a ray
type ScatterResult struct {
	Scattered   Ray  // The outgoing ray
	Attenuation Vec3 // Color filter applied to radiance carried back along it
}

// Material decides how a surface responds to an incoming ray.
// Scatter returns false when the ray is absorbed.
type Material interface {
	Scatter(rayIn Ray, hit HitRecord, random *rand.Rand) (ScatterResult, bool)
}

// Intersectable is anything a ray can hit
type Intersectable interface {
	Hit(ray Ray, tMin, tMax float64) (*HitRecord, bool)
}

// SkyEnvironment provides radiance for rays that escape the scene
type SkyEnvironment interface {
	Sample(direction Vec3) Vec3
}

// Camera produces primary rays for a viewport and reports whether its
// transform changed since the last check (used to reset accumulation).
type Camera interface {
	// PrimaryRays fills dst, sized width*height in row-major order, with
	// one ray per pixel.
	PrimaryRays(dst []Ray, width, height int)

	// SensorDimensions returns the sensor width and focal length
	SensorDimensions() (sensorWidth, focalLength float64)

	// Moved reports whether the camera transform changed since the last
	// call with reset=true.
	Moved(reset bool) bool
}

// TileRayCaster is an optional camera capability: generating primary rays
// for a sub-rectangle of the viewport, as needed by parallel tile
// rendering. Cameras that do not implement it restrict the tracer to
// sequential accumulation.
type TileRayCaster interface {
	TileRays(dst []Ray, x0, y0, x1, y1, width, height int)
}

// Scene exposes the collaborators the tracer consumes
type Scene interface {
	Camera() Camera
	Sky() SkyEnvironment
}

// Space is a spatial acceleration structure over a scene's intersectables.
// Build must be called before Traverse; Ready reports whether it has been.
type Space interface {
	Ready() bool
	Build()
	Traverse(ray Ray, tMin, tMax float64) (*HitRecord, bool)
	Scene() Scene
}
