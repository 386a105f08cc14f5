package scene

import (
	"math"
	"sync"

	"github.com/glint-render/glint/pkg/core"
)

// Transform holds a camera's position and orientation. Mutations mark the
// transform as changed so the tracer knows to reset accumulation; it is
// safe to mutate from one goroutine (input) while another (rendering)
// reads it.
type Transform struct {
	mu       sync.Mutex
	position core.Vec3
	yaw      float64 // Rotation around Y, radians
	pitch    float64 // Rotation around X, radians
	changed  bool
}

// SetPosition moves the transform and marks it changed
func (t *Transform) SetPosition(position core.Vec3) {
	t.mu.Lock()
	t.position = position
	t.changed = true
	t.mu.Unlock()
}

// SetOrientation sets yaw and pitch and marks the transform changed.
// Pitch is clamped just short of straight up/down to keep the view basis
// well defined.
func (t *Transform) SetOrientation(yaw, pitch float64) {
	const limit = math.Pi/2 - 0.01
	if pitch > limit {
		pitch = limit
	}
	if pitch < -limit {
		pitch = -limit
	}

	t.mu.Lock()
	t.yaw = yaw
	t.pitch = pitch
	t.changed = true
	t.mu.Unlock()
}

// Position returns the current position
func (t *Transform) Position() core.Vec3 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

// Orientation returns the current yaw and pitch
func (t *Transform) Orientation() (yaw, pitch float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.yaw, t.pitch
}

// Changed reports whether the transform was mutated since the last call
// with reset=true.
func (t *Transform) Changed(reset bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	changed := t.changed
	if reset {
		t.changed = false
	}
	return changed
}

// snapshot returns a consistent view of the transform for ray generation
func (t *Transform) snapshot() (position core.Vec3, yaw, pitch float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position, t.yaw, t.pitch
}

// rotate applies pitch then yaw to a camera-space direction
func rotate(v core.Vec3, yaw, pitch float64) core.Vec3 {
	sinP, cosP := math.Sin(pitch), math.Cos(pitch)
	sinY, cosY := math.Sin(yaw), math.Cos(yaw)

	// Pitch around X
	y := v.Y*cosP - v.Z*sinP
	z := v.Y*sinP + v.Z*cosP

	// Yaw around Y
	x := v.X*cosY + z*sinY
	z = -v.X*sinY + z*cosY

	return core.Vec3{X: x, Y: y, Z: z}
}

// PinholeCamera generates primary rays through an idealized pinhole onto a
// physical sensor. Rays pass through pixel centers; stochastic variation
// comes from material scattering, so an unchanged camera keeps producing
// identical primary rays and accumulation stays coherent.
type PinholeCamera struct {
	SensorWidth float64 // Sensor width in world units
	FocalLength float64 // Distance from pinhole to sensor
	Transform   Transform
}

// NewPinholeCamera creates a pinhole camera
func NewPinholeCamera(sensorWidth, focalLength float64) *PinholeCamera {
	return &PinholeCamera{
		SensorWidth: sensorWidth,
		FocalLength: focalLength,
	}
}

// SensorDimensions implements core.Camera
func (c *PinholeCamera) SensorDimensions() (sensorWidth, focalLength float64) {
	return c.SensorWidth, c.FocalLength
}

// Moved implements core.Camera
func (c *PinholeCamera) Moved(reset bool) bool {
	return c.Transform.Changed(reset)
}

// PrimaryRays implements core.Camera by filling dst with one ray per pixel
// of a width×height viewport.
func (c *PinholeCamera) PrimaryRays(dst []core.Ray, width, height int) {
	c.TileRays(dst, 0, 0, width, height, width, height)
}

// TileRays implements core.TileRayCaster: rays for the [x0,x1)×[y0,y1)
// sub-rectangle of a width×height viewport, written to dst in row-major
// tile-local order.
func (c *PinholeCamera) TileRays(dst []core.Ray, x0, y0, x1, y1, width, height int) {
	position, yaw, pitch := c.Transform.snapshot()

	// Sensor height follows the viewport aspect ratio
	aspectRatio := float64(width) / float64(height)
	halfWidth := c.SensorWidth * 0.5
	halfHeight := c.SensorWidth / aspectRatio * 0.5
	z := -c.FocalLength

	i := 0
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			// Pixel center in normalized device coordinates
			ndcX := (float64(px) + 0.5) / float64(width)
			ndcY := (float64(py) + 0.5) / float64(height)

			// NDC to sensor coordinates, y flipped so +y is up
			sensorX := (2.0*ndcX - 1.0) * halfWidth
			sensorY := (1.0 - 2.0*ndcY) * halfHeight

			direction := core.NewVec3(sensorX, sensorY, z).Normalize()
			dst[i] = core.NewRay(position, rotate(direction, yaw, pitch))
			i++
		}
	}
}
