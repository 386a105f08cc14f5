package scene

import "github.com/glint-render/glint/pkg/core"

// Skydome provides a vertical gradient environment: rays pointing up sample
// the top color, rays pointing down the bottom color.
type Skydome struct {
	Top    core.Vec3
	Bottom core.Vec3
}

// NewSkydome creates a gradient skydome
func NewSkydome(top, bottom core.Vec3) *Skydome {
	return &Skydome{Top: top, Bottom: bottom}
}

// Sample implements core.SkyEnvironment. The direction must be normalized.
func (s *Skydome) Sample(direction core.Vec3) core.Vec3 {
	// Map direction.Y from [-1, 1] to [0, 1] and interpolate
	t := 0.5 * (direction.Y + 1.0)
	return s.Bottom.Multiply(1.0 - t).Add(s.Top.Multiply(t))
}
