package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glint-render/glint/pkg/core"
)

func TestTransformChangeTracking(t *testing.T) {
	var tr Transform

	assert.False(t, tr.Changed(false))

	tr.SetPosition(core.NewVec3(1, 2, 3))
	assert.True(t, tr.Changed(false), "peek does not reset")
	assert.True(t, tr.Changed(true), "read with reset")
	assert.False(t, tr.Changed(false), "flag cleared after reset")

	tr.SetOrientation(0.5, 0.1)
	assert.True(t, tr.Changed(true))
}

func TestTransformPitchClamped(t *testing.T) {
	var tr Transform
	tr.SetOrientation(0, math.Pi)

	_, pitch := tr.Orientation()
	assert.Less(t, pitch, math.Pi/2)
}

func TestPinholeCameraPrimaryRays(t *testing.T) {
	camera := NewPinholeCamera(0.036, 0.050)

	const width, height = 8, 6
	rays := make([]core.Ray, width*height)
	camera.PrimaryRays(rays, width, height)

	for i, ray := range rays {
		assert.Equal(t, core.Vec3{}, ray.Origin, "ray %d originates at the pinhole", i)
		assert.InDelta(t, 1.0, ray.Direction.Length(), 1e-9, "ray %d is normalized", i)
		assert.Less(t, ray.Direction.Z, 0.0, "ray %d points into the scene", i)
	}

	// Center pixels straddle the optical axis symmetrically.
	left := rays[2*width+3].Direction
	right := rays[2*width+4].Direction
	assert.InDelta(t, -left.X, right.X, 1e-9)
	assert.InDelta(t, left.Y, right.Y, 1e-9)
}

func TestPinholeCameraTileRaysMatchFullFrame(t *testing.T) {
	camera := NewPinholeCamera(0.036, 0.050)
	camera.Transform.SetPosition(core.NewVec3(0, 1, 2))
	camera.Transform.SetOrientation(0.3, -0.2)

	const width, height = 16, 16
	full := make([]core.Ray, width*height)
	camera.PrimaryRays(full, width, height)

	// A tile's rays are exactly the corresponding full-frame rays.
	const x0, y0, x1, y1 = 4, 8, 12, 16
	tile := make([]core.Ray, (x1-x0)*(y1-y0))
	camera.TileRays(tile, x0, y0, x1, y1, width, height)

	i := 0
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			assert.Equal(t, full[py*width+px], tile[i])
			i++
		}
	}
}

func TestSkydomeGradient(t *testing.T) {
	sky := NewSkydome(core.NewVec3(0, 0, 1), core.NewVec3(1, 1, 1))

	assert.Equal(t, core.NewVec3(0, 0, 1), sky.Sample(core.NewVec3(0, 1, 0)))
	assert.Equal(t, core.NewVec3(1, 1, 1), sky.Sample(core.NewVec3(0, -1, 0)))

	horizon := sky.Sample(core.NewVec3(1, 0, 0))
	assert.InDelta(t, 0.5, horizon.X, 1e-9)
	assert.InDelta(t, 1.0, horizon.Z, 1e-9)
}

func TestLinearSpaceTraverseNearestHit(t *testing.T) {
	s := NewDemoScene()
	space := NewLinearSpace(s)

	assert.False(t, space.Ready())
	space.Build()
	require.True(t, space.Ready())

	// Straight at the matte sphere: nearest hit is its front surface.
	ray := core.NewRay(core.NewVec3(-0.25, 0, 0), core.NewVec3(0, 0, -1))
	hit, ok := space.Traverse(ray, 1e-4, 1e4)
	require.True(t, ok)
	assert.InDelta(t, 0.8, hit.T, 1e-9)

	// Straight up: nothing to hit.
	up := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0))
	_, ok = space.Traverse(up, 1e-4, 1e4)
	assert.False(t, ok)
}

func TestLinearSpaceInvalidate(t *testing.T) {
	s := NewDemoScene()
	space := NewLinearSpace(s)
	space.Build()

	space.Invalidate()
	assert.False(t, space.Ready())
}
