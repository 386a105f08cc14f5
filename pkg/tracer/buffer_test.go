package tracer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glint-render/glint/pkg/core"
)

func TestBufferResize(t *testing.T) {
	var b Buffer[float64]

	assert.Equal(t, 0, b.Len())

	b.Resize(4, 3)
	assert.Equal(t, 12, b.Len())
	assert.Equal(t, 4, b.Width())
	assert.Equal(t, 3, b.Height())

	// Same size is a no-op that preserves contents.
	b.Set(5, 7.5)
	b.Resize(4, 3)
	assert.Equal(t, 7.5, b.At(5))

	// An actual resize discards contents.
	b.Resize(2, 2)
	assert.Equal(t, 0.0, b.At(0))
	assert.Equal(t, 4, b.Len())
}

func TestBufferClear(t *testing.T) {
	var b Buffer[core.Vec3]
	b.Resize(2, 2)

	b.Set(0, core.NewVec3(1, 2, 3))
	b.Clear(core.NewVec3(9, 9, 9))

	for i := 0; i < b.Len(); i++ {
		assert.Equal(t, core.NewVec3(9, 9, 9), b.At(i))
	}
}

func TestBufferIndex(t *testing.T) {
	var b Buffer[int]
	b.Resize(10, 5)

	assert.Equal(t, 0, b.Index(0, 0))
	assert.Equal(t, 23, b.Index(3, 2))
	assert.Equal(t, 49, b.Index(9, 4))
}

func TestBufferNegativeSizeClamped(t *testing.T) {
	var b Buffer[int]
	b.Resize(-1, 5)
	assert.Equal(t, 0, b.Len())
}
