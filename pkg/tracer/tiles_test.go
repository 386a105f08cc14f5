package tracer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glint-render/glint/pkg/sched"
)

func TestTileSizeSelection(t *testing.T) {
	tests := []struct {
		name   string
		pixels int
		want   int
	}{
		{"small viewport", 64 * 64, 32},
		{"boundary small", 256 * 256, 32},
		{"HD-ish viewport", 800 * 600, 64},
		{"boundary medium", 1024 * 1024, 64},
		{"4K viewport", 3840 * 2160, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tileSizeFor(tt.pixels))
		})
	}
}

func TestTileGridCoversViewportExactly(t *testing.T) {
	const width, height, tileSize = 100, 70, 32

	tiles := tileGrid(width, height, tileSize)

	covered := make([]bool, width*height)
	for _, tile := range tiles {
		assert.LessOrEqual(t, tile.width(), tileSize)
		assert.LessOrEqual(t, tile.height(), tileSize)
		for y := tile.y0; y < tile.y1; y++ {
			for x := tile.x0; x < tile.x1; x++ {
				idx := y*width + x
				assert.False(t, covered[idx], "pixel (%d,%d) covered twice", x, y)
				covered[idx] = true
			}
		}
	}

	for i, c := range covered {
		if !c {
			t.Fatalf("pixel %d not covered by any tile", i)
		}
	}

	// 100x70 with 32px tiles: 4 columns x 3 rows
	assert.Len(t, tiles, 12)
}

func TestTraceTileStandalone(t *testing.T) {
	pt := newTestTracer()
	space := newTestSpace()

	// Size the buffers, then render one extra tile by hand.
	pt.Trace(space, 64, 64, 1)

	random := rand.New(rand.NewSource(7))
	pt.TraceTile(space, 0, 0, 32, 32, 1, random)

	// The standalone tile added one sample inside its bounds and none
	// outside.
	assert.Equal(t, 2.0, pt.SampleCount(10, 10))
	assert.Equal(t, 1.0, pt.SampleCount(40, 40))
}

func TestTraceTileRejectsOversizedBounds(t *testing.T) {
	pt := newTestTracer()
	space := newTestSpace()
	pt.Trace(space, 64, 64, 1)

	random := rand.New(rand.NewSource(7))

	// Larger than the maximum supported tile area: refused, not clipped.
	pt.TraceTile(space, 0, 0, 200, 200, 1, random)
	assert.Equal(t, 1.0, pt.SampleCount(10, 10))

	// Inverted bounds are a no-op.
	pt.TraceTile(space, 32, 32, 0, 0, 1, random)
	assert.Equal(t, 1.0, pt.SampleCount(10, 10))
}

func TestTiledAccumulationWithManyTiles(t *testing.T) {
	pool := sched.NewPool(4)
	defer pool.Close()

	pt := newTestTracer()
	pt.EnableMultithreading(poolPrimitives(pool))

	// 96x96 at 32px tiles is 9 tiles, multiple batches on small hosts.
	space := newTestSpace()
	pt.Trace(space, 96, 96, 1)

	total := 0.0
	for y := 0; y < 96; y++ {
		for x := 0; x < 96; x++ {
			total += pt.SampleCount(x, y)
		}
	}
	assert.Equal(t, float64(96*96), total)

	// Pass accounting drained the counter.
	assert.Equal(t, int32(0), pt.remaining.Load())
}
