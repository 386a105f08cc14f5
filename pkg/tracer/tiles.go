package tracer

import (
	"math/rand"
	"runtime"
	"sync"

	"github.com/glint-render/glint/pkg/core"
)

// Tile edge lengths, chosen by total pixel count: bigger viewports get
// bigger tiles so the number of tasks in flight stays bounded and the
// per-task submission overhead is amortized.
const (
	tileSizeSmall  = 32
	tileSizeMedium = 64
	tileSizeLarge  = 128

	// maxTileArea sizes the reusable scratch buffers
	maxTileArea = tileSizeLarge * tileSizeLarge
)

// tileSizeFor picks a tile edge length from {32, 64, 128}
func tileSizeFor(totalPixels int) int {
	switch {
	case totalPixels <= 256*256:
		return tileSizeSmall
	case totalPixels <= 1024*1024:
		return tileSizeMedium
	default:
		return tileSizeLarge
	}
}

// tileBounds is an axis-aligned pixel rectangle, min inclusive, max
// exclusive.
type tileBounds struct {
	x0, y0, x1, y1 int
}

func (b tileBounds) width() int  { return b.x1 - b.x0 }
func (b tileBounds) height() int { return b.y1 - b.y0 }

// tileGrid decomposes a width×height viewport into tiles of at most
// tileSize×tileSize pixels, clipped at the viewport edges.
func tileGrid(width, height, tileSize int) []tileBounds {
	var tiles []tileBounds
	for y0 := 0; y0 < height; y0 += tileSize {
		y1 := min(y0+tileSize, height)
		for x0 := 0; x0 < width; x0 += tileSize {
			x1 := min(x0+tileSize, width)
			tiles = append(tiles, tileBounds{x0: x0, y0: y0, x1: x1, y1: y1})
		}
	}
	return tiles
}

// tileScratch is per-task working storage sized to the maximum tile area,
// reused across tiles so rendering does not allocate per task.
type tileScratch struct {
	rays   []core.Ray
	colors []core.Vec3
	counts []float64
}

var scratchPool = sync.Pool{
	New: func() interface{} {
		return &tileScratch{
			rays:   make([]core.Ray, maxTileArea),
			colors: make([]core.Vec3, maxTileArea),
			counts: make([]float64, maxTileArea),
		}
	},
}

func (ts *tileScratch) reset(n int) {
	for i := 0; i < n; i++ {
		ts.colors[i] = core.Vec3{}
		ts.counts[i] = 0
	}
}

// TraceTile accumulates iterations samples per pixel for one rectangular
// sub-region of the viewport. The tile is rendered end-to-end into scratch
// storage and merged into the shared accumulator under a single lock
// acquisition. Usable standalone or as a submitted task; the camera must
// support tile ray generation and the buffers must have been sized by a
// prior Trace call.
func (pt *PathTracer) TraceTile(space core.Space, x0, y0, x1, y1, iterations int, random *rand.Rand) {
	camera, ok := space.Scene().Camera().(core.TileRayCaster)
	if !ok {
		return
	}
	sky := space.Scene().Sky()

	width := pt.primaryRays.Width()
	height := pt.primaryRays.Height()
	if width == 0 || height == 0 {
		return
	}
	area := (x1 - x0) * (y1 - y0)
	if area <= 0 || area > maxTileArea {
		return
	}

	scratch := scratchPool.Get().(*tileScratch)
	defer scratchPool.Put(scratch)
	scratch.reset(area)

	camera.TileRays(scratch.rays[:area], x0, y0, x1, y1, width, height)

	for i := 0; i < area; i++ {
		for it := 0; it < iterations; it++ {
			sample := pt.traceRay(scratch.rays[i], space, sky, 0, random)
			scratch.colors[i] = scratch.colors[i].Add(sample)
			scratch.counts[i]++
		}
	}

	// Merge: one lock acquisition per tile, color and count advancing
	// together.
	pt.mu.Lock()
	i := 0
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			idx := pt.framebuffer.Index(px, py)
			pt.framebuffer.Set(idx, pt.framebuffer.At(idx).Add(scratch.colors[i]))
			pt.rayCounters.Set(idx, pt.rayCounters.At(idx)+scratch.counts[i])
			i++
		}
	}
	pt.mu.Unlock()
}

// traceTileSynchronized renders one tile and participates in pass
// accounting: the task that drives the remaining-tile counter to zero
// marks the pass complete and wakes the snapshot publisher.
func (pt *PathTracer) traceTileSynchronized(space core.Space, bounds tileBounds, iterations int, random *rand.Rand) {
	pt.TraceTile(space, bounds.x0, bounds.y0, bounds.x1, bounds.y1, iterations, random)

	if pt.remaining.Add(-1) == 0 {
		pt.signalPassComplete()
	}
}

// accumulateTiled partitions the viewport into tiles and submits one task
// per tile to the injected pool, in batches of at most NumCPU×4 in flight
// at once. Each batch is fully drained before the next is submitted, which
// bounds both queue growth and the number of live scratch buffers.
func (pt *PathTracer) accumulateTiled(space core.Space, width, height, iterations int) {
	tiles := tileGrid(width, height, tileSizeFor(width*height))
	pt.remaining.Store(int32(len(tiles)))

	maxInFlight := runtime.NumCPU() * 4

	for start := 0; start < len(tiles); start += maxInFlight {
		end := min(start+maxInFlight, len(tiles))

		for i := start; i < end; i++ {
			bounds := tiles[i]
			// Seed varies per pass and per tile so repeated passes draw
			// fresh sample sequences.
			seed := int64(pt.passCounter)*1000003 + int64(i)
			random := rand.New(rand.NewSource(seed))

			pt.submit(func() {
				pt.traceTileSynchronized(space, bounds, iterations, random)
			})
		}

		pt.wait()
	}
}
