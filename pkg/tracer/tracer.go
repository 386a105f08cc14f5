// Package tracer implements the continuously-accumulating path-tracing
// pipeline: per-frame orchestration, sequential and tiled sample
// accumulation into shared buffers, recursive ray evaluation, and the
// synchronized snapshot publisher that turns the accumulator into a
// display-ready image between complete passes.
package tracer

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/glint-render/glint/pkg/core"
)

const (
	// recursionLimit caps ray bounce depth. At the cutoff the surface
	// attenuation is returned alone, a known energy-loss bias.
	recursionLimit = 10

	// Intersection range. The lower bound avoids self-intersection
	// artifacts at the ray origin.
	tMinIntersect = 1e-4
	tMaxIntersect = 1e4
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// SubmitFunc submits a task to some worker pool for execution
type SubmitFunc func(task func())

// WaitFunc blocks until every task submitted so far has completed
type WaitFunc func()

// PathTracer renders a scene by stochastic path tracing, accumulating
// samples across frames into paired color/count buffers. A single mutex
// guards the accumulator; it is taken once per tile merge (or once per
// sequential pass), never per pixel.
type PathTracer struct {
	framebuffer Buffer[core.Vec3] // Accumulated color per pixel
	rayCounters Buffer[float64]   // Samples contributed per pixel
	primaryRays Buffer[core.Ray]  // One camera ray per pixel
	snapshot    Buffer[core.Vec3] // Published display image

	// mu guards framebuffer, rayCounters and snapshot. The only lock on
	// the rendering hot path.
	mu sync.Mutex

	random      *rand.Rand // Sequential-mode sampling
	passCounter uint64     // Seeds tile generators differently each pass

	bench benchmark

	// Injected multithreading primitives; nil until EnableMultithreading
	submit SubmitFunc
	wait   WaitFunc

	// Continuous-update state (see continuous.go)
	active      atomic.Bool   // Publisher running
	interval    atomic.Int64  // Nanoseconds between publishes
	passMu      sync.Mutex    // Guards passDone
	passCond    *sync.Cond    // Signaled when a pass completes
	passDone    bool          // Completion flag for the in-flight pass
	remaining   atomic.Int32  // Tiles left in the in-flight pass
	ctrlMu      sync.Mutex    // Serializes publisher start/stop
	stopCh      chan struct{} // Closed to cancel the publisher's sleep
	publisherWG sync.WaitGroup

	logger core.Logger
}

// NewPathTracer creates a path tracer. A nil logger falls back to the
// default stdout logger.
func NewPathTracer(logger core.Logger) *PathTracer {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	pt := &PathTracer{
		random: rand.New(rand.NewSource(42)),
		logger: logger,
	}
	pt.passCond = sync.NewCond(&pt.passMu)
	pt.interval.Store(int64(time.Second / 30))
	return pt
}

// EnableMultithreading injects a pool's submission and synchronization
// primitives. The tracer stays decoupled from any concrete pool type;
// anything that can run a func and wait for a batch will do.
func (pt *PathTracer) EnableMultithreading(submit SubmitFunc, wait WaitFunc) {
	pt.submit = submit
	pt.wait = wait
}

// DisableMultithreading reverts the tracer to sequential accumulation
func (pt *PathTracer) DisableMultithreading() {
	pt.submit = nil
	pt.wait = nil
}

// Multithreaded reports whether tile-parallel accumulation is enabled
func (pt *PathTracer) Multithreaded() bool {
	return pt.submit != nil && pt.wait != nil
}

// Trace renders one frame: it accumulates iterations samples per pixel
// into the shared buffers, tiled across the injected pool when
// multithreading is enabled and the camera can generate tile rays,
// sequentially otherwise. Safe to call repeatedly; accumulation continues
// until the camera moves.
func (pt *PathTracer) Trace(space core.Space, width, height, iterations int) {
	if width <= 0 || height <= 0 {
		pt.logger.Printf("tracer: ignoring zero-sized viewport %dx%d\n", width, height)
		return
	}
	if iterations <= 0 {
		iterations = 1
	}

	camera := space.Scene().Camera()
	if camera == nil {
		return
	}

	pt.startBenchmark()
	pt.prepareBuffers(width, height)
	pt.checkCameraMoved(camera)
	pt.buildPrimaryRays(camera, width, height)
	pt.prepareSpace(space)
	pt.accumulate(space, width, height, iterations)
	pt.endBenchmark()
}

func (pt *PathTracer) startBenchmark() {
	pt.bench.start = time.Now()
}

// prepareBuffers ensures all buffers match the viewport. Resizing happens
// under the accumulator lock so the publisher never sees the color and
// count buffers at different sizes.
func (pt *PathTracer) prepareBuffers(width, height int) {
	pt.mu.Lock()
	pt.framebuffer.Resize(width, height)
	pt.rayCounters.Resize(width, height)
	pt.snapshot.Resize(width, height)
	pt.mu.Unlock()

	pt.primaryRays.Resize(width, height)
}

// checkCameraMoved zeroes both accumulators when the camera transform
// changed since the previous frame. Color and count are always reset
// together, inside one lock acquisition.
func (pt *PathTracer) checkCameraMoved(camera core.Camera) {
	if !camera.Moved(true) {
		return
	}
	pt.mu.Lock()
	pt.framebuffer.Clear(core.Vec3{})
	pt.rayCounters.Clear(0)
	pt.mu.Unlock()

	metricAccumulationResets.Inc()
}

func (pt *PathTracer) buildPrimaryRays(camera core.Camera, width, height int) {
	camera.PrimaryRays(pt.primaryRays.Data(), width, height)
}

func (pt *PathTracer) prepareSpace(space core.Space) {
	if !space.Ready() {
		space.Build()
	}
}

func (pt *PathTracer) accumulate(space core.Space, width, height, iterations int) {
	pt.passCounter++

	emittedBefore := pt.bench.emitted.Load()

	camera := space.Scene().Camera()
	if _, tiled := camera.(core.TileRayCaster); tiled && pt.Multithreaded() {
		pt.accumulateTiled(space, width, height, iterations)
	} else {
		pt.accumulateSequential(space, iterations)
	}

	metricRaysTraced.Add(float64(pt.bench.emitted.Load() - emittedBefore))
	metricPassesCompleted.Inc()
}

// accumulateSequential traces every primary ray iterations times on the
// calling goroutine. The accumulator lock is taken once for the whole
// pass; ordering within the pass is deterministic.
func (pt *PathTracer) accumulateSequential(space core.Space, iterations int) {
	sky := space.Scene().Sky()

	pt.mu.Lock()
	for i, end := 0, pt.primaryRays.Len(); i < end; i++ {
		ray := pt.primaryRays.At(i)
		for it := 0; it < iterations; it++ {
			sample := pt.traceRay(ray, space, sky, 0, pt.random)
			pt.framebuffer.Set(i, pt.framebuffer.At(i).Add(sample))
			pt.rayCounters.Set(i, pt.rayCounters.At(i)+1)
		}
	}
	pt.mu.Unlock()

	// A sequential pass is a complete pass over every pixel, so the
	// publisher may recompute the snapshot.
	pt.signalPassComplete()
}

// traceRay recursively evaluates the radiance arriving along a ray. Depth
// is capped at recursionLimit, at which point the last surface's
// attenuation is returned as-is rather than recursing further.
func (pt *PathTracer) traceRay(ray core.Ray, space core.Space, sky core.SkyEnvironment, depth int, random *rand.Rand) core.Vec3 {
	pt.bench.emitted.Add(1)

	hit, ok := space.Traverse(ray, tMinIntersect, tMaxIntersect)
	if !ok {
		return sky.Sample(ray.Direction.Normalize())
	}

	scatter, scatters := hit.Material.Scatter(ray, *hit, random)
	if !scatters {
		return core.Vec3{} // Absorbed
	}

	if depth < recursionLimit {
		return scatter.Attenuation.MultiplyVec(
			pt.traceRay(scatter.Scattered, space, sky, depth+1, random))
	}

	return scatter.Attenuation
}

// GetSnapshot synchronously recomputes and returns the normalized image:
// color/count per sampled pixel, black where no samples have landed.
// The returned slice is a copy and safe to retain.
func (pt *PathTracer) GetSnapshot() ([]core.Vec3, int, int) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	for i, end := 0, pt.framebuffer.Len(); i < end; i++ {
		if count := pt.rayCounters.At(i); count > 0 {
			pt.snapshot.Set(i, pt.framebuffer.At(i).Multiply(1.0/count))
		} else {
			pt.snapshot.Set(i, core.Vec3{})
		}
	}

	return pt.copySnapshotLocked()
}

// GetSnapshotForDisplay returns the image to present this cycle. While
// continuous updates are active the background publisher owns snapshot
// recomputation and this just copies the latest published state;
// otherwise it recomputes on demand.
func (pt *PathTracer) GetSnapshotForDisplay() ([]core.Vec3, int, int) {
	if !pt.active.Load() {
		return pt.GetSnapshot()
	}

	pt.mu.Lock()
	defer pt.mu.Unlock()
	return pt.copySnapshotLocked()
}

func (pt *PathTracer) copySnapshotLocked() ([]core.Vec3, int, int) {
	out := make([]core.Vec3, pt.snapshot.Len())
	copy(out, pt.snapshot.Data())
	return out, pt.snapshot.Width(), pt.snapshot.Height()
}

// SampleCount returns the accumulated sample count for pixel (x, y),
// mainly for diagnostics and tests.
func (pt *PathTracer) SampleCount(x, y int) float64 {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if pt.rayCounters.Len() == 0 {
		return 0
	}
	return pt.rayCounters.At(pt.rayCounters.Index(x, y))
}

// AccumulatedColor returns the raw accumulated color for pixel (x, y)
func (pt *PathTracer) AccumulatedColor(x, y int) core.Vec3 {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if pt.framebuffer.Len() == 0 {
		return core.Vec3{}
	}
	return pt.framebuffer.At(pt.framebuffer.Index(x, y))
}

// benchmark tracks rendering throughput and periodically logs it
type benchmark struct {
	start   time.Time
	runtime float64 // Seconds of tracing since the last report
	emitted atomic.Uint64
	counted uint64 // Rays already attributed to a report window
}

func (pt *PathTracer) endBenchmark() {
	pt.bench.runtime += time.Since(pt.bench.start).Seconds()

	if pt.bench.runtime > 5.0 {
		emitted := pt.bench.emitted.Load()
		raysPerSecond := float64(emitted-pt.bench.counted) / pt.bench.runtime
		pt.logger.Printf("%d rays/s\n", uint64(raysPerSecond))

		pt.bench.runtime = 0
		pt.bench.counted = emitted
	}
}
