package tracer

import (
	"time"
)

// defaultUpdateRate is used when an invalid display rate is requested
const defaultUpdateRate = 30.0

// StartContinuousUpdates starts the background snapshot publisher at the
// given rate in publishes per second. No-op if already active. An invalid
// rate is clamped to the default rather than rejected.
func (pt *PathTracer) StartContinuousUpdates(rate float64) {
	if rate <= 0 {
		pt.logger.Printf("tracer: invalid update rate %.2f, using %.0f/s\n", rate, defaultUpdateRate)
		rate = defaultUpdateRate
	}

	pt.ctrlMu.Lock()
	defer pt.ctrlMu.Unlock()

	if pt.active.Load() {
		return
	}

	pt.interval.Store(int64(float64(time.Second) / rate))
	pt.stopCh = make(chan struct{})

	// Ready for the first publish even before any pass has completed:
	// the publisher reads a consistent (possibly empty) accumulator.
	pt.passMu.Lock()
	pt.passDone = true
	pt.passMu.Unlock()
	pt.remaining.Store(0)

	pt.publisherWG.Add(1)
	pt.active.Store(true)
	go pt.publishLoop(pt.stopCh)
}

// StopContinuousUpdates stops the publisher and joins its goroutine.
// In-flight tile tasks are not cancelled; the current pass finishes
// accumulating, but no further snapshot writes happen after Stop returns.
// No-op if not active.
func (pt *PathTracer) StopContinuousUpdates() {
	pt.ctrlMu.Lock()
	defer pt.ctrlMu.Unlock()

	if !pt.active.Load() {
		return
	}
	pt.active.Store(false)

	// Force-wake the publisher whether it is waiting for a pass or
	// sleeping off its cadence.
	close(pt.stopCh)
	pt.passCond.Broadcast()

	pt.publisherWG.Wait()
}

// ContinuousUpdatesActive reports whether the publisher is running
func (pt *PathTracer) ContinuousUpdatesActive() bool {
	return pt.active.Load()
}

// SetUpdateRate adjusts the publish cadence. Invalid rates are clamped to
// the default.
func (pt *PathTracer) SetUpdateRate(rate float64) {
	if rate <= 0 {
		rate = defaultUpdateRate
	}
	pt.interval.Store(int64(float64(time.Second) / rate))
}

// signalPassComplete marks the in-flight pass finished and wakes the
// publisher. Called by the tile task that drains the remaining-tile
// counter, or at the end of a sequential pass.
func (pt *PathTracer) signalPassComplete() {
	pt.passMu.Lock()
	pt.passDone = true
	pt.passMu.Unlock()
	pt.passCond.Signal()
}

// publishLoop is the background publisher: wait for a complete pass,
// recompute the snapshot, then hold the target cadence. It only ever
// reads accumulator state produced by a full pass over every tile, so a
// pixel's (color, count) pair is never observed mid-update.
func (pt *PathTracer) publishLoop(stopCh <-chan struct{}) {
	defer pt.publisherWG.Done()

	for {
		pt.passMu.Lock()
		for !pt.passDone && pt.active.Load() {
			pt.passCond.Wait()
		}
		if !pt.active.Load() {
			pt.passMu.Unlock()
			return
		}
		pt.passDone = false
		pt.passMu.Unlock()

		started := time.Now()
		pt.recomputeSnapshot()

		// Sleep off the remainder of the interval so the publish cadence
		// stays steady regardless of how fast sampling runs.
		remaining := time.Duration(pt.interval.Load()) - time.Since(started)
		if remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-stopCh:
				return
			}
		}
	}
}

// recomputeSnapshot derives the display image from the accumulator. A
// buffer-size mismatch (mid-resize) skips the cycle instead of failing;
// pixels without samples keep their previous snapshot value so a sparse
// pass never flickers pixels back to black.
func (pt *PathTracer) recomputeSnapshot() {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	size := pt.framebuffer.Len()
	if size == 0 || size != pt.rayCounters.Len() || size != pt.snapshot.Len() {
		return
	}

	for i := 0; i < size; i++ {
		if count := pt.rayCounters.At(i); count > 0 {
			pt.snapshot.Set(i, pt.framebuffer.At(i).Multiply(1.0/count))
		}
	}

	metricSnapshotsPublished.Inc()
}
