// Package engine ties the scheduler and the tracer together into a
// per-frame rendering stage driven by whatever presentation loop hosts it.
package engine

import (
	"github.com/glint-render/glint/pkg/core"
	"github.com/glint-render/glint/pkg/sched"
	"github.com/glint-render/glint/pkg/tracer"
)

// Presenter displays a flat RGB float buffer of known dimensions once per
// publish cycle. The window collaborator of the engine; the web viewer is
// the implementation shipped with this repo.
type Presenter interface {
	BlitRGBFloat(pixels []float32, width, height int)
}

// Stage orchestrates one frame of path tracing per Compute call: trace,
// snapshot, blit. The caller's goroutine drives it and blocks until each
// frame's tile batches complete.
type Stage struct {
	tracer          *tracer.PathTracer
	space           core.Space
	pools           *sched.Manager
	samplesPerFrame int

	blit []float32 // Reused flat RGB conversion buffer
}

// NewStage creates a rendering stage. The pool manager is injected rather
// than reached through any global state.
func NewStage(pt *tracer.PathTracer, space core.Space, pools *sched.Manager, samplesPerFrame int) *Stage {
	if samplesPerFrame <= 0 {
		samplesPerFrame = 1
	}
	return &Stage{
		tracer:          pt,
		space:           space,
		pools:           pools,
		samplesPerFrame: samplesPerFrame,
	}
}

// Prepare wires the rendering pool's primitives into the tracer. Must be
// called before the first Compute; calling it again rebinds to the
// manager's current rendering pool.
func (s *Stage) Prepare() {
	pool := s.pools.Pool(sched.RoleRendering)

	submit := func(task func()) {
		pool.Submit(sched.PriorityNormal, func() (interface{}, error) {
			task()
			return nil, nil
		})
	}

	s.tracer.EnableMultithreading(submit, pool.WaitAll)
}

// Compute traces one frame at the presenter's viewport size and blits the
// current snapshot.
func (s *Stage) Compute(presenter Presenter, width, height int) {
	s.tracer.Trace(s.space, width, height, s.samplesPerFrame)

	pixels, w, h := s.tracer.GetSnapshotForDisplay()
	if len(pixels) == 0 {
		return
	}

	if len(s.blit) != len(pixels)*3 {
		s.blit = make([]float32, len(pixels)*3)
	}
	for i, c := range pixels {
		s.blit[i*3+0] = float32(c.X)
		s.blit[i*3+1] = float32(c.Y)
		s.blit[i*3+2] = float32(c.Z)
	}

	presenter.BlitRGBFloat(s.blit, w, h)
}

// Tracer returns the stage's path tracer, e.g. for continuous-update
// control.
func (s *Stage) Tracer() *tracer.PathTracer {
	return s.tracer
}
