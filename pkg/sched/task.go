// Package sched provides the engine's task scheduling primitives: a
// blocking priority queue, a fixed-size worker pool draining it, and a
// registry of role-specific pools.
package sched

import (
	"context"
	"errors"
	"fmt"
)

// Priority orders tasks within a queue. Higher priorities are popped first;
// tasks of equal priority are popped in submission order.
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityNormal
	PriorityLow

	numPriorities = 3
)

// String returns a human-readable priority name
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// ErrTaskAbandoned is delivered through a task's handle when its pool shut
// down before the task had a chance to run.
var ErrTaskAbandoned = errors.New("sched: task abandoned before execution")

// TaskFunc is the unit of deferred work executed by a worker
type TaskFunc func() (interface{}, error)

// Task is a deferred unit of work with an associated priority. A task is
// owned by the queue until popped, then by the executing worker until it
// completes; the submitter holds only the Handle.
type Task struct {
	fn       TaskFunc
	priority Priority
	handle   *Handle
}

// NewTask creates a task and its result handle
func NewTask(priority Priority, fn TaskFunc) *Task {
	return &Task{
		fn:       fn,
		priority: priority,
		handle:   &Handle{done: make(chan struct{})},
	}
}

// Priority returns the task's priority
func (t *Task) Priority() Priority {
	return t.priority
}

// Handle returns the result handle associated with this task
func (t *Task) Handle() *Handle {
	return t.handle
}

// Execute runs the task exactly once, capturing any panic raised by the
// task function and routing it to the handle instead of letting it escape
// the calling worker.
func (t *Task) Execute() {
	defer func() {
		if r := recover(); r != nil {
			t.handle.complete(nil, panicError(r))
		}
	}()

	value, err := t.fn()
	t.handle.complete(value, err)
}

// Abandon fulfills the handle with ErrTaskAbandoned. Used for tasks that
// were still queued when their pool shut down.
func (t *Task) Abandon() {
	t.handle.complete(nil, ErrTaskAbandoned)
}

func panicError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("sched: task panicked: %v", r)
}

// Handle is a future-like view of a task's completion. It is safe to wait
// on a handle from multiple goroutines.
type Handle struct {
	done  chan struct{}
	value interface{}
	err   error
}

// complete fulfills the handle. Calling it twice is a no-op for the second
// caller; the first result wins.
func (h *Handle) complete(value interface{}, err error) {
	select {
	case <-h.done:
		return
	default:
	}
	h.value = value
	h.err = err
	close(h.done)
}

// Done returns a channel that is closed when the task has completed
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the task completes or the context is cancelled, and
// returns the task's result or propagated failure.
func (h *Handle) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
