package sched

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is delivered through a handle when a task is submitted to
// a pool that has already shut down.
var ErrPoolClosed = errors.New("sched: pool is closed")

// minWorkers is the floor applied when hardware concurrency is unknown
const minWorkers = 2

// Pool owns a fixed set of worker goroutines draining one shared priority
// queue. A Pool must not be copied after first use; its identity is tied to
// the goroutines it owns.
type Pool struct {
	queue       *Queue
	workerCount int
	active      atomic.Int64 // Workers currently executing a task

	// pending counts submitted-but-unfinished tasks (queued or executing).
	// pendingCond is broadcast each time it reaches zero, which is what
	// WaitAll blocks on.
	pendingMu   sync.Mutex
	pendingCond *sync.Cond
	pending     int

	wg       sync.WaitGroup
	stopping atomic.Bool
	closeOne sync.Once
}

// NewPool creates a pool with the given number of workers and starts them.
// A count of zero or less falls back to hardware concurrency, with a
// minimum of two workers.
func NewPool(workerCount int) *Pool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
		if workerCount < minWorkers {
			workerCount = minWorkers
		}
	}

	p := &Pool{
		queue:       NewQueue(),
		workerCount: workerCount,
	}
	p.pendingCond = sync.NewCond(&p.pendingMu)

	p.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go p.worker()
	}

	return p
}

// worker is the main loop of each pool goroutine: pop a task, mark self
// active, execute, mark self inactive, repeat until the pool stops.
func (p *Pool) worker() {
	defer p.wg.Done()

	for !p.stopping.Load() {
		task, ok := p.queue.Pop()
		if !ok {
			return
		}
		if p.stopping.Load() {
			// Popped during shutdown; the task never gets to run.
			task.Abandon()
			p.taskFinished()
			return
		}

		p.active.Add(1)
		task.Execute()
		p.active.Add(-1)

		p.taskFinished()
	}
}

// Submit enqueues a task and returns a handle that can be awaited for the
// result or propagated failure. Submitting to a closed pool completes the
// handle immediately with ErrPoolClosed.
func (p *Pool) Submit(priority Priority, fn TaskFunc) *Handle {
	task := NewTask(priority, fn)

	if p.stopping.Load() {
		task.handle.complete(nil, ErrPoolClosed)
		return task.handle
	}

	p.pendingMu.Lock()
	p.pending++
	p.pendingMu.Unlock()

	p.queue.Push(task)
	return task.handle
}

// WaitAll blocks until every submitted task has finished. When it returns
// with no concurrent submitters, the queue is empty and no worker is
// executing a task.
func (p *Pool) WaitAll() {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()

	for p.pending > 0 {
		p.pendingCond.Wait()
	}
}

func (p *Pool) taskFinished() {
	p.pendingMu.Lock()
	p.pending--
	if p.pending == 0 {
		p.pendingCond.Broadcast()
	}
	p.pendingMu.Unlock()
}

// Close stops the queue and joins all workers. Tasks still queued when the
// workers exit never run; their handles are fulfilled with
// ErrTaskAbandoned so awaiting callers are not left hanging. Idempotent.
func (p *Pool) Close() {
	p.closeOne.Do(func() {
		p.stopping.Store(true)
		p.queue.Stop()
		p.wg.Wait()

		// Workers are gone; drain whatever they never picked up.
		for {
			task, ok := p.queue.TryPop()
			if !ok {
				break
			}
			task.Abandon()
			p.taskFinished()
		}
	})
}

// QueueSize returns the number of tasks waiting in the queue
func (p *Pool) QueueSize() int {
	return p.queue.Size()
}

// ActiveWorkers returns the number of workers currently executing a task
func (p *Pool) ActiveWorkers() int {
	return int(p.active.Load())
}

// WorkerCount returns the total number of workers in the pool
func (p *Pool) WorkerCount() int {
	return p.workerCount
}
