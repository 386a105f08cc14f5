package sched

import "sync"

// Queue is a thread-safe, unbounded task queue ordered by priority.
// Pop blocks until a task is available or the queue is stopped; stopping
// never discards tasks, remaining entries stay poppable until drained.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	lists   [numPriorities][]*Task // One FIFO list per priority level
	size    int
	stopped bool
}

// NewQueue creates an empty task queue
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push inserts a task unconditionally and wakes one blocked consumer.
// Pushing to a stopped queue is allowed; the task remains drainable.
func (q *Queue) Push(task *Task) {
	q.mu.Lock()
	q.lists[task.priority] = append(q.lists[task.priority], task)
	q.size++
	q.mu.Unlock()

	q.cond.Signal()
}

// Pop blocks until a task is available or the queue is stopped, then
// removes and returns the highest-priority task. It returns (nil, false)
// only once the queue is stopped and fully drained.
func (q *Queue) Pop() (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == 0 && !q.stopped {
		q.cond.Wait()
	}

	return q.popLocked()
}

// TryPop removes and returns the highest-priority task without blocking,
// or (nil, false) if the queue is empty.
func (q *Queue) TryPop() (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.popLocked()
}

func (q *Queue) popLocked() (*Task, bool) {
	for p := range q.lists {
		if len(q.lists[p]) == 0 {
			continue
		}
		task := q.lists[p][0]
		q.lists[p][0] = nil // Allow the task to be collected once executed
		q.lists[p] = q.lists[p][1:]
		q.size--
		return task, true
	}
	return nil, false
}

// Stop unblocks all blocked consumers. Subsequent Pop calls drain any
// remaining tasks and then return (nil, false). Idempotent.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()

	q.cond.Broadcast()
}

// Stopped reports whether Stop has been called
func (q *Queue) Stopped() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stopped
}

// Size returns the number of queued tasks
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Empty reports whether the queue holds no tasks
func (q *Queue) Empty() bool {
	return q.Size() == 0
}
