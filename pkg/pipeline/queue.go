// Package pipeline wires the Reader, Analyzer, Printer and Logger stages
// together with bounded handoff queues and a watchdog, and implements the
// shutdown choreography that drains every queue cleanly on exit.
package pipeline

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ja7ad/cuttrack/internal/wqueue"
)

// WorkerQueue is the bounded, single-consumer handoff between two stages.
// A producer calls PushAndSignal; the consumer blocks in WaitAndPop.
// Either side can end the wait early with OrderTermination, and residual
// items can be reclaimed with Drain — both always go through the same
// mutex as PushAndSignal/WaitAndPop, so a drain can never race a live
// consumer for the same item.
type WorkerQueue[T any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	q       *wqueue.Queue[T]
	waiting bool
	alive   *atomic.Bool
}

// NewWorkerQueue builds an empty queue. alive is the liveness flag the
// queue's consumer is pinged through — pass nil if the caller pings its
// own liveness some other way.
func NewWorkerQueue[T any](alive *atomic.Bool) *WorkerQueue[T] {
	wq := &WorkerQueue[T]{q: wqueue.New[T](), alive: alive}
	wq.cond = sync.NewCond(&wq.mu)
	return wq
}

// lock acquires the queue's mutex, re-pinging the consumer's liveness flag
// on every retry. It is the Go stand-in for pthread_mutex_timedlock: Go's
// sync.Mutex has no timed variant, so a TryLock retry loop paced by
// LockSlice takes its place; it retries until the mutex is acquired.
func (q *WorkerQueue[T]) lock() {
	for !q.mu.TryLock() {
		time.Sleep(LockSlice)
		q.ping()
	}
	q.ping()
}

func (q *WorkerQueue[T]) ping() {
	if q.alive != nil {
		q.alive.Store(true)
	}
}

// PushAndSignal appends v to the tail and wakes a consumer blocked in
// WaitAndPop.
func (q *WorkerQueue[T]) PushAndSignal(v T) {
	q.lock()
	q.q.PushBack(v)
	q.cond.Signal()
	q.mu.Unlock()
}

// WaitAndPop blocks until an item is available or OrderTermination is
// called, in which case ok is false and v is the zero value.
func (q *WorkerQueue[T]) WaitAndPop() (v T, ok bool) {
	q.lock()
	defer q.mu.Unlock()

	q.waiting = true
	for q.q.Empty() && q.waiting {
		q.cond.Wait()
		q.ping()
	}
	q.waiting = false

	if q.q.Empty() {
		var zero T
		return zero, false
	}
	v, _ = q.q.PopFront()
	return v, true
}

// OrderTermination wakes any consumer blocked in WaitAndPop so it observes
// an empty, no-longer-waiting queue and returns immediately. This is how
// one stage tells the next one in the chain to stop.
func (q *WorkerQueue[T]) OrderTermination() {
	q.lock()
	q.waiting = false
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Drain removes and returns every item still queued, oldest first. Used
// once a stage has stopped consuming, to flush whatever it never got to.
func (q *WorkerQueue[T]) Drain() []T {
	q.lock()
	defer q.mu.Unlock()
	return q.q.Drain()
}

// Len reports the current queue depth.
func (q *WorkerQueue[T]) Len() int {
	q.lock()
	defer q.mu.Unlock()
	return q.q.Len()
}
