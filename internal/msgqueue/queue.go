// Package msgqueue provides a blocking, cancellable FIFO usable by
// multiple producers and multiple consumers.
//
// Unlike a plain channel it supports priority re-insertion (PushFront)
// and bounded-wait pops, both of which the engine's dispatch and
// response-retrieval loops rely on.
package msgqueue

import (
	"sync"
	"time"
)

// Queue is a thread-safe FIFO over items of type T.
//
// Ordering is FIFO among items inserted via Push. PushFront violates FIFO
// intentionally and is reserved for re-queuing items that were popped but
// not consumed (e.g. a response that did not match the id a consumer was
// waiting for).
type Queue[T any] struct {
	mu      sync.Mutex
	items   []T
	wake    chan struct{} // closed and replaced on every insert/stop
	stopped bool
}

// New creates an empty Queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{wake: make(chan struct{})}
}

// Push appends item at the back of the queue and wakes waiters.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.signalLocked()
	q.mu.Unlock()
}

// PushFront inserts item at the front of the queue and wakes waiters.
func (q *Queue[T]) PushFront(item T) {
	q.mu.Lock()
	q.items = append([]T{item}, q.items...)
	q.signalLocked()
	q.mu.Unlock()
}

// TryPop removes and returns the front item without blocking.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

// WaitPopFor removes and returns the front item, blocking up to timeout
// for one to arrive. Returns false on timeout, or when the queue was
// stopped and is fully drained.
func (q *Queue[T]) WaitPopFor(timeout time.Duration) (T, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		q.mu.Lock()
		if item, ok := q.popLocked(); ok {
			q.mu.Unlock()
			return item, true
		}
		if q.stopped {
			q.mu.Unlock()
			var zero T
			return zero, false
		}
		wake := q.wake
		q.mu.Unlock()

		select {
		case <-wake:
		case <-timer.C:
			// One last attempt in case an insert raced the timer.
			return q.TryPop()
		}
	}
}

// Stop wakes all waiters. Subsequent pops drain remaining items, then
// report empty. Pushes after Stop are still accepted and drained.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.stopped {
		q.stopped = true
		q.signalLocked()
	}
	q.mu.Unlock()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Empty reports whether the queue holds no items.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

// Clear discards all queued items.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}

func (q *Queue[T]) popLocked() (T, bool) {
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// signalLocked wakes every goroutine blocked in WaitPopFor. Closing the
// channel broadcasts; a fresh channel is installed for the next round.
func (q *Queue[T]) signalLocked() {
	close(q.wake)
	q.wake = make(chan struct{})
}
