package qutex

import "sync/atomic"

// fifo is an unbounded multi-producer/multi-consumer queue in the
// Michael-Scott style. Both ends are driven purely by CAS on node
// pointers; callers need no external locking for concurrent push and pop.
type fifo[T any] struct {
	head atomic.Pointer[fifoNode[T]]
	tail atomic.Pointer[fifoNode[T]]
}

type fifoNode[T any] struct {
	val  T
	next atomic.Pointer[fifoNode[T]]
}

func newFIFO[T any]() *fifo[T] {
	q := new(fifo[T])
	sentinel := new(fifoNode[T])
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	return q
}

// push appends v at the tail.
func (q *fifo[T]) push(v T) {
	n := &fifoNode[T]{val: v}
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue
		}
		if next != nil {
			// Tail is lagging behind a finished push; help it along.
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if tail.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(tail, n)
			return
		}
	}
}

// pop removes and returns the oldest entry, or reports false when the
// queue is empty.
func (q *fifo[T]) pop() (T, bool) {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}
		if head == tail {
			if next == nil {
				var zero T
				return zero, false
			}
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if q.head.CompareAndSwap(head, next) {
			v := next.val
			var zero T
			next.val = zero // next is the new sentinel; let the value go
			return v, true
		}
	}
}

// empty reports whether the queue held no entries at the instant of the
// check.
func (q *fifo[T]) empty() bool {
	return q.head.Load().next.Load() == nil
}
