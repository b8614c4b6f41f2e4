// Package qutex implements an asynchronously waitable, queue-backed
// exclusive data lock. A Qutex guards a single value: Lock queues a claim
// and returns a future that resolves into a Guard once the claim is
// granted, so a waiter never blocks a thread unless it explicitly asks to.
package qutex

import (
	"errors"
	"sync/atomic"
)

// Lock word values. Anything else observed in the word means the state is
// corrupt and the process cannot continue.
const (
	statusUnlocked uint32 = 0
	statusLocked   uint32 = 1
)

// ErrCanceled is reported by a pending claim whose shared state was torn
// down before the grant could reach it.
var ErrCanceled = errors.New("qutex: lock request canceled")

// request is one queued claim on the lock: the grant side of the waiter's
// notifier.
type request struct {
	n *notifier
}

// inner is the state shared by every handle cloned from the same lock: the
// lock word, the guarded value, the pending queue, and the handle count.
type inner[T any] struct {
	status atomic.Uint32
	refs   atomic.Int64
	val    T
	queue  *fifo[*request]
}

// Qutex is a cloneable handle to one queue-backed exclusive data lock.
// Handles sharing a lock are created with Clone, never by copying the
// struct value.
type Qutex[T any] struct {
	inner *inner[T]
}

// New creates a lock guarding val: unlocked, empty queue, one handle.
func New[T any](val T) *Qutex[T] {
	in := &inner[T]{val: val, queue: newFIFO[*request]()}
	in.refs.Store(1)
	return &Qutex[T]{inner: in}
}

// Clone returns a new handle to the same lock.
func (q *Qutex[T]) Clone() *Qutex[T] {
	q.inner.refs.Add(1)
	return &Qutex[T]{inner: q.inner}
}

// Close gives up this handle. When the last handle is gone the shared
// state is torn down and every claim still in the queue resolves with
// ErrCanceled. Closing a handle that was already passed to Lock abandons
// that claim's handle the same way.
func (q *Qutex[T]) Close() {
	switch n := q.inner.refs.Add(-1); {
	case n > 0:
	case n == 0:
		q.inner.teardown()
	default:
		panic("qutex: Close of released handle")
	}
}

// Lock appends a claim to the queue and returns the future that will
// resolve into its Guard. The handle now belongs to the future: Clone
// first if the handle is still needed for anything else.
func (q *Qutex[T]) Lock() *FutureGuard[T] {
	n := newNotifier()
	q.inner.queue.push(&request{n: n})
	return &FutureGuard[T]{lock: q, n: n}
}

// TryLock acquires the lock immediately when it is free and no claim is
// queued ahead. On success the returned Guard owns a fresh clone of this
// handle.
func (q *Qutex[T]) TryLock() (*Guard[T], bool) {
	in := q.inner
	if !in.status.CompareAndSwap(statusUnlocked, statusLocked) {
		return nil, false
	}
	if !in.queue.empty() {
		// Queued claims go first; hand the win back to the queue head.
		in.unlock()
		return nil, false
	}
	return &Guard[T]{lock: q.Clone()}, true
}

// GetExclusive returns the guarded value directly, bypassing the lock word
// and the queue, when this is provably the only handle in existence. A
// sole handle already guarantees exclusivity: no Guard and no pending
// future can be alive without a handle of its own.
func (q *Qutex[T]) GetExclusive() (*T, bool) {
	if q.inner.refs.Load() != 1 {
		return nil, false
	}
	return &q.inner.val, true
}

// UnsafePtr returns the guarded value with no synchronization whatsoever.
// Nothing is checked: the caller alone is responsible for guaranteeing
// exclusivity for as long as the pointer is used. It exists for interop
// corners and for nothing else.
func (q *Qutex[T]) UnsafePtr() *T {
	return &q.inner.val
}

// processQueue advances the lock to the next queued claim. It is safe to
// call redundantly from any number of goroutines: the CAS on the lock word
// lets at most one caller perform the pop-and-grant (or the revert) for a
// given transition, and everyone else no-ops.
func (in *inner[T]) processQueue() {
	for {
		switch in.status.Load() {
		case statusUnlocked:
			if !in.status.CompareAndSwap(statusUnlocked, statusLocked) {
				continue
			}
			for {
				req, ok := in.queue.pop()
				if !ok {
					// Nobody to grant to; put the word back. Recheck for
					// a push that raced the revert, otherwise that claim
					// could miss its wakeup.
					in.status.Store(statusUnlocked)
					if in.queue.empty() {
						return
					}
					break // go around and try to win the word again
				}
				if req.n.fire() {
					return
				}
				// The waiter abandoned this claim after queuing it;
				// move on to the next one.
			}
		case statusLocked:
			// A holder or an in-flight grant owns progress.
			return
		default:
			panic("qutex: corrupt lock status")
		}
	}
}

// unlock releases the lock and immediately chains to the next claim.
func (in *inner[T]) unlock() {
	in.status.Store(statusUnlocked)
	in.processQueue()
}

// teardown runs once the last handle is released. Claims still queued at
// that point can never be granted, so their waiters are resolved as
// canceled.
func (in *inner[T]) teardown() {
	for {
		req, ok := in.queue.pop()
		if !ok {
			return
		}
		req.n.discard()
	}
}
