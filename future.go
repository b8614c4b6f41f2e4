package qutex

import "context"

// FutureGuard is an in-flight claim on the lock, created by Lock. It
// resolves exactly once, into a Guard or a cancellation; any Poll or Wait
// after that is a caller bug and panics, matching the misuse behavior of
// the sync package mutexes.
type FutureGuard[T any] struct {
	lock *Qutex[T] // nil once resolved
	n    *notifier
}

// Poll drives the lock forward and checks this claim without blocking.
// It returns (guard, true, nil) once the claim is granted,
// (nil, true, ErrCanceled) when the shared state was torn down first, and
// (nil, false, nil) while the claim is still pending. Every call helps
// advance the queue, whether or not this claim is at its head.
func (f *FutureGuard[T]) Poll() (*Guard[T], bool, error) {
	if f.lock == nil {
		panic("qutex: Poll of completed FutureGuard")
	}
	f.lock.inner.processQueue()
	granted, decided := f.n.poll()
	if !decided {
		return nil, false, nil
	}
	return f.resolve(granted)
}

// Wait parks the calling goroutine until the claim resolves. It is the
// blocking convenience over Poll, not a separate mechanism.
func (f *FutureGuard[T]) Wait() (*Guard[T], error) {
	if f.lock == nil {
		panic("qutex: Wait on completed FutureGuard")
	}
	f.lock.inner.processQueue()
	g, _, err := f.resolve(f.n.wait())
	return g, err
}

// WaitContext is Wait with a deadline. When ctx expires first it returns
// ctx.Err() and the claim stays pending and queued: the caller may Wait
// again or Cancel it.
func (f *FutureGuard[T]) WaitContext(ctx context.Context) (*Guard[T], error) {
	if f.lock == nil {
		panic("qutex: Wait on completed FutureGuard")
	}
	f.lock.inner.processQueue()
	select {
	case <-f.n.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	g, _, err := f.resolve(f.n.wait())
	return g, err
}

// Cancel abandons a pending claim. The queue entry itself stays behind;
// when it is eventually popped the grant skips it and moves on. If the
// grant had already fired by the time Cancel ran, the lock is released
// again so the win is not leaked.
func (f *FutureGuard[T]) Cancel() {
	if f.lock == nil {
		panic("qutex: Cancel of completed FutureGuard")
	}
	lock := f.lock
	f.lock = nil
	if f.n.cancelWaiter() {
		lock.inner.unlock()
	}
	lock.Close()
}

func (f *FutureGuard[T]) resolve(granted bool) (*Guard[T], bool, error) {
	if !granted {
		// The shared state is already torn down; the claim's handle
		// died with it.
		f.lock = nil
		return nil, true, ErrCanceled
	}
	g := &Guard[T]{lock: f.lock}
	f.lock = nil
	return g, true, nil
}
