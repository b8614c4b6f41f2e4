package qutex

// Guard gives exclusive access to the guarded value between a grant and
// its Unlock. At most one Guard per lock is ever live; it must not be
// copied or duplicated.
type Guard[T any] struct {
	lock *Qutex[T] // nil once unlocked
}

// Value returns the guarded value. The pointer is valid only until
// Unlock; keeping it beyond that breaks exclusivity.
func (g *Guard[T]) Value() *T {
	if g.lock == nil {
		panic("qutex: Value of unlocked Guard")
	}
	return &g.lock.inner.val
}

// Unlock releases exclusivity, immediately hands the lock to the next
// queued claim, and gives up the Guard's handle.
func (g *Guard[T]) Unlock() {
	if g.lock == nil {
		panic("qutex: Unlock of unlocked Guard")
	}
	lock := g.lock
	g.lock = nil
	lock.inner.unlock()
	lock.Close()
}
