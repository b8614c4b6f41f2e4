package qutex

import "sync"

// notifier is the single-use signal between a grant and one waiter. The
// grant side fires at most once; the waiter observes either the grant or
// that the grant side went away before firing. done is closed exactly
// once, after the outcome is recorded in fired.
type notifier struct {
	mu         sync.Mutex
	done       chan struct{}
	fired      bool
	decided    bool
	waiterGone bool
}

func newNotifier() *notifier {
	return &notifier{done: make(chan struct{})}
}

// fire hands the grant to the waiter. It reports false when the waiter
// abandoned the claim first; the caller must then pass the grant on.
func (n *notifier) fire() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.waiterGone || n.decided {
		return false
	}
	n.fired = true
	n.decided = true
	close(n.done)
	return true
}

// discard resolves the waiter, if one is still listening, as canceled:
// the shared state is gone and the grant can never arrive.
func (n *notifier) discard() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.decided {
		n.decided = true
		close(n.done)
	}
}

// cancelWaiter marks the waiter as gone and reports whether the grant had
// already fired, in which case the caller now owns the lock and must
// release it.
func (n *notifier) cancelWaiter() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.waiterGone = true
	return n.fired
}

// poll reports (granted, decided) without blocking.
func (n *notifier) poll() (bool, bool) {
	select {
	case <-n.done:
		return n.fired, true
	default:
		return false, false
	}
}

// wait blocks until the outcome is decided and reports whether the claim
// was granted.
func (n *notifier) wait() bool {
	<-n.done
	return n.fired
}
