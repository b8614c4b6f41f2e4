package qutex

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPollTransitions(t *testing.T) {
	q := New(1)

	held, ok := q.TryLock()
	if !ok {
		t.Fatal("TryLock on a fresh lock failed")
	}

	fg := q.Clone().Lock()
	for i := 0; i < 3; i++ {
		if _, done, err := fg.Poll(); done || err != nil {
			t.Fatalf("poll %d: done=%v err=%v while the lock is held", i, done, err)
		}
	}

	held.Unlock()
	g, done, err := fg.Poll()
	if !done || err != nil {
		t.Fatalf("poll after release: done=%v err=%v", done, err)
	}
	g.Unlock()
}

func TestPollAfterCompletionPanics(t *testing.T) {
	q := New(0)
	fg := q.Clone().Lock()
	g, err := fg.Wait()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	g.Unlock()

	defer func() {
		if recover() == nil {
			t.Error("Expected panic polling a completed FutureGuard")
		}
	}()
	fg.Poll()
}

func TestWaitContext(t *testing.T) {
	q := New(0)

	held, ok := q.TryLock()
	if !ok {
		t.Fatal("TryLock on a fresh lock failed")
	}

	fg := q.Clone().Lock()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if _, err := fg.WaitContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected DeadlineExceeded, got %v", err)
	}

	// The claim is still queued; it resolves once the holder lets go.
	held.Unlock()
	g, err := fg.WaitContext(context.Background())
	if err != nil {
		t.Fatalf("second WaitContext: %v", err)
	}
	g.Unlock()
}

// A cancellation that loses the race against its own grant must release
// the lock rather than leak it.
func TestCancelAfterGrantReleasesLock(t *testing.T) {
	q := New(0)
	fg := q.Clone().Lock()

	// Drive the queue so the grant fires before anyone waits on it.
	q.inner.processQueue()

	fg.Cancel()

	g, ok := q.TryLock()
	if !ok {
		t.Fatal("lock stayed held after a post-grant cancellation")
	}
	g.Unlock()
}

func TestCancelAfterCompletionPanics(t *testing.T) {
	q := New(0)
	fg := q.Clone().Lock()
	fg.Cancel()

	defer func() {
		if recover() == nil {
			t.Error("Expected panic canceling a completed FutureGuard")
		}
	}()
	fg.Cancel()
}
