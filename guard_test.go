package qutex

import "testing"

func TestDoubleUnlockPanics(t *testing.T) {
	q := New(0)
	g, err := q.Clone().Lock().Wait()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	g.Unlock()

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on double Unlock")
		}
	}()
	g.Unlock()
}

func TestValueAfterUnlockPanics(t *testing.T) {
	q := New(0)
	g, err := q.Clone().Lock().Wait()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	g.Unlock()

	defer func() {
		if recover() == nil {
			t.Error("Expected panic reading through an unlocked Guard")
		}
	}()
	_ = g.Value()
}
