package reactive

import (
	"errors"
	"testing"
	"time"
)

func TestStateBasic(t *testing.T) {
	rt := newTestRuntime()
	count := NewState(rt, 0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	if err := count.Set(5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	if err := count.Update(func(n int) int { return n * 2 }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestStateEqualsShortCircuit(t *testing.T) {
	rt := newTestRuntime()
	count := NewState(rt, 7)

	if err := count.Set(7); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if rt.HasPending() {
		t.Error("redundant write must not enqueue a flush")
	}

	runs := 0
	NewEffect(rt, func() Cleanup {
		_ = count.Get()
		runs++
		return nil
	})
	if runs != 1 {
		t.Fatalf("expected 1 initial run, got %d", runs)
	}

	count.Set(7)
	if err := rt.FlushSync(); err != nil {
		t.Fatalf("FlushSync: %v", err)
	}
	if runs != 1 {
		t.Errorf("redundant write re-ran subscriber: runs=%d", runs)
	}
}

func TestStateCustomEquals(t *testing.T) {
	rt := newTestRuntime()
	// Treat values as equal modulo 10.
	s := NewState(rt, 3, WithEquals[int](func(a, b int) bool { return a%10 == b%10 }))

	s.Set(13)
	if rt.HasPending() {
		t.Error("equal-modulo write enqueued a flush")
	}
	s.Set(4)
	if !rt.HasPending() {
		t.Error("changed write did not enqueue a flush")
	}
}

func TestStateDeepEquals(t *testing.T) {
	rt := newTestRuntime()
	s := NewState(rt, []int{1, 2}, WithDeepEquals[[]int]())

	s.Set([]int{1, 2})
	if rt.HasPending() {
		t.Error("deep-equal write enqueued a flush")
	}
	s.Set([]int{1, 2, 3})
	if !rt.HasPending() {
		t.Error("deep-unequal write did not enqueue a flush")
	}
}

func TestStateValidator(t *testing.T) {
	rt := newTestRuntime()
	errNegative := errors.New("negative")
	s := NewState(rt, 1, WithValidator[int](func(v int) error {
		if v < 0 {
			return errNegative
		}
		return nil
	}))

	err := s.Set(-1)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if !errors.Is(err, errNegative) {
		t.Error("ValidationError should unwrap to the validator error")
	}
	if s.Get() != 1 {
		t.Errorf("rejected write mutated the value: %d", s.Get())
	}
	if rt.HasPending() {
		t.Error("rejected write enqueued a flush")
	}
}

func TestStateSubscribe(t *testing.T) {
	rt := newTestRuntime()
	s := NewState(rt, "a")

	var got []string
	cancel := s.Subscribe(func(v string) { got = append(got, v) })

	if len(got) != 0 {
		t.Fatal("Subscribe must not fire for the current value")
	}

	s.Set("b")
	rt.FlushSync()
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected [b], got %v", got)
	}

	cancel()
	s.Set("c")
	rt.FlushSync()
	if len(got) != 1 {
		t.Errorf("cancelled subscription still fired: %v", got)
	}
	if s.core.subscriberCount() != 0 {
		t.Errorf("subscriber set not empty after cancel: %d", s.core.subscriberCount())
	}
}

func TestStateWritesCoalesce(t *testing.T) {
	rt := newTestRuntime()
	c := NewState(rt, 0)

	var seen []int
	NewEffect(rt, func() Cleanup {
		seen = append(seen, c.Get())
		return nil
	})

	// Two rapid writes before a flush: exactly one re-render, with the
	// latest value.
	c.Set(1)
	c.Set(2)
	if err := rt.FlushSync(); err != nil {
		t.Fatalf("FlushSync: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("expected 2 runs (initial + one flush), got %d: %v", len(seen), seen)
	}
	if seen[1] != 2 {
		t.Errorf("flush observed %d, want 2", seen[1])
	}
}

func TestStateThrottle(t *testing.T) {
	rt := newTestRuntime()
	c := NewState(rt, 0, WithThrottle[int](80*time.Millisecond))

	var seen []int
	NewEffect(rt, func() Cleanup {
		seen = append(seen, c.Get())
		return nil
	})
	seen = nil // drop the initial run

	for i := 1; i <= 10; i++ {
		c.Set(i)
	}
	rt.FlushSync()

	// Within the window only the leading write flushes.
	if len(seen) != 1 {
		t.Fatalf("expected 1 flush inside the window, got %d: %v", len(seen), seen)
	}

	// The trailing flush delivers the final value once the window
	// elapses.
	deadline := time.Now().Add(2 * time.Second)
	for !rt.HasPending() {
		if time.Now().After(deadline) {
			t.Fatal("trailing flush never enqueued")
		}
		time.Sleep(5 * time.Millisecond)
	}
	rt.FlushSync()
	if len(seen) != 2 || seen[1] != 10 {
		t.Fatalf("expected trailing flush with 10, got %v", seen)
	}
}

func TestUntracked(t *testing.T) {
	rt := newTestRuntime()
	a := NewState(rt, 1)
	b := NewState(rt, 1)

	runs := 0
	NewEffect(rt, func() Cleanup {
		_ = a.Get()
		rt.Untracked(func() { _ = b.Get() })
		runs++
		return nil
	})

	b.Set(2)
	rt.FlushSync()
	if runs != 1 {
		t.Errorf("untracked read created a dependency: runs=%d", runs)
	}

	a.Set(2)
	rt.FlushSync()
	if runs != 2 {
		t.Errorf("tracked read did not create a dependency: runs=%d", runs)
	}
}

func TestPeekDoesNotSubscribe(t *testing.T) {
	rt := newTestRuntime()
	s := NewState(rt, 42)

	runs := 0
	NewEffect(rt, func() Cleanup {
		_ = s.Peek()
		runs++
		return nil
	})

	s.Set(43)
	rt.FlushSync()
	if runs != 1 {
		t.Errorf("Peek subscribed the effect: runs=%d", runs)
	}
}

func TestBatch(t *testing.T) {
	rt := newTestRuntime()
	first := NewState(rt, "")
	last := NewState(rt, "")

	var seen []string
	NewEffect(rt, func() Cleanup {
		seen = append(seen, first.Get()+" "+last.Get())
		return nil
	})
	seen = nil

	rt.Batch(func() {
		first.Set("Ada")
		last.Set("Lovelace")
	})
	rt.FlushSync()

	if len(seen) != 1 || seen[0] != "Ada Lovelace" {
		t.Fatalf("expected one run with both writes, got %v", seen)
	}
}

func TestSubscriberOrderWithinDepth(t *testing.T) {
	rt := newTestRuntime()
	s := NewState(rt, 0)

	var order []string
	NewEffect(rt, func() Cleanup {
		_ = s.Get()
		order = append(order, "first")
		return nil
	})
	NewEffect(rt, func() Cleanup {
		_ = s.Get()
		order = append(order, "second")
		return nil
	})
	order = nil

	s.Set(1)
	rt.FlushSync()
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("same-depth subscribers ran out of registration order: %v", order)
	}
}
