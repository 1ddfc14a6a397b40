package reactive

import (
	"errors"
	"testing"
)

func TestFlushSyncEmptyQueue(t *testing.T) {
	rt := newTestRuntime()
	if err := rt.FlushSync(); err != nil {
		t.Fatalf("FlushSync on empty queue: %v", err)
	}
}

func TestWriteDuringFlushCascades(t *testing.T) {
	rt := newTestRuntime()
	a := NewState(rt, 0)
	b := NewState(rt, 0)

	// a drives b; a stabilizing cascade, not a cycle.
	NewEffect(rt, func() Cleanup {
		b.Set(a.Get() * 2)
		return nil
	})

	var seen []int
	NewEffect(rt, func() Cleanup {
		seen = append(seen, b.Get())
		return nil
	})
	seen = nil

	a.Set(3)
	if err := rt.FlushSync(); err != nil {
		t.Fatalf("FlushSync: %v", err)
	}
	if len(seen) != 1 || seen[0] != 6 {
		t.Fatalf("cascade result %v, want [6]", seen)
	}
}

func TestCycleErrorSurfaced(t *testing.T) {
	rt := newTestRuntime()
	a := NewState(rt, 0)

	// Writes its own dependency on every run; never stabilizes.
	NewEffect(rt, func() Cleanup {
		a.Set(a.Get() + 1)
		return nil
	})

	err := rt.FlushSync()
	if err == nil {
		t.Fatal("expected CycleError")
	}
	var cerr *CycleError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *CycleError, got %T", err)
	}
	if cerr.Iterations == 0 {
		t.Error("CycleError should report the iteration count")
	}
}

func TestCycleErrorIterationLimitConfigurable(t *testing.T) {
	rt := NewRuntime(
		WithScheduleFunc(func(func()) {}),
		WithMaxFlushIterations(5),
	)
	a := NewState(rt, 0)

	runs := 0
	NewEffect(rt, func() Cleanup {
		runs++
		a.Set(a.Get() + 1)
		return nil
	})

	err := rt.FlushSync()
	var cerr *CycleError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
	if cerr.Iterations != 5 {
		t.Errorf("iterations = %d, want 5", cerr.Iterations)
	}
}

func TestAsyncFlushReportsCycleToHandler(t *testing.T) {
	var handled error
	flushes := make(chan func(), 1)
	rt := NewRuntime(
		WithScheduleFunc(func(f func()) { flushes <- f }),
		WithErrorHandler(func(err error) { handled = err }),
		WithMaxFlushIterations(3),
	)
	a := NewState(rt, 0)

	NewEffect(rt, func() Cleanup {
		a.Set(a.Get() + 1)
		return nil
	})

	// Run the deferred flush the scheduler handed us.
	(<-flushes)()

	var cerr *CycleError
	if !errors.As(handled, &cerr) {
		t.Fatalf("error handler received %v, want CycleError", handled)
	}
}

func TestDeferredFlushScheduledOnce(t *testing.T) {
	scheduled := 0
	rt := NewRuntime(WithScheduleFunc(func(func()) { scheduled++ }))
	a := NewState(rt, 0)
	b := NewState(rt, 0)

	a.Set(1)
	b.Set(1)
	a.Set(2)

	if scheduled != 1 {
		t.Errorf("writes in the same tick scheduled %d flushes, want 1", scheduled)
	}
}

func TestReentrantFlushSyncNoDeadlock(t *testing.T) {
	rt := newTestRuntime()
	a := NewState(rt, 0)

	NewEffect(rt, func() Cleanup {
		_ = a.Get()
		// A subscriber calling back into FlushSync must not deadlock;
		// the outer loop drains everything.
		_ = rt.FlushSync()
		return nil
	})

	a.Set(1)
	if err := rt.FlushSync(); err != nil {
		t.Fatalf("FlushSync: %v", err)
	}
}

func TestIndependentRuntimes(t *testing.T) {
	rt1 := newTestRuntime()
	rt2 := newTestRuntime()

	s1 := NewState(rt1, 0)
	s2 := NewState(rt2, 0)

	runs1, runs2 := 0, 0
	NewEffect(rt1, func() Cleanup { _ = s1.Get(); runs1++; return nil })
	NewEffect(rt2, func() Cleanup { _ = s2.Get(); runs2++; return nil })
	runs1, runs2 = 0, 0

	s1.Set(1)
	rt1.FlushSync()
	rt2.FlushSync()

	if runs1 != 1 {
		t.Errorf("runtime 1 effect runs = %d, want 1", runs1)
	}
	if runs2 != 0 {
		t.Errorf("runtime 2 effect ran for a foreign write: %d", runs2)
	}
}

func TestSameDepthFlushOrderFollowsSubscription(t *testing.T) {
	rt := newTestRuntime()
	trigger := NewState(rt, 0)
	s := NewState(rt, 0)

	var order []string
	readS := false
	NewEffect(rt, func() Cleanup {
		_ = trigger.Get()
		if readS {
			_ = s.Get()
			order = append(order, "late")
		}
		return nil
	})
	NewEffect(rt, func() Cleanup {
		_ = s.Get()
		order = append(order, "early")
		return nil
	})

	// The first effect picks up s only on its second run, so it lands
	// after the second effect in s's subscriber list despite being
	// created first.
	readS = true
	trigger.Set(1)
	if err := rt.FlushSync(); err != nil {
		t.Fatal(err)
	}

	order = nil
	s.Set(1)
	if err := rt.FlushSync(); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "early" || order[1] != "late" {
		t.Fatalf("flush order = %v, want [early late]", order)
	}
}

func TestWriteDuringFlushTailReschedules(t *testing.T) {
	var flushes []func()
	rt := NewRuntime(WithScheduleFunc(func(f func()) { flushes = append(flushes, f) }))
	s := NewState(rt, 0)

	got := 0
	NewEffect(rt, func() Cleanup {
		got = s.Get()
		return nil
	})
	flushes = nil

	// A flush past its final empty take still holds the flushing flag.
	// A write landing in that window must not be stranded in the queue.
	rt.mu.Lock()
	rt.flushing = true
	rt.mu.Unlock()

	s.Set(7)
	if len(flushes) != 0 {
		t.Fatalf("write during flush scheduled %d flushes, want 0", len(flushes))
	}

	rt.finishFlush()
	if len(flushes) != 1 {
		t.Fatalf("finishFlush scheduled %d flushes, want 1", len(flushes))
	}
	flushes[0]()
	if got != 7 {
		t.Errorf("effect observed %d, want 7", got)
	}
}
