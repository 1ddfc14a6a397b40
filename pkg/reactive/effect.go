package reactive

import "sync/atomic"

// Cleanup is returned by an effect function to release resources. It
// runs before the effect re-runs and when the effect is disposed.
type Cleanup func()

// Effect is a reactive side effect. It runs once at creation and again
// after every flush in which a dependency changed. Dependencies are
// tracked automatically from the reads the function performs.
type Effect struct {
	idVal uint64
	rt    *Runtime
	fn    func() Cleanup

	cleanup  Cleanup
	deps     depSet
	owner    *Owner
	disposed atomic.Bool
}

// NewEffect creates and immediately runs an effect. If a current Owner
// is set on the runtime, the effect is registered with it and disposed
// when the owner is disposed.
func NewEffect(rt *Runtime, fn func() Cleanup) *Effect {
	e := &Effect{
		idVal: rt.nextID(),
		rt:    rt,
		fn:    fn,
		owner: rt.currentOwner(),
	}
	if e.owner != nil {
		e.owner.registerEffect(e)
	}
	e.run()
	return e
}

// run executes the effect under tracking, re-diffing its dependency
// set against what the run actually read.
func (e *Effect) run() {
	if e.disposed.Load() {
		return
	}

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.rt.runTracked(e, &e.deps, func() {
		e.cleanup = e.fn()
	})
}

// Refresh re-runs the effect immediately, outside any flush. The
// dependency set is re-tracked as in a scheduled run. Returns
// ErrDisposed if the effect has been torn down.
func (e *Effect) Refresh() error {
	if e.disposed.Load() {
		return ErrDisposed
	}
	e.run()
	return nil
}

// Dispose stops the effect, runs its cleanup, and removes it from the
// subscriber set of every source it depends on. Safe to call more than
// once; a disposed effect queued for the current flush is skipped.
func (e *Effect) Dispose() {
	if e.disposed.Swap(true) {
		return
	}

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
	e.deps.release(e)
}

// IsDisposed reports whether the effect has been disposed.
func (e *Effect) IsDisposed() bool {
	return e.disposed.Load()
}

// ID returns the unique identifier of this effect.
func (e *Effect) ID() uint64 {
	return e.idVal
}

// subscriber interface

func (e *Effect) sid() uint64 { return e.idVal }

func (e *Effect) rank() int { return e.deps.rank() }

func (e *Effect) sourceIDs() []uint64 { return e.deps.ids() }

func (e *Effect) alive() bool { return !e.disposed.Load() }

func (e *Effect) eager() bool { return true }

func (e *Effect) markStale() {}

func (e *Effect) flush(*flushPass) { e.run() }

// OnChange runs fn with the source values on every flushed change but
// not for the current values. It is the explicit-sources form of an
// effect over two cells.
func OnChange[A, B any](a *State[A], b *State[B], fn func(A, B)) *Effect {
	first := true
	return NewEffect(a.core.rt, func() Cleanup {
		av, bv := a.Get(), b.Get()
		if first {
			first = false
			return nil
		}
		fn(av, bv)
		return nil
	})
}
