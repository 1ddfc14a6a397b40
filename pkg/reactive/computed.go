package reactive

import (
	"sync"
	"sync/atomic"
)

// Computed is a derived, read-only cell. Its value is cached and the
// computation re-runs only when a dependency changed.
//
// The recompute policy is hybrid. While the Computed has no subscribers
// it is lazy: a write to a source only marks it stale and the next Get
// recomputes. Once anything subscribes (another Computed, an Effect, a
// binding, a watcher) it becomes eager: the scheduler recomputes it
// during the same flush pass as its sources, strictly before its own
// subscribers run, so they never observe a stale value. Either way a
// flush pass recomputes it at most once, no matter how many of its
// sources changed.
type Computed[T any] struct {
	core    *signalCore
	compute func() T

	value   T
	valueMu sync.RWMutex

	// stale is set on source writes; cleared by recompute.
	stale atomic.Bool

	// changed is set when a recompute produced a non-equal value and
	// consumed by the flush pass to decide whether dependents run.
	changed atomic.Bool

	// computing breaks recursion on circular reads.
	computing atomic.Bool

	deps  depSet
	equal func(T, T) bool
}

// ComputedOption configures a Computed at creation.
type ComputedOption[T any] func(*Computed[T])

// WithComputedEquals sets the equality policy used to decide whether a
// recompute changed the value and dependents must run.
func WithComputedEquals[T any](fn func(T, T) bool) ComputedOption[T] {
	return func(c *Computed[T]) {
		c.equal = fn
	}
}

// NewComputed creates a derived cell. Dependencies are tracked
// automatically from the reads compute performs. The first computation
// runs lazily on the first Get.
func NewComputed[T any](rt *Runtime, compute func() T, opts ...ComputedOption[T]) *Computed[T] {
	c := &Computed[T]{
		core:    newSignalCore(rt),
		compute: compute,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.stale.Store(true)
	return c
}

// Derive creates a Computed over one explicit source. The function
// receives the source's current value; it cannot read anything
// untracked by accident.
func Derive[S, T any](src *State[S], fn func(S) T) *Computed[T] {
	return NewComputed(src.core.rt, func() T {
		return fn(src.Get())
	})
}

// Derive2 creates a Computed over two explicit sources.
func Derive2[A, B, T any](a *State[A], b *State[B], fn func(A, B) T) *Computed[T] {
	return NewComputed(a.core.rt, func() T {
		return fn(a.Get(), b.Get())
	})
}

// Get returns the derived value, recomputing first if a dependency
// changed since the last computation. Subscribes the current
// subscriber when called during a tracked evaluation.
func (c *Computed[T]) Get() T {
	c.core.rt.recordRead(c.core)

	if c.stale.Load() {
		c.recompute()
	}

	c.valueMu.RLock()
	value := c.value
	c.valueMu.RUnlock()
	return value
}

// Peek returns the derived value without subscribing. Still recomputes
// if stale.
func (c *Computed[T]) Peek() T {
	if c.stale.Load() {
		c.recompute()
	}
	c.valueMu.RLock()
	defer c.valueMu.RUnlock()
	return c.value
}

// Subscribe registers fn to run after every flush in which this value
// changed. The returned function cancels the subscription.
func (c *Computed[T]) Subscribe(fn func(T)) (cancel func()) {
	w := &computedWatcher[T]{
		idVal: c.core.rt.nextID(),
		comp:  c,
		fn:    fn,
	}
	c.core.subscribe(w)
	return func() {
		if w.done.CompareAndSwap(false, true) {
			c.core.unsubscribe(w.idVal)
		}
	}
}

// ID returns the unique identifier of this cell.
func (c *Computed[T]) ID() uint64 {
	return c.core.id
}

// SubscriberCount reports how many downstream computeds, effects and
// watchers currently observe the cell.
func (c *Computed[T]) SubscriberCount() int {
	return c.core.subscriberCount()
}

// recompute runs the computation under tracking, re-diffing the
// dependency set and recording whether the value changed.
func (c *Computed[T]) recompute() {
	if c.computing.Swap(true) {
		// Circular dependency; keep the cached value.
		return
	}
	defer c.computing.Store(false)

	var newValue T
	c.core.rt.runTracked(c, &c.deps, func() {
		newValue = c.compute()
	})

	c.valueMu.Lock()
	changed := !c.equals(c.value, newValue)
	c.value = newValue
	c.valueMu.Unlock()

	c.stale.Store(false)
	if changed {
		c.changed.Store(true)
	}
	c.core.depthVal.Store(int32(c.deps.rank()))
	c.core.rt.metrics.recomputed()
}

func (c *Computed[T]) equals(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return defaultEquals(a, b)
}

// ownCore exposes the Computed's cell to the scheduler so a flush pass
// can traverse its subscribers transitively.
func (c *Computed[T]) ownCore() *signalCore { return c.core }

// subscriber interface

func (c *Computed[T]) sid() uint64 { return c.core.id }

func (c *Computed[T]) rank() int { return c.deps.rank() }

func (c *Computed[T]) sourceIDs() []uint64 { return c.deps.ids() }

func (c *Computed[T]) alive() bool { return true }

// eager reports whether this Computed participates in flush passes.
// The lazy-to-eager transition trigger is subscriber count going 0 to 1.
func (c *Computed[T]) eager() bool { return c.core.subscriberCount() > 0 }

// markStale invalidates the cached value and cascades through
// downstream Computeds. The CAS keeps the cascade linear even when
// several sources of the same Computed change in one tick.
func (c *Computed[T]) markStale() {
	if c.stale.CompareAndSwap(false, true) {
		c.core.invalidate()
	}
}

// flush recomputes during a flush pass and, when the value changed,
// marks this cell changed so dependents at greater depth run too.
func (c *Computed[T]) flush(p *flushPass) {
	if c.stale.Load() {
		c.recompute()
	}
	if c.changed.CompareAndSwap(true, false) {
		p.markChanged(c.core.id)
	}
}

// computedWatcher delivers flushed changes of a Computed to a callback.
type computedWatcher[T any] struct {
	idVal uint64
	comp  *Computed[T]
	fn    func(T)
	done  atomic.Bool
}

func (w *computedWatcher[T]) sid() uint64 { return w.idVal }

func (w *computedWatcher[T]) rank() int { return w.comp.core.depth() + 1 }

func (w *computedWatcher[T]) sourceIDs() []uint64 { return []uint64{w.comp.core.id} }

func (w *computedWatcher[T]) alive() bool { return !w.done.Load() }

func (w *computedWatcher[T]) markStale() {}

func (w *computedWatcher[T]) eager() bool { return true }

func (w *computedWatcher[T]) flush(*flushPass) { w.fn(w.comp.Peek()) }
