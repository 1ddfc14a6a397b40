package reactive

import (
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

// signalCore provides type-erased subscriber management. It is
// embedded in State[T] and Computed[T] to share subscription logic.
type signalCore struct {
	id uint64
	rt *Runtime

	// depthVal is the dependency depth of this cell: 0 for a writable
	// State, 1 + max(source depth) for a Computed.
	depthVal atomic.Int32

	// subs are the subscribers of this cell, in subscription order.
	// The order is never changed by writes; it defines flush order
	// within a dependency depth.
	subs  []subscriber
	subMu sync.RWMutex
}

func newSignalCore(rt *Runtime) *signalCore {
	return &signalCore{id: rt.nextID(), rt: rt}
}

// depth returns the committed dependency depth of this cell.
func (c *signalCore) depth() int {
	return int(c.depthVal.Load())
}

// subscribe appends a subscriber, deduplicating by ID so repeated
// reads within one evaluation do not grow the list.
func (c *signalCore) subscribe(sub subscriber) {
	if sub == nil {
		return
	}

	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := sub.sid()
	for _, existing := range c.subs {
		if existing.sid() == id {
			return
		}
	}
	c.subs = append(c.subs, sub)
	c.rt.metrics.subscriptionAdded()
}

// unsubscribe removes a subscriber by ID, preserving the order of the
// remaining subscribers.
func (c *signalCore) unsubscribe(id uint64) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	for i, existing := range c.subs {
		if existing.sid() == id {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			c.rt.metrics.subscriptionRemoved()
			return
		}
	}
}

// subscribers returns a snapshot of the subscriber list.
func (c *signalCore) subscribers() []subscriber {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	subs := make([]subscriber, len(c.subs))
	copy(subs, c.subs)
	return subs
}

// subscriberCount reports the current number of subscribers.
func (c *signalCore) subscriberCount() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subs)
}

// invalidate marks every downstream Computed stale without
// recomputing anything. Called synchronously on a write so lazy reads
// between the write and the flush observe fresh values.
func (c *signalCore) invalidate() {
	for _, sub := range c.subscribers() {
		sub.markStale()
	}
}

// State is a writable reactive value cell. Reading it during a tracked
// evaluation subscribes the current subscriber; writing it enqueues a
// flush through the owning Runtime's scheduler.
type State[T any] struct {
	core *signalCore

	mu    sync.RWMutex
	value T

	// equal short-circuits redundant writes. Nil means the
	// type-appropriate default.
	equal    func(T, T) bool
	validate func(T) error

	// throttle coalesces writes within the window to the latest value,
	// flushing at most once per window.
	throttle  time.Duration
	thrMu     sync.Mutex
	lastQueue time.Time
	trailing  bool
}

// StateOption configures a State at creation.
type StateOption[T any] func(*State[T])

// WithEquals sets a custom equality policy. Writes where the new value
// equals the current one are dropped without a flush.
func WithEquals[T any](fn func(T, T) bool) StateOption[T] {
	return func(s *State[T]) {
		s.equal = fn
	}
}

// WithDeepEquals forces reflect.DeepEqual even for comparable types.
// Useful for object and array state mutated through copies.
func WithDeepEquals[T any]() StateOption[T] {
	return func(s *State[T]) {
		s.equal = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
}

// WithThrottle coalesces writes inside the window to the latest value.
// The cell flushes at most once per window; a trailing flush delivers
// the final value when the window elapses.
func WithThrottle[T any](window time.Duration) StateOption[T] {
	return func(s *State[T]) {
		s.throttle = window
	}
}

// WithValidator rejects writes that fail fn. The rejection is reported
// synchronously from Set as a ValidationError; no flush is enqueued.
func WithValidator[T any](fn func(T) error) StateOption[T] {
	return func(s *State[T]) {
		s.validate = fn
	}
}

// NewState creates a writable cell with the given initial value.
func NewState[T any](rt *Runtime, initial T, opts ...StateOption[T]) *State[T] {
	s := &State[T]{
		core:  newSignalCore(rt),
		value: initial,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the current value and subscribes the current subscriber,
// if an evaluation is being tracked.
func (s *State[T]) Get() T {
	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	s.core.rt.recordRead(s.core)
	return value
}

// Peek returns the current value without subscribing.
func (s *State[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set stores a new value and enqueues a flush. A value equal to the
// current one (under the cell's equality policy) is a no-op: no flush,
// no notification. A value rejected by the validator returns a
// ValidationError and changes nothing.
func (s *State[T]) Set(value T) error {
	if s.validate != nil {
		if err := s.validate(value); err != nil {
			return &ValidationError{Signal: s.core.id, Err: err}
		}
	}

	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.core.invalidate()
		s.queue()
	}
	return nil
}

// Update atomically reads and replaces the value. Equality and
// validation policies apply as in Set.
func (s *State[T]) Update(fn func(T) T) error {
	s.mu.RLock()
	current := s.value
	s.mu.RUnlock()
	return s.Set(fn(current))
}

// Subscribe registers fn to run on every flushed change of this cell.
// It does not fire for the current value. The returned function cancels
// the subscription and removes it from the cell's subscriber set.
func (s *State[T]) Subscribe(fn func(T)) (cancel func()) {
	w := &watcher[T]{
		idVal: s.core.rt.nextID(),
		state: s,
		fn:    fn,
	}
	s.core.subscribe(w)
	return func() {
		if w.done.CompareAndSwap(false, true) {
			s.core.unsubscribe(w.idVal)
		}
	}
}

// ID returns the unique identifier of this cell.
func (s *State[T]) ID() uint64 {
	return s.core.id
}

// SubscriberCount reports how many computeds, effects and watchers
// currently observe the cell. Useful for leak checks in tests.
func (s *State[T]) SubscriberCount() int {
	return s.core.subscriberCount()
}

func (s *State[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// queue hands the cell to the scheduler, honoring the throttle window.
func (s *State[T]) queue() {
	if s.throttle <= 0 {
		s.core.rt.enqueue(s.core)
		return
	}

	s.thrMu.Lock()
	now := time.Now()
	remaining := s.throttle - now.Sub(s.lastQueue)
	if remaining > 0 {
		if !s.trailing {
			s.trailing = true
			time.AfterFunc(remaining, s.trailingFlush)
		}
		s.thrMu.Unlock()
		s.core.rt.metrics.writeCoalesced()
		return
	}
	s.lastQueue = now
	s.thrMu.Unlock()

	s.core.rt.enqueue(s.core)
}

// trailingFlush delivers the latest coalesced value once the throttle
// window has elapsed.
func (s *State[T]) trailingFlush() {
	s.thrMu.Lock()
	s.trailing = false
	s.lastQueue = time.Now()
	s.thrMu.Unlock()

	s.core.rt.enqueue(s.core)
}

// watcher delivers flushed changes of a single State to a callback.
type watcher[T any] struct {
	idVal uint64
	state *State[T]
	fn    func(T)
	done  atomic.Bool
}

func (w *watcher[T]) sid() uint64 { return w.idVal }

func (w *watcher[T]) rank() int { return w.state.core.depth() + 1 }

func (w *watcher[T]) sourceIDs() []uint64 { return []uint64{w.state.core.id} }

func (w *watcher[T]) alive() bool { return !w.done.Load() }

func (w *watcher[T]) markStale() {}

func (w *watcher[T]) eager() bool { return true }

func (w *watcher[T]) flush(*flushPass) { w.fn(w.state.Peek()) }

// defaultEquals provides type-appropriate equality: == for the common
// comparable kinds, reflect.DeepEqual for everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case float32:
		return av == any(b).(float32)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}
