package reactive

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// defaultMaxFlushIterations bounds how many cascaded flush passes a
// single FlushSync may run before reporting a CycleError.
const defaultMaxFlushIterations = 100

// Runtime is an independent reactive universe. It owns the dependency
// tracking stack, the scheduler queue, and the ID space for every
// primitive created against it. Two Runtimes never interact.
//
// A Runtime follows the cooperative, event-loop model of the engine:
// subscriber evaluation happens on one goroutine at a time (the caller
// at creation, the scheduler during a flush). Writes may come from
// timers and are internally synchronized.
type Runtime struct {
	logger  *slog.Logger
	metrics *runtimeMetrics

	// schedule defers a flush, standing in for a microtask boundary.
	schedule func(func())

	// onError receives fatal scheduler errors (cycle detection) from
	// asynchronous flushes, where there is no caller to return to.
	onError func(error)

	maxFlushIterations int

	ids  atomic.Uint64
	mu   sync.Mutex // guards pending, scheduled, batchDepth, flushing
	pend pendingSet

	scheduled  bool
	batchDepth int
	flushing   bool

	trackMu sync.Mutex
	track   []*trackFrame

	ownerMu sync.Mutex
	owner   *Owner
}

// pendingSet is the deduplicated queue of signals awaiting a flush,
// in enqueue order.
type pendingSet struct {
	cores []*signalCore
	ids   map[uint64]struct{}
}

func (p *pendingSet) add(c *signalCore) bool {
	if p.ids == nil {
		p.ids = make(map[uint64]struct{})
	}
	if _, ok := p.ids[c.id]; ok {
		return false
	}
	p.ids[c.id] = struct{}{}
	p.cores = append(p.cores, c)
	return true
}

func (p *pendingSet) take() []*signalCore {
	cores := p.cores
	p.cores = nil
	p.ids = nil
	return cores
}

func (p *pendingSet) empty() bool {
	return len(p.cores) == 0
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for binding failures and
// asynchronous flush errors.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = logger
	}
}

// WithScheduleFunc replaces the deferred-flush hook. The default runs
// the flush on a fresh goroutine; tests and embedders with their own
// event loop can capture the callback and run it at a tick boundary.
func WithScheduleFunc(schedule func(func())) Option {
	return func(rt *Runtime) {
		rt.schedule = schedule
	}
}

// WithErrorHandler sets the handler for fatal errors raised by
// asynchronous flushes. The default logs at error level.
func WithErrorHandler(fn func(error)) Option {
	return func(rt *Runtime) {
		rt.onError = fn
	}
}

// WithMaxFlushIterations overrides the cascade guard that turns a
// write-during-flush loop into a CycleError.
func WithMaxFlushIterations(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.maxFlushIterations = n
		}
	}
}

// NewRuntime creates an empty reactive universe.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		maxFlushIterations: defaultMaxFlushIterations,
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.logger == nil {
		rt.logger = slog.Default().With("component", "reactive")
	}
	if rt.schedule == nil {
		rt.schedule = func(f func()) { go f() }
	}
	if rt.onError == nil {
		logger := rt.logger
		rt.onError = func(err error) {
			logger.Error("flush failed", "err", err)
		}
	}
	return rt
}

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// nextID returns the next unique ID for a primitive of this runtime.
// IDs are monotonically increasing and never reused.
func (rt *Runtime) nextID() uint64 {
	return rt.ids.Add(1)
}

// trackFrame records the reads of one subscriber evaluation. Frames
// form a stack so nested evaluation (a Computed reading another
// Computed, many bindings evaluating in the same SSR tick) unwinds
// correctly.
type trackFrame struct {
	sub   subscriber
	reads []*signalCore
}

func (f *trackFrame) record(c *signalCore) {
	for _, r := range f.reads {
		if r == c {
			return
		}
	}
	f.reads = append(f.reads, c)
}

// recordRead is called by signal cores on every Get. If a subscriber
// is currently evaluating, the core subscribes it and is recorded as a
// dependency of that run.
func (rt *Runtime) recordRead(c *signalCore) {
	rt.trackMu.Lock()
	var top *trackFrame
	if n := len(rt.track); n > 0 {
		top = rt.track[n-1]
	}
	if top != nil {
		top.record(c)
	}
	rt.trackMu.Unlock()

	if top != nil {
		c.subscribe(top.sub)
	}
}

// runTracked evaluates fn with sub as the current subscriber and
// commits the observed dependency set afterwards, even if fn panics:
// a partially evaluated subscriber must still hold a consistent
// subscription graph.
func (rt *Runtime) runTracked(sub subscriber, deps *depSet, fn func()) {
	frame := &trackFrame{sub: sub}

	rt.trackMu.Lock()
	rt.track = append(rt.track, frame)
	rt.trackMu.Unlock()

	defer func() {
		rt.trackMu.Lock()
		rt.track = rt.track[:len(rt.track)-1]
		rt.trackMu.Unlock()
		deps.commit(sub, frame.reads)
	}()

	fn()
}

// Untracked runs fn with dependency tracking suspended. Reads inside
// fn do not subscribe the currently evaluating subscriber.
func (rt *Runtime) Untracked(fn func()) {
	rt.trackMu.Lock()
	rt.track = append(rt.track, nil) // nil frame masks any outer tracking
	rt.trackMu.Unlock()

	defer func() {
		rt.trackMu.Lock()
		rt.track = rt.track[:len(rt.track)-1]
		rt.trackMu.Unlock()
	}()

	fn()
}

// Batch groups multiple writes into a single flush pass. Writes inside
// fn are queued but no flush is scheduled until the outermost Batch
// returns. Batches nest.
func (rt *Runtime) Batch(fn func()) {
	rt.mu.Lock()
	rt.batchDepth++
	rt.mu.Unlock()

	defer func() {
		rt.mu.Lock()
		rt.batchDepth--
		shouldSchedule := rt.batchDepth == 0 && !rt.pend.empty() && !rt.scheduled && !rt.flushing
		if shouldSchedule {
			rt.scheduled = true
		}
		rt.mu.Unlock()
		if shouldSchedule {
			rt.schedule(rt.asyncFlush)
		}
	}()

	fn()
}

// currentOwner returns the owner new effects and bindings attach to.
func (rt *Runtime) currentOwner() *Owner {
	rt.ownerMu.Lock()
	defer rt.ownerMu.Unlock()
	return rt.owner
}

// CurrentOwner returns the owner in effect for primitive creation, or
// nil outside any WithOwner scope.
func (rt *Runtime) CurrentOwner() *Owner {
	return rt.currentOwner()
}

// Schedule defers fn through the runtime's schedule hook, the same
// boundary flushes are deferred to. Chunked renderers use it as their
// per-tick scheduler.
func (rt *Runtime) Schedule(fn func()) {
	rt.schedule(fn)
}

// WithOwner runs fn with o as the current owner, so every Effect and
// binding created inside is disposed together with o.
func (rt *Runtime) WithOwner(o *Owner, fn func()) {
	rt.ownerMu.Lock()
	old := rt.owner
	rt.owner = o
	rt.ownerMu.Unlock()

	defer func() {
		rt.ownerMu.Lock()
		rt.owner = old
		rt.ownerMu.Unlock()
	}()

	fn()
}
