package reactive

import "sort"

// flushPass carries the state of one flush: the set of cells that
// changed, starting with the written signals and growing as Computeds
// recompute to different values.
type flushPass struct {
	changed map[uint64]struct{}
}

func (p *flushPass) markChanged(id uint64) {
	p.changed[id] = struct{}{}
}

func (p *flushPass) anyChanged(ids []uint64) bool {
	for _, id := range ids {
		if _, ok := p.changed[id]; ok {
			return true
		}
	}
	return false
}

// enqueue adds a written cell to the pending set and schedules a flush
// unless one is already scheduled, a batch is open, or a flush is
// currently draining the queue (which will pick the write up itself).
func (rt *Runtime) enqueue(c *signalCore) {
	rt.mu.Lock()
	rt.pend.add(c)
	shouldSchedule := !rt.scheduled && rt.batchDepth == 0 && !rt.flushing
	if shouldSchedule {
		rt.scheduled = true
	}
	rt.mu.Unlock()

	if shouldSchedule {
		rt.schedule(rt.asyncFlush)
	}
}

// asyncFlush is the deferred flush entry point. Cycle errors have no
// caller to surface to here, so they go to the runtime error handler.
func (rt *Runtime) asyncFlush() {
	rt.mu.Lock()
	rt.scheduled = false
	rt.mu.Unlock()

	if err := rt.FlushSync(); err != nil {
		rt.onError(err)
	}
}

// FlushSync drains the pending set immediately and keeps flushing
// until no pass enqueues further writes. A cascade that never
// stabilizes is cut off after the configured iteration limit and
// reported as a CycleError instead of hanging.
func (rt *Runtime) FlushSync() error {
	rt.mu.Lock()
	if rt.flushing {
		// Re-entrant call from inside a subscriber; the outer loop
		// drains everything.
		rt.mu.Unlock()
		return nil
	}
	rt.flushing = true
	rt.mu.Unlock()

	defer rt.finishFlush()

	for i := 0; ; i++ {
		rt.mu.Lock()
		pending := rt.pend.take()
		rt.mu.Unlock()

		if len(pending) == 0 {
			return nil
		}
		if i >= rt.maxFlushIterations {
			rt.metrics.cycleDetected()
			return &CycleError{Iterations: i}
		}
		rt.flushPass(pending)
	}
}

// finishFlush clears the flushing flag and re-checks the pending set.
// A write that lands between the final empty take and here sees
// flushing=true and skips scheduling, so without the re-check it would
// sit in the queue until an unrelated future write arrived.
func (rt *Runtime) finishFlush() {
	rt.mu.Lock()
	rt.flushing = false
	reschedule := !rt.pend.empty() && !rt.scheduled && rt.batchDepth == 0
	if reschedule {
		rt.scheduled = true
	}
	rt.mu.Unlock()

	if reschedule {
		rt.schedule(rt.asyncFlush)
	}
}

// HasPending reports whether any writes await a flush.
func (rt *Runtime) HasPending() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return !rt.pend.empty()
}

// flushPass runs one pass over a snapshot of written cells:
//
//  1. Collect every subscriber transitively affected, walking through
//     observed Computeds. Unobserved Computeds are only marked stale.
//  2. Stable-sort by dependency depth. collect appends subscribers in
//     subscriber-list order per cell, so no subscriber observes a
//     stale Computed and same-depth subscribers run in the order they
//     subscribed.
//  3. Recompute each at most once, skipping subscribers disposed
//     mid-pass and subscribers none of whose sources changed.
func (rt *Runtime) flushPass(pending []*signalCore) {
	pass := &flushPass{changed: make(map[uint64]struct{}, len(pending))}
	for _, c := range pending {
		pass.markChanged(c.id)
	}

	var affected []subscriber
	seen := make(map[uint64]struct{})

	var collect func(c *signalCore)
	collect = func(c *signalCore) {
		for _, sub := range c.subscribers() {
			id := sub.sid()
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if !sub.eager() {
				// Lazy Computed: next Get recomputes.
				continue
			}
			affected = append(affected, sub)
			if comp, ok := sub.(interface{ ownCore() *signalCore }); ok {
				collect(comp.ownCore())
			}
		}
	}
	for _, c := range pending {
		collect(c)
	}

	sort.SliceStable(affected, func(i, j int) bool {
		return affected[i].rank() < affected[j].rank()
	})

	for _, sub := range affected {
		if !sub.alive() {
			continue
		}
		if !pass.anyChanged(sub.sourceIDs()) {
			continue
		}
		sub.flush(pass)
	}

	rt.metrics.flushed()
}
