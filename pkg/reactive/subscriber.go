package reactive

import "sync"

// subscriber is anything the scheduler can recompute: a Computed, an
// Effect, or a watcher registered via State.Subscribe.
type subscriber interface {
	// sid returns the unique identifier for this subscriber, used to
	// deduplicate subscriptions and flush collection.
	sid() uint64

	// rank returns the dependency depth: 0 for plain states (never a
	// subscriber), 1 + max(source depth) for everything else.
	rank() int

	// sourceIDs returns the IDs of the sources read during the most
	// recent evaluation.
	sourceIDs() []uint64

	// alive reports whether the subscriber may still be invoked.
	// Checked immediately before each recompute in a flush pass.
	alive() bool

	// eager reports whether the scheduler should recompute this
	// subscriber during a flush pass. False only for a Computed with
	// zero subscribers, which stays lazy until observed.
	eager() bool

	// flush recomputes the subscriber as part of a flush pass.
	flush(p *flushPass)

	// markStale notes that a dependency changed without recomputing.
	// Only meaningful for Computeds (lazy invalidation).
	markStale()
}

// depSet tracks the sources a subscriber read during its last
// evaluation. The central invariant: after commit, sources equals
// exactly the set read during the most recent run.
type depSet struct {
	mu      sync.Mutex
	sources []*signalCore
	depth   int
}

// commit replaces the dependency set with the sources observed during
// the run just finished. Sources read in both runs keep their position
// in the signal's subscriber list; dropped ones are unsubscribed.
// Subscription of new sources already happened at read time.
func (d *depSet) commit(sub subscriber, reads []*signalCore) {
	d.mu.Lock()
	old := d.sources
	d.sources = reads

	depth := 0
	for _, c := range reads {
		if d := c.depth(); d >= depth {
			depth = d + 1
		}
	}
	if depth == 0 {
		depth = 1
	}
	d.depth = depth
	d.mu.Unlock()

	for _, c := range old {
		stillRead := false
		for _, n := range reads {
			if n == c {
				stillRead = true
				break
			}
		}
		if !stillRead {
			c.unsubscribe(sub.sid())
		}
	}
}

// ids returns the IDs of the current sources.
func (d *depSet) ids() []uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]uint64, len(d.sources))
	for i, c := range d.sources {
		out[i] = c.id
	}
	return out
}

// rank returns the committed dependency depth.
func (d *depSet) rank() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.depth == 0 {
		return 1
	}
	return d.depth
}

// release unsubscribes from every source. Called on disposal so no
// signal keeps a reference to a dead subscriber.
func (d *depSet) release(sub subscriber) {
	d.mu.Lock()
	sources := d.sources
	d.sources = nil
	d.mu.Unlock()

	for _, c := range sources {
		c.unsubscribe(sub.sid())
	}
}
