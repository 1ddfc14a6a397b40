// Package reactive implements the fine-grained reactive state engine:
// writable State cells, derived Computed values, Effects, and the
// Scheduler that coalesces writes into ordered flush passes.
//
// All primitives belong to an explicit Runtime. A Runtime is a fully
// independent reactive universe with its own dependency-tracking stack,
// ID space, and flush queue, so tests and embedded uses never share
// state through package globals.
//
// Reading a State or Computed during a tracked evaluation (a Computed
// computation, an Effect run, or a binding producer) subscribes the
// current subscriber automatically. After every evaluation the
// subscriber's dependency set is diffed against what was actually read:
// sources no longer read are unsubscribed, newly read ones subscribed.
//
// Writes are batched. Setting a State enqueues it with the Runtime's
// scheduler; the flush pass recomputes every affected subscriber exactly
// once, Computeds strictly before the Effects and bindings that read
// them. FlushSync drains the queue deterministically for tests.
package reactive
