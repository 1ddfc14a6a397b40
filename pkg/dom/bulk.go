package dom

import (
	"context"
	"sync/atomic"

	"github.com/pulseui/pulse/pkg/vdom"
)

// BatchRender builds the full node list off-tree and attaches it to
// target in a single append. Use it instead of per-item mounting when
// inserting large collections.
func BatchRender[T any](doc *Document, target *vdom.VNode, items []T, render func(T, int) *vdom.VNode) {
	if len(items) == 0 {
		return
	}
	built := make([]*vdom.VNode, 0, len(items))
	for i, item := range items {
		if n := render(item, i); n != nil {
			built = append(built, n)
		}
	}
	target.Children = append(target.Children, built...)
}

// ChunkedRender renders a large collection into target one chunk per
// scheduler tick, keeping the renderer responsive between chunks. It
// stops early when its context is cancelled or the target leaves the
// document.
type ChunkedRender[T any] struct {
	doc       *Document
	target    *vdom.VNode
	items     []T
	render    func(T, int) *vdom.VNode
	chunkSize int
	onDone    func(rendered, total int)

	pos       int
	cancelled atomic.Bool
	finished  chan struct{}
}

// ChunkedOption configures a ChunkedRender.
type ChunkedOption[T any] func(*ChunkedRender[T])

// WithChunkProgress registers a callback invoked after every chunk
// with the number of items rendered so far and the total.
func WithChunkProgress[T any](fn func(rendered, total int)) ChunkedOption[T] {
	return func(c *ChunkedRender[T]) {
		c.onDone = fn
	}
}

// RenderChunked prepares a chunked render of items into target. Call
// Start to drive it through the runtime scheduler, or Step repeatedly
// for deterministic control.
func RenderChunked[T any](doc *Document, target *vdom.VNode, items []T, chunkSize int, render func(T, int) *vdom.VNode, opts ...ChunkedOption[T]) *ChunkedRender[T] {
	if chunkSize < 1 {
		chunkSize = 1
	}
	c := &ChunkedRender[T]{
		doc:       doc,
		target:    target,
		items:     items,
		render:    render,
		chunkSize: chunkSize,
		finished:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start drives the render through the runtime's schedule hook, one
// chunk per tick, until completion or cancellation.
func (c *ChunkedRender[T]) Start(ctx context.Context) {
	var tick func()
	tick = func() {
		if ctx.Err() != nil {
			c.Cancel()
		}
		if c.Step() {
			c.doc.rt.Schedule(tick)
		}
	}
	c.doc.rt.Schedule(tick)
}

// Step renders the next chunk synchronously and reports whether more
// remain. Rendering stops for good once the target is no longer in the
// document or the render was cancelled.
func (c *ChunkedRender[T]) Step() bool {
	if c.cancelled.Load() {
		return false
	}
	if !c.doc.Contains(c.target) {
		c.Cancel()
		return false
	}
	end := c.pos + c.chunkSize
	if end > len(c.items) {
		end = len(c.items)
	}
	built := make([]*vdom.VNode, 0, end-c.pos)
	for i := c.pos; i < end; i++ {
		if n := c.render(c.items[i], i); n != nil {
			built = append(built, n)
		}
	}
	c.target.Children = append(c.target.Children, built...)
	c.pos = end
	if c.onDone != nil {
		c.onDone(c.pos, len(c.items))
	}
	if c.pos >= len(c.items) {
		c.cancelled.Store(true)
		close(c.finished)
		return false
	}
	return true
}

// Cancel stops the render before completion. Chunks already attached
// stay in the tree.
func (c *ChunkedRender[T]) Cancel() {
	if c.cancelled.CompareAndSwap(false, true) {
		close(c.finished)
	}
}

// Done returns a channel closed when the render completes or is
// cancelled.
func (c *ChunkedRender[T]) Done() <-chan struct{} { return c.finished }

// Rendered returns how many items have been attached so far.
func (c *ChunkedRender[T]) Rendered() int { return c.pos }
