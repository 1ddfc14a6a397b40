package dom

import (
	"fmt"

	"github.com/pulseui/pulse/pkg/vdom"
)

// VirtualList renders only the window of a large collection that is
// visible in a fixed-height viewport, plus a small overscan margin on
// each side. Row nodes are pooled and recycled as the window moves, so
// the live node count stays bounded regardless of collection size.
type VirtualList[T any] struct {
	doc        *Document
	container  *vdom.VNode
	items      []T
	renderItem func(T, int) *vdom.VNode

	itemHeight int
	viewport   int
	overscan   int

	scrollTop int
	start     int
	end       int
	pool      []*vdom.VNode
}

// VirtualListOption configures a VirtualList.
type VirtualListOption func(*config)

type config struct {
	overscan int
}

// WithOverscan sets how many extra rows render beyond each edge of the
// visible window. Default 3.
func WithOverscan(n int) VirtualListOption {
	return func(c *config) {
		if n >= 0 {
			c.overscan = n
		}
	}
}

// NewVirtualList creates a virtual list over items inside container.
// itemHeight and viewportHeight are in pixels; every row is assumed to
// be itemHeight tall. The initial window renders immediately.
func NewVirtualList[T any](doc *Document, container *vdom.VNode, items []T, itemHeight, viewportHeight int, renderItem func(T, int) *vdom.VNode, opts ...VirtualListOption) *VirtualList[T] {
	cfg := config{overscan: 3}
	for _, opt := range opts {
		opt(&cfg)
	}
	if itemHeight < 1 {
		itemHeight = 1
	}
	vl := &VirtualList[T]{
		doc:        doc,
		container:  container,
		items:      items,
		renderItem: renderItem,
		itemHeight: itemHeight,
		viewport:   viewportHeight,
		overscan:   cfg.overscan,
	}
	vl.pool = make([]*vdom.VNode, vl.maxWindow())
	for i := range vl.pool {
		vl.pool[i] = vdom.El("div")
	}
	vl.refresh()
	return vl
}

// visibleCount is the number of rows that fit the viewport, rounding
// partially visible rows in.
func (vl *VirtualList[T]) visibleCount() int {
	return (vl.viewport + vl.itemHeight - 1) / vl.itemHeight
}

func (vl *VirtualList[T]) maxWindow() int {
	return vl.visibleCount() + 2*vl.overscan
}

// ScrollTo moves the viewport to the given scroll offset in pixels and
// re-renders the window.
func (vl *VirtualList[T]) ScrollTo(px int) {
	max := len(vl.items)*vl.itemHeight - vl.viewport
	if max < 0 {
		max = 0
	}
	if px < 0 {
		px = 0
	}
	if px > max {
		px = max
	}
	vl.scrollTop = px
	vl.refresh()
}

// SetItems replaces the backing collection and re-renders the current
// window against it.
func (vl *VirtualList[T]) SetItems(items []T) {
	vl.items = items
	vl.ScrollTo(vl.scrollTop)
}

// Window returns the half-open index range currently rendered.
func (vl *VirtualList[T]) Window() (start, end int) {
	return vl.start, vl.end
}

// RenderedCount returns the number of row nodes currently attached.
func (vl *VirtualList[T]) RenderedCount() int {
	return len(vl.container.Children)
}

func (vl *VirtualList[T]) refresh() {
	start := vl.scrollTop/vl.itemHeight - vl.overscan
	if start < 0 {
		start = 0
	}
	end := start + vl.maxWindow()
	if end > len(vl.items) {
		end = len(vl.items)
	}
	if start > end {
		start = end
	}
	vl.start, vl.end = start, end

	rows := vl.pool[:end-start]
	for i := range rows {
		idx := start + i
		row := rows[i]
		if row.Props == nil {
			row.Props = vdom.Props{}
		}
		row.Props["style"] = fmt.Sprintf("position:absolute;top:%dpx;height:%dpx", idx*vl.itemHeight, vl.itemHeight)
		row.Props["data-index"] = idx
		for _, c := range row.Children {
			Teardown(c)
		}
		row.Children = []*vdom.VNode{vl.renderItem(vl.items[idx], idx)}
	}
	vl.container.Children = rows
	if vl.container.Props == nil {
		vl.container.Props = vdom.Props{}
	}
	vl.container.Props["style"] = fmt.Sprintf("position:relative;height:%dpx;overflow-y:auto", len(vl.items)*vl.itemHeight)
}
