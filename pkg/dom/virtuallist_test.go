package dom

import (
	"fmt"
	"testing"

	"github.com/pulseui/pulse/pkg/vdom"
)

func itemRow(v string, i int) *vdom.VNode {
	return vdom.Span(vdom.Text(v))
}

func makeItems(n int) []string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("item-%d", i)
	}
	return items
}

func TestVirtualListBoundedNodeCount(t *testing.T) {
	doc := newTestDoc(t)
	container := vdom.Div()
	doc.Mount(container)

	vl := NewVirtualList(doc, container, makeItems(100000), 20, 400, itemRow, WithOverscan(5))

	// 400px viewport at 20px rows shows 20, plus 5 overscan each side.
	if got := vl.RenderedCount(); got != 30 {
		t.Fatalf("rendered %d rows for 100k items, want 30", got)
	}
	if start, end := vl.Window(); start != 0 || end != 30 {
		t.Errorf("window = [%d,%d), want [0,30)", start, end)
	}
}

func TestVirtualListScroll(t *testing.T) {
	doc := newTestDoc(t)
	container := vdom.Div()
	doc.Mount(container)

	vl := NewVirtualList(doc, container, makeItems(1000), 20, 400, itemRow, WithOverscan(5))
	vl.ScrollTo(2000) // row 100 at the top of the viewport

	start, end := vl.Window()
	if start != 95 || end != 125 {
		t.Fatalf("window = [%d,%d), want [95,125)", start, end)
	}
	first := container.Children[0]
	if first.Children[0].Children[0].Text != "item-95" {
		t.Errorf("first rendered row = %q, want item-95", first.Children[0].Children[0].Text)
	}
	if first.Props["data-index"] != 95 {
		t.Errorf("data-index = %v, want 95", first.Props["data-index"])
	}
}

func TestVirtualListScrollClamps(t *testing.T) {
	doc := newTestDoc(t)
	container := vdom.Div()
	doc.Mount(container)

	vl := NewVirtualList(doc, container, makeItems(50), 20, 400, itemRow)
	vl.ScrollTo(-100)
	if start, _ := vl.Window(); start != 0 {
		t.Errorf("negative scroll start = %d, want 0", start)
	}

	vl.ScrollTo(1 << 20)
	_, end := vl.Window()
	if end != 50 {
		t.Errorf("overscroll end = %d, want 50", end)
	}
}

func TestVirtualListRecyclesRows(t *testing.T) {
	doc := newTestDoc(t)
	container := vdom.Div()
	doc.Mount(container)

	vl := NewVirtualList(doc, container, makeItems(1000), 20, 400, itemRow)
	before := container.Children[0]
	vl.ScrollTo(5000)
	after := container.Children[0]

	if before != after {
		t.Error("row node not recycled across scroll")
	}
}

func TestVirtualListFewerItemsThanWindow(t *testing.T) {
	doc := newTestDoc(t)
	container := vdom.Div()
	doc.Mount(container)

	vl := NewVirtualList(doc, container, makeItems(3), 20, 400, itemRow)
	if got := vl.RenderedCount(); got != 3 {
		t.Errorf("rendered %d rows for 3 items, want 3", got)
	}
}

func TestVirtualListSetItems(t *testing.T) {
	doc := newTestDoc(t)
	container := vdom.Div()
	doc.Mount(container)

	vl := NewVirtualList(doc, container, makeItems(1000), 20, 400, itemRow)
	vl.ScrollTo(2000)
	vl.SetItems(makeItems(10))

	start, end := vl.Window()
	if end != 10 {
		t.Errorf("window end = %d after shrink, want 10", end)
	}
	if start != 0 {
		t.Errorf("window start = %d after shrink, want 0", start)
	}
}
