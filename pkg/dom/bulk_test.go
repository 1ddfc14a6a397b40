package dom

import (
	"context"
	"testing"

	"github.com/pulseui/pulse/pkg/reactive"
	"github.com/pulseui/pulse/pkg/vdom"
)

// newSyncRuntime runs scheduled work immediately, so Start drives a
// chunked render to completion before returning.
func newSyncRuntime() *reactive.Runtime {
	return reactive.NewRuntime(reactive.WithScheduleFunc(func(fn func()) { fn() }))
}

func rowNode(label string, i int) *vdom.VNode {
	return vdom.Li(vdom.Textf("%s-%d", label, i))
}

func TestBatchRender(t *testing.T) {
	doc := newTestDoc(t)
	list := vdom.Ul()
	doc.Mount(list)

	items := []string{"a", "b", "c"}
	BatchRender(doc, list, items, rowNode)

	if len(list.Children) != 3 {
		t.Fatalf("rendered %d rows, want 3", len(list.Children))
	}
	if list.Children[2].Children[0].Text != "c-2" {
		t.Errorf("last row = %q", list.Children[2].Children[0].Text)
	}
}

func TestBatchRenderEmpty(t *testing.T) {
	doc := newTestDoc(t)
	list := vdom.Ul()
	BatchRender(doc, list, nil, rowNode)
	if len(list.Children) != 0 {
		t.Errorf("empty input rendered %d rows", len(list.Children))
	}
}

func TestRenderChunkedSteps(t *testing.T) {
	doc := newTestDoc(t)
	list := vdom.Ul()
	doc.Mount(list)

	items := make([]string, 10)
	for i := range items {
		items[i] = "row"
	}

	var progress []int
	c := RenderChunked(doc, list, items, 4, rowNode,
		WithChunkProgress[string](func(done, total int) {
			progress = append(progress, done)
		}))

	for c.Step() {
	}

	if len(list.Children) != 10 {
		t.Fatalf("rendered %d rows, want 10", len(list.Children))
	}
	want := []int{4, 8, 10}
	if len(progress) != len(want) {
		t.Fatalf("progress calls = %v, want %v", progress, want)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Errorf("progress[%d] = %d, want %d", i, progress[i], want[i])
		}
	}
	select {
	case <-c.Done():
	default:
		t.Error("Done not closed after completion")
	}
}

func TestRenderChunkedCancel(t *testing.T) {
	doc := newTestDoc(t)
	list := vdom.Ul()
	doc.Mount(list)

	c := RenderChunked(doc, list, make([]string, 100), 10, rowNode)
	c.Step()
	c.Step()
	c.Cancel()

	if c.Step() {
		t.Error("Step continued after cancel")
	}
	// Chunks attached before cancellation stay in the tree.
	if len(list.Children) != 20 {
		t.Errorf("rendered %d rows, want 20", len(list.Children))
	}
}

func TestRenderChunkedStopsWhenTargetRemoved(t *testing.T) {
	doc := newTestDoc(t)
	list := vdom.Ul()
	doc.Mount(list)

	c := RenderChunked(doc, list, make([]string, 100), 10, rowNode)
	c.Step()
	doc.Remove(list)

	if c.Step() {
		t.Error("Step continued against an unmounted target")
	}
	if c.Rendered() != 10 {
		t.Errorf("rendered = %d, want 10", c.Rendered())
	}
}

func TestRenderChunkedStart(t *testing.T) {
	// A synchronous schedule hook drives the whole render to completion
	// inside Start.
	doc := NewDocument(newSyncRuntime())
	list := vdom.Ul()
	doc.Mount(list)

	c := RenderChunked(doc, list, make([]string, 25), 10, rowNode)
	c.Start(context.Background())

	if len(list.Children) != 25 {
		t.Errorf("rendered %d rows, want 25", len(list.Children))
	}
}

func TestRenderChunkedStartCancelledContext(t *testing.T) {
	doc := NewDocument(newSyncRuntime())
	list := vdom.Ul()
	doc.Mount(list)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := RenderChunked(doc, list, make([]string, 25), 10, rowNode)
	c.Start(ctx)

	if len(list.Children) != 0 {
		t.Errorf("cancelled context rendered %d rows", len(list.Children))
	}
	select {
	case <-c.Done():
	default:
		t.Error("Done not closed after context cancellation")
	}
}
