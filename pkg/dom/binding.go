package dom

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pulseui/pulse/pkg/reactive"
	"github.com/pulseui/pulse/pkg/vdom"
)

// Binding pairs an anchor node with a producer function. The producer
// runs under dependency tracking; whenever a signal it read changes,
// the binding rebuilds the anchor's subtree and replaces it whole.
type Binding struct {
	doc      *Document
	anchor   *vdom.VNode
	producer func() *vdom.VNode
	effect   *reactive.Effect

	// owner holds the binding's effect and is parented to the owner
	// active when the binding was created, so a parent binding
	// re-rendering disposes this one.
	owner *reactive.Owner

	// scope owns primitives created during the latest producer run.
	// Replaced on every successful re-render.
	scope *reactive.Owner

	disposed atomic.Bool
}

// Reactive creates a binding whose subtree is produced by fn and
// returns its anchor node. Mount the anchor wherever the dynamic
// region belongs; the subtree under it is replaced in full each time a
// dependency of fn changes. Dependencies are whatever signals fn read
// during its most recent run.
func Reactive(doc *Document, fn func() *vdom.VNode) *vdom.VNode {
	b := &Binding{
		doc:      doc,
		producer: fn,
	}
	b.owner = reactive.NewOwner(doc.rt, doc.bindingParent())
	b.owner.OnCleanup(func() { b.disposed.Store(true) })
	b.anchor = vdom.Anchor(doc.nextAnchorID(), b)
	doc.rt.WithOwner(b.owner, func() {
		b.effect = reactive.NewEffect(doc.rt, b.render)
	})
	return b.anchor
}

// Anchor returns the binding's anchor node.
func (b *Binding) Anchor() *vdom.VNode { return b.anchor }

// Dispose stops the binding and everything created during its producer
// runs. The anchor keeps its current children but no longer updates.
func (b *Binding) Dispose() {
	if !b.disposed.CompareAndSwap(false, true) {
		return
	}
	b.owner.Dispose()
}

// IsDisposed reports whether the binding has been torn down.
func (b *Binding) IsDisposed() bool { return b.disposed.Load() }

// Refresh forces a re-render outside any flush, re-tracking the
// producer's dependencies. Returns reactive.ErrDisposed if the binding
// has been torn down.
func (b *Binding) Refresh() error {
	if b.disposed.Load() {
		return reactive.ErrDisposed
	}
	return b.effect.Refresh()
}

func (b *Binding) render() reactive.Cleanup {
	if b.disposed.Load() {
		return nil
	}

	next := reactive.NewOwner(b.doc.rt, b.owner)
	out, ok := b.produce(next)
	if !ok {
		// Producer panicked. Keep the last good subtree on screen
		// and stay subscribed to whatever was read before the panic.
		next.Dispose()
		return nil
	}

	if b.scope != nil {
		b.scope.Dispose()
	}
	for _, c := range b.anchor.Children {
		Teardown(c)
	}
	b.scope = next
	b.anchor.Children = asChildren(out)
	return nil
}

func (b *Binding) produce(scope *reactive.Owner) (out *vdom.VNode, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.doc.logger.Error("binding producer panicked",
				"anchor", b.anchor.AnchorID,
				"panic", r)
			out, ok = nil, false
		}
	}()
	b.doc.rt.WithOwner(scope, func() {
		out = b.producer()
	})
	return out, true
}

func asChildren(out *vdom.VNode) []*vdom.VNode {
	switch {
	case out == nil:
		return nil
	case out.Kind == vdom.KindFragment:
		return out.Children
	default:
		return []*vdom.VNode{out}
	}
}

// readable is any cell a one-way binding can observe.
type readable[T any] interface {
	Get() T
	Peek() T
}

// Text binds a text node to a cell. Updates rewrite the node's text in
// place instead of replacing a subtree. Returns the anchor holding the
// text node.
func Text[T any](doc *Document, src readable[T]) *vdom.VNode {
	txt := vdom.Text("")
	b := &Binding{doc: doc}
	b.owner = reactive.NewOwner(doc.rt, doc.bindingParent())
	b.owner.OnCleanup(func() { b.disposed.Store(true) })
	b.anchor = vdom.Anchor(doc.nextAnchorID(), b)
	b.anchor.Children = []*vdom.VNode{txt}
	doc.rt.WithOwner(b.owner, func() {
		b.effect = reactive.NewEffect(doc.rt, func() reactive.Cleanup {
			txt.Text = fmt.Sprint(src.Get())
			return nil
		})
	})
	return b.anchor
}

// BindValue wires a two-way binding between a text input element and a
// string signal. Input events write to the signal; signal changes
// write the element's value property. A write that originated from the
// element itself does not echo back to it on the following flush.
func BindValue(doc *Document, s *reactive.State[string], el *vdom.VNode) {
	if el.Props == nil {
		el.Props = vdom.Props{}
	}
	var mu sync.Mutex
	var echo bool
	var echoVal string
	el.Props["oninput"] = func(v string) {
		if v == s.Peek() {
			return
		}
		mu.Lock()
		echo, echoVal = true, v
		mu.Unlock()
		if err := s.Set(v); err != nil {
			mu.Lock()
			echo = false
			mu.Unlock()
			doc.logger.Warn("input rejected", "error", err)
		}
	}
	doc.rt.WithOwner(doc.bindingParent(), func() {
		reactive.NewEffect(doc.rt, func() reactive.Cleanup {
			v := s.Get()
			// Suppress only the exact value the element itself wrote.
			// A programmatic write coalesced into the same flush
			// carries a different value and must reach the element.
			mu.Lock()
			skip := echo && v == echoVal
			echo = false
			mu.Unlock()
			if skip {
				return nil
			}
			el.Props["value"] = v
			return nil
		})
	})
}

// BindChecked is BindValue for checkbox elements: change events write
// the bool signal, signal changes set the checked property.
func BindChecked(doc *Document, s *reactive.State[bool], el *vdom.VNode) {
	if el.Props == nil {
		el.Props = vdom.Props{}
	}
	var mu sync.Mutex
	var echo bool
	var echoVal bool
	el.Props["onchange"] = func(v bool) {
		if v == s.Peek() {
			return
		}
		mu.Lock()
		echo, echoVal = true, v
		mu.Unlock()
		if err := s.Set(v); err != nil {
			mu.Lock()
			echo = false
			mu.Unlock()
			doc.logger.Warn("input rejected", "error", err)
		}
	}
	doc.rt.WithOwner(doc.bindingParent(), func() {
		reactive.NewEffect(doc.rt, func() reactive.Cleanup {
			v := s.Get()
			mu.Lock()
			skip := echo && v == echoVal
			echo = false
			mu.Unlock()
			if skip {
				return nil
			}
			el.Props["checked"] = v
			return nil
		})
	})
}

// DispatchInput simulates a user input event on an element wired with
// BindValue.
func DispatchInput(el *vdom.VNode, value string) {
	if el.Props == nil {
		return
	}
	if h, ok := el.Props["oninput"].(func(string)); ok {
		h(value)
	}
}

// DispatchChange simulates a user change event on an element wired
// with BindChecked.
func DispatchChange(el *vdom.VNode, checked bool) {
	if el.Props == nil {
		return
	}
	if h, ok := el.Props["onchange"].(func(bool)); ok {
		h(checked)
	}
}
