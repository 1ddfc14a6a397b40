package dom

import (
	"log/slog"
	"sync/atomic"

	"github.com/pulseui/pulse/pkg/reactive"
	"github.com/pulseui/pulse/pkg/vdom"
)

// Document is a live node tree driven by a single reactive runtime.
// Nodes mounted into it may contain anchors whose subtrees are kept
// current by bindings; unmounting a subtree disposes every binding
// inside it.
type Document struct {
	rt      *reactive.Runtime
	root    *vdom.VNode
	owner   *reactive.Owner
	logger  *slog.Logger
	anchors atomic.Uint64
}

// DocumentOption configures a Document.
type DocumentOption func(*Document)

// WithDocumentLogger sets the logger bindings report producer panics to.
func WithDocumentLogger(l *slog.Logger) DocumentOption {
	return func(d *Document) {
		d.logger = l
	}
}

// NewDocument creates an empty document rooted at a body element.
func NewDocument(rt *reactive.Runtime, opts ...DocumentOption) *Document {
	d := &Document{
		rt:     rt,
		root:   vdom.El("body"),
		owner:  reactive.NewOwner(rt, nil),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Runtime returns the reactive runtime the document's bindings run on.
func (d *Document) Runtime() *reactive.Runtime { return d.rt }

// Root returns the document's root element.
func (d *Document) Root() *vdom.VNode { return d.root }

// Mount appends n to the document root.
func (d *Document) Mount(n *vdom.VNode) {
	d.root.Children = append(d.root.Children, n)
}

// MountInto appends n as a child of parent. The parent must already be
// part of the document for bindings inside n to be torn down on
// Unmount.
func (d *Document) MountInto(parent, n *vdom.VNode) {
	parent.Children = append(parent.Children, n)
}

// Remove detaches n from its parent in the tree and disposes every
// binding in its subtree. It is a no-op if n is not in the document.
func (d *Document) Remove(n *vdom.VNode) {
	if !d.detach(d.root, n) {
		return
	}
	Teardown(n)
}

func (d *Document) detach(parent, n *vdom.VNode) bool {
	for i, c := range parent.Children {
		if c == n {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			return true
		}
		if d.detach(c, n) {
			return true
		}
	}
	return false
}

// Contains reports whether n is reachable from the document root.
func (d *Document) Contains(n *vdom.VNode) bool {
	return d.root == n || d.root.Contains(n)
}

// GetByID returns the first node in the document whose id property
// matches, or nil.
func (d *Document) GetByID(id string) *vdom.VNode {
	var found *vdom.VNode
	d.root.Walk(func(n *vdom.VNode) bool {
		if found != nil {
			return false
		}
		if n.Kind == vdom.KindElement && n.Props != nil {
			if v, ok := n.Props["id"].(string); ok && v == id {
				found = n
				return false
			}
		}
		return true
	})
	return found
}

// Unmount tears down the entire document: every binding is disposed
// and the root is emptied. The document can be reused afterwards.
func (d *Document) Unmount() {
	Teardown(d.root)
	d.owner.Dispose()
	d.root.Children = nil
	d.owner = reactive.NewOwner(d.rt, nil)
}

// Teardown disposes every binding anchored in the subtree rooted at n.
// Disposal is idempotent, so overlapping teardowns are safe.
func Teardown(n *vdom.VNode) {
	n.Walk(func(v *vdom.VNode) bool {
		if v.Kind == vdom.KindAnchor && v.Bound != nil {
			v.Bound.Dispose()
		}
		return true
	})
}

func (d *Document) nextAnchorID() uint64 {
	return d.anchors.Add(1)
}

// bindingParent returns the owner new bindings attach to: the current
// scope when a parent binding is rendering, else the document root
// owner so Unmount cascades to everything.
func (d *Document) bindingParent() *reactive.Owner {
	if o := d.rt.CurrentOwner(); o != nil {
		return o
	}
	return d.owner
}
