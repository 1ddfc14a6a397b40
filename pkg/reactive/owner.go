package reactive

import (
	"sync"
	"sync/atomic"
)

// Owner is a disposal scope. Effects and bindings register with the
// current Owner at creation; disposing the Owner disposes them all,
// plus every child Owner, so unmounting a subtree cannot leak
// subscriptions.
//
// Owners form a tree mirroring the mounted render tree:
// parent-owns-child, teardown is a bounded walk.
type Owner struct {
	id uint64
	rt *Runtime

	parent *Owner

	mu       sync.Mutex
	children []*Owner
	effects  []*Effect
	cleanups []func()

	disposed atomic.Bool
}

// NewOwner creates a scope under parent. A nil parent creates a root.
func NewOwner(rt *Runtime, parent *Owner) *Owner {
	o := &Owner{
		id:     rt.nextID(),
		rt:     rt,
		parent: parent,
	}
	if parent != nil {
		parent.addChild(o)
	}
	return o
}

// ID returns the unique identifier of this scope.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent scope, or nil for a root.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed reports whether the scope has been torn down.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

func (o *Owner) addChild(child *Owner) {
	o.mu.Lock()
	o.children = append(o.children, child)
	o.mu.Unlock()
}

func (o *Owner) removeChild(child *Owner) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// registerEffect attaches an effect so disposal cascades to it.
func (o *Owner) registerEffect(e *Effect) {
	if o.disposed.Load() {
		e.Dispose()
		return
	}
	o.mu.Lock()
	o.effects = append(o.effects, e)
	o.mu.Unlock()
}

// OnCleanup registers fn to run when the scope is disposed. If the
// scope is already disposed, fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed.Load() {
		fn()
		return
	}
	o.mu.Lock()
	o.cleanups = append(o.cleanups, fn)
	o.mu.Unlock()
}

// Dispose tears down the scope: children first (in reverse creation
// order), then effects, then cleanups. Idempotent.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		return
	}

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	o.mu.Lock()
	children := o.children
	effects := o.effects
	cleanups := o.cleanups
	o.children = nil
	o.effects = nil
	o.cleanups = nil
	o.mu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}
	for _, e := range effects {
		e.Dispose()
	}
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
