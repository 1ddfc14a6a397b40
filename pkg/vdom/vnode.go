package vdom

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement  Kind = iota // <div>, <button>, etc.
	KindText                 // Plain text node
	KindFragment             // Grouping without wrapper
	KindRaw                  // Raw HTML (dangerous)
	KindAnchor               // Binding placeholder; children owned by a binding
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindRaw:
		return "Raw"
	case KindAnchor:
		return "Anchor"
	default:
		return "Unknown"
	}
}

// Disposable is mounted content that owns resources. Anchor nodes
// carry the binding that owns them so teardown of a subtree can
// cascade without the tree knowing binding internals.
type Disposable interface {
	Dispose()
}

// VNode is a node of the render tree.
type VNode struct {
	Kind     Kind       // Node type
	Tag      string     // Element tag name (e.g., "div")
	Props    Props      // Attributes and event handlers
	Children []*VNode   // Child nodes
	Text     string     // For KindText and KindRaw
	Bound    Disposable // For KindAnchor: the owning binding
	AnchorID uint64     // For KindAnchor: stable identity for logs and markers
}

// Props holds attributes and event handlers. Keys starting with "on"
// hold handler functions and are never rendered as attributes.
type Props map[string]any

// Attr is a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty reports whether this is an empty attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// Clone returns a shallow copy of the node with copied Props and a
// copied child slice. Children themselves are shared.
func (v *VNode) Clone() *VNode {
	if v == nil {
		return nil
	}
	n := *v
	if v.Props != nil {
		n.Props = make(Props, len(v.Props))
		for k, val := range v.Props {
			n.Props[k] = val
		}
	}
	if v.Children != nil {
		n.Children = make([]*VNode, len(v.Children))
		copy(n.Children, v.Children)
	}
	return &n
}

// Walk visits the node and every descendant in document order. The
// visit function returning false prunes the subtree below the node.
func (v *VNode) Walk(visit func(*VNode) bool) {
	if v == nil {
		return
	}
	if !visit(v) {
		return
	}
	for _, child := range v.Children {
		child.Walk(visit)
	}
}

// CountNodes returns the number of nodes in the subtree, including the
// root.
func (v *VNode) CountNodes() int {
	count := 0
	v.Walk(func(*VNode) bool {
		count++
		return true
	})
	return count
}

// Contains reports whether target is the node itself or a descendant.
func (v *VNode) Contains(target *VNode) bool {
	found := false
	v.Walk(func(n *VNode) bool {
		if n == target {
			found = true
		}
		return !found
	})
	return found
}
