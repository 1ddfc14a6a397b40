package wire

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pulseui/pulse/pkg/vdom"
)

// Node is the wire form of an element. It contains only serializable
// data: string attributes and a mixed list of text and element
// children.
type Node struct {
	Tag        string            `json:"tag"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Children   []Child           `json:"children,omitempty"`
}

// Child is one entry in a node's child list: either a text literal or
// a nested element. Exactly one of Text and Node is set.
type Child struct {
	Text string
	Node *Node

	isText bool
}

// TextChild creates a text list entry.
func TextChild(s string) Child {
	return Child{Text: s, isText: true}
}

// NodeChild creates an element list entry.
func NodeChild(n *Node) Child {
	return Child{Node: n}
}

// IsText reports whether the entry is a text literal.
func (c Child) IsText() bool { return c.isText }

// MarshalJSON writes a text entry as a JSON string and an element
// entry as an object.
func (c Child) MarshalJSON() ([]byte, error) {
	if c.isText {
		return json.Marshal(c.Text)
	}
	return json.Marshal(c.Node)
}

// UnmarshalJSON accepts either a JSON string or a node object.
func (c *Child) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimLeft(string(data), " \t\r\n")
	if strings.HasPrefix(trimmed, `"`) {
		c.isText = true
		c.Node = nil
		return json.Unmarshal(data, &c.Text)
	}
	c.isText = false
	c.Text = ""
	c.Node = &Node{}
	return json.Unmarshal(data, c.Node)
}

// FromVNode converts a node tree to wire form. Handler props are
// stripped; remaining attribute values are stringified. Fragment and
// anchor nodes are flattened into their parent's child list, so the
// wire tree mirrors what a renderer would emit.
func FromVNode(node *vdom.VNode) *Node {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		w := &Node{Tag: node.Tag}
		if attrs := wireAttrs(node.Props); len(attrs) > 0 {
			w.Attributes = attrs
		}
		w.Children = wireChildren(node.Children)
		return w
	case vdom.KindFragment, vdom.KindAnchor:
		// No element of their own; wrap the children so the caller
		// still gets a single root.
		return &Node{Tag: "fragment", Children: wireChildren(node.Children)}
	case vdom.KindText, vdom.KindRaw:
		return &Node{Tag: "fragment", Children: []Child{TextChild(node.Text)}}
	default:
		return nil
	}
}

func wireChildren(children []*vdom.VNode) []Child {
	if len(children) == 0 {
		return nil
	}
	out := make([]Child, 0, len(children))
	for _, child := range children {
		if child == nil {
			continue
		}
		switch child.Kind {
		case vdom.KindText, vdom.KindRaw:
			out = append(out, TextChild(child.Text))
		case vdom.KindElement:
			out = append(out, NodeChild(FromVNode(child)))
		case vdom.KindFragment, vdom.KindAnchor:
			out = append(out, wireChildren(child.Children)...)
		}
	}
	return out
}

func wireAttrs(props vdom.Props) map[string]string {
	if len(props) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(props))
	for key, value := range props {
		if strings.HasPrefix(key, "_") || value == nil {
			continue
		}
		if strings.HasPrefix(key, "on") && isHandler(value) {
			continue
		}
		switch v := value.(type) {
		case string:
			attrs[key] = v
		case bool:
			if v {
				attrs[key] = "true"
			}
		case int:
			attrs[key] = fmt.Sprintf("%d", v)
		case int64:
			attrs[key] = fmt.Sprintf("%d", v)
		case float64:
			attrs[key] = fmt.Sprintf("%g", v)
		default:
			attrs[key] = fmt.Sprintf("%v", v)
		}
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

func isHandler(value any) bool {
	return strings.HasPrefix(fmt.Sprintf("%T", value), "func")
}

// ToVNode converts a wire node back to a node tree. Handlers cannot be
// restored; the result is static until bindings are reattached.
func (w *Node) ToVNode() *vdom.VNode {
	if w == nil {
		return nil
	}

	if w.Tag == "fragment" {
		frag := &vdom.VNode{Kind: vdom.KindFragment}
		frag.Children = vnodeChildren(w.Children)
		return frag
	}

	node := &vdom.VNode{
		Kind: vdom.KindElement,
		Tag:  w.Tag,
	}
	if len(w.Attributes) > 0 {
		node.Props = make(vdom.Props, len(w.Attributes))
		// Deterministic prop insertion keeps decoded trees comparable.
		keys := make([]string, 0, len(w.Attributes))
		for k := range w.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			node.Props[k] = w.Attributes[k]
		}
	}
	node.Children = vnodeChildren(w.Children)
	return node
}

func vnodeChildren(children []Child) []*vdom.VNode {
	if len(children) == 0 {
		return nil
	}
	out := make([]*vdom.VNode, 0, len(children))
	for _, c := range children {
		if c.IsText() {
			out = append(out, vdom.Text(c.Text))
			continue
		}
		if n := c.Node.ToVNode(); n != nil {
			out = append(out, n)
		}
	}
	return out
}
