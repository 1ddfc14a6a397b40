package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MaxDepth is the deepest nesting Decode accepts. Trees beyond this
// are rejected rather than risking stack exhaustion on hostile input.
const MaxDepth = 256

// ErrTooDeep is returned when a tree exceeds MaxDepth.
var ErrTooDeep = errors.New("wire: tree exceeds maximum depth")

// ErrFragmentAttrs is returned by Decode for a fragment node carrying
// attributes. Fragments have no element of their own, so attributes on
// one have nowhere to land and would be dropped on re-encode.
var ErrFragmentAttrs = errors.New("wire: fragment node carries attributes")

// SerializationError wraps a failure to encode or decode a tree.
type SerializationError struct {
	Op  string // "encode" or "decode"
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("wire: %s: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// Encode serializes a wire node to JSON.
func Encode(n *Node) ([]byte, error) {
	if err := checkDepth(n, 0); err != nil {
		return nil, &SerializationError{Op: "encode", Err: err}
	}
	data, err := json.Marshal(n)
	if err != nil {
		return nil, &SerializationError{Op: "encode", Err: err}
	}
	return data, nil
}

// Decode parses a JSON document into a wire node, enforcing MaxDepth.
func Decode(data []byte) (*Node, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, &SerializationError{Op: "decode", Err: err}
	}
	if err := checkDepth(&n, 0); err != nil {
		return nil, &SerializationError{Op: "decode", Err: err}
	}
	if err := checkFragments(&n); err != nil {
		return nil, &SerializationError{Op: "decode", Err: err}
	}
	return &n, nil
}

func checkFragments(n *Node) error {
	if n == nil {
		return nil
	}
	if n.Tag == "fragment" && len(n.Attributes) > 0 {
		return ErrFragmentAttrs
	}
	for _, c := range n.Children {
		if c.IsText() {
			continue
		}
		if err := checkFragments(c.Node); err != nil {
			return err
		}
	}
	return nil
}

func checkDepth(n *Node, depth int) error {
	if depth > MaxDepth {
		return ErrTooDeep
	}
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.IsText() {
			continue
		}
		if err := checkDepth(c.Node, depth+1); err != nil {
			return err
		}
	}
	return nil
}
