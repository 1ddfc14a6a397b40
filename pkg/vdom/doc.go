// Package vdom defines the render output tree. The same VNode shape
// serves the live mounted tree, HTML string rendering, and the JSON
// wire representation.
//
// Anchor nodes are the stable placeholders reactive bindings own: a
// binding replaces exactly the children of its anchor on every update,
// so sibling content is never disturbed and no diff pass is needed.
package vdom
