// Package render serializes node trees to HTML for server-side
// rendering. Output is deterministic: attributes are sorted, text is
// escaped, and anchor nodes render their current children so a tree
// with live bindings serializes to whatever state it holds at call
// time.
package render
