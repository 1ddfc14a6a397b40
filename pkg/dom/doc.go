// Package dom maintains a live node tree and the reactive bindings
// that keep regions of it in sync with signal state.
//
// A binding owns an anchor node in the tree. Whenever one of the
// signals its producer reads changes, the binding rebuilds the
// anchor's subtree from scratch and swaps it in whole. There is no
// diffing; the anchor boundary is the unit of update.
package dom
