// Package wire is the JSON bridge between node trees and external
// consumers. A serialized node carries its tag, string attributes and
// children; text children serialize as plain JSON strings, element
// children as nested objects. Handlers and bindings do not survive the
// trip: a decoded tree is static until bindings are attached again.
package wire
