package reactive

import (
	"errors"
	"fmt"
)

// ErrDisposed is returned when an operation is attempted on a binding
// or effect that has already been torn down.
var ErrDisposed = errors.New("reactive: subscriber disposed")

// ValidationError reports a write rejected by a State's validator. It
// is returned synchronously from Set; the write does not enqueue a
// flush and subscribers are not notified.
type ValidationError struct {
	Signal uint64 // ID of the rejecting cell
	Err    error  // validator error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("reactive: validation failed for signal %d: %v", e.Signal, e.Err)
}

// Unwrap returns the validator error for errors.Is/As support.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// CycleError reports a flush cascade that never stabilized: writes
// performed during flush passes kept enqueuing new passes until the
// iteration guard tripped. It is fatal to the flush and surfaced to
// the caller of FlushSync, or to the runtime error handler for
// asynchronous flushes.
type CycleError struct {
	Iterations int // passes executed before giving up
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("reactive: update cycle did not stabilize after %d flush passes", e.Iterations)
}
