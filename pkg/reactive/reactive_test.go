package reactive

// newTestRuntime returns a runtime whose deferred flushes are
// suppressed; tests drive the scheduler with FlushSync for
// deterministic ordering.
func newTestRuntime() *Runtime {
	return NewRuntime(WithScheduleFunc(func(func()) {}))
}
