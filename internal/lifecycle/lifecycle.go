package lifecycle

import "sync/atomic"

// draining is set once the process has been told to stop. Weather requests already
// accepted still finish; /health reports shutting-down so the edge stops routing here.
var draining atomic.Bool

// SetShuttingDown marks the process as draining (true) or serving (false).
func SetShuttingDown(v bool) {
	draining.Store(v)
}

// IsShuttingDown reports whether the process is draining.
func IsShuttingDown() bool {
	return draining.Load()
}
