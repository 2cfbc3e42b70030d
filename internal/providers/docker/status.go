package docker

import "github.com/boxed-run/sdk/internal/sandbox"

// mapStatus normalizes Docker's container state into the uniform
// four-valued sandbox.Status (spec.md §4.4.1), grounded on the teacher's
// Info() method.
func mapStatus(running, dead, oomKilled bool) sandbox.Status {
	if dead || oomKilled {
		return sandbox.StatusFailed
	}
	if running {
		return sandbox.StatusReady
	}
	return sandbox.StatusStopped
}
