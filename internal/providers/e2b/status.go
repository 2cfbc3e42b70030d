package e2b

import "github.com/boxed-run/sdk/internal/sandbox"

// e2bState is E2B's sandbox state enum as returned by its info endpoint.
type e2bState string

const (
	e2bBuilding e2bState = "building"
	e2bRunning  e2bState = "running"
	e2bPaused   e2bState = "paused"
	e2bStopped  e2bState = "stopped"
	e2bError    e2bState = "error"
)

// mapStatus normalizes E2B's state enum to the uniform four-valued
// status (spec.md §4.4.1). E2B has no pause/resume capability in this
// adapter, so "paused" still maps to stopped rather than a fifth state.
func mapStatus(s e2bState) sandbox.Status {
	switch s {
	case e2bBuilding:
		return sandbox.StatusCreating
	case e2bRunning:
		return sandbox.StatusReady
	case e2bPaused, e2bStopped:
		return sandbox.StatusStopped
	case e2bError:
		return sandbox.StatusFailed
	default:
		return sandbox.StatusFailed
	}
}
