package daytona

import "github.com/boxed-run/sdk/internal/sandbox"

// daytonaState is Daytona's 8-valued workspace state enum (spec.md
// §4.4.1).
type daytonaState string

const (
	stateCreating    daytonaState = "creating"
	statePending     daytonaState = "pending"
	stateStarting    daytonaState = "starting"
	stateStarted     daytonaState = "started"
	stateStopping    daytonaState = "stopping"
	stateStopped     daytonaState = "stopped"
	stateDestroying  daytonaState = "destroying"
	stateError       daytonaState = "error"
)

// mapStatus is the total function from Daytona's 8-valued state to the
// uniform four-valued status; unknown values fail closed to "failed".
func mapStatus(s daytonaState) sandbox.Status {
	switch s {
	case stateCreating, statePending, stateStarting:
		return sandbox.StatusCreating
	case stateStarted:
		return sandbox.StatusReady
	case stateStopping, stateStopped, stateDestroying:
		return sandbox.StatusStopped
	case stateError:
		return sandbox.StatusFailed
	default:
		return sandbox.StatusFailed
	}
}
