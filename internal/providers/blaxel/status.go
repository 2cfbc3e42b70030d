package blaxel

import "github.com/boxed-run/sdk/internal/sandbox"

// blaxelState is Blaxel's 9-valued sandbox state enum (spec.md §4.4.1).
type blaxelState string

const (
	stateDeploying  blaxelState = "DEPLOYING"
	statePending    blaxelState = "PENDING"
	stateBuilding   blaxelState = "BUILDING"
	stateUploading  blaxelState = "UPLOADING"
	stateDeployed   blaxelState = "DEPLOYED"
	stateStopping   blaxelState = "STOPPING"
	stateStopped    blaxelState = "STOPPED"
	stateDeleting   blaxelState = "DELETING"
	stateFailed     blaxelState = "FAILED"
)

// mapStatus is the total function from Blaxel's 9-valued state to the
// uniform four-valued status; unknown values fail closed to "failed".
func mapStatus(s blaxelState) sandbox.Status {
	switch s {
	case stateDeploying, statePending, stateBuilding, stateUploading:
		return sandbox.StatusCreating
	case stateDeployed:
		return sandbox.StatusReady
	case stateStopping, stateStopped, stateDeleting:
		return sandbox.StatusStopped
	case stateFailed:
		return sandbox.StatusFailed
	default:
		return sandbox.StatusFailed
	}
}
