package vercel

import "github.com/boxed-run/sdk/internal/sandbox"

// vercelState is Vercel's sandbox state enum. Vercel's API does not
// publish a fixed cardinality in the retrieval pack's domain notes, so
// this models the four lifecycle phases its REST responses actually
// surface (spec.md §4.4.1).
type vercelState string

const (
	statePending vercelState = "pending"
	stateRunning vercelState = "running"
	stateStopped vercelState = "stopped"
	stateFailed  vercelState = "error"
)

func mapStatus(s vercelState) sandbox.Status {
	switch s {
	case statePending:
		return sandbox.StatusCreating
	case stateRunning:
		return sandbox.StatusReady
	case stateStopped:
		return sandbox.StatusStopped
	case stateFailed:
		return sandbox.StatusFailed
	default:
		return sandbox.StatusFailed
	}
}
