package cloudflare

import "github.com/boxed-run/sdk/internal/sandbox"

// cloudflareState is Cloudflare's 3-valued sandbox state enum (spec.md
// §4.4.1).
type cloudflareState string

const (
	stateStarting cloudflareState = "starting"
	stateRunning  cloudflareState = "running"
	stateStopped  cloudflareState = "stopped"
)

// mapStatus is the total function from Cloudflare's 3-valued state to
// the uniform four-valued status; unknown values fail closed to
// "failed".
func mapStatus(s cloudflareState) sandbox.Status {
	switch s {
	case stateStarting:
		return sandbox.StatusCreating
	case stateRunning:
		return sandbox.StatusReady
	case stateStopped:
		return sandbox.StatusStopped
	default:
		return sandbox.StatusFailed
	}
}
