package modal

import "github.com/boxed-run/sdk/internal/sandbox"

// modalState mirrors the wire shape Modal's sandbox-info endpoint
// returns: a nullable "still provisioning" sentinel rather than an
// explicit enum (spec.md §4.4.1, "Modal's poll-nullness").
type modalState struct {
	Status    *string `json:"status"`
	Exists    bool    `json:"exists"`
	Succeeded *bool   `json:"succeeded"`
}

// mapStatus turns Modal's poll-nullness convention into the uniform
// four-valued status: a sandbox that no longer exists maps to failed;
// an absent status means still creating; "running"/"ready" map to ready,
// "starting"/"pending" to creating, and "stopped"/"terminated" to
// stopped; any other status maps to failed.
func mapStatus(s modalState) sandbox.Status {
	if !s.Exists {
		return sandbox.StatusFailed
	}
	if s.Status == nil {
		return sandbox.StatusCreating
	}
	switch *s.Status {
	case "running", "ready":
		return sandbox.StatusReady
	case "starting", "pending":
		return sandbox.StatusCreating
	case "stopped", "terminated":
		return sandbox.StatusStopped
	default:
		if s.Succeeded != nil && !*s.Succeeded {
			return sandbox.StatusFailed
		}
		return sandbox.StatusFailed
	}
}
