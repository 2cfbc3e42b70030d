// Package modal implements the capability-split Driver over Modal's
// sandbox REST API. Modal has no vendor Go SDK available in the
// retrieval pack (see DESIGN.md), so this adapter speaks the vendor
// HTTP API directly through internal/providerclient, the pack's only
// available domain tool for that job.
package modal

import (
	"github.com/boxed-run/sdk/internal/config"
	"github.com/boxed-run/sdk/internal/providerclient"
	"github.com/boxed-run/sdk/internal/sandbox"
)

const Name = "modal"

// Adapter shares one providerclient.Client across all six capability
// services — Modal needs no other per-process state because its API is
// entirely account-scoped (no per-sandbox URL discovery like Blaxel).
type Adapter struct {
	client *providerclient.Client
}

func New(cfg config.Provider) *Adapter {
	c := providerclient.New(Name, cfg.BaseURL, cfg.Token)
	if cfg.Timeout > 0 {
		c.HTTP.Timeout = cfg.Timeout
		c.DefaultTimeout = cfg.Timeout
	}
	return &Adapter{client: c}
}

// Driver composes this Adapter's capability services. Snapshots and
// Volumes are routed through wrapper types because their method names
// collide with Lifecycle's (Create/List/Get) on the same receiver.
func (a *Adapter) Driver() *sandbox.Driver {
	return sandbox.Compose(Name, a, a, a, snapshotsService{a}, volumesService{a}, a)
}

func (a *Adapter) opCtx(capability, op, id string) providerclient.RequestOptions {
	return providerclient.RequestOptions{Capability: capability, Operation: op, SandboxID: id}
}
