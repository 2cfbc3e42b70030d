// Package e2b implements the capability-split Driver over E2B's sandbox
// REST API. No vendor Go SDK exists in the retrieval pack (see
// DESIGN.md), so this adapter speaks the vendor HTTP API directly
// through internal/providerclient.
package e2b

import (
	"github.com/boxed-run/sdk/internal/config"
	"github.com/boxed-run/sdk/internal/providerclient"
	"github.com/boxed-run/sdk/internal/sandbox"
)

const Name = "e2b"

// Adapter shares one providerclient.Client across Lifecycle, Process,
// Fs, and Code — E2B exposes neither persistent volumes nor snapshots,
// so it implements only four of the six capability interfaces.
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

// Driver composes this adapter's four supported capabilities. Snapshots
// and Volumes are unsupported stubs — E2B exposes neither in its
// vendor API (spec.md §4.4.6-7).
func (a *Adapter) Driver() *sandbox.Driver {
	return sandbox.Compose(Name, a, a, a, sandbox.UnsupportedSnapshots(Name), sandbox.UnsupportedVolumes(Name), a)
}

func (a *Adapter) opCtx(capability, op, id string) providerclient.RequestOptions {
	return providerclient.RequestOptions{Capability: capability, Operation: op, SandboxID: id}
}
