// Package blaxel implements the capability-split Driver over Blaxel's
// sandbox REST API. No vendor Go SDK exists in the retrieval pack (see
// DESIGN.md), so this adapter speaks the vendor HTTP API directly
// through internal/providerclient.
package blaxel

import (
	"github.com/boxed-run/sdk/internal/config"
	"github.com/boxed-run/sdk/internal/providerclient"
	"github.com/boxed-run/sdk/internal/sandbox"
)

const Name = "blaxel"

// Adapter splits requests across two clients: account, an
// account-scoped client for lifecycle CRUD (create/list/get/delete),
// and sandboxes, a providerclient.SandboxClient that discovers and
// caches each sandbox's own base URL on first use for exec/fs calls
// (spec.md §4.4.9, url_cache.go).
type Adapter struct {
	account   *providerclient.Client
	sandboxes *providerclient.SandboxClient
}

func New(cfg config.Provider) *Adapter {
	account := providerclient.New(Name, cfg.BaseURL, cfg.Token)
	account.AuthStyle = providerclient.AuthWorkspaceHeader
	account.WorkspaceID = cfg.Workspace
	account.WorkspaceHdr = "x-blaxel-workspace"
	if cfg.Timeout > 0 {
		account.HTTP.Timeout = cfg.Timeout
		account.DefaultTimeout = cfg.Timeout
	}

	a := &Adapter{account: account}
	a.sandboxes = providerclient.NewSandboxClient(account, a.resolveURL)
	return a
}

// Driver composes this Adapter's capability services. Blaxel has no
// snapshot or volume API, so both are unsupported stubs.
func (a *Adapter) Driver() *sandbox.Driver {
	return sandbox.Compose(Name, a, a, a, sandbox.UnsupportedSnapshots(Name), sandbox.UnsupportedVolumes(Name), a)
}

func (a *Adapter) opCtx(capability, op, id string) providerclient.RequestOptions {
	return providerclient.RequestOptions{Capability: capability, Operation: op, SandboxID: id}
}
