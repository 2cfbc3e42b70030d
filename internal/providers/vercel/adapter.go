// Package vercel implements the capability-split Driver over Vercel's
// Sandbox REST API. No vendor Go SDK exists in the retrieval pack (see
// DESIGN.md), so this adapter speaks the vendor HTTP API directly
// through internal/providerclient.
package vercel

import (
	"github.com/boxed-run/sdk/internal/config"
	"github.com/boxed-run/sdk/internal/providerclient"
	"github.com/boxed-run/sdk/internal/sandbox"
)

const Name = "vercel"

// Adapter shares one providerclient.Client; Vercel's API is entirely
// account/team-scoped (teamID/projectID baked into every request), no
// per-sandbox URL discovery like Blaxel.
type Adapter struct {
	client    *providerclient.Client
	teamID    string
	projectID string
}

func New(cfg config.Provider) *Adapter {
	c := providerclient.New(Name, cfg.BaseURL, cfg.Token)
	if cfg.Timeout > 0 {
		c.HTTP.Timeout = cfg.Timeout
		c.DefaultTimeout = cfg.Timeout
	}
	return &Adapter{client: c, teamID: cfg.Workspace, projectID: cfg.AccountID}
}

// Driver composes this Adapter's capability services. Vercel has no
// snapshot or volume API, so both are unsupported stubs.
func (a *Adapter) Driver() *sandbox.Driver {
	return sandbox.Compose(Name, a, a, a, sandbox.UnsupportedSnapshots(Name), sandbox.UnsupportedVolumes(Name), a)
}

func (a *Adapter) opCtx(capability, op, id string) providerclient.RequestOptions {
	return providerclient.RequestOptions{Capability: capability, Operation: op, SandboxID: id}
}

// scopeQuery appends Vercel's team/project scoping params, required on
// every account-level call.
func (a *Adapter) scopeQuery() string {
	q := ""
	if a.teamID != "" {
		q += "?teamId=" + a.teamID
	}
	if a.projectID != "" {
		if q == "" {
			q = "?projectId=" + a.projectID
		} else {
			q += "&projectId=" + a.projectID
		}
	}
	return q
}
