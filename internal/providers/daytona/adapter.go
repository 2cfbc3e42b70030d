// Package daytona implements the capability-split Driver over Daytona's
// workspace REST/WebSocket API. No vendor Go SDK exists in the
// retrieval pack (see DESIGN.md), so this adapter speaks the vendor
// HTTP/WS API directly through internal/providerclient.
package daytona

import (
	"context"

	"github.com/boxed-run/sdk/internal/config"
	"github.com/boxed-run/sdk/internal/providerclient"
	"github.com/boxed-run/sdk/internal/sandbox"
)

const Name = "daytona"

// Adapter shares one providerclient.Client and a dialer for the
// WebSocket exec stream. Daytona has native pause/resume, so Adapter
// additionally satisfies sandbox.Pauser.
type Adapter struct {
	client *providerclient.Client
	dialer WSDialer
}

// WSDialer opens the WebSocket connection Daytona's exec-stream
// endpoint upgrades to. Abstracted so tests can substitute a fake
// dialer without a live server.
type WSDialer func(ctx context.Context, url string, header map[string][]string) (providerclient.WSConn, error)

func New(cfg config.Provider, dialer WSDialer) *Adapter {
	c := providerclient.New(Name, cfg.BaseURL, cfg.Token)
	if cfg.Timeout > 0 {
		c.HTTP.Timeout = cfg.Timeout
		c.DefaultTimeout = cfg.Timeout
	}
	return &Adapter{client: c, dialer: dialer}
}

// Driver composes this adapter's capability services. Snapshots and
// Volumes are unsupported stubs — Daytona exposes neither in its
// vendor API (spec.md §4.4.6-7); Lifecycle additionally satisfies
// Pauser via pause.go.
func (a *Adapter) Driver() *sandbox.Driver {
	return sandbox.Compose(Name, a, a, a, sandbox.UnsupportedSnapshots(Name), sandbox.UnsupportedVolumes(Name), a)
}

func (a *Adapter) opCtx(capability, op, id string) providerclient.RequestOptions {
	return providerclient.RequestOptions{Capability: capability, Operation: op, SandboxID: id}
}
