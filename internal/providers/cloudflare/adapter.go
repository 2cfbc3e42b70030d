// Package cloudflare implements the capability-split Driver over
// Cloudflare's Sandbox SDK REST/WebSocket API. No vendor Go SDK exists
// in the retrieval pack (see DESIGN.md), so this adapter speaks the
// vendor HTTP/WS API directly through internal/providerclient.
package cloudflare

import (
	"context"
	"encoding/json"

	"github.com/boxed-run/sdk/internal/config"
	"github.com/boxed-run/sdk/internal/providerclient"
	"github.com/boxed-run/sdk/internal/sandbox"
)

const Name = "cloudflare"

// cloudflareEnvelope is Cloudflare's standard REST error wrapper.
type cloudflareEnvelope struct {
	Success bool                `json:"success"`
	Errors  []cloudflareErrItem `json:"errors"`
}

type cloudflareErrItem struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// parseEnvelope extracts the first error message from Cloudflare's
// {success,errors[]} envelope, for providerclient.Client.ParseEnvelope.
func parseEnvelope(body []byte) string {
	var env cloudflareEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Errors) == 0 {
		return ""
	}
	return env.Errors[0].Message
}

// WSDialer opens the WebSocket connection Cloudflare's exec-stream
// endpoint upgrades to.
type WSDialer func(ctx context.Context, url string, header map[string][]string) (providerclient.WSConn, error)

// Adapter shares one providerclient.Client, account-scoped (account id
// baked into the base URL path per spec.md §5.3 AuthAccountPath), and a
// dialer for the WebSocket exec stream.
type Adapter struct {
	client      *providerclient.Client
	dialer      WSDialer
	useQueryAuth bool
}

func New(cfg config.Provider, dialer WSDialer) *Adapter {
	c := providerclient.New(Name, cfg.BaseURL+"/accounts/"+cfg.AccountID, cfg.Token)
	c.AuthStyle = providerclient.AuthAccountPath
	c.ParseEnvelope = parseEnvelope
	if cfg.Timeout > 0 {
		c.HTTP.Timeout = cfg.Timeout
		c.DefaultTimeout = cfg.Timeout
	}
	return &Adapter{client: c, dialer: dialer, useQueryAuth: cfg.UseQueryAuth}
}

// Driver composes this Adapter's capability services. Cloudflare has
// no snapshot or volume API, so both are unsupported stubs.
func (a *Adapter) Driver() *sandbox.Driver {
	return sandbox.Compose(Name, a, a, a, sandbox.UnsupportedSnapshots(Name), sandbox.UnsupportedVolumes(Name), a)
}

func (a *Adapter) opCtx(capability, op, id string) providerclient.RequestOptions {
	return providerclient.RequestOptions{Capability: capability, Operation: op, SandboxID: id}
}
