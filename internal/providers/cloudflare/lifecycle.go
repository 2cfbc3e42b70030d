package cloudflare

import (
	"context"
	"time"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
)

type createRequest struct {
	Image string            `json:"image"`
	Env   map[string]string `json:"env,omitempty"`
	Tags  map[string]string `json:"tags,omitempty"`
}

type sandboxResponse struct {
	ID        string            `json:"id"`
	State     cloudflareState   `json:"state"`
	CreatedAt time.Time         `json:"created_at"`
	Tags      map[string]string `json:"tags"`
}

func (a *Adapter) Create(ctx context.Context, opts sandbox.CreateOptions) (*sandbox.SandboxInfo, error) {
	if err := opts.Validate(Name); err != nil {
		return nil, err
	}

	req := createRequest{Image: resolveImage(opts.Image), Env: opts.Env, Tags: opts.Labels}

	var resp sandboxResponse
	if err := a.client.Do(ctx, "POST", "/sandboxes", req, &resp, a.opCtx("lifecycle", "Create", "")); err != nil {
		return nil, err
	}

	return &sandbox.SandboxInfo{
		ID:        resp.ID,
		Name:      opts.Name,
		Provider:  Name,
		Status:    mapStatus(resp.State),
		CreatedAt: resp.CreatedAt,
		Metadata:  resp.Tags,
	}, nil
}

func (a *Adapter) Destroy(ctx context.Context, id string) error {
	return a.client.Do(ctx, "DELETE", "/sandboxes/"+id, nil, nil, a.opCtx("lifecycle", "Destroy", id))
}

func (a *Adapter) Status(ctx context.Context, id string) (sandbox.Status, error) {
	info, err := a.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return info.Status, nil
}

func (a *Adapter) Get(ctx context.Context, id string) (*sandbox.SandboxInfo, error) {
	var resp sandboxResponse
	if err := a.client.Do(ctx, "GET", "/sandboxes/"+id, nil, &resp, a.opCtx("lifecycle", "Get", id)); err != nil {
		return nil, err
	}
	return &sandbox.SandboxInfo{
		ID:        resp.ID,
		Provider:  Name,
		Status:    mapStatus(resp.State),
		CreatedAt: resp.CreatedAt,
		Metadata:  resp.Tags,
	}, nil
}

func (a *Adapter) List(ctx context.Context) ([]*sandbox.SandboxInfo, error) {
	var resp []sandboxResponse
	if err := a.client.Do(ctx, "GET", "/sandboxes", nil, &resp, a.opCtx("lifecycle", "List", "")); err != nil {
		if kind, ok := boxederr.KindOf(err); ok && (kind == boxederr.KindProvider || kind == boxederr.KindNetwork || kind == boxederr.KindTimeout) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]*sandbox.SandboxInfo, 0, len(resp))
	for _, s := range resp {
		out = append(out, &sandbox.SandboxInfo{
			ID:        s.ID,
			Provider:  Name,
			Status:    mapStatus(s.State),
			CreatedAt: s.CreatedAt,
			Metadata:  s.Tags,
		})
	}
	return out, nil
}
