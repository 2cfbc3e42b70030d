package blaxel

import (
	"context"
	"time"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
)

type createRequest struct {
	Image    string            `json:"image"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Env      map[string]string `json:"env,omitempty"`
	Memory   int64             `json:"memory,omitempty"`
}

type sandboxResponse struct {
	ID        string            `json:"name"`
	Status    blaxelState       `json:"status"`
	URL       string            `json:"url"`
	CreatedAt time.Time         `json:"createdAt"`
	Metadata  map[string]string `json:"metadata"`
}

func (a *Adapter) Create(ctx context.Context, opts sandbox.CreateOptions) (*sandbox.SandboxInfo, error) {
	if err := opts.Validate(Name); err != nil {
		return nil, err
	}

	req := createRequest{
		Image:    resolveImage(opts.Image),
		Metadata: opts.Labels,
		Env:      opts.Env,
		Memory:   opts.MemoryMiB,
	}

	var resp sandboxResponse
	if err := a.account.Do(ctx, "POST", "/sandboxes", req, &resp, a.opCtx("lifecycle", "Create", "")); err != nil {
		return nil, err
	}

	return &sandbox.SandboxInfo{
		ID:        resp.ID,
		Name:      opts.Name,
		Provider:  Name,
		Status:    mapStatus(resp.Status),
		CreatedAt: resp.CreatedAt,
		Metadata:  resp.Metadata,
	}, nil
}

// Destroy deletes the sandbox and forgets its cached base URL, so a
// reused id (unlikely, but not impossible across providers) re-resolves
// instead of hitting a stale address (spec.md §4.4.9).
func (a *Adapter) Destroy(ctx context.Context, id string) error {
	err := a.account.Do(ctx, "DELETE", "/sandboxes/"+id, nil, nil, a.opCtx("lifecycle", "Destroy", id))
	a.sandboxes.Forget(id)
	return err
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
	if err := a.account.Do(ctx, "GET", "/sandboxes/"+id, nil, &resp, a.opCtx("lifecycle", "Get", id)); err != nil {
		return nil, err
	}
	return &sandbox.SandboxInfo{
		ID:        resp.ID,
		Provider:  Name,
		Status:    mapStatus(resp.Status),
		CreatedAt: resp.CreatedAt,
		Metadata:  resp.Metadata,
	}, nil
}

func (a *Adapter) List(ctx context.Context) ([]*sandbox.SandboxInfo, error) {
	var resp []sandboxResponse
	if err := a.account.Do(ctx, "GET", "/sandboxes", nil, &resp, a.opCtx("lifecycle", "List", "")); err != nil {
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
			Status:    mapStatus(s.Status),
			CreatedAt: s.CreatedAt,
			Metadata:  s.Metadata,
		})
	}
	return out, nil
}
