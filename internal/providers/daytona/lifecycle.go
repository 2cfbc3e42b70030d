package daytona

import (
	"context"
	"time"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
)

type createRequest struct {
	Image    string            `json:"image"`
	Labels   map[string]string `json:"labels,omitempty"`
	Env      map[string]string `json:"env,omitempty"`
	AutoStop int64             `json:"autoStopInterval,omitempty"`
}

type workspaceResponse struct {
	ID        string            `json:"id"`
	State     daytonaState      `json:"state"`
	CreatedAt time.Time         `json:"createdAt"`
	Labels    map[string]string `json:"labels"`
}

func (a *Adapter) Create(ctx context.Context, opts sandbox.CreateOptions) (*sandbox.SandboxInfo, error) {
	if err := opts.Validate(Name); err != nil {
		return nil, err
	}

	req := createRequest{
		Image:    resolveImage(opts.Image),
		Labels:   opts.Labels,
		Env:      opts.Env,
		AutoStop: opts.IdleTimeoutMs / 60000,
	}

	var resp workspaceResponse
	if err := a.client.Do(ctx, "POST", "/workspace", req, &resp, a.opCtx("lifecycle", "Create", "")); err != nil {
		return nil, err
	}

	return &sandbox.SandboxInfo{
		ID:        resp.ID,
		Name:      opts.Name,
		Provider:  Name,
		Status:    mapStatus(resp.State),
		CreatedAt: resp.CreatedAt,
		Metadata:  resp.Labels,
	}, nil
}

func (a *Adapter) Destroy(ctx context.Context, id string) error {
	return a.client.Do(ctx, "DELETE", "/workspace/"+id, nil, nil, a.opCtx("lifecycle", "Destroy", id))
}

func (a *Adapter) Status(ctx context.Context, id string) (sandbox.Status, error) {
	info, err := a.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return info.Status, nil
}

func (a *Adapter) Get(ctx context.Context, id string) (*sandbox.SandboxInfo, error) {
	var resp workspaceResponse
	if err := a.client.Do(ctx, "GET", "/workspace/"+id, nil, &resp, a.opCtx("lifecycle", "Get", id)); err != nil {
		return nil, err
	}
	return &sandbox.SandboxInfo{
		ID:        resp.ID,
		Provider:  Name,
		Status:    mapStatus(resp.State),
		CreatedAt: resp.CreatedAt,
		Metadata:  resp.Labels,
	}, nil
}

func (a *Adapter) List(ctx context.Context) ([]*sandbox.SandboxInfo, error) {
	var resp []workspaceResponse
	if err := a.client.Do(ctx, "GET", "/workspace", nil, &resp, a.opCtx("lifecycle", "List", "")); err != nil {
		if kind, ok := boxederr.KindOf(err); ok && (kind == boxederr.KindProvider || kind == boxederr.KindNetwork || kind == boxederr.KindTimeout) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]*sandbox.SandboxInfo, 0, len(resp))
	for _, w := range resp {
		out = append(out, &sandbox.SandboxInfo{
			ID:        w.ID,
			Provider:  Name,
			Status:    mapStatus(w.State),
			CreatedAt: w.CreatedAt,
			Metadata:  w.Labels,
		})
	}
	return out, nil
}
