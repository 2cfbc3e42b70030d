package e2b

import (
	"context"
	"time"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
)

type createRequest struct {
	TemplateID string            `json:"templateID"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	EnvVars    map[string]string `json:"envVars,omitempty"`
	TimeoutS   int64             `json:"timeout,omitempty"`
}

type sandboxResponse struct {
	SandboxID string    `json:"sandboxID"`
	State     e2bState  `json:"state"`
	StartedAt time.Time `json:"startedAt"`
	Metadata  map[string]string `json:"metadata"`
}

func (a *Adapter) Create(ctx context.Context, opts sandbox.CreateOptions) (*sandbox.SandboxInfo, error) {
	if err := opts.Validate(Name); err != nil {
		return nil, err
	}

	req := createRequest{
		TemplateID: resolveImage(opts.Image),
		Metadata:   opts.Labels,
		EnvVars:    opts.Env,
		TimeoutS:   opts.TimeoutMs / 1000,
	}

	var resp sandboxResponse
	if err := a.client.Do(ctx, "POST", "/sandboxes", req, &resp, a.opCtx("lifecycle", "Create", "")); err != nil {
		return nil, err
	}

	return &sandbox.SandboxInfo{
		ID:        resp.SandboxID,
		Name:      opts.Name,
		Provider:  Name,
		Status:    mapStatus(resp.State),
		CreatedAt: resp.StartedAt,
		Metadata:  resp.Metadata,
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
		ID:        resp.SandboxID,
		Provider:  Name,
		Status:    mapStatus(resp.State),
		CreatedAt: resp.StartedAt,
		Metadata:  resp.Metadata,
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
			ID:        s.SandboxID,
			Provider:  Name,
			Status:    mapStatus(s.State),
			CreatedAt: s.StartedAt,
			Metadata:  s.Metadata,
		})
	}
	return out, nil
}
