package modal

import (
	"context"
	"time"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
)

type createRequest struct {
	Image     string            `json:"image"`
	Command   []string          `json:"command,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
	Workdir   string            `json:"workdir,omitempty"`
	CPU       float64           `json:"cpu,omitempty"`
	MemoryMiB int64             `json:"memory_mib,omitempty"`
	GPU       string            `json:"gpu,omitempty"`
	TimeoutS  int64             `json:"timeout_s,omitempty"`
	Ports     []int             `json:"ports,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
}

type sandboxResponse struct {
	ID        string            `json:"sandbox_id"`
	CreatedAt time.Time         `json:"created_at"`
	Labels    map[string]string `json:"labels"`
	modalState
}

// Create provisions a Modal sandbox via the vendor REST API.
func (a *Adapter) Create(ctx context.Context, opts sandbox.CreateOptions) (*sandbox.SandboxInfo, error) {
	if err := opts.Validate(Name); err != nil {
		return nil, err
	}

	req := createRequest{
		Image:     resolveImage(opts.Image),
		Command:   opts.Command,
		Env:       opts.Env,
		Workdir:   opts.Workdir,
		CPU:       opts.CPU,
		MemoryMiB: opts.MemoryMiB,
		GPU:       opts.GPU,
		TimeoutS:  opts.TimeoutMs / 1000,
		Ports:     append(append([]int{}, opts.EncryptedPorts...), opts.UnencryptedPorts...),
		Labels:    opts.Labels,
	}

	var resp sandboxResponse
	if err := a.client.Do(ctx, "POST", "/sandboxes", req, &resp, a.opCtx("lifecycle", "Create", "")); err != nil {
		return nil, err
	}

	return &sandbox.SandboxInfo{
		ID:        resp.ID,
		Name:      opts.Name,
		Provider:  Name,
		Status:    mapStatus(resp.modalState),
		CreatedAt: resp.CreatedAt,
		Metadata:  resp.Labels,
	}, nil
}

// Destroy terminates a Modal sandbox.
func (a *Adapter) Destroy(ctx context.Context, id string) error {
	return a.client.Do(ctx, "DELETE", "/sandboxes/"+id, nil, nil, a.opCtx("lifecycle", "Destroy", id))
}

// Status polls the sandbox's current state and maps it uniformly.
func (a *Adapter) Status(ctx context.Context, id string) (sandbox.Status, error) {
	info, err := a.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return info.Status, nil
}

// Get fetches a single sandbox's current info.
func (a *Adapter) Get(ctx context.Context, id string) (*sandbox.SandboxInfo, error) {
	var resp sandboxResponse
	if err := a.client.Do(ctx, "GET", "/sandboxes/"+id, nil, &resp, a.opCtx("lifecycle", "Get", id)); err != nil {
		return nil, err
	}
	return &sandbox.SandboxInfo{
		ID:        resp.ID,
		Provider:  Name,
		Status:    mapStatus(resp.modalState),
		CreatedAt: resp.CreatedAt,
		Metadata:  resp.Labels,
	}, nil
}

// List enumerates sandboxes visible to this account. Per spec.md §4.4
// closing paragraph, a transient provider hiccup degrades to an empty
// slice rather than an error.
func (a *Adapter) List(ctx context.Context) ([]*sandbox.SandboxInfo, error) {
	var resp struct {
		Sandboxes []sandboxResponse `json:"sandboxes"`
	}
	if err := a.client.Do(ctx, "GET", "/sandboxes", nil, &resp, a.opCtx("lifecycle", "List", "")); err != nil {
		if kind, ok := boxederr.KindOf(err); ok && (kind == boxederr.KindProvider || kind == boxederr.KindNetwork || kind == boxederr.KindTimeout) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]*sandbox.SandboxInfo, 0, len(resp.Sandboxes))
	for _, s := range resp.Sandboxes {
		out = append(out, &sandbox.SandboxInfo{
			ID:        s.ID,
			Provider:  Name,
			Status:    mapStatus(s.modalState),
			CreatedAt: s.CreatedAt,
			Metadata:  s.Labels,
		})
	}
	return out, nil
}
