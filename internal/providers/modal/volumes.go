package modal

import (
	"context"
	"time"

	"github.com/boxed-run/sdk/internal/sandbox"
)

// volumesService exposes Adapter's volume methods under the exact names
// sandbox.Volumes requires, for the reason snapshotsService exists.
type volumesService struct{ *Adapter }

func (v volumesService) Create(ctx context.Context, name string) (*sandbox.VolumeInfo, error) {
	return v.Adapter.CreateVolume(ctx, name)
}
func (v volumesService) Delete(ctx context.Context, name string) error {
	return v.Adapter.DeleteVolume(ctx, name)
}
func (v volumesService) List(ctx context.Context) ([]*sandbox.VolumeInfo, error) {
	return v.Adapter.ListVolumes(ctx)
}
func (v volumesService) Get(ctx context.Context, name string) (*sandbox.VolumeInfo, error) {
	return v.Adapter.GetVolume(ctx, name)
}

type volumeRequest struct {
	Name            string `json:"name"`
	CreateIfMissing bool   `json:"create_if_missing"`
}

type volumeResponse struct {
	ID        string    `json:"volume_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateVolume uses Modal's vendor volume-by-name API with
// createIfMissing=true (spec.md §4.4.7).
func (a *Adapter) CreateVolume(ctx context.Context, name string) (*sandbox.VolumeInfo, error) {
	var resp volumeResponse
	req := volumeRequest{Name: name, CreateIfMissing: true}
	if err := a.client.Do(ctx, "POST", "/volumes", req, &resp, a.opCtx("volumes", "Create", "")); err != nil {
		return nil, err
	}
	return &sandbox.VolumeInfo{ID: resp.ID, Name: resp.Name, CreatedAt: resp.CreatedAt}, nil
}

func (a *Adapter) DeleteVolume(ctx context.Context, name string) error {
	return a.client.Do(ctx, "DELETE", "/volumes/"+name, nil, nil, a.opCtx("volumes", "Delete", ""))
}

func (a *Adapter) ListVolumes(ctx context.Context) ([]*sandbox.VolumeInfo, error) {
	var resp struct {
		Volumes []volumeResponse `json:"volumes"`
	}
	if err := a.client.Do(ctx, "GET", "/volumes", nil, &resp, a.opCtx("volumes", "List", "")); err != nil {
		return nil, nil
	}
	out := make([]*sandbox.VolumeInfo, 0, len(resp.Volumes))
	for _, v := range resp.Volumes {
		out = append(out, &sandbox.VolumeInfo{ID: v.ID, Name: v.Name, CreatedAt: v.CreatedAt})
	}
	return out, nil
}

func (a *Adapter) GetVolume(ctx context.Context, name string) (*sandbox.VolumeInfo, error) {
	var resp volumeResponse
	if err := a.client.Do(ctx, "GET", "/volumes/"+name, nil, &resp, a.opCtx("volumes", "Get", "")); err != nil {
		return nil, err
	}
	return &sandbox.VolumeInfo{ID: resp.ID, Name: resp.Name, CreatedAt: resp.CreatedAt}, nil
}
