package docker

import (
	"context"
	"time"

	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
)

// volumesService exposes Adapter's volume methods under the exact
// method names sandbox.Volumes requires, for the same reason
// snapshotsService exists: Lifecycle/Snapshots already claim
// Create/List/Get on *Adapter.
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

// CreateVolume wraps `docker volume create`, labeling it so ListVolumes
// only ever returns volumes this adapter manages.
func (a *Adapter) CreateVolume(ctx context.Context, name string) (*sandbox.VolumeInfo, error) {
	vol, err := a.cli.VolumeCreate(ctx, volume.CreateOptions{
		Name:   name,
		Labels: map[string]string{ManagedLabel: "true"},
	})
	if err != nil {
		return nil, boxederr.Wrap(boxederr.KindProvider, err, a.opCtx("volumes", "Create", ""), "failed to create volume %s", name)
	}

	return &sandbox.VolumeInfo{
		ID:        vol.Name,
		Name:      vol.Name,
		CreatedAt: parseVolumeCreatedAt(vol.CreatedAt),
	}, nil
}

// DeleteVolume removes a named volume. Refuses nothing — callers are
// responsible for ensuring no sandbox still mounts it.
func (a *Adapter) DeleteVolume(ctx context.Context, name string) error {
	if err := a.cli.VolumeRemove(ctx, name, true); err != nil {
		if client.IsErrNotFound(err) {
			return boxederr.New(boxederr.KindNotFound, a.opCtx("volumes", "Delete", ""), "volume not found")
		}
		return boxederr.Wrap(boxederr.KindProvider, err, a.opCtx("volumes", "Delete", ""), "failed to remove volume %s", name)
	}
	return nil
}

// ListVolumes enumerates every volume this adapter has created.
func (a *Adapter) ListVolumes(ctx context.Context) ([]*sandbox.VolumeInfo, error) {
	resp, err := a.cli.VolumeList(ctx, volume.ListOptions{
		Filters: filters.NewArgs(filters.Arg("label", ManagedLabel+"=true")),
	})
	if err != nil {
		return nil, boxederr.Wrap(boxederr.KindProvider, err, a.opCtx("volumes", "List", ""), "failed to list volumes")
	}

	out := make([]*sandbox.VolumeInfo, 0, len(resp.Volumes))
	for _, vol := range resp.Volumes {
		out = append(out, &sandbox.VolumeInfo{
			ID:        vol.Name,
			Name:      vol.Name,
			CreatedAt: parseVolumeCreatedAt(vol.CreatedAt),
		})
	}
	return out, nil
}

// GetVolume inspects a single named volume.
func (a *Adapter) GetVolume(ctx context.Context, name string) (*sandbox.VolumeInfo, error) {
	vol, err := a.cli.VolumeInspect(ctx, name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, boxederr.New(boxederr.KindNotFound, a.opCtx("volumes", "Get", ""), "volume not found")
		}
		return nil, boxederr.Wrap(boxederr.KindProvider, err, a.opCtx("volumes", "Get", ""), "failed to inspect volume %s", name)
	}

	return &sandbox.VolumeInfo{
		ID:        vol.Name,
		Name:      vol.Name,
		CreatedAt: parseVolumeCreatedAt(vol.CreatedAt),
	}, nil
}

func parseVolumeCreatedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
