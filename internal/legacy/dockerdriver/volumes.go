package dockerdriver

import (
	"context"
	"time"

	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
)

func (d *Driver) volCtx(op, name string) boxederr.OpContext {
	return boxederr.OpContext{Provider: DriverName, Capability: "volumes", Operation: op, SandboxID: name}
}

func (d *Driver) CreateVolume(ctx context.Context, name string) (*sandbox.VolumeInfo, error) {
	vol, err := d.cli.VolumeCreate(ctx, volume.CreateOptions{Name: name, Labels: map[string]string{ManagedLabel: "true"}})
	if err != nil {
		return nil, boxederr.Wrap(boxederr.KindProvider, err, d.volCtx("CreateVolume", name), "failed to create volume %s", name)
	}
	return &sandbox.VolumeInfo{ID: vol.Name, Name: vol.Name, CreatedAt: parseLegacyVolumeCreatedAt(vol.CreatedAt)}, nil
}

func (d *Driver) DeleteVolume(ctx context.Context, name string) error {
	if err := d.cli.VolumeRemove(ctx, name, true); err != nil {
		if client.IsErrNotFound(err) {
			return boxederr.New(boxederr.KindNotFound, d.volCtx("DeleteVolume", name), "volume not found")
		}
		return boxederr.Wrap(boxederr.KindProvider, err, d.volCtx("DeleteVolume", name), "failed to remove volume %s", name)
	}
	return nil
}

func (d *Driver) ListVolumes(ctx context.Context) ([]*sandbox.VolumeInfo, error) {
	resp, err := d.cli.VolumeList(ctx, volume.ListOptions{Filters: filters.NewArgs(filters.Arg("label", ManagedLabel+"=true"))})
	if err != nil {
		return nil, boxederr.Wrap(boxederr.KindProvider, err, d.volCtx("ListVolumes", ""), "failed to list volumes")
	}

	out := make([]*sandbox.VolumeInfo, 0, len(resp.Volumes))
	for _, vol := range resp.Volumes {
		out = append(out, &sandbox.VolumeInfo{ID: vol.Name, Name: vol.Name, CreatedAt: parseLegacyVolumeCreatedAt(vol.CreatedAt)})
	}
	return out, nil
}

func (d *Driver) GetVolume(ctx context.Context, name string) (*sandbox.VolumeInfo, error) {
	vol, err := d.cli.VolumeInspect(ctx, name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, boxederr.New(boxederr.KindNotFound, d.volCtx("GetVolume", name), "volume not found")
		}
		return nil, boxederr.Wrap(boxederr.KindProvider, err, d.volCtx("GetVolume", name), "failed to inspect volume %s", name)
	}
	return &sandbox.VolumeInfo{ID: vol.Name, Name: vol.Name, CreatedAt: parseLegacyVolumeCreatedAt(vol.CreatedAt)}, nil
}

func parseLegacyVolumeCreatedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
