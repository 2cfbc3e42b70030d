package docker

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/google/uuid"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
)

// snapshotTag derives the image reference a committed snapshot is
// stored under: one tag per sandbox, versioned by a random suffix so a
// single sandbox can accumulate several snapshots.
func snapshotTag(sandboxID, snapshotID string) string {
	return fmt.Sprintf("boxed-snapshot:%s-%s", sandboxID, snapshotID)
}

// snapshotsService exposes Adapter's snapshot methods under the exact
// method names sandbox.Snapshots requires. A separate wrapper type is
// needed because sandbox.Lifecycle already claims Create/List on
// *Adapter with different signatures — Go does not allow overloading.
type snapshotsService struct{ *Adapter }

func (s snapshotsService) Create(ctx context.Context, id string, metadata map[string]string) (*sandbox.SnapshotInfo, error) {
	return s.Adapter.CreateSnapshot(ctx, id, metadata)
}

func (s snapshotsService) List(ctx context.Context, id string) ([]*sandbox.SnapshotInfo, error) {
	return s.Adapter.ListSnapshots(ctx, id)
}

// CreateSnapshot freezes the sandbox's current filesystem with `docker
// commit`, Docker's closest analogue to the hosted providers' snapshot
// APIs (spec.md §4.4.2 carries this capability only for Modal and
// Docker).
func (a *Adapter) CreateSnapshot(ctx context.Context, id string, metadata map[string]string) (*sandbox.SnapshotInfo, error) {
	snapID := uuid.NewString()
	tag := snapshotTag(id, snapID)

	labels := map[string]string{ManagedLabel: "true", "xyz.boxed.snapshot_of": id}
	for k, v := range metadata {
		labels["xyz.boxed.meta."+k] = v
	}

	_, err := a.cli.ContainerCommit(ctx, id, types.ContainerCommitOptions{
		Reference: tag,
		Comment:   "boxed sandbox snapshot",
		Config:    nil,
	})
	if err != nil {
		return nil, boxederr.Wrap(boxederr.KindProvider, err, a.opCtx("snapshots", "Create", id), "failed to commit snapshot")
	}

	return &sandbox.SnapshotInfo{
		ID:        snapID,
		CreatedAt: time.Now().UTC(),
		Metadata:  metadata,
	}, nil
}

// ListSnapshots enumerates images committed from this sandbox by tag
// prefix. Listing is best-effort: a transient registry/daemon hiccup
// degrades to an empty slice rather than failing the caller.
func (a *Adapter) ListSnapshots(ctx context.Context, id string) ([]*sandbox.SnapshotInfo, error) {
	images, err := a.cli.ImageList(ctx, types.ImageListOptions{All: true})
	if err != nil {
		return nil, nil
	}

	prefix := fmt.Sprintf("boxed-snapshot:%s-", id)
	var out []*sandbox.SnapshotInfo
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if len(tag) > len(prefix) && tag[:len(prefix)] == prefix {
				out = append(out, &sandbox.SnapshotInfo{
					ID:        tag[len(prefix):],
					CreatedAt: time.Unix(img.Created, 0).UTC(),
					Metadata:  img.Labels,
				})
			}
		}
	}
	return out, nil
}
