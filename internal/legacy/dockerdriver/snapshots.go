package dockerdriver

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/google/uuid"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
)

func legacySnapshotTag(sandboxID, snapshotID string) string {
	return fmt.Sprintf("boxed-legacy-snapshot:%s-%s", sandboxID, snapshotID)
}

// CreateSnapshot commits the container, the only snapshot primitive
// Docker offers — the same technique internal/providers/docker uses,
// tagged under a distinct prefix so the two paths' snapshots never
// collide.
func (d *Driver) CreateSnapshot(ctx context.Context, id string, metadata map[string]string) (*sandbox.SnapshotInfo, error) {
	snapID := uuid.NewString()
	tag := legacySnapshotTag(id, snapID)

	labels := map[string]string{ManagedLabel: "true", "xyz.boxed.snapshot_of": id}
	for k, v := range metadata {
		labels["xyz.boxed.meta."+k] = v
	}

	opCtx := boxederr.OpContext{Provider: DriverName, Capability: "snapshots", Operation: "CreateSnapshot", SandboxID: id}
	if _, err := d.cli.ContainerCommit(ctx, id, types.ContainerCommitOptions{Reference: tag, Comment: "boxed legacy sandbox snapshot"}); err != nil {
		return nil, boxederr.Wrap(boxederr.KindProvider, err, opCtx, "failed to commit snapshot")
	}

	return &sandbox.SnapshotInfo{ID: snapID, CreatedAt: time.Now().UTC(), Metadata: metadata}, nil
}

// ListSnapshots enumerates images committed from this sandbox.
func (d *Driver) ListSnapshots(ctx context.Context, id string) ([]*sandbox.SnapshotInfo, error) {
	images, err := d.cli.ImageList(ctx, types.ImageListOptions{All: true})
	if err != nil {
		return nil, nil
	}

	prefix := fmt.Sprintf("boxed-legacy-snapshot:%s-", id)
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
