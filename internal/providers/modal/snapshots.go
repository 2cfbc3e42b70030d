package modal

import (
	"context"
	"time"

	"github.com/boxed-run/sdk/internal/sandbox"
)

// snapshotsService exposes Adapter's snapshot methods under the exact
// names sandbox.Snapshots requires — Lifecycle already claims
// Create/List on *Adapter with different signatures.
type snapshotsService struct{ *Adapter }

func (s snapshotsService) Create(ctx context.Context, id string, metadata map[string]string) (*sandbox.SnapshotInfo, error) {
	return s.Adapter.CreateSnapshot(ctx, id, metadata)
}

func (s snapshotsService) List(ctx context.Context, id string) ([]*sandbox.SnapshotInfo, error) {
	return s.Adapter.ListSnapshots(ctx, id)
}

type snapshotRequest struct {
	Metadata map[string]string `json:"metadata,omitempty"`
}

type snapshotResponse struct {
	ImageID   string            `json:"image_id"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata"`
}

// CreateSnapshot calls Modal's vendor snapshot endpoint, returning the
// provider image id as the snapshot's identity (spec.md §4.4.6).
func (a *Adapter) CreateSnapshot(ctx context.Context, id string, metadata map[string]string) (*sandbox.SnapshotInfo, error) {
	var resp snapshotResponse
	req := snapshotRequest{Metadata: metadata}
	if err := a.client.Do(ctx, "POST", "/sandboxes/"+id+"/snapshot", req, &resp, a.opCtx("snapshots", "Create", id)); err != nil {
		return nil, err
	}
	return &sandbox.SnapshotInfo{ID: resp.ImageID, CreatedAt: resp.CreatedAt, Metadata: resp.Metadata}, nil
}

// ListSnapshots lists the snapshot images taken from this sandbox.
func (a *Adapter) ListSnapshots(ctx context.Context, id string) ([]*sandbox.SnapshotInfo, error) {
	var resp struct {
		Snapshots []snapshotResponse `json:"snapshots"`
	}
	if err := a.client.Do(ctx, "GET", "/sandboxes/"+id+"/snapshots", nil, &resp, a.opCtx("snapshots", "List", id)); err != nil {
		return nil, nil
	}
	out := make([]*sandbox.SnapshotInfo, 0, len(resp.Snapshots))
	for _, s := range resp.Snapshots {
		out = append(out, &sandbox.SnapshotInfo{ID: s.ImageID, CreatedAt: s.CreatedAt, Metadata: s.Metadata})
	}
	return out, nil
}
