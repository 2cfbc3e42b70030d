package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/boxed-run/sdk/internal/boxederr"
)

// memStore is an in-process Store good for the CLI's local `serve`
// mode and for tests; every table is a plain map guarded by one mutex,
// matching spec.md §5 "Shared-resource policy" (brief lock for lookups,
// atomic replace for writes).
type memStore struct {
	mu        sync.Mutex
	keys      map[string]ProviderKey
	sandboxes []SandboxRecord
	runs      []RunRecord
}

// NewMemStore returns a Store with no durability across process restarts.
func NewMemStore() Store {
	return &memStore{keys: make(map[string]ProviderKey)}
}

func (m *memStore) PutKey(ctx context.Context, key ProviderKey) (*ProviderKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if key.ID == "" {
		key.ID = uuid.NewString()
	}
	key.CreatedAt = time.Now().UTC()
	m.keys[key.ID] = key
	out := key
	return &out, nil
}

func (m *memStore) ListKeys(ctx context.Context, userID string) ([]ProviderKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ProviderKey, 0, len(m.keys))
	for _, k := range m.keys {
		if k.UserID == userID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *memStore) DeleteKey(ctx context.Context, userID, keyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k, ok := m.keys[keyID]
	if !ok || k.UserID != userID {
		return boxederr.New(boxederr.KindNotFound, boxederr.OpContext{Operation: "DeleteKey"}, "key %q not found", keyID)
	}
	delete(m.keys, keyID)
	return nil
}

func (m *memStore) RecordSandbox(ctx context.Context, rec SandboxRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = time.Now().UTC()
	m.sandboxes = append(m.sandboxes, rec)
	return nil
}

func (m *memStore) ListSandboxes(ctx context.Context, userID string) ([]SandboxRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SandboxRecord, 0)
	for _, r := range m.sandboxes {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) RecordRun(ctx context.Context, rec RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = time.Now().UTC()
	m.runs = append(m.runs, rec)
	return nil
}

func (m *memStore) ListRuns(ctx context.Context, userID string) ([]RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]RunRecord, 0)
	for _, r := range m.runs {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}
