package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreKeyRoundTrip(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	saved, err := s.PutKey(ctx, ProviderKey{UserID: "u1", Provider: "modal", Value: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	keys, err := s.ListKeys(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, keys, 1)
	assert.Equal(t, "modal", keys[0].Provider)

	require.NoError(t, s.DeleteKey(ctx, "u1", saved.ID))
	keys, err = s.ListKeys(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemStoreDeleteKeyWrongUser(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	saved, err := s.PutKey(ctx, ProviderKey{UserID: "u1", Provider: "modal"})
	require.NoError(t, err)

	err = s.DeleteKey(ctx, "u2", saved.ID)
	assert.Error(t, err)
}

func TestMemStoreSandboxAndRunHistory(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	require.NoError(t, s.RecordSandbox(ctx, SandboxRecord{UserID: "u1", Provider: "docker", SandboxID: "sbx-1"}))
	require.NoError(t, s.RecordRun(ctx, RunRecord{UserID: "u1", RunID: "run-1", Providers: []string{"docker"}}))

	sandboxes, err := s.ListSandboxes(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, sandboxes, 1)

	runs, err := s.ListRuns(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
