// Package store defines the narrow persistence interface the API layer
// needs for per-user history (spec.md §6 "Persisted state layout").
// Actual durable storage (the external doc store with its
// users/sandboxes/ralphs/agentEvents/providerKeys tables) is out of
// scope (spec.md §1 Non-goals); this package gives the API something
// real to call in the meantime, and a production Store implementation
// slots in behind the same interface without touching a handler.
package store

import (
	"context"
	"time"
)

// ProviderKey is one opaque per-user, per-provider credential.
type ProviderKey struct {
	ID        string
	UserID    string
	Provider  string
	Value     string
	CreatedAt time.Time
}

// SandboxRecord is one row of a user's sandbox history.
type SandboxRecord struct {
	ID        string
	UserID    string
	Provider  string
	SandboxID string
	Image     string
	Status    string
	CreatedAt time.Time
}

// RunRecord is one row of a user's run history.
type RunRecord struct {
	ID        string
	UserID    string
	RunID     string
	RepoURL   string
	Providers []string
	Status    string
	CreatedAt time.Time
}

// Store is the persistence boundary for per-user history and
// credentials. Every method takes a userID because every table in
// spec.md §6 is indexed by_user.
type Store interface {
	PutKey(ctx context.Context, key ProviderKey) (*ProviderKey, error)
	ListKeys(ctx context.Context, userID string) ([]ProviderKey, error)
	DeleteKey(ctx context.Context, userID, keyID string) error

	RecordSandbox(ctx context.Context, rec SandboxRecord) error
	ListSandboxes(ctx context.Context, userID string) ([]SandboxRecord, error)

	RecordRun(ctx context.Context, rec RunRecord) error
	ListRuns(ctx context.Context, userID string) ([]RunRecord, error)
}
