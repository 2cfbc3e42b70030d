package providerclient

import (
	"context"
	"io"
	"sync"

	"github.com/boxed-run/sdk/internal/boxederr"
)

// URLResolver discovers the per-sandbox base URL a Blaxel-style provider
// exposes (the sandbox runs its own HTTP endpoint whose address isn't
// known until the first request).
type URLResolver func(ctx context.Context, sandboxID string) (string, error)

// SandboxClient wraps a Client whose effective base URL varies per
// sandbox, discovered once via Resolve and cached until Forget is
// called (on Destroy).
type SandboxClient struct {
	*Client
	Resolve URLResolver

	mu    sync.Mutex
	cache map[string]string
}

// NewSandboxClient wraps base with per-sandbox URL discovery/caching.
func NewSandboxClient(base *Client, resolve URLResolver) *SandboxClient {
	return &SandboxClient{Client: base, Resolve: resolve, cache: make(map[string]string)}
}

// urlFor returns the cached base URL for id, resolving and memoizing it
// on first use.
func (s *SandboxClient) urlFor(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	if u, ok := s.cache[id]; ok {
		s.mu.Unlock()
		return u, nil
	}
	s.mu.Unlock()

	u, err := s.Resolve(ctx, id)
	if err != nil {
		return "", boxederr.Wrap(boxederr.KindProvider, err, boxederr.OpContext{Provider: s.Provider, SandboxID: id, Operation: "resolve sandbox url"}, "failed to resolve sandbox url")
	}

	s.mu.Lock()
	s.cache[id] = u
	s.mu.Unlock()
	return u, nil
}

// Forget invalidates the cached URL for id, called on Destroy.
func (s *SandboxClient) Forget(id string) {
	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()
}

// Do resolves id's base URL and issues the request against it, leaving
// the wrapped Client's own BaseURL (the account-level API) untouched.
func (s *SandboxClient) Do(ctx context.Context, id, method, path string, body any, out any, opts RequestOptions) error {
	base, err := s.urlFor(ctx, id)
	if err != nil {
		return err
	}
	scoped := *s.Client
	scoped.BaseURL = base
	opts.SandboxID = id
	return scoped.Do(ctx, method, path, body, out, opts)
}

// OpenStream resolves id's base URL and opens a streaming POST against
// it, the SandboxClient analogue of Client.OpenStream.
func (s *SandboxClient) OpenStream(ctx context.Context, id, path string, body any, opts RequestOptions) (io.ReadCloser, error) {
	base, err := s.urlFor(ctx, id)
	if err != nil {
		return nil, err
	}
	scoped := *s.Client
	scoped.BaseURL = base
	opts.SandboxID = id
	return scoped.OpenStream(ctx, path, body, opts)
}
