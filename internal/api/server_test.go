package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
	"github.com/boxed-run/sdk/internal/store"
)

// fakeLifecycle/fakeFs/fakeProcess/fakeCode give the test a driver
// whose behavior is fully scripted, mirroring the teacher's own
// practice of hand-rolled fakes over the driver interface in its own
// handler tests rather than a generated mock.
type fakeLifecycle struct {
	createErr error
	info      *sandbox.SandboxInfo
}

func (f *fakeLifecycle) Create(ctx context.Context, opts sandbox.CreateOptions) (*sandbox.SandboxInfo, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.info, nil
}
func (f *fakeLifecycle) Destroy(ctx context.Context, id string) error { return nil }
func (f *fakeLifecycle) Status(ctx context.Context, id string) (sandbox.Status, error) {
	return sandbox.StatusReady, nil
}
func (f *fakeLifecycle) List(ctx context.Context) ([]*sandbox.SandboxInfo, error) { return nil, nil }
func (f *fakeLifecycle) Get(ctx context.Context, id string) (*sandbox.SandboxInfo, error) {
	return f.info, nil
}

type fakeProcess struct{}

func (fakeProcess) Run(ctx context.Context, id string, cmd sandbox.RunCommand) (*sandbox.RunResult, error) {
	return &sandbox.RunResult{ExitCode: 0, Stdout: "ok"}, nil
}
func (fakeProcess) Stream(ctx context.Context, id string, cmd sandbox.RunCommand) (<-chan sandbox.ProcessChunk, error) {
	ch := make(chan sandbox.ProcessChunk)
	close(ch)
	return ch, nil
}

type fakeFs struct{}

func (fakeFs) ReadFile(ctx context.Context, id, path string) ([]byte, error) { return []byte("x"), nil }
func (fakeFs) WriteFile(ctx context.Context, id, path string, content []byte, mode int64) error {
	return nil
}
func (fakeFs) ListDir(ctx context.Context, id, path string, recursive bool) ([]*sandbox.FsEntry, error) {
	return []*sandbox.FsEntry{{Path: "a.txt", Type: sandbox.EntryFile}}, nil
}
func (fakeFs) Mkdir(ctx context.Context, id, path string) error                          { return nil }
func (fakeFs) Rm(ctx context.Context, id, path string, recursive, force bool) error { return nil }

type fakeCode struct{}

func (fakeCode) RunCode(ctx context.Context, id string, in sandbox.RunCodeInput) (*sandbox.RunResult, error) {
	return &sandbox.RunResult{ExitCode: 0, Stdout: "hi"}, nil
}

func newFakeDriver() *sandbox.Driver {
	return sandbox.Compose("fake",
		&fakeLifecycle{info: &sandbox.SandboxInfo{ID: "sbx-1", Provider: "fake", Status: sandbox.StatusReady}},
		fakeProcess{}, fakeFs{},
		sandbox.UnsupportedSnapshots("fake"), sandbox.UnsupportedVolumes("fake"), fakeCode{})
}

func newTestServer() (*echo.Echo, *Server) {
	drivers := map[string]*sandbox.Driver{"fake": newFakeDriver()}
	s := NewServer(drivers, nil, store.NewMemStore(), "")
	e := echo.New()
	s.RegisterRoutes(e)
	return e, s
}

func TestCreateAndExecSandbox(t *testing.T) {
	e, _ := newTestServer()

	body, _ := json.Marshal(map[string]any{"provider": "fake", "image": "python:3.12"})
	req := httptest.NewRequest(http.MethodPost, "/api/sandbox/create", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created sandboxResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "sbx-1", created.SandboxID)

	execBody, _ := json.Marshal(map[string]string{"provider": "fake", "language": "python", "code": "print(1)"})
	req = httptest.NewRequest(http.MethodPost, "/api/sandbox/sbx-1/exec", bytes.NewReader(execBody))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result sandbox.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "hi", result.Stdout)
}

func TestCreateSandboxUnknownProviderReturnsValidationError(t *testing.T) {
	e, _ := newTestServer()

	body, _ := json.Marshal(map[string]any{"provider": "nope", "image": "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/sandbox/create", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body2 errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body2))
	assert.Equal(t, string(boxederr.KindValidation), body2.Kind)
}

func TestListSandboxDir(t *testing.T) {
	e, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/sandbox/sbx-1/ls?path=/&provider=fake", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Entries []sandbox.FsEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "a.txt", result.Entries[0].Path)
}

func TestAuthMiddlewareRejectsMissingKey(t *testing.T) {
	drivers := map[string]*sandbox.Driver{"fake": newFakeDriver()}
	s := NewServer(drivers, nil, store.NewMemStore(), "secret")
	e := echo.New()
	s.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/api/user/sandboxes", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/user/sandboxes", nil)
	req.Header.Set("X-Boxed-API-Key", "secret")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
