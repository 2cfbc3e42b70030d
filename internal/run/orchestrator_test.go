package run

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxed-run/sdk/internal/sandbox"
)

// fakeDriver is a minimal in-memory Lifecycle+Process+ProcessStarter
// stand-in, enough to drive runLane end to end against a real agent
// stub server instead of a network provider.
type fakeDriver struct {
	agentURL string
}

func (f *fakeDriver) Create(ctx context.Context, opts sandbox.CreateOptions) (*sandbox.SandboxInfo, error) {
	return &sandbox.SandboxInfo{ID: "sbx-1", Status: sandbox.StatusReady, CreatedAt: time.Now()}, nil
}
func (f *fakeDriver) Destroy(ctx context.Context, id string) error               { return nil }
func (f *fakeDriver) Status(ctx context.Context, id string) (sandbox.Status, error) { return sandbox.StatusReady, nil }
func (f *fakeDriver) List(ctx context.Context) ([]*sandbox.SandboxInfo, error)   { return nil, nil }
func (f *fakeDriver) Get(ctx context.Context, id string) (*sandbox.SandboxInfo, error) {
	return &sandbox.SandboxInfo{ID: id, Status: sandbox.StatusReady}, nil
}

func (f *fakeDriver) Run(ctx context.Context, id string, cmd sandbox.RunCommand) (*sandbox.RunResult, error) {
	if cmd.Cmd == "test" {
		return &sandbox.RunResult{ExitCode: 1}, nil
	}
	return &sandbox.RunResult{ExitCode: 0}, nil
}
func (f *fakeDriver) Stream(ctx context.Context, id string, cmd sandbox.RunCommand) (<-chan sandbox.ProcessChunk, error) {
	ch := make(chan sandbox.ProcessChunk, 1)
	close(ch)
	return ch, nil
}
func (f *fakeDriver) StartProcess(ctx context.Context, id string, opts sandbox.StartProcessOptions) (*sandbox.ProcessInfo, error) {
	return &sandbox.ProcessInfo{ID: "proc-1", Status: sandbox.ProcessRunning}, nil
}
func (f *fakeDriver) StopProcess(ctx context.Context, id, procID string) error { return nil }
func (f *fakeDriver) GetProcessURLs(ctx context.Context, id string, ports []int) (map[int]string, error) {
	out := make(map[int]string, len(ports))
	for _, p := range ports {
		out[p] = f.agentURL
	}
	return out, nil
}

func (f *fakeDriver) ReadFile(ctx context.Context, id, path string) ([]byte, error) { return nil, nil }
func (f *fakeDriver) WriteFile(ctx context.Context, id, path string, content []byte, mode int64) error {
	return nil
}
func (f *fakeDriver) ListDir(ctx context.Context, id, path string, recursive bool) ([]*sandbox.FsEntry, error) {
	return nil, nil
}
func (f *fakeDriver) Mkdir(ctx context.Context, id, path string) error { return nil }
func (f *fakeDriver) Rm(ctx context.Context, id, path string, recursive, force bool) error {
	return nil
}

func (f *fakeDriver) CreateSnapshot(ctx context.Context, id string, metadata map[string]string) (*sandbox.SnapshotInfo, error) {
	return nil, nil
}
func (f *fakeDriver) ListSnapshots(ctx context.Context, id string) ([]*sandbox.SnapshotInfo, error) {
	return nil, nil
}
func (f *fakeDriver) CreateVolume(ctx context.Context, name string) (*sandbox.VolumeInfo, error) {
	return nil, nil
}
func (f *fakeDriver) DeleteVolume(ctx context.Context, name string) error { return nil }
func (f *fakeDriver) ListVolumes(ctx context.Context) ([]*sandbox.VolumeInfo, error) {
	return nil, nil
}
func (f *fakeDriver) GetVolume(ctx context.Context, name string) (*sandbox.VolumeInfo, error) {
	return nil, nil
}
func (f *fakeDriver) RunCode(ctx context.Context, id string, in sandbox.RunCodeInput) (*sandbox.RunResult, error) {
	return nil, nil
}
func (f *fakeDriver) Name() string { return "fake" }

func newFakeComposedDriver(agentURL string) *sandbox.Driver {
	fd := &fakeDriver{agentURL: agentURL}
	return sandbox.Compose("fake", fd, fd, fd, sandbox.UnsupportedSnapshots("fake"), sandbox.UnsupportedVolumes("fake"), fd)
}

func TestOrchestratorRunCompletesThroughFakeAgent(t *testing.T) {
	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/events":
			w.Header().Set("Content-Type", "text/event-stream")
			flusher, _ := w.(http.Flusher)
			w.Write([]byte(`data: {"type":"ralph_complete","data":{}}` + "\n\n"))
			if flusher != nil {
				flusher.Flush()
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer agent.Close()

	o := New(map[string]*sandbox.Driver{"fake": newFakeComposedDriver(agent.URL)})

	state, err := o.Start(context.Background(), StartRunRequest{
		RepoURL:   "https://example.com/repo.git",
		Task:      "do the thing",
		Providers: []string{"fake"},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return state.Recompute() == sandbox.RunCompleted
	}, 5*time.Second, 20*time.Millisecond)

	snap := state.Snapshot()
	assert.Equal(t, sandbox.RunCompleted, snap.Status)
	assert.Equal(t, "sbx-1", snap.PerProvider["fake"].SandboxID)
}

func TestOrchestratorStartRejectsUnknownProvider(t *testing.T) {
	o := New(map[string]*sandbox.Driver{})
	_, err := o.Start(context.Background(), StartRunRequest{Providers: []string{"ghost"}})
	assert.Error(t, err)
}
