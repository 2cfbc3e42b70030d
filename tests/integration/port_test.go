package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxed-run/sdk/internal/config"
	"github.com/boxed-run/sdk/internal/providers/docker"
	"github.com/boxed-run/sdk/internal/sandbox"
)

// TestPortExposure covers spec.md §8 scenario 5: a sandbox created with
// an encrypted port and a custom command that binds it must be
// reachable over HTTP within the documented warmup window. Runs
// against the Driver directly, same as TestVolumePersistence, since
// GetProcessURLs has no HTTP route of its own.
func TestPortExposure(t *testing.T) {
	a, err := docker.New(config.Docker())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if a.Healthy(ctx) != nil {
		t.Skip("docker daemon not reachable, skipping port exposure test")
	}

	d := a.Driver()
	info, err := d.Lifecycle.Create(context.Background(), sandbox.CreateOptions{
		Image:          "python:3.10-slim",
		EncryptedPorts: []int{18080},
		Command:        []string{"python3", "-m", "http.server", "18080"},
	})
	require.NoError(t, err)
	defer d.Lifecycle.Destroy(context.Background(), info.ID)

	starter, ok := d.ProcessStarter()
	require.True(t, ok, "docker driver should implement ProcessStarter")

	var url string
	for i := 0; i < 15; i++ {
		urls, err := starter.GetProcessURLs(context.Background(), info.ID, []int{18080})
		require.NoError(t, err)
		if u, ok := urls[18080]; ok {
			url = u
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NotEmpty(t, url, "port 18080 should have a bound host URL")

	var resp *http.Response
	for i := 0; i < 15; i++ {
		resp, err = http.Get(url)
		if err == nil && resp.StatusCode == http.StatusOK {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
