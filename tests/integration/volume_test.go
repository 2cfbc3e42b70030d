package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxed-run/sdk/internal/config"
	"github.com/boxed-run/sdk/internal/providers/docker"
	"github.com/boxed-run/sdk/internal/sandbox"
)

// TestVolumePersistence covers spec.md §8 scenario 3: a volume mounted
// into one sandbox, written to, then mounted into a second sandbox
// after the first is destroyed must still hold the data. This goes
// straight at the Driver capability rather than through the HTTP API
// because spec.md §4.8's route list has no volume-management endpoint.
func TestVolumePersistence(t *testing.T) {
	a, err := docker.New(config.Docker())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if a.Healthy(ctx) != nil {
		t.Skip("docker daemon not reachable, skipping volume persistence test")
	}

	d := a.Driver()
	volName := "boxed-test-persist"
	_, err = d.Volumes.Create(context.Background(), volName)
	require.NoError(t, err)
	defer d.Volumes.Delete(context.Background(), volName)

	opts := sandbox.CreateOptions{
		Image:   "alpine:3.19",
		Volumes: map[string]string{"/data": volName},
	}

	first, err := d.Lifecycle.Create(context.Background(), opts)
	require.NoError(t, err)

	err = d.Fs.WriteFile(context.Background(), first.ID, "/data/x.txt", []byte("persistent"), 0)
	require.NoError(t, err)

	require.NoError(t, d.Lifecycle.Destroy(context.Background(), first.ID))

	second, err := d.Lifecycle.Create(context.Background(), opts)
	require.NoError(t, err)
	defer d.Lifecycle.Destroy(context.Background(), second.ID)

	content, err := d.Fs.ReadFile(context.Background(), second.ID, "/data/x.txt")
	require.NoError(t, err)
	assert.Equal(t, "persistent", string(content))
}
