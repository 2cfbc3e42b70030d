// Package tests holds cross-cutting checks that don't belong to any
// single internal package. TestLegacyDockerEquivalence resolves
// spec.md §9 Open Question 1: the teacher's original monolithic Docker
// driver and the new capability-split one must behave the same way
// against the same engine, so one is never silently preferred over the
// other for a reason a caller can observe.
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxed-run/sdk/internal/config"
	"github.com/boxed-run/sdk/internal/legacy/dockerdriver"
	"github.com/boxed-run/sdk/internal/providers/docker"
	"github.com/boxed-run/sdk/internal/sandbox"
)

func TestLegacyDockerEquivalence(t *testing.T) {
	legacy, err := dockerdriver.New(config.Docker())
	require.NoError(t, err)

	native, err := docker.New(config.Docker())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if native.Healthy(ctx) != nil {
		t.Skip("docker daemon not reachable, skipping equivalence test")
	}

	legacyDriver := sandbox.FromMonolith(legacy)
	nativeDriver := native.Driver()

	opts := sandbox.CreateOptions{Image: "alpine:3.19"}

	legacyInfo, err := legacyDriver.Lifecycle.Create(ctx, opts)
	require.NoError(t, err)
	defer legacyDriver.Lifecycle.Destroy(ctx, legacyInfo.ID)

	nativeInfo, err := nativeDriver.Lifecycle.Create(ctx, opts)
	require.NoError(t, err)
	defer nativeDriver.Lifecycle.Destroy(ctx, nativeInfo.ID)

	cmd := sandbox.RunCommand{Cmd: "sh", Args: []string{"-c", "echo hello && mkdir -p /tmp/eq && echo world > /tmp/eq/f.txt"}}

	legacyResult, err := legacyDriver.Process.Run(ctx, legacyInfo.ID, cmd)
	require.NoError(t, err)

	nativeResult, err := nativeDriver.Process.Run(ctx, nativeInfo.ID, cmd)
	require.NoError(t, err)

	assert.Equal(t, legacyResult.ExitCode, nativeResult.ExitCode)
	assert.Equal(t, legacyResult.Stdout, nativeResult.Stdout)

	legacyContent, err := legacyDriver.Fs.ReadFile(ctx, legacyInfo.ID, "/tmp/eq/f.txt")
	require.NoError(t, err)
	nativeContent, err := nativeDriver.Fs.ReadFile(ctx, nativeInfo.ID, "/tmp/eq/f.txt")
	require.NoError(t, err)
	assert.Equal(t, string(legacyContent), string(nativeContent))

	legacyEntries, err := legacyDriver.Fs.ListDir(ctx, legacyInfo.ID, "/tmp/eq", false)
	require.NoError(t, err)
	nativeEntries, err := nativeDriver.Fs.ListDir(ctx, nativeInfo.ID, "/tmp/eq", false)
	require.NoError(t, err)
	require.Len(t, nativeEntries, len(legacyEntries))
	assert.Equal(t, legacyEntries[0].Path, nativeEntries[0].Path)
	assert.Equal(t, legacyEntries[0].Type, nativeEntries[0].Type)
}
