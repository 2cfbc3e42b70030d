package docker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/boxed-run/sdk/internal/sandbox"
)

func TestMapStatus(t *testing.T) {
	assert.Equal(t, sandbox.StatusReady, mapStatus(true, false, false))
	assert.Equal(t, sandbox.StatusStopped, mapStatus(false, false, false))
	assert.Equal(t, sandbox.StatusFailed, mapStatus(false, true, false))
	assert.Equal(t, sandbox.StatusFailed, mapStatus(false, false, true))
	// A container that OOM-killed mid-run is still "running" at the
	// instant Docker reports it; failure takes precedence.
	assert.Equal(t, sandbox.StatusFailed, mapStatus(true, false, true))
}
