package vercel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/boxed-run/sdk/internal/sandbox"
)

func TestMapStatus(t *testing.T) {
	assert.Equal(t, sandbox.StatusCreating, mapStatus(statePending))
	assert.Equal(t, sandbox.StatusReady, mapStatus(stateRunning))
	assert.Equal(t, sandbox.StatusStopped, mapStatus(stateStopped))
	assert.Equal(t, sandbox.StatusFailed, mapStatus(stateFailed))
	assert.Equal(t, sandbox.StatusFailed, mapStatus(vercelState("bogus")))
}
