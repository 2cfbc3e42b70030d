package e2b

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/boxed-run/sdk/internal/sandbox"
)

func TestMapStatus(t *testing.T) {
	assert.Equal(t, sandbox.StatusCreating, mapStatus(e2bBuilding))
	assert.Equal(t, sandbox.StatusReady, mapStatus(e2bRunning))
	assert.Equal(t, sandbox.StatusStopped, mapStatus(e2bPaused))
	assert.Equal(t, sandbox.StatusStopped, mapStatus(e2bStopped))
	assert.Equal(t, sandbox.StatusFailed, mapStatus(e2bError))
	assert.Equal(t, sandbox.StatusFailed, mapStatus(e2bState("bogus")))
}
