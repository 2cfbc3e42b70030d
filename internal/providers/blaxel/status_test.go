package blaxel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/boxed-run/sdk/internal/sandbox"
)

func TestMapStatus(t *testing.T) {
	assert.Equal(t, sandbox.StatusCreating, mapStatus(stateDeploying))
	assert.Equal(t, sandbox.StatusCreating, mapStatus(stateBuilding))
	assert.Equal(t, sandbox.StatusReady, mapStatus(stateDeployed))
	assert.Equal(t, sandbox.StatusStopped, mapStatus(stateStopped))
	assert.Equal(t, sandbox.StatusFailed, mapStatus(stateFailed))
	assert.Equal(t, sandbox.StatusFailed, mapStatus(blaxelState("bogus")))
}
