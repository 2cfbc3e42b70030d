package modal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/boxed-run/sdk/internal/sandbox"
)

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func TestMapStatus(t *testing.T) {
	assert.Equal(t, sandbox.StatusFailed, mapStatus(modalState{Exists: false}))
	assert.Equal(t, sandbox.StatusCreating, mapStatus(modalState{Exists: true, Status: nil}))
	assert.Equal(t, sandbox.StatusReady, mapStatus(modalState{Exists: true, Status: strptr("running")}))
	assert.Equal(t, sandbox.StatusCreating, mapStatus(modalState{Exists: true, Status: strptr("pending")}))
	assert.Equal(t, sandbox.StatusStopped, mapStatus(modalState{Exists: true, Status: strptr("terminated")}))
	assert.Equal(t, sandbox.StatusFailed, mapStatus(modalState{
		Exists: true, Status: strptr("unknown"), Succeeded: boolptr(false),
	}))
}
