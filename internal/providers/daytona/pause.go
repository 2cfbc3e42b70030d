package daytona

import (
	"context"
	"time"

	"github.com/boxed-run/sdk/internal/retry"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	defaultPollTimeout  = 30 * time.Second
)

// Pause calls Daytona's native stop endpoint. Per spec.md §4.4.8, the
// adapter must ensure Status converges to stopped before returning,
// since the provider transition is asynchronous — bounded polling
// covers the gap between "stop accepted" and "stop applied".
func (a *Adapter) Pause(ctx context.Context, id string) error {
	if err := a.client.Do(ctx, "POST", "/workspace/"+id+"/stop", nil, nil, a.opCtx("lifecycle", "Pause", id)); err != nil {
		return err
	}
	return a.waitForState(ctx, id, stateStopped)
}

// Resume calls Daytona's native start endpoint and waits for the
// workspace to converge back to started.
func (a *Adapter) Resume(ctx context.Context, id string) error {
	if err := a.client.Do(ctx, "POST", "/workspace/"+id+"/start", nil, nil, a.opCtx("lifecycle", "Resume", id)); err != nil {
		return err
	}
	return a.waitForState(ctx, id, stateStarted)
}

func (a *Adapter) waitForState(ctx context.Context, id string, want daytonaState) error {
	return retry.Poll(ctx, defaultPollInterval, defaultPollTimeout, func(ctx context.Context) (bool, error) {
		var resp workspaceResponse
		if err := a.client.Do(ctx, "GET", "/workspace/"+id, nil, &resp, a.opCtx("lifecycle", "Status", id)); err != nil {
			return false, err
		}
		return resp.State == want, nil
	})
}
