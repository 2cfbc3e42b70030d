// Package run implements the multi-provider orchestrator: fanning a
// single task across N sandbox providers, tracking each provider's lane
// independently, and aggregating them into one run-level status.
package run

import (
	"sync"
	"time"

	"github.com/boxed-run/sdk/internal/eventbus"
	"github.com/boxed-run/sdk/internal/sandbox"
)

// StartRunRequest is the input to Orchestrator.Start (spec.md §4.6).
type StartRunRequest struct {
	RepoURL   string
	Branch    string
	Task      string
	Providers []string
	Image     string
	Env       map[string]string
}

// laneRank orders LaneState.Status by "how advanced" it is, used to
// compute the run's aggregate status as the most-advanced lane.
var laneRank = map[sandbox.RunStatus]int{
	sandbox.RunIdle:       0,
	sandbox.RunCloning:    1,
	sandbox.RunInstalling: 2,
	sandbox.RunRunning:    3,
	sandbox.RunPaused:     3,
	sandbox.RunCompleted:  4,
	sandbox.RunFailed:     4,
}

func isTerminal(s sandbox.RunStatus) bool {
	return s == sandbox.RunCompleted || s == sandbox.RunFailed
}

// RunState is the orchestrator's live view of one run. Its fields are
// guarded by its own mu; API handlers read them through a snapshot copy
// taken under that lock.
type RunState struct {
	mu sync.Mutex

	ID          string
	Status      sandbox.RunStatus
	StartedAt   time.Time
	CompletedAt time.Time
	PerProvider map[string]*sandbox.LaneState

	bus    *eventbus.Bus
	cancel func()
}

// Bus exposes the run's event bus for subscription by API handlers.
func (r *RunState) Bus() *eventbus.Bus { return r.bus }

// setLaneStatus updates a lane's status, rejecting every regression
// (for example a lane re-entering "cloning" after a retry): the lane
// keeps its high-water-mark status, the aggregate is not recomputed, and
// the regression is reported only through the returned flag; nothing is
// logged here.
func (r *RunState) setLaneStatus(provider string, status sandbox.RunStatus) (regressed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lane, ok := r.PerProvider[provider]
	if !ok {
		return false
	}
	if laneRank[status] < laneRank[lane.Status] {
		regressed = true
		// High-water mark: the lane's visible Status never moves
		// backwards, even though the provider itself did.
		return regressed
	}
	lane.Status = status
	r.recomputeLocked()
	return regressed
}

func (r *RunState) setLaneSandbox(provider, sandboxID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lane, ok := r.PerProvider[provider]; ok {
		lane.SandboxID = sandboxID
	}
}

func (r *RunState) setLaneOpencode(provider, url, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lane, ok := r.PerProvider[provider]; ok {
		lane.OpencodeURL = url
		lane.SessionID = sessionID
	}
}

// Recompute derives the run's aggregate status from its lanes: the
// "most advanced" status among them, with completed/failed only once
// every lane is terminal (spec.md §4.6 step 3).
func (r *RunState) Recompute() sandbox.RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recomputeLocked()
}

func (r *RunState) recomputeLocked() sandbox.RunStatus {
	if len(r.PerProvider) == 0 {
		return r.Status
	}

	allTerminal := true
	anyFailed := false
	best := sandbox.RunIdle
	bestRank := -1

	for _, lane := range r.PerProvider {
		if !isTerminal(lane.Status) {
			allTerminal = false
		}
		if lane.Status == sandbox.RunFailed {
			anyFailed = true
		}
		if rank := laneRank[lane.Status]; rank > bestRank {
			bestRank = rank
			best = lane.Status
		}
	}

	switch {
	case allTerminal && anyFailed:
		r.Status = sandbox.RunFailed
		if r.CompletedAt.IsZero() {
			r.CompletedAt = time.Now().UTC()
		}
	case allTerminal:
		r.Status = sandbox.RunCompleted
		if r.CompletedAt.IsZero() {
			r.CompletedAt = time.Now().UTC()
		}
	default:
		r.Status = best
	}
	return r.Status
}

// Snapshot returns a value copy of the run's state safe to serialize
// without holding the lock.
func (r *RunState) Snapshot() sandbox.RunState {
	r.mu.Lock()
	defer r.mu.Unlock()

	perProvider := make(map[string]sandbox.LaneState, len(r.PerProvider))
	for k, v := range r.PerProvider {
		perProvider[k] = *v
	}
	return sandbox.RunState{
		ID:          r.ID,
		Status:      r.Status,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		PerProvider: perProvider,
	}
}
