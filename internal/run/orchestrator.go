package run

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/eventbus"
	"github.com/boxed-run/sdk/internal/sandbox"
)

// Orchestrator owns every in-flight and completed run known to this
// process (spec.md §9 "Global state" design note: runs are held
// in-memory only, not persisted).
type Orchestrator struct {
	runsMu sync.Mutex
	runs   map[string]*RunState

	drivers map[string]*sandbox.Driver
}

// New builds an Orchestrator over a pre-composed driver per provider
// name, one entry per provider the deployment has credentials for.
func New(drivers map[string]*sandbox.Driver) *Orchestrator {
	return &Orchestrator{runs: make(map[string]*RunState), drivers: drivers}
}

// Start allocates a run id and an Event Bus, then fans out one lane
// goroutine per requested provider (spec.md §4.6 steps 1-2).
func (o *Orchestrator) Start(ctx context.Context, req StartRunRequest) (*RunState, error) {
	if len(req.Providers) == 0 {
		return nil, boxederr.New(boxederr.KindValidation, boxederr.OpContext{Operation: "Start"}, "at least one provider is required")
	}

	perProvider := make(map[string]*sandbox.LaneState, len(req.Providers))
	for _, p := range req.Providers {
		if _, ok := o.drivers[p]; !ok {
			return nil, boxederr.New(boxederr.KindValidation, boxederr.OpContext{Provider: p, Operation: "Start"}, "no driver configured for provider %q", p)
		}
		perProvider[p] = &sandbox.LaneState{Provider: p, Status: sandbox.RunIdle}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	state := &RunState{
		ID:          uuid.NewString(),
		Status:      sandbox.RunIdle,
		StartedAt:   time.Now().UTC(),
		PerProvider: perProvider,
		bus:         eventbus.New(),
		cancel:      cancel,
	}

	o.runsMu.Lock()
	o.runs[state.ID] = state
	o.runsMu.Unlock()

	// Lane failures must not cancel their peers (spec.md §4.6 "Failure
	// semantics"), so this is a plain errgroup.Group used only for
	// join/wait bookkeeping rather than errgroup.WithContext's fail-fast
	// cancellation — each lane already publishes its own classified error
	// event instead of propagating the error up through the group.
	var g errgroup.Group
	for _, p := range req.Providers {
		provider := p
		g.Go(func() error {
			o.runLane(runCtx, state, provider, req)
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		cancel()
		state.bus.Close()
		log.Info().Str("run_id", state.ID).Str("status", string(state.Recompute())).Msg("run finished")
	}()

	return state, nil
}

// Stop cancels a run's root context; each lane's cleanup gets a bounded
// grace window to best-effort destroy its sandbox (spec.md §4.6
// "Cancellation").
func (o *Orchestrator) Stop(ctx context.Context, runID string) error {
	o.runsMu.Lock()
	state, ok := o.runs[runID]
	o.runsMu.Unlock()
	if !ok {
		return boxederr.New(boxederr.KindNotFound, boxederr.OpContext{Operation: "Stop"}, "run %q not found", runID)
	}
	state.cancel()
	return nil
}

// Get returns the RunState for runID, or nil if unknown.
func (o *Orchestrator) Get(runID string) (*RunState, bool) {
	o.runsMu.Lock()
	defer o.runsMu.Unlock()
	state, ok := o.runs[runID]
	return state, ok
}

// List returns a snapshot of every run this Orchestrator knows about.
func (o *Orchestrator) List() []sandbox.RunState {
	o.runsMu.Lock()
	states := make([]*RunState, 0, len(o.runs))
	for _, s := range o.runs {
		states = append(states, s)
	}
	o.runsMu.Unlock()

	out := make([]sandbox.RunState, 0, len(states))
	for _, s := range states {
		out = append(out, s.Snapshot())
	}
	return out
}
