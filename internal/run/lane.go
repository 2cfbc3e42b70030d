package run

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/providerclient"
	"github.com/boxed-run/sdk/internal/sandbox"
)

const (
	agentHealthPollInterval = 1 * time.Second
	agentHealthTimeout      = 2 * time.Minute
	agentPort               = 4096
)

// runLane drives a single provider through spec.md §4.6 step 2's
// algorithm: create, clone, install, start the agent, wait for health,
// relay its event stream, then settle the lane into a terminal status.
func (o *Orchestrator) runLane(ctx context.Context, state *RunState, provider string, req StartRunRequest) {
	driver := o.drivers[provider]
	bus := state.bus

	logger := log.With().Str("run_id", state.ID).Str("provider", provider).Logger()

	emit := func(typ sandbox.EventType, data any) {
		raw, _ := json.Marshal(data)
		bus.Publish(sandbox.AgentEvent{Type: typ, Provider: provider, Data: raw})
	}

	fail := func(err error) {
		logger.Warn().Err(err).Msg("lane failed")
		emit(sandbox.EventError, map[string]string{"message": err.Error()})
		state.setLaneStatus(provider, sandbox.RunFailed)
	}

	// 2a. Create.
	info, err := driver.Lifecycle.Create(ctx, sandbox.CreateOptions{
		Image: req.Image,
		Name:  fmt.Sprintf("boxed-run-%s-%s", state.ID, provider),
		Env:   req.Env,
	})
	if err != nil {
		fail(err)
		return
	}
	sandboxID := info.ID
	state.setLaneSandbox(provider, sandboxID)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), gracePeriod)
		defer cancel()
		if err := driver.Lifecycle.Destroy(cleanupCtx, sandboxID); err != nil {
			logger.Warn().Err(err).Msg("failed to destroy lane sandbox during cleanup")
		}
	}()

	// 2b. status{sandbox created}.
	emit(sandbox.EventStatus, map[string]string{"message": "sandbox created", "sandboxId": sandboxID})

	// 2c. clone_progress, parsed from stderr of an in-sandbox git clone.
	state.setLaneStatus(provider, sandbox.RunCloning)
	if err := o.cloneRepo(ctx, driver, sandboxID, req, emit); err != nil {
		fail(err)
		return
	}

	// 2d. install_progress, from whatever dependency manager the image
	// ships (best-effort: languages vary, absence of a manifest is not
	// a failure).
	state.setLaneStatus(provider, sandbox.RunInstalling)
	o.installDeps(ctx, driver, sandboxID, emit)

	// 2e. Start the agent process in the background and resolve its URL.
	starter, ok := driver.ProcessStarter()
	if !ok {
		fail(boxederr.Unsupported(boxederr.OpContext{Provider: provider, Capability: "process", SandboxID: sandboxID}, "startProcess"))
		return
	}
	proc, err := starter.StartProcess(ctx, sandboxID, sandbox.StartProcessOptions{
		Cmd:        "boxed-agent",
		Args:       []string{"--task", req.Task, "--port", fmt.Sprint(agentPort)},
		Background: true,
	})
	if err != nil {
		fail(err)
		return
	}

	urls, err := starter.GetProcessURLs(ctx, sandboxID, []int{agentPort})
	if err != nil {
		fail(err)
		return
	}
	agentURL, ok := urls[agentPort]
	if !ok {
		fail(boxederr.New(boxederr.KindProvider, boxederr.OpContext{Provider: provider, SandboxID: sandboxID}, "no public URL resolved for agent port %d", agentPort))
		return
	}

	// 2f. Poll agent health until ready.
	if err := pollAgentHealth(ctx, agentURL); err != nil {
		fail(err)
		return
	}
	state.setLaneOpencode(provider, agentURL, "")
	emit(sandbox.EventOpencodeReady, map[string]string{"url": agentURL})
	state.setLaneStatus(provider, sandbox.RunRunning)

	// 2g-h. Relay the agent's own SSE stream onto this run's bus until it
	// terminates or signals completion.
	if err := o.relayAgentEvents(ctx, state, provider, agentURL); err != nil {
		fail(err)
		return
	}

	_ = starter.StopProcess(ctx, sandboxID, proc.ID)
	state.setLaneStatus(provider, sandbox.RunCompleted)
}

func (o *Orchestrator) cloneRepo(ctx context.Context, driver *sandbox.Driver, sandboxID string, req StartRunRequest, emit func(sandbox.EventType, any)) error {
	cmd := sandbox.RunCommand{Cmd: "git", Args: []string{"clone", "--progress", req.RepoURL, "."}}
	if req.Branch != "" {
		cmd.Args = []string{"clone", "--progress", "--branch", req.Branch, req.RepoURL, "."}
	}

	chunks, err := driver.Process.Stream(ctx, sandboxID, cmd)
	if err != nil {
		return err
	}
	for chunk := range chunks {
		if chunk.Channel == sandbox.ChannelStderr {
			emit(sandbox.EventCloneProgress, map[string]string{"line": string(chunk.Data)})
		}
	}
	return nil
}

// installDeps runs the first dependency-install command whose manifest
// is present, streaming its progress. Absence of any recognized
// manifest is not an error — plenty of tasks need no install step.
func (o *Orchestrator) installDeps(ctx context.Context, driver *sandbox.Driver, sandboxID string, emit func(sandbox.EventType, any)) {
	manifests := []struct {
		file string
		cmd  sandbox.RunCommand
	}{
		{"package.json", sandbox.RunCommand{Cmd: "npm", Args: []string{"install"}}},
		{"requirements.txt", sandbox.RunCommand{Cmd: "pip", Args: []string{"install", "-r", "requirements.txt"}}},
		{"go.mod", sandbox.RunCommand{Cmd: "go", Args: []string{"mod", "download"}}},
	}

	for _, m := range manifests {
		check, err := driver.Process.Run(ctx, sandboxID, sandbox.RunCommand{Cmd: "test", Args: []string{"-f", m.file}})
		if err != nil || check.ExitCode != 0 {
			continue
		}
		chunks, err := driver.Process.Stream(ctx, sandboxID, m.cmd)
		if err != nil {
			return
		}
		for chunk := range chunks {
			emit(sandbox.EventInstallProgress, map[string]string{"line": string(chunk.Data)})
		}
		return
	}
}

func pollAgentHealth(ctx context.Context, baseURL string) error {
	deadline := time.Now().Add(agentHealthTimeout)
	client := &http.Client{Timeout: 5 * time.Second}

	for {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return boxederr.New(boxederr.KindTimeout, boxederr.OpContext{Operation: "pollAgentHealth"}, "agent at %s never became healthy", baseURL)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(agentHealthPollInterval):
		}
	}
}

// agentStreamEvent is the shape the in-sandbox agent emits over its own
// SSE stream, ahead of being tagged with this lane's provider and
// appended to the run's bus.
type agentStreamEvent struct {
	Type sandbox.EventType `json:"type"`
	Data json.RawMessage   `json:"data"`
}

// relayAgentEvents subscribes to the agent's SSE stream and republishes
// every frame onto the run's bus, tagged with provider, until the
// stream closes or the agent emits ralph_complete (spec.md §4.6 step
// 2g-h).
func (o *Orchestrator) relayAgentEvents(ctx context.Context, state *RunState, provider, agentURL string) error {
	client := &http.Client{}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, agentURL+"/events", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return boxederr.Wrap(boxederr.KindNetwork, err, boxederr.OpContext{Provider: provider, Operation: "relayAgentEvents"}, "failed to open agent event stream")
	}

	frames := providerclient.FrameReader(ctx, resp.Body)
	for frame := range frames {
		var evt agentStreamEvent
		if err := json.Unmarshal(bytes.TrimSpace(frame), &evt); err != nil {
			continue
		}
		state.bus.Publish(sandbox.AgentEvent{ID: uuid.NewString(), Type: evt.Type, Provider: provider, Data: evt.Data})
		if evt.Type == sandbox.EventRalphComplete {
			return nil
		}
	}
	return nil
}
