package docker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
)

func toExecArgs(cmd sandbox.RunCommand) ([]string, []string) {
	argv := append([]string{cmd.Cmd}, cmd.Args...)
	env := make([]string, 0, len(cmd.Env))
	for k, v := range cmd.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return argv, env
}

// Run executes cmd to completion inside id via a non-tty docker exec
// and collects its exit code plus demultiplexed output, grounded on the
// teacher's DockerStream demux generalized to a buffered request/response
// shape (spec.md §4.3.1 Process.Run).
func (a *Adapter) Run(ctx context.Context, id string, cmd sandbox.RunCommand) (*sandbox.RunResult, error) {
	argv, env := toExecArgs(cmd)

	runCtx := ctx
	var cancel context.CancelFunc
	if cmd.TimeoutMs > 0 {
		runCtx, cancel = context.WithTimeout(ctx, msDuration(cmd.TimeoutMs))
		defer cancel()
	}

	cwd := cmd.Cwd
	if cwd == "" {
		cwd = sandbox.DefaultWorkdir
	}

	return a.execAndWait(runCtx, id, argv, env, cwd)
}

// Stream runs cmd and returns a live channel of output chunks, closing
// it when the process exits or ctx is canceled.
func (a *Adapter) Stream(ctx context.Context, id string, cmd sandbox.RunCommand) (<-chan sandbox.ProcessChunk, error) {
	argv, env := toExecArgs(cmd)

	streamCtx := ctx
	if cmd.TimeoutMs > 0 {
		var cancel context.CancelFunc
		streamCtx, cancel = context.WithTimeout(ctx, msDuration(cmd.TimeoutMs))
		context.AfterFunc(streamCtx, cancel)
	}

	cwd := cmd.Cwd
	if cwd == "" {
		cwd = sandbox.DefaultWorkdir
	}

	out := make(chan sandbox.ProcessChunk, 64)
	if err := a.execStream(streamCtx, id, argv, env, cwd, out); err != nil {
		return nil, err
	}
	return out, nil
}

// StartProcess launches a detached background process (e.g. a dev
// server) and tracks it so StopProcess/GetProcessURLs can reach it
// later. Unlike Run/Stream, output is not surfaced to the caller — only
// the ports bound at Create time are exposed via GetProcessURLs.
func (a *Adapter) StartProcess(ctx context.Context, id string, opts sandbox.StartProcessOptions) (*sandbox.ProcessInfo, error) {
	argv, env := toExecArgs(sandbox.RunCommand{Cmd: opts.Cmd, Args: opts.Args, Env: opts.Env})
	cwd := opts.Cwd
	if cwd == "" {
		cwd = sandbox.DefaultWorkdir
	}

	out := make(chan sandbox.ProcessChunk, 1)
	procCtx, cancel := context.WithCancel(context.Background())
	if err := a.execStream(procCtx, id, argv, env, cwd, out); err != nil {
		cancel()
		return nil, err
	}
	go func() {
		for range out {
		}
	}()

	procID := uuid.NewString()
	a.mu.Lock()
	if a.procs[id] == nil {
		a.procs[id] = make(map[string]*runningProcess)
	}
	a.procs[id][procID] = &runningProcess{execID: procID, cancel: cancel}
	a.mu.Unlock()

	return &sandbox.ProcessInfo{ID: procID, Status: sandbox.ProcessRunning}, nil
}

// StopProcess cancels the context backing a previously started
// detached process, which aborts its exec stream best-effort.
func (a *Adapter) StopProcess(ctx context.Context, id, procID string) error {
	a.mu.Lock()
	proc, ok := a.procs[id][procID]
	if ok {
		delete(a.procs[id], procID)
	}
	a.mu.Unlock()

	if !ok {
		return boxederr.New(boxederr.KindNotFound, a.opCtx("process", "StopProcess", id), "process not found")
	}
	proc.cancel()
	return nil
}

func msDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
