package vercel

import (
	"context"

	"github.com/boxed-run/sdk/internal/providerclient"
	"github.com/boxed-run/sdk/internal/sandbox"
)

type startRequest struct {
	Command []string          `json:"command"`
	Cwd     string             `json:"cwd,omitempty"`
	Env     map[string]string  `json:"env,omitempty"`
}

type startResponse struct {
	ProcessID string `json:"processId"`
}

// StartProcess launches a detached background process (e.g. a dev
// server) via Vercel's native background-process endpoint, so its
// bound ports can later be resolved through GetProcessURLs (spec.md
// §4.4.3).
func (a *Adapter) StartProcess(ctx context.Context, id string, opts sandbox.StartProcessOptions) (*sandbox.ProcessInfo, error) {
	req := startRequest{Command: append([]string{opts.Cmd}, opts.Args...), Cwd: opts.Cwd, Env: opts.Env}

	var resp startResponse
	if err := a.client.Do(ctx, "POST", "/v1/sandboxes/"+id+"/processes"+a.scopeQuery(), req, &resp, a.opCtx("process", "StartProcess", id)); err != nil {
		return nil, err
	}
	return &sandbox.ProcessInfo{ID: resp.ProcessID, Status: sandbox.ProcessRunning}, nil
}

// StopProcess terminates a previously started detached process.
func (a *Adapter) StopProcess(ctx context.Context, id, procID string) error {
	return a.client.Do(ctx, "DELETE", "/v1/sandboxes/"+id+"/processes/"+procID+a.scopeQuery(), nil, nil, a.opCtx("process", "StopProcess", id))
}

type execRequest struct {
	Command []string          `json:"command"`
	Cwd     string            `json:"cwd,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

type execResponse struct {
	ExitCode int    `json:"exitCode"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// Run calls Vercel's exec endpoint directly with argv (Vercel's API
// accepts a command array rather than a single string, so no argv
// encoding is needed here unlike Modal/E2B/Daytona/Blaxel/Cloudflare).
func (a *Adapter) Run(ctx context.Context, id string, cmd sandbox.RunCommand) (*sandbox.RunResult, error) {
	req := execRequest{Command: append([]string{cmd.Cmd}, cmd.Args...), Cwd: cmd.Cwd, Env: cmd.Env}

	var resp execResponse
	if err := a.client.Do(ctx, "POST", "/v1/sandboxes/"+id+"/exec"+a.scopeQuery(), req, &resp, a.opCtx("process", "Run", id)); err != nil {
		return nil, err
	}
	return &sandbox.RunResult{ExitCode: resp.ExitCode, Stdout: resp.Stdout, Stderr: resp.Stderr}, nil
}

// Stream runs cmd with output framed as SSE, decoded through the shared
// frame reader (spec.md §4.3 streaming clause).
func (a *Adapter) Stream(ctx context.Context, id string, cmd sandbox.RunCommand) (<-chan sandbox.ProcessChunk, error) {
	body := execRequest{Command: append([]string{cmd.Cmd}, cmd.Args...), Cwd: cmd.Cwd, Env: cmd.Env}

	path := "/v1/sandboxes/" + id + "/exec/stream" + a.scopeQuery()
	reqCtx, err := a.client.OpenStream(ctx, path, body, a.opCtx("process", "Stream", id))
	if err != nil {
		return nil, err
	}

	out := make(chan sandbox.ProcessChunk, 64)
	frames := providerclient.FrameReader(ctx, reqCtx)

	go func() {
		defer close(out)
		for frame := range frames {
			chunk, ok := providerclient.DecodeSSEChunk(frame)
			if !ok {
				continue
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
