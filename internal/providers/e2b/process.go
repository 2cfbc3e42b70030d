package e2b

import (
	"context"

	"github.com/boxed-run/sdk/internal/providerclient"
	"github.com/boxed-run/sdk/internal/sandbox"
)

type execRequest struct {
	Cmd string `json:"cmd"`
	Cwd string `json:"cwd,omitempty"`
}

type execResponse struct {
	ExitCode int    `json:"exitCode"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// Run base64-encodes cmd's argv into a single shell one-liner (spec.md
// §4.4.4) since E2B's process API accepts one command string.
func (a *Adapter) Run(ctx context.Context, id string, cmd sandbox.RunCommand) (*sandbox.RunResult, error) {
	argv := append([]string{cmd.Cmd}, cmd.Args...)
	req := execRequest{Cmd: providerclient.EncodeArgvWithEnv(argv, cmd.Env), Cwd: cmd.Cwd}

	var resp execResponse
	if err := a.client.Do(ctx, "POST", "/sandboxes/"+id+"/process", req, &resp, a.opCtx("process", "Run", id)); err != nil {
		return nil, err
	}
	return &sandbox.RunResult{ExitCode: resp.ExitCode, Stdout: resp.Stdout, Stderr: resp.Stderr}, nil
}

// Stream runs cmd with output framed as NDJSON over the process stream
// endpoint, decoded through the shared SSE/NDJSON frame reader.
func (a *Adapter) Stream(ctx context.Context, id string, cmd sandbox.RunCommand) (<-chan sandbox.ProcessChunk, error) {
	argv := append([]string{cmd.Cmd}, cmd.Args...)
	body := execRequest{Cmd: providerclient.EncodeArgvWithEnv(argv, cmd.Env), Cwd: cmd.Cwd}

	reader, err := a.client.OpenStream(ctx, "/sandboxes/"+id+"/process/stream", body, a.opCtx("process", "Stream", id))
	if err != nil {
		return nil, err
	}

	out := make(chan sandbox.ProcessChunk, 64)
	frames := providerclient.FrameReader(ctx, reader)

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
