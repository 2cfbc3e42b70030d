package modal

import (
	"context"

	"github.com/boxed-run/sdk/internal/providerclient"
	"github.com/boxed-run/sdk/internal/sandbox"
)

type execRequest struct {
	Command string `json:"command"`
	Workdir string `json:"workdir,omitempty"`
}

type execResponse struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// Run base64-encodes cmd's argv into a single shell one-liner (spec.md
// §4.4.4) since Modal's exec endpoint accepts one command string.
func (a *Adapter) Run(ctx context.Context, id string, cmd sandbox.RunCommand) (*sandbox.RunResult, error) {
	argv := append([]string{cmd.Cmd}, cmd.Args...)
	req := execRequest{
		Command: providerclient.EncodeArgvWithEnv(argv, cmd.Env),
		Workdir: cmd.Cwd,
	}

	var resp execResponse
	if err := a.client.Do(ctx, "POST", "/sandboxes/"+id+"/exec", req, &resp, a.opCtx("process", "Run", id)); err != nil {
		return nil, err
	}

	return &sandbox.RunResult{ExitCode: resp.ExitCode, Stdout: resp.Stdout, Stderr: resp.Stderr}, nil
}

// Stream runs cmd with output framed as SSE, decoded through the shared
// frame reader (spec.md §4.3 streaming clause).
func (a *Adapter) Stream(ctx context.Context, id string, cmd sandbox.RunCommand) (<-chan sandbox.ProcessChunk, error) {
	argv := append([]string{cmd.Cmd}, cmd.Args...)
	body := execRequest{
		Command: providerclient.EncodeArgvWithEnv(argv, cmd.Env),
		Workdir: cmd.Cwd,
	}

	path := "/sandboxes/" + id + "/exec/stream"
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
