package daytona

import (
	"context"
	"fmt"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/providerclient"
	"github.com/boxed-run/sdk/internal/sandbox"
)

type execRequest struct {
	Command string `json:"command"`
	Cwd     string `json:"cwd,omitempty"`
}

type execResponse struct {
	ExitCode int    `json:"exitCode"`
	Result   string `json:"result"`
}

// Run base64-encodes cmd's argv into a single shell one-liner (spec.md
// §4.4.4); Daytona's exec endpoint returns combined output rather than
// split stdout/stderr, so Stderr is left empty.
func (a *Adapter) Run(ctx context.Context, id string, cmd sandbox.RunCommand) (*sandbox.RunResult, error) {
	argv := append([]string{cmd.Cmd}, cmd.Args...)
	req := execRequest{Command: providerclient.EncodeArgvWithEnv(argv, cmd.Env), Cwd: cmd.Cwd}

	var resp execResponse
	if err := a.client.Do(ctx, "POST", "/toolbox/"+id+"/process/execute", req, &resp, a.opCtx("process", "Run", id)); err != nil {
		return nil, err
	}
	return &sandbox.RunResult{ExitCode: resp.ExitCode, Stdout: resp.Result}, nil
}

// Stream opens a WebSocket exec session and decodes every frame as raw
// stdout (spec.md §4.3: "Daytona: raw stdout-only frames").
func (a *Adapter) Stream(ctx context.Context, id string, cmd sandbox.RunCommand) (<-chan sandbox.ProcessChunk, error) {
	if a.dialer == nil {
		return nil, boxederr.New(boxederr.KindUnsupported, boxederr.OpContext{Provider: Name, Capability: "process", Operation: "Stream", SandboxID: id}, "no websocket dialer configured for %s", Name)
	}

	argv := append([]string{cmd.Cmd}, cmd.Args...)
	command := providerclient.EncodeArgvWithEnv(argv, cmd.Env)

	url := fmt.Sprintf("%s/toolbox/%s/process/execute/stream?command=%s", wsBaseURL(a.client.BaseURL), id, command)
	conn, err := a.dialer(ctx, url, map[string][]string{"Authorization": {"Bearer " + a.client.Token}})
	if err != nil {
		return nil, boxederr.ClassifyTransport(err, boxederr.OpContext{Provider: Name, Capability: "process", Operation: "Stream", SandboxID: id})
	}

	return providerclient.WSChunkReader(ctx, conn, providerclient.RawStdoutDecoder), nil
}

func wsBaseURL(httpBase string) string {
	switch {
	case len(httpBase) > 5 && httpBase[:5] == "https":
		return "wss" + httpBase[5:]
	case len(httpBase) > 4 && httpBase[:4] == "http":
		return "ws" + httpBase[4:]
	default:
		return httpBase
	}
}
