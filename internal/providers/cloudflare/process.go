package cloudflare

import (
	"context"
	"encoding/json"
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
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

func (a *Adapter) Run(ctx context.Context, id string, cmd sandbox.RunCommand) (*sandbox.RunResult, error) {
	argv := append([]string{cmd.Cmd}, cmd.Args...)
	req := execRequest{Command: providerclient.EncodeArgvWithEnv(argv, cmd.Env), Cwd: cmd.Cwd}

	var resp execResponse
	if err := a.client.Do(ctx, "POST", "/sandboxes/"+id+"/exec", req, &resp, a.opCtx("process", "Run", id)); err != nil {
		return nil, err
	}
	return &sandbox.RunResult{ExitCode: resp.ExitCode, Stdout: resp.Stdout, Stderr: resp.Stderr}, nil
}

// wsFrame matches Cloudflare's {stream,data} WebSocket frame convention
// (spec.md §4.3), distinct from Daytona's raw-stdout frames.
type wsFrame struct {
	Stream string `json:"stream"`
	Data   string `json:"data"`
}

func decodeCloudflareFrame(frame []byte) (sandbox.ProcessChunk, bool) {
	var f wsFrame
	if err := json.Unmarshal(frame, &f); err != nil || f.Data == "" {
		return sandbox.ProcessChunk{}, false
	}
	channel := sandbox.ChannelStdout
	if f.Stream == "stderr" {
		channel = sandbox.ChannelStderr
	}
	return sandbox.ProcessChunk{Channel: channel, Data: []byte(f.Data)}, true
}

// Stream opens a WebSocket exec session. Authentication is normally a
// header, but some deployments front the WS upgrade with an edge proxy
// that strips custom headers, so config.Provider.UseQueryAuth (spec.md
// §9 Open Question) switches to a ?token= query param instead.
func (a *Adapter) Stream(ctx context.Context, id string, cmd sandbox.RunCommand) (<-chan sandbox.ProcessChunk, error) {
	if a.dialer == nil {
		return nil, boxederr.New(boxederr.KindUnsupported, boxederr.OpContext{Provider: Name, Capability: "process", Operation: "Stream", SandboxID: id}, "no websocket dialer configured for %s", Name)
	}

	argv := append([]string{cmd.Cmd}, cmd.Args...)
	command := providerclient.EncodeArgvWithEnv(argv, cmd.Env)

	url := wsBaseURL(a.client.BaseURL) + fmt.Sprintf("/sandboxes/%s/exec/stream?command=%s", id, command)
	header := map[string][]string{"Authorization": {"Bearer " + a.client.Token}}
	if a.useQueryAuth {
		url += "&token=" + a.client.Token
		header = nil
	}

	conn, err := a.dialer(ctx, url, header)
	if err != nil {
		return nil, boxederr.ClassifyTransport(err, boxederr.OpContext{Provider: Name, Capability: "process", Operation: "Stream", SandboxID: id})
	}

	return providerclient.WSChunkReader(ctx, conn, decodeCloudflareFrame), nil
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
