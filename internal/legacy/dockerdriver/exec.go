package dockerdriver

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
)

// dockerStream is the teacher's original pipe-based demultiplexer
// (internal/driver/docker/docker.go's DockerStream), kept as the
// distinct technique this legacy path exercises instead of the
// buffered demux internal/providers/docker/exec.go uses — stdout is
// piped to the reader side live, stderr frames are read and discarded
// rather than returned.
type dockerStream struct {
	resp   types.HijackedResponse
	reader *io.PipeReader
	writer *io.PipeWriter
}

func newDockerStream(resp types.HijackedResponse) *dockerStream {
	pr, pw := io.Pipe()
	ds := &dockerStream{resp: resp, reader: pr, writer: pw}
	go ds.demux()
	return ds
}

func (ds *dockerStream) demux() {
	defer ds.writer.Close()
	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(ds.resp.Reader, header); err != nil {
			return
		}
		size := int(header[4])<<24 | int(header[5])<<16 | int(header[6])<<8 | int(header[7])
		if size < 0 {
			return
		}
		switch header[0] {
		case 1:
			if _, err := io.CopyN(ds.writer, ds.resp.Reader, int64(size)); err != nil {
				return
			}
		default:
			if _, err := io.CopyN(io.Discard, ds.resp.Reader, int64(size)); err != nil {
				return
			}
		}
	}
}

func (ds *dockerStream) Close() error {
	ds.resp.Close()
	ds.writer.Close()
	return nil
}

func toArgvEnv(cmd sandbox.RunCommand) ([]string, []string) {
	argv := append([]string{cmd.Cmd}, cmd.Args...)
	env := make([]string, 0, len(cmd.Env))
	for k, v := range cmd.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return argv, env
}

// Run executes cmd inside id and waits for completion, piping its
// demultiplexed stdout through the teacher's dockerStream technique.
func (d *Driver) Run(ctx context.Context, id string, cmd sandbox.RunCommand) (*sandbox.RunResult, error) {
	argv, env := toArgvEnv(cmd)
	opCtx := boxederr.OpContext{Provider: DriverName, Capability: "process", Operation: "Run", SandboxID: id}

	execResp, err := d.cli.ContainerExecCreate(ctx, id, types.ExecConfig{
		Cmd: argv, Env: env, WorkingDir: cmd.Cwd,
		AttachStdout: true, AttachStderr: true, Tty: false,
	})
	if err != nil {
		return nil, boxederr.Wrap(boxederr.KindProvider, err, opCtx, "failed to create exec")
	}

	attach, err := d.cli.ContainerExecAttach(ctx, execResp.ID, types.ExecStartCheck{})
	if err != nil {
		return nil, boxederr.Wrap(boxederr.KindProvider, err, opCtx, "failed to attach exec")
	}

	stream := newDockerStream(attach)
	defer stream.Close()

	var stdout bytes.Buffer
	if _, err := io.Copy(&stdout, stream.reader); err != nil && err != io.EOF {
		return nil, boxederr.Wrap(boxederr.KindProvider, err, opCtx, "exec stream demux failed")
	}

	inspect, err := d.cli.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return nil, boxederr.Wrap(boxederr.KindProvider, err, opCtx, "failed to inspect exec")
	}

	return &sandbox.RunResult{ExitCode: inspect.ExitCode, Stdout: stdout.String()}, nil
}

// Stream runs cmd and emits its stdout as a single-channel stream
// (this legacy path predates per-channel stdout/stderr separation, so
// every chunk is tagged stdout).
func (d *Driver) Stream(ctx context.Context, id string, cmd sandbox.RunCommand) (<-chan sandbox.ProcessChunk, error) {
	argv, env := toArgvEnv(cmd)
	opCtx := boxederr.OpContext{Provider: DriverName, Capability: "process", Operation: "Stream", SandboxID: id}

	execResp, err := d.cli.ContainerExecCreate(ctx, id, types.ExecConfig{
		Cmd: argv, Env: env, WorkingDir: cmd.Cwd,
		AttachStdout: true, AttachStderr: true, Tty: false,
	})
	if err != nil {
		return nil, boxederr.Wrap(boxederr.KindProvider, err, opCtx, "failed to create exec")
	}

	attach, err := d.cli.ContainerExecAttach(ctx, execResp.ID, types.ExecStartCheck{})
	if err != nil {
		return nil, boxederr.Wrap(boxederr.KindProvider, err, opCtx, "failed to attach exec")
	}

	stream := newDockerStream(attach)
	out := make(chan sandbox.ProcessChunk, 64)

	go func() {
		defer close(out)
		defer stream.Close()
		buf := make([]byte, 4096)
		for {
			n, err := stream.reader.Read(buf)
			if n > 0 {
				chunk := sandbox.ProcessChunk{Channel: sandbox.ChannelStdout, Data: append([]byte(nil), buf[:n]...)}
				select {
				case out <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	return out, nil
}

// RunCode reuses Run with a language-specific interpreter invocation,
// passing the code as the interpreter's final argument unencoded (unlike
// internal/providers/docker/code.go, whose table differs and which
// base64-wraps the snippet).
var codeInterpreters = map[sandbox.Language][]string{
	sandbox.LangPython:     {"python3", "-u", "-c"},
	sandbox.LangJavaScript: {"node", "-e"},
	sandbox.LangTypeScript: {"npx", "tsx"},
	sandbox.LangBash:       {"sh", "-c"},
}

func (d *Driver) RunCode(ctx context.Context, id string, in sandbox.RunCodeInput) (*sandbox.RunResult, error) {
	lang, ok := sandbox.NormalizeLanguage(string(in.Language))
	if !ok {
		lang = in.Language
	}
	runner, ok := codeInterpreters[lang]
	if !ok {
		return nil, boxederr.Unsupported(boxederr.OpContext{Provider: DriverName, Capability: "code", Operation: "RunCode", SandboxID: id}, fmt.Sprintf("language %q", in.Language))
	}
	cmd := sandbox.RunCommand{Cmd: runner[0], Args: append(append([]string{}, runner[1:]...), in.Code), TimeoutMs: in.TimeoutMs}
	return d.Run(ctx, id, cmd)
}
