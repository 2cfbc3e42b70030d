package docker

import (
	"bytes"
	"context"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
)

// execAndWait creates a non-tty docker exec, collects its demultiplexed
// stdout/stderr into full buffers, and returns the process's exit code.
// Generalizes the teacher's DockerStream demux (internal/driver/docker/docker.go)
// from a single combined io.ReadWriteCloser into separate stdout/stderr buffers.
func (a *Adapter) execAndWait(ctx context.Context, id string, cmd []string, env []string, cwd string) (*sandbox.RunResult, error) {
	opCtx := a.opCtx("process", "Run", id)

	execCfg := types.ExecConfig{
		Cmd:          cmd,
		Env:          env,
		WorkingDir:   cwd,
		AttachStdout: true,
		AttachStderr: true,
		Tty:          false,
	}

	execResp, err := a.cli.ContainerExecCreate(ctx, id, execCfg)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, boxederr.New(boxederr.KindNotFound, opCtx, "sandbox not found")
		}
		return nil, boxederr.Wrap(boxederr.KindProvider, err, opCtx, "failed to create exec")
	}

	attach, err := a.cli.ContainerExecAttach(ctx, execResp.ID, types.ExecStartCheck{})
	if err != nil {
		return nil, boxederr.Wrap(boxederr.KindProvider, err, opCtx, "failed to attach exec")
	}
	defer attach.Close()

	var stdout, stderr bytes.Buffer
	if err := demuxStdcopy(attach.Reader, &stdout, &stderr); err != nil && err != io.EOF {
		return nil, boxederr.Wrap(boxederr.KindProvider, err, opCtx, "exec stream demux failed")
	}

	inspect, err := a.cli.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return nil, boxederr.Wrap(boxederr.KindProvider, err, opCtx, "failed to inspect exec")
	}

	return &sandbox.RunResult{
		ExitCode: inspect.ExitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// execStream is the streaming counterpart of execAndWait: it demuxes the
// exec connection live, pushing one sandbox.ProcessChunk per Docker
// stdcopy frame onto out, and closes out when the process exits or ctx
// is cancelled.
func (a *Adapter) execStream(ctx context.Context, id string, cmd []string, env []string, cwd string, out chan<- sandbox.ProcessChunk) error {
	opCtx := a.opCtx("process", "Stream", id)

	execCfg := types.ExecConfig{
		Cmd:          cmd,
		Env:          env,
		WorkingDir:   cwd,
		AttachStdout: true,
		AttachStderr: true,
		Tty:          false,
	}

	execResp, err := a.cli.ContainerExecCreate(ctx, id, execCfg)
	if err != nil {
		if client.IsErrNotFound(err) {
			return boxederr.New(boxederr.KindNotFound, opCtx, "sandbox not found")
		}
		return boxederr.Wrap(boxederr.KindProvider, err, opCtx, "failed to create exec")
	}

	attach, err := a.cli.ContainerExecAttach(ctx, execResp.ID, types.ExecStartCheck{})
	if err != nil {
		return boxederr.Wrap(boxederr.KindProvider, err, opCtx, "failed to attach exec")
	}

	go func() {
		defer close(out)
		defer attach.Close()
		demuxChunks(ctx, attach.Reader, out)
	}()

	return nil
}

// demuxStdcopy splits a non-tty exec attach stream's stdcopy frames
// into the stdout/stderr writers, per the Docker multiplexing format
// the teacher's DockerStream.demux documents (8-byte header: stream
// type byte, 3 reserved bytes, 4-byte big-endian payload length).
func demuxStdcopy(r io.Reader, stdout, stderr io.Writer) error {
	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(r, header); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		size := int(header[4])<<24 | int(header[5])<<16 | int(header[6])<<8 | int(header[7])
		if size < 0 {
			return nil
		}
		switch header[0] {
		case 1:
			if _, err := io.CopyN(stdout, r, int64(size)); err != nil {
				return err
			}
		case 2:
			if _, err := io.CopyN(stderr, r, int64(size)); err != nil {
				return err
			}
		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return err
			}
		}
	}
}

// demuxChunks is the streaming variant of demuxStdcopy, emitting one
// sandbox.ProcessChunk per frame instead of accumulating into buffers.
func demuxChunks(ctx context.Context, r io.Reader, out chan<- sandbox.ProcessChunk) {
	header := make([]byte, 8)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, err := io.ReadFull(r, header); err != nil {
			return
		}
		size := int(header[4])<<24 | int(header[5])<<16 | int(header[6])<<8 | int(header[7])
		if size <= 0 {
			continue
		}

		buf := make([]byte, size)
		if _, err := io.ReadFull(r, buf); err != nil {
			return
		}

		channel := sandbox.ChannelStdout
		if header[0] == 2 {
			channel = sandbox.ChannelStderr
		}

		select {
		case out <- sandbox.ProcessChunk{Channel: channel, Data: buf}:
		case <-ctx.Done():
			return
		}
	}
}
