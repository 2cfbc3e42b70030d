package vercel

import (
	"context"
	"strconv"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/providerclient"
	"github.com/boxed-run/sdk/internal/sandbox"
)

// Fs is implemented on top of Run (spec.md §4.4.5): Vercel's sandbox
// exposes no file API this adapter targets separate from process exec.

func (a *Adapter) ReadFile(ctx context.Context, id, path string) ([]byte, error) {
	argv := providerclient.CatCommand(path)
	result, err := a.Run(ctx, id, sandbox.RunCommand{Cmd: argv[0], Args: argv[1:]})
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, boxederr.New(boxederr.KindNotFound, a.fsCtx("ReadFile", id), "file not found: %s", path)
	}
	return []byte(result.Stdout), nil
}

func (a *Adapter) WriteFile(ctx context.Context, id, path string, content []byte, mode int64) error {
	argv := providerclient.WriteFileCommand(path, content)
	result, err := a.Run(ctx, id, sandbox.RunCommand{Cmd: argv[0], Args: argv[1:]})
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return boxederr.New(boxederr.KindProvider, a.fsCtx("WriteFile", id), "write failed: %s", result.Stderr)
	}
	if mode != 0 {
		_, _ = a.Run(ctx, id, sandbox.RunCommand{Cmd: "chmod", Args: []string{strconv.FormatInt(mode, 8), path}})
	}
	return nil
}

func (a *Adapter) ListDir(ctx context.Context, id, path string, recursive bool) ([]*sandbox.FsEntry, error) {
	argv := providerclient.ListDirCommand(path)
	if recursive {
		argv = []string{"find", path}
	}
	result, err := a.Run(ctx, id, sandbox.RunCommand{Cmd: argv[0], Args: argv[1:]})
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, boxederr.New(boxederr.KindNotFound, a.fsCtx("ListDir", id), "path not found: %s", path)
	}
	if recursive {
		var entries []*sandbox.FsEntry
		for _, line := range providerclient.TrimmedLines(result.Stdout) {
			if line == path {
				continue
			}
			entries = append(entries, &sandbox.FsEntry{Path: line, Type: sandbox.EntryFile})
		}
		return entries, nil
	}
	return providerclient.ParseLsLa(path, result.Stdout), nil
}

func (a *Adapter) Mkdir(ctx context.Context, id, path string) error {
	argv := providerclient.MkdirCommand(path)
	result, err := a.Run(ctx, id, sandbox.RunCommand{Cmd: argv[0], Args: argv[1:]})
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return boxederr.New(boxederr.KindProvider, a.fsCtx("Mkdir", id), "mkdir failed: %s", result.Stderr)
	}
	return nil
}

func (a *Adapter) Rm(ctx context.Context, id, path string, recursive, force bool) error {
	argv := providerclient.RmCommand(path, recursive, force)
	result, err := a.Run(ctx, id, sandbox.RunCommand{Cmd: argv[0], Args: argv[1:]})
	if err != nil {
		return err
	}
	if result.ExitCode != 0 && !force {
		return boxederr.New(boxederr.KindProvider, a.fsCtx("Rm", id), "rm failed: %s", result.Stderr)
	}
	return nil
}

func (a *Adapter) fsCtx(op, id string) boxederr.OpContext {
	return boxederr.OpContext{Provider: Name, Capability: "fs", Operation: op, SandboxID: id}
}
