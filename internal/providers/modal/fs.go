package modal

import (
	"context"
	"strconv"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/providerclient"
	"github.com/boxed-run/sdk/internal/sandbox"
)

// ReadFile, WriteFile, ListDir, Mkdir, and Rm are all implemented on top
// of Run (spec.md §4.4.5) because Modal's sandbox API exposes no
// dedicated file-transfer endpoint.

func (a *Adapter) ReadFile(ctx context.Context, id, path string) ([]byte, error) {
	argv := providerclient.CatCommand(path)
	result, err := a.Run(ctx, id, sandbox.RunCommand{Cmd: argv[0], Args: argv[1:]})
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, boxederr.New(boxederr.KindNotFound, a.opCtxErr("fs", "ReadFile", id), "file not found: %s", path)
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
		return boxederr.New(boxederr.KindProvider, a.opCtxErr("fs", "WriteFile", id), "write failed: %s", result.Stderr)
	}
	if mode != 0 {
		chmodArgv := []string{"chmod", strconv.FormatInt(mode, 8), path}
		_, _ = a.Run(ctx, id, sandbox.RunCommand{Cmd: chmodArgv[0], Args: chmodArgv[1:]})
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
		return nil, boxederr.New(boxederr.KindNotFound, a.opCtxErr("fs", "ListDir", id), "path not found: %s", path)
	}
	if recursive {
		return parseFindOutput(path, result.Stdout), nil
	}
	return providerclient.ParseLsLa(path, result.Stdout), nil
}

func parseFindOutput(base, output string) []*sandbox.FsEntry {
	var entries []*sandbox.FsEntry
	for _, line := range providerclient.TrimmedLines(output) {
		if line == base {
			continue
		}
		entries = append(entries, &sandbox.FsEntry{Path: line, Type: sandbox.EntryFile})
	}
	return entries
}

func (a *Adapter) Mkdir(ctx context.Context, id, path string) error {
	argv := providerclient.MkdirCommand(path)
	result, err := a.Run(ctx, id, sandbox.RunCommand{Cmd: argv[0], Args: argv[1:]})
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return boxederr.New(boxederr.KindProvider, a.opCtxErr("fs", "Mkdir", id), "mkdir failed: %s", result.Stderr)
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
		return boxederr.New(boxederr.KindProvider, a.opCtxErr("fs", "Rm", id), "rm failed: %s", result.Stderr)
	}
	return nil
}

func (a *Adapter) opCtxErr(capability, op, id string) boxederr.OpContext {
	return boxederr.OpContext{Provider: Name, Capability: capability, Operation: op, SandboxID: id}
}
