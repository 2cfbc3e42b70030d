package docker

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
)

// resolvePath joins a relative path against the container's configured
// working directory, exactly like the teacher's DockerDriver.resolvePath.
func (a *Adapter) resolvePath(ctx context.Context, id, path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	inspect, err := a.cli.ContainerInspect(ctx, id)
	if err != nil {
		if client.IsErrNotFound(err) {
			return "", boxederr.New(boxederr.KindNotFound, a.opCtx("fs", "resolvePath", id), "sandbox not found")
		}
		return "", boxederr.Wrap(boxederr.KindProvider, err, a.opCtx("fs", "resolvePath", id), "failed to inspect container")
	}
	workdir := inspect.Config.WorkingDir
	if workdir == "" {
		workdir = "/"
	}
	return filepath.Join(workdir, path), nil
}

// ReadFile copies the target path out of the container as a tar stream
// and extracts the single file's contents, same technique as the
// teacher's GetFile.
func (a *Adapter) ReadFile(ctx context.Context, id, path string) ([]byte, error) {
	absPath, err := a.resolvePath(ctx, id, path)
	if err != nil {
		return nil, err
	}

	reader, _, err := a.cli.CopyFromContainer(ctx, id, absPath)
	if err != nil {
		return nil, a.fsErr(err, "ReadFile", id, "failed to read path")
	}
	defer reader.Close()

	tr := tar.NewReader(reader)
	header, err := tr.Next()
	if err != nil {
		return nil, boxederr.Wrap(boxederr.KindNotFound, err, a.opCtx("fs", "ReadFile", id), "file not found")
	}
	if header.Typeflag == tar.TypeDir {
		return nil, boxederr.New(boxederr.KindValidation, a.opCtx("fs", "ReadFile", id), "path is a directory")
	}

	return io.ReadAll(tr)
}

// WriteFile packs content into a single-entry tar stream and uploads it
// via CopyToContainer, same technique as the teacher's PutFile.
func (a *Adapter) WriteFile(ctx context.Context, id, path string, content []byte, mode int64) error {
	absPath, err := a.resolvePath(ctx, id, path)
	if err != nil {
		return err
	}

	if mode == 0 {
		mode = 0644
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	header := &tar.Header{
		Name:    filepath.Base(absPath),
		Size:    int64(len(content)),
		Mode:    mode,
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return boxederr.Wrap(boxederr.KindProvider, err, a.opCtx("fs", "WriteFile", id), "tar header write failed")
	}
	if _, err := tw.Write(content); err != nil {
		return boxederr.Wrap(boxederr.KindProvider, err, a.opCtx("fs", "WriteFile", id), "tar body write failed")
	}
	if err := tw.Close(); err != nil {
		return boxederr.Wrap(boxederr.KindProvider, err, a.opCtx("fs", "WriteFile", id), "tar close failed")
	}

	dir := filepath.Dir(absPath)
	if err := a.cli.CopyToContainer(ctx, id, dir, &buf, types.CopyToContainerOptions{}); err != nil {
		return a.fsErr(err, "WriteFile", id, "failed to copy file into container")
	}
	return nil
}

// ListDir copies the directory out as a tar stream and walks its
// entries, same technique as the teacher's ListFiles, extended with an
// optional non-recursive filter (spec.md §4.3.3).
func (a *Adapter) ListDir(ctx context.Context, id, path string, recursive bool) ([]*sandbox.FsEntry, error) {
	absPath, err := a.resolvePath(ctx, id, path)
	if err != nil {
		return nil, err
	}

	reader, _, err := a.cli.CopyFromContainer(ctx, id, absPath)
	if err != nil {
		return nil, a.fsErr(err, "ListDir", id, "failed to read path")
	}
	defer reader.Close()

	tr := tar.NewReader(reader)
	var entries []*sandbox.FsEntry
	root := filepath.Base(absPath)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, boxederr.Wrap(boxederr.KindProvider, err, a.opCtx("fs", "ListDir", id), "tar read error")
		}

		name := strings.TrimPrefix(header.Name, "/")
		if name == root || name == root+"/" || name == "" {
			continue
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(name, root), "/")
		if !recursive && strings.Contains(rel, "/") {
			continue
		}

		entryType := sandbox.EntryFile
		if header.Typeflag == tar.TypeDir {
			entryType = sandbox.EntryDir
		}

		entries = append(entries, &sandbox.FsEntry{
			Path:       filepath.Join(path, rel),
			Type:       entryType,
			Size:       header.Size,
			ModifiedAt: header.ModTime,
		})
	}

	return entries, nil
}

// Mkdir creates path and any missing intermediate directories via an
// in-sandbox `mkdir -p` exec (spec.md §4.2): CopyToContainer's tar
// upload has no notion of a nested destination, it fails outright
// whenever the parent directory doesn't already exist, so it can't
// implement this on its own the way it does for single-file writes.
func (a *Adapter) Mkdir(ctx context.Context, id, path string) error {
	absPath, err := a.resolvePath(ctx, id, path)
	if err != nil {
		return err
	}

	result, err := a.execAndWait(ctx, id, []string{"mkdir", "-p", absPath}, nil, "/")
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return boxederr.New(boxederr.KindProvider, a.opCtx("fs", "Mkdir", id), "mkdir exited %d: %s", result.ExitCode, result.Stderr)
	}
	return nil
}

// Rm removes path via an in-sandbox `rm` exec rather than the Docker
// SDK (there is no CopyToContainer-shaped delete primitive), reusing
// the same exec plumbing Process.Run relies on.
func (a *Adapter) Rm(ctx context.Context, id, path string, recursive, force bool) error {
	absPath, err := a.resolvePath(ctx, id, path)
	if err != nil {
		return err
	}

	args := []string{}
	if recursive {
		args = append(args, "-r")
	}
	if force {
		args = append(args, "-f")
	}
	args = append(args, absPath)

	result, err := a.execAndWait(ctx, id, append([]string{"rm"}, args...), nil, "/")
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return boxederr.New(boxederr.KindProvider, a.opCtx("fs", "Rm", id), "rm exited %d: %s", result.ExitCode, result.Stderr)
	}
	return nil
}

func (a *Adapter) fsErr(err error, op, id, msg string) error {
	if client.IsErrNotFound(err) {
		return boxederr.New(boxederr.KindNotFound, a.opCtx("fs", op, id), "path not found")
	}
	return boxederr.Wrap(boxederr.KindProvider, err, a.opCtx("fs", op, id), msg)
}
