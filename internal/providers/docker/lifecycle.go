package docker

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/rs/zerolog/log"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
)

func (a *Adapter) opCtx(capability, op, id string) boxederr.OpContext {
	return boxederr.OpContext{Provider: Name, Capability: capability, Operation: op, SandboxID: id}
}

// Create provisions a container running opts.Command, or kept alive
// with "tail -f /dev/null" when Command is empty so later capability
// calls can still exec into it on demand — the same keep-alive
// the teacher's DockerDriver.Create always used, generalized to the
// full sandbox.CreateOptions field set (ports, volumes, source
// injection) and to providers like Modal that run Command directly.
func (a *Adapter) Create(ctx context.Context, opts sandbox.CreateOptions) (*sandbox.SandboxInfo, error) {
	if err := opts.Validate(Name); err != nil {
		return nil, err
	}
	ctxInfo := a.opCtx("lifecycle", "Create", "")

	opts.Image = resolveImage(opts.Image)

	nanoCPUs := int64(opts.CPU * 1e9)
	memoryBytes := opts.MemoryMiB * 1024 * 1024

	hostConfig := &container.HostConfig{
		Resources: container.Resources{NanoCPUs: nanoCPUs, Memory: memoryBytes},
		Mounts: []mount.Mount{
			{Type: mount.TypeTmpfs, Target: "/tmp"},
			{Type: mount.TypeTmpfs, Target: "/output"},
		},
	}

	if !opts.NetworkPolicy.EnableInternet {
		hostConfig.NetworkMode = "none"
	}

	for mountPath, volName := range opts.Volumes {
		hostConfig.Mounts = append(hostConfig.Mounts, mount.Mount{
			Type:   mount.TypeVolume,
			Source: volName,
			Target: mountPath,
		})
	}

	portBindings, exposedPorts, hostPorts := a.buildPortBindings(append(append([]int{}, opts.EncryptedPorts...), opts.UnencryptedPorts...))
	hostConfig.PortBindings = portBindings

	env := []string{"BOXED_SANDBOX_MODE=docker"}
	for k, v := range opts.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	if err := a.ensureImage(ctx, opts.Image, ctxInfo); err != nil {
		return nil, err
	}

	labels := opts.Labels
	if labels == nil {
		labels = make(map[string]string)
	}
	labels[ManagedLabel] = "true"

	cmd := []string{"tail", "-f", "/dev/null"}
	if len(opts.Command) > 0 {
		cmd = opts.Command
	}
	resp, err := a.cli.ContainerCreate(ctx,
		&container.Config{
			Image:        opts.Image,
			Cmd:          cmd,
			Env:          env,
			Labels:       labels,
			WorkingDir:   opts.Workdir,
			ExposedPorts: exposedPorts,
		},
		hostConfig,
		nil, nil, "",
	)
	if err != nil {
		return nil, boxederr.Wrap(boxederr.KindProvider, err, ctxInfo, "failed to create container")
	}

	if len(hostPorts) > 0 {
		a.mu.Lock()
		a.ports[resp.ID] = hostPorts
		a.mu.Unlock()
	}

	if err := a.cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		return nil, boxederr.Wrap(boxederr.KindProvider, err, a.opCtx("lifecycle", "Create", resp.ID), "failed to start container")
	}

	if opts.Source != nil {
		if err := a.seedSource(ctx, resp.ID, opts); err != nil {
			_ = a.Destroy(context.Background(), resp.ID)
			return nil, err
		}
	}

	if opts.TimeoutMs > 0 {
		go a.enforceTTL(resp.ID, time.Duration(opts.TimeoutMs)*time.Millisecond)
	}

	return &sandbox.SandboxInfo{
		ID:        resp.ID,
		Name:      opts.Name,
		Provider:  Name,
		Status:    sandbox.StatusReady,
		CreatedAt: time.Now().UTC(),
		Metadata:  opts.Labels,
	}, nil
}

// seedSource injects the requested source into the freshly-started
// container. Git/tarball sources are fetched in-sandbox via Process.Run
// so the adapter never needs its own git/tar implementation; snapshot
// sources are a no-op here because SourceKindSnapshot sandboxes are
// created FROM the snapshot's image directly (see snapshots.go).
func (a *Adapter) seedSource(ctx context.Context, id string, opts sandbox.CreateOptions) error {
	switch opts.Source.Kind {
	case sandbox.SourceKindGit:
		args := []string{"clone"}
		if opts.Source.GitDepth > 0 {
			args = append(args, "--depth", fmt.Sprintf("%d", opts.Source.GitDepth))
		}
		if opts.Source.GitRevision != "" {
			args = append(args, "--branch", opts.Source.GitRevision)
		}
		args = append(args, opts.Source.GitURL, opts.Workdir)
		_, err := a.Run(ctx, id, sandbox.RunCommand{Cmd: "git", Args: args})
		return err
	case sandbox.SourceKindTarball:
		_, err := a.Run(ctx, id, sandbox.RunCommand{
			Cmd:  "sh",
			Args: []string{"-c", fmt.Sprintf("curl -fsSL %q | tar -xz -C %q", opts.Source.TarballURL, opts.Workdir)},
		})
		return err
	case sandbox.SourceKindSnapshot:
		return nil
	default:
		return nil
	}
}

func (a *Adapter) ensureImage(ctx context.Context, image string, ctxInfo boxederr.OpContext) error {
	_, _, err := a.cli.ImageInspectWithRaw(ctx, image)
	if client.IsErrNotFound(err) {
		log.Info().Str("image", image).Msg("image not found locally, pulling")
		reader, err := a.cli.ImagePull(ctx, image, types.ImagePullOptions{})
		if err != nil {
			return boxederr.Wrap(boxederr.KindProvider, err, ctxInfo, "failed to pull image %s", image)
		}
		_, _ = io.Copy(io.Discard, reader)
		reader.Close()
		return nil
	}
	if err != nil {
		return boxederr.Wrap(boxederr.KindProvider, err, ctxInfo, "failed to inspect image")
	}
	return nil
}

func (a *Adapter) enforceTTL(id string, timeout time.Duration) {
	time.Sleep(timeout)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = a.Destroy(ctx, id)
}

// Destroy force-removes the container and releases cached per-sandbox
// state. Removing an already-gone container still releases the cached
// state and then returns a boxederr.KindNotFound error.
func (a *Adapter) Destroy(ctx context.Context, id string) error {
	opts := types.ContainerRemoveOptions{Force: true, RemoveVolumes: false}
	if err := a.cli.ContainerRemove(ctx, id, opts); err != nil {
		if client.IsErrNotFound(err) {
			a.forgetSandbox(id)
			return boxederr.New(boxederr.KindNotFound, a.opCtx("lifecycle", "Destroy", id), "sandbox not found")
		}
		return boxederr.Wrap(boxederr.KindProvider, err, a.opCtx("lifecycle", "Destroy", id), "failed to remove container")
	}
	a.forgetSandbox(id)
	return nil
}

func (a *Adapter) forgetSandbox(id string) {
	a.mu.Lock()
	delete(a.ports, id)
	delete(a.procs, id)
	a.mu.Unlock()
}

// Status returns the uniform status for id.
func (a *Adapter) Status(ctx context.Context, id string) (sandbox.Status, error) {
	info, err := a.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return info.Status, nil
}

// Get inspects the container and maps it to a SandboxInfo.
func (a *Adapter) Get(ctx context.Context, id string) (*sandbox.SandboxInfo, error) {
	inspect, err := a.cli.ContainerInspect(ctx, id)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, boxederr.New(boxederr.KindNotFound, a.opCtx("lifecycle", "Get", id), "sandbox not found")
		}
		return nil, boxederr.Wrap(boxederr.KindProvider, err, a.opCtx("lifecycle", "Get", id), "failed to inspect container")
	}

	created, _ := time.Parse(time.RFC3339Nano, inspect.Created)
	status := mapStatus(inspect.State.Running, inspect.State.Dead, inspect.State.OOMKilled)

	return &sandbox.SandboxInfo{
		ID:        inspect.ID,
		Provider:  Name,
		Status:    status,
		CreatedAt: created,
		Metadata:  inspect.Config.Labels,
	}, nil
}

// List returns every container this adapter manages. Per spec.md
// §4.4 closing paragraph, a transient provider hiccup here degrades to
// an empty slice rather than an error.
func (a *Adapter) List(ctx context.Context) ([]*sandbox.SandboxInfo, error) {
	containers, err := a.cli.ContainerList(ctx, types.ContainerListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", ManagedLabel+"=true")),
	})
	if err != nil {
		log.Warn().Err(err).Msg("docker List: transient failure, returning empty result")
		return nil, nil
	}

	results := make([]*sandbox.SandboxInfo, 0, len(containers))
	for _, c := range containers {
		status := sandbox.StatusStopped
		if c.State == "running" {
			status = sandbox.StatusReady
		}
		results = append(results, &sandbox.SandboxInfo{
			ID:        c.ID,
			Provider:  Name,
			Status:    status,
			CreatedAt: time.Unix(c.Created, 0).UTC(),
			Metadata:  c.Labels,
		})
	}
	return results, nil
}
