// Package dockerdriver is the teacher's original monolithic Docker
// driver, adapted to speak internal/sandbox's types at its boundary
// methods while keeping its internal Docker-SDK call sequence (the
// "tail -f /dev/null" + exec pattern, tar-stream file transfer). It
// satisfies sandbox.LegacyDriver so sandbox.FromMonolith can expose it
// as a second, legacy-shaped Driver alongside internal/providers/docker
// (spec.md §9 Open Question 1 — the two Docker paths are checked for
// behavioral equivalence in tests/legacy_equivalence_test.go).
package dockerdriver

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

	"github.com/boxed-run/sdk/internal/config"
	"github.com/boxed-run/sdk/internal/sandbox"
)

const (
	DriverName      = "docker-legacy"
	AgentBinaryPath = "/usr/local/bin/boxed-agent"
	ManagedLabel    = "xyz.boxed.managed.legacy"
)

// Driver implements sandbox.LegacyDriver using the Docker engine,
// grounded directly on internal/driver/docker/docker.go's DockerDriver.
type Driver struct {
	cli           *client.Client
	hostAgentPath string
}

// New creates a Driver from the local Docker engine, performing the
// same startup orphan-cleanup the teacher's New did.
func New(cfg config.DockerConfig) (*Driver, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	go cleanupOrphans(cli)

	agentPath := cfg.AgentPath
	if agentPath == "" {
		agentPath = "boxed-agent"
	}

	return &Driver{cli: cli, hostAgentPath: agentPath}, nil
}

func (d *Driver) Name() string { return DriverName }

func cleanupOrphans(cli *client.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("performing startup garbage collection of orphaned legacy containers")
	list, err := cli.ContainerList(ctx, types.ContainerListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", ManagedLabel+"=true")),
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to list orphaned legacy containers")
		return
	}

	count := 0
	for _, c := range list {
		if err := cli.ContainerRemove(ctx, c.ID, types.ContainerRemoveOptions{Force: true}); err != nil {
			log.Warn().Str("id", c.ID).Err(err).Msg("failed to remove orphan")
		} else {
			count++
		}
	}
	if count > 0 {
		log.Info().Int("count", count).Msg("removed orphaned legacy containers")
	}
}

// Create provisions a "tail -f /dev/null" container the way the
// teacher's Create did, translated from sandbox.CreateOptions instead
// of driver.SandboxConfig.
func (d *Driver) Create(ctx context.Context, opts sandbox.CreateOptions) (*sandbox.SandboxInfo, error) {
	if err := opts.Validate(DriverName); err != nil {
		return nil, err
	}

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

	env := []string{"BOXED_AGENT_MODE=docker"}
	for k, v := range opts.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	image := opts.Image
	if image == "" {
		image = "python:3.12-slim"
	}
	if _, _, err := d.cli.ImageInspectWithRaw(ctx, image); client.IsErrNotFound(err) {
		log.Info().Str("image", image).Msg("image not found locally, pulling")
		reader, pullErr := d.cli.ImagePull(ctx, image, types.ImagePullOptions{})
		if pullErr != nil {
			return nil, fmt.Errorf("failed to pull image %s: %w", image, pullErr)
		}
		io.Copy(io.Discard, reader)
		reader.Close()
	} else if err != nil {
		return nil, fmt.Errorf("failed to inspect image: %w", err)
	}

	labels := opts.Labels
	if labels == nil {
		labels = make(map[string]string)
	}
	labels[ManagedLabel] = "true"

	workdir := opts.Workdir
	if workdir == "" {
		workdir = sandbox.DefaultWorkdir
	}

	resp, err := d.cli.ContainerCreate(ctx,
		&container.Config{
			Image:      image,
			Cmd:        []string{"tail", "-f", "/dev/null"},
			Env:        env,
			Labels:     labels,
			WorkingDir: workdir,
		},
		hostConfig, nil, nil, "",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	if err := d.cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	if opts.IdleTimeoutMs > 0 {
		go func(id string, timeout time.Duration) {
			time.Sleep(timeout)
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = d.Destroy(cleanupCtx, id)
		}(resp.ID, time.Duration(opts.IdleTimeoutMs)*time.Millisecond)
	}

	return d.Get(ctx, resp.ID)
}

func (d *Driver) Destroy(ctx context.Context, id string) error {
	err := d.cli.ContainerRemove(ctx, id, types.ContainerRemoveOptions{Force: true, RemoveVolumes: true})
	if err != nil && client.IsErrNotFound(err) {
		return nil
	}
	return err
}

func (d *Driver) Status(ctx context.Context, id string) (sandbox.Status, error) {
	info, err := d.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return info.Status, nil
}

func (d *Driver) Get(ctx context.Context, id string) (*sandbox.SandboxInfo, error) {
	inspect, err := d.cli.ContainerInspect(ctx, id)
	if err != nil {
		return nil, err
	}

	status := sandbox.StatusStopped
	switch {
	case inspect.State.Running:
		status = sandbox.StatusReady
	case inspect.State.Dead || inspect.State.OOMKilled:
		status = sandbox.StatusFailed
	}

	created, _ := time.Parse(time.RFC3339Nano, inspect.Created)

	return &sandbox.SandboxInfo{
		ID:        inspect.ID,
		Provider:  DriverName,
		Status:    status,
		CreatedAt: created,
		Metadata:  inspect.Config.Labels,
	}, nil
}

func (d *Driver) List(ctx context.Context) ([]*sandbox.SandboxInfo, error) {
	containers, err := d.cli.ContainerList(ctx, types.ContainerListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", ManagedLabel+"=true")),
	})
	if err != nil {
		return nil, err
	}

	out := make([]*sandbox.SandboxInfo, 0, len(containers))
	for _, c := range containers {
		status := sandbox.StatusStopped
		if c.State == "running" {
			status = sandbox.StatusReady
		}
		out = append(out, &sandbox.SandboxInfo{ID: c.ID, Provider: DriverName, Status: status, Metadata: c.Labels})
	}
	return out, nil
}
