// Package docker implements the capability-split Driver over a local
// Docker engine, generalizing the teacher's monolithic DockerDriver
// (internal/legacy/dockerdriver) along the six-interface split from
// sandbox.Driver.
package docker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/rs/zerolog/log"

	"github.com/boxed-run/sdk/internal/config"
	"github.com/boxed-run/sdk/internal/sandbox"
)

const (
	// Name is this provider's identifier.
	Name = "docker"

	// ManagedLabel marks every container this adapter created, so
	// startup garbage collection only ever touches its own containers.
	ManagedLabel = "xyz.boxed.managed"
)

// Adapter holds the Docker SDK client and the per-sandbox caches shared
// by every capability service (port mappings, agent process table).
// Safe for concurrent use.
type Adapter struct {
	cli  *client.Client
	cfg  config.DockerConfig

	mu    sync.Mutex
	ports map[string]map[int]int // sandbox id -> container port -> host port
	procs map[string]map[string]*runningProcess
}

type runningProcess struct {
	execID string
	cancel context.CancelFunc
}

// New creates a Docker-backed Adapter from the local engine
// (client.FromEnv, matching the teacher's New(cfg map[string]any)).
func New(cfg config.DockerConfig) (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	a := &Adapter{
		cli:   cli,
		cfg:   cfg,
		ports: make(map[string]map[int]int),
		procs: make(map[string]map[string]*runningProcess),
	}

	go a.cleanupOrphans()

	return a, nil
}

// Healthy pings the Docker daemon.
func (a *Adapter) Healthy(ctx context.Context) error {
	_, err := a.cli.Ping(ctx)
	return err
}

// Close releases the underlying Docker SDK client.
func (a *Adapter) Close() error {
	return a.cli.Close()
}

// Driver assembles the six capability services backed by this Adapter
// into a sandbox.Driver facade (spec.md §4.5). Snapshots and Volumes are
// routed through thin wrapper types because their method names
// (Create/List/Get) collide with Lifecycle's on the same receiver.
func (a *Adapter) Driver() *sandbox.Driver {
	return sandbox.Compose(Name, a, a, a, snapshotsService{a}, volumesService{a}, a)
}

func (a *Adapter) cleanupOrphans() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("performing startup garbage collection of orphaned boxed containers")
	list, err := a.cli.ContainerList(ctx, types.ContainerListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", ManagedLabel+"=true")),
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to list orphaned containers")
		return
	}

	count := 0
	for _, c := range list {
		if err := a.cli.ContainerRemove(ctx, c.ID, types.ContainerRemoveOptions{Force: true}); err != nil {
			log.Warn().Str("id", c.ID).Err(err).Msg("failed to remove orphan")
			continue
		}
		count++
	}
	if count > 0 {
		log.Info().Int("count", count).Msg("removed orphaned containers")
	}
}
