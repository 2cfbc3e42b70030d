// Package boot builds the set of configured provider drivers once, so
// both the server entry point (cmd/boxed) and the CLI's local "serve"
// convenience command (internal/cli) wire providers the same way.
package boot

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/boxed-run/sdk/internal/config"
	"github.com/boxed-run/sdk/internal/providerclient"
	"github.com/boxed-run/sdk/internal/providers/blaxel"
	"github.com/boxed-run/sdk/internal/providers/cloudflare"
	"github.com/boxed-run/sdk/internal/providers/daytona"
	"github.com/boxed-run/sdk/internal/providers/docker"
	"github.com/boxed-run/sdk/internal/providers/e2b"
	"github.com/boxed-run/sdk/internal/providers/modal"
	"github.com/boxed-run/sdk/internal/providers/vercel"
	"github.com/boxed-run/sdk/internal/sandbox"
)

// Drivers composes one sandbox.Driver per provider with credentials
// present in the environment (spec.md §6), skipping any provider whose
// token/daemon isn't configured rather than failing startup.
func Drivers(ctx context.Context) map[string]*sandbox.Driver {
	drivers := make(map[string]*sandbox.Driver)

	if d, err := docker.New(config.Docker()); err != nil {
		log.Warn().Err(err).Msg("docker provider unavailable")
	} else if err := d.Healthy(ctx); err != nil {
		log.Warn().Err(err).Msg("docker daemon not reachable, skipping docker provider")
	} else {
		drivers[docker.Name] = d.Driver()
	}

	if cfg := config.Modal(); cfg.Token != "" {
		drivers[modal.Name] = modal.New(cfg).Driver()
	}
	if cfg := config.E2B(); cfg.Token != "" {
		drivers[e2b.Name] = e2b.New(cfg).Driver()
	}
	if cfg := config.Daytona(); cfg.Token != "" {
		drivers[daytona.Name] = daytona.New(cfg, providerclient.GorillaDialer).Driver()
	}
	if cfg := config.Blaxel(); cfg.Token != "" {
		drivers[blaxel.Name] = blaxel.New(cfg).Driver()
	}
	if cfg := config.Cloudflare(); cfg.Token != "" {
		drivers[cloudflare.Name] = cloudflare.New(cfg, providerclient.GorillaDialer).Driver()
	}
	if cfg := config.Vercel(); cfg.Token != "" {
		drivers[vercel.Name] = vercel.New(cfg).Driver()
	}

	return drivers
}

// Names returns the configured provider names, for log lines.
func Names(drivers map[string]*sandbox.Driver) []string {
	out := make([]string, 0, len(drivers))
	for name := range drivers {
		out = append(out, name)
	}
	return out
}
