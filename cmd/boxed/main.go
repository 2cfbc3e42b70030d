// Package main is the entry point for the Boxed multi-provider sandbox
// control plane.
//
// Boxed is a distributed system for provisioning, managing, and
// communicating with ephemeral execution environments for AI agents and
// developers, uniform across seven backends (Modal, E2B, Daytona,
// Blaxel, Cloudflare, Vercel, local Docker).
//
// Usage:
//
//	boxed
//
// The server takes no command-line flags. It listens on $PORT (default
// 8080), requires $BOXED_API_KEY on /api routes when that is set, and
// logs JSON when BOXED_ENV=production (console output otherwise).
//
// Every provider is optional: the server wires whichever providers have
// credentials configured in the environment (see internal/config) and
// serves only those routes' worth of capability.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/boxed-run/sdk/internal/api"
	"github.com/boxed-run/sdk/internal/boot"
	"github.com/boxed-run/sdk/internal/run"
	"github.com/boxed-run/sdk/internal/store"
)

// Version information (set via ldflags at build time).
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if os.Getenv("BOXED_ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	log.Info().Str("version", Version).Str("commit", GitCommit).Str("built", BuildDate).Msg("boxed control plane starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		cancel()
	}()

	drivers := boot.Drivers(ctx)
	if len(drivers) == 0 {
		log.Fatal().Msg("no provider has credentials configured; set at least one of DOCKER, MODAL_TOKEN_ID/SECRET, E2B_API_KEY, DAYTONA_API_KEY, BLAXEL_API_KEY, CLOUDFLARE_API_TOKEN, VERCEL_ACCESS_TOKEN")
	}

	orchestrator := run.New(drivers)
	st := store.NewMemStore()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	apiKey := os.Getenv("BOXED_API_KEY")
	server := api.NewServer(drivers, orchestrator, st, apiKey)
	server.RegisterRoutes(e)

	serverErr := make(chan error, 1)
	go func() {
		port := "8080"
		if p := os.Getenv("PORT"); p != "" {
			port = p
		}
		log.Info().Str("port", port).Strs("providers", boot.Names(drivers)).Msg("server listening")
		serverErr <- e.Start(":" + port)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
		}
	case err := <-serverErr:
		if err != nil {
			log.Fatal().Err(err).Msg("server startup failed")
		}
	}
}
