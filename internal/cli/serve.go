package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/boxed-run/sdk/internal/api"
	"github.com/boxed-run/sdk/internal/boot"
	"github.com/boxed-run/sdk/internal/run"
	"github.com/boxed-run/sdk/internal/store"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Boxed control plane server",
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "8080", "HTTP server port")
	RootCmd.AddCommand(serveCmd)
}

func runServer() {
	log.Info().Str("port", port).Msg("starting boxed control plane")

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
		log.Fatal().Msg("no provider has credentials configured")
	}

	orchestrator := run.New(drivers)
	st := store.NewMemStore()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	server := api.NewServer(drivers, orchestrator, st, apiKey)
	server.RegisterRoutes(e)

	serverErr := make(chan error, 1)
	go func() {
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
