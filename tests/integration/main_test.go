package integration

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/boxed-run/sdk/internal/api"
	"github.com/boxed-run/sdk/internal/config"
	"github.com/boxed-run/sdk/internal/providers/docker"
	"github.com/boxed-run/sdk/internal/run"
	"github.com/boxed-run/sdk/internal/sandbox"
	"github.com/boxed-run/sdk/internal/store"
)

const (
	ServerPort = "8081" // Use a different port than the default to avoid conflicts
	BaseURL    = "http://localhost:" + ServerPort + "/api"
)

func TestMain(m *testing.M) {
	os.Chdir("../..")

	d, err := docker.New(config.Docker())
	if err != nil {
		fmt.Printf("Failed to init docker provider: %v\n", err)
		os.Exit(1)
	}

	if err := d.Healthy(context.Background()); err != nil {
		fmt.Printf("Docker unreachable, skipping integration tests: %v\n", err)
		os.Exit(0)
	}

	drivers := map[string]*sandbox.Driver{docker.Name: d.Driver()}
	orchestrator := run.New(drivers)
	st := store.NewMemStore()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	api.NewServer(drivers, orchestrator, st, "").RegisterRoutes(e)

	go func() {
		if err := e.Start(":" + ServerPort); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server failed: %v\n", err)
			os.Exit(1)
		}
	}()

	waitForServer()

	code := m.Run()

	e.Shutdown(context.Background())
	os.Exit(code)
}

func waitForServer() {
	for i := 0; i < 10; i++ {
		resp, err := http.Get(BaseURL + "/user/sandboxes")
		if err == nil && resp.StatusCode == http.StatusOK {
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
	fmt.Println("Timeout waiting for test server")
	os.Exit(1)
}
