// Package api generalizes the teacher's single-provider echo handler
// (internal/api/handler.go) to the capability-split, multi-provider
// surface of spec.md §4.8: run orchestration, per-sandbox filesystem and
// process operations dispatched across any configured provider, and a
// thin per-user history/credential surface.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/boxed-run/sdk/internal/run"
	"github.com/boxed-run/sdk/internal/sandbox"
	"github.com/boxed-run/sdk/internal/store"
)

// Server holds everything a request handler needs: one composed Driver
// per configured provider, the run orchestrator, the history/credential
// store, and the shared API key (mirrors the teacher's single-field
// Handler, generalized from one driver to a provider map).
type Server struct {
	drivers      map[string]*sandbox.Driver
	orchestrator *run.Orchestrator
	store        store.Store
	apiKey       string
}

// NewServer wires a Server over a configured provider map. drivers keys
// are provider names ("docker", "modal", "e2b", ...); orchestrator may
// be nil only in tests that don't exercise /api/run routes.
func NewServer(drivers map[string]*sandbox.Driver, orchestrator *run.Orchestrator, st store.Store, apiKey string) *Server {
	return &Server{drivers: drivers, orchestrator: orchestrator, store: st, apiKey: apiKey}
}

// RegisterRoutes mounts every spec.md §4.8 route onto e and installs the
// centralized error handler.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.HTTPErrorHandler = httpErrorHandler
	e.Use(middleware.Recover())

	api := e.Group("/api")
	if s.apiKey != "" {
		api.Use(s.authMiddleware)
	}

	runGroup := api.Group("/run")
	runGroup.POST("/start", s.startRun)
	runGroup.POST("/:id/stop", s.stopRun)
	runGroup.GET("/:id/stream", s.streamRun)
	runGroup.GET("/:id/:provider/opencode/health", s.opencodeHealth)
	runGroup.GET("/:id/:provider/opencode/session", s.opencodeSessions)
	runGroup.GET("/:id/:provider/opencode/session/:sid/message", s.opencodeMessages)

	sb := api.Group("/sandbox")
	sb.POST("/create", s.createSandbox)
	sb.POST("/:id/destroy", s.destroySandbox)
	sb.GET("/:id/ls", s.listSandboxDir)
	sb.GET("/:id/read", s.readSandboxFile)
	sb.POST("/:id/run", s.runSandboxCommand)
	sb.POST("/:id/exec", s.execSandboxCode)

	user := api.Group("/user")
	user.GET("/keys", s.listKeys)
	user.POST("/keys", s.putKey)
	user.DELETE("/keys/:id", s.deleteKey)
	user.GET("/sandboxes", s.listUserSandboxes)
	user.GET("/runs", s.listUserRuns)
}

// authMiddleware mirrors the teacher's: header first, query param
// fallback "for easier debugging/CLI" (internal/api/handler.go).
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Header.Get("X-Boxed-API-Key")
		if key == "" {
			key = c.QueryParam("api_key")
		}
		if key != s.apiKey {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing API key")
		}
		return next(c)
	}
}

// userID resolves the acting user from the request. There is no auth
// identity provider wired up (spec.md §1 Non-goals excludes the user
// management plane itself); the caller-supplied X-Boxed-User-ID header
// names the history bucket, and callers that omit it share the
// "default" bucket.
func userID(c echo.Context) string {
	if u := c.Request().Header.Get("X-Boxed-User-ID"); u != "" {
		return u
	}
	return "default"
}

// driverFor resolves the provider named in the "provider" query param,
// defaulting to the only configured provider when there's exactly one.
func (s *Server) driverFor(c echo.Context) (*sandbox.Driver, string, bool) {
	provider := c.QueryParam("provider")
	if provider == "" {
		if len(s.drivers) == 1 {
			for name := range s.drivers {
				provider = name
			}
		}
	}
	d, ok := s.drivers[provider]
	return d, provider, ok
}
