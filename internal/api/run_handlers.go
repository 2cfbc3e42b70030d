package api

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/run"
	"github.com/boxed-run/sdk/internal/store"
)

type startRunRequest struct {
	RepoURL   string            `json:"repoUrl"`
	Branch    string            `json:"branch"`
	Task      string            `json:"task"`
	Providers []string          `json:"providers"`
	Image     string            `json:"image"`
	Env       map[string]string `json:"env"`
}

type laneSummary struct {
	Provider  string `json:"provider"`
	SandboxID string `json:"sandboxId"`
	Success   bool   `json:"success"`
}

type startRunResponse struct {
	RunID     string        `json:"runId"`
	Providers []laneSummary `json:"providers"`
}

// startRun implements `POST /api/run/start` (spec.md §4.8): fan a task
// out across every requested provider and return immediately once lanes
// have been launched, not once they've finished.
func (s *Server) startRun(c echo.Context) error {
	var req startRunRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request").SetInternal(err)
	}

	state, err := s.orchestrator.Start(c.Request().Context(), run.StartRunRequest{
		RepoURL:   req.RepoURL,
		Branch:    req.Branch,
		Task:      req.Task,
		Providers: req.Providers,
		Image:     req.Image,
		Env:       req.Env,
	})
	if err != nil {
		return err
	}

	if s.store != nil {
		_ = s.store.RecordRun(c.Request().Context(), store.RunRecord{
			UserID:    userID(c),
			RunID:     state.ID,
			RepoURL:   req.RepoURL,
			Providers: req.Providers,
			Status:    string(state.Status),
		})
	}

	snap := state.Snapshot()
	resp := startRunResponse{RunID: snap.ID}
	for _, p := range req.Providers {
		lane := snap.PerProvider[p]
		resp.Providers = append(resp.Providers, laneSummary{
			Provider:  p,
			SandboxID: lane.SandboxID,
			Success:   lane.Status != "failed",
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// stopRun implements `POST /api/run/{id}/stop`.
func (s *Server) stopRun(c echo.Context) error {
	if err := s.orchestrator.Stop(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// streamRun implements `GET /api/run/{id}/stream`: SSE framing per
// spec.md §4.8/§6 ("event: {type}\ndata: {json}\n\n"), replaying the
// run's full history before switching to live events, exactly as
// internal/eventbus.Bus.Subscribe guarantees.
func (s *Server) streamRun(c echo.Context) error {
	state, ok := s.orchestrator.Get(c.Param("id"))
	if !ok {
		return boxederr.New(boxederr.KindNotFound, boxederr.OpContext{Operation: "streamRun"}, "run %q not found", c.Param("id"))
	}

	w := c.Response()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sub := state.Bus().Subscribe()
	defer sub.Unsubscribe()

	flusher, _ := w.Writer.(http.Flusher)
	ctx := c.Request().Context()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-sub.Events():
			if !ok {
				return nil
			}
			data, _ := json.Marshal(evt)
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

type opencodeHealthResponse struct {
	Healthy bool   `json:"healthy"`
	URL     string `json:"url,omitempty"`
}

// opencodeHealth implements `GET /api/run/{id}/{provider}/opencode/health`.
func (s *Server) opencodeHealth(c echo.Context) error {
	state, ok := s.orchestrator.Get(c.Param("id"))
	if !ok {
		return boxederr.New(boxederr.KindNotFound, boxederr.OpContext{Operation: "opencodeHealth"}, "run %q not found", c.Param("id"))
	}
	snap := state.Snapshot()
	lane, ok := snap.PerProvider[c.Param("provider")]
	if !ok || lane.OpencodeURL == "" {
		return c.JSON(http.StatusOK, opencodeHealthResponse{Healthy: false})
	}
	resp, err := http.Get(lane.OpencodeURL + "/health")
	if err != nil || resp.StatusCode != http.StatusOK {
		return c.JSON(http.StatusOK, opencodeHealthResponse{Healthy: false, URL: lane.OpencodeURL})
	}
	resp.Body.Close()
	return c.JSON(http.StatusOK, opencodeHealthResponse{Healthy: true, URL: lane.OpencodeURL})
}

// opencodeSessions implements `GET /api/run/{id}/{provider}/opencode/session`,
// proxying straight through to the in-sandbox agent.
func (s *Server) opencodeSessions(c echo.Context) error {
	return s.proxyOpencode(c, "/session")
}

// opencodeMessages implements
// `GET /api/run/{id}/{provider}/opencode/session/{sid}/message`.
func (s *Server) opencodeMessages(c echo.Context) error {
	path := fmt.Sprintf("/session/%s/message", c.Param("sid"))
	if limit := c.QueryParam("limit"); limit != "" {
		path += "?limit=" + limit
	}
	return s.proxyOpencode(c, path)
}

func (s *Server) proxyOpencode(c echo.Context, path string) error {
	state, ok := s.orchestrator.Get(c.Param("id"))
	if !ok {
		return boxederr.New(boxederr.KindNotFound, boxederr.OpContext{Operation: "proxyOpencode"}, "run %q not found", c.Param("id"))
	}
	snap := state.Snapshot()
	lane, ok := snap.PerProvider[c.Param("provider")]
	if !ok || lane.OpencodeURL == "" {
		return boxederr.New(boxederr.KindNotFound, boxederr.OpContext{Provider: c.Param("provider"), Operation: "proxyOpencode"}, "no agent URL for provider")
	}

	resp, err := http.Get(lane.OpencodeURL + path)
	if err != nil {
		return boxederr.Wrap(boxederr.KindNetwork, err, boxederr.OpContext{Provider: c.Param("provider"), Operation: "proxyOpencode"}, "failed to reach agent")
	}
	defer resp.Body.Close()

	c.Response().WriteHeader(resp.StatusCode)
	reader := bufio.NewReader(resp.Body)
	_, err = reader.WriteTo(c.Response())
	return err
}
