package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
	"github.com/boxed-run/sdk/internal/store"
)

type createSandboxRequest struct {
	Provider string            `json:"provider"`
	Image    string            `json:"image"`
	Name     string            `json:"name"`
	Env      map[string]string `json:"env"`
	Command  []string          `json:"command"`
}

type sandboxResponse struct {
	SandboxID string `json:"sandboxId"`
	Provider  string `json:"provider"`
	Status    string `json:"status"`
}

// createSandbox implements `POST /api/sandbox/create`, generalizing the
// teacher's single-provider createSandbox to dispatch by the request's
// "provider" field onto the matching Driver's Lifecycle.
func (s *Server) createSandbox(c echo.Context) error {
	var req createSandboxRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request").SetInternal(err)
	}

	d, ok := s.drivers[req.Provider]
	if !ok {
		return boxederr.New(boxederr.KindValidation, boxederr.OpContext{Provider: req.Provider, Operation: "createSandbox"}, "no driver configured for provider %q", req.Provider)
	}

	info, err := d.Lifecycle.Create(c.Request().Context(), sandbox.CreateOptions{
		Image:   req.Image,
		Name:    req.Name,
		Env:     req.Env,
		Command: req.Command,
	})
	if err != nil {
		return err
	}

	if s.store != nil {
		_ = s.store.RecordSandbox(c.Request().Context(), store.SandboxRecord{
			UserID:    userID(c),
			Provider:  req.Provider,
			SandboxID: info.ID,
			Image:     req.Image,
			Status:    string(info.Status),
		})
	}

	return c.JSON(http.StatusCreated, sandboxResponse{SandboxID: info.ID, Provider: req.Provider, Status: string(info.Status)})
}

// destroySandbox implements `POST /api/sandbox/{id}/destroy?provider=`.
func (s *Server) destroySandbox(c echo.Context) error {
	d, provider, ok := s.driverFor(c)
	if !ok {
		return boxederr.New(boxederr.KindValidation, boxederr.OpContext{Provider: provider, Operation: "destroySandbox"}, "no driver configured for provider %q", provider)
	}
	if err := d.Lifecycle.Destroy(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// listSandboxDir implements `GET /api/sandbox/{id}/ls?path=&provider=&recursive=`.
func (s *Server) listSandboxDir(c echo.Context) error {
	d, provider, ok := s.driverFor(c)
	if !ok {
		return boxederr.New(boxederr.KindValidation, boxederr.OpContext{Provider: provider, Operation: "listSandboxDir"}, "no driver configured for provider %q", provider)
	}
	path := c.QueryParam("path")
	if path == "" {
		path = "/"
	}
	recursive := c.QueryParam("recursive") == "true"

	entries, err := d.Fs.ListDir(c.Request().Context(), c.Param("id"), path, recursive)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"entries": entries})
}

// readSandboxFile implements `GET /api/sandbox/{id}/read?path=&provider=`.
func (s *Server) readSandboxFile(c echo.Context) error {
	d, provider, ok := s.driverFor(c)
	if !ok {
		return boxederr.New(boxederr.KindValidation, boxederr.OpContext{Provider: provider, Operation: "readSandboxFile"}, "no driver configured for provider %q", provider)
	}
	path := c.QueryParam("path")
	if path == "" {
		return boxederr.New(boxederr.KindValidation, boxederr.OpContext{Provider: provider, Operation: "readSandboxFile"}, "path is required")
	}

	content, err := d.Fs.ReadFile(c.Request().Context(), c.Param("id"), path)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/octet-stream", content)
}

type runCommandRequest struct {
	Provider string            `json:"provider"`
	Cmd      string            `json:"cmd"`
	Args     []string          `json:"args"`
	Cwd      string            `json:"cwd"`
	Env      map[string]string `json:"env"`
}

// runSandboxCommand implements `POST /api/sandbox/{id}/run`: a foreground
// command execution, generalizing the teacher's JSON-RPC exec call to
// the capability-split Process.Run.
func (s *Server) runSandboxCommand(c echo.Context) error {
	var req runCommandRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request").SetInternal(err)
	}
	d, ok := s.drivers[req.Provider]
	if !ok {
		if d, _, ok = s.driverFor(c); !ok {
			return boxederr.New(boxederr.KindValidation, boxederr.OpContext{Provider: req.Provider, Operation: "runSandboxCommand"}, "no driver configured for provider %q", req.Provider)
		}
	}

	result, err := d.Process.Run(c.Request().Context(), c.Param("id"), sandbox.RunCommand{
		Cmd: req.Cmd, Args: req.Args, Cwd: req.Cwd, Env: req.Env,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

type execCodeRequest struct {
	Provider string `json:"provider"`
	Language string `json:"language"`
	Code     string `json:"code"`
}

// execSandboxCode implements `POST /api/sandbox/{id}/exec`: the
// teacher's language-dispatch exec endpoint, generalized onto Code.RunCode
// instead of hand-rolling a python/node/bash switch per handler.
func (s *Server) execSandboxCode(c echo.Context) error {
	var req execCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request").SetInternal(err)
	}
	d, ok := s.drivers[req.Provider]
	if !ok {
		if d, _, ok = s.driverFor(c); !ok {
			return boxederr.New(boxederr.KindValidation, boxederr.OpContext{Provider: req.Provider, Operation: "execSandboxCode"}, "no driver configured for provider %q", req.Provider)
		}
	}

	lang, langOK := sandbox.NormalizeLanguage(req.Language)
	if !langOK {
		return boxederr.New(boxederr.KindValidation, boxederr.OpContext{Provider: req.Provider, Operation: "execSandboxCode"}, "unsupported language %q", req.Language)
	}

	result, err := d.Code.RunCode(c.Request().Context(), c.Param("id"), sandbox.RunCodeInput{Language: lang, Code: req.Code})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
