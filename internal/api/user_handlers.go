package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/store"
)

// listKeys implements `GET /api/user/keys`.
func (s *Server) listKeys(c echo.Context) error {
	keys, err := s.store.ListKeys(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	// Never echo back the credential value itself.
	redacted := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		redacted = append(redacted, map[string]any{
			"id": k.ID, "provider": k.Provider, "createdAt": k.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"keys": redacted})
}

type putKeyRequest struct {
	Provider string `json:"provider"`
	Value    string `json:"value"`
}

// putKey implements `POST /api/user/keys`.
func (s *Server) putKey(c echo.Context) error {
	var req putKeyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request").SetInternal(err)
	}
	if req.Provider == "" || req.Value == "" {
		return boxederr.New(boxederr.KindValidation, boxederr.OpContext{Operation: "putKey"}, "provider and value are required")
	}

	saved, err := s.store.PutKey(c.Request().Context(), store.ProviderKey{
		UserID: userID(c), Provider: req.Provider, Value: req.Value,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{"id": saved.ID, "provider": saved.Provider})
}

// deleteKey implements `DELETE /api/user/keys/{id}`.
func (s *Server) deleteKey(c echo.Context) error {
	if err := s.store.DeleteKey(c.Request().Context(), userID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// listUserSandboxes implements `GET /api/user/sandboxes`.
func (s *Server) listUserSandboxes(c echo.Context) error {
	sandboxes, err := s.store.ListSandboxes(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"sandboxes": sandboxes})
}

// listUserRuns implements `GET /api/user/runs`.
func (s *Server) listUserRuns(c echo.Context) error {
	runs, err := s.store.ListRuns(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"runs": runs})
}
