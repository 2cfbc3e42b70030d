package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/boxed-run/sdk/internal/boxederr"
)

// kindToStatus is spec.md §7's error-kind-to-HTTP-status table. This is
// the one place this rework structurally diverges from the teacher: the
// teacher's handler.go picked a status per call site with ad hoc
// echo.NewHTTPError calls, because it had no closed error taxonomy to
// dispatch on. Every handler in this package returns a plain error and
// lets httpErrorHandler do this translation once, centrally.
var kindToStatus = map[boxederr.Kind]int{
	boxederr.KindAuthentication: http.StatusUnauthorized,
	boxederr.KindNotFound:       http.StatusNotFound,
	boxederr.KindValidation:     http.StatusBadRequest,
	boxederr.KindConflict:       http.StatusConflict,
	boxederr.KindRateLimited:    http.StatusTooManyRequests,
	boxederr.KindTimeout:        http.StatusGatewayTimeout,
	boxederr.KindUnsupported:    http.StatusNotImplemented,
	boxederr.KindQuotaExceeded:  http.StatusPaymentRequired,
	boxederr.KindProvider:       http.StatusBadGateway,
	boxederr.KindNetwork:        http.StatusBadGateway,
}

// errorBody is the response shape for every classified error, per
// spec.md §7: `{error, kind, operation, provider?, sandboxId?}`.
type errorBody struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Operation string `json:"operation,omitempty"`
	Provider  string `json:"provider,omitempty"`
	SandboxID string `json:"sandboxId,omitempty"`
}

// httpErrorHandler is installed as the echo.Echo's HTTPErrorHandler. It
// recognizes *boxederr.Error (classifying via kindToStatus), falls back
// to an echo.HTTPError's own code, and otherwise reports 500.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var be *boxederr.Error
	if errors.As(err, &be) {
		status, ok := kindToStatus[be.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		if be.Kind == boxederr.KindRateLimited && be.RetryAfterMs > 0 {
			c.Response().Header().Set("Retry-After", retryAfterSeconds(be.RetryAfterMs))
		}
		writeErr := c.JSON(status, errorBody{
			Error:     be.Error(),
			Kind:      string(be.Kind),
			Operation: be.Operation,
			Provider:  be.Provider,
			SandboxID: be.SandboxID,
		})
		if writeErr != nil {
			log.Error().Err(writeErr).Msg("failed to write error response")
		}
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, _ := he.Message.(string)
		_ = c.JSON(he.Code, errorBody{Error: msg, Kind: "internal"})
		return
	}

	log.Error().Err(err).Msg("unclassified handler error")
	_ = c.JSON(http.StatusInternalServerError, errorBody{Error: err.Error(), Kind: "internal"})
}

func retryAfterSeconds(ms int64) string {
	secs := ms / 1000
	if ms%1000 != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
