package boxederr

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Pattern is a case-insensitive substring matched against a provider's
// error message or response body when no HTTP status is available.
type Pattern struct {
	Substring string
	Kind      Kind
}

// PatternSet is a base set of patterns shared by every provider plus a
// per-provider override set, applied in order (overrides first).
type PatternSet struct {
	Base      []Pattern
	Overrides map[string][]Pattern
}

// DefaultPatterns is the base substring table applied when a provider
// does not carry a richer status code.
var DefaultPatterns = []Pattern{
	{Substring: "not found", Kind: KindNotFound},
	{Substring: "no such container", Kind: KindNotFound},
	{Substring: "already exists", Kind: KindConflict},
	{Substring: "unauthorized", Kind: KindAuthentication},
	{Substring: "forbidden", Kind: KindAuthentication},
	{Substring: "rate limit", Kind: KindRateLimited},
	{Substring: "quota", Kind: KindQuotaExceeded},
	{Substring: "timed out", Kind: KindTimeout},
	{Substring: "timeout", Kind: KindTimeout},
}

// ClassifyHTTP applies spec's ordered classification rules: status code
// first, substring pattern match second (provider overrides before the
// base set), KindProvider fallback third. Transport failures that never
// produced a response are classified by ClassifyTransport instead.
func ClassifyHTTP(status int, header http.Header, body []byte, ctx OpContext, patterns PatternSet) *Error {
	if status != 0 {
		if kind, ok := kindForStatus(status); ok {
			e := New(kind, ctx, "%s", strings.TrimSpace(string(body)))
			if kind == KindRateLimited {
				e.RetryAfterMs = parseRetryAfter(header)
			}
			return e
		}
	}

	msg := strings.ToLower(string(body))
	if set, ok := patterns.Overrides[ctx.Provider]; ok {
		if k, ok := matchPatterns(msg, set); ok {
			return New(k, ctx, "%s", strings.TrimSpace(string(body)))
		}
	}
	if k, ok := matchPatterns(msg, patterns.Base); ok {
		return New(k, ctx, "%s", strings.TrimSpace(string(body)))
	}

	return New(KindProvider, ctx, "unclassified provider error (status %d): %s", status, strings.TrimSpace(string(body)))
}

// ClassifyTransport classifies a transport-layer failure (no HTTP
// response reached): network errors become KindNetwork, everything else
// KindProvider.
func ClassifyTransport(cause error, ctx OpContext) *Error {
	var netErr net.Error
	var urlErr *url.Error
	if errors.As(cause, &netErr) || errors.As(cause, &urlErr) {
		return Wrap(KindNetwork, cause, ctx, "transport failure")
	}
	return Wrap(KindProvider, cause, ctx, "unclassified transport failure")
}

func kindForStatus(status int) (Kind, bool) {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthentication, true
	case http.StatusNotFound:
		return KindNotFound, true
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return KindTimeout, true
	case http.StatusConflict:
		return KindConflict, true
	case http.StatusRequestEntityTooLarge:
		return KindValidation, true
	case http.StatusTooManyRequests:
		return KindRateLimited, true
	case http.StatusUnprocessableEntity:
		return KindValidation, true
	default:
		if status >= 500 {
			return KindProvider, true
		}
	}
	return "", false
}

func matchPatterns(lowerMsg string, patterns []Pattern) (Kind, bool) {
	for _, p := range patterns {
		if strings.Contains(lowerMsg, strings.ToLower(p.Substring)) {
			return p.Kind, true
		}
	}
	return "", false
}

// parseRetryAfter accepts both delta-seconds and HTTP-date forms.
func parseRetryAfter(header http.Header) int64 {
	v := header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return secs * 1000
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			return 0
		}
		return d.Milliseconds()
	}
	return 0
}
