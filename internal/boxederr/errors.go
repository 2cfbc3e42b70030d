// Package boxederr defines the closed error taxonomy shared by every
// provider adapter and capability service.
//
// Every error that crosses a capability boundary is a *Error carrying a
// Kind from the closed set below plus enough context (provider,
// capability, operation, sandbox id) for a caller to decide whether to
// retry, surface to a user, or treat as fatal.
package boxederr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error classifications. Every adapter method
// must return an error whose Kind is one of these, or wrap one in a
// *Error via Wrap/New.
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindNotFound       Kind = "not_found"
	KindTimeout        Kind = "timeout"
	KindRateLimited    Kind = "rate_limited"
	KindConflict       Kind = "conflict"
	KindQuotaExceeded  Kind = "quota_exceeded"
	KindNetwork        Kind = "network"
	KindProvider       Kind = "provider"
	KindValidation     Kind = "validation"
	KindUnsupported    Kind = "unsupported"
)

// Error is the concrete error type returned across capability
// boundaries. It wraps an optional lower-layer cause and carries the
// operation context a caller needs to log or retry intelligently.
type Error struct {
	Kind       Kind
	Message    string
	Cause      error
	Provider   string
	Capability string
	Operation  string
	SandboxID  string

	// RetryAfterMs is set only for KindRateLimited, parsed from the
	// provider's Retry-After header (delta-seconds or HTTP-date).
	RetryAfterMs int64
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Operation != "" {
		msg = fmt.Sprintf("%s [%s %s]", msg, e.Provider, e.Operation)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, target) match by Kind: it reports true whenever
// target is also a *Error of the same Kind, whatever its Message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// OpContext carries the call-site information attached to a classified
// error.
type OpContext struct {
	Provider   string
	Capability string
	Operation  string
	SandboxID  string
}

// New builds a *Error of the given kind with no wrapped cause.
func New(kind Kind, ctx OpContext, format string, args ...any) *Error {
	return &Error{
		Kind:       kind,
		Message:    fmt.Sprintf(format, args...),
		Provider:   ctx.Provider,
		Capability: ctx.Capability,
		Operation:  ctx.Operation,
		SandboxID:  ctx.SandboxID,
	}
}

// Wrap classifies cause as kind, attaching ctx and a human-readable
// message.
func Wrap(kind Kind, cause error, ctx OpContext, format string, args ...any) *Error {
	return &Error{
		Kind:       kind,
		Message:    fmt.Sprintf(format, args...),
		Cause:      cause,
		Provider:   ctx.Provider,
		Capability: ctx.Capability,
		Operation:  ctx.Operation,
		SandboxID:  ctx.SandboxID,
	}
}

// Unsupported is a convenience for the common "capability not offered by
// this provider" case (spec: optional operations absent => unsupported).
func Unsupported(ctx OpContext, capability string) *Error {
	return New(KindUnsupported, ctx, "%s does not support %s", ctx.Provider, capability)
}

// KindOf returns the Kind of err if it is (or wraps) a *Error, and
// whether one was found.
func KindOf(err error) (Kind, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return "", false
}
