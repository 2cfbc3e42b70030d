// Package providerclient is the shared HTTP/WS transport used by every
// remote provider adapter (everything except Docker, which talks to the
// local daemon via the docker SDK directly). It centralizes auth header
// injection, JSON/multipart encoding, streaming downloads, and
// classified-error dispatch so adapters only deal with provider-shaped
// request/response bodies.
package providerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/boxed-run/sdk/internal/boxederr"
)

// AuthStyle selects how credentials are attached to outbound requests.
type AuthStyle int

const (
	// AuthBearer sets "Authorization: Bearer {token}" (Modal, E2B,
	// Daytona, Vercel).
	AuthBearer AuthStyle = iota
	// AuthWorkspaceHeader additionally sets a workspace-scoped header
	// (Blaxel's x-blaxel-workspace).
	AuthWorkspaceHeader
	// AuthAccountPath has no auth header beyond bearer; the account id
	// is already baked into the base URL path (Cloudflare).
	AuthAccountPath
)

// EnvelopeParser extracts a human-readable error message from a
// provider's non-2xx response body, for providers that wrap errors in a
// custom envelope (e.g. Cloudflare's {success,errors[]}).
type EnvelopeParser func(body []byte) string

// Client is the shared request/response transport for one provider.
type Client struct {
	Provider       string
	BaseURL        string
	Token          string
	WorkspaceID    string
	WorkspaceHdr   string
	AuthStyle      AuthStyle
	HTTP           *http.Client
	DefaultTimeout time.Duration
	Patterns       boxederr.PatternSet
	ParseEnvelope  EnvelopeParser
}

// New builds a Client with sane defaults (30s timeout, stdlib transport
// — no HTTP client library exists anywhere in the retrieval pack to
// ground a third-party import on; see DESIGN.md).
func New(provider, baseURL, token string) *Client {
	return &Client{
		Provider:       provider,
		BaseURL:        strings.TrimRight(baseURL, "/"),
		Token:          token,
		AuthStyle:      AuthBearer,
		HTTP:           &http.Client{Timeout: 30 * time.Second},
		DefaultTimeout: 30 * time.Second,
		Patterns:       boxederr.PatternSet{Base: boxederr.DefaultPatterns},
	}
}

func (c *Client) applyAuth(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.AuthStyle == AuthWorkspaceHeader && c.WorkspaceID != "" {
		hdr := c.WorkspaceHdr
		if hdr == "" {
			hdr = "x-blaxel-workspace"
		}
		req.Header.Set(hdr, c.WorkspaceID)
	}
}

// RequestOptions tunes a single call.
type RequestOptions struct {
	// Capability/Operation/SandboxID populate the classified error's
	// context if the call fails.
	Capability string
	Operation  string
	SandboxID  string

	// Multipart, when non-nil, is written as the request body instead
	// of JSON-encoding Body (Daytona-style file upload).
	Multipart func(w *multipart.Writer) error

	// Raw, when true, skips JSON-decoding the response and returns the
	// raw bytes regardless of Content-Type (binary downloads).
	Raw bool
}

// Do issues method/path with an optional JSON body and decodes the
// response into out (unless opts.Raw, in which case out must be
// *[]byte). Non-2xx responses are classified and returned as
// *boxederr.Error.
func (c *Client) Do(ctx context.Context, method, path string, body any, out any, opts RequestOptions) error {
	ctxInfo := boxederr.OpContext{
		Provider:   c.Provider,
		Capability: opts.Capability,
		Operation:  opts.Operation,
		SandboxID:  opts.SandboxID,
	}
	if ctxInfo.Operation == "" {
		ctxInfo.Operation = fmt.Sprintf("%s %s", method, path)
	}

	var reqBody io.Reader
	contentType := ""

	switch {
	case opts.Multipart != nil:
		buf := &bytes.Buffer{}
		w := multipart.NewWriter(buf)
		if err := opts.Multipart(w); err != nil {
			return boxederr.Wrap(boxederr.KindValidation, err, ctxInfo, "failed to encode multipart body")
		}
		if err := w.Close(); err != nil {
			return boxederr.Wrap(boxederr.KindValidation, err, ctxInfo, "failed to close multipart body")
		}
		reqBody = buf
		contentType = w.FormDataContentType()
	case body != nil:
		b, err := json.Marshal(body)
		if err != nil {
			return boxederr.Wrap(boxederr.KindValidation, err, ctxInfo, "failed to encode request body")
		}
		reqBody = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return boxederr.Wrap(boxederr.KindValidation, err, ctxInfo, "failed to build request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.applyAuth(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return boxederr.ClassifyTransport(err, ctxInfo)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return boxederr.Wrap(boxederr.KindNetwork, err, ctxInfo, "failed to read response body")
	}

	if resp.StatusCode >= 300 {
		msg := respBody
		if c.ParseEnvelope != nil {
			if parsed := c.ParseEnvelope(respBody); parsed != "" {
				msg = []byte(parsed)
			}
		}
		return classifyWithPatterns(resp.StatusCode, resp.Header, msg, ctxInfo, c.Patterns)
	}

	if out == nil {
		return nil
	}
	if opts.Raw {
		if dst, ok := out.(*[]byte); ok {
			*dst = respBody
			return nil
		}
		return boxederr.New(boxederr.KindValidation, ctxInfo, "raw output destination must be *[]byte")
	}

	if len(respBody) == 0 {
		return nil
	}
	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.Contains(ct, "json") {
		if dst, ok := out.(*string); ok {
			*dst = string(respBody)
			return nil
		}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return boxederr.Wrap(boxederr.KindProvider, err, ctxInfo, "failed to decode response body")
	}
	return nil
}

func classifyWithPatterns(status int, header http.Header, body []byte, ctx boxederr.OpContext, patterns boxederr.PatternSet) *boxederr.Error {
	return boxederr.ClassifyHTTP(status, header, body, ctx, patterns)
}

// OpenStream issues a POST with a JSON body and returns the live
// response body unread, for SSE/NDJSON endpoints that stay open for the
// duration of a command (spec.md §4.3 streaming clause). The caller is
// responsible for closing the returned reader (FrameReader does this).
func (c *Client) OpenStream(ctx context.Context, path string, body any, opts RequestOptions) (io.ReadCloser, error) {
	ctxInfo := boxederr.OpContext{Provider: c.Provider, Capability: opts.Capability, Operation: opts.Operation, SandboxID: opts.SandboxID}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, boxederr.Wrap(boxederr.KindValidation, err, ctxInfo, "failed to encode request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, boxederr.Wrap(boxederr.KindValidation, err, ctxInfo, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	c.applyAuth(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, boxederr.ClassifyTransport(err, ctxInfo)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, classifyWithPatterns(resp.StatusCode, resp.Header, respBody, ctxInfo, c.Patterns)
	}
	return resp.Body, nil
}

// Download opens a streaming reader for a GET request, for large file
// downloads that should not be buffered in memory.
func (c *Client) Download(ctx context.Context, path string, opts RequestOptions) (io.ReadCloser, error) {
	ctxInfo := boxederr.OpContext{Provider: c.Provider, Capability: opts.Capability, Operation: opts.Operation, SandboxID: opts.SandboxID}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, boxederr.Wrap(boxederr.KindValidation, err, ctxInfo, "failed to build request")
	}
	c.applyAuth(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, boxederr.ClassifyTransport(err, ctxInfo)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, classifyWithPatterns(resp.StatusCode, resp.Header, body, ctxInfo, c.Patterns)
	}
	return resp.Body, nil
}
