// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api is the single chokepoint for HTTP traffic to the
// paper-analysis backend. It resolves the base address for the
// configured execution context and normalizes transport and HTTP
// failures into a uniform error taxonomy.
// Implements: prd001-backend-client (R1-R3);
//
//	docs/ARCHITECTURE § Backend Client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pdiddy/paperdash/pkg/types"
)

// defaultTimeout bounds non-streaming requests when the configuration
// leaves the timeout unset (R1.3).
const defaultTimeout = 30 * time.Second

// Client talks to the paper-analysis backend. All backend traffic,
// including the extraction stream, goes through it; there are no retries
// and no caching, so each call is one fresh round-trip (R2.7).
type Client struct {
	base      string
	token     string
	userAgent string

	// http carries the per-request timeout; stream has none, since a
	// streaming run is bounded by its context instead (R1.3).
	http   *http.Client
	stream *http.Client
}

// New constructs a Client for the execution context named in cfg. The
// base address is resolved exactly once, here, from explicit
// configuration (R1.1, R1.2).
func New(cfg types.BackendConfig) (*Client, error) {
	base, err := resolveBase(cfg)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		base:      strings.TrimRight(base, "/"),
		token:     cfg.Token,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: timeout},
		stream:    &http.Client{},
	}, nil
}

// resolveBase selects the internal or public address per the configured
// execution context. Unknown contexts and empty addresses are
// configuration errors, not fallbacks.
func resolveBase(cfg types.BackendConfig) (string, error) {
	switch cfg.Context {
	case types.ContextInternal:
		if cfg.InternalURL == "" {
			return "", fmt.Errorf("execution context %q: backend internal_url is not configured", cfg.Context)
		}
		return cfg.InternalURL, nil
	case types.ContextPublic:
		if cfg.PublicURL == "" {
			return "", fmt.Errorf("execution context %q: backend public_url is not configured", cfg.Context)
		}
		return cfg.PublicURL, nil
	default:
		return "", fmt.Errorf("unknown execution context %q", cfg.Context)
	}
}

// BaseURL reports the resolved base address.
func (c *Client) BaseURL() string { return c.base }

// Get issues a read of path and returns the raw JSON body. HTTP 404
// becomes NotFoundError; any other non-2xx becomes HTTPError (R2.1).
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return c.doJSON(req, path)
}

// PostJSON serializes body as JSON and posts it to path. Same failure
// contract as Get (R2.2).
func (c *Client) PostJSON(ctx context.Context, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", path, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, path)
}

// FilePart names a file to place into a multipart request.
type FilePart struct {
	// Field is the multipart field name (e.g. "file").
	Field string
	// Path is the local file to upload.
	Path string
}

// MultipartForm carries the scalar fields and file parts of one
// multipart/form-data request.
type MultipartForm struct {
	Fields map[string]string
	Files  []FilePart
}

// PostMultipart submits form as multipart/form-data. The content type,
// boundary included, comes from the multipart writer, never a
// hand-written constant (R2.3). Same failure contract as Get.
func (c *Client) PostMultipart(ctx context.Context, path string, form MultipartForm) (json.RawMessage, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for name, value := range form.Fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("encoding field %s: %w", name, err)
		}
	}
	for _, f := range form.Files {
		if err := writeFilePart(mw, f); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.doJSON(req, path)
}

// Delete issues a delete of path; there is no response value (R2.4).
// Non-2xx failures carry the response body text so callers can surface
// backend detail.
func (c *Client) Delete(ctx context.Context, path string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: "DELETE " + path, Err: err}
	}
	defer resp.Body.Close()

	log.WithFields(log.Fields{"method": http.MethodDelete, "path": path, "status": resp.StatusCode}).Debug("backend exchange")

	if err := checkStatus(resp, path); err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// Stream opens a long-lived POST to path and returns the response body
// for incremental consumption; the caller closes it (R2.5). There is no
// overall deadline; the context bounds the exchange.
func (c *Client) Stream(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "POST " + path, Err: err}
	}

	log.WithFields(log.Fields{"path": path, "status": resp.StatusCode}).Debug("stream opened")

	if err := checkStatus(resp, path); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// newRequest builds a request for path (which must begin with a slash)
// against the resolved base address, attaching the standing headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// doJSON performs the exchange and returns the raw JSON body on 2xx.
func (c *Client) doJSON(req *http.Request, path string) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: req.Method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	log.WithFields(log.Fields{"method": req.Method, "path": path, "status": resp.StatusCode}).Debug("backend exchange")

	if err := checkStatus(resp, path); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", path, err)
	}
	return raw, nil
}

// checkStatus normalizes non-2xx responses into the error taxonomy: 404
// becomes NotFoundError, everything else HTTPError with a bounded body
// snippet (R2.1, R3.1).
func checkStatus(resp *http.Response, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return &NotFoundError{Path: path}
	}
	return &HTTPError{StatusCode: resp.StatusCode, Snippet: readSnippet(resp.Body)}
}

// readSnippet reads at most snippetLimit bytes of the body for error
// reporting.
func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, snippetLimit))
	return strings.TrimSpace(string(b))
}

// writeFilePart copies one local file into the multipart body.
func writeFilePart(mw *multipart.Writer, f FilePart) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.Path, err)
	}
	defer src.Close()

	part, err := mw.CreateFormFile(f.Field, filepath.Base(f.Path))
	if err != nil {
		return fmt.Errorf("creating part %s: %w", f.Field, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copying %s: %w", f.Path, err)
	}
	return nil
}
