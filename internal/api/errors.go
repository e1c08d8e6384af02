// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import "fmt"

// snippetLimit bounds how much response body an HTTPError carries (R2.1).
const snippetLimit = 150

// NotFoundError reports an HTTP 404: the addressed resource does not
// exist. Callers branch on it with errors.As to render absence distinctly
// from generic failure (R3.2).
type NotFoundError struct {
	// Path is the request path that produced the 404.
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s could not be found", e.Path)
}

// HTTPError reports a non-2xx, non-404 response. Snippet holds at most
// snippetLimit bytes of the response body.
type HTTPError struct {
	StatusCode int
	Snippet    string
}

func (e *HTTPError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("backend returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned HTTP %d: %s", e.StatusCode, e.Snippet)
}

// TransportError reports a network-level failure before any HTTP status
// was available: dial errors, TLS errors, resets, cancellation (R2.6).
type TransportError struct {
	// Op names the attempted exchange (e.g. "GET /papers").
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
