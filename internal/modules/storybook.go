// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package modules drives the deferred post-processing jobs a paper can
// run. A job is a single request with a long server-side wait ending in
// a terminal artifact locator; there is no polling and no job history.
// Implements: prd004-modules (R1);
//
//	docs/ARCHITECTURE § Modules.
package modules

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pdiddy/paperdash/pkg/types"
)

// PostClient is the slice of the backend client the module jobs use.
// *api.Client satisfies it.
type PostClient interface {
	PostJSON(ctx context.Context, path string, body any) (json.RawMessage, error)
}

// Storybook drives the kid-readable storybook generator. Each invocation
// is one independent exchange whose terminal outcome fully overwrites
// the prior result and error (R1.3).
type Storybook struct {
	client PostClient

	mu      sync.Mutex
	loading bool
	result  types.ModuleResult
	hasRes  bool
	errMsg  string
}

// NewStorybook wires the job to a backend client.
func NewStorybook(client PostClient) *Storybook {
	return &Storybook{client: client}
}

// Run requests a storybook for paperID and waits for the terminal
// response, returning the artifact locator or the failure. The loading
// flag is true exactly for the duration of the exchange and clears on
// both paths; no failure leaves it set (R1.2).
func (s *Storybook) Run(ctx context.Context, paperID string) (types.ModuleResult, error) {
	s.begin()

	raw, err := s.client.PostJSON(ctx, "/modules/storybook", map[string]string{"paper_id": paperID})
	if err != nil {
		s.fail(err.Error())
		return types.ModuleResult{}, err
	}

	var res types.ModuleResult
	if err := json.Unmarshal(raw, &res); err != nil {
		err = fmt.Errorf("parsing storybook response: %w", err)
		s.fail(err.Error())
		return types.ModuleResult{}, err
	}
	if res.SignedURL == "" {
		err := fmt.Errorf("storybook response missing signed_url")
		s.fail(err.Error())
		return types.ModuleResult{}, err
	}

	s.succeed(res)
	return res, nil
}

// Loading reports whether an exchange is in flight.
func (s *Storybook) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Result returns the artifact locator of the last successful run, and
// whether one is present.
func (s *Storybook) Result() (types.ModuleResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.hasRes
}

// ErrMessage reports the failure message of the last run, empty unless
// it failed.
func (s *Storybook) ErrMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *Storybook) begin() {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
}

func (s *Storybook) succeed(res types.ModuleResult) {
	s.mu.Lock()
	s.loading = false
	s.result = res
	s.hasRes = true
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *Storybook) fail(msg string) {
	s.mu.Lock()
	s.loading = false
	s.result = types.ModuleResult{}
	s.hasRes = false
	s.errMsg = msg
	s.mu.Unlock()
}
