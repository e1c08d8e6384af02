// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package paper implements the typed resource operations for papers and
// their extracted claims, and the schema validation every backend payload
// must pass before it reaches the rest of the application.
// Implements: prd002-papers (R1-R3);
//
//	docs/ARCHITECTURE § Papers.
package paper

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/pdiddy/paperdash/internal/api"
	"github.com/pdiddy/paperdash/pkg/types"
)

// Client is the slice of the backend client the paper operations use.
// *api.Client satisfies it; tests supply fakes.
type Client interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	PostMultipart(ctx context.Context, path string, form api.MultipartForm) (json.RawMessage, error)
	Delete(ctx context.Context, path string) error
}

// Service exposes the paper resource operations (R3). Errors from the
// backend client pass through unchanged so callers can branch on kind
// with errors.As.
type Service struct {
	client Client
}

// NewService wires the paper operations to a backend client.
func NewService(client Client) *Service {
	return &Service{client: client}
}

// List fetches all papers (R3.1).
func (s *Service) List(ctx context.Context) ([]types.Paper, error) {
	raw, err := s.client.Get(ctx, "/papers")
	if err != nil {
		return nil, err
	}
	return DecodePapers(raw)
}

// Get fetches one paper by id. A NotFoundError from the client passes
// through unchanged so a detail view can render absence distinctly from
// other failures (R3.2).
func (s *Service) Get(ctx context.Context, id string) (types.Paper, error) {
	raw, err := s.client.Get(ctx, "/papers/"+id)
	if err != nil {
		return types.Paper{}, err
	}
	return DecodePaper(raw)
}

// UploadInput names the parts of one paper upload. At least one of File
// or SourceURL must be set; enforcing that is the caller's job, not
// Upload's (R3.3).
type UploadInput struct {
	// File is a local path to the paper document.
	File string `yaml:"file,omitempty"`

	// SourceURL is a remote location the backend should fetch instead.
	SourceURL string `yaml:"source_url,omitempty"`

	// DatasetFile is a local path to an accompanying dataset.
	DatasetFile string `yaml:"dataset_file,omitempty"`
}

// Label names an upload input for progress output: the file basename
// when present, the source URL otherwise.
func (in UploadInput) Label() string {
	if in.File != "" {
		return filepath.Base(in.File)
	}
	return in.SourceURL
}

// Upload creates a paper from whichever inputs are present and returns
// the fully validated record. The creation ack carries only the new
// paper's id, so Upload re-fetches the record rather than trusting
// whatever else the ack contains (R3.3).
func (s *Service) Upload(ctx context.Context, in UploadInput) (types.Paper, error) {
	form := api.MultipartForm{Fields: map[string]string{}}
	if in.File != "" {
		form.Files = append(form.Files, api.FilePart{Field: "file", Path: in.File})
	}
	if in.SourceURL != "" {
		form.Fields["source_url"] = in.SourceURL
	}
	if in.DatasetFile != "" {
		form.Files = append(form.Files, api.FilePart{Field: "dataset_file", Path: in.DatasetFile})
	}

	raw, err := s.client.PostMultipart(ctx, "/papers/", form)
	if err != nil {
		return types.Paper{}, err
	}

	var ack struct {
		PaperID string `json:"paper_id"`
	}
	if err := json.Unmarshal(raw, &ack); err != nil {
		return types.Paper{}, &ValidationError{Problems: []string{"creation ack is not a JSON object"}}
	}
	if ack.PaperID == "" {
		return types.Paper{}, &ValidationError{Problems: []string{"creation ack missing paper_id"}}
	}

	return s.Get(ctx, ack.PaperID)
}

// Delete removes a paper; deletion is terminal from the client's
// perspective. Invalidating any view state afterwards is the caller's
// responsibility (R3.4).
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/papers/"+id)
}

// Claims fetches the extracted claims for one paper (R3.5). This is the
// re-fetch path through which a finished extraction run becomes visible.
func (s *Service) Claims(ctx context.Context, id string) ([]types.Claim, error) {
	raw, err := s.client.Get(ctx, "/papers/"+id+"/claims")
	if err != nil {
		return nil, err
	}
	return DecodeClaims(raw)
}
