// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package paper

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"
)

// Manifest is the on-disk list of papers to upload in one batch (R3.7).
// The researcher writes it once and replays it against a fresh backend.
type Manifest struct {
	Papers []UploadInput `yaml:"papers"`
}

// ReadManifest loads an upload manifest from a YAML file. Entries naming
// neither a file nor a source URL are rejected here, before any network
// traffic.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	for i, in := range m.Papers {
		if in.File == "" && in.SourceURL == "" {
			return nil, fmt.Errorf("manifest entry %d: needs file or source_url", i)
		}
	}
	return &m, nil
}

// BatchSummary holds counts from a batch upload run.
type BatchSummary struct {
	Uploaded int
	Failed   int
}

// Total returns the number of entries processed.
func (s BatchSummary) Total() int {
	return s.Uploaded + s.Failed
}

// HasFailures reports whether any uploads failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// UploadBatch uploads each input in order, writing per-entry progress to
// w. Individual failures do not stop the batch (R3.6); a cancelled
// context does, returning the summary so far alongside the context error.
func (s *Service) UploadBatch(ctx context.Context, inputs []UploadInput, w io.Writer) (BatchSummary, error) {
	var summary BatchSummary
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		p, err := s.Upload(ctx, in)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", in.Label(), err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "uploaded %s -> %s (%s)\n", in.Label(), p.ID, p.Status)
		summary.Uploaded++
	}
	return summary, nil
}
