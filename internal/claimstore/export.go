// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package claimstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds a snapshot claim with paper metadata for export (R1.4).
type ExportEntry struct {
	ID             string       `json:"id" yaml:"id"`
	PaperID        string       `json:"paper_id" yaml:"paper_id"`
	Dataset        string       `json:"dataset" yaml:"dataset"`
	Split          string       `json:"split" yaml:"split"`
	MetricName     string       `json:"metric_name" yaml:"metric_name"`
	MetricValue    float64      `json:"metric_value" yaml:"metric_value"`
	Units          string       `json:"units" yaml:"units"`
	SourceCitation string       `json:"source_citation" yaml:"source_citation"`
	Confidence     float64      `json:"confidence" yaml:"confidence"`
	Paper          *ExportPaper `json:"paper,omitempty" yaml:"paper,omitempty"`
}

// ExportPaper holds the paper-level fields included in each export entry.
type ExportPaper struct {
	Title  string `json:"title" yaml:"title"`
	Status string `json:"status" yaml:"status"`
}

const exportLimit = 100000

// ExportYAML writes the snapshot to <snapshot_dir>/export.yaml (R1.4).
// It supports the same filters as Query.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the snapshot to <snapshot_dir>/export.json (R1.4).
// It supports the same filters as Query.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = exportLimit
	}
	results, err := s.Query(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			ID:             r.ID,
			PaperID:        r.PaperID,
			Dataset:        r.Dataset,
			Split:          r.Split,
			MetricName:     r.MetricName,
			MetricValue:    r.MetricValue,
			Units:          r.Units,
			SourceCitation: r.SourceCitation,
			Confidence:     r.Confidence,
		}
		if r.PaperTitle != "" || r.PaperStatus != "" {
			entries[i].Paper = &ExportPaper{
				Title:  r.PaperTitle,
				Status: string(r.PaperStatus),
			}
		}
	}

	return entries, nil
}
