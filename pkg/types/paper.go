// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paperdash client.
// Implements: prd002-papers (Paper, Claim, R1.1-R1.4);
//
//	prd003-extraction-stream (LogEntry);
//	prd004-modules (ModuleResult);
//	prd001-backend-client (BackendConfig, ExecutionContext).
//
// See docs/ARCHITECTURE.md § Data Structures.
package types

import "time"

// PaperStatus is the backend-defined processing state of a paper.
// Per prd002-papers R1.2: the backend owns all transitions; the client
// only re-fetches, never mutates a status locally.
type PaperStatus string

const (
	StatusReceived   PaperStatus = "received"
	StatusProcessing PaperStatus = "processing"
	StatusComplete   PaperStatus = "complete"
	StatusFailed     PaperStatus = "failed"
)

// Paper is the central tracked entity: one uploaded research document and
// its processing status. Per prd002-papers R1.1.
type Paper struct {
	// ID is the opaque identifier assigned by the backend at creation,
	// immutable once assigned.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Status is the backend-authoritative processing state.
	Status PaperStatus `json:"status" yaml:"status"`

	// SourceURL is the URL the paper was submitted from, when one was given.
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`

	// CreatedAt is the backend creation timestamp. Zero when the backend
	// omits it.
	CreatedAt time.Time `json:"created_at,omitzero" yaml:"created_at,omitempty"`
}

// Claim is a single extracted finding attributed to a paper: a flat record
// with no invariants beyond field presence. Per prd002-papers R1.3.
type Claim struct {
	// ID is the backend-assigned claim identifier.
	ID string `json:"id" yaml:"id"`

	// Dataset names the dataset the claim was measured on.
	Dataset string `json:"dataset,omitempty" yaml:"dataset,omitempty"`

	// Split is the dataset split (e.g. "test", "validation").
	Split string `json:"split,omitempty" yaml:"split,omitempty"`

	// MetricName names the reported metric (e.g. "accuracy", "BLEU").
	MetricName string `json:"metric_name" yaml:"metric_name"`

	// MetricValue is the reported value for MetricName.
	MetricValue float64 `json:"metric_value" yaml:"metric_value"`

	// Units qualifies MetricValue (e.g. "%", "ms").
	Units string `json:"units,omitempty" yaml:"units,omitempty"`

	// SourceCitation quotes or locates the passage the claim came from.
	SourceCitation string `json:"source_citation,omitempty" yaml:"source_citation,omitempty"`

	// Confidence is a value between 0.0 and 1.0 indicating extraction certainty.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// CreatedAt is the backend creation timestamp.
	CreatedAt time.Time `json:"created_at,omitzero" yaml:"created_at,omitempty"`
}
