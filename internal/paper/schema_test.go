// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package paper

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/paperdash/pkg/types"
)

// --- DecodePaper ---

func TestDecodePaper(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		wantErr     bool
		wantProblem string
	}{
		{
			name:    "all fields",
			payload: `{"id":"p1","title":"Attention Is All You Need","status":"complete","source_url":"https://arxiv.org/abs/1706.03762","created_at":"2026-01-02T15:04:05Z"}`,
		},
		{
			name:    "optional fields absent",
			payload: `{"id":"p2","title":"B","status":"received"}`,
		},
		{
			name:    "unknown extra fields accepted",
			payload: `{"id":"p3","title":"C","status":"processing","page_count":12,"uploader":{"name":"x"}}`,
		},
		{
			name:        "missing title",
			payload:     `{"id":"p1","status":"complete"}`,
			wantErr:     true,
			wantProblem: `missing required field "title"`,
		},
		{
			name:        "missing status",
			payload:     `{"id":"p1","title":"A"}`,
			wantErr:     true,
			wantProblem: `missing required field "status"`,
		},
		{
			name:        "wrong type for id",
			payload:     `{"id":7,"title":"A","status":"complete"}`,
			wantErr:     true,
			wantProblem: `field "id": expected string, got number`,
		},
		{
			name:        "unknown status value",
			payload:     `{"id":"p1","title":"A","status":"exploded"}`,
			wantErr:     true,
			wantProblem: `unknown status "exploded"`,
		},
		{
			name:        "null required field",
			payload:     `{"id":null,"title":"A","status":"complete"}`,
			wantErr:     true,
			wantProblem: `missing required field "id"`,
		},
		{
			name:        "invalid timestamp",
			payload:     `{"id":"p1","title":"A","status":"complete","created_at":"yesterday"}`,
			wantErr:     true,
			wantProblem: `invalid timestamp "yesterday"`,
		},
		{
			name:        "wrong type for source_url",
			payload:     `{"id":"p1","title":"A","status":"complete","source_url":42}`,
			wantErr:     true,
			wantProblem: `field "source_url": expected string`,
		},
		{
			name:        "payload is an array",
			payload:     `[{"id":"p1"}]`,
			wantErr:     true,
			wantProblem: "not a JSON object",
		},
		{
			name:        "payload is a bare string",
			payload:     `"p1"`,
			wantErr:     true,
			wantProblem: "not a JSON object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodePaper(json.RawMessage(tt.payload))
			if tt.wantErr {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("got err %v, want *ValidationError", err)
				}
				if !strings.Contains(err.Error(), tt.wantProblem) {
					t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantProblem)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodePaper: %v", err)
			}
			if p.ID == "" || p.Title == "" || p.Status == "" {
				t.Errorf("decoded paper missing required values: %+v", p)
			}
		})
	}
}

func TestDecodePaperFieldValues(t *testing.T) {
	payload := `{"id":"p1","title":"A","status":"complete","source_url":"https://x","created_at":"2026-03-01T10:00:00Z"}`
	p, err := DecodePaper(json.RawMessage(payload))
	if err != nil {
		t.Fatalf("DecodePaper: %v", err)
	}
	if p.ID != "p1" {
		t.Errorf("ID = %q, want %q", p.ID, "p1")
	}
	if p.Status != types.StatusComplete {
		t.Errorf("Status = %q, want %q", p.Status, types.StatusComplete)
	}
	if p.SourceURL != "https://x" {
		t.Errorf("SourceURL = %q, want %q", p.SourceURL, "https://x")
	}
	want := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if !p.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", p.CreatedAt, want)
	}
}

func TestDecodePaperListsAllProblems(t *testing.T) {
	payload := `{"id":"p1","status":"exploded"}`
	_, err := DecodePaper(json.RawMessage(payload))

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("got err %v, want *ValidationError", err)
	}
	if len(ve.Problems) != 2 {
		t.Fatalf("got %d problems %v, want 2", len(ve.Problems), ve.Problems)
	}
}

// --- DecodePapers ---

func TestDecodePapers(t *testing.T) {
	payload := `[{"id":"p1","status":"complete","title":"A"},{"id":"p2","status":"received","title":"B"}]`
	papers, err := DecodePapers(json.RawMessage(payload))
	if err != nil {
		t.Fatalf("DecodePapers: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("got %d papers, want 2", len(papers))
	}
	if papers[0].ID != "p1" || papers[0].Status != types.StatusComplete {
		t.Errorf("papers[0] = %+v, want id p1 status complete", papers[0])
	}
	if papers[1].ID != "p2" {
		t.Errorf("papers[1].ID = %q, want %q", papers[1].ID, "p2")
	}
}

func TestDecodePapersEmptyArray(t *testing.T) {
	papers, err := DecodePapers(json.RawMessage(`[]`))
	if err != nil {
		t.Fatalf("DecodePapers: %v", err)
	}
	if len(papers) != 0 {
		t.Errorf("got %d papers, want 0", len(papers))
	}
}

func TestDecodePapersElementErrorCarriesIndex(t *testing.T) {
	payload := `[{"id":"p1","status":"complete","title":"A"},{"id":"p2"}]`
	_, err := DecodePapers(json.RawMessage(payload))

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("got err %v, want *ValidationError", err)
	}
	if !strings.Contains(err.Error(), "element 1") {
		t.Errorf("error = %q, want it to name element 1", err.Error())
	}
}

func TestDecodePapersNotAnArray(t *testing.T) {
	_, err := DecodePapers(json.RawMessage(`{"id":"p1"}`))

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("got err %v, want *ValidationError", err)
	}
	if !strings.Contains(err.Error(), "not a JSON array") {
		t.Errorf("error = %q, want it to contain %q", err.Error(), "not a JSON array")
	}
}

// --- DecodeClaims ---

func TestDecodeClaims(t *testing.T) {
	payload := `[{"id":"c1","metric_name":"accuracy","metric_value":95.1,"dataset":"GLUE","split":"test","units":"%","confidence":0.92,"source_citation":"Table 2","created_at":"2026-02-01T00:00:00Z"}]`
	claims, err := DecodeClaims(json.RawMessage(payload))
	if err != nil {
		t.Fatalf("DecodeClaims: %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("got %d claims, want 1", len(claims))
	}

	c := claims[0]
	if c.ID != "c1" || c.MetricName != "accuracy" {
		t.Errorf("claim = %+v, want id c1 metric accuracy", c)
	}
	if c.MetricValue != 95.1 {
		t.Errorf("MetricValue = %v, want 95.1", c.MetricValue)
	}
	if c.Dataset != "GLUE" || c.Split != "test" || c.Units != "%" {
		t.Errorf("claim fields = %+v", c)
	}
}

func TestDecodeClaimsRejectsBadElements(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		wantProblem string
	}{
		{
			name:        "missing metric_name",
			payload:     `[{"id":"c1","metric_value":1.0}]`,
			wantProblem: `element 0: missing required field "metric_name"`,
		},
		{
			name:        "wrong type metric_value",
			payload:     `[{"id":"c1","metric_name":"f1","metric_value":"high"}]`,
			wantProblem: `field "metric_value": expected number, got string`,
		},
		{
			name:        "element not an object",
			payload:     `["c1"]`,
			wantProblem: "element 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeClaims(json.RawMessage(tt.payload))
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("got err %v, want *ValidationError", err)
			}
			if !strings.Contains(err.Error(), tt.wantProblem) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantProblem)
			}
		})
	}
}
