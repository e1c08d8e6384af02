// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package paper

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/paperdash/pkg/types"
)

// ValidationError reports every field of a backend payload that violated
// the expected shape (R2.2). Errors from array payloads carry the element
// index.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid backend payload: " + strings.Join(e.Problems, "; ")
}

// fieldKind is the JSON shape a field must hold.
type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
	kindTimestamp
	kindStatus
)

// fieldSpec is one row of a declarative payload shape (R2.1).
type fieldSpec struct {
	name     string
	kind     fieldKind
	required bool
}

// paperFields is the expected shape of a Paper payload. Unknown extra
// fields are accepted for forward compatibility (R2.3).
var paperFields = []fieldSpec{
	{name: "id", kind: kindString, required: true},
	{name: "title", kind: kindString, required: true},
	{name: "status", kind: kindStatus, required: true},
	{name: "source_url", kind: kindString},
	{name: "created_at", kind: kindTimestamp},
}

// claimFields is the expected shape of a Claim payload.
var claimFields = []fieldSpec{
	{name: "id", kind: kindString, required: true},
	{name: "metric_name", kind: kindString, required: true},
	{name: "dataset", kind: kindString},
	{name: "split", kind: kindString},
	{name: "metric_value", kind: kindNumber},
	{name: "units", kind: kindString},
	{name: "source_citation", kind: kindString},
	{name: "confidence", kind: kindNumber},
	{name: "created_at", kind: kindTimestamp},
}

// validStatuses is the set of accepted PaperStatus values.
var validStatuses = map[types.PaperStatus]bool{
	types.StatusReceived:   true,
	types.StatusProcessing: true,
	types.StatusComplete:   true,
	types.StatusFailed:     true,
}

// DecodePaper validates raw against the Paper shape and returns the typed
// record, or a ValidationError naming the offending fields. This is the
// sole trust boundary between the network and the rest of the
// application; nothing else may assume payload shape (R2.4).
func DecodePaper(raw json.RawMessage) (types.Paper, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return types.Paper{}, err
	}
	if problems := checkFields(obj, paperFields); len(problems) > 0 {
		return types.Paper{}, &ValidationError{Problems: problems}
	}

	p := types.Paper{
		ID:     obj["id"].(string),
		Title:  obj["title"].(string),
		Status: types.PaperStatus(obj["status"].(string)),
	}
	if s, ok := obj["source_url"].(string); ok {
		p.SourceURL = s
	}
	if s, ok := obj["created_at"].(string); ok {
		p.CreatedAt, _ = time.Parse(time.RFC3339, s) // shape checked above
	}
	return p, nil
}

// DecodePapers validates raw as an array of Paper payloads.
func DecodePapers(raw json.RawMessage) ([]types.Paper, error) {
	elems, err := decodeArray(raw)
	if err != nil {
		return nil, err
	}

	papers := make([]types.Paper, 0, len(elems))
	var problems []string
	for i, e := range elems {
		p, err := DecodePaper(e)
		if err != nil {
			problems = append(problems, indexProblems(i, err)...)
			continue
		}
		papers = append(papers, p)
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return papers, nil
}

// DecodeClaims validates raw as an array of Claim payloads.
func DecodeClaims(raw json.RawMessage) ([]types.Claim, error) {
	elems, err := decodeArray(raw)
	if err != nil {
		return nil, err
	}

	claims := make([]types.Claim, 0, len(elems))
	var problems []string
	for i, e := range elems {
		c, err := decodeClaim(e)
		if err != nil {
			problems = append(problems, indexProblems(i, err)...)
			continue
		}
		claims = append(claims, c)
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return claims, nil
}

// decodeClaim validates one Claim payload.
func decodeClaim(raw json.RawMessage) (types.Claim, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return types.Claim{}, err
	}
	if problems := checkFields(obj, claimFields); len(problems) > 0 {
		return types.Claim{}, &ValidationError{Problems: problems}
	}

	c := types.Claim{
		ID:         obj["id"].(string),
		MetricName: obj["metric_name"].(string),
	}
	if s, ok := obj["dataset"].(string); ok {
		c.Dataset = s
	}
	if s, ok := obj["split"].(string); ok {
		c.Split = s
	}
	if f, ok := obj["metric_value"].(float64); ok {
		c.MetricValue = f
	}
	if s, ok := obj["units"].(string); ok {
		c.Units = s
	}
	if s, ok := obj["source_citation"].(string); ok {
		c.SourceCitation = s
	}
	if f, ok := obj["confidence"].(float64); ok {
		c.Confidence = f
	}
	if s, ok := obj["created_at"].(string); ok {
		c.CreatedAt, _ = time.Parse(time.RFC3339, s)
	}
	return c, nil
}

// checkFields walks a declarative shape over a decoded object and
// collects one problem per violation: missing required fields, wrong
// primitive types, unknown status values, unparseable timestamps.
func checkFields(obj map[string]any, specs []fieldSpec) []string {
	var problems []string
	for _, fs := range specs {
		v, present := obj[fs.name]
		if !present || v == nil {
			if fs.required {
				problems = append(problems, fmt.Sprintf("missing required field %q", fs.name))
			}
			continue
		}

		switch fs.kind {
		case kindString:
			if _, ok := v.(string); !ok {
				problems = append(problems, typeProblem(fs.name, "string", v))
			}
		case kindNumber:
			if _, ok := v.(float64); !ok {
				problems = append(problems, typeProblem(fs.name, "number", v))
			}
		case kindStatus:
			s, ok := v.(string)
			if !ok {
				problems = append(problems, typeProblem(fs.name, "string", v))
				continue
			}
			if !validStatuses[types.PaperStatus(s)] {
				problems = append(problems, fmt.Sprintf("field %q: unknown status %q", fs.name, s))
			}
		case kindTimestamp:
			s, ok := v.(string)
			if !ok {
				problems = append(problems, typeProblem(fs.name, "string", v))
				continue
			}
			if _, err := time.Parse(time.RFC3339, s); err != nil {
				problems = append(problems, fmt.Sprintf("field %q: invalid timestamp %q", fs.name, s))
			}
		}
	}
	return problems
}

func decodeObject(raw json.RawMessage) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, &ValidationError{Problems: []string{"payload is not a JSON object"}}
	}
	return obj, nil
}

func decodeArray(raw json.RawMessage) ([]json.RawMessage, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, &ValidationError{Problems: []string{"payload is not a JSON array"}}
	}
	return elems, nil
}

// indexProblems prefixes validation problems with the array element index.
func indexProblems(i int, err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		out := make([]string, len(ve.Problems))
		for j, p := range ve.Problems {
			out[j] = fmt.Sprintf("element %d: %s", i, p)
		}
		return out
	}
	return []string{fmt.Sprintf("element %d: %v", i, err)}
}

func typeProblem(name, want string, got any) string {
	return fmt.Sprintf("field %q: expected %s, got %s", name, want, jsonKind(got))
}

// jsonKind names the JSON type of a decoded value for error messages.
func jsonKind(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "bool"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
