// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package claimstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/paperdash/pkg/types"
)

// QueryOptions holds filters for snapshot queries (R1.3).
type QueryOptions struct {
	// PaperID filters by paper.
	PaperID string

	// Dataset filters by the dataset a claim was measured on.
	Dataset string

	// MetricName filters by reported metric.
	MetricName string

	// MinConfidence keeps only claims at or above this confidence.
	MinConfidence float64

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no filters.
func (q QueryOptions) IsEmpty() bool {
	return q.PaperID == "" && q.Dataset == "" && q.MetricName == "" && q.MinConfidence == 0
}

// QueryResult is a snapshot claim with the paper it was pulled under.
type QueryResult struct {
	types.Claim
	PaperID     string
	PaperTitle  string
	PaperStatus types.PaperStatus
}

// Query reads claims from the snapshot with optional filters, sorted by
// paper, metric, dataset (R1.3).
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(
		`SELECT c.id, c.paper_id, c.dataset, c.split, c.metric_name, c.metric_value,
			c.units, c.source_citation, c.confidence, c.created_at,
			p.title, p.status
		FROM claims c
		LEFT JOIN papers p ON c.paper_id = p.id
		WHERE 1=1`)

	if opts.PaperID != "" {
		qb.WriteString(` AND c.paper_id = ?`)
		args = append(args, opts.PaperID)
	}

	if opts.Dataset != "" {
		qb.WriteString(` AND c.dataset = ?`)
		args = append(args, opts.Dataset)
	}

	if opts.MetricName != "" {
		qb.WriteString(` AND c.metric_name = ?`)
		args = append(args, opts.MetricName)
	}

	if opts.MinConfidence > 0 {
		qb.WriteString(` AND c.confidence >= ?`)
		args = append(args, opts.MinConfidence)
	}

	qb.WriteString(` ORDER BY c.paper_id, c.metric_name, c.dataset`)
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr        QueryResult
			createdAt string
			title     sql.NullString
			status    sql.NullString
		)

		if err := rows.Scan(
			&qr.ID, &qr.PaperID, &qr.Dataset, &qr.Split, &qr.MetricName, &qr.MetricValue,
			&qr.Units, &qr.SourceCitation, &qr.Confidence, &createdAt,
			&title, &status,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if createdAt != "" {
			qr.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		}
		if title.Valid {
			qr.PaperTitle = title.String
		}
		if status.Valid {
			qr.PaperStatus = types.PaperStatus(status.String)
		}

		results = append(results, qr)
	}

	return results, rows.Err()
}
