// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package claimstore keeps a local SQLite snapshot of extracted claims
// for offline querying and export. The snapshot is filled only by an
// explicit pull; paper and claim reads against the backend never consult
// it.
// Implements: prd005-claim-snapshot (R1);
//
//	docs/ARCHITECTURE § Claim Snapshot.
package claimstore

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperdash/pkg/types"
)

const dbFile = "claims.db"

// Store manages the claims snapshot SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the snapshot database at
// cfg.Dir/claims.db. It creates the schema if it does not exist (R1.1).
func NewStore(cfg types.SnapshotConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	s := &Store{
		db:         db,
		dir:        cfg.Dir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT,
			status TEXT,
			source_url TEXT,
			created_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS claims (
			id TEXT PRIMARY KEY,
			paper_id TEXT NOT NULL REFERENCES papers(id),
			dataset TEXT,
			split TEXT,
			metric_name TEXT NOT NULL,
			metric_value REAL,
			units TEXT,
			source_citation TEXT,
			confidence REAL,
			created_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_paper_id ON claims(paper_id)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_metric_name ON claims(metric_name)`,
		`CREATE TABLE IF NOT EXISTS pull_status (
			paper_id TEXT PRIMARY KEY,
			pulled_at TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	return nil
}

// ClaimSource fetches papers and claims from the live backend.
// *paper.Service satisfies it.
type ClaimSource interface {
	List(ctx context.Context) ([]types.Paper, error)
	Get(ctx context.Context, id string) (types.Paper, error)
	Claims(ctx context.Context, id string) ([]types.Claim, error)
}

// PullSummary holds counts from a snapshot pull (R1.2).
type PullSummary struct {
	Pulled int
	Failed int
}

// Total returns the number of papers processed.
func (s PullSummary) Total() int {
	return s.Pulled + s.Failed
}

// HasFailures reports whether any paper failed to pull.
func (s PullSummary) HasFailures() bool {
	return s.Failed > 0
}

// Pull fetches each requested paper and its claims from source and
// replaces that paper's snapshot rows. Empty paperIDs pulls every paper
// the backend lists. Per-paper failures are reported on w and counted;
// they do not stop the pull (R1.2).
func (s *Store) Pull(ctx context.Context, source ClaimSource, paperIDs []string, w io.Writer) (PullSummary, error) {
	var summary PullSummary

	ids := paperIDs
	listed := make(map[string]types.Paper)
	if len(ids) == 0 {
		papers, err := source.List(ctx)
		if err != nil {
			return summary, fmt.Errorf("listing papers: %w", err)
		}
		for _, p := range papers {
			ids = append(ids, p.ID)
			listed[p.ID] = p
		}
	}

	for _, id := range ids {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		paper, ok := listed[id]
		if !ok {
			var err error
			paper, err = source.Get(ctx, id)
			if err != nil {
				fmt.Fprintf(w, "failed  %s: %v\n", id, err)
				summary.Failed++
				continue
			}
		}

		claims, err := source.Claims(ctx, paper.ID)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", paper.ID, err)
			summary.Failed++
			continue
		}

		if err := s.replacePaper(ctx, paper, claims); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", paper.ID, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "pulled  %s (%d claims)\n", paper.ID, len(claims))
		summary.Pulled++
	}

	fmt.Fprintf(w, "\npulled: %d, failed: %d\n", summary.Pulled, summary.Failed)

	return summary, nil
}

func (s *Store) replacePaper(ctx context.Context, paper types.Paper, claims []types.Claim) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Remove the paper's prior snapshot rows (R1.2).
	if _, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE paper_id = ?`, paper.ID); err != nil {
		return fmt.Errorf("deleting old claims: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO papers (id, title, status, source_url, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, status=excluded.status,
			source_url=excluded.source_url, created_at=excluded.created_at`,
		paper.ID, paper.Title, string(paper.Status), paper.SourceURL, formatTime(paper.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting paper: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO claims (id, paper_id, dataset, split, metric_name, metric_value, units, source_citation, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, claim := range claims {
		_, err := stmt.ExecContext(ctx,
			claim.ID, paper.ID, claim.Dataset, claim.Split,
			claim.MetricName, claim.MetricValue, claim.Units,
			claim.SourceCitation, claim.Confidence, formatTime(claim.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("inserting claim %s: %w", claim.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO pull_status (paper_id, pulled_at) VALUES (?, ?)
		 ON CONFLICT(paper_id) DO UPDATE SET pulled_at=excluded.pulled_at`,
		paper.ID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("updating pull status: %w", err)
	}

	return tx.Commit()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
