package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/ensure-schema/internal/schema"
)

// HistoryTable records the outcome of every converged top-level object.
const HistoryTable = "ensure_schema_runs"

const historyIndex = "ensure_schema_runs_run_id_idx"

// Run is one history record.
type Run struct {
	ID     int64  `db:"id" json:"-"`
	RunID  string `db:"run_id" json:"run_id"`
	Seq    int64  `db:"seq" json:"seq"`
	Name   string `db:"name" json:"name"`
	State  string `db:"state" json:"state"`
	Error  string `db:"error" json:"error,omitempty"`
	Failed bool   `db:"failed" json:"failed"`
}

// HistoryNode returns a node that ensures the history table and its index
// exist. The index requires the table.
func HistoryNode() *schema.Node {
	table := schema.WithBoolCheck(HistoryTable, TableExistsQuery(HistoryTable), `
		CREATE TABLE ensure_schema_runs (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id  TEXT    NOT NULL,
			seq     INTEGER NOT NULL,
			name    TEXT    NOT NULL,
			state   TEXT    NOT NULL,
			error   TEXT    NOT NULL DEFAULT '',
			failed  INTEGER NOT NULL DEFAULT 0,
			UNIQUE(run_id, seq)
		)`)

	return schema.WithBoolCheck(historyIndex, IndexExistsQuery(historyIndex),
		"CREATE INDEX ensure_schema_runs_run_id_idx ON ensure_schema_runs(run_id)",
	).Require(table)
}

// WriteRun inserts a history record.
// Uses ON CONFLICT(run_id, seq) DO NOTHING so rewriting a record is a no-op.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO ensure_schema_runs (run_id, seq, name, state, error, failed)
		VALUES (:run_id, :seq, :name, :state, :error, :failed)
		ON CONFLICT(run_id, seq) DO NOTHING
	`, run)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// ReadRuns returns the records of one run ordered by seq.
// Returns an empty slice (not nil) if the run has no records.
func (s *Store) ReadRuns(ctx context.Context, runID string) ([]Run, error) {
	runs := []Run{}
	err := s.db.SelectContext(ctx, &runs, `
		SELECT id, run_id, seq, name, state, error, failed
		FROM ensure_schema_runs
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read runs: %w", err)
	}
	return runs, nil
}

// LatestRunID returns the run id of the most recently written record, or
// "" if there is none or the history table does not exist.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, TableExistsQuery(HistoryTable)); err != nil {
		return "", fmt.Errorf("latest run: %w", err)
	}
	if !exists {
		return "", nil
	}

	var runID string
	err := s.db.GetContext(ctx, &runID, `
		SELECT run_id FROM ensure_schema_runs ORDER BY id DESC LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest run: %w", err)
	}
	return runID, nil
}
