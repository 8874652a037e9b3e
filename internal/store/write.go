package store

import (
	"context"
	"fmt"

	"github.com/roach88/streamtrace/internal/correlate"
	"github.com/roach88/streamtrace/internal/handler"
)

// Run is one reconstruction of a traced pipeline.
type Run struct {
	ID       string `json:"id"`
	Pipeline string `json:"pipeline"`
	Seq      int64  `json:"seq"`
}

// NextSeq returns the sequence number for the next run.
func (s *Store) NextSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(created_seq), 0) + 1 FROM runs`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, pipeline, created_seq)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.Pipeline, run.Seq)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteTransitions stores the transitions of one call of a run in a single
// transaction. Rewriting the same transitions is a no-op.
//
// Note: The run referenced by runID must exist (foreign key constraint).
func (s *Store) WriteTransitions(ctx context.Context, runID string, callNumber int, transitions []correlate.Transition) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write transitions: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transitions (run_id, call_number, before_time, after_time)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write transitions: prepare: %w", err)
	}
	defer stmt.Close()

	for _, tr := range transitions {
		if _, err := stmt.ExecContext(ctx, runID, callNumber, tr.Before, tr.After); err != nil {
			return fmt.Errorf("write transitions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write transitions: commit: %w", err)
	}
	return nil
}

// WriteUnit stores a generated unit under its fingerprint.
// Units are content-addressed, so regenerating identical code is a no-op.
func (s *Store) WriteUnit(ctx context.Context, pipeline string, u handler.Unit) (string, error) {
	snapshot := u.Snapshot()
	fingerprint, err := u.Fingerprint()
	if err != nil {
		return "", fmt.Errorf("write unit: %w", err)
	}
	data, err := marshalSnapshot(snapshot)
	if err != nil {
		return "", fmt.Errorf("write unit: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO units (fingerprint, pipeline, call_number, handler, snapshot)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`, fingerprint, pipeline, u.CallNumber, u.Handler, data)
	if err != nil {
		return "", fmt.Errorf("write unit: %w", err)
	}
	return fingerprint, nil
}
