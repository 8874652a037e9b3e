package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/streamtrace/internal/correlate"
)

// StoredTransition is a transition together with the call it belongs to.
type StoredTransition struct {
	CallNumber int `json:"call_number"`
	correlate.Transition
}

// StoredUnit is a generated unit as persisted.
type StoredUnit struct {
	Fingerprint string         `json:"fingerprint"`
	Pipeline    string         `json:"pipeline"`
	CallNumber  int            `json:"call_number"`
	Handler     string         `json:"handler"`
	Snapshot    map[string]any `json:"snapshot"`
}

// ReadRuns returns all runs ordered by creation sequence.
// Returns an empty slice (not nil) if there are no runs.
func (s *Store) ReadRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pipeline, created_seq
		FROM runs
		ORDER BY created_seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Pipeline, &r.Seq); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns a single run. The bool is false if no run has that ID.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, bool, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, pipeline, created_seq
		FROM runs
		WHERE id = ?
	`, id).Scan(&r.ID, &r.Pipeline, &r.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("query run: %w", err)
	}
	return r, true, nil
}

// ReadTransitions returns the transitions of a run ordered by call number,
// then before time. Returns an empty slice (not nil) if there are none.
func (s *Store) ReadTransitions(ctx context.Context, runID string) ([]StoredTransition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT call_number, before_time, after_time
		FROM transitions
		WHERE run_id = ?
		ORDER BY call_number ASC, before_time ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	out := []StoredTransition{}
	for rows.Next() {
		var st StoredTransition
		if err := rows.Scan(&st.CallNumber, &st.Before, &st.After); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return out, nil
}

// ReadUnits returns the stored units of a pipeline ordered by call number,
// then fingerprint.
func (s *Store) ReadUnits(ctx context.Context, pipeline string) ([]StoredUnit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint, pipeline, call_number, handler, snapshot
		FROM units
		WHERE pipeline = ?
		ORDER BY call_number ASC, fingerprint COLLATE BINARY ASC
	`, pipeline)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	units := []StoredUnit{}
	for rows.Next() {
		var (
			u    StoredUnit
			data string
		)
		if err := rows.Scan(&u.Fingerprint, &u.Pipeline, &u.CallNumber, &u.Handler, &data); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		if u.Snapshot, err = unmarshalSnapshot(data); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}
	return units, nil
}
