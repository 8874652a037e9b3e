package store

import (
	"context"
	"fmt"

	"github.com/roach88/streamtrace/internal/queryir"
	"github.com/roach88/streamtrace/internal/querysql"
)

// TransitionFilter selects stored transitions across runs. Zero fields do
// not filter.
type TransitionFilter struct {
	RunID      string
	Pipeline   string
	CallNumber int
	Since      *int64 // inclusive lower bound on the before time
	Until      *int64 // inclusive upper bound on the before time
}

// RunTransition is a stored transition together with its run.
type RunTransition struct {
	RunID    string `json:"run_id"`
	Pipeline string `json:"pipeline"`
	StoredTransition
}

// Query builds the join of runs and transitions selected by f.
func (f TransitionFilter) Query() queryir.Query {
	var runs, transitions []queryir.Predicate
	if f.RunID != "" {
		runs = append(runs, queryir.Equals{Field: "id", Value: f.RunID})
	}
	if f.Pipeline != "" {
		runs = append(runs, queryir.Equals{Field: "pipeline", Value: f.Pipeline})
	}
	if f.CallNumber > 0 {
		transitions = append(transitions, queryir.Equals{Field: "call_number", Value: int64(f.CallNumber)})
	}
	if f.Since != nil {
		transitions = append(transitions, queryir.AtLeast{Field: "before_time", Value: *f.Since})
	}
	if f.Until != nil {
		transitions = append(transitions, queryir.AtMost{Field: "before_time", Value: *f.Until})
	}

	return queryir.Join{
		Left: queryir.Select{
			From:    "runs",
			Filter:  conjunction(runs),
			Columns: []string{"id", "pipeline"},
		},
		Right: queryir.Select{
			From:    "transitions",
			Filter:  conjunction(transitions),
			Columns: []string{"call_number", "before_time", "after_time"},
		},
		On: queryir.ColumnEquals{Left: "runs.id", Right: "transitions.run_id"},
	}
}

func conjunction(preds []queryir.Predicate) queryir.Predicate {
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	}
	return queryir.And{Predicates: preds}
}

// QueryTransitions returns the transitions selected by f, ordered by run
// sequence, then call number and before time. Returns an empty slice (not
// nil) if nothing matches.
func (s *Store) QueryTransitions(ctx context.Context, f TransitionFilter) ([]RunTransition, error) {
	query, params, err := querysql.NewSQLCompiler().Compile(f.Query())
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	out := []RunTransition{}
	for rows.Next() {
		var rt RunTransition
		if err := rows.Scan(&rt.RunID, &rt.Pipeline, &rt.CallNumber, &rt.Before, &rt.After); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return out, nil
}
