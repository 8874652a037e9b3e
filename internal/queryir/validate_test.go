package queryir

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_Select(t *testing.T) {
	q := Select{
		From: "transitions",
		Filter: &And{Predicates: []Predicate{
			&Equals{Field: "run_id", Value: "run-1"},
			&Equals{Field: "call_number", Value: int64(2)},
			&AtLeast{Field: "before_time", Value: 3},
			&AtMost{Field: "before_time", Value: 9},
		}},
		Columns: []string{"call_number", "before_time", "after_time"},
	}

	result := Validate(q)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_Join(t *testing.T) {
	q := &Join{
		Left: Select{
			From:    "runs",
			Filter:  Equals{Field: "pipeline", Value: "people"},
			Columns: []string{"id", "pipeline"},
		},
		Right: Select{
			From:    "transitions",
			Columns: []string{"call_number", "before_time", "after_time"},
		},
		On: ColumnEquals{Left: "runs.id", Right: "transitions.run_id"},
	}

	result := Validate(q)
	assert.True(t, result.Valid, "errors: %v", result.Errors)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{
			name:  "nil query",
			query: nil,
			want:  "nil query",
		},
		{
			name:  "unknown table",
			query: Select{From: "units", Columns: []string{"handler"}},
			want:  `unknown table "units"`,
		},
		{
			name:  "missing columns",
			query: Select{From: "runs"},
			want:  "select from runs: columns are required",
		},
		{
			name:  "unknown column",
			query: Select{From: "runs", Columns: []string{"created_at"}},
			want:  "unknown column runs.created_at",
		},
		{
			name: "unknown filter column",
			query: Select{
				From:    "transitions",
				Filter:  AtLeast{Field: "time", Value: 1},
				Columns: []string{"before_time"},
			},
			want: "unknown column transitions.time",
		},
		{
			name: "unsupported value",
			query: Select{
				From:    "runs",
				Filter:  Equals{Field: "created_seq", Value: 1.5},
				Columns: []string{"id"},
			},
			want: "field created_seq compared to unsupported value float64",
		},
		{
			name: "column comparison outside join",
			query: Select{
				From:    "runs",
				Filter:  ColumnEquals{Left: "runs.id", Right: "runs.pipeline"},
				Columns: []string{"id"},
			},
			want: "only valid in a join condition",
		},
		{
			name: "join without condition",
			query: Join{
				Left:  Select{From: "runs", Columns: []string{"id"}},
				Right: Select{From: "transitions", Columns: []string{"run_id"}},
			},
			want: "join condition is required",
		},
		{
			name: "unqualified join column",
			query: Join{
				Left:  Select{From: "runs", Columns: []string{"id"}},
				Right: Select{From: "transitions", Columns: []string{"run_id"}},
				On:    ColumnEquals{Left: "id", Right: "transitions.run_id"},
			},
			want: `join condition column "id" must be qualified by table`,
		},
		{
			name: "nested join",
			query: Join{
				Left:  Join{},
				Right: Select{From: "transitions", Columns: []string{"run_id"}},
				On:    ColumnEquals{Left: "runs.id", Right: "transitions.run_id"},
			},
			want: "join sides must be selects",
		},
		{
			name: "self join",
			query: Join{
				Left:  Select{From: "runs", Columns: []string{"id"}},
				Right: Select{From: "runs", Columns: []string{"id"}},
				On:    ColumnEquals{Left: "runs.id", Right: "runs.id"},
			},
			want: "self join of runs is not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.query)
			assert.False(t, result.Valid)
			assert.True(t, slices.ContainsFunc(result.Errors, func(e string) bool {
				return strings.Contains(e, tt.want)
			}), "expected error containing %q, got %v", tt.want, result.Errors)
		})
	}
}

func TestAsSelect(t *testing.T) {
	sel := Select{From: "runs", Columns: []string{"id"}}

	got, ok := AsSelect(sel)
	assert.True(t, ok)
	assert.Equal(t, sel, got)

	got, ok = AsSelect(&sel)
	assert.True(t, ok)
	assert.Equal(t, sel, got)

	_, ok = AsSelect(Join{})
	assert.False(t, ok)
}
