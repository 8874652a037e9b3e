package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streamtrace/internal/queryir"
)

func TestCompileSelect_NoFilter(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(queryir.Select{
		From:    "runs",
		Columns: []string{"id", "pipeline", "created_seq"},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, pipeline, created_seq FROM runs ORDER BY created_seq ASC, id ASC COLLATE BINARY", sql)
	assert.Empty(t, params)
}

func TestCompileSelect_Filter(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(&queryir.Select{
		From: "transitions",
		Filter: &queryir.And{Predicates: []queryir.Predicate{
			&queryir.Equals{Field: "run_id", Value: "run-1"},
			queryir.AtLeast{Field: "before_time", Value: 3},
			queryir.AtMost{Field: "before_time", Value: 9},
		}},
		Columns: []string{"call_number", "before_time", "after_time"},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT call_number, before_time, after_time FROM transitions"+
			" WHERE run_id = ? AND before_time >= ? AND before_time <= ?"+
			" ORDER BY run_id ASC COLLATE BINARY, call_number ASC, before_time ASC",
		sql)
	assert.Equal(t, []any{"run-1", int64(3), int64(9)}, params)
}

func TestCompileSelect_EmptyAnd(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(queryir.Select{
		From:    "runs",
		Filter:  queryir.And{},
		Columns: []string{"id"},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM runs WHERE 1 = 1 ORDER BY created_seq ASC, id ASC COLLATE BINARY", sql)
	assert.Empty(t, params)
}

func TestCompileJoin(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(queryir.Join{
		Left: queryir.Select{
			From:    "runs",
			Filter:  queryir.Equals{Field: "pipeline", Value: "people"},
			Columns: []string{"id", "pipeline"},
		},
		Right: queryir.Select{
			From:    "transitions",
			Filter:  queryir.Equals{Field: "call_number", Value: int64(2)},
			Columns: []string{"call_number", "before_time", "after_time"},
		},
		On: queryir.ColumnEquals{Left: "runs.id", Right: "transitions.run_id"},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT runs.id, runs.pipeline, transitions.call_number, transitions.before_time, transitions.after_time"+
			" FROM runs INNER JOIN transitions ON runs.id = transitions.run_id"+
			" WHERE runs.pipeline = ? AND transitions.call_number = ?"+
			" ORDER BY runs.created_seq ASC, runs.id ASC COLLATE BINARY,"+
			" transitions.run_id ASC COLLATE BINARY, transitions.call_number ASC, transitions.before_time ASC",
		sql)
	assert.Equal(t, []any{"people", int64(2)}, params)
}

func TestCompile_ParametersNeverInterpolated(t *testing.T) {
	injection := "x'; DROP TABLE runs; --"
	sql, params, err := NewSQLCompiler().Compile(queryir.Select{
		From:    "runs",
		Filter:  queryir.Equals{Field: "pipeline", Value: injection},
		Columns: []string{"id"},
	})
	require.NoError(t, err)
	assert.NotContains(t, sql, "DROP")
	assert.Equal(t, []any{injection}, params)
}

func TestCompile_Errors(t *testing.T) {
	c := NewSQLCompiler()

	_, _, err := c.Compile(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil query")

	_, _, err = c.Compile(queryir.Select{From: "units", Columns: []string{"handler"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid query: unknown table "units"`)
}
