package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/streamtrace/internal/queryir"
)

// orderKeys is the stable ORDER BY key of each table.
// COLLATE BINARY ensures deterministic text ordering across SQLite versions.
var orderKeys = map[string][]string{
	"runs":        {"created_seq ASC", "id ASC COLLATE BINARY"},
	"transitions": {"run_id ASC COLLATE BINARY", "call_number ASC", "before_time ASC"},
}

// SQLCompiler compiles queryir queries to parameterized SQL for SQLite.
//
// Every query includes ORDER BY for deterministic results, and all values
// are parameterized, never interpolated.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile validates q and converts it to parameterized SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}
	if result := queryir.Validate(q); !result.Valid {
		return "", nil, fmt.Errorf("invalid query: %s", strings.Join(result.Errors, "; "))
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	case queryir.Join:
		return c.compileJoin(query)
	case *queryir.Join:
		return c.compileJoin(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	var (
		whereClause string
		params      []any
	)
	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(q.Filter, "")
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		whereClause = " WHERE " + filterSQL
		params = filterParams
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		strings.Join(q.Columns, ", "),
		q.From,
		whereClause,
		strings.Join(orderKeys[q.From], ", "))

	return sql, params, nil
}

// compileJoin compiles a join of two selects. Side filters are qualified by
// their table and combined in the WHERE clause, left first.
func (c *SQLCompiler) compileJoin(j queryir.Join) (string, []any, error) {
	left, _ := queryir.AsSelect(j.Left)
	right, _ := queryir.AsSelect(j.Right)

	columns := append(qualify(left.From, left.Columns), qualify(right.From, right.Columns)...)

	onSQL, params, err := c.compilePredicate(j.On, "")
	if err != nil {
		return "", nil, fmt.Errorf("compile join ON: %w", err)
	}

	var where []string
	for _, side := range []queryir.Select{left, right} {
		if side.Filter == nil {
			continue
		}
		filterSQL, filterParams, err := c.compilePredicate(side.Filter, side.From)
		if err != nil {
			return "", nil, fmt.Errorf("compile %s filter: %w", side.From, err)
		}
		where = append(where, filterSQL)
		params = append(params, filterParams...)
	}

	sql := fmt.Sprintf("SELECT %s FROM %s INNER JOIN %s ON %s",
		strings.Join(columns, ", "),
		left.From,
		right.From,
		onSQL)
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}

	order := append(qualify(left.From, orderKeys[left.From]), qualify(right.From, orderKeys[right.From])...)
	sql += " ORDER BY " + strings.Join(order, ", ")

	return sql, params, nil
}

// compilePredicate compiles p to a WHERE fragment. When table is set, bare
// fields are qualified with it.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate, table string) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return comparison(table, pred.Field, "=", pred.Value)
	case *queryir.Equals:
		return comparison(table, pred.Field, "=", pred.Value)
	case queryir.AtLeast:
		return comparison(table, pred.Field, ">=", pred.Value)
	case *queryir.AtLeast:
		return comparison(table, pred.Field, ">=", pred.Value)
	case queryir.AtMost:
		return comparison(table, pred.Field, "<=", pred.Value)
	case *queryir.AtMost:
		return comparison(table, pred.Field, "<=", pred.Value)
	case queryir.ColumnEquals:
		return fmt.Sprintf("%s = %s", pred.Left, pred.Right), nil, nil
	case *queryir.ColumnEquals:
		return fmt.Sprintf("%s = %s", pred.Left, pred.Right), nil, nil
	case queryir.And:
		return c.compileAnd(pred, table)
	case *queryir.And:
		return c.compileAnd(*pred, table)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileAnd(and queryir.And, table string) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil // Always true (vacuous truth)
	}

	var (
		sqlParts  []string
		allParams []any
	)
	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(pred, table)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}

func comparison(table, field, op string, value any) (string, []any, error) {
	if table != "" {
		field = table + "." + field
	}
	return fmt.Sprintf("%s %s ?", field, op), []any{value}, nil
}

func qualify(table string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = table + "." + c
	}
	return out
}
