// Package queryir provides an abstract query representation for reading
// stored runs and transitions.
//
// Queries are built from sealed Query and Predicate interfaces and compiled
// to SQL by package querysql:
//
//	[transition filter] → [Query IR] → [SQL]
//
// SUPPORTED FRAGMENT:
//   - Select(from, filter, columns) - table access with filtering
//   - Join(left, right, on) - inner joins of two selects
//   - Predicates: Equals, AtLeast, AtMost, ColumnEquals, And
//   - Explicit columns (no SELECT *)
//
// Literal values are int64 or string. There are no NULLs, OR predicates,
// aggregations or subqueries.
//
// SEALED INTERFACES:
//
// Query and Predicate use the marker method pattern, so backends can switch
// exhaustively:
//
//	switch q := query.(type) {
//	case *Select:
//	    // Handle select
//	case *Join:
//	    // Handle join
//	}
//
// Every table a query may name is listed in Tables. Validate checks a query
// against it before compilation.
package queryir
