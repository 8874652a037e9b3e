package queryir

// Query represents an abstract query.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition.
//
// This is a sealed interface - only types in this package implement it.
// Predicates are used in Select.Filter and Join.On.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Tables lists the queryable tables and their columns.
var Tables = map[string][]string{
	"runs":        {"id", "pipeline", "created_seq"},
	"transitions": {"run_id", "call_number", "before_time", "after_time"},
}

// Select represents a table access with filtering.
//
// Semantics:
//
//	SELECT <columns> FROM <from> WHERE <filter>
//
// Example:
//
//	Select{
//	  From:    "transitions",
//	  Filter:  &And{Predicates: []Predicate{
//	    &Equals{Field: "run_id", Value: "run-1"},
//	    &AtLeast{Field: "before_time", Value: 10},
//	  }},
//	  Columns: []string{"call_number", "before_time", "after_time"},
//	}
//
// Translates to SQL:
//
//	SELECT call_number, before_time, after_time FROM transitions
//	WHERE run_id = ? AND before_time >= ?
//	ORDER BY run_id ASC, call_number ASC, before_time ASC
type Select struct {
	From    string    // Table name (a key of Tables)
	Filter  Predicate // WHERE conditions (nil = no filter)
	Columns []string  // Selected columns, in result order
}

func (Select) queryNode() {}

// Join represents an inner join of two selects.
//
// Semantics:
//
//	SELECT <left columns>, <right columns>
//	FROM <left> INNER JOIN <right> ON <on>
//	WHERE <left filter> AND <right filter>
//
// Columns and filter fields of each side refer to that side's table. The On
// predicate names columns qualified by table, e.g.
//
//	&ColumnEquals{Left: "runs.id", Right: "transitions.run_id"}
type Join struct {
	Left  Query     // Must be a Select
	Right Query     // Must be a Select
	On    Predicate // Join condition (required)
}

func (Join) queryNode() {}

// Equals represents a field-equals-literal predicate.
//
//	<field> = <value>
//
// Value must be an int64 or a string.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// AtLeast represents an inclusive lower bound.
//
//	<field> >= <value>
type AtLeast struct {
	Field string
	Value int64
}

func (AtLeast) predicateNode() {}

// AtMost represents an inclusive upper bound.
//
//	<field> <= <value>
type AtMost struct {
	Field string
	Value int64
}

func (AtMost) predicateNode() {}

// ColumnEquals compares two table-qualified columns. Only valid in Join.On.
//
//	<left> = <right>
type ColumnEquals struct {
	Left  string
	Right string
}

func (ColumnEquals) predicateNode() {}

// And represents a conjunction of predicates.
// An empty Predicates slice is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}
