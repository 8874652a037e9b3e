package queryir

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationResult lists the problems found in a query.
type ValidationResult struct {
	// Valid is true when Errors is empty.
	Valid bool

	// Errors lists unknown tables, unknown columns, unsupported values and
	// misplaced predicates.
	Errors []string
}

// Validate checks a query against Tables.
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{
		errors: []string{},
	}
	v.validateQuery(query)

	return ValidationResult{
		Valid:  len(v.errors) == 0,
		Errors: v.errors,
	}
}

// validator accumulates errors during traversal.
type validator struct {
	errors []string
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addError("nil query")
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	case Join:
		v.validateJoin(query)
	case *Join:
		v.validateJoin(*query)
	default:
		v.addError("unknown query type: %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	columns, ok := Tables[sel.From]
	if !ok {
		v.addError("unknown table %q", sel.From)
		return
	}

	if len(sel.Columns) == 0 {
		v.addError("select from %s: columns are required", sel.From)
	}
	for _, c := range sel.Columns {
		if !slices.Contains(columns, c) {
			v.addError("unknown column %s.%s", sel.From, c)
		}
	}

	if sel.Filter != nil {
		v.validatePredicate(sel.Filter, sel.From, false)
	}
}

func (v *validator) validateJoin(join Join) {
	left, leftOK := AsSelect(join.Left)
	right, rightOK := AsSelect(join.Right)
	if !leftOK || !rightOK {
		v.addError("join sides must be selects")
		return
	}
	if left.From == right.From {
		v.addError("self join of %s is not supported", left.From)
	}

	v.validateSelect(left)
	v.validateSelect(right)

	if join.On == nil {
		v.addError("join condition is required")
		return
	}
	v.validatePredicate(join.On, "", true)
}

// validatePredicate checks p. Fields are bare columns of table, except in a
// join condition where they are qualified by table.
func (v *validator) validatePredicate(p Predicate, table string, joinCondition bool) {
	switch pred := p.(type) {
	case Equals:
		v.validateEquals(pred, table, joinCondition)
	case *Equals:
		v.validateEquals(*pred, table, joinCondition)
	case AtLeast:
		v.validateField(pred.Field, table, joinCondition)
	case *AtLeast:
		v.validateField(pred.Field, table, joinCondition)
	case AtMost:
		v.validateField(pred.Field, table, joinCondition)
	case *AtMost:
		v.validateField(pred.Field, table, joinCondition)
	case ColumnEquals:
		v.validateColumnEquals(pred, joinCondition)
	case *ColumnEquals:
		v.validateColumnEquals(*pred, joinCondition)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub, table, joinCondition)
		}
	case *And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub, table, joinCondition)
		}
	default:
		v.addError("unknown predicate type: %T", p)
	}
}

func (v *validator) validateEquals(eq Equals, table string, joinCondition bool) {
	v.validateField(eq.Field, table, joinCondition)
	switch eq.Value.(type) {
	case int64, string:
	default:
		v.addError("field %s compared to unsupported value %T", eq.Field, eq.Value)
	}
}

func (v *validator) validateColumnEquals(ce ColumnEquals, joinCondition bool) {
	if !joinCondition {
		v.addError("column comparison %s = %s is only valid in a join condition", ce.Left, ce.Right)
		return
	}
	v.validateField(ce.Left, "", true)
	v.validateField(ce.Right, "", true)
}

func (v *validator) validateField(field, table string, qualified bool) {
	if qualified {
		t, c, ok := strings.Cut(field, ".")
		if !ok {
			v.addError("join condition column %q must be qualified by table", field)
			return
		}
		table, field = t, c
	}
	columns, ok := Tables[table]
	if !ok {
		v.addError("unknown table %q", table)
		return
	}
	if !slices.Contains(columns, field) {
		v.addError("unknown column %s.%s", table, field)
	}
}

// AsSelect returns the Select behind q, if q is one.
func AsSelect(q Query) (Select, bool) {
	switch query := q.(type) {
	case Select:
		return query, true
	case *Select:
		return *query, true
	default:
		return Select{}, false
	}
}
