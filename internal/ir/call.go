package ir

import (
	"encoding/json"
	"slices"
)

// CallArgument is one argument of a pipeline call as it appears in source.
type CallArgument struct {
	Type string `json:"type"` // Static type of the argument expression
	Text string `json:"text"` // Source text of the argument expression
}

// TextRange is a half-open source range [Start, End).
type TextRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// EmptyRange marks calls that do not correspond to source text.
var EmptyRange = TextRange{}

// IsEmpty reports whether the range covers no text.
func (r TextRange) IsEmpty() bool { return r.Start == r.End }

// PipelineCall is one operation of an element-processing chain.
//
// PipelineCall is immutable: fields are unexported and every transformation
// returns a new value. The argument slice is never shared with callers.
type PipelineCall struct {
	name       string
	args       []CallArgument
	typeBefore CanonicalType
	typeAfter  CanonicalType
	textRange  TextRange
	pkg        string
}

// NewPipelineCall creates a call. The arguments are copied.
func NewPipelineCall(name string, args []CallArgument, typeBefore, typeAfter CanonicalType, textRange TextRange, pkg string) PipelineCall {
	return PipelineCall{
		name:       name,
		args:       slices.Clone(args),
		typeBefore: typeBefore,
		typeAfter:  typeAfter,
		textRange:  textRange,
		pkg:        pkg,
	}
}

// Name returns the operation name (e.g. "distinct").
func (c PipelineCall) Name() string { return c.name }

// Arguments returns a copy of the call arguments.
func (c PipelineCall) Arguments() []CallArgument { return slices.Clone(c.args) }

// TypeBefore returns the element type flowing into the operation.
func (c PipelineCall) TypeBefore() CanonicalType { return c.typeBefore }

// TypeAfter returns the element type flowing out of the operation.
func (c PipelineCall) TypeAfter() CanonicalType { return c.typeAfter }

// Range returns the source location of the call.
func (c PipelineCall) Range() TextRange { return c.textRange }

// Package returns the optional namespace the operation belongs to.
func (c PipelineCall) Package() string { return c.pkg }

// WithArguments returns a copy of c that differs only in its arguments.
func (c PipelineCall) WithArguments(args []CallArgument) PipelineCall {
	return NewPipelineCall(c.name, args, c.typeBefore, c.typeAfter, c.textRange, c.pkg)
}

// Equal reports whether two calls are identical in every field.
func (c PipelineCall) Equal(other PipelineCall) bool {
	return c.name == other.name &&
		slices.Equal(c.args, other.args) &&
		c.typeBefore == other.typeBefore &&
		c.typeAfter == other.typeAfter &&
		c.textRange == other.textRange &&
		c.pkg == other.pkg
}

// Pipeline is an ordered chain of intermediate calls as delivered by the
// extraction stage.
type Pipeline struct {
	Name  string         `json:"name"`
	Calls []PipelineCall `json:"calls"`

	// Result is what the terminal call yields; VOID when it yields nothing.
	Result        CanonicalType `json:"result"`
	// ResultElement is the value carried by Result, unwrapped from optionals.
	ResultElement CanonicalType `json:"result_element"`
}

// callJSON is the exported shape of a PipelineCall.
type callJSON struct {
	Name       string         `json:"name"`
	Args       []CallArgument `json:"args"`
	TypeBefore CanonicalType  `json:"type_before"`
	TypeAfter  CanonicalType  `json:"type_after"`
	Range      TextRange      `json:"range"`
	Package    string         `json:"package,omitempty"`
}

// MarshalJSON implements json.Marshaler for PipelineCall.
func (c PipelineCall) MarshalJSON() ([]byte, error) {
	args := c.Arguments()
	if args == nil {
		args = []CallArgument{}
	}
	return json.Marshal(callJSON{
		Name:       c.name,
		Args:       args,
		TypeBefore: c.typeBefore,
		TypeAfter:  c.typeAfter,
		Range:      c.textRange,
		Package:    c.pkg,
	})
}

// Snapshot returns a plain representation of the call for serialization.
func (c PipelineCall) Snapshot() map[string]any {
	args := make([]any, len(c.args))
	for i, a := range c.args {
		args[i] = map[string]any{"type": a.Type, "text": a.Text}
	}
	m := map[string]any{
		"name":        c.name,
		"args":        args,
		"type_before": c.typeBefore.String(),
		"type_after":  c.typeAfter.String(),
		"range":       []any{c.textRange.Start, c.textRange.End},
	}
	if c.pkg != "" {
		m["package"] = c.pkg
	}
	return m
}
