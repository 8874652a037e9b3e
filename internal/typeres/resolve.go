package typeres

import (
	"fmt"
	"strings"

	"github.com/roach88/streamtrace/internal/ir"
)

// Well-known source type names.
const (
	BaseStreamName     = "java.util.stream.BaseStream"
	StreamName         = "java.util.stream.Stream"
	IntStreamName      = "java.util.stream.IntStream"
	LongStreamName     = "java.util.stream.LongStream"
	DoubleStreamName   = "java.util.stream.DoubleStream"
	OptionalName       = "java.util.Optional"
	OptionalIntName    = "java.util.OptionalInt"
	OptionalLongName   = "java.util.OptionalLong"
	OptionalDoubleName = "java.util.OptionalDouble"
)

// SourceType is a static type as seen by the extraction stage: its canonical
// text plus the names of every known supertype. Supertypes stand in for
// inheritance queries against the source model.
type SourceType struct {
	Name       string
	Supertypes []string
}

// ParseSourceType builds a SourceType from canonical text with no supertypes.
func ParseSourceType(text string) SourceType {
	return SourceType{Name: strings.TrimSpace(text)}
}

// isInheritor reports whether t is, or extends, the named type.
// Generic arguments are ignored on both sides.
func (t SourceType) isInheritor(name string) bool {
	if Erase(t.Name) == name {
		return true
	}
	for _, super := range t.Supertypes {
		if Erase(super) == name {
			return true
		}
	}
	return false
}

// IsStream reports whether t is a stream of any flavor.
func (t SourceType) IsStream() bool {
	for _, name := range []string{BaseStreamName, StreamName, IntStreamName, LongStreamName, DoubleStreamName} {
		if t.isInheritor(name) {
			return true
		}
	}
	return false
}

var primitives = map[string]ir.CanonicalType{
	"void":    ir.Void,
	"boolean": ir.Boolean,
	"int":     ir.Int,
	"long":    ir.Long,
	"double":  ir.Double,
}

// ClassifyPipelineType classifies the type of a whole pipeline stage.
// The three primitive-specialized stream flavors map to INT, LONG and DOUBLE;
// "void" maps to VOID; everything else is OBJECT.
func ClassifyPipelineType(t SourceType) ir.CanonicalType {
	switch {
	case t.isInheritor(IntStreamName):
		return ir.Int
	case t.isInheritor(LongStreamName):
		return ir.Long
	case t.isInheritor(DoubleStreamName):
		return ir.Double
	case strings.TrimSpace(t.Name) == "void":
		return ir.Void
	}
	return ir.Object
}

// ClassifyElementType classifies a single static type into VOID, BOOLEAN,
// INT, LONG, DOUBLE or CLASS(erased name).
func ClassifyElementType(t SourceType) ir.CanonicalType {
	if prim, ok := primitives[strings.TrimSpace(t.Name)]; ok {
		return prim
	}
	return ir.Class(Erase(t.Name))
}

// ClassifyResultType classifies the result of a terminal operation.
// Primitives classify as in ClassifyElementType, the four optional flavors
// map to their OPTIONAL tags, and every other reference type is OBJECT.
func ClassifyResultType(t SourceType) ir.CanonicalType {
	if prim, ok := primitives[strings.TrimSpace(t.Name)]; ok {
		return prim
	}
	switch Erase(t.Name) {
	case OptionalName:
		return ir.Optional
	case OptionalIntName:
		return ir.OptionalInt
	case OptionalLongName:
		return ir.OptionalLong
	case OptionalDoubleName:
		return ir.OptionalDouble
	}
	return ir.Object
}

// Stage classifies what a call produces.
type Stage struct {
	// Elements is the flavor of the elements flowing to the next call.
	// It is VOID once the pipeline has ended.
	Elements      ir.CanonicalType
	// Result is the value a terminal call yields, VOID for streams and
	// void calls.
	Result        ir.CanonicalType
	// ResultElement is the value carried by Result: optionals unwrap to
	// their content, anything else classifies as an element type.
	ResultElement ir.CanonicalType
}

// ClassifyStage classifies the type a call produces. Streams and void are
// pipeline stages; any other type is the result of a terminal call, after
// which no elements flow.
func ClassifyStage(t SourceType) Stage {
	if t.IsStream() || strings.TrimSpace(t.Name) == "void" {
		return Stage{Elements: ClassifyPipelineType(t), Result: ir.Void, ResultElement: ir.Void}
	}
	result := ClassifyResultType(t)
	element := ClassifyElementType(t)
	if unwrapped, err := UnwrapOptional(result); err == nil {
		element = unwrapped
	}
	return Stage{Elements: ir.Void, Result: result, ResultElement: element}
}

// UnwrapOptional returns the element type carried by an optional type.
//
// Precondition: t is OPTIONAL, OPTIONAL_INT, OPTIONAL_LONG or OPTIONAL_DOUBLE.
// Any other tag yields a precondition violation.
func UnwrapOptional(t ir.CanonicalType) (ir.CanonicalType, error) {
	switch t.Kind() {
	case ir.KindOptionalInt:
		return ir.Int, nil
	case ir.KindOptionalLong:
		return ir.Long, nil
	case ir.KindOptionalDouble:
		return ir.Double, nil
	case ir.KindOptional:
		return ir.Object, nil
	}
	return ir.Void, ir.NewPreconditionViolation(fmt.Sprintf("cannot unwrap non-optional type %s", t))
}

// Erase returns the erasure of a type's canonical text: generic arguments are
// removed, wildcard bounds resolve to the bound, and whitespace is dropped.
// Array suffixes are kept. The result is stable because it feeds generated
// identifiers.
//
//	java.util.List<java.lang.String>   -> java.util.List
//	? extends java.lang.Number          -> java.lang.Number
//	java.util.Map.Entry<K, V>[]         -> java.util.Map.Entry[]
func Erase(text string) string {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "?"); ok {
		rest = strings.TrimSpace(rest)
		switch {
		case strings.HasPrefix(rest, "extends "):
			text = strings.TrimPrefix(rest, "extends ")
		case strings.HasPrefix(rest, "super "):
			text = strings.TrimPrefix(rest, "super ")
		default:
			return "java.lang.Object"
		}
	}

	var b strings.Builder
	depth := 0
	for _, r := range text {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth > 0:
			// inside generic arguments
		case r == ' ' || r == '\t' || r == '\n':
			// whitespace is not significant in canonical text
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
