package ir

import "fmt"

// TypeKind tags a CanonicalType.
type TypeKind int

const (
	KindVoid TypeKind = iota
	KindBoolean
	KindInt
	KindLong
	KindDouble
	KindObject
	KindOptional
	KindOptionalInt
	KindOptionalLong
	KindOptionalDouble
	KindClass
)

var kindNames = map[TypeKind]string{
	KindVoid:           "VOID",
	KindBoolean:        "BOOLEAN",
	KindInt:            "INT",
	KindLong:           "LONG",
	KindDouble:         "DOUBLE",
	KindObject:         "OBJECT",
	KindOptional:       "OPTIONAL",
	KindOptionalInt:    "OPTIONAL_INT",
	KindOptionalLong:   "OPTIONAL_LONG",
	KindOptionalDouble: "OPTIONAL_DOUBLE",
	KindClass:          "CLASS",
}

func (k TypeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}

// CanonicalType is the element-type classification that drives code
// specialization. It is a comparable value: two types are equal iff their
// kinds are equal and, for CLASS, their erased names are equal.
//
// The zero value is VOID.
type CanonicalType struct {
	kind TypeKind
	name string // only set for KindClass
}

// The fixed canonical types.
var (
	Void           = CanonicalType{kind: KindVoid}
	Boolean        = CanonicalType{kind: KindBoolean}
	Int            = CanonicalType{kind: KindInt}
	Long           = CanonicalType{kind: KindLong}
	Double         = CanonicalType{kind: KindDouble}
	Object         = CanonicalType{kind: KindObject}
	Optional       = CanonicalType{kind: KindOptional}
	OptionalInt    = CanonicalType{kind: KindOptionalInt}
	OptionalLong   = CanonicalType{kind: KindOptionalLong}
	OptionalDouble = CanonicalType{kind: KindOptionalDouble}
)

// Class returns the CLASS tag for an erased type name.
func Class(name string) CanonicalType {
	return CanonicalType{kind: KindClass, name: name}
}

// Kind returns the type tag.
func (t CanonicalType) Kind() TypeKind { return t.kind }

// ClassName returns the erased name of a CLASS type, or "" for other tags.
func (t CanonicalType) ClassName() string { return t.name }

// IsOptional reports whether t is one of the four optional tags.
func (t CanonicalType) IsOptional() bool {
	switch t.kind {
	case KindOptional, KindOptionalInt, KindOptionalLong, KindOptionalDouble:
		return true
	}
	return false
}

// IsPrimitive reports whether values of t are unboxed in the target runtime.
func (t CanonicalType) IsPrimitive() bool {
	switch t.kind {
	case KindBoolean, KindInt, KindLong, KindDouble:
		return true
	}
	return false
}

func (t CanonicalType) String() string {
	if t.kind == KindClass {
		return "CLASS(" + t.name + ")"
	}
	return t.kind.String()
}

// MarshalText renders the type for JSON and YAML output.
func (t CanonicalType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseCanonicalType is the inverse of CanonicalType.String.
func ParseCanonicalType(s string) (CanonicalType, error) {
	if len(s) > len("CLASS()") && s[:6] == "CLASS(" && s[len(s)-1] == ')' {
		return Class(s[6 : len(s)-1]), nil
	}
	for kind, name := range kindNames {
		if kind != KindClass && name == s {
			return CanonicalType{kind: kind}, nil
		}
	}
	return Void, fmt.Errorf("unknown canonical type %q", s)
}
