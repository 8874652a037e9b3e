package emit

import (
	"strings"

	"github.com/roach88/streamtrace/internal/ir"
)

// Type is how a canonical type is spelled in generated code.
type Type struct {
	// Variable is the spelling in declarations, e.g. "int".
	Variable string
	// Generic is the spelling as a generic argument, e.g. "java.lang.Integer".
	Generic string
	// Default is the initializer of a fresh variable, e.g. "0".
	Default string
}

// Common target types.
var (
	BooleanType = Type{Variable: "boolean", Generic: "java.lang.Boolean", Default: "false"}
	IntType     = Type{Variable: "int", Generic: "java.lang.Integer", Default: "0"}
	LongType    = Type{Variable: "long", Generic: "java.lang.Long", Default: "0L"}
	DoubleType  = Type{Variable: "double", Generic: "java.lang.Double", Default: "0."}
	ObjectType  = Type{Variable: "java.lang.Object", Generic: "java.lang.Object", Default: "null"}
	VoidType    = Type{Variable: "void", Generic: "java.lang.Void", Default: "null"}
)

// TypeOf returns the spelling of a canonical type. Optional tags map to the
// corresponding optional classes; CLASS uses its erased name.
func TypeOf(t ir.CanonicalType) Type {
	switch t.Kind() {
	case ir.KindVoid:
		return VoidType
	case ir.KindBoolean:
		return BooleanType
	case ir.KindInt:
		return IntType
	case ir.KindLong:
		return LongType
	case ir.KindDouble:
		return DoubleType
	case ir.KindOptional:
		return classType("java.util.Optional")
	case ir.KindOptionalInt:
		return classType("java.util.OptionalInt")
	case ir.KindOptionalLong:
		return classType("java.util.OptionalLong")
	case ir.KindOptionalDouble:
		return classType("java.util.OptionalDouble")
	case ir.KindClass:
		return classType(t.ClassName())
	}
	return ObjectType
}

// ClassType returns a reference type spelled the same everywhere.
func ClassType(name string) Type {
	return classType(name)
}

func classType(name string) Type {
	return Type{Variable: name, Generic: name, Default: "null"}
}

// ListOf returns the type of a list holding elem.
func ListOf(elem Type) Type {
	return classType("java.util.List<" + elem.Generic + ">")
}

// MapOf returns the type of a map from key to value.
func MapOf(key, value Type) Type {
	return classType("java.util.Map<" + key.Generic + ", " + value.Generic + ">")
}

// ArrayOf returns the type of an array of elem. Generic element types are
// erased to Object because generic array creation is illegal in the target.
func ArrayOf(elem Type) Type {
	return classType(elem.arrayElement() + "[]")
}

func (t Type) arrayElement() string {
	if strings.Contains(t.Variable, "<") {
		return ObjectType.Variable
	}
	return t.Variable
}
