// Package types defines Orion's value-type representation, shared by the
// parser (for explicit annotations) and the checker (for inference and
// validation).
package types

import "fmt"

// Tag discriminates the kind of a Type.
type Tag int

const (
	Unknown Tag = iota
	Int32
	Int64
	Float32
	Float64
	String
	Bool
	Void
	List
	Dict
	Range
	Struct
	Enum
)

func (t Tag) String() string {
	switch t {
	case Unknown:
		return "unknown"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Void:
		return "void"
	case List:
		return "list"
	case Dict:
		return "dict"
	case Range:
		return "range"
	case Struct:
		return "struct"
	case Enum:
		return "enum"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// Type is a value type: a tag plus, for nominal types (struct/enum), a
// name. Types compare by value — two Types are equal iff their Tag and
// (for nominal tags) Name match.
type Type struct {
	Tag  Tag
	Name string // only meaningful for Struct/Enum
}

func (t Type) String() string {
	if t.Tag == Struct || t.Tag == Enum {
		return fmt.Sprintf("%s<%s>", t.Tag, t.Name)
	}
	return t.Tag.String()
}

// Equal reports whether two types are identical by tag and, for nominal
// types, by name.
func (t Type) Equal(other Type) bool {
	if t.Tag != other.Tag {
		return false
	}
	if t.Tag == Struct || t.Tag == Enum {
		return t.Name == other.Name
	}
	return true
}

// Convenience constructors for the predeclared scalar/collection types.
var (
	TUnknown = Type{Tag: Unknown}
	TInt32   = Type{Tag: Int32}
	TInt64   = Type{Tag: Int64}
	TFloat32 = Type{Tag: Float32}
	TFloat64 = Type{Tag: Float64}
	TString  = Type{Tag: String}
	TBool    = Type{Tag: Bool}
	TVoid    = Type{Tag: Void}
	TList    = Type{Tag: List}
	TDict    = Type{Tag: Dict}
	TRange   = Type{Tag: Range}
)

// StructType returns the nominal struct type named name.
func StructType(name string) Type { return Type{Tag: Struct, Name: name} }

// EnumType returns the nominal enum type named name.
func EnumType(name string) Type { return Type{Tag: Enum, Name: name} }

// IsNumeric reports whether t is one of the four numeric scalar types.
func (t Type) IsNumeric() bool {
	switch t.Tag {
	case Int32, Int64, Float32, Float64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether t is a floating-point scalar.
func (t Type) IsFloat() bool {
	return t.Tag == Float32 || t.Tag == Float64
}

// IsInteger reports whether t is an integer scalar.
func (t Type) IsInteger() bool {
	return t.Tag == Int32 || t.Tag == Int64
}

// Widen returns the result type of a binary arithmetic operator applied to
// operands of type a and b, per spec.md §4.3: matching numeric types pass
// through unchanged, a mismatch involving a float widens to float64, and a
// mismatch between two integer widths gives int64.
func Widen(a, b Type) (Type, bool) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return TUnknown, false
	}
	if a.Equal(b) {
		return a, true
	}
	if a.IsFloat() || b.IsFloat() {
		return TFloat64, true
	}
	return TInt64, true
}

// IsHeapReference reports whether values of t are refcounted heap handles
// that require the generator to emit retain/release per spec.md §4.5/§5.
func (t Type) IsHeapReference() bool {
	switch t.Tag {
	case String, List, Dict, Range:
		return true
	default:
		return false
	}
}
