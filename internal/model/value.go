package model

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// FieldKind is the declared semantic type of a schema field.
type FieldKind uint8

const (
	FieldInt FieldKind = iota
	FieldNonNegInt
	FieldString
	FieldBool
	FieldList
)

// Numeric reports whether values of this kind support arithmetic.
func (k FieldKind) Numeric() bool {
	return k == FieldInt || k == FieldNonNegInt
}

func (k FieldKind) String() string {
	switch k {
	case FieldInt:
		return "int"
	case FieldNonNegInt:
		return "nonneg-int"
	case FieldString:
		return "string"
	case FieldBool:
		return "bool"
	case FieldList:
		return "list"
	}
	return "unknown"
}

// Value is a typed field value. Only the member matching Kind is meaningful.
type Value struct {
	Kind FieldKind
	Int  int
	Str  string
	Bool bool
	List []Entry
}

func IntValue(n int) Value       { return Value{Kind: FieldInt, Int: n} }
func StringValue(s string) Value { return Value{Kind: FieldString, Str: s} }
func BoolValue(b bool) Value     { return Value{Kind: FieldBool, Bool: b} }
func ListValue(l []Entry) Value  { return Value{Kind: FieldList, List: l} }
func nonNegValue(n int) Value    { return Value{Kind: FieldNonNegInt, Int: n} }

// Equal compares two values of the same kind.
func (v Value) Equal(o Value) bool {
	if v.Kind.Numeric() && o.Kind.Numeric() {
		return v.Int == o.Int
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case FieldString:
		return v.Str == o.Str
	case FieldBool:
		return v.Bool == o.Bool
	case FieldList:
		return slices.Equal(v.List, o.List)
	}
	return false
}

func (v Value) String() string {
	switch v.Kind {
	case FieldInt, FieldNonNegInt:
		return strconv.Itoa(v.Int)
	case FieldString:
		return v.Str
	case FieldBool:
		return strconv.FormatBool(v.Bool)
	case FieldList:
		names := make([]string, len(v.List))
		for i, e := range v.List {
			names[i] = e.Name
		}
		return "[" + strings.Join(names, ", ") + "]"
	}
	return ""
}

// Any returns the value as a plain Go value for JSON encoding.
func (v Value) Any() any {
	switch v.Kind {
	case FieldInt, FieldNonNegInt:
		return v.Int
	case FieldString:
		return v.Str
	case FieldBool:
		return v.Bool
	case FieldList:
		return v.List
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}
