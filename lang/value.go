package lang

import (
	"strconv"
	"strings"
)

// Kind identifies the runtime type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindStr
	KindNum
	KindBool
	KindArray
	KindFunc
)

// String returns a human-readable name for the value kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindStr:
		return "string"
	case KindNum:
		return "number"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindFunc:
		return "function"
	default:
		return "unknown"
	}
}

// Value is the runtime tagged union. The zero value is Null.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	Arr  []Value
	Fn   *Function
}

// Function is a registered function definition. Definitions are immutable
// once registered in the global function table.
type Function struct {
	Name   string
	Params []Param
	Body   []Statement
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// Str returns a string value.
func Str(s string) Value { return Value{Kind: KindStr, Str: s} }

// Num returns a number value.
func Num(f float64) Value { return Value{Kind: KindNum, Num: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Array returns an array value holding the given elements in order.
func Array(elems ...Value) Value { return Value{Kind: KindArray, Arr: elems} }

// FuncRef returns a value referencing a function definition.
func FuncRef(fn *Function) Value { return Value{Kind: KindFunc, Fn: fn} }

// Text returns the canonical text rendering used by concatenation:
// numbers as their shortest round-trip decimal form, booleans as
// "true"/"false", null as "null". Arrays render their elements
// comma-separated in braces; function references render their name.
func (v Value) Text() string {
	switch v.Kind {
	case KindStr:
		return v.Str

	case KindNum:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)

	case KindBool:
		return strconv.FormatBool(v.Bool)

	case KindNull:
		return "null"

	case KindArray:
		parts := make([]string, len(v.Arr))
		for i, elem := range v.Arr {
			parts[i] = elem.Text()
		}

		return "{" + strings.Join(parts, ", ") + "}"

	case KindFunc:
		if v.Fn == nil {
			return "function"
		}

		return v.Fn.Name

	default:
		return ""
	}
}

// String implements fmt.Stringer using the canonical text rendering,
// except strings are quoted to keep debug output unambiguous.
func (v Value) String() string {
	if v.Kind == KindStr {
		return strconv.Quote(v.Str)
	}

	return v.Text()
}

// tagFor maps a value kind to the closest declared datatype tag. It is
// used when module-resolver bindings are injected into the global scope
// without an explicit system.init declaration.
func tagFor(k Kind) DataType {
	switch k {
	case KindNum:
		return DataNumber
	case KindBool:
		return DataBool
	case KindArray:
		return DataArray
	default:
		return DataString
	}
}
