package tern

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Value represents a runtime value. String renders the value the way it
// appears nested inside another value; Display renders a top-level value.
type Value interface {
	String() string
}

// UnitValue is the only value of type unit.
type UnitValue struct{}

func (UnitValue) String() string { return "()" }

// BoolValue represents a boolean value
type BoolValue struct {
	Val bool
}

func (b BoolValue) String() string { return strconv.FormatBool(b.Val) }

// IntValue represents an integer value
type IntValue struct {
	Val int64
}

func (i IntValue) String() string { return strconv.FormatInt(i.Val, 10) }

// FloatValue represents a floating point value
type FloatValue struct {
	Val float64
}

func (f FloatValue) String() string { return strconv.FormatFloat(f.Val, 'g', -1, 64) }

// CharValue represents a single character
type CharValue struct {
	Val rune
}

func (c CharValue) String() string { return strconv.QuoteRune(c.Val) }

// StringValue represents a string value
type StringValue struct {
	Val string
}

func (s StringValue) String() string { return strconv.Quote(s.Val) }

// TupleValue is an immutable fixed-size sequence of values.
type TupleValue struct {
	Elems []Value
}

func (t TupleValue) String() string {
	return "(" + joinValues(t.Elems) + ")"
}

// ArrayValue is shared mutable storage; every alias sees index assignments.
type ArrayValue struct {
	Elems []Value
}

func (a *ArrayValue) String() string {
	return "[" + joinValues(a.Elems) + "]"
}

// StructValue is an instance of a declared struct. Fields are kept in
// declaration order. Instances are shared, so assignments to mut fields are
// visible through every alias.
type StructValue struct {
	Type   string
	Fields []string
	Values []Value
}

func (s *StructValue) String() string {
	var b strings.Builder
	b.WriteString(s.Type)
	b.WriteString("{")
	for i, name := range s.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", name, s.Values[i])
	}
	b.WriteString("}")
	return b.String()
}

// Field returns the index of the named field, or -1.
func (s *StructValue) Field(name string) int {
	for i, f := range s.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// EnumValue is a constructor tag with its payload.
type EnumValue struct {
	Type string
	Ctor string
	Args []Value
}

func (e EnumValue) String() string {
	if len(e.Args) == 0 {
		return e.Ctor
	}
	return e.Ctor + "(" + joinValues(e.Args) + ")"
}

// Closure is a function value: the function's syntax plus the frame it was
// defined in.
type Closure struct {
	Name string
	Fn   *FuncLit
	Env  *Env
}

func (c *Closure) String() string {
	if c.Name == "" {
		return "<fn>"
	}
	return "<fn " + c.Name + ">"
}

// BuiltinFunc implements a builtin.
type BuiltinFunc func(ctx context.Context, args []Value) (Value, error)

// Builtin is a function implemented by the host.
type Builtin struct {
	Name string
	Fn   BuiltinFunc
}

func (b *Builtin) String() string {
	return "<fn " + b.Name + ">"
}

// Display renders a value for output: strings and chars appear raw at the
// top level and quoted when nested.
func Display(v Value) string {
	switch x := v.(type) {
	case StringValue:
		return x.Val
	case CharValue:
		return string(x.Val)
	default:
		return v.String()
	}
}

func joinValues(vals []Value) string {
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = v.String()
	}
	return strings.Join(strs, ", ")
}

// ValuesEqual implements ==. Data is compared structurally; functions are
// equal only to themselves.
func ValuesEqual(a, b Value) bool {
	switch x := a.(type) {
	case UnitValue:
		_, ok := b.(UnitValue)
		return ok
	case BoolValue, IntValue, FloatValue, CharValue, StringValue:
		return a == b
	case TupleValue:
		y, ok := b.(TupleValue)
		return ok && allEqual(x.Elems, y.Elems)
	case *ArrayValue:
		y, ok := b.(*ArrayValue)
		return ok && (x == y || allEqual(x.Elems, y.Elems))
	case *StructValue:
		y, ok := b.(*StructValue)
		return ok && (x == y || x.Type == y.Type && allEqual(x.Values, y.Values))
	case EnumValue:
		y, ok := b.(EnumValue)
		return ok && x.Type == y.Type && x.Ctor == y.Ctor && allEqual(x.Args, y.Args)
	case *Closure:
		y, ok := b.(*Closure)
		return ok && x == y
	case *Builtin:
		y, ok := b.(*Builtin)
		return ok && x == y
	}
	return false
}

func allEqual(as, bs []Value) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !ValuesEqual(as[i], bs[i]) {
			return false
		}
	}
	return true
}
