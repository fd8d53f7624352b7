package frame

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind is the primitive type of a frame argument.
type Kind int

const (
	KindInt32 Kind = iota
	KindInt64
	KindString
	KindDecimal
	KindStringArray
)

func (k Kind) String() string {
	switch k {
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindString:
		return "string"
	case KindDecimal:
		return "decimal"
	case KindStringArray:
		return "string[]"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one positional frame argument. The zero Value is invalid.
type Value struct {
	kind  valueKind
	i     int64
	s     string
	d     decimal.Decimal
	ss    []string
	valid bool
}

type valueKind int

const (
	valueInteger valueKind = iota
	valueString
	valueDecimal
	valueStringArray
)

// Int returns an integer argument. It satisfies both int32 and int64
// parameters as long as it fits.
func Int(v int64) Value { return Value{kind: valueInteger, i: v, valid: true} }

// String returns a string argument.
func String(v string) Value { return Value{kind: valueString, s: v, valid: true} }

// Decimal returns a decimal argument.
func Decimal(v decimal.Decimal) Value { return Value{kind: valueDecimal, d: v, valid: true} }

// Strings returns a string array argument. The slice is copied.
func Strings(v ...string) Value {
	cp := make([]string, len(v))
	copy(cp, v)
	return Value{kind: valueStringArray, ss: cp, valid: true}
}

// Accepts reports whether v can be bound to a parameter of kind k.
func (v Value) Accepts(k Kind) bool {
	if !v.valid {
		return false
	}
	switch k {
	case KindInt32:
		return v.kind == valueInteger && v.i >= math.MinInt32 && v.i <= math.MaxInt32
	case KindInt64:
		return v.kind == valueInteger
	case KindString:
		return v.kind == valueString
	case KindDecimal:
		return v.kind == valueDecimal || v.kind == valueInteger
	case KindStringArray:
		return v.kind == valueStringArray
	default:
		return false
	}
}

func (v Value) String() string {
	if !v.valid {
		return "<invalid>"
	}
	switch v.kind {
	case valueInteger:
		return fmt.Sprintf("%d", v.i)
	case valueString:
		return fmt.Sprintf("%q", v.s)
	case valueDecimal:
		return v.d.String()
	case valueStringArray:
		return "[" + strings.Join(v.ss, ",") + "]"
	}
	return "<invalid>"
}

// Int64 returns the integer payload. Only meaningful after Accepts(KindInt64).
func (v Value) Int64() int64 { return v.i }

// Int32 returns the integer payload narrowed to int32. Only meaningful after Accepts(KindInt32).
func (v Value) Int32() int32 { return int32(v.i) }

// Str returns the string payload.
func (v Value) Str() string { return v.s }

// Dec returns the decimal payload, widening integers.
func (v Value) Dec() decimal.Decimal {
	if v.kind == valueInteger {
		return decimal.NewFromInt(v.i)
	}
	return v.d
}

// StrSlice returns the string array payload.
func (v Value) StrSlice() []string { return v.ss }

// Args is an ordered, positional argument list.
type Args []Value

// Param describes one positional parameter of a frame.
type Param struct {
	Name string
	Kind Kind
}

// Check validates arity and argument kinds against params.
// It returns a description of the first mismatch, or "" if args fit.
func (a Args) Check(params []Param) string {
	if len(a) != len(params) {
		return fmt.Sprintf("expected %d arguments, got %d", len(params), len(a))
	}
	for i, p := range params {
		if !a[i].Accepts(p.Kind) {
			return fmt.Sprintf("argument %d (%s) must be %s, got %s", i, p.Name, p.Kind, a[i])
		}
	}
	return ""
}
