// Package signal provides the synthetic process signals served by procsim.
//
// Every signal is a function evaluated on demand. Time-derived signals are
// pure functions of the wall clock expressed in milliseconds since the UNIX
// epoch; the Counter signal reads a shared atomic cell advanced by the
// ticker. Nothing is cached: each read evaluates the current function.
package signal

import (
	"fmt"
	"time"
)

// ValueType is the declared data type of a variable.
type ValueType int

const (
	// TypeDouble is a 64-bit float.
	TypeDouble ValueType = iota + 1
	// TypeInt32 is a signed 32-bit integer.
	TypeInt32
	// TypeString is a UTF-8 string.
	TypeString
	// TypeDateTime is a timestamp.
	TypeDateTime
)

// String returns the data type name used on the wire.
func (t ValueType) String() string {
	switch t {
	case TypeDouble:
		return "Double"
	case TypeInt32:
		return "Int32"
	case TypeString:
		return "String"
	case TypeDateTime:
		return "DateTime"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// Valid reports whether t is one of the known data types.
func (t ValueType) Valid() bool {
	return t >= TypeDouble && t <= TypeDateTime
}

// Value is a tagged union holding exactly one of a float64, an int32, a
// string or a timestamp. The zero Value has no type and is never produced by
// an Evaluator.
type Value struct {
	typ ValueType
	f   float64
	i   int32
	s   string
	t   time.Time
}

// Double returns a Value of type TypeDouble.
func Double(f float64) Value {
	return Value{typ: TypeDouble, f: f}
}

// Int32 returns a Value of type TypeInt32.
func Int32(i int32) Value {
	return Value{typ: TypeInt32, i: i}
}

// String returns a Value of type TypeString.
func String(s string) Value {
	return Value{typ: TypeString, s: s}
}

// DateTime returns a Value of type TypeDateTime.
func DateTime(t time.Time) Value {
	return Value{typ: TypeDateTime, t: t}
}

// Type returns the tag of the value.
func (v Value) Type() ValueType {
	return v.typ
}

// Float64 returns the float payload. It panics if v is not a TypeDouble.
func (v Value) Float64() float64 {
	v.mustBe(TypeDouble)
	return v.f
}

// Int32 returns the integer payload. It panics if v is not a TypeInt32.
func (v Value) Int32() int32 {
	v.mustBe(TypeInt32)
	return v.i
}

// Text returns the string payload. It panics if v is not a TypeString.
func (v Value) Text() string {
	v.mustBe(TypeString)
	return v.s
}

// Time returns the timestamp payload. It panics if v is not a TypeDateTime.
func (v Value) Time() time.Time {
	v.mustBe(TypeDateTime)
	return v.t
}

// Any returns the payload as an untyped value for serialization.
// Timestamps are rendered as RFC 3339 strings in UTC.
func (v Value) Any() any {
	switch v.typ {
	case TypeDouble:
		return v.f
	case TypeInt32:
		return v.i
	case TypeString:
		return v.s
	case TypeDateTime:
		return v.t.UTC().Format(time.RFC3339Nano)
	default:
		return nil
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	switch v.typ {
	case TypeDouble:
		return fmt.Sprintf("%g", v.f)
	case TypeInt32:
		return fmt.Sprintf("%d", v.i)
	case TypeString:
		return v.s
	case TypeDateTime:
		return v.t.UTC().Format(time.RFC3339Nano)
	default:
		return "<empty>"
	}
}

func (v Value) mustBe(t ValueType) {
	if v.typ != t {
		panic(fmt.Sprintf("signal: value of type %s accessed as %s", v.typ, t))
	}
}
