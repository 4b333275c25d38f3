package db

import (
	"fmt"
	"math"
	"slices"
)

// --------------------------------------------------------------------------
// Value Types
// --------------------------------------------------------------------------

// ValueType identifies which primitive a Value holds.
// There is no double type: doubles are stored as TypeLong holding the raw bits.
type ValueType uint8

const (
	TypeInvalid ValueType = iota
	TypeString
	TypeInt
	TypeLong
	TypeFloat
	TypeBool
	TypeStringSet
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeStringSet:
		return "set"
	default:
		return "invalid"
	}
}

// Valid reports whether t is one of the storable types.
func (t ValueType) Valid() bool {
	return t >= TypeString && t <= TypeStringSet
}

// --------------------------------------------------------------------------
// Value
// --------------------------------------------------------------------------

// Value is a typed entry value.
//
// The numeric payload of TypeInt, TypeLong and TypeBool lives in Num.
// TypeFloat stores the IEEE-754 bit pattern of the float32 in Num, so that
// every serializer (including json) round-trips NaN payloads and signed zero.
// TypeStringSet holds a sorted slice without duplicates.
type Value struct {
	Type ValueType `json:"type"`
	Num  int64     `json:"num,omitempty"`
	Str  string    `json:"str,omitempty"`
	Set  []string  `json:"set,omitempty"`
}

func StringValue(s string) Value {
	return Value{Type: TypeString, Str: s}
}

func IntValue(i int32) Value {
	return Value{Type: TypeInt, Num: int64(i)}
}

func LongValue(l int64) Value {
	return Value{Type: TypeLong, Num: l}
}

func FloatValue(f float32) Value {
	return Value{Type: TypeFloat, Num: int64(math.Float32bits(f))}
}

func BoolValue(b bool) Value {
	v := Value{Type: TypeBool}
	if b {
		v.Num = 1
	}
	return v
}

// StringSetValue normalizes the given members into a set value.
// The input slice is not modified.
func StringSetValue(members []string) Value {
	set := slices.Clone(members)
	slices.Sort(set)
	set = slices.Compact(set)
	if set == nil {
		set = []string{}
	}
	return Value{Type: TypeStringSet, Set: set}
}

func (v Value) AsString() string { return v.Str }

func (v Value) AsInt() int32 { return int32(v.Num) }

func (v Value) AsLong() int64 { return v.Num }

func (v Value) AsFloat() float32 { return math.Float32frombits(uint32(v.Num)) }

func (v Value) AsBool() bool { return v.Num != 0 }

// AsStringSet returns a copy of the set members.
func (v Value) AsStringSet() []string {
	if v.Set == nil {
		return []string{}
	}
	return slices.Clone(v.Set)
}

// Interface returns the value as the matching Go type:
// string, int32, int64, float32, bool or []string.
func (v Value) Interface() interface{} {
	switch v.Type {
	case TypeString:
		return v.AsString()
	case TypeInt:
		return v.AsInt()
	case TypeLong:
		return v.AsLong()
	case TypeFloat:
		return v.AsFloat()
	case TypeBool:
		return v.AsBool()
	case TypeStringSet:
		return v.AsStringSet()
	default:
		return nil
	}
}

// Clone returns a copy that does not share the set slice with v.
func (v Value) Clone() Value {
	if v.Set != nil {
		v.Set = slices.Clone(v.Set)
	}
	return v
}

// Equal compares two values bit by bit.
func (v Value) Equal(o Value) bool {
	return v.Type == o.Type && v.Num == o.Num && v.Str == o.Str && slices.Equal(v.Set, o.Set)
}

func (v Value) String() string {
	return fmt.Sprintf("%s(%v)", v.Type, v.Interface())
}
