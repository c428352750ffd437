// Package jsonvalue models JSON documents as a closed set of value types and
// provides the comparison rules used by the JSON assertions: kind
// classification, deep equality, partial (subset) matching and blankness.
package jsonvalue

import "strconv"

// Value is one of Null, Bool, Number, String, Array or Object.
type Value interface {
	isValue()
}

// Null is the JSON null literal.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Number is a JSON number.
type Number float64

// String is a JSON string.
type String string

// Array is an ordered JSON array.
type Array []Value

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Object is a JSON object. Members keep the order they had in the source.
type Object []Member

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Number) isValue() {}
func (String) isValue() {}
func (Array) isValue()  {}
func (Object) isValue() {}

// Get returns the value stored under key.
func (o Object) Get(key string) (Value, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Keys returns the member keys in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// Kind is the logical JSON type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Classify returns the kind of v. An Object whose keys are exactly "0".."n-1"
// in order is a list and classifies as KindArray, which makes the empty
// object indistinguishable from the empty array. A nil Value is null.
func Classify(v Value) Kind {
	switch val := v.(type) {
	case nil, Null:
		return KindNull
	case Bool:
		return KindBoolean
	case Number:
		return KindNumber
	case String:
		return KindString
	case Array:
		return KindArray
	case Object:
		if isList(val) {
			return KindArray
		}
		return KindObject
	default:
		return KindNull
	}
}

func isList(o Object) bool {
	for i, m := range o {
		if m.Key != strconv.Itoa(i) {
			return false
		}
	}
	return true
}

// IsContainer reports whether v is an Array or an Object.
func IsContainer(v Value) bool {
	switch v.(type) {
	case Array, Object:
		return true
	}
	return false
}
