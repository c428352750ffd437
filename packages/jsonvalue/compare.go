package jsonvalue

import (
	"strconv"
	"strings"
)

// Equal reports whether a and b are deeply equal. Types must match exactly,
// so Number(12) never equals String("12"). Object member order is not
// significant; array element order is.
func Equal(a, b Value) bool {
	ka, kb := Classify(a), Classify(b)
	if ka != kb {
		return false
	}
	switch ka {
	case KindNull:
		return true
	case KindBoolean:
		return a.(Bool) == b.(Bool)
	case KindNumber:
		return a.(Number) == b.(Number)
	case KindString:
		return a.(String) == b.(String)
	case KindArray:
		ea, eb := entries(a), entries(b)
		if len(ea) != len(eb) {
			return false
		}
		for i := range ea {
			if !Equal(ea[i].Value, eb[i].Value) {
				return false
			}
		}
		return true
	default:
		ea, eb := entries(a), entries(b)
		if len(ea) != len(eb) {
			return false
		}
		for _, m := range ea {
			other, ok := lookup(b, m.Key)
			if !ok || !Equal(m.Value, other) {
				return false
			}
		}
		return true
	}
}

// IsSubset reports whether every key of expected is present in actual with
// an equal value. Both values are viewed as mappings: objects by member key,
// arrays by decimal index. Nested containers are matched recursively with the
// same partial rule; at every level the kinds must agree. An empty expected
// mapping is a subset of anything.
func IsSubset(expected, actual Value) bool {
	for _, m := range entries(expected) {
		got, ok := lookup(actual, m.Key)
		if !ok {
			return false
		}
		if Classify(got) != Classify(m.Value) {
			return false
		}
		if IsContainer(m.Value) {
			if !IsSubset(m.Value, got) {
				return false
			}
			continue
		}
		if !Equal(m.Value, got) {
			return false
		}
	}
	return true
}

// Contains reports whether haystack contains needle: substring containment for
// two strings, IsSubset for two containers, false for anything else.
func Contains(haystack, needle Value) bool {
	if h, ok := haystack.(String); ok {
		if n, ok := needle.(String); ok {
			return strings.Contains(string(h), string(n))
		}
		return false
	}
	if IsContainer(haystack) && IsContainer(needle) {
		return IsSubset(needle, haystack)
	}
	return false
}

// IsBlank reports whether v is one of null, false, 0, "", [] or {}.
func IsBlank(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return true
	case Bool:
		return !bool(val)
	case Number:
		return val == 0
	case String:
		return val == ""
	case Array:
		return len(val) == 0
	case Object:
		return len(val) == 0
	}
	return false
}

func entries(v Value) []Member {
	switch val := v.(type) {
	case Object:
		return val
	case Array:
		out := make([]Member, len(val))
		for i, item := range val {
			out[i] = Member{Key: strconv.Itoa(i), Value: item}
		}
		return out
	}
	return nil
}

func lookup(v Value, key string) (Value, bool) {
	switch val := v.(type) {
	case Object:
		return val.Get(key)
	case Array:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(val) || strconv.Itoa(i) != key {
			return nil, false
		}
		return val[i], true
	}
	return nil, false
}
