package jsonvalue

import (
	"errors"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned by Parse for malformed input.
var ErrInvalidJSON = errors.New("string does not contain a valid JSON object")

// Parse decodes text into a Value, keeping object members in document order.
// When an object repeats a key the last value wins, in the position of the
// first occurrence.
func Parse(text string) (Value, error) {
	if !gjson.Valid(text) {
		return nil, ErrInvalidJSON
	}
	return fromResult(gjson.Parse(text)), nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(text string) Value {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null{}
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.Number:
		return Number(r.Num)
	case gjson.String:
		return String(r.Str)
	}

	if r.IsArray() {
		items := r.Array()
		arr := make(Array, len(items))
		for i, item := range items {
			arr[i] = fromResult(item)
		}
		return arr
	}

	obj := Object{}
	index := make(map[string]int)
	r.ForEach(func(key, value gjson.Result) bool {
		v := fromResult(value)
		if i, ok := index[key.Str]; ok {
			obj[i].Value = v
			return true
		}
		index[key.Str] = len(obj)
		obj = append(obj, Member{Key: key.Str, Value: v})
		return true
	})
	return obj
}
