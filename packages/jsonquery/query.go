// Package jsonquery evaluates JSONPath expressions against jsonvalue trees.
package jsonquery

import (
	"context"
	"fmt"
	"reflect"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"

	"github.com/abdul-hamid-achik/hitassert/packages/jsonvalue"
)

// QueryError reports a JSONPath expression the engine could not compile.
type QueryError struct {
	Path string
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid JSONPath %q: %v", e.Path, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Query is a compiled JSONPath expression.
type Query struct {
	path     string
	definite bool
	eval     gval.Evaluable
}

// language is the full gval language with JSONPath placeholders, so filter
// expressions can use comparison and boolean operators.
var language = gval.Full(jsonpath.PlaceholderExtension())

// Compile parses path once so it can be evaluated against many documents.
func Compile(path string) (*Query, error) {
	eval, err := language.NewEvaluable(path)
	if err != nil {
		return nil, &QueryError{Path: path, Err: err}
	}
	return &Query{path: path, definite: isDefinite(path), eval: eval}, nil
}

// Path returns the source expression.
func (q *Query) Path() string {
	return q.path
}

// Evaluate returns the ordered values matched by q in root. A path that walks
// through a missing key, an out of range index or a value of the wrong kind
// matches nothing; it is not an error.
func (q *Query) Evaluate(root jsonvalue.Value) []jsonvalue.Value {
	origins := make(map[uintptr]jsonvalue.Object)
	data := toGo(root, origins)

	result, err := q.eval(context.Background(), data)
	if err != nil {
		return nil
	}

	if q.definite {
		return []jsonvalue.Value{fromGo(result, origins)}
	}

	items, ok := result.([]any)
	if !ok {
		return []jsonvalue.Value{fromGo(result, origins)}
	}
	matches := make([]jsonvalue.Value, len(items))
	for i, item := range items {
		matches[i] = fromGo(item, origins)
	}
	return matches
}

// Evaluate compiles path and evaluates it against root.
func Evaluate(root jsonvalue.Value, path string) ([]jsonvalue.Value, error) {
	q, err := Compile(path)
	if err != nil {
		return nil, err
	}
	return q.Evaluate(root), nil
}

// MustEvaluate is like Evaluate but panics if path does not compile.
func MustEvaluate(root jsonvalue.Value, path string) []jsonvalue.Value {
	matches, err := Evaluate(root, path)
	if err != nil {
		panic(err)
	}
	return matches
}

// isDefinite reports whether path can select at most one value: it has no
// wildcard, recursive descent, filter, union or slice.
func isDefinite(path string) bool {
	depth := 0
	var quote byte
	for i := 0; i < len(path); i++ {
		c := path[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '*':
			return false
		case '.':
			if i+1 < len(path) && path[i+1] == '.' {
				return false
			}
		case '[':
			depth++
			if i+1 < len(path) && path[i+1] == '?' {
				return false
			}
		case ']':
			depth--
		case ',', ':':
			if depth > 0 {
				return false
			}
		}
	}
	return true
}

// toGo converts v into the generic shape the engine walks and remembers which
// ordered Object each map came from.
func toGo(v jsonvalue.Value, origins map[uintptr]jsonvalue.Object) any {
	switch val := v.(type) {
	case jsonvalue.Object:
		m := make(map[string]any, len(val))
		for _, member := range val {
			m[member.Key] = toGo(member.Value, origins)
		}
		origins[reflect.ValueOf(m).Pointer()] = val
		return m
	case jsonvalue.Array:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toGo(item, origins)
		}
		return out
	default:
		return jsonvalue.ToGo(v)
	}
}

func fromGo(v any, origins map[uintptr]jsonvalue.Object) jsonvalue.Value {
	switch val := v.(type) {
	case map[string]any:
		if obj, ok := origins[reflect.ValueOf(val).Pointer()]; ok {
			return obj
		}
	case []any:
		arr := make(jsonvalue.Array, len(val))
		for i, item := range val {
			arr[i] = fromGo(item, origins)
		}
		return arr
	}
	out, err := jsonvalue.FromGo(v)
	if err != nil {
		return jsonvalue.Null{}
	}
	return out
}
