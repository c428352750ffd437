package assertions

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitassert/packages/jsonquery"
	"github.com/abdul-hamid-achik/hitassert/packages/jsonvalue"
)

// JSON runs JSONPath assertions against a JSON document. Every assertion
// except Count and NotExists first requires the path to match something.
//
// Equals and Contains hold when at least one matched value satisfies them;
// NotEquals and NotContains hold when none does.
type JSON struct {
	r    Reporter
	root jsonvalue.Value
}

// NewJSON parses text. Malformed JSON is reported as a ParseError and the
// returned JSON ignores every later call.
func NewJSON(r Reporter, text string) *JSON {
	root, err := jsonvalue.Parse(text)
	if err != nil {
		r.Fail(failErr(ParseError, err))
		return &JSON{r: r}
	}
	return &JSON{r: r, root: root}
}

// NewJSONValue wraps an already decoded document.
func NewJSONValue(r Reporter, root jsonvalue.Value) *JSON {
	return &JSON{r: r, root: root}
}

// Root returns the parsed document, nil if parsing failed.
func (j *JSON) Root() jsonvalue.Value {
	return j.root
}

// Find returns the values matched by query. An invalid query is reported.
func (j *JSON) Find(query string) []jsonvalue.Value {
	if j.root == nil {
		return nil
	}
	matches, err := jsonquery.Evaluate(j.root, query)
	if err != nil {
		j.r.Fail(failErr(InvalidQuery, err))
		return nil
	}
	return matches
}

// check evaluates query and reports the result of fn. With nonEmpty set,
// an empty match set fails before fn runs.
func (j *JSON) check(query string, nonEmpty bool, fn func([]jsonvalue.Value) *Failure) {
	if j.root == nil {
		return
	}
	matches, err := jsonquery.Evaluate(j.root, query)
	if err != nil {
		j.r.Fail(failErr(InvalidQuery, err))
		return
	}
	if nonEmpty && len(matches) == 0 {
		j.r.Fail(failf(NotFound, "Expected to find at least one element matching the JSONPath \"%s\"", query))
		return
	}
	report(j.r, fn(matches))
}

func (j *JSON) Count(query string, n int) {
	j.check(query, false, func(matches []jsonvalue.Value) *Failure {
		if len(matches) != n {
			return failf(CountMismatch, "Expected to find %d elements matching the JSONPath \"%s\", actual: %d", n, query, len(matches))
		}
		return nil
	})
}

func (j *JSON) Exists(query string) {
	j.check(query, true, func([]jsonvalue.Value) *Failure { return nil })
}

func (j *JSON) NotExists(query string) {
	j.Count(query, 0)
}

// Empty asserts that every matched value is blank: null, false, 0, "", [] or {}.
func (j *JSON) Empty(query string) {
	j.check(query, true, func(matches []jsonvalue.Value) *Failure {
		for i, v := range matches {
			if !jsonvalue.IsBlank(v) {
				return failf(ValueMismatch, "Expected to find an empty element at position %d matching the JSONPath \"%s\", actual: %s", i, query, jsonvalue.Encode(v))
			}
		}
		return nil
	})
}

// NotEmpty asserts that no matched value is blank.
func (j *JSON) NotEmpty(query string) {
	j.check(query, true, func(matches []jsonvalue.Value) *Failure {
		for i, v := range matches {
			if jsonvalue.IsBlank(v) {
				return failf(ValueMismatch, "Expected to find a non-empty element at position %d matching the JSONPath \"%s\", actual: %s", i, query, jsonvalue.Encode(v))
			}
		}
		return nil
	})
}

// Equals asserts that at least one matched value deep-equals value. Go values
// are converted with jsonvalue.FromGo.
func (j *JSON) Equals(query string, value any) {
	j.check(query, true, func(matches []jsonvalue.Value) *Failure {
		expected, f := expectedValue(value)
		if f != nil {
			return f
		}
		if !anyMatch(matches, func(v jsonvalue.Value) bool { return jsonvalue.Equal(v, expected) }) {
			return failf(ValueMismatch, "Expected to find at least one element with the exact value %s matching the JSONPath \"%s\"", jsonvalue.Encode(expected), query)
		}
		return nil
	})
}

// NotEquals asserts that no matched value deep-equals value.
func (j *JSON) NotEquals(query string, value any) {
	j.check(query, true, func(matches []jsonvalue.Value) *Failure {
		expected, f := expectedValue(value)
		if f != nil {
			return f
		}
		if anyMatch(matches, func(v jsonvalue.Value) bool { return jsonvalue.Equal(v, expected) }) {
			return failf(ValueMismatch, "Expected to find none elements with the exact value %s matching the JSONPath \"%s\"", jsonvalue.Encode(expected), query)
		}
		return nil
	})
}

// Contains asserts that at least one matched value contains value: as a
// substring when both are strings, as a partial match when both are arrays or
// objects.
func (j *JSON) Contains(query string, value any) {
	j.check(query, true, func(matches []jsonvalue.Value) *Failure {
		needle, f := expectedValue(value)
		if f != nil {
			return f
		}
		if !anyMatch(matches, func(v jsonvalue.Value) bool { return jsonvalue.Contains(v, needle) }) {
			return failf(ValueMismatch, "Expected to find at least one element matching the JSONPath \"%s\" and containing %s", query, jsonvalue.Encode(needle))
		}
		return nil
	})
}

// NotContains asserts that no matched value contains value.
func (j *JSON) NotContains(query string, value any) {
	j.check(query, true, func(matches []jsonvalue.Value) *Failure {
		needle, f := expectedValue(value)
		if f != nil {
			return f
		}
		if anyMatch(matches, func(v jsonvalue.Value) bool { return jsonvalue.Contains(v, needle) }) {
			return failf(ValueMismatch, "Expected to find no elements matching the JSONPath \"%s\" and containing %s", query, jsonvalue.Encode(needle))
		}
		return nil
	})
}

// MatchesRegex asserts that every matched value is a string matching pattern.
func (j *JSON) MatchesRegex(query, pattern string) {
	j.matchRegex(query, pattern, true)
}

// NotMatchesRegex asserts that every matched value is a string not matching pattern.
func (j *JSON) NotMatchesRegex(query, pattern string) {
	j.matchRegex(query, pattern, false)
}

func (j *JSON) matchRegex(query, pattern string, want bool) {
	j.check(query, true, func(matches []jsonvalue.Value) *Failure {
		if f := allOfKind(matches, jsonvalue.KindString, query); f != nil {
			return f
		}
		re, err := compileRegex(pattern)
		if err != nil {
			return failErr(InvalidQuery, err)
		}
		for _, v := range matches {
			if re.MatchString(string(v.(jsonvalue.String))) != want {
				if want {
					return failf(ValueMismatch, "Expected all elements matching the JSONPath \"%s\" to match regular expression \"%s\"", query, pattern)
				}
				return failf(ValueMismatch, "Expected all elements matching the JSONPath \"%s\" not to match regular expression \"%s\"", query, pattern)
			}
		}
		return nil
	})
}

func (j *JSON) Null(query string)       { j.kind(query, jsonvalue.KindNull, true) }
func (j *JSON) NotNull(query string)    { j.kind(query, jsonvalue.KindNull, false) }
func (j *JSON) Boolean(query string)    { j.kind(query, jsonvalue.KindBoolean, true) }
func (j *JSON) NotBoolean(query string) { j.kind(query, jsonvalue.KindBoolean, false) }
func (j *JSON) Number(query string)     { j.kind(query, jsonvalue.KindNumber, true) }
func (j *JSON) NotNumber(query string)  { j.kind(query, jsonvalue.KindNumber, false) }
func (j *JSON) String(query string)     { j.kind(query, jsonvalue.KindString, true) }
func (j *JSON) NotString(query string)  { j.kind(query, jsonvalue.KindString, false) }
func (j *JSON) Array(query string)      { j.kind(query, jsonvalue.KindArray, true) }
func (j *JSON) NotArray(query string)   { j.kind(query, jsonvalue.KindArray, false) }
func (j *JSON) Object(query string)     { j.kind(query, jsonvalue.KindObject, true) }
func (j *JSON) NotObject(query string)  { j.kind(query, jsonvalue.KindObject, false) }

// kind asserts that all (want) or none (!want) of the matched values classify as k.
func (j *JSON) kind(query string, k jsonvalue.Kind, want bool) {
	j.check(query, true, func(matches []jsonvalue.Value) *Failure {
		if want {
			return allOfKind(matches, k, query)
		}
		for _, v := range matches {
			if jsonvalue.Classify(v) == k {
				return failf(WrongType, "Expected all elements not to be %s for the JSONPath \"%s\"", k, query)
			}
		}
		return nil
	})
}

func allOfKind(matches []jsonvalue.Value, k jsonvalue.Kind, query string) *Failure {
	for _, v := range matches {
		if jsonvalue.Classify(v) != k {
			return failf(WrongType, "Expected all elements to be %s for the JSONPath \"%s\"", k, query)
		}
	}
	return nil
}

func anyMatch(values []jsonvalue.Value, pred func(jsonvalue.Value) bool) bool {
	for _, v := range values {
		if pred(v) {
			return true
		}
	}
	return false
}

func expectedValue(v any) (jsonvalue.Value, *Failure) {
	out, err := jsonvalue.FromGo(v)
	if err != nil {
		return nil, &Failure{Kind: ValueMismatch, Message: fmt.Sprintf("cannot compare against %T: %v", v, err), Err: err}
	}
	return out, nil
}
