package assertions

import (
	"fmt"
)

// Reporter receives the outcome of every assertion.
type Reporter interface {
	Pass()
	// Fail reports a failed assertion. Implementations may stop the calling
	// goroutine; assertions never do further work after calling it.
	Fail(f *Failure)
}

// Kind classifies a Failure.
type Kind int

const (
	// NotFound means a query matched nothing where at least one match was required.
	NotFound Kind = iota + 1
	// CountMismatch means the number of matches or children differs from the expected one.
	CountMismatch
	// ValueMismatch means a value, text or pattern check failed.
	ValueMismatch
	// WrongType means a matched value has the wrong JSON kind.
	WrongType
	// InvalidQuery means the selector, XPath, JSONPath or regular expression was rejected.
	InvalidQuery
	// ParseError means the document could not be parsed.
	ParseError
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case CountMismatch:
		return "count_mismatch"
	case ValueMismatch:
		return "value_mismatch"
	case WrongType:
		return "wrong_type"
	case InvalidQuery:
		return "invalid_query"
	case ParseError:
		return "parse_error"
	default:
		return "unknown"
	}
}

// Failure describes a failed assertion.
type Failure struct {
	Kind    Kind
	Message string
	// Err is the underlying error for InvalidQuery and ParseError failures.
	Err error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func failf(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func failErr(kind Kind, err error) *Failure {
	return &Failure{Kind: kind, Message: err.Error(), Err: err}
}

func report(r Reporter, f *Failure) {
	if f != nil {
		r.Fail(f)
		return
	}
	r.Pass()
}
