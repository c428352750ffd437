// Package document parses HTML and XML markup and runs CSS selector and XPath
// queries against the result.
package document

import (
	"errors"
	"fmt"

	"github.com/antchfx/xpath"
)

// Node is a matched element (or other node) of a parsed document.
type Node interface {
	// TextContent returns the text of all descendant text nodes in document order.
	TextContent() string
	// ChildCount returns the number of direct child nodes, text nodes included.
	ChildCount() int
	// Attr returns the value of the named attribute.
	Attr(name string) (string, bool)
}

// Document is a parsed HTML or XML document.
type Document interface {
	Kind() Kind
	// Select returns the nodes matching a CSS selector, in document order.
	Select(css string) ([]Node, error)
	// XPath returns the nodes matching an XPath expression, in document order.
	XPath(expr string) ([]Node, error)
}

// Kind identifies the markup language of a Document.
type Kind int

const (
	KindHTML Kind = iota
	KindXML
)

func (k Kind) String() string {
	if k == KindXML {
		return "xml"
	}
	return "html"
}

// ErrNotNodeSet is wrapped in a QueryError for XPath expressions that
// evaluate to a number, string or boolean, such as count(//p).
var ErrNotNodeSet = errors.New("expression does not select nodes")

// compileXPath compiles expr and rejects expressions whose result against nav
// is not a node-set.
func compileXPath(expr string, nav xpath.NodeNavigator) (*xpath.Expr, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, &QueryError{Query: expr, Err: err}
	}
	if _, ok := compiled.Evaluate(nav).(*xpath.NodeIterator); !ok {
		return nil, &QueryError{Query: expr, Err: ErrNotNodeSet}
	}
	return compiled, nil
}

// QueryError reports a selector or expression the query engine rejected.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid query %q: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// ParseError reports markup that could not be parsed.
type ParseError struct {
	Kind Kind
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type options struct {
	suppressErrors bool
}

// Option configures parsing.
type Option func(*options)

// WithSuppressErrors makes the XML parser lenient: unclosed tags are closed
// automatically and HTML entities are accepted. HTML parsing never fails, so
// the option has no effect there.
func WithSuppressErrors(suppress bool) Option {
	return func(o *options) {
		o.suppressErrors = suppress
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
