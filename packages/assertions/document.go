package assertions

import (
	"strings"

	"github.com/abdul-hamid-achik/hitassert/packages/document"
)

// anchorsXPath selects every link that carries an href.
const anchorsXPath = "//a[@href]"

// Document runs assertions against a parsed HTML or XML document. A Document
// whose markup failed to parse has already reported the failure and ignores
// every later call.
type Document struct {
	r   Reporter
	doc document.Document
}

// NewHTML parses markup as HTML.
func NewHTML(r Reporter, markup string, opts ...document.Option) *Document {
	doc, err := document.ParseHTML(markup, opts...)
	if err != nil {
		r.Fail(failErr(ParseError, err))
		return &Document{r: r}
	}
	return &Document{r: r, doc: doc}
}

// NewXML parses markup as XML. Pass document.WithSuppressErrors(true) to
// accept sloppy markup.
func NewXML(r Reporter, markup string, opts ...document.Option) *Document {
	doc, err := document.ParseXML(markup, opts...)
	if err != nil {
		r.Fail(failErr(ParseError, err))
		return &Document{r: r}
	}
	return &Document{r: r, doc: doc}
}

// NewDocument wraps an already parsed document.
func NewDocument(r Reporter, doc document.Document) *Document {
	return &Document{r: r, doc: doc}
}

// Query selects nodes with a CSS selector. Expressions starting with "/",
// "./" or "(" are treated as XPath.
func (d *Document) Query(query string) *NodeList {
	if isXPath(query) {
		return d.XPath(query)
	}
	if d.doc == nil {
		return &NodeList{r: d.r, query: query, inert: true}
	}
	nodes, err := d.doc.Select(query)
	return newNodeList(d.r, query, nodes, err)
}

// XPath selects nodes with an XPath expression.
func (d *Document) XPath(expr string) *NodeList {
	if d.doc == nil {
		return &NodeList{r: d.r, query: expr, inert: true}
	}
	nodes, err := d.doc.XPath(expr)
	return newNodeList(d.r, expr, nodes, err)
}

func isXPath(query string) bool {
	q := strings.TrimSpace(query)
	return strings.HasPrefix(q, "/") || strings.HasPrefix(q, "./") || strings.HasPrefix(q, "(")
}

// AnchorExists asserts that at least one <a> has an href with exactly the
// given path and fragment and a query string containing query. A nil fragment
// means the href has no "#" at all.
func (d *Document) AnchorExists(path string, query Params, fragment *string) {
	if d.doc == nil {
		return
	}
	report(d.r, d.anchorExists(path, query, fragment))
}

func (d *Document) anchorExists(path string, query Params, fragment *string) *Failure {
	expected := query.normalize()
	anchors, err := d.doc.XPath(anchorsXPath)
	if err != nil {
		return failErr(InvalidQuery, err)
	}
	for _, a := range anchors {
		href, _ := a.Attr("href")
		if parseHref(href).matches(path, expected, fragment) {
			return nil
		}
	}
	return failf(ValueMismatch, "Expected to find at least one <a> with href \"%s\"", buildHref(path, expected, fragment))
}

// AnchorNotExists asserts that no <a> matches the way AnchorExists would.
func (d *Document) AnchorNotExists(path string, query Params, fragment *string) {
	if d.doc == nil {
		return
	}
	report(d.r, d.anchorNotExists(path, query, fragment))
}

func (d *Document) anchorNotExists(path string, query Params, fragment *string) *Failure {
	expected := query.normalize()
	anchors, err := d.doc.XPath(anchorsXPath)
	if err != nil {
		return failErr(InvalidQuery, err)
	}
	for _, a := range anchors {
		href, _ := a.Attr("href")
		if parseHref(href).matches(path, expected, fragment) {
			return failf(ValueMismatch, "Expected to find no <a> with href \"%s\"", buildHref(path, expected, fragment))
		}
	}
	return nil
}
