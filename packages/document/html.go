package document

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// HTML is a parsed HTML document.
type HTML struct {
	root *html.Node
	doc  *goquery.Document
}

var _ Document = (*HTML)(nil)

// ParseHTML parses markup with the HTML5 parsing algorithm. Malformed markup
// is repaired the way browsers do it, so options are accepted for symmetry
// with ParseXML and ignored.
func ParseHTML(markup string, _ ...Option) (*HTML, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, &ParseError{Kind: KindHTML, Err: err}
	}
	return &HTML{root: root, doc: goquery.NewDocumentFromNode(root)}, nil
}

func (d *HTML) Kind() Kind {
	return KindHTML
}

func (d *HTML) Select(css string) ([]Node, error) {
	sel, err := cascadia.Compile(css)
	if err != nil {
		return nil, &QueryError{Query: css, Err: err}
	}
	return wrapHTML(d.doc.FindMatcher(sel).Nodes), nil
}

func (d *HTML) XPath(expr string) ([]Node, error) {
	compiled, err := compileXPath(expr, htmlquery.CreateXPathNavigator(d.root))
	if err != nil {
		return nil, err
	}
	return wrapHTML(htmlquery.QuerySelectorAll(d.root, compiled)), nil
}

// Root returns the document node.
func (d *HTML) Root() *html.Node {
	return d.root
}

func wrapHTML(nodes []*html.Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = htmlNode{n}
	}
	return out
}

type htmlNode struct {
	n *html.Node
}

func (n htmlNode) TextContent() string {
	return htmlquery.InnerText(n.n)
}

func (n htmlNode) ChildCount() int {
	count := 0
	for c := n.n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

func (n htmlNode) Attr(name string) (string, bool) {
	for _, a := range n.n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}
