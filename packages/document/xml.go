package document

import (
	"encoding/xml"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/xmlquery"
	"golang.org/x/net/html"
)

// XML is a parsed XML document.
type XML struct {
	root *xmlquery.Node

	// CSS selectors run against an html.Node mirror of the tree, built on
	// first use. Element and attribute names are lowercased in the mirror.
	mirror  *html.Node
	mirrors map[*html.Node]*xmlquery.Node
}

var _ Document = (*XML)(nil)

// ParseXML parses a well-formed XML document. With WithSuppressErrors the
// parser tolerates unclosed elements and HTML entities.
func ParseXML(markup string, opts ...Option) (*XML, error) {
	o := buildOptions(opts)

	var (
		root *xmlquery.Node
		err  error
	)
	if o.suppressErrors {
		root, err = xmlquery.ParseWithOptions(strings.NewReader(markup), xmlquery.ParserOptions{
			Decoder: &xmlquery.DecoderOptions{
				Strict:    false,
				AutoClose: xml.HTMLAutoClose,
				Entity:    xml.HTMLEntity,
			},
		})
	} else {
		root, err = xmlquery.Parse(strings.NewReader(markup))
	}
	if err != nil {
		return nil, &ParseError{Kind: KindXML, Err: err}
	}
	if !hasElement(root) {
		return nil, &ParseError{Kind: KindXML, Err: errNoRootElement}
	}
	return &XML{root: root}, nil
}

type parseErr string

func (e parseErr) Error() string { return string(e) }

const errNoRootElement = parseErr("document has no root element")

func hasElement(root *xmlquery.Node) bool {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return true
		}
	}
	return false
}

func (d *XML) Kind() Kind {
	return KindXML
}

func (d *XML) XPath(expr string) ([]Node, error) {
	compiled, err := compileXPath(expr, xmlquery.CreateXPathNavigator(d.root))
	if err != nil {
		return nil, err
	}
	found := xmlquery.QuerySelectorAll(d.root, compiled)
	out := make([]Node, len(found))
	for i, n := range found {
		out[i] = xmlNode{n}
	}
	return out, nil
}

func (d *XML) Select(css string) ([]Node, error) {
	sel, err := cascadia.Compile(css)
	if err != nil {
		return nil, &QueryError{Query: css, Err: err}
	}
	if d.mirror == nil {
		d.mirrors = make(map[*html.Node]*xmlquery.Node)
		d.mirror = d.buildMirror(d.root)
	}

	var out []Node
	for _, m := range sel.MatchAll(d.mirror) {
		if n, ok := d.mirrors[m]; ok {
			out = append(out, xmlNode{n})
		}
	}
	return out, nil
}

func (d *XML) buildMirror(n *xmlquery.Node) *html.Node {
	var m *html.Node
	switch n.Type {
	case xmlquery.DocumentNode:
		m = &html.Node{Type: html.DocumentNode}
	case xmlquery.ElementNode:
		m = &html.Node{Type: html.ElementNode, Data: strings.ToLower(n.Data)}
		for _, a := range n.Attr {
			m.Attr = append(m.Attr, html.Attribute{Key: strings.ToLower(a.Name.Local), Val: a.Value})
		}
	case xmlquery.TextNode, xmlquery.CharDataNode:
		m = &html.Node{Type: html.TextNode, Data: n.Data}
	case xmlquery.CommentNode:
		m = &html.Node{Type: html.CommentNode, Data: n.Data}
	default:
		return nil
	}
	d.mirrors[m] = n

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := d.buildMirror(c); child != nil {
			m.AppendChild(child)
		}
	}
	return m
}

type xmlNode struct {
	n *xmlquery.Node
}

func (n xmlNode) TextContent() string {
	return n.n.InnerText()
}

func (n xmlNode) ChildCount() int {
	count := 0
	for c := n.n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

func (n xmlNode) Attr(name string) (string, bool) {
	for _, a := range n.n.Attr {
		if a.Name.Local == name || qualified(a.Name) == name {
			return a.Value, true
		}
	}
	return "", false
}

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}
