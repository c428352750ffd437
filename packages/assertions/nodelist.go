package assertions

import (
	"strings"

	"github.com/abdul-hamid-achik/hitassert/packages/document"
)

// NodeList holds the nodes matched by one CSS selector or XPath query.
// Text and children assertions first require at least one match.
type NodeList struct {
	r     Reporter
	query string
	nodes []document.Node
	err   error
	inert bool
}

func newNodeList(r Reporter, query string, nodes []document.Node, err error) *NodeList {
	return &NodeList{r: r, query: query, nodes: nodes, err: err}
}

// Query returns the selector or expression the list was produced by.
func (l *NodeList) Query() string {
	return l.query
}

// Len returns the number of matched nodes.
func (l *NodeList) Len() int {
	return len(l.nodes)
}

// Texts returns the text content of every matched node.
func (l *NodeList) Texts() []string {
	texts := make([]string, len(l.nodes))
	for i, n := range l.nodes {
		texts[i] = n.TextContent()
	}
	return texts
}

func (l *NodeList) check(fn func() *Failure) {
	if l.inert {
		return
	}
	if l.err != nil {
		l.r.Fail(failErr(InvalidQuery, l.err))
		return
	}
	report(l.r, fn())
}

func (l *NodeList) notFound() *Failure {
	return failf(NotFound, "Expected to find at least one element matching the query \"%s\"", l.query)
}

func (l *NodeList) childrenCount() (int, *Failure) {
	if len(l.nodes) == 0 {
		return 0, l.notFound()
	}
	total := 0
	for _, n := range l.nodes {
		total += n.ChildCount()
	}
	return total, nil
}

func (l *NodeList) Count(n int) {
	l.check(func() *Failure {
		if len(l.nodes) != n {
			return failf(CountMismatch, "Expected to find %d elements matching the query \"%s\", actual: %d", n, l.query, len(l.nodes))
		}
		return nil
	})
}

func (l *NodeList) Exists() {
	l.check(func() *Failure {
		if len(l.nodes) == 0 {
			return l.notFound()
		}
		return nil
	})
}

func (l *NodeList) NotExists() {
	l.Count(0)
}

// ChildrenCount asserts that the matched nodes have n direct children in
// total. Text nodes count as children.
func (l *NodeList) ChildrenCount(n int) {
	l.check(func() *Failure {
		actual, f := l.childrenCount()
		if f != nil {
			return f
		}
		if actual != n {
			return failf(CountMismatch, "Expected to find %d child elements for the query \"%s\", actual: %d", n, l.query, actual)
		}
		return nil
	})
}

// Empty asserts that the matched nodes have no children.
func (l *NodeList) Empty() {
	l.ChildrenCount(0)
}

func (l *NodeList) NotEmpty() {
	l.check(func() *Failure {
		actual, f := l.childrenCount()
		if f != nil {
			return f
		}
		if actual == 0 {
			return failf(CountMismatch, "Expected to find at least one child element matching the query \"%s\"", l.query)
		}
		return nil
	})
}

// TextEquals asserts that at least one node has exactly the text s.
func (l *NodeList) TextEquals(s string) {
	l.check(func() *Failure {
		if len(l.nodes) == 0 {
			return l.notFound()
		}
		for _, text := range l.Texts() {
			if text == s {
				return nil
			}
		}
		return failf(ValueMismatch, "Expected to find at least one element matching the query \"%s\" with the text \"%s\"", l.query, s)
	})
}

// TextNotEquals asserts that no node has exactly the text s.
func (l *NodeList) TextNotEquals(s string) {
	l.check(func() *Failure {
		if len(l.nodes) == 0 {
			return l.notFound()
		}
		for _, text := range l.Texts() {
			if text == s {
				return failf(ValueMismatch, "Expected to find no elements matching the query \"%s\" with the text \"%s\"", l.query, s)
			}
		}
		return nil
	})
}

// TextContains asserts that the text of at least one node contains s.
func (l *NodeList) TextContains(s string) {
	l.check(func() *Failure {
		if len(l.nodes) == 0 {
			return l.notFound()
		}
		for _, text := range l.Texts() {
			if strings.Contains(text, s) {
				return nil
			}
		}
		return failf(ValueMismatch, "Expected to find at least one element matching the query \"%s\" containing the text \"%s\"", l.query, s)
	})
}

// TextNotContains asserts that the text of no node contains s.
func (l *NodeList) TextNotContains(s string) {
	l.check(func() *Failure {
		if len(l.nodes) == 0 {
			return l.notFound()
		}
		for _, text := range l.Texts() {
			if strings.Contains(text, s) {
				return failf(ValueMismatch, "Expected to find no elements matching the query \"%s\" containing the text \"%s\"", l.query, s)
			}
		}
		return nil
	})
}

// MatchesRegex asserts that the text of every node matches pattern.
func (l *NodeList) MatchesRegex(pattern string) {
	l.matchRegex(pattern, true)
}

// NotMatchesRegex asserts that the text of no node matches pattern.
func (l *NodeList) NotMatchesRegex(pattern string) {
	l.matchRegex(pattern, false)
}

func (l *NodeList) matchRegex(pattern string, want bool) {
	l.check(func() *Failure {
		if len(l.nodes) == 0 {
			return l.notFound()
		}
		re, err := compileRegex(pattern)
		if err != nil {
			return failErr(InvalidQuery, err)
		}
		for _, text := range l.Texts() {
			if re.MatchString(text) != want {
				if want {
					return failf(ValueMismatch, "Expected all elements at the query \"%s\" to match the regular expression \"%s\"", l.query, pattern)
				}
				return failf(ValueMismatch, "Expected all elements at the query \"%s\" not to match the regular expression \"%s\"", l.query, pattern)
			}
		}
		return nil
	})
}
