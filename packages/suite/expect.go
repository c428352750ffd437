package suite

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/hitassert/packages/assertions"
	"github.com/abdul-hamid-achik/hitassert/packages/jsonvalue"
)

// subject is what a check's expectations run against. resp is nil for file
// and content subjects.
type subject struct {
	resp *assertions.Response
	doc  func() *assertions.Document
	json func() *assertions.JSON
}

// step is one façade call and the label it is reported under. A step with
// err set is recorded as failed without calling anything.
type step struct {
	label string
	run   func()
	err   error
}

// steps expands an expectation into its individual façade calls. Operand
// strings pass through resolve first.
func (e *Expect) steps(s *subject, resolve func(string) string) []step {
	var out []step
	add := func(label string, fn func()) {
		out = append(out, step{label: label, run: fn})
	}

	switch {
	case e.Status != nil:
		code := *e.Status
		add(fmt.Sprintf("status %d", code), func() { s.resp.Status(code) })

	case e.Header != nil:
		h := e.Header
		name := resolve(h.Name)
		if h.Equals != nil {
			v := resolve(*h.Equals)
			add(fmt.Sprintf("header %s equals %q", name, v), func() { s.resp.HeaderEquals(name, v) })
		}
		if h.NotEquals != nil {
			v := resolve(*h.NotEquals)
			add(fmt.Sprintf("header %s not equals %q", name, v), func() { s.resp.HeaderNotEquals(name, v) })
		}
		if h.Exists != nil {
			if *h.Exists {
				add("header "+name+" exists", func() { s.resp.HeaderExists(name) })
			} else {
				add("header "+name+" not exists", func() { s.resp.HeaderNotExists(name) })
			}
		}

	case e.Cookie != nil:
		c := e.Cookie
		name := resolve(c.Name)
		if c.Equals != nil {
			v := resolve(*c.Equals)
			add(fmt.Sprintf("cookie %s equals %q", name, v), func() { s.resp.CookieEquals(name, v) })
		}
		if c.NotEquals != nil {
			v := resolve(*c.NotEquals)
			add(fmt.Sprintf("cookie %s not equals %q", name, v), func() { s.resp.CookieNotEquals(name, v) })
		}
		if c.Exists != nil {
			if *c.Exists {
				add("cookie "+name+" exists", func() { s.resp.CookieExists(name) })
			} else {
				add("cookie "+name+" not exists", func() { s.resp.CookieNotExists(name) })
			}
		}

	case e.Content != nil:
		t := e.Content
		text := func(op string, p *string, fn func(string)) {
			if p != nil {
				v := resolve(*p)
				add(fmt.Sprintf("content %s %q", op, v), func() { fn(v) })
			}
		}
		text("equals", t.Equals, s.resp.ContentEquals)
		text("not equals", t.NotEquals, s.resp.ContentNotEquals)
		text("contains", t.Contains, s.resp.ContentContains)
		text("not contains", t.NotContains, s.resp.ContentNotContains)
		text("matches", t.Regex, s.resp.ContentRegex)
		text("not matches", t.NotRegex, s.resp.ContentNotRegex)

	case e.ContentType != nil:
		ct := resolve(*e.ContentType)
		add("content type "+ct, func() { s.resp.ContentType(ct) })

	case e.Redirect != nil:
		u := resolve(*e.Redirect)
		add("redirect to "+u, func() { s.resp.Redirect(u) })

	case e.Download != nil:
		name := resolve(*e.Download)
		add("download "+name, func() { s.resp.Download(name) })

	case e.IsJSON:
		add("is json", func() { s.resp.IsJSON() })

	case e.CSS != nil:
		out = append(out, e.CSS.steps("css", s, resolve, func(d *assertions.Document, q string) *assertions.NodeList {
			return d.Query(q)
		})...)

	case e.XPath != nil:
		out = append(out, e.XPath.steps("xpath", s, resolve, func(d *assertions.Document, q string) *assertions.NodeList {
			return d.XPath(q)
		})...)

	case e.JSON != nil:
		out = append(out, e.JSON.steps(s, resolve)...)

	case e.Anchor != nil:
		a := e.Anchor
		path := resolve(a.Path)
		var fragment *string
		if a.Fragment != nil {
			fragment = assertions.Fragment(resolve(*a.Fragment))
		}
		params := assertions.Params(a.Query)
		if a.Not {
			add("no anchor "+path, func() { s.doc().AnchorNotExists(path, params, fragment) })
		} else {
			add("anchor "+path, func() { s.doc().AnchorExists(path, params, fragment) })
		}
	}

	return out
}

func (n *NodeExpect) steps(kind string, s *subject, resolve func(string) string, find func(*assertions.Document, string) *assertions.NodeList) []step {
	var out []step
	query := resolve(n.Query)
	prefix := fmt.Sprintf("%s %q ", kind, query)
	add := func(label string, fn func(*assertions.NodeList)) {
		out = append(out, step{label: prefix + label, run: func() { fn(find(s.doc(), query)) }})
	}

	if n.Count != nil {
		c := *n.Count
		add("count "+strconv.Itoa(c), func(l *assertions.NodeList) { l.Count(c) })
	}
	if n.Exists != nil {
		if *n.Exists {
			add("exists", (*assertions.NodeList).Exists)
		} else {
			add("not exists", (*assertions.NodeList).NotExists)
		}
	}
	if n.ChildrenCount != nil {
		c := *n.ChildrenCount
		add("children count "+strconv.Itoa(c), func(l *assertions.NodeList) { l.ChildrenCount(c) })
	}
	if n.Empty != nil {
		if *n.Empty {
			add("empty", (*assertions.NodeList).Empty)
		} else {
			add("not empty", (*assertions.NodeList).NotEmpty)
		}
	}

	text := func(op string, p *string, fn func(*assertions.NodeList, string)) {
		if p != nil {
			v := resolve(*p)
			add(fmt.Sprintf("%s %q", op, v), func(l *assertions.NodeList) { fn(l, v) })
		}
	}
	text("text equals", n.Equals, (*assertions.NodeList).TextEquals)
	text("text not equals", n.NotEquals, (*assertions.NodeList).TextNotEquals)
	text("text contains", n.Contains, (*assertions.NodeList).TextContains)
	text("text not contains", n.NotContains, (*assertions.NodeList).TextNotContains)
	text("matches", n.Regex, (*assertions.NodeList).MatchesRegex)
	text("not matches", n.NotRegex, (*assertions.NodeList).NotMatchesRegex)

	return out
}

var jsonKinds = map[string][2]func(*assertions.JSON, string){
	"null":    {(*assertions.JSON).Null, (*assertions.JSON).NotNull},
	"boolean": {(*assertions.JSON).Boolean, (*assertions.JSON).NotBoolean},
	"number":  {(*assertions.JSON).Number, (*assertions.JSON).NotNumber},
	"string":  {(*assertions.JSON).String, (*assertions.JSON).NotString},
	"array":   {(*assertions.JSON).Array, (*assertions.JSON).NotArray},
	"object":  {(*assertions.JSON).Object, (*assertions.JSON).NotObject},
}

func (j *JSONExpect) steps(s *subject, resolve func(string) string) []step {
	var out []step
	path := resolve(j.Path)
	prefix := fmt.Sprintf("json %q ", path)
	add := func(label string, fn func(*assertions.JSON)) {
		out = append(out, step{label: prefix + label, run: func() { fn(s.json()) }})
	}

	if j.Count != nil {
		c := *j.Count
		add("count "+strconv.Itoa(c), func(a *assertions.JSON) { a.Count(path, c) })
	}
	if j.Exists != nil {
		if *j.Exists {
			add("exists", func(a *assertions.JSON) { a.Exists(path) })
		} else {
			add("not exists", func(a *assertions.JSON) { a.NotExists(path) })
		}
	}
	if j.Empty != nil {
		if *j.Empty {
			add("empty", func(a *assertions.JSON) { a.Empty(path) })
		} else {
			add("not empty", func(a *assertions.JSON) { a.NotEmpty(path) })
		}
	}

	value := func(op string, node *yaml.Node, fn func(*assertions.JSON, string, any)) {
		if !present(node) {
			return
		}
		v, err := decodeOperand(node, resolve)
		if err != nil {
			out = append(out, step{label: prefix + op, err: err})
			return
		}
		label := op
		if jv, err := jsonvalue.FromGo(v); err == nil {
			label += " " + jsonvalue.Encode(jv)
		}
		add(label, func(a *assertions.JSON) { fn(a, path, v) })
	}
	value("equals", &j.Equals, (*assertions.JSON).Equals)
	value("not equals", &j.NotEquals, (*assertions.JSON).NotEquals)
	value("contains", &j.Contains, (*assertions.JSON).Contains)
	value("not contains", &j.NotContains, (*assertions.JSON).NotContains)

	if j.Regex != nil {
		p := resolve(*j.Regex)
		add(fmt.Sprintf("matches %q", p), func(a *assertions.JSON) { a.MatchesRegex(path, p) })
	}
	if j.NotRegex != nil {
		p := resolve(*j.NotRegex)
		add(fmt.Sprintf("not matches %q", p), func(a *assertions.JSON) { a.NotMatchesRegex(path, p) })
	}

	if fns, ok := jsonKinds[j.Type]; ok {
		add("is "+j.Type, func(a *assertions.JSON) { fns[0](a, path) })
	}
	if fns, ok := jsonKinds[j.NotType]; ok {
		add("is not "+j.NotType, func(a *assertions.JSON) { fns[1](a, path) })
	}

	return out
}

// decodeOperand turns a YAML operand into plain Go values, resolving
// placeholders in every string scalar.
func decodeOperand(node *yaml.Node, resolve func(string) string) (any, error) {
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return resolveValue(v, resolve), nil
}

func resolveValue(v any, resolve func(string) string) any {
	switch val := v.(type) {
	case string:
		return resolve(val)
	case []any:
		for i := range val {
			val[i] = resolveValue(val[i], resolve)
		}
		return val
	case map[string]any:
		for k := range val {
			val[k] = resolveValue(val[k], resolve)
		}
		return val
	}
	return v
}
