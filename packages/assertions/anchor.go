package assertions

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/hitassert/packages/jsonvalue"
)

// Params is an expected query string. Values are strings, numbers, booleans,
// slices or nested maps; nested values map to bracketed keys such as a[b]=1
// and a[]=1. Scalars are compared in their string form.
type Params map[string]any

// Fragment returns a pointer to s, for the fragment argument of the anchor
// assertions. Fragment("") expects a bare trailing "#".
func Fragment(s string) *string {
	return &s
}

type href struct {
	path     string
	query    jsonvalue.Object
	fragment *string
}

// parseHref splits raw on the first "#" and then on the first "?".
func parseHref(raw string) href {
	var h href
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		frag := raw[i+1:]
		h.fragment = &frag
		raw = raw[:i]
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		h.query = parseQuery(raw[i+1:])
		raw = raw[:i]
	}
	h.path = raw
	return h
}

func (h href) matches(path string, query jsonvalue.Object, fragment *string) bool {
	if h.path != path {
		return false
	}
	if (h.fragment == nil) != (fragment == nil) {
		return false
	}
	if fragment != nil && *h.fragment != *fragment {
		return false
	}
	return querySubset(query, h.query)
}

// querySubset reports whether every key of expected is present in actual
// with the same shape. Only scalar and nested mapping are told apart, so an
// empty expected mapping is satisfied by any nested mapping under its key.
func querySubset(expected, actual jsonvalue.Object) bool {
	for _, m := range expected {
		got, ok := actual.Get(m.Key)
		if !ok {
			return false
		}
		want, nested := m.Value.(jsonvalue.Object)
		gotObj, gotNested := got.(jsonvalue.Object)
		if nested != gotNested {
			return false
		}
		if nested {
			if !querySubset(want, gotObj) {
				return false
			}
			continue
		}
		if !jsonvalue.Equal(m.Value, got) {
			return false
		}
	}
	return true
}

// buildHref renders the expected link for failure messages.
func buildHref(path string, query jsonvalue.Object, fragment *string) string {
	var b strings.Builder
	b.WriteString(path)
	if q := buildQuery(query); q != "" {
		b.WriteByte('?')
		b.WriteString(q)
	}
	if fragment != nil {
		b.WriteByte('#')
		b.WriteString(*fragment)
	}
	return b.String()
}

func buildQuery(query jsonvalue.Object) string {
	var pairs []string
	var walk func(prefix string, v jsonvalue.Value)
	walk = func(prefix string, v jsonvalue.Value) {
		if obj, ok := v.(jsonvalue.Object); ok {
			for _, m := range obj {
				walk(prefix+"["+m.Key+"]", m.Value)
			}
			return
		}
		s, _ := v.(jsonvalue.String)
		pairs = append(pairs, url.QueryEscape(prefix)+"="+url.QueryEscape(string(s)))
	}
	for _, m := range query {
		walk(m.Key, m.Value)
	}
	return strings.Join(pairs, "&")
}

// normalize converts p into the shape parseQuery produces: nested objects
// with string leaves. Map keys are sorted; nil values are dropped.
func (p Params) normalize() jsonvalue.Object {
	if len(p) == 0 {
		return jsonvalue.Object{}
	}
	return normalizeMap(map[string]any(p))
}

func normalizeMap(m map[string]any) jsonvalue.Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	obj := make(jsonvalue.Object, 0, len(keys))
	for _, k := range keys {
		if v, ok := normalizeParam(m[k]); ok {
			obj = append(obj, jsonvalue.Member{Key: k, Value: v})
		}
	}
	return obj
}

func normalizeParam(v any) (jsonvalue.Value, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case string:
		return jsonvalue.String(val), true
	case bool:
		if val {
			return jsonvalue.String("1"), true
		}
		return jsonvalue.String("0"), true
	case float64:
		return jsonvalue.String(strconv.FormatFloat(val, 'f', -1, 64)), true
	case float32:
		return jsonvalue.String(strconv.FormatFloat(float64(val), 'f', -1, 32)), true
	case Params:
		return normalizeMap(val), true
	case map[string]any:
		return normalizeMap(val), true
	case map[string]string:
		m := make(map[string]any, len(val))
		for k, s := range val {
			m[k] = s
		}
		return normalizeMap(m), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		obj := make(jsonvalue.Object, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if item, ok := normalizeParam(rv.Index(i).Interface()); ok {
				obj = append(obj, jsonvalue.Member{Key: strconv.Itoa(i), Value: item})
			}
		}
		return obj, true
	default:
		return jsonvalue.String(fmt.Sprint(v)), true
	}
}

// parseQuery decodes a query string with bracketed keys: a[b][c] builds
// nested maps and a[] appends the next integer index.
func parseQuery(raw string) jsonvalue.Object {
	root := newQueryNode()
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = unescape(key)
		value = unescape(value)

		name, segments := splitKey(key)
		if name == "" {
			continue
		}
		root.insert(append([]string{name}, segments...), value)
	}
	return root.object()
}

func unescape(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

// splitKey splits a[b][] into "a" and ["b", ""]. Text after the last closing
// bracket is ignored. An opening bracket without a closing one is kept as
// part of the name with "[" replaced by "_".
func splitKey(key string) (string, []string) {
	open := strings.IndexByte(key, '[')
	if open <= 0 {
		return key, nil
	}
	if !strings.Contains(key[open:], "]") {
		return strings.Replace(key, "[", "_", 1), nil
	}

	name := key[:open]
	var segments []string
	rest := key[open:]
	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		segments = append(segments, rest[1:end])
		rest = rest[end+1:]
	}
	return name, segments
}

type queryNode struct {
	keys   []string
	values map[string]any
	next   int
}

func newQueryNode() *queryNode {
	return &queryNode{values: make(map[string]any)}
}

func (n *queryNode) set(key string, v any) {
	if _, ok := n.values[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.values[key] = v
	if i, err := strconv.Atoi(key); err == nil && strconv.Itoa(i) == key && i >= n.next {
		n.next = i + 1
	}
}

func (n *queryNode) insert(path []string, value string) {
	cur := n
	for _, seg := range path[:len(path)-1] {
		if seg == "" {
			seg = strconv.Itoa(cur.next)
		}
		child, ok := cur.values[seg].(*queryNode)
		if !ok {
			child = newQueryNode()
			cur.set(seg, child)
		}
		cur = child
	}
	last := path[len(path)-1]
	if last == "" {
		last = strconv.Itoa(cur.next)
	}
	cur.set(last, value)
}

func (n *queryNode) object() jsonvalue.Object {
	obj := make(jsonvalue.Object, 0, len(n.keys))
	for _, k := range n.keys {
		switch v := n.values[k].(type) {
		case *queryNode:
			obj = append(obj, jsonvalue.Member{Key: k, Value: v.object()})
		case string:
			obj = append(obj, jsonvalue.Member{Key: k, Value: jsonvalue.String(v)})
		}
	}
	return obj
}
