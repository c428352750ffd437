package suite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Subject types for file and inline content checks.
const (
	TypeHTML = "html"
	TypeXML  = "xml"
	TypeJSON = "json"
)

// Suite is one YAML assertion file.
type Suite struct {
	Name    string         `yaml:"name"`
	Vars    map[string]any `yaml:"vars,omitempty"`
	WaitFor *WaitFor       `yaml:"wait_for,omitempty"`
	Checks  []*Check       `yaml:"checks"`

	// Path is where the suite was loaded from; relative file subjects
	// resolve against its directory.
	Path string `yaml:"-"`
}

// Check is a subject plus the expectations evaluated against it. Exactly one
// of Request, File or Content is set.
type Check struct {
	Name    string            `yaml:"name"`
	Tags    []string          `yaml:"tags,omitempty"`
	Skip    string            `yaml:"skip,omitempty"`
	Only    bool              `yaml:"only,omitempty"`
	Retry   int               `yaml:"retry,omitempty"`
	Request *Request          `yaml:"request,omitempty"`
	File    string            `yaml:"file,omitempty"`
	Content *string           `yaml:"content,omitempty"`
	Type    string            `yaml:"type,omitempty"`
	Expect  []*Expect         `yaml:"expect"`
	Capture map[string]string `yaml:"capture,omitempty"`
}

type Request struct {
	Method  string            `yaml:"method,omitempty"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Query   map[string]string `yaml:"query,omitempty"`
	Body    string            `yaml:"body,omitempty"`
	Auth    *Auth             `yaml:"auth,omitempty"`
	Timeout int               `yaml:"timeout,omitempty"` // milliseconds
}

type Auth struct {
	Type   string   `yaml:"type"`
	Params []string `yaml:"params"`
}

// Expect holds a single expectation; exactly one field is set.
type Expect struct {
	Status      *int          `yaml:"status,omitempty"`
	Header      *HeaderExpect `yaml:"header,omitempty"`
	Cookie      *HeaderExpect `yaml:"cookie,omitempty"`
	Content     *TextExpect   `yaml:"content,omitempty"`
	ContentType *string       `yaml:"content_type,omitempty"`
	Redirect    *string       `yaml:"redirect,omitempty"`
	Download    *string       `yaml:"download,omitempty"`
	IsJSON      bool          `yaml:"is_json,omitempty"`
	CSS         *NodeExpect   `yaml:"css,omitempty"`
	XPath       *NodeExpect   `yaml:"xpath,omitempty"`
	JSON        *JSONExpect   `yaml:"json,omitempty"`
	Anchor      *AnchorExpect `yaml:"anchor,omitempty"`
}

// HeaderExpect is shared by header and cookie expectations.
type HeaderExpect struct {
	Name      string  `yaml:"name"`
	Equals    *string `yaml:"equals,omitempty"`
	NotEquals *string `yaml:"not_equals,omitempty"`
	Exists    *bool   `yaml:"exists,omitempty"`
}

type TextExpect struct {
	Equals      *string `yaml:"equals,omitempty"`
	NotEquals   *string `yaml:"not_equals,omitempty"`
	Contains    *string `yaml:"contains,omitempty"`
	NotContains *string `yaml:"not_contains,omitempty"`
	Regex       *string `yaml:"regex,omitempty"`
	NotRegex    *string `yaml:"not_regex,omitempty"`
}

func (t *TextExpect) empty() bool {
	return t.Equals == nil && t.NotEquals == nil && t.Contains == nil &&
		t.NotContains == nil && t.Regex == nil && t.NotRegex == nil
}

type NodeExpect struct {
	TextExpect `yaml:",inline"`

	Query         string `yaml:"query"`
	Count         *int   `yaml:"count,omitempty"`
	Exists        *bool  `yaml:"exists,omitempty"`
	ChildrenCount *int   `yaml:"children_count,omitempty"`
	Empty         *bool  `yaml:"empty,omitempty"`
}

func (n *NodeExpect) empty() bool {
	return n.Count == nil && n.Exists == nil && n.ChildrenCount == nil &&
		n.Empty == nil && n.TextExpect.empty()
}

// JSONExpect keeps value operands as YAML nodes so an explicit null can be
// told apart from an absent key.
type JSONExpect struct {
	Path        string    `yaml:"path"`
	Count       *int      `yaml:"count,omitempty"`
	Exists      *bool     `yaml:"exists,omitempty"`
	Empty       *bool     `yaml:"empty,omitempty"`
	Equals      yaml.Node `yaml:"equals,omitempty"`
	NotEquals   yaml.Node `yaml:"not_equals,omitempty"`
	Contains    yaml.Node `yaml:"contains,omitempty"`
	NotContains yaml.Node `yaml:"not_contains,omitempty"`
	Regex       *string   `yaml:"regex,omitempty"`
	NotRegex    *string   `yaml:"not_regex,omitempty"`
	Type        string    `yaml:"type,omitempty"`
	NotType     string    `yaml:"not_type,omitempty"`
}

func (j *JSONExpect) empty() bool {
	return j.Count == nil && j.Exists == nil && j.Empty == nil &&
		!present(&j.Equals) && !present(&j.NotEquals) && !present(&j.Contains) &&
		!present(&j.NotContains) && j.Regex == nil && j.NotRegex == nil &&
		j.Type == "" && j.NotType == ""
}

// present reports whether the key was given at all; an explicit null is
// present.
func present(n *yaml.Node) bool {
	return n.Kind != 0
}

type AnchorExpect struct {
	Path     string         `yaml:"path,omitempty"`
	Query    map[string]any `yaml:"query,omitempty"`
	Fragment *string        `yaml:"fragment,omitempty"`
	Not      bool           `yaml:"not,omitempty"`
}

// Load reads and decodes a suite file. It does not validate.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	s.Path = path
	return s, nil
}

// Parse decodes a suite from YAML. Unknown keys are rejected.
func Parse(data []byte) (*Suite, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Suite
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty suite")
		}
		return nil, err
	}
	return &s, nil
}

// Dir is the directory relative file subjects are resolved against.
func (s *Suite) Dir() string {
	if s.Path == "" {
		return "."
	}
	return filepath.Dir(s.Path)
}

// ValidationError lists every structural problem found in a suite.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid suite:\n  " + strings.Join(e.Problems, "\n  ")
}

// Validate reports structural problems before anything runs.
func (s *Suite) Validate() error {
	v := &validator{}

	if len(s.Checks) == 0 {
		v.add("suite has no checks")
	}
	if s.WaitFor != nil {
		if s.WaitFor.URL == "" {
			v.add("wait_for has no url")
		}
		if s.WaitFor.Timeout < 0 || s.WaitFor.Interval < 0 {
			v.add("wait_for timeout and interval must not be negative")
		}
	}
	for i, c := range s.Checks {
		v.check(i, c)
	}

	if len(v.problems) > 0 {
		return &ValidationError{Problems: v.problems}
	}
	return nil
}

type validator struct {
	problems []string
}

func (v *validator) add(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) check(i int, c *Check) {
	if c == nil {
		v.add("check %d: empty", i+1)
		return
	}
	label := c.Label(i)

	subjects := 0
	if c.Request != nil {
		subjects++
		if c.Request.URL == "" {
			v.add("%s: request has no url", label)
		}
		if c.Request.Auth != nil && !validAuth(c.Request.Auth.Type) {
			v.add("%s: unknown auth type %q", label, c.Request.Auth.Type)
		}
	}
	if c.File != "" {
		subjects++
	}
	if c.Content != nil {
		subjects++
	}

	switch {
	case subjects == 0:
		v.add("%s: needs one of request, file or content", label)
	case subjects > 1:
		v.add("%s: request, file and content are mutually exclusive", label)
	}

	if c.Request == nil {
		switch c.Type {
		case TypeHTML, TypeXML, TypeJSON:
		case "":
			if subjects == 1 {
				v.add("%s: type is required for file and content subjects", label)
			}
		default:
			v.add("%s: unknown type %q", label, c.Type)
		}
	}

	if len(c.Expect) == 0 {
		v.add("%s: no expectations", label)
	}
	for j, e := range c.Expect {
		v.expect(fmt.Sprintf("%s: expect %d", label, j+1), c, e)
	}

	if c.Retry < 0 {
		v.add("%s: retry must not be negative", label)
	}
}

func (v *validator) expect(label string, c *Check, e *Expect) {
	if e == nil {
		v.add("%s: empty", label)
		return
	}

	kinds := e.kinds()
	if len(kinds) != 1 {
		v.add("%s: must set exactly one expectation, got %d", label, len(kinds))
		return
	}
	kind := kinds[0]

	switch kind {
	case "status", "header", "cookie", "content", "content_type", "redirect", "download", "is_json":
		if c.Request == nil {
			v.add("%s: %s needs a request subject", label, kind)
		}
	case "css", "xpath", "anchor":
		if c.Request == nil && c.Type == TypeJSON {
			v.add("%s: %s needs an html or xml subject", label, kind)
		}
	case "json":
		if c.Request == nil && c.Type != "" && c.Type != TypeJSON {
			v.add("%s: json needs a json subject", label)
		}
	}

	switch {
	case e.Header != nil:
		v.header(label, "header", e.Header)
	case e.Cookie != nil:
		v.header(label, "cookie", e.Cookie)
	case e.Content != nil && e.Content.empty():
		v.add("%s: content sets no assertion", label)
	case e.CSS != nil:
		v.node(label, "css", e.CSS)
	case e.XPath != nil:
		v.node(label, "xpath", e.XPath)
	case e.JSON != nil:
		v.json(label, e.JSON)
	}
}

func (v *validator) header(label, kind string, h *HeaderExpect) {
	if h.Name == "" {
		v.add("%s: %s has no name", label, kind)
	}
	if h.Equals == nil && h.NotEquals == nil && h.Exists == nil {
		v.add("%s: %s sets no assertion", label, kind)
	}
}

func (v *validator) node(label, kind string, n *NodeExpect) {
	if n.Query == "" {
		v.add("%s: %s has no query", label, kind)
	}
	if n.empty() {
		v.add("%s: %s sets no assertion", label, kind)
	}
}

func (v *validator) json(label string, j *JSONExpect) {
	if j.Path == "" {
		v.add("%s: json has no path", label)
	}
	if j.empty() {
		v.add("%s: json sets no assertion", label)
	}
	for _, t := range []string{j.Type, j.NotType} {
		if t != "" && !validJSONType(t) {
			v.add("%s: unknown json type %q", label, t)
		}
	}
}

// kinds lists the expectation keys that are set.
func (e *Expect) kinds() []string {
	var out []string
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(e.Status != nil, "status")
	add(e.Header != nil, "header")
	add(e.Cookie != nil, "cookie")
	add(e.Content != nil, "content")
	add(e.ContentType != nil, "content_type")
	add(e.Redirect != nil, "redirect")
	add(e.Download != nil, "download")
	add(e.IsJSON, "is_json")
	add(e.CSS != nil, "css")
	add(e.XPath != nil, "xpath")
	add(e.JSON != nil, "json")
	add(e.Anchor != nil, "anchor")
	return out
}

// Label names the check for reports, falling back to its position.
func (c *Check) Label(i int) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("check %d", i+1)
}

func validAuth(t string) bool {
	switch t {
	case "basic", "bearer", "api_key", "api_key_query":
		return true
	}
	return false
}

func validJSONType(t string) bool {
	switch t {
	case "null", "boolean", "number", "string", "array", "object":
		return true
	}
	return false
}
