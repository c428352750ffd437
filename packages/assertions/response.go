package assertions

import (
	"mime"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/abdul-hamid-achik/hitassert/packages/document"
)

// ResponseReader is the read access Response needs to an HTTP response.
type ResponseReader interface {
	StatusCode() int
	// HeaderValues returns every value of the named header, matched case-insensitively.
	HeaderValues(name string) []string
	BodyBytes() []byte
}

// Response runs assertions against an HTTP response.
type Response struct {
	r       Reporter
	resp    ResponseReader
	docOpts []document.Option

	doc  *Document
	json *JSON
}

// NewResponse wraps resp. opts are passed to the XML or HTML parser used by Document.
func NewResponse(r Reporter, resp ResponseReader, opts ...document.Option) *Response {
	return &Response{r: r, resp: resp, docOpts: opts}
}

func (a *Response) body() string {
	return string(a.resp.BodyBytes())
}

func (a *Response) Status(status int) {
	report(a.r, a.status(status))
}

func (a *Response) status(status int) *Failure {
	if actual := a.resp.StatusCode(); actual != status {
		return failf(ValueMismatch, "Expected the response to have the status %d, actual: %d", status, actual)
	}
	return nil
}

func (a *Response) OK() {
	a.Status(200)
}

func (a *Response) NotFound() {
	a.Status(404)
}

// HeaderEquals asserts that one of the values of header equals value.
func (a *Response) HeaderEquals(header, value string) {
	report(a.r, a.headerEquals(header, value))
}

func (a *Response) headerEquals(header, value string) *Failure {
	values := a.resp.HeaderValues(header)
	for _, v := range values {
		if v == value {
			return nil
		}
	}
	return failf(ValueMismatch, "Expected the response to have the header \"%s\" with value \"%s\", actual: \"%s\"", header, value, strings.Join(values, `", "`))
}

// HeaderNotEquals asserts that no value of header equals value.
func (a *Response) HeaderNotEquals(header, value string) {
	for _, v := range a.resp.HeaderValues(header) {
		if v == value {
			a.r.Fail(failf(ValueMismatch, "Expected the response not to have the header \"%s\" with value \"%s\"", header, value))
			return
		}
	}
	a.r.Pass()
}

func (a *Response) HeaderExists(header string) {
	report(a.r, a.headerExists(header))
}

func (a *Response) headerExists(header string) *Failure {
	if len(a.resp.HeaderValues(header)) == 0 {
		return failf(NotFound, "Expected the response to have the header \"%s\"", header)
	}
	return nil
}

func (a *Response) HeaderNotExists(header string) {
	if len(a.resp.HeaderValues(header)) > 0 {
		a.r.Fail(failf(ValueMismatch, "Expected the response not to have the header \"%s\"", header))
		return
	}
	a.r.Pass()
}

// ContentType asserts that a Content-Type value has the media type of
// contentType. Parameters such as charset are ignored on both sides.
func (a *Response) ContentType(contentType string) {
	report(a.r, a.contentType(contentType))
}

func (a *Response) contentType(contentType string) *Failure {
	want := mediaType(contentType)
	values := a.resp.HeaderValues("Content-Type")
	for _, v := range values {
		if mediaType(v) == want {
			return nil
		}
	}
	return failf(ValueMismatch, "Expected the response to have the header \"%s\" with value \"%s\", actual: \"%s\"", "Content-Type", contentType, strings.Join(values, `", "`))
}

func mediaType(v string) string {
	if mt, _, err := mime.ParseMediaType(v); err == nil {
		return mt
	}
	mt, _, _ := strings.Cut(v, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

var paramSep = regexp.MustCompile(`\s*;\s*`)

func splitParams(v string) []string {
	var out []string
	for _, p := range paramSep.Split(v, -1) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// cookies parses the name and value of every Set-Cookie header. The first
// occurrence of a name wins.
func (a *Response) cookies() map[string]string {
	out := make(map[string]string)
	for _, header := range a.resp.HeaderValues("Set-Cookie") {
		parts := splitParams(header)
		if len(parts) == 0 {
			continue
		}
		name, value, _ := strings.Cut(parts[0], "=")
		if _, seen := out[name]; !seen {
			out[name] = value
		}
	}
	return out
}

func (a *Response) CookieEquals(name, value string) {
	if v, ok := a.cookies()[name]; !ok || v != value {
		a.r.Fail(failf(ValueMismatch, "Expected the response to have the cookie \"%s\" with the value \"%s\"", name, value))
		return
	}
	a.r.Pass()
}

func (a *Response) CookieNotEquals(name, value string) {
	if v, ok := a.cookies()[name]; ok && v == value {
		a.r.Fail(failf(ValueMismatch, "Expected the response not to have the cookie \"%s\" with the value \"%s\"", name, value))
		return
	}
	a.r.Pass()
}

func (a *Response) CookieExists(name string) {
	if _, ok := a.cookies()[name]; !ok {
		a.r.Fail(failf(NotFound, "Expected the response to have the cookie \"%s\"", name))
		return
	}
	a.r.Pass()
}

func (a *Response) CookieNotExists(name string) {
	if _, ok := a.cookies()[name]; ok {
		a.r.Fail(failf(ValueMismatch, "Expected the response not to have the cookie \"%s\"", name))
		return
	}
	a.r.Pass()
}

// Redirect asserts a 201 or 3xx status and a Location header equal to url.
func (a *Response) Redirect(url string) {
	status := a.resp.StatusCode()
	if status != 201 && (status < 300 || status >= 400) {
		a.r.Fail(failf(ValueMismatch, "Expected the response to have the status 201 or 3xx, actual: %d", status))
		return
	}
	report(a.r, a.headerEquals("Location", url))
}

// Download asserts an attachment Content-Disposition. When name is not empty
// the filename parameter must equal it.
func (a *Response) Download(name string) {
	report(a.r, a.download(name))
}

func (a *Response) download(name string) *Failure {
	if f := a.headerExists("Content-Disposition"); f != nil {
		return f
	}
	parts := splitParams(a.resp.HeaderValues("Content-Disposition")[0])
	var dispType string
	if len(parts) > 0 {
		dispType = parts[0]
	}
	if dispType != "attachment" {
		return failf(ValueMismatch, "Expected the response to have the Content-Disposition header to be attachment, actual: %s", dispType)
	}
	if name == "" {
		return nil
	}
	for _, part := range parts {
		key, value, ok := strings.Cut(part, "=")
		if key != "filename" || !ok {
			continue
		}
		filename := strings.Trim(value, `"`)
		if filename != name {
			return failf(ValueMismatch, "Expected the response to download a file \"%s\", actual: \"%s\"", name, filename)
		}
		return nil
	}
	return failf(NotFound, "Expected the response to download a file \"%s\"", name)
}

func (a *Response) ContentEquals(content string) {
	if actual := a.body(); actual != content {
		a.r.Fail(failf(ValueMismatch, "Expected the response to have the content \"%s\", actual: \"%s\"", content, actual))
		return
	}
	a.r.Pass()
}

func (a *Response) ContentNotEquals(content string) {
	if a.body() == content {
		a.r.Fail(failf(ValueMismatch, "Expected the response not to have the content \"%s\"", content))
		return
	}
	a.r.Pass()
}

func (a *Response) ContentContains(content string) {
	if actual := a.body(); !strings.Contains(actual, content) {
		a.r.Fail(failf(ValueMismatch, "Expected the response to contain the content \"%s\", actual: \"%s\"", content, actual))
		return
	}
	a.r.Pass()
}

func (a *Response) ContentNotContains(content string) {
	if actual := a.body(); strings.Contains(actual, content) {
		a.r.Fail(failf(ValueMismatch, "Expected the response not to contain the content \"%s\", actual: \"%s\"", content, actual))
		return
	}
	a.r.Pass()
}

// ContentRegex asserts that the body matches pattern.
func (a *Response) ContentRegex(pattern string) {
	a.contentRegex(pattern, true)
}

// ContentNotRegex asserts that the body does not match pattern.
func (a *Response) ContentNotRegex(pattern string) {
	a.contentRegex(pattern, false)
}

func (a *Response) contentRegex(pattern string, want bool) {
	re, err := compileRegex(pattern)
	if err != nil {
		a.r.Fail(failErr(InvalidQuery, err))
		return
	}
	actual := a.body()
	if re.MatchString(actual) == want {
		a.r.Pass()
		return
	}
	if want {
		a.r.Fail(failf(ValueMismatch, "Expected the response to match the regular expression \"%s\", actual: \"%s\"", pattern, actual))
		return
	}
	a.r.Fail(failf(ValueMismatch, "Expected the response not to match the regular expression \"%s\", actual: \"%s\"", pattern, actual))
}

// IsJSON asserts an application/json content type and a well-formed body.
func (a *Response) IsJSON() {
	if f := a.contentType("application/json"); f != nil {
		a.r.Fail(f)
		return
	}
	if !gjson.ValidBytes(a.resp.BodyBytes()) {
		a.r.Fail(failf(ParseError, "Expected the response to have a valid JSON"))
		return
	}
	a.r.Pass()
}

func (a *Response) firstContentType() string {
	values := a.resp.HeaderValues("Content-Type")
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Document parses the body as HTML or XML depending on the Content-Type. Any
// other content type is reported and an inert Document is returned.
func (a *Response) Document() *Document {
	if a.doc != nil {
		return a.doc
	}
	ct := a.firstContentType()
	switch mediaType(ct) {
	case "text/html":
		a.doc = NewHTML(a.r, a.body(), a.docOpts...)
	case "text/xml":
		a.doc = NewXML(a.r, a.body(), a.docOpts...)
	default:
		a.r.Fail(failf(WrongType, "Expected the response to have content-type of either \"text/html\" or \"text/xml\", actual: \"%s\"", ct))
		return &Document{r: a.r}
	}
	return a.doc
}

// JSON parses the body as JSON when the Content-Type is application/json.
// Any other content type is reported and an inert JSON is returned.
func (a *Response) JSON() *JSON {
	if a.json != nil {
		return a.json
	}
	ct := a.firstContentType()
	if mediaType(ct) != "application/json" {
		a.r.Fail(failf(WrongType, "Expected the response to have content-type \"application/json\", actual: \"%s\"", ct))
		return &JSON{r: a.r}
	}
	a.json = NewJSON(a.r, a.body())
	return a.json
}
