package suite

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/abdul-hamid-achik/hitassert/packages/http"
)

// extractor pulls capture values out of a check's subject. Sources are a
// gjson path into a JSON body, "status", or "header:<name>".
type extractor struct {
	resp *http.Response
	body []byte
	json gjson.Result
}

func newExtractor(resp *http.Response, body []byte) *extractor {
	e := &extractor{resp: resp, body: body}
	if gjson.ValidBytes(body) {
		e.json = gjson.ParseBytes(body)
	}
	return e
}

func (e *extractor) extract(source string) (any, bool) {
	switch {
	case source == "status":
		if e.resp == nil {
			return nil, false
		}
		return e.resp.StatusCode(), true
	case strings.HasPrefix(source, "header:"):
		if e.resp == nil {
			return nil, false
		}
		v := e.resp.Header(strings.TrimSpace(strings.TrimPrefix(source, "header:")))
		return v, v != ""
	case source == "body":
		if e.json.Exists() {
			return e.json.Value(), true
		}
		return string(e.body), true
	}

	if !e.json.Exists() {
		return nil, false
	}
	result := e.json.Get(source)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

// extractAll returns every capture that could be resolved and the names of
// those that could not.
func (e *extractor) extractAll(captures map[string]string) (map[string]any, []string) {
	values := make(map[string]any, len(captures))
	var missing []string
	for name, source := range captures {
		if v, ok := e.extract(source); ok {
			values[name] = v
		} else {
			missing = append(missing, name)
		}
	}
	return values, missing
}

// formatCapture renders numbers without a trailing .0 so captured ids
// substitute cleanly into URLs.
func formatCapture(v any) any {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return v
}
