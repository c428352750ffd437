package http

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned by BodyJSON when the body does not parse.
var ErrInvalidJSON = errors.New("response body is not valid JSON")

// Response is a fully read HTTP response. It satisfies
// assertions.ResponseReader.
type Response struct {
	Code     int
	Status   string
	Headers  http.Header
	Body     []byte
	Duration time.Duration
}

// FromStdlib reads resp.Body to completion and closes it.
func FromStdlib(resp *http.Response) (*Response, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		Code:    resp.StatusCode,
		Status:  resp.Status,
		Headers: resp.Header.Clone(),
		Body:    body,
	}, nil
}

// FromRecorder snapshots what a handler wrote into rec.
func FromRecorder(rec *httptest.ResponseRecorder) *Response {
	result := rec.Result()
	return &Response{
		Code:    result.StatusCode,
		Status:  result.Status,
		Headers: result.Header.Clone(),
		Body:    bytes.Clone(rec.Body.Bytes()),
	}
}

func (r *Response) StatusCode() int {
	return r.Code
}

// HeaderValues returns every value of the named header in received order.
// Names match case-insensitively, including keys that were stored without
// canonicalization.
func (r *Response) HeaderValues(name string) []string {
	if values, ok := r.Headers[http.CanonicalHeaderKey(name)]; ok {
		return values
	}
	var out []string
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			out = append(out, v...)
		}
	}
	return out
}

func (r *Response) BodyBytes() []byte {
	return r.Body
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// BodyJSON decodes the body into plain Go values.
func (r *Response) BodyJSON() (any, error) {
	if !gjson.ValidBytes(r.Body) {
		return nil, ErrInvalidJSON
	}
	return gjson.ParseBytes(r.Body).Value(), nil
}

// Header returns the first value of the named header, or "".
func (r *Response) Header(key string) string {
	values := r.HeaderValues(key)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

// MediaType is the Content-Type without parameters, lowercased.
func (r *Response) MediaType() string {
	ct := r.ContentType()
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	mt, _, _ := strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

func (r *Response) IsJSON() bool {
	return r.MediaType() == "application/json"
}

func (r *Response) IsSuccess() bool {
	return r.Code >= 200 && r.Code < 300
}

func (r *Response) IsRedirect() bool {
	return r.Code >= 300 && r.Code < 400
}

func (r *Response) IsClientError() bool {
	return r.Code >= 400 && r.Code < 500
}

func (r *Response) IsServerError() bool {
	return r.Code >= 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}

