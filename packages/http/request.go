package http

import (
	"encoding/base64"
	"net/url"
	"strings"
	"time"
)

type Request struct {
	Method      string
	URL         string
	Headers     map[string]string
	Body        string
	Timeout     time.Duration
	Auth        *Auth
	QueryParams map[string]string
}

// AuthType names how Auth.Params are applied to a request.
type AuthType string

const (
	AuthBasic       AuthType = "basic"
	AuthBearer      AuthType = "bearer"
	AuthAPIKey      AuthType = "api_key"
	AuthAPIKeyQuery AuthType = "api_key_query"
)

// Auth holds credentials in the order the type expects them:
// basic is user, password; bearer is token; the api key types are name, value.
type Auth struct {
	Type   AuthType
	Params []string
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:      method,
		URL:         requestURL,
		Headers:     make(map[string]string),
		QueryParams: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

func (r *Request) SetBody(body string) *Request {
	r.Body = body
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

func (r *Request) SetQueryParam(key, value string) *Request {
	if r.QueryParams == nil {
		r.QueryParams = make(map[string]string)
	}
	r.QueryParams[key] = value
	return r
}

// HeaderValue looks a request header up case-insensitively.
func (r *Request) HeaderValue(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (r *Request) BuildURL() string {
	if len(r.QueryParams) == 0 {
		return r.URL
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}

	q := u.Query()
	for k, v := range r.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ApplyAuth folds Auth into headers or query parameters. Credentials with too
// few params are ignored.
func (r *Request) ApplyAuth() {
	if r.Auth == nil {
		return
	}

	params := r.Auth.Params
	switch r.Auth.Type {
	case AuthBasic:
		if len(params) >= 2 {
			encoded := base64.StdEncoding.EncodeToString([]byte(params[0] + ":" + params[1]))
			r.SetHeader("Authorization", "Basic "+encoded)
		}
	case AuthBearer:
		if len(params) >= 1 {
			r.SetHeader("Authorization", "Bearer "+params[0])
		}
	case AuthAPIKey:
		if len(params) >= 2 {
			r.SetHeader(params[0], params[1])
		}
	case AuthAPIKeyQuery:
		if len(params) >= 2 {
			r.SetQueryParam(params[0], params[1])
		}
	}
}
