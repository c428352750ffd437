package suite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/hitassert/packages/assertions"
	"github.com/abdul-hamid-achik/hitassert/packages/core/env"
	"github.com/abdul-hamid-achik/hitassert/packages/document"
	"github.com/abdul-hamid-achik/hitassert/packages/http"
)

// DefaultRetryDelay is the pause between attempts of a check with retry set.
const DefaultRetryDelay = time.Second

type Config struct {
	Timeout         time.Duration
	FollowRedirects bool
	MaxRedirects    int
	SkipTLSVerify   bool
	Proxy           string
	Headers         map[string]string
	RateLimit       float64
	Bail            bool
	SuppressErrors  bool
	NameFilter      string
	TagsFilter      []string
	RetryDelay      time.Duration
	Variables       map[string]any
	Logger          *zap.Logger
}

// Runner executes suites check by check. A Runner keeps captured values
// across RunFile calls; create one per independent run.
type Runner struct {
	client   *http.Client
	resolver *env.Resolver
	config   *Config
	logger   *zap.Logger
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOpts := []http.ClientOption{
		http.WithFollowRedirects(cfg.FollowRedirects),
		http.WithValidateSSL(!cfg.SkipTLSVerify),
		http.WithDefaultHeaders(cfg.Headers),
		http.WithLogger(logger),
	}
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, http.WithTimeout(cfg.Timeout))
	}
	if cfg.MaxRedirects > 0 {
		clientOpts = append(clientOpts, http.WithMaxRedirects(cfg.MaxRedirects))
	}
	if cfg.Proxy != "" {
		clientOpts = append(clientOpts, http.WithProxy(cfg.Proxy))
	}
	if cfg.RateLimit > 0 {
		clientOpts = append(clientOpts, http.WithRateLimit(cfg.RateLimit, 1))
	}

	resolver := env.NewResolver()
	resolver.SetLogger(logger)
	resolver.SetVariables(cfg.Variables)

	return &Runner{
		client:   http.NewClient(clientOpts...),
		resolver: resolver,
		config:   cfg,
		logger:   logger,
	}
}

type RunResult struct {
	File     string
	Name     string
	Results  []*CheckResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
}

// CheckResult is the outcome of one check. Error is set when the subject
// could not be obtained at all (network failure, unreadable file).
type CheckResult struct {
	Name       string
	Passed     bool
	Skipped    bool
	SkipReason string
	Attempts   int
	Duration   time.Duration
	Response   *http.Response
	Assertions []*AssertionResult
	Captures   map[string]any
	Error      error
}

// AssertionResult is one reported outcome, labelled with the expectation
// that produced it.
type AssertionResult struct {
	Expect  string
	Passed  bool
	Kind    string
	Message string
}

// Failures returns the failed assertions of the check.
func (c *CheckResult) Failures() []*AssertionResult {
	var out []*AssertionResult
	for _, a := range c.Assertions {
		if !a.Passed {
			out = append(out, a)
		}
	}
	return out
}

// RunFile loads, validates and runs the suite at path.
func (r *Runner) RunFile(ctx context.Context, path string) (*RunResult, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r.Run(ctx, s), nil
}

// Run executes the checks of s in file order.
func (r *Runner) Run(ctx context.Context, s *Suite) *RunResult {
	start := time.Now()
	result := &RunResult{File: s.Path, Name: s.Name}

	names := make([]string, 0, len(s.Vars))
	for k := range s.Vars {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		v := s.Vars[k]
		if str, ok := v.(string); ok {
			v = r.resolver.Resolve(str)
		}
		r.resolver.SetVariable(k, v)
	}

	if s.WaitFor != nil {
		if err := r.waitForService(ctx, s.WaitFor); err != nil {
			// Every check fails with the wait error.
			for i, c := range s.Checks {
				result.Results = append(result.Results, &CheckResult{Name: c.Label(i), Error: err})
				result.Failed++
			}
			result.Duration = time.Since(start)
			return result
		}
	}

	hasOnly := false
	for _, c := range s.Checks {
		if c.Only {
			hasOnly = true
			break
		}
	}

	bailed := false
	for i, c := range s.Checks {
		name := c.Label(i)

		var reason string
		switch {
		case bailed:
			reason = "bail"
		case ctx.Err() != nil:
			reason = "cancelled"
		case !r.shouldRun(c, name, hasOnly):
			reason = "filtered out"
		case c.Skip != "":
			reason = c.Skip
		}
		if reason != "" {
			result.Results = append(result.Results, &CheckResult{Name: name, Skipped: true, SkipReason: reason})
			result.Skipped++
			continue
		}

		checkResult := r.runWithRetry(ctx, c, name, s.Dir())
		result.Results = append(result.Results, checkResult)

		if checkResult.Passed {
			result.Passed++
			r.logger.Info("check passed", zap.String("check", name), zap.Duration("duration", checkResult.Duration))
			continue
		}

		result.Failed++
		r.logger.Info("check failed",
			zap.String("check", name),
			zap.Int("failures", len(checkResult.Failures())),
			zap.Error(checkResult.Error))
		if r.config.Bail {
			bailed = true
		}
	}

	result.Duration = time.Since(start)
	return result
}

func (r *Runner) shouldRun(c *Check, name string, hasOnly bool) bool {
	if hasOnly && !c.Only {
		return false
	}
	if r.config.NameFilter != "" {
		if ok, err := filepath.Match(r.config.NameFilter, name); err != nil || !ok {
			return false
		}
	}
	if len(r.config.TagsFilter) > 0 && !hasAnyTag(c.Tags, r.config.TagsFilter) {
		return false
	}
	return true
}

func hasAnyTag(tags []string, filters []string) bool {
	for _, filter := range filters {
		for _, tag := range tags {
			if tag == filter {
				return true
			}
		}
	}
	return false
}

func (r *Runner) runWithRetry(ctx context.Context, c *Check, name, dir string) *CheckResult {
	delay := r.config.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}

	var result *CheckResult
	for attempt := 1; attempt <= c.Retry+1; attempt++ {
		result = r.runCheck(ctx, c, name, dir)
		result.Attempts = attempt
		if result.Passed || attempt > c.Retry {
			break
		}

		r.logger.Debug("retrying check", zap.String("check", name), zap.Int("attempt", attempt))
		select {
		case <-ctx.Done():
			return result
		case <-time.After(delay):
		}
	}
	return result
}

func (r *Runner) runCheck(ctx context.Context, c *Check, name, dir string) *CheckResult {
	start := time.Now()
	result := &CheckResult{Name: name, Captures: make(map[string]any)}
	rec := assertions.NewRecorder()

	var docOpts []document.Option
	if r.config.SuppressErrors {
		docOpts = append(docOpts, document.WithSuppressErrors(true))
	}

	var (
		sub  *subject
		body []byte
	)

	if c.Request != nil {
		resp, err := r.client.Do(ctx, r.buildRequest(c.Request))
		if err != nil {
			result.Error = err
			result.Duration = time.Since(start)
			return result
		}
		result.Response = resp
		body = resp.BodyBytes()
		a := assertions.NewResponse(rec, resp, docOpts...)
		sub = &subject{resp: a, doc: sync.OnceValue(a.Document), json: sync.OnceValue(a.JSON)}
	} else {
		text, err := r.loadContent(c, dir)
		if err != nil {
			result.Error = err
			result.Duration = time.Since(start)
			return result
		}
		body = []byte(text)
		sub = r.contentSubject(rec, c.Type, text, docOpts)
	}

	for _, e := range c.Expect {
		for _, st := range e.steps(sub, r.resolver.Resolve) {
			result.Assertions = append(result.Assertions, r.runStep(rec, st)...)
		}
	}

	result.Passed = true
	for _, a := range result.Assertions {
		if !a.Passed {
			result.Passed = false
			break
		}
	}

	if len(c.Capture) > 0 {
		values, missing := newExtractor(result.Response, body).extractAll(c.Capture)
		for k, v := range values {
			v = formatCapture(v)
			result.Captures[k] = v
			r.resolver.SetCapture(name, k, v)
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			r.logger.Warn("captures not found", zap.String("check", name), zap.Strings("names", missing))
		}
	}

	result.Duration = time.Since(start)
	return result
}

// runStep calls one façade method and collects what it reported. Inert
// façades report nothing, so a step can yield no results.
func (r *Runner) runStep(rec *assertions.Recorder, st step) []*AssertionResult {
	if st.err != nil {
		return []*AssertionResult{{Expect: st.label, Message: st.err.Error()}}
	}

	before := len(rec.Results())
	st.run()

	var out []*AssertionResult
	for _, res := range rec.Results()[before:] {
		ar := &AssertionResult{Expect: st.label, Passed: res.Passed}
		if res.Failure != nil {
			ar.Kind = res.Failure.Kind.String()
			ar.Message = res.Failure.Message
		}
		r.logger.Debug("assertion", zap.String("expect", st.label), zap.Bool("passed", ar.Passed), zap.String("message", ar.Message))
		out = append(out, ar)
	}
	return out
}

func (r *Runner) buildRequest(def *Request) *http.Request {
	method := strings.ToUpper(def.Method)
	if method == "" {
		method = "GET"
	}

	req := http.NewRequest(method, r.resolver.Resolve(def.URL))
	for k, v := range r.resolver.ResolveAll(def.Headers) {
		req.SetHeader(k, v)
	}
	for k, v := range r.resolver.ResolveAll(def.Query) {
		req.SetQueryParam(k, v)
	}
	if def.Body != "" {
		req.SetBody(r.resolver.Resolve(def.Body))
	}
	if def.Auth != nil {
		params := make([]string, len(def.Auth.Params))
		for i, p := range def.Auth.Params {
			params[i] = r.resolver.Resolve(p)
		}
		req.Auth = &http.Auth{Type: http.AuthType(def.Auth.Type), Params: params}
	}
	if def.Timeout > 0 {
		req.SetTimeout(time.Duration(def.Timeout) * time.Millisecond)
	}
	return req
}

func (r *Runner) loadContent(c *Check, dir string) (string, error) {
	if c.Content != nil {
		return r.resolver.Resolve(*c.Content), nil
	}

	path := r.resolver.Resolve(c.File)
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading subject: %w", err)
	}
	return string(data), nil
}

// contentSubject builds the façade for a file or inline subject. Parse
// failures are reported to rec when the façade is first used.
func (r *Runner) contentSubject(rec *assertions.Recorder, typ, text string, opts []document.Option) *subject {
	sub := &subject{}
	switch typ {
	case TypeHTML:
		sub.doc = sync.OnceValue(func() *assertions.Document { return assertions.NewHTML(rec, text, opts...) })
	case TypeXML:
		sub.doc = sync.OnceValue(func() *assertions.Document { return assertions.NewXML(rec, text, opts...) })
	case TypeJSON:
		sub.json = sync.OnceValue(func() *assertions.JSON { return assertions.NewJSON(rec, text) })
	}
	return sub
}

// Resolver exposes the runner's variables, e.g. to seed values before a run.
func (r *Runner) Resolver() *env.Resolver {
	return r.resolver
}
