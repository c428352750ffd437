package output

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/hitassert/packages/suite"
)

// HTMLOutput is the data the report template renders
type HTMLOutput struct {
	Version        string
	Summary        HTMLSummary
	Checks         []HTMLCheck
	Errors         []string
	Duration       float64
	Time           string
	PassedPercent  float64
	FailedPercent  float64
	SkippedPercent float64
}

type HTMLSummary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

type HTMLCheck struct {
	Name        string
	File        string
	Passed      bool
	Skipped     bool
	SkipReason  string
	Duration    float64
	Error       string
	StatusClass string
	StatusCode  int
	Assertions  []HTMLAssertion
	Captures    map[string]any
}

type HTMLAssertion struct {
	Expect  string
	Passed  bool
	Kind    string
	Message string
}

// HTMLFormatter renders suite results as a standalone HTML page
type HTMLFormatter struct {
	writer  io.Writer
	checks  []HTMLCheck
	errors  []string
	version string
}

type HTMLOption func(*HTMLFormatter)

func NewHTMLFormatter(opts ...HTMLOption) *HTMLFormatter {
	f := &HTMLFormatter{
		writer: os.Stdout,
		checks: make([]HTMLCheck, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func HTMLWithWriter(w io.Writer) HTMLOption {
	return func(f *HTMLFormatter) {
		f.writer = w
	}
}

func (f *HTMLFormatter) FormatResult(result *suite.RunResult) {
	for _, r := range result.Results {
		check := HTMLCheck{
			Name:       r.Name,
			File:       result.File,
			Passed:     r.Passed,
			Skipped:    r.Skipped,
			SkipReason: visibleSkipReason(r),
			Duration:   float64(r.Duration.Milliseconds()),
			Captures:   r.Captures,
		}

		switch {
		case r.Skipped:
			check.StatusClass = "skipped"
		case r.Passed:
			check.StatusClass = "passed"
		default:
			check.StatusClass = "failed"
		}

		if r.Error != nil {
			check.Error = r.Error.Error()
		}
		if r.Response != nil {
			check.StatusCode = r.Response.Code
		}

		for _, a := range r.Assertions {
			check.Assertions = append(check.Assertions, HTMLAssertion{
				Expect:  a.Expect,
				Passed:  a.Passed,
				Kind:    a.Kind,
				Message: a.Message,
			})
		}

		f.checks = append(f.checks, check)
	}
}

func (f *HTMLFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

// FormatHeader captures the version for the report footer
func (f *HTMLFormatter) FormatHeader(version string) {
	f.version = version
}

// Flush writes the accumulated HTML output
func (f *HTMLFormatter) Flush(totalDuration time.Duration) error {
	var c counts
	for _, check := range f.checks {
		c.add(&suite.CheckResult{Passed: check.Passed, Skipped: check.Skipped})
	}

	var passedPct, failedPct, skippedPct float64
	if c.total > 0 {
		passedPct = float64(c.passed) / float64(c.total) * 100
		failedPct = float64(c.failed) / float64(c.total) * 100
		skippedPct = float64(c.skipped) / float64(c.total) * 100
	}

	out := HTMLOutput{
		Version: f.version,
		Summary: HTMLSummary{
			Total:   c.total,
			Passed:  c.passed,
			Failed:  c.failed,
			Skipped: c.skipped,
		},
		Checks:         f.checks,
		Errors:         f.errors,
		Duration:       float64(totalDuration.Milliseconds()),
		Time:           time.Now().Format("2006-01-02 15:04:05"),
		PassedPercent:  passedPct,
		FailedPercent:  failedPct,
		SkippedPercent: skippedPct,
	}

	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse HTML template: %w", err)
	}

	return tmpl.Execute(f.writer, out)
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>hitassert report</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; color: #222; }
.bar { display: flex; height: 8px; border-radius: 4px; overflow: hidden; margin: 1rem 0; background: #eee; }
.bar .passed { background: #2da44e; } .bar .failed { background: #cf222e; } .bar .skipped { background: #bf8700; }
.check { border-left: 4px solid #ccc; padding: .5rem 1rem; margin: .5rem 0; }
.check.passed { border-color: #2da44e; } .check.failed { border-color: #cf222e; } .check.skipped { border-color: #bf8700; }
.check h3 { margin: 0; font-size: 1rem; }
.meta { color: #666; font-size: .85rem; }
ul { margin: .25rem 0; padding-left: 1.25rem; }
li.fail { color: #cf222e; }
code { font-family: ui-monospace, monospace; }
</style>
</head>
<body>
<h1>hitassert report</h1>
<p class="meta">{{.Time}} &middot; {{.Duration}}ms{{if .Version}} &middot; {{.Version}}{{end}}</p>
<p><strong>{{.Summary.Total}}</strong> checks: {{.Summary.Passed}} passed, {{.Summary.Failed}} failed, {{.Summary.Skipped}} skipped</p>
<div class="bar">
<div class="passed" style="width: {{printf "%.1f" .PassedPercent}}%"></div>
<div class="failed" style="width: {{printf "%.1f" .FailedPercent}}%"></div>
<div class="skipped" style="width: {{printf "%.1f" .SkippedPercent}}%"></div>
</div>
{{range .Errors}}<p class="meta">Error: {{.}}</p>
{{end}}
{{range .Checks}}
<div class="check {{.StatusClass}}">
<h3>{{.Name}}</h3>
<p class="meta">{{.File}} &middot; {{.Duration}}ms{{if .StatusCode}} &middot; status {{.StatusCode}}{{end}}{{if .SkipReason}} &middot; {{.SkipReason}}{{end}}</p>
{{if .Error}}<p class="meta">Error: {{.Error}}</p>{{end}}
{{if .Assertions}}<ul>
{{range .Assertions}}<li class="{{if .Passed}}pass{{else}}fail{{end}}"><code>{{.Expect}}</code>{{if not .Passed}}: {{.Message}}{{if .Kind}} ({{.Kind}}){{end}}{{end}}</li>
{{end}}</ul>{{end}}
</div>
{{end}}
</body>
</html>
`
