package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/abdul-hamid-achik/hitassert/packages/suite"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	RunID    string      `json:"runId"`
	Version  string      `json:"version,omitempty"`
	Summary  JSONSummary `json:"summary"`
	Checks   []JSONCheck `json:"checks"`
	Errors   []string    `json:"errors,omitempty"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

type JSONSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// JSONCheck represents a single check result
type JSONCheck struct {
	Name       string          `json:"name"`
	File       string          `json:"file"`
	Passed     bool            `json:"passed"`
	Skipped    bool            `json:"skipped,omitempty"`
	SkipReason string          `json:"skipReason,omitempty"`
	Attempts   int             `json:"attempts,omitempty"`
	Duration   float64         `json:"duration"`
	Error      string          `json:"error,omitempty"`
	Response   *JSONResponse   `json:"response,omitempty"`
	Assertions []JSONAssertion `json:"assertions,omitempty"`
	Captures   map[string]any  `json:"captures,omitempty"`
}

type JSONResponse struct {
	StatusCode int                 `json:"statusCode"`
	Status     string              `json:"status"`
	Headers    map[string][]string `json:"headers,omitempty"`
	Duration   float64             `json:"duration"`
}

type JSONAssertion struct {
	Expect  string `json:"expect"`
	Passed  bool   `json:"passed"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSONFormatter formats suite results as one JSON document
type JSONFormatter struct {
	writer  io.Writer
	runID   string
	version string
	checks  []JSONCheck
	errors  []string
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
		runID:  uuid.NewString(),
		checks: make([]JSONCheck, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

// JSONWithRunID replaces the generated run ID.
func JSONWithRunID(id string) JSONOption {
	return func(f *JSONFormatter) {
		f.runID = id
	}
}

func (f *JSONFormatter) FormatResult(result *suite.RunResult) {
	for _, r := range result.Results {
		check := JSONCheck{
			Name:       r.Name,
			File:       result.File,
			Passed:     r.Passed,
			Skipped:    r.Skipped,
			SkipReason: visibleSkipReason(r),
			Attempts:   r.Attempts,
			Duration:   float64(r.Duration.Milliseconds()),
		}

		if r.Error != nil {
			check.Error = r.Error.Error()
		}

		if r.Response != nil {
			check.Response = &JSONResponse{
				StatusCode: r.Response.Code,
				Status:     r.Response.Status,
				Headers:    r.Response.Headers,
				Duration:   float64(r.Response.Duration.Milliseconds()),
			}
		}

		for _, a := range r.Assertions {
			check.Assertions = append(check.Assertions, JSONAssertion{
				Expect:  a.Expect,
				Passed:  a.Passed,
				Kind:    a.Kind,
				Message: a.Message,
			})
		}

		if len(r.Captures) > 0 {
			check.Captures = r.Captures
		}

		f.checks = append(f.checks, check)
	}
}

// FormatError records errors that are not tied to a check, such as a suite
// that failed to load.
func (f *JSONFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

func (f *JSONFormatter) FormatHeader(version string) {
	f.version = version
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var c counts
	for _, check := range f.checks {
		c.add(&suite.CheckResult{Passed: check.Passed, Skipped: check.Skipped})
	}

	out := JSONOutput{
		RunID:   f.runID,
		Version: f.version,
		Summary: JSONSummary{
			Total:   c.total,
			Passed:  c.passed,
			Failed:  c.failed,
			Skipped: c.skipped,
		},
		Checks:   f.checks,
		Errors:   f.errors,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
