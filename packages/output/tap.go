package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/hitassert/packages/suite"
)

// TAPFormatter writes TAP version 13. Failed and errored checks carry a
// YAML diagnostic block listing each failed assertion.
type TAPFormatter struct {
	writer io.Writer
	lines  []tapLine
	errors []string
	counts counts
}

type tapLine struct {
	name       string
	passed     bool
	skipped    bool
	skipReason string
	diag       *tapDiagnostic
}

type tapDiagnostic struct {
	Message  string       `yaml:"message,omitempty"`
	Severity string       `yaml:"severity"`
	Attempts int          `yaml:"attempts,omitempty"`
	Status   int          `yaml:"status,omitempty"`
	Failures []tapFailure `yaml:"failures,omitempty"`
}

type tapFailure struct {
	Expect  string `yaml:"expect"`
	Kind    string `yaml:"kind,omitempty"`
	Message string `yaml:"message,omitempty"`
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) FormatResult(result *suite.RunResult) {
	for _, r := range result.Results {
		f.counts.add(r)
		f.lines = append(f.lines, tapLine{
			name:       r.Name,
			passed:     r.Passed,
			skipped:    r.Skipped,
			skipReason: visibleSkipReason(r),
			diag:       diagnose(r),
		})
	}
}

func diagnose(r *suite.CheckResult) *tapDiagnostic {
	if r.Passed || r.Skipped {
		return nil
	}
	d := &tapDiagnostic{Severity: "fail"}
	if r.Attempts > 1 {
		d.Attempts = r.Attempts
	}
	if r.Response != nil {
		d.Status = r.Response.Code
	}
	if r.Error != nil {
		d.Severity = "error"
		d.Message = r.Error.Error()
		return d
	}
	for _, a := range r.Failures() {
		d.Failures = append(d.Failures, tapFailure{Expect: a.Expect, Kind: a.Kind, Message: a.Message})
	}
	d.Message = fmt.Sprintf("%d assertion(s) failed", len(d.Failures))
	return d
}

func (f *TAPFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

func (f *TAPFormatter) FormatHeader(version string) {}

// Flush writes the plan, one line per check and a trailing summary comment.
func (f *TAPFormatter) Flush(totalDuration time.Duration) error {
	fmt.Fprintf(f.writer, "TAP version 13\n1..%d\n", len(f.lines))
	for _, e := range f.errors {
		fmt.Fprintf(f.writer, "# error: %s\n", e)
	}

	for i, l := range f.lines {
		n := i + 1
		switch {
		case l.skipped:
			reason := l.skipReason
			if reason == "" {
				reason = "SKIP"
			}
			fmt.Fprintf(f.writer, "ok %d - %s # SKIP %s\n", n, l.name, reason)
		case l.passed:
			fmt.Fprintf(f.writer, "ok %d - %s\n", n, l.name)
		default:
			fmt.Fprintf(f.writer, "not ok %d - %s\n", n, l.name)
			if err := f.writeDiagnostic(l.diag); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(f.writer, "# pass %d\n# fail %d\n# skip %d\n# time %dms\n",
		f.counts.passed, f.counts.failed, f.counts.skipped, totalDuration.Milliseconds())
	return nil
}

func (f *TAPFormatter) writeDiagnostic(d *tapDiagnostic) error {
	if d == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding TAP diagnostic: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	fmt.Fprintln(f.writer, "  ---")
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		fmt.Fprintf(f.writer, "  %s\n", line)
	}
	fmt.Fprintln(f.writer, "  ...")
	return nil
}
