package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitassert/packages/suite"
)

// Formatter receives suite results as they complete.
type Formatter interface {
	FormatResult(result *suite.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable is implemented by formatters that write once all results are in.
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// Formats lists the names accepted by New.
var Formats = []string{"console", "json", "junit", "tap", "html"}

// Options configure the formatter returned by New.
type Options struct {
	Writer  io.Writer
	Verbose bool
	NoColor bool
}

// New returns the formatter for format. An empty format means console.
func New(format string, opts Options) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "console":
		consoleOpts := []ConsoleOption{WithVerbose(opts.Verbose), WithNoColor(opts.NoColor)}
		if opts.Writer != nil {
			consoleOpts = append(consoleOpts, WithWriter(opts.Writer))
		}
		return NewConsoleFormatter(consoleOpts...), nil
	case "json":
		var jsonOpts []JSONOption
		if opts.Writer != nil {
			jsonOpts = append(jsonOpts, JSONWithWriter(opts.Writer))
		}
		return NewJSONFormatter(jsonOpts...), nil
	case "junit":
		var junitOpts []JUnitOption
		if opts.Writer != nil {
			junitOpts = append(junitOpts, JUnitWithWriter(opts.Writer))
		}
		return NewJUnitFormatter(junitOpts...), nil
	case "tap":
		var tapOpts []TAPOption
		if opts.Writer != nil {
			tapOpts = append(tapOpts, TAPWithWriter(opts.Writer))
		}
		return NewTAPFormatter(tapOpts...), nil
	case "html":
		var htmlOpts []HTMLOption
		if opts.Writer != nil {
			htmlOpts = append(htmlOpts, HTMLWithWriter(opts.Writer))
		}
		return NewHTMLFormatter(htmlOpts...), nil
	}
	return nil, fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

// failureLines renders the failed assertions of a check, one per line.
func failureLines(r *suite.CheckResult) []string {
	var lines []string
	for _, a := range r.Failures() {
		line := a.Expect + ": " + a.Message
		if a.Kind != "" {
			line += " [" + a.Kind + "]"
		}
		lines = append(lines, line)
	}
	return lines
}

// visibleSkipReason hides the reason for checks excluded by filters.
func visibleSkipReason(r *suite.CheckResult) string {
	if r.SkipReason == "filtered out" {
		return ""
	}
	return r.SkipReason
}

type counts struct {
	total, passed, failed, skipped int
}

func (c *counts) add(r *suite.CheckResult) {
	c.total++
	switch {
	case r.Skipped:
		c.skipped++
	case r.Passed:
		c.passed++
	default:
		c.failed++
	}
}
