// Package report prints per-case progress and failure diagnostics of a
// regression run and maps the aggregate outcome to a process exit status.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/goldenrun/goldenrun/model"
)

// Exit statuses of the harness.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Reporter writes human-readable run output.
type Reporter struct {
	w       io.Writer
	verbose bool
	diff    bool
}

// Option is a function that configures a Reporter.
type Option func(*Reporter)

// WithVerbose also reports passing and rebased cases.
func WithVerbose(v bool) Option {
	return func(r *Reporter) {
		r.verbose = v
	}
}

// WithDiff prints a diff of expected and actual output on mismatch.
func WithDiff(v bool) Option {
	return func(r *Reporter) {
		r.diff = v
	}
}

func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{w: w}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start announces a case before it is executed.
func (r *Reporter) Start(tc model.TestCase) {
	fmt.Fprintln(r.w, tc.InputPath)
}

// Record prints the outcome of a case. Passes are silent unless verbose.
func (r *Reporter) Record(v model.Verdict) {
	switch v.Status {
	case model.StatusFailed:
		fmt.Fprintf(r.w, "FAILED: '%s' [%s]\n", v.File, Detail(v))
		if r.diff && v.Reason == model.ReasonMismatch {
			for _, line := range strings.Split(strings.TrimRight(Diff(v.Expected, v.Actual), "\n"), "\n") {
				fmt.Fprintf(r.w, "    %s\n", line)
			}
		}
	case model.StatusPassed:
		if r.verbose {
			fmt.Fprintf(r.w, "ok: '%s'\n", v.File)
		}
	case model.StatusRebased:
		if r.verbose {
			fmt.Fprintf(r.w, "rebased: '%s' [%s]\n", v.File, v.Message)
		}
	}
}

// Finish prints the summary of a run.
func (r *Reporter) Finish(s *model.Summary) {
	ok, failed := s.Counts()
	label := "passed"
	if s.Mode == model.ModeRebase {
		label = "rebased"
	}

	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "%d %s, %d failed, %d total\n", ok, label, failed, s.Total())
	if s.Failed() {
		fmt.Fprintln(r.w, "FAILED")
		return
	}
	fmt.Fprintln(r.w, "ALL PASSED")
}

// ExitCode maps the summary to the process exit status.
func ExitCode(s *model.Summary) int {
	if s.Failed() {
		return ExitFailure
	}
	return ExitSuccess
}

// Detail is the bracketed reason shown for a failed case.
func Detail(v model.Verdict) string {
	switch v.Reason {
	case model.ReasonMismatch:
		return strings.TrimRight(v.Input, "\r\n")
	case model.ReasonMissingBaseline:
		return "Output file missing"
	}
	return v.Message
}

// Diff renders a line diff between expected and actual output
// (-expected +actual).
func Diff(expected, actual []byte) string {
	return cmp.Diff(splitLines(expected), splitLines(actual))
}

func splitLines(data []byte) []string {
	return strings.SplitAfter(string(data), "\n")
}
