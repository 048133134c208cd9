// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/harness"
)

const separator = "----------------------------------------------------------------------"

type (
	// Result is the outcome of one case.
	Result struct {
		// Suite is the name of the suite that owns the case.
		Suite    string
		Case     string
		Status   Status
		Err      error
		Duration time.Duration
	}

	// Report is the outcome of one Run.
	Report struct {
		Results  []Result
		Duration time.Duration
		// Stopped is set when the run ended early, on cancellation or
		// fail-fast.
		Stopped bool
	}
)

// ID returns "case (suite)", the name a result is printed under.
func (r Result) ID() string {
	return fmt.Sprintf("%s (%s)", r.Case, r.Suite)
}

// Count returns the number of results with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// OK reports whether every case that ran passed.
func (r *Report) OK() bool {
	return r.Count(StatusFail) == 0 && r.Count(StatusError) == 0
}

// Problems returns the failed and errored results, in run order.
func (r *Report) Problems() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status != StatusPass {
			out = append(out, res)
		}
	}
	return out
}

// Summary returns the verdict line: "OK" or "FAILED (failures=1, errors=2)".
func (r *Report) Summary() string {
	if r.OK() {
		return "OK"
	}
	var parts []string
	if n := r.Count(StatusFail); n > 0 {
		parts = append(parts, fmt.Sprintf("failures=%d", n))
	}
	if n := r.Count(StatusError); n > 0 {
		parts = append(parts, fmt.Sprintf("errors=%d", n))
	}
	return "FAILED (" + strings.Join(parts, ", ") + ")"
}

// WriteDetails writes one block per problem followed by the footer.
func (r *Report) WriteDetails(w io.Writer) error {
	var b strings.Builder
	for _, res := range r.Problems() {
		b.WriteString("\n" + strings.Repeat("=", len(separator)) + "\n")
		fmt.Fprintf(&b, "%s: %s\n", res.Status, res.ID())
		b.WriteString(separator + "\n")
		b.WriteString(describe(res.Err) + "\n")
	}
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "Ran %d tests in %.3fs\n", len(r.Results), r.Duration.Seconds())
	if r.Stopped {
		b.WriteString("(stopped early)\n")
	}
	b.WriteString("\n" + r.Summary() + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// describe renders a case error; panics are reduced to their frame summary.
func describe(err error) string {
	if fe := harness.Summarize(err); fe != nil && fe.Line > 0 {
		return fe.Summary()
	}
	return err.Error()
}
