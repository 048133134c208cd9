// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/harness"
)

type (
	// Runner executes suites.
	Runner struct {
		logger   *log.Logger
		failFast bool
		stdout   io.Writer
		now      func() time.Time
	}

	// Option configures a Runner.
	Option func(*Runner)
)

// WithLogger sets the logger used for per-case debug traces.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithFailFast stops the run at the first failure or error.
func WithFailFast(on bool) Option {
	return func(r *Runner) { r.failFast = on }
}

// WithStdout sets where per-case status lines go. The default discards them.
func WithStdout(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.stdout = w
		}
	}
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		logger: log.New(io.Discard),
		stdout: io.Discard,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every case of suite depth-first, in order. A case panic is
// recorded as an error and the run continues. Cancelling ctx stops the run
// before the next case.
func (r *Runner) Run(ctx context.Context, suite *harness.Suite) *Report {
	report := &Report{}
	start := r.now()

	_ = suite.Walk(func(owner *harness.Suite, c harness.Case) error {
		if ctx.Err() != nil {
			report.Stopped = true
			return ctx.Err()
		}
		res := r.runCase(ctx, owner, c)
		report.Results = append(report.Results, res)
		if r.failFast && res.Status != StatusPass {
			report.Stopped = true
			return res.Err
		}
		return nil
	})

	report.Duration = r.now().Sub(start)
	return report
}

func (r *Runner) runCase(ctx context.Context, owner *harness.Suite, c harness.Case) Result {
	res := Result{Suite: owner.Name, Case: c.Name}
	r.logger.Debug("running case", "suite", owner.Name, "case", c.Name)

	begin := r.now()
	if c.Run == nil {
		res.Err = fmt.Errorf("case %s has no body", c.Name)
	} else {
		res.Err = harness.RunProtected(func() error { return c.Run(ctx) })
	}
	res.Duration = r.now().Sub(begin)
	res.Status = Classify(res.Err)

	fmt.Fprintf(r.stdout, "%s ... %s\n", res.ID(), res.Status)
	if res.Status != StatusPass {
		r.logger.Debug("case did not pass", "case", res.ID(), "status", res.Status, "err", res.Err)
	}
	return res
}
