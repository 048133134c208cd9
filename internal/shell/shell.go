// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ExitNotFound is the status a script gets for a command that cannot run.
const ExitNotFound = 127

// ErrExecDisabled is reported on stderr when a script calls an external
// program while exec is disabled.
var ErrExecDisabled = errors.New("external commands are disabled")

type (
	// Runner executes scripts. The zero value is not usable; use New.
	Runner struct {
		dir        string
		env        map[string]string
		inheritEnv bool
		allowExec  bool
	}

	// Option configures a Runner.
	Option func(*Runner)

	// Result is the outcome of a script that ran to completion.
	Result struct {
		Stdout   string
		Stderr   string
		ExitCode int
	}

	// SyntaxError is returned when a script does not parse.
	SyntaxError struct {
		Name   string
		Line   int
		Column int
		Text   string
	}
)

// WithDir sets the working directory. The default is the process's.
func WithDir(dir string) Option {
	return func(r *Runner) { r.dir = dir }
}

// WithEnv adds variables visible to every script this runner executes.
func WithEnv(env map[string]string) Option {
	return func(r *Runner) { maps.Copy(r.env, env) }
}

// WithInheritEnv controls whether scripts see the process environment. The
// default is false.
func WithInheritEnv(inherit bool) Option {
	return func(r *Runner) { r.inheritEnv = inherit }
}

// WithExec controls whether scripts may start external programs. The
// default is true; when false only shell builtins are available.
func WithExec(allow bool) Option {
	return func(r *Runner) { r.allowExec = allow }
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{env: make(map[string]string), allowExec: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Name, e.Line, e.Column, e.Text)
}

// OK reports whether the script exited with status 0.
func (r *Result) OK() bool {
	return r.ExitCode == 0
}

// Parse checks that script is valid shell. name labels error positions.
func Parse(script, name string) (*syntax.File, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), name)
	if err != nil {
		var pe syntax.ParseError
		if errors.As(err, &pe) {
			return nil, &SyntaxError{Name: name, Line: int(pe.Pos.Line()), Column: int(pe.Pos.Col()), Text: pe.Text}
		}
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return prog, nil
}

// Run executes script with extra variables layered over the runner's own.
// A non-zero exit status is not an error: it is reported in Result.ExitCode.
// Errors are returned for scripts that do not parse, for interpreter
// failures and for a cancelled ctx.
func (r *Runner) Run(ctx context.Context, name, script string, extra map[string]string) (*Result, error) {
	prog, err := Parse(script, name)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(r.environ(extra)...)),
		interp.StdIO(nil, &stdout, &stderr),
	}
	if r.dir != "" {
		opts = append(opts, interp.Dir(r.dir))
	}
	if !r.allowExec {
		opts = append(opts, interp.ExecHandlers(denyExec))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create interpreter: %w", err)
	}

	res := &Result{}
	runErr := runner.Run(ctx, prog)
	res.Stdout, res.Stderr = stdout.String(), stderr.String()

	if runErr != nil {
		var status interp.ExitStatus
		if errors.As(runErr, &status) {
			res.ExitCode = int(status)
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		return res, fmt.Errorf("script %s failed: %w", name, runErr)
	}
	return res, ctx.Err()
}

func (r *Runner) environ(extra map[string]string) []string {
	merged := make(map[string]string)
	if r.inheritEnv {
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok {
				merged[k] = v
			}
		}
	}
	maps.Copy(merged, r.env)
	maps.Copy(merged, extra)

	pairs := make([]string, 0, len(merged))
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		pairs = append(pairs, k+"="+merged[k])
	}
	return pairs
}

func denyExec(interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		hc := interp.HandlerCtx(ctx)
		writeDenied(hc.Stderr, args[0])
		return interp.ExitStatus(ExitNotFound)
	}
}

func writeDenied(w io.Writer, name string) {
	if w != nil {
		fmt.Fprintf(w, "%s: %v\n", name, ErrExecDisabled)
	}
}
