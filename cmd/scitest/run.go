// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/cuemod"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/harness"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/issue"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/runner"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/watch"
)

// runOptions holds the flags of `scitest run`.
type runOptions struct {
	ignore   []string
	failFast bool
	watch    bool
}

func newRunCommand(app *App, flags *rootFlagValues) *cobra.Command {
	opts := &runOptions{}

	runCmd := &cobra.Command{
		Use:   "run [package-dir]",
		Short: "Discover and run every test under a package",
		Long: `Discover and run every test under a package.

The package directory (default ".") must hold the package marker. Its
modules and sub-packages are imported in name order and their suites are
run depth-first. Failures to import are logged and do not stop the run.

Exit status is 1 when any case failed or errored and 2 when the package or
configuration is unusable.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			dir := packageDirArg(args)
			if opts.watch {
				return app.watchPackage(cmd.Context(), s, dir, opts)
			}
			return app.runPackage(cmd.Context(), s, dir, opts)
		},
	}

	runCmd.Flags().StringSliceVarP(&opts.ignore, "ignore", "i", nil, "glob patterns of modules and packages to skip (repeatable)")
	runCmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "stop at the first failing case")
	runCmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-run whenever module files change")

	return runCmd
}

func packageDirArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

// openPackage returns the package rooted at dir.
func openPackage(dir string, layout harness.Layout) (harness.Package, error) {
	info, err := os.Stat(dir)
	if err == nil && !info.IsDir() {
		err = &harness.InvalidPackageError{Name: filepath.Base(dir), File: dir, Reason: "not a directory"}
	}
	if err != nil {
		return nil, actionable("open package", dir, err)
	}

	pkg, err := harness.PackageAt(dir, layout)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("open package").
			WithResource(dir).
			WithSuggestion(fmt.Sprintf("Create %s in the directory to make it a package", layout.InitFile)).
			WithIssue(issue.InvalidPackageId).
			Wrap(err).
			BuildError()
	}
	return pkg, nil
}

// collectSuite imports the root package with a fresh importer and builds its
// composite suite. Diagnostics go to reporter.
func (s *session) collectSuite(ctx context.Context, pkg harness.Package, extraIgnore []string, reporter harness.Reporter) (*harness.Suite, error) {
	dir := filepath.Dir(pkg.File())
	imp := s.importer(dir, reporter)

	mod, err := imp.Import(ctx, harness.ImportRef{
		Name:       pkg.Name(),
		Path:       dir,
		Kind:       harness.KindPackage,
		Reload:     true,
		SearchPath: s.searchPaths(),
	})
	if err != nil {
		return nil, actionable("import package", pkg.Name(), err)
	}

	ignore := s.ignore(extraIgnore)
	switch m := mod.(type) {
	case *cuemod.PackageModule:
		return m.Suite(ctx, ignore)
	case harness.SuiteFactory:
		return m.TestSuite(ctx)
	default:
		s.logger.Debug("package declares no suite and harvesting is off", "package", pkg.Name())
		return harness.NewSuite(pkg.Name()), nil
	}
}

// runPackage runs one discovery and test pass over the package at dir and
// writes the per-case lines and the report to stdout.
func (a *App) runPackage(ctx context.Context, s *session, dir string, opts *runOptions) error {
	pkg, err := openPackage(dir, s.layout())
	if err != nil {
		return usageError(err)
	}

	rec := harness.NewRecorder()
	suite, err := s.collectSuite(ctx, pkg, opts.ignore, harness.MultiReporter(rec, harness.NewLogReporter(s.logger)))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return usageError(err)
	}

	total := suite.CountTestCases()
	s.logger.Debug("suite built", "package", pkg.Name(), "cases", total, "diagnostics", len(rec.Diagnostics()))
	if total == 0 {
		s.logger.Warn("no tests found", "package", pkg.Name())
		if s.cfg.Verbose {
			if rendered, rerr := issue.Get(issue.NoTestsFoundId).Render(guideStyle); rerr == nil {
				fmt.Fprint(a.stderr, rendered)
			}
		}
	}

	r := runner.New(
		runner.WithLogger(s.logger),
		runner.WithFailFast(opts.failFast || s.cfg.FailFast),
		runner.WithStdout(a.stdout),
	)
	report := r.Run(ctx, suite)
	if err := report.WriteDetails(a.stdout); err != nil {
		return err
	}
	if n := rec.Count(harness.CodeImportFailed); n > 0 {
		s.logger.Warn("some modules could not be imported and were skipped", "count", n)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if !report.OK() {
		return testsFailed(pkg.Name(), report)
	}
	return nil
}

// watchPackage runs the package once and then again after every debounced
// batch of changes until ctx is cancelled. Each pass imports afresh.
func (a *App) watchPackage(ctx context.Context, s *session, dir string, opts *runOptions) error {
	pkg, err := openPackage(dir, s.layout())
	if err != nil {
		return usageError(err)
	}

	pass := func(ctx context.Context) {
		err := a.runPackage(ctx, s, dir, opts)
		if err == nil || ctx.Err() != nil {
			return
		}
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Code == ExitTestsFailed {
			return
		}
		s.logger.Error("run failed", "err", err)
	}

	baseDir := filepath.Dir(pkg.File())
	w, err := watch.New(watch.Config{
		BaseDir:     baseDir,
		Patterns:    s.cfg.Watch.Patterns,
		Ignore:      s.cfg.Watch.Ignore,
		Debounce:    s.cfg.Watch.Debounce,
		ClearScreen: s.cfg.Watch.ClearScreen,
		Stdout:      a.stdout,
		Logger:      s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			s.logger.Info("change detected, re-running", "files", changed)
			pass(ctx)
			return nil
		},
	})
	if err != nil {
		return watchFailed(baseDir, err)
	}

	pass(ctx)
	fmt.Fprintln(a.stdout, SubtitleStyle.Render(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", baseDir)))

	if err := w.Run(ctx); err != nil {
		return watchFailed(baseDir, err)
	}
	return nil
}

func watchFailed(dir string, err error) error {
	return issue.NewErrorContext().
		WithOperation("watch package").
		WithResource(dir).
		WithSuggestion("Check the watch.patterns and watch.ignore globs in your configuration").
		WithIssue(issue.WatchFailedId).
		Wrap(err).
		BuildError()
}
