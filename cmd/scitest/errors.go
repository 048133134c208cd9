// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/harness"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/issue"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/runner"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/shell"
)

// actionable wraps err for display, attaching the issue guide and
// suggestions that match what failed. Errors that are already actionable are
// returned unchanged.
func actionable(operation, resource string, err error) error {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return err
	}

	ec := issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		Wrap(err)

	var (
		serr *shell.SyntaxError
		fe   *harness.FrameError
	)
	switch {
	case errors.Is(err, os.ErrNotExist):
		ec.WithIssue(issue.PackageNotFoundId).
			WithSuggestion("Check the path for typos")
	case errors.Is(err, harness.ErrInvalidPackage):
		ec.WithIssue(issue.InvalidPackageId).
			WithSuggestion("Point scitest at a directory that contains the package marker file")
	case errors.Is(err, harness.ErrModuleNotFound):
		ec.WithIssue(issue.ModuleNotFoundId).
			WithSuggestion("Run 'scitest list' to see the modules discovery finds")
	case errors.Is(err, harness.ErrNoCompanionEntryPoint):
		ec.WithIssue(issue.NoTestsFoundId).
			WithSuggestion("Add a test_suite list to the companion module")
	case errors.Is(err, harness.ErrInvalidLayout):
		ec.WithIssue(issue.InvalidLayoutId)
	case errors.As(err, &serr):
		ec.WithIssue(issue.ShellSyntaxErrorId)
	case errors.As(err, &fe):
		ec.WithIssue(issue.ModuleParseErrorId).
			WithSuggestion(fmt.Sprintf("Fix %s at line %d", fe.File, fe.Line))
	}
	return ec.BuildError()
}

// testsFailed describes a run that did not pass. A case that failed on an
// invalid script points at the shell guide instead of the generic one.
func testsFailed(resource string, report *runner.Report) error {
	id := issue.TestsFailedId
	for _, res := range report.Problems() {
		var serr *shell.SyntaxError
		if errors.As(res.Err, &serr) {
			id = issue.ShellSyntaxErrorId
			break
		}
	}
	return &ExitError{
		Code: ExitTestsFailed,
		Err: issue.NewErrorContext().
			WithOperation("run tests").
			WithResource(resource).
			WithSuggestion("Re-run with --fail-fast to stop at the first problem").
			WithIssue(id).
			Wrap(errors.New(report.Summary())).
			BuildError(),
	}
}
