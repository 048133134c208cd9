// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/issue"
)

// guideStyle lets glamour pick dark, light or plain rendering for the terminal.
const guideStyle = "auto"

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every subcommand.
type rootFlagValues struct {
	verbose    bool
	configPath string
}

// newRootCommand builds the command tree around app.
func newRootCommand(app *App, flags *rootFlagValues) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scitest",
		Short: "Discover and run the test suites of a package tree",
		Long: TitleStyle.Render("scitest") + SubtitleStyle.Render(" - discover and run the test suites of a package tree") + `

A package is a directory holding an __init__.cue marker. Every module file
(*.cue) and sub-package below it may declare a test_suite; scitest imports
them, collects their suites into one composite suite and runs it.

Modules that fail to import are reported and skipped; the rest still run.

` + SubtitleStyle.Render("Examples:") + `
  scitest run ./scipy               Run every test under the scipy package
  scitest run -i 'slow*' ./scipy    Skip modules matching a pattern
  scitest list ./scipy              Show what discovery finds
  scitest module test scipy.base    Run one module's companion tests
  scitest config show               Show the effective configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is <config-dir>/scitest/config.cue, then ./scitest.cue)")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	rootCmd.AddCommand(newRunCommand(app, flags))
	rootCmd.AddCommand(newListCommand(app, flags))
	rootCmd.AddCommand(newModuleCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))
	rootCmd.AddCommand(newGuideCommand(app))

	return rootCmd
}

// usageArgs marks positional argument errors as usage failures.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return usageError(fn(cmd, args))
	}
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Run executes the command line args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := NewApp(Dependencies{Stdout: stdout, Stderr: stderr})
	flags := &rootFlagValues{}

	rootCmd := newRootCommand(app, flags)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler(flags)),
	)
	return exitCode(err)
}

// Execute runs the command line of the current process and exits.
// This is called by main.main().
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// errorHandler prints actionable errors with their suggestions, and with
// the error chain and troubleshooting guide in verbose mode. Other errors get
// fang's default styling.
func errorHandler(flags *rootFlagValues) fang.ErrorHandler {
	return func(w io.Writer, styles fang.Styles, err error) {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Err == nil {
			return
		}

		var ae *issue.ActionableError
		if !errors.As(err, &ae) {
			fang.DefaultErrorHandler(w, styles, err)
			return
		}

		fmt.Fprintln(w, ErrorStyle.Render("Error:")+" "+ae.Format(flags.verbose))
		guide := ae.Guide()
		if guide == nil {
			return
		}
		if !flags.verbose {
			fmt.Fprintln(w, SubtitleStyle.Render("Run with --verbose for a troubleshooting guide."))
			return
		}
		rendered, rerr := guide.Render(guideStyle)
		if rerr != nil {
			return
		}
		fmt.Fprint(w, rendered)
	}
}
