// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/config"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/cuemod"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/harness"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/shell"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer; every command handler receives an App reference.
	App struct {
		Config config.Provider
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
	}

	// session is the per-invocation state a command builds before doing any
	// work: the effective configuration and the logger derived from it.
	session struct {
		cfg    *config.Config
		logger *log.Logger
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// newSession loads the configuration and builds the stderr logger. The
// --verbose flag wins over the configured value, and a verbose configuration
// turns the flag on so error chains are shown.
func (a *App) newSession(ctx context.Context, flags *rootFlagValues) (*session, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, usageError(err)
	}
	if flags.verbose {
		cfg.Verbose = true
	}
	flags.verbose = cfg.Verbose

	logger := log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  cfg.Level(),
	})
	return &session{cfg: cfg, logger: logger}, nil
}

// layout returns the configured package naming conventions.
func (s *session) layout() harness.Layout {
	return s.cfg.Layout.HarnessLayout()
}

// searchPaths returns the configured extra roots as absolute paths.
func (s *session) searchPaths() []string {
	roots := make([]string, 0, len(s.cfg.SearchPaths))
	for _, p := range s.cfg.SearchPaths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		roots = append(roots, p)
	}
	return roots
}

// ignore returns the configured ignore patterns followed by extra.
func (s *session) ignore(extra []string) []string {
	out := make([]string, 0, len(s.cfg.Ignore)+len(extra))
	out = append(out, s.cfg.Ignore...)
	return append(out, extra...)
}

// importer builds a fresh CUE importer whose case scripts run in dir with
// the process environment.
func (s *session) importer(dir string, reporter harness.Reporter) *cuemod.Importer {
	return cuemod.New(
		cuemod.WithLayout(s.layout()),
		cuemod.WithReporter(reporter),
		cuemod.WithLogger(s.logger),
		cuemod.WithShell(shell.New(shell.WithDir(dir), shell.WithInheritEnv(true))),
	)
}
