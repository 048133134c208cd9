// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/config"
)

// newConfigCommand creates the `scitest config` command tree. Subcommands
// that read configuration use the App's config provider.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage scitest configuration",
		Long: `Manage scitest configuration.

Configuration is read from the first of:
  - the file given with --config
  - <config-dir>/scitest/config.cue (Linux: ~/.config, macOS:
    ~/Library/Application Support, Windows: %APPDATA%)
  - ./scitest.cue

Environment variables prefixed with SCITEST_ override file values, for
example SCITEST_FAIL_FAST=true or SCITEST_WATCH_DEBOUNCE=1s.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, flags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app.stdout)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app.stdout)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			_, err = io.WriteString(app.stdout, config.GenerateCUE(s.cfg))
			return err
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, flags *rootFlagValues) error {
	s, err := app.newSession(ctx, flags)
	if err != nil {
		return err
	}
	cfg := s.cfg
	w := app.stdout

	keyStyle := NameStyle
	valueStyle := SuccessStyle
	value := func(v any) string { return valueStyle.Render(fmt.Sprint(v)) }
	list := func(items []string) string {
		if len(items) == 0 {
			return SubtitleStyle.Render("(none)")
		}
		return valueStyle.Render(strings.Join(items, ", "))
	}

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	source := SubtitleStyle.Render("(using defaults)")
	if cfg.Source != "" {
		source = cfg.Source
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), source)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("log_level"), value(cfg.LogLevel))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("verbose"), value(cfg.Verbose))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("fail_fast"), value(cfg.FailFast))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("ignore"), list(cfg.Ignore))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("search_paths"), list(cfg.SearchPaths))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("layout"))
	fmt.Fprintf(w, "  module_ext: %s\n", value(cfg.Layout.ModuleExt))
	fmt.Fprintf(w, "  init_file: %s\n", value(cfg.Layout.InitFile))
	fmt.Fprintf(w, "  tests_dir: %s\n", value(cfg.Layout.TestsDir))
	fmt.Fprintf(w, "  test_prefix: %s\n", value(cfg.Layout.TestPrefix))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("watch"))
	fmt.Fprintf(w, "  debounce: %s\n", value(cfg.Watch.Debounce))
	fmt.Fprintf(w, "  patterns: %s\n", list(cfg.Watch.Patterns))
	fmt.Fprintf(w, "  ignore: %s\n", list(cfg.Watch.Ignore))
	fmt.Fprintf(w, "  clear_screen: %s\n", value(cfg.Watch.ClearScreen))

	return nil
}

func initConfig(w io.Writer) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	path, created, err := config.CreateDefaultConfig(cfgDir)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(w, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}

	fmt.Fprintf(w, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(w io.Writer) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(w, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName))
	fmt.Fprintf(w, "Project file: %s\n", config.LocalFileName)
	return nil
}
