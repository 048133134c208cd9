// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/cueutil"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/harness"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "scitest"
	// ConfigFileName is the name of the config file in the config directory.
	ConfigFileName = "config.cue"
	// LocalFileName is the name of the project-local config file.
	LocalFileName = "scitest.cue"
	// EnvPrefix prefixes environment overrides (SCITEST_FAIL_FAST).
	EnvPrefix = "SCITEST"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the scitest configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions resolves the config file, merges it over defaults and
// environment overrides, and validates the result.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := resolvePath(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Use 'scitest config show' to see the effective configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Check SCITEST_ environment variables for malformed values").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(fmt.Errorf("failed to parse config: %w", err)).
			BuildError()
	}
	cfg.Source = path

	if valid, errs := cfg.IsValid(); !valid {
		id := issue.ConfigLoadFailedId
		if errors.Is(errs[0], harness.ErrInvalidLayout) {
			id = issue.InvalidLayoutId
		}
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithIssue(id).
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, nil
}

// resolvePath picks the config file: the explicit path when given (it must
// exist), else <config-dir>/config.cue, else <base-dir>/scitest.cue. An empty
// result means no file applies.
func resolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return "", err
		}
		cfgDir = dir
	}
	if p := filepath.Join(cfgDir, ConfigFileName); fileExists(p) {
		return p, nil
	}

	if p := filepath.Join(opts.BaseDir, LocalFileName); fileExists(p) {
		return p, nil
	}
	return "", nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("ignore", d.Ignore)
	v.SetDefault("layout.module_ext", d.Layout.ModuleExt)
	v.SetDefault("layout.init_file", d.Layout.InitFile)
	v.SetDefault("layout.tests_dir", d.Layout.TestsDir)
	v.SetDefault("layout.test_prefix", d.Layout.TestPrefix)
	v.SetDefault("log_level", string(d.LogLevel))
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("fail_fast", d.FailFast)
	v.SetDefault("search_paths", d.SearchPaths)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("watch.patterns", d.Watch.Patterns)
	v.SetDefault("watch.ignore", d.Watch.Ignore)
	v.SetDefault("watch.clear_screen", d.Watch.ClearScreen)
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// This does not use cueutil.ParseAndDecode: the file decodes to a map for
// Viper, and every field is optional so values need not be concrete.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		serr := cueutil.FormatError(userValue.Err(), path)
		serr.Syntax = true
		return serr
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration to dir/config.cue
// unless the file already exists. It returns the file path and whether it
// was written.
func CreateDefaultConfig(dir string) (string, bool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, true, nil
}

// GenerateCUE renders the configuration as a CUE file accepted by the schema.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// scitest configuration\n\n")

	sb.WriteString(fmt.Sprintf("ignore: %s\n", cueList(cfg.Ignore)))
	sb.WriteString(fmt.Sprintf("log_level: %q\n", cfg.LogLevel))
	sb.WriteString(fmt.Sprintf("verbose: %v\n", cfg.Verbose))
	sb.WriteString(fmt.Sprintf("fail_fast: %v\n", cfg.FailFast))
	sb.WriteString(fmt.Sprintf("search_paths: %s\n", cueList(cfg.SearchPaths)))

	sb.WriteString("\nlayout: {\n")
	sb.WriteString(fmt.Sprintf("\tmodule_ext: %q\n", cfg.Layout.ModuleExt))
	sb.WriteString(fmt.Sprintf("\tinit_file: %q\n", cfg.Layout.InitFile))
	sb.WriteString(fmt.Sprintf("\ttests_dir: %q\n", cfg.Layout.TestsDir))
	sb.WriteString(fmt.Sprintf("\ttest_prefix: %q\n", cfg.Layout.TestPrefix))
	sb.WriteString("}\n")

	sb.WriteString("\nwatch: {\n")
	sb.WriteString(fmt.Sprintf("\tdebounce: %q\n", cfg.Watch.Debounce.String()))
	sb.WriteString(fmt.Sprintf("\tpatterns: %s\n", cueList(cfg.Watch.Patterns)))
	sb.WriteString(fmt.Sprintf("\tignore: %s\n", cueList(cfg.Watch.Ignore)))
	sb.WriteString(fmt.Sprintf("\tclear_screen: %v\n", cfg.Watch.ClearScreen))
	sb.WriteString("}\n")

	return sb.String()
}

func cueList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
