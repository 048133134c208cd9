// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/cueutil"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/harness"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/issue"
)

// isolated returns LoadOptions whose config dir and base dir are empty
// temporary directories.
func isolated(t *testing.T) (LoadOptions, string, string) {
	t.Helper()
	cfgDir := filepath.Join(t.TempDir(), "cfg")
	baseDir := t.TempDir()
	return LoadOptions{ConfigDirPath: cfgDir, BaseDir: baseDir}, cfgDir, baseDir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func load(t *testing.T, opts LoadOptions) (*Config, error) {
	t.Helper()
	return NewProvider().Load(context.Background(), opts)
}

func requireIssue(t *testing.T, err error, id issue.Id) *issue.ActionableError {
	t.Helper()
	var ae *issue.ActionableError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, id, ae.Issue, ae.Error())
	return ae
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	opts, _, _ := isolated(t)
	cfg, err := load(t, opts)
	require.NoError(t, err)

	d := DefaultConfig()
	assert.Empty(t, cfg.Source)
	assert.Equal(t, d.Layout, cfg.Layout)
	assert.Equal(t, LogLevelWarn, cfg.LogLevel)
	assert.False(t, cfg.FailFast)
	assert.Empty(t, cfg.Ignore)
	assert.Empty(t, cfg.SearchPaths)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
	assert.Equal(t, []string{"**/*.cue"}, cfg.Watch.Patterns)
}

func TestLoad_LookupOrder(t *testing.T) {
	t.Parallel()

	t.Run("config dir wins over local file", func(t *testing.T) {
		t.Parallel()
		opts, cfgDir, baseDir := isolated(t)
		writeFile(t, filepath.Join(cfgDir, ConfigFileName), "fail_fast: true\n")
		writeFile(t, filepath.Join(baseDir, LocalFileName), "verbose: true\n")

		cfg, err := load(t, opts)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cfgDir, ConfigFileName), cfg.Source)
		assert.True(t, cfg.FailFast)
		assert.False(t, cfg.Verbose)
	})

	t.Run("local file when config dir has none", func(t *testing.T) {
		t.Parallel()
		opts, _, baseDir := isolated(t)
		writeFile(t, filepath.Join(baseDir, LocalFileName), "verbose: true\n")

		cfg, err := load(t, opts)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(baseDir, LocalFileName), cfg.Source)
		assert.True(t, cfg.Verbose)
	})

	t.Run("explicit file is used exclusively", func(t *testing.T) {
		t.Parallel()
		opts, cfgDir, _ := isolated(t)
		writeFile(t, filepath.Join(cfgDir, ConfigFileName), "fail_fast: true\n")
		explicit := filepath.Join(t.TempDir(), "ci.cue")
		writeFile(t, explicit, `log_level: "error"`)
		opts.ConfigFilePath = explicit

		cfg, err := load(t, opts)
		require.NoError(t, err)
		assert.Equal(t, explicit, cfg.Source)
		assert.Equal(t, LogLevelError, cfg.LogLevel)
		assert.False(t, cfg.FailFast)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		t.Parallel()
		opts, _, _ := isolated(t)
		opts.ConfigFilePath = filepath.Join(t.TempDir(), "nope.cue")

		_, err := load(t, opts)
		ae := requireIssue(t, err, issue.ConfigLoadFailedId)
		assert.Contains(t, ae.Error(), "config file not found")
	})
}

func TestLoad_FileValuesMergeWithDefaults(t *testing.T) {
	t.Parallel()

	opts, cfgDir, _ := isolated(t)
	writeFile(t, filepath.Join(cfgDir, ConfigFileName), `
ignore: ["*_slow", "legacy"]
search_paths: ["/opt/shared"]
layout: module_ext: ".scm"
watch: {
	debounce: "2s"
	clear_screen: true
}
`)

	cfg, err := load(t, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"*_slow", "legacy"}, cfg.Ignore)
	assert.Equal(t, []string{"/opt/shared"}, cfg.SearchPaths)
	assert.Equal(t, ".scm", cfg.Layout.ModuleExt)
	assert.Equal(t, "__init__.cue", cfg.Layout.InitFile, "unset layout fields keep defaults")
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.True(t, cfg.Watch.ClearScreen)
	assert.Equal(t, []string{"**/*.cue"}, cfg.Watch.Patterns)
}

func TestLoad_InvalidFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		syntax  bool
	}{
		{"unknown field", "colour: \"red\"\n", false},
		{"bad log level", "log_level: \"loud\"\n", false},
		{"bad debounce", "watch: debounce: \"soon\"\n", false},
		{"wrong type", "fail_fast: \"yes\"\n", false},
		{"relative module ext", "layout: module_ext: \"cue\"\n", false},
		{"syntax error", "fail_fast: true\nignore: [\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts, cfgDir, _ := isolated(t)
			writeFile(t, filepath.Join(cfgDir, ConfigFileName), tt.content)

			_, err := load(t, opts)
			requireIssue(t, err, issue.ConfigLoadFailedId)
			var serr *cueutil.SourceError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.syntax, serr.Syntax)
		})
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	opts, cfgDir, _ := isolated(t)
	writeFile(t, filepath.Join(cfgDir, ConfigFileName), "fail_fast: false\nlog_level: \"info\"\n")

	t.Setenv("SCITEST_FAIL_FAST", "true")
	t.Setenv("SCITEST_WATCH_DEBOUNCE", "750ms")
	t.Setenv("SCITEST_IGNORE", "alpha*,beta")

	cfg, err := load(t, opts)
	require.NoError(t, err)
	assert.True(t, cfg.FailFast, "environment wins over the file")
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, 750*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, []string{"alpha*", "beta"}, cfg.Ignore)
}

func TestLoad_InvalidLayoutFromEnvironment(t *testing.T) {
	opts, _, _ := isolated(t)
	t.Setenv("SCITEST_LAYOUT_MODULE_EXT", "cue")

	_, err := load(t, opts)
	requireIssue(t, err, issue.InvalidLayoutId)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, harness.ErrInvalidLayout)
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts, _, _ := isolated(t)
	_, err := NewProvider().Load(ctx, opts)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	want := DefaultConfig()
	want.Ignore = []string{"test_*"}
	want.FailFast = true
	want.Watch.Debounce = 90 * time.Second
	want.Watch.Ignore = []string{"**/tmp/**"}

	opts, _, _ := isolated(t)
	opts.ConfigFilePath = filepath.Join(t.TempDir(), "round.cue")
	writeFile(t, opts.ConfigFilePath, GenerateCUE(want))

	got, err := load(t, opts)
	require.NoError(t, err)
	assert.Equal(t, want.Ignore, got.Ignore)
	assert.True(t, got.FailFast)
	assert.Equal(t, want.Layout, got.Layout)
	assert.Equal(t, want.Watch.Debounce, got.Watch.Debounce)
	assert.Equal(t, want.Watch.Ignore, got.Watch.Ignore)
	assert.Equal(t, want.Watch.Patterns, got.Watch.Patterns)
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "scitest")
	path, created, err := CreateDefaultConfig(dir)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), path)

	writeFile(t, path, "verbose: true\n")
	_, created, err = CreateDefaultConfig(dir)
	require.NoError(t, err)
	assert.False(t, created, "existing files are left alone")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "verbose: true\n", string(data))
}

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	ok, errs := DefaultConfig().IsValid()
	assert.True(t, ok)
	assert.Empty(t, errs)

	bad := DefaultConfig()
	bad.LogLevel = "chatty"
	bad.Layout.TestsDir = ""
	bad.Watch.Debounce = -time.Second
	ok, errs = bad.IsValid()
	require.False(t, ok)
	require.Len(t, errs, 1)

	var cfgErr *InvalidConfigError
	require.ErrorAs(t, errs[0], &cfgErr)
	assert.Len(t, cfgErr.FieldErrors, 3)
	assert.ErrorIs(t, errs[0], ErrInvalidConfig)
	assert.ErrorIs(t, errs[0], ErrInvalidLogLevel)
	assert.ErrorIs(t, errs[0], harness.ErrInvalidLayout)
	assert.ErrorIs(t, errs[0], ErrInvalidDebounce)
	assert.Contains(t, errs[0].Error(), "3 field error(s)")
}

func TestConfig_Level(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level   LogLevel
		verbose bool
		want    log.Level
	}{
		{LogLevelError, false, log.ErrorLevel},
		{LogLevelInfo, false, log.InfoLevel},
		{LogLevelError, true, log.DebugLevel},
		{"", false, log.WarnLevel},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level, Verbose: tt.verbose}
		assert.Equal(t, tt.want, cfg.Level(), "%q verbose=%v", tt.level, tt.verbose)
	}
}

func TestInvalidLogLevelError(t *testing.T) {
	t.Parallel()

	err := error(&InvalidLogLevelError{Value: "loud"})
	assert.True(t, errors.Is(err, ErrInvalidLogLevel))
	assert.Contains(t, err.Error(), `"loud"`)
}
