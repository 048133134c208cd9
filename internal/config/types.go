// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/cuemod"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/harness"
)

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	// DefaultDebounce is the watch quiet period used when none is configured.
	DefaultDebounce = 500 * time.Millisecond
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidDebounce is returned when the watch debounce is negative.
	ErrInvalidDebounce = errors.New("invalid watch debounce")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level the CLI logger emits.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Ignore lists extra glob patterns excluded from discovery.
		Ignore []string `json:"ignore" mapstructure:"ignore"`
		// Layout sets the package tree naming conventions.
		Layout LayoutConfig `json:"layout" mapstructure:"layout"`
		// LogLevel is the minimum level logged; --verbose forces debug.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// Verbose enables debug logging and error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// FailFast stops a run at the first failing case.
		FailFast bool `json:"fail_fast" mapstructure:"fail_fast"`
		// SearchPaths are extra roots the importer searches after the package root.
		SearchPaths []string `json:"search_paths" mapstructure:"search_paths"`
		// Watch configures `scitest run --watch`.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`

		// Source is the file the configuration was read from; empty when only
		// defaults and environment apply.
		Source string `json:"-" mapstructure:"-"`
	}

	// LayoutConfig mirrors harness.Layout in configuration files.
	LayoutConfig struct {
		ModuleExt  string `json:"module_ext" mapstructure:"module_ext"`
		InitFile   string `json:"init_file" mapstructure:"init_file"`
		TestsDir   string `json:"tests_dir" mapstructure:"tests_dir"`
		TestPrefix string `json:"test_prefix" mapstructure:"test_prefix"`
	}

	// WatchConfig configures the file watcher.
	WatchConfig struct {
		Debounce    time.Duration `json:"debounce" mapstructure:"debounce"`
		Patterns    []string      `json:"patterns" mapstructure:"patterns"`
		Ignore      []string      `json:"ignore" mapstructure:"ignore"`
		ClearScreen bool          `json:"clear_screen" mapstructure:"clear_screen"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	l := cuemod.Layout()
	return &Config{
		Ignore: []string{},
		Layout: LayoutConfig{
			ModuleExt:  l.ModuleExt,
			InitFile:   l.InitFile,
			TestsDir:   l.TestsDir,
			TestPrefix: l.TestPrefix,
		},
		LogLevel:    LogLevelWarn,
		Verbose:     false,
		FailFast:    false,
		SearchPaths: []string{},
		Watch: WatchConfig{
			Debounce:    DefaultDebounce,
			Patterns:    []string{"**/*" + l.ModuleExt},
			Ignore:      []string{},
			ClearScreen: false,
		},
	}
}

// HarnessLayout converts the configured layout for the discovery harness.
func (c LayoutConfig) HarnessLayout() harness.Layout {
	return harness.Layout{
		ModuleExt:  c.ModuleExt,
		InitFile:   c.InitFile,
		TestsDir:   c.TestsDir,
		TestPrefix: c.TestPrefix,
	}
}

// Level returns the charmbracelet/log level for the configuration. Verbose
// wins over LogLevel.
func (c *Config) Level() log.Level {
	if c.Verbose {
		return log.DebugLevel
	}
	lvl, err := log.ParseLevel(string(c.LogLevel))
	if err != nil {
		return log.WarnLevel
	}
	return lvl
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if err := c.Layout.HarnessLayout().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidDebounce, c.Watch.Debounce))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("invalid config: %v", e.FieldErrors[0])
	}
	return fmt.Sprintf("invalid config: %d field error(s): %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so both
// errors.Is(err, ErrInvalidConfig) and checks for a field's sentinel succeed.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels,
// and a list of validation errors if it is not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error {
	return ErrInvalidLogLevel
}
