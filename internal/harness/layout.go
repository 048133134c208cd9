// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLayout is the sentinel error wrapped by InvalidLayoutError.
var ErrInvalidLayout = errors.New("invalid layout")

type (
	// Layout describes the file naming conventions of a package tree.
	Layout struct {
		// ModuleExt is the module file extension including the dot (e.g. ".py").
		ModuleExt string
		// InitFile is the marker file that makes a directory a package.
		InitFile string
		// TestsDir is the directory, next to a module, holding its companion tests.
		TestsDir string
		// TestPrefix is prepended to a module's short name to name its companion.
		TestPrefix string
	}

	// InvalidLayoutError is returned when a Layout has empty or malformed fields.
	// It wraps ErrInvalidLayout for errors.Is() compatibility.
	InvalidLayoutError struct {
		Field  string
		Reason string
	}
)

// DefaultLayout returns the Python-style layout: ".py" modules, "__init__.py"
// package markers, companion tests in "tests/test_<module>.py".
func DefaultLayout() Layout {
	return Layout{
		ModuleExt:  ".py",
		InitFile:   "__init__.py",
		TestsDir:   "tests",
		TestPrefix: "test_",
	}
}

// Error implements the error interface.
func (e *InvalidLayoutError) Error() string {
	return fmt.Sprintf("invalid layout: %s %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidLayout for errors.Is() compatibility.
func (e *InvalidLayoutError) Unwrap() error {
	return ErrInvalidLayout
}

// Validate reports the first malformed field of the layout.
func (l Layout) Validate() error {
	switch {
	case l.ModuleExt == "":
		return &InvalidLayoutError{Field: "module extension", Reason: "is empty"}
	case !strings.HasPrefix(l.ModuleExt, "."):
		return &InvalidLayoutError{Field: "module extension", Reason: "must start with '.'"}
	case l.InitFile == "":
		return &InvalidLayoutError{Field: "init file", Reason: "is empty"}
	case strings.ContainsAny(l.InitFile, `/\`):
		return &InvalidLayoutError{Field: "init file", Reason: "must be a bare file name"}
	case l.TestsDir == "":
		return &InvalidLayoutError{Field: "tests directory", Reason: "is empty"}
	}
	return nil
}

// builtinIgnores returns the names that are never discovered: setup scripts
// and the package init marker.
func (l Layout) builtinIgnores() []string {
	return []string{
		"setup" + l.ModuleExt,
		"setup_*" + l.ModuleExt,
		l.InitFile,
	}
}

// companionName returns the companion test module name for a dotted module name.
func (l Layout) companionName(moduleName string) string {
	short := moduleName
	if i := strings.LastIndex(moduleName, "."); i >= 0 {
		short = moduleName[i+1:]
	}
	return l.TestPrefix + short
}
