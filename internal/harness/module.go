// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	// KindModule marks a module file candidate.
	KindModule Kind = iota
	// KindPackage marks a sub-package directory candidate.
	KindPackage
)

var (
	// ErrInvalidPackage is the sentinel error wrapped by InvalidPackageError.
	ErrInvalidPackage = errors.New("invalid package")
	// ErrModuleNotFound is the sentinel error wrapped by ModuleNotFoundError.
	ErrModuleNotFound = errors.New("module not found")
)

type (
	// Kind classifies a discovery candidate.
	Kind int

	// Package is a namespace with a dotted name and a location on disk. File
	// is the package's init marker (or any file directly inside the package
	// directory); discovery scans filepath.Dir(File()).
	Package interface {
		Name() string
		File() string
	}

	// Module is a live, imported module or package. Every Module is also a
	// Package, so an imported sub-package can itself be harvested.
	Module interface {
		Package
	}

	// SuiteFactory is implemented by modules that can produce their test
	// suite. A nil or empty suite signals "no tests" and is reported as an
	// anomaly by SuiteBuilder.
	SuiteFactory interface {
		TestSuite(ctx context.Context) (*Suite, error)
	}

	// Tester is implemented by companion test modules that can run their
	// tests directly.
	Tester interface {
		Test(ctx context.Context) error
	}

	// ImportRef identifies what to import.
	ImportRef struct {
		// Name is the dotted module name.
		Name string
		// Path is the candidate's file or directory. Empty when the importer
		// must resolve Name against SearchPath.
		Path string
		// Kind tells module files from package directories.
		Kind Kind
		// Reload forces re-execution even when Name was imported before.
		Reload bool
		// SearchPath is a snapshot of the extra roots in effect.
		SearchPath []string
	}

	// Importer resolves a dotted name to a live Module.
	Importer interface {
		Import(ctx context.Context, ref ImportRef) (Module, error)
	}

	// ImporterFunc adapts a function to the Importer interface.
	ImporterFunc func(ctx context.Context, ref ImportRef) (Module, error)

	// Imported is a successfully imported discovery candidate.
	Imported struct {
		Module Module
		Path   string
		Kind   Kind
	}

	// InvalidPackageError is returned when a package handle has no usable name
	// or location. It wraps ErrInvalidPackage for errors.Is() compatibility.
	InvalidPackageError struct {
		Name   string
		File   string
		Reason string
	}

	// ModuleNotFoundError is returned when an importer cannot resolve a name.
	ModuleNotFoundError struct {
		Name       string
		SearchPath []string
	}

	packageRef struct {
		name string
		file string
	}
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindPackage:
		return "package"
	default:
		return "unknown"
	}
}

// Import calls f.
func (f ImporterFunc) Import(ctx context.Context, ref ImportRef) (Module, error) {
	return f(ctx, ref)
}

// Error implements the error interface.
func (e *InvalidPackageError) Error() string {
	if e.Name == "" && e.File == "" {
		return "invalid package: " + e.Reason
	}
	return fmt.Sprintf("invalid package %q (%s): %s", e.Name, e.File, e.Reason)
}

// Unwrap returns ErrInvalidPackage for errors.Is() compatibility.
func (e *InvalidPackageError) Unwrap() error {
	return ErrInvalidPackage
}

// Error implements the error interface.
func (e *ModuleNotFoundError) Error() string {
	if len(e.SearchPath) == 0 {
		return fmt.Sprintf("no module named %s", e.Name)
	}
	return fmt.Sprintf("no module named %s (searched %s)", e.Name, strings.Join(e.SearchPath, ", "))
}

// Unwrap returns ErrModuleNotFound for errors.Is() compatibility.
func (e *ModuleNotFoundError) Unwrap() error {
	return ErrModuleNotFound
}

func (p packageRef) Name() string { return p.name }
func (p packageRef) File() string { return p.file }

// NewPackage returns a handle for the package named name rooted at dir.
func NewPackage(name, dir string, layout Layout) Package {
	return packageRef{name: name, file: filepath.Join(dir, layout.InitFile)}
}

// PackageAt builds a handle for the package directory dir. The dotted name is
// derived by walking up through parents that also carry the init marker, so
// "src/scipy/base" yields "scipy.base" when both directories are packages.
func PackageAt(dir string, layout Layout) (Package, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve package directory: %w", err)
	}
	if !isPackageDir(abs, layout) {
		return nil, &InvalidPackageError{
			Name:   filepath.Base(abs),
			File:   filepath.Join(abs, layout.InitFile),
			Reason: "directory has no " + layout.InitFile,
		}
	}

	parts := []string{filepath.Base(abs)}
	for cur := filepath.Dir(abs); cur != filepath.Dir(cur) && isPackageDir(cur, layout); cur = filepath.Dir(cur) {
		parts = append(parts, filepath.Base(cur))
	}
	slices.Reverse(parts)

	return NewPackage(strings.Join(parts, "."), abs, layout), nil
}

// resolvePackage validates pkg and returns its directory and dotted name.
func resolvePackage(pkg Package) (dir, name string, err error) {
	if pkg == nil {
		return "", "", &InvalidPackageError{Reason: "nil package handle"}
	}
	name, file := pkg.Name(), pkg.File()
	if strings.TrimSpace(name) == "" {
		return "", "", &InvalidPackageError{File: file, Reason: "package has no name"}
	}
	if strings.TrimSpace(file) == "" {
		return "", "", &InvalidPackageError{Name: name, Reason: "package has no file"}
	}
	return filepath.Dir(file), name, nil
}

func isPackageDir(dir string, layout Layout) bool {
	info, err := os.Stat(filepath.Join(dir, layout.InitFile))
	return err == nil && !info.IsDir()
}
