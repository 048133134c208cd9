// SPDX-License-Identifier: MPL-2.0

package cuemod

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/cueutil"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/harness"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/shell"
)

// moduleFunction is the function name reported for failures at module level.
const moduleFunction = "<module>"

type (
	// Importer is a harness.Importer for CUE module files. Imported modules
	// are cached by name until an import asks for a reload.
	Importer struct {
		layout   harness.Layout
		shell    *shell.Runner
		reporter harness.Reporter
		logger   *log.Logger

		mu    sync.Mutex
		cache map[string]harness.Module
	}

	// Option configures an Importer.
	Option func(*Importer)
)

// Layout returns the CUE naming conventions: ".cue" modules, "__init__.cue"
// package markers, companions in "tests/test_<module>.cue".
func Layout() harness.Layout {
	return harness.Layout{
		ModuleExt:  ".cue",
		InitFile:   "__init__.cue",
		TestsDir:   "tests",
		TestPrefix: "test_",
	}
}

// WithLayout overrides the naming conventions.
func WithLayout(l harness.Layout) Option {
	return func(imp *Importer) { imp.layout = l }
}

// WithShell sets the runner case scripts execute in.
func WithShell(sh *shell.Runner) Option {
	return func(imp *Importer) {
		if sh != nil {
			imp.shell = sh
		}
	}
}

// WithReporter sets where package harvesting reports diagnostics.
func WithReporter(r harness.Reporter) Option {
	return func(imp *Importer) {
		if r != nil {
			imp.reporter = r
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(imp *Importer) {
		if l != nil {
			imp.logger = l
		}
	}
}

// New creates an Importer.
func New(opts ...Option) *Importer {
	imp := &Importer{
		layout:   Layout(),
		shell:    shell.New(),
		reporter: harness.ReporterFunc(func(harness.Diagnostic) {}),
		logger:   log.New(io.Discard),
		cache:    make(map[string]harness.Module),
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// Layout returns the importer's naming conventions.
func (imp *Importer) Layout() harness.Layout {
	return imp.layout
}

// Import loads the module or package ref names. With an empty ref.Path the
// name is resolved against ref.SearchPath, first root first.
func (imp *Importer) Import(ctx context.Context, ref harness.ImportRef) (harness.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	imp.mu.Lock()
	cached, ok := imp.cache[ref.Name]
	imp.mu.Unlock()
	if ok && !ref.Reload {
		return cached, nil
	}

	file, kind, err := imp.resolve(ref)
	if err != nil {
		return nil, err
	}
	imp.logger.Debug("loading module", "name", ref.Name, "file", file, "kind", kind, "reload", ref.Reload)

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read module %s: %w", ref.Name, err)
	}
	spec, err := ParseSpec(data, file)
	if err != nil {
		return nil, importError(err)
	}

	mod := imp.newModule(ref.Name, file, kind, spec, ref.SearchPath)

	imp.mu.Lock()
	imp.cache[ref.Name] = mod
	imp.mu.Unlock()
	return mod, nil
}

// Forget drops every cached module.
func (imp *Importer) Forget() {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	clear(imp.cache)
}

func (imp *Importer) newModule(name, file string, kind harness.Kind, spec *ModuleSpec, searchPath []string) harness.Module {
	base := Module{name: name, file: file, spec: spec}
	switch {
	case kind == harness.KindPackage && (spec.Harvest || spec.HasSuite()):
		return &PackageModule{Module: base, importer: imp, searchPath: searchPath}
	case kind == harness.KindModule && spec.HasSuite():
		return &SuiteModule{Module: base, importer: imp}
	default:
		return &base
	}
}

// resolve returns the file to load for ref and whether it is a package.
func (imp *Importer) resolve(ref harness.ImportRef) (string, harness.Kind, error) {
	if ref.Path != "" {
		if ref.Kind == harness.KindPackage {
			return filepath.Join(ref.Path, imp.layout.InitFile), harness.KindPackage, nil
		}
		return ref.Path, harness.KindModule, nil
	}

	rel := filepath.FromSlash(strings.ReplaceAll(ref.Name, ".", "/"))
	for _, root := range ref.SearchPath {
		if f := filepath.Join(root, rel+imp.layout.ModuleExt); isFile(f) {
			return f, harness.KindModule, nil
		}
		if f := filepath.Join(root, rel, imp.layout.InitFile); isFile(f) {
			return f, harness.KindPackage, nil
		}
	}
	return "", harness.KindModule, &harness.ModuleNotFoundError{Name: ref.Name, SearchPath: ref.SearchPath}
}

// importError locates CUE failures as module-level frames.
func importError(err error) error {
	var serr *cueutil.SourceError
	if !errors.As(err, &serr) {
		return err
	}
	kind := "ValidationError"
	if serr.Syntax {
		kind = "SyntaxError"
	}
	return &harness.FrameError{
		File:     serr.File,
		Line:     serr.Line,
		Kind:     kind,
		Message:  serr.Message(),
		Function: moduleFunction,
		Cause:    serr,
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
