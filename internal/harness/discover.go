// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

type (
	// Discoverer lists and imports the immediate children of a package
	// directory. It never descends into sub-directories.
	Discoverer struct {
		importer   Importer
		layout     Layout
		reporter   Reporter
		searchPath *SearchPath
		logger     *log.Logger
	}

	// Option configures a Discoverer.
	Option func(*Discoverer)
)

// WithLayout sets the file naming conventions. The default is DefaultLayout.
func WithLayout(l Layout) Option {
	return func(d *Discoverer) { d.layout = l }
}

// WithReporter sets where per-item diagnostics go. The default drops them.
func WithReporter(r Reporter) Option {
	return func(d *Discoverer) {
		if r != nil {
			d.reporter = r
		}
	}
}

// WithSearchPath sets the search path snapshot passed to the importer.
func WithSearchPath(sp *SearchPath) Option {
	return func(d *Discoverer) {
		if sp != nil {
			d.searchPath = sp
		}
	}
}

// WithLogger sets the debug logger used to trace candidates.
func WithLogger(l *log.Logger) Option {
	return func(d *Discoverer) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDiscoverer creates a Discoverer that imports through importer.
func NewDiscoverer(importer Importer, opts ...Option) *Discoverer {
	d := &Discoverer{
		importer:   importer,
		layout:     DefaultLayout(),
		reporter:   discardReporter{},
		searchPath: NewSearchPath(),
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Layout returns the discoverer's file naming conventions.
func (d *Discoverer) Layout() Layout {
	return d.layout
}

// Reporter returns the discoverer's diagnostic sink.
func (d *Discoverer) Reporter() Reporter {
	return d.reporter
}

// Modules imports every module file directly inside the package directory,
// skipping the ignore names and the layout's built-ins. Candidates that fail
// to import are reported and skipped; the result keeps directory order.
func (d *Discoverer) Modules(ctx context.Context, pkg Package, ignore []string) ([]*Imported, error) {
	dir, prefix, err := resolvePackage(pkg)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list package %s: %w", prefix, err)
	}

	candidates := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != d.layout.ModuleExt {
			continue
		}
		candidates = append(candidates, filepath.Join(dir, e.Name()))
	}
	candidates = Filter(candidates, d.layout, ignore, dir)

	outs := make([]outcome[*Imported], 0, len(candidates))
	for _, path := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		base := strings.TrimSuffix(filepath.Base(path), d.layout.ModuleExt)
		outs = append(outs, d.importCandidate(ctx, prefix+"."+base, path, KindModule))
	}
	return d.collect(outs), nil
}

// Packages imports every immediate sub-directory that carries the layout's
// init marker. Failures are isolated per candidate, as in Modules.
func (d *Discoverer) Packages(ctx context.Context, pkg Package, ignore []string) ([]*Imported, error) {
	dir, prefix, err := resolvePackage(pkg)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list package %s: %w", prefix, err)
	}

	candidates := make([]string, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, filepath.Join(dir, e.Name()))
	}
	candidates = Filter(candidates, d.layout, ignore, dir)

	outs := make([]outcome[*Imported], 0, len(candidates))
	for _, path := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if info, statErr := os.Stat(path); statErr != nil || !info.IsDir() || !isPackageDir(path, d.layout) {
			continue
		}
		outs = append(outs, d.importCandidate(ctx, prefix+"."+filepath.Base(path), path, KindPackage))
	}
	return d.collect(outs), nil
}

// ModulesAndPackages returns Modules followed by Packages.
func (d *Discoverer) ModulesAndPackages(ctx context.Context, pkg Package, ignore []string) ([]*Imported, error) {
	modules, err := d.Modules(ctx, pkg, ignore)
	if err != nil {
		return nil, err
	}
	packages, err := d.Packages(ctx, pkg, ignore)
	if err != nil {
		return nil, err
	}
	return append(modules, packages...), nil
}

func (d *Discoverer) importCandidate(ctx context.Context, name, path string, kind Kind) outcome[*Imported] {
	d.logger.Debug("importing", "name", name, "kind", kind)
	ref := ImportRef{
		Name:       name,
		Path:       path,
		Kind:       kind,
		SearchPath: d.searchPath.Snapshot(),
	}
	mod, err := protect(func() (Module, error) { return d.importer.Import(ctx, ref) })
	if err == nil && mod == nil {
		err = &ModuleNotFoundError{Name: name}
	}
	if err != nil {
		return failed[*Imported](importFailed(name, path, err))
	}
	return succeeded(&Imported{Module: mod, Path: path, Kind: kind})
}

func (d *Discoverer) collect(outs []outcome[*Imported]) []*Imported {
	imported, diags := partition(outs)
	for _, diag := range diags {
		d.reporter.Report(diag)
	}
	return imported
}
