// SPDX-License-Identifier: MPL-2.0

package cuemod

import (
	"context"
	"fmt"
	"slices"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/harness"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/runner"
)

// Compile-time interface checks.
var (
	_ harness.Module       = (*Module)(nil)
	_ harness.SuiteFactory = (*SuiteModule)(nil)
	_ harness.Tester       = (*SuiteModule)(nil)
	_ harness.SuiteFactory = (*PackageModule)(nil)
)

type (
	// Module is an imported module file without test_suite.
	Module struct {
		name string
		file string
		spec *ModuleSpec
	}

	// SuiteModule is a module that declares test_suite.
	SuiteModule struct {
		Module
		importer *Importer
	}

	// PackageModule is an imported package marker. Its suite is its own
	// cases followed by those harvested from the package's children.
	PackageModule struct {
		Module
		importer   *Importer
		searchPath []string
	}

	// TestsFailedError is returned by Test when any case did not pass.
	TestsFailedError struct {
		Module string
		Report *runner.Report
	}
)

// Name returns the dotted module name.
func (m *Module) Name() string { return m.name }

// File returns the module file.
func (m *Module) File() string { return m.file }

// Spec returns the decoded module content.
func (m *Module) Spec() *ModuleSpec { return m.spec }

// TestSuite returns the module's cases as a leaf suite.
func (m *SuiteModule) TestSuite(context.Context) (*harness.Suite, error) {
	return buildSuite(m.name, m.file, m.spec, m.importer.shell), nil
}

// Test runs the module's cases and fails when any of them does not pass.
func (m *SuiteModule) Test(ctx context.Context) error {
	suite, err := m.TestSuite(ctx)
	if err != nil {
		return err
	}
	report := runner.New(runner.WithLogger(m.importer.logger)).Run(ctx, suite)
	if err := ctx.Err(); err != nil {
		return err
	}
	if !report.OK() {
		return &TestsFailedError{Module: m.name, Report: report}
	}
	return nil
}

// TestSuite returns the package suite, harvesting children with the
// package's own ignore list.
func (m *PackageModule) TestSuite(ctx context.Context) (*harness.Suite, error) {
	return m.Suite(ctx, nil)
}

// Suite returns the package suite, harvesting children while skipping the
// package's ignore list plus extraIgnore.
func (m *PackageModule) Suite(ctx context.Context, extraIgnore []string) (*harness.Suite, error) {
	suite := buildSuite(m.name, m.file, m.spec, m.importer.shell)
	if !m.spec.Harvest {
		return suite, nil
	}

	d := harness.NewDiscoverer(m.importer,
		harness.WithLayout(m.importer.layout),
		harness.WithReporter(m.importer.reporter),
		harness.WithLogger(m.importer.logger),
		harness.WithSearchPath(harness.NewSearchPath(m.searchPath...)),
	)
	ignore := slices.Concat(m.spec.Ignore, extraIgnore)
	harvested, err := harness.NewSuiteBuilder(d).Build(ctx, m, ignore)
	if err != nil {
		return nil, err
	}
	suite.Add(harvested.Suites...)
	return suite, nil
}

// Error implements the error interface.
func (e *TestsFailedError) Error() string {
	return fmt.Sprintf("tests of %s: %s", e.Module, e.Report.Summary())
}

// Unwrap returns the errors of the cases that did not pass.
func (e *TestsFailedError) Unwrap() []error {
	var errs []error
	for _, res := range e.Report.Problems() {
		errs = append(errs, res.Err)
	}
	return errs
}
