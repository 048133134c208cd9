// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"context"
	"errors"
)

// ErrCaseFailed marks a case failure (as opposed to an unexpected error).
// Case implementations wrap it when an expectation is not met.
var ErrCaseFailed = errors.New("test case failed")

type (
	// Case is one runnable test.
	Case struct {
		Name string
		Run  func(ctx context.Context) error
	}

	// Suite is an ordered aggregation of cases and child suites.
	Suite struct {
		Name   string
		Cases  []Case
		Suites []*Suite
	}

	// SuiteBuilder turns the items a Discoverer finds into one composite suite.
	SuiteBuilder struct {
		discoverer *Discoverer
	}
)

// NewSuite creates a leaf suite.
func NewSuite(name string, cases ...Case) *Suite {
	return &Suite{Name: name, Cases: cases}
}

// Compose creates a composite suite over children, in order.
func Compose(name string, children ...*Suite) *Suite {
	return &Suite{Name: name, Suites: children}
}

// Add appends child suites.
func (s *Suite) Add(children ...*Suite) {
	s.Suites = append(s.Suites, children...)
}

// CountTestCases returns the number of cases in s and all its descendants.
// A nil suite has none.
func (s *Suite) CountTestCases() int {
	if s == nil {
		return 0
	}
	n := len(s.Cases)
	for _, child := range s.Suites {
		n += child.CountTestCases()
	}
	return n
}

// Empty reports whether the suite holds no cases at any depth.
func (s *Suite) Empty() bool {
	return s.CountTestCases() == 0
}

// Walk visits every case depth-first, own cases before child suites. fn
// receives the suite that directly owns the case. Walk stops at the first
// error fn returns.
func (s *Suite) Walk(fn func(owner *Suite, c Case) error) error {
	if s == nil {
		return nil
	}
	for _, c := range s.Cases {
		if err := fn(s, c); err != nil {
			return err
		}
	}
	for _, child := range s.Suites {
		if err := child.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// NewSuiteBuilder creates a SuiteBuilder over d. Diagnostics go to d's reporter.
func NewSuiteBuilder(d *Discoverer) *SuiteBuilder {
	return &SuiteBuilder{discoverer: d}
}

// Discoverer returns the underlying discoverer.
func (b *SuiteBuilder) Discoverer() *Discoverer {
	return b.discoverer
}

// Build discovers the modules and sub-packages of pkg, asks each for its test
// suite and composes the non-empty ones under pkg's name. Nothing a single
// item does makes Build fail; an empty result is a valid "no tests found".
func (b *SuiteBuilder) Build(ctx context.Context, pkg Package, ignore []string) (*Suite, error) {
	items, err := b.discoverer.ModulesAndPackages(ctx, pkg, ignore)
	if err != nil {
		return nil, err
	}

	outs := make([]outcome[*Suite], 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outs = append(outs, suiteFor(ctx, item))
	}

	suites, diags := partition(outs)
	for _, diag := range diags {
		b.discoverer.reporter.Report(diag)
	}
	return Compose(pkg.Name(), suites...), nil
}

func suiteFor(ctx context.Context, item *Imported) outcome[*Suite] {
	name := item.Module.Name()
	factory, ok := item.Module.(SuiteFactory)
	if !ok {
		return failed[*Suite](noSuite(name, item.Path))
	}

	suite, err := protect(func() (*Suite, error) { return factory.TestSuite(ctx) })
	switch {
	case err != nil:
		return failed[*Suite](suiteBuildFailed(name, item.Path, err))
	case suite.Empty():
		return failed[*Suite](emptySuite(name, item.Path))
	}
	return succeeded(suite)
}
