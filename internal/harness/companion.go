// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

// ErrNoCompanionEntryPoint is returned when the companion module lacks the
// entry point an operation needs.
var ErrNoCompanionEntryPoint = errors.New("companion module has no entry point")

type (
	// Companion locates a module's companion test module ("tests/test_<name>")
	// and runs it or builds its suite.
	//
	// Both operations push the module's tests directory on the search path for
	// the duration of the lookup and release it on every exit path. Both
	// propagate failures to the caller once the search path is restored.
	Companion struct {
		importer   Importer
		layout     Layout
		searchPath *SearchPath
	}

	// CompanionOption configures a Companion.
	CompanionOption func(*Companion)

	// CompanionError reports which step of a companion operation failed.
	CompanionError struct {
		Module    string
		Companion string
		Op        string
		Err       error
	}
)

// WithCompanionLayout sets the naming conventions. The default is DefaultLayout.
func WithCompanionLayout(l Layout) CompanionOption {
	return func(c *Companion) { c.layout = l }
}

// WithCompanionSearchPath shares sp instead of a private search path.
func WithCompanionSearchPath(sp *SearchPath) CompanionOption {
	return func(c *Companion) {
		if sp != nil {
			c.searchPath = sp
		}
	}
}

// NewCompanion creates a Companion that imports through importer.
func NewCompanion(importer Importer, opts ...CompanionOption) *Companion {
	c := &Companion{
		importer:   importer,
		layout:     DefaultLayout(),
		searchPath: NewSearchPath(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchPath returns the search path the companion pushes onto.
func (c *Companion) SearchPath() *SearchPath {
	return c.searchPath
}

// Error implements the error interface.
func (e *CompanionError) Error() string {
	return fmt.Sprintf("%s %s for %s: %v", e.Op, e.Companion, e.Module, e.Err)
}

// Unwrap returns the underlying error.
func (e *CompanionError) Unwrap() error {
	return e.Err
}

// RunModuleTests imports the companion of moduleName (freshly, so edits are
// picked up) and calls its Test entry point.
func (c *Companion) RunModuleTests(ctx context.Context, moduleName, moduleFile string) error {
	return c.withCompanion(ctx, moduleName, moduleFile, func(name string, mod Module) error {
		tester, ok := mod.(Tester)
		if !ok {
			return &CompanionError{Module: moduleName, Companion: name, Op: "test", Err: ErrNoCompanionEntryPoint}
		}
		if err := RunProtected(func() error { return tester.Test(ctx) }); err != nil {
			return &CompanionError{Module: moduleName, Companion: name, Op: "test", Err: err}
		}
		return nil
	})
}

// BuildModuleSuite imports the companion of moduleName (freshly) and returns
// the suite its factory produces.
func (c *Companion) BuildModuleSuite(ctx context.Context, moduleName, moduleFile string) (*Suite, error) {
	var suite *Suite
	err := c.withCompanion(ctx, moduleName, moduleFile, func(name string, mod Module) error {
		factory, ok := mod.(SuiteFactory)
		if !ok {
			return &CompanionError{Module: moduleName, Companion: name, Op: "build suite", Err: ErrNoCompanionEntryPoint}
		}
		s, err := protect(func() (*Suite, error) { return factory.TestSuite(ctx) })
		if err != nil {
			return &CompanionError{Module: moduleName, Companion: name, Op: "build suite", Err: err}
		}
		suite = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return suite, nil
}

func (c *Companion) withCompanion(ctx context.Context, moduleName, moduleFile string, fn func(name string, mod Module) error) error {
	testsDir := filepath.Join(filepath.Dir(moduleFile), c.layout.TestsDir)
	name := c.layout.companionName(moduleName)

	return c.searchPath.Scope(testsDir, func() error {
		ref := ImportRef{
			Name:       name,
			Kind:       KindModule,
			Reload:     true,
			SearchPath: c.searchPath.Snapshot(),
		}
		mod, err := protect(func() (Module, error) { return c.importer.Import(ctx, ref) })
		if err == nil && mod == nil {
			err = &ModuleNotFoundError{Name: name, SearchPath: ref.SearchPath}
		}
		if err != nil {
			return &CompanionError{Module: moduleName, Companion: name, Op: "import", Err: err}
		}
		return fn(name, mod)
	})
}
