// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/cuemod"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/harness"
)

func newModuleCommand(app *App, flags *rootFlagValues) *cobra.Command {
	moduleCmd := &cobra.Command{
		Use:   "module",
		Short: "Run or inspect the companion tests of one module",
		Long: `Run or inspect the companion tests of one module.

The companion of module "pkg.shape" is "test_shape", looked up in the tests
directory next to the module file and then on the configured search paths.
A module is given as a file path or as a dotted name resolved from the
current directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	moduleCmd.AddCommand(&cobra.Command{
		Use:   "test <module>",
		Short: "Run the module's companion tests",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			return app.testModule(cmd.Context(), s, args[0])
		},
	})

	moduleCmd.AddCommand(&cobra.Command{
		Use:   "suite <module>",
		Short: "List the cases of the module's companion suite",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			return app.showModuleSuite(cmd.Context(), s, args[0])
		},
	})

	return moduleCmd
}

// companion resolves arg and builds a Companion whose importer runs scripts
// next to the module.
func (s *session) companion(arg string) (*harness.Companion, string, string, error) {
	layout := s.layout()
	roots := append([]string{"."}, s.searchPaths()...)
	name, file, err := resolveModule(arg, layout, roots)
	if err != nil {
		return nil, "", "", usageError(actionable("find module", arg, err))
	}

	reporter := harness.NewLogReporter(s.logger)
	comp := harness.NewCompanion(s.importer(filepath.Dir(file), reporter),
		harness.WithCompanionLayout(layout),
		harness.WithCompanionSearchPath(harness.NewSearchPath(s.searchPaths()...)),
	)
	return comp, name, file, nil
}

func (a *App) testModule(ctx context.Context, s *session, arg string) error {
	comp, name, file, err := s.companion(arg)
	if err != nil {
		return err
	}

	err = comp.RunModuleTests(ctx, name, file)
	if err == nil {
		fmt.Fprintln(a.stdout, SuccessStyle.Render("OK")+" "+name)
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var failed *cuemod.TestsFailedError
	if errors.As(err, &failed) {
		if werr := failed.Report.WriteDetails(a.stdout); werr != nil {
			return werr
		}
		return testsFailed(name, failed.Report)
	}
	return companionFailure(name, err)
}

func (a *App) showModuleSuite(ctx context.Context, s *session, arg string) error {
	comp, name, file, err := s.companion(arg)
	if err != nil {
		return err
	}

	suite, err := comp.BuildModuleSuite(ctx, name, file)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return companionFailure(name, err)
	}

	fmt.Fprintln(a.stdout, TitleStyle.Render(suite.Name))
	err = suite.Walk(func(owner *harness.Suite, c harness.Case) error {
		_, werr := fmt.Fprintf(a.stdout, "  %s (%s)\n", c.Name, owner.Name)
		return werr
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, SubtitleStyle.Render(fmt.Sprintf("%d tests", suite.CountTestCases())))
	return nil
}

// companionFailure maps a companion error to an exit status: a companion
// that cannot be found or parsed is a usage error, anything else a failure.
func companionFailure(name string, err error) error {
	ae := actionable("run companion tests of", name, err)
	var fe *harness.FrameError
	if errors.Is(err, harness.ErrModuleNotFound) || errors.Is(err, harness.ErrNoCompanionEntryPoint) || errors.As(err, &fe) {
		return usageError(ae)
	}
	return &ExitError{Code: ExitTestsFailed, Err: ae}
}

// resolveModule returns the dotted name and file of arg, which is either a
// module file or a dotted name looked up under roots.
func resolveModule(arg string, layout harness.Layout, roots []string) (name, file string, err error) {
	if isFile(arg) {
		file, err = filepath.Abs(arg)
		if err != nil {
			return "", "", err
		}
		return moduleNameFor(file, layout), file, nil
	}

	rel := filepath.FromSlash(strings.ReplaceAll(arg, ".", "/"))
	for _, root := range roots {
		for _, candidate := range []string{
			filepath.Join(root, rel+layout.ModuleExt),
			filepath.Join(root, rel, layout.InitFile),
		} {
			if isFile(candidate) {
				file, err = filepath.Abs(candidate)
				if err != nil {
					return "", "", err
				}
				return arg, file, nil
			}
		}
	}
	return "", "", &harness.ModuleNotFoundError{Name: arg, SearchPath: roots}
}

// moduleNameFor derives the dotted name of a module file from the packages
// enclosing it. A package marker names the package itself.
func moduleNameFor(file string, layout harness.Layout) string {
	dir := filepath.Dir(file)
	pkg, err := harness.PackageAt(dir, layout)
	if filepath.Base(file) == layout.InitFile {
		if err != nil {
			return filepath.Base(dir)
		}
		return pkg.Name()
	}

	short := strings.TrimSuffix(filepath.Base(file), layout.ModuleExt)
	if err != nil {
		return short
	}
	return pkg.Name() + "." + short
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
