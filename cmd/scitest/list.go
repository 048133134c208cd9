// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/harness"
)

func newListCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var ignore []string

	listCmd := &cobra.Command{
		Use:   "list [package-dir]",
		Short: "Show the modules and packages discovery finds",
		Long: `Show the modules and packages discovery finds under a package, one per
line and indented by depth, without building or running any suite.

Candidates that fail to import are logged on stderr and left out.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			return app.listPackage(cmd.Context(), s, packageDirArg(args), ignore)
		},
	}

	listCmd.Flags().StringSliceVarP(&ignore, "ignore", "i", nil, "glob patterns of modules and packages to skip (repeatable)")

	return listCmd
}

func (a *App) listPackage(ctx context.Context, s *session, dir string, extraIgnore []string) error {
	pkg, err := openPackage(dir, s.layout())
	if err != nil {
		return usageError(err)
	}

	rec := harness.NewRecorder()
	reporter := harness.MultiReporter(rec, harness.NewLogReporter(s.logger))
	root := filepath.Dir(pkg.File())
	d := harness.NewDiscoverer(s.importer(root, reporter),
		harness.WithLayout(s.layout()),
		harness.WithReporter(reporter),
		harness.WithLogger(s.logger),
		harness.WithSearchPath(harness.NewSearchPath(s.searchPaths()...)),
	)

	fmt.Fprintf(a.stdout, "%s %s\n", TitleStyle.Render(pkg.Name()), SubtitleStyle.Render("("+root+")"))
	count, err := a.listLevel(ctx, d, pkg, root, s.ignore(extraIgnore), 1)
	if err != nil {
		return actionable("list package", pkg.Name(), err)
	}

	summary := fmt.Sprintf("%d found", count)
	if n := len(rec.Diagnostics()); n > 0 {
		summary += fmt.Sprintf(", %d reported", n)
	}
	fmt.Fprintln(a.stdout, SubtitleStyle.Render(summary))
	return nil
}

// listLevel prints the direct children of pkg and recurses into
// sub-packages. It returns how many entries were printed.
func (a *App) listLevel(ctx context.Context, d *harness.Discoverer, pkg harness.Package, root string, ignore []string, depth int) (int, error) {
	items, err := d.ModulesAndPackages(ctx, pkg, ignore)
	if err != nil {
		return 0, err
	}

	count := 0
	indent := strings.Repeat("  ", depth)
	for _, item := range items {
		rel, relErr := filepath.Rel(root, item.Path)
		if relErr != nil {
			rel = item.Path
		}
		fmt.Fprintf(a.stdout, "%s%-8s %s %s\n", indent, item.Kind, NameStyle.Render(item.Module.Name()), SubtitleStyle.Render(filepath.ToSlash(rel)))
		count++

		if item.Kind != harness.KindPackage {
			continue
		}
		n, err := a.listLevel(ctx, d, item.Module, root, ignore, depth+1)
		if err != nil {
			return count, err
		}
		count += n
	}
	return count, nil
}
