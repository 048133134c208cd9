// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/issue"
)

func newGuideCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "guide [number]",
		Short: "Show troubleshooting guides",
		Long: `Show troubleshooting guides.

Without an argument the available guides are listed; with a number the
guide is rendered. Errors printed with --verbose include their guide.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, is := range issue.Values() {
					fmt.Fprintf(app.stdout, "%3d  %s\n", is.Id(), guideTitle(is))
				}
				return nil
			}

			n, err := strconv.Atoi(args[0])
			if err != nil {
				return usageError(fmt.Errorf("guide number %q: %w", args[0], err))
			}
			is := issue.Get(issue.Id(n))
			if is == nil {
				return usageError(fmt.Errorf("no guide numbered %d; run 'scitest guide' for the list", n))
			}
			rendered, err := is.Render(guideStyle)
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, rendered)
			return nil
		},
	}
}

// guideTitle returns the first markdown heading of the guide.
func guideTitle(is *issue.Issue) string {
	for line := range strings.Lines(string(is.MarkdownMsg())) {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return title
		}
	}
	return ""
}
