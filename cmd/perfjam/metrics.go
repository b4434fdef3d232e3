// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perfjam/perfjam/internal/issue"
	"github.com/perfjam/perfjam/pkg/metric"
)

func newMetricsCommand(app *App, root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "List the metrics measured with the configured modifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), root)
			if err != nil {
				renderIssue(app.stderr, issue.ConfigLoadFailedId)
				return err
			}
			list, err := cfg.MetricList()
			if err != nil {
				return err
			}

			fmt.Fprintln(app.stdout, TitleStyle.Render("Measured metrics"))
			if len(list) == 0 {
				fmt.Fprintf(app.stdout, "  %s\n", SubtitleStyle.Render("(none)"))
			}
			for _, kind := range list {
				fmt.Fprintf(app.stdout, "  %s %s\n", NameStyle.Render(kind.Name), SubtitleStyle.Render(describeKind(kind)))
			}
			return nil
		},
	}
}

// describeKind returns "category, unit family" for display.
func describeKind(kind metric.Kind) string {
	category := kind.Category
	if category == "" {
		category = "custom"
	}
	family := string(kind.Family)
	if family == "" {
		family = "dimensionless"
	}
	return fmt.Sprintf("(%s, %s)", category, family)
}
