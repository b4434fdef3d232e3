// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perfjam/perfjam/internal/annotate"
	"github.com/perfjam/perfjam/internal/issue"
)

func newChecksumCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "checksum <file>...",
		Short: "Print the source checksum recorded in results files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				sum, err := annotate.ChecksumFile(path)
				if err != nil {
					return issue.NewErrorContext().
						WithOperation("compute checksum").
						WithResource(path).
						Wrap(err).
						BuildError()
				}
				fmt.Fprintf(app.stdout, "%s  %s\n", sum, path)
			}
			return nil
		},
	}
}
