// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/perfjam/perfjam/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	verbose    bool
	configPath string
}

// NewRootCommand builds the perfjam command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "perfjam",
		Short: "Record measured benchmark limits back into Go sources",
		Long: TitleStyle.Render("perfjam") + SubtitleStyle.Render(" - benchmark limits that follow your measurements") + `

perfjam keeps the acceptable range of every benchmark metric next to the
benchmark itself, either as //perfjam:limit directives above the function or
in a .perf.toml sidecar file, and widens those ranges from fresh results.

` + SubtitleStyle.Render("Examples:") + `
  perfjam annotate results.toml     Merge measured limits into sources
  perfjam metrics                   List the metrics measured by default
  perfjam checksum bench_test.go    Print the checksum harnesses record
  perfjam config init               Create a default configuration file`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/perfjam/config.cue)")

	rootCmd.AddCommand(
		newAnnotateCommand(app, flags),
		newMetricsCommand(app, flags),
		newChecksumCommand(app),
		newCalibrateCommand(app, flags),
		newConfigCommand(app, flags),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the command's exit code.
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display, expanding actionable
// errors with their suggestions.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderIssue writes the catalog entry for id to w. Rendering failures are ignored,
// the error that triggered the issue is reported separately.
func renderIssue(w io.Writer, id issue.Id) {
	iss := issue.Get(id)
	if iss == nil {
		return
	}
	rendered, err := iss.Render(glamourStyle())
	if err != nil {
		return
	}
	fmt.Fprint(w, rendered)
}
