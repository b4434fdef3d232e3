// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/perfjam/perfjam/internal/annotate"
	"github.com/perfjam/perfjam/internal/issue"
	"github.com/perfjam/perfjam/internal/symbols"
	"github.com/perfjam/perfjam/pkg/results"
)

// errAnnotationDisabled is returned when annotation is neither enabled nor forced.
var errAnnotationDisabled = errors.New("annotation is disabled")

// annotateFlags holds the flags of "perfjam annotate".
type annotateFlags struct {
	force  bool
	strict bool
	dryRun bool
	dir    string
}

func newAnnotateCommand(app *App, root *rootFlags) *cobra.Command {
	flags := &annotateFlags{}

	cmd := &cobra.Command{
		Use:   "annotate <results.toml>...",
		Short: "Merge measured limits into benchmark sources",
		Long: `Merge measured limits into benchmark sources.

Each results file lists benchmarks with freshly measured limits. For every
benchmark, perfjam finds its declaration, checks that the source still matches
the recorded checksum and widens the stored limits to cover the new values.
Limits are kept either in //perfjam:limit directives above the benchmark or
in a sidecar file next to the source. Files are only written when a limit
actually changes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd.Context(), app, root, flags, args)
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false, "annotate even if annotate.enabled is false")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "exit with status 2 when any benchmark was skipped")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "report what would change without writing files")
	cmd.Flags().StringVar(&flags.dir, "dir", ".", "directory inside the module that declares the benchmarks")

	return cmd
}

func runAnnotate(ctx context.Context, app *App, root *rootFlags, flags *annotateFlags, paths []string) error {
	cfg, err := app.loadConfig(ctx, root)
	if err != nil {
		renderIssue(app.stderr, issue.ConfigLoadFailedId)
		return err
	}
	if !cfg.Annotate.Enabled && !flags.force && !flags.dryRun {
		renderIssue(app.stderr, issue.AnnotationDisabledId)
		return errAnnotationDisabled
	}

	targets, err := readTargets(paths)
	if err != nil {
		renderIssue(app.stderr, issue.ResultsInvalidId)
		return err
	}

	logger := app.Logger(root.verbose || cfg.UI.Verbose)
	engine := annotate.NewEngine(app.Resolvers(flags.dir),
		annotate.WithSink(app.Sink(logger)),
		annotate.WithSidecarExtension(cfg.Annotate.SidecarExtension.String()),
		annotate.WithRoundingDigits(cfg.Annotate.RoundingDigits),
		annotate.WithDryRun(flags.dryRun),
	)

	report, err := engine.AnnotateWithReport(ctx, targets)
	if report != nil {
		printAnnotateReport(app.stdout, report, flags.dryRun)
	}
	if err != nil {
		var saveErr *annotate.SaveError
		switch {
		case errors.Is(err, fs.ErrPermission):
			renderIssue(app.stderr, issue.PermissionDeniedId)
		case errors.As(err, &saveErr):
			renderIssue(app.stderr, issue.SaveFailedId)
		}
		return issue.NewErrorContext().
			WithOperation("annotate benchmarks").
			Wrap(err).
			BuildError()
	}

	skipped := len(report.Outcomes) - report.Count(annotate.StateAnnotated)
	if skipped > 0 {
		if root.verbose || cfg.UI.Verbose {
			renderIssue(app.stderr, issue.TargetsSkippedId)
		}
		if flags.strict {
			return &ExitError{Code: ExitSkipped, Err: fmt.Errorf("%d benchmark(s) skipped", skipped)}
		}
	}
	return nil
}

// readTargets loads every results file and converts its entries to engine targets.
func readTargets(paths []string) ([]annotate.Target, error) {
	var targets []annotate.Target
	for _, path := range paths {
		f, err := results.Read(path)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("read results").
				WithResource(path).
				WithSuggestion("Re-run the benchmarks to regenerate the file").
				Wrap(err).
				BuildError()
		}
		for _, t := range f.Targets {
			limits, err := t.MetricLimits()
			if err != nil {
				// Parse already validated the file.
				return nil, err
			}
			targets = append(targets, annotate.Target{
				Symbol:   symbols.Symbol{Package: t.Package, Name: t.Name},
				Sidecar:  t.Sidecar,
				Checksum: t.Checksum,
				Limits:   limits,
			})
		}
	}
	return targets, nil
}

func printAnnotateReport(w io.Writer, report *annotate.Report, dryRun bool) {
	for _, o := range report.Outcomes {
		state := o.State.String()
		var styled string
		switch {
		case o.State.IsSkipped():
			styled = WarningStyle.Render(stateColumnStyle.Render(state))
		case o.Changed:
			styled = SuccessStyle.Render(stateColumnStyle.Render(state))
		default:
			styled = SubtitleStyle.Render(stateColumnStyle.Render(state))
		}

		detail := o.Reason
		if detail == "" && o.File != "" {
			detail = relPath(o.File)
			if !o.Changed {
				detail += " (unchanged)"
			}
		}
		fmt.Fprintf(w, "%s %s  %s\n", styled, NameStyle.Render(o.Target.Name()), SubtitleStyle.Render(detail))
	}

	verb := "wrote"
	if dryRun {
		verb = "would write"
	}
	fmt.Fprintf(w, "\n%s %d annotated, %d skipped; %s %d file(s)\n",
		TitleStyle.Render("Summary:"),
		report.Count(annotate.StateAnnotated),
		len(report.Outcomes)-report.Count(annotate.StateAnnotated),
		verb, len(report.Written))
	for _, path := range report.Written {
		fmt.Fprintf(w, "  %s\n", relPath(path))
	}
}

// relPath shortens path relative to the working directory when possible.
func relPath(path string) string {
	wd, err := filepath.Abs(".")
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil && !filepath.IsAbs(rel) && len(rel) < len(path) {
		return rel
	}
	return path
}
