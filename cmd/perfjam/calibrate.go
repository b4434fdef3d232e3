// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/perfjam/perfjam/internal/calibrate"
	"github.com/perfjam/perfjam/internal/config"
	"github.com/perfjam/perfjam/internal/issue"
	"github.com/perfjam/perfjam/pkg/runner"
)

func newCalibrateCommand(app *App, root *rootFlags) *cobra.Command {
	plan := calibrate.DefaultPlan()

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Run a reference workload with the configured runner settings",
		Long: `Run a reference workload with the configured runner settings.

The workload runs in the isolated runner using runner.timeout,
runner.priority and runner.affinity from the configuration, and prints the
per-iteration report. Large spread between iterations means limits measured
on this machine will be wide.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), root)
			if err != nil {
				renderIssue(app.stderr, issue.ConfigLoadFailedId)
				return err
			}
			return runCalibrate(app, cfg, root.verbose || cfg.UI.Verbose, plan)
		},
	}

	cmd.Flags().IntVar(&plan.Iterations, "iterations", plan.Iterations, "number of measured iterations")
	cmd.Flags().Int64Var(&plan.Operations, "operations", plan.Operations, "workload invocations per iteration")

	return cmd
}

// newExecutor builds a runner from the runner section of the configuration.
func newExecutor(cfg *config.Config, opts ...runner.Option) (*runner.Executor, runner.ResourceHints, error) {
	timeout, err := cfg.Runner.Timeout.Duration()
	if err != nil {
		return nil, runner.ResourceHints{}, err
	}
	opts = append([]runner.Option{
		runner.WithTimeout(timeout),
		runner.WithPriority(runner.Priority(cfg.Runner.Priority)),
	}, opts...)
	return runner.NewExecutor(opts...), runner.ResourceHints{Affinity: cfg.Runner.Affinity}, nil
}

func runCalibrate(app *App, cfg *config.Config, verbose bool, plan calibrate.Plan) error {
	if err := plan.Validate(); err != nil {
		return err
	}

	logger := app.Logger(verbose)
	exec, hints, err := newExecutor(cfg, runner.WithLogger(SlogLogger(logger)))
	if err != nil {
		return err
	}
	logger.Debug("running calibration", "timeout", exec.Timeout(), "priority", cfg.Runner.Priority, "affinity", cfg.Runner.Affinity)

	res, err := exec.Execute(runner.Benchmark{Name: "calibrate", Run: calibrate.Payload(plan)}, hints)
	if err != nil {
		if errors.Is(err, runner.ErrExecutionTimeout) {
			renderIssue(app.stderr, issue.BenchmarkTimeoutId)
		}
		return err
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Calibration"))
	for _, line := range res.Output {
		fmt.Fprintf(app.stdout, "  %s\n", line)
	}
	if !res.Success {
		return &ExitError{
			Code: 1,
			Err:  fmt.Errorf("calibration failed with exit code %s: %s", res.ExitCode, strings.Join(res.Errors, "; ")),
		}
	}
	return nil
}
