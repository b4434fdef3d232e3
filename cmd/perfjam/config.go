// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/perfjam/perfjam/internal/config"
	"github.com/perfjam/perfjam/internal/issue"
)

// newConfigCommand creates the `perfjam config` command tree.
func newConfigCommand(app *App, root *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage perfjam configuration",
		Long: `Manage perfjam configuration.

Configuration is stored in:
  - Linux: ~/.config/perfjam/config.cue
  - macOS: ~/Library/Application Support/perfjam/config.cue
  - Windows: %APPDATA%\perfjam\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, root)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig("")
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			resolved, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: root.configPath})
			if err != nil {
				return err
			}
			if resolved == "" {
				resolved = "(none, using defaults)"
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
			fmt.Fprintf(app.stdout, "Config file: %s\n", resolved)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), root)
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, root *rootFlags) error {
	cfg, err := app.loadConfig(ctx, root)
	if err != nil {
		renderIssue(app.stderr, issue.ConfigLoadFailedId)
		return err
	}

	resolved, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: root.configPath})
	if err != nil || resolved == "" {
		resolved = SubtitleStyle.Render("(using defaults)")
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s: %s\n\n", NameStyle.Render("Config file"), resolved)

	affinity := "(all CPUs)"
	if len(cfg.Runner.Affinity) > 0 {
		ids := make([]string, len(cfg.Runner.Affinity))
		for i, cpu := range cfg.Runner.Affinity {
			ids[i] = strconv.Itoa(cpu)
		}
		affinity = strings.Join(ids, ", ")
	}
	modifiers := "(none)"
	if len(cfg.Metrics.Modifiers) > 0 {
		names := make([]string, len(cfg.Metrics.Modifiers))
		for i, m := range cfg.Metrics.Modifiers {
			names[i] = string(m)
		}
		modifiers = strings.Join(names, ", ")
	}

	sections := []struct {
		name   string
		values [][2]string
	}{
		{"runner", [][2]string{
			{"timeout", cfg.Runner.Timeout.String()},
			{"priority", cfg.Runner.Priority.String()},
			{"affinity", affinity},
		}},
		{"annotate", [][2]string{
			{"enabled", strconv.FormatBool(cfg.Annotate.Enabled)},
			{"sidecar_extension", cfg.Annotate.SidecarExtension.String()},
			{"rounding_digits", strconv.Itoa(cfg.Annotate.RoundingDigits)},
		}},
		{"metrics", [][2]string{
			{"modifiers", modifiers},
		}},
		{"ui", [][2]string{
			{"verbose", strconv.FormatBool(cfg.UI.Verbose)},
			{"color_scheme", cfg.UI.ColorScheme.String()},
		}},
	}
	for _, s := range sections {
		fmt.Fprintf(app.stdout, "%s:\n", NameStyle.Render(s.name))
		for _, kv := range s.values {
			fmt.Fprintf(app.stdout, "  %s: %s\n", kv[0], SuccessStyle.Render(kv[1]))
		}
		fmt.Fprintln(app.stdout)
	}
	return nil
}
