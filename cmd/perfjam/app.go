// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/perfjam/perfjam/internal/config"
	"github.com/perfjam/perfjam/internal/messages"
	"github.com/perfjam/perfjam/internal/symbols"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// ResolverFactory returns a symbol resolver rooted at dir.
	ResolverFactory func(dir string) symbols.Resolver

	// App wires CLI services and shared dependencies. Command handlers receive an App
	// and reach configuration, symbol resolution and output only through it.
	App struct {
		Config    ConfigProvider
		Resolvers ResolverFactory
		stdout    io.Writer
		stderr    io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config    ConfigProvider
		Resolvers ResolverFactory
		Stdout    io.Writer
		Stderr    io.Writer
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:    deps.Config,
		Resolvers: deps.Resolvers,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Resolvers == nil {
		app.Resolvers = func(dir string) symbols.Resolver { return symbols.NewPackagesResolver(dir) }
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// Logger returns a stderr logger for one command run. Verbose lowers the level to debug.
func (a *App) Logger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: "perfjam"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// SlogLogger adapts logger for library code that logs through log/slog.
func SlogLogger(logger *log.Logger) *slog.Logger {
	return slog.New(logger)
}

// Sink returns the diagnostics sink that reports through logger.
func (a *App) Sink(logger *log.Logger) messages.Sink {
	return messages.NewLogSink(logger)
}

// loadConfig loads configuration honoring the global --config flag.
func (a *App) loadConfig(ctx context.Context, flags *rootFlags) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}
	applyColorScheme(cfg.UI.ColorScheme)
	return cfg, nil
}

// applyColorScheme forces the lipgloss background detection for explicit schemes.
func applyColorScheme(scheme config.ColorScheme) {
	switch scheme {
	case config.ColorSchemeDark:
		lipgloss.SetHasDarkBackground(true)
	case config.ColorSchemeLight:
		lipgloss.SetHasDarkBackground(false)
	}
}

// glamourStyle picks the issue rendering style for the current background.
func glamourStyle() string {
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
