// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/perfjam/perfjam/pkg/metric"
)

const (
	// PriorityNormal leaves benchmark workers at the default scheduling priority.
	// Defined locally to avoid coupling config to pkg/runner.
	PriorityNormal RunnerPriority = "normal"
	// PriorityHigh raises the scheduling priority of benchmark workers.
	PriorityHigh RunnerPriority = "high"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// maxRoundingDigits is the most significant digits a float64 bound can carry.
	maxRoundingDigits = 15
)

var (
	// ErrInvalidDuration is returned when a DurationString cannot be parsed.
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrInvalidRunnerPriority is returned when a RunnerPriority value is not recognized.
	ErrInvalidRunnerPriority = errors.New("invalid runner priority")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidSidecarExtension is returned when a SidecarExtension is malformed.
	ErrInvalidSidecarExtension = errors.New("invalid sidecar extension")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// DurationString is a Go duration literal such as "90s" or "5m".
	DurationString string

	// InvalidDurationError is returned when a DurationString is not a positive duration.
	// It wraps ErrInvalidDuration for errors.Is() compatibility.
	InvalidDurationError struct {
		Value DurationString
		Err   error
	}

	// RunnerPriority is the scheduling class used for benchmark workers.
	RunnerPriority string

	// InvalidRunnerPriorityError is returned when a RunnerPriority value is not recognized.
	// It wraps ErrInvalidRunnerPriority for errors.Is() compatibility.
	InvalidRunnerPriorityError struct {
		Value RunnerPriority
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// SidecarExtension replaces the source file extension to name limit documents.
	SidecarExtension string

	// InvalidSidecarExtensionError is returned when a SidecarExtension does not start
	// with a dot or contains a path separator.
	InvalidSidecarExtensionError struct {
		Value SidecarExtension
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Runner configures in-process benchmark execution
		Runner RunnerConfig `json:"runner" mapstructure:"runner"`
		// Annotate configures limit annotation
		Annotate AnnotateConfig `json:"annotate" mapstructure:"annotate"`
		// Metrics selects the measured metrics
		Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// RunnerConfig configures the isolated benchmark runner.
	RunnerConfig struct {
		// Timeout bounds a single benchmark run (default: "5m").
		Timeout DurationString `json:"timeout" mapstructure:"timeout"`
		// Priority is "normal" or "high" (default: "high").
		Priority RunnerPriority `json:"priority" mapstructure:"priority"`
		// Affinity pins workers to the listed CPU ids. Empty means no pinning.
		Affinity []int `json:"affinity" mapstructure:"affinity"`
	}

	// AnnotateConfig controls how measured limits are written back.
	AnnotateConfig struct {
		// Enabled allows rewriting sources and sidecars (default: false).
		Enabled bool `json:"enabled" mapstructure:"enabled"`
		// SidecarExtension names sidecar documents (default: ".perf.toml").
		SidecarExtension SidecarExtension `json:"sidecar_extension" mapstructure:"sidecar_extension"`
		// RoundingDigits is the number of significant digits kept when widening limits.
		RoundingDigits int `json:"rounding_digits" mapstructure:"rounding_digits"`
	}

	// MetricsConfig lists the modifiers applied to the default metric list, in order.
	MetricsConfig struct {
		Modifiers []metric.ModifierName `json:"modifiers" mapstructure:"modifiers"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ColorScheme sets the color scheme ("auto", "dark", "light")
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// Error implements the error interface.
func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration %q: %v", e.Value, e.Err)
}

// Unwrap returns ErrInvalidDuration so callers can use errors.Is for programmatic detection.
func (e *InvalidDurationError) Unwrap() error { return ErrInvalidDuration }

// Duration parses the value. The empty string yields zero.
func (d DurationString) Duration() (time.Duration, error) {
	if d == "" {
		return 0, nil
	}
	v, err := time.ParseDuration(string(d))
	if err != nil {
		return 0, &InvalidDurationError{Value: d, Err: err}
	}
	if v <= 0 {
		return 0, &InvalidDurationError{Value: d, Err: errors.New("must be positive")}
	}
	return v, nil
}

// IsValid returns whether the DurationString is empty or a positive duration,
// and a list of validation errors if it is not.
func (d DurationString) IsValid() (bool, []error) {
	if _, err := d.Duration(); err != nil {
		return false, []error{err}
	}
	return true, nil
}

// String returns the string representation of the DurationString.
func (d DurationString) String() string { return string(d) }

// Error implements the error interface.
func (e *InvalidRunnerPriorityError) Error() string {
	return fmt.Sprintf("invalid runner priority %q (valid: normal, high)", e.Value)
}

// Unwrap returns ErrInvalidRunnerPriority so callers can use errors.Is for programmatic detection.
func (e *InvalidRunnerPriorityError) Unwrap() error { return ErrInvalidRunnerPriority }

// IsValid returns whether the RunnerPriority is a known class,
// and a list of validation errors if it is not.
func (p RunnerPriority) IsValid() (bool, []error) {
	switch p {
	case PriorityNormal, PriorityHigh:
		return true, nil
	default:
		return false, []error{&InvalidRunnerPriorityError{Value: p}}
	}
}

// String returns the string representation of the RunnerPriority.
func (p RunnerPriority) String() string { return string(p) }

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme so callers can use errors.Is for programmatic detection.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// Error implements the error interface.
func (e *InvalidSidecarExtensionError) Error() string {
	return fmt.Sprintf("invalid sidecar extension %q (must start with '.' and contain no path separator)", e.Value)
}

// Unwrap returns ErrInvalidSidecarExtension so callers can use errors.Is for programmatic detection.
func (e *InvalidSidecarExtensionError) Unwrap() error { return ErrInvalidSidecarExtension }

// IsValid returns whether the SidecarExtension is usable as a file suffix,
// and a list of validation errors if it is not.
func (s SidecarExtension) IsValid() (bool, []error) {
	if len(s) < 2 || s[0] != '.' || strings.ContainsAny(string(s), `/\`) {
		return false, []error{&InvalidSidecarExtensionError{Value: s}}
	}
	return true, nil
}

// String returns the string representation of the SidecarExtension.
func (s SidecarExtension) String() string { return string(s) }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Errors returns the field errors joined into a single error for display.
func (e *InvalidConfigError) Errors() error { return errors.Join(e.FieldErrors...) }

// IsValid returns whether the Config has valid fields,
// and a list of validation errors if it does not.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if ok, fieldErrs := c.Runner.Timeout.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := c.Runner.Priority.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	for _, cpu := range c.Runner.Affinity {
		if cpu < 0 {
			errs = append(errs, fmt.Errorf("runner.affinity: negative CPU id %d", cpu))
		}
	}
	if ok, fieldErrs := c.Annotate.SidecarExtension.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if c.Annotate.RoundingDigits < 0 || c.Annotate.RoundingDigits > maxRoundingDigits {
		errs = append(errs, fmt.Errorf("annotate.rounding_digits: %d is outside 0..%d", c.Annotate.RoundingDigits, maxRoundingDigits))
	}
	for _, name := range c.Metrics.Modifiers {
		if ok, fieldErrs := name.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if ok, fieldErrs := c.UI.ColorScheme.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// MetricList returns the default metric list with the configured modifiers applied.
func (c Config) MetricList() (metric.List, error) {
	list := metric.DefaultList()
	for _, name := range c.Metrics.Modifiers {
		mod, err := metric.LookupModifier(name)
		if err != nil {
			return nil, err
		}
		list.Apply(mod)
	}
	return list, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Runner: RunnerConfig{
			Timeout:  "5m",
			Priority: PriorityHigh,
			Affinity: []int{},
		},
		Annotate: AnnotateConfig{
			Enabled:          false,
			SidecarExtension: ".perf.toml",
			RoundingDigits:   3,
		},
		Metrics: MetricsConfig{
			Modifiers: []metric.ModifierName{},
		},
		UI: UIConfig{
			Verbose:     false,
			ColorScheme: ColorSchemeAuto,
		},
	}
}
