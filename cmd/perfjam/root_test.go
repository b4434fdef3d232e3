// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/perfjam/perfjam/internal/annotate"
	"github.com/perfjam/perfjam/internal/config"
	"github.com/perfjam/perfjam/internal/symbols"
	"github.com/perfjam/perfjam/pkg/metric"
)

const benchFile = `package bench

import "testing"

//perfjam:limit time NaN NaN ns
func BenchmarkSum(b *testing.B) {
	for range b.N {
	}
}

func BenchmarkPlain(b *testing.B) {
	for range b.N {
	}
}
`

type staticConfig struct {
	cfg *config.Config
	err error
}

func (s staticConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	return s.cfg, s.err
}

type harness struct {
	dir     string
	source  string
	results string
	app     *App
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()

	dir := t.TempDir()
	source := filepath.Join(dir, "bench_test.go")
	if err := os.WriteFile(source, []byte(benchFile), 0o644); err != nil {
		t.Fatal(err)
	}
	results := filepath.Join(dir, "results.toml")
	data := `
[[target]]
package = "example.com/bench"
name = "BenchmarkSum"

[[target.limit]]
metric = "time"
min = 812.4
max = 947.5
unit = "ns"

[[target]]
package = "example.com/bench"
name = "BenchmarkPlain"

[[target.limit]]
metric = "time"
min = 1.0
max = 2.0
unit = "ns"
`
	if err := os.WriteFile(results, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	resolver := symbols.StaticResolver{
		{Package: "example.com/bench", Name: "BenchmarkSum"}:   {File: source, Line: 6},
		{Package: "example.com/bench", Name: "BenchmarkPlain"}: {File: source, Line: 11},
	}
	h := &harness{dir: dir, source: source, results: results, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	h.app = NewApp(Dependencies{
		Config:    staticConfig{cfg: cfg},
		Resolvers: func(string) symbols.Resolver { return resolver },
		Stdout:    h.stdout,
		Stderr:    h.stderr,
	})
	return h
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	root := NewRootCommand(h.app)
	root.SetArgs(args)
	root.SetOut(h.stdout)
	root.SetErr(h.stderr)
	return root.ExecuteContext(t.Context())
}

func enabledConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Annotate.Enabled = true
	return cfg
}

func TestAnnotate_WritesInlineLimits(t *testing.T) {
	t.Parallel()

	h := newHarness(t, enabledConfig())
	if err := h.run(t, "annotate", h.results); err != nil {
		t.Fatalf("annotate error = %v\nstderr:\n%s", err, h.stderr)
	}

	got, err := os.ReadFile(h.source)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "//perfjam:limit time 812 948 ns\n") {
		t.Errorf("source not annotated:\n%s", got)
	}
	out := h.stdout.String()
	if !strings.Contains(out, "1 annotated, 1 skipped") {
		t.Errorf("summary missing:\n%s", out)
	}
}

func TestAnnotate_Strict(t *testing.T) {
	t.Parallel()

	h := newHarness(t, enabledConfig())
	err := h.run(t, "annotate", "--strict", h.results)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != ExitSkipped {
		t.Fatalf("annotate --strict error = %v, want exit %d", err, ExitSkipped)
	}
}

func TestAnnotate_Disabled(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.DefaultConfig())
	if err := h.run(t, "annotate", h.results); !errors.Is(err, errAnnotationDisabled) {
		t.Fatalf("annotate error = %v, want errAnnotationDisabled", err)
	}
	if got, _ := os.ReadFile(h.source); string(got) != benchFile {
		t.Error("source modified while annotation disabled")
	}

	if err := h.run(t, "annotate", "--force", h.results); err != nil {
		t.Fatalf("annotate --force error = %v", err)
	}
	if got, _ := os.ReadFile(h.source); string(got) == benchFile {
		t.Error("source not modified with --force")
	}
}

func TestAnnotate_DryRun(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.DefaultConfig())
	if err := h.run(t, "annotate", "--dry-run", h.results); err != nil {
		t.Fatalf("annotate --dry-run error = %v", err)
	}
	if got, _ := os.ReadFile(h.source); string(got) != benchFile {
		t.Error("dry run modified the source")
	}
	if !strings.Contains(h.stdout.String(), "would write 1 file(s)") {
		t.Errorf("dry run summary:\n%s", h.stdout)
	}
}

func TestAnnotate_InvalidResults(t *testing.T) {
	t.Parallel()

	h := newHarness(t, enabledConfig())
	bad := filepath.Join(h.dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[[target]]\nname = \"BenchmarkSum\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := h.run(t, "annotate", bad); err == nil || !strings.Contains(err.Error(), "read results") {
		t.Fatalf("annotate error = %v, want read results failure", err)
	}
}

func TestAnnotate_ConfigError(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.app.Config = staticConfig{err: errors.New("broken config")}
	if err := h.run(t, "annotate", h.results); err == nil || err.Error() != "broken config" {
		t.Fatalf("annotate error = %v", err)
	}
}

func TestChecksum(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.DefaultConfig())
	if err := h.run(t, "checksum", h.source); err != nil {
		t.Fatalf("checksum error = %v", err)
	}
	want := annotate.Checksum([]byte(benchFile))
	if !strings.HasPrefix(h.stdout.String(), want+"  ") {
		t.Errorf("checksum output = %q, want prefix %q", h.stdout, want)
	}
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Metrics.Modifiers = []metric.ModifierName{metric.ModifierMeasureAllocations}
	h := newHarness(t, cfg)
	if err := h.run(t, "metrics"); err != nil {
		t.Fatalf("metrics error = %v", err)
	}
	out := h.stdout.String()
	for _, want := range []string{"reltime", "gc.alloc"} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q:\n%s", want, out)
		}
	}
}

func TestCalibrate(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Runner.Priority = config.PriorityNormal
	h := newHarness(t, cfg)
	if err := h.run(t, "calibrate", "--iterations", "2", "--operations", "1"); err != nil {
		t.Fatalf("calibrate error = %v", err)
	}
	out := h.stdout.String()
	if !strings.Contains(out, "WorkloadActual 2:") || !strings.Contains(out, "GC: ") {
		t.Errorf("calibrate output:\n%s", out)
	}
}

func TestConfigDump(t *testing.T) {
	t.Parallel()

	h := newHarness(t, enabledConfig())
	if err := h.run(t, "config", "dump"); err != nil {
		t.Fatalf("config dump error = %v", err)
	}
	if !strings.Contains(h.stdout.String(), "enabled:           true") {
		t.Errorf("config dump:\n%s", h.stdout)
	}
}

func TestFormatErrorForDisplay(t *testing.T) {
	t.Parallel()

	_, err := readTargets([]string{filepath.Join(t.TempDir(), "missing.toml")})
	got := formatErrorForDisplay(err, false)
	if !strings.Contains(got, "failed to read results") || !strings.Contains(got, "Re-run the benchmarks") {
		t.Errorf("formatErrorForDisplay() = %q", got)
	}
	if formatErrorForDisplay(errors.New("plain"), true) != "plain" {
		t.Error("plain errors should be shown as is")
	}
}
