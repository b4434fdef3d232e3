// SPDX-License-Identifier: MPL-2.0

package results

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/perfjam/perfjam/pkg/metric"
)

func TestParse(t *testing.T) {
	t.Parallel()

	input := `[[target]]
package = "example.com/bench"
name = "BenchmarkSum"
checksum = "00ff00ff00ff00ff"

[[target.limit]]
metric = "time"
min = 812.0
max = inf
unit = "ns"

[[target]]
package = "example.com/bench"
name = "BenchmarkConcat"
sidecar = true

[[target.limit]]
metric = "reltime"
min = nan
max = 1.2
`
	f, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(f.Targets) != 2 {
		t.Fatalf("len(Targets) = %d", len(f.Targets))
	}
	if f.Targets[0].Checksum != "00ff00ff00ff00ff" || f.Targets[0].Sidecar || !f.Targets[1].Sidecar {
		t.Errorf("targets = %+v", f.Targets)
	}

	limits, err := f.Targets[0].MetricLimits()
	if err != nil || len(limits) != 1 {
		t.Fatalf("MetricLimits() = %v, %v", limits, err)
	}
	if limits[0].Kind != metric.AbsoluteTime || !limits[0].Max.IsUnbounded() {
		t.Errorf("limit = %v", limits[0])
	}

	limits, _ = f.Targets[1].MetricLimits()
	if !limits[0].Min.IsUnset() {
		t.Errorf("limit = %v, want unset min", limits[0])
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "missing package", input: "[[target]]\nname = \"B\"\n"},
		{name: "missing name", input: "[[target]]\npackage = \"p\"\n"},
		{name: "duplicate metric", input: "[[target]]\npackage = \"p\"\nname = \"B\"\n[[target.limit]]\nmetric = \"reltime\"\nmin = 1.0\nmax = 2.0\n[[target.limit]]\nmetric = \"reltime\"\nmin = 1.0\nmax = 2.0\n"},
		{name: "wrong unit family", input: "[[target]]\npackage = \"p\"\nname = \"B\"\n[[target.limit]]\nmetric = \"gc.alloc\"\nmin = 1.0\nmax = 2.0\nunit = \"ms\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.input))
			if !errors.Is(err, ErrInvalidResults) {
				t.Errorf("Parse() error = %v, want ErrInvalidResults", err)
			}
		})
	}

	if _, err := Parse([]byte("[[target]]\nbogus = 1\n")); err == nil {
		t.Error("Parse() accepted an unknown field")
	}
}

func TestWriteRead(t *testing.T) {
	t.Parallel()

	ns, _ := metric.ParseUnit("ns")
	f := &File{}
	f.Add("example.com/bench", "BenchmarkSum",
		metric.Limit{Kind: metric.RelativeTime, Min: metric.NegativeInfinity(), Max: metric.Value(1.5)},
		metric.NewLimit(metric.AbsoluteTime, 10, 20, ns)).Checksum = "abc"

	path := filepath.Join(t.TempDir(), "results.toml")
	if err := f.Write(path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	back, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	limits, err := back.Targets[0].MetricLimits()
	if err != nil {
		t.Fatal(err)
	}
	if !limits[0].Min.IsUnbounded() || limits[0].Min.Float64() > 0 {
		t.Errorf("min = %v, want -Inf", limits[0].Min)
	}
	if limits[1].String() != "[10, 20] ns" || back.Targets[0].Checksum != "abc" {
		t.Errorf("round trip = %v, %+v", limits[1], back.Targets[0])
	}
}

func TestRead_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Read(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil || !strings.Contains(err.Error(), "nope.toml") {
		t.Errorf("Read() error = %v", err)
	}
}
