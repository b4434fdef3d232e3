// SPDX-License-Identifier: MPL-2.0

package annotate

import (
	"errors"
	"testing"

	"github.com/perfjam/perfjam/pkg/metric"
)

func TestParseDirective(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		line      string
		directive bool
		wantErr   bool
		want      string
	}{
		{name: "plain comment", line: "// BenchmarkSum measures Sum.", directive: false},
		{name: "other directive", line: "//perfjam:limits x", directive: false},
		{name: "no unit", line: "//perfjam:limit reltime 0.9 1.1", directive: true, want: "[0.9, 1.1]"},
		{name: "unit and indent", line: "\t//perfjam:limit time 10 +Inf ns", directive: true, want: "[10, +Inf] ns"},
		{name: "unset", line: "//perfjam:limit gc.gen0 NaN NaN", directive: true, want: "[NaN, NaN]"},
		{name: "note", line: "//perfjam:limit reltime -Inf 2 // flaky on CI", directive: true, want: "[-Inf, 2]"},
		{name: "too few", line: "//perfjam:limit reltime 1", directive: true, wantErr: true},
		{name: "too many", line: "//perfjam:limit time 1 2 ns extra", directive: true, wantErr: true},
		{name: "bad bound", line: "//perfjam:limit reltime one 2", directive: true, wantErr: true},
		{name: "bad unit", line: "//perfjam:limit time 1 2 parsec", directive: true, wantErr: true},
		{name: "wrong family", line: "//perfjam:limit time 1 2 KB", directive: true, wantErr: true},
		{name: "min above max", line: "//perfjam:limit reltime 3 2", directive: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, ok, err := parseDirective(tt.line, 4)
			if ok != tt.directive {
				t.Fatalf("ok = %v, want %v", ok, tt.directive)
			}
			if tt.wantErr {
				var me *MalformedDirectiveError
				if !errors.As(err, &me) || me.Line != 5 {
					t.Fatalf("err = %v, want *MalformedDirectiveError on line 5", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if ok && d.limit.String() != tt.want {
				t.Errorf("limit = %s, want %s", d.limit, tt.want)
			}
		})
	}
}

func TestDirective_Rewrite(t *testing.T) {
	t.Parallel()

	ns, _ := metric.ParseUnit("ns")
	tests := []struct {
		name  string
		line  string
		limit metric.Limit
		want  string
	}{
		{
			name:  "bounds replaced",
			line:  "//perfjam:limit reltime 0.9 1.1",
			limit: metric.NewLimit(metric.RelativeTime, 0.85, 1.2, metric.Unit{}),
			want:  "//perfjam:limit reltime 0.85 1.2",
		},
		{
			name:  "indentation and note kept",
			line:  "\t//perfjam:limit  reltime   NaN  NaN   // tracked",
			limit: metric.NewLimit(metric.RelativeTime, 1, 2, metric.Unit{}),
			want:  "\t//perfjam:limit  reltime   1  2   // tracked",
		},
		{
			name:  "unit appended",
			line:  "//perfjam:limit time NaN NaN",
			limit: metric.NewLimit(metric.AbsoluteTime, 10, 20, ns),
			want:  "//perfjam:limit time 10 20 ns",
		},
		{
			name:  "unit appended before note",
			line:  "//perfjam:limit time NaN NaN // note",
			limit: metric.NewLimit(metric.AbsoluteTime, 10, 20, ns),
			want:  "//perfjam:limit time 10 20 ns // note",
		},
		{
			name:  "infinities written as text",
			line:  "//perfjam:limit reltime -Inf 3",
			limit: metric.Limit{Kind: metric.RelativeTime, Min: metric.NegativeInfinity(), Max: metric.PositiveInfinity()},
			want:  "//perfjam:limit reltime -Inf +Inf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, ok, err := parseDirective(tt.line, 0)
			if !ok || err != nil {
				t.Fatalf("parseDirective() = %v, %v", ok, err)
			}
			if got := d.rewrite(tt.line, tt.limit); got != tt.want {
				t.Errorf("rewrite() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScanDirectives(t *testing.T) {
	t.Parallel()

	lines := []string{
		"package a",
		"//perfjam:limit reltime 1 2",
		"",
		"// BenchmarkSum measures Sum.",
		"//",
		"//perfjam:limit reltime 0.9 1.1",
		"//perfjam:limit gc.gen0 NaN NaN",
		"func BenchmarkSum(b *testing.B) {",
	}

	ds, err := scanDirectives(lines, 7)
	if err != nil {
		t.Fatalf("scanDirectives() error = %v", err)
	}
	if len(ds) != 2 {
		t.Fatalf("found %d directives, want 2 (block stops at blank line)", len(ds))
	}
	if ds[0].index != 5 || ds[1].index != 6 {
		t.Errorf("indexes = %d, %d", ds[0].index, ds[1].index)
	}
	if ds[1].limit.Kind != metric.Gc0 {
		t.Errorf("kind = %v", ds[1].limit.Kind)
	}

	if ds, _ := scanDirectives(lines, 0); len(ds) != 0 {
		t.Errorf("scanDirectives at first line = %v", ds)
	}
}

func TestDeclares(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want bool
	}{
		{"func BenchmarkSum(b *testing.B) {", true},
		{"func BenchmarkSum[T any](b *testing.B) {", true},
		{"func BenchmarkSumAll(b *testing.B) {", false},
		{"var BenchmarkSum = 1", false},
		{"func BenchmarkSumAll() {}; func BenchmarkSum(b *testing.B) {", true},
	}
	for _, tt := range tests {
		if got := declares(tt.line, "BenchmarkSum"); got != tt.want {
			t.Errorf("declares(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
