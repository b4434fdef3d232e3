// SPDX-License-Identifier: MPL-2.0

package calibrate

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/perfjam/perfjam/pkg/runner"
)

func TestPlan_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Plan)
		valid  bool
	}{
		{name: "default", mutate: func(*Plan) {}, valid: true},
		{name: "no warmup", mutate: func(p *Plan) { p.WarmupIterations = 0 }, valid: true},
		{name: "no iterations", mutate: func(p *Plan) { p.Iterations = 0 }},
		{name: "no operations", mutate: func(p *Plan) { p.Operations = 0 }},
		{name: "empty buffer", mutate: func(p *Plan) { p.BufferSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := DefaultPlan()
			tt.mutate(&p)
			if err := p.Validate(); (err == nil) != tt.valid {
				t.Errorf("Validate() = %v, valid %v", err, tt.valid)
			}
		})
	}
}

func TestPayload_Stages(t *testing.T) {
	t.Parallel()

	var ticks time.Duration
	now := func() time.Duration {
		ticks += time.Microsecond
		return ticks
	}
	p := Plan{WarmupIterations: 1, Iterations: 3, Operations: 4, BufferSize: 128}

	res, err := payload(p, now)()
	if err != nil {
		t.Fatalf("payload() error = %v", err)
	}
	if len(res.Measurements) != 4 {
		t.Fatalf("measurements = %d, want 4", len(res.Measurements))
	}
	if m := res.Measurements[0]; m.Stage != stageWarmup || m.Iteration != 1 {
		t.Errorf("first measurement = %+v", m)
	}
	for _, m := range res.Measurements[1:] {
		if m.Stage != stageActual || m.Operations != 4 || m.Nanoseconds != float64(time.Microsecond) {
			t.Errorf("measurement = %+v", m)
		}
	}
	if res.TotalOperations != 16 {
		t.Errorf("TotalOperations = %d, want 16", res.TotalOperations)
	}

	report := res.Report()
	if !strings.HasPrefix(report[len(report)-1], "GC: ") || !strings.HasSuffix(report[len(report)-1], " 16") {
		t.Errorf("last report line = %q", report[len(report)-1])
	}
}

func TestPayload_InvalidPlan(t *testing.T) {
	t.Parallel()

	if _, err := Payload(Plan{})(); !errors.Is(err, ErrInvalidPlan) {
		t.Errorf("Payload(Plan{}) error = %v, want ErrInvalidPlan", err)
	}
}

func TestPayload_ThroughExecutor(t *testing.T) {
	t.Parallel()

	exec := runner.NewExecutor(runner.WithPriority(runner.PriorityNormal))
	p := Plan{Iterations: 2, Operations: 2, BufferSize: 256}
	res, err := exec.Execute(runner.Benchmark{Name: "calibrate", Run: Payload(p)}, runner.ResourceHints{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Success || len(res.Output) != 3 {
		t.Errorf("Execute() = %+v", res)
	}
}
