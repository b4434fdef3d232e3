// SPDX-License-Identifier: MPL-2.0

// Package calibrate provides a fixed reference workload that is run through the
// isolated runner to check how stable measurements are on the current machine.
package calibrate

import (
	"errors"
	"runtime"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/perfjam/perfjam/pkg/runner"
)

const (
	// DefaultBufferSize is the number of bytes hashed per operation.
	DefaultBufferSize = 64 << 10

	stageWarmup = "WorkloadWarmup"
	stageActual = "WorkloadActual"
)

// ErrInvalidPlan is returned by Plan.Validate.
var ErrInvalidPlan = errors.New("invalid calibration plan")

type (
	// Plan sizes a calibration run.
	Plan struct {
		// WarmupIterations run before measurement and are reported separately.
		WarmupIterations int
		// Iterations is the number of measured iterations.
		Iterations int
		// Operations is the number of workload invocations per iteration.
		Operations int64
		// BufferSize is the number of bytes hashed per operation.
		BufferSize int
	}

	// clock reports elapsed time; tests substitute a deterministic one.
	clock func() time.Duration
)

// DefaultPlan returns a plan that finishes in well under a second on current hardware.
func DefaultPlan() Plan {
	return Plan{WarmupIterations: 2, Iterations: 10, Operations: 256, BufferSize: DefaultBufferSize}
}

// Validate checks that every count is positive.
func (p Plan) Validate() error {
	if p.WarmupIterations < 0 || p.Iterations <= 0 || p.Operations <= 0 || p.BufferSize <= 0 {
		return ErrInvalidPlan
	}
	return nil
}

// Payload returns a runner payload executing the plan.
func Payload(p Plan) runner.Payload {
	start := time.Now()
	return payload(p, func() time.Duration { return time.Since(start) })
}

func payload(p Plan, now clock) runner.Payload {
	return func() (*runner.RunResults, error) {
		if err := p.Validate(); err != nil {
			return nil, err
		}

		buf := make([]byte, p.BufferSize)
		for i := range buf {
			buf[i] = byte(i * 31)
		}

		var before runtime.MemStats
		runtime.ReadMemStats(&before)

		res := &runner.RunResults{}
		var sink uint64
		run := func(stage string, iterations int) {
			for i := 1; i <= iterations; i++ {
				t0 := now()
				for range p.Operations {
					sink ^= xxh3.Hash(buf)
				}
				res.Measurements = append(res.Measurements, runner.Measurement{
					Stage:       stage,
					Iteration:   i,
					Operations:  p.Operations,
					Nanoseconds: float64(now() - t0),
				})
			}
		}
		run(stageWarmup, p.WarmupIterations)
		run(stageActual, p.Iterations)
		runtime.KeepAlive(sink)

		var after runtime.MemStats
		runtime.ReadMemStats(&after)

		// Go has a single collector generation; all cycles are counted as gen0.
		res.GC = runner.GCStats{
			Gen0Collections: int(after.NumGC - before.NumGC),
			AllocatedBytes:  int64(after.TotalAlloc - before.TotalAlloc),
		}
		res.TotalOperations = int64(p.WarmupIterations+p.Iterations) * p.Operations
		return res, nil
	}
}
