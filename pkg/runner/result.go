// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"fmt"
	"strconv"
	"strings"
)

// gcLinePrefix starts the trailing summary line of every successful report.
const gcLinePrefix = "GC:"

type (
	// ExecuteResult is the outcome of one Execute call.
	ExecuteResult struct {
		// Success is true only when the payload ran to completion with ExitSuccess.
		Success bool
		// ExitCode is the payload status.
		ExitCode ExitCode
		// Output holds the normalized report lines; empty unless Success.
		Output []string
		// Errors holds fault descriptions captured from the payload.
		Errors []string
	}

	// Measurement is one raw per-iteration sample produced by the measurement engine.
	Measurement struct {
		// Stage names the engine phase (e.g. "OverheadWarmup", "WorkloadActual").
		Stage string
		// Iteration is the 1-based iteration index within the stage.
		Iteration int
		// Operations is the number of benchmark invocations in the iteration.
		Operations int64
		// Nanoseconds is the total wall-clock time of the iteration.
		Nanoseconds float64
	}

	// GCStats counts garbage collections and allocations over a run.
	GCStats struct {
		Gen0Collections int
		Gen1Collections int
		Gen2Collections int
		AllocatedBytes  int64
		TotalOperations int64
	}

	// RunResults is the opaque output of the measurement engine for one run.
	RunResults struct {
		Measurements    []Measurement
		GC              GCStats
		TotalOperations int64
	}
)

// OutputLine formats the measurement as a single report line.
func (m Measurement) OutputLine() string {
	perOp := 0.0
	if m.Operations > 0 {
		perOp = m.Nanoseconds / float64(m.Operations)
	}
	return fmt.Sprintf("%s %d: %d op, %.2f ns, %.4f ns/op", m.Stage, m.Iteration, m.Operations, m.Nanoseconds, perOp)
}

// WithTotalOperations returns a copy of s with TotalOperations set to n.
func (s GCStats) WithTotalOperations(n int64) GCStats {
	s.TotalOperations = n
	return s
}

// OutputLine formats the trailing report line.
func (s GCStats) OutputLine() string {
	return fmt.Sprintf("%s %d %d %d %d %d", gcLinePrefix,
		s.Gen0Collections, s.Gen1Collections, s.Gen2Collections, s.AllocatedBytes, s.TotalOperations)
}

// ParseGCLine parses a line produced by GCStats.OutputLine.
func ParseGCLine(line string) (GCStats, error) {
	fields := strings.Fields(line)
	if len(fields) != 6 || fields[0] != gcLinePrefix {
		return GCStats{}, fmt.Errorf("malformed GC line %q", line)
	}
	var nums [5]int64
	for i, f := range fields[1:] {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return GCStats{}, fmt.Errorf("malformed GC line %q: %w", line, err)
		}
		nums[i] = n
	}
	return GCStats{
		Gen0Collections: int(nums[0]),
		Gen1Collections: int(nums[1]),
		Gen2Collections: int(nums[2]),
		AllocatedBytes:  nums[3],
		TotalOperations: nums[4],
	}, nil
}

// Report renders the measurements followed by the GC summary line.
func (r *RunResults) Report() []string {
	lines := make([]string, 0, len(r.Measurements)+1)
	for _, m := range r.Measurements {
		lines = append(lines, m.OutputLine())
	}
	return append(lines, r.GC.WithTotalOperations(r.TotalOperations).OutputLine())
}

// newExecuteResult translates a finished worker into an ExecuteResult.
// Non-zero exits produce an empty report.
func newExecuteResult(w workerResult) *ExecuteResult {
	if !w.exitCode.IsSuccess() || w.results == nil {
		code := w.exitCode
		if code.IsSuccess() {
			code = ExitFault
		}
		return &ExecuteResult{ExitCode: code, Output: []string{}, Errors: w.errors}
	}
	return &ExecuteResult{
		Success:  true,
		ExitCode: ExitSuccess,
		Output:   w.results.Report(),
		Errors:   []string{},
	}
}
