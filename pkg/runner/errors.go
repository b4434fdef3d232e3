// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrExecutionTimeout is the sentinel error wrapped by TimeoutError.
	ErrExecutionTimeout = errors.New("benchmark execution timed out")
	// ErrNoPayload is returned when a Benchmark has no payload to run.
	ErrNoPayload = errors.New("benchmark has no payload")
)

// TimeoutError is returned when a worker does not finish within the effective timeout.
// The worker keeps running in the background; it is abandoned, not terminated.
type TimeoutError struct {
	Benchmark string
	Timeout   time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf(
		"benchmark %s takes too long to run (timeout %s); prefer out-of-process execution for long-running benchmarks",
		e.Benchmark, e.Timeout)
}

// Unwrap returns ErrExecutionTimeout so callers can use errors.Is for programmatic detection.
func (e *TimeoutError) Unwrap() error { return ErrExecutionTimeout }
