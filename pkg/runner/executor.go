// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"time"
)

const (
	// DefaultTimeout bounds a run when no timeout is configured.
	DefaultTimeout = 5 * time.Minute

	// underDebuggerTimeout keeps interactive debugging sessions from tripping the timeout.
	underDebuggerTimeout = 24 * time.Hour
)

type (
	// Payload runs the measurement engine for one benchmark and returns its raw results.
	Payload func() (*RunResults, error)

	// Benchmark is one runnable benchmark case.
	Benchmark struct {
		// Name identifies the benchmark in logs and errors.
		Name string
		// Run is the payload executed on the worker.
		Run Payload
	}

	// Clock abstracts the timeout wait so tests can drive it deterministically.
	Clock interface {
		After(d time.Duration) <-chan time.Time
	}

	// Option configures an Executor.
	Option func(*Executor)

	// Executor runs benchmarks in an isolated worker with a timeout.
	Executor struct {
		timeout  time.Duration
		priority Priority
		process  ProcessController
		debugger DebuggerProbe
		clock    Clock
		logger   *slog.Logger
	}

	// workerResult is handed from the worker goroutine back to Execute.
	workerResult struct {
		exitCode ExitCode
		results  *RunResults
		errors   []string
	}

	realClock struct{}
)

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// WithTimeout sets the run timeout. Zero selects DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithPriority sets the priority applied when ResourceHints does not override it.
func WithPriority(p Priority) Option {
	return func(e *Executor) {
		if p != PriorityDefault {
			e.priority = p
		}
	}
}

// WithProcessController replaces the platform scheduling controller.
func WithProcessController(c ProcessController) Option {
	return func(e *Executor) { e.process = c }
}

// WithDebuggerProbe replaces the platform debugger detection.
func WithDebuggerProbe(p DebuggerProbe) Option {
	return func(e *Executor) { e.debugger = p }
}

// WithClock replaces the wall clock used for the timeout wait.
func WithClock(c Clock) Option {
	return func(e *Executor) { e.clock = c }
}

// WithLogger sets the logger for fault and scheduling diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor creates an executor with platform defaults.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		timeout:  DefaultTimeout,
		priority: PriorityHigh,
		process:  NewProcessController(),
		debugger: NewDebuggerProbe(),
		clock:    realClock{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Timeout returns the effective timeout for the next run.
func (e *Executor) Timeout() time.Duration {
	if e.debugger.Attached() {
		return underDebuggerTimeout
	}
	return e.timeout
}

// Execute runs the benchmark payload and waits for it up to the effective timeout.
// Payload faults are reported through the result; only a timeout or a missing
// payload produce an error. On timeout the worker is abandoned.
func (e *Executor) Execute(bench Benchmark, hints ResourceHints) (*ExecuteResult, error) {
	if bench.Run == nil {
		return nil, fmt.Errorf("%s: %w", bench.Name, ErrNoPayload)
	}
	if ok, errs := hints.Priority.IsValid(); !ok {
		return nil, errs[0]
	}

	priority := hints.Priority
	if priority == PriorityDefault {
		priority = e.priority
	}
	timeout := e.Timeout()

	// Buffered so an abandoned worker can still finish without blocking forever.
	done := make(chan workerResult, 1)
	go e.work(bench, priority, hints.Affinity, done)

	select {
	case w := <-done:
		return newExecuteResult(w), nil
	case <-e.clock.After(timeout):
		e.logger.Error("benchmark worker abandoned after timeout", "benchmark", bench.Name, "timeout", timeout)
		return nil, &TimeoutError{Benchmark: bench.Name, Timeout: timeout}
	}
}

// work runs on the worker goroutine. The OS thread stays locked until the goroutine
// exits, so the Go runtime discards it instead of reusing a thread whose scheduling
// state might not have been restored.
func (e *Executor) work(bench Benchmark, priority Priority, affinity []int, done chan<- workerResult) {
	runtime.LockOSThread()

	w := workerResult{exitCode: ExitFault}
	defer func() { done <- w }()

	state := acquireProcessState(e.process, priority, affinity, e.logger)
	defer state.Release()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("benchmark payload panicked", "benchmark", bench.Name, "panic", r)
			w = workerResult{
				exitCode: ExitFault,
				errors:   []string{fmt.Sprintf("panic: %v", r), string(debug.Stack())},
			}
		}
	}()

	results, err := bench.Run()
	switch {
	case err != nil:
		e.logger.Error("benchmark payload failed", "benchmark", bench.Name, "error", err)
		w = workerResult{exitCode: ExitFailure, errors: []string{err.Error()}}
	case results == nil:
		w = workerResult{exitCode: ExitFault, errors: []string{"payload reported no results"}}
	default:
		w = workerResult{exitCode: ExitSuccess, results: results}
	}
}
