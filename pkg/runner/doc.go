// SPDX-License-Identifier: MPL-2.0

// Package runner hosts a benchmark payload in an isolated in-process worker.
//
// Executor.Execute runs the payload on its own goroutine, locked to a dedicated OS
// thread whose scheduling priority (and, optionally, CPU affinity) is raised for the
// duration of the run and restored on every exit path, including panics. The caller
// waits up to a timeout (5 minutes by default, 24 hours when a debugger is attached);
// a worker that does not finish in time is abandoned, never killed, and the call
// fails with a TimeoutError recommending out-of-process execution.
//
// Faults inside the payload never reach the caller: panics and returned errors are
// recovered, logged and reported as a failed ExecuteResult with a non-zero exit code.
// A successful run is translated into a line-oriented report ending with
//
//	GC: <gen0> <gen1> <gen2> <allocatedBytes> <totalOperations>
package runner
