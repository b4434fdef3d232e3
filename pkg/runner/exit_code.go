// SPDX-License-Identifier: MPL-2.0

package runner

import "strconv"

const (
	// ExitSuccess is reported when the payload completed and returned results.
	ExitSuccess ExitCode = 0
	// ExitFailure is reported when the payload returned an error.
	ExitFailure ExitCode = 1
	// ExitFault is reported when the payload panicked or never reported results.
	ExitFault ExitCode = -1
)

// ExitCode is the status of one payload run. Zero means success; negative values
// mark faults caught by the executor.
type ExitCode int

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// IsFault returns true if the payload panicked or otherwise failed to report.
func (c ExitCode) IsFault() bool { return c < 0 }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
