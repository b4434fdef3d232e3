// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package runner

// NewDebuggerProbe returns a probe that never reports an attached debugger.
func NewDebuggerProbe() DebuggerProbe {
	return DebuggerProbeFunc(func() bool { return false })
}
