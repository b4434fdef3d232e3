// SPDX-License-Identifier: MPL-2.0

package runner

// DebuggerProbe reports whether a debugger is attached to the current process.
type DebuggerProbe interface {
	Attached() bool
}

// DebuggerProbeFunc adapts a function to the DebuggerProbe interface.
type DebuggerProbeFunc func() bool

// Attached calls f.
func (f DebuggerProbeFunc) Attached() bool { return f() }
