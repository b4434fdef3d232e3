// SPDX-License-Identifier: MPL-2.0

//go:build linux

package runner

import (
	"bufio"
	"bytes"
	"os"
	"strconv"
	"strings"
)

// NewDebuggerProbe returns a probe that checks TracerPid in /proc/self/status.
func NewDebuggerProbe() DebuggerProbe {
	return DebuggerProbeFunc(func() bool {
		data, err := os.ReadFile("/proc/self/status")
		if err != nil {
			return false
		}
		return tracerAttached(data)
	})
}

// tracerAttached parses a /proc/<pid>/status document.
func tracerAttached(status []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(status))
	for sc.Scan() {
		rest, ok := strings.CutPrefix(sc.Text(), "TracerPid:")
		if !ok {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(rest))
		return err == nil && pid != 0
	}
	return false
}
