// SPDX-License-Identifier: MPL-2.0

//go:build linux

package runner

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// threadController changes the scheduling state of the calling OS thread. On Linux
// both setpriority and sched_setaffinity act per thread, so the executor applies them
// from the worker's locked thread and leaves the rest of the process untouched.
type threadController struct{}

// NewProcessController returns the controller for the current platform.
func NewProcessController() ProcessController {
	return threadController{}
}

func (threadController) Nice() (int, error) {
	// The raw syscall returns 20-nice so the result is never negative.
	prio, err := unix.Getpriority(unix.PRIO_PROCESS, unix.Gettid())
	if err != nil {
		return 0, fmt.Errorf("getpriority: %w", err)
	}
	return 20 - prio, nil
}

func (threadController) SetNice(nice int) error {
	if err := unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), nice); err != nil {
		return fmt.Errorf("setpriority %d: %w", nice, err)
	}
	return nil
}

func (threadController) Affinity() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, fmt.Errorf("sched_getaffinity: %w", err)
	}
	var cpus []int
	for cpu := 0; cpu < len(set)*64; cpu++ {
		if set.IsSet(cpu) {
			cpus = append(cpus, cpu)
		}
	}
	return cpus, nil
}

func (threadController) SetAffinity(cpus []int) error {
	if len(cpus) == 0 {
		return errors.New("empty affinity mask")
	}
	var set unix.CPUSet
	set.Zero()
	for _, cpu := range cpus {
		set.Set(cpu)
	}
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("sched_setaffinity %v: %w", cpus, err)
	}
	return nil
}
