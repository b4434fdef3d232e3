// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

const (
	// PriorityDefault lets the executor pick its configured priority.
	PriorityDefault Priority = ""
	// PriorityNormal leaves the worker at the default scheduling priority.
	PriorityNormal Priority = "normal"
	// PriorityHigh raises the worker's scheduling priority.
	PriorityHigh Priority = "high"
)

var (
	// ErrInvalidPriority is the sentinel error wrapped by InvalidPriorityError.
	ErrInvalidPriority = errors.New("invalid priority")

	// schedulingMu serializes changes to scheduling state. It is held only while
	// state is read and changed, never for the duration of a payload.
	schedulingMu sync.Mutex
)

type (
	// Priority is a named scheduling priority class.
	Priority string

	// InvalidPriorityError is returned when a Priority value is not recognized.
	InvalidPriorityError struct {
		Value Priority
	}

	// ResourceHints tune the worker's scheduling for one Execute call.
	ResourceHints struct {
		// Priority overrides the executor priority when set.
		Priority Priority
		// Affinity pins the worker to the listed CPU ids when non-empty.
		Affinity []int
	}

	// ProcessController reads and changes the scheduling state of the calling worker.
	// Implementations are called from the worker's locked OS thread.
	ProcessController interface {
		// Nice returns the current nice value.
		Nice() (int, error)
		// SetNice sets the nice value.
		SetNice(nice int) error
		// Affinity returns the CPU ids the worker may run on.
		Affinity() ([]int, error)
		// SetAffinity restricts the worker to the given CPU ids.
		SetAffinity(cpus []int) error
	}

	// processState remembers the scheduling state replaced by acquireProcessState.
	processState struct {
		ctl         ProcessController
		logger      *slog.Logger
		oldNice     int
		niceChanged bool
		oldAffinity []int
		pinned      bool
	}
)

// Error implements the error interface.
func (e *InvalidPriorityError) Error() string {
	return fmt.Sprintf("invalid priority %q (must be one of: normal, high)", e.Value)
}

// Unwrap returns ErrInvalidPriority so callers can use errors.Is for programmatic detection.
func (e *InvalidPriorityError) Unwrap() error { return ErrInvalidPriority }

// IsValid returns whether the Priority is a known class,
// and a list of validation errors if it is not.
func (p Priority) IsValid() (bool, []error) {
	switch p {
	case PriorityDefault, PriorityNormal, PriorityHigh:
		return true, nil
	default:
		return false, []error{&InvalidPriorityError{Value: p}}
	}
}

// nice maps the priority class to a nice value.
func (p Priority) nice() int {
	if p == PriorityHigh {
		return -5
	}
	return 0
}

// acquireProcessState raises the priority and applies the affinity mask. Failures are
// logged and the run continues with whatever state could be applied. The returned
// state must be released with Release, which restores only what was changed.
func acquireProcessState(ctl ProcessController, priority Priority, affinity []int, logger *slog.Logger) *processState {
	s := &processState{ctl: ctl, logger: logger}

	schedulingMu.Lock()
	defer schedulingMu.Unlock()

	if nice, err := ctl.Nice(); err != nil {
		logger.Warn("cannot read scheduling priority", "error", err)
	} else if target := priority.nice(); target != nice {
		if err := ctl.SetNice(target); err != nil {
			logger.Warn("cannot change scheduling priority", "priority", priority, "error", err)
		} else {
			s.oldNice = nice
			s.niceChanged = true
		}
	}

	if len(affinity) > 0 {
		old, err := ctl.Affinity()
		if err != nil {
			logger.Warn("cannot read processor affinity", "error", err)
			return s
		}
		if err := ctl.SetAffinity(affinity); err != nil {
			logger.Warn("cannot change processor affinity", "affinity", affinity, "error", err)
			return s
		}
		s.oldAffinity = slices.Clone(old)
		s.pinned = true
	}

	return s
}

// Release restores the saved scheduling state. It is safe to call multiple times;
// subsequent calls are no-ops.
func (s *processState) Release() {
	if s == nil {
		return
	}
	schedulingMu.Lock()
	defer schedulingMu.Unlock()

	if s.niceChanged {
		if err := s.ctl.SetNice(s.oldNice); err != nil {
			s.logger.Warn("cannot restore scheduling priority", "error", err)
		}
		s.niceChanged = false
	}
	if s.pinned {
		if err := s.ctl.SetAffinity(s.oldAffinity); err != nil {
			s.logger.Warn("cannot restore processor affinity", "error", err)
		}
		s.pinned = false
	}
}
