// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package runner

import "errors"

// errSchedulingUnsupported is returned on platforms without per-thread scheduling control.
var errSchedulingUnsupported = errors.New("scheduling control not available on this platform")

// noopController reports the default state and refuses changes. acquireProcessState
// logs the refusal and the payload still runs.
type noopController struct{}

// NewProcessController returns the controller for the current platform.
func NewProcessController() ProcessController {
	return noopController{}
}

func (noopController) Nice() (int, error) { return 0, nil }

func (noopController) SetNice(int) error { return errSchedulingUnsupported }

func (noopController) Affinity() ([]int, error) { return nil, errSchedulingUnsupported }

func (noopController) SetAffinity([]int) error { return errSchedulingUnsupported }
