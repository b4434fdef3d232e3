// SPDX-License-Identifier: MPL-2.0

package annotate

import (
	"errors"
	"fmt"
)

// ErrContractViolation is the sentinel error wrapped by ContractViolationError.
var ErrContractViolation = errors.New("annotation contract violation")

// ContractViolationError is the panic value raised when a Context is used in a way
// that breaks its invariants, such as requesting the sidecar representation of a
// path already loaded as text. It indicates a programming error. Engine recovers it,
// abandons the pass without saving and returns it as an error.
type ContractViolationError struct {
	Op     string
	Path   string
	Reason string
}

// Error implements the error interface.
func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Reason)
}

// Unwrap returns ErrContractViolation so callers can use errors.Is for programmatic detection.
func (e *ContractViolationError) Unwrap() error { return ErrContractViolation }

func violate(op, path, format string, args ...any) {
	panic(&ContractViolationError{Op: op, Path: path, Reason: fmt.Sprintf(format, args...)})
}
