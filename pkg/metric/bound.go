// SPDX-License-Identifier: MPL-2.0

package metric

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	boundUnset boundState = iota
	boundFinite
	boundUnbounded
)

// Canonical text forms for the non-finite bound states. They are accepted by
// strconv.ParseFloat, so directive tokens remain plain Go float literals.
const (
	unsetText  = "NaN"
	posInfText = "+Inf"
	negInfText = "-Inf"
)

// ErrInvalidBound is the sentinel error wrapped by InvalidBoundError.
var ErrInvalidBound = errors.New("invalid bound")

type (
	boundState uint8

	// Bound is one side of a Limit. The zero value is unset.
	Bound struct {
		state boundState
		// value holds the finite value, or the sign (+1/-1) of an unbounded bound.
		value float64
	}

	// InvalidBoundError is returned when bound text cannot be parsed.
	InvalidBoundError struct {
		Text string
		Err  error
	}
)

// Error implements the error interface.
func (e *InvalidBoundError) Error() string {
	return fmt.Sprintf("invalid bound %q: %v", e.Text, e.Err)
}

// Unwrap returns ErrInvalidBound so callers can use errors.Is for programmatic detection.
func (e *InvalidBoundError) Unwrap() error { return ErrInvalidBound }

// Unset returns an unset bound.
func Unset() Bound { return Bound{} }

// Value returns a bounded bound. NaN and infinities are mapped to the unset and
// unbounded states so a sentinel float can never masquerade as a finite value.
func Value(v float64) Bound { return FromFloat(v) }

// PositiveInfinity returns an unbounded upper bound.
func PositiveInfinity() Bound { return Bound{state: boundUnbounded, value: 1} }

// NegativeInfinity returns an unbounded lower bound.
func NegativeInfinity() Bound { return Bound{state: boundUnbounded, value: -1} }

// FromFloat decodes the external float encoding: NaN is unset, ±Inf is unbounded.
func FromFloat(v float64) Bound {
	switch {
	case math.IsNaN(v):
		return Unset()
	case math.IsInf(v, 1):
		return PositiveInfinity()
	case math.IsInf(v, -1):
		return NegativeInfinity()
	default:
		return Bound{state: boundFinite, value: v}
	}
}

// ParseBound parses the text form produced by Bound.String. Decimal and exponent
// notation, "NaN", "Inf", "+Inf" and "-Inf" are accepted (case-insensitive).
func ParseBound(s string) (Bound, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return Bound{}, &InvalidBoundError{Text: s, Err: errors.New("empty")}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Bound{}, &InvalidBoundError{Text: s, Err: err}
	}
	return FromFloat(v), nil
}

// IsUnset reports whether the bound has no recorded value.
func (b Bound) IsUnset() bool { return b.state == boundUnset }

// IsBounded reports whether the bound holds a finite value.
func (b Bound) IsBounded() bool { return b.state == boundFinite }

// IsUnbounded reports whether the bound is ±Inf.
func (b Bound) IsUnbounded() bool { return b.state == boundUnbounded }

// Finite returns the finite value and true for bounded bounds.
func (b Bound) Finite() (float64, bool) {
	if b.state != boundFinite {
		return 0, false
	}
	return b.value, true
}

// Float64 returns the external float encoding (NaN for unset, ±Inf for unbounded).
func (b Bound) Float64() float64 {
	switch b.state {
	case boundUnset:
		return math.NaN()
	case boundUnbounded:
		return math.Inf(int(b.value))
	default:
		return b.value
	}
}

// Equal compares bounds by state, and by value for bounded ones.
func (b Bound) Equal(other Bound) bool {
	return b.state == other.state && b.value == other.value
}

// String returns the canonical text form: "NaN", "+Inf", "-Inf" or the shortest
// decimal that round-trips through strconv.ParseFloat.
func (b Bound) String() string {
	switch b.state {
	case boundUnset:
		return unsetText
	case boundUnbounded:
		if b.value > 0 {
			return posInfText
		}
		return negInfText
	default:
		return strconv.FormatFloat(b.value, 'f', -1, 64)
	}
}

// rescaled converts a finite bound from a unit with factor from to a unit with factor to.
// Multiplying before dividing keeps exact results for decimal scale factors.
// Unset and unbounded bounds are returned as is.
func (b Bound) rescaled(from, to float64) Bound {
	if b.state != boundFinite || from == to {
		return b
	}
	return Bound{state: boundFinite, value: b.value * from / to}
}

// lowerUnion widens a lower bound so it covers other as well.
func (b Bound) lowerUnion(other Bound) Bound {
	switch {
	case b.IsUnbounded():
		return b
	case b.IsUnset():
		return other
	case other.IsBounded():
		return Bound{state: boundFinite, value: math.Min(b.value, other.value)}
	case other.IsUnbounded() && other.value < 0:
		return other
	default:
		return b
	}
}

// upperUnion widens an upper bound so it covers other as well.
func (b Bound) upperUnion(other Bound) Bound {
	switch {
	case b.IsUnbounded():
		return b
	case b.IsUnset():
		return other
	case other.IsBounded():
		return Bound{state: boundFinite, value: math.Max(b.value, other.value)}
	case other.IsUnbounded() && other.value > 0:
		return other
	default:
		return b
	}
}
