// SPDX-License-Identifier: MPL-2.0

package metric

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidLimit is the sentinel error wrapped by InvalidLimitError.
var ErrInvalidLimit = errors.New("invalid limit")

type (
	// Limit is the acceptable [Min, Max] range recorded for one metric of one benchmark.
	// When Unit is set, Min and Max are expressed in that unit.
	Limit struct {
		Kind Kind
		Min  Bound
		Max  Bound
		Unit Unit
	}

	// InvalidLimitError is returned when a Limit has inconsistent fields.
	// It wraps ErrInvalidLimit for errors.Is() compatibility.
	InvalidLimitError struct {
		Limit  Limit
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidLimitError) Error() string {
	return fmt.Sprintf("invalid limit for metric %q: %s", e.Limit.Kind.Name, e.Reason)
}

// Unwrap returns ErrInvalidLimit so callers can use errors.Is for programmatic detection.
func (e *InvalidLimitError) Unwrap() error { return ErrInvalidLimit }

// NewLimit builds a limit from the external float encoding (NaN unset, ±Inf unbounded).
// min and max must already be expressed in unit.
func NewLimit(kind Kind, minValue, maxValue float64, unit Unit) Limit {
	return Limit{Kind: kind, Min: FromFloat(minValue), Max: FromFloat(maxValue), Unit: unit}
}

// Validate checks unit compatibility and bound ordering.
func (l Limit) Validate() error {
	if l.Kind.Name == "" {
		return &InvalidLimitError{Limit: l, Reason: "metric name is empty"}
	}
	if !l.Kind.AcceptsUnit(l.Unit) {
		return &InvalidLimitError{Limit: l, Reason: fmt.Sprintf("unit %q is not a %s unit", l.Unit.Name, familyName(l.Kind.Family))}
	}
	if l.Min.IsUnbounded() && l.Min.value > 0 {
		return &InvalidLimitError{Limit: l, Reason: "min cannot be +Inf"}
	}
	if l.Max.IsUnbounded() && l.Max.value < 0 {
		return &InvalidLimitError{Limit: l, Reason: "max cannot be -Inf"}
	}
	lo, okLo := l.Min.Finite()
	hi, okHi := l.Max.Finite()
	if okLo && okHi && lo > hi {
		return &InvalidLimitError{Limit: l, Reason: fmt.Sprintf("min %s is greater than max %s", l.Min, l.Max)}
	}
	return nil
}

// IsEmpty reports whether neither bound has been recorded.
func (l Limit) IsEmpty() bool { return l.Min.IsUnset() && l.Max.IsUnset() }

// Normalized returns both bounds converted to the base unit of the metric.
func (l Limit) Normalized() (minBound, maxBound Bound) {
	f := l.Unit.Factor()
	return l.Min.rescaled(f, 1), l.Max.rescaled(f, 1)
}

// ToUnit re-expresses the limit in unit u. Unset and unbounded bounds are kept as is.
func (l Limit) ToUnit(u Unit) Limit {
	if l.Unit == u {
		return l
	}
	from, to := l.Unit.Factor(), u.Factor()
	return Limit{Kind: l.Kind, Min: l.Min.rescaled(from, to), Max: l.Max.rescaled(from, to), Unit: u}
}

// Contains reports whether value, given in the base unit, satisfies the limit.
// Unset bounds do not constrain.
func (l Limit) Contains(value float64) bool {
	lo, hi := l.Normalized()
	if v, ok := lo.Finite(); ok && value < v {
		return false
	}
	if v, ok := hi.Finite(); ok && value > v {
		return false
	}
	return true
}

// UnionWith returns the smallest limit covering both l and other. Unset bounds of l are
// filled from other, bounded ones are widened, unbounded ones are kept verbatim.
// The result keeps l's unit when set, otherwise it adopts other's unit.
func (l Limit) UnionWith(other Limit) Limit {
	unit := l.Unit
	if unit.IsZero() {
		unit = other.Unit
	}
	a := l.ToUnit(unit)
	b := other.ToUnit(unit)
	return Limit{
		Kind: l.Kind,
		Min:  a.Min.lowerUnion(b.Min),
		Max:  a.Max.upperUnion(b.Max),
		Unit: unit,
	}
}

// Rounded rounds bounded values to the given number of significant digits, rounding
// Min down and Max up so the range never shrinks. digits < 1 returns l unchanged.
func (l Limit) Rounded(digits int) Limit {
	if digits < 1 {
		return l
	}
	out := l
	if v, ok := l.Min.Finite(); ok {
		out.Min = Value(roundSignificant(v, digits, math.Floor))
	}
	if v, ok := l.Max.Finite(); ok {
		out.Max = Value(roundSignificant(v, digits, math.Ceil))
	}
	return out
}

// Equal compares kind, unit and both bounds by state.
func (l Limit) Equal(other Limit) bool {
	return l.Kind == other.Kind && l.Unit == other.Unit && l.Min.Equal(other.Min) && l.Max.Equal(other.Max)
}

// String formats the limit as "[min, max] unit".
func (l Limit) String() string {
	if l.Unit.IsZero() {
		return fmt.Sprintf("[%s, %s]", l.Min, l.Max)
	}
	return fmt.Sprintf("[%s, %s] %s", l.Min, l.Max, l.Unit)
}

// roundSignificant rounds v to digits significant digits using fn (math.Floor or math.Ceil).
// A value that already has at most digits significant digits is returned unchanged;
// the scaling step is inexact, so fn alone would push such values out by one digit.
// Both branches divide or multiply by an exact power of ten so the result prints as
// the short decimal it represents.
func roundSignificant(v float64, digits int, fn func(float64) float64) float64 {
	if v == 0 {
		return 0
	}
	exp := digits - 1 - int(math.Floor(math.Log10(math.Abs(v))))
	if exp >= 0 {
		p := math.Pow10(exp)
		scaled := v * p
		if math.Round(scaled)/p == v {
			return v
		}
		return fn(scaled) / p
	}
	p := math.Pow10(-exp)
	scaled := v / p
	if math.Round(scaled)*p == v {
		return v
	}
	return fn(scaled) * p
}

func familyName(f UnitFamily) string {
	if f == FamilyNone {
		return "dimensionless"
	}
	return string(f)
}
