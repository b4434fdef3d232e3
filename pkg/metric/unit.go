// SPDX-License-Identifier: MPL-2.0

package metric

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// FamilyNone is used by dimensionless metrics (counters, ratios).
	FamilyNone UnitFamily = ""
	// FamilyTime groups duration units. The base unit is the nanosecond.
	FamilyTime UnitFamily = "time"
	// FamilySize groups byte-size units. The base unit is the byte.
	FamilySize UnitFamily = "size"
)

// ErrUnknownUnit is the sentinel error wrapped by UnknownUnitError.
var ErrUnknownUnit = errors.New("unknown unit")

var (
	// Nanosecond is the base time unit.
	Nanosecond = Unit{Name: "ns", Scale: 1, Family: FamilyTime}
	// Microsecond is 1e3 nanoseconds.
	Microsecond = Unit{Name: "us", Scale: 1e3, Family: FamilyTime}
	// Millisecond is 1e6 nanoseconds.
	Millisecond = Unit{Name: "ms", Scale: 1e6, Family: FamilyTime}
	// Second is 1e9 nanoseconds.
	Second = Unit{Name: "s", Scale: 1e9, Family: FamilyTime}

	// Byte is the base size unit.
	Byte = Unit{Name: "B", Scale: 1, Family: FamilySize}
	// Kilobyte is 1024 bytes.
	Kilobyte = Unit{Name: "KB", Scale: 1 << 10, Family: FamilySize}
	// Megabyte is 1024 kilobytes.
	Megabyte = Unit{Name: "MB", Scale: 1 << 20, Family: FamilySize}
	// Gigabyte is 1024 megabytes.
	Gigabyte = Unit{Name: "GB", Scale: 1 << 30, Family: FamilySize}

	knownUnits = []Unit{Nanosecond, Microsecond, Millisecond, Second, Byte, Kilobyte, Megabyte, Gigabyte}
)

type (
	// UnitFamily groups units that convert into each other.
	UnitFamily string

	// Unit is a unit of measurement. Scale converts a value in this unit to the
	// family's base unit. The zero Unit means "no unit" and scales by 1.
	Unit struct {
		Name   string
		Scale  float64
		Family UnitFamily
	}

	// UnknownUnitError is returned when a unit name is not recognized.
	UnknownUnitError struct {
		Name string
	}
)

// Error implements the error interface.
func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown unit %q", e.Name)
}

// Unwrap returns ErrUnknownUnit so callers can use errors.Is for programmatic detection.
func (e *UnknownUnitError) Unwrap() error { return ErrUnknownUnit }

// ParseUnit looks up a unit by name. The empty string yields the zero Unit.
// "µs" is accepted as an alias of "us".
func ParseUnit(name string) (Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Unit{}, nil
	}
	if name == "µs" {
		name = Microsecond.Name
	}
	for _, u := range knownUnits {
		if u.Name == name {
			return u, nil
		}
	}
	return Unit{}, &UnknownUnitError{Name: name}
}

// IsZero reports whether no unit is attached.
func (u Unit) IsZero() bool { return u.Name == "" }

// Factor returns the multiplier from this unit to the base unit (1 for no unit).
func (u Unit) Factor() float64 {
	if u.IsZero() || u.Scale == 0 {
		return 1
	}
	return u.Scale
}

// String returns the unit name.
func (u Unit) String() string { return u.Name }
