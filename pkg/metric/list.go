// SPDX-License-Identifier: MPL-2.0

package metric

import (
	"errors"
	"fmt"
	"slices"
)

// Modifier names accepted by LookupModifier.
const (
	ModifierMeasureAll         ModifierName = "measure_all"
	ModifierNoRelativeTime     ModifierName = "no_relative_time"
	ModifierMeasureAllocations ModifierName = "measure_allocations"
	ModifierIgnoreAllocations  ModifierName = "ignore_allocations"
)

// ErrUnknownModifier is the sentinel error wrapped by UnknownModifierError.
var ErrUnknownModifier = errors.New("unknown metric modifier")

var (
	// MeasureAll adds the allocation, GC generation and absolute time metrics.
	MeasureAll Modifier = ModifierFunc(func(l *List) {
		l.Add(GcAllocations)
		l.Add(Gc0)
		l.Add(Gc1)
		l.Add(Gc2)
		l.Add(AbsoluteTime)
	})

	// NoRelativeTime removes the relative time metric.
	NoRelativeTime Modifier = ModifierFunc(func(l *List) { l.Remove(RelativeTime) })

	// MeasureAllocations adds the allocated bytes metric.
	MeasureAllocations Modifier = ModifierFunc(func(l *List) { l.Add(GcAllocations) })

	// IgnoreAllocations removes every metric of the GC category.
	IgnoreAllocations Modifier = ModifierFunc(func(l *List) { l.RemoveCategory(CategoryGC) })

	modifiers = map[ModifierName]Modifier{
		ModifierMeasureAll:         MeasureAll,
		ModifierNoRelativeTime:     NoRelativeTime,
		ModifierMeasureAllocations: MeasureAllocations,
		ModifierIgnoreAllocations:  IgnoreAllocations,
	}
)

type (
	// List is the ordered set of metrics measured by a run configuration.
	List []Kind

	// Modifier adjusts a run configuration's metric list.
	Modifier interface {
		Modify(l *List)
	}

	// ModifierFunc adapts a function to the Modifier interface.
	ModifierFunc func(l *List)

	// ModifierName identifies a predefined modifier in configuration files.
	ModifierName string

	// UnknownModifierError is returned when a modifier name is not recognized.
	UnknownModifierError struct {
		Name ModifierName
	}
)

// Modify calls f(l).
func (f ModifierFunc) Modify(l *List) { f(l) }

// Error implements the error interface.
func (e *UnknownModifierError) Error() string {
	return fmt.Sprintf("unknown metric modifier %q", e.Name)
}

// Unwrap returns ErrUnknownModifier so callers can use errors.Is for programmatic detection.
func (e *UnknownModifierError) Unwrap() error { return ErrUnknownModifier }

// DefaultList returns the metrics measured when no modifier is applied.
func DefaultList() List {
	return List{RelativeTime}
}

// LookupModifier returns the predefined modifier with the given name.
func LookupModifier(name ModifierName) (Modifier, error) {
	m, ok := modifiers[name]
	if !ok {
		return nil, &UnknownModifierError{Name: name}
	}
	return m, nil
}

// IsValid returns whether the name refers to a predefined modifier,
// and a list of validation errors if it does not.
func (n ModifierName) IsValid() (bool, []error) {
	if _, ok := modifiers[n]; !ok {
		return false, []error{&UnknownModifierError{Name: n}}
	}
	return true, nil
}

// Apply runs the modifiers in order.
func (l *List) Apply(mods ...Modifier) {
	for _, m := range mods {
		m.Modify(l)
	}
}

// Add appends kind unless it is already present.
func (l *List) Add(kind Kind) {
	if l.Contains(kind) {
		return
	}
	*l = append(*l, kind)
}

// Remove deletes every occurrence of kind and returns how many were removed.
func (l *List) Remove(kind Kind) int {
	return l.removeFunc(func(k Kind) bool { return k == kind })
}

// RemoveCategory deletes every metric tagged with category and returns how many were removed.
func (l *List) RemoveCategory(category string) int {
	return l.removeFunc(func(k Kind) bool { return k.Category == category })
}

// Contains reports whether kind is in the list.
func (l List) Contains(kind Kind) bool {
	return slices.Contains(l, kind)
}

func (l *List) removeFunc(match func(Kind) bool) int {
	before := len(*l)
	*l = slices.DeleteFunc(*l, match)
	return before - len(*l)
}
