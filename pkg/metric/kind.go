// SPDX-License-Identifier: MPL-2.0

package metric

const (
	// CategoryTime groups timing metrics.
	CategoryTime = "time"
	// CategoryGC groups garbage collector metrics.
	CategoryGC = "gc"
)

var (
	// RelativeTime is the execution time relative to the baseline benchmark.
	RelativeTime = Kind{Name: "reltime", Category: CategoryTime}
	// AbsoluteTime is the mean execution time per operation.
	AbsoluteTime = Kind{Name: "time", Category: CategoryTime, Family: FamilyTime}
	// GcAllocations is the number of bytes allocated per operation.
	GcAllocations = Kind{Name: "gc.alloc", Category: CategoryGC, Family: FamilySize}
	// Gc0 is the count of generation 0 collections per 1000 operations.
	Gc0 = Kind{Name: "gc.gen0", Category: CategoryGC}
	// Gc1 is the count of generation 1 collections per 1000 operations.
	Gc1 = Kind{Name: "gc.gen1", Category: CategoryGC}
	// Gc2 is the count of generation 2 collections per 1000 operations.
	Gc2 = Kind{Name: "gc.gen2", Category: CategoryGC}

	builtinKinds = []Kind{RelativeTime, AbsoluteTime, GcAllocations, Gc0, Gc1, Gc2}
)

// Kind is a named measurement category. Kinds are compared by value; two kinds
// with the same Name but different Category are distinct.
type Kind struct {
	// Name identifies the metric in directives and documents (e.g. "time").
	Name string
	// Category is the tag used by category-wide modifiers (e.g. "gc").
	Category string
	// Family restricts which units the metric accepts. FamilyNone accepts no unit.
	Family UnitFamily
}

// LookupKind returns the builtin kind with the given name. Unknown names yield a
// dimensionless custom kind without a category and ok=false.
func LookupKind(name string) (kind Kind, ok bool) {
	for _, k := range builtinKinds {
		if k.Name == name {
			return k, true
		}
	}
	return Kind{Name: name}, false
}

// BuiltinKinds returns the predefined metric kinds.
func BuiltinKinds() []Kind {
	kinds := make([]Kind, len(builtinKinds))
	copy(kinds, builtinKinds)
	return kinds
}

// AcceptsUnit reports whether u may be attached to limits of this kind.
// The zero unit is always accepted.
func (k Kind) AcceptsUnit(u Unit) bool {
	return u.IsZero() || (k.Family != FamilyNone && u.Family == k.Family)
}

// String returns the metric name.
func (k Kind) String() string { return k.Name }
