// SPDX-License-Identifier: MPL-2.0

package metric

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_LimitModel(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("limits without unit normalize to their input bounds", prop.ForAll(
		func(lo, hi float64) bool {
			l := NewLimit(RelativeTime, lo, hi, Unit{})
			nlo, nhi := l.Normalized()
			return nlo.Equal(Value(lo)) && nhi.Equal(Value(hi))
		},
		gen.Float64Range(-1e9, 1e9),
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("unset min is computable and never rejected", prop.ForAll(
		func(measuredLo, measuredHi float64) bool {
			if measuredLo > measuredHi {
				measuredLo, measuredHi = measuredHi, measuredLo
			}
			existing := NewLimit(RelativeTime, math.NaN(), 5.0, Unit{})
			if existing.Validate() != nil {
				return false
			}
			merged := existing.UnionWith(NewLimit(RelativeTime, measuredLo, measuredHi, Unit{}))
			got, ok := merged.Min.Finite()
			return ok && got == measuredLo && merged.Validate() == nil
		},
		gen.Float64Range(0, 4),
		gen.Float64Range(0, 4),
	))

	properties.Property("infinite bounds survive union, rounding and serialization", prop.ForAll(
		func(measuredLo, measuredHi float64, digits int) bool {
			existing := NewLimit(AbsoluteTime, math.Inf(-1), math.Inf(1), Millisecond)
			merged := existing.
				UnionWith(NewLimit(AbsoluteTime, measuredLo, measuredHi, Microsecond)).
				Rounded(digits)
			back, err := RecordOf(merged).Limit()
			if err != nil {
				return false
			}
			lo, errLo := ParseBound(back.Min.String())
			hi, errHi := ParseBound(back.Max.String())
			return errLo == nil && errHi == nil &&
				lo.Equal(NegativeInfinity()) && hi.Equal(PositiveInfinity())
		},
		gen.Float64Range(0, 1e6),
		gen.Float64Range(0, 1e6),
		gen.IntRange(0, 6),
	))

	properties.Property("bound text form round-trips", prop.ForAll(
		func(v float64) bool {
			b, err := ParseBound(Value(v).String())
			return err == nil && b.Equal(Value(v))
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("union covers both operands", prop.ForAll(
		func(a, b, c, d float64) bool {
			x := NewLimit(AbsoluteTime, math.Min(a, b), math.Max(a, b), Unit{})
			y := NewLimit(AbsoluteTime, math.Min(c, d), math.Max(c, d), Unit{})
			u := x.UnionWith(y)
			return u.Contains(a) && u.Contains(b) && u.Contains(c) && u.Contains(d)
		},
		gen.Float64Range(-1e6, 1e6),
		gen.Float64Range(-1e6, 1e6),
		gen.Float64Range(-1e6, 1e6),
		gen.Float64Range(-1e6, 1e6),
	))

	properties.Property("rounding never shrinks the range", prop.ForAll(
		func(a, b float64, digits int) bool {
			l := NewLimit(RelativeTime, math.Min(a, b), math.Max(a, b), Unit{})
			r := l.Rounded(digits)
			return r.Contains(a) && r.Contains(b)
		},
		gen.Float64Range(-1e6, 1e6),
		gen.Float64Range(-1e6, 1e6),
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}
