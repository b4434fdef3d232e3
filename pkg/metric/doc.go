// SPDX-License-Identifier: MPL-2.0

// Package metric models the acceptable ranges ("limits") recorded for benchmark metrics.
//
// A Limit is a (Min, Max, Unit) triple for one metric Kind. Each bound is a Bound value
// with three explicit states:
//   - unset: no value recorded yet; the annotator may compute and fill it
//   - bounded: a finite value
//   - unbounded: no constraint in that direction; preserved verbatim, never tightened
//
// Externally (source directives, sidecar documents, results files) the states are
// encoded as NaN, a finite number, and ±Inf respectively. Internally they are never
// compared as floats, so NaN != NaN cannot leak into equality checks.
//
// When a Unit is attached, both bounds are stored already expressed in that unit.
// Normalized returns base-unit values (stored × Unit.Scale). Every comparison goes
// through the same factor.
package metric
