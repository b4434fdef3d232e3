// SPDX-License-Identifier: MPL-2.0

// Package annotate writes freshly measured metric limits back into the files that
// declare them.
//
// A pass works on a Context, a per-pass cache of the files it touches. Each path is
// loaded at most once and is fixed to one representation for the lifetime of the
// Context: Go source text split into lines, or a parsed sidecar document. The Engine
// patches the cached representations target by target and flushes every changed file
// exactly once at the end of the pass.
//
// Limits live either inline, as directive comments directly above the benchmark
// declaration:
//
//	//perfjam:limit time 10 250 ns
//	//perfjam:limit gc.alloc NaN +Inf KB
//	func BenchmarkSum(b *testing.B) {
//
// or in a sidecar TOML document next to the source file (see package sidecar).
package annotate
