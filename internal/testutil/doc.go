// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers: a fake clock for code that waits on
// timers, and Must* helpers that fail the test instead of returning errors.
package testutil
