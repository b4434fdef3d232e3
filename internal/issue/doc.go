// SPDX-License-Identifier: MPL-2.0

// Package issue turns failures into actionable user-facing messages: ActionableError
// carries the failed operation, the resource involved and remediation hints, and the
// issue catalog holds longer Markdown guidance rendered with glamour.
package issue
