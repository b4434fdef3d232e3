// SPDX-License-Identifier: MPL-2.0

// Package symbols maps benchmark symbols to the source location of their declarations.
package symbols

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnresolved is the sentinel error wrapped by UnresolvedError.
var ErrUnresolved = errors.New("symbol not resolved")

type (
	// Symbol identifies a benchmark function by package import path and name.
	Symbol struct {
		Package string
		Name    string
	}

	// Location is the declaring file and the 1-based line of the declaration's
	// first line (the "func" keyword line, excluding its doc comment).
	Location struct {
		File string
		Line int
	}

	// Resolver finds where a symbol is declared.
	Resolver interface {
		Resolve(ctx context.Context, sym Symbol) (Location, error)
	}

	// UnresolvedError reports a symbol that has no known declaration.
	UnresolvedError struct {
		Symbol Symbol
		Reason string
	}

	// StaticResolver resolves symbols from a fixed table.
	StaticResolver map[Symbol]Location
)

// String returns the qualified name "pkg.Name".
func (s Symbol) String() string {
	if s.Package == "" {
		return s.Name
	}
	return s.Package + "." + s.Name
}

// String returns "file:line".
func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error implements the error interface.
func (e *UnresolvedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("cannot resolve %s", e.Symbol)
	}
	return fmt.Sprintf("cannot resolve %s: %s", e.Symbol, e.Reason)
}

// Unwrap returns ErrUnresolved so callers can use errors.Is for programmatic detection.
func (e *UnresolvedError) Unwrap() error { return ErrUnresolved }

// Resolve implements Resolver.
func (r StaticResolver) Resolve(_ context.Context, sym Symbol) (Location, error) {
	loc, ok := r[sym]
	if !ok {
		return Location{}, &UnresolvedError{Symbol: sym, Reason: "not in table"}
	}
	return loc, nil
}
