// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema and decodes them.
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[map[string]any](schema, data, "#Config",
//	    cueutil.WithFilename(path), cueutil.WithConcrete(false))
//
// Errors carry the offending field as a JSON-style path, e.g.
// "config.cue: runner.affinity[1]: conflicting values".
package cueutil
