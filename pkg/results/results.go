// SPDX-License-Identifier: MPL-2.0

// Package results reads and writes the results files that benchmark harnesses hand
// to "perfjam annotate": one entry per measured benchmark with its fresh limits.
//
//	[[target]]
//	package = "example.com/bench"
//	name = "BenchmarkSum"
//	checksum = "9f3c2a1b0d4e5f60"
//
//	[[target.limit]]
//	metric = "time"
//	min = 812.0
//	max = 947.5
//	unit = "ns"
package results

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/perfjam/perfjam/pkg/metric"
)

// ErrInvalidResults is the sentinel error wrapped by InvalidTargetError.
var ErrInvalidResults = errors.New("invalid results file")

type (
	// File is the root of a results file.
	File struct {
		Targets []Target `toml:"target"`
	}

	// Target is one measured benchmark.
	Target struct {
		// Package is the import path of the package declaring the benchmark.
		Package string `toml:"package"`
		// Name is the benchmark function name.
		Name string `toml:"name"`
		// Sidecar stores limits in the sidecar document instead of inline directives.
		Sidecar bool `toml:"sidecar,omitempty"`
		// Checksum is the xxh3 checksum of the declaring file at measurement time.
		Checksum string          `toml:"checksum,omitempty"`
		Limits   []metric.Record `toml:"limit,omitempty"`
	}

	// InvalidTargetError reports a target entry with missing or bad fields.
	InvalidTargetError struct {
		Index int
		Name  string
		Err   error
	}
)

// Error implements the error interface.
func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("target #%d (%s): %v", e.Index+1, e.Name, e.Err)
}

// Unwrap returns ErrInvalidResults so callers can use errors.Is for programmatic detection.
func (e *InvalidTargetError) Unwrap() error { return ErrInvalidResults }

// Read parses and validates the results file at path.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates a results document.
func Parse(data []byte) (*File, error) {
	f := &File{}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(f); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks every target and returns all problems joined.
func (f *File) Validate() error {
	var errs []error
	for i, t := range f.Targets {
		if _, err := t.MetricLimits(); err != nil {
			errs = append(errs, &InvalidTargetError{Index: i, Name: t.Name, Err: err})
		}
	}
	return errors.Join(errs...)
}

// Marshal encodes the file as TOML.
func (f *File) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}
	return buf.Bytes(), nil
}

// Write encodes the file to path.
func (f *File) Write(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Add appends a target built from measured limits.
func (f *File) Add(pkg, name string, limits ...metric.Limit) *Target {
	t := Target{Package: pkg, Name: name}
	for _, l := range limits {
		t.Limits = append(t.Limits, metric.RecordOf(l))
	}
	f.Targets = append(f.Targets, t)
	return &f.Targets[len(f.Targets)-1]
}

// MetricLimits decodes and validates the target's limits. A metric may appear
// only once per target.
func (t Target) MetricLimits() ([]metric.Limit, error) {
	if t.Package == "" {
		return nil, errors.New("missing package")
	}
	if t.Name == "" {
		return nil, errors.New("missing name")
	}
	seen := make(map[string]bool, len(t.Limits))
	limits := make([]metric.Limit, 0, len(t.Limits))
	for _, r := range t.Limits {
		if seen[r.Metric] {
			return nil, fmt.Errorf("metric %q listed twice", r.Metric)
		}
		seen[r.Metric] = true
		l, err := r.Limit()
		if err != nil {
			return nil, err
		}
		limits = append(limits, l)
	}
	return limits, nil
}
