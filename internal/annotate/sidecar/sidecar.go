// SPDX-License-Identifier: MPL-2.0

// Package sidecar reads and writes the TOML documents that hold metric limits
// for benchmarks whose source should not carry inline directives.
//
// A document looks like:
//
//	[[benchmark]]
//	name = "BenchmarkSum"
//
//	[[benchmark.limit]]
//	metric = "time"
//	min = 10.0
//	max = inf
//	unit = "ns"
package sidecar

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/perfjam/perfjam/pkg/metric"
)

// ErrInvalidDocument is the sentinel error wrapped by InvalidDocumentError.
var ErrInvalidDocument = errors.New("invalid sidecar document")

type (
	// Document is the root of a sidecar file.
	Document struct {
		Benchmarks []Benchmark `toml:"benchmark"`
	}

	// Benchmark holds the limits recorded for one benchmark function.
	Benchmark struct {
		Name   string          `toml:"name"`
		Limits []metric.Record `toml:"limit,omitempty"`
	}

	// InvalidDocumentError reports a document that parsed but holds bad data.
	InvalidDocumentError struct {
		Benchmark string
		Err       error
	}
)

// Error implements the error interface.
func (e *InvalidDocumentError) Error() string {
	if e.Benchmark == "" {
		return fmt.Sprintf("invalid sidecar document: %v", e.Err)
	}
	return fmt.Sprintf("invalid sidecar document: benchmark %q: %v", e.Benchmark, e.Err)
}

// Unwrap returns ErrInvalidDocument so callers can use errors.Is for programmatic detection.
func (e *InvalidDocumentError) Unwrap() error { return ErrInvalidDocument }

// Parse decodes and validates a sidecar document. Empty input yields an empty document.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("decode sidecar document: %w", err)
	}
	for _, b := range doc.Benchmarks {
		if b.Name == "" {
			return nil, &InvalidDocumentError{Err: errors.New("benchmark without a name")}
		}
		for _, r := range b.Limits {
			if _, err := r.Limit(); err != nil {
				return nil, &InvalidDocumentError{Benchmark: b.Name, Err: err}
			}
		}
	}
	return doc, nil
}

// Marshal encodes the document as TOML. Unset bounds are written as nan and
// unbounded ones as inf or -inf.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encode sidecar document: %w", err)
	}
	return buf.Bytes(), nil
}

// Find returns the first benchmark element with the given name, or nil.
func (d *Document) Find(name string) *Benchmark {
	for i := range d.Benchmarks {
		if d.Benchmarks[i].Name == name {
			return &d.Benchmarks[i]
		}
	}
	return nil
}

// FindOrCreate returns the benchmark element with the given name, appending an empty
// one when absent. created reports whether the element was appended. The returned
// pointer is invalidated by the next FindOrCreate call that appends.
func (d *Document) FindOrCreate(name string) (b *Benchmark, created bool) {
	if b := d.Find(name); b != nil {
		return b, false
	}
	d.Benchmarks = append(d.Benchmarks, Benchmark{Name: name})
	return &d.Benchmarks[len(d.Benchmarks)-1], true
}

// Limit returns the recorded limit for kind. Records are validated by Parse, so a
// decode failure here means the document was built in memory with bad data.
func (b *Benchmark) Limit(kind metric.Kind) (metric.Limit, bool, error) {
	for _, r := range b.Limits {
		if r.Metric != kind.Name {
			continue
		}
		l, err := r.Limit()
		if err != nil {
			return metric.Limit{}, false, err
		}
		return l, true, nil
	}
	return metric.Limit{}, false, nil
}

// SetLimit replaces the record for l's metric, or appends one.
func (b *Benchmark) SetLimit(l metric.Limit) {
	rec := metric.RecordOf(l)
	for i := range b.Limits {
		if b.Limits[i].Metric == rec.Metric {
			b.Limits[i] = rec
			return
		}
	}
	b.Limits = append(b.Limits, rec)
}
