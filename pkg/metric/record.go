// SPDX-License-Identifier: MPL-2.0

package metric

import "fmt"

// Record is the serialized form of a Limit shared by sidecar documents and results
// files. Min and Max use the external float encoding, which TOML expresses natively
// as nan, inf and -inf.
type Record struct {
	Metric string  `toml:"metric"`
	Min    float64 `toml:"min"`
	Max    float64 `toml:"max"`
	Unit   string  `toml:"unit,omitempty"`
}

// RecordOf converts a limit to its serialized form.
func RecordOf(l Limit) Record {
	return Record{
		Metric: l.Kind.Name,
		Min:    l.Min.Float64(),
		Max:    l.Max.Float64(),
		Unit:   l.Unit.Name,
	}
}

// Limit decodes the record and validates the result.
func (r Record) Limit() (Limit, error) {
	kind, _ := LookupKind(r.Metric)
	unit, err := ParseUnit(r.Unit)
	if err != nil {
		return Limit{}, fmt.Errorf("metric %q: %w", r.Metric, err)
	}
	l := NewLimit(kind, r.Min, r.Max, unit)
	if err := l.Validate(); err != nil {
		return Limit{}, err
	}
	return l, nil
}
