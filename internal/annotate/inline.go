// SPDX-License-Identifier: MPL-2.0

package annotate

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/perfjam/perfjam/pkg/metric"
)

// directivePrefix starts an inline limit directive comment.
const directivePrefix = "//perfjam:limit"

// ErrMalformedDirective is the sentinel error wrapped by MalformedDirectiveError.
var ErrMalformedDirective = errors.New("malformed limit directive")

type (
	// MalformedDirectiveError reports a limit directive that cannot be parsed.
	MalformedDirectiveError struct {
		// Line is the 1-based line number of the directive.
		Line   int
		Reason string
	}

	span struct{ start, end int }

	token struct {
		text string
		span span
	}

	// directive is a parsed "//perfjam:limit <metric> <min> <max> [unit]" comment.
	// Anything after a "//" token is a free-form note and is kept verbatim.
	directive struct {
		index   int
		limit   metric.Limit
		min     span
		max     span
		unit    span
		hasUnit bool
	}
)

// Error implements the error interface.
func (e *MalformedDirectiveError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Unwrap returns ErrMalformedDirective so callers can use errors.Is for programmatic detection.
func (e *MalformedDirectiveError) Unwrap() error { return ErrMalformedDirective }

// scanDirectives collects the limit directives in the contiguous block of comment
// lines directly above lines[declIndex], in top-down order.
func scanDirectives(lines []string, declIndex int) ([]directive, error) {
	var found []directive
	for i := declIndex - 1; i >= 0; i-- {
		if !strings.HasPrefix(strings.TrimSpace(lines[i]), "//") {
			break
		}
		d, ok, err := parseDirective(lines[i], i)
		if err != nil {
			return nil, err
		}
		if ok {
			found = append(found, d)
		}
	}
	slices.Reverse(found)
	return found, nil
}

// parseDirective parses lines[index]. ok is false when the line is an ordinary comment.
func parseDirective(line string, index int) (d directive, ok bool, err error) {
	body := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(body, directivePrefix) {
		return directive{}, false, nil
	}
	offset := len(line) - len(body) + len(directivePrefix)
	rest := line[offset:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		// e.g. "//perfjam:limits", a different directive.
		return directive{}, false, nil
	}

	malformed := func(format string, args ...any) error {
		return &MalformedDirectiveError{Line: index + 1, Reason: fmt.Sprintf(format, args...)}
	}

	var toks []token
	for _, tok := range tokenize(rest, offset) {
		if strings.HasPrefix(tok.text, "//") {
			break
		}
		toks = append(toks, tok)
	}
	if len(toks) < 3 || len(toks) > 4 {
		return directive{}, true, malformed("want <metric> <min> <max> [unit], got %d fields", len(toks))
	}

	kind, _ := metric.LookupKind(toks[0].text)
	lo, err := metric.ParseBound(toks[1].text)
	if err != nil {
		return directive{}, true, malformed("min: %v", err)
	}
	hi, err := metric.ParseBound(toks[2].text)
	if err != nil {
		return directive{}, true, malformed("max: %v", err)
	}

	d = directive{index: index, min: toks[1].span, max: toks[2].span}
	var unit metric.Unit
	if len(toks) == 4 {
		if unit, err = metric.ParseUnit(toks[3].text); err != nil {
			return directive{}, true, malformed("%v", err)
		}
		d.unit = toks[3].span
		d.hasUnit = true
	}
	d.limit = metric.Limit{Kind: kind, Min: lo, Max: hi, Unit: unit}
	if err := d.limit.Validate(); err != nil {
		return directive{}, true, malformed("%v", err)
	}
	return d, true, nil
}

// rewrite returns line with the bound tokens replaced by l's bounds. Indentation,
// spacing and trailing notes are preserved. A unit is appended after the max token
// when the directive had none.
func (d directive) rewrite(line string, l metric.Limit) string {
	type edit struct {
		at   span
		text string
	}
	edits := []edit{
		{d.min, l.Min.String()},
		{d.max, l.Max.String()},
	}
	switch {
	case d.hasUnit:
		edits = append(edits, edit{d.unit, l.Unit.Name})
	case !l.Unit.IsZero():
		edits = append(edits, edit{span{d.max.end, d.max.end}, " " + l.Unit.Name})
	}

	// Apply right to left so earlier spans stay valid.
	slices.SortFunc(edits, func(a, b edit) int { return b.at.start - a.at.start })
	for _, e := range edits {
		line = line[:e.at.start] + e.text + line[e.at.end:]
	}
	return line
}

// tokenize splits s on spaces and tabs, reporting spans relative to the enclosing
// line via offset.
func tokenize(s string, offset int) []token {
	var toks []token
	start := -1
	for i := 0; i <= len(s); i++ {
		blank := i == len(s) || s[i] == ' ' || s[i] == '\t'
		switch {
		case blank && start >= 0:
			toks = append(toks, token{text: s[start:i], span: span{offset + start, offset + i}})
			start = -1
		case !blank && start < 0:
			start = i
		}
	}
	return toks
}

// declares reports whether line is the declaration line of function name.
func declares(line, name string) bool {
	needle := "func " + name
	for rest := line; ; {
		i := strings.Index(rest, needle)
		if i < 0 {
			return false
		}
		after := rest[i+len(needle):]
		if after != "" && (after[0] == '(' || after[0] == '[') {
			return true
		}
		rest = after
	}
}
