// SPDX-License-Identifier: MPL-2.0

package annotate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/perfjam/perfjam/internal/messages"
	"github.com/perfjam/perfjam/internal/symbols"
	"github.com/perfjam/perfjam/pkg/metric"
)

const (
	// DefaultSidecarExtension replaces the source extension to name a sidecar document.
	DefaultSidecarExtension = ".perf.toml"
	// DefaultRoundingDigits is the number of significant digits kept in written limits.
	DefaultRoundingDigits = 3
)

const (
	// StateResolved means the symbol was mapped to a source location.
	StateResolved State = iota
	// StateVerified means the source was loaded and its checksum matched.
	StateVerified
	// StateAnnotated means the limits were merged; the file changed only if needed.
	StateAnnotated
	// StateSkippedUnresolved means the symbol could not be resolved.
	StateSkippedUnresolved
	// StateSkippedMismatch means the source no longer matches what was measured.
	StateSkippedMismatch
	// StateSkippedIoError means a file could not be read or written.
	StateSkippedIoError
)

type (
	// State is the position of a target in the annotation state machine.
	State int

	// Target is one benchmark with freshly measured limits. Targets are not modified
	// by the engine.
	Target struct {
		Symbol symbols.Symbol
		// Sidecar selects the sidecar document instead of inline directives.
		Sidecar bool
		// Checksum is the source checksum recorded at measurement time, if any.
		Checksum string
		Limits   []metric.Limit
	}

	// Outcome is the final state of one target.
	Outcome struct {
		Target   Target
		Location symbols.Location
		State    State
		// File is the file holding the target's limits, once known.
		File string
		// Changed reports whether the pass modified File for this target.
		Changed bool
		Reason  string
	}

	// Report is the result of one annotation pass.
	Report struct {
		Outcomes []Outcome
		// Written lists the files saved by the pass; with dry run, the files that
		// would have been saved.
		Written []string
	}

	// EngineOption configures an Engine.
	EngineOption func(*Engine)

	// Engine resolves targets, merges their limits into the declaring files and saves
	// the result once per pass.
	Engine struct {
		resolver   symbols.Resolver
		sink       messages.Sink
		sidecarExt string
		digits     int
		dryRun     bool
		ctxOpts    []ContextOption
	}
)

// String returns the lower-case name of the state.
func (s State) String() string {
	switch s {
	case StateResolved:
		return "resolved"
	case StateVerified:
		return "verified"
	case StateAnnotated:
		return "annotated"
	case StateSkippedUnresolved:
		return "skipped-unresolved"
	case StateSkippedMismatch:
		return "skipped-mismatch"
	case StateSkippedIoError:
		return "skipped-io-error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// IsSkipped reports whether the state is one of the skipped terminal states.
func (s State) IsSkipped() bool { return s >= StateSkippedUnresolved }

// Name returns the qualified benchmark name.
func (t Target) Name() string { return t.Symbol.String() }

// Annotated returns the targets that reached StateAnnotated, in input order.
func (r *Report) Annotated() []Target {
	var out []Target
	for _, o := range r.Outcomes {
		if o.State == StateAnnotated {
			out = append(out, o.Target)
		}
	}
	return out
}

// Count returns the number of outcomes in state s.
func (r *Report) Count(s State) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == s {
			n++
		}
	}
	return n
}

// WithSink sets the diagnostics sink.
func WithSink(sink messages.Sink) EngineOption {
	return func(e *Engine) {
		if sink != nil {
			e.sink = sink
		}
	}
}

// WithSidecarExtension sets the extension that names sidecar documents.
func WithSidecarExtension(ext string) EngineOption {
	return func(e *Engine) {
		if ext != "" {
			e.sidecarExt = ext
		}
	}
}

// WithRoundingDigits sets the significant digits kept for new bound values.
// Zero or less disables rounding.
func WithRoundingDigits(n int) EngineOption {
	return func(e *Engine) { e.digits = n }
}

// WithDryRun makes passes compute outcomes without saving.
func WithDryRun(dryRun bool) EngineOption {
	return func(e *Engine) { e.dryRun = dryRun }
}

// WithContextOptions passes options to the Context created for each pass.
func WithContextOptions(opts ...ContextOption) EngineOption {
	return func(e *Engine) { e.ctxOpts = append(e.ctxOpts, opts...) }
}

// NewEngine returns an engine that resolves targets with resolver.
func NewEngine(resolver symbols.Resolver, opts ...EngineOption) *Engine {
	e := &Engine{
		resolver:   resolver,
		sink:       messages.Discard,
		sidecarExt: DefaultSidecarExtension,
		digits:     DefaultRoundingDigits,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SidecarPath returns the sidecar document path for a source file.
func (e *Engine) SidecarPath(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + e.sidecarExt
}

// Annotate runs one pass over targets and returns those that reached
// StateAnnotated, in input order.
func (e *Engine) Annotate(ctx context.Context, targets []Target) ([]Target, error) {
	report, err := e.AnnotateWithReport(ctx, targets)
	if report == nil {
		return nil, err
	}
	return report.Annotated(), err
}

// AnnotateWithReport runs one pass over targets and reports every outcome. Skipped
// targets are reported to the sink and do not stop the pass. A contract violation
// abandons the pass without saving and is returned as a *ContractViolationError.
// When saving fails, the report is still returned and the targets whose file could
// not be written are moved to StateSkippedIoError.
func (e *Engine) AnnotateWithReport(ctx context.Context, targets []Target) (report *Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			cv, ok := r.(*ContractViolationError)
			if !ok {
				panic(r)
			}
			report, err = nil, cv
		}
	}()

	c := NewContext(e.sink, e.ctxOpts...)
	outcomes := make([]Outcome, 0, len(targets))
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, e.annotateTarget(ctx, c, t))
	}

	report = &Report{Outcomes: outcomes, Written: c.Pending()}
	if e.dryRun {
		return report, nil
	}

	if err := c.Save(); err != nil {
		var se *SaveError
		if errors.As(err, &se) {
			report.Written = slices.DeleteFunc(report.Written, func(p string) bool {
				_, bad := se.Failed[p]
				return bad
			})
			for i := range report.Outcomes {
				o := &report.Outcomes[i]
				if werr, bad := se.Failed[o.File]; bad && o.State == StateAnnotated {
					o.State = StateSkippedIoError
					o.Reason = werr.Error()
				}
			}
		}
		return report, err
	}
	return report, nil
}

func (e *Engine) annotateTarget(ctx context.Context, c *Context, t Target) Outcome {
	out := Outcome{Target: t, State: StateResolved}

	loc, err := e.resolver.Resolve(ctx, t.Symbol)
	if err != nil {
		return e.skip(out, StateSkippedUnresolved, "cannot resolve benchmark", err)
	}
	out.Location = loc
	out.File = canonicalPath(loc.File)

	// The source is loaded as text even for sidecar targets so its checksum and
	// declaration can be verified.
	lines, ok := c.Lines(loc.File)
	if !ok {
		out.Reason = "cannot read source file"
		out.State = StateSkippedIoError
		return out
	}

	if t.Checksum != "" {
		if sum, _ := c.Checksum(loc.File); !checksumMatches(t.Checksum, sum) {
			return e.skip(out, StateSkippedMismatch, "source changed since measurement",
				fmt.Errorf("checksum %s, recorded %s", sum, t.Checksum))
		}
	}
	declIndex := loc.Line - 1
	if declIndex < 0 || declIndex >= len(lines) || !declares(lines[declIndex], t.Symbol.Name) {
		return e.skip(out, StateSkippedMismatch, "declaration not found at resolved location",
			fmt.Errorf("%s does not declare %s", loc, t.Symbol.Name))
	}
	out.State = StateVerified

	if t.Sidecar {
		return e.annotateSidecar(c, t, out)
	}
	return e.annotateInline(c, t, lines, declIndex, out)
}

func (e *Engine) annotateSidecar(c *Context, t Target, out Outcome) Outcome {
	path := e.SidecarPath(out.Location.File)
	out.File = canonicalPath(path)

	doc, ok := c.Document(path)
	if !ok {
		out.Reason = "cannot load sidecar document"
		out.State = StateSkippedIoError
		return out
	}

	bench, changed := doc.FindOrCreate(t.Symbol.Name)
	for _, measured := range t.Limits {
		existing, found, err := bench.Limit(measured.Kind)
		if err != nil {
			return e.skip(out, StateSkippedMismatch, "invalid recorded limit", err)
		}
		if !found {
			existing = metric.Limit{Kind: measured.Kind}
		}
		merged := mergeLimit(existing, measured, e.digits)
		if found && merged.Equal(existing) {
			continue
		}
		bench.SetLimit(merged)
		changed = true
	}

	if changed {
		c.MarkAsChanged(path)
		e.info(t, "updated sidecar limits in "+path)
	}
	out.Changed = changed
	out.State = StateAnnotated
	return out
}

func (e *Engine) annotateInline(c *Context, t Target, lines []string, declIndex int, out Outcome) Outcome {
	directives, err := scanDirectives(lines, declIndex)
	if err != nil {
		return e.skip(out, StateSkippedMismatch, "malformed limit directive", err)
	}

	type update struct {
		d     directive
		limit metric.Limit
	}
	var updates []update
	for _, measured := range t.Limits {
		i := slices.IndexFunc(directives, func(d directive) bool { return d.limit.Kind.Name == measured.Kind.Name })
		if i < 0 {
			return e.skip(out, StateSkippedMismatch, "no limit directive for metric "+measured.Kind.Name, nil)
		}
		d := directives[i]
		merged := mergeLimit(d.limit, measured, e.digits)
		if !merged.Equal(d.limit) {
			updates = append(updates, update{d, merged})
		}
	}

	// Every metric is checked before any line changes, so a skipped target
	// leaves the file untouched.
	for _, u := range updates {
		c.ReplaceLine(out.Location.File, u.d.index, u.d.rewrite(lines[u.d.index], u.limit))
	}
	if len(updates) > 0 {
		e.info(t, "updated inline limits in "+out.Location.File)
	}
	out.Changed = len(updates) > 0
	out.State = StateAnnotated
	return out
}

// mergeLimit widens existing to cover measured. The measured limit is expressed in
// the existing unit (or its own when existing has none) and rounded outward before
// the union, so a measurement already covered leaves existing unchanged.
func mergeLimit(existing, measured metric.Limit, digits int) metric.Limit {
	unit := existing.Unit
	if unit.IsZero() {
		unit = measured.Unit
	}
	return existing.UnionWith(measured.ToUnit(unit).Rounded(digits))
}

func (e *Engine) skip(out Outcome, state State, reason string, err error) Outcome {
	out.State = state
	out.Reason = reason
	if err != nil {
		out.Reason = reason + ": " + err.Error()
	}
	e.sink.Report(messages.Message{
		Source:    "annotate",
		Benchmark: out.Target.Name(),
		Severity:  messages.Warning,
		Text:      reason + "; target skipped",
		Err:       err,
	})
	return out
}

func (e *Engine) info(t Target, text string) {
	e.sink.Report(messages.Message{
		Source:    "annotate",
		Benchmark: t.Name(),
		Severity:  messages.Info,
		Text:      text,
	})
}
