// SPDX-License-Identifier: MPL-2.0

package messages

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

const (
	// Info is an informational message.
	Info Severity = iota
	// Warning marks a skipped target or a recoverable problem.
	Warning
	// SetupError marks a failure to load or resolve something a target depends on.
	SetupError
)

type (
	// Severity ranks a message.
	Severity int

	// Message is a single diagnostic.
	Message struct {
		// Source names the component that emitted the message (e.g. "annotate").
		Source string
		// Benchmark names the target the message is about, if any.
		Benchmark string
		Severity  Severity
		Text      string
		// Err is the underlying error, if any.
		Err error
	}

	// Sink receives diagnostics.
	Sink interface {
		Report(msg Message)
	}

	// SinkFunc adapts a function to the Sink interface.
	SinkFunc func(Message)

	// LogSink writes messages to a charmbracelet/log logger.
	LogSink struct {
		logger *log.Logger
	}

	// Recorder stores messages in memory. It is safe for concurrent use.
	Recorder struct {
		mu   sync.Mutex
		msgs []Message
	}

	tee []Sink
)

// String returns the lower-case name of the severity.
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case SetupError:
		return "setup-error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Level maps the severity to a log level.
func (s Severity) Level() log.Level {
	switch s {
	case Warning:
		return log.WarnLevel
	case SetupError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Report calls f.
func (f SinkFunc) Report(msg Message) { f(msg) }

// NewLogSink returns a sink that logs through logger.
func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Report implements Sink.
func (s *LogSink) Report(msg Message) {
	kv := make([]any, 0, 6)
	if msg.Source != "" {
		kv = append(kv, "source", msg.Source)
	}
	if msg.Benchmark != "" {
		kv = append(kv, "benchmark", msg.Benchmark)
	}
	if msg.Err != nil {
		kv = append(kv, "error", msg.Err)
	}
	s.logger.Log(msg.Severity.Level(), msg.Text, kv...)
}

// Report implements Sink.
func (r *Recorder) Report(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

// Messages returns a copy of every recorded message in arrival order.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}

// Count returns how many recorded messages have the given severity.
func (r *Recorder) Count(sev Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if m.Severity == sev {
			n++
		}
	}
	return n
}

// Tee returns a sink that forwards every message to each of sinks in order.
func Tee(sinks ...Sink) Sink {
	return tee(sinks)
}

func (t tee) Report(msg Message) {
	for _, s := range t {
		s.Report(msg)
	}
}

// Discard is a sink that drops every message.
var Discard Sink = SinkFunc(func(Message) {})
