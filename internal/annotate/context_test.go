// SPDX-License-Identifier: MPL-2.0

package annotate

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/perfjam/perfjam/internal/messages"
	"github.com/perfjam/perfjam/pkg/metric"
)

func newTestContext(t *testing.T, sink messages.Sink) *Context {
	t.Helper()
	return NewContext(sink, WithSaveLockPath(filepath.Join(t.TempDir(), "save.lock")))
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// expectViolation runs fn and fails unless it panics with a *ContractViolationError.
func expectViolation(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		cv, ok := r.(*ContractViolationError)
		if !ok {
			t.Fatalf("recovered %v (%T), want *ContractViolationError", r, r)
		}
		if !errors.Is(cv, ErrContractViolation) {
			t.Errorf("errors.Is(cv, ErrContractViolation) = false")
		}
	}()
	fn()
}

func TestContext_LinesLoadsOnce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a_test.go")
	writeTestFile(t, path, "package a\n\nfunc F() {}\n")

	c := newTestContext(t, nil)
	lines, ok := c.Lines(path)
	if !ok || !slices.Equal(lines, []string{"package a", "", "func F() {}"}) {
		t.Fatalf("Lines() = %q, %v", lines, ok)
	}

	// Content changes on disk are not observed within the pass.
	writeTestFile(t, path, "package changed\n")
	again, _ := c.Lines(path)
	if again[0] != "package a" {
		t.Errorf("second Lines() reloaded the file: %q", again)
	}

	sum, ok := c.Checksum(path)
	if !ok || sum != Checksum([]byte("package a\n\nfunc F() {}\n")) {
		t.Errorf("Checksum() = %q, %v", sum, ok)
	}
}

func TestContext_RepresentationExclusive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	text := filepath.Join(dir, "a.go")
	doc := filepath.Join(dir, "a.perf.toml")
	writeTestFile(t, text, "package a\n")

	c := newTestContext(t, nil)
	if _, ok := c.Lines(text); !ok {
		t.Fatal("Lines() failed")
	}
	expectViolation(t, func() { c.Document(text) })

	if _, ok := c.Document(doc); !ok {
		t.Fatal("Document() failed")
	}
	expectViolation(t, func() { c.Lines(doc) })
	expectViolation(t, func() { c.ReplaceLine(doc, 0, "x") })
}

func TestContext_UnloadedPathViolations(t *testing.T) {
	t.Parallel()

	c := newTestContext(t, nil)
	path := filepath.Join(t.TempDir(), "never.go")

	expectViolation(t, func() { c.MarkAsChanged(path) })
	expectViolation(t, func() { c.ReplaceLine(path, 0, "") })
}

func TestContext_ReplaceLineOutOfRange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.go")
	writeTestFile(t, path, "one\ntwo\n")

	c := newTestContext(t, nil)
	c.Lines(path)
	expectViolation(t, func() { c.ReplaceLine(path, 2, "three") })
}

func TestContext_IOFailureReportsSetupError(t *testing.T) {
	t.Parallel()

	rec := &messages.Recorder{}
	c := newTestContext(t, rec)
	missing := filepath.Join(t.TempDir(), "missing.go")

	if _, ok := c.Lines(missing); ok {
		t.Fatal("Lines(missing) ok = true")
	}
	if _, ok := c.Lines(missing); ok {
		t.Fatal("second Lines(missing) ok = true")
	}
	if got := rec.Count(messages.SetupError); got != 1 {
		t.Errorf("SetupError count = %d, want 1 (failure remembered)", got)
	}
}

func TestContext_MissingSidecarIsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.perf.toml")
	c := newTestContext(t, nil)

	doc, ok := c.Document(path)
	if !ok || len(doc.Benchmarks) != 0 {
		t.Fatalf("Document(missing) = %+v, %v", doc, ok)
	}
	if err := c.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("unchanged missing sidecar was created (stat err %v)", err)
	}

	b, _ := doc.FindOrCreate("BenchmarkSum")
	b.SetLimit(metric.NewLimit(metric.Gc0, 0, 1, metric.Unit{}))
	c.MarkAsChanged(path)
	if err := c.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("sidecar not created: %v", err)
	}
}

func TestContext_InvalidSidecarReportsSetupError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.perf.toml")
	writeTestFile(t, path, "[[benchmark]\n")

	rec := &messages.Recorder{}
	c := newTestContext(t, rec)
	if _, ok := c.Document(path); ok {
		t.Fatal("Document(invalid) ok = true")
	}
	if rec.Count(messages.SetupError) != 1 {
		t.Errorf("messages = %+v", rec.Messages())
	}
}

func TestContext_SaveIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.go")
	writeTestFile(t, path, "one\ntwo\n")

	c := newTestContext(t, nil)
	if err := c.Save(); err != nil {
		t.Fatalf("Save() with nothing loaded error = %v", err)
	}

	c.Lines(path)
	c.ReplaceLine(path, 1, "TWO")
	c.MarkAsChanged(path)
	if err := c.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got := readTestFile(t, path); got != "one\nTWO\n" {
		t.Errorf("file = %q", got)
	}

	// Replace the file behind the context's back: a second Save must not touch it.
	writeTestFile(t, path, "external\n")
	if err := c.Save(); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if got := readTestFile(t, path); got != "external\n" {
		t.Errorf("second Save() rewrote the file: %q", got)
	}

	if !slices.Equal(c.Dirty(), []string{canonicalPath(path)}) {
		t.Errorf("Dirty() = %v, want the saved path retained", c.Dirty())
	}
	if len(c.Pending()) != 0 {
		t.Errorf("Pending() = %v, want empty", c.Pending())
	}
}

func TestContext_MarkAsChangedIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.go")
	writeTestFile(t, path, "x\n")

	c := newTestContext(t, nil)
	c.Lines(path)
	c.MarkAsChanged(path)
	c.MarkAsChanged(path)
	if got := c.Dirty(); len(got) != 1 {
		t.Errorf("Dirty() = %v, want one entry", got)
	}
}

func TestContext_SavePreservesLineFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "lf trailing", content: "a\nb\n", want: "a\nB\n"},
		{name: "lf no trailing", content: "a\nb", want: "a\nB"},
		{name: "crlf", content: "a\r\nb\r\n", want: "a\r\nB\r\n"},
		{name: "blank lines kept", content: "a\nb\n\n", want: "a\nB\n\n"},
		{name: "mixed endings", content: "a\r\nb\nc\r\nd\n", want: "a\r\nB\nc\r\nd\n"},
		{name: "lf first then crlf", content: "a\nb\r\nc", want: "a\nB\r\nc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "f.go")
			writeTestFile(t, path, tt.content)

			c := newTestContext(t, nil)
			lines, _ := c.Lines(path)
			for _, l := range lines {
				if strings.ContainsRune(l, '\r') {
					t.Errorf("Lines() returned %q with a carriage return", l)
				}
			}
			c.ReplaceLine(path, 1, "B")
			if err := c.Save(); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if got := readTestFile(t, path); got != tt.want {
				t.Errorf("file = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContext_SaveKeepsPermissions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.go")
	writeTestFile(t, path, "x\n")
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatal(err)
	}

	c := newTestContext(t, nil)
	c.Lines(path)
	c.ReplaceLine(path, 0, "y")
	if err := c.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestContext_SaveFailureReported(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	writeTestFile(t, path, "x\n")

	rec := &messages.Recorder{}
	c := newTestContext(t, rec)
	c.Lines(path)
	c.ReplaceLine(path, 0, "y")

	// Replacing the file with a non-empty directory makes the rename fail.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, filepath.Join(path, "child"), "")

	err := c.Save()
	var se *SaveError
	if !errors.As(err, &se) {
		t.Fatalf("Save() error = %v, want *SaveError", err)
	}
	if _, ok := se.Failed[canonicalPath(path)]; !ok {
		t.Errorf("Failed = %v", se.Failed)
	}
	if rec.Count(messages.SetupError) != 1 {
		t.Errorf("messages = %+v", rec.Messages())
	}
	if len(c.Pending()) != 1 {
		t.Errorf("Pending() = %v, want failed file still pending", c.Pending())
	}
}

func TestContext_RelativeAndAbsolutePathsShareEntry(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.go")
	writeTestFile(t, path, "x\n")

	c := newTestContext(t, nil)
	c.Lines(path)
	c.Lines(filepath.Join(filepath.Dir(path), ".", "a.go"))
	c.MarkAsChanged(filepath.Join(filepath.Dir(path), "sub", "..", "a.go"))
	if got := c.Dirty(); len(got) != 1 {
		t.Errorf("Dirty() = %v, want one canonical entry", got)
	}
}
