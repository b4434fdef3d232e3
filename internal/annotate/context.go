// SPDX-License-Identifier: MPL-2.0

package annotate

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/perfjam/perfjam/internal/annotate/sidecar"
	"github.com/perfjam/perfjam/internal/messages"
)

const (
	entryText entryKind = iota + 1
	entrySidecar
)

const defaultFilePerm fs.FileMode = 0o644

// saveMu serializes Save calls within the process. On Linux the flock also
// serializes across processes.
var saveMu sync.Mutex

type (
	entryKind int

	// entry is the cached state of one path. Exactly one of lines or doc is used,
	// selected by kind.
	entry struct {
		kind entryKind

		lines []string
		// eols holds the terminator that followed each line on disk; the last
		// one is empty when the file does not end with a line break.
		eols []string

		doc *sidecar.Document

		checksum string
		perm     fs.FileMode
		// revision counts mutations; saved is the revision last written to disk.
		revision int
		saved    int
	}

	// ContextOption configures a Context.
	ContextOption func(*Context)

	// Context caches the files touched by one annotation pass. It is not safe for
	// concurrent use.
	Context struct {
		sink     messages.Sink
		lockPath string

		entries map[string]*entry
		failed  map[string]error
		dirty   []string
		inDirty map[string]bool
	}

	// SaveError lists the files that could not be written by Save.
	SaveError struct {
		Failed map[string]error
	}
)

// WithSaveLockPath overrides the advisory lock file used by Save. An empty path
// disables the cross-process lock.
func WithSaveLockPath(path string) ContextOption {
	return func(c *Context) { c.lockPath = path }
}

// NewContext returns an empty Context that reports load and save failures to sink.
func NewContext(sink messages.Sink, opts ...ContextOption) *Context {
	if sink == nil {
		sink = messages.Discard
	}
	c := &Context{
		sink:     sink,
		lockPath: defaultSaveLockPath(os.Getenv),
		entries:  make(map[string]*entry),
		failed:   make(map[string]error),
		inDirty:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Error implements the error interface.
func (e *SaveError) Error() string {
	paths := slices.Sorted(maps.Keys(e.Failed))
	if len(paths) == 1 {
		return fmt.Sprintf("save %s: %v", paths[0], e.Failed[paths[0]])
	}
	return fmt.Sprintf("save failed for %d files: %s", len(paths), strings.Join(paths, ", "))
}

// Unwrap returns the individual write errors.
func (e *SaveError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, err := range e.Failed {
		errs = append(errs, err)
	}
	return errs
}

// Lines returns the cached text lines of file, loading it on first use. The slice
// must not be modified; use ReplaceLine. A load failure is reported to the sink
// once and the path stays absent for the rest of the pass.
func (c *Context) Lines(file string) ([]string, bool) {
	path := canonicalPath(file)
	if e, ok := c.entries[path]; ok {
		if e.kind != entryText {
			violate("Lines", path, "file is loaded as a sidecar document")
		}
		return e.lines, true
	}
	if _, failed := c.failed[path]; failed {
		return nil, false
	}

	data, perm, err := readFile(path)
	if err != nil {
		c.fail(path, "cannot read source file", err)
		return nil, false
	}
	e := &entry{kind: entryText, checksum: Checksum(data), perm: perm}
	e.lines, e.eols = splitLines(string(data))
	c.entries[path] = e
	return e.lines, true
}

// Document returns the cached sidecar document of file, loading it on first use.
// A missing file yields an empty document that is created on Save if changed.
func (c *Context) Document(file string) (*sidecar.Document, bool) {
	path := canonicalPath(file)
	if e, ok := c.entries[path]; ok {
		if e.kind != entrySidecar {
			violate("Document", path, "file is loaded as text")
		}
		return e.doc, true
	}
	if _, failed := c.failed[path]; failed {
		return nil, false
	}

	data, perm, err := readFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data, perm = nil, defaultFilePerm
	case err != nil:
		c.fail(path, "cannot read sidecar document", err)
		return nil, false
	}
	doc, err := sidecar.Parse(data)
	if err != nil {
		c.fail(path, "cannot parse sidecar document", err)
		return nil, false
	}
	c.entries[path] = &entry{kind: entrySidecar, doc: doc, checksum: Checksum(data), perm: perm}
	return doc, true
}

// ReplaceLine sets line index (0-based) of a text file and marks it changed.
func (c *Context) ReplaceLine(file string, index int, line string) {
	path := canonicalPath(file)
	e, ok := c.entries[path]
	if !ok {
		violate("ReplaceLine", path, "file is not loaded")
	}
	if e.kind != entryText {
		violate("ReplaceLine", path, "file is loaded as a sidecar document")
	}
	if index < 0 || index >= len(e.lines) {
		violate("ReplaceLine", path, "line index %d out of range [0, %d)", index, len(e.lines))
	}
	e.lines[index] = line
	c.markChanged(path, e)
}

// MarkAsChanged records that the cached representation of file was modified in place
// and must be written by the next Save.
func (c *Context) MarkAsChanged(file string) {
	path := canonicalPath(file)
	e, ok := c.entries[path]
	if !ok {
		violate("MarkAsChanged", path, "file is not loaded")
	}
	c.markChanged(path, e)
}

// Checksum returns the checksum of the on-disk content of a loaded file as it was
// when first loaded. Files created by the pass report the checksum of empty content.
func (c *Context) Checksum(file string) (string, bool) {
	e, ok := c.entries[canonicalPath(file)]
	if !ok {
		return "", false
	}
	return e.checksum, true
}

// Dirty returns every path marked changed during the pass in first-marked order.
// The set never shrinks, including after Save.
func (c *Context) Dirty() []string {
	out := make([]string, len(c.dirty))
	copy(out, c.dirty)
	return out
}

// Pending returns the dirty paths that have changes not yet written.
func (c *Context) Pending() []string {
	var out []string
	for _, path := range c.dirty {
		if e := c.entries[path]; e.revision != e.saved {
			out = append(out, path)
		}
	}
	return out
}

// Save writes every file with unsaved changes. It does nothing, not even take the
// lock, when there is nothing to write. A file that fails to write is reported to
// the sink and left pending; the others are still written.
func (c *Context) Save() error {
	pending := c.Pending()
	if len(pending) == 0 {
		return nil
	}

	saveMu.Lock()
	defer saveMu.Unlock()

	if c.lockPath != "" {
		lock, err := acquireSaveLock(c.lockPath)
		switch {
		case errors.Is(err, errFlockUnavailable):
			slog.Debug("flock unavailable, relying on in-process mutex", "error", err)
		case err != nil:
			slog.Warn("save lock acquisition failed, relying on in-process mutex", "error", err)
		default:
			defer lock.Release()
		}
	}

	var failed map[string]error
	for _, path := range pending {
		e := c.entries[path]
		if err := c.write(path, e); err != nil {
			if failed == nil {
				failed = make(map[string]error)
			}
			failed[path] = err
			c.sink.Report(messages.Message{
				Source:   "annotate",
				Severity: messages.SetupError,
				Text:     "cannot write " + path,
				Err:      err,
			})
			continue
		}
		e.saved = e.revision
	}
	if failed != nil {
		return &SaveError{Failed: failed}
	}
	return nil
}

func (c *Context) write(path string, e *entry) error {
	var data []byte
	switch e.kind {
	case entryText:
		data = []byte(joinLines(e.lines, e.eols))
	case entrySidecar:
		var err error
		if data, err = e.doc.Marshal(); err != nil {
			return err
		}
	}
	return writeFileAtomic(path, data, e.perm)
}

func (c *Context) markChanged(path string, e *entry) {
	e.revision++
	if !c.inDirty[path] {
		c.inDirty[path] = true
		c.dirty = append(c.dirty, path)
	}
}

func (c *Context) fail(path, text string, err error) {
	c.failed[path] = err
	c.sink.Report(messages.Message{
		Source:   "annotate",
		Severity: messages.SetupError,
		Text:     text + " " + path,
		Err:      err,
	})
}

func readFile(path string) ([]byte, fs.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, err
	}
	if info.IsDir() {
		return nil, 0, fmt.Errorf("%s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	return data, info.Mode().Perm(), nil
}

// canonicalPath makes equal files map to the same cache key regardless of how the
// caller spelled the path.
func canonicalPath(file string) string {
	if abs, err := filepath.Abs(file); err == nil {
		return abs
	}
	return filepath.Clean(file)
}

// splitLines splits text into lines without their terminators and returns the
// terminator of each line ("\n", "\r\n" or "" for an unterminated last line),
// so files with mixed line endings are written back unchanged.
func splitLines(text string) (lines, eols []string) {
	lines = []string{}
	for text != "" {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			lines = append(lines, text)
			eols = append(eols, "")
			break
		}
		line, eol := text[:i], "\n"
		if strings.HasSuffix(line, "\r") {
			line, eol = line[:len(line)-1], "\r\n"
		}
		lines = append(lines, line)
		eols = append(eols, eol)
		text = text[i+1:]
	}
	return lines, eols
}

func joinLines(lines, eols []string) string {
	var b strings.Builder
	for i, l := range lines {
		b.WriteString(l)
		b.WriteString(eols[i])
	}
	return b.String()
}
