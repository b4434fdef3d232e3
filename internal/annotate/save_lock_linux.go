// SPDX-License-Identifier: MPL-2.0

//go:build linux

package annotate

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// saveLockName is the well-known lock file shared by all perfjam processes that
// rewrite annotations. An orphaned lock file is harmless; the kernel drops the flock
// when the descriptor closes.
const saveLockName = "perfjam-annotate.lock"

// errFlockUnavailable mirrors save_lock_other.go. acquireSaveLock never returns it on Linux.
var errFlockUnavailable = errors.New("flock not available on this platform")

// saveLock holds an exclusive flock so concurrent perfjam processes do not
// interleave rewrites of the same sources.
type saveLock struct {
	file *os.File
}

// acquireSaveLock opens (or creates) the lock file and blocks until it holds an
// exclusive flock on it.
func acquireSaveLock(lockPath string) (*saveLock, error) {
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", lockPath, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("flock %s: %w", lockPath, err)
	}

	return &saveLock{file: f}, nil
}

// Release unlocks and closes the lock file. Calling it more than once is a no-op.
func (l *saveLock) Release() {
	if l == nil || l.file == nil {
		return
	}
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		slog.Debug("flock unlock failed", "error", err)
	}
	if err := l.file.Close(); err != nil {
		slog.Debug("lock file close failed", "error", err)
	}
	l.file = nil
}

// defaultSaveLockPath prefers $XDG_RUNTIME_DIR and falls back to os.TempDir().
func defaultSaveLockPath(getenv func(string) string) string {
	dir := getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, saveLockName)
}
