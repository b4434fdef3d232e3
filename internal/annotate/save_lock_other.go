// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package annotate

import "errors"

// errFlockUnavailable is returned where no advisory file lock is used. Context falls
// back to its in-process mutex.
var errFlockUnavailable = errors.New("flock not available on this platform")

// saveLock is the non-Linux stub.
type saveLock struct{}

func acquireSaveLock(string) (*saveLock, error) {
	return nil, errFlockUnavailable
}

// Release is a no-op on non-Linux platforms.
func (l *saveLock) Release() {}

func defaultSaveLockPath(func(string) string) string { return "" }
