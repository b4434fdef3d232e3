// SPDX-License-Identifier: MPL-2.0

package annotate

import (
	"fmt"
	"os"
	"strings"

	"github.com/zeebo/xxh3"
)

// Checksum returns the content checksum recorded by benchmark harnesses: the
// xxh3-64 hash of data as 16 lower-case hex digits.
func Checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}

// ChecksumFile returns the Checksum of the file at path.
func ChecksumFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Checksum(data), nil
}

// checksumMatches compares a recorded checksum against a computed one. Recorded
// values are accepted in either case.
func checksumMatches(recorded, actual string) bool {
	return strings.EqualFold(strings.TrimSpace(recorded), actual)
}
