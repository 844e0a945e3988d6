//go:build !unix

package backing

import (
	"fmt"
	"os"
)

// anonMap falls back to the Go heap where anonymous mappings are unavailable.
func anonMap(n int) ([]byte, func() error, error) {
	return make([]byte, n), func() error { return nil }, nil
}

// mapFile reads the entire file when mmap is not available. Writes are
// persisted by File.Sync rewriting the file.
func mapFile(path string, _ bool) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("backing: %s is empty", path)
	}
	return data, func() error { return nil }, nil
}

const fileMapped = false
