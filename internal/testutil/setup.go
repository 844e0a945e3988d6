// Package testutil holds helpers shared by memkit tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TempFile writes data to a file called name in a per-test temporary
// directory and returns its path. The directory is removed when the test ends.
//
// Example:
//
//	path := testutil.TempFile(t, "rom.bin", []byte{1, 2, 3, 4})
//	r, err := root.MapFile(path, 1, false)
func TempFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// MissingFile returns a path inside a temporary directory that does not exist.
func MissingFile(t testing.TB, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

// Pattern returns n bytes where byte i is i mod 251, so that no two offsets
// within a page hold the same value at the same distance.
func Pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}
