package store

import (
	"path/filepath"
	"testing"
)

// drivers lists every registered driver so tests run against both.
var drivers = []string{DriverMattn, DriverModernc}

// createTestStore opens a fresh file-backed store for testing.
func createTestStore(t *testing.T, driver string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(Config{Path: path, Driver: driver})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
