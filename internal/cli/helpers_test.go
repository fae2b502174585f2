package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// tempDB returns a database path in a fresh temp dir and clears the
// environment so only flags apply.
func tempDB(t *testing.T) string {
	t.Helper()
	for _, key := range []string{"ENSURE_SCHEMA_DB", "ENSURE_SCHEMA_DRIVER", "ENSURE_SCHEMA_WAL", "ENSURE_SCHEMA_BUSY_TIMEOUT_MS"} {
		t.Setenv(key, "") // restored on cleanup
		os.Unsetenv(key)
	}
	return filepath.Join(t.TempDir(), "test.db")
}
