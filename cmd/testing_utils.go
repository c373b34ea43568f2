package cmd

import (
	"bytes"
	"io"
	"os"
	"testing"
)

// executeCommand runs the root command with the given args and returns
// whatever was printed to stdout. Used by the command integration tests.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	ResetGlobalState()
	RootCmd.SetArgs(args)

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	execErr := RootCmd.Execute()

	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close pipe: %v", err)
	}
	os.Stdout = oldStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("Failed to read captured output: %v", err)
	}

	return buf.String(), execErr
}
