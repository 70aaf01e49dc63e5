package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI executes the root command with args and returns the combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeTestConfig writes a config file whose paths stay inside a temp dir.
func writeTestConfig(t *testing.T) (string, string) {
	t.Helper()
	base := t.TempDir()
	body := fmt.Sprintf(`[paths]
output_dir = %q
work_dir = %q
log_dir = %q
history_db = %q
model_cache_dir = %q
`,
		filepath.Join(base, "out"),
		filepath.Join(base, "work"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "history.db"),
		filepath.Join(base, "models"),
	)
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path, base
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
