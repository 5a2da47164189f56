package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WritePIDFile writes content verbatim to path, creating parent directories.
func WritePIDFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadPIDFile returns the trimmed content of path and whether it exists.
func ReadPIDFile(t testing.TB, path string) (string, bool) {
	t.Helper()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false
	}
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.TrimSpace(string(data)), true
}
