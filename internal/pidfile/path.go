package pidfile

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

const (
	// DefaultRunDir is the preferred location for PID files.
	DefaultRunDir  = "/var/run"
	defaultAppName = "daemonkit"
)

// Resolver picks the directory that will hold the PID file.
type Resolver struct {
	// RunDir is preferred when it exists and is writable. Empty means DefaultRunDir.
	RunDir string
	// TempDir is the fallback. Empty means os.TempDir().
	TempDir string
}

// ResolvePath returns the PID file path for app using the default directories.
func ResolvePath(app string) string {
	return Resolver{}.Resolve(app)
}

// Resolve returns <run-dir>/<app>.pid or <temp-dir>/<app>.pid. The result is
// never empty and resolving has no side effects.
func (r Resolver) Resolve(app string) string {
	name := sanitizeName(app) + ".pid"
	runDir := strings.TrimSpace(r.RunDir)
	if runDir == "" {
		runDir = DefaultRunDir
	}
	if writableDir(runDir) {
		return filepath.Join(runDir, name)
	}
	tempDir := strings.TrimSpace(r.TempDir)
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return filepath.Join(tempDir, name)
}

func writableDir(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	return unix.Access(dir, unix.W_OK) == nil
}

func sanitizeName(app string) string {
	name := strings.TrimSpace(app)
	name = strings.NewReplacer("/", "_", "\\", "_", "\x00", "").Replace(name)
	name = strings.Trim(name, ".")
	if name == "" {
		return defaultAppName
	}
	return name
}
