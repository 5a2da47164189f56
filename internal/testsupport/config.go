package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"daemonkit/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Process-wide settings (umask, working directory, group) are disabled so
// entering a daemon context inside the test binary leaves it untouched.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.App.Name = "daemonkit-test"
	cfgVal.Paths.RunDir = filepath.Join(base, "run")
	cfgVal.Paths.TempDir = filepath.Join(base, "tmp")
	cfgVal.Paths.LogFile = filepath.Join(base, "logs", "daemonkit-test.log")
	cfgVal.Daemon.WorkDir = ""
	cfgVal.Daemon.Umask = -1
	cfgVal.Daemon.Group = ""
	cfgVal.Daemon.IntervalSeconds = 1
	cfgVal.Daemon.RestartCooldownSeconds = 0
	cfgVal.Daemon.StartTimeoutSeconds = 5
	cfgVal.Daemon.StopTimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	builder.ensureDirs()
	return builder.cfg
}

// WithAppName overrides the application name keying PID and log files.
func WithAppName(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.App.Name = name
	}
}

// WithoutRunDir points the run directory at a path that does not exist so the
// temp directory fallback is exercised.
func WithoutRunDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.RunDir = filepath.Join(b.baseDir, "missing-run")
	}
}

// WithLogLevel sets the configured log level.
func WithLogLevel(level string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.Level = level
	}
}

// WithDebugMode toggles debug mode on the test config.
func WithDebugMode(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Daemon.DebugMode = enabled
	}
}

func (b *configBuilder) ensureDirs() {
	b.t.Helper()

	for _, dir := range []string{b.cfg.Paths.TempDir, filepath.Dir(b.cfg.Paths.LogFile)} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			b.t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	if b.cfg.Paths.RunDir != filepath.Join(b.baseDir, "missing-run") {
		if err := os.MkdirAll(b.cfg.Paths.RunDir, 0o755); err != nil {
			b.t.Fatalf("mkdir %s: %v", b.cfg.Paths.RunDir, err)
		}
	}
}
