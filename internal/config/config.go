package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// App identifies the supervised application.
type App struct {
	Name string `toml:"name"`
}

// Paths contains the directories used to place the PID file and the log file.
type Paths struct {
	RunDir  string `toml:"run_dir"`
	TempDir string `toml:"temp_dir"`
	LogFile string `toml:"log_file"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format  string `toml:"format"`
	Level   string `toml:"level"`
	Journal bool   `toml:"journal"`
}

// Daemon contains configuration for the detached process and its loop timing.
type Daemon struct {
	// DebugMode keeps the standard streams attached to the controlling
	// terminal. Never use it for unattended runs: a disconnected terminal can
	// stall the daemon on its next write.
	DebugMode              bool   `toml:"debug_mode"`
	WorkDir                string `toml:"work_dir"`
	Umask                  int    `toml:"umask"`
	Group                  string `toml:"group"`
	IntervalSeconds        int    `toml:"interval_seconds"`
	RestartCooldownSeconds int    `toml:"restart_cooldown_seconds"`
	StartTimeoutSeconds    int    `toml:"start_timeout_seconds"`
	StopTimeoutSeconds     int    `toml:"stop_timeout_seconds"`
}

// Config encapsulates all configuration values for daemonkit.
//
// Configuration sections:
//   - App: application name keying the PID and log file names
//   - Paths: run/temp directories for the PID file, explicit log file
//   - Logging: log format, level, and journal forwarding
//   - Daemon: detached process environment and loop timing
type Config struct {
	App     App     `toml:"app"`
	Paths   Paths   `toml:"paths"`
	Logging Logging `toml:"logging"`
	Daemon  Daemon  `toml:"daemon"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/daemonkit/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("daemonkit.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// LogFilePath resolves where the log file lives. An explicit paths.log_file
// wins. Otherwise a privileged process logs to /var/log/<app>/<app>.log and
// anyone else to <app>.log in the current directory.
func (c *Config) LogFilePath(euid int) string {
	if strings.TrimSpace(c.Paths.LogFile) != "" {
		return c.Paths.LogFile
	}
	name := c.App.Name + ".log"
	if euid == 0 {
		if info, err := os.Stat(defaultSystemLogDir); err == nil && info.IsDir() {
			return filepath.Join(defaultSystemLogDir, c.App.Name, name)
		}
	}
	if abs, err := filepath.Abs(name); err == nil {
		return abs
	}
	return name
}

// EnsureLogDirectory creates the parent directory of the log file. When the
// system log directory cannot be created the log falls back to
// /var/log/<app>.log, mirroring how the file was placed historically.
func (c *Config) EnsureLogDirectory(logPath string) (string, error) {
	dir := filepath.Dir(logPath)
	if dir == "" || dir == "." {
		return logPath, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		if filepath.Dir(dir) == defaultSystemLogDir {
			return filepath.Join(defaultSystemLogDir, c.App.Name+".log"), nil
		}
		return "", fmt.Errorf("create log directory %q: %w", dir, err)
	}
	return logPath, nil
}

// Interval returns the pause between payload iterations.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Daemon.IntervalSeconds) * time.Second
}

// RestartCooldown returns the fixed delay between stop and start during restart.
func (c *Config) RestartCooldown() time.Duration {
	return time.Duration(c.Daemon.RestartCooldownSeconds) * time.Second
}

// StartTimeout bounds how long start waits for the detached child to record its PID.
func (c *Config) StartTimeout() time.Duration {
	return time.Duration(c.Daemon.StartTimeoutSeconds) * time.Second
}

// StopTimeout bounds how long stop waits for the signalled process to exit.
func (c *Config) StopTimeout() time.Duration {
	return time.Duration(c.Daemon.StopTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
