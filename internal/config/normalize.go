package config

import (
	"fmt"
	"os"
	"strings"
)

// LogLevelEnv overrides logging.level from the file when set.
const LogLevelEnv = "DAEMONKIT_LOG_LEVEL"

func (c *Config) normalize() error {
	c.normalizeApp()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return c.normalizeDaemon()
}

func (c *Config) normalizeApp() {
	c.App.Name = strings.TrimSpace(c.App.Name)
	if c.App.Name == "" {
		c.App.Name = defaultAppName
	}
}

func (c *Config) normalizePaths() error {
	var err error
	c.Paths.RunDir = strings.TrimSpace(c.Paths.RunDir)
	if c.Paths.RunDir == "" {
		c.Paths.RunDir = defaultRunDir
	}
	if c.Paths.RunDir, err = expandPath(c.Paths.RunDir); err != nil {
		return fmt.Errorf("paths.run_dir: %w", err)
	}
	if c.Paths.TempDir, err = expandPath(strings.TrimSpace(c.Paths.TempDir)); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if c.Paths.LogFile, err = expandPath(strings.TrimSpace(c.Paths.LogFile)); err != nil {
		return fmt.Errorf("paths.log_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if value := strings.TrimSpace(os.Getenv(LogLevelEnv)); value != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeDaemon() error {
	c.Daemon.WorkDir = strings.TrimSpace(c.Daemon.WorkDir)
	if c.Daemon.WorkDir == "" {
		c.Daemon.WorkDir = defaultWorkDir
	}
	var err error
	if c.Daemon.WorkDir, err = expandPath(c.Daemon.WorkDir); err != nil {
		return fmt.Errorf("daemon.work_dir: %w", err)
	}
	c.Daemon.Group = strings.TrimSpace(c.Daemon.Group)
	return nil
}
