package config

import (
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateApp(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateDaemon()
}

func (c *Config) validateApp() error {
	if strings.ContainsAny(c.App.Name, `/\`) {
		return &Error{Field: "app.name", Value: c.App.Name, Reason: "must not contain path separators"}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if err := ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return &Error{Field: "logging.format", Value: c.Logging.Format, Reason: "must be console or json"}
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if c.Daemon.Umask > 0o777 {
		return &Error{Field: "daemon.umask", Value: "0o" + strconv.FormatInt(int64(c.Daemon.Umask), 8), Reason: "must be at most 0o777"}
	}
	if err := ensurePositiveMap(map[string]int{
		"daemon.interval_seconds":      c.Daemon.IntervalSeconds,
		"daemon.start_timeout_seconds": c.Daemon.StartTimeoutSeconds,
		"daemon.stop_timeout_seconds":  c.Daemon.StopTimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Daemon.RestartCooldownSeconds < 0 {
		return &Error{Field: "daemon.restart_cooldown_seconds", Value: strconv.Itoa(c.Daemon.RestartCooldownSeconds), Reason: "must be >= 0"}
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return &Error{Field: key, Value: strconv.Itoa(value), Reason: "must be positive"}
		}
	}
	return nil
}
