// Package config loads, normalizes, and validates daemonkit configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DAEMONKIT_LOG_LEVEL. The Config type centralizes every knob the daemon and
// CLI need: the application name that keys the PID and log files, the run and
// temp directories used to place the PID file, logging level and format, and
// the detached process settings (working directory, umask, group, loop timing).
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log levels, and clear validation errors.
package config
