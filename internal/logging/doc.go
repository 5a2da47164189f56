// Package logging assembles structured slog loggers and formatting helpers used
// across daemonkit.
//
// It owns the configurable console/JSON handlers and adds a CRITICAL level above
// ERROR for failures that end the daemon. A systemd journal sink can be teed in
// when journald is reachable. The daemon tags every record with a per-run
// identifier so one detached lifetime can be followed through a shared log file.
// The package also provides a no-op logger for tests and wiring code that cannot fail.
package logging
