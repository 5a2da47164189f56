// Package daemonctl implements the daemon lifecycle: status, start, stop and
// restart driven by the PID file and signals, plus the daemon-side Run that
// enters the process context and drives the payload.
//
// A Controller computes status as soon as it is built, so stale or empty PID
// files are reaped before any action runs. Operations return typed errors
// (AlreadyRunningError, SignalError, PayloadError) and never exit the process;
// the CLI maps them to exit codes.
package daemonctl
