// Package pidfile owns the on-disk record of the running daemon.
//
// A PID file holds a single decimal process id followed by a newline. Paths
// resolve to <run-dir>/<app>.pid when the run directory is writable and to the
// system temp directory otherwise. Reading is never trusting: ReadStale parses
// the file, probes the recorded process with signal 0, and removes the file when
// it is empty or names a process that no longer exists. A probe answered with
// EPERM means the process exists under another user, so the record stays valid.
package pidfile
