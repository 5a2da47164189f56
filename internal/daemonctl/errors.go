package daemonctl

import (
	"errors"
	"fmt"
)

// ErrNotRunning is returned by Stop when no PID file names a live daemon.
var ErrNotRunning = errors.New("daemon not running")

// AlreadyRunningError is returned by Start and Run when a live daemon owns the PID file.
type AlreadyRunningError struct {
	Status Status
}

func (e *AlreadyRunningError) Error() string {
	return "daemon already running: " + e.Status.Message
}

// SignalError reports that the stop signal could not be delivered.
type SignalError struct {
	PID     int
	PIDPath string
	Signal  string
	Err     error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf(
		"send %s to pid %d: %v; the process recorded in %q may have exited or belong to another user, "+
			"check it with `ps -p %d` and remove the PID file if nothing is running",
		e.Signal, e.PID, e.Err, e.PIDPath, e.PID,
	)
}

func (e *SignalError) Unwrap() error { return e.Err }

// PayloadError wraps a payload failure, including a recovered panic.
type PayloadError struct {
	Err   error
	Panic bool
}

func (e *PayloadError) Error() string {
	if e.Panic {
		return fmt.Sprintf("payload panicked: %v", e.Err)
	}
	return fmt.Sprintf("payload failed: %v", e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }
