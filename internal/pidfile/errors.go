package pidfile

import (
	"errors"
	"fmt"
)

// ErrInvalidPID is returned when the PID file holds something other than a positive integer.
var ErrInvalidPID = errors.New("invalid PID in file")

// FileMode is the permission a PID file is created with, before the umask.
// Other users must be able to read it to report status.
const FileMode = 0o644

// ReapError reports a failure to remove a PID file that was found stale or empty.
type ReapError struct {
	Path string
	Err  error
}

func (e *ReapError) Error() string {
	return fmt.Sprintf("remove stale pid file %q: %v", e.Path, e.Err)
}

func (e *ReapError) Unwrap() error { return e.Err }

// StatusError reports that the PID file exists but its state could not be determined.
type StatusError struct {
	Path string
	Err  error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unable to determine status of %q: %v", e.Path, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }
