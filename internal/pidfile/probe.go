package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// Alive probes pid with signal 0. A process owned by another user answers
// EPERM; it exists, so alive is true and restricted reports the ambiguity.
func Alive(pid int) (alive, restricted bool, err error) {
	if pid <= 0 {
		return false, false, fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	err = unix.Kill(pid, 0)
	switch {
	case err == nil:
		return true, false, nil
	case errors.Is(err, unix.EPERM):
		return true, true, nil
	case errors.Is(err, unix.ESRCH):
		return false, false, nil
	default:
		return false, false, fmt.Errorf("probe process %d: %w", pid, err)
	}
}

// CommandLine returns the command line of pid as recorded by procfs.
func CommandLine(pid int) (string, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", pid))
	if err != nil {
		return "", fmt.Errorf("read cmdline: %w", err)
	}
	return strings.TrimSpace(strings.ReplaceAll(string(data), "\x00", " ")), nil
}
