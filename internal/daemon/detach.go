package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"daemonkit/internal/logging"
)

// PreservedFDBase is the descriptor number of the first preserved file in the child.
const PreservedFDBase = 3

const readinessPollInterval = 100 * time.Millisecond

var (
	// ErrStartTimeout is returned when the child does not record its PID in time.
	ErrStartTimeout = errors.New("daemon did not report readiness")
	// ErrChildExited is returned when the child exits before recording its PID.
	ErrChildExited = errors.New("daemon exited during startup")
)

// DetachRequest describes the child to launch.
type DetachRequest struct {
	Executable string
	Args       []string
	Env        []string
	// PIDPath is watched for the child's PID to signal readiness.
	PIDPath string
	// DebugMode inherits the terminal's standard streams instead of /dev/null.
	DebugMode bool
	// Preserve is handed to the child starting at PreservedFDBase.
	Preserve []*os.File
	Timeout  time.Duration
}

// Detach re-executes the binary as a session leader with its working
// directory at / and waits until it has recorded its own PID. The returned
// PID belongs to the running daemon.
func Detach(ctx context.Context, req DetachRequest, logger *slog.Logger) (int, error) {
	if strings.TrimSpace(req.Executable) == "" {
		return 0, fmt.Errorf("resolve executable: executable path is empty")
	}
	if req.PIDPath == "" {
		return 0, errors.New("detach: pid path is required")
	}
	logger = logging.NewComponentLogger(logger, "detach")

	cmd := exec.Command(req.Executable, req.Args...)
	cmd.Dir = "/"
	cmd.Env = req.Env
	cmd.ExtraFiles = req.Preserve
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if req.DebugMode {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("launch daemon: %w", err)
	}
	pid := cmd.Process.Pid
	exited := make(chan error, 1)
	// Reap the child so an early exit never lingers as a zombie.
	go func() { exited <- cmd.Wait() }()

	logger.Debug("daemon launched, waiting for readiness",
		logging.PID(pid),
		logging.PIDFile(req.PIDPath),
	)
	if err := waitReady(ctx, req.PIDPath, pid, req.Timeout, exited); err != nil {
		return pid, err
	}
	return pid, nil
}

// waitReady blocks until path records pid. An fsnotify watch on the parent
// directory wakes it early; polling covers filesystems without inotify.
func waitReady(ctx context.Context, path string, pid int, timeout time.Duration, exited <-chan error) error {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	ticker := time.NewTicker(readinessPollInterval)
	defer ticker.Stop()

	var (
		events      <-chan fsnotify.Event
		watchErrors <-chan error
	)
	if watcher, err := fsnotify.NewWatcher(); err == nil {
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(path)); err == nil {
			events = watcher.Events
			watchErrors = watcher.Errors
		}
	}

	for {
		if recordsPID(path, pid) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-exited:
			if recordsPID(path, pid) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%w: %v", ErrChildExited, err)
			}
			return ErrChildExited
		case <-timer.C:
			return fmt.Errorf("%w within %s (pid %d, pid file %s)", ErrStartTimeout, timeout, pid, path)
		case <-events:
		case <-watchErrors:
		case <-ticker.C:
		}
	}
}

func recordsPID(path string, pid int) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	recorded, err := strconv.Atoi(strings.TrimSpace(string(data)))
	return err == nil && recorded == pid
}
