package daemon_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"daemonkit/internal/daemon"
	"daemonkit/internal/logging"
	"daemonkit/internal/testsupport"
)

func killOnCleanup(t *testing.T, pid int) {
	t.Helper()
	t.Cleanup(func() {
		if pid > 0 {
			_ = syscall.Kill(pid, syscall.SIGKILL)
		}
	})
}

func TestDetachWaitsForReadiness(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "daemonkit.pid")
	logPath := filepath.Join(dir, "daemonkit.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer logFile.Close()

	script := `echo "hello from fd 3" >&3; sleep 0.2; echo $$ > "$0"; exec sleep 30`
	pid, err := daemon.Detach(context.Background(), daemon.DetachRequest{
		Executable: "/bin/sh",
		Args:       []string{"-c", script, pidPath},
		PIDPath:    pidPath,
		Preserve:   []*os.File{logFile},
		Timeout:    5 * time.Second,
	}, logging.NewNop())
	killOnCleanup(t, pid)
	if err != nil {
		t.Fatalf("Detach() error = %v", err)
	}

	content, ok := testsupport.ReadPIDFile(t, pidPath)
	if !ok || content != strconv.Itoa(pid) {
		t.Fatalf("pid file = %q (exists %v), want %d", content, ok, pid)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello from fd 3") {
		t.Fatalf("preserved descriptor not inherited, log = %q", data)
	}

	sid, err := unix.Getsid(pid)
	if err != nil {
		t.Fatalf("getsid: %v", err)
	}
	if sid != pid {
		t.Fatalf("child session id = %d, want session leader %d", sid, pid)
	}
}

func TestDetachReportsEarlyExit(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "daemonkit.pid")
	_, err := daemon.Detach(context.Background(), daemon.DetachRequest{
		Executable: "/bin/sh",
		Args:       []string{"-c", "exit 3"},
		PIDPath:    pidPath,
		Timeout:    5 * time.Second,
	}, nil)
	if !errors.Is(err, daemon.ErrChildExited) {
		t.Fatalf("Detach() error = %v, want ErrChildExited", err)
	}
}

func TestDetachTimesOut(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "daemonkit.pid")
	pid, err := daemon.Detach(context.Background(), daemon.DetachRequest{
		Executable: "/bin/sh",
		Args:       []string{"-c", "exec sleep 30"},
		PIDPath:    pidPath,
		Timeout:    300 * time.Millisecond,
	}, nil)
	killOnCleanup(t, pid)
	if !errors.Is(err, daemon.ErrStartTimeout) {
		t.Fatalf("Detach() error = %v, want ErrStartTimeout", err)
	}
}

func TestDetachRequiresExecutable(t *testing.T) {
	if _, err := daemon.Detach(context.Background(), daemon.DetachRequest{PIDPath: "/tmp/x.pid"}, nil); err == nil {
		t.Fatal("expected error for empty executable")
	}
}
