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

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"daemonkit/internal/daemon"
	"daemonkit/internal/logging"
	"daemonkit/internal/testsupport"
)

func testOptions(t *testing.T) daemon.Options {
	t.Helper()
	return daemon.Options{
		PIDPath: filepath.Join(t.TempDir(), "daemonkit.pid"),
		Umask:   -1,
		Logger:  logging.NewNop(),
	}
}

func enter(t *testing.T, opts daemon.Options) *daemon.Context {
	t.Helper()
	pc, err := daemon.Enter(context.Background(), opts)
	if err != nil {
		t.Fatalf("Enter() error = %v", err)
	}
	t.Cleanup(func() { _ = pc.Close() })
	return pc
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestEnterRecordsPIDAndCloseRemovesIt(t *testing.T) {
	opts := testOptions(t)
	pc := enter(t, opts)

	content, ok := testsupport.ReadPIDFile(t, opts.PIDPath)
	if !ok || content != strconv.Itoa(os.Getpid()) {
		t.Fatalf("pid file = %q (exists %v), want %d", content, ok, os.Getpid())
	}
	if pc.PID() != os.Getpid() {
		t.Fatalf("PID() = %d, want %d", pc.PID(), os.Getpid())
	}
	if !pc.Running() {
		t.Fatal("expected context to be running after Enter")
	}

	if err := pc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, ok := testsupport.ReadPIDFile(t, opts.PIDPath); ok {
		t.Fatal("expected pid file to be removed on Close")
	}
	if pc.Running() {
		t.Fatal("expected context to stop running after Close")
	}
	if err := pc.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestEnterFailsWhenLocked(t *testing.T) {
	opts := testOptions(t)
	holder := flock.New(opts.PIDPath)
	locked, err := holder.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock() = %v, %v", locked, err)
	}
	defer holder.Unlock()
	testsupport.WritePIDFile(t, opts.PIDPath, "4242\n")

	_, err = daemon.Enter(context.Background(), opts)
	if !errors.Is(err, daemon.ErrLocked) {
		t.Fatalf("Enter() error = %v, want ErrLocked", err)
	}
	if content, _ := testsupport.ReadPIDFile(t, opts.PIDPath); content != "4242" {
		t.Fatalf("locked pid file was modified: %q", content)
	}
}

func TestGracefulExitSignal(t *testing.T) {
	for _, sig := range []syscall.Signal{syscall.SIGUSR1, syscall.SIGHUP} {
		t.Run(sig.String(), func(t *testing.T) {
			pc := enter(t, testOptions(t))

			if err := syscall.Kill(os.Getpid(), sig); err != nil {
				t.Fatalf("kill: %v", err)
			}
			waitFor(t, "continuation flag to clear", func() bool { return !pc.Running() })

			if pc.Context().Err() != nil {
				t.Fatal("graceful exit must not cancel the context")
			}
			if !strings.Contains(pc.ExitReason(), sig.String()) {
				t.Fatalf("ExitReason() = %q, want signal name", pc.ExitReason())
			}
		})
	}
}

func TestTerminateSignalCancelsContext(t *testing.T) {
	pc := enter(t, testOptions(t))

	if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("kill: %v", err)
	}
	select {
	case <-pc.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled by SIGTERM")
	}

	var sigErr *daemon.SignalError
	if !errors.As(context.Cause(pc.Context()), &sigErr) || sigErr.Signal != syscall.SIGTERM {
		t.Fatalf("cause = %v, want SIGTERM SignalError", context.Cause(pc.Context()))
	}
	if pc.Running() {
		t.Fatal("expected Running() false after terminate")
	}
}

func TestCustomRoutes(t *testing.T) {
	opts := testOptions(t)
	opts.Routes = []daemon.Route{{Signal: syscall.SIGUSR2, Action: daemon.ActionTerminate}}
	pc := enter(t, opts)

	if err := syscall.Kill(os.Getpid(), syscall.SIGUSR2); err != nil {
		t.Fatalf("kill: %v", err)
	}
	select {
	case <-pc.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("custom terminate route did not fire")
	}
}

func TestCloseKeepsSuccessorPIDFile(t *testing.T) {
	opts := testOptions(t)
	pc := enter(t, opts)

	testsupport.WritePIDFile(t, opts.PIDPath, "999999\n")
	if err := pc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if content, ok := testsupport.ReadPIDFile(t, opts.PIDPath); !ok || content != "999999" {
		t.Fatalf("successor pid file changed: %q (exists %v)", content, ok)
	}
}

func TestCloseClosesPreservedFiles(t *testing.T) {
	opts := testOptions(t)
	logFile, err := os.CreateTemp(t.TempDir(), "daemon-*.log")
	if err != nil {
		t.Fatalf("create temp: %v", err)
	}
	opts.Preserve = []*os.File{logFile}
	pc := enter(t, opts)

	if _, err := logFile.WriteString("still open\n"); err != nil {
		t.Fatalf("write before Close: %v", err)
	}
	if err := pc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := logFile.WriteString("closed\n"); err == nil {
		t.Fatal("expected preserved file to be closed")
	}
}

func TestEnterAppliesWorkDir(t *testing.T) {
	original, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(original) })

	opts := testOptions(t)
	opts.WorkDir = t.TempDir()
	enter(t, opts)

	got, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	want, _ := filepath.EvalSymlinks(opts.WorkDir)
	if resolved, _ := filepath.EvalSymlinks(got); resolved != want {
		t.Fatalf("working directory = %q, want %q", got, opts.WorkDir)
	}
}

// keepUmask restores the process umask once the test finishes.
func keepUmask(t *testing.T) {
	t.Helper()
	old := unix.Umask(0o022)
	unix.Umask(old)
	t.Cleanup(func() { unix.Umask(old) })
}

func TestEnterAppliesUmask(t *testing.T) {
	keepUmask(t)
	opts := testOptions(t)
	opts.Umask = 0o027
	enter(t, opts)

	if got := unix.Umask(0o027); got != 0o027 {
		t.Fatalf("umask after Enter = %#o, want 0o027", got)
	}
	info, err := os.Stat(opts.PIDPath)
	if err != nil {
		t.Fatalf("stat pid file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o640 {
		t.Fatalf("pid file mode = %#o, want 0o640 under umask 0o027", perm)
	}
}

func TestEnterPIDFileReadableByOthers(t *testing.T) {
	keepUmask(t)
	opts := testOptions(t)
	opts.Umask = 0
	enter(t, opts)

	info, err := os.Stat(opts.PIDPath)
	if err != nil {
		t.Fatalf("stat pid file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Fatalf("pid file mode = %#o, want 0o644", perm)
	}
}
