package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

func TestStatusNotRunning(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	want := fmt.Sprintf("No PID File has been found for %q. daemonkit-test is not running.\n", env.pidPath)
	if out != want {
		t.Fatalf("status output = %q, want %q", out, want)
	}
}

func TestStatusRunning(t *testing.T) {
	env := setupCLITestEnv(t)
	child, _ := startReapedSleeper(t)
	writePID(t, env.pidPath, child.Process.Pid)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	want := fmt.Sprintf("PID %q exists - Process ( %d )\n", env.pidPath, child.Process.Pid)
	if out != want {
		t.Fatalf("status output = %q, want %q", out, want)
	}

	out, _, err = runCLI(t, []string{"status", "--verbose"}, env.configPath)
	if err != nil {
		t.Fatalf("status --verbose: %v", err)
	}
	requireContains(t, out, "== Daemon Status ==")
	requireContains(t, out, "[OK] RUNNING")
	requireContains(t, out, env.pidPath)
	requireContains(t, out, "sleep 60")
}

func TestStatusReapsStalePIDFile(t *testing.T) {
	env := setupCLITestEnv(t)
	child, done := startReapedSleeper(t)
	pid := child.Process.Pid
	_ = child.Process.Kill()
	<-done
	writePID(t, env.pidPath, pid)

	out, _, err := runCLI(t, []string{"status", "-v"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "NOT_RUNNING")
	requireContains(t, out, "stale")
	if _, err := os.Stat(env.pidPath); !os.IsNotExist(err) {
		t.Fatalf("stale pid file should be removed, stat err = %v", err)
	}
}

func TestStopWhenNotRunningPrintsStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"stop"}, env.configPath)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	requireContains(t, out, "is not running")
	if strings.Contains(out, "Stopping daemon") {
		t.Fatalf("stop should not signal anything, got %q", out)
	}
}

func TestStopTerminatesDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	child, done := startReapedSleeper(t)
	writePID(t, env.pidPath, child.Process.Pid)

	out, _, err := runCLI(t, []string{"stop"}, env.configPath)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Stopping daemon (pid %d)...", child.Process.Pid))
	requireContains(t, out, "Daemon stopped")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("child still running after stop")
	}
	if _, err := os.Stat(env.pidPath); !os.IsNotExist(err) {
		t.Fatalf("pid file should be removed, stat err = %v", err)
	}

	logData, err := os.ReadFile(env.logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	requireContains(t, string(logData), "graceful exit requested")
}

func TestStartWhenRunningExitsWithStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	child, _ := startReapedSleeper(t)
	writePID(t, env.pidPath, child.Process.Pid)

	out, _, err := runCLI(t, []string{"start"}, env.configPath)
	var exitErr *exitError
	if !errors.As(err, &exitErr) || exitErr.code != 1 {
		t.Fatalf("start error = %v, want exit code 1", err)
	}
	requireContains(t, out, fmt.Sprintf("PID %q exists - Process ( %d )", env.pidPath, child.Process.Pid))
}
