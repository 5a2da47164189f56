package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
)

type cliTestEnv struct {
	configPath string
	pidPath    string
	logPath    string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	runDir := filepath.Join(base, "run")
	for _, dir := range []string{homeDir, runDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("DAEMONKIT_LOG_LEVEL", "")

	env := &cliTestEnv{
		configPath: filepath.Join(base, "daemonkit.toml"),
		pidPath:    filepath.Join(runDir, "daemonkit-test.pid"),
		logPath:    filepath.Join(base, "logs", "daemonkit-test.log"),
		baseDir:    base,
	}
	content := fmt.Sprintf(`[app]
name = "daemonkit-test"

[paths]
run_dir = %q
temp_dir = %q
log_file = %q

[daemon]
umask = -1
group = ""
stop_timeout_seconds = 2
`, runDir, filepath.Join(base, "tmp"), env.logPath)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

// runCLI executes the root command with --log-level info unless args already
// choose a level.
func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	if !slices.Contains(args, "--log-level") {
		args = append(slices.Clip(args), "--log-level", "info")
	}
	return runCLIRaw(t, args, configPath)
}

func runCLIRaw(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// startReapedSleeper runs a sleep child reaped in the background so a
// delivered SIGTERM makes it disappear from the process table.
func startReapedSleeper(t *testing.T) (*exec.Cmd, <-chan struct{}) {
	t.Helper()
	cmd := exec.Command("sleep", "60")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start sleep process: %v", err)
	}
	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		<-done
	})
	return cmd, done
}

func writePID(t *testing.T, path string, pid int) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
