package testsupport

import (
	"os/exec"
	"testing"
)

// StartSleeper starts a long sleep child and returns it. The child is killed
// and reaped on cleanup so its pid never lingers as a zombie.
func StartSleeper(t testing.TB) *exec.Cmd {
	t.Helper()

	cmd := exec.Command("sleep", "60")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start sleep process: %v", err)
	}
	t.Cleanup(func() {
		if cmd.ProcessState == nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		}
	})
	return cmd
}

// ExitedPID returns the pid of a child that has already exited and been reaped.
func ExitedPID(t testing.TB) int {
	t.Helper()

	cmd := exec.Command("true")
	if err := cmd.Run(); err != nil {
		t.Fatalf("run true: %v", err)
	}
	return cmd.Process.Pid
}
