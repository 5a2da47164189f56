package pidfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAlive(t *testing.T) {
	alive, restricted, err := Alive(os.Getpid())
	if err != nil || !alive || restricted {
		t.Fatalf("Alive(self) = %v, %v, %v", alive, restricted, err)
	}

	if _, _, err := Alive(0); !errors.Is(err, ErrInvalidPID) {
		t.Fatalf("Alive(0) error = %v, want ErrInvalidPID", err)
	}
}

func TestReadStaleRestrictedProcessIsValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemonkit.pid")
	if err := os.WriteFile(path, []byte("1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewStore(path, nil)
	store.probe = func(int) (bool, bool, error) { return true, true, nil }

	rec, err := store.ReadStale()
	if err != nil {
		t.Fatalf("ReadStale() error = %v", err)
	}
	if rec.Outcome != Valid || !rec.Restricted {
		t.Fatalf("got %+v, want valid restricted", rec)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("restricted pid file must be kept: %v", err)
	}
}

func TestReadStaleProbeFailureIsStatusError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemonkit.pid")
	if err := os.WriteFile(path, []byte("77\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewStore(path, nil)
	store.probe = func(int) (bool, bool, error) { return false, false, errors.New("probe exploded") }

	_, err := store.ReadStale()
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("ReadStale() error = %v, want *StatusError", err)
	}
	if !strings.Contains(err.Error(), "unable to determine status") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestCommandLineSelf(t *testing.T) {
	if _, err := os.Stat("/proc/self/cmdline"); err != nil {
		t.Skip("procfs not available")
	}
	cmd, err := CommandLine(os.Getpid())
	if err != nil {
		t.Fatalf("CommandLine() error = %v", err)
	}
	if cmd == "" {
		t.Fatal("expected non-empty command line")
	}
}
