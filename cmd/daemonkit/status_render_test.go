package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"daemonkit/internal/daemonctl"
	"daemonkit/internal/pidfile"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("State", statusOK, "RUNNING", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "State:", "[OK] RUNNING")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("State", statusWarn, "NOT_RUNNING", true)
	if !strings.HasPrefix(got, ansiYellow) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected yellow colouring, got %q", got)
	}
}

func TestRenderStatusNotRunning(t *testing.T) {
	st := daemonctl.Status{
		State:   daemonctl.StateNotRunning,
		Path:    "/var/run/app.pid",
		Message: `No PID File has been found for "/var/run/app.pid". app is not running.`,
		Outcome: pidfile.Absent,
	}
	lines := renderStatus(st, "/tmp/app.log", false)
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"== Daemon Status ==", "[INFO] NOT_RUNNING", st.Message, "/var/run/app.pid", "/tmp/app.log", "absent"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in\n%s", want, joined)
		}
	}
	if strings.Contains(joined, "Same user") {
		t.Fatalf("process rows should be omitted when not running:\n%s", joined)
	}
}

func TestStateKind(t *testing.T) {
	tests := []struct {
		name string
		st   daemonctl.Status
		want statusKind
	}{
		{"running", daemonctl.Status{State: daemonctl.StateRunning}, statusOK},
		{"restricted", daemonctl.Status{State: daemonctl.StateRunning, Restricted: true}, statusWarn},
		{"stale", daemonctl.Status{Outcome: pidfile.Stale}, statusWarn},
		{"absent", daemonctl.Status{Outcome: pidfile.Absent}, statusInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stateKind(tt.st); got != tt.want {
				t.Fatalf("stateKind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestRenderDetails(t *testing.T) {
	if got := renderDetails(nil, false); got != nil {
		t.Fatalf("expected no lines for empty details, got %q", got)
	}

	lines := renderDetails([]detail{
		{"PID file", "/run/app.pid"},
		{"Command", ""},
	}, false)
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "╭") || !strings.HasPrefix(lines[len(lines)-1], "╰") {
		t.Fatalf("expected a rounded table, got\n%s", strings.Join(lines, "\n"))
	}
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"FIELD", "VALUE", "PID file", "/run/app.pid"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in\n%s", want, joined)
		}
	}
	for _, line := range lines {
		if strings.Contains(line, "Command") && !strings.Contains(line, " - ") {
			t.Fatalf("empty value should render as -, got %q", line)
		}
	}
	if strings.Contains(joined, "\x1b[") {
		t.Fatalf("uncolored table should carry no escape codes:\n%s", joined)
	}
}

func TestRenderDetailsWrapsLongValues(t *testing.T) {
	long := strings.Repeat("x", detailValueWidth*2)
	lines := renderDetails([]detail{{"Command", long}}, false)

	var rows int
	for _, line := range lines {
		if strings.Contains(line, "x") {
			rows++
			if n := strings.Count(line, "x"); n > detailValueWidth {
				t.Fatalf("line holds %d value characters, want at most %d", n, detailValueWidth)
			}
		}
	}
	if rows < 2 {
		t.Fatalf("expected the value to wrap onto several lines, got\n%s", strings.Join(lines, "\n"))
	}
}
