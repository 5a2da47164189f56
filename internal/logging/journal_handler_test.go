package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/coreos/go-systemd/v22/journal"
)

func TestMapLevelToPriority(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  journal.Priority
	}{
		{slog.LevelDebug, journal.PriDebug},
		{slog.LevelInfo, journal.PriInfo},
		{slog.LevelWarn, journal.PriWarning},
		{slog.LevelError, journal.PriErr},
		{LevelCritical, journal.PriCrit},
	}
	for _, tt := range tests {
		if got := mapLevelToPriority(tt.level); got != tt.want {
			t.Errorf("mapLevelToPriority(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestAddAttrToFieldsFlattensGroups(t *testing.T) {
	fields := map[string]string{}
	addAttrToFields(fields, slog.Int(FieldPID, 42), nil)
	addAttrToFields(fields, slog.String("pid-file", "/var/run/app.pid"), []string{"daemon"})
	addAttrToFields(fields, slog.Group("signal", slog.String("name", "SIGTERM"), slog.Bool("graceful", false)), nil)
	addAttrToFields(fields, slog.Any("error", errors.New("boom")), nil)
	addAttrToFields(fields, slog.Attr{}, nil)

	want := map[string]string{
		"PID":             "42",
		"DAEMON_PID_FILE": "/var/run/app.pid",
		"SIGNAL_NAME":     "SIGTERM",
		"SIGNAL_GRACEFUL": "false",
		"ERROR":           "boom",
	}
	if len(fields) != len(want) {
		t.Fatalf("fields = %v, want %v", fields, want)
	}
	for key, value := range want {
		if fields[key] != value {
			t.Errorf("fields[%q] = %q, want %q", key, fields[key], value)
		}
	}
}

func TestJournalHandlerEnabledAndDerivation(t *testing.T) {
	h := NewJournalHandler("", slog.LevelWarn)
	if h.identifier != "daemonkit" {
		t.Fatalf("default identifier = %q", h.identifier)
	}
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be filtered at warn level")
	}
	if !h.Enabled(context.Background(), LevelCritical) {
		t.Fatal("critical should pass at warn level")
	}

	derived := h.WithGroup("daemon").WithAttrs([]slog.Attr{slog.Int(FieldPID, 7)}).(*JournalHandler)
	if len(h.attrs) != 0 || len(h.groups) != 0 {
		t.Fatal("derivation must not mutate the parent handler")
	}
	if len(derived.groups) != 1 || len(derived.attrs) != 1 {
		t.Fatalf("derived handler = %+v", derived)
	}
	if h.WithGroup("") != slog.Handler(h) {
		t.Fatal("empty group should return the same handler")
	}
}
