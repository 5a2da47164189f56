package daemonctl

import (
	"fmt"

	"daemonkit/internal/pidfile"
)

// State is the lifecycle state derived from the PID file.
type State int

const (
	StateNotRunning State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "RUNNING"
	}
	return "NOT_RUNNING"
}

// Status is derived on every call and never stored across invocations.
type Status struct {
	State   State
	PID     int
	Path    string
	Message string
	// Outcome records what was found on disk, including reaped stale files.
	Outcome pidfile.Outcome
	// Restricted is set when the daemon exists but belongs to another user.
	Restricted bool
}

// Running reports whether the daemon is up.
func (s Status) Running() bool {
	return s.State == StateRunning
}

func statusFromRecord(app string, rec pidfile.Record) Status {
	st := Status{Path: rec.Path, Outcome: rec.Outcome}
	if rec.Outcome == pidfile.Valid {
		st.State = StateRunning
		st.PID = rec.PID
		st.Restricted = rec.Restricted
		st.Message = fmt.Sprintf("PID \"%s\" exists - Process ( %d )", rec.Path, rec.PID)
		return st
	}
	st.State = StateNotRunning
	st.Message = fmt.Sprintf("No PID File has been found for \"%s\". %s is not running.", rec.Path, app)
	return st
}
