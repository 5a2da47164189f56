package pidfile

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"daemonkit/internal/logging"
)

// Outcome classifies what ReadStale found on disk.
type Outcome int

const (
	// Absent means no PID file exists.
	Absent Outcome = iota
	// Valid means the file names a live process.
	Valid
	// Stale means the file named a process that no longer exists; it was removed.
	Stale
	// Empty means the file had no content; it was removed.
	Empty
)

func (o Outcome) String() string {
	switch o {
	case Absent:
		return "absent"
	case Valid:
		return "valid"
	case Stale:
		return "stale"
	case Empty:
		return "empty"
	default:
		return "unknown"
	}
}

// Record is the result of reading the PID file.
type Record struct {
	Path    string
	PID     int
	Outcome Outcome
	// Restricted is set when the process exists but belongs to another user.
	Restricted bool
}

// Store reads and writes one PID file.
type Store struct {
	path   string
	logger *slog.Logger
	probe  func(pid int) (alive, restricted bool, err error)
}

// NewStore returns a Store for path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logging.NewComponentLogger(logger, "pidfile"),
		probe:  Alive,
	}
}

// Path returns the PID file location.
func (s *Store) Path() string {
	return s.path
}

// Read parses the PID file. A missing file yields an error satisfying
// errors.Is(err, fs.ErrNotExist); an empty or malformed file yields ErrInvalidPID.
func (s *Store) Read() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, err
	}
	return parsePID(string(data))
}

// ReadStale reads the PID file and removes it when it is empty or stale.
func (s *Store) ReadStale() (Record, error) {
	rec := Record{Path: s.path}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		rec.Outcome = Absent
		return rec, nil
	}
	if err != nil {
		return rec, &StatusError{Path: s.path, Err: err}
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		rec.Outcome = Empty
		logging.WarnWithContext(s.logger, "empty pid file removed", "empty_pid_reaped",
			logging.PIDFile(s.path),
			logging.String(logging.FieldErrorHint, "a previous start may have been interrupted"),
			logging.String(logging.FieldImpact, "daemon treated as not running"),
		)
		return rec, s.Reap()
	}

	pid, err := parsePID(content)
	if err != nil {
		return rec, &StatusError{Path: s.path, Err: err}
	}
	rec.PID = pid

	alive, restricted, err := s.probe(pid)
	if err != nil {
		return rec, &StatusError{Path: s.path, Err: err}
	}
	if alive {
		rec.Outcome = Valid
		rec.Restricted = restricted
		if restricted {
			s.logger.Debug("pid file names a process owned by another user",
				logging.PIDFile(s.path), logging.PID(pid))
		}
		return rec, nil
	}

	rec.Outcome = Stale
	logging.WarnWithContext(s.logger, "stale pid file removed", "stale_pid_reaped",
		logging.PIDFile(s.path),
		logging.PID(pid),
		logging.String(logging.FieldErrorHint, "the daemon exited without cleaning up"),
		logging.String(logging.FieldImpact, "daemon treated as not running"),
	)
	return rec, s.Reap()
}

// Reap removes the PID file. A file that is already gone is not an error.
func (s *Store) Reap() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &ReapError{Path: s.path, Err: err}
	}
	return nil
}

// Write records pid, replacing any previous content.
func (s *Store) Write(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FileMode)
	if err != nil {
		return fmt.Errorf("open pid file: %w", err)
	}
	if _, err := file.WriteString(strconv.Itoa(pid) + "\n"); err != nil {
		file.Close()
		return fmt.Errorf("write pid file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("sync pid file: %w", err)
	}
	return file.Close()
}

// RemoveIfOwned removes the PID file only while it still records pid, so a
// daemon tearing down never deletes a successor's file.
func (s *Store) RemoveIfOwned(pid int) error {
	recorded, err := s.Read()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if errors.Is(err, ErrInvalidPID) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read pid file: %w", err)
	}
	if recorded != pid {
		s.logger.Debug("pid file owned by another process; leaving it",
			logging.PIDFile(s.path), logging.PID(recorded))
		return nil
	}
	return s.Reap()
}

func parsePID(content string) (int, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidPID)
	}
	pid, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPID, trimmed)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("%w: PID must be positive, got %d", ErrInvalidPID, pid)
	}
	return pid, nil
}
