package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"daemonkit/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	// Writers receive output in addition to OutputPaths.
	Writers     []io.Writer
	Development bool
	// RunID tags every record with run_id when non-empty.
	RunID string
	// Journal tees records into the systemd journal when it is reachable.
	Journal    bool
	Identifier string
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	outputWriter, err := openWriters(opts.OutputPaths, opts.Writers)
	if err != nil {
		return nil, err
	}

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(outputWriter, levelVar, addSource)
	case "console":
		handler = newPrettyHandler(outputWriter, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	if opts.Journal && IsJournalAvailable() {
		handler = TeeHandler(handler, NewJournalHandler(opts.Identifier, level))
	}
	if opts.RunID != "" {
		handler = newRunIDHandler(handler, opts.RunID)
	}
	return slog.New(handler), nil
}

// NewFromConfig creates the daemon logger from configuration. Records go to
// the provided writer (normally the log file handed over by the parent) and,
// when requested, to the journal. A fresh run id is attached.
func NewFromConfig(cfg *config.Config, w io.Writer) (*slog.Logger, string, error) {
	runID := uuid.NewString()
	if cfg == nil {
		logger, err := New(Options{Level: "info", Format: "console", Writers: []io.Writer{w}, RunID: runID})
		return logger, runID, err
	}
	logger, err := New(Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Writers:    []io.Writer{w},
		RunID:      runID,
		Journal:    cfg.Logging.Journal,
		Identifier: cfg.App.Name,
	})
	if err != nil {
		return nil, "", err
	}
	return logger, runID, nil
}

// OpenLogFile opens path for appending, creating parent directories.
func OpenLogFile(path string) (*os.File, error) {
	if err := ensureLogDir(path); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

func openWriters(outputPaths []string, extra []io.Writer) (io.Writer, error) {
	seen := map[string]struct{}{}
	var writers []io.Writer

	for _, path := range outputPaths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			file, err := OpenLogFile(trimmed)
			if err != nil {
				return nil, err
			}
			writers = append(writers, file)
		}
	}
	for _, w := range extra {
		if w != nil {
			writers = append(writers, w)
		}
	}

	switch len(writers) {
	case 0:
		return os.Stdout, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
