package daemonrun

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"daemonkit/internal/config"
	"daemonkit/internal/daemon"
	"daemonkit/internal/daemonctl"
	"daemonkit/internal/logging"
	"daemonkit/internal/pidfile"
)

// NoLogFD marks that no log descriptor was handed over by the parent.
const NoLogFD = -1

// Options configures daemon process runtime behavior.
type Options struct {
	// LogLevel overrides logging.level when set.
	LogLevel string
	// LogFD is the inherited log file descriptor, or NoLogFD to open the
	// configured log file directly.
	LogFD int
	// Stderr receives a copy of every record in debug mode or when running
	// in the foreground.
	Stderr     io.Writer
	Foreground bool
	// Payload replaces the heartbeat loop.
	Payload daemonctl.Payload
}

// Run is the daemon-side entry point. It builds the run logger, enters the
// process context through the controller and drives the payload until a
// terminate signal or a graceful exit.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if opts.LogLevel != "" {
		if err := config.ValidateLogLevel(opts.LogLevel); err != nil {
			return err
		}
		cfg.Logging.Level = opts.LogLevel
	}

	logFile, err := openLogOutput(cfg, opts.LogFD)
	if err != nil {
		return err
	}
	var out io.Writer = logFile
	if opts.Stderr != nil && (cfg.Daemon.DebugMode || opts.Foreground) {
		out = io.MultiWriter(logFile, opts.Stderr)
	}

	logger, runID, err := logging.NewFromConfig(cfg, out)
	if err != nil {
		_ = logFile.Close()
		return fmt.Errorf("init logger: %w", err)
	}
	pidPath := pidfile.Resolver{RunDir: cfg.Paths.RunDir, TempDir: cfg.Paths.TempDir}.Resolve(cfg.App.Name)
	logger.Info("daemon runtime starting",
		logging.String(logging.FieldEventType, "daemon_runtime_starting"),
		logging.String("app", cfg.App.Name),
		logging.String(logging.FieldRunID, runID),
		logging.PIDFile(pidPath),
		logging.Duration("interval", cfg.Interval()),
		logging.Bool("debug_mode", cfg.Daemon.DebugMode),
	)

	ctrl, err := daemonctl.New(ControllerOptions(cfg, logFile), pidfile.NewStore(pidPath, logger), nil, logger)
	if err != nil {
		logging.Critical(logger, "daemon status unavailable", "daemon_status_failed", logging.Error(err), logging.PIDFile(pidPath))
		_ = logFile.Close()
		return err
	}

	payload := opts.Payload
	if payload == nil {
		payload = Heartbeat(cfg.Interval(), logger)
	}
	if err := ctrl.Run(ctx, payload); err != nil {
		// Run closes the log file with the process context; a second Close is a no-op.
		_ = logFile.Close()
		return err
	}
	return nil
}

// ControllerOptions maps configuration onto controller and process context
// options. logFile, when non-nil, stays open across detachment and is closed
// with the process context.
func ControllerOptions(cfg *config.Config, logFile *os.File) daemonctl.Options {
	opts := daemonctl.Options{
		AppName:         cfg.App.Name,
		StopTimeout:     cfg.StopTimeout(),
		RestartCooldown: cfg.RestartCooldown(),
		Daemon: daemon.Options{
			WorkDir:   cfg.Daemon.WorkDir,
			Umask:     cfg.Daemon.Umask,
			Group:     cfg.Daemon.Group,
			DebugMode: cfg.Daemon.DebugMode,
		},
	}
	if logFile != nil {
		opts.Daemon.Preserve = []*os.File{logFile}
	}
	return opts
}

func openLogOutput(cfg *config.Config, fd int) (*os.File, error) {
	if fd >= 0 {
		file := os.NewFile(uintptr(fd), "daemonkit-log")
		if file == nil {
			return nil, fmt.Errorf("log descriptor %d is not valid", fd)
		}
		return file, nil
	}
	logPath, err := cfg.EnsureLogDirectory(cfg.LogFilePath(os.Geteuid()))
	if err != nil {
		return nil, err
	}
	return logging.OpenLogFile(logPath)
}

// Heartbeat returns the default payload: it logs one line per interval while
// the process context keeps running. A terminate signal interrupts the wait;
// a graceful exit takes effect after the current iteration.
func Heartbeat(interval time.Duration, logger *slog.Logger) daemonctl.Payload {
	if interval <= 0 {
		interval = time.Duration(config.Default().Daemon.IntervalSeconds) * time.Second
	}
	return func(pc *daemon.Context) error {
		logger := logging.NewComponentLogger(logger, "heartbeat")
		timer := time.NewTimer(interval)
		defer timer.Stop()
		for pc.Running() {
			logger.Info("I am a happy daemon",
				logging.String(logging.FieldEventType, "heartbeat"),
				logging.PID(pc.PID()),
			)
			timer.Reset(interval)
			select {
			case <-pc.Done():
				return nil
			case <-timer.C:
			}
		}
		return nil
	}
}
