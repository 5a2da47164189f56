package daemonctl

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"daemonkit/internal/daemon"
	"daemonkit/internal/logging"
)

// Launcher starts the detached daemon and returns its PID once it is ready.
type Launcher interface {
	Launch(ctx context.Context, pidPath string) (int, error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context, pidPath string) (int, error)

func (f LauncherFunc) Launch(ctx context.Context, pidPath string) (int, error) {
	return f(ctx, pidPath)
}

// ExecLauncher re-executes Executable with `run --detached` and hands the log
// file to the child as its first preserved descriptor.
type ExecLauncher struct {
	Executable string
	// Args are appended after the run subcommand flags (config path, log level).
	Args      []string
	Env       []string
	LogPath   string
	DebugMode bool
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Launch implements Launcher.
func (l ExecLauncher) Launch(ctx context.Context, pidPath string) (int, error) {
	args := []string{"run", "--detached"}
	var preserve []*os.File
	if l.LogPath != "" {
		logFile, err := logging.OpenLogFile(l.LogPath)
		if err != nil {
			return 0, err
		}
		defer logFile.Close()
		preserve = append(preserve, logFile)
		args = append(args, "--log-fd", strconv.Itoa(daemon.PreservedFDBase))
	}
	args = append(args, l.Args...)

	return daemon.Detach(ctx, daemon.DetachRequest{
		Executable: l.Executable,
		Args:       args,
		Env:        l.Env,
		PIDPath:    pidPath,
		DebugMode:  l.DebugMode,
		Preserve:   preserve,
		Timeout:    l.Timeout,
	}, l.Logger)
}
