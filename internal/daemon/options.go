package daemon

import (
	"log/slog"
	"os"
	"syscall"
)

// Action is what a routed signal does to the running context.
type Action int

const (
	// ActionTerminate cancels the context immediately.
	ActionTerminate Action = iota
	// ActionGracefulExit asks the payload loop to stop at its next iteration.
	ActionGracefulExit
)

func (a Action) String() string {
	switch a {
	case ActionTerminate:
		return "terminate"
	case ActionGracefulExit:
		return "graceful_exit"
	default:
		return "unknown"
	}
}

// Route maps one signal onto an action.
type Route struct {
	Signal os.Signal
	Action Action
}

// DefaultRoutes is the routing table used when Options.Routes is empty.
func DefaultRoutes() []Route {
	return []Route{
		{Signal: syscall.SIGTERM, Action: ActionTerminate},
		{Signal: syscall.SIGHUP, Action: ActionGracefulExit},
		{Signal: syscall.SIGUSR1, Action: ActionGracefulExit},
	}
}

// Options configures Enter.
type Options struct {
	// PIDPath is locked and receives the PID of the current process.
	PIDPath string
	// WorkDir is entered on Enter. Empty leaves the working directory alone.
	WorkDir string
	// Umask is applied on Enter. Negative leaves the umask alone.
	Umask int
	// Group is assumed when running as root. Empty skips privilege lowering.
	Group string
	// DebugMode records that the standard streams are still attached to a
	// terminal. Never use it for unattended runs.
	DebugMode bool
	// Preserve lists descriptors owned by the context; Close closes them.
	Preserve []*os.File
	// Routes replaces DefaultRoutes when non-empty.
	Routes []Route
	Logger *slog.Logger
}
