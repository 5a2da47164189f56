package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"daemonkit/internal/logging"
	"daemonkit/internal/pidfile"
)

var (
	// ErrLocked is returned by Enter when another process holds the PID file lock.
	ErrLocked = errors.New("pid file is locked by another process")
	// ErrClosed is the context cause after Close.
	ErrClosed = errors.New("daemon context closed")
)

// SignalError is the context cause when a terminate route fires.
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("received %s", e.Signal)
}

// Context is the scoped state of a detached daemon. Obtain it from Enter and
// always defer Close.
type Context struct {
	ctx    context.Context
	cancel context.CancelCauseFunc

	pid     int
	store   *pidfile.Store
	lock    *flock.Flock
	logger  *slog.Logger
	routes  map[os.Signal]Action
	signals chan os.Signal
	done    chan struct{}

	preserve []*os.File

	running    atomic.Bool
	exitReason atomic.Pointer[string]
	closeOnce  sync.Once
	closeErr   error
}

// Enter prepares the current process to run as the daemon. On failure every
// resource acquired so far has already been released.
func Enter(parent context.Context, opts Options) (_ *Context, err error) {
	if opts.PIDPath == "" {
		return nil, errors.New("daemon: pid path is required")
	}
	logger := logging.NewComponentLogger(opts.Logger, "daemon")

	if opts.Umask >= 0 {
		unix.Umask(opts.Umask)
	}
	if opts.WorkDir != "" {
		if err := os.Chdir(opts.WorkDir); err != nil {
			return nil, fmt.Errorf("enter working directory %q: %w", opts.WorkDir, err)
		}
	}
	if opts.DebugMode {
		logging.WarnWithContext(logger, "debug mode keeps standard streams attached", "debug_mode_enabled",
			logging.String(logging.FieldErrorHint, "disable debug_mode for unattended runs"),
			logging.String(logging.FieldImpact, "writes stall if the terminal goes away"),
		)
	}

	lock := flock.New(opts.PIDPath, flock.SetPermissions(pidfile.FileMode))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock pid file %q: %w", opts.PIDPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, opts.PIDPath)
	}
	defer func() {
		if err != nil {
			_ = lock.Unlock()
		}
	}()

	pid := os.Getpid()
	store := pidfile.NewStore(opts.PIDPath, opts.Logger)
	if err := store.Write(pid); err != nil {
		return nil, fmt.Errorf("record pid: %w", err)
	}
	defer func() {
		if err != nil {
			_ = store.RemoveIfOwned(pid)
		}
	}()

	if opts.Group != "" && os.Geteuid() == 0 {
		gid, err := lowerGroup(opts.Group)
		if err != nil {
			return nil, err
		}
		logger.Debug("group privilege lowered", logging.String("group", opts.Group), logging.Int("gid", gid))
	}

	routes := opts.Routes
	if len(routes) == 0 {
		routes = DefaultRoutes()
	}
	ctx, cancel := context.WithCancelCause(parent)
	c := &Context{
		ctx:      ctx,
		cancel:   cancel,
		pid:      pid,
		store:    store,
		lock:     lock,
		logger:   logger,
		routes:   make(map[os.Signal]Action, len(routes)),
		signals:  make(chan os.Signal, len(routes)+1),
		done:     make(chan struct{}),
		preserve: opts.Preserve,
	}
	sigs := make([]os.Signal, 0, len(routes))
	for _, route := range routes {
		c.routes[route.Signal] = route.Action
		sigs = append(sigs, route.Signal)
	}
	c.running.Store(true)
	signal.Notify(c.signals, sigs...)
	go c.dispatch()

	notifyReady(logger, pid)
	logger.Info("daemon context entered",
		logging.String(logging.FieldEventType, "daemon_context_entered"),
		logging.PID(pid),
		logging.PIDFile(opts.PIDPath),
	)
	return c, nil
}

// dispatch only flips state; the payload loop does the work.
func (c *Context) dispatch() {
	for {
		select {
		case sig := <-c.signals:
			switch c.routes[sig] {
			case ActionTerminate:
				c.running.Store(false)
				c.cancel(&SignalError{Signal: sig})
			case ActionGracefulExit:
				c.GracefulExit("received " + sig.String())
			}
		case <-c.done:
			return
		}
	}
}

// Context is cancelled when a terminate route fires or Close runs.
func (c *Context) Context() context.Context {
	return c.ctx
}

// Done is shorthand for Context().Done().
func (c *Context) Done() <-chan struct{} {
	return c.ctx.Done()
}

// PID returns the process id recorded in the PID file.
func (c *Context) PID() int {
	return c.pid
}

// Running reports whether the payload loop should start another iteration.
func (c *Context) Running() bool {
	return c.running.Load() && c.ctx.Err() == nil
}

// GracefulExit clears the continuation flag. The first reason is kept.
func (c *Context) GracefulExit(reason string) {
	c.exitReason.CompareAndSwap(nil, &reason)
	c.running.Store(false)
}

// ExitReason describes why the loop stopped: the graceful reason, the
// terminating signal, or empty while still running.
func (c *Context) ExitReason() string {
	if reason := c.exitReason.Load(); reason != nil {
		return *reason
	}
	if cause := context.Cause(c.ctx); cause != nil {
		return cause.Error()
	}
	return ""
}

// Close stops signal routing, removes the PID file if it still records this
// process, releases the lock and closes preserved descriptors. It is idempotent.
func (c *Context) Close() error {
	c.closeOnce.Do(func() {
		signal.Stop(c.signals)
		close(c.done)
		c.running.Store(false)
		c.cancel(ErrClosed)
		notifyStopping(c.logger)

		var errs []error
		if err := c.store.RemoveIfOwned(c.pid); err != nil {
			errs = append(errs, err)
		}
		if err := c.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("unlock pid file: %w", err))
		}
		c.closeErr = errors.Join(errs...)
		// Preserved files may back the logger, so log before closing them.
		c.logger.Info("daemon context closed",
			logging.String(logging.FieldEventType, "daemon_context_closed"),
			logging.PID(c.pid),
			logging.String("reason", c.ExitReason()),
		)
		for _, file := range c.preserve {
			if file != nil {
				_ = file.Close()
			}
		}
	})
	return c.closeErr
}
