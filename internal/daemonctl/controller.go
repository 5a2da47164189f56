package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"daemonkit/internal/daemon"
	"daemonkit/internal/logging"
	"daemonkit/internal/pidfile"
)

const exitPollInterval = 100 * time.Millisecond

// Options configures a Controller.
type Options struct {
	AppName         string
	StopTimeout     time.Duration
	RestartCooldown time.Duration
	// Daemon is the template for the process context entered by Run;
	// PIDPath and Logger are filled in by the controller.
	Daemon daemon.Options
	// Signal delivers stop signals. Nil means unix.Kill.
	Signal func(pid int, sig syscall.Signal) error
}

// Payload is the work the daemon performs. It must return once pc stops
// running or its context is cancelled.
type Payload func(pc *daemon.Context) error

// StartResult describes a successful start.
type StartResult struct {
	PID     int
	PIDPath string
}

// StopResult describes a delivered stop signal.
type StopResult struct {
	PID     int
	PIDPath string
	// Exited is false when the process was still alive after StopTimeout.
	Exited bool
}

// RestartResult captures stop/start outcomes for a restart.
type RestartResult struct {
	WasRunning bool
	Stop       StopResult
	Start      StartResult
}

// Controller drives the daemon lifecycle for one PID file.
type Controller struct {
	opts     Options
	store    *pidfile.Store
	launcher Launcher
	logger   *slog.Logger
	signal   func(pid int, sig syscall.Signal) error
	initial  Status
}

// New builds a controller and computes the current status, reaping stale or
// empty PID files. It fails when the status cannot be determined.
func New(opts Options, store *pidfile.Store, launcher Launcher, logger *slog.Logger) (*Controller, error) {
	if store == nil {
		return nil, errors.New("daemonctl: pid file store is required")
	}
	if opts.AppName == "" {
		opts.AppName = "daemonkit"
	}
	c := &Controller{
		opts:     opts,
		store:    store,
		launcher: launcher,
		logger:   logging.NewComponentLogger(logger, "daemonctl"),
		signal:   opts.Signal,
	}
	if c.signal == nil {
		c.signal = func(pid int, sig syscall.Signal) error { return unix.Kill(pid, sig) }
	}
	st, err := c.Status()
	if err != nil {
		return nil, err
	}
	c.initial = st
	return c, nil
}

// InitialStatus is the status computed when the controller was built.
func (c *Controller) InitialStatus() Status {
	return c.initial
}

// PIDPath returns the PID file location.
func (c *Controller) PIDPath() string {
	return c.store.Path()
}

// Status reads the PID file, reaping it when stale or empty.
func (c *Controller) Status() (Status, error) {
	rec, err := c.store.ReadStale()
	if err != nil {
		return Status{Path: c.store.Path()}, err
	}
	return statusFromRecord(c.opts.AppName, rec), nil
}

// Start launches the detached daemon unless one is already running.
func (c *Controller) Start(ctx context.Context) (StartResult, error) {
	st, err := c.Status()
	if err != nil {
		return StartResult{}, err
	}
	if st.Running() {
		return StartResult{PID: st.PID, PIDPath: st.Path}, &AlreadyRunningError{Status: st}
	}
	if c.launcher == nil {
		return StartResult{}, errors.New("daemonctl: no launcher configured")
	}

	c.logger.Info("starting daemon",
		logging.String(logging.FieldEventType, "daemon_start_requested"),
		logging.PIDFile(st.Path),
	)
	pid, err := c.launcher.Launch(ctx, st.Path)
	if err != nil {
		logging.ErrorWithContext(c.logger, "daemon failed to start", "daemon_start_failed",
			logging.Error(err),
			logging.PIDFile(st.Path),
			logging.String(logging.FieldErrorHint, "check the daemon log file"),
		)
		return StartResult{PID: pid, PIDPath: st.Path}, fmt.Errorf("start daemon: %w", err)
	}
	c.logger.Info("daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.PID(pid),
		logging.PIDFile(st.Path),
	)
	return StartResult{PID: pid, PIDPath: st.Path}, nil
}

// Run is the daemon side of start: it enters the process context, drives the
// payload and tears the context down on every exit path. A payload failure is
// logged at CRITICAL and returned as a PayloadError; it is never retried.
func (c *Controller) Run(ctx context.Context, payload Payload) (err error) {
	if payload == nil {
		return errors.New("daemonctl: payload is required")
	}
	st, err := c.Status()
	if err != nil {
		return err
	}
	if st.Running() {
		return &AlreadyRunningError{Status: st}
	}

	dopts := c.opts.Daemon
	dopts.PIDPath = c.store.Path()
	dopts.Logger = c.logger
	pc, err := daemon.Enter(ctx, dopts)
	if err != nil {
		return fmt.Errorf("enter daemon context: %w", err)
	}
	defer func() {
		if closeErr := pc.Close(); closeErr != nil {
			logging.WarnWithContext(c.logger, "daemon teardown incomplete", "daemon_teardown_failed",
				logging.Error(closeErr),
				logging.PIDFile(dopts.PIDPath),
				logging.String(logging.FieldImpact, "a PID file may need manual removal"),
			)
			if err == nil {
				err = closeErr
			}
		}
	}()

	if err := runPayload(pc, payload); err != nil {
		logging.Critical(c.logger, "daemon payload failed", "payload_failed",
			logging.Error(err),
			logging.PID(pc.PID()),
		)
		return err
	}
	c.logger.Info("daemon payload finished",
		logging.String(logging.FieldEventType, "payload_finished"),
		logging.PID(pc.PID()),
		logging.String("reason", pc.ExitReason()),
	)
	return nil
}

func runPayload(pc *daemon.Context, payload Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PayloadError{Err: fmt.Errorf("%v\n%s", r, debug.Stack()), Panic: true}
		}
	}()
	if err := payload(pc); err != nil {
		return &PayloadError{Err: err}
	}
	return nil
}

// Stop runs the local graceful-exit hook, sends SIGTERM to the recorded
// process, removes the PID file and waits up to StopTimeout for the process
// to disappear.
func (c *Controller) Stop(ctx context.Context) (StopResult, error) {
	st, err := c.Status()
	if err != nil {
		return StopResult{}, err
	}
	if !st.Running() {
		return StopResult{PIDPath: st.Path}, ErrNotRunning
	}
	result := StopResult{PID: st.PID, PIDPath: st.Path}

	c.gracefulExitHook(st)
	if err := c.signal(st.PID, syscall.SIGTERM); err != nil {
		sigErr := &SignalError{PID: st.PID, PIDPath: st.Path, Signal: syscall.SIGTERM.String(), Err: err}
		logging.ErrorWithContext(c.logger, "stop signal not delivered", "stop_signal_failed",
			logging.Error(err),
			logging.PID(st.PID),
			logging.PIDFile(st.Path),
			logging.String(logging.FieldErrorHint, "check whether the process still exists"),
		)
		return result, sigErr
	}
	if err := c.store.Reap(); err != nil {
		return result, err
	}

	result.Exited = c.waitExit(ctx, st.PID)
	if !result.Exited {
		logging.WarnWithContext(c.logger, "daemon still running after stop timeout", "stop_timeout",
			logging.PID(st.PID),
			logging.Duration("timeout", c.opts.StopTimeout),
			logging.String(logging.FieldErrorHint, "inspect the daemon log; it may be blocked in its payload"),
			logging.String(logging.FieldImpact, "a restart may race the exiting process"),
		)
	}
	return result, nil
}

// gracefulExitHook runs in the controlling process before the stop signal.
func (c *Controller) gracefulExitHook(st Status) {
	c.logger.Info("graceful exit requested",
		logging.String(logging.FieldEventType, "graceful_exit_requested"),
		logging.PID(st.PID),
		logging.PIDFile(st.Path),
	)
}

func (c *Controller) waitExit(ctx context.Context, pid int) bool {
	if c.opts.StopTimeout <= 0 {
		return !processAlive(pid)
	}
	deadline := time.NewTimer(c.opts.StopTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(exitPollInterval)
	defer ticker.Stop()
	for {
		if !processAlive(pid) {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return !processAlive(pid)
		case <-ticker.C:
		}
	}
}

func processAlive(pid int) bool {
	alive, _, err := pidfile.Alive(pid)
	return err == nil && alive
}

// Restart stops the daemon when it is running, waits the fixed cooldown and
// starts it again. It is not atomic: a failed start leaves the daemon down.
func (c *Controller) Restart(ctx context.Context) (RestartResult, error) {
	st, err := c.Status()
	if err != nil {
		return RestartResult{}, err
	}
	result := RestartResult{WasRunning: st.Running()}
	if st.Running() {
		stopResult, err := c.Stop(ctx)
		result.Stop = stopResult
		if err != nil && !errors.Is(err, ErrNotRunning) {
			return result, err
		}
	}

	if c.opts.RestartCooldown > 0 {
		timer := time.NewTimer(c.opts.RestartCooldown)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		case <-timer.C:
		}
	}

	startResult, err := c.Start(ctx)
	result.Start = startResult
	return result, err
}
