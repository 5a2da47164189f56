package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"daemonkit/internal/config"
	"daemonkit/internal/daemonctl"
	"daemonkit/internal/daemonrun"
	"daemonkit/internal/logging"
	"daemonkit/internal/pidfile"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	debugModeFlag *bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag, logLevelFlag *string, debugModeFlag *bool) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		debugModeFlag: debugModeFlag,
	}
}

// ensureConfig loads configuration once and applies the persistent flags on
// top of it. The flag log level wins over the environment and the file.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		level := c.logLevel()
		if level != "" {
			if err := config.ValidateLogLevel(level); err != nil {
				c.configErr = err
				return
			}
		}
		cfg, path, exists, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = err
			return
		}
		if level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if c.debugModeFlag != nil && *c.debugModeFlag {
			cfg.Daemon.DebugMode = true
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) logLevel() string {
	if c.logLevelFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.logLevelFlag)
}

func (c *commandContext) pidPath() (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return pidfile.Resolver{RunDir: cfg.Paths.RunDir, TempDir: cfg.Paths.TempDir}.Resolve(cfg.App.Name), nil
}

func (c *commandContext) logPath() (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.EnsureLogDirectory(cfg.LogFilePath(os.Geteuid()))
}

// forwardedArgs repeats the persistent flags for the detached child so it
// resolves the same configuration.
func (c *commandContext) forwardedArgs() []string {
	var args []string
	// The child runs from /, so a config found relative to the current
	// directory has to be passed explicitly.
	if c.configExists && c.configPath != "" {
		args = append(args, "--config", c.configPath)
	} else if path := c.configFlagValue(); path != "" {
		if expanded, err := config.ExpandPath(path); err == nil {
			path = expanded
		}
		args = append(args, "--config", path)
	}
	if level := c.logLevel(); level != "" {
		args = append(args, "--log-level", level)
	}
	if c.debugModeFlag != nil && *c.debugModeFlag {
		args = append(args, "--debug-mode")
	}
	return args
}

// withController builds a controller whose control-side log records go to
// the daemon log file, then runs fn.
func (c *commandContext) withController(cmd *cobra.Command, fn func(*daemonctl.Controller) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	pidPath, err := c.pidPath()
	if err != nil {
		return err
	}
	logPath, err := c.logPath()
	if err != nil {
		return err
	}

	logger, closeLog := c.controlLogger(cmd, cfg, logPath)
	defer closeLog()

	exe, err := daemonExecutable()
	if err != nil {
		return err
	}
	launcher := daemonctl.ExecLauncher{
		Executable: exe,
		Args:       c.forwardedArgs(),
		LogPath:    logPath,
		DebugMode:  cfg.Daemon.DebugMode,
		Timeout:    cfg.StartTimeout(),
		Logger:     logger,
	}
	ctrl, err := daemonctl.New(daemonrun.ControllerOptions(cfg, nil), pidfile.NewStore(pidPath, logger), launcher, logger)
	if err != nil {
		return err
	}
	return fn(ctrl)
}

// controlLogger appends to the daemon log file. When the file cannot be
// opened, records go to the command's stderr instead.
func (c *commandContext) controlLogger(cmd *cobra.Command, cfg *config.Config, logPath string) (*slog.Logger, func()) {
	var out io.Writer = cmd.ErrOrStderr()
	closeFn := func() {}
	if file, err := logging.OpenLogFile(logPath); err == nil {
		out = file
		closeFn = func() { _ = file.Close() }
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "warn: %v; logging to stderr\n", err)
	}
	logger, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Writers: []io.Writer{out},
	})
	if err != nil {
		closeFn()
		return logging.NewNop(), func() {}
	}
	return logger.With(logging.String("role", "control")), closeFn
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func envLogLevelHint() string {
	return "$" + config.LogLevelEnv
}

// requiresLogLevel marks commands that act on the daemon. They refuse to run
// until the operator picks a level with --log-level or the environment.
const requiresLogLevel = "requiresLogLevel"

func (c *commandContext) checkLogLevelChosen(cmd *cobra.Command) error {
	if cmd.Annotations[requiresLogLevel] != "true" {
		return nil
	}
	if c.logLevel() != "" || strings.TrimSpace(os.Getenv(config.LogLevelEnv)) != "" {
		return nil
	}
	return &config.Error{
		Field:  "--log-level",
		Reason: "is required for " + cmd.Name() + "; choose one of " + strings.Join(config.LogLevels, ", ") + " or set " + envLogLevelHint(),
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
