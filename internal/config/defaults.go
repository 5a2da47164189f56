package config

const (
	defaultAppName                = "daemonkit"
	defaultRunDir                 = "/var/run"
	defaultSystemLogDir           = "/var/log"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultWorkDir                = "/"
	defaultUmask                  = 0
	defaultGroup                  = "nogroup"
	defaultIntervalSeconds        = 20
	defaultRestartCooldownSeconds = 2
	defaultStartTimeoutSeconds    = 10
	defaultStopTimeoutSeconds     = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		App: App{
			Name: defaultAppName,
		},
		Paths: Paths{
			RunDir: defaultRunDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Daemon: Daemon{
			WorkDir:                defaultWorkDir,
			Umask:                  defaultUmask,
			Group:                  defaultGroup,
			IntervalSeconds:        defaultIntervalSeconds,
			RestartCooldownSeconds: defaultRestartCooldownSeconds,
			StartTimeoutSeconds:    defaultStartTimeoutSeconds,
			StopTimeoutSeconds:     defaultStopTimeoutSeconds,
		},
	}
}
