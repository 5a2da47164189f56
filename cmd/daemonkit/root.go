package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var debugModeFlag bool

	ctx := newCommandContext(&configFlag, &logLevelFlag, &debugModeFlag)

	rootCmd := &cobra.Command{
		Use:           "daemonkit",
		Short:         "Manage the daemonkit background process",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			if err := ctx.checkLogLevelChosen(cmd); err != nil {
				return err
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	registerPersistentFlags(rootCmd.PersistentFlags(), &configFlag, &logLevelFlag, &debugModeFlag)

	for _, cmd := range newDaemonCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

func registerPersistentFlags(flags *pflag.FlagSet, configFlag, logLevelFlag *string, debugModeFlag *bool) {
	flags.StringVarP(configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(logLevelFlag, "log-level", "", "Log level (debug, info, warn, error); required by start, stop, status and restart unless "+envLogLevelHint()+" is set")
	flags.BoolVar(debugModeFlag, "debug-mode", false, "Keep the terminal attached to the daemon (unsafe for unattended runs)")
}
