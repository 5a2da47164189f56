package main

import (
	"github.com/spf13/cobra"

	"daemonkit/internal/daemonrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var detached bool
	var logFD int

	cmd := &cobra.Command{
		Use:    "run",
		Short:  "Run the daemon in this process",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogFD:      logFD,
				Stderr:     cmd.ErrOrStderr(),
				Foreground: !detached,
			})
		},
	}
	cmd.Flags().BoolVar(&detached, "detached", false, "Set by start for the background child")
	cmd.Flags().IntVar(&logFD, "log-fd", daemonrun.NoLogFD, "Inherited log file descriptor")
	return cmd
}
