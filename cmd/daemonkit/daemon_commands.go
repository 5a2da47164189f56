package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"daemonkit/internal/daemonctl"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:         "start",
		Annotations: map[string]string{requiresLogLevel: "true"},
		Short:       "Start the daemon in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withController(cmd, func(ctrl *daemonctl.Controller) error {
				fmt.Fprintln(stdout, "Starting daemon...")
				result, err := ctrl.Start(cmd.Context())
				var already *daemonctl.AlreadyRunningError
				if errors.As(err, &already) {
					fmt.Fprintln(stdout, already.Status.Message)
					return &exitError{code: 1, msg: already.Error()}
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "Daemon started (pid %d)\n", result.PID)
				return nil
			})
		},
	}

	stopCmd := &cobra.Command{
		Use:         "stop",
		Annotations: map[string]string{requiresLogLevel: "true"},
		Short:       "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withController(cmd, func(ctrl *daemonctl.Controller) error {
				st := ctrl.InitialStatus()
				if !st.Running() {
					fmt.Fprintln(stdout, st.Message)
					return nil
				}
				fmt.Fprintf(stdout, "Stopping daemon (pid %d)...\n", st.PID)
				result, err := ctrl.Stop(cmd.Context())
				if errors.Is(err, daemonctl.ErrNotRunning) {
					fmt.Fprintln(stdout, "Daemon already exited")
					return nil
				}
				if err != nil {
					return err
				}
				printStopResult(cmd, result)
				return nil
			})
		},
	}

	var verbose bool
	statusCmd := &cobra.Command{
		Use:         "status",
		Annotations: map[string]string{requiresLogLevel: "true"},
		Short:       "Show whether the daemon is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withController(cmd, func(ctrl *daemonctl.Controller) error {
				st := ctrl.InitialStatus()
				if !verbose {
					fmt.Fprintln(stdout, st.Message)
					return nil
				}
				logPath, _ := ctx.logPath()
				for _, line := range renderStatus(st, logPath, shouldColorize(stdout)) {
					fmt.Fprintln(stdout, line)
				}
				return nil
			})
		},
	}
	statusCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show PID file and process details")

	restartCmd := &cobra.Command{
		Use:         "restart",
		Annotations: map[string]string{requiresLogLevel: "true"},
		Short:       "Stop the daemon if running, then start it again",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withController(cmd, func(ctrl *daemonctl.Controller) error {
				fmt.Fprintln(stdout, "Restarting daemon...")
				result, err := ctrl.Restart(cmd.Context())
				if result.WasRunning {
					printStopResult(cmd, result.Stop)
				}
				if err != nil {
					return fmt.Errorf("restart: %w", err)
				}
				fmt.Fprintf(stdout, "Daemon restarted (pid %d)\n", result.Start.PID)
				return nil
			})
		},
	}

	return []*cobra.Command{startCmd, stopCmd, restartCmd, statusCmd}
}

func printStopResult(cmd *cobra.Command, result daemonctl.StopResult) {
	stdout := cmd.OutOrStdout()
	if !result.Exited {
		fmt.Fprintf(stdout, "Stop signal sent; pid %d is still shutting down\n", result.PID)
		return
	}
	fmt.Fprintln(stdout, "Daemon stopped")
}
