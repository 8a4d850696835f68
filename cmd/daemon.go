//go:build unix

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kiassist/kiassist/internal/daemon"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the KiAssist daemon",
	Long: `Control the KiAssist background daemon that serves the facade over a Unix socket.

The daemon exposes every facade call as POST /api/<name> so a UI or editor
plugin can drive KiAssist without linking it.`,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the KiAssist daemon",
	Long: `Start the KiAssist daemon in foreground mode.

For background operation, use:
  nohup kiassist daemon start > /tmp/kiassist-daemon.log 2>&1 &`,
	RunE: startDaemon,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the KiAssist daemon",
	Long:  "Stop the running KiAssist daemon gracefully.",
	RunE:  stopDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check daemon status",
	Long:  "Check if the KiAssist daemon is running and display its status.",
	RunE:  statusDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
}

// daemonConfig leaves App nil; only start needs it.
func daemonConfig() daemon.Config {
	return daemon.Config{
		SocketPath: cfg.DaemonSocket,
		PIDFile:    cfg.PIDFile,
		Logger:     logger,
	}
}

func startDaemon(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return fmt.Errorf("failed to initialize daemon: %w", err)
	}
	dc := daemonConfig()
	dc.App = a
	return daemon.New(dc).Run(cmd.Context())
}

func stopDaemon(cmd *cobra.Command, args []string) error {
	return daemon.New(daemonConfig()).Stop()
}

func statusDaemon(cmd *cobra.Command, args []string) error {
	st, err := daemon.New(daemonConfig()).GetStatus()
	if err != nil {
		return err
	}

	switch {
	case st.Running:
		fmt.Printf("KiAssist daemon running (PID: %d, up %s)\n", st.PID, st.Uptime.Round(time.Second))
	case st.PID > 0 && st.ErrorMessage != "":
		fmt.Printf("KiAssist daemon process %d exists but is not responding: %s\n", st.PID, st.ErrorMessage)
	case st.PID > 0:
		fmt.Printf("KiAssist daemon is not running (stale pid file for %d)\n", st.PID)
	default:
		fmt.Println("KiAssist daemon is not running")
	}
	fmt.Printf("  Socket:   %s\n", st.SocketPath)
	fmt.Printf("  PID file: %s\n", cfg.PIDFile)
	return nil
}
