package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/vu1/internal/config"
	"github.com/rileyhilliard/vu1/internal/errors"
	"github.com/rileyhilliard/vu1/internal/guard"
	"github.com/rileyhilliard/vu1/internal/lock"
	"github.com/rileyhilliard/vu1/internal/logger"
	"github.com/rileyhilliard/vu1/internal/ui"
)

var (
	startFlags   MonitorFlags
	startLogFile string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the monitor in the background",
	Long: `Start "vu1 run" as a detached process and record its pid in the lock
file. Does nothing if the recorded monitor is still running.

Examples:
  vu1 start
  vu1 start --cpu --gpu --log-file vu1.log`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		exe, err := os.Executable()
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrExec,
				"Can't find the vu1 executable",
				"Run 'vu1 run' in the foreground instead")
		}
		g := newGuard(cfg, guard.OSProcess{Output: startLogFile}, log)
		return Start(cmd.OutOrStdout(), g, monitorCommand(exe, Config(), startFlags))
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background monitor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		return Stop(cmd.OutOrStdout(), newGuard(cfg, nil, log))
	},
}

func init() {
	AddMonitorFlags(startCmd, &startFlags)
	startCmd.Flags().StringVar(&startLogFile, "log-file", "", "append the monitor's output to this file")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
}

func newGuard(cfg *config.Config, proc guard.Process, log logger.Logger) *guard.Guard {
	return guard.New(lock.NewFile(cfg.Lock.File), proc, log)
}

// monitorCommand is the argv of the background monitor. A relative config
// path is made absolute.
func monitorCommand(exe, configPath string, flags MonitorFlags) []string {
	argv := []string{exe, "run"}
	if configPath != "" {
		if abs, err := filepath.Abs(configPath); err == nil {
			configPath = abs
		}
		argv = append(argv, "--config", configPath)
	}
	return append(argv, flags.Args()...)
}

// Start launches command through g unless a monitor is already running.
func Start(out io.Writer, g *guard.Guard, command []string) error {
	pid, started, err := g.Start(command)
	if err != nil {
		return err
	}
	if started {
		fmt.Fprintf(out, "%s VU1 monitor started (pid %d)\n", ui.SuccessStyle().Render(ui.SymbolSuccess), pid)
		return nil
	}
	fmt.Fprintf(out, "%s VU1 monitor already running (pid %d)\n", ui.MutedStyle().Render(ui.SymbolSkipped), pid)
	return nil
}

// Stop terminates the monitor recorded by g.
func Stop(out io.Writer, g *guard.Guard) error {
	signalled, err := g.Stop()
	if err != nil {
		return err
	}
	if signalled {
		fmt.Fprintf(out, "%s VU1 monitor stopped\n", ui.SuccessStyle().Render(ui.SymbolSuccess))
		return nil
	}
	fmt.Fprintf(out, "%s VU1 monitor is not running\n", ui.MutedStyle().Render(ui.SymbolSkipped))
	return nil
}
