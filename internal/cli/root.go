package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/vu1/internal/errors"
	"github.com/rileyhilliard/vu1/internal/ui"
)

// Global flags
var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "vu1",
	Short: "Drive VU1 dials from host telemetry",
	Long: `vu1 pushes CPU, GPU, memory, and network activity from this machine
to VU1 dials through a local VU1 server.

Name your dials CPU, GPU, MEMORY, and NETWORK in the VU1 server (or bind
other names in vu1.yaml) and run:

  vu1 start`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./vu1.yaml or ~/.config/vu1/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// Execute runs the root command and exits with a non-zero status on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if code, ok := errors.GetExitCode(err); ok {
			os.Exit(code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
