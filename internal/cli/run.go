package cli

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/vu1/internal/config"
	"github.com/rileyhilliard/vu1/internal/dial"
	"github.com/rileyhilliard/vu1/internal/errors"
	"github.com/rileyhilliard/vu1/internal/exporter"
	"github.com/rileyhilliard/vu1/internal/logger"
	"github.com/rileyhilliard/vu1/internal/monitor"
	"github.com/rileyhilliard/vu1/internal/sampler"
	"github.com/rileyhilliard/vu1/internal/transport"
)

// MonitorFlags are the flags shared by run and start.
type MonitorFlags struct {
	Interval      time.Duration
	CPU           bool
	GPU           bool
	Memory        bool
	Network       bool
	MetricsListen string
}

// AddMonitorFlags registers the monitor flags on cmd.
func AddMonitorFlags(cmd *cobra.Command, flags *MonitorFlags) {
	cmd.Flags().DurationVar(&flags.Interval, "interval", 0, "time between updates (default from config, 2s)")
	cmd.Flags().BoolVar(&flags.CPU, "cpu", false, "update the CPU dial")
	cmd.Flags().BoolVar(&flags.GPU, "gpu", false, "update the GPU dial")
	cmd.Flags().BoolVar(&flags.Memory, "mem", false, "update the MEMORY dial")
	cmd.Flags().BoolVar(&flags.Network, "net", false, "update the NETWORK dial")
	cmd.Flags().StringVar(&flags.MetricsListen, "metrics-listen", "", "serve Prometheus metrics on this address (e.g. :9101)")
}

// Roles returns the explicitly enabled roles in canonical order. Empty
// means auto-detect.
func (f MonitorFlags) Roles() []dial.Role {
	enabled := map[dial.Role]bool{
		dial.RoleCPU:     f.CPU,
		dial.RoleGPU:     f.GPU,
		dial.RoleMemory:  f.Memory,
		dial.RoleNetwork: f.Network,
	}
	var roles []dial.Role
	for _, r := range dial.Roles {
		if enabled[r] {
			roles = append(roles, r)
		}
	}
	return roles
}

// Args renders the flags back into command-line form for "vu1 run".
func (f MonitorFlags) Args() []string {
	var args []string
	if f.Interval > 0 {
		args = append(args, "--interval", f.Interval.String())
	}
	if f.CPU {
		args = append(args, "--cpu")
	}
	if f.GPU {
		args = append(args, "--gpu")
	}
	if f.Memory {
		args = append(args, "--mem")
	}
	if f.Network {
		args = append(args, "--net")
	}
	if f.MetricsListen != "" {
		args = append(args, "--metrics-listen", f.MetricsListen)
	}
	return args
}

var runFlags MonitorFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the monitor in the foreground",
	Long: `Sample host telemetry and push it to the VU1 dials until interrupted.

With no metric flags every role that has a dial is updated.

Examples:
  vu1 run
  vu1 run --cpu --mem
  vu1 run --interval 5s --metrics-listen :9101`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		return Run(ctx, cfg, log, runFlags)
	},
}

func init() {
	AddMonitorFlags(runCmd, &runFlags)
	rootCmd.AddCommand(runCmd)
}

// Run connects to the server and runs the monitoring loop until ctx is
// cancelled.
func Run(ctx context.Context, cfg *config.Config, log logger.Logger, flags MonitorFlags) error {
	interval := cfg.Monitor.Interval
	if flags.Interval > 0 {
		if flags.Interval < config.MinMonitorInterval {
			return errors.New(errors.ErrConfig,
				"--interval "+flags.Interval.String()+" is too short",
				"Use at least "+config.MinMonitorInterval.String())
		}
		interval = flags.Interval
	}

	listen := cfg.Metrics.Listen
	if flags.MetricsListen != "" {
		listen = flags.MetricsListen
	}

	opts := monitor.Options{
		Interval: interval,
		Roles:    flags.Roles(),
		Logger:   log,
	}

	var onRetry func(int, error)
	if listen != "" {
		exp := exporter.New()
		opts.Recorder = exp
		onRetry = exp.OnRetry
		go func() {
			if err := exp.Serve(ctx, listen, log); err != nil {
				log.Error("metrics endpoint stopped: %v", err)
			}
		}()
	}

	c, err := connect(ctx, cfg, log, onRetry)
	if err != nil {
		return err
	}

	loop := monitor.New(c, c.Registry(), sampler.NewSystem(), sampler.NewGPU(cfg.Dials.GPU.Backend), opts)
	if err := loop.Run(ctx); err != nil {
		if stderrors.Is(err, transport.ErrServerUnreachable) {
			// Already logged critically by the loop.
			return errors.NewExitError(1)
		}
		return err
	}
	return nil
}
