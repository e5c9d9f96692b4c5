package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/vu1/internal/client"
	"github.com/rileyhilliard/vu1/internal/config"
	"github.com/rileyhilliard/vu1/internal/dial"
	"github.com/rileyhilliard/vu1/internal/guard"
	"github.com/rileyhilliard/vu1/internal/logger"
	"github.com/rileyhilliard/vu1/internal/ui"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show monitor and dial state",
	Long: `Show whether the background monitor is running and which roles the
VU1 server has dials for.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		return Status(ctx, cfg, log, newGuard(cfg, nil, log), cmd.OutOrStdout(), statusJSON)
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}

// StatusOutput is the "vu1 status --json" payload.
type StatusOutput struct {
	Server  string          `json:"server"`
	Monitor MonitorStatus   `json:"monitor"`
	Dials   map[string]bool `json:"dials"`
}

// MonitorStatus describes the lock record.
type MonitorStatus struct {
	LockFile string `json:"lock_file"`
	PID      int    `json:"pid,omitempty"`
	Running  bool   `json:"running"`
}

// Status reports the lock record, whether its process is alive, and which
// roles are bound on the server.
func Status(ctx context.Context, cfg *config.Config, log logger.Logger, g *guard.Guard, out io.Writer, asJSON bool) error {
	st, err := g.Status()
	if err != nil {
		return err
	}

	c, err := connect(ctx, cfg, log, nil)
	if err != nil {
		return err
	}

	result := StatusOutput{
		Server: cfg.Server.URL(),
		Monitor: MonitorStatus{
			LockFile: cfg.Lock.File,
			PID:      st.PID,
			Running:  st.Alive,
		},
		Dials: make(map[string]bool, len(dial.Roles)),
	}
	for _, r := range dial.Roles {
		result.Dials[r.String()] = c.Registry().Check(r)
	}

	if asJSON {
		return WriteJSONSuccess(out, result)
	}
	renderStatus(out, result, st, c)
	return nil
}

func renderStatus(out io.Writer, result StatusOutput, st guard.Status, c *client.Client) {
	fmt.Fprintln(out, ui.HeaderStyle().Render("Monitor"))
	switch {
	case st.Alive:
		fmt.Fprintf(out, "  %s running (pid %d)\n", ui.SuccessStyle().Render(ui.SymbolSuccess), st.PID)
	case st.Recorded():
		fmt.Fprintf(out, "  %s not running (stale pid %d in %s)\n", ui.WarningStyle().Render(ui.SymbolFail), st.PID, result.Monitor.LockFile)
	default:
		fmt.Fprintf(out, "  %s not running\n", ui.MutedStyle().Render(ui.SymbolPending))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.HeaderStyle().Render("Dials on "+result.Server))
	snapshot := c.Registry().Snapshot()
	for _, r := range dial.Roles {
		d, ok := snapshot[r]
		if !ok {
			fmt.Fprintf(out, "  %s %-8s %s\n", ui.MutedStyle().Render(ui.SymbolPending), r,
				ui.MutedStyle().Render("no dial named "+c.Registry().Name(r)))
			continue
		}
		fmt.Fprintf(out, "  %s %-8s %s\n", ui.SuccessStyle().Render(ui.SymbolComplete), r, ui.RenderGauge(int(d.Value), 10))
	}
}
