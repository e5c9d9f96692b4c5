package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/vu1/internal/client"
	"github.com/rileyhilliard/vu1/internal/config"
	"github.com/rileyhilliard/vu1/internal/dial"
	"github.com/rileyhilliard/vu1/internal/logger"
	"github.com/rileyhilliard/vu1/internal/ui"
)

var dialsJSON bool

var dialsCmd = &cobra.Command{
	Use:   "dials",
	Short: "List the dials the VU1 server reports",
	Long: `List every dial the VU1 server reports and the role it is bound to.

A dial is bound to a role when its name matches dials.<role>.name in
vu1.yaml (CPU, GPU, MEMORY, and NETWORK by default).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		return Dials(ctx, cfg, log, cmd.OutOrStdout(), dialsJSON)
	},
}

func init() {
	dialsCmd.Flags().BoolVar(&dialsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(dialsCmd)
}

// DialInfo is one dial in "vu1 dials --json" output.
type DialInfo struct {
	Role      string         `json:"role,omitempty"`
	Name      string         `json:"name"`
	UID       string         `json:"uid"`
	Value     int            `json:"value"`
	Backlight dial.Backlight `json:"backlight"`
	ImageFile string         `json:"image_file,omitempty"`
}

// Dials prints the server's dial listing with role bindings.
func Dials(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer, asJSON bool) error {
	c := client.FromConfig(cfg, log, nil)
	listing, err := c.ListDials(ctx)
	if err != nil {
		return serverError(log, err)
	}

	infos := bindDials(c.Registry(), listing)
	if asJSON {
		return WriteJSONSuccess(out, infos)
	}

	rows := make([]ui.DialRow, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, ui.DialRow{
			Role:      info.Role,
			Name:      info.Name,
			UID:       info.UID,
			Value:     info.Value,
			Backlight: formatBacklight(info.Backlight),
		})
	}
	fmt.Fprint(out, ui.RenderDialTable(rows))
	return nil
}

// bindDials labels each dial with the role whose name it carries. Bound
// dials come first in role order, the rest keep server order.
func bindDials(reg *dial.Registry, listing []dial.Dial) []DialInfo {
	byName := make(map[string]dial.Role, len(dial.Roles))
	for _, r := range dial.Roles {
		byName[reg.Name(r)] = r
	}

	infos := make([]DialInfo, 0, len(listing))
	rank := make([]int, 0, len(listing))
	for _, d := range listing {
		info := DialInfo{
			Name:      d.Name,
			UID:       d.UID,
			Value:     int(d.Value),
			Backlight: d.Backlight,
			ImageFile: d.ImageFile,
		}
		order := len(dial.Roles)
		if r, ok := byName[d.Name]; ok {
			info.Role = r.String()
			order = int(r)
		}
		infos = append(infos, info)
		rank = append(rank, order)
	}

	idx := make([]int, len(infos))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return rank[idx[a]] < rank[idx[b]] })

	sorted := make([]DialInfo, len(infos))
	for i, j := range idx {
		sorted[i] = infos[j]
	}
	return sorted
}

func formatBacklight(b dial.Backlight) string {
	if b.Red == 0 && b.Green == 0 && b.Blue == 0 {
		return "off"
	}
	return fmt.Sprintf("R%.0f G%.0f B%.0f", b.Red, b.Green, b.Blue)
}
