package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/vu1/internal/config"
	"github.com/rileyhilliard/vu1/internal/dial"
	"github.com/rileyhilliard/vu1/internal/errors"
	"github.com/rileyhilliard/vu1/internal/logger"
	"github.com/rileyhilliard/vu1/internal/ui"
)

// BacklightOptions selects the colour, brightness, and target dial.
type BacklightOptions struct {
	Colour     string
	Brightness string

	// Dial is a role name; empty means every dial.
	Dial string
}

var backlightOpts BacklightOptions

var backlightCmd = &cobra.Command{
	Use:   "backlight",
	Short: "Set dial backlights",
	Long: `Set the backlight of one dial, or of every dial when --dial is omitted.

Colours: ` + strings.Join(dial.ColourNames(), ", ") + `
Brightness: ` + strings.Join(dial.BrightnessNames(), ", ") + `

Examples:
  vu1 backlight
  vu1 backlight --colour RED --brightness MAX --dial CPU`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		return Backlight(ctx, cfg, log, cmd.OutOrStdout(), backlightOpts)
	},
}

func init() {
	backlightCmd.Flags().StringVar(&backlightOpts.Colour, "colour", "WHITE", "backlight colour")
	backlightCmd.Flags().StringVar(&backlightOpts.Brightness, "brightness", "LOW", "backlight brightness")
	backlightCmd.Flags().StringVar(&backlightOpts.Dial, "dial", "", "only this dial (CPU, GPU, MEMORY, NETWORK)")
	rootCmd.AddCommand(backlightCmd)
}

// Backlight sets the requested backlight. With no dial every role is
// tried and roles without a dial are skipped with a warning.
func Backlight(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer, opts BacklightOptions) error {
	colour, err := dial.BacklightFor(opts.Colour, opts.Brightness)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
			"Colours: "+strings.Join(dial.ColourNames(), ", ")+". Brightness: "+strings.Join(dial.BrightnessNames(), ", "))
	}

	roles := dial.Roles
	single := opts.Dial != ""
	if single {
		role, err := dial.ParseRole(opts.Dial)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Pass --dial CPU, GPU, MEMORY or NETWORK")
		}
		roles = []dial.Role{role}
	}

	c, err := connect(ctx, cfg, log, nil)
	if err != nil {
		return err
	}

	for _, role := range roles {
		err := c.SetBacklight(ctx, role, colour)
		switch {
		case err == nil:
			fmt.Fprintf(out, "%s %s backlight set\n", ui.SuccessStyle().Render(ui.SymbolSuccess), role)
		case stderrors.Is(err, dial.ErrDialNotImplemented):
			if single {
				log.Error("%s backlight not set: dial not found", role)
			} else {
				log.Warn("%s backlight not set: dial not found", role)
			}
		default:
			return serverError(log, fmt.Errorf("failed to set %s backlight: %w", role, err))
		}
	}
	return nil
}
