package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/vu1/internal/config"
	"github.com/rileyhilliard/vu1/internal/dial"
	"github.com/rileyhilliard/vu1/internal/errors"
	"github.com/rileyhilliard/vu1/internal/logger"
	"github.com/rileyhilliard/vu1/internal/ui"
)

var resetCmd = &cobra.Command{
	Use:   "reset <dial|backlight|image>",
	Short: "Reset every dial",
	Long: `Reset one element of every bound dial:

  dial       move the needle to 0
  backlight  turn the backlight off
  image      upload the default face from images.dir`,
	ValidArgs: []string{string(dial.ElementDial), string(dial.ElementBacklight), string(dial.ElementImage)},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		return Reset(ctx, cfg, log, cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

// Reset restores element on every bound dial.
func Reset(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer, element string) error {
	el, err := dial.ParseElement(element)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Use 'vu1 reset dial', 'vu1 reset backlight' or 'vu1 reset image'")
	}

	c, err := connect(ctx, cfg, log, nil)
	if err != nil {
		return err
	}

	switch el {
	case dial.ElementDial:
		err = c.ResetValues(ctx)
	case dial.ElementBacklight:
		err = c.ResetBacklights(ctx)
	case dial.ElementImage:
		err = c.ResetImages(ctx, cfg.Images.Dir)
	}
	if err != nil {
		return serverError(log, err)
	}

	fmt.Fprintf(out, "%s %s reset on %d dial(s)\n", ui.SuccessStyle().Render(ui.SymbolSuccess), el, c.Registry().Len())
	return nil
}
