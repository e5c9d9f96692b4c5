package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/vu1/internal/client"
	"github.com/rileyhilliard/vu1/internal/config"
	"github.com/rileyhilliard/vu1/internal/dial"
	"github.com/rileyhilliard/vu1/internal/errors"
	"github.com/rileyhilliard/vu1/internal/logger"
	"github.com/rileyhilliard/vu1/internal/ui"
)

var imageDial string

var imageCmd = &cobra.Command{
	Use:   "image <file>",
	Short: "Upload a face image to a dial",
	Long: fmt.Sprintf(`Upload a PNG or JPEG face image to one dial.

The image must be exactly %dx%d pixels.

Examples:
  vu1 image static/cpu-load.png --dial CPU`, client.ImageWidth, client.ImageHeight),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		return Image(ctx, cfg, log, cmd.OutOrStdout(), args[0], imageDial)
	},
}

func init() {
	imageCmd.Flags().StringVar(&imageDial, "dial", "", "dial to update (CPU, GPU, MEMORY, NETWORK)")
	_ = imageCmd.MarkFlagRequired("dial")
	rootCmd.AddCommand(imageCmd)
}

// Image validates path and uploads it to the dial bound to roleName.
func Image(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer, path, roleName string) error {
	role, err := dial.ParseRole(roleName)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Pass --dial CPU, GPU, MEMORY or NETWORK")
	}

	c, err := connect(ctx, cfg, log, nil)
	if err != nil {
		return err
	}

	if err := c.SetImage(ctx, role, path); err != nil {
		return serverError(log, err)
	}
	fmt.Fprintf(out, "%s %s image updated\n", ui.SuccessStyle().Render(ui.SymbolSuccess), role)
	return nil
}
