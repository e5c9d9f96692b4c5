package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/vu1/internal/client"
	"github.com/rileyhilliard/vu1/internal/config"
	"github.com/rileyhilliard/vu1/internal/errors"
	"github.com/rileyhilliard/vu1/internal/ui"
)

// checkTimeout bounds the connection test run by init.
const checkTimeout = 3 * time.Second

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string // Where to write the config; defaults to ./vu1.yaml
	Hostname       string // Pre-specified VU1 server host
	Port           int    // Pre-specified VU1 server port
	Key            string // Pre-specified API key
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use flags and defaults
	Out            io.Writer
}

var (
	initOpts  InitOptions
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a vu1.yaml config",
	Long: `Create vu1.yaml in the current directory.

Prompts for the VU1 server address and API key when run in a terminal,
then checks the server answers before saving.

Examples:
  vu1 init
  vu1 init --key cTpAWYuRpA2zx75Yh961Cg --non-interactive`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initOpts
		opts.Overwrite = initForce
		opts.Out = cmd.OutOrStdout()
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			opts.NonInteractive = true
		}
		return Init(cmd.Context(), opts)
	},
}

func init() {
	d := config.DefaultConfig()
	initCmd.Flags().StringVar(&initOpts.Hostname, "hostname", "", fmt.Sprintf("VU1 server host (default %s)", d.Server.Hostname))
	initCmd.Flags().IntVar(&initOpts.Port, "port", 0, fmt.Sprintf("VU1 server port (default %d)", d.Server.Port))
	initCmd.Flags().StringVar(&initOpts.Key, "key", "", "VU1 server API key")
	initCmd.Flags().BoolVar(&initOpts.NonInteractive, "non-interactive", false, "don't prompt, use flags and defaults")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	rootCmd.AddCommand(initCmd)
}

// Init writes a new vu1.yaml.
func Init(ctx context.Context, opts InitOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	configPath := opts.Path
	if configPath == "" {
		configPath = config.ConfigFileName
	}

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", configPath)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if opts.Hostname != "" {
		cfg.Server.Hostname = opts.Hostname
	}
	if opts.Port != 0 {
		cfg.Server.Port = opts.Port
	}
	cfg.Server.Key = opts.Key

	if !opts.NonInteractive {
		if err := promptServer(cfg); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	// Test the server before saving
	fmt.Fprintln(out)
	spinner := ui.NewSpinner(out, "Checking VU1 server at "+cfg.Server.URL())
	spinner.Start()
	count, err := checkServer(ctx, cfg)
	if err != nil {
		spinner.Fail()
		fmt.Fprintf(out, "\n%s %v\n\n", ui.SymbolFail, err)

		if opts.NonInteractive {
			fmt.Fprintf(out, "%s Saving anyway; start the VU1 server before 'vu1 run'\n", ui.WarningStyle().Render(ui.SymbolPending))
		} else {
			var saveAnyway bool
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title("Save config anyway? (You can start the server later)").
						Value(&saveAnyway),
				),
			)
			if formErr := form.Run(); formErr != nil || !saveAnyway {
				return errors.WrapWithCode(err, errors.ErrServer,
					"Couldn't reach the VU1 server at "+cfg.Server.URL(),
					"Check the VU1 server is running and the host, port and key are right")
			}
		}
	} else {
		spinner.Success()
		fmt.Fprintf(out, "  found %d dial(s)\n\n", count)
	}

	if err := config.Write(configPath, cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Fprintf(out, "%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  vu1 dials   - See which dials are bound")
	fmt.Fprintln(out, "  vu1 start   - Start the monitor in the background")
	fmt.Fprintln(out, "  vu1 status  - Check the monitor")

	return nil
}

func promptServer(cfg *config.Config) error {
	port := strconv.Itoa(cfg.Server.Port)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("VU1 server host").
				Placeholder(cfg.Server.Hostname).
				Value(&cfg.Server.Hostname).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("host is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("VU1 server port").
				Value(&port).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 1 || n > 65535 {
						return fmt.Errorf("port must be a number between 1 and 65535")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("API key").
				Description("Shown in the VU1 server's settings").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Server.Key),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive")
	}

	n, _ := strconv.Atoi(port)
	cfg.Server.Port = n
	return nil
}

// checkServer lists dials once, without retries.
func checkServer(ctx context.Context, cfg *config.Config) (int, error) {
	c := client.New(client.Options{
		BaseURL: cfg.Server.URL(),
		Key:     cfg.Server.Key,
		Timeout: checkTimeout,
	})
	dials, err := c.ListDials(ctx)
	if err != nil {
		return 0, err
	}
	return len(dials), nil
}
