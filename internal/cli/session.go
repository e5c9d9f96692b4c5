package cli

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rileyhilliard/vu1/internal/client"
	"github.com/rileyhilliard/vu1/internal/config"
	"github.com/rileyhilliard/vu1/internal/dial"
	"github.com/rileyhilliard/vu1/internal/errors"
	"github.com/rileyhilliard/vu1/internal/logger"
	"github.com/rileyhilliard/vu1/internal/transport"
)

// loggerName is the name stamped on every log line.
const loggerName = "vu1"

// loadConfig finds, loads, and validates the config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(Config())
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the command logger at the configured level. --verbose
// forces debug.
func newLogger(cfg *config.Config, out io.Writer) logger.Logger {
	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logger.LevelInfo
	}
	if verbose {
		level = logger.LevelDebug
	}
	return logger.New(out, loggerName, level)
}

// setup loads config and a stdout logger for a command.
func setup() (*config.Config, logger.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := newLogger(cfg, os.Stdout)
	logger.SetDefault(log)
	return cfg, log, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// connect builds a client and loads the dial registry.
func connect(ctx context.Context, cfg *config.Config, log logger.Logger, onRetry func(int, error)) (*client.Client, error) {
	c := client.FromConfig(cfg, log, onRetry)
	if _, err := c.Load(ctx); err != nil {
		return nil, serverError(log, err)
	}
	return c, nil
}

// serverError turns a client failure into what a command returns. An
// unreachable server is logged critically and becomes exit status 1.
func serverError(log logger.Logger, err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, transport.ErrServerUnreachable):
		log.Critical("VU1 server unreachable: %v", err)
		return errors.NewExitError(1)
	case stderrors.Is(err, dial.ErrNoDialsReturned):
		return errors.WrapWithCode(err, errors.ErrDial,
			"The VU1 server reported no dials",
			"Check the dials are plugged in and show up in the VU1 server")
	case stderrors.Is(err, dial.ErrNoKnownDials):
		return errors.WrapWithCode(err, errors.ErrDial,
			"None of the server's dials match a configured name",
			"Name your dials CPU, GPU, MEMORY or NETWORK, or set dials.<role>.name in vu1.yaml. 'vu1 dials' shows what the server reports")
	case stderrors.Is(err, dial.ErrDialNotImplemented):
		return errors.WrapWithCode(err, errors.ErrDial,
			"That dial isn't set up",
			"Run 'vu1 dials' to see which roles have a dial")
	}

	var status *transport.StatusError
	if stderrors.As(err, &status) && (status.Code == http.StatusUnauthorized || status.Code == http.StatusForbidden) {
		return errors.WrapWithCode(err, errors.ErrServer,
			"The VU1 server rejected the API key",
			"Set server.key in vu1.yaml or VU1_SERVER_KEY to the key shown in the VU1 server")
	}

	var structured *errors.Error
	if stderrors.As(err, &structured) {
		return err
	}

	return errors.WrapWithCode(err, errors.ErrServer,
		"VU1 server request failed",
		"Run with --verbose for details")
}
