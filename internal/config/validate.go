package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/vu1/internal/errors"
	"github.com/rileyhilliard/vu1/internal/logger"
)

// MinMonitorInterval keeps the loop from hammering the VU1 server.
const MinMonitorInterval = 500 * time.Millisecond

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if err := validateServer(cfg.Server); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'server' section in your vu1.yaml.")
	}

	if _, err := logger.ParseLevel(cfg.Logging.Level); err != nil {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("logging.level '%s' isn't valid", cfg.Logging.Level),
			"Use one of: debug, info, warning, error, critical.")
	}

	if err := validateDials(cfg.Dials); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'dials' section in your vu1.yaml.")
	}

	if cfg.Monitor.Interval < MinMonitorInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("monitor.interval %v is too short", cfg.Monitor.Interval),
			fmt.Sprintf("Minimum interval is %v to avoid overwhelming the VU1 server", MinMonitorInterval))
	}

	if strings.TrimSpace(cfg.Lock.File) == "" {
		return errors.New(errors.ErrConfig,
			"lock.file can't be empty",
			"Set it to a path like 'monitoring.lock'.")
	}

	return nil
}

// validateServer checks server connection settings.
func validateServer(s ServerConfig) error {
	if strings.TrimSpace(s.Hostname) == "" {
		return fmt.Errorf("server.hostname can't be empty")
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("server.port needs to be 1-65535 (got %d)", s.Port)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("server.timeout needs to be positive (got %v)", s.Timeout)
	}
	if s.Retries < 0 {
		return fmt.Errorf("server.retries can't be negative (got %d)", s.Retries)
	}
	if s.RetryInterval < 0 {
		return fmt.Errorf("server.retry_interval can't be negative (got %v)", s.RetryInterval)
	}
	return nil
}

// validateDials checks that every role has a distinct display name.
func validateDials(d DialsConfig) error {
	names := []struct {
		key  string
		name string
	}{
		{"dials.cpu.name", d.CPU.Name},
		{"dials.gpu.name", d.GPU.Name},
		{"dials.memory.name", d.Memory.Name},
		{"dials.network.name", d.Network.Name},
	}

	seen := make(map[string]string)
	for _, n := range names {
		if strings.TrimSpace(n.name) == "" {
			return fmt.Errorf("%s can't be empty", n.key)
		}
		if other, ok := seen[n.name]; ok {
			return fmt.Errorf("%s and %s are both '%s' - each dial needs its own name", other, n.key, n.name)
		}
		seen[n.name] = n.key
	}

	switch d.GPU.Backend {
	case GPUBackendAuto, GPUBackendNvidia, GPUBackendAMD, GPUBackendNone, "":
	default:
		return fmt.Errorf("dials.gpu.backend '%s' isn't valid - use 'auto', 'nvidia', 'amd', or 'none'", d.GPU.Backend)
	}

	return nil
}
