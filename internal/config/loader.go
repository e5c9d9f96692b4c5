package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/vu1/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = "vu1.yaml"
	// GlobalConfigDir is the directory for the per-user config.
	GlobalConfigDir = ".config/vu1"
	// GlobalConfigFile is the per-user config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. VU1_SERVER_KEY.
	EnvPrefix = "VU1"
)

// Load reads config from the specified path. Environment variables
// override file values.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'vu1 init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. vu1.yaml in current directory
// 3. ~/.config/vu1/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	if home, _ := os.UserHomeDir(); home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults
// (still honouring environment overrides) if no file exists.
func LoadOrDefault(explicit string) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return parseConfig(newViper(), "environment")
	}

	return Load(path)
}

// URL returns the base address of the VU1 server.
func (s ServerConfig) URL() string {
	return fmt.Sprintf("http://%s:%d", s.Hostname, s.Port)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, source string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+source)
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal, even when the file doesn't mention it.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.hostname", d.Server.Hostname)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.key", d.Server.Key)
	v.SetDefault("server.timeout", d.Server.Timeout.String())
	v.SetDefault("server.retries", d.Server.Retries)
	v.SetDefault("server.retry_interval", d.Server.RetryInterval.String())
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("dials.cpu.name", d.Dials.CPU.Name)
	v.SetDefault("dials.gpu.name", d.Dials.GPU.Name)
	v.SetDefault("dials.gpu.backend", d.Dials.GPU.Backend)
	v.SetDefault("dials.memory.name", d.Dials.Memory.Name)
	v.SetDefault("dials.network.name", d.Dials.Network.Name)
	v.SetDefault("monitor.interval", d.Monitor.Interval.String())
	v.SetDefault("images.dir", d.Images.Dir)
	v.SetDefault("lock.file", d.Lock.File)
	v.SetDefault("metrics.listen", d.Metrics.Listen)
}
