package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileServer mirrors ServerConfig with durations as strings so the
// written file reads "5s" rather than nanoseconds.
type fileServer struct {
	Hostname      string `yaml:"hostname"`
	Port          int    `yaml:"port"`
	Key           string `yaml:"key"`
	Timeout       string `yaml:"timeout"`
	Retries       int    `yaml:"retries"`
	RetryInterval string `yaml:"retry_interval"`
}

type fileMonitor struct {
	Interval string `yaml:"interval"`
}

type fileConfig struct {
	Server  fileServer    `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Dials   DialsConfig   `yaml:"dials"`
	Monitor fileMonitor   `yaml:"monitor"`
	Images  ImagesConfig  `yaml:"images"`
	Lock    LockConfig    `yaml:"lock"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// Marshal renders cfg as vu1.yaml content.
func Marshal(cfg *Config) ([]byte, error) {
	doc := fileConfig{
		Server: fileServer{
			Hostname:      cfg.Server.Hostname,
			Port:          cfg.Server.Port,
			Key:           cfg.Server.Key,
			Timeout:       cfg.Server.Timeout.String(),
			Retries:       cfg.Server.Retries,
			RetryInterval: cfg.Server.RetryInterval.String(),
		},
		Logging: cfg.Logging,
		Dials:   cfg.Dials,
		Monitor: fileMonitor{Interval: cfg.Monitor.Interval.String()},
		Images:  cfg.Images,
		Lock:    cfg.Lock,
		Metrics: cfg.Metrics,
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

// Write saves cfg to path, creating parent directories. The file holds the
// API key, so it is only readable by the owner.
func Write(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
