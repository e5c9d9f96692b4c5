package config

import (
	"time"

	"github.com/rileyhilliard/vu1/internal/dial"
)

// Config represents the complete vu1.yaml configuration file.
type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Dials   DialsConfig   `yaml:"dials" mapstructure:"dials"`
	Monitor MonitorConfig `yaml:"monitor" mapstructure:"monitor"`
	Images  ImagesConfig  `yaml:"images" mapstructure:"images"`
	Lock    LockConfig    `yaml:"lock" mapstructure:"lock"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// ServerConfig describes how to reach the VU1 server and how hard to try.
type ServerConfig struct {
	Hostname string `yaml:"hostname" mapstructure:"hostname"`
	Port     int    `yaml:"port" mapstructure:"port"`

	// Key is the static API key sent as the "key" query parameter.
	Key string `yaml:"key" mapstructure:"key"`

	// Timeout bounds a single HTTP call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Retries is how many extra attempts a timed out call gets.
	Retries int `yaml:"retries" mapstructure:"retries"`

	// RetryInterval is the pause between timed out attempts.
	RetryInterval time.Duration `yaml:"retry_interval" mapstructure:"retry_interval"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	// Level is one of: debug, info, warning, error, critical.
	Level string `yaml:"level" mapstructure:"level"`
}

// DialConfig binds a metric to the display name of a dial on the server.
type DialConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
}

// GPUDialConfig is a DialConfig plus the sampling backend.
type GPUDialConfig struct {
	Name string `yaml:"name" mapstructure:"name"`

	// Backend selects the GPU sampler: "auto", "nvidia", "amd", or "none".
	Backend string `yaml:"backend" mapstructure:"backend"`
}

// DialsConfig holds the per-role dial bindings.
type DialsConfig struct {
	CPU     DialConfig    `yaml:"cpu" mapstructure:"cpu"`
	GPU     GPUDialConfig `yaml:"gpu" mapstructure:"gpu"`
	Memory  DialConfig    `yaml:"memory" mapstructure:"memory"`
	Network DialConfig    `yaml:"network" mapstructure:"network"`
}

// Names returns the configured display name for each role.
func (d DialsConfig) Names() dial.Names {
	return dial.Names{
		dial.RoleCPU:     d.CPU.Name,
		dial.RoleGPU:     d.GPU.Name,
		dial.RoleMemory:  d.Memory.Name,
		dial.RoleNetwork: d.Network.Name,
	}
}

// MonitorConfig controls the monitoring loop.
type MonitorConfig struct {
	// Interval is the sleep between ticks.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ImagesConfig locates the default dial images used by "vu1 reset image".
type ImagesConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LockConfig locates the pid lock record.
type LockConfig struct {
	// File is resolved relative to the working directory.
	File string `yaml:"file" mapstructure:"file"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	// Listen is a host:port; empty disables the endpoint.
	Listen string `yaml:"listen" mapstructure:"listen"`
}

// Default GPU backends.
const (
	GPUBackendAuto   = "auto"
	GPUBackendNvidia = "nvidia"
	GPUBackendAMD    = "amd"
	GPUBackendNone   = "none"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Hostname:      "localhost",
			Port:          5340,
			Timeout:       5 * time.Second,
			Retries:       3,
			RetryInterval: time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Dials: DialsConfig{
			CPU:     DialConfig{Name: "CPU"},
			GPU:     GPUDialConfig{Name: "GPU", Backend: GPUBackendAuto},
			Memory:  DialConfig{Name: "MEMORY"},
			Network: DialConfig{Name: "NETWORK"},
		},
		Monitor: MonitorConfig{
			Interval: 2 * time.Second,
		},
		Images: ImagesConfig{
			Dir: "static",
		},
		Lock: LockConfig{
			File: "monitoring.lock",
		},
	}
}
