// Package config loads runtime configuration from defaults, an optional
// config file and ENRGY_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults. Worker count and byte caps match the original fixed constants;
// they are exposed here so deployments can tune them.
const (
	DefaultAddr            = ":8080"
	DefaultWorkers         = 4
	DefaultMaxRequestBytes = 8 * 1024
	DefaultReadChunkSize   = 512
	DefaultPollInterval    = 100 * time.Millisecond
	DefaultMaxConns        = 0 // unlimited
	DefaultEnv             = "development"
)

// Config holds all server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string `mapstructure:"addr"`

	// Workers is the fixed worker pool size.
	Workers int `mapstructure:"workers"`

	// MaxRequestBytes caps the total bytes read from one connection.
	MaxRequestBytes int `mapstructure:"max-request-bytes"`

	// ReadChunkSize is the per-read chunk size.
	ReadChunkSize int `mapstructure:"read-chunk-size"`

	// PollInterval is the idle dequeue timeout at which workers observe
	// shutdown.
	PollInterval time.Duration `mapstructure:"poll-interval"`

	// MaxConns bounds concurrently accepted connections; 0 means no bound.
	MaxConns int `mapstructure:"max-conns"`

	// Env selects the environment (development/production).
	Env string `mapstructure:"env"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:            DefaultAddr,
		Workers:         DefaultWorkers,
		MaxRequestBytes: DefaultMaxRequestBytes,
		ReadChunkSize:   DefaultReadChunkSize,
		PollInterval:    DefaultPollInterval,
		MaxConns:        DefaultMaxConns,
		Env:             DefaultEnv,
	}
}

// Load reads configuration from the optional file at path, overlaid with
// ENRGY_* environment variables on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("addr", DefaultAddr)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("max-request-bytes", DefaultMaxRequestBytes)
	v.SetDefault("read-chunk-size", DefaultReadChunkSize)
	v.SetDefault("poll-interval", DefaultPollInterval)
	v.SetDefault("max-conns", DefaultMaxConns)
	v.SetDefault("env", DefaultEnv)

	v.SetEnvPrefix("ENRGY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.ReadChunkSize <= 0 {
		return fmt.Errorf("read-chunk-size must be positive, got %d", c.ReadChunkSize)
	}
	if c.MaxRequestBytes < c.ReadChunkSize {
		return fmt.Errorf("max-request-bytes (%d) must be at least read-chunk-size (%d)",
			c.MaxRequestBytes, c.ReadChunkSize)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be positive, got %s", c.PollInterval)
	}
	if c.MaxConns < 0 {
		return fmt.Errorf("max-conns must not be negative, got %d", c.MaxConns)
	}
	return nil
}
