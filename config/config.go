package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shieldkit/shieldkit/cache"
	"github.com/shieldkit/shieldkit/logger"
	"github.com/shieldkit/shieldkit/ratelimit"
	"github.com/shieldkit/shieldkit/retry"
)

// Config is the top-level configuration for a service embedding the
// resilience layer.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging   logger.Config    `yaml:"logging" mapstructure:"logging"`
	RateLimit ratelimit.Config `yaml:"ratelimit" mapstructure:"ratelimit"`
	Retry     retry.Policy     `yaml:"retry" mapstructure:"retry"`
	Cache     cache.Config     `yaml:"cache" mapstructure:"cache"`
	Telemetry TelemetryConfig  `yaml:"telemetry" mapstructure:"telemetry"`
}

// TelemetryConfig controls the optional OpenTelemetry exporters.
type TelemetryConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults applies default values to all sections.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	c.RateLimit.ApplyDefaults()
	if c.Retry.MaxAttempts == 0 {
		c.Retry = retry.DefaultPolicy()
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = filepath.Join(os.TempDir(), "shieldkit", c.Name)
	}
	c.Cache.ApplyDefaults()
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
	}
	if c.Telemetry.MetricInterval <= 0 {
		c.Telemetry.MetricInterval = 15 * time.Second
	}
	if c.Telemetry.SampleRate <= 0 {
		c.Telemetry.SampleRate = 1.0
	}
}

// Validate validates all sections.
func (c *Config) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("config.cache: %w", err)
	}
	return nil
}
