package cache

import (
	"fmt"
	"time"

	"github.com/shieldkit/shieldkit/logger"
)

// Config configures a Cache.
type Config struct {
	// Name identifies this cache for metrics/logging.
	Name string `yaml:"name" mapstructure:"name"`
	// Dir is the backing directory. It is exclusively owned by the cache.
	Dir string `yaml:"dir" mapstructure:"dir" validate:"required"`
	// MaxSize is the maximum total payload size in bytes.
	MaxSize int64 `yaml:"max_size" mapstructure:"max_size" validate:"gte=0"`
	// MaxAge is the default time-to-live for stored entries.
	MaxAge time.Duration `yaml:"max_age" mapstructure:"max_age" validate:"gte=0"`
	// CleanupInterval is the period of the background expiry sweep.
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval" validate:"gte=0"`
	// Logger receives structured cache events. Nil uses the global logger.
	Logger *logger.Logger `yaml:"-" mapstructure:"-"`
}

// DefaultConfig returns sensible defaults rooted at dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:             dir,
		MaxSize:         50 << 20, // 50 MiB
		MaxAge:          time.Hour,
		CleanupInterval: 5 * time.Minute,
	}
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxSize <= 0 {
		c.MaxSize = 50 << 20
	}
	if c.MaxAge <= 0 {
		c.MaxAge = time.Hour
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = 5 * time.Minute
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("cache: dir is required")
	}
	return nil
}
