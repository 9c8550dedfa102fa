package ratelimit

import (
	"time"

	"github.com/shieldkit/shieldkit/logger"
)

// Config configures an admission Limiter.
type Config struct {
	// Name identifies this limiter for metrics/logging.
	Name string `yaml:"name" mapstructure:"name"`
	// Capacity is the maximum number of tokens the bucket holds.
	Capacity float64 `yaml:"capacity" mapstructure:"capacity" validate:"gte=0"`
	// RefillRate is the number of tokens added per second.
	RefillRate float64 `yaml:"refill_rate" mapstructure:"refill_rate" validate:"gte=0"`
	// WaitTimeout is the maximum projected wait a caller will be queued for.
	// Requests whose projected wait exceeds this budget fail immediately with
	// ErrAdmissionTimeout.
	WaitTimeout time.Duration `yaml:"wait_timeout" mapstructure:"wait_timeout" validate:"gte=0"`
	// Logger receives structured limiter events. Nil uses the global logger.
	Logger *logger.Logger `yaml:"-" mapstructure:"-"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		Capacity:    20,
		RefillRate:  10.0,
		WaitTimeout: 5 * time.Second,
	}
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Capacity <= 0 {
		c.Capacity = 20
	}
	if c.RefillRate <= 0 {
		c.RefillRate = 10.0
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = 5 * time.Second
	}
}

// refillInterval returns the proactive refill tick period, one token's worth
// of time, floored so the ticker never receives a non-positive duration.
func (c *Config) refillInterval() time.Duration {
	d := time.Duration(float64(time.Second) / c.RefillRate)
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}
