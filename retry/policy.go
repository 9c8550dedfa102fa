package retry

import "time"

// Policy is an immutable value object describing a backoff schedule.
type Policy struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=0"`
	// InitialDelay is the base delay before the second attempt.
	InitialDelay time.Duration `yaml:"initial_delay" mapstructure:"initial_delay" validate:"gte=0"`
	// MaxDelay caps the base delay growth between attempts.
	MaxDelay time.Duration `yaml:"max_delay" mapstructure:"max_delay" validate:"gte=0"`
	// Multiplier is the exponential growth factor applied after each attempt.
	Multiplier float64 `yaml:"multiplier" mapstructure:"multiplier" validate:"gte=0"`
	// JitterFraction randomizes each delay by up to +/- this fraction of the
	// base delay. Clamped to [0, 1].
	JitterFraction float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// DefaultPolicy returns sensible defaults.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       10 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// withDefaults returns a normalized copy with invalid fields clamped.
func (p Policy) withDefaults() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.InitialDelay < 0 {
		p.InitialDelay = 0
	}
	if p.MaxDelay < p.InitialDelay {
		p.MaxDelay = p.InitialDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	if p.JitterFraction < 0 {
		p.JitterFraction = 0
	}
	if p.JitterFraction > 1 {
		p.JitterFraction = 1
	}
	return p
}
