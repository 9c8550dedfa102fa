// Package config loads and validates configuration for services embedding
// the resilience layer.
//
// Configuration is read from a YAML file (resolved from standard locations or
// an explicit path), overlaid with environment variables using the SHIELDKIT_
// prefix, then defaulted and validated:
//
//	cfg, err := config.Load("my-service", config.LoaderConfig{})
//	if err != nil {
//	    return err
//	}
//	rl := ratelimit.New(cfg.RateLimit)
package config
