package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := &Config{Name: "test"}
	cfg.ApplyDefaults()

	if cfg.Environment != "development" {
		t.Errorf("expected development environment, got %s", cfg.Environment)
	}
	if !cfg.Debug {
		t.Error("expected debug enabled in development")
	}
	if cfg.RateLimit.Capacity <= 0 {
		t.Error("expected defaulted rate limit capacity")
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("expected default retry policy, got %d attempts", cfg.Retry.MaxAttempts)
	}
	if cfg.Cache.Dir == "" {
		t.Error("expected defaulted cache dir")
	}
	if cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("expected default sample rate 1.0, got %f", cfg.Telemetry.SampleRate)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{Name: "test"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaulted config should validate: %v", err)
	}

	cfg = &Config{Name: "test"}
	cfg.ApplyDefaults()
	cfg.Environment = "sandbox"
	if err := cfg.Validate(); err == nil {
		t.Error("invalid environment should fail validation")
	}

	cfg = &Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("missing name should fail validation")
	}

	cfg = &Config{Name: "test"}
	cfg.ApplyDefaults()
	cfg.Telemetry.SampleRate = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("sample rate over 1.0 should fail validation")
	}
}

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yml")
	content := `
name: profile-service
environment: staging
ratelimit:
  capacity: 40
  refill_rate: 20
  wait_timeout: 2s
retry:
  max_attempts: 5
  initial_delay: 250ms
  max_delay: 8s
  multiplier: 2
  jitter_fraction: 0.2
cache:
  dir: ` + filepath.Join(dir, "cache") + `
  max_size: 1048576
  max_age: 30m
  cleanup_interval: 1m
`
	if err := os.WriteFile(configFile, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := Load("profile-service", LoaderConfig{ConfigFile: configFile})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Environment != "staging" {
		t.Errorf("expected staging, got %s", cfg.Environment)
	}
	if cfg.RateLimit.Capacity != 40 || cfg.RateLimit.RefillRate != 20 {
		t.Errorf("unexpected ratelimit config: %+v", cfg.RateLimit)
	}
	if cfg.RateLimit.WaitTimeout != 2*time.Second {
		t.Errorf("expected 2s wait timeout, got %v", cfg.RateLimit.WaitTimeout)
	}
	if cfg.Retry.MaxAttempts != 5 || cfg.Retry.JitterFraction != 0.2 {
		t.Errorf("unexpected retry config: %+v", cfg.Retry)
	}
	if cfg.Cache.MaxSize != 1048576 || cfg.Cache.MaxAge != 30*time.Minute {
		t.Errorf("unexpected cache config: %+v", cfg.Cache)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("bare-service", LoaderConfig{})
	if err != nil {
		t.Fatalf("load without a config file should use defaults: %v", err)
	}
	if cfg.Name != "bare-service" {
		t.Errorf("expected service name fallback, got %s", cfg.Name)
	}
	if cfg.RateLimit.Capacity <= 0 {
		t.Error("expected defaulted rate limit")
	}
}

func TestLoad_InvalidFileFails(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(configFile, []byte("environment: sandbox\n"), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	if _, err := Load("svc", LoaderConfig{ConfigFile: configFile}); err == nil {
		t.Error("invalid environment should fail load")
	}
}

type fakeFS struct {
	existing map[string]bool
}

func (f *fakeFS) Exists(path string) bool { return f.existing[path] }
func (f *fakeFS) LoadEnv(string) error    { return nil }

func TestResolver_ResolveFiles(t *testing.T) {
	r := &Resolver{FileSystem: &fakeFS{existing: map[string]bool{
		"./config/config.yml": true,
		".env":                true,
	}}}

	resolved := r.ResolveFiles("svc", LoaderConfig{})
	if resolved.ConfigFile != "./config/config.yml" {
		t.Errorf("unexpected config file: %s", resolved.ConfigFile)
	}
	if resolved.EnvFile != ".env" {
		t.Errorf("unexpected env file: %s", resolved.EnvFile)
	}

	// Explicit paths win over discovery.
	resolved = r.ResolveFiles("svc", LoaderConfig{ConfigFile: "/etc/svc.yml"})
	if resolved.ConfigFile != "/etc/svc.yml" {
		t.Errorf("explicit path should win, got %s", resolved.ConfigFile)
	}
}
