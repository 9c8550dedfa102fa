package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds explicit file paths for Load. Empty fields are resolved
// by searching standard locations.
type LoaderConfig struct {
	ConfigFile string
	EnvFile    string
}

// Resolver handles finding config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolveFiles finds config and env files for a service.
// Returns explicit paths if provided, otherwise searches for them.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) LoaderConfig {
	resolved := opts
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.findFirst([]string{
			fmt.Sprintf("./config/%s.yml", serviceName),
			"./config/config.yml",
			"./config.yml",
		})
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.findFirst([]string{
			fmt.Sprintf(".env.%s", serviceName),
			".env",
		})
	}
	return resolved
}

func (r *Resolver) findFirst(paths []string) string {
	for _, path := range paths {
		if r.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

// Load reads configuration for serviceName from the resolved YAML file and
// environment, applies defaults, and validates the result. Environment
// variables override file values using the SHIELDKIT_ prefix, e.g.
// SHIELDKIT_CACHE_MAX_SIZE overrides cache.max_size.
func Load(serviceName string, opts LoaderConfig) (*Config, error) {
	resolver := &Resolver{FileSystem: &RealFileSystem{}}
	resolved := resolver.ResolveFiles(serviceName, opts)

	if resolved.EnvFile != "" {
		if err := resolver.FileSystem.LoadEnv(resolved.EnvFile); err != nil {
			return nil, fmt.Errorf("config: load env file %s: %w", resolved.EnvFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("SHIELDKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if resolved.ConfigFile != "" {
		v.SetConfigFile(resolved.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", resolved.ConfigFile, err)
		}
	}

	cfg := &Config{Name: serviceName}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
