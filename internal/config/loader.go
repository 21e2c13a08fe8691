package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (QUARRY_*)
// 2. Config file (.quarry/config.yml or .quarry/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".quarry")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("QUARRY")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., QUARRY_INGEST_MAX_CONCURRENCY)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("ingest.max_concurrency")
	v.BindEnv("ingest.include_documentation")
	v.BindEnv("ingest.max_file_bytes")
	v.BindEnv("ingest.max_total_bytes")
	v.BindEnv("output.json_path")
	v.BindEnv("output.db_path")
	v.BindEnv("watch.debounce_ms")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults plus env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("ingest.languages", defaults.Ingest.Languages)
	v.SetDefault("ingest.max_concurrency", defaults.Ingest.MaxConcurrency)
	v.SetDefault("ingest.include_documentation", defaults.Ingest.IncludeDocumentation)
	v.SetDefault("ingest.max_file_bytes", defaults.Ingest.MaxFileBytes)
	v.SetDefault("ingest.max_total_bytes", defaults.Ingest.MaxTotalBytes)

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)
	v.SetDefault("paths.use_gitignore", defaults.Paths.UseGitignore)

	v.SetDefault("output.json_path", defaults.Output.JSONPath)
	v.SetDefault("output.db_path", defaults.Output.DBPath)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMS)
}

// LoadConfig is a convenience function that creates a loader and loads config
// from the current working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
