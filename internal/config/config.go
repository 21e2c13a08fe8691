package config

import (
	"github.com/quarry-dev/quarry/internal/ingest"
	"github.com/quarry-dev/quarry/internal/lang"
)

// Config represents the complete quarry configuration.
// It can be loaded from .quarry/config.yml with environment variable overrides.
type Config struct {
	Ingest IngestConfig `yaml:"ingest" mapstructure:"ingest"`
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Watch  WatchConfig  `yaml:"watch" mapstructure:"watch"`
}

// IngestConfig configures the ingestion engine.
type IngestConfig struct {
	Languages            []string `yaml:"languages" mapstructure:"languages"`                         // language IDs to enable; empty enables all
	MaxConcurrency       int      `yaml:"max_concurrency" mapstructure:"max_concurrency"`             // 0 means number of CPUs
	IncludeDocumentation bool     `yaml:"include_documentation" mapstructure:"include_documentation"` // keep doc text on symbols
	MaxFileBytes         int64    `yaml:"max_file_bytes" mapstructure:"max_file_bytes"`               // per-file size cap
	MaxTotalBytes        int64    `yaml:"max_total_bytes" mapstructure:"max_total_bytes"`             // per-run size cap
}

// PathsConfig defines which files the driver feeds into the engine.
type PathsConfig struct {
	Include      []string `yaml:"include" mapstructure:"include"`             // glob patterns to walk
	Ignore       []string `yaml:"ignore" mapstructure:"ignore"`               // glob patterns to skip
	UseGitignore bool     `yaml:"use_gitignore" mapstructure:"use_gitignore"` // honor .gitignore files
}

// OutputConfig defines where the assembled index lands.
type OutputConfig struct {
	JSONPath string `yaml:"json_path" mapstructure:"json_path"` // empty disables the JSON export
	DBPath   string `yaml:"db_path" mapstructure:"db_path"`     // SQLite snapshot location
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" mapstructure:"debounce_ms"` // quiet period before re-ingesting
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Ingest: IngestConfig{
			Languages:            nil, // all supported
			MaxConcurrency:       0,   // number of CPUs
			IncludeDocumentation: true,
			MaxFileBytes:         ingest.DefaultMaxFileBytes,
			MaxTotalBytes:        ingest.DefaultMaxTotalBytes,
		},
		Paths: PathsConfig{
			Include: []string{
				"**/*.py",
				"**/*.ts",
				"**/*.tsx",
				"**/*.js",
				"**/*.jsx",
				"**/*.go",
				"**/*.java",
				"**/*.rb",
				"**/*.rs",
				"**/*.c",
				"**/*.h",
				"**/*.php",
			},
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
			},
			UseGitignore: true,
		},
		Output: OutputConfig{
			JSONPath: "",
			DBPath:   ".quarry/index.db",
		},
		Watch: WatchConfig{
			DebounceMS: 500,
		},
	}
}

// EngineOptions converts the validated configuration into engine options.
// Call Validate first: an unknown language ID is a fatal startup error, not
// something the engine sees.
func (c *Config) EngineOptions() (ingest.Options, error) {
	opts := ingest.Options{
		MaxConcurrency:       c.Ingest.MaxConcurrency,
		IncludeDocumentation: c.Ingest.IncludeDocumentation,
		MaxFileBytes:         c.Ingest.MaxFileBytes,
		MaxTotalBytes:        c.Ingest.MaxTotalBytes,
	}
	for _, id := range c.Ingest.Languages {
		l, err := lang.Parse(id)
		if err != nil {
			return ingest.Options{}, err
		}
		opts.Languages = append(opts.Languages, l)
	}
	return opts, nil
}
