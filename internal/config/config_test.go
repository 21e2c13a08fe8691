package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-dev/quarry/internal/lang"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Validate(Default()))
}

func TestValidateRejectsUnknownLanguage(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Ingest.Languages = []string{"python", "cobol"}
	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownLanguage)
	assert.Contains(t, err.Error(), "cobol")
}

func TestValidateRejectsNegativeLimits(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Ingest.MaxConcurrency = -1
	cfg.Ingest.MaxFileBytes = -1
	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConcurrency)
	assert.ErrorIs(t, err, ErrInvalidSizeLimit)
}

func TestEngineOptions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Ingest.Languages = []string{"python", "go"}
	cfg.Ingest.MaxConcurrency = 4

	opts, err := cfg.EngineOptions()
	require.NoError(t, err)
	assert.Equal(t, []lang.Language{lang.Python, lang.Go}, opts.Languages)
	assert.Equal(t, 4, opts.MaxConcurrency)
	assert.True(t, opts.IncludeDocumentation)
}

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfigFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default().Output.DBPath, cfg.Output.DBPath)
	assert.True(t, cfg.Ingest.IncludeDocumentation)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".quarry"), 0o755))
	yml := []byte("ingest:\n  languages: [python]\n  max_concurrency: 2\noutput:\n  json_path: out.json\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".quarry", "config.yml"), yml, 0o644))

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"python"}, cfg.Ingest.Languages)
	assert.Equal(t, 2, cfg.Ingest.MaxConcurrency)
	assert.Equal(t, "out.json", cfg.Output.JSONPath)
	// Untouched sections keep their defaults.
	assert.Equal(t, Default().Watch.DebounceMS, cfg.Watch.DebounceMS)
}

func TestLoadRejectsInvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".quarry"), 0o755))
	yml := []byte("ingest:\n  languages: [fortran]\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".quarry", "config.yml"), yml, 0o644))

	_, err := LoadConfigFromDir(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownLanguage)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("QUARRY_INGEST_MAX_CONCURRENCY", "7")

	cfg, err := LoadConfigFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Ingest.MaxConcurrency)
}
