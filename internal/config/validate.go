package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quarry-dev/quarry/internal/lang"
)

var (
	// ErrUnknownLanguage indicates an unrecognized language identifier.
	ErrUnknownLanguage = errors.New("unknown language")

	// ErrInvalidConcurrency indicates a negative worker limit.
	ErrInvalidConcurrency = errors.New("invalid concurrency")

	// ErrInvalidSizeLimit indicates a negative size cap.
	ErrInvalidSizeLimit = errors.New("invalid size limit")

	// ErrInvalidDebounce indicates a non-positive watch debounce.
	ErrInvalidDebounce = errors.New("invalid debounce")
)

// Validate checks that the configuration is valid and complete. This runs
// before any file is processed; a failure here is the run's only fatal
// error path.
func Validate(cfg *Config) error {
	var errs []error

	for _, id := range cfg.Ingest.Languages {
		if _, err := lang.Parse(id); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownLanguage, id, supportedIDs()))
		}
	}
	if cfg.Ingest.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("%w: max_concurrency cannot be negative, got %d", ErrInvalidConcurrency, cfg.Ingest.MaxConcurrency))
	}
	if cfg.Ingest.MaxFileBytes < 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_bytes cannot be negative, got %d", ErrInvalidSizeLimit, cfg.Ingest.MaxFileBytes))
	}
	if cfg.Ingest.MaxTotalBytes < 0 {
		errs = append(errs, fmt.Errorf("%w: max_total_bytes cannot be negative, got %d", ErrInvalidSizeLimit, cfg.Ingest.MaxTotalBytes))
	}
	if cfg.Watch.DebounceMS <= 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms must be positive, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMS))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func supportedIDs() string {
	ids := make([]string, 0, len(lang.All()))
	for _, l := range lang.All() {
		ids = append(ids, string(l))
	}
	return strings.Join(ids, ", ")
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
