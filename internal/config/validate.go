package config

import (
	"fmt"
	"slices"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"auto", "text", "json"}
)

// Validate checks the resolved configuration for values that would
// fail later in confusing ways. Share coordinates are validated by the
// commands that need them, since docs-only commands run without any.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.Logging.LogLevel) {
		return fmt.Errorf("config: invalid log_level %q (one of: debug, info, warn, error)", c.Logging.LogLevel)
	}

	if !slices.Contains(validLogFormats, c.Logging.LogFormat) {
		return fmt.Errorf("config: invalid log_format %q (one of: auto, text, json)", c.Logging.LogFormat)
	}

	if c.Transfers.ParallelUploads < 1 {
		return fmt.Errorf("config: parallel_uploads must be at least 1, got %d", c.Transfers.ParallelUploads)
	}

	if c.Logging.MaxSizeMB < 1 {
		return fmt.Errorf("config: max_size_mb must be at least 1, got %d", c.Logging.MaxSizeMB)
	}

	return nil
}
