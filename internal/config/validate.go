package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.AssetsDir == "" {
		return errors.New("paths.assets_dir must be set")
	}
	if c.Oracle.Binary == "" {
		return errors.New("oracle.binary must be set")
	}
	if c.Oracle.MaxAttempts < 1 {
		return errors.New("oracle.max_attempts must be at least 1")
	}
	if c.Enrich.BatchSize < 1 {
		return errors.New("enrich.batch_size must be at least 1")
	}
	if c.Enrich.VerifyBatchSize < 1 {
		return errors.New("enrich.verify_batch_size must be at least 1")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
