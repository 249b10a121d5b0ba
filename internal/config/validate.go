package config

import (
	"errors"
	"fmt"

	"packhub/internal/trainingpack"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDecode(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDecode() error {
	if _, err := trainingpack.ParseMode(c.Decode.Mode); err != nil {
		return fmt.Errorf("decode.mode: %w", err)
	}
	if c.Decode.LRUSize < 0 {
		return errors.New("decode.lru_size must be zero or positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if c.Cache.Path == "" {
		return errors.New("cache.path must be set when cache.enabled is true")
	}
	if c.Cache.MaxAgeDays < 0 {
		return errors.New("cache.max_age_days must be zero (keep forever) or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
