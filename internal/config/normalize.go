package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvDecodeMode overrides decode.mode when set.
const EnvDecodeMode = "PACKHUB_DECODE_MODE"

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeDecode()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCache() error {
	path := strings.TrimSpace(c.Cache.Path)
	if path == "" {
		path = filepath.Join(c.Paths.CacheDir, defaultCacheFile)
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	c.Cache.Path = expanded
	return nil
}

func (c *Config) normalizeDecode() {
	if value, ok := os.LookupEnv(EnvDecodeMode); ok && strings.TrimSpace(value) != "" {
		c.Decode.Mode = value
	}
	c.Decode.Mode = strings.ToLower(strings.TrimSpace(c.Decode.Mode))
	if c.Decode.Mode == "" {
		c.Decode.Mode = defaultDecodeMode
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
