package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"packhub/internal/trainingpack"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir string `toml:"cache_dir"`
	LogDir   string `toml:"log_dir"`
}

// Decode contains metadata decoding settings.
type Decode struct {
	// Mode is "strict" (fail on reads past the end of the buffer) or
	// "permissive" (zero-fill and report short columns).
	Mode string `toml:"mode"`
	// Trace logs every decoded header field and column at debug level.
	Trace bool `toml:"trace"`
	// LRUSize bounds the in-process decoded pack cache. Zero disables it.
	LRUSize int `toml:"lru_size"`
}

// Cache contains configuration for the decoded pack cache.
type Cache struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"` // Default: <cache_dir>/packs.db
	MaxAgeDays int    `toml:"max_age_days"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for packhub.
//
// Configuration sections:
//   - Paths: cache and log directories
//   - Decode: bitstream overrun policy, tracing, in-process LRU size
//   - Cache: persistent decoded pack cache
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Decode  Decode  `toml:"decode"`
	Cache   Cache   `toml:"cache"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("packhub.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the cache and log directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.CacheDir, c.Paths.LogDir}
	if c.Cache.Enabled && c.Cache.Path != "" {
		dirs = append(dirs, filepath.Dir(c.Cache.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DecodeMode returns the parsed decode mode. Validate guarantees it parses.
func (c *Config) DecodeMode() trainingpack.Mode {
	mode, err := trainingpack.ParseMode(c.Decode.Mode)
	if err != nil {
		return trainingpack.ModeStrict
	}
	return mode
}

// CachePath returns the cache database path, or "" when the cache is disabled.
func (c *Config) CachePath() string {
	if !c.Cache.Enabled {
		return ""
	}
	return c.Cache.Path
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
