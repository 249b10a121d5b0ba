package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultConfigPath      = "~/.config/packhub/config.toml"
	defaultLogDir          = "~/.local/share/packhub/logs"
	defaultDecodeMode      = "strict"
	defaultLRUSize         = 128
	defaultCacheFile       = "packs.db"
	defaultCacheMaxAgeDays = 30
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir(),
			LogDir:   defaultLogDir,
		},
		Decode: Decode{
			Mode:    defaultDecodeMode,
			LRUSize: defaultLRUSize,
		},
		Cache: Cache{
			Enabled:    true,
			MaxAgeDays: defaultCacheMaxAgeDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "packhub")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/packhub"
	}
	return filepath.Join(home, ".cache", "packhub")
}
