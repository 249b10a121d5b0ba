package testsupport

import (
	"path/filepath"
	"testing"

	"packhub/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Cache.Path = filepath.Join(cfgVal.Paths.CacheDir, "packs.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDecodeMode overrides the decode overrun policy on the test config.
func WithDecodeMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Decode.Mode = mode
	}
}

// WithoutCache disables the persistent cache on the test config.
func WithoutCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = false
		b.cfg.Cache.Path = ""
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.CacheDir)
}
