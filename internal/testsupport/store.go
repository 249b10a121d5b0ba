package testsupport

import (
	"context"
	"testing"

	"packhub/internal/config"
	"packhub/internal/packcache"
)

// MustOpenCache opens the pack cache configured by cfg and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *packcache.Cache {
	t.Helper()

	cache, err := packcache.Open(context.Background(), cfg.CachePath(), nil)
	if err != nil {
		t.Fatalf("packcache.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.Close()
	})
	return cache
}
