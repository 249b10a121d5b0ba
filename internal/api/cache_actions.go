package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"packhub/internal/config"
	"packhub/internal/logging"
	"packhub/internal/packcache"
)

// ErrCacheDisabled is returned when the configuration turns the pack cache off.
var ErrCacheDisabled = errors.New("pack cache is disabled")

// OpenPackCache validates config and opens the persistent pack cache.
func OpenPackCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*packcache.Cache, error) {
	if cfg == nil || cfg.CachePath() == "" {
		return nil, ErrCacheDisabled
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	cache, err := packcache.Open(ctx, cfg.CachePath(), logger)
	if err != nil {
		return nil, fmt.Errorf("open pack cache: %w", err)
	}
	return cache, nil
}

// NewDecodeServiceFromConfig wires a DecodeService from config. A nil cache
// leaves only the in-process layer.
func NewDecodeServiceFromConfig(cfg *config.Config, cache *packcache.Cache, logger *slog.Logger) (*DecodeService, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	var store PackStore
	if cache != nil {
		store = cache
	}
	return NewDecodeService(DecodeOptions{
		Mode:    cfg.DecodeMode(),
		Trace:   cfg.Decode.Trace,
		LRUSize: cfg.Decode.LRUSize,
	}, store, logger)
}

// RemoveCacheEntryByNumber removes a cache entry using the 1-based numbering from cache list output.
func RemoveCacheEntryByNumber(ctx context.Context, cache *packcache.Cache, entryNum int) (packcache.Entry, error) {
	if !cache.Enabled() {
		return packcache.Entry{}, ErrCacheDisabled
	}
	if entryNum < 1 {
		return packcache.Entry{}, fmt.Errorf("invalid entry number: %d (must be a positive integer)", entryNum)
	}

	entries, err := cache.List(ctx)
	if err != nil {
		return packcache.Entry{}, err
	}
	if entryNum > len(entries) {
		return packcache.Entry{}, fmt.Errorf("entry number %d out of range (only %d entries exist)", entryNum, len(entries))
	}

	entry := entries[entryNum-1]
	if err := cache.Remove(ctx, entry.Key); err != nil {
		return packcache.Entry{}, fmt.Errorf("remove cache entry: %w", err)
	}
	return entry, nil
}

// PruneCache removes entries older than the configured max age. A zero max
// age keeps entries forever.
func PruneCache(ctx context.Context, cfg *config.Config, cache *packcache.Cache) (int64, error) {
	if !cache.Enabled() {
		return 0, ErrCacheDisabled
	}
	if cfg == nil || cfg.Cache.MaxAgeDays <= 0 {
		return 0, nil
	}
	return cache.Prune(ctx, time.Duration(cfg.Cache.MaxAgeDays)*24*time.Hour)
}
