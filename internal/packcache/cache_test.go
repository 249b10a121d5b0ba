package packcache_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"packhub/internal/packcache"
	"packhub/internal/testsupport"
	"packhub/internal/trainingpack"
)

func decodeFixture(t *testing.T, fixture testsupport.PackFixture) *trainingpack.Pack {
	t.Helper()
	pack, err := trainingpack.DecodeBytes(fixture.Bytes())
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	return pack
}

func TestStoreAndLookupRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cache := testsupport.MustOpenCache(t, cfg)
	ctx := context.Background()

	fixture := testsupport.MinimalPack()
	fixture.Code = "ABCD-EFGH-IJKL-MNOP"
	pack := decodeFixture(t, fixture)

	if err := cache.Store(ctx, packcache.Entry{Key: "pack-1", PayloadSize: 42, Mode: "strict", Fingerprint: "f00d", Pack: pack}); err != nil {
		t.Fatalf("Store: %v", err)
	}

	entry, ok, err := cache.Lookup(ctx, "pack-1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if entry.Name != "Test" || entry.Code != fixture.Code || entry.ShotCount != 1 || entry.PayloadSize != 42 || entry.Mode != "strict" || entry.Fingerprint != "f00d" {
		t.Fatalf("unexpected summary: %#v", entry)
	}
	if entry.Pack == nil || entry.Pack.Name != "Test" || len(entry.Pack.Shots) != 1 {
		t.Fatalf("unexpected pack: %#v", entry.Pack)
	}
	if !reflect.DeepEqual(entry.Pack, pack) {
		t.Fatalf("cached pack differs from fresh decode:\n got %#v\nwant %#v", entry.Pack, pack)
	}
	if entry.CachedAt.IsZero() {
		t.Fatal("expected cached_at to be set")
	}

	if _, ok, err := cache.Lookup(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
}

func TestStoreReplacesExistingEntry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cache := testsupport.MustOpenCache(t, cfg)
	ctx := context.Background()

	first := testsupport.MinimalPack()
	second := testsupport.MinimalPack()
	second.Name = "Renamed"

	if err := cache.Store(ctx, packcache.Entry{Key: "k", Pack: decodeFixture(t, first)}); err != nil {
		t.Fatalf("Store first: %v", err)
	}
	if err := cache.Store(ctx, packcache.Entry{Key: "k", Pack: decodeFixture(t, second)}); err != nil {
		t.Fatalf("Store second: %v", err)
	}

	count, err := cache.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 entry, got %d", count)
	}
	entry, _, err := cache.Lookup(ctx, "k")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if entry.Name != "Renamed" {
		t.Fatalf("expected replaced name, got %q", entry.Name)
	}
}

func TestStoreRejectsInvalidEntries(t *testing.T) {
	cache := testsupport.MustOpenCache(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := cache.Store(ctx, packcache.Entry{Key: "  ", Pack: &trainingpack.Pack{}}); err == nil {
		t.Fatal("expected error for empty key")
	}
	if err := cache.Store(ctx, packcache.Entry{Key: "k"}); err == nil {
		t.Fatal("expected error for missing pack")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	cache, err := packcache.Open(ctx, cfg.CachePath(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := cache.Store(ctx, packcache.Entry{Key: "persist", Pack: decodeFixture(t, testsupport.MinimalPack())}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenCache(t, cfg)
	if _, ok, err := reopened.Lookup(ctx, "persist"); err != nil || !ok {
		t.Fatalf("expected entry after reopen, ok=%v err=%v", ok, err)
	}
}

func TestListNewestFirstAndRemove(t *testing.T) {
	cache := testsupport.MustOpenCache(t, testsupport.NewConfig(t))
	ctx := context.Background()
	pack := decodeFixture(t, testsupport.MinimalPack())

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, key := range []string{"old", "mid", "new"} {
		entry := packcache.Entry{Key: key, Pack: pack, CachedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := cache.Store(ctx, entry); err != nil {
			t.Fatalf("Store %s: %v", key, err)
		}
	}

	entries, err := cache.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if entries[i].Key != want {
			t.Fatalf("entry %d = %q, want %q", i, entries[i].Key, want)
		}
		if entries[i].Pack != nil {
			t.Fatalf("expected list entries without packs")
		}
	}
	if !entries[0].CachedAt.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("unexpected cached_at: %v", entries[0].CachedAt)
	}

	if err := cache.Remove(ctx, "mid"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := cache.Remove(ctx, "mid"); !errors.Is(err, packcache.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if count, _ := cache.Count(ctx); count != 2 {
		t.Fatalf("expected 2 entries after remove, got %d", count)
	}
}

func TestPruneRemovesOldEntries(t *testing.T) {
	cache := testsupport.MustOpenCache(t, testsupport.NewConfig(t))
	ctx := context.Background()
	pack := decodeFixture(t, testsupport.MinimalPack())

	now := time.Now()
	if err := cache.Store(ctx, packcache.Entry{Key: "stale", Pack: pack, CachedAt: now.Add(-48 * time.Hour)}); err != nil {
		t.Fatalf("Store stale: %v", err)
	}
	if err := cache.Store(ctx, packcache.Entry{Key: "fresh", Pack: pack, CachedAt: now}); err != nil {
		t.Fatalf("Store fresh: %v", err)
	}

	removed, err := cache.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, ok, _ := cache.Lookup(ctx, "stale"); ok {
		t.Fatal("expected stale entry to be pruned")
	}
	if _, ok, _ := cache.Lookup(ctx, "fresh"); !ok {
		t.Fatal("expected fresh entry to survive")
	}

	if removed, err := cache.Prune(ctx, 0); err != nil || removed != 0 {
		t.Fatalf("expected zero-age prune to be a no-op, removed=%d err=%v", removed, err)
	}
}

func TestClearEmptiesCache(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cache := testsupport.MustOpenCache(t, cfg)
	ctx := context.Background()

	if err := cache.Store(ctx, packcache.Entry{Key: "a", Pack: decodeFixture(t, testsupport.MinimalPack())}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if count, err := cache.Count(ctx); err != nil || count != 0 {
		t.Fatalf("expected empty cache, count=%d err=%v", count, err)
	}
	if cache.Path() != filepath.Join(cfg.Paths.CacheDir, "packs.db") {
		t.Fatalf("unexpected path %q", cache.Path())
	}
}

func TestDisabledCacheIsNoop(t *testing.T) {
	cache, err := packcache.Open(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	if cache.Enabled() {
		t.Fatal("expected disabled cache")
	}
	if err := cache.Store(ctx, packcache.Entry{Key: "k", Pack: &trainingpack.Pack{}}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if _, ok, err := cache.Lookup(ctx, "k"); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if entries, err := cache.List(ctx); err != nil || len(entries) != 0 {
		t.Fatalf("expected empty list, got %v err=%v", entries, err)
	}
	if err := cache.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := cache.Prune(ctx, time.Hour); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
