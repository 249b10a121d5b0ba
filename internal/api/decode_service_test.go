package api_test

import (
	"context"
	"errors"
	"testing"

	"packhub/internal/api"
	"packhub/internal/logging"
	"packhub/internal/packcache"
	"packhub/internal/testsupport"
	"packhub/internal/trainingpack"
)

type countingStore struct {
	entries map[string]packcache.Entry
	lookups int
	stores  int
	failErr error
}

func newCountingStore() *countingStore {
	return &countingStore{entries: make(map[string]packcache.Entry)}
}

func (s *countingStore) Lookup(_ context.Context, key string) (packcache.Entry, bool, error) {
	s.lookups++
	if s.failErr != nil {
		return packcache.Entry{}, false, s.failErr
	}
	entry, ok := s.entries[key]
	return entry, ok, nil
}

func (s *countingStore) Store(_ context.Context, entry packcache.Entry) error {
	s.stores++
	if s.failErr != nil {
		return s.failErr
	}
	s.entries[entry.Key] = entry
	return nil
}

func newService(t *testing.T, store api.PackStore, lruSize int) *api.DecodeService {
	t.Helper()
	svc, err := api.NewDecodeService(api.DecodeOptions{Mode: trainingpack.ModeStrict, LRUSize: lruSize}, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewDecodeService: %v", err)
	}
	return svc
}

func TestDecodeFallsThroughLayers(t *testing.T) {
	store := newCountingStore()
	svc := newService(t, store, 8)
	ctx := context.Background()
	payload := testsupport.MinimalPack().Base64()

	first, err := svc.Decode(ctx, api.DecodeRequest{PackID: "pack-1", Payload: payload})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if first.Cached || first.Source != api.SourceDecoder {
		t.Fatalf("expected fresh decode, got cached=%v source=%q", first.Cached, first.Source)
	}
	if first.Key != "pack-1" || first.Pack.Name != "Test" || first.Mode != "strict" {
		t.Fatalf("unexpected result: %#v", first)
	}
	if first.CorrelationID == "" {
		t.Fatal("expected correlation id to be assigned")
	}
	if store.stores != 1 {
		t.Fatalf("expected one store write, got %d", store.stores)
	}

	second, err := svc.Decode(ctx, api.DecodeRequest{PackID: "pack-1", Payload: payload})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !second.Cached || second.Source != api.SourceMemory {
		t.Fatalf("expected memory hit, got cached=%v source=%q", second.Cached, second.Source)
	}
	if store.lookups != 1 {
		t.Fatalf("expected memory hit to skip store, lookups=%d", store.lookups)
	}

	// A fresh service shares the store but not the LRU.
	other := newService(t, store, 8)
	third, err := other.Decode(ctx, api.DecodeRequest{PackID: "pack-1", Payload: payload})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if third.Source != api.SourceCache {
		t.Fatalf("expected persistent cache hit, got %q", third.Source)
	}
}

func TestDecodeRefreshesWhenMetadataBehindPackIDChanges(t *testing.T) {
	store := newCountingStore()
	svc := newService(t, store, 8)
	ctx := context.Background()

	original := testsupport.MinimalPack()
	updated := testsupport.MinimalPack()
	updated.Name = "Updated"
	updated.Shots = 3
	updated.Freeze = []bool{true, false, true}

	first, err := svc.Decode(ctx, api.DecodeRequest{PackID: "pack-1", Payload: original.Base64()})
	if err != nil {
		t.Fatalf("Decode original: %v", err)
	}
	second, err := svc.Decode(ctx, api.DecodeRequest{PackID: "pack-1", Payload: updated.Base64()})
	if err != nil {
		t.Fatalf("Decode updated: %v", err)
	}
	if first.Pack.Name != "Test" || first.Pack.ShotCount != 1 {
		t.Fatalf("unexpected original pack: %q/%d", first.Pack.Name, first.Pack.ShotCount)
	}
	if second.Cached || second.Source != api.SourceDecoder {
		t.Fatalf("expected fresh decode after metadata change, got cached=%v source=%q", second.Cached, second.Source)
	}
	if second.Pack.Name != "Updated" || second.Pack.ShotCount != 3 {
		t.Fatalf("stale pack served: %q/%d", second.Pack.Name, second.Pack.ShotCount)
	}
	if second.Key != first.Key {
		t.Fatalf("expected key to stay on pack id, got %q then %q", first.Key, second.Key)
	}
	if got := store.entries["pack-1"].Fingerprint; got != packcache.Fingerprint(updated.Bytes()) {
		t.Fatalf("stored fingerprint = %q, want updated payload", got)
	}

	// The persistent layer applies the same check without the LRU.
	other := newService(t, store, 0)
	third, err := other.Decode(ctx, api.DecodeRequest{PackID: "pack-1", Payload: original.Base64()})
	if err != nil {
		t.Fatalf("Decode original again: %v", err)
	}
	if third.Source != api.SourceDecoder || third.Pack.Name != "Test" {
		t.Fatalf("expected fresh decode of original, got source=%q name=%q", third.Source, third.Pack.Name)
	}
}

func TestDecodeKeysByFingerprintWithoutPackID(t *testing.T) {
	svc := newService(t, nil, 0)
	fixture := testsupport.MinimalPack()

	result, err := svc.Decode(context.Background(), api.DecodeRequest{Payload: fixture.Base64()})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if want := packcache.Fingerprint(fixture.Bytes()); result.Key != want {
		t.Fatalf("key = %q, want %q", result.Key, want)
	}
}

func TestDecodeFailuresAreNotCached(t *testing.T) {
	store := newCountingStore()
	svc := newService(t, store, 8)
	ctx := context.Background()

	fixture := testsupport.MinimalPack()
	fixture.Name = ""
	_, err := svc.Decode(ctx, api.DecodeRequest{PackID: "bad", Payload: fixture.Base64()})
	if !errors.Is(err, trainingpack.ErrHeaderRange) {
		t.Fatalf("expected header range error, got %v", err)
	}
	if store.stores != 0 {
		t.Fatalf("expected no store writes, got %d", store.stores)
	}

	_, err = svc.Decode(ctx, api.DecodeRequest{PackID: "bad", Payload: fixture.Base64()})
	if !errors.Is(err, trainingpack.ErrHeaderRange) {
		t.Fatalf("expected repeat failure, got %v", err)
	}
}

func TestDecodeSkipCacheBypassesLayers(t *testing.T) {
	store := newCountingStore()
	svc := newService(t, store, 8)
	payload := testsupport.MinimalPack().Base64()

	for i := 0; i < 2; i++ {
		result, err := svc.Decode(context.Background(), api.DecodeRequest{Payload: payload, SkipCache: true})
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if result.Cached {
			t.Fatalf("iteration %d: expected uncached result", i)
		}
	}
	if store.lookups != 0 || store.stores != 0 {
		t.Fatalf("expected store untouched, lookups=%d stores=%d", store.lookups, store.stores)
	}
}

func TestDecodeStoreFailureDoesNotFailDecode(t *testing.T) {
	store := newCountingStore()
	store.failErr = errors.New("disk full")
	svc := newService(t, store, 0)

	result, err := svc.Decode(context.Background(), api.DecodeRequest{Payload: testsupport.MinimalPack().Base64()})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if result.Source != api.SourceDecoder {
		t.Fatalf("expected decoder source, got %q", result.Source)
	}
}

func TestDecodeModeOverride(t *testing.T) {
	svc := newService(t, nil, 0)
	fixture := testsupport.MinimalPack()
	truncated := fixture.Bytes()[:1]
	encoded := base64Std(truncated)
	if _, err := svc.Decode(context.Background(), api.DecodeRequest{Payload: encoded}); !errors.Is(err, trainingpack.ErrTruncatedStream) {
		t.Fatalf("strict: expected truncated stream, got %v", err)
	}
	_, err := svc.Decode(context.Background(), api.DecodeRequest{Payload: encoded, Mode: "permissive"})
	if err == nil || errors.Is(err, trainingpack.ErrTruncatedStream) {
		t.Fatalf("permissive: expected a non-truncation decode error, got %v", err)
	}
	if _, err := svc.Decode(context.Background(), api.DecodeRequest{Payload: encoded, Mode: "bogus"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestDecodeKeepsCallerCorrelationID(t *testing.T) {
	svc := newService(t, nil, 0)
	ctx := logging.WithRequestID(context.Background(), "req-123")

	result, err := svc.Decode(ctx, api.DecodeRequest{Payload: testsupport.MinimalPack().Base64(), Trace: true})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if result.CorrelationID != "req-123" {
		t.Fatalf("correlation id = %q", result.CorrelationID)
	}
}

func TestDecodeRejectsBadBase64(t *testing.T) {
	svc := newService(t, nil, 0)
	_, err := svc.Decode(context.Background(), api.DecodeRequest{Payload: "!!!"})
	if !errors.Is(err, trainingpack.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
}
