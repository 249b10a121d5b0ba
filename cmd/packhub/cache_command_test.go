package main

import (
	"encoding/json"
	"testing"

	"packhub/internal/packcache"
	"packhub/internal/testsupport"
)

func seedCache(t *testing.T, env *cliTestEnv, ids ...string) {
	t.Helper()
	payload := testsupport.MinimalPack().Base64()
	for _, id := range ids {
		if _, _, err := runCLI(t, []string{"decode", payload, "--pack-id", id}, env.configPath, ""); err != nil {
			t.Fatalf("seed decode %s: %v", id, err)
		}
	}
}

func TestCacheListShowRemoveClear(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"cache", "list"}, env.configPath, "")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "Pack cache: empty")

	seedCache(t, env, "alpha", "beta")

	out, _, err = runCLI(t, []string{"cache", "list"}, env.configPath, "")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "Pack cache: 2 entries")
	requireContains(t, out, "alpha")

	out, _, err = runCLI(t, []string{"--json", "cache", "list"}, env.configPath, "")
	if err != nil {
		t.Fatalf("cache list --json: %v", err)
	}
	var entries []packcache.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("parse list json: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "Test" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	out, _, err = runCLI(t, []string{"cache", "show", "alpha"}, env.configPath, "")
	if err != nil {
		t.Fatalf("cache show: %v", err)
	}
	requireContains(t, out, "Key:       alpha")
	requireContains(t, out, "Name:      Test")

	out, _, err = runCLI(t, []string{"cache", "show", "1", "-o", "json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("cache show by number: %v", err)
	}
	requireContains(t, out, `"key": "`+entries[0].Key+`"`)

	if _, _, err := runCLI(t, []string{"cache", "show", "missing"}, env.configPath, ""); err == nil {
		t.Fatal("expected error for missing key")
	}

	out, _, err = runCLI(t, []string{"cache", "remove", "1"}, env.configPath, "")
	if err != nil {
		t.Fatalf("cache remove: %v", err)
	}
	requireContains(t, out, "Removed pack cache entry 1")

	if _, _, err := runCLI(t, []string{"cache", "remove", "zero"}, env.configPath, ""); err == nil {
		t.Fatal("expected error for invalid entry number")
	}

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath, "")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 pack cache entries")
}

func TestCachePrune(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCache(t, env, "fresh")

	out, _, err := runCLI(t, []string{"cache", "prune"}, env.configPath, "")
	if err != nil {
		t.Fatalf("cache prune: %v", err)
	}
	requireContains(t, out, "Pruned 0 entries older than 30 days")
}

func TestCacheCommandsRequireEnabledCache(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithoutCache())

	_, _, err := runCLI(t, []string{"cache", "list"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected error when cache is disabled")
	}
	requireContains(t, err.Error(), "disabled")

	// Decoding still works without a cache.
	if _, _, err := runCLI(t, []string{"decode", testsupport.MinimalPack().Base64()}, env.configPath, ""); err != nil {
		t.Fatalf("decode without cache: %v", err)
	}
}
