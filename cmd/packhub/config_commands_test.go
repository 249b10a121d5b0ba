package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"packhub/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Mode:      strict")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, "", ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateRejectsBadFile(t *testing.T) {
	env := setupCLITestEnv(t)
	bad := filepath.Join(env.baseDir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[decode]\nmode = \"sloppy\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, bad, ""); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestConfigValidateReportsCacheState(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCache(t, env, "alpha")

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "(1 entries, max age")

	out, _, err = runCLI(t, []string{"--json", "config", "validate"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config validate --json: %v", err)
	}
	var report configReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("parse report: %v (%q)", err, out)
	}
	if !report.FileFound || report.DecodeMode != "strict" || report.CacheEntries != 1 || report.CachePath == "" {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestConfigValidateWithCacheDisabled(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithoutCache())

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Cache:     disabled")
}
