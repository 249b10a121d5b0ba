package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sigs.k8s.io/yaml"

	"packhub/internal/testsupport"
	"packhub/internal/trainingpack"
)

func TestDecodeTableOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	fixture := testsupport.MinimalPack()
	fixture.Code = "ABCD-EFGH-IJKL-MNOP"

	out, _, err := runCLI(t, []string{"decode", fixture.Base64(), "--pack-id", "p-1"}, env.configPath, "")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	requireContains(t, out, "Name:      Test")
	requireContains(t, out, "Code:      ABCD-EFGH-IJKL-MNOP")
	requireContains(t, out, "Source:    decoder")
	requireContains(t, out, "Freeze")

	out, _, err = runCLI(t, []string{"decode", fixture.Base64(), "--pack-id", "p-1"}, env.configPath, "")
	if err != nil {
		t.Fatalf("second decode: %v", err)
	}
	requireContains(t, out, "Source:    cache")
}

func TestDecodeJSONFromStdin(t *testing.T) {
	env := setupCLITestEnv(t)
	payload := testsupport.MinimalPack().Base64()

	out, _, err := runCLI(t, []string{"decode", "-", "--output", "json", "--no-cache"}, env.configPath, payload+"\n")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var result struct {
		Key    string             `json:"key"`
		Cached bool               `json:"cached"`
		Pack   *trainingpack.Pack `json:"pack"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("parse json output: %v\n%s", err, out)
	}
	if result.Cached || result.Pack == nil || result.Pack.ShotCount != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Pack.Shots) != 1 || !result.Pack.Shots[0].FreezeCar {
		t.Fatalf("unexpected shots: %+v", result.Pack.Shots)
	}
}

func TestDecodeYAMLFromFile(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(env.baseDir, "pack.b64")
	if err := os.WriteFile(path, []byte(testsupport.MinimalPack().Base64()), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	out, _, err := runCLI(t, []string{"decode", "--file", path, "-o", "yaml"}, env.configPath, "")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var result map[string]any
	if err := yaml.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("parse yaml output: %v\n%s", err, out)
	}
	if result["source"] != "decoder" {
		t.Fatalf("unexpected yaml result: %v", result)
	}
	requireContains(t, out, "name: Test")
}

func TestDecodeReportsErrorKind(t *testing.T) {
	env := setupCLITestEnv(t)
	truncated := testsupport.MinimalPack().Bytes()[:1]
	_, _, err := runCLI(t, []string{"decode", encodeStd(truncated)}, env.configPath, "")
	if !errors.Is(err, trainingpack.ErrTruncatedStream) {
		t.Fatalf("expected truncated stream error, got %v", err)
	}
	if msg := formatError(err); !strings.HasPrefix(msg, "error [truncated_stream]:") {
		t.Fatalf("unexpected formatted error: %q", msg)
	}

	_, _, err = runCLI(t, []string{"decode", encodeStd(truncated), "--mode", "permissive"}, env.configPath, "")
	if err == nil || errors.Is(err, trainingpack.ErrTruncatedStream) {
		t.Fatalf("expected permissive decode to fail without truncation kind, got %v", err)
	}
}

func TestDecodeRejectsBadFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	payload := testsupport.MinimalPack().Base64()

	if _, _, err := runCLI(t, []string{"decode", payload, "--output", "xml"}, env.configPath, ""); err == nil {
		t.Fatal("expected error for unknown output format")
	}
	if _, _, err := runCLI(t, []string{"decode", payload, "--mode", "sloppy"}, env.configPath, ""); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if _, _, err := runCLI(t, []string{"decode", payload, "--file", "x.b64"}, env.configPath, ""); err == nil {
		t.Fatal("expected error when both payload and --file are given")
	}
	if formatError(errors.New("plain")) != "error: plain" {
		t.Fatal("expected plain error formatting")
	}
}

func encodeStd(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
