package polyglot

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOptionsFromEnv(t *testing.T) {
	t.Setenv("POLYGLOT_AUTH_KEY", "env-key:fx")
	t.Setenv("POLYGLOT_SERVER_URL", "http://localhost:3000/v2")
	t.Setenv("POLYGLOT_MAX_RETRIES", "2")
	t.Setenv("POLYGLOT_MIN_TIMEOUT", "250ms")
	t.Setenv("POLYGLOT_MAX_TIMEOUT", "30s")

	authKey, opts, err := LoadOptionsFromEnv()
	if err != nil {
		t.Fatalf("LoadOptionsFromEnv: %v", err)
	}
	if authKey != "env-key:fx" {
		t.Errorf("auth key = %q", authKey)
	}
	if opts.ServerURL != "http://localhost:3000/v2" {
		t.Errorf("server URL = %q", opts.ServerURL)
	}
	if opts.MaxRetries == nil || *opts.MaxRetries != 2 {
		t.Errorf("max retries = %v", opts.MaxRetries)
	}
	if opts.MinTimeout != 250*time.Millisecond || opts.MaxTimeout != 30*time.Second {
		t.Errorf("timeouts = %s / %s", opts.MinTimeout, opts.MaxTimeout)
	}
}

func TestLoadOptionsFromEnvDefaults(t *testing.T) {
	for _, name := range []string{
		"POLYGLOT_AUTH_KEY", "POLYGLOT_SERVER_URL", "POLYGLOT_MAX_RETRIES",
		"POLYGLOT_MIN_TIMEOUT", "POLYGLOT_MAX_TIMEOUT", "POLYGLOT_PROXY_URL",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	_, opts, err := LoadOptionsFromEnv()
	if err != nil {
		t.Fatalf("LoadOptionsFromEnv: %v", err)
	}
	cfg := opts.backoffConfig()
	if cfg.maxRetries != defaultMaxRetries {
		t.Errorf("max retries = %d, want %d", cfg.maxRetries, defaultMaxRetries)
	}
	if cfg.minTimeout != defaultMinTimeout || cfg.maxTimeout != defaultMaxTimeout {
		t.Errorf("backoff bounds = %s / %s", cfg.minTimeout, cfg.maxTimeout)
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("POLYGLOT_AUTH_KEY", "")
	os.Unsetenv("POLYGLOT_AUTH_KEY")

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.env")
	if err := os.WriteFile(path, []byte("POLYGLOT_AUTH_KEY=file-key\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	loaded, err := LoadEnvFile(path)
	if err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if loaded != path {
		t.Errorf("loaded = %q, want %q", loaded, path)
	}
	if got := os.Getenv("POLYGLOT_AUTH_KEY"); got != "file-key" {
		t.Errorf("POLYGLOT_AUTH_KEY = %q", got)
	}

	if _, err := LoadEnvFile(filepath.Join(dir, "missing.env")); err == nil {
		t.Error("missing env file must fail")
	}
}

func TestBackoffConfigClampsNegativeRetries(t *testing.T) {
	negative := -3
	cfg := (&TranslatorOptions{MaxRetries: &negative}).backoffConfig()
	if cfg.maxRetries != 0 {
		t.Errorf("max retries = %d, want 0", cfg.maxRetries)
	}
}
