package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.Generation.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", cfg.Generation.Provider)
	}
	if cfg.Generation.MaxRetries != 2 {
		t.Errorf("expected max_retries 2, got %d", cfg.Generation.MaxRetries)
	}
	if cfg.Generation.OnExhaustion != "fail" {
		t.Errorf("expected on_exhaustion 'fail', got %q", cfg.Generation.OnExhaustion)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
generation:
  provider: ollama
  model: llama3.1:8b
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Generation.Provider != "ollama" {
		t.Errorf("expected provider 'ollama', got %q", cfg.Generation.Provider)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Generation.OllamaURL != "http://localhost:11434" {
		t.Errorf("expected default ollama_url, got %q", cfg.Generation.OllamaURL)
	}
	if cfg.Generation.TimeoutSeconds != 120 {
		t.Errorf("expected default timeout_seconds 120, got %d", cfg.Generation.TimeoutSeconds)
	}
}

func TestParseZeroRetries(t *testing.T) {
	cfg, err := parse([]byte("generation:\n  max_retries: 0\n"))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if cfg.Generation.MaxRetries != 0 {
		t.Errorf("explicit zero retries must not be replaced by the default, got %d", cfg.Generation.MaxRetries)
	}
}

func TestValidateRejectsBadProvider(t *testing.T) {
	cfg, err := parse([]byte("generation:\n  provider: gemini\n"))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestValidateRejectsBadOnExhaustion(t *testing.T) {
	cfg, err := parse([]byte("generation:\n  on_exhaustion: retry-forever\n"))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown on_exhaustion value")
	}
}

func TestValidateRejectsNegativeRetries(t *testing.T) {
	cfg, err := parse([]byte("generation:\n  max_retries: -1\n"))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative max_retries")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Generation.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("expected api_key_env OPENAI_API_KEY, got %q", cfg.Generation.APIKeyEnv)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("generation:\n  provider: nope\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "provider") {
		t.Errorf("expected provider validation error, got %v", err)
	}
}

func TestResolveConfigPathExplicitMissing(t *testing.T) {
	if _, err := ResolveConfigPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config path")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	if cfg.GetDataDir() == "" {
		t.Error("expected XDG default data dir")
	}
	cfg.Output.DataDir = "/tmp/launchpage-data"
	if cfg.GetDataDir() != "/tmp/launchpage-data" {
		t.Errorf("expected explicit data dir, got %q", cfg.GetDataDir())
	}
}
