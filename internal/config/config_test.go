package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var configEnv = []string{
	"CONFIG_FILE", "PORT", "PUBLIC_URL", "GIN_MODE", "CORS_ORIGINS", "SHUTDOWN_TIMEOUT", "LLM_PROVIDER",
	"GEMINI_API_KEY", "GEMINI_MODEL", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
	"BACKEND_TIMEOUT", "ASSET_BUCKET_URL", "REDIS_ADDR", "REDIS_PASSWORD", "CACHE_TTL",
	"NATS_URL", "NATS_SUBJECT", "LOG_LEVEL", "LOG_FORMAT", "MAX_UPLOAD_MB", "LLM_MAX_TOKENS",
	"GENERATION_CONCURRENCY", "REDIS_DB",
}

// clearEnv blanks every key Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.LLM.Provider != ProviderGemini || cfg.Model() != "gemini-2.5-flash-lite" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.BackendTimeout() != 30*time.Second || cfg.CacheTTL() != 24*time.Hour {
		t.Errorf("durations = %v, %v", cfg.BackendTimeout(), cfg.CacheTTL())
	}
	if cfg.Generation.Concurrency != 4 || cfg.LLM.MaxTokens != 1024 {
		t.Errorf("concurrency %d, max tokens %d", cfg.Generation.Concurrency, cfg.LLM.MaxTokens)
	}
	if cfg.MaxUploadBytes() != 10<<20 {
		t.Errorf("max upload = %d", cfg.MaxUploadBytes())
	}
	if diff := cmp.Diff([]string{"*"}, cfg.AllowedOrigins()); diff != "" {
		t.Errorf("origins (-want +got):\n%s", diff)
	}
	if cfg.APIKey() != "" {
		t.Errorf("api key leaked from somewhere: %q", cfg.APIKey())
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlDoc := `
server:
  port: "9090"
  cors_origins: "https://a.example, https://b.example"
llm:
  provider: openai
  openai_model: gpt-4.1-mini
  backend_timeout: 5s
generation:
  concurrency: 2
redis:
  addr: localhost:6379
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GENERATION_CONCURRENCY", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("env should beat file: port = %s", cfg.Server.Port)
	}
	if cfg.LLM.Provider != ProviderOpenAI || cfg.Model() != "gpt-4.1-mini" || cfg.APIKey() != "sk-test" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.BackendTimeout() != 5*time.Second {
		t.Errorf("backend timeout = %v", cfg.BackendTimeout())
	}
	if cfg.Generation.Concurrency != 8 {
		t.Errorf("concurrency = %d", cfg.Generation.Concurrency)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr)
	}
	want := []string{"https://a.example", "https://b.example"}
	if diff := cmp.Diff(want, cfg.AllowedOrigins()); diff != "" {
		t.Errorf("origins (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"LLM_PROVIDER", "anthropic"},
		{"GENERATION_CONCURRENCY", "0"},
		{"GENERATION_CONCURRENCY", "four"},
		{"BACKEND_TIMEOUT", "soon"},
		{"BACKEND_TIMEOUT", "-1s"},
		{"LLM_MAX_TOKENS", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
