package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Supported generative backends.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
	ProviderNone   = "none"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full service configuration.
type Config struct {
	Server struct {
		Port         string `yaml:"port"`
		PublicURL    string `yaml:"public_url"`
		GinMode      string `yaml:"gin_mode"`
		CORSOrigins  string `yaml:"cors_origins"`
		MaxUploadMB  int    `yaml:"max_upload_mb"`
		ShutdownWait string `yaml:"shutdown_wait"`
	} `yaml:"server"`
	LLM struct {
		Provider       string `yaml:"provider"`
		GeminiAPIKey   string `yaml:"gemini_api_key"`
		GeminiModel    string `yaml:"gemini_model"`
		OpenAIAPIKey   string `yaml:"openai_api_key"`
		OpenAIModel    string `yaml:"openai_model"`
		OpenAIBaseURL  string `yaml:"openai_base_url"`
		MaxTokens      int    `yaml:"max_tokens"`
		BackendTimeout string `yaml:"backend_timeout"`
	} `yaml:"llm"`
	Generation struct {
		Concurrency int    `yaml:"concurrency"`
		BucketURL   string `yaml:"asset_bucket_url"`
	} `yaml:"generation"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"redis"`
	NATS struct {
		URL     string `yaml:"url"`
		Subject string `yaml:"subject"`
	} `yaml:"nats"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Server.CORSOrigins = "*"
	cfg.Server.MaxUploadMB = 10
	cfg.Server.ShutdownWait = "10s"
	cfg.LLM.Provider = ProviderGemini
	cfg.LLM.GeminiModel = "gemini-2.5-flash-lite"
	cfg.LLM.OpenAIModel = "gpt-4o-mini"
	cfg.LLM.MaxTokens = 1024
	cfg.LLM.BackendTimeout = "30s"
	cfg.Generation.Concurrency = 4
	cfg.Generation.BucketURL = "https://example-bucket.s3.amazonaws.com"
	cfg.Redis.CacheTTL = "24h"
	cfg.NATS.Subject = "marketing.assets.generated"
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE,
// then the environment. Later sources win.
func Load() (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.PublicURL, "PUBLIC_URL")
	setString(&c.Server.GinMode, "GIN_MODE")
	setString(&c.Server.CORSOrigins, "CORS_ORIGINS")
	setString(&c.Server.ShutdownWait, "SHUTDOWN_TIMEOUT")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.LLM.GeminiModel, "GEMINI_MODEL")
	setString(&c.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.LLM.OpenAIModel, "OPENAI_MODEL")
	setString(&c.LLM.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&c.LLM.BackendTimeout, "BACKEND_TIMEOUT")
	setString(&c.Generation.BucketURL, "ASSET_BUCKET_URL")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Redis.CacheTTL, "CACHE_TTL")
	setString(&c.NATS.URL, "NATS_URL")
	setString(&c.NATS.Subject, "NATS_SUBJECT")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	ints := []struct {
		dst *int
		key string
	}{
		{&c.Server.MaxUploadMB, "MAX_UPLOAD_MB"},
		{&c.LLM.MaxTokens, "LLM_MAX_TOKENS"},
		{&c.Generation.Concurrency, "GENERATION_CONCURRENCY"},
		{&c.Redis.DB, "REDIS_DB"},
	}
	for _, i := range ints {
		if err := setInt(i.dst, i.key); err != nil {
			return err
		}
	}
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%w: %s must be an integer: %w", ErrInvalidConfig, key, err)
	}
	*dst = n
	return nil
}

// Validate checks ranges and parses every duration once so later accessors
// cannot fail.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderMock, ProviderNone:
	default:
		return fmt.Errorf("%w: unknown LLM provider %q", ErrInvalidConfig, c.LLM.Provider)
	}
	if c.Generation.Concurrency < 1 {
		return fmt.Errorf("%w: generation concurrency must be positive", ErrInvalidConfig)
	}
	if c.LLM.MaxTokens < 1 {
		return fmt.Errorf("%w: max tokens must be positive", ErrInvalidConfig)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("%w: max upload size must be positive", ErrInvalidConfig)
	}
	durations := []struct{ name, value string }{
		{"backend timeout", c.LLM.BackendTimeout},
		{"cache ttl", c.Redis.CacheTTL},
		{"shutdown timeout", c.Server.ShutdownWait},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, d.name, err)
		}
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, d.name)
		}
	}
	return nil
}

// APIKey returns the credential for the configured provider.
func (c *Config) APIKey() string {
	switch c.LLM.Provider {
	case ProviderGemini:
		return c.LLM.GeminiAPIKey
	case ProviderOpenAI:
		return c.LLM.OpenAIAPIKey
	}
	return ""
}

// Model returns the model id for the configured provider.
func (c *Config) Model() string {
	switch c.LLM.Provider {
	case ProviderGemini:
		return c.LLM.GeminiModel
	case ProviderOpenAI:
		return c.LLM.OpenAIModel
	}
	return c.LLM.Provider
}

func (c *Config) BackendTimeout() time.Duration {
	return mustDuration(c.LLM.BackendTimeout)
}

func (c *Config) CacheTTL() time.Duration {
	return mustDuration(c.Redis.CacheTTL)
}

func (c *Config) ShutdownTimeout() time.Duration {
	return mustDuration(c.Server.ShutdownWait)
}

// MaxUploadBytes is the multipart body limit.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.Server.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Sprintf("config: duration %q was not validated: %v", s, err))
	}
	return d
}
