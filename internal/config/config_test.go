package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	t.Setenv("FXDASH_SOURCE_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// API defaults
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host: got %q, want %q", cfg.API.Host, "0.0.0.0")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port: got %d, want 8080", cfg.API.Port)
	}
	if cfg.API.StreamInterval != 30*time.Second {
		t.Errorf("API.StreamInterval: got %s, want 30s", cfg.API.StreamInterval)
	}

	// Source defaults
	if cfg.Source.BaseURL != "https://economia.awesomeapi.com.br" {
		t.Errorf("Source.BaseURL: got %q", cfg.Source.BaseURL)
	}
	if cfg.Source.Reference != "BRL" {
		t.Errorf("Source.Reference: got %q, want BRL", cfg.Source.Reference)
	}

	// Fetch defaults
	if cfg.Fetch.Timeout != 10*time.Second {
		t.Errorf("Fetch.Timeout: got %s, want 10s", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.Concurrency != 4 {
		t.Errorf("Fetch.Concurrency: got %d, want 4", cfg.Fetch.Concurrency)
	}

	// Cache defaults
	if cfg.Cache.SeriesTTL != 30*time.Minute {
		t.Errorf("Cache.SeriesTTL: got %s, want 30m", cfg.Cache.SeriesTTL)
	}
	if cfg.Cache.QuoteTTL != 5*time.Minute {
		t.Errorf("Cache.QuoteTTL: got %s, want 5m", cfg.Cache.QuoteTTL)
	}

	// Dashboard defaults
	if got := strings.Join(cfg.Dashboard.DefaultCurrencies, ","); got != "USD,EUR,BRL" {
		t.Errorf("Dashboard.DefaultCurrencies: got %q", got)
	}
	if cfg.Dashboard.DefaultPeriod != "90d" {
		t.Errorf("Dashboard.DefaultPeriod: got %q, want 90d", cfg.Dashboard.DefaultPeriod)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "json")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := []byte(`
api:
  port: 9090
  stream_interval: 5s
source:
  reference: brl
fetch:
  concurrency: 2
cache:
  series_ttl: 1h
dashboard:
  default_currencies: [usd, gbp]
logging:
  level: debug
  format: text
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if cfg.API.StreamInterval != 5*time.Second {
		t.Errorf("API.StreamInterval: got %s, want 5s", cfg.API.StreamInterval)
	}
	if cfg.Source.Reference != "BRL" {
		t.Errorf("Source.Reference should be upper-cased: got %q", cfg.Source.Reference)
	}
	if cfg.Fetch.Concurrency != 2 {
		t.Errorf("Fetch.Concurrency: got %d, want 2", cfg.Fetch.Concurrency)
	}
	if cfg.Cache.SeriesTTL != time.Hour {
		t.Errorf("Cache.SeriesTTL: got %s, want 1h", cfg.Cache.SeriesTTL)
	}
	if got := strings.Join(cfg.Dashboard.DefaultCurrencies, ","); got != "USD,GBP" {
		t.Errorf("Dashboard.DefaultCurrencies: got %q", got)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging: got %+v", cfg.Logging)
	}
	// Untouched keys keep their defaults.
	if cfg.Cache.QuoteTTL != 5*time.Minute {
		t.Errorf("Cache.QuoteTTL: got %s, want default 5m", cfg.Cache.QuoteTTL)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("FXDASH_API_PORT", "7070")
	t.Setenv("FXDASH_FETCH_CONCURRENCY", "8")
	t.Setenv("FXDASH_SOURCE_API_KEY", "awesome-key-123456")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.Port != 7070 {
		t.Errorf("API.Port: got %d, want 7070", cfg.API.Port)
	}
	if cfg.Fetch.Concurrency != 8 {
		t.Errorf("Fetch.Concurrency: got %d, want 8", cfg.Fetch.Concurrency)
	}
	if cfg.Source.APIKey != "awesome-key-123456" {
		t.Errorf("Source.APIKey: got %q", cfg.Source.APIKey)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("FXDASH_TEST_DOTENV=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("FXDASH_TEST_DOTENV") })

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if got := os.Getenv("FXDASH_TEST_DOTENV"); got != "from-file" {
		t.Errorf("got %q, want from-file", got)
	}

	if err := loadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored: %v", err)
	}
}

// ── Validate ──

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			API:    APIConfig{Port: 8080, StreamInterval: time.Second},
			Source: SourceConfig{BaseURL: "http://x", Reference: "BRL"},
			Fetch:  FetchConfig{Concurrency: 1, Timeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero port", func(c *Config) { c.API.Port = 0 }, true},
		{"port too high", func(c *Config) { c.API.Port = 70000 }, true},
		{"no base url", func(c *Config) { c.Source.BaseURL = "" }, true},
		{"no reference", func(c *Config) { c.Source.Reference = "" }, true},
		{"zero concurrency", func(c *Config) { c.Fetch.Concurrency = 0 }, true},
		{"zero timeout", func(c *Config) { c.Fetch.Timeout = 0 }, true},
		{"zero stream interval", func(c *Config) { c.API.StreamInterval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	c := &Config{API: APIConfig{Host: "127.0.0.1", Port: 9000}}
	if got := c.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Addr: got %q", got)
	}
}

// ── API key ──

func TestSourceKeyStatus(t *testing.T) {
	t.Setenv(SourceAPIKeyEnv, "")

	tests := []struct {
		key  string
		want KeyStatus
	}{
		{"", KeyStatus{}},
		{"short-key", KeyStatus{Set: true}},
		{"config-key-abcdef", KeyStatus{Set: true, Hint: "****cdef"}},
	}
	for _, tt := range tests {
		if got := (SourceConfig{APIKey: tt.key}).KeyStatus(); got != tt.want {
			t.Errorf("KeyStatus(%q) = %+v, want %+v", tt.key, got, tt.want)
		}
	}

	t.Setenv(SourceAPIKeyEnv, "env-key-abcdef")
	if got := (SourceConfig{APIKey: "env-key-abcdef"}).KeyStatus(); !got.FromEnv || got.Hint != "****cdef" {
		t.Errorf("env key: got %+v", got)
	}
}
