// Package config handles configuration loading for fxdash.
// It supports YAML config files, an optional .env file and environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FXDASH_API_PORT.
const EnvPrefix = "FXDASH"

// Config represents the complete application configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Source    SourceConfig    `mapstructure:"source"    yaml:"source"`
	Fetch     FetchConfig     `mapstructure:"fetch"     yaml:"fetch"`
	Cache     CacheConfig     `mapstructure:"cache"     yaml:"cache"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host           string        `mapstructure:"host"            yaml:"host"`
	Port           int           `mapstructure:"port"            yaml:"port"`
	CORSOrigins    []string      `mapstructure:"cors_origins"    yaml:"cors_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	StreamInterval time.Duration `mapstructure:"stream_interval" yaml:"stream_interval"` // websocket quote push period
}

// SourceConfig describes the upstream exchange-rate API.
type SourceConfig struct {
	BaseURL   string `mapstructure:"base_url"  yaml:"base_url"`
	Reference string `mapstructure:"reference" yaml:"reference"` // quote currency, "BRL"
	APIKey    string `mapstructure:"api_key"   yaml:"api_key"   json:"-"` // optional, raises upstream limits
}

// SourceAPIKeyEnv is the variable that overrides source.api_key.
const SourceAPIKeyEnv = EnvPrefix + "_SOURCE_API_KEY"

// KeyStatus reports whether the upstream key is configured without
// revealing it. Hint holds the last four characters of keys long enough
// for that to be safe.
type KeyStatus struct {
	Set     bool   `json:"set"`
	FromEnv bool   `json:"from_env"`
	Hint    string `json:"hint,omitempty"`
}

// KeyStatus describes the AwesomeAPI key.
func (s SourceConfig) KeyStatus() KeyStatus {
	if s.APIKey == "" {
		return KeyStatus{}
	}
	st := KeyStatus{Set: true, FromEnv: os.Getenv(SourceAPIKeyEnv) != ""}
	if len(s.APIKey) >= 12 {
		st.Hint = "****" + s.APIKey[len(s.APIKey)-4:]
	}
	return st
}

// FetchConfig bounds outbound traffic.
type FetchConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"      yaml:"timeout"`
	Concurrency int           `mapstructure:"concurrency"  yaml:"concurrency"`
	RatePerSec  float64       `mapstructure:"rate_per_sec" yaml:"rate_per_sec"`
	Burst       int           `mapstructure:"burst"        yaml:"burst"`
}

// CacheConfig holds the TTLs of the fetch caches.
type CacheConfig struct {
	SeriesTTL time.Duration `mapstructure:"series_ttl" yaml:"series_ttl"`
	QuoteTTL  time.Duration `mapstructure:"quote_ttl"  yaml:"quote_ttl"`
	Size      int           `mapstructure:"size"       yaml:"size"` // max entries per cache, 0 = unbounded
}

// DashboardConfig holds request defaults.
type DashboardConfig struct {
	DefaultCurrencies []string `mapstructure:"default_currencies" yaml:"default_currencies"`
	DefaultPeriod     string   `mapstructure:"default_period"     yaml:"default_period"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"   yaml:"level"`   // "debug", "info", "warn", "error"
	Format string `mapstructure:"format"  yaml:"format"`  // "text" or "json"
	Output string `mapstructure:"output"  yaml:"output"`  // "stdout", "stderr" or a file path
	MaxAge int    `mapstructure:"max_age" yaml:"max_age"` // days; rotates file output when > 0
}

// Addr returns the host:port the API server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api.port out of range: %d", c.API.Port))
	}
	if c.Source.BaseURL == "" {
		errs = append(errs, errors.New("source.base_url is required"))
	}
	if c.Source.Reference == "" {
		errs = append(errs, errors.New("source.reference is required"))
	}
	if c.Fetch.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("fetch.concurrency must be >= 1, got %d", c.Fetch.Concurrency))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch.timeout must be positive, got %s", c.Fetch.Timeout))
	}
	if c.API.StreamInterval <= 0 {
		errs = append(errs, fmt.Errorf("api.stream_interval must be positive, got %s", c.API.StreamInterval))
	}
	return errors.Join(errs...)
}

// Load reads the configuration from file and environment variables.
// A .env file in the working directory is loaded first, if present.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.fxdash/config.yaml (home directory)
//  3. /etc/fxdash/config.yaml (system)
//
// Environment variables override config file values.
// Format: FXDASH_<SECTION>_<KEY>, e.g., FXDASH_FETCH_CONCURRENCY
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".fxdash"))
	v.AddConfigPath("/etc/fxdash")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Source.Reference = strings.ToUpper(cfg.Source.Reference)
	for i, c := range cfg.Dashboard.DefaultCurrencies {
		cfg.Dashboard.DefaultCurrencies[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	return &cfg, nil
}

// loadDotEnv exports the variables of a .env file without overriding
// variables already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})
	v.SetDefault("api.request_timeout", "60s")
	v.SetDefault("api.stream_interval", "30s")

	// Upstream
	v.SetDefault("source.base_url", "https://economia.awesomeapi.com.br")
	v.SetDefault("source.reference", "BRL")
	v.SetDefault("source.api_key", "")

	// Fetch limits
	v.SetDefault("fetch.timeout", "10s")
	v.SetDefault("fetch.concurrency", 4)
	v.SetDefault("fetch.rate_per_sec", 5.0)
	v.SetDefault("fetch.burst", 5)

	// Cache TTLs
	v.SetDefault("cache.series_ttl", "30m")
	v.SetDefault("cache.quote_ttl", "5m")
	v.SetDefault("cache.size", 256)

	// Dashboard
	v.SetDefault("dashboard.default_currencies", []string{"USD", "EUR", "BRL"})
	v.SetDefault("dashboard.default_period", "90d")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_age", 0)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
